package calculators

import (
	"errors"
	"fmt"

	"github.com/integrityops/vessel-compliance/internal/calculation"
)

// Compile-time assertion that VIIIDiv1 implements the Calculator interface.
var _ calculation.Calculator = (*VIIIDiv1)(nil)

// VIIIDiv1 performs the cylindrical shell thickness and MAWP check of ASME VIII
// Division 1 UG-27(c)(1), circumferential stress governing.
type VIIIDiv1 struct{}

// NewVIIIDiv1 creates an ASME VIII Division 1 calculator.
func NewVIIIDiv1() *VIIIDiv1 {
	return &VIIIDiv1{}
}

type viiiInput struct {
	DesignPressureKPa    float64 `json:"design_pressure_kpa" validate:"gt=0"`
	DesignTemperatureC   float64 `json:"design_temperature_c" validate:"gte=-273.15"`
	InsideRadiusMM       float64 `json:"inside_radius_mm" validate:"gt=0"`
	AllowableStressMPa   float64 `json:"allowable_stress_mpa" validate:"gt=0"`
	JointEfficiency      float64 `json:"joint_efficiency" validate:"gt=0,lte=1"`
	CorrosionAllowanceMM float64 `json:"corrosion_allowance_mm" validate:"gte=0"`
	NominalThicknessMM   float64 `json:"nominal_thickness_mm" validate:"gt=0"`
}

func (c *VIIIDiv1) Type() calculation.Type {
	return calculation.TypeASMEVIIIDiv1
}

func (c *VIIIDiv1) Keys() []string {
	return []string{
		"design_pressure_kpa",
		"design_temperature_c",
		"inside_radius_mm",
		"allowable_stress_mpa",
		"joint_efficiency",
		"corrosion_allowance_mm",
		"nominal_thickness_mm",
	}
}

// Compute evaluates t = P*R / (S*E - 0.6*P) in the corroded condition and the MAWP of
// the corroded shell, MAWP = S*E*t / (R + 0.6*t). UG-27(c)(1) applies only when
// P <= 0.385*S*E; outside that limit the thick-shell rules of Appendix 1-2 govern.
func (c *VIIIDiv1) Compute(params calculation.Params) (calculation.Results, error) {
	var in viiiInput
	if err := decodeParams(params, c.Keys(), &in); err != nil {
		return nil, err
	}

	pressureMPa := in.DesignPressureKPa / 1000.0
	stressTerm := in.AllowableStressMPa * in.JointEfficiency

	if pressureMPa > 0.385*stressTerm {
		return nil, calculation.NewExecutionError("ug27_applicability",
			fmt.Errorf("design pressure %.3f MPa exceeds 0.385*S*E = %.3f MPa; thin-shell equation not applicable",
				pressureMPa, 0.385*stressTerm))
	}

	denom := stressTerm - 0.6*pressureMPa
	if denom <= 0 {
		return nil, calculation.NewExecutionError("ug27_thickness", errors.New("non-positive denominator S*E - 0.6*P"))
	}

	// Corrosion grows the inside radius and thins the wall.
	corrodedRadius := in.InsideRadiusMM + in.CorrosionAllowanceMM
	availableThickness := in.NominalThicknessMM - in.CorrosionAllowanceMM
	if availableThickness <= 0 {
		return nil, calculation.NewExecutionError("ug27_thickness", errors.New("no wall remains after corrosion allowance"))
	}

	designThickness := pressureMPa * corrodedRadius / denom
	requiredThickness := designThickness + in.CorrosionAllowanceMM

	mawpMPa := stressTerm * availableThickness / (corrodedRadius + 0.6*availableThickness)

	return calculation.Results{
		"design_thickness_mm":           designThickness,
		"minimum_required_thickness_mm": requiredThickness,
		"available_thickness_mm":        availableThickness,
		"mawp_kpa":                      mawpMPa * 1000.0,
		"acceptable":                    availableThickness >= designThickness,
	}, nil
}
