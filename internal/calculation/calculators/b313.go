package calculators

import (
	"errors"
	"fmt"

	"github.com/integrityops/vessel-compliance/internal/calculation"
)

const (
	// DefaultB313YCoefficient is the wall-thickness coefficient Y from ASME B31.3
	// Table 304.1.1 for ductile metals below 482 degrees C.
	DefaultB313YCoefficient = 0.4
	// DefaultB313MillTolerance is the under-thickness mill tolerance fraction for
	// seamless pipe (12.5%).
	DefaultB313MillTolerance = 0.125
	// DefaultB313WeldStrengthReduction is the weld joint strength reduction factor W
	// at temperatures where creep is not a concern.
	DefaultB313WeldStrengthReduction = 1.0
)

// Compile-time assertion that B313 implements the Calculator interface.
var _ calculation.Calculator = (*B313)(nil)

// B313 performs the pressure-design wall thickness check for straight pipe under
// internal pressure per ASME B31.3 para. 304.1.2.
type B313 struct {
	yCoefficient          float64
	millTolerance         float64
	weldStrengthReduction float64
}

// B313Option is a functional option for configuring a B313 calculator.
type B313Option func(*B313)

// WithYCoefficient overrides the Table 304.1.1 wall-thickness coefficient.
// Values outside (0, 0.7] are ignored and the default is kept.
func WithYCoefficient(y float64) B313Option {
	return func(c *B313) {
		if y > 0 && y <= 0.7 {
			c.yCoefficient = y
		}
	}
}

// WithMillTolerance overrides the under-thickness mill tolerance fraction.
// Values outside [0, 1) are ignored and the default is kept.
func WithMillTolerance(frac float64) B313Option {
	return func(c *B313) {
		if frac >= 0 && frac < 1 {
			c.millTolerance = frac
		}
	}
}

// WithWeldStrengthReduction overrides the weld joint strength reduction factor W.
// Values outside (0, 1] are ignored and the default is kept.
func WithWeldStrengthReduction(w float64) B313Option {
	return func(c *B313) {
		if w > 0 && w <= 1 {
			c.weldStrengthReduction = w
		}
	}
}

// NewB313 creates an ASME B31.3 calculator with default coefficients.
func NewB313(opts ...B313Option) *B313 {
	res := B313{
		yCoefficient:          DefaultB313YCoefficient,
		millTolerance:         DefaultB313MillTolerance,
		weldStrengthReduction: DefaultB313WeldStrengthReduction,
	}

	for _, opt := range opts {
		opt(&res)
	}

	return &res
}

type b313Input struct {
	DesignPressureKPa    float64 `json:"design_pressure_kpa" validate:"gt=0"`
	DesignTemperatureC   float64 `json:"design_temperature_c" validate:"gte=-273.15"`
	OutsideDiameterMM    float64 `json:"outside_diameter_mm" validate:"gt=0"`
	AllowableStressMPa   float64 `json:"allowable_stress_mpa" validate:"gt=0"`
	WeldJointEfficiency  float64 `json:"weld_joint_efficiency" validate:"gt=0,lte=1"`
	CorrosionAllowanceMM float64 `json:"corrosion_allowance_mm" validate:"gte=0"`
	NominalThicknessMM   float64 `json:"nominal_thickness_mm" validate:"gt=0"`
}

func (c *B313) Type() calculation.Type {
	return calculation.TypeASMEB313
}

func (c *B313) Keys() []string {
	return []string{
		"design_pressure_kpa",
		"design_temperature_c",
		"outside_diameter_mm",
		"allowable_stress_mpa",
		"weld_joint_efficiency",
		"corrosion_allowance_mm",
		"nominal_thickness_mm",
	}
}

// Compute evaluates t = P*D / (2*(S*E*W + P*Y)) per para. 304.1.2 eq. (3a), adds the
// corrosion allowance and compares against the nominal thickness reduced by the mill
// tolerance.
func (c *B313) Compute(params calculation.Params) (calculation.Results, error) {
	var in b313Input
	if err := decodeParams(params, c.Keys(), &in); err != nil {
		return nil, err
	}

	pressureMPa := in.DesignPressureKPa / 1000.0
	denom := 2.0 * (in.AllowableStressMPa*in.WeldJointEfficiency*c.weldStrengthReduction + pressureMPa*c.yCoefficient)
	if denom <= 0 {
		return nil, calculation.NewExecutionError("pressure_design_thickness", errors.New("non-positive stress term"))
	}

	designThickness := pressureMPa * in.OutsideDiameterMM / denom

	// Eq. (3a) is valid for t < D/6 only; thicker pipe needs a divergent analysis.
	if designThickness >= in.OutsideDiameterMM/6.0 {
		return nil, calculation.NewExecutionError("thickness_applicability",
			fmt.Errorf("design thickness %.2f mm exceeds D/6; eq. (3a) not applicable", designThickness))
	}

	requiredThickness := designThickness + in.CorrosionAllowanceMM
	availableThickness := in.NominalThicknessMM * (1.0 - c.millTolerance)

	return calculation.Results{
		"pressure_design_thickness_mm":  designThickness,
		"minimum_required_thickness_mm": requiredThickness,
		"available_thickness_mm":        availableThickness,
		"thickness_margin_mm":           availableThickness - requiredThickness,
		"acceptable":                    availableThickness >= requiredThickness,
	}, nil
}
