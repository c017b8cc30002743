package calculators

import (
	"errors"
	"math"

	"github.com/integrityops/vessel-compliance/internal/calculation"
)

const (
	// DefaultAllowableRSF is the allowable remaining strength factor RSFa from
	// API 579-1 Part 2, used as the Level 1 acceptance threshold.
	DefaultAllowableRSF = 0.9
	// minRemainingRatio is the Level 1 screening limit on Rt from Part 5.
	minRemainingRatio = 0.2
	// minRemainingThicknessMM is the Level 1 screening limit on tmm - FCA.
	minRemainingThicknessMM = 2.5
)

// Compile-time assertion that API579 implements the Calculator interface.
var _ calculation.Calculator = (*API579)(nil)

// API579 performs the Level 1 fitness-for-service assessment for local metal loss on a
// cylindrical shell per API 579-1/ASME FFS-1 Part 5.
type API579 struct {
	allowableRSF float64
}

// API579Option is a functional option for configuring an API579 calculator.
type API579Option func(*API579)

// WithAllowableRSF overrides the allowable remaining strength factor.
// Values outside (0, 1] are ignored and the default is kept.
func WithAllowableRSF(rsf float64) API579Option {
	return func(c *API579) {
		if rsf > 0 && rsf <= 1 {
			c.allowableRSF = rsf
		}
	}
}

// NewAPI579 creates an API 579-1 Part 5 calculator with the default allowable RSF.
func NewAPI579(opts ...API579Option) *API579 {
	res := API579{
		allowableRSF: DefaultAllowableRSF,
	}

	for _, opt := range opts {
		opt(&res)
	}

	return &res
}

type api579Input struct {
	MAWPKPa                    float64 `json:"mawp_kpa" validate:"gt=0"`
	InsideDiameterMM           float64 `json:"inside_diameter_mm" validate:"gt=0"`
	MinimumRequiredThicknessMM float64 `json:"minimum_required_thickness_mm" validate:"gt=0"`
	MinimumMeasuredThicknessMM float64 `json:"minimum_measured_thickness_mm" validate:"gt=0"`
	FutureCorrosionAllowanceMM float64 `json:"future_corrosion_allowance_mm" validate:"gte=0"`
	FlawLengthMM               float64 `json:"flaw_length_mm" validate:"gt=0"`
}

func (c *API579) Type() calculation.Type {
	return calculation.TypeAPI579
}

func (c *API579) Keys() []string {
	return []string{
		"mawp_kpa",
		"inside_diameter_mm",
		"minimum_required_thickness_mm",
		"minimum_measured_thickness_mm",
		"future_corrosion_allowance_mm",
		"flaw_length_mm",
	}
}

// Compute evaluates the Part 5 Level 1 procedure: remaining thickness ratio Rt, shell
// parameter lambda, Folias factor Mt, remaining strength factor RSF and, when RSF falls
// below the allowable, the derated MAWPr = MAWP * RSF / RSFa.
func (c *API579) Compute(params calculation.Params) (calculation.Results, error) {
	var in api579Input
	if err := decodeParams(params, c.Keys(), &in); err != nil {
		return nil, err
	}

	remainingThickness := in.MinimumMeasuredThicknessMM - in.FutureCorrosionAllowanceMM
	if remainingThickness <= 0 {
		return nil, calculation.NewExecutionError("remaining_thickness",
			errors.New("no wall remains after future corrosion allowance"))
	}

	rt := remainingThickness / in.MinimumRequiredThicknessMM
	lambda := 1.285 * in.FlawLengthMM / math.Sqrt(in.InsideDiameterMM*in.MinimumRequiredThicknessMM)
	foliasFactor := math.Sqrt(1.0 + 0.48*lambda*lambda)

	rsfDenom := 1.0 - (1.0-rt)/foliasFactor
	if rsfDenom <= 0 {
		return nil, calculation.NewExecutionError("remaining_strength_factor",
			errors.New("non-positive RSF denominator"))
	}
	rsf := rt / rsfDenom
	if rsf > 1.0 {
		rsf = 1.0
	}

	reducedMAWP := in.MAWPKPa
	if rsf < c.allowableRSF {
		reducedMAWP = in.MAWPKPa * rsf / c.allowableRSF
	}

	acceptable := rsf >= c.allowableRSF &&
		rt >= minRemainingRatio &&
		remainingThickness >= minRemainingThicknessMM

	return calculation.Results{
		"remaining_thickness_mm":    remainingThickness,
		"remaining_thickness_ratio": rt,
		"shell_parameter":           lambda,
		"folias_factor":             foliasFactor,
		"remaining_strength_factor": rsf,
		"reduced_mawp_kpa":          reducedMAWP,
		"acceptable":                acceptable,
	}, nil
}
