package calculation

// Type identifies the governing engineering standard of a calculation.
type Type string

const (
	// TypeASMEB313 is the ASME B31.3 process-piping pressure-design calculation.
	TypeASMEB313 Type = "asme_b31_3"
	// TypeAPI579 is the API 579-1 fitness-for-service local metal loss assessment.
	TypeAPI579 Type = "api_579"
	// TypeASMEVIIIDiv1 is the ASME VIII Division 1 pressure-vessel shell calculation.
	TypeASMEVIIIDiv1 Type = "asme_viii_div1"
)

// Params is the standard-specific input mapping of a calculation. Keys carry their unit
// as a suffix (e.g. "design_pressure_kpa"); calculators never coerce units implicitly.
type Params map[string]any

// Results is the output mapping computed by a Calculator, including derived
// pass/fail or allowable-value fields.
type Results map[string]any

// Calculator encapsulates the formulas of one engineering standard.
//
// Compute must be a pure, deterministic function of its params: identical input always
// yields identical output, with no clock or ambient-state dependence and no I/O.
type Calculator interface {
	// Type returns the calculation type this calculator implements.
	Type() Type
	// Keys returns the list of required parameter keys of this calculator.
	Keys() []string
	// Compute runs the standard's formulas against the provided params.
	// It returns a *ValidationError when params do not satisfy the calculator's schema
	// and an *ExecutionError when the computation itself fails.
	Compute(params Params) (Results, error)
}
