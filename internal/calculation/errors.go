package calculation

import "fmt"

// ValidationError reports an input mapping that does not satisfy a calculator's schema:
// a missing field, a wrong type or a value outside its physical range.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: field %q %s", e.Field, e.Reason)
}

// ExecutionError reports an unexpected failure during computation, such as a derived
// zero divisor or a formula applied outside its applicability limits.
type ExecutionError struct {
	Stage string
	Err   error
}

func NewExecutionError(stage string, err error) *ExecutionError {
	return &ExecutionError{Stage: stage, Err: err}
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("computation failed at %s: %v", e.Stage, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
