package calculation

import "fmt"

// ErrUnsupportedType is returned by Resolve for a calculation type outside the
// registered set.
type ErrUnsupportedType struct {
	requested Type
}

func (e *ErrUnsupportedType) Error() string {
	return fmt.Sprintf("unsupported calculation type %q", string(e.requested))
}

// Registry maps a calculation type to the one Calculator implementing it.
//
// Registration is static and explicit: the registry is built once at process start and
// passed to the service by dependency injection. There is no dynamic discovery, so the
// set of supported standards is a build-time-known closed list.
type Registry struct {
	calculators map[Type]Calculator
}

// NewRegistry creates a Registry with no calculators registered.
func NewRegistry() *Registry {
	return &Registry{
		calculators: make(map[Type]Calculator),
	}
}

// Register adds a Calculator to the registry.
// Register panics if a calculator for the same type is already registered, as a
// duplicate would silently shadow the first registration.
func (r *Registry) Register(c Calculator) {
	if _, ok := r.calculators[c.Type()]; ok {
		panic(fmt.Sprintf("calculation: calculator %q already registered", c.Type()))
	}
	r.calculators[c.Type()] = c
}

// Resolve returns the calculator registered for t.
func (r *Registry) Resolve(t Type) (Calculator, error) {
	c, ok := r.calculators[t]
	if !ok {
		return nil, &ErrUnsupportedType{requested: t}
	}
	return c, nil
}

// Types returns the closed set of supported calculation types.
func (r *Registry) Types() []Type {
	types := make([]Type, 0, len(r.calculators))
	for t := range r.calculators {
		types = append(types, t)
	}
	return types
}
