package functions

import (
	"fmt"
	"sort"
)

// Func is a template function. Arguments arrive positionally, as a template
// engine would pass them.
type Func func(args ...any) (any, error)

// Registry maps template function names to handlers.
type Registry struct {
	funcs map[string]Func
}

// NewRegistry returns an empty function registry.
func NewRegistry() *Registry {
	return &Registry{funcs: map[string]Func{}}
}

// Builtins returns a registry holding every function fwfacts ships.
func Builtins() *Registry {
	reg := NewRegistry()
	reg.mustRegister(SuffixHashTitleName, func(args ...any) (any, error) {
		return SuffixHashTitle(args...), nil
	})
	return reg
}

// mustRegister panics on registration errors, which for builtins can only come
// from a duplicated or empty name in this file.
func (r *Registry) mustRegister(name string, fn Func) {
	if err := r.Register(name, fn); err != nil {
		panic(fmt.Sprintf("register builtin function: %v", err))
	}
}

// Register adds a handler under name.
func (r *Registry) Register(name string, fn Func) error {
	if name == "" || fn == nil {
		return fmt.Errorf("function registration requires a name and a handler")
	}
	if _, exists := r.funcs[name]; exists {
		return fmt.Errorf("function %s already registered", name)
	}
	r.funcs[name] = fn
	return nil
}

// Call invokes the named function.
func (r *Registry) Call(name string, args ...any) (any, error) {
	fn, ok := r.funcs[name]
	if !ok {
		return nil, fmt.Errorf("unknown function %q", name)
	}
	return fn(args...)
}

// Names returns the registered function names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
