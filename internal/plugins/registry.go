// Package plugins discovers and loads a module's plugin functions: plain Go
// functions declared at the top level of the source files in the module's
// plugins/ directory, interpreted at load time.
//
// Discovery is a deterministic directory scan in lexicographic file order;
// when two files define the same function name the later file wins.
package plugins

import (
	"fmt"
	"reflect"
	"sort"
)

// Function is a single loaded plugin function.
type Function struct {
	name string
	file string
	fn   reflect.Value
}

// Name returns the function's declared name.
func (f *Function) Name() string {
	return f.name
}

// File returns the source file the function was loaded from.
func (f *Function) File() string {
	return f.file
}

// Call invokes the function with the given arguments and returns its results.
// Arity and argument types are validated up front so a mismatch surfaces as an
// error rather than a reflection panic.
func (f *Function) Call(args ...any) ([]any, error) {
	t := f.fn.Type()
	if !t.IsVariadic() && t.NumIn() != len(args) {
		return nil, fmt.Errorf("plugin function %q takes %d arguments, got %d", f.name, t.NumIn(), len(args))
	}
	if t.IsVariadic() && len(args) < t.NumIn()-1 {
		return nil, fmt.Errorf("plugin function %q takes at least %d arguments, got %d", f.name, t.NumIn()-1, len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		paramType := t.In(min(i, t.NumIn()-1))
		if t.IsVariadic() && i >= t.NumIn()-1 {
			paramType = paramType.Elem()
		}
		if arg == nil {
			in[i] = reflect.Zero(paramType)
			continue
		}
		v := reflect.ValueOf(arg)
		if !v.Type().AssignableTo(paramType) {
			return nil, fmt.Errorf("plugin function %q argument %d must be %s, got %s", f.name, i, paramType, v.Type())
		}
		in[i] = v
	}

	out := f.fn.Call(in)
	results := make([]any, len(out))
	for i, v := range out {
		results[i] = v.Interface()
	}
	return results, nil
}

// Registry is a flat name -> function mapping built by Load.
type Registry struct {
	funcs map[string]*Function
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]*Function)}
}

// Get returns the named plugin function.
func (r *Registry) Get(name string) (*Function, error) {
	fn, ok := r.funcs[name]
	if !ok {
		return nil, fmt.Errorf("plugin function with name %q not found", name)
	}
	return fn, nil
}

// All returns every loaded function keyed by name.
func (r *Registry) All() map[string]*Function {
	out := make(map[string]*Function, len(r.funcs))
	for k, v := range r.funcs {
		out[k] = v
	}
	return out
}

// Names returns the sorted names of every loaded function.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// add records a function, overwriting any earlier definition of the same name.
func (r *Registry) add(fn *Function) {
	r.funcs[fn.name] = fn
}
