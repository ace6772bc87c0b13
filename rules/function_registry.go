package rules

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// ErrFunctionNotFound is returned by Call for a name nothing registered.
var ErrFunctionNotFound = errors.New("rules: function not registered")

// Function is a helper callable from conditions, e.g. includes(roles, "admin").
type Function func(args ...any) (any, error)

// FunctionRegistry stores condition helpers keyed by lower-cased name. It is
// safe for concurrent use.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// NewFunctionRegistry constructs an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{functions: map[string]Function{}}
}

// Builtins returns a registry with the helpers overlay conditions commonly
// need:
//
//	includes(list, value)  list membership, numbers compared by value
//	blank(value)           nil, whitespace-only string, or empty list/map
//	dig(object, "a.b.c")   nested lookup in a component snapshot, nil if absent
func Builtins() *FunctionRegistry {
	r := NewFunctionRegistry()
	r.functions["includes"] = includes
	r.functions["blank"] = blank
	r.functions["dig"] = dig
	return r
}

// Register stores fn under name. Names are case-insensitive and may only be
// registered once.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	if fn == nil {
		return fmt.Errorf("rules: function %q is nil", name)
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return fmt.Errorf("rules: function name must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = map[string]Function{}
	}
	if _, exists := r.functions[name]; exists {
		return fmt.Errorf("rules: function %q already registered", name)
	}
	r.functions[name] = fn
	return nil
}

// Clone returns a copy that does not observe later registrations.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	clone := NewFunctionRegistry()
	clone.absorb(r)
	return clone
}

// absorb copies other's functions into r, replacing same-named entries.
func (r *FunctionRegistry) absorb(other *FunctionRegistry) {
	if other == nil || other == r {
		return
	}
	other.mu.RLock()
	defer other.mu.RUnlock()
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, fn := range other.functions {
		r.functions[name] = fn
	}
}

// Call executes the function registered for name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("rules: function registry is nil")
	}
	r.mu.RLock()
	fn := r.functions[strings.ToLower(name)]
	r.mu.RUnlock()
	if fn == nil {
		return nil, fmt.Errorf("%w: %q", ErrFunctionNotFound, name)
	}
	return fn(args...)
}

// Names returns registered function names sorted alphabetically.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func includes(args ...any) (any, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("rules: includes expects a list and a value")
	}
	list := reflect.ValueOf(args[0])
	if !list.IsValid() {
		return false, nil
	}
	if list.Kind() != reflect.Slice && list.Kind() != reflect.Array {
		return nil, fmt.Errorf("rules: includes expects a list, got %T", args[0])
	}
	for i := 0; i < list.Len(); i++ {
		if sameValue(list.Index(i).Interface(), args[1]) {
			return true, nil
		}
	}
	return false, nil
}

func blank(args ...any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("rules: blank expects one argument")
	}
	if args[0] == nil {
		return true, nil
	}
	if s, ok := args[0].(string); ok {
		return strings.TrimSpace(s) == "", nil
	}
	value := reflect.ValueOf(args[0])
	switch value.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return value.Len() == 0, nil
	case reflect.Pointer, reflect.Interface:
		return value.IsNil(), nil
	}
	return false, nil
}

func dig(args ...any) (any, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("rules: dig expects an object and a path")
	}
	path, ok := args[1].(string)
	if !ok {
		return nil, fmt.Errorf("rules: dig path must be string, got %T", args[1])
	}
	current := args[0]
	for _, key := range strings.Split(path, ".") {
		value := reflect.ValueOf(current)
		if !value.IsValid() || value.Kind() != reflect.Map || value.Type().Key().Kind() != reflect.String {
			return nil, nil
		}
		next := value.MapIndex(reflect.ValueOf(key).Convert(value.Type().Key()))
		if !next.IsValid() {
			return nil, nil
		}
		current = next.Interface()
	}
	return current, nil
}

// sameValue compares numbers by value so JSON snapshots (float64) match
// integer literals.
func sameValue(a, b any) bool {
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		return ok && af == bf
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	value := reflect.ValueOf(v)
	switch value.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(value.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(value.Uint()), true
	case reflect.Float32, reflect.Float64:
		return value.Float(), true
	}
	return 0, false
}
