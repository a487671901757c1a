package jsonio

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// queryIdentifier matches names usable as bare identifiers in every query
// engine. Section fields that do not match stay reachable through section.
var queryIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Function is a custom query function. Arguments arrive as section values
// do: int64, float64, string, bool, []any, map[string]any or nil.
type Function func(args ...any) (any, error)

// FunctionRegistry holds custom query functions. Names are case-insensitive
// identifiers and may not take a query binding such as section or root_key.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// NewFunctionRegistry constructs an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{functions: make(map[string]Function)}
}

// Register adds fn under name. Duplicates, nil functions and names that are
// not identifiers or collide with a binding are rejected.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	if fn == nil {
		return fmt.Errorf("jsonio: function %q is nil", name)
	}
	if !queryIdentifier.MatchString(name) {
		return fmt.Errorf("jsonio: function name %q is not a query identifier", name)
	}
	key := strings.ToLower(name)
	if isBuiltinBinding(key) || key == "call" {
		return fmt.Errorf("jsonio: function %q would hide the %s binding", name, key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = make(map[string]Function)
	}
	if _, exists := r.functions[key]; exists {
		return fmt.Errorf("jsonio: function %q already registered", name)
	}
	r.functions[key] = fn
	return nil
}

// Clone returns a registry holding the same functions. Later registrations
// on either side are not shared.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := NewFunctionRegistry()
	for name, fn := range r.functions {
		clone.functions[name] = fn
	}
	return clone
}

// Call runs the function registered for name. Failures are prefixed with the
// function name so a query error points at the call that failed.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("jsonio: no query functions registered")
	}
	r.mu.RLock()
	fn := r.functions[strings.ToLower(name)]
	r.mu.RUnlock()
	if fn == nil {
		return nil, fmt.Errorf("jsonio: function %q not registered", name)
	}
	result, err := fn(args...)
	if err != nil {
		return nil, fmt.Errorf("jsonio: function %q: %w", name, err)
	}
	return result, nil
}

// Names returns the registered names, lowercased and sorted.
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
