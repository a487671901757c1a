// Package valuetree implements the entity-free intermediate representation
// shared by the tree codec and the document merge logic: an ordered,
// string-keyed map whose values are nested trees, scalars, or sequences of
// scalars.
//
// Key order is insertion order at every depth. Decoding keeps the order found
// in the source text and encoding writes keys back in that same order, so a
// section that is read and written without modification keeps its layout.
package valuetree

import (
	"encoding/json"
	"fmt"
	"math"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Tree is an ordered string-keyed map. The zero value is not usable; create
// trees with New.
type Tree struct {
	entries *orderedmap.OrderedMap[string, any]
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{entries: orderedmap.New[string, any]()}
}

// Set stores value under key. Existing keys keep their position.
func (t *Tree) Set(key string, value any) {
	t.entries.Set(key, value)
}

// Get returns the value stored under key.
func (t *Tree) Get(key string) (any, bool) {
	if t == nil {
		return nil, false
	}
	return t.entries.Get(key)
}

// Has reports whether key is present.
func (t *Tree) Has(key string) bool {
	_, ok := t.Get(key)
	return ok
}

// Delete removes key and reports whether it was present.
func (t *Tree) Delete(key string) bool {
	if t == nil {
		return false
	}
	_, ok := t.entries.Delete(key)
	return ok
}

// Len returns the number of entries.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return t.entries.Len()
}

// Keys returns the keys in order.
func (t *Tree) Keys() []string {
	if t == nil {
		return nil
	}
	keys := make([]string, 0, t.entries.Len())
	for pair := t.entries.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Range calls fn for each entry in order until fn returns false.
func (t *Tree) Range(fn func(key string, value any) bool) {
	if t == nil {
		return
	}
	for pair := t.entries.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Clone returns a deep copy of the tree.
func (t *Tree) Clone() *Tree {
	if t == nil {
		return nil
	}
	out := New()
	t.Range(func(key string, value any) bool {
		out.Set(key, cloneValue(value))
		return true
	})
	return out
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case *Tree:
		return typed.Clone()
	case []any:
		out := make([]any, len(typed))
		for i := range typed {
			out[i] = cloneValue(typed[i])
		}
		return out
	default:
		return value
	}
}

// Plain projects the tree onto map[string]any. Nested trees become maps and
// decoded numbers become int64 when integral, float64 otherwise.
func (t *Tree) Plain() map[string]any {
	if t == nil {
		return nil
	}
	out := make(map[string]any, t.Len())
	t.Range(func(key string, value any) bool {
		out[key] = plainValue(value)
		return true
	})
	return out
}

func plainValue(value any) any {
	switch typed := value.(type) {
	case *Tree:
		return typed.Plain()
	case []any:
		out := make([]any, len(typed))
		for i := range typed {
			out[i] = plainValue(typed[i])
		}
		return out
	case json.Number:
		return NumberValue(typed)
	default:
		return value
	}
}

// NumberValue converts a decoded number into int64 when it is integral and
// fits, or float64 otherwise.
func NumberValue(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return i
	}
	f, err := n.Float64()
	if err != nil {
		return n.String()
	}
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return int64(f)
	}
	return f
}

// IsNumber reports whether value is a numeric tree value.
func IsNumber(value any) bool {
	switch value.(type) {
	case json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, uintptr,
		float32, float64:
		return true
	default:
		return false
	}
}

// TypeName returns a short JSON-flavoured name for a tree value, used in
// diagnostics and field descriptors.
func TypeName(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case *Tree:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	default:
		if IsNumber(value) {
			return "number"
		}
		return fmt.Sprintf("%T", value)
	}
}

// MarshalJSON writes the tree as a compact JSON object in key order.
func (t *Tree) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("null"), nil
	}
	return encodeCompact(t)
}

// UnmarshalJSON replaces the tree contents, preserving key order.
func (t *Tree) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	t.entries = decoded.entries
	return nil
}
