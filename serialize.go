package jsonio

import (
	"encoding"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"

	"github.com/goliatone/go-jsonio/pkg/valuetree"
)

// Codec converts entities to value trees and merges value trees back into
// live entities. A Codec holds no state between calls.
type Codec struct {
	cfg config
}

// NewCodec constructs a Codec. Only diagnostic and boolean options apply.
func NewCodec(opts ...Option) *Codec {
	return &Codec{cfg: applyOptions(opts)}
}

// Serialize deep-copies the field set of entity into a new tree. Nested
// entities, including those stored as values of plain maps, are expanded into
// nested trees. Maps or entities inside sequences and cyclic graphs are
// rejected with an *UnsupportedError.
func (c *Codec) Serialize(entity any) (*valuetree.Tree, error) {
	target, err := entityStruct(entity)
	if err != nil {
		return nil, err
	}
	s := serializer{visiting: map[visit]struct{}{}}
	ptr := reflect.ValueOf(entity)
	s.visiting[visit{ptr: ptr.Pointer(), typ: ptr.Type()}] = struct{}{}
	return s.entity(target, "")
}

type visit struct {
	ptr uintptr
	typ reflect.Type
}

type serializer struct {
	visiting map[visit]struct{}
}

func (s *serializer) entity(v reflect.Value, path string) (*valuetree.Tree, error) {
	tree := valuetree.New()
	for _, f := range structFields(v.Type()) {
		fieldPath := joinPath(path, f.name)
		value, err := s.value(v.Field(f.index), fieldPath)
		if err != nil {
			return nil, err
		}
		tree.Set(f.name, value)
	}
	return tree, nil
}

func (s *serializer) value(v reflect.Value, path string) (any, error) {
	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return nil, nil
		}
		return s.value(v.Elem(), path)
	case reflect.Pointer:
		if v.IsNil() {
			return nil, nil
		}
		key := visit{ptr: v.Pointer(), typ: v.Type()}
		if _, seen := s.visiting[key]; seen {
			return nil, &UnsupportedError{Path: path, Reason: "cycle in entity graph"}
		}
		s.visiting[key] = struct{}{}
		defer delete(s.visiting, key)
		return s.value(v.Elem(), path)
	}

	switch typeShape(v.Type()) {
	case shapeText:
		if isText(v.Type()) {
			return marshalText(v, path)
		}
		return v.String(), nil
	case shapeBool:
		return v.Bool(), nil
	case shapeNumber:
		return numberValue(v, path)
	case shapeSequence:
		return s.sequence(v, path)
	case shapeMap:
		return s.mapTree(v, path)
	case shapeEntity:
		return s.entity(v, path)
	default:
		return nil, &UnsupportedError{Path: path, Reason: fmt.Sprintf("type %s has no JSON form", v.Type())}
	}
}

func (s *serializer) sequence(v reflect.Value, path string) (any, error) {
	switch typeShape(v.Type().Elem()) {
	case shapeMap, shapeEntity:
		return nil, &UnsupportedError{Path: path, Reason: fmt.Sprintf("sequence of %s", v.Type().Elem())}
	}
	if v.Kind() == reflect.Slice && v.IsNil() {
		return []any{}, nil
	}
	out := make([]any, v.Len())
	for i := 0; i < v.Len(); i++ {
		elemPath := path + "[" + strconv.Itoa(i) + "]"
		elem := v.Index(i)
		switch valueShape(elem) {
		case shapeMap, shapeEntity:
			return nil, &UnsupportedError{Path: elemPath, Reason: "object inside sequence"}
		}
		value, err := s.value(elem, elemPath)
		if err != nil {
			return nil, err
		}
		out[i] = value
	}
	return out, nil
}

func (s *serializer) mapTree(v reflect.Value, path string) (*valuetree.Tree, error) {
	tree := valuetree.New()
	if v.IsNil() {
		return tree, nil
	}
	key := visit{ptr: v.Pointer(), typ: v.Type()}
	if _, seen := s.visiting[key]; seen {
		return nil, &UnsupportedError{Path: path, Reason: "cycle in entity graph"}
	}
	s.visiting[key] = struct{}{}
	defer delete(s.visiting, key)

	for _, k := range sortedKeys(v) {
		value, err := s.value(v.MapIndex(k), joinPath(path, k.String()))
		if err != nil {
			return nil, err
		}
		tree.Set(k.String(), value)
	}
	return tree, nil
}

func sortedKeys(m reflect.Value) []reflect.Value {
	keys := m.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}

func numberValue(v reflect.Value, path string) (any, error) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint(), nil
	default:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, &UnsupportedError{Path: path, Reason: fmt.Sprintf("number %v has no JSON form", f)}
		}
		return f, nil
	}
}

func marshalText(v reflect.Value, path string) (any, error) {
	var marshaler encoding.TextMarshaler
	switch {
	case v.Type().Implements(textMarshalerType):
		marshaler = v.Interface().(encoding.TextMarshaler)
	case v.CanAddr():
		marshaler = v.Addr().Interface().(encoding.TextMarshaler)
	default:
		ptr := reflect.New(v.Type())
		ptr.Elem().Set(v)
		marshaler = ptr.Interface().(encoding.TextMarshaler)
	}
	text, err := marshaler.MarshalText()
	if err != nil {
		return nil, &UnsupportedError{Path: path, Reason: err.Error()}
	}
	return string(text), nil
}
