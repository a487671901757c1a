package jsonio

import (
	"encoding"
	"reflect"
)

// shape is the classification driving both serialization and update. Scalar
// shapes are number, boolean, text and sequence.
type shape int

const (
	shapeUnsupported shape = iota
	shapeNil
	shapeDynamic
	shapeNumber
	shapeBool
	shapeText
	shapeSequence
	shapeMap
	shapeEntity
)

func (s shape) String() string {
	switch s {
	case shapeNil:
		return "null"
	case shapeDynamic:
		return "any"
	case shapeNumber:
		return "number"
	case shapeBool:
		return "boolean"
	case shapeText:
		return "string"
	case shapeSequence:
		return "array"
	case shapeMap, shapeEntity:
		return "object"
	default:
		return "unsupported"
	}
}

var (
	textMarshalerType   = reflect.TypeFor[encoding.TextMarshaler]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// isText reports whether t round-trips through its text form.
func isText(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		return false
	}
	marshals := t.Implements(textMarshalerType) || reflect.PointerTo(t).Implements(textMarshalerType)
	return marshals && reflect.PointerTo(t).Implements(textUnmarshalerType)
}

// typeShape classifies a static type. Pointers classify as their element.
func typeShape(t reflect.Type) shape {
	if t.Kind() == reflect.Pointer {
		return typeShape(t.Elem())
	}
	if isText(t) {
		return shapeText
	}
	switch t.Kind() {
	case reflect.Interface:
		return shapeDynamic
	case reflect.Bool:
		return shapeBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return shapeNumber
	case reflect.String:
		return shapeText
	case reflect.Slice, reflect.Array:
		return shapeSequence
	case reflect.Map:
		if t.Key().Kind() == reflect.String {
			return shapeMap
		}
		return shapeUnsupported
	case reflect.Struct:
		return shapeEntity
	default:
		return shapeUnsupported
	}
}

// valueShape classifies a value by its current dynamic content.
func valueShape(v reflect.Value) shape {
	if !v.IsValid() {
		return shapeNil
	}
	switch v.Kind() {
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			return shapeNil
		}
		return valueShape(v.Elem())
	default:
		return typeShape(v.Type())
	}
}
