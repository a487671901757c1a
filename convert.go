package jsonio

import (
	"encoding"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/goliatone/go-jsonio/pkg/valuetree"
)

// convertValue checks incoming against the scalar type t and returns it as a
// value of t. A non-empty reason means the value is not type-consistent.
//
//	number  <- number
//	boolean <- boolean or number
//	array   <- array
//	string  <- string
func convertValue(incoming any, t reflect.Type, strictBooleans bool) (reflect.Value, string) {
	if t.Kind() == reflect.Pointer {
		if incoming == nil {
			return reflect.Zero(t), ""
		}
		elem, reason := convertValue(incoming, t.Elem(), strictBooleans)
		if reason != "" {
			return reflect.Value{}, reason
		}
		ptr := reflect.New(t.Elem())
		ptr.Elem().Set(elem)
		return ptr, ""
	}

	switch s := typeShape(t); s {
	case shapeDynamic:
		return convertDynamic(incoming, t)
	case shapeNumber:
		if !valuetree.IsNumber(incoming) {
			return reflect.Value{}, typeReason(s)
		}
		return convertNumber(incoming, t)
	case shapeBool:
		return convertBool(incoming, t, strictBooleans)
	case shapeText:
		text, ok := incoming.(string)
		if !ok {
			return reflect.Value{}, typeReason(s)
		}
		return convertText(text, t)
	case shapeSequence:
		seq, ok := incoming.([]any)
		if !ok {
			return reflect.Value{}, typeReason(s)
		}
		return convertSequence(seq, t, strictBooleans)
	default:
		return reflect.Value{}, fmt.Sprintf("%s is not a scalar type", t)
	}
}

func typeReason(want shape) string {
	return fmt.Sprintf("expected %s", want)
}

func convertDynamic(incoming any, t reflect.Type) (reflect.Value, string) {
	out := reflect.New(t).Elem()
	if incoming == nil {
		return out, ""
	}
	if _, ok := incoming.(*valuetree.Tree); ok {
		return reflect.Value{}, "object inside sequence"
	}
	natural := naturalValue(incoming)
	rv := reflect.ValueOf(natural)
	if !rv.Type().AssignableTo(t) {
		return reflect.Value{}, fmt.Sprintf("%T is not assignable to %s", natural, t)
	}
	out.Set(rv)
	return out, ""
}

// naturalValue maps a scalar tree value onto plain Go types.
func naturalValue(incoming any) any {
	switch typed := incoming.(type) {
	case json.Number:
		return valuetree.NumberValue(typed)
	case []any:
		out := make([]any, len(typed))
		for i := range typed {
			out[i] = naturalValue(typed[i])
		}
		return out
	default:
		return incoming
	}
}

func convertNumber(incoming any, t reflect.Type) (reflect.Value, string) {
	out := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, ok := toInt64(incoming)
		if !ok {
			return reflect.Value{}, "not an integer"
		}
		if out.OverflowInt(i) {
			return reflect.Value{}, fmt.Sprintf("%d overflows %s", i, t)
		}
		out.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u, ok := toUint64(incoming)
		if !ok {
			return reflect.Value{}, "not a non-negative integer"
		}
		if out.OverflowUint(u) {
			return reflect.Value{}, fmt.Sprintf("%d overflows %s", u, t)
		}
		out.SetUint(u)
	default:
		f, ok := toFloat64(incoming)
		if !ok {
			return reflect.Value{}, "not a finite number"
		}
		if out.OverflowFloat(f) {
			return reflect.Value{}, fmt.Sprintf("%g overflows %s", f, t)
		}
		out.SetFloat(f)
	}
	return out, ""
}

func convertBool(incoming any, t reflect.Type, strict bool) (reflect.Value, string) {
	out := reflect.New(t).Elem()
	if b, ok := incoming.(bool); ok {
		out.SetBool(b)
		return out, ""
	}
	if !valuetree.IsNumber(incoming) {
		return reflect.Value{}, typeReason(shapeBool)
	}
	f, ok := toFloat64(incoming)
	if !ok {
		return reflect.Value{}, "not a finite number"
	}
	if strict && f != 0 && f != 1 {
		return reflect.Value{}, fmt.Sprintf("%g is not 0 or 1", f)
	}
	out.SetBool(f != 0)
	return out, ""
}

func convertText(text string, t reflect.Type) (reflect.Value, string) {
	if isText(t) {
		ptr := reflect.New(t)
		if err := ptr.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(text)); err != nil {
			return reflect.Value{}, err.Error()
		}
		return ptr.Elem(), ""
	}
	return reflect.ValueOf(text).Convert(t), ""
}

func convertSequence(seq []any, t reflect.Type, strict bool) (reflect.Value, string) {
	var out reflect.Value
	switch t.Kind() {
	case reflect.Slice:
		out = reflect.MakeSlice(t, len(seq), len(seq))
	case reflect.Array:
		if t.Len() != len(seq) {
			return reflect.Value{}, fmt.Sprintf("expected %d elements, got %d", t.Len(), len(seq))
		}
		out = reflect.New(t).Elem()
	default:
		return reflect.Value{}, fmt.Sprintf("%s is not a sequence", t)
	}
	for i, item := range seq {
		elem, reason := convertValue(item, t.Elem(), strict)
		if reason != "" {
			return reflect.Value{}, fmt.Sprintf("element %d: %s", i, reason)
		}
		out.Index(i).Set(elem)
	}
	return out, ""
}

func toFloat64(value any) (float64, bool) {
	var f float64
	switch typed := value.(type) {
	case json.Number:
		parsed, err := typed.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		rv := reflect.ValueOf(value)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			f = float64(rv.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			f = float64(rv.Uint())
		case reflect.Float32, reflect.Float64:
			f = rv.Float()
		default:
			return 0, false
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toInt64(value any) (int64, bool) {
	if n, ok := value.(json.Number); ok {
		if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
			return i, true
		}
	} else {
		rv := reflect.ValueOf(value)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return rv.Int(), true
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			if rv.Uint() > math.MaxInt64 {
				return 0, false
			}
			return int64(rv.Uint()), true
		}
	}
	f, ok := toFloat64(value)
	if !ok || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func toUint64(value any) (uint64, bool) {
	if n, ok := value.(json.Number); ok {
		if u, err := strconv.ParseUint(n.String(), 10, 64); err == nil {
			return u, true
		}
	} else {
		rv := reflect.ValueOf(value)
		switch rv.Kind() {
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			return rv.Uint(), true
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if rv.Int() < 0 {
				return 0, false
			}
			return uint64(rv.Int()), true
		}
	}
	f, ok := toFloat64(value)
	if !ok || f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 {
		return 0, false
	}
	return uint64(f), true
}
