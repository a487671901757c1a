package jsonio

import (
	"reflect"
	"strings"
	"sync"
)

// Entity is a structured value persisted under a fixed root key of a shared
// document. RootKey must depend only on the type, never on instance state.
//
// Entities are pointers to structs. Exported fields form the field set, named
// by the `json` tag when present (`json:"-"` skips a field) and by the Go
// field name otherwise, in declaration order.
type Entity interface {
	RootKey() string
}

// field is one named member of an entity's field set.
type field struct {
	name  string
	index int
}

var fieldCache sync.Map // map[reflect.Type][]field

// structFields returns the ordered field set of a struct type.
func structFields(t reflect.Type) []field {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.([]field)
	}

	fields := make([]field, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := sf.Name
		if tag, ok := sf.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		fields = append(fields, field{name: name, index: i})
	}

	actual, _ := fieldCache.LoadOrStore(t, fields)
	return actual.([]field)
}

// entityStruct resolves entity to its addressable struct value.
func entityStruct(entity any) (reflect.Value, error) {
	if entity == nil {
		return reflect.Value{}, ErrInvalidEntity
	}
	rv := reflect.ValueOf(entity)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return reflect.Value{}, ErrInvalidEntity
	}
	elem := rv.Elem()
	if elem.Kind() != reflect.Struct {
		return reflect.Value{}, ErrInvalidEntity
	}
	return elem, nil
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
