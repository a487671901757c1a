package jsonio

import (
	"fmt"
	"reflect"
	"time"

	"github.com/goliatone/go-jsonio/pkg/valuetree"
)

var timeType = reflect.TypeFor[time.Time]()

// SectionSchema describes the section Save writes for entity as an OpenAPI 3
// schema object. Properties follow field order. Types the codec rejects fail
// with *UnsupportedError.
func SectionSchema(entity Entity) (*valuetree.Tree, error) {
	rv, err := entityStruct(entity)
	if err != nil {
		return nil, err
	}
	b := schemaBuilder{visiting: map[reflect.Type]struct{}{}}
	schema, err := b.object(rv.Type(), "")
	if err != nil {
		return nil, err
	}
	schema.Set("x-root-key", entity.RootKey())
	return schema, nil
}

// DocumentSchema describes a document shared by entities. Each entity
// contributes the property named by its root key; other sections are allowed
// since saves keep them.
func DocumentSchema(entities ...Entity) (*valuetree.Tree, error) {
	properties := valuetree.New()
	for _, entity := range entities {
		if entity == nil {
			return nil, ErrInvalidEntity
		}
		rootKey := entity.RootKey()
		if rootKey == "" {
			return nil, ErrEmptyRootKey
		}
		if properties.Has(rootKey) {
			return nil, fmt.Errorf("jsonio: root key %q declared twice", rootKey)
		}
		section, err := SectionSchema(entity)
		if err != nil {
			return nil, err
		}
		properties.Set(rootKey, section)
	}

	doc := valuetree.New()
	doc.Set("type", "object")
	doc.Set("properties", properties)
	doc.Set("additionalProperties", true)
	return doc, nil
}

type schemaBuilder struct {
	visiting map[reflect.Type]struct{}
}

func (b schemaBuilder) build(t reflect.Type, path string) (*valuetree.Tree, error) {
	nullable := false
	for t.Kind() == reflect.Pointer {
		nullable = true
		t = t.Elem()
	}

	var (
		schema *valuetree.Tree
		err    error
	)
	switch typeShape(t) {
	case shapeDynamic:
		schema = valuetree.New()
		nullable = true
	case shapeBool:
		schema = typed("boolean")
	case shapeNumber:
		schema = numberSchema(t)
	case shapeText:
		schema = typed("string")
		if t == timeType {
			schema.Set("format", "date-time")
		}
	case shapeSequence:
		schema, err = b.sequence(t, path)
	case shapeMap:
		schema, err = b.mapping(t, path)
	case shapeEntity:
		schema, err = b.object(t, path)
	default:
		return nil, &UnsupportedError{Path: path, Reason: fmt.Sprintf("type %s has no JSON form", t)}
	}
	if err != nil {
		return nil, err
	}
	if nullable {
		schema.Set("nullable", true)
	}
	return schema, nil
}

func (b schemaBuilder) object(t reflect.Type, path string) (*valuetree.Tree, error) {
	schema := typed("object")
	// Recursive types stop at the first repeat; the data itself is finite.
	if _, seen := b.visiting[t]; seen {
		return schema, nil
	}
	b.visiting[t] = struct{}{}
	defer delete(b.visiting, t)

	properties := valuetree.New()
	for _, f := range structFields(t) {
		child, err := b.build(t.Field(f.index).Type, joinPath(path, f.name))
		if err != nil {
			return nil, err
		}
		properties.Set(f.name, child)
	}
	schema.Set("properties", properties)
	return schema, nil
}

func (b schemaBuilder) mapping(t reflect.Type, path string) (*valuetree.Tree, error) {
	child, err := b.build(t.Elem(), joinPath(path, "*"))
	if err != nil {
		return nil, err
	}
	schema := typed("object")
	schema.Set("additionalProperties", child)
	return schema, nil
}

func (b schemaBuilder) sequence(t reflect.Type, path string) (*valuetree.Tree, error) {
	switch typeShape(t.Elem()) {
	case shapeMap, shapeEntity:
		return nil, &UnsupportedError{Path: path, Reason: fmt.Sprintf("sequence of %s", t.Elem())}
	}
	items, err := b.build(t.Elem(), path+"[]")
	if err != nil {
		return nil, err
	}
	schema := typed("array")
	schema.Set("items", items)
	if t.Kind() == reflect.Array {
		schema.Set("minItems", t.Len())
		schema.Set("maxItems", t.Len())
	}
	return schema, nil
}

func numberSchema(t reflect.Type) *valuetree.Tree {
	switch t.Kind() {
	case reflect.Float32:
		schema := typed("number")
		schema.Set("format", "float")
		return schema
	case reflect.Float64:
		schema := typed("number")
		schema.Set("format", "double")
		return schema
	case reflect.Int32, reflect.Int16, reflect.Int8:
		schema := typed("integer")
		schema.Set("format", "int32")
		return schema
	case reflect.Int, reflect.Int64:
		schema := typed("integer")
		schema.Set("format", "int64")
		return schema
	default:
		schema := typed("integer")
		schema.Set("minimum", 0)
		return schema
	}
}

func typed(name string) *valuetree.Tree {
	schema := valuetree.New()
	schema.Set("type", name)
	return schema
}
