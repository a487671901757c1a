package valuetree

import "strings"

// FieldDescriptor describes a leaf path and the JSON type found there.
type FieldDescriptor struct {
	Path string
	Type string
}

// Describe flattens tree into dotted leaf paths in key order. Empty objects
// are reported as a single "object" leaf and sequences as "array<elem>".
func Describe(tree *Tree) []FieldDescriptor {
	fields := describeValue(tree, "")
	if fields == nil {
		return []FieldDescriptor{}
	}
	return fields
}

func describeValue(value any, prefix string) []FieldDescriptor {
	switch typed := value.(type) {
	case *Tree:
		if typed.Len() == 0 {
			if prefix == "" {
				return nil
			}
			return []FieldDescriptor{{Path: prefix, Type: "object"}}
		}
		var fields []FieldDescriptor
		typed.Range(func(key string, item any) bool {
			fields = append(fields, describeValue(item, joinPath(prefix, key))...)
			return true
		})
		return fields
	case []any:
		elem := "any"
		if len(typed) > 0 {
			elem = TypeName(typed[0])
		}
		return []FieldDescriptor{{Path: prefix, Type: "array<" + elem + ">"}}
	default:
		if prefix == "" {
			return nil
		}
		return []FieldDescriptor{{Path: prefix, Type: TypeName(typed)}}
	}
}

func joinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return strings.Join([]string{prefix, segment}, ".")
}
