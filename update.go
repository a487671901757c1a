package jsonio

import (
	"fmt"
	"reflect"

	"github.com/goliatone/go-jsonio/pkg/valuetree"
)

// Update merges tree into entity in place. Only fields present in both the
// entity and the tree are touched; the field's current value decides how the
// incoming value is read. Fields whose incoming value is not type-consistent
// are skipped, reported to the diagnostic sink, and returned.
//
// Nested entities and maps are updated in place, so pointers held elsewhere
// keep observing the same instances.
func (c *Codec) Update(entity any, tree *valuetree.Tree) ([]FieldMismatch, error) {
	return c.update(entity, tree, "")
}

// update is Update with the document path attached to diagnostics.
func (c *Codec) update(entity any, tree *valuetree.Tree, docPath string) ([]FieldMismatch, error) {
	target, err := entityStruct(entity)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, nil
	}
	u := updater{strictBooleans: c.cfg.strictBooleans}
	u.entity(target, tree, "")

	rootKey := ""
	if e, ok := entity.(Entity); ok {
		rootKey = e.RootKey()
	}
	for _, m := range u.mismatches {
		c.cfg.sink.Report(Diagnostic{
			Severity: SeverityWarning,
			Code:     CodeTypeMismatch,
			Path:     docPath,
			RootKey:  rootKey,
			Field:    m.Path,
			Message:  fmt.Sprintf("failed to update field %s", m.Path),
			Err:      m,
		})
	}
	return u.mismatches, nil
}

type updater struct {
	strictBooleans bool
	mismatches     []FieldMismatch
}

func (u *updater) mismatch(path string, want shape, incoming any, reason string) {
	u.mismatches = append(u.mismatches, FieldMismatch{
		Path:   path,
		Want:   want.String(),
		Got:    valuetree.TypeName(incoming),
		Reason: reason,
	})
}

func (u *updater) entity(v reflect.Value, tree *valuetree.Tree, path string) {
	for _, f := range structFields(v.Type()) {
		incoming, ok := tree.Get(f.name)
		if !ok {
			continue
		}
		u.value(v.Field(f.index), incoming, joinPath(path, f.name))
	}
}

// value updates dst, which must be settable.
func (u *updater) value(dst reflect.Value, incoming any, path string) {
	switch dst.Kind() {
	case reflect.Pointer:
		if dst.IsNil() {
			u.nilTarget(incoming, path)
			return
		}
		u.value(dst.Elem(), incoming, path)
		return
	case reflect.Interface:
		if dst.IsNil() {
			u.nilTarget(incoming, path)
			return
		}
		inner := dst.Elem()
		if inner.Kind() == reflect.Pointer {
			if inner.IsNil() {
				u.nilTarget(incoming, path)
				return
			}
			u.value(inner.Elem(), incoming, path)
			return
		}
		current := reflect.New(inner.Type()).Elem()
		current.Set(inner)
		u.value(current, incoming, path)
		dst.Set(current)
		return
	}

	switch s := typeShape(dst.Type()); s {
	case shapeEntity:
		tree, ok := incoming.(*valuetree.Tree)
		if !ok {
			u.mismatch(path, s, incoming, "")
			return
		}
		u.entity(dst, tree, path)
	case shapeMap:
		tree, ok := incoming.(*valuetree.Tree)
		if !ok {
			u.mismatch(path, s, incoming, "")
			return
		}
		u.mapEntries(dst, tree, path)
	case shapeNumber, shapeBool, shapeText, shapeSequence:
		converted, reason := convertValue(incoming, dst.Type(), u.strictBooleans)
		if reason != "" {
			u.mismatch(path, s, incoming, reason)
			return
		}
		dst.Set(converted)
	default:
		u.mismatch(path, s, incoming, fmt.Sprintf("type %s cannot be updated", dst.Type()))
	}
}

// mapEntries updates the entries already present in m. Entries only present
// in tree are ignored.
func (u *updater) mapEntries(m reflect.Value, tree *valuetree.Tree, path string) {
	if m.IsNil() {
		return
	}
	for _, key := range sortedKeys(m) {
		incoming, ok := tree.Get(key.String())
		if !ok {
			continue
		}
		entry := reflect.New(m.Type().Elem()).Elem()
		entry.Set(m.MapIndex(key))
		u.value(entry, incoming, joinPath(path, key.String()))
		m.SetMapIndex(key, entry)
	}
}

// nilTarget handles fields without a current value. The codec never
// allocates, so only an incoming null is accepted.
func (u *updater) nilTarget(incoming any, path string) {
	if incoming == nil {
		return
	}
	u.mismatch(path, shapeNil, incoming, "field has no current value")
}
