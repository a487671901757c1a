package jsonio

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidEntity is returned when an entity is not a non-nil pointer to a struct.
	ErrInvalidEntity = errors.New("jsonio: entity must be a non-nil pointer to a struct")
	// ErrEmptyRootKey is returned when an entity declares an empty root key.
	ErrEmptyRootKey = errors.New("jsonio: entity root key is empty")
	// ErrNotFound reports that no document exists at the requested path.
	ErrNotFound = errors.New("jsonio: document not found")
	// ErrParse reports that a document exists but is not a valid JSON object.
	ErrParse = errors.New("jsonio: document parse failed")
	// ErrMissingRootKey reports that a document lacks the requested section.
	ErrMissingRootKey = errors.New("jsonio: root key not found")
	// ErrUnsupported reports an entity graph the codec cannot represent.
	ErrUnsupported = errors.New("jsonio: unsupported value")
)

// ParseError describes a document that could not be decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("jsonio: parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches ErrParse.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// UnsupportedError reports the field path where serialization gave up.
type UnsupportedError struct {
	Path   string
	Reason string
}

func (e *UnsupportedError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Path == "" {
		return fmt.Sprintf("jsonio: unsupported value: %s", e.Reason)
	}
	return fmt.Sprintf("jsonio: unsupported value at %q: %s", e.Path, e.Reason)
}

// Is matches ErrUnsupported.
func (e *UnsupportedError) Is(target error) bool {
	return target == ErrUnsupported
}

// FieldMismatch records one field skipped during an update because the
// incoming value was not type-consistent with the field's current value.
type FieldMismatch struct {
	Path   string
	Want   string
	Got    string
	Reason string
}

func (m FieldMismatch) Error() string {
	if m.Reason != "" {
		return fmt.Sprintf("jsonio: field %q: want %s, got %s: %s", m.Path, m.Want, m.Got, m.Reason)
	}
	return fmt.Sprintf("jsonio: field %q: want %s, got %s", m.Path, m.Want, m.Got)
}
