package valuetree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// DefaultIndent is the indentation used for formatted documents.
const DefaultIndent = "    "

var (
	// ErrNotObject is returned when the decoded root is not a JSON object.
	ErrNotObject = errors.New("valuetree: root value is not an object")
	// ErrTrailingData is returned when input continues after the root value.
	ErrTrailingData = errors.New("valuetree: unexpected data after root value")
)

// Decode parses data into a Tree. The root must be a JSON object. Numbers are
// kept as json.Number so their text survives a decode/encode cycle.
func Decode(data []byte) (*Tree, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("valuetree: empty input: %w", io.ErrUnexpectedEOF)
		}
		return nil, fmt.Errorf("valuetree: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, ErrNotObject
	}
	tree, err := decodeObject(dec)
	if err != nil {
		return nil, fmt.Errorf("valuetree: %w", err)
	}
	if _, err := dec.Token(); err == nil {
		return nil, ErrTrailingData
	} else if !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("valuetree: %w", err)
	}
	return tree, nil
}

// DecodeSections parses only the top level of a JSON object. Each value is
// kept as a json.RawMessage so sections that are not inspected can be written
// back without being re-encoded.
func DecodeSections(data []byte) (*Tree, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("valuetree: empty input: %w", io.ErrUnexpectedEOF)
		}
		return nil, fmt.Errorf("valuetree: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, ErrNotObject
	}
	sections := New()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("valuetree: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("valuetree: object key is %T, want string", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("valuetree: section %q: %w", key, err)
		}
		sections.Set(key, raw)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("valuetree: %w", err)
	}
	if _, err := dec.Token(); err == nil {
		return nil, ErrTrailingData
	} else if !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("valuetree: %w", err)
	}
	return sections, nil
}

func decodeObject(dec *json.Decoder) (*Tree, error) {
	tree := New()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is %T, want string", tok)
		}
		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		tree.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return tree, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		return decodeObject(dec)
	case '[':
		seq := []any{}
		for dec.More() {
			value, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			seq = append(seq, value)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return seq, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %q", delim)
	}
}

// Encode writes tree as formatted JSON using indent for each nesting level.
// An empty indent produces compact output.
func Encode(tree *Tree, indent string) ([]byte, error) {
	compact, err := encodeCompact(tree)
	if err != nil {
		return nil, err
	}
	return Indent(compact, indent)
}

// Indent re-indents compact JSON. Key order and string escapes are kept as is.
func Indent(compact []byte, indent string) ([]byte, error) {
	if indent == "" {
		return compact, nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", indent); err != nil {
		return nil, fmt.Errorf("valuetree: indent: %w", err)
	}
	return out.Bytes(), nil
}

// Compact encodes a single tree value without whitespace.
func Compact(value any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeValue(&buf, value); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeCompact(tree *Tree) ([]byte, error) {
	if tree == nil {
		tree = New()
	}
	return Compact(tree)
}

func writeValue(buf *bytes.Buffer, value any) error {
	switch typed := value.(type) {
	case nil:
		buf.WriteString("null")
	case *Tree:
		buf.WriteByte('{')
		first := true
		var err error
		typed.Range(func(key string, item any) bool {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			if err = writeScalar(buf, key); err != nil {
				return false
			}
			buf.WriteByte(':')
			err = writeValue(buf, item)
			return err == nil
		})
		if err != nil {
			return err
		}
		buf.WriteByte('}')
	case []any:
		buf.WriteByte('[')
		for i, item := range typed {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case json.Number:
		if typed == "" {
			buf.WriteByte('0')
			return nil
		}
		buf.WriteString(typed.String())
	case json.RawMessage:
		if err := json.Compact(buf, typed); err != nil {
			return fmt.Errorf("valuetree: raw value: %w", err)
		}
	default:
		return writeScalar(buf, typed)
	}
	return nil
}

func writeScalar(buf *bytes.Buffer, value any) error {
	var scratch bytes.Buffer
	enc := json.NewEncoder(&scratch)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return fmt.Errorf("valuetree: encode %T: %w", value, err)
	}
	buf.Write(bytes.TrimRight(scratch.Bytes(), "\n"))
	return nil
}
