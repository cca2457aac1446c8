package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Decode parses UTF-8 JSON text into a document value. Numbers are decoded
// through json.Number so integers and floats keep distinct kinds instead of
// collapsing to float64.
func Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}

	if dec.More() {
		return nil, fmt.Errorf("decoding document: trailing data after value")
	}

	return fromJSON(raw), nil
}

// DecodeString is Decode over a string.
func DecodeString(data string) (any, error) {
	return Decode([]byte(data))
}

func fromJSON(v any) any {
	switch v := v.(type) {
	default:
		return v
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}

		f, _ := v.Float64()

		return f
	case []any:
		for i, item := range v {
			v[i] = fromJSON(item)
		}

		return v
	case map[string]any:
		for key, item := range v {
			v[key] = fromJSON(item)
		}

		return v
	}
}

// Encode renders a document value as canonical JSON: mapping keys sorted,
// temporal scalars rendered back to their lexical string forms. Two equal
// trees always produce identical bytes, which is what the round-trip check
// relies on.
func Encode(v any) ([]byte, error) {
	var b bytes.Buffer
	if err := encodeValue(&b, v, "", ""); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// EncodeIndent is Encode with two-space indentation, the layout used for
// fixture files and diagnostic dumps.
func EncodeIndent(v any) ([]byte, error) {
	var b bytes.Buffer
	if err := encodeValue(&b, v, "", "  "); err != nil {
		return nil, err
	}

	b.WriteByte('\n')

	return b.Bytes(), nil
}

func encodeValue(b *bytes.Buffer, v any, prefix, indent string) error {
	switch v := v.(type) {
	default:
		return fmt.Errorf("encoding document: unsupported type %T", v)
	case nil:
		b.WriteString("null")
	case bool, int64, float64, string:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding document: %w", err)
		}

		b.Write(raw)
	case Date:
		fmt.Fprintf(b, "%q", v.String())
	case Duration:
		fmt.Fprintf(b, "%q", v.String())
	case time.Time:
		fmt.Fprintf(b, "%q", FormatDateTime(v))
	case []any:
		return encodeSequence(b, v, prefix, indent)
	case map[string]any:
		return encodeMapping(b, v, prefix, indent)
	}

	return nil
}

func encodeSequence(b *bytes.Buffer, seq []any, prefix, indent string) error {
	if len(seq) == 0 {
		b.WriteString("[]")
		return nil
	}

	inner := prefix + indent

	b.WriteByte('[')

	for i, item := range seq {
		if i > 0 {
			b.WriteByte(',')
		}

		writeNewline(b, inner, indent)

		if err := encodeValue(b, item, inner, indent); err != nil {
			return err
		}
	}

	writeNewline(b, prefix, indent)
	b.WriteByte(']')

	return nil
}

func encodeMapping(b *bytes.Buffer, m map[string]any, prefix, indent string) error {
	if len(m) == 0 {
		b.WriteString("{}")
		return nil
	}

	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	inner := prefix + indent

	b.WriteByte('{')

	for i, key := range keys {
		if i > 0 {
			b.WriteByte(',')
		}

		writeNewline(b, inner, indent)

		raw, err := json.Marshal(key)
		if err != nil {
			return fmt.Errorf("encoding document key: %w", err)
		}

		b.Write(raw)
		b.WriteByte(':')

		if indent != "" {
			b.WriteByte(' ')
		}

		if err := encodeValue(b, m[key], inner, indent); err != nil {
			return err
		}
	}

	writeNewline(b, prefix, indent)
	b.WriteByte('}')

	return nil
}

func writeNewline(b *bytes.Buffer, prefix, indent string) {
	if indent == "" {
		return
	}

	b.WriteByte('\n')
	b.WriteString(prefix)
}

// FormatDateTime renders a datetime the way promoted values were written:
// RFC 3339, with the literal Z suffix for UTC and fractional seconds only
// when present.
func FormatDateTime(t time.Time) string {
	// RFC3339Nano trims trailing fractional zeros, which keeps values like
	// 00:00:00 free of a spurious fraction.
	return t.Format(time.RFC3339Nano)
}

// Equal reports deep equality of two document values via their canonical
// encodings.
func Equal(a, b any) bool {
	ea, err := Encode(a)
	if err != nil {
		return false
	}

	eb, err := Encode(b)
	if err != nil {
		return false
	}

	return bytes.Equal(ea, eb)
}

// Clone returns a deep copy of a document value. Scalars are immutable and
// shared; mappings and sequences are copied.
func Clone(v any) any {
	switch v := v.(type) {
	default:
		return v
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = Clone(item)
		}

		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = Clone(item)
		}

		return out
	}
}
