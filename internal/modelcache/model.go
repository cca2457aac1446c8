// Package modelcache compiles schema text into strict structural
// validators and keeps the current compiled definition per entity, giving
// the validate-repair workflow an explicit "recompile and swap the current
// type definition" interface.
package modelcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/ryn-cx/gapi/document"
)

// ErrMismatch marks a value that does not conform to the compiled type
// definition.
var ErrMismatch = errors.New("value does not match model")

// Model is one compiled type definition. It is immutable after Compile.
type Model struct {
	name       string
	schemaText string
	root       *compiled
}

// Compile builds a strict validator from serialized schema text.
func Compile(name, schemaText string) (*Model, error) {
	var s map[string]any
	if err := json.Unmarshal([]byte(schemaText), &s); err != nil {
		return nil, fmt.Errorf("compiling model %s: %w", name, err)
	}

	root, err := compileNode(s)
	if err != nil {
		return nil, fmt.Errorf("compiling model %s: %w", name, err)
	}

	return &Model{name: name, schemaText: schemaText, root: root}, nil
}

func (m *Model) Name() string { return m.name }

// SchemaText returns the schema the model was compiled from.
func (m *Model) SchemaText() string { return m.schemaText }

// Validate checks a raw decoded document against the type definition and
// returns the typed value: temporal strings are parsed into their semantic
// types, everything else is kept as-is. Unknown object fields and missing
// required fields are rejected.
func (m *Model) Validate(v any) (any, error) {
	return m.root.validate(v, "$")
}

// compiled is one validator node: an ordered list of accepted variants.
type compiled struct {
	variants []variant
}

type variant struct {
	typ    string
	format string

	// object
	properties map[string]*compiled
	required   map[string]bool

	// array
	items *compiled
}

func compileNode(s map[string]any) (*compiled, error) {
	node := &compiled{}

	if anyOf, ok := s["anyOf"].([]any); ok {
		for _, entry := range anyOf {
			es, ok := entry.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("schema anyOf entry must be a mapping, got %T", entry)
			}

			sub, err := compileNode(es)
			if err != nil {
				return nil, err
			}

			node.variants = append(node.variants, sub.variants...)
		}

		return node, nil
	}

	switch typ := s["type"].(type) {
	case string:
		v, err := compileVariant(typ, s)
		if err != nil {
			return nil, err
		}

		node.variants = append(node.variants, v)
	case []any:
		for _, t := range typ {
			name, ok := t.(string)
			if !ok {
				return nil, fmt.Errorf("schema type list entry must be a string, got %T", t)
			}

			v, err := compileVariant(name, s)
			if err != nil {
				return nil, err
			}

			node.variants = append(node.variants, v)
		}
	default:
		return nil, fmt.Errorf("schema type must be a string or list, got %T", typ)
	}

	return node, nil
}

func compileVariant(typ string, s map[string]any) (variant, error) {
	v := variant{typ: typ}

	switch typ {
	default:
		return variant{}, fmt.Errorf("unknown schema type %q", typ)
	case "null", "boolean", "integer", "number":
	case "string":
		v.format, _ = s["format"].(string)
	case "object":
		v.properties = map[string]*compiled{}
		v.required = map[string]bool{}

		if props, ok := s["properties"].(map[string]any); ok {
			for key, value := range props {
				ps, ok := value.(map[string]any)
				if !ok {
					return variant{}, fmt.Errorf("schema property %q must be a mapping, got %T", key, value)
				}

				child, err := compileNode(ps)
				if err != nil {
					return variant{}, err
				}

				v.properties[key] = child
			}
		}

		if required, ok := s["required"].([]any); ok {
			for _, key := range required {
				if name, ok := key.(string); ok {
					v.required[name] = true
				}
			}
		}
	case "array":
		if items, ok := s["items"].(map[string]any); ok {
			child, err := compileNode(items)
			if err != nil {
				return variant{}, err
			}

			v.items = child
		}
	}

	return v, nil
}

func (c *compiled) validate(v any, path string) (any, error) {
	var firstErr error

	for _, variant := range c.variants {
		typed, err := variant.validate(v, path)
		if err == nil {
			return typed, nil
		}

		if firstErr == nil {
			firstErr = err
		}
	}

	if firstErr == nil {
		firstErr = fmt.Errorf("%w: %s has no accepted type", ErrMismatch, path)
	}

	return nil, firstErr
}

var strictDateRE = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func (va variant) validate(v any, path string) (any, error) {
	switch va.typ {
	default:
		return nil, fmt.Errorf("%w: %s has unknown type %q", ErrMismatch, path, va.typ)
	case "null":
		if v == nil {
			return nil, nil
		}
	case "boolean":
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case "integer":
		if n, ok := v.(int64); ok {
			return n, nil
		}
	case "number":
		switch n := v.(type) {
		case float64:
			return n, nil
		case int64:
			return n, nil
		}
	case "string":
		if s, ok := v.(string); ok {
			return validateString(s, va.format, path)
		}
	case "object":
		if m, ok := v.(map[string]any); ok {
			return va.validateObject(m, path)
		}
	case "array":
		if seq, ok := v.([]any); ok {
			return va.validateArray(seq, path)
		}
	}

	return nil, fmt.Errorf("%w: %s is not %s", ErrMismatch, path, va.typ)
}

func validateString(s, format, path string) (any, error) {
	switch format {
	default:
		return s, nil
	case "date":
		if !strictDateRE.MatchString(s) {
			return nil, fmt.Errorf("%w: %s is not a date", ErrMismatch, path)
		}

		d, err := document.ParseDate(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %s is not a date", ErrMismatch, path)
		}

		return d, nil
	case "date-time":
		t, err := parseDateTime(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %s is not a datetime", ErrMismatch, path)
		}

		return t, nil
	case "duration":
		d, err := document.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %s is not a duration", ErrMismatch, path)
		}

		return d, nil
	}
}

func (va variant) validateObject(m map[string]any, path string) (any, error) {
	// Strict toward unknown fields, matching the generated models.
	for key := range m {
		if _, ok := va.properties[key]; !ok {
			return nil, fmt.Errorf("%w: %s has unknown field %q", ErrMismatch, path, key)
		}
	}

	for key := range va.required {
		if _, ok := m[key]; !ok {
			return nil, fmt.Errorf("%w: %s is missing required field %q", ErrMismatch, path, key)
		}
	}

	out := make(map[string]any, len(m))

	for key, value := range m {
		typed, err := va.properties[key].validate(value, path+"."+key)
		if err != nil {
			return nil, err
		}

		out[key] = typed
	}

	return out, nil
}

func (va variant) validateArray(seq []any, path string) (any, error) {
	out := make([]any, len(seq))

	for i, item := range seq {
		if va.items == nil {
			// Nothing was ever accumulated for the items, so any element
			// is a mismatch.
			return nil, fmt.Errorf("%w: %s[%d] has no accepted item type", ErrMismatch, path, i)
		}

		typed, err := va.items.validate(item, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}

		out[i] = typed
	}

	return out, nil
}

func parseDateTime(s string) (time.Time, error) {
	layouts := []string{time.RFC3339, "2006-01-02T15:04:05-0700"}

	var lastErr error

	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}

		lastErr = err
	}

	return time.Time{}, lastErr
}
