package schema

import (
	"fmt"
	"sort"

	"github.com/ryn-cx/gapi/document"
)

// Scalar type names used in emitted schemas.
const (
	typeNull   = "null"
	typeBool   = "boolean"
	typeInt    = "integer"
	typeNumber = "number"
	typeString = "string"
	typeObject = "object"
	typeArray  = "array"

	formatDate     = "date"
	formatDateTime = "date-time"
	formatDuration = "duration"
)

// descriptor identifies one accumulated value shape: a primitive type name
// plus an optional string format for the promoted temporal types.
type descriptor struct {
	typ    string
	format string
}

// node is the accumulation state for one position in the document tree.
// Objects merge into a single object descriptor with per-property child
// nodes, arrays into a single items node, everything else into a set of
// scalar descriptors.
type node struct {
	scalars map[descriptor]bool

	hasObject  bool
	properties map[string]*node
	// required is the intersection of keys across every accumulated
	// object; nil until the first object is seen.
	required map[string]bool

	hasArray bool
	items    *node
}

func newNode() *node {
	return &node{scalars: map[descriptor]bool{}}
}

func (n *node) addValue(v any) {
	switch document.KindOf(v) {
	case document.KindNull:
		n.scalars[descriptor{typ: typeNull}] = true
	case document.KindBool:
		n.scalars[descriptor{typ: typeBool}] = true
	case document.KindInt:
		n.scalars[descriptor{typ: typeInt}] = true
	case document.KindFloat:
		n.scalars[descriptor{typ: typeNumber}] = true
	case document.KindString:
		n.scalars[descriptor{typ: typeString}] = true
	case document.KindDate:
		n.scalars[descriptor{typ: typeString, format: formatDate}] = true
	case document.KindDateTime:
		n.scalars[descriptor{typ: typeString, format: formatDateTime}] = true
	case document.KindDuration:
		n.scalars[descriptor{typ: typeString, format: formatDuration}] = true
	case document.KindMapping:
		n.addObject(v.(map[string]any))
	case document.KindSequence:
		n.addArray(v.([]any))
	}
}

func (n *node) addObject(m map[string]any) {
	if n.properties == nil {
		n.properties = map[string]*node{}
	}

	for key, value := range m {
		child, ok := n.properties[key]
		if !ok {
			child = newNode()
			n.properties[key] = child
		}

		child.addValue(value)
	}

	if !n.hasObject {
		n.required = map[string]bool{}
		for key := range m {
			n.required[key] = true
		}
	} else {
		for key := range n.required {
			if _, ok := m[key]; !ok {
				delete(n.required, key)
			}
		}
	}

	n.hasObject = true
}

func (n *node) addArray(seq []any) {
	n.hasArray = true

	for _, item := range seq {
		if n.items == nil {
			n.items = newNode()
		}

		n.items.addValue(item)
	}
}

// emit renders the node as a plain schema value suitable for JSON
// marshaling. Map keys are emitted through json.Marshal which sorts them,
// so the output is deterministic.
func (n *node) emit() map[string]any {
	variants := n.variants()

	switch len(variants) {
	case 0:
		return map[string]any{}
	case 1:
		return variants[0]
	}

	// All bare types collapse into a type list; any format or container
	// structure forces an anyOf.
	if bare, ok := bareTypes(variants); ok {
		return map[string]any{"type": bare}
	}

	anyOf := make([]any, len(variants))
	for i, v := range variants {
		anyOf[i] = v
	}

	return map[string]any{"anyOf": anyOf}
}

// variants lists every accumulated shape in deterministic order.
func (n *node) variants() []map[string]any {
	descs := make([]descriptor, 0, len(n.scalars))
	for d := range n.scalars {
		descs = append(descs, d)
	}

	sort.Slice(descs, func(i, j int) bool {
		if descs[i].typ != descs[j].typ {
			return descs[i].typ < descs[j].typ
		}

		return descs[i].format < descs[j].format
	})

	var out []map[string]any

	for _, d := range descs {
		v := map[string]any{"type": d.typ}
		if d.format != "" {
			v["format"] = d.format
		}

		out = append(out, v)
	}

	if n.hasObject {
		out = append(out, n.emitObject())
	}

	if n.hasArray {
		out = append(out, n.emitArray())
	}

	return out
}

func (n *node) emitObject() map[string]any {
	obj := map[string]any{"type": typeObject}

	if len(n.properties) > 0 {
		props := map[string]any{}
		for key, child := range n.properties {
			props[key] = child.emit()
		}

		obj["properties"] = props
	}

	if len(n.required) > 0 {
		required := make([]string, 0, len(n.required))
		for key := range n.required {
			required = append(required, key)
		}

		sort.Strings(required)
		obj["required"] = required
	}

	return obj
}

func (n *node) emitArray() map[string]any {
	arr := map[string]any{"type": typeArray}

	if n.items != nil {
		arr["items"] = n.items.emit()
	}

	return arr
}

// absorb merges a previously emitted schema value back into the node. It
// accepts the shapes this package emits plus single-type shorthand, which
// is enough to resume accumulation from a stored schema artifact.
func (n *node) absorb(s map[string]any) error {
	if anyOf, ok := s["anyOf"]; ok {
		variants, ok := anyOf.([]any)
		if !ok {
			return fmt.Errorf("schema anyOf must be a sequence, got %T", anyOf)
		}

		for _, variant := range variants {
			vm, ok := variant.(map[string]any)
			if !ok {
				return fmt.Errorf("schema anyOf entry must be a mapping, got %T", variant)
			}

			if err := n.absorb(vm); err != nil {
				return err
			}
		}

		return nil
	}

	switch typ := s["type"].(type) {
	case nil:
		// Empty schema contributes nothing.
		return nil
	case string:
		return n.absorbTyped(typ, s)
	case []any:
		for _, t := range typ {
			name, ok := t.(string)
			if !ok {
				return fmt.Errorf("schema type list entry must be a string, got %T", t)
			}

			if err := n.absorbTyped(name, s); err != nil {
				return err
			}
		}

		return nil
	default:
		return fmt.Errorf("schema type must be a string or list, got %T", typ)
	}
}

func (n *node) absorbTyped(typ string, s map[string]any) error {
	switch typ {
	default:
		return fmt.Errorf("unknown schema type %q", typ)
	case typeNull, typeBool, typeInt, typeNumber:
		n.scalars[descriptor{typ: typ}] = true
	case typeString:
		format, _ := s["format"].(string)
		n.scalars[descriptor{typ: typeString, format: format}] = true
	case typeObject:
		return n.absorbObject(s)
	case typeArray:
		return n.absorbArray(s)
	}

	return nil
}

func (n *node) absorbObject(s map[string]any) error {
	if n.properties == nil {
		n.properties = map[string]*node{}
	}

	if props, ok := s["properties"].(map[string]any); ok {
		for key, value := range props {
			child, ok := n.properties[key]
			if !ok {
				child = newNode()
				n.properties[key] = child
			}

			vm, ok := value.(map[string]any)
			if !ok {
				return fmt.Errorf("schema property %q must be a mapping, got %T", key, value)
			}

			if err := child.absorb(vm); err != nil {
				return err
			}
		}
	}

	absorbed := map[string]bool{}

	if required, ok := s["required"].([]any); ok {
		for _, key := range required {
			name, ok := key.(string)
			if !ok {
				return fmt.Errorf("schema required entry must be a string, got %T", key)
			}

			absorbed[name] = true
		}
	}

	if !n.hasObject {
		n.required = absorbed
	} else {
		for key := range n.required {
			if !absorbed[key] {
				delete(n.required, key)
			}
		}
	}

	n.hasObject = true

	return nil
}

func (n *node) absorbArray(s map[string]any) error {
	n.hasArray = true

	if items, ok := s["items"].(map[string]any); ok {
		if n.items == nil {
			n.items = newNode()
		}

		return n.items.absorb(items)
	}

	return nil
}
