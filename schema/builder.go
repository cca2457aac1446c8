// Package schema accumulates an aggregate structural schema from sample
// documents and previously stored schema artifacts. The accumulation is
// opaque: callers feed values in and read a deterministic serialized form
// back out, and two accumulations are equal iff their serialized schemas
// are equal.
package schema

import (
	"encoding/json"
	"fmt"
)

// SchemaURI is written at the root of every serialized schema.
const SchemaURI = "http://json-schema.org/schema#"

// Builder incrementally accumulates documents and schemas. The zero value
// is not usable; call NewBuilder.
type Builder struct {
	root *node
}

func NewBuilder() *Builder {
	return &Builder{root: newNode()}
}

// AddObject incorporates one sample document into the accumulation.
func (b *Builder) AddObject(v any) {
	b.root.addValue(v)
}

// AddSchema incorporates a previously serialized schema, resuming
// accumulation from a stored artifact.
func (b *Builder) AddSchema(s map[string]any) error {
	return b.root.absorb(s)
}

// AddSchemaText parses and incorporates a serialized schema document.
func (b *Builder) AddSchemaText(text string) error {
	var s map[string]any
	if err := json.Unmarshal([]byte(text), &s); err != nil {
		return fmt.Errorf("parsing schema text: %w", err)
	}

	return b.AddSchema(s)
}

// ToJSON serializes the accumulated schema. The output is deterministic:
// equal accumulations always serialize identically.
func (b *Builder) ToJSON() string {
	out := b.root.emit()
	out["$schema"] = SchemaURI

	// Marshaling maps of plain values cannot fail, and encoding/json sorts
	// map keys, which keeps the serialization canonical.
	raw, err := json.Marshal(out)
	if err != nil {
		panic(fmt.Sprintf("schema serialization: %v", err))
	}

	return string(raw)
}

// Equal reports structural equality via the serialized schema.
func (b *Builder) Equal(other *Builder) bool {
	if other == nil {
		return false
	}

	return b.ToJSON() == other.ToJSON()
}

// bareTypes returns the sorted type names when every variant is a plain
// type with no format, properties, or items attached.
func bareTypes(variants []map[string]any) ([]string, bool) {
	out := make([]string, 0, len(variants))

	for _, v := range variants {
		if len(v) != 1 {
			return nil, false
		}

		typ, ok := v["type"].(string)
		if !ok {
			return nil, false
		}

		out = append(out, typ)
	}

	return out, true
}
