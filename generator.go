// Package gapi keeps a generated, strongly typed data-model source file
// synchronized with the schema inferred from sample documents, and layers
// caller-specified textual customizations onto the generated code.
package gapi

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ryn-cx/gapi/convert"
	"github.com/ryn-cx/gapi/document"
	"github.com/ryn-cx/gapi/fixture"
	"github.com/ryn-cx/gapi/internal/format"
	"github.com/ryn-cx/gapi/internal/modelgen"
	"github.com/ryn-cx/gapi/internal/patch"
	"github.com/ryn-cx/gapi/schema"
)

// Config controls how the generator accumulates documents and renders
// model text.
type Config struct {
	// ClassName names the root generated class. It is normalized to
	// PascalCase, so "test_model" becomes "TestModel". Empty uses the
	// generator default.
	ClassName string
	// Promote runs value promotion on every added document.
	Promote bool
	// SnakeCaseFields renames generated fields to snake_case with an
	// alias back to the original key.
	SnakeCaseFields bool
	// ForbidExtra makes generated classes reject unknown fields.
	ForbidExtra bool
	// AwareDatetime selects the aware datetime representation.
	AwareDatetime bool
}

func DefaultConfig() Config {
	return Config{
		Promote:         true,
		SnakeCaseFields: true,
		ForbidExtra:     true,
		AwareDatetime:   true,
	}
}

// Generator accumulates sample documents and schemas and produces the
// generated, customized model source. It owns two derived caches, the
// serialized schema text and the model text, both invalidated by any
// call that adds a document, adds a schema, or changes the customization
// set.
type Generator struct {
	cfg       Config
	className string
	builder   *schema.Builder
	formatter *format.Tool

	cachedSchema *string
	cachedModel  *string

	replacementFields []CustomField
	serializers       []CustomSerializer
	imports           []string
}

// New creates a Generator with a fresh accumulation.
func New(cfg Config) *Generator {
	return NewWithBuilder(cfg, schema.NewBuilder())
}

// NewWithBuilder creates a Generator over an existing accumulation.
func NewWithBuilder(cfg Config, builder *schema.Builder) *Generator {
	className := ""
	if cfg.ClassName != "" {
		className = modelgen.PascalCase(cfg.ClassName)
	}

	return &Generator{
		cfg:       cfg,
		className: className,
		builder:   builder,
		formatter: format.Detect(),
	}
}

// Builder exposes the underlying accumulation, used by the minimizer and
// for equality checks.
func (g *Generator) Builder() *schema.Builder {
	return g.builder
}

func (g *Generator) invalidate() {
	g.cachedSchema = nil
	g.cachedModel = nil
}

// AddObject incorporates one sample document, promoting string leaves
// first unless promotion is disabled.
func (g *Generator) AddObject(v any) {
	g.invalidate()

	if g.cfg.Promote {
		v = convert.All(v)
	}

	g.builder.AddObject(v)
}

// AddObjectText incorporates a JSON-encoded sample document.
func (g *Generator) AddObjectText(text string) error {
	v, err := document.DecodeString(text)
	if err != nil {
		return err
	}

	g.AddObject(v)

	return nil
}

// AddObjectFile incorporates a sample document from a file.
func (g *Generator) AddObjectFile(path string) error {
	v, err := fixture.Load(path)
	if err != nil {
		return err
	}

	g.AddObject(v)

	return nil
}

// AddObjectsFromDir incorporates every *.json document directly inside a
// directory, in name order.
func (g *Generator) AddObjectsFromDir(dir string) error {
	files, err := fixture.ListDir(dir)
	if err != nil {
		return err
	}

	for _, path := range files {
		if err := g.AddObjectFile(path); err != nil {
			return err
		}
	}

	return nil
}

// AddSchema incorporates a previously serialized schema.
func (g *Generator) AddSchema(s map[string]any) error {
	g.invalidate()

	return g.builder.AddSchema(s)
}

// AddSchemaText incorporates serialized schema text.
func (g *Generator) AddSchemaText(text string) error {
	g.invalidate()

	return g.builder.AddSchemaText(text)
}

// AddSchemaFile incorporates a schema artifact from disk. A missing file
// is ignored when allowMissing is set, so a first run can start from
// nothing.
func (g *Generator) AddSchemaFile(path string, allowMissing bool) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if allowMissing {
			return nil
		}

		return fmt.Errorf("%w: schema file %s does not exist", ErrStorage, path)
	}

	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", ErrStorage, path, err)
	}

	return g.AddSchemaText(string(data))
}

// SchemaJSON returns the serialized schema for the current accumulation,
// cached until the next mutating call.
func (g *Generator) SchemaJSON() string {
	if g.cachedSchema != nil {
		return *g.cachedSchema
	}

	text := g.builder.ToJSON()
	g.cachedSchema = &text

	return text
}

// WriteSchemaFile writes the serialized schema artifact, creating parent
// directories as needed.
func (g *Generator) WriteSchemaFile(path string) error {
	return writeText(path, g.SchemaJSON())
}

// ModelText generates the model source, applies the customization set in
// fixed order, formats the result, and caches it.
func (g *Generator) ModelText() (string, error) {
	if g.cachedModel != nil {
		return *g.cachedModel, nil
	}

	text, err := modelgen.Generate(g.SchemaJSON(), modelgen.Config{
		ClassName:       g.className,
		SnakeCaseFields: g.cfg.SnakeCaseFields,
		ForbidExtra:     g.cfg.ForbidExtra,
		AwareDatetime:   g.cfg.AwareDatetime,
	})
	if err != nil {
		return "", err
	}

	text, err = g.applyCustomizations(text)
	if err != nil {
		return "", err
	}

	text, err = g.formatter.Format(text)
	if err != nil {
		return "", err
	}

	g.cachedModel = &text

	return text, nil
}

// WriteModelFile generates and writes the customized model source.
func (g *Generator) WriteModelFile(path string) error {
	text, err := g.ModelText()
	if err != nil {
		return err
	}

	return writeText(path, text)
}

// applyCustomizations edits generated text in the fixed order: field
// replacements, serializer injections, then import injections.
func (g *Generator) applyCustomizations(text string) (string, error) {
	if len(g.serializers) > 0 {
		// The serializer blocks need field_serializer and Any in scope.
		text = strings.Replace(text,
			"from pydantic import ",
			"from typing import Any\nfrom pydantic import field_serializer, ", 1)
	}

	doc := patch.NewDocument(text)

	for _, f := range g.replacementFields {
		if err := doc.ReplaceField(f.ClassName, f.FieldName, f.NewField); err != nil {
			return "", err
		}
	}

	for _, s := range g.serializers {
		if err := doc.InjectSerializer(s.ClassName, s.FieldName, s.SerializerCode); err != nil {
			return "", err
		}
	}

	doc.InjectImports(g.imports)

	return doc.Text(), nil
}

// AddReplacementField registers a field replacement. Each line of the new
// field text is indented by the generator's field indentation unit.
func (g *Generator) AddReplacementField(class, field, newField string) {
	g.cachedModel = nil

	lines := strings.Split(newField, "\n")
	for i, line := range lines {
		lines[i] = "    " + line
	}

	g.replacementFields = append(g.replacementFields, CustomField{
		ClassName: class,
		FieldName: field,
		NewField:  strings.Join(lines, "\n"),
	})
}

// AddSerializer registers a serializer injection for a field. An empty
// class broadcasts to every class containing the field. The code lines
// form the serializer body.
func (g *Generator) AddSerializer(class, field string, codeLines ...string) {
	g.cachedModel = nil

	code := fmt.Sprintf(
		"    @field_serializer(\"%s\")\n"+
			"    def serialize_%s(self, value: Any, _info: Any) -> Any:\n"+
			"        %s",
		field, field, strings.Join(codeLines, "\n        "))

	g.serializers = append(g.serializers, CustomSerializer{
		ClassName:      class,
		FieldName:      field,
		SerializerCode: code,
	})
}

// AddImport registers a raw import line injected after the banner marker.
func (g *Generator) AddImport(line string) {
	g.cachedModel = nil

	g.imports = append(g.imports, line)
}

// ApplyCustomizations registers a whole customization set.
func (g *Generator) ApplyCustomizations(c *Customizations) {
	if c == nil {
		return
	}

	for _, f := range c.CustomFields {
		g.AddReplacementField(f.ClassName, f.FieldName, f.NewField)
	}

	for _, s := range c.CustomSerializers {
		g.AddSerializer(s.ClassName, s.FieldName, strings.Split(s.SerializerCode, "\n")...)
	}

	for _, line := range c.CustomImports {
		g.AddImport(line)
	}
}

func writeText(path, text string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: creating %s: %v", ErrStorage, dir, err)
		}
	}

	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrStorage, path, err)
	}

	return nil
}
