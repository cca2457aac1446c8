package gapi

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryn-cx/gapi/internal/format"
)

// newGenerator pins the formatter to the whitespace fallback so rendered
// text does not depend on an external binary being installed.
func newGenerator(cfg Config) *Generator {
	g := New(cfg)
	g.formatter = &format.Tool{}

	return g
}

func sampleGenerator(t *testing.T) *Generator {
	t.Helper()

	g := newGenerator(DefaultConfig())
	g.AddObject(map[string]any{
		"value":      "x",
		"created_at": "2020-01-01T10:00:00Z",
	})

	return g
}

func TestModelTextDefaults(t *testing.T) {
	g := sampleGenerator(t)

	text, err := g.ModelText()
	require.NoError(t, err)

	expected := `# generated by datamodel-codegen:
#   filename:  <stdin>

from __future__ import annotations

from pydantic import AwareDatetime, BaseModel, ConfigDict


class Model(BaseModel):
    model_config = ConfigDict(
        extra='forbid',
    )
    created_at: AwareDatetime
    value: str
`
	assert.Equal(t, expected, text, spew.Sdump(text))
}

func TestClassNameNormalizedToPascalCase(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ClassName = "test_model"

	g := newGenerator(cfg)
	g.AddObject(map[string]any{"value": "x"})

	text, err := g.ModelText()
	require.NoError(t, err)
	assert.Contains(t, text, "class TestModel(BaseModel):")
}

func TestReplacementFieldRewritesDeclaration(t *testing.T) {
	g := sampleGenerator(t)
	g.AddReplacementField("Model", "value", "value: int")

	text, err := g.ModelText()
	require.NoError(t, err)
	assert.Contains(t, text, "\n    value: int\n")
	assert.NotContains(t, text, "value: str")
}

func TestReplacementFieldMultiline(t *testing.T) {
	g := sampleGenerator(t)
	g.AddReplacementField("Model", "value",
		"value: int = Field(\n    ...,\n    alias='value',\n)")

	text, err := g.ModelText()
	require.NoError(t, err)
	assert.Contains(t, text,
		"    value: int = Field(\n        ...,\n        alias='value',\n    )")
}

func TestReplacementFieldUnknownClass(t *testing.T) {
	g := sampleGenerator(t)
	g.AddReplacementField("Missing", "value", "value: int")

	_, err := g.ModelText()
	assert.ErrorIs(t, err, ErrClassNotFound)
}

func TestReplacementFieldUnknownField(t *testing.T) {
	g := sampleGenerator(t)
	g.AddReplacementField("Model", "missing", "missing: int")

	_, err := g.ModelText()
	assert.ErrorIs(t, err, ErrFieldNotFound)
}

func TestSerializerInjection(t *testing.T) {
	g := sampleGenerator(t)
	g.AddSerializer("Model", "created_at", "return value.isoformat()")

	text, err := g.ModelText()
	require.NoError(t, err)

	assert.Contains(t, text, "from typing import Any\n")
	assert.Contains(t, text,
		"from pydantic import field_serializer, AwareDatetime, BaseModel, ConfigDict")
	assert.Contains(t, text,
		"class Model(BaseModel):\n"+
			"    @field_serializer(\"created_at\")\n"+
			"    def serialize_created_at(self, value: Any, _info: Any) -> Any:\n"+
			"        return value.isoformat()\n")
}

func TestSerializerBroadcast(t *testing.T) {
	g := newGenerator(DefaultConfig())
	g.AddObject(map[string]any{
		"value":  "x",
		"nested": map[string]any{"value": "y"},
	})
	g.AddSerializer("", "value", "return str(value)")

	text, err := g.ModelText()
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(text, "@field_serializer(\"value\")"))
	assert.Contains(t, text, "class Nested(BaseModel):\n    @field_serializer")
	assert.Contains(t, text, "class Model(BaseModel):\n    @field_serializer")
}

func TestImportInjectedAfterBanner(t *testing.T) {
	g := sampleGenerator(t)
	g.AddImport("import orjson")

	text, err := g.ModelText()
	require.NoError(t, err)
	assert.Contains(t, text, "#   filename:  <stdin>\nimport orjson\n")
}

func TestCachesInvalidatedByMutation(t *testing.T) {
	g := sampleGenerator(t)

	first, err := g.ModelText()
	require.NoError(t, err)
	require.NotNil(t, g.cachedModel)
	require.NotNil(t, g.cachedSchema)

	g.AddObject(map[string]any{"value": "x", "count": int64(1)})
	assert.Nil(t, g.cachedModel)
	assert.Nil(t, g.cachedSchema)

	second, err := g.ModelText()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.Contains(t, second, "count: int | None = None")
}

func TestCachesInvalidatedByCustomization(t *testing.T) {
	g := sampleGenerator(t)

	_, err := g.ModelText()
	require.NoError(t, err)

	g.AddImport("import orjson")
	assert.Nil(t, g.cachedModel)
}

func TestSchemaFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.json")

	g := sampleGenerator(t)
	require.NoError(t, g.WriteSchemaFile(path))

	reloaded := newGenerator(DefaultConfig())
	require.NoError(t, reloaded.AddSchemaFile(path, false))
	assert.Equal(t, g.SchemaJSON(), reloaded.SchemaJSON())
}

func TestAddSchemaFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.json")

	g := newGenerator(DefaultConfig())
	assert.NoError(t, g.AddSchemaFile(path, true))
	assert.ErrorIs(t, g.AddSchemaFile(path, false), ErrStorage)
}

func TestWriteModelFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models", "model.py")

	g := sampleGenerator(t)
	require.NoError(t, g.WriteModelFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	text, err := g.ModelText()
	require.NoError(t, err)
	assert.Equal(t, text, string(data))
}

func TestParseCustomizations(t *testing.T) {
	data := []byte(`
custom_fields:
  - class_name: Model
    field_name: value
    new_field: "value: int"
custom_serializers:
  - field_name: created_at
    serializer_code: return value.isoformat()
custom_imports:
  - import orjson
`)

	c, err := ParseCustomizations(data)
	require.NoError(t, err)

	require.Len(t, c.CustomFields, 1)
	assert.Equal(t, "Model", c.CustomFields[0].ClassName)
	assert.Equal(t, "value: int", c.CustomFields[0].NewField)

	require.Len(t, c.CustomSerializers, 1)
	assert.Empty(t, c.CustomSerializers[0].ClassName)

	assert.Equal(t, []string{"import orjson"}, c.CustomImports)
}

func TestApplyCustomizationsSet(t *testing.T) {
	g := sampleGenerator(t)
	g.ApplyCustomizations(&Customizations{
		CustomFields: []CustomField{
			{ClassName: "Model", FieldName: "value", NewField: "value: int"},
		},
		CustomImports: []string{"import orjson"},
	})

	text, err := g.ModelText()
	require.NoError(t, err)
	assert.Contains(t, text, "    value: int\n")
	assert.Contains(t, text, "import orjson\n")
}
