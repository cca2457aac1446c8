package schema_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryn-cx/gapi/convert"
	"github.com/ryn-cx/gapi/schema"
)

func decode(t *testing.T, text string) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &out))

	return out
}

func TestEmptyBuilder(t *testing.T) {
	b := schema.NewBuilder()
	assert.Equal(t, `{"$schema":"http://json-schema.org/schema#"}`, b.ToJSON())
}

func TestAddObjectScalars(t *testing.T) {
	b := schema.NewBuilder()
	b.AddObject(map[string]any{
		"_int":   int64(1),
		"_float": 1.0,
		"_str":   "string",
		"_bool":  true,
		"_null":  nil,
	})

	s := decode(t, b.ToJSON())
	props := s["properties"].(map[string]any)

	assert.Equal(t, "object", s["type"])
	assert.Equal(t, "integer", props["_int"].(map[string]any)["type"])
	assert.Equal(t, "number", props["_float"].(map[string]any)["type"])
	assert.Equal(t, "string", props["_str"].(map[string]any)["type"])
	assert.Equal(t, "boolean", props["_bool"].(map[string]any)["type"])
	assert.Equal(t, "null", props["_null"].(map[string]any)["type"])
	assert.ElementsMatch(t,
		[]any{"_int", "_float", "_str", "_bool", "_null"},
		s["required"].([]any))
}

func TestTemporalFormats(t *testing.T) {
	b := schema.NewBuilder()
	b.AddObject(convert.All(map[string]any{
		"_datetime":  "2000-01-01T00:00:00Z",
		"_date":      "2000-01-01",
		"_timedelta": "P3D",
	}))

	props := decode(t, b.ToJSON())["properties"].(map[string]any)

	datetime := props["_datetime"].(map[string]any)
	assert.Equal(t, "string", datetime["type"])
	assert.Equal(t, "date-time", datetime["format"])
	assert.Equal(t, "date", props["_date"].(map[string]any)["format"])
	assert.Equal(t, "duration", props["_timedelta"].(map[string]any)["format"])
}

func TestMixedNumbersBecomeTypeList(t *testing.T) {
	b := schema.NewBuilder()
	b.AddObject(map[string]any{"mixed": []any{int64(1), 1.0}})

	props := decode(t, b.ToJSON())["properties"].(map[string]any)
	items := props["mixed"].(map[string]any)["items"].(map[string]any)
	assert.Equal(t, []any{"integer", "number"}, items["type"])
}

func TestRequiredIsIntersection(t *testing.T) {
	b := schema.NewBuilder()
	b.AddObject(map[string]any{"a": int64(1), "b": "x"})
	b.AddObject(map[string]any{"a": int64(2)})

	s := decode(t, b.ToJSON())
	assert.Equal(t, []any{"a"}, s["required"].([]any))

	props := s["properties"].(map[string]any)
	assert.Contains(t, props, "b")
}

func TestEqualityIsStructural(t *testing.T) {
	a := schema.NewBuilder()
	a.AddObject(map[string]any{"x": "s", "y": int64(1)})

	b := schema.NewBuilder()
	b.AddObject(map[string]any{"y": int64(2), "x": "t"})

	assert.True(t, a.Equal(b))

	c := schema.NewBuilder()
	c.AddObject(map[string]any{"x": "s"})
	assert.False(t, a.Equal(c))
}

func TestAddingEquivalentObjectIsStable(t *testing.T) {
	doc := map[string]any{"a": "x", "nested": map[string]any{"k": int64(1)}}

	a := schema.NewBuilder()
	a.AddObject(doc)

	b := schema.NewBuilder()
	b.AddObject(doc)
	b.AddObject(doc)

	assert.True(t, a.Equal(b))
}

func TestRoundTripThroughSchemaText(t *testing.T) {
	a := schema.NewBuilder()
	a.AddObject(map[string]any{
		"s":      "x",
		"n":      int64(1),
		"list":   []any{"a", "b"},
		"nested": map[string]any{"k": true},
		"mixed":  []any{int64(1), 1.5},
		"t":      time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	b := schema.NewBuilder()
	require.NoError(t, b.AddSchemaText(a.ToJSON()))
	assert.True(t, a.Equal(b))
}

func TestAddSchemaThenObjectExtends(t *testing.T) {
	full := schema.NewBuilder()
	full.AddObject(map[string]any{"a": "x"})
	full.AddObject(map[string]any{"a": "x", "b": int64(1)})

	resumed := schema.NewBuilder()

	base := schema.NewBuilder()
	base.AddObject(map[string]any{"a": "x"})
	require.NoError(t, resumed.AddSchemaText(base.ToJSON()))
	resumed.AddObject(map[string]any{"a": "x", "b": int64(1)})

	assert.True(t, full.Equal(resumed))
}

func TestEmptyArrayHasNoItems(t *testing.T) {
	b := schema.NewBuilder()
	b.AddObject(map[string]any{"list": []any{}})

	props := decode(t, b.ToJSON())["properties"].(map[string]any)
	list := props["list"].(map[string]any)
	assert.Equal(t, "array", list["type"])
	assert.NotContains(t, list, "items")
}
