package modelcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryn-cx/gapi/convert"
	"github.com/ryn-cx/gapi/document"
	"github.com/ryn-cx/gapi/schema"
)

func compileFrom(t *testing.T, docs ...map[string]any) *Model {
	t.Helper()

	b := schema.NewBuilder()
	for _, doc := range docs {
		b.AddObject(convert.All(doc))
	}

	model, err := Compile("test", b.ToJSON())
	require.NoError(t, err)

	return model
}

func TestValidateAccepts(t *testing.T) {
	model := compileFrom(t, map[string]any{"value": "x", "n": int64(1)})

	typed, err := model.Validate(map[string]any{"value": "y", "n": int64(2)})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"value": "y", "n": int64(2)}, typed)
}

func TestValidateRejectsWrongScalar(t *testing.T) {
	model := compileFrom(t, map[string]any{"value": "x"})

	_, err := model.Validate(map[string]any{"value": int64(1)})
	assert.ErrorIs(t, err, ErrMismatch)
}

func TestValidateRejectsUnknownField(t *testing.T) {
	model := compileFrom(t, map[string]any{"value": "x"})

	_, err := model.Validate(map[string]any{"value": "x", "extra": int64(1)})
	assert.ErrorIs(t, err, ErrMismatch)
}

func TestValidateRejectsMissingRequired(t *testing.T) {
	model := compileFrom(t, map[string]any{"value": "x", "n": int64(1)})

	_, err := model.Validate(map[string]any{"value": "x"})
	assert.ErrorIs(t, err, ErrMismatch)
}

func TestValidateOptionalFieldMayBeAbsent(t *testing.T) {
	model := compileFrom(t,
		map[string]any{"value": "x", "opt": int64(1)},
		map[string]any{"value": "x"})

	_, err := model.Validate(map[string]any{"value": "x"})
	assert.NoError(t, err)
}

func TestValidateParsesTemporalStrings(t *testing.T) {
	model := compileFrom(t, map[string]any{
		"d":  "2020-01-01",
		"ts": "2020-01-01T10:00:00Z",
		"p":  "P3D",
	})

	typed, err := model.Validate(map[string]any{
		"d":  "2021-06-15",
		"ts": "2021-06-15T08:30:00Z",
		"p":  "PT1H",
	})
	require.NoError(t, err)

	m := typed.(map[string]any)
	assert.IsType(t, document.Date{}, m["d"])
	assert.IsType(t, time.Time{}, m["ts"])
	assert.IsType(t, document.Duration{}, m["p"])
}

func TestValidatedValueRoundTrips(t *testing.T) {
	model := compileFrom(t, map[string]any{
		"ts": "2020-01-01T10:00:00Z",
		"n":  int64(1),
		"s":  "plain",
	})

	raw, err := document.DecodeString(`{"ts": "2021-02-03T04:05:06Z", "n": 7, "s": "x"}`)
	require.NoError(t, err)

	typed, err := model.Validate(raw)
	require.NoError(t, err)
	assert.True(t, document.Equal(raw, typed))
}

func TestValidateUnionOfNumbers(t *testing.T) {
	model := compileFrom(t, map[string]any{"mixed": []any{int64(1), 1.5}})

	typed, err := model.Validate(map[string]any{"mixed": []any{int64(2), 2.5}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"mixed": []any{int64(2), 2.5}}, typed)

	_, err = model.Validate(map[string]any{"mixed": []any{"nope"}})
	assert.ErrorIs(t, err, ErrMismatch)
}

func TestRegistrySwapPurgesStaleDefinition(t *testing.T) {
	registry := NewRegistry()

	b := schema.NewBuilder()
	b.AddObject(map[string]any{"value": "x"})

	first, err := registry.Swap("model", b.ToJSON())
	require.NoError(t, err)

	loaded, ok := registry.Lookup("model")
	require.True(t, ok)
	assert.Same(t, first, loaded)

	b.AddObject(map[string]any{"value": int64(1)})

	second, err := registry.Swap("model", b.ToJSON())
	require.NoError(t, err)
	assert.NotSame(t, first, second)

	loaded, ok = registry.Lookup("model")
	require.True(t, ok)
	assert.Same(t, second, loaded)

	_, err = second.Validate(map[string]any{"value": int64(1)})
	assert.NoError(t, err)
}
