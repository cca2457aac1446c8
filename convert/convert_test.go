package convert_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryn-cx/gapi/convert"
	"github.com/ryn-cx/gapi/document"
)

func TestValuePromotesDatetime(t *testing.T) {
	v := convert.Value("2024-01-15T10:30:00Z")
	ts, ok := v.(time.Time)
	require.True(t, ok)
	assert.Equal(t, "2024-01-15T10:30:00Z", document.FormatDateTime(ts))
}

func TestValuePromotesDatetimeWithOffset(t *testing.T) {
	for _, s := range []string{"2024-01-15T10:30:00+02:00", "2024-01-15T10:30:00-0700"} {
		_, ok := convert.Value(s).(time.Time)
		assert.True(t, ok, s)
	}
}

func TestValuePromotesDate(t *testing.T) {
	v := convert.Value("2024-01-15")
	d, ok := v.(document.Date)
	require.True(t, ok)
	assert.Equal(t, "2024-01-15", d.String())
}

func TestValuePromotesDuration(t *testing.T) {
	v := convert.Value("P3D")
	_, ok := v.(document.Duration)
	assert.True(t, ok)
}

func TestValueLeavesPlainStrings(t *testing.T) {
	assert.Equal(t, "string", convert.Value("string"))
}

func TestValueNeverPromotesNumericStrings(t *testing.T) {
	for _, s := range []string{"007", "1", "-3", "1.5", "2e10"} {
		assert.Equal(t, s, convert.Value(s), s)
	}
}

func TestValueInvalidCalendarDateStaysString(t *testing.T) {
	assert.Equal(t, "2023-02-30", convert.Value("2023-02-30"))
}

func TestAllPromotesNestedContainers(t *testing.T) {
	tests := []struct {
		input string
		kind  document.Kind
	}{
		{"2000-01-01T00:00:00Z", document.KindDateTime},
		{"2000-01-01", document.KindDate},
		{"P1D", document.KindDuration},
	}

	for _, tt := range tests {
		input := map[string]any{
			"key_1": tt.input,
			"key_2": map[string]any{"key_3": tt.input},
			"key_4": []any{tt.input, []any{tt.input}},
		}

		out := convert.All(input).(map[string]any)
		assert.Equal(t, tt.kind, document.KindOf(out["key_1"]))
		assert.Equal(t, tt.kind, document.KindOf(out["key_2"].(map[string]any)["key_3"]))
		assert.Equal(t, tt.kind, document.KindOf(out["key_4"].([]any)[0]))
		assert.Equal(t, tt.kind, document.KindOf(out["key_4"].([]any)[1].([]any)[0]))
	}
}

func TestAllDoesNotMutateInput(t *testing.T) {
	input := map[string]any{"x": "2000-01-01"}
	_ = convert.All(input)
	assert.Equal(t, "2000-01-01", input["x"])
}

func TestAllIsIdempotent(t *testing.T) {
	input := map[string]any{
		"x": "2000-01-01T00:00:00Z",
		"y": "2000-01-01",
		"z": "P3D",
		"s": "007",
		"n": []any{int64(1), 1.5, "string"},
	}

	once := convert.All(input)
	twice := convert.All(once)
	assert.True(t, document.Equal(once, twice))
}
