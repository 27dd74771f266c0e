package mapboxglstyle

import (
	"encoding/json"
	"testing"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/ownmap-symbolizer/styling/stylecolor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeJSON(t *testing.T, text string) interface{} {
	t.Helper()
	var v interface{}
	require.NoError(t, json.Unmarshal([]byte(text), &v))
	return v
}

func TestParseZoomFunction(t *testing.T) {
	tests := []struct {
		name        string
		value       string
		zoom        float64
		expected    interface{}
		breakpoints []float64
	}{
		{"legacy linear", `{"stops": [[10, 2], [12, 6]]}`, 11, 4.0, []float64{10, 12, 10, 11}},
		{"legacy before first stop", `{"stops": [[10, 2], [12, 6]]}`, 4, 2.0, []float64{10, 12, 10, 11}},
		{"legacy after last stop", `{"stops": [[10, 2], [12, 6]]}`, 18, 6.0, []float64{10, 12, 10, 11}},
		{"legacy interval", `{"type": "interval", "stops": [[10, 2], [12, 6]]}`, 11.5, 2.0, []float64{10, 12}},
		{"legacy exponential", `{"base": 2, "stops": [[0, 0], [2, 3]]}`, 1, 1.0, []float64{0, 2, 0, 1}},
		{"interpolate linear", `["interpolate", ["linear"], ["zoom"], 5, 10, 15, 20]`, 10, 15.0, []float64{5, 15, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14}},
		{"interpolate exponential", `["interpolate", ["exponential", 2], ["zoom"], 0, 0, 2, 3]`, 1, 1.0, []float64{0, 2, 0, 1}},
		{"step", `["step", ["zoom"], "a", 10, "b", 14, "c"]`, 12, "b", []float64{0, 10, 14}},
		{"step default", `["step", ["zoom"], "a", 10, "b"]`, 3, "a", []float64{0, 10}},
		{"strings keep the lower value", `{"stops": [[10, "round"], [12, "butt"]]}`, 11, "round", []float64{10, 12, 10, 11}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := parseZoomFunction(decodeJSON(t, tt.value))
			require.Nil(t, err)
			require.NotNil(t, fn)

			assert.Equal(t, tt.expected, fn.valueAt(tt.zoom))
			assert.Equal(t, tt.breakpoints, fn.breakpoints())
		})
	}
}

func TestParseZoomFunction_plainValues(t *testing.T) {
	for _, value := range []string{`1.5`, `"#fff"`, `[1, 2]`, `["get", "height"]`, `[]`} {
		fn, err := parseZoomFunction(decodeJSON(t, value))
		require.Nil(t, err)
		assert.Nil(t, fn, value)
	}
}

func TestParseZoomFunction_errors(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr error
	}{
		{"data driven", `{"property": "rank", "stops": [[1, 2]]}`, ErrUnsupported},
		{"categorical", `{"type": "categorical", "stops": [[1, 2]]}`, ErrUnsupported},
		{"no stops", `{"base": 1.2}`, ErrInvalidStyle},
		{"bad stop", `{"stops": [[1, 2, 3]]}`, ErrInvalidStyle},
		{"descending stops", `{"stops": [[12, 2], [10, 1]]}`, ErrInvalidStyle},
		{"interpolate by property", `["interpolate", ["linear"], ["get", "rank"], 1, 2, 3, 4]`, ErrUnsupported},
		{"interpolate missing stop value", `["interpolate", ["linear"], ["zoom"], 1]`, ErrInvalidStyle},
		{"step by property", `["step", ["get", "rank"], 1, 2, 3]`, ErrUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseZoomFunction(decodeJSON(t, tt.value))
			require.NotNil(t, err)
			assert.Equal(t, tt.wantErr, errorsx.Cause(err))
		})
	}
}

func TestInterpolate_colors(t *testing.T) {
	fn, err := parseZoomFunction(decodeJSON(t, `{"stops": [[10, "#000"], [12, "#fff"]]}`))
	require.Nil(t, err)

	assert.Equal(t, stylecolor.NewRGBA(128, 128, 128, 255), fn.valueAt(11))
	assert.Equal(t, "#000", fn.valueAt(10))
	assert.Equal(t, "#fff", fn.valueAt(12))
}

func TestInterpolationFactor(t *testing.T) {
	assert.Equal(t, 0.5, interpolationFactor(1, 1, 2))
	assert.Equal(t, 0.0, interpolationFactor(1.5, 1, 0))
	assert.InDelta(t, 1.0/3, interpolationFactor(2, 1, 2), 1e-9)
}
