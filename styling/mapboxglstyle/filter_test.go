package mapboxglstyle

import (
	"bytes"
	"testing"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/ownmap-symbolizer/styling/styleexpr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterConverter(t *testing.T) {
	tests := []struct {
		name     string
		filter   string
		expected string
	}{
		{"equals", `["==", "class", "wood"]`, "([class] = 'wood')"},
		{"integral number", `["<", "rank", 10]`, "([rank] < 10)"},
		{"fractional number", `[">", "ele", 2.5]`, "([ele] > 2.5)"},
		{"get key", `["==", ["get", "class"], "wood"]`, "([class] = 'wood')"},
		{"has", `["has", "name"]`, "([name] != null)"},
		{"not has", `["!has", "name"]`, "([name] = null)"},
		{"in", `["in", "class", "a", "b", "c"]`, "((([class] = 'a') or ([class] = 'b')) or ([class] = 'c'))"},
		{"not in", `["!in", "class", "a", "b"]`, "not (([class] = 'a') or ([class] = 'b'))"},
		{"in nothing", `["in", "class"]`, "false"},
		{"all skips geometry type", `["all", ["==", "$type", "Polygon"], ["==", "a", 1], ["!=", "b", "x"]]`, "(([a] = 1) and ([b] != 'x'))"},
		{"any", `["any", ["==", "a", 1], ["==", "b", 2]]`, "(([a] = 1) or ([b] = 2))"},
		{"none", `["none", ["==", "a", 1]]`, "not ([a] = 1)"},
		{"bool value", `["==", "oneway", true]`, "([oneway] = true)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &filterConverter{logger: logpkg.NewLogger(bytes.NewBuffer(nil), logpkg.LogLevelWarn)}
			expr, err := c.convert(decodeJSON(t, tt.filter))
			require.Nil(t, err)
			require.NotNil(t, expr)
			assert.Equal(t, tt.expected, expr.String())
		})
	}
}

func TestFilterConverter_matchEverything(t *testing.T) {
	c := &filterConverter{logger: logpkg.NewLogger(bytes.NewBuffer(nil), logpkg.LogLevelWarn)}
	for _, filter := range []string{
		`null`,
		`["==", "$type", "LineString"]`,
		`["all", ["==", "$type", "LineString"]]`,
		`["any", ["==", "$type", "Point"], ["==", "class", "x"]]`,
		`["all"]`,
	} {
		expr, err := c.convert(decodeJSON(t, filter))
		require.Nil(t, err)
		assert.Nil(t, expr, filter)
	}
}

func TestFilterConverter_osmTags(t *testing.T) {
	tests := []struct {
		name        string
		sourceLayer string
		filter      string
		feature     styleexpr.MapFeature
		expected    bool
	}{
		{"class", "water", `["==", "class", "river"]`, styleexpr.MapFeature{"waterway": "river"}, true},
		{"not class", "water", `["!=", "class", "river"]`, styleexpr.MapFeature{"waterway": "river"}, false},
		{"bridge", "transportation", `["==", "brunnel", "bridge"]`, styleexpr.MapFeature{"bridge": "yes"}, true},
		{"not a bridge", "transportation", `["==", "brunnel", "bridge"]`, styleexpr.MapFeature{"highway": "primary"}, false},
		{"intermittent", "waterway", `["==", "intermittent", 1]`, styleexpr.MapFeature{"intermittent": "yes"}, true},
		{"not intermittent", "waterway", `["==", "intermittent", 0]`, styleexpr.MapFeature{"waterway": "stream"}, true},
		{"other keys stay attributes", "poi", `[">=", "rank", 2]`, styleexpr.MapFeature{"rank": int64(3)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &filterConverter{
				logger:      logpkg.NewLogger(bytes.NewBuffer(nil), logpkg.LogLevelWarn),
				sourceLayer: tt.sourceLayer,
				osmTags:     true,
			}
			expr, err := c.convert(decodeJSON(t, tt.filter))
			require.Nil(t, err)

			matches, err := expr.EvaluateBool(tt.feature)
			require.Nil(t, err)
			assert.Equal(t, tt.expected, matches)
		})
	}
}

func TestFilterConverter_errors(t *testing.T) {
	tests := []struct {
		name    string
		filter  string
		wantErr error
	}{
		{"not an array", `"class"`, ErrInvalidStyle},
		{"empty", `[]`, ErrInvalidStyle},
		{"operator not a string", `[1, "a", "b"]`, ErrInvalidStyle},
		{"unknown operator", `["within", {}]`, ErrUnsupported},
		{"comparison arity", `["==", "a"]`, ErrInvalidStyle},
		{"has arity", `["has"]`, ErrInvalidStyle},
		{"unsupported key", `["==", ["zoom"], 3]`, ErrUnsupported},
		{"unsupported value", `["==", "a", {"b": 1}]`, ErrUnsupported},
		{"nested error", `["all", ["==", "a", 1], ["bogus"]]`, ErrUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &filterConverter{logger: logpkg.NewLogger(bytes.NewBuffer(nil), logpkg.LogLevelWarn)}
			_, err := c.convert(decodeJSON(t, tt.filter))
			require.NotNil(t, err)
			assert.Equal(t, tt.wantErr, errorsx.Cause(err))
		})
	}
}
