package mapboxglstyle

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/ownmap-symbolizer/styling"
	"github.com/jamesrr39/ownmap-symbolizer/styling/stylecolor"
	"github.com/jamesrr39/ownmap-symbolizer/styling/styleexpr"
	"github.com/jamesrr39/ownmap-symbolizer/symbolizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testStyle = `{
	"version": 8,
	"name": "test",
	"sources": {"openmaptiles": {"type": "vector", "url": "mbtiles://openmaptiles"}},
	"layers": [
		{"id": "background", "type": "background", "paint": {"background-color": "#f8f4f0"}},
		{
			"id": "landcover-wood", "type": "fill", "source": "openmaptiles", "source-layer": "landcover",
			"filter": ["all", ["==", "$type", "Polygon"], ["==", "class", "wood"]],
			"paint": {"fill-color": "#6a4", "fill-opacity": 0.1}
		},
		{
			"id": "road-primary", "type": "line", "source": "openmaptiles", "source-layer": "transportation", "minzoom": 8,
			"filter": ["all", ["in", "class", "primary", "trunk"], ["!=", "brunnel", "tunnel"]],
			"layout": {"line-cap": "round", "line-join": "round"},
			"paint": {"line-color": "#fea", "line-width": {"base": 1.2, "stops": [[8, 1], [10, 2]]}}
		},
		{
			"id": "path", "type": "line", "source-layer": "transportation", "filter": ["==", "class", "path"],
			"paint": {"line-color": "#cba", "line-width": 2, "line-dasharray": [1.5, 0.75]}
		},
		{"id": "hidden", "type": "line", "layout": {"visibility": "none"}},
		{
			"id": "place-label", "type": "symbol", "source-layer": "place", "filter": ["has", "name"],
			"layout": {"text-field": "{name} ({ref})", "text-font": ["Noto Sans Regular"], "text-size": 14, "text-transform": "uppercase"},
			"paint": {"text-color": "#333", "text-halo-color": "#fff", "text-halo-width": 1.5}
		},
		{"id": "poi", "type": "circle", "filter": [">=", "rank", 3], "paint": {"circle-color": "red", "circle-radius": 4}},
		{
			"id": "buildings-3d", "type": "fill-extrusion", "minzoom": 14,
			"paint": {"fill-extrusion-color": "#ddd", "fill-extrusion-height": ["get", "height"]}
		},
		{"id": "hillshade", "type": "hillshade"}
	]
}`

func loadTestStyle(t *testing.T, options Options) (*styling.Map, *bytes.Buffer) {
	t.Helper()

	logs := bytes.NewBuffer(nil)
	options.Logger = logpkg.NewLogger(logs, logpkg.LogLevelWarn)

	m, err := Load(strings.NewReader(testStyle), "test", options)
	require.Nil(t, err)
	return m, logs
}

func TestToMap(t *testing.T) {
	m, logs := loadTestStyle(t, Options{})

	assert.Equal(t, stylecolor.MustParse("#f8f4f0"), m.Background)
	assert.Contains(t, logs.String(), `skipping layer "hillshade"`)

	var styleNames []string
	for _, style := range m.Styles {
		styleNames = append(styleNames, style.Name)
	}
	assert.Equal(t, []string{"landcover-wood", "road-primary", "path", "place-label", "poi", "buildings-3d"}, styleNames)

	t.Run("fill", func(t *testing.T) {
		style := m.Style("landcover-wood")
		require.Len(t, style.Rules, 1)
		rule := style.Rules[0]
		assert.Equal(t, "([class] = 'wood')", rule.Filter.String())
		assert.True(t, math.IsInf(rule.MaxScale, 1))
		assert.Equal(t, 0.0, rule.MinScale)

		polygon := rule.Symbolizers[0].(*symbolizer.PolygonSymbolizer)
		fill, err := polygon.Fill()
		require.Nil(t, err)
		assert.Equal(t, stylecolor.New(0x66, 0xaa, 0x44), fill.Or(stylecolor.Black))
		opacity, err := polygon.FillOpacity()
		require.Nil(t, err)
		assert.Equal(t, 0.1, opacity.Or(1))
	})

	t.Run("line with zoom function", func(t *testing.T) {
		style := m.Style("road-primary")
		assert.Equal(t, styling.FilterModeFirst, style.FilterMode)

		var ruleNames []string
		var widths []float64
		for _, rule := range style.Rules {
			ruleNames = append(ruleNames, rule.Name)
			assert.Equal(t, "((([class] = 'primary') or ([class] = 'trunk')) and ([brunnel] != 'tunnel'))", rule.Filter.String())

			line := rule.Symbolizers[0].(*symbolizer.LineSymbolizer)
			width, err := line.StrokeWidth()
			require.Nil(t, err)
			widths = append(widths, width.Or(0))

			linecap, err := line.StrokeLinecap()
			require.Nil(t, err)
			assert.Equal(t, symbolizer.LineCapRound, linecap.Or(symbolizer.LineCapButt))
			linejoin, err := line.StrokeLinejoin()
			require.Nil(t, err)
			assert.Equal(t, symbolizer.LineJoinRound, linejoin.Or(symbolizer.LineJoinMiter))
		}
		assert.Equal(t, []string{"road-primary@10", "road-primary@9", "road-primary@8"}, ruleNames)
		require.Len(t, widths, 3)
		assert.Equal(t, 2.0, widths[0])
		assert.InDelta(t, 1.4545, widths[1], 0.001)
		assert.Equal(t, 1.0, widths[2])

		assert.Equal(t, styling.ZoomLevelToScaleDenominator(10), style.Rules[0].MaxScale)
		assert.Equal(t, 0.0, style.Rules[0].MinScale)
		assert.Equal(t, styling.ZoomLevelToScaleDenominator(8), style.Rules[2].MaxScale)
		assert.Equal(t, styling.ZoomLevelToScaleDenominator(9), style.Rules[2].MinScale)

		symbolizers, err := m.Symbolizers(styleexpr.MapFeature{"class": "trunk", "brunnel": "bridge"}, 9)
		require.Nil(t, err)
		require.Len(t, symbolizers, 1)
		width, err := symbolizers[0].(*symbolizer.LineSymbolizer).StrokeWidth()
		require.Nil(t, err)
		assert.InDelta(t, 1.4545, width.Or(0), 0.001)
	})

	t.Run("dasharray", func(t *testing.T) {
		line := m.Style("path").Rules[0].Symbolizers[0].(*symbolizer.LineSymbolizer)
		dashes, err := line.StrokeDashArray()
		require.Nil(t, err)
		assert.Equal(t, "3,1.5", dashes)
	})

	t.Run("symbol", func(t *testing.T) {
		rule := m.Style("place-label").Rules[0]
		assert.Equal(t, "([name] != null)", rule.Filter.String())

		text := rule.Symbolizers[0].(*symbolizer.TextSymbolizer)
		placements, err := text.Placements()
		require.Nil(t, err)
		assert.Equal(t, "((([name] + ' (') + [ref]) + ')')", placements.Format.String())
		assert.Equal(t, "Noto Sans Regular", placements.FaceName)
		assert.Equal(t, 14.0, placements.TextSize)
		assert.Equal(t, stylecolor.New(0x33, 0x33, 0x33), placements.Fill)
		assert.Equal(t, stylecolor.White, placements.HaloFill)
		assert.Equal(t, 1.5, placements.HaloRadius)

		transform, err := text.TextTransform()
		require.Nil(t, err)
		assert.Equal(t, symbolizer.TextTransformUppercase, transform.Or(symbolizer.TextTransformNone))
	})

	t.Run("circle", func(t *testing.T) {
		rule := m.Style("poi").Rules[0]
		assert.Equal(t, "([rank] >= 3)", rule.Filter.String())

		dot := rule.Symbolizers[0].(*symbolizer.DotSymbolizer)
		fill, err := dot.Fill()
		require.Nil(t, err)
		assert.Equal(t, stylecolor.New(0xff, 0, 0), fill.Or(stylecolor.Black))
		width, err := dot.Width()
		require.Nil(t, err)
		assert.Equal(t, 8.0, width.Or(0))
	})

	t.Run("fill extrusion", func(t *testing.T) {
		rule := m.Style("buildings-3d").Rules[0]
		assert.Nil(t, rule.Filter)
		assert.Equal(t, styling.ZoomLevelToScaleDenominator(14), rule.MaxScale)

		building := rule.Symbolizers[0].(*symbolizer.BuildingSymbolizer)
		height, err := building.Height()
		require.Nil(t, err)
		require.True(t, height.IsDeferred())
		assert.Equal(t, "[height]", height.Expression().String())

		resolved, err := symbolizer.ResolveDouble(building, symbolizer.KeyHeight, styleexpr.MapFeature{"height": 12.5}, 0)
		require.Nil(t, err)
		assert.Equal(t, 12.5, resolved)
	})
}

func TestToMap_osmTags(t *testing.T) {
	m, _ := loadTestStyle(t, Options{OSMTags: true})

	tests := []struct {
		name     string
		layer    string
		feature  styleexpr.MapFeature
		expected bool
	}{
		{"natural wood", "landcover-wood", styleexpr.MapFeature{"natural": "wood"}, true},
		{"forest", "landcover-wood", styleexpr.MapFeature{"landuse": "forest"}, true},
		{"farmland", "landcover-wood", styleexpr.MapFeature{"landuse": "farmland"}, false},
		{"primary road", "road-primary", styleexpr.MapFeature{"highway": "primary"}, true},
		{"trunk link", "road-primary", styleexpr.MapFeature{"highway": "trunk_link"}, true},
		{"primary tunnel", "road-primary", styleexpr.MapFeature{"highway": "primary", "tunnel": "yes"}, false},
		{"residential road", "road-primary", styleexpr.MapFeature{"highway": "residential"}, false},
		{"footway", "path", styleexpr.MapFeature{"highway": "footway"}, true},
		{"named place", "place-label", styleexpr.MapFeature{"place": "town", "name": "Tromsø"}, true},
		{"unnamed place", "place-label", styleexpr.MapFeature{"place": "town"}, false},
		{"named road is not a place", "place-label", styleexpr.MapFeature{"highway": "primary", "name": "E6"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			style := m.Style(tt.layer)
			require.NotNil(t, style)
			matches, err := style.Rules[0].Matches(tt.feature)
			require.Nil(t, err)
			assert.Equal(t, tt.expected, matches)
		})
	}
}

func TestToMap_unknownClass(t *testing.T) {
	const doc = `{"version": 8, "layers": [
		{"id": "x", "type": "fill", "source-layer": "landcover", "filter": ["==", "class", "moon_dust"]}
	]}`
	logs := bytes.NewBuffer(nil)

	m, err := Load(strings.NewReader(doc), "test", Options{OSMTags: true, Logger: logpkg.NewLogger(logs, logpkg.LogLevelWarn)})
	require.Nil(t, err)
	assert.Contains(t, logs.String(), `"moon_dust"`)

	matches, err := m.Style("x").Rules[0].Matches(styleexpr.MapFeature{"landuse": "moon_dust"})
	require.Nil(t, err)
	assert.False(t, matches)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{"not json", `<Map/>`, ErrInvalidStyle},
		{"wrong version", `{"version": 7, "layers": []}`, ErrInvalidStyle},
		{"no layer id", `{"version": 8, "layers": [{"type": "fill"}]}`, ErrInvalidStyle},
		{"duplicate layer", `{"version": 8, "layers": [{"id": "a", "type": "fill"}, {"id": "a", "type": "line"}]}`, ErrInvalidStyle},
		{"min zoom above max zoom", `{"version": 8, "layers": [{"id": "a", "type": "fill", "minzoom": 10, "maxzoom": 5}]}`, ErrInvalidStyle},
		{"max zoom out of range", `{"version": 8, "layers": [{"id": "a", "type": "fill", "maxzoom": 25}]}`, ErrInvalidStyle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			require.NotNil(t, err)
			assert.Equal(t, tt.wantErr, errorsx.Cause(err))
		})
	}
}

func TestToMapErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{"bad colour", `{"version": 8, "layers": [{"id": "a", "type": "fill", "paint": {"fill-color": "sparkly"}}]}`, stylecolor.ErrColorParse},
		{"unsupported filter", `{"version": 8, "layers": [{"id": "a", "type": "fill", "filter": ["within", {}]}]}`, ErrUnsupported},
		{"bad background", `{"version": 8, "layers": [{"id": "a", "type": "background", "paint": {"background-color": "nope"}}]}`, stylecolor.ErrColorParse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc), "test", Options{Logger: logpkg.NewLogger(bytes.NewBuffer(nil), logpkg.LogLevelWarn)})
			require.NotNil(t, err)
			assert.Equal(t, tt.wantErr, errorsx.Cause(err))
		})
	}
}
