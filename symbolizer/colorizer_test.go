package symbolizer

import (
	"testing"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/ownmap-symbolizer/styling/stylecolor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTwoStopColorizer(t *testing.T, mode ColorizerMode) *RasterColorizer {
	t.Helper()

	c := NewRasterColorizer(mode, stylecolor.Transparent)
	require.Nil(t, c.AddStop(ColorizerStop{Value: 10, Color: stylecolor.NewRGBA(100, 100, 100, 100)}))
	require.Nil(t, c.AddStop(ColorizerStop{Value: 20, Color: stylecolor.NewRGBA(200, 200, 200, 200)}))
	return c
}

func TestRasterColorizer_GetColor(t *testing.T) {
	first := stylecolor.NewRGBA(100, 100, 100, 100)
	second := stylecolor.NewRGBA(200, 200, 200, 200)

	tests := []struct {
		mode     ColorizerMode
		value    float64
		expected stylecolor.Color
	}{
		{ColorizerModeDiscrete, -50, stylecolor.Transparent},
		{ColorizerModeDiscrete, 0, stylecolor.Transparent},
		{ColorizerModeDiscrete, 10, first},
		{ColorizerModeDiscrete, 19, first},
		{ColorizerModeDiscrete, 20, second},
		{ColorizerModeDiscrete, 1000, second},
		{ColorizerModeExact, -50, stylecolor.Transparent},
		{ColorizerModeExact, 11, stylecolor.Transparent},
		{ColorizerModeExact, 20.001, stylecolor.Transparent},
		{ColorizerModeExact, 10, first},
		{ColorizerModeExact, 20, second},
		{ColorizerModeLinear, -50, stylecolor.Transparent},
		{ColorizerModeLinear, 9.9, stylecolor.Transparent},
		{ColorizerModeLinear, 10, first},
		{ColorizerModeLinear, 15, stylecolor.NewRGBA(150, 150, 150, 150)},
		{ColorizerModeLinear, 20, second},
		{ColorizerModeLinear, 100, second},
	}
	for _, tt := range tests {
		c := newTwoStopColorizer(t, tt.mode)
		assert.Equal(t, tt.expected, c.GetColor(tt.value), "%s at %v", tt.mode, tt.value)
	}
}

func TestRasterColorizer_stopModeOverridesDefault(t *testing.T) {
	c := NewRasterColorizer(ColorizerModeLinear, stylecolor.Black)
	require.Nil(t, c.AddStop(ColorizerStop{Value: 0, Mode: ColorizerModeDiscrete, Color: stylecolor.White}))
	require.Nil(t, c.AddStop(ColorizerStop{Value: 10, Color: stylecolor.New(0, 0, 0xff)}))

	assert.Equal(t, stylecolor.White, c.GetColor(5))
	assert.Equal(t, stylecolor.Black, c.GetColor(-1))
	assert.Equal(t, stylecolor.Black, NewRasterColorizer(ColorizerModeLinear, stylecolor.Black).GetColor(3))
}

func TestRasterColorizer_AddStop(t *testing.T) {
	c := newTwoStopColorizer(t, ColorizerModeLinear)

	err := c.AddStop(ColorizerStop{Value: 20, Color: stylecolor.Black})
	require.NotNil(t, err)
	assert.Equal(t, ErrColorizer, errorsx.Cause(err))

	err = c.AddStop(ColorizerStop{Value: 30, Mode: ColorizerMode(9), Color: stylecolor.Black})
	require.NotNil(t, err)
	assert.Equal(t, ErrColorizer, errorsx.Cause(err))

	assert.Len(t, c.Stops(), 2)
}

func TestRasterColorizer_String(t *testing.T) {
	c := NewRasterColorizer(ColorizerModeDiscrete, stylecolor.Transparent)
	require.Nil(t, c.AddStop(ColorizerStop{Value: 0, Color: stylecolor.MustParse("#0044cc")}))
	require.Nil(t, c.AddStop(ColorizerStop{Value: 10.5, Mode: ColorizerModeLinear, Color: stylecolor.MustParse("#00cc00"), Label: "32º C; warm"}))

	text := c.String()
	assert.Equal(t, `default-mode=discrete;default-color=#00000000;epsilon=1.1920929e-07;stop=0 #0044cc inherit;stop=10.5 #00cc00 linear "32º C; warm"`, text)

	parsed, err := ParseRasterColorizer(text)
	require.Nil(t, err)
	assert.True(t, c.Equal(parsed))
	assert.Equal(t, "32º C; warm", parsed.Stops()[1].Label)
}

func TestParseRasterColorizer(t *testing.T) {
	c, err := ParseRasterColorizer(`default-mode = exact; epsilon=0.5; stop=1 rgb(0, 0, 255) "deep"; stop=2 red discrete`)
	require.Nil(t, err)
	assert.Equal(t, ColorizerModeExact, c.DefaultMode)
	assert.Equal(t, stylecolor.Transparent, c.DefaultColor)
	assert.Equal(t, 0.5, c.Epsilon)

	stops := c.Stops()
	require.Len(t, stops, 2)
	assert.Equal(t, ColorizerStop{Value: 1, Mode: ColorizerModeInherit, Color: stylecolor.New(0, 0, 0xff), Label: "deep"}, stops[0])
	assert.Equal(t, ColorizerModeDiscrete, stops[1].Mode)
	assert.Equal(t, stylecolor.New(0, 0, 0xff), c.GetColor(1.4))

	badTexts := []string{
		"default-mode=wavy",
		"epsilon=-1",
		"stop=1",
		"stop=2 red;stop=1 blue",
		`stop=1 red "unterminated`,
		"colour=red",
		"stop",
	}
	for _, text := range badTexts {
		_, err := ParseRasterColorizer(text)
		assert.NotNil(t, err, text)
	}
}

func TestColorizerProperty(t *testing.T) {
	raster := NewRasterSymbolizer()
	_, err := raster.Colorizer()
	assert.Equal(t, ErrPropertyNotSet, errorsx.Cause(err))

	colorizer := newTwoStopColorizer(t, ColorizerModeLinear)
	require.Nil(t, raster.SetColorizer(colorizer))
	require.Nil(t, colorizer.AddStop(ColorizerStop{Value: 30, Color: stylecolor.Black}))

	slot, err := raster.Colorizer()
	require.Nil(t, err)
	stored := slot.Or(nil)
	require.NotNil(t, stored)
	assert.Len(t, stored.Stops(), 2)

	text, err := FormatProperty(raster, KeyColorizer)
	require.Nil(t, err)

	loaded := NewRasterSymbolizer()
	require.Nil(t, SetFromString(loaded, "colorizer", text))
	assert.True(t, Equal(raster, loaded))
	assert.Equal(t, StructuralHash(raster), StructuralHash(loaded))

	clone := Clone(raster).(*RasterSymbolizer)
	assert.True(t, Equal(raster, clone))

	err = raster.SetColorizer(nil)
	require.NotNil(t, err)
	assert.Equal(t, ErrTypeMismatch, errorsx.Cause(err))

	err = SetFromString(raster, "colorizer", "stop=2 red;stop=1 blue")
	require.NotNil(t, err)
	assert.Equal(t, ErrColorizer, errorsx.Cause(err))
}
