package symbolizer

import (
	"math"
	"testing"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/ownmap-symbolizer/styling/stylecolor"
	"github.com/jamesrr39/ownmap-symbolizer/styling/styleexpr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		text    string
		want    Kind
		wantErr bool
	}{
		{"line", KindLine, false},
		{"LineSymbolizer", KindLine, false},
		{"polygon_pattern", KindPolygonPattern, false},
		{"PolygonPatternSymbolizer", KindPolygonPattern, false},
		{"Dot", KindDot, false},
		{"circle", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := ParseKind(tt.text)
			if tt.wantErr {
				require.NotNil(t, err)
				assert.Equal(t, ErrUnknownKind, errorsx.Cause(err))
				return
			}
			require.Nil(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewMatchesKind(t *testing.T) {
	for _, kind := range AllKinds() {
		sym, err := New(kind)
		require.Nil(t, err)
		assert.Equal(t, kind, sym.Kind())
		assert.Equal(t, kind.TypeName(), Type(sym))

		empty, err := NewEmpty(kind)
		require.Nil(t, err)
		assert.Equal(t, kind, empty.Kind())
		assert.Empty(t, Keys(empty))
	}

	_, err := New(Kind(99))
	assert.Equal(t, ErrUnknownKind, errorsx.Cause(err))
}

func TestPropertiesIncludeBaseKeys(t *testing.T) {
	for _, kind := range AllKinds() {
		props := Properties(kind)
		assert.Contains(t, props, KeyCompOp, kind.String())
		assert.Contains(t, props, KeyGeometryTransform, kind.String())
	}

	assert.Contains(t, Properties(KindLine), KeyStrokeDasharray)
	assert.NotContains(t, Properties(KindPolygon), KeyStrokeDasharray)
}

func TestRegistry(t *testing.T) {
	names := AllPropertyNames()
	assert.Len(t, names, int(keyCount))
	assert.Len(t, AllKeys(), int(keyCount))

	seen := make(map[string]bool)
	for _, key := range AllKeys() {
		meta, err := Metadata(key)
		require.Nil(t, err)
		assert.False(t, seen[meta.Name], "duplicate name %q", meta.Name)
		seen[meta.Name] = true

		looked, err := LookupByName(meta.Name)
		require.Nil(t, err)
		assert.Equal(t, key, looked)

		assert.Equal(t, meta.TargetType.IsEnum(), meta.Converter != nil, meta.Name)
	}

	assert.Equal(t, []string{"butt", "square", "round"}, EnumNames(KeyStrokeLinecap))
	assert.Nil(t, EnumNames(KeyStrokeWidth))
}

func buildLine(order []Key) *LineSymbolizer {
	values := map[Key]interface{}{
		KeyStroke:          stylecolor.New(10, 20, 30),
		KeyStrokeWidth:     2.5,
		KeyStrokeLinecap:   LineCapRound,
		KeyStrokeDasharray: "4,2",
		KeyCompOp:          CompositeOpMultiply,
		KeyOffset:          styleexpr.MustParse("[offset] + 1"),
	}

	sym := &LineSymbolizer{}
	for _, key := range order {
		err := SetProperty(sym, key, values[key])
		if err != nil {
			panic(err.Error())
		}
	}
	return sym
}

func TestStructuralHash(t *testing.T) {
	a := buildLine([]Key{KeyStroke, KeyStrokeWidth, KeyStrokeLinecap, KeyStrokeDasharray, KeyCompOp, KeyOffset})
	b := buildLine([]Key{KeyOffset, KeyCompOp, KeyStrokeDasharray, KeyStrokeLinecap, KeyStrokeWidth, KeyStroke})

	require.NotZero(t, StructuralHash(a))
	assert.Equal(t, StructuralHash(a), StructuralHash(b))
	assert.True(t, Equal(a, b))

	changes := []struct {
		name  string
		key   Key
		value interface{}
	}{
		{"stroke", KeyStroke, stylecolor.New(10, 20, 31)},
		{"stroke-width", KeyStrokeWidth, 2.6},
		{"stroke-linecap", KeyStrokeLinecap, LineCapSquare},
		{"stroke-dasharray", KeyStrokeDasharray, "4,3"},
		{"comp-op", KeyCompOp, CompositeOpScreen},
		{"offset", KeyOffset, styleexpr.MustParse("[offset] + 2")},
		{"new key", KeyStrokeOpacity, 0.5},
	}
	for _, change := range changes {
		t.Run(change.name, func(t *testing.T) {
			changed := Clone(a)
			err := SetProperty(changed, change.key, change.value)
			require.Nil(t, err)

			assert.NotEqual(t, StructuralHash(a), StructuralHash(changed))
			assert.False(t, Equal(a, changed))
		})
	}
}

func TestStructuralHashDependsOnKind(t *testing.T) {
	polygon := &PolygonSymbolizer{}
	building := &BuildingSymbolizer{}
	require.Nil(t, SetProperty(polygon, KeyFill, "#808080"))
	require.Nil(t, SetProperty(building, KeyFill, "#808080"))

	assert.NotEqual(t, StructuralHash(polygon), StructuralHash(building))
	assert.False(t, Equal(polygon, building))
}

func TestCloneIsIndependent(t *testing.T) {
	text := NewTextSymbolizer()
	clone := Clone(text).(*TextSymbolizer)
	require.True(t, Equal(text, clone))

	placements, err := clone.Placements()
	require.Nil(t, err)
	placements.TextSize = 20

	original, err := text.Placements()
	require.Nil(t, err)
	assert.Equal(t, 10.0, original.TextSize)
	assert.False(t, Equal(text, clone))

	line := NewLineSymbolizer()
	require.Nil(t, line.SetStrokeDashArray("1,1"))
	lineClone := Clone(line).(*LineSymbolizer)
	lineClone.SetStrokeWidth(5)

	width, err := line.StrokeWidth()
	require.Nil(t, err)
	assert.Equal(t, 1.0, width.Or(0))
}

func TestEqualComparesExpressionsByText(t *testing.T) {
	a := NewLineSymbolizer()
	b := NewLineSymbolizer()

	require.Nil(t, SetProperty(a, KeyStrokeWidth, styleexpr.MustParse("[lanes] * 2")))
	require.Nil(t, SetProperty(b, KeyStrokeWidth, styleexpr.MustParse("[lanes]*2")))

	assert.True(t, Equal(a, b))
	assert.Equal(t, StructuralHash(a), StructuralHash(b))
}

func TestDashArray(t *testing.T) {
	tests := []struct {
		text    string
		want    DashArray
		wantErr bool
	}{
		{"4,2,1,2", DashArray{4, 2, 1, 2}, false},
		{"4 2", DashArray{4, 2}, false},
		{"3", DashArray{3, 3}, false},
		{"none", DashArray{}, false},
		{"0,0", nil, true},
		{"-1,2", nil, true},
		{"", nil, true},
		{"bad", nil, true},
		{"NaN,2", nil, true},
		{"inf,2", nil, true},
		{"4,-Inf", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := ParseDashArray(tt.text)
			if tt.wantErr {
				require.NotNil(t, err)
				assert.Equal(t, ErrDasharrayParse, errorsx.Cause(err))
				return
			}
			require.Nil(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}

	assert.Equal(t, [][2]float64{{4, 2}, {1, 2}}, DashArray{4, 2, 1, 2}.Pairs())
	assert.Equal(t, "none", DashArray{}.String())

	line := NewLineSymbolizer()
	for _, dashes := range []interface{}{DashArray{math.NaN(), 2}, []float64{4, math.Inf(1)}} {
		err := SetProperty(line, KeyStrokeDasharray, dashes)
		require.NotNil(t, err)
		assert.Equal(t, ErrDasharrayParse, errorsx.Cause(err))
	}
	_, err := GetProperty(line, KeyStrokeDasharray)
	assert.Equal(t, ErrPropertyNotSet, errorsx.Cause(err))
}

func TestTextPlacements(t *testing.T) {
	p := DefaultTextPlacements()
	p.Format = styleexpr.MustParse("[name] + ' ' + [ref]")
	text := p.String()
	assert.Equal(t, "face-name=DejaVu Sans Book;size=10;fill=#000000;halo-fill=#ffffff;halo-radius=0;format=(([name] + ' ') + [ref])", text)

	parsed, err := ParseTextPlacements(text)
	require.Nil(t, err)
	assert.True(t, p.Equal(parsed))

	parsed, err = ParseTextPlacements("size=12; halo-radius=1.5")
	require.Nil(t, err)
	assert.Equal(t, 12.0, parsed.TextSize)
	assert.Equal(t, 1.5, parsed.HaloRadius)
	assert.Equal(t, DefaultFaceName, parsed.FaceName)

	_, err = ParseTextPlacements("size")
	assert.Equal(t, ErrTypeMismatch, errorsx.Cause(err))

	_, err = ParseTextPlacements("weight=bold")
	assert.Equal(t, ErrUnknownProperty, errorsx.Cause(err))
}

func TestTextPlacementsFaceNameWithSeparators(t *testing.T) {
	tests := []string{
		"Foo;Bar",
		"a=b",
		`Back\slash`,
		"trailing;",
		`mixed\;=`,
	}
	for _, faceName := range tests {
		t.Run(faceName, func(t *testing.T) {
			p := DefaultTextPlacements()
			p.FaceName = faceName
			p.TextSize = 14
			p.Format = styleexpr.MustParse("[name] + ';'")

			parsed, err := ParseTextPlacements(p.String())
			require.Nil(t, err)
			assert.Equal(t, faceName, parsed.FaceName)
			assert.Equal(t, 14.0, parsed.TextSize)
			assert.Equal(t, p.Format.String(), parsed.Format.String())
			assert.True(t, p.Equal(parsed))
		})
	}

	p := DefaultTextPlacements()
	p.FaceName = "Foo;Bar"
	assert.Equal(t, `face-name=Foo\;Bar;size=10;fill=#000000;halo-fill=#ffffff;halo-radius=0`, p.String())
}
