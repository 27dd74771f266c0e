package symbolizer

import (
	"bytes"
	"math"
	"testing"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/ownmap-symbolizer/styling/stylecolor"
	"github.com/jamesrr39/ownmap-symbolizer/styling/styleexpr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineSymbolizerDefaults(t *testing.T) {
	sym := NewLineSymbolizer()

	stroke, err := GetProperty(sym, KeyStroke)
	require.Nil(t, err)
	assert.Equal(t, stylecolor.Black, stroke)

	width, err := GetProperty(sym, KeyStrokeWidth)
	require.Nil(t, err)
	assert.Equal(t, 1.0, width)
}

func TestSetStrokeDashArray(t *testing.T) {
	sym := NewLineSymbolizer()

	err := sym.SetStrokeDashArray("4,2,1,2")
	require.Nil(t, err)

	dashes, err := sym.StrokeDashArray()
	require.Nil(t, err)
	assert.Equal(t, "4,2,1,2", dashes)

	err = sym.SetStrokeDashArray("bad")
	require.NotNil(t, err)
	assert.Equal(t, ErrDasharrayParse, errorsx.Cause(err))

	dashes, err = sym.StrokeDashArray()
	require.Nil(t, err)
	assert.Equal(t, "4,2,1,2", dashes)
}

func TestIntegerWidensToDouble(t *testing.T) {
	sym := NewPolygonSymbolizer()

	err := SetProperty(sym, KeyFillOpacity, 1)
	require.Nil(t, err)

	opacity, err := GetProperty(sym, KeyFillOpacity)
	require.Nil(t, err)
	assert.Equal(t, 1.0, opacity)
}

func TestDoubleKeysAcceptIntegers(t *testing.T) {
	for _, key := range AllKeys() {
		meta, err := Metadata(key)
		require.Nil(t, err)
		if meta.TargetType != TargetTypeDouble {
			continue
		}

		t.Run(meta.Name, func(t *testing.T) {
			sym := NewDotSymbolizer()
			err := SetProperty(sym, key, 5)
			require.Nil(t, err)

			val, err := GetProperty(sym, key)
			require.Nil(t, err)
			assert.Equal(t, 5.0, val)
		})
	}
}

func TestExpressionsRoundTripForEveryKey(t *testing.T) {
	expr := styleexpr.MustParse("[width] * 2")

	for _, key := range AllKeys() {
		t.Run(key.String(), func(t *testing.T) {
			sym := NewMarkersSymbolizer()
			err := SetProperty(sym, key, expr)
			require.Nil(t, err)

			got, err := GetProperty(sym, key)
			require.Nil(t, err)
			assert.Same(t, expr, got)

			err = SetProperty(sym, key, got)
			require.Nil(t, err)

			again, err := GetProperty(sym, key)
			require.Nil(t, err)
			assert.Same(t, expr, again)
		})
	}
}

func TestCompositeOpFidelity(t *testing.T) {
	ops := AllCompositeOps()
	require.Len(t, ops, 36)

	sym := NewPolygonSymbolizer()
	for _, op := range ops {
		err := SetProperty(sym, KeyCompOp, op)
		require.Nil(t, err)

		got, err := GetProperty(sym, KeyCompOp)
		require.Nil(t, err)
		assert.Equal(t, op, got)

		slot, err := sym.CompOp()
		require.Nil(t, err)
		assert.Equal(t, op, slot.Or(CompositeOp(-1)))
	}
}

func TestEnumSettersRejectOutOfRangeValues(t *testing.T) {
	polygon := NewPolygonSymbolizer()
	require.Nil(t, polygon.SetCompOp(CompositeOpMultiply))

	err := polygon.SetCompOp(CompositeOp(99))
	require.NotNil(t, err)
	assert.Equal(t, ErrTypeMismatch, errorsx.Cause(err))

	compOp, err := polygon.CompOp()
	require.Nil(t, err)
	assert.Equal(t, CompositeOpMultiply, compOp.Or(CompositeOp(-1)))

	line := NewLineSymbolizer()
	err = line.SetStrokeLinecap(LineCap(-1))
	require.NotNil(t, err)
	assert.Equal(t, ErrTypeMismatch, errorsx.Cause(err))

	_, err = GetProperty(line, KeyStrokeLinecap)
	assert.Equal(t, ErrPropertyNotSet, errorsx.Cause(err))

	debug := NewDebugSymbolizer()
	err = debug.SetMode(DebugSymbolizerMode(42))
	require.NotNil(t, err)
	assert.Equal(t, ErrTypeMismatch, errorsx.Cause(err))
	assert.Equal(t, "collision", FormatProperties(debug)["mode"])
}

func TestKeysAreAlwaysGettable(t *testing.T) {
	for _, kind := range AllKinds() {
		sym, err := New(kind)
		require.Nil(t, err)

		names := Keys(sym)
		for _, name := range names {
			_, err := GetByName(sym, name)
			assert.Nil(t, err, "kind %s, property %s", kind, name)
		}

		for _, key := range AllKeys() {
			_, err := GetProperty(sym, key)
			if err != nil {
				assert.Equal(t, ErrPropertyNotSet, errorsx.Cause(err))
				assert.NotContains(t, names, key.String())
			}
		}
	}
}

func TestTextSymbolizerKeysResolveByName(t *testing.T) {
	sym := NewTextSymbolizer()

	names := Keys(sym)
	require.Equal(t, []string{"text-placements"}, names)

	for _, name := range names {
		val, err := GetByName(sym, name)
		require.Nil(t, err)
		assert.Equal(t, DefaultTextPlacements(), val)
	}
}

func TestGetPropertyErrors(t *testing.T) {
	sym := NewLineSymbolizer()

	_, err := GetProperty(sym, KeyFill)
	require.NotNil(t, err)
	assert.Equal(t, ErrPropertyNotSet, errorsx.Cause(err))

	_, err = GetProperty(sym, keyCount)
	require.NotNil(t, err)
	assert.Equal(t, ErrUnknownProperty, errorsx.Cause(err))

	_, err = GetByName(sym, "no-such-property")
	require.NotNil(t, err)
	assert.Equal(t, ErrUnknownProperty, errorsx.Cause(err))
}

func TestSetProperty(t *testing.T) {
	type args struct {
		key   Key
		value interface{}
	}
	tests := []struct {
		name    string
		args    args
		want    interface{}
		wantErr error
	}{
		{"bool", args{KeyClip, true}, true, nil},
		{"bool from int is rejected", args{KeyClip, 1}, nil, ErrTypeMismatch},
		{"integer", args{KeyMeshSize, 16}, int64(16), nil},
		{"integer from float is rejected", args{KeyMeshSize, 16.0}, nil, ErrTypeMismatch},
		{"double from float32", args{KeyOpacity, float32(0.5)}, 0.5, nil},
		{"string", args{KeyFontFeatureSettings, "liga"}, "liga", nil},
		{"string from int is rejected", args{KeyFontFeatureSettings, 3}, nil, ErrTypeMismatch},
		{"color", args{KeyFill, stylecolor.New(1, 2, 3)}, stylecolor.New(1, 2, 3), nil},
		{"color from text", args{KeyFill, "#0000ff"}, stylecolor.New(0, 0, 0xff), nil},
		{"color from bad text", args{KeyFill, "not-a-colour"}, nil, stylecolor.ErrColorParse},
		{"path", args{KeyFile, "icons/[shop].svg"}, "icons/[shop].svg", nil},
		{"transform", args{KeyImageTransform, "scale(2)"}, "scale(2)", nil},
		{"dasharray from slice", args{KeyStrokeDasharray, []float64{3, 1}}, "3,1", nil},
		{"odd dasharray is repeated", args{KeyStrokeDasharray, "5"}, "5,5", nil},
		{"enum", args{KeyStrokeLinecap, LineCapRound}, LineCapRound, nil},
		{"enum of the wrong type", args{KeyStrokeLinecap, LineJoinRound}, nil, ErrTypeMismatch},
		{"enum from int is rejected", args{KeyStrokeLinecap, 1}, nil, ErrTypeMismatch},
		{"nil", args{KeyOpacity, nil}, nil, ErrTypeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sym := NewMarkersSymbolizer()
			err := SetProperty(sym, tt.args.key, tt.args.value)
			if tt.wantErr != nil {
				require.NotNil(t, err)
				assert.Equal(t, tt.wantErr, errorsx.Cause(err))
				return
			}
			require.Nil(t, err)

			got, err := GetProperty(sym, tt.args.key)
			require.Nil(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFailedSetLeavesValueInPlace(t *testing.T) {
	sym := NewLineSymbolizer()

	err := SetProperty(sym, KeyStrokeWidth, "wide")
	require.NotNil(t, err)

	width, err := GetProperty(sym, KeyStrokeWidth)
	require.Nil(t, err)
	assert.Equal(t, 1.0, width)
}

func TestSetByName(t *testing.T) {
	tests := []struct {
		name     string
		property string
		value    interface{}
		want     interface{}
		wantErr  error
	}{
		{"int to bool", "clip", 1, true, nil},
		{"zero to bool", "allow-overlap", 0, false, nil},
		{"float to bool", "clip", 0.0, false, nil},
		{"int to double", "stroke-width", 3, 3.0, nil},
		{"integral float to integer", "mesh-size", 8.0, int64(8), nil},
		{"fractional float to integer", "mesh-size", 8.5, nil, ErrTypeMismatch},
		{"uint to integer", "mesh-size", uint(7), int64(7), nil},
		{"uint above int64 range", "mesh-size", ^uint(0), nil, ErrTypeMismatch},
		{"uint64 above int64 range", "mesh-size", uint64(math.MaxUint64), nil, ErrTypeMismatch},
		{"uint above int64 range to bool", "clip", ^uint(0), nil, ErrTypeMismatch},
		{"int to enum", "stroke-linejoin", int(LineJoinBevel), LineJoinBevel, nil},
		{"out of range int to enum", "stroke-linejoin", 99, nil, ErrTypeMismatch},
		{"underscore name", "stroke_width", 2.5, 2.5, nil},
		{"unknown name", "stroke-colour", 1, nil, ErrUnknownProperty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sym := NewLineSymbolizer()
			err := SetByName(sym, tt.property, tt.value)
			if tt.wantErr != nil {
				require.NotNil(t, err)
				assert.Equal(t, tt.wantErr, errorsx.Cause(err))
				return
			}
			require.Nil(t, err)

			got, err := GetByName(sym, tt.property)
			require.Nil(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnumWithoutConverterPanics(t *testing.T) {
	sym := NewPolygonSymbolizer()
	sym.Put(KeyFill, EnumerationWrapper{Value: 1, Key: KeyCompOp})

	assert.PanicsWithValue(t, KeyConversionError{Key: KeyFill, Name: "fill"}, func() {
		GetProperty(sym, KeyFill)
	})
}

type unregisteredValue struct{}

func (unregisteredValue) isValue() {}

func TestUnknownValueIsLogged(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	SetDiagnosticsLogger(logpkg.NewLogger(buf, logpkg.LogLevelWarn))
	defer SetDiagnosticsLogger(logpkg.NewLogger(bytes.NewBuffer(nil), logpkg.LogLevelWarn))

	sym := NewLineSymbolizer()
	sym.Put(KeyOffset, unregisteredValue{})

	val, err := GetProperty(sym, KeyOffset)
	require.Nil(t, err)
	assert.Nil(t, val)
	assert.Contains(t, buf.String(), "WARN")
	assert.Contains(t, buf.String(), `"offset"`)
}

func TestSlots(t *testing.T) {
	sym := NewLineSymbolizer()

	width, err := sym.StrokeWidth()
	require.Nil(t, err)
	literal, ok := width.Literal()
	assert.True(t, ok)
	assert.Equal(t, 1.0, literal)

	expr := styleexpr.MustParse("[lanes] * 2")
	err = SetSlot(sym, KeyStrokeWidth, Deferred[float64](expr))
	require.Nil(t, err)

	width, err = sym.StrokeWidth()
	require.Nil(t, err)
	assert.True(t, width.IsDeferred())
	assert.Same(t, expr, width.Expression())
	assert.Equal(t, 3.0, width.Or(3))
	assert.Equal(t, "([lanes] * 2)", width.String())

	_, err = GetSlot[bool](sym, KeyStrokeWidth)
	assert.Nil(t, err)

	sym.SetStrokeWidth(2)
	_, err = GetSlot[bool](sym, KeyStrokeWidth)
	require.NotNil(t, err)
	assert.Equal(t, ErrTypeMismatch, errorsx.Cause(err))
}

func TestKindAccessors(t *testing.T) {
	markers := NewMarkersSymbolizer()
	require.Nil(t, markers.SetPlacement(MarkerPlacementLine))
	markers.SetSpacing(100)
	require.Nil(t, markers.SetFile("icons/arrow.svg"))

	placement, err := markers.Placement()
	require.Nil(t, err)
	assert.Equal(t, MarkerPlacementLine, placement.Or(MarkerPlacementPoint))

	file, err := markers.File()
	require.Nil(t, err)
	assert.Equal(t, "icons/arrow.svg", file)

	raster := NewRasterSymbolizer()
	raster.SetMeshSize(16)
	meshSize, err := raster.MeshSize()
	require.Nil(t, err)
	assert.Equal(t, int64(16), meshSize.Or(0))

	text := NewTextSymbolizer()
	placements, err := text.Placements()
	require.Nil(t, err)
	assert.Equal(t, DefaultFaceName, placements.FaceName)

	placements = placements.Clone()
	placements.TextSize = 14
	placements.Format = styleexpr.MustParse("[name]")
	text.SetPlacements(placements)

	stored, err := text.Placements()
	require.Nil(t, err)
	assert.Equal(t, 14.0, stored.TextSize)
	assert.NotSame(t, placements, stored)

	group := NewGroupSymbolizer()
	_, err = group.RepeatKey()
	assert.Equal(t, ErrPropertyNotSet, errorsx.Cause(err))

	group.SetRepeatKey(styleexpr.MustParse("[ref]"))
	repeatKey, err := group.RepeatKey()
	require.Nil(t, err)
	assert.Equal(t, "[ref]", repeatKey.String())
}

func TestBaseAccessors(t *testing.T) {
	sym := NewPolygonSymbolizer()

	sym.SetClip(false)
	sym.SetSimplifyTolerance(0.5)
	require.Nil(t, sym.SetGeometryTransform("translate(2, 3)"))
	err := sym.SetGeometryTransform("translate(")
	require.NotNil(t, err)

	clip, err := sym.Clip()
	require.Nil(t, err)
	assert.False(t, clip.Or(true))

	transform, err := sym.GeometryTransform()
	require.Nil(t, err)
	assert.Equal(t, "translate(2, 3)", transform)

	assert.Equal(t, []string{"clip", "simplify", "geometry-transform", "fill"}, Keys(sym))
}
