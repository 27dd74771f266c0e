package symbolizer

import (
	"testing"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/ownmap-symbolizer/styling/styleexpr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetFromString(t *testing.T) {
	tests := []struct {
		name     string
		property string
		text     string
		want     string
		deferred bool
		wantErr  error
	}{
		{"double", "stroke-width", "2.5", "2.5", false, nil},
		{"double expression", "stroke-width", "[lanes] * 2", "([lanes] * 2)", true, nil},
		{"constant of the wrong type", "stroke-width", "true", "", false, ErrTypeMismatch},
		{"bool", "clip", "false", "false", false, nil},
		{"integer", "mesh-size", "16", "16", false, nil},
		{"string keeps spaces", "font-feature-settings", " liga ", " liga ", false, nil},
		{"color", "stroke", "rgb(255, 0, 0)", "#ff0000", false, nil},
		{"color expression", "stroke", "[colour]", "[colour]", true, nil},
		{"enum", "stroke-linejoin", "BEVEL", "bevel", false, nil},
		{"enum with underscore", "comp-op", "src_over", "src-over", false, nil},
		{"unknown enum literal", "stroke-linejoin", "pointy", "", false, ErrTypeMismatch},
		{"path", "file", "icons/[shop].svg", "icons/[shop].svg", false, nil},
		{"transform", "image-transform", "rotate(45) scale(2,3)", "rotate(45) scale(2, 3)", false, nil},
		{"dasharray", "stroke-dasharray", "4 2", "4,2", false, nil},
		{"bad dasharray", "stroke-dasharray", "4,x", "", false, ErrDasharrayParse},
		{"expression target", "repeat-key", "[ref]", "[ref]", true, nil},
		{"unknown property", "stroke-colour", "red", "", false, ErrUnknownProperty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sym := NewLineSymbolizer()
			err := SetFromString(sym, tt.property, tt.text)
			if tt.wantErr != nil {
				require.NotNil(t, err)
				assert.Equal(t, tt.wantErr, errorsx.Cause(err))
				return
			}
			require.Nil(t, err)

			key, err := LookupByName(tt.property)
			require.Nil(t, err)

			text, err := FormatProperty(sym, key)
			require.Nil(t, err)
			assert.Equal(t, tt.want, text)

			val, _ := sym.Get(key)
			_, isDeferred := val.(ExpressionValue)
			assert.Equal(t, tt.deferred, isDeferred)
		})
	}
}

func TestFormatProperties(t *testing.T) {
	sym := NewMarkersSymbolizer()
	require.Nil(t, sym.SetPlacement(MarkerPlacementLine))

	assert.Equal(t, map[string]string{
		"fill":              "#0000ff",
		"width":             "10",
		"height":            "10",
		"markers-placement": "line",
	}, FormatProperties(sym))

	_, err := FormatProperty(sym, KeyStroke)
	assert.Equal(t, ErrPropertyNotSet, errorsx.Cause(err))
}

func TestFormattedPropertiesLoadBack(t *testing.T) {
	for _, kind := range AllKinds() {
		t.Run(kind.String(), func(t *testing.T) {
			sym, err := New(kind)
			require.Nil(t, err)
			require.Nil(t, SetProperty(sym, KeyCompOp, CompositeOpDarken))
			require.Nil(t, SetProperty(sym, KeySmooth, styleexpr.MustParse("[smoothness] / 10")))

			loaded, err := NewEmpty(kind)
			require.Nil(t, err)
			for name, text := range FormatProperties(sym) {
				err := SetFromString(loaded, name, text)
				require.Nil(t, err, "property %s", name)
			}

			assert.True(t, Equal(sym, loaded))
			assert.Equal(t, StructuralHash(sym), StructuralHash(loaded))
		})
	}
}

func TestDeferredPropertiesLoadBack(t *testing.T) {
	expr := styleexpr.MustParse("[t]")

	for _, key := range AllKeys() {
		meta, err := Metadata(key)
		require.Nil(t, err)

		t.Run(meta.Name, func(t *testing.T) {
			sym := NewMarkersSymbolizer()
			require.Nil(t, SetProperty(sym, key, expr))
			assert.Equal(t, meta.TargetType != TargetTypeExpression, IsDeferred(sym, key))

			text, err := FormatProperty(sym, key)
			require.Nil(t, err)
			assert.Equal(t, "[t]", text)

			loaded := NewMarkersSymbolizer()
			if IsDeferred(sym, key) {
				err = SetDeferredFromString(loaded, meta.Name, text)
			} else {
				err = SetFromString(loaded, meta.Name, text)
			}
			require.Nil(t, err)

			got, err := GetProperty(loaded, key)
			require.Nil(t, err)
			assert.Equal(t, "[t]", got.(*styleexpr.Expression).String())
			assert.True(t, Equal(sym, loaded))
			assert.Equal(t, StructuralHash(sym), StructuralHash(loaded))
		})
	}
}

func TestDeferredPropertyNames(t *testing.T) {
	sym := NewMarkersSymbolizer()
	require.Nil(t, SetFromString(sym, "width", "[size] * 2"))
	require.Nil(t, SetDeferredFromString(sym, "file", "[icon]"))
	require.Nil(t, SetFromString(sym, "fill", "red"))
	require.Nil(t, sym.SetFile("icons/[icon].svg"))
	require.Nil(t, SetDeferredFromString(sym, "stroke-dasharray", "[dashes]"))

	assert.Equal(t, []string{"stroke-dasharray", "width"}, DeferredPropertyNames(sym))
	assert.False(t, IsDeferred(sym, KeyFill))
	assert.False(t, IsDeferred(sym, KeyFile))

	err := SetDeferredFromString(sym, "width", "[size] *")
	require.NotNil(t, err)
	assert.Equal(t, styleexpr.ErrExpressionParse, errorsx.Cause(err))

	err = SetDeferredFromString(sym, "widht", "[size]")
	assert.Equal(t, ErrUnknownProperty, errorsx.Cause(err))
}
