package stylecolor

import (
	"testing"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    Color
		wantErr bool
	}{
		{"named", "blue", New(0, 0, 0xff), false},
		{"named, mixed case with spaces", "  DarkGreen ", New(0, 0x64, 0), false},
		{"short hex", "#fff", New(0xff, 0xff, 0xff), false},
		{"short hex with alpha", "#f008", NewRGBA(0xff, 0, 0, 0x88), false},
		{"long hex", "#f2eff9", New(0xf2, 0xef, 0xf9), false},
		{"long hex with alpha", "#004080c0", NewRGBA(0, 0x40, 0x80, 0xc0), false},
		{"rgb", "rgb(1, 2, 3)", New(1, 2, 3), false},
		{"rgb percentages", "rgb(50%,50%,50%)", New(128, 128, 128), false},
		{"rgba", "rgba(0,64,128,0.5)", NewRGBA(0, 64, 128, 128), false},
		{"hsl red", "hsl(0, 100%, 50%)", New(0xff, 0, 0), false},
		{"hsla green", "hsla(120,100%,25%,1)", New(0, 0x80, 0), false},
		{"transparent", "transparent", Transparent, false},
		{"unknown name", "foo", Color{}, true},
		{"empty", "", Color{}, true},
		{"bad hex", "#12", Color{}, true},
		{"bad hex digit", "#zzzzzz", Color{}, true},
		{"rgb missing argument", "rgb(1,2)", Color{}, true},
		{"rgb out of range", "rgb(1,2,300)", Color{}, true},
		{"unclosed function", "rgb(1,2,3", Color{}, true},
		{"unknown function", "cmyk(1,2,3,4)", Color{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, ErrColorParse, errorsx.Cause(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColor_ToHexString(t *testing.T) {
	assert.Equal(t, "#0000ff", MustParse("#0000ff").ToHexString())
	assert.Equal(t, "#f2eff9", MustParse("#f2eff9").ToHexString())
	assert.Equal(t, "#808080", MustParse("rgb(50%,50%,50%)").ToHexString())
	assert.Equal(t, "#004080c0", NewRGBA(0, 64, 128, 192).ToHexString())
}

func TestColor_String(t *testing.T) {
	assert.Equal(t, "rgb(0,0,255)", New(0, 0, 255).String())
	assert.Equal(t, "rgba(0,64,128,0.753)", NewRGBA(0, 64, 128, 192).String())
}

func TestColor_Packed(t *testing.T) {
	c := NewRGBA(1, 2, 3, 4)
	assert.Equal(t, uint32(0x04030201), c.Packed())
	assert.Equal(t, c, FromPacked(c.Packed()))
}

func TestColor_Premultiply(t *testing.T) {
	c := NewRGBA(200, 100, 50, 128)

	changed := c.Premultiply()
	require.True(t, changed)
	assert.Equal(t, Color{100, 50, 25, 128, true}, c)

	changed = c.Premultiply()
	assert.False(t, changed)

	changed = c.Demultiply()
	require.True(t, changed)
	assert.Equal(t, NewRGBA(199, 100, 50, 128), c)

	changed = c.Demultiply()
	assert.False(t, changed)
}

func TestColor_RGBA(t *testing.T) {
	r, g, b, a := New(0xff, 0, 0x80).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0), g)
	assert.Equal(t, uint32(0x8080), b)
	assert.Equal(t, uint32(0xffff), a)
}
