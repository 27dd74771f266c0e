package swatchrenderer

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

func NewImageWithBackground(r image.Rectangle, c color.Color) *image.RGBA {
	img := image.NewRGBA(r)

	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)

	return img
}

// withOpacity scales all (premultiplied) channels of c by opacity, clamped to [0, 1]
func withOpacity(c color.Color, opacity float64) color.Color {
	opacity = math.Max(0, math.Min(1, opacity))
	r, g, b, a := c.RGBA()

	return color.RGBA64{
		R: uint16(float64(r) * opacity),
		G: uint16(float64(g) * opacity),
		B: uint16(float64(b) * opacity),
		A: uint16(float64(a) * opacity),
	}
}

func darken(c color.Color, factor float64) color.Color {
	r, g, b, a := c.RGBA()

	return color.RGBA64{
		R: uint16(float64(r) * factor),
		G: uint16(float64(g) * factor),
		B: uint16(float64(b) * factor),
		A: uint16(a),
	}
}
