package stylecolor

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"golang.org/x/image/colornames"
)

var ErrColorParse = errors.New("ColorParseError")

// Color is an 8-bit RGBA value. When Premultiplied is set, R, G and B have already been multiplied by A.
type Color struct {
	R, G, B, A    uint8
	Premultiplied bool
}

var (
	Black       = Color{0, 0, 0, 0xff, false}
	White       = Color{0xff, 0xff, 0xff, 0xff, false}
	Transparent = Color{0, 0, 0, 0, false}
)

var _ color.Color = Color{}

func New(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 0xff}
}

func NewRGBA(r, g, b, a uint8) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// FromPacked unpacks a colour packed as 0xAABBGGRR.
func FromPacked(packed uint32) Color {
	return Color{
		R: uint8(packed),
		G: uint8(packed >> 8),
		B: uint8(packed >> 16),
		A: uint8(packed >> 24),
	}
}

func (c Color) Packed() uint32 {
	return uint32(c.A)<<24 | uint32(c.B)<<16 | uint32(c.G)<<8 | uint32(c.R)
}

// RGBA implements image/color.Color
func (c Color) RGBA() (r, g, b, a uint32) {
	a = uint32(c.A) * 0x101
	if c.Premultiplied {
		return uint32(c.R) * 0x101, uint32(c.G) * 0x101, uint32(c.B) * 0x101, a
	}

	r = uint32(c.R) * 0x101 * uint32(c.A) / 0xff
	g = uint32(c.G) * 0x101 * uint32(c.A) / 0xff
	b = uint32(c.B) * 0x101 * uint32(c.A) / 0xff
	return r, g, b, a
}

func (c Color) Equal(other Color) bool {
	return c == other
}

// Premultiply multiplies the colour channels by alpha. It returns false if the colour was already premultiplied.
func (c *Color) Premultiply() bool {
	if c.Premultiplied {
		return false
	}

	c.R = mulDiv255(c.R, c.A)
	c.G = mulDiv255(c.G, c.A)
	c.B = mulDiv255(c.B, c.A)
	c.Premultiplied = true
	return true
}

// Demultiply reverses Premultiply. It returns false if the colour was not premultiplied.
func (c *Color) Demultiply() bool {
	if !c.Premultiplied {
		return false
	}

	switch c.A {
	case 0:
		c.R, c.G, c.B = 0, 0, 0
	case 0xff:
		// nothing to do
	default:
		c.R = divAlpha(c.R, c.A)
		c.G = divAlpha(c.G, c.A)
		c.B = divAlpha(c.B, c.A)
	}
	c.Premultiplied = false
	return true
}

func mulDiv255(channel, alpha uint8) uint8 {
	return uint8((uint32(channel)*uint32(alpha) + 127) / 255)
}

func divAlpha(channel, alpha uint8) uint8 {
	v := (uint32(channel)*255 + uint32(alpha)/2) / uint32(alpha)
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// ToHexString returns #rrggbb, or #rrggbbaa when the colour is not fully opaque
func (c Color) ToHexString() string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

func (c Color) String() string {
	if c.A == 0xff {
		return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
	}

	alpha := math.Round(float64(c.A)/255*1000) / 1000
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", c.R, c.G, c.B, strconv.FormatFloat(alpha, 'f', -1, 64))
}

// Parse reads a CSS colour: a name, hex notation, or one of the rgb(), rgba(), hsl() and hsla() functions.
func Parse(s string) (Color, errorsx.Error) {
	text := strings.ToLower(strings.TrimSpace(s))
	if text == "" {
		return Color{}, errorsx.Wrap(ErrColorParse, "color", s)
	}

	if text == "transparent" {
		return Transparent, nil
	}

	if strings.HasPrefix(text, "#") {
		c, ok := parseHex(text[1:])
		if !ok {
			return Color{}, errorsx.Wrap(ErrColorParse, "color", s)
		}
		return c, nil
	}

	if idx := strings.Index(text, "("); idx != -1 {
		if !strings.HasSuffix(text, ")") {
			return Color{}, errorsx.Wrap(ErrColorParse, "color", s)
		}
		fnName := strings.TrimSpace(text[:idx])
		args := splitArgs(text[idx+1 : len(text)-1])

		c, ok := parseFunction(fnName, args)
		if !ok {
			return Color{}, errorsx.Wrap(ErrColorParse, "color", s)
		}
		return c, nil
	}

	named, ok := colornames.Map[text]
	if !ok {
		return Color{}, errorsx.Wrap(ErrColorParse, "color", s)
	}

	return Color{R: named.R, G: named.G, B: named.B, A: named.A}, nil
}

// MustParse is Parse for colour literals known to be valid
func MustParse(s string) Color {
	c, err := Parse(s)
	if err != nil {
		panic(err.Error())
	}
	return c
}

func parseHex(hex string) (Color, bool) {
	switch len(hex) {
	case 3, 4:
		var channels [4]uint8
		channels[3] = 0xff
		for i := 0; i < len(hex); i++ {
			v, err := strconv.ParseUint(hex[i:i+1], 16, 8)
			if err != nil {
				return Color{}, false
			}
			channels[i] = uint8(v*16 + v)
		}
		return Color{R: channels[0], G: channels[1], B: channels[2], A: channels[3]}, true
	case 6, 8:
		var channels [4]uint8
		channels[3] = 0xff
		for i := 0; i < len(hex)/2; i++ {
			v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
			if err != nil {
				return Color{}, false
			}
			channels[i] = uint8(v)
		}
		return Color{R: channels[0], G: channels[1], B: channels[2], A: channels[3]}, true
	default:
		return Color{}, false
	}
}

func splitArgs(s string) []string {
	var args []string
	for _, arg := range strings.Split(s, ",") {
		args = append(args, strings.TrimSpace(arg))
	}
	return args
}

func parseFunction(fnName string, args []string) (Color, bool) {
	switch fnName {
	case "rgb", "rgba":
		if (fnName == "rgb" && len(args) != 3) || (fnName == "rgba" && len(args) != 4) {
			return Color{}, false
		}
		var channels [3]uint8
		for i := 0; i < 3; i++ {
			v, ok := parseChannel(args[i])
			if !ok {
				return Color{}, false
			}
			channels[i] = v
		}
		alpha := uint8(0xff)
		if len(args) == 4 {
			a, ok := parseAlpha(args[3])
			if !ok {
				return Color{}, false
			}
			alpha = a
		}
		return Color{R: channels[0], G: channels[1], B: channels[2], A: alpha}, true
	case "hsl", "hsla":
		if (fnName == "hsl" && len(args) != 3) || (fnName == "hsla" && len(args) != 4) {
			return Color{}, false
		}
		h, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return Color{}, false
		}
		s, ok := parsePercentage(args[1])
		if !ok {
			return Color{}, false
		}
		l, ok := parsePercentage(args[2])
		if !ok {
			return Color{}, false
		}
		alpha := uint8(0xff)
		if len(args) == 4 {
			a, ok := parseAlpha(args[3])
			if !ok {
				return Color{}, false
			}
			alpha = a
		}
		r, g, b := hslToRGB(h, s, l)
		return Color{R: r, G: g, B: b, A: alpha}, true
	default:
		return Color{}, false
	}
}

func parseChannel(s string) (uint8, bool) {
	if strings.HasSuffix(s, "%") {
		p, ok := parsePercentage(s)
		if !ok {
			return 0, false
		}
		return uint8(math.Round(p * 255)), true
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || v > 255 {
		return 0, false
	}
	return uint8(math.Round(v)), true
}

// parsePercentage returns a fraction between 0 and 1
func parsePercentage(s string) (float64, bool) {
	if !strings.HasSuffix(s, "%") {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "%")), 64)
	if err != nil || v < 0 || v > 100 {
		return 0, false
	}
	return v / 100, true
}

func parseAlpha(s string) (uint8, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || v > 1 {
		return 0, false
	}
	return uint8(math.Round(v * 255)), true
}

func hslToRGB(h, s, l float64) (uint8, uint8, uint8) {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	h /= 360

	var m2 float64
	if l <= 0.5 {
		m2 = l * (s + 1)
	} else {
		m2 = l + s - l*s
	}
	m1 := l*2 - m2

	toByte := func(v float64) uint8 {
		return uint8(math.Round(v * 255))
	}

	return toByte(hueToRGB(m1, m2, h+1.0/3)), toByte(hueToRGB(m1, m2, h)), toByte(hueToRGB(m1, m2, h-1.0/3))
}

func hueToRGB(m1, m2, h float64) float64 {
	if h < 0 {
		h++
	}
	if h > 1 {
		h--
	}
	switch {
	case h*6 < 1:
		return m1 + (m2-m1)*h*6
	case h*2 < 1:
		return m2
	case h*3 < 2:
		return m1 + (m2-m1)*(2.0/3-h)*6
	default:
		return m1
	}
}
