package symbolizer

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/ownmap-symbolizer/styling/stylecolor"
)

// DefaultColorizerEpsilon is the smallest float32 step above 1, the tolerance exact mode starts with
const DefaultColorizerEpsilon = 1.1920929e-07

// ColorizerStop colours raster values from Value up to the next stop
type ColorizerStop struct {
	Value float64
	Mode  ColorizerMode
	Color stylecolor.Color
	Label string
}

// RasterColorizer maps raw raster values (e.g. elevations) to colours
//
//	default-mode=discrete;default-color=#00000000;epsilon=1.1920929e-07;stop=0 #0044cc inherit;stop=10 #00cc00 linear "low"
type RasterColorizer struct {
	DefaultMode  ColorizerMode
	DefaultColor stylecolor.Color
	// Epsilon is how close a value must be to a stop to match it in exact mode
	Epsilon float64
	stops   []ColorizerStop
}

func NewRasterColorizer(defaultMode ColorizerMode, defaultColor stylecolor.Color) *RasterColorizer {
	return &RasterColorizer{
		DefaultMode:  defaultMode,
		DefaultColor: defaultColor,
		Epsilon:      DefaultColorizerEpsilon,
	}
}

// AddStop appends a stop. Stop values must be strictly increasing.
func (c *RasterColorizer) AddStop(stop ColorizerStop) errorsx.Error {
	if !colorizerModeEnum.isValid(int(stop.Mode)) {
		return errorsx.Wrap(ErrColorizer, "reason", "unknown stop mode", "mode", int(stop.Mode))
	}
	if len(c.stops) != 0 && stop.Value <= c.stops[len(c.stops)-1].Value {
		return errorsx.Wrap(ErrColorizer, "reason", "stop values must increase", "value", stop.Value, "previous", c.stops[len(c.stops)-1].Value)
	}
	c.stops = append(c.stops, stop)
	return nil
}

// Stops returns a copy of the stops, in value order
func (c *RasterColorizer) Stops() []ColorizerStop {
	return append([]ColorizerStop(nil), c.stops...)
}

// GetColor gives the colour of a raster value. Values below the first stop get the default colour.
func (c *RasterColorizer) GetColor(value float64) stylecolor.Color {
	if len(c.stops) == 0 {
		return c.DefaultColor
	}

	stopIdx := len(c.stops) - 1
	for i, stop := range c.stops {
		if value < stop.Value {
			stopIdx = i - 1
			break
		}
	}
	nextIdx := stopIdx + 1
	if nextIdx >= len(c.stops) {
		nextIdx = len(c.stops) - 1
	}

	if stopIdx == -1 {
		return c.DefaultColor
	}

	stop, next := c.stops[stopIdx], c.stops[nextIdx]
	mode := stop.Mode
	if mode == ColorizerModeInherit {
		mode = c.DefaultMode
	}

	switch mode {
	case ColorizerModeLinear:
		if next.Value == stop.Value {
			return stop.Color
		}
		fraction := (value - stop.Value) / (next.Value - stop.Value)
		return stylecolor.NewRGBA(
			interpolateChannel(stop.Color.R, next.Color.R, fraction),
			interpolateChannel(stop.Color.G, next.Color.G, fraction),
			interpolateChannel(stop.Color.B, next.Color.B, fraction),
			interpolateChannel(stop.Color.A, next.Color.A, fraction),
		)
	case ColorizerModeDiscrete:
		return stop.Color
	default:
		if value-stop.Value < c.Epsilon && stop.Value-value < c.Epsilon {
			return stop.Color
		}
		return c.DefaultColor
	}
}

func interpolateChannel(start, end uint8, fraction float64) uint8 {
	return uint8(float64(start) + (float64(end)-float64(start))*fraction)
}

func (c *RasterColorizer) Clone() *RasterColorizer {
	if c == nil {
		return nil
	}
	clone := *c
	clone.stops = c.Stops()
	return &clone
}

func (c *RasterColorizer) Equal(other *RasterColorizer) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.String() == other.String()
}

func (c *RasterColorizer) String() string {
	parts := []string{
		"default-mode=" + c.DefaultMode.String(),
		"default-color=" + c.DefaultColor.ToHexString(),
		"epsilon=" + strconv.FormatFloat(c.Epsilon, 'g', -1, 64),
	}
	for _, stop := range c.stops {
		text := "stop=" + strconv.FormatFloat(stop.Value, 'g', -1, 64) + " " + stop.Color.ToHexString() + " " + stop.Mode.String()
		if stop.Label != "" {
			text += " " + strconv.Quote(stop.Label)
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, ";")
}

// ParseRasterColorizer reads the String form. Segments may come in any order, except that stops are added in the
// order given. A stop is "value colour [mode] [label]"; the label is a double-quoted string.
func ParseRasterColorizer(text string) (*RasterColorizer, errorsx.Error) {
	c := NewRasterColorizer(ColorizerModeLinear, stylecolor.Transparent)

	segments, err := splitOutsideQuotes(text, func(r rune) bool { return r == ';' })
	if err != nil {
		return nil, err
	}
	for _, segment := range segments {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		name, value, ok := strings.Cut(segment, "=")
		if !ok {
			return nil, errorsx.Wrap(ErrColorizer, "reason", "expected name=value", "segment", segment)
		}
		value = strings.TrimSpace(value)

		switch strings.TrimSpace(name) {
		case "default-mode":
			mode, err := ParseColorizerMode(value)
			if err != nil {
				return nil, errorsx.Wrap(ErrColorizer, "reason", err.Error())
			}
			c.DefaultMode = mode
		case "default-color":
			color, err := stylecolor.Parse(value)
			if err != nil {
				return nil, errorsx.Wrap(err, "field", "default-color")
			}
			c.DefaultColor = color
		case "epsilon":
			epsilon, err := strconv.ParseFloat(value, 64)
			if err != nil || epsilon < 0 {
				return nil, errorsx.Wrap(ErrColorizer, "reason", "bad epsilon", "epsilon", value)
			}
			c.Epsilon = epsilon
		case "stop":
			stop, err := parseColorizerStop(value)
			if err != nil {
				return nil, err
			}
			err = c.AddStop(stop)
			if err != nil {
				return nil, err
			}
		default:
			return nil, errorsx.Wrap(ErrColorizer, "reason", "unknown field", "field", name)
		}
	}

	return c, nil
}

func parseColorizerStop(text string) (ColorizerStop, errorsx.Error) {
	fields, err := splitOutsideQuotes(text, unicode.IsSpace)
	if err != nil {
		return ColorizerStop{}, err
	}

	var nonEmpty []string
	for _, field := range fields {
		if field != "" {
			nonEmpty = append(nonEmpty, field)
		}
	}
	if len(nonEmpty) < 2 || len(nonEmpty) > 4 {
		return ColorizerStop{}, errorsx.Wrap(ErrColorizer, "reason", "expected value, colour, mode and label", "stop", text)
	}

	var stop ColorizerStop
	var parseErr error
	stop.Value, parseErr = strconv.ParseFloat(nonEmpty[0], 64)
	if parseErr != nil {
		return ColorizerStop{}, errorsx.Wrap(ErrColorizer, "reason", "bad stop value", "stop", text)
	}

	stop.Color, err = stylecolor.Parse(nonEmpty[1])
	if err != nil {
		return ColorizerStop{}, errorsx.Wrap(err, "stop", text)
	}

	for _, field := range nonEmpty[2:] {
		if strings.HasPrefix(field, `"`) {
			stop.Label, parseErr = strconv.Unquote(field)
			if parseErr != nil {
				return ColorizerStop{}, errorsx.Wrap(ErrColorizer, "reason", "bad label", "stop", text)
			}
			continue
		}
		stop.Mode, err = ParseColorizerMode(field)
		if err != nil {
			return ColorizerStop{}, errorsx.Wrap(ErrColorizer, "reason", err.Error(), "stop", text)
		}
	}

	return stop, nil
}

// splitOutsideQuotes splits at separator runes outside double-quoted strings and parentheses, so that
// `10 rgb(0, 0, 255) "a b"` gives three fields
func splitOutsideQuotes(text string, isSeparator func(r rune) bool) ([]string, errorsx.Error) {
	var fields []string
	var sb strings.Builder
	depth := 0

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])

		switch {
		case r == '"':
			quoted, err := strconv.QuotedPrefix(text[i:])
			if err != nil {
				return nil, errorsx.Wrap(ErrColorizer, "reason", "unterminated string", "text", text)
			}
			sb.WriteString(quoted)
			i += len(quoted)
			continue
		case r == '(':
			depth++
		case r == ')' && depth > 0:
			depth--
		case depth == 0 && isSeparator(r):
			fields = append(fields, sb.String())
			sb.Reset()
			i += size
			continue
		}
		sb.WriteString(text[i : i+size])
		i += size
	}

	return append(fields, sb.String()), nil
}
