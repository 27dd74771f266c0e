package symbolizer

import (
	"strconv"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/ownmap-symbolizer/styling/stylecolor"
	"github.com/jamesrr39/ownmap-symbolizer/styling/styleexpr"
)

const DefaultFaceName = "DejaVu Sans Book"

// TextPlacements holds the label settings of text and shield symbolizers
type TextPlacements struct {
	FaceName   string
	TextSize   float64
	Fill       stylecolor.Color
	HaloFill   stylecolor.Color
	HaloRadius float64
	// Format is the label text expression, e.g. [name]. Nil means no label.
	Format *styleexpr.Expression
}

// PlacementFieldNames are the names used by SetField and Field, in canonical order
var PlacementFieldNames = []string{"face-name", "size", "fill", "halo-fill", "halo-radius", "format"}

func DefaultTextPlacements() *TextPlacements {
	return &TextPlacements{
		FaceName:   DefaultFaceName,
		TextSize:   10,
		Fill:       stylecolor.Black,
		HaloFill:   stylecolor.White,
		HaloRadius: 0,
	}
}

func (p *TextPlacements) Clone() *TextPlacements {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

// Field returns the text form of one field
func (p *TextPlacements) Field(name string) (string, bool) {
	switch name {
	case "face-name":
		return p.FaceName, true
	case "size":
		return strconv.FormatFloat(p.TextSize, 'f', -1, 64), true
	case "fill":
		return p.Fill.ToHexString(), true
	case "halo-fill":
		return p.HaloFill.ToHexString(), true
	case "halo-radius":
		return strconv.FormatFloat(p.HaloRadius, 'f', -1, 64), true
	case "format":
		if p.Format == nil {
			return "", false
		}
		return p.Format.String(), true
	}
	return "", false
}

// SetField sets one field from its text form
func (p *TextPlacements) SetField(name, text string) errorsx.Error {
	switch name {
	case "face-name":
		p.FaceName = text
	case "size", "halo-radius":
		v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return errorsx.Wrap(ErrTypeMismatch, "field", name, "value", text)
		}
		if name == "size" {
			p.TextSize = v
		} else {
			p.HaloRadius = v
		}
	case "fill", "halo-fill":
		c, err := stylecolor.Parse(text)
		if err != nil {
			return errorsx.Wrap(err, "field", name)
		}
		if name == "fill" {
			p.Fill = c
		} else {
			p.HaloFill = c
		}
	case "format":
		expr, err := styleexpr.Parse(text)
		if err != nil {
			return errorsx.Wrap(err, "field", name)
		}
		p.Format = expr
	default:
		return errorsx.Wrap(ErrUnknownProperty, "field", name)
	}
	return nil
}

// String gives the canonical text form, e.g. `face-name=DejaVu Sans Book;size=10;fill=#000000;...`.
// The format expression always comes last and is written verbatim, since it may itself contain ';'.
// In other fields '\' and ';' are escaped with a backslash.
func (p *TextPlacements) String() string {
	var parts []string
	for _, name := range PlacementFieldNames {
		text, ok := p.Field(name)
		if !ok {
			continue
		}
		if name != "format" {
			text = placementEscaper.Replace(text)
		}
		parts = append(parts, name+"="+text)
	}
	return strings.Join(parts, ";")
}

var placementEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`)

// splitPlacementSegment splits off the first segment at an unescaped ';', unescaping it
func splitPlacementSegment(text string) (segment, rest string) {
	var sb strings.Builder
	for i := 0; i < len(text); i++ {
		switch c := text[i]; {
		case c == '\\' && i+1 < len(text):
			i++
			sb.WriteByte(text[i])
		case c == ';':
			return sb.String(), text[i+1:]
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String(), ""
}

func ParseTextPlacements(text string) (*TextPlacements, errorsx.Error) {
	p := DefaultTextPlacements()

	rest := strings.TrimSpace(text)
	for rest != "" {
		if strings.HasPrefix(rest, "format=") {
			err := p.SetField("format", strings.TrimPrefix(rest, "format="))
			if err != nil {
				return nil, err
			}
			break
		}

		var segment string
		segment, rest = splitPlacementSegment(rest)
		rest = strings.TrimSpace(rest)

		name, value, ok := strings.Cut(segment, "=")
		if !ok {
			return nil, errorsx.Wrap(ErrTypeMismatch, "reason", "expected name=value", "segment", segment)
		}
		err := p.SetField(strings.TrimSpace(name), value)
		if err != nil {
			return nil, err
		}
	}

	return p, nil
}

func (p *TextPlacements) Equal(other *TextPlacements) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.String() == other.String()
}
