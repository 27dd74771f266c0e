package pathexpr

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/ownmap-symbolizer/styling/styleexpr"
)

var ErrPathParse = errors.New("PathParseError")

type segment struct {
	text        string
	isAttribute bool
}

// PathExpression is a file path template, e.g. `symbols/[amenity]-[size].svg`
type PathExpression struct {
	segments []segment
}

func Parse(text string) (*PathExpression, errorsx.Error) {
	var segments []segment

	rest := text
	for rest != "" {
		openIdx := strings.Index(rest, "[")
		if openIdx == -1 {
			segments = append(segments, segment{text: rest})
			break
		}
		if openIdx > 0 {
			segments = append(segments, segment{text: rest[:openIdx]})
		}

		closeIdx := strings.Index(rest[openIdx:], "]")
		if closeIdx == -1 {
			return nil, errorsx.Wrap(ErrPathParse, "reason", "unterminated placeholder", "path", text)
		}
		closeIdx += openIdx

		name := strings.TrimSpace(rest[openIdx+1 : closeIdx])
		if name == "" || strings.Contains(name, "[") {
			return nil, errorsx.Wrap(ErrPathParse, "reason", "bad placeholder name", "path", text)
		}
		segments = append(segments, segment{text: name, isAttribute: true})
		rest = rest[closeIdx+1:]
	}

	if len(segments) == 0 {
		return nil, errorsx.Wrap(ErrPathParse, "reason", "empty path")
	}

	return &PathExpression{segments}, nil
}

func MustParse(text string) *PathExpression {
	p, err := Parse(text)
	if err != nil {
		panic(err.Error())
	}
	return p
}

func (p *PathExpression) String() string {
	var sb strings.Builder
	for _, seg := range p.segments {
		if seg.isAttribute {
			sb.WriteString("[" + seg.text + "]")
			continue
		}
		sb.WriteString(seg.text)
	}
	return sb.String()
}

// Evaluate fills the placeholders from the feature. Missing attributes become empty strings.
func (p *PathExpression) Evaluate(feature styleexpr.Feature) string {
	var sb strings.Builder
	for _, seg := range p.segments {
		if !seg.isAttribute {
			sb.WriteString(seg.text)
			continue
		}
		if feature == nil {
			continue
		}
		val, ok := feature.Attribute(seg.text)
		if !ok || val == nil {
			continue
		}
		sb.WriteString(formatAttribute(val))
	}
	return sb.String()
}

// Attributes lists the placeholder names, sorted
func (p *PathExpression) Attributes() []string {
	seen := make(map[string]bool)
	var names []string
	for _, seg := range p.segments {
		if seg.isAttribute && !seen[seg.text] {
			seen[seg.text] = true
			names = append(names, seg.text)
		}
	}
	sort.Strings(names)
	return names
}

// IsStatic reports whether the path contains no placeholders
func (p *PathExpression) IsStatic() bool {
	for _, seg := range p.segments {
		if seg.isAttribute {
			return false
		}
	}
	return true
}

func (p *PathExpression) Equal(other *PathExpression) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.String() == other.String()
}

func formatAttribute(val interface{}) string {
	switch v := val.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return fmt.Sprintf("%v", v)
	}
}
