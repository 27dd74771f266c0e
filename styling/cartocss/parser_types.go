package cartocss

import (
	"errors"
	"strings"
)

var (
	ErrParse           = errors.New("CartoCSSParseError")
	ErrUnknownVariable = errors.New("CartoCSSUnknownVariableError")
)

type selector struct {
	Layer      string
	Attachment string
	Conditions []condition
	Zoom       zoomRange
}

// combine nests a child selector inside its parent
func (s selector) combine(child selector) selector {
	combined := selector{
		Layer:      s.Layer,
		Attachment: s.Attachment,
		Conditions: append(append([]condition(nil), s.Conditions...), child.Conditions...),
		Zoom:       s.Zoom.intersect(child.Zoom),
	}
	if child.Layer != "" {
		combined.Layer = child.Layer
	}
	if child.Attachment != "" {
		combined.Attachment = child.Attachment
	}
	return combined
}

// styleName is the feature type style the selector's rules go to, e.g. "roads::casing"
func (s selector) styleName() string {
	name := s.Layer
	if name == "" {
		name = "style"
	}
	if s.Attachment != "" {
		name += TokenPseudoSelector + s.Attachment
	}
	return name
}

func (s selector) filterText() string {
	var parts []string
	for _, c := range s.Conditions {
		if c.Category == categoryAttribute {
			parts = append(parts, c.expressionText())
		}
	}
	return strings.Join(parts, " and ")
}

type declaration struct {
	Property string
	Value    string
	// Order is the position of the declaration in the stylesheet
	Order int
}

type block struct {
	Selectors    []selector
	Declarations []declaration
	Children     []*block
	IsMap        bool
}

// Stylesheet is a parsed stylesheet, before it is turned into rules
type Stylesheet struct {
	Variables map[string]string
	Blocks    []*block
}
