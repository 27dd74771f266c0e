package cartocss

import (
	"math"
	"strconv"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/ownmap-symbolizer/styling"
)

type comparatorOperator int

const (
	comparatorOperatorEquals comparatorOperator = iota
	comparatorOperatorNotEquals
	comparatorOperatorLessThanOrEqualTo
	comparatorOperatorLessThan
	comparatorOperatorGreaterThanOrEqualTo
	comparatorOperatorGreaterThan
)

// longest first, so that "<=" is not read as "<"
var comparatorOperatorTokens = []struct {
	token    string
	operator comparatorOperator
}{
	{"!=", comparatorOperatorNotEquals},
	{"<=", comparatorOperatorLessThanOrEqualTo},
	{">=", comparatorOperatorGreaterThanOrEqualTo},
	{"=", comparatorOperatorEquals},
	{"<", comparatorOperatorLessThan},
	{">", comparatorOperatorGreaterThan},
}

func (o comparatorOperator) String() string {
	for _, t := range comparatorOperatorTokens {
		if t.operator == o {
			return t.token
		}
	}
	return "?"
}

type category int

const (
	categoryZoomLevel category = iota
	categoryAttribute
)

// condition is one bracketed selector filter, e.g. [zoom >= 10] or [highway = 'primary']
type condition struct {
	Category category
	Thing    string
	Operator comparatorOperator
	Value    string
}

func parseCondition(text string) (condition, errorsx.Error) {
	inner := strings.TrimSpace(text)

	opIdx, opLen := -1, 0
	var op comparatorOperator
	inQuote := rune(0)
	for i, r := range inner {
		if inQuote != 0 {
			if r == inQuote {
				inQuote = 0
			}
			continue
		}
		if r == TokenSingleQuote || r == TokenDoubleQuote {
			inQuote = r
			continue
		}
		for _, t := range comparatorOperatorTokens {
			if strings.HasPrefix(inner[i:], t.token) {
				opIdx, opLen, op = i, len(t.token), t.operator
				break
			}
		}
		if opIdx != -1 {
			break
		}
	}
	if opIdx == -1 {
		return condition{}, errorsx.Wrap(ErrParse, "reason", "filter without a comparison", "filter", text)
	}

	thing := strings.TrimSpace(inner[:opIdx])
	value := strings.TrimSpace(inner[opIdx+opLen:])
	if thing == "" || value == "" {
		return condition{}, errorsx.Wrap(ErrParse, "reason", "incomplete filter", "filter", text)
	}

	c := condition{
		Category: categoryAttribute,
		Thing:    strings.Trim(thing, `"`),
		Operator: op,
		Value:    value,
	}
	if thing == "zoom" {
		c.Category = categoryZoomLevel
		if _, err := strconv.Atoi(value); err != nil {
			return condition{}, errorsx.Wrap(ErrParse, "reason", "zoom must be an integer", "filter", text)
		}
	}
	return c, nil
}

// expressionText is the filter as an expression, e.g. ([highway] = 'primary')
func (c condition) expressionText() string {
	return "([" + c.Thing + "] " + c.Operator.String() + " " + c.Value + ")"
}

type zoomRange struct {
	Min int
	Max int
}

var fullZoomRange = zoomRange{int(styling.MinZoomLevel), int(styling.MaxZoomLevel)}

func (z zoomRange) isEmpty() bool {
	return z.Min > z.Max
}

func (z zoomRange) intersect(other zoomRange) zoomRange {
	result := z
	if other.Min > result.Min {
		result.Min = other.Min
	}
	if other.Max < result.Max {
		result.Max = other.Max
	}
	return result
}

// restrict narrows the range by a zoom condition
func (z zoomRange) restrict(c condition) zoomRange {
	level, _ := strconv.Atoi(c.Value)

	bound := fullZoomRange
	switch c.Operator {
	case comparatorOperatorEquals:
		bound = zoomRange{level, level}
	case comparatorOperatorNotEquals:
		// not expressible as one range; ignored
	case comparatorOperatorLessThan:
		bound.Max = level - 1
	case comparatorOperatorLessThanOrEqualTo:
		bound.Max = level
	case comparatorOperatorGreaterThan:
		bound.Min = level + 1
	case comparatorOperatorGreaterThanOrEqualTo:
		bound.Min = level
	}
	return z.intersect(bound)
}

// scaleDenominators converts the zoom range into rule scale bounds
func (z zoomRange) scaleDenominators() (minScale, maxScale float64) {
	maxScale = styling.ZoomLevelToScaleDenominator(styling.ZoomLevel(z.Min))
	if z.Min <= fullZoomRange.Min {
		maxScale = math.Inf(1)
	}
	if z.Max < fullZoomRange.Max {
		minScale = styling.ZoomLevelToScaleDenominator(styling.ZoomLevel(z.Max))
	}
	return minScale, maxScale
}
