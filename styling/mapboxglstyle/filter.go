package mapboxglstyle

import (
	"fmt"
	"math"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/ownmap-symbolizer/styling/styleexpr"
	"github.com/paulmach/osm"
)

const (
	FilterOperatorEquals             = "=="
	FilterOperatorNotEqual           = "!="
	FilterOperatorLessThan           = "<"
	FilterOperatorLessThanOrEqual    = "<="
	FilterOperatorGreaterThan        = ">"
	FilterOperatorGreaterThanOrEqual = ">="
	FilterOperatorAny                = "any"
	FilterOperatorAll                = "all"
	FilterOperatorNone               = "none"
	FilterOperatorIn                 = "in"
	FilterOperatorNotIn              = "!in"
	FilterOperatorHas                = "has"
	FilterOperatorNotHas             = "!has"
)

const (
	FilterThingType     = "$type"
	FilterThingClass    = "class"
	FilterThingSubclass = "subclass"
)

/*
	"filter": ["==", "$type", "Point"],

	"filter": ["all",["==","$type","Polygon"],["in","class","residential","suburb","neighbourhood"]]
*/
type Filter interface{}

var comparisonOperators = map[string]styleexpr.BinaryOperator{
	FilterOperatorEquals:             styleexpr.BinaryOperatorEqual,
	FilterOperatorNotEqual:           styleexpr.BinaryOperatorNotEqual,
	FilterOperatorLessThan:           styleexpr.BinaryOperatorLessThan,
	FilterOperatorLessThanOrEqual:    styleexpr.BinaryOperatorLessThanOrEqualTo,
	FilterOperatorGreaterThan:        styleexpr.BinaryOperatorGreaterThan,
	FilterOperatorGreaterThanOrEqual: styleexpr.BinaryOperatorGreaterThanOrEqualTo,
}

var (
	alwaysFalse = styleexpr.NewLiteral(styleexpr.BoolOperand(false))
	null        = styleexpr.NewLiteral(styleexpr.NullOperand{})
)

// filterConverter turns filter arrays into expressions. A nil expression matches every feature.
type filterConverter struct {
	logger      *logpkg.Logger
	sourceLayer string
	osmTags     bool
}

func (c *filterConverter) convert(filter Filter) (*styleexpr.Expression, errorsx.Error) {
	if filter == nil {
		return nil, nil
	}

	base, ok := filter.([]interface{})
	if !ok || len(base) == 0 {
		return nil, errorsx.Wrap(ErrInvalidStyle, "reason", "a filter must be a non-empty array", "filter", fmt.Sprint(filter))
	}

	operator, ok := base[0].(string)
	if !ok {
		return nil, errorsx.Wrap(ErrInvalidStyle, "reason", "filter operator must be a string", "filter", fmt.Sprint(filter))
	}

	switch operator {
	case FilterOperatorAll:
		return c.convertAll(base[1:])
	case FilterOperatorAny:
		return c.convertAny(base[1:])
	case FilterOperatorNone:
		expr, err := c.convertAny(base[1:])
		if err != nil {
			return nil, err
		}
		if expr == nil {
			return alwaysFalse, nil
		}
		return styleexpr.Not(expr), nil
	case FilterOperatorHas, FilterOperatorNotHas:
		if len(base) != 2 {
			return nil, errorsx.Wrap(ErrInvalidStyle, "reason", "has takes one key", "filter", fmt.Sprint(filter))
		}
		thing, err := thingName(base[1])
		if err != nil {
			return nil, err
		}
		if operator == FilterOperatorHas {
			return styleexpr.Combine(styleexpr.BinaryOperatorNotEqual, styleexpr.NewAttribute(thing), null), nil
		}
		return styleexpr.Combine(styleexpr.BinaryOperatorEqual, styleexpr.NewAttribute(thing), null), nil
	case FilterOperatorIn, FilterOperatorNotIn:
		if len(base) < 2 {
			return nil, errorsx.Wrap(ErrInvalidStyle, "reason", "in takes a key and values", "filter", fmt.Sprint(filter))
		}
		thing, err := thingName(base[1])
		if err != nil {
			return nil, err
		}
		var alternatives []interface{}
		for _, value := range base[2:] {
			alternatives = append(alternatives, []interface{}{FilterOperatorEquals, thing, value})
		}
		if operator == FilterOperatorNotIn {
			return c.convert(append([]interface{}{FilterOperatorNone}, alternatives...))
		}
		return c.convertAny(alternatives)
	}

	binaryOperator, ok := comparisonOperators[operator]
	if !ok {
		return nil, errorsx.Wrap(ErrUnsupported, "reason", "unsupported filter operator", "operator", operator)
	}
	if len(base) != 3 {
		return nil, errorsx.Wrap(ErrInvalidStyle, "reason", "comparisons take a key and a value", "filter", fmt.Sprint(filter))
	}
	thing, err := thingName(base[1])
	if err != nil {
		return nil, err
	}
	return c.comparison(thing, binaryOperator, base[2])
}

func (c *filterConverter) convertAll(filters []interface{}) (*styleexpr.Expression, errorsx.Error) {
	var result *styleexpr.Expression
	for _, filter := range filters {
		expr, err := c.convert(filter)
		if err != nil {
			return nil, err
		}
		if expr == nil {
			continue
		}
		if result == nil {
			result = expr
			continue
		}
		result = styleexpr.Combine(styleexpr.BinaryOperatorAnd, result, expr)
	}
	return result, nil
}

func (c *filterConverter) convertAny(filters []interface{}) (*styleexpr.Expression, errorsx.Error) {
	if len(filters) == 0 {
		return alwaysFalse, nil
	}

	var result *styleexpr.Expression
	matchesEverything := false
	for _, filter := range filters {
		expr, err := c.convert(filter)
		if err != nil {
			return nil, err
		}
		if expr == nil {
			matchesEverything = true
			continue
		}
		if result == nil {
			result = expr
			continue
		}
		result = styleexpr.Combine(styleexpr.BinaryOperatorOr, result, expr)
	}
	if matchesEverything {
		return nil, nil
	}
	return result, nil
}

// thingName reads the key of a comparison: a plain key, or a ["get", key] or ["geometry-type"] expression
func thingName(v interface{}) (string, errorsx.Error) {
	switch thing := v.(type) {
	case string:
		return thing, nil
	case []interface{}:
		if len(thing) == 2 && thing[0] == "get" {
			if name, ok := thing[1].(string); ok {
				return name, nil
			}
		}
		if len(thing) == 1 && thing[0] == "geometry-type" {
			return FilterThingType, nil
		}
	}
	return "", errorsx.Wrap(ErrUnsupported, "reason", "unsupported filter key", "key", fmt.Sprint(v))
}

func (c *filterConverter) comparison(thing string, operator styleexpr.BinaryOperator, value interface{}) (*styleexpr.Expression, errorsx.Error) {
	if thing == FilterThingType {
		// the geometry type follows from the kind of symbolizer the layer is drawn with
		return nil, nil
	}

	isEquality := operator == styleexpr.BinaryOperatorEqual || operator == styleexpr.BinaryOperatorNotEqual
	if c.osmTags && isEquality {
		expr, handled := c.osmComparison(thing, value)
		if handled {
			if operator == styleexpr.BinaryOperatorNotEqual {
				return styleexpr.Not(expr), nil
			}
			return expr, nil
		}
	}

	operand, err := literalOperand(value)
	if err != nil {
		return nil, err
	}
	return styleexpr.Combine(operator, styleexpr.NewAttribute(thing), styleexpr.NewLiteral(operand)), nil
}

// osmComparison maps an OpenMapTiles attribute test onto OSM tags
func (c *filterConverter) osmComparison(thing string, value interface{}) (*styleexpr.Expression, bool) {
	text := fmt.Sprint(value)

	switch thing {
	case FilterThingClass, FilterThingSubclass:
		var tags osm.Tags
		var ok bool
		if thing == FilterThingClass {
			tags, ok = osmTagsForClass(text, c.sourceLayer)
		} else {
			tags, ok = osmTagsForSubclass(text)
		}
		if !ok {
			c.logger.Warn("no OSM tags known for %s %q in source layer %q; it will match nothing", thing, text, c.sourceLayer)
			return alwaysFalse, true
		}
		return tagsExpression(tags), true
	case "brunnel":
		// bridge, tunnel or ford
		return tagsExpression(osm.Tags{{Key: text, Value: "yes"}}), true
	case "intermittent":
		expr := tagsExpression(osm.Tags{{Key: "intermittent", Value: "yes"}})
		if text == "0" || text == "false" {
			return styleexpr.Not(expr), true
		}
		return expr, true
	}
	return nil, false
}

// tagsExpression matches features with any of the tags
func tagsExpression(tags osm.Tags) *styleexpr.Expression {
	var result *styleexpr.Expression
	for _, tag := range tags {
		var expr *styleexpr.Expression
		if tag.Value == anyValue {
			expr = styleexpr.Combine(styleexpr.BinaryOperatorNotEqual, styleexpr.NewAttribute(tag.Key), null)
		} else {
			expr = styleexpr.Combine(styleexpr.BinaryOperatorEqual, styleexpr.NewAttribute(tag.Key), styleexpr.NewLiteral(styleexpr.StringOperand(tag.Value)))
		}

		if result == nil {
			result = expr
			continue
		}
		result = styleexpr.Combine(styleexpr.BinaryOperatorOr, result, expr)
	}
	if result == nil {
		return alwaysFalse
	}
	return result
}

func literalOperand(value interface{}) (styleexpr.Operand, errorsx.Error) {
	if f, ok := value.(float64); ok && f == math.Trunc(f) && math.Abs(f) < math.MaxInt64 {
		return styleexpr.Int64Operand(int64(f)), nil
	}
	operand, err := styleexpr.NewOperand(value)
	if err != nil {
		return nil, errorsx.Wrap(ErrUnsupported, "reason", "unsupported filter value", "value", fmt.Sprint(value))
	}
	return operand, nil
}
