package symbolizer

import (
	"strconv"

	"github.com/jamesrr39/ownmap-symbolizer/styling/pathexpr"
	"github.com/jamesrr39/ownmap-symbolizer/styling/stylecolor"
	"github.com/jamesrr39/ownmap-symbolizer/styling/styleexpr"
	"github.com/jamesrr39/ownmap-symbolizer/styling/transformexpr"
)

// Value is the stored form of a property. The set of alternatives is closed.
type Value interface {
	isValue()
}

type BoolValue bool

type IntegerValue int64

type DoubleValue float64

type StringValue string

type ColorValue stylecolor.Color

// ExpressionValue holds a property computed per feature at render time. The expression is shared, not copied.
type ExpressionValue struct {
	Expression *styleexpr.Expression
}

type PathExpressionValue struct {
	Path *pathexpr.PathExpression
}

// EnumerationWrapper is a raw enum integer, tagged with the key that wrote it. Only that key's converter can turn
// it back into a typed enum.
type EnumerationWrapper struct {
	Value int
	Key   Key
}

type TransformListValue struct {
	Transforms *transformexpr.TransformList
}

type DashArrayValue struct {
	DashArray DashArray
}

type TextPlacementsValue struct {
	Placements *TextPlacements
}

type ColorizerValue struct {
	Colorizer *RasterColorizer
}

type GroupPropertiesValue struct {
	Properties *GroupProperties
}

func (BoolValue) isValue()            {}
func (IntegerValue) isValue()         {}
func (DoubleValue) isValue()          {}
func (StringValue) isValue()          {}
func (ColorValue) isValue()           {}
func (ExpressionValue) isValue()      {}
func (PathExpressionValue) isValue()  {}
func (EnumerationWrapper) isValue()   {}
func (TransformListValue) isValue()   {}
func (DashArrayValue) isValue()       {}
func (TextPlacementsValue) isValue()  {}
func (ColorizerValue) isValue()       {}
func (GroupPropertiesValue) isValue() {}

// cloneValue deep-copies the parts of a value owned by a bag. Expressions, paths and transforms are immutable
// and stay shared.
func cloneValue(v Value) Value {
	switch val := v.(type) {
	case DashArrayValue:
		return DashArrayValue{append(DashArray(nil), val.DashArray...)}
	case TextPlacementsValue:
		return TextPlacementsValue{val.Placements.Clone()}
	case ColorizerValue:
		return ColorizerValue{val.Colorizer.Clone()}
	case GroupPropertiesValue:
		return GroupPropertiesValue{val.Properties.Clone()}
	default:
		return v
	}
}

// valueText is the canonical text of a value, as written to style markup and storage
func valueText(v Value, entry keyEntry) (string, bool) {
	switch val := v.(type) {
	case BoolValue:
		return strconv.FormatBool(bool(val)), true
	case IntegerValue:
		return strconv.FormatInt(int64(val), 10), true
	case DoubleValue:
		return strconv.FormatFloat(float64(val), 'f', -1, 64), true
	case StringValue:
		return string(val), true
	case ColorValue:
		return stylecolor.Color(val).ToHexString(), true
	case ExpressionValue:
		return val.Expression.String(), true
	case PathExpressionValue:
		return val.Path.String(), true
	case EnumerationWrapper:
		if entry.enum == nil {
			return "", false
		}
		return entry.enum.name(val.Value), true
	case TransformListValue:
		return val.Transforms.String(), true
	case DashArrayValue:
		return val.DashArray.String(), true
	case TextPlacementsValue:
		return val.Placements.String(), true
	case ColorizerValue:
		return val.Colorizer.String(), true
	case GroupPropertiesValue:
		return val.Properties.String(), true
	}
	return "", false
}
