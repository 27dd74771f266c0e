package symbolizer

import (
	"fmt"
	"math"
	"os"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/ownmap-symbolizer/styling/pathexpr"
	"github.com/jamesrr39/ownmap-symbolizer/styling/stylecolor"
	"github.com/jamesrr39/ownmap-symbolizer/styling/styleexpr"
	"github.com/jamesrr39/ownmap-symbolizer/styling/transformexpr"
)

var diagnosticsLogger = logpkg.NewLogger(os.Stderr, logpkg.LogLevelWarn)

// SetDiagnosticsLogger replaces the logger used for the encode diagnostic (a stored value with no external form)
func SetDiagnosticsLogger(logger *logpkg.Logger) {
	diagnosticsLogger = logger
}

// encode converts a stored value to its external Go form:
//
//	BoolValue -> bool, IntegerValue -> int64, DoubleValue -> float64, StringValue -> string,
//	ColorValue -> stylecolor.Color, ExpressionValue -> the shared *styleexpr.Expression,
//	PathExpressionValue, TransformListValue and DashArrayValue -> their canonical string,
//	EnumerationWrapper -> the typed enum (e.g. CompositeOp), TextPlacementsValue -> *TextPlacements,
//	ColorizerValue -> *RasterColorizer, GroupPropertiesValue -> *GroupProperties.
func encode(val Value, key Key, entry keyEntry) interface{} {
	switch v := val.(type) {
	case BoolValue:
		return bool(v)
	case IntegerValue:
		return int64(v)
	case DoubleValue:
		return float64(v)
	case StringValue:
		return string(v)
	case ColorValue:
		return stylecolor.Color(v)
	case ExpressionValue:
		return v.Expression
	case PathExpressionValue:
		return v.Path.String()
	case EnumerationWrapper:
		if entry.Converter == nil {
			panic(KeyConversionError{Key: key, Name: entry.Name})
		}
		return entry.Converter(v.Value)
	case TransformListValue:
		return v.Transforms.String()
	case DashArrayValue:
		return v.DashArray.String()
	case TextPlacementsValue:
		return v.Placements
	case ColorizerValue:
		return v.Colorizer
	case GroupPropertiesValue:
		return v.Properties
	}

	diagnosticsLogger.Warn("symbolizer: no external form for value of type %T (key %q), returning nil", val, entry.Name)
	return nil
}

// decode converts an external Go value into the stored form for a key, following the key's target type.
// Every target type also accepts a *styleexpr.Expression, stored as is.
// In lenient mode, numbers are coerced the way free-text assignment does it: integers to bool, double or enum
// targets, and floats to bool or (when integral) integer targets.
func decode(external interface{}, key Key, entry keyEntry, lenient bool) (Value, errorsx.Error) {
	if expr, ok := external.(*styleexpr.Expression); ok {
		if expr == nil {
			return nil, typeMismatch(external, entry)
		}
		return ExpressionValue{expr}, nil
	}

	intVal, isInt := asInt64(external)
	floatVal, isFloat := asFloat64(external)

	switch entry.TargetType {
	case TargetTypeBool:
		switch {
		case isBool(external):
			return BoolValue(external.(bool)), nil
		case lenient && isInt:
			return BoolValue(intVal != 0), nil
		case lenient && isFloat:
			return BoolValue(floatVal != 0), nil
		}
	case TargetTypeInteger:
		switch {
		case isInt:
			return IntegerValue(intVal), nil
		case lenient && isFloat && floatVal == math.Trunc(floatVal):
			return IntegerValue(int64(floatVal)), nil
		}
	case TargetTypeDouble:
		switch {
		case isFloat:
			return DoubleValue(floatVal), nil
		case isInt:
			return DoubleValue(float64(intVal)), nil
		}
	case TargetTypeString:
		if s, ok := external.(string); ok {
			return StringValue(s), nil
		}
	case TargetTypeColor:
		switch v := external.(type) {
		case stylecolor.Color:
			return ColorValue(v), nil
		case *stylecolor.Color:
			if v != nil {
				return ColorValue(*v), nil
			}
		case string:
			c, err := stylecolor.Parse(v)
			if err != nil {
				return nil, errorsx.Wrap(err, "key", entry.Name)
			}
			return ColorValue(c), nil
		}
	case TargetTypeExpression:
		if s, ok := external.(string); ok {
			expr, err := styleexpr.Parse(s)
			if err != nil {
				return nil, errorsx.Wrap(err, "key", entry.Name)
			}
			return ExpressionValue{expr}, nil
		}
	case TargetTypePath:
		switch v := external.(type) {
		case string:
			path, err := pathexpr.Parse(v)
			if err != nil {
				return nil, errorsx.Wrap(err, "key", entry.Name)
			}
			return PathExpressionValue{path}, nil
		case *pathexpr.PathExpression:
			if v != nil {
				return PathExpressionValue{v}, nil
			}
		}
	case TargetTypeTransform:
		switch v := external.(type) {
		case string:
			transforms, err := transformexpr.Parse(v)
			if err != nil {
				return nil, errorsx.Wrap(err, "key", entry.Name)
			}
			return TransformListValue{transforms}, nil
		case *transformexpr.TransformList:
			if v != nil {
				return TransformListValue{v}, nil
			}
		}
	case TargetTypeDashArray:
		switch v := external.(type) {
		case string:
			dashes, err := ParseDashArray(v)
			if err != nil {
				return nil, errorsx.Wrap(err, "key", entry.Name)
			}
			return DashArrayValue{dashes}, nil
		case DashArray:
			if len(v) == 0 {
				return DashArrayValue{DashArray{}}, nil
			}
			dashes, err := ParseDashArray(v.String())
			if err != nil {
				return nil, errorsx.Wrap(err, "key", entry.Name)
			}
			return DashArrayValue{dashes}, nil
		case []float64:
			dashes, err := ParseDashArray(DashArray(v).String())
			if err != nil || len(v) == 0 {
				return nil, errorsx.Wrap(ErrDasharrayParse, "key", entry.Name, "dasharray", fmt.Sprint(v))
			}
			return DashArrayValue{dashes}, nil
		}
	case TargetTypePlacements:
		switch v := external.(type) {
		case *TextPlacements:
			if v != nil {
				return TextPlacementsValue{v.Clone()}, nil
			}
		case TextPlacements:
			return TextPlacementsValue{v.Clone()}, nil
		}
	case TargetTypeColorizer:
		switch v := external.(type) {
		case *RasterColorizer:
			if v != nil {
				return ColorizerValue{v.Clone()}, nil
			}
		case string:
			colorizer, err := ParseRasterColorizer(v)
			if err != nil {
				return nil, errorsx.Wrap(err, "key", entry.Name)
			}
			return ColorizerValue{colorizer}, nil
		}
	case TargetTypeGroupProperties:
		switch v := external.(type) {
		case *GroupProperties:
			if v != nil {
				return GroupPropertiesValue{v.Clone()}, nil
			}
		case string:
			props, err := ParseGroupProperties(v)
			if err != nil {
				return nil, errorsx.Wrap(err, "key", entry.Name)
			}
			return GroupPropertiesValue{props}, nil
		}
	default:
		if entry.enum == nil {
			break
		}
		if raw, ok := entry.enum.extract(external); ok && entry.enum.isValid(raw) {
			return EnumerationWrapper{Value: raw, Key: key}, nil
		}
		if lenient && isInt && entry.enum.isValid(int(intVal)) {
			return EnumerationWrapper{Value: int(intVal), Key: key}, nil
		}
	}

	return nil, typeMismatch(external, entry)
}

func typeMismatch(external interface{}, entry keyEntry) errorsx.Error {
	return errorsx.Wrap(ErrTypeMismatch, "key", entry.Name, "targetType", entry.TargetType.String(), "valueType", fmt.Sprintf("%T", external))
}

func isBool(v interface{}) bool {
	_, ok := v.(bool)
	return ok
}

func asInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

func asFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
