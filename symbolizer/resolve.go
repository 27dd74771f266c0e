package symbolizer

import (
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/ownmap-symbolizer/styling/pathexpr"
	"github.com/jamesrr39/ownmap-symbolizer/styling/styleexpr"
)

// Resolve returns the value of a property for one feature. Deferred expressions are evaluated and the result
// converted to the key's target type; path templates have their placeholders filled in. Literal values are
// returned as GetProperty returns them.
func Resolve(sym Symbolizer, key Key, feature styleexpr.Feature) (interface{}, errorsx.Error) {
	external, err := GetProperty(sym, key)
	if err != nil {
		return nil, err
	}
	entry, _ := entryFor(key)

	expr, isDeferred := external.(*styleexpr.Expression)
	if !isDeferred {
		if entry.TargetType == TargetTypePath {
			path, err := pathexpr.Parse(external.(string))
			if err != nil {
				return nil, errorsx.Wrap(err, "key", entry.Name)
			}
			return path.Evaluate(feature), nil
		}
		return external, nil
	}

	if entry.TargetType == TargetTypeExpression {
		return expr, nil
	}

	op, err := expr.Evaluate(feature)
	if err != nil {
		return nil, errorsx.Wrap(err, "key", entry.Name)
	}
	if _, isNull := op.(styleexpr.NullOperand); isNull {
		return nil, errorsx.Wrap(ErrPropertyNotSet, "key", entry.Name, "reason", "expression evaluated to null", "expression", expr.String())
	}

	var val Value
	switch v := op.(type) {
	case styleexpr.StringOperand:
		val, err = parseText(string(v), key, entry)
	default:
		val, err = decode(op.Value(), key, entry, true)
	}
	if err != nil {
		return nil, errorsx.Wrap(err, "expression", expr.String())
	}
	if _, stillDeferred := val.(ExpressionValue); stillDeferred && entry.TargetType != TargetTypeExpression {
		return nil, errorsx.Wrap(ErrTypeMismatch, "key", entry.Name, "reason", "expression result is not a literal", "expression", expr.String())
	}

	return encode(val, key, entry), nil
}

// ResolveDouble resolves a double property, returning fallback if it is unset
func ResolveDouble(sym Symbolizer, key Key, feature styleexpr.Feature, fallback float64) (float64, errorsx.Error) {
	val, err := Resolve(sym, key, feature)
	if err != nil {
		if errorsx.Cause(err) == ErrPropertyNotSet {
			return fallback, nil
		}
		return 0, err
	}
	f, ok := val.(float64)
	if !ok {
		return 0, errorsx.Wrap(ErrTypeMismatch, "key", key.String())
	}
	return f, nil
}
