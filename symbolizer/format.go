package symbolizer

import (
	"strconv"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/ownmap-symbolizer/styling/styleexpr"
)

// FormatProperty returns the text form of a property, as used in style markup and storage. Enums are written
// by name and colours as hex.
func FormatProperty(sym Symbolizer, key Key) (string, errorsx.Error) {
	entry, ok := entryFor(key)
	if !ok {
		return "", errorsx.Wrap(ErrUnknownProperty, "key", int(key))
	}

	val, ok := baseOf(sym).Get(key)
	if !ok {
		return "", errorsx.Wrap(ErrPropertyNotSet, "key", entry.Name, "symbolizer", Type(sym))
	}

	text, ok := valueText(val, entry)
	if !ok {
		panic(KeyConversionError{Key: key, Name: entry.Name})
	}
	return text, nil
}

// FormatProperties returns every set property as name -> text
func FormatProperties(sym Symbolizer) map[string]string {
	InitRegistry()

	props := make(map[string]string)
	for _, key := range baseOf(sym).PropertyKeys() {
		text, err := FormatProperty(sym, key)
		if err != nil {
			continue
		}
		props[registryEntries[key].Name] = text
	}
	return props
}

// SetFromString sets a property from its text form. Literal text of the target type is tried first; for scalar,
// colour and enum targets, text that is not a valid literal is then tried as an expression, so
// `stroke-width="[lanes] * 2"` gives a deferred width.
func SetFromString(sym Symbolizer, name, text string) errorsx.Error {
	key, err := LookupByName(name)
	if err != nil {
		return err
	}
	entry, _ := entryFor(key)

	val, err := parseText(text, key, entry)
	if err != nil {
		return errorsx.Wrap(err, "symbolizer", Type(sym))
	}

	baseOf(sym).Put(key, val)
	return nil
}

// IsDeferred reports whether a property holds an expression that replaces a literal of its target type.
// Properties whose target type is itself an expression are never deferred.
func IsDeferred(sym Symbolizer, key Key) bool {
	entry, ok := entryFor(key)
	if !ok || entry.TargetType == TargetTypeExpression {
		return false
	}
	val, ok := baseOf(sym).Get(key)
	if !ok {
		return false
	}
	_, isExpr := val.(ExpressionValue)
	return isExpr
}

// DeferredPropertyNames gives the names of the deferred properties, in key order
func DeferredPropertyNames(sym Symbolizer) []string {
	InitRegistry()

	var names []string
	for _, key := range baseOf(sym).PropertyKeys() {
		if IsDeferred(sym, key) {
			names = append(names, registryEntries[key].Name)
		}
	}
	return names
}

// SetDeferredFromString sets a property to an expression, whatever its target type. It reads back what
// FormatProperty writes for a property where IsDeferred is true: the text of a deferred string, path or
// dash array property is not distinguishable from a literal on its own.
func SetDeferredFromString(sym Symbolizer, name, text string) errorsx.Error {
	key, err := LookupByName(name)
	if err != nil {
		return err
	}

	expr, err := styleexpr.Parse(strings.TrimSpace(text))
	if err != nil {
		return errorsx.Wrap(err, "key", name, "symbolizer", Type(sym))
	}

	baseOf(sym).Put(key, ExpressionValue{expr})
	return nil
}

func parseText(text string, key Key, entry keyEntry) (Value, errorsx.Error) {
	trimmed := strings.TrimSpace(text)

	var literalErr errorsx.Error
	switch entry.TargetType {
	case TargetTypeBool:
		b, err := strconv.ParseBool(trimmed)
		if err == nil {
			return BoolValue(b), nil
		}
		literalErr = typeMismatchText(text, entry)
	case TargetTypeInteger:
		i, err := strconv.ParseInt(trimmed, 10, 64)
		if err == nil {
			return IntegerValue(i), nil
		}
		literalErr = typeMismatchText(text, entry)
	case TargetTypeDouble:
		f, err := strconv.ParseFloat(trimmed, 64)
		if err == nil {
			return DoubleValue(f), nil
		}
		literalErr = typeMismatchText(text, entry)
	case TargetTypeString:
		return StringValue(text), nil
	case TargetTypeColor:
		val, err := decode(trimmed, key, entry, false)
		if err == nil {
			return val, nil
		}
		literalErr = err
	case TargetTypePlacements:
		p, err := ParseTextPlacements(text)
		if err != nil {
			return nil, errorsx.Wrap(err, "key", entry.Name)
		}
		return TextPlacementsValue{p}, nil
	case TargetTypeExpression, TargetTypePath, TargetTypeTransform, TargetTypeDashArray, TargetTypeColorizer,
		TargetTypeGroupProperties:
		return decode(trimmed, key, entry, false)
	default:
		if entry.enum == nil {
			return nil, typeMismatchText(text, entry)
		}
		raw, ok := entry.enum.parse(trimmed)
		if ok {
			return EnumerationWrapper{Value: raw, Key: key}, nil
		}
		literalErr = errorsx.Wrap(ErrTypeMismatch, "key", entry.Name, "reason", "unknown enumeration literal", "literal", text)
	}

	expr, err := styleexpr.Parse(trimmed)
	if err != nil {
		return nil, literalErr
	}
	if _, isLiteral := expr.IsLiteral(); isLiteral {
		// a constant of the wrong type, e.g. "true" for a width
		return nil, literalErr
	}
	return ExpressionValue{expr}, nil
}

func typeMismatchText(text string, entry keyEntry) errorsx.Error {
	return errorsx.Wrap(ErrTypeMismatch, "key", entry.Name, "targetType", entry.TargetType.String(), "text", text)
}
