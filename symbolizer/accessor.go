package symbolizer

import (
	"fmt"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/ownmap-symbolizer/styling/styleexpr"
)

// GetProperty returns the external form of a property. Reading a key that was never set gives ErrPropertyNotSet.
func GetProperty(sym Symbolizer, key Key) (interface{}, errorsx.Error) {
	return getProperty(baseOf(sym), key, Type(sym))
}

func getProperty(b *SymbolizerBase, key Key, owner string) (interface{}, errorsx.Error) {
	entry, ok := entryFor(key)
	if !ok {
		return nil, errorsx.Wrap(ErrUnknownProperty, "key", int(key))
	}

	val, ok := b.Get(key)
	if !ok {
		return nil, errorsx.Wrap(ErrPropertyNotSet, "key", entry.Name, "symbolizer", owner)
	}

	return encode(val, key, entry), nil
}

// SetProperty converts an external value according to the key's target type and stores it. On error the
// symbolizer is left unchanged.
func SetProperty(sym Symbolizer, key Key, value interface{}) errorsx.Error {
	return setProperty(baseOf(sym), key, value, false, Type(sym))
}

func setProperty(b *SymbolizerBase, key Key, value interface{}, lenient bool, owner string) errorsx.Error {
	entry, ok := entryFor(key)
	if !ok {
		return errorsx.Wrap(ErrUnknownProperty, "key", int(key))
	}

	val, err := decode(value, key, entry, lenient)
	if err != nil {
		return errorsx.Wrap(err, "symbolizer", owner)
	}

	b.Put(key, val)
	return nil
}

// Keys returns the names of the properties set on the symbolizer, ordered by key id
func Keys(sym Symbolizer) []string {
	InitRegistry()

	var names []string
	for _, key := range baseOf(sym).PropertyKeys() {
		names = append(names, registryEntries[key].Name)
	}
	return names
}

func GetByName(sym Symbolizer, name string) (interface{}, errorsx.Error) {
	key, err := LookupByName(name)
	if err != nil {
		return nil, err
	}
	return GetProperty(sym, key)
}

// SetByName sets a property by name. Numbers are coerced to the key's target type: an integer assigned to a bool
// property becomes a bool, to a double property a double, and to an enum property the enum literal with that
// ordinal. Floats are accepted for integer properties when they are integral.
func SetByName(sym Symbolizer, name string, value interface{}) errorsx.Error {
	key, err := LookupByName(name)
	if err != nil {
		return err
	}
	return setProperty(baseOf(sym), key, value, true, Type(sym))
}

// Slot is a property that holds either a literal of its target type or an expression evaluated per feature
type Slot[T any] struct {
	literal    T
	expression *styleexpr.Expression
}

func Literal[T any](v T) Slot[T] {
	return Slot[T]{literal: v}
}

func Deferred[T any](expr *styleexpr.Expression) Slot[T] {
	return Slot[T]{expression: expr}
}

func (s Slot[T]) IsDeferred() bool {
	return s.expression != nil
}

// Literal returns the literal value, and false if the slot holds an expression
func (s Slot[T]) Literal() (T, bool) {
	return s.literal, s.expression == nil
}

func (s Slot[T]) Expression() *styleexpr.Expression {
	return s.expression
}

// Or returns the literal, or fallback when the slot is deferred
func (s Slot[T]) Or(fallback T) T {
	if s.expression != nil {
		return fallback
	}
	return s.literal
}

func (s Slot[T]) String() string {
	if s.expression != nil {
		return s.expression.String()
	}
	return fmt.Sprint(s.literal)
}

// GetSlot reads a property as a literal of type T or a deferred expression
func GetSlot[T any](sym Symbolizer, key Key) (Slot[T], errorsx.Error) {
	return getSlot[T](baseOf(sym), key, Type(sym))
}

func getSlot[T any](b *SymbolizerBase, key Key, owner string) (Slot[T], errorsx.Error) {
	external, err := getProperty(b, key, owner)
	if err != nil {
		return Slot[T]{}, err
	}

	if expr, ok := external.(*styleexpr.Expression); ok {
		return Deferred[T](expr), nil
	}

	typed, ok := external.(T)
	if !ok {
		var zero T
		return Slot[T]{}, errorsx.Wrap(ErrTypeMismatch, "key", key.String(), "valueType", fmt.Sprintf("%T", external), "wantType", fmt.Sprintf("%T", zero))
	}
	return Literal(typed), nil
}

// SetSlot stores a literal or deferred slot
func SetSlot[T any](sym Symbolizer, key Key, slot Slot[T]) errorsx.Error {
	if slot.IsDeferred() {
		return SetProperty(sym, key, slot.expression)
	}
	return SetProperty(sym, key, slot.literal)
}
