package styleexpr

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
)

// Operand is an evaluated value of an expression node
type Operand interface {
	IsGreaterThan(val Operand) (bool, errorsx.Error)
	IsLessThan(val Operand) (bool, errorsx.Error)
	IsGreaterThanOrEqualTo(val Operand) (bool, errorsx.Error)
	IsLessThanOrEqualTo(val Operand) (bool, errorsx.Error)
	EqualTo(val Operand) (bool, errorsx.Error)
	// Value returns the plain Go value (int64, float64, string, bool or nil)
	Value() interface{}
	String() string
}

type Float64Operand float64

func (f Float64Operand) IsGreaterThan(val Operand) (bool, errorsx.Error) {
	return compareWith(f, val, func(c int) bool { return c > 0 })
}

func (f Float64Operand) IsLessThan(val Operand) (bool, errorsx.Error) {
	return compareWith(f, val, func(c int) bool { return c < 0 })
}

func (f Float64Operand) IsGreaterThanOrEqualTo(val Operand) (bool, errorsx.Error) {
	return compareWith(f, val, func(c int) bool { return c >= 0 })
}

func (f Float64Operand) IsLessThanOrEqualTo(val Operand) (bool, errorsx.Error) {
	return compareWith(f, val, func(c int) bool { return c <= 0 })
}

func (f Float64Operand) EqualTo(val Operand) (bool, errorsx.Error) {
	return equalOperands(f, val), nil
}

func (f Float64Operand) Value() interface{} {
	return float64(f)
}

func (f Float64Operand) String() string {
	return formatFloat(float64(f))
}

type Int64Operand int64

func (f Int64Operand) IsGreaterThan(val Operand) (bool, errorsx.Error) {
	return compareWith(f, val, func(c int) bool { return c > 0 })
}

func (f Int64Operand) IsLessThan(val Operand) (bool, errorsx.Error) {
	return compareWith(f, val, func(c int) bool { return c < 0 })
}

func (f Int64Operand) IsGreaterThanOrEqualTo(val Operand) (bool, errorsx.Error) {
	return compareWith(f, val, func(c int) bool { return c >= 0 })
}

func (f Int64Operand) IsLessThanOrEqualTo(val Operand) (bool, errorsx.Error) {
	return compareWith(f, val, func(c int) bool { return c <= 0 })
}

func (f Int64Operand) EqualTo(val Operand) (bool, errorsx.Error) {
	return equalOperands(f, val), nil
}

func (f Int64Operand) Value() interface{} {
	return int64(f)
}

func (f Int64Operand) String() string {
	return strconv.FormatInt(int64(f), 10)
}

type StringOperand string

func (f StringOperand) IsGreaterThan(val Operand) (bool, errorsx.Error) {
	return compareWith(f, val, func(c int) bool { return c > 0 })
}

func (f StringOperand) IsLessThan(val Operand) (bool, errorsx.Error) {
	return compareWith(f, val, func(c int) bool { return c < 0 })
}

func (f StringOperand) IsGreaterThanOrEqualTo(val Operand) (bool, errorsx.Error) {
	return compareWith(f, val, func(c int) bool { return c >= 0 })
}

func (f StringOperand) IsLessThanOrEqualTo(val Operand) (bool, errorsx.Error) {
	return compareWith(f, val, func(c int) bool { return c <= 0 })
}

func (f StringOperand) EqualTo(val Operand) (bool, errorsx.Error) {
	return equalOperands(f, val), nil
}

func (f StringOperand) Value() interface{} {
	return string(f)
}

func (f StringOperand) String() string {
	return quoteString(string(f))
}

type BoolOperand bool

func (f BoolOperand) IsGreaterThan(val Operand) (bool, errorsx.Error) {
	return false, errorsx.Errorf("bool operand is not suitable for this operator")
}

func (f BoolOperand) IsLessThan(val Operand) (bool, errorsx.Error) {
	return false, errorsx.Errorf("bool operand is not suitable for this operator")
}

func (f BoolOperand) IsGreaterThanOrEqualTo(val Operand) (bool, errorsx.Error) {
	return false, errorsx.Errorf("bool operand is not suitable for this operator")
}

func (f BoolOperand) IsLessThanOrEqualTo(val Operand) (bool, errorsx.Error) {
	return false, errorsx.Errorf("bool operand is not suitable for this operator")
}

func (f BoolOperand) EqualTo(val Operand) (bool, errorsx.Error) {
	return equalOperands(f, val), nil
}

func (f BoolOperand) Value() interface{} {
	return bool(f)
}

func (f BoolOperand) String() string {
	return strconv.FormatBool(bool(f))
}

// NullOperand is the value of an attribute the feature does not have
type NullOperand struct{}

func (f NullOperand) IsGreaterThan(val Operand) (bool, errorsx.Error) {
	return false, nil
}

func (f NullOperand) IsLessThan(val Operand) (bool, errorsx.Error) {
	return false, nil
}

func (f NullOperand) IsGreaterThanOrEqualTo(val Operand) (bool, errorsx.Error) {
	return false, nil
}

func (f NullOperand) IsLessThanOrEqualTo(val Operand) (bool, errorsx.Error) {
	return false, nil
}

func (f NullOperand) EqualTo(val Operand) (bool, errorsx.Error) {
	return equalOperands(f, val), nil
}

func (f NullOperand) Value() interface{} {
	return nil
}

func (f NullOperand) String() string {
	return "null"
}

// NewOperand converts a plain Go value into an Operand
func NewOperand(value interface{}) (Operand, errorsx.Error) {
	switch v := value.(type) {
	case nil:
		return NullOperand{}, nil
	case Operand:
		return v, nil
	case bool:
		return BoolOperand(v), nil
	case int:
		return Int64Operand(v), nil
	case int8:
		return Int64Operand(v), nil
	case int16:
		return Int64Operand(v), nil
	case int32:
		return Int64Operand(v), nil
	case int64:
		return Int64Operand(v), nil
	case uint8:
		return Int64Operand(v), nil
	case uint16:
		return Int64Operand(v), nil
	case uint32:
		return Int64Operand(v), nil
	case uint64:
		return Int64Operand(v), nil
	case float32:
		return Float64Operand(v), nil
	case float64:
		return Float64Operand(v), nil
	case string:
		return StringOperand(v), nil
	case fmt.Stringer:
		return StringOperand(v.String()), nil
	default:
		return nil, errorsx.Errorf("unsupported attribute value type: %T", value)
	}
}

// IsTruthy reports whether an operand counts as true in a logical context
func IsTruthy(op Operand) bool {
	switch v := op.(type) {
	case BoolOperand:
		return bool(v)
	case Int64Operand:
		return v != 0
	case Float64Operand:
		return v != 0
	case StringOperand:
		return v != ""
	default:
		return false
	}
}

// asNumber returns the numeric value of an operand. Strings holding a number count as numbers, so that OSM tags
// (which are always strings) can be compared against numeric literals.
func asNumber(op Operand) (f float64, isInt bool, ok bool) {
	switch v := op.(type) {
	case Int64Operand:
		return float64(v), true, true
	case Float64Operand:
		return float64(v), false, true
	case StringOperand:
		s := strings.TrimSpace(string(v))
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return float64(i), true, true
		}
		if fv, err := strconv.ParseFloat(s, 64); err == nil {
			return fv, false, true
		}
	}
	return 0, false, false
}

func compareOperands(a, b Operand) (int, errorsx.Error) {
	aStr, aIsStr := a.(StringOperand)
	bStr, bIsStr := b.(StringOperand)
	if aIsStr && bIsStr {
		return strings.Compare(string(aStr), string(bStr)), nil
	}

	aNum, _, aOk := asNumber(a)
	bNum, _, bOk := asNumber(b)
	if !aOk || !bOk {
		return 0, errorsx.Errorf("operands %s and %s cannot be compared", a, b)
	}

	switch {
	case aNum < bNum:
		return -1, nil
	case aNum > bNum:
		return 1, nil
	default:
		return 0, nil
	}
}

func compareWith(a, b Operand, accept func(c int) bool) (bool, errorsx.Error) {
	if _, ok := b.(NullOperand); ok {
		return false, nil
	}

	c, err := compareOperands(a, b)
	if err != nil {
		return false, err
	}
	return accept(c), nil
}

func equalOperands(a, b Operand) bool {
	_, aIsNull := a.(NullOperand)
	_, bIsNull := b.(NullOperand)
	if aIsNull || bIsNull {
		return aIsNull && bIsNull
	}

	aBool, aIsBool := a.(BoolOperand)
	bBool, bIsBool := b.(BoolOperand)
	if aIsBool || bIsBool {
		if aIsBool && bIsBool {
			return aBool == bBool
		}
		if aIsBool {
			return bool(aBool) == IsTruthy(b)
		}
		return bool(bBool) == IsTruthy(a)
	}

	c, err := compareOperands(a, b)
	if err != nil {
		return false
	}
	return c == 0
}

func formatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func quoteString(s string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
	return "'" + escaped + "'"
}
