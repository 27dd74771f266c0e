package styleexpr

import (
	"math"

	"github.com/jamesrr39/goutil/errorsx"
)

type node interface {
	String() string
	evaluate(feature Feature) (Operand, errorsx.Error)
	collectAttributes(names map[string]struct{})
}

type literalNode struct {
	operand Operand
}

func (n *literalNode) String() string {
	return n.operand.String()
}

func (n *literalNode) evaluate(feature Feature) (Operand, errorsx.Error) {
	return n.operand, nil
}

func (n *literalNode) collectAttributes(names map[string]struct{}) {}

type attributeNode struct {
	name string
}

func (n *attributeNode) String() string {
	return "[" + n.name + "]"
}

func (n *attributeNode) evaluate(feature Feature) (Operand, errorsx.Error) {
	if feature == nil {
		return NullOperand{}, nil
	}

	val, ok := feature.Attribute(n.name)
	if !ok {
		return NullOperand{}, nil
	}

	op, err := NewOperand(val)
	if err != nil {
		return nil, errorsx.Wrap(err, "attribute", n.name)
	}
	return op, nil
}

func (n *attributeNode) collectAttributes(names map[string]struct{}) {
	names[n.name] = struct{}{}
}

type UnaryOperator string

const (
	UnaryOperatorNegate UnaryOperator = "-"
	UnaryOperatorNot    UnaryOperator = "not"
)

type unaryNode struct {
	operator UnaryOperator
	operand  node
}

func (n *unaryNode) String() string {
	if n.operator == UnaryOperatorNot {
		return "not " + n.operand.String()
	}
	return string(n.operator) + n.operand.String()
}

func (n *unaryNode) evaluate(feature Feature) (Operand, errorsx.Error) {
	val, err := n.operand.evaluate(feature)
	if err != nil {
		return nil, err
	}

	switch n.operator {
	case UnaryOperatorNot:
		return BoolOperand(!IsTruthy(val)), nil
	case UnaryOperatorNegate:
		switch v := val.(type) {
		case Int64Operand:
			return -v, nil
		case Float64Operand:
			return -v, nil
		case NullOperand:
			return v, nil
		}
		num, isInt, ok := asNumber(val)
		if !ok {
			return nil, errorsx.Errorf("cannot negate %s", val)
		}
		if isInt {
			return Int64Operand(-int64(num)), nil
		}
		return Float64Operand(-num), nil
	}

	return nil, errorsx.Errorf("unknown unary operator: %q", n.operator)
}

func (n *unaryNode) collectAttributes(names map[string]struct{}) {
	n.operand.collectAttributes(names)
}

type BinaryOperator string

const (
	BinaryOperatorAnd                  BinaryOperator = "and"
	BinaryOperatorOr                   BinaryOperator = "or"
	BinaryOperatorEqual                BinaryOperator = "="
	BinaryOperatorNotEqual             BinaryOperator = "!="
	BinaryOperatorLessThan             BinaryOperator = "<"
	BinaryOperatorLessThanOrEqualTo    BinaryOperator = "<="
	BinaryOperatorGreaterThan          BinaryOperator = ">"
	BinaryOperatorGreaterThanOrEqualTo BinaryOperator = ">="
	BinaryOperatorAdd                  BinaryOperator = "+"
	BinaryOperatorSubtract             BinaryOperator = "-"
	BinaryOperatorMultiply             BinaryOperator = "*"
	BinaryOperatorDivide               BinaryOperator = "/"
	BinaryOperatorModulo               BinaryOperator = "%"
)

type binaryNode struct {
	operator    BinaryOperator
	left, right node
}

func (n *binaryNode) String() string {
	return "(" + n.left.String() + " " + string(n.operator) + " " + n.right.String() + ")"
}

func (n *binaryNode) evaluate(feature Feature) (Operand, errorsx.Error) {
	left, err := n.left.evaluate(feature)
	if err != nil {
		return nil, err
	}

	// short circuit
	switch n.operator {
	case BinaryOperatorAnd:
		if !IsTruthy(left) {
			return BoolOperand(false), nil
		}
	case BinaryOperatorOr:
		if IsTruthy(left) {
			return BoolOperand(true), nil
		}
	}

	right, err := n.right.evaluate(feature)
	if err != nil {
		return nil, err
	}

	var result bool
	switch n.operator {
	case BinaryOperatorAnd, BinaryOperatorOr:
		return BoolOperand(IsTruthy(right)), nil
	case BinaryOperatorEqual:
		result, err = left.EqualTo(right)
	case BinaryOperatorNotEqual:
		result, err = left.EqualTo(right)
		result = !result
	case BinaryOperatorLessThan:
		result, err = left.IsLessThan(right)
	case BinaryOperatorLessThanOrEqualTo:
		result, err = left.IsLessThanOrEqualTo(right)
	case BinaryOperatorGreaterThan:
		result, err = left.IsGreaterThan(right)
	case BinaryOperatorGreaterThanOrEqualTo:
		result, err = left.IsGreaterThanOrEqualTo(right)
	default:
		return arithmetic(n.operator, left, right)
	}
	if err != nil {
		return nil, errorsx.Wrap(err, "expression", n.String())
	}
	return BoolOperand(result), nil
}

func (n *binaryNode) collectAttributes(names map[string]struct{}) {
	n.left.collectAttributes(names)
	n.right.collectAttributes(names)
}

func arithmetic(operator BinaryOperator, left, right Operand) (Operand, errorsx.Error) {
	_, leftIsNull := left.(NullOperand)
	_, rightIsNull := right.(NullOperand)
	if leftIsNull || rightIsNull {
		return NullOperand{}, nil
	}

	leftStr, leftIsStr := left.(StringOperand)
	rightStr, rightIsStr := right.(StringOperand)
	if operator == BinaryOperatorAdd && (leftIsStr || rightIsStr) {
		if !leftIsStr {
			leftStr = StringOperand(plainString(left))
		}
		if !rightIsStr {
			rightStr = StringOperand(plainString(right))
		}
		return leftStr + rightStr, nil
	}

	leftNum, leftIsInt, ok := asNumber(left)
	if !ok {
		return nil, errorsx.Errorf("operand %s is not a number", left)
	}
	rightNum, rightIsInt, ok := asNumber(right)
	if !ok {
		return nil, errorsx.Errorf("operand %s is not a number", right)
	}

	if leftIsInt && rightIsInt {
		l, r := int64(leftNum), int64(rightNum)
		switch operator {
		case BinaryOperatorAdd:
			return Int64Operand(l + r), nil
		case BinaryOperatorSubtract:
			return Int64Operand(l - r), nil
		case BinaryOperatorMultiply:
			return Int64Operand(l * r), nil
		case BinaryOperatorDivide:
			if r == 0 {
				return NullOperand{}, nil
			}
			return Int64Operand(l / r), nil
		case BinaryOperatorModulo:
			if r == 0 {
				return NullOperand{}, nil
			}
			return Int64Operand(l % r), nil
		}
	}

	switch operator {
	case BinaryOperatorAdd:
		return Float64Operand(leftNum + rightNum), nil
	case BinaryOperatorSubtract:
		return Float64Operand(leftNum - rightNum), nil
	case BinaryOperatorMultiply:
		return Float64Operand(leftNum * rightNum), nil
	case BinaryOperatorDivide:
		if rightNum == 0 {
			return NullOperand{}, nil
		}
		return Float64Operand(leftNum / rightNum), nil
	case BinaryOperatorModulo:
		if rightNum == 0 {
			return NullOperand{}, nil
		}
		return Float64Operand(math.Mod(leftNum, rightNum)), nil
	}

	return nil, errorsx.Errorf("unknown binary operator: %q", operator)
}

func plainString(op Operand) string {
	if s, ok := op.(StringOperand); ok {
		return string(s)
	}
	return op.String()
}
