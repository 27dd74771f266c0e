package styleexpr

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
)

var ErrExpressionParse = errors.New("ExpressionParseError")

// Expression is a parsed filter or value expression. It is immutable once parsed, so one *Expression can be shared
// between any number of holders.
type Expression struct {
	root node
}

// Parse parses expression text such as `[highway] = 'primary' and [lanes] > 2`
func Parse(text string) (*Expression, errorsx.Error) {
	tokens, err := tokenize(text)
	if err != nil {
		return nil, errorsx.Wrap(err, "expression", text)
	}

	p := &parser{tokens: tokens}
	if p.peek().Type == tokenTypeEOF {
		return nil, errorsx.Wrap(ErrExpressionParse, "reason", "empty expression", "expression", text)
	}

	root, err := p.parseOr()
	if err != nil {
		return nil, errorsx.Wrap(err, "expression", text)
	}

	if tok := p.peek(); tok.Type != tokenTypeEOF {
		return nil, errorsx.Wrap(ErrExpressionParse, "reason", "unexpected trailing input", "token", tok.Text, "position", tok.Position, "expression", text)
	}

	return &Expression{root}, nil
}

func MustParse(text string) *Expression {
	expr, err := Parse(text)
	if err != nil {
		panic(err.Error())
	}
	return expr
}

// NewLiteral makes an expression that always evaluates to the given operand
func NewLiteral(op Operand) *Expression {
	return &Expression{&literalNode{op}}
}

// NewAttribute makes an expression that evaluates to the named feature attribute
func NewAttribute(name string) *Expression {
	return &Expression{&attributeNode{name}}
}

// Combine joins two expressions with a binary operator
func Combine(operator BinaryOperator, left, right *Expression) *Expression {
	return &Expression{&binaryNode{operator, left.root, right.root}}
}

// Not negates an expression
func Not(expr *Expression) *Expression {
	return &Expression{&unaryNode{UnaryOperatorNot, expr.root}}
}

// String returns the canonical text form. Parsing it again gives an equivalent expression.
func (e *Expression) String() string {
	return e.root.String()
}

func (e *Expression) Evaluate(feature Feature) (Operand, errorsx.Error) {
	return e.root.evaluate(feature)
}

// EvaluateBool evaluates the expression and reports whether the result is truthy
func (e *Expression) EvaluateBool(feature Feature) (bool, errorsx.Error) {
	op, err := e.root.evaluate(feature)
	if err != nil {
		return false, err
	}
	return IsTruthy(op), nil
}

// Attributes lists the feature attributes the expression reads, sorted
func (e *Expression) Attributes() []string {
	names := make(map[string]struct{})
	e.root.collectAttributes(names)

	var list []string
	for name := range names {
		list = append(list, name)
	}
	sort.Strings(list)
	return list
}

// IsLiteral reports whether the expression is a single constant, and if so returns it
func (e *Expression) IsLiteral() (Operand, bool) {
	lit, ok := e.root.(*literalNode)
	if !ok {
		return nil, false
	}
	return lit.operand, true
}

// Equal compares two expressions by their canonical form
func (e *Expression) Equal(other *Expression) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.String() == other.String()
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.Type != tokenTypeEOF {
		p.pos++
	}
	return tok
}

func (p *parser) isKeyword(keyword string) bool {
	tok := p.peek()
	return tok.Type == tokenTypeIdent && strings.EqualFold(tok.Text, keyword)
}

func (p *parser) isOperator(ops ...string) (string, bool) {
	tok := p.peek()
	if tok.Type != tokenTypeOperator {
		return "", false
	}
	for _, op := range ops {
		if tok.Text == op {
			return op, true
		}
	}
	return "", false
}

func (p *parser) parseOr() (node, errorsx.Error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for {
		_, isOp := p.isOperator("||")
		if !isOp && !p.isKeyword("or") {
			return left, nil
		}
		p.next()

		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{BinaryOperatorOr, left, right}
	}
}

func (p *parser) parseAnd() (node, errorsx.Error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}

	for {
		_, isOp := p.isOperator("&&")
		if !isOp && !p.isKeyword("and") {
			return left, nil
		}
		p.next()

		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{BinaryOperatorAnd, left, right}
	}
}

var comparisonOperators = map[string]BinaryOperator{
	"=":  BinaryOperatorEqual,
	"==": BinaryOperatorEqual,
	"!=": BinaryOperatorNotEqual,
	"<>": BinaryOperatorNotEqual,
	"<":  BinaryOperatorLessThan,
	"<=": BinaryOperatorLessThanOrEqualTo,
	">":  BinaryOperatorGreaterThan,
	">=": BinaryOperatorGreaterThanOrEqualTo,
}

func (p *parser) parseComparison() (node, errorsx.Error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	for {
		op, isOp := p.isOperator("=", "==", "!=", "<>", "<", "<=", ">", ">=")
		if !isOp {
			return left, nil
		}
		p.next()

		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{comparisonOperators[op], left, right}
	}
}

func (p *parser) parseAdditive() (node, errorsx.Error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}

	for {
		op, isOp := p.isOperator("+", "-")
		if !isOp {
			return left, nil
		}
		p.next()

		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{BinaryOperator(op), left, right}
	}
}

func (p *parser) parseMultiplicative() (node, errorsx.Error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		op, isOp := p.isOperator("*", "/", "%")
		if !isOp {
			return left, nil
		}
		p.next()

		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{BinaryOperator(op), left, right}
	}
}

func (p *parser) parseUnary() (node, errorsx.Error) {
	if _, isOp := p.isOperator("!"); isOp || p.isKeyword("not") {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &unaryNode{UnaryOperatorNot, operand}, nil
	}

	if _, isOp := p.isOperator("-"); isOp {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if lit, ok := operand.(*literalNode); ok {
			switch v := lit.operand.(type) {
			case Int64Operand:
				if v >= 0 {
					return &literalNode{-v}, nil
				}
			case Float64Operand:
				if v >= 0 {
					return &literalNode{-v}, nil
				}
			}
		}
		return &unaryNode{UnaryOperatorNegate, operand}, nil
	}

	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, errorsx.Error) {
	tok := p.next()
	switch tok.Type {
	case tokenTypeAttribute:
		return &attributeNode{tok.Text}, nil
	case tokenTypeString:
		return &literalNode{StringOperand(tok.Text)}, nil
	case tokenTypeNumber:
		if !strings.ContainsAny(tok.Text, ".eE") {
			i, err := strconv.ParseInt(tok.Text, 10, 64)
			if err == nil {
				return &literalNode{Int64Operand(i)}, nil
			}
		}
		f, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, errorsx.Wrap(ErrExpressionParse, "reason", "bad number", "token", tok.Text, "position", tok.Position)
		}
		return &literalNode{Float64Operand(f)}, nil
	case tokenTypeIdent:
		switch strings.ToLower(tok.Text) {
		case "true":
			return &literalNode{BoolOperand(true)}, nil
		case "false":
			return &literalNode{BoolOperand(false)}, nil
		case "null":
			return &literalNode{NullOperand{}}, nil
		}
		return nil, errorsx.Wrap(ErrExpressionParse, "reason", "unexpected identifier", "token", tok.Text, "position", tok.Position)
	case tokenTypeOpenParen:
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.Type != tokenTypeCloseParen {
			return nil, errorsx.Wrap(ErrExpressionParse, "reason", "expected closing parenthesis", "position", closing.Position)
		}
		return inner, nil
	case tokenTypeEOF:
		return nil, errorsx.Wrap(ErrExpressionParse, "reason", "unexpected end of expression", "position", tok.Position)
	default:
		return nil, errorsx.Wrap(ErrExpressionParse, "reason", "unexpected token", "token", tok.Text, "position", tok.Position)
	}
}
