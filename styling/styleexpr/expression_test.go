package styleexpr

import (
	"testing"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_String(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"attribute", "[name]", "[name]"},
		{"equality", "[highway] = 'primary'", "([highway] = 'primary')"},
		{"double equals and double quotes", `[highway] == "primary"`, "([highway] = 'primary')"},
		{"not equals alias", "[a] <> 1", "([a] != 1)"},
		{"precedence", "1 + 2 * 3", "(1 + (2 * 3))"},
		{"parentheses", "(1 + 2) * 3", "((1 + 2) * 3)"},
		{"logical", "[a] = 1 and [b] = 2 or not [c]", "((([a] = 1) and ([b] = 2)) or not [c])"},
		{"symbolic logical", "[a] && [b] || ![c]", "(([a] and [b]) or not [c])"},
		{"negative number", "-5", "-5"},
		{"negated attribute", "-[a]", "-[a]"},
		{"float", "2.50", "2.5"},
		{"integral float keeps its point", "2.0", "2.0"},
		{"escaped quote", `'it\'s'`, `'it\'s'`},
		{"keywords", "true and null = false", "(true and (null = false))"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := Parse(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, expr.String())

			reparsed, err := Parse(expr.String())
			require.NoError(t, err)
			assert.Equal(t, expr.String(), reparsed.String())
		})
	}
}

func TestParse_errors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", "   "},
		{"unterminated attribute", "[name"},
		{"empty attribute", "[] = 1"},
		{"unterminated string", "'abc"},
		{"dangling operator", "[a] ="},
		{"unbalanced parentheses", "(1 + 2"},
		{"trailing input", "1 2"},
		{"unknown identifier", "foo = 1"},
		{"unknown character", "[a] # 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			require.Error(t, err)
			assert.Equal(t, ErrExpressionParse, errorsx.Cause(err))
		})
	}
}

func TestExpression_Evaluate(t *testing.T) {
	feature := MapFeature{
		"highway": "primary",
		"lanes":   "3",
		"width":   7.5,
		"oneway":  true,
		"count":   4,
	}

	tests := []struct {
		name string
		text string
		want Operand
	}{
		{"string equality", "[highway] = 'primary'", BoolOperand(true)},
		{"string tag compared with a number", "[lanes] > 2", BoolOperand(true)},
		{"string tag equal to a number", "[lanes] = 3", BoolOperand(true)},
		{"float attribute", "[width] >= 7.5", BoolOperand(true)},
		{"missing attribute is null", "[name] = null", BoolOperand(true)},
		{"missing attribute does not compare", "[name] > 1", BoolOperand(false)},
		{"bool attribute", "[oneway]", BoolOperand(true)},
		{"and short circuits", "[name] and [name] > 'x'", BoolOperand(false)},
		{"or", "[name] or [oneway]", BoolOperand(true)},
		{"not", "not [oneway]", BoolOperand(false)},
		{"integer arithmetic", "[count] * 2 + 1", Int64Operand(9)},
		{"integer division", "7 / 2", Int64Operand(3)},
		{"float arithmetic", "[width] / 2", Float64Operand(3.75)},
		{"modulo", "[count] % 3", Int64Operand(1)},
		{"division by zero is null", "1 / 0", NullOperand{}},
		{"string concatenation", "[highway] + '_' + [count]", StringOperand("primary_4")},
		{"negation", "-[count]", Int64Operand(-4)},
		{"string ordering", "'a' < 'b'", BoolOperand(true)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MustParse(tt.text).Evaluate(feature)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpression_Evaluate_incomparable(t *testing.T) {
	_, err := MustParse("'abc' < 3").Evaluate(nil)
	require.Error(t, err)
}

func TestExpression_Attributes(t *testing.T) {
	expr := MustParse("[b] = 1 or [a] = 2 and [b] != 3")
	assert.Equal(t, []string{"a", "b"}, expr.Attributes())
}

func TestExpression_IsLiteral(t *testing.T) {
	op, ok := MustParse("12").IsLiteral()
	require.True(t, ok)
	assert.Equal(t, Int64Operand(12), op)

	_, ok = MustParse("[a]").IsLiteral()
	assert.False(t, ok)
}

func TestCombine(t *testing.T) {
	expr := Combine(BinaryOperatorAnd, MustParse("[a] = 1"), Not(NewAttribute("b")))
	assert.Equal(t, "(([a] = 1) and not [b])", expr.String())
	assert.True(t, expr.Equal(MustParse("[a] = 1 and not [b]")))
}

func TestNewOSMFeature(t *testing.T) {
	feature := NewOSMFeature(osm.Tags{
		{Key: "highway", Value: "residential"},
		{Key: "maxspeed", Value: "30"},
	})

	matches, err := MustParse("[highway] = 'residential' and [maxspeed] < 50").EvaluateBool(feature)
	require.NoError(t, err)
	assert.True(t, matches)

	matches, err = MustParse("[name] != null").EvaluateBool(feature)
	require.NoError(t, err)
	assert.False(t, matches)
}
