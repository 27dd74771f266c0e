package styleexpr

import (
	"strings"
	"unicode"

	"github.com/jamesrr39/goutil/errorsx"
)

type tokenType int

const (
	tokenTypeEOF tokenType = iota
	tokenTypeAttribute
	tokenTypeNumber
	tokenTypeString
	tokenTypeIdent
	tokenTypeOperator
	tokenTypeOpenParen
	tokenTypeCloseParen
)

type token struct {
	Type     tokenType
	Text     string
	Position int
}

// operators, longest first so that "<=" wins over "<"
var operators = []string{
	"==", "!=", "<>", "<=", ">=", "&&", "||",
	"=", "<", ">", "+", "-", "*", "/", "%", "!",
}

func tokenize(text string) ([]token, errorsx.Error) {
	var tokens []token

	runes := []rune(text)
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			tokens = append(tokens, token{tokenTypeOpenParen, "(", i})
			i++
		case r == ')':
			tokens = append(tokens, token{tokenTypeCloseParen, ")", i})
			i++
		case r == '[':
			end := i + 1
			for end < len(runes) && runes[end] != ']' {
				end++
			}
			if end == len(runes) {
				return nil, errorsx.Wrap(ErrExpressionParse, "reason", "unterminated attribute", "position", i)
			}
			name := strings.TrimSpace(string(runes[i+1 : end]))
			if name == "" {
				return nil, errorsx.Wrap(ErrExpressionParse, "reason", "empty attribute name", "position", i)
			}
			tokens = append(tokens, token{tokenTypeAttribute, name, i})
			i = end + 1
		case r == '\'' || r == '"':
			str, next, err := readString(runes, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{tokenTypeString, str, i})
			i = next
		case unicode.IsDigit(r) || (r == '.' && i+1 < len(runes) && unicode.IsDigit(runes[i+1])):
			end := i
			seenExponent := false
			for end < len(runes) {
				c := runes[end]
				if unicode.IsDigit(c) || c == '.' {
					end++
					continue
				}
				if (c == 'e' || c == 'E') && !seenExponent {
					seenExponent = true
					end++
					if end < len(runes) && (runes[end] == '+' || runes[end] == '-') {
						end++
					}
					continue
				}
				break
			}
			tokens = append(tokens, token{tokenTypeNumber, string(runes[i:end]), i})
			i = end
		case unicode.IsLetter(r) || r == '_':
			end := i
			for end < len(runes) && (unicode.IsLetter(runes[end]) || unicode.IsDigit(runes[end]) || runes[end] == '_') {
				end++
			}
			tokens = append(tokens, token{tokenTypeIdent, string(runes[i:end]), i})
			i = end
		default:
			op := matchOperator(runes[i:])
			if op == "" {
				return nil, errorsx.Wrap(ErrExpressionParse, "reason", "unexpected character", "character", string(r), "position", i)
			}
			tokens = append(tokens, token{tokenTypeOperator, op, i})
			i += len(op)
		}
	}

	tokens = append(tokens, token{tokenTypeEOF, "", len(runes)})
	return tokens, nil
}

func matchOperator(runes []rune) string {
	for _, op := range operators {
		if len(runes) < len(op) {
			continue
		}
		if string(runes[:len(op)]) == op {
			return op
		}
	}
	return ""
}

func readString(runes []rune, start int) (string, int, errorsx.Error) {
	quote := runes[start]
	var sb strings.Builder
	for i := start + 1; i < len(runes); i++ {
		switch runes[i] {
		case '\\':
			if i+1 == len(runes) {
				return "", 0, errorsx.Wrap(ErrExpressionParse, "reason", "unterminated string", "position", start)
			}
			i++
			sb.WriteRune(runes[i])
		case quote:
			return sb.String(), i + 1, nil
		default:
			sb.WriteRune(runes[i])
		}
	}
	return "", 0, errorsx.Wrap(ErrExpressionParse, "reason", "unterminated string", "position", start)
}
