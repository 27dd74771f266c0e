// Package cartocss turns CartoCSS stylesheets into styles.
//
// Supported: variables, comments, nested blocks, layer (#id), class (.class, ignored) and attachment (::name)
// selectors, attribute and zoom filters, and symbolizer declarations such as line-color or text-name.
// Within a style, more deeply nested blocks take precedence over their parents, and later blocks over earlier
// ones at the same depth.
package cartocss

import (
	"regexp"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/ownmap-symbolizer/styling"
)

var (
	identPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+`)
)

// Parse parses a stylesheet and builds a map with the given ID
func Parse(stylesheet, id string) (*styling.Map, errorsx.Error) {
	sheet, err := ParseStylesheet(stylesheet)
	if err != nil {
		return nil, err
	}
	return sheet.Build(id)
}

func ParseStylesheet(stylesheet string) (*Stylesheet, errorsx.Error) {
	text, err := stripComments(stylesheet)
	if err != nil {
		return nil, err
	}

	p := &parser{text: text}
	sheet := &Stylesheet{
		Variables: make(map[string]string),
	}
	root := &block{}
	err = p.parseBody(root, sheet, true)
	if err != nil {
		return nil, err
	}
	if len(root.Declarations) > 0 {
		return nil, errorsx.Wrap(ErrParse, "reason", "declaration outside of a block", "property", root.Declarations[0].Property)
	}
	sheet.Blocks = root.Children

	return sheet, nil
}

func stripComments(stylesheet string) (string, errorsx.Error) {
	var sb strings.Builder
	inQuote := byte(0)
	for i := 0; i < len(stylesheet); i++ {
		thisChar := stylesheet[i]
		if inQuote != 0 {
			if thisChar == inQuote {
				inQuote = 0
			}
			sb.WriteByte(thisChar)
			continue
		}

		switch {
		case thisChar == TokenSingleQuote || thisChar == TokenDoubleQuote:
			inQuote = thisChar
		case strings.HasPrefix(stylesheet[i:], TokenOpenBlockComment):
			end := strings.Index(stylesheet[i+2:], TokenCloseBlockComment)
			if end == -1 {
				return "", errorsx.Wrap(ErrParse, "reason", "unterminated comment")
			}
			i += end + 3
			sb.WriteByte(TokenSpace)
			continue
		case strings.HasPrefix(stylesheet[i:], TokenOpenLineComment):
			end := strings.IndexByte(stylesheet[i:], TokenNewLine)
			if end == -1 {
				i = len(stylesheet)
				continue
			}
			i += end - 1
			continue
		}
		sb.WriteByte(thisChar)
	}
	return sb.String(), nil
}

type parser struct {
	text  string
	pos   int
	order int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.text) && isSpace(p.text[p.pos]) {
		p.pos++
	}
}

func isSpace(b byte) bool {
	return b == TokenSpace || b == TokenTab || b == TokenNewLine || b == '\r'
}

// readStatement reads up to the next ';', '{' or '}' that is not inside quotes, brackets or parentheses. A
// closing '}' is left for the caller.
func (p *parser) readStatement() (string, byte) {
	start := p.pos
	inQuote := byte(0)
	depth := 0
	for ; p.pos < len(p.text); p.pos++ {
		thisChar := p.text[p.pos]
		if inQuote != 0 {
			if thisChar == inQuote {
				inQuote = 0
			}
			continue
		}
		switch thisChar {
		case TokenSingleQuote, TokenDoubleQuote:
			inQuote = thisChar
		case TokenOpenFilter, '(':
			depth++
		case TokenCloseFilter, ')':
			depth--
		case TokenEndStatement, TokenOpenBlock:
			if depth == 0 {
				statement := p.text[start:p.pos]
				p.pos++
				return statement, thisChar
			}
		case TokenCloseBlock:
			if depth == 0 {
				return p.text[start:p.pos], thisChar
			}
		}
	}
	return p.text[start:], 0
}

func (p *parser) parseBody(b *block, sheet *Stylesheet, topLevel bool) errorsx.Error {
	for {
		p.skipSpace()
		if p.pos >= len(p.text) {
			if topLevel {
				return nil
			}
			return errorsx.Wrap(ErrParse, "reason", "unclosed block")
		}

		if p.text[p.pos] == TokenCloseBlock {
			if topLevel {
				return errorsx.Wrap(ErrParse, "reason", "unexpected '}'", "position", p.pos)
			}
			p.pos++
			return nil
		}

		statement, terminator := p.readStatement()
		statement = strings.TrimSpace(statement)

		if terminator == TokenOpenBlock {
			child, err := parseSelectors(statement)
			if err != nil {
				return err
			}
			err = p.parseBody(child, sheet, false)
			if err != nil {
				return err
			}
			b.Children = append(b.Children, child)
			continue
		}

		if statement == "" {
			continue
		}
		err := p.processStatement(b, sheet, statement)
		if err != nil {
			return err
		}
	}
}

func (p *parser) processStatement(b *block, sheet *Stylesheet, statement string) errorsx.Error {
	idxColon := strings.IndexByte(statement, TokenDeclarationOp)
	if idxColon == -1 {
		return errorsx.Wrap(ErrParse, "reason", "unprocessable statement", "statement", statement)
	}
	name := strings.TrimSpace(statement[:idxColon])
	value := strings.TrimSpace(statement[idxColon+1:])

	if strings.HasPrefix(name, string(TokenVariable)) {
		sheet.Variables[strings.TrimPrefix(name, string(TokenVariable))] = value
		return nil
	}

	if !identPattern.MatchString(name) || identPattern.FindString(name) != name {
		return errorsx.Wrap(ErrParse, "reason", "bad property name", "statement", statement)
	}

	p.order++
	b.Declarations = append(b.Declarations, declaration{
		Property: name,
		Value:    value,
		Order:    p.order,
	})
	return nil
}

func parseSelectors(text string) (*block, errorsx.Error) {
	if text == mapSelector {
		return &block{IsMap: true}, nil
	}

	b := &block{}
	for _, part := range splitOutsideBrackets(text, TokenSelectorList) {
		sel, err := parseSelector(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		b.Selectors = append(b.Selectors, sel)
	}
	return b, nil
}

func splitOutsideBrackets(text string, separator byte) []string {
	var parts []string
	inQuote := byte(0)
	depth := 0
	start := 0
	for i := 0; i < len(text); i++ {
		thisChar := text[i]
		if inQuote != 0 {
			if thisChar == inQuote {
				inQuote = 0
			}
			continue
		}
		switch thisChar {
		case TokenSingleQuote, TokenDoubleQuote:
			inQuote = thisChar
		case TokenOpenFilter:
			depth++
		case TokenCloseFilter:
			depth--
		case separator:
			if depth == 0 {
				parts = append(parts, text[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, text[start:])
}

func parseSelector(text string) (selector, errorsx.Error) {
	sel := selector{Zoom: fullZoomRange}
	if text == "" {
		return sel, errorsx.Wrap(ErrParse, "reason", "empty selector")
	}

	for i := 0; i < len(text); {
		switch {
		case isSpace(text[i]):
			i++
		case strings.HasPrefix(text[i:], TokenPseudoSelector):
			ident := identPattern.FindString(text[i+2:])
			if ident == "" {
				return sel, errorsx.Wrap(ErrParse, "reason", "empty attachment name", "selector", text)
			}
			sel.Attachment = ident
			i += 2 + len(ident)
		case text[i] == TokenLayer || text[i] == TokenClass:
			ident := identPattern.FindString(text[i+1:])
			if ident == "" {
				return sel, errorsx.Wrap(ErrParse, "reason", "empty name", "selector", text)
			}
			if text[i] == TokenLayer {
				sel.Layer = ident
			}
			i += 1 + len(ident)
		case text[i] == TokenOpenFilter:
			end := closingBracket(text, i)
			if end == -1 {
				return sel, errorsx.Wrap(ErrParse, "reason", "unterminated filter", "selector", text)
			}
			c, err := parseCondition(text[i+1 : end])
			if err != nil {
				return sel, errorsx.Wrap(err, "selector", text)
			}
			if c.Category == categoryZoomLevel {
				sel.Zoom = sel.Zoom.restrict(c)
			} else {
				sel.Conditions = append(sel.Conditions, c)
			}
			i = end + 1
		default:
			return sel, errorsx.Wrap(ErrParse, "reason", "unexpected character in selector", "selector", text, "character", string(text[i]))
		}
	}
	return sel, nil
}

func closingBracket(text string, open int) int {
	inQuote := byte(0)
	for i := open + 1; i < len(text); i++ {
		thisChar := text[i]
		if inQuote != 0 {
			if thisChar == inQuote {
				inQuote = 0
			}
			continue
		}
		switch thisChar {
		case TokenSingleQuote, TokenDoubleQuote:
			inQuote = thisChar
		case TokenCloseFilter:
			return i
		}
	}
	return -1
}

// resolveVariables replaces @name references with the variable values, which may themselves refer to variables
func (s *Stylesheet) resolveVariables(value string, depth int) (string, errorsx.Error) {
	const maxDepth = 16
	if depth > maxDepth {
		return "", errorsx.Wrap(ErrParse, "reason", "variables refer to each other in a loop", "value", value)
	}

	var sb strings.Builder
	inQuote := byte(0)
	for i := 0; i < len(value); i++ {
		thisChar := value[i]
		if inQuote != 0 {
			if thisChar == inQuote {
				inQuote = 0
			}
			sb.WriteByte(thisChar)
			continue
		}
		if thisChar == TokenSingleQuote || thisChar == TokenDoubleQuote {
			inQuote = thisChar
		}
		if thisChar != TokenVariable {
			sb.WriteByte(thisChar)
			continue
		}

		name := identPattern.FindString(value[i+1:])
		raw, ok := s.Variables[name]
		if name == "" || !ok {
			return "", errorsx.Wrap(ErrUnknownVariable, "variable", name)
		}
		resolved, err := s.resolveVariables(raw, depth+1)
		if err != nil {
			return "", errorsx.Wrap(err, "variable", name)
		}
		sb.WriteString(resolved)
		i += len(name)
	}
	return sb.String(), nil
}
