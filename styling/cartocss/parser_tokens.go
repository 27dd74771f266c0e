package cartocss

const (
	TokenEndStatement  = ';'
	TokenSpace         = ' '
	TokenTab           = '\t'
	TokenNewLine       = '\n'
	TokenOpenBlock     = '{'
	TokenCloseBlock    = '}'
	TokenOpenFilter    = '['
	TokenCloseFilter   = ']'
	TokenLayer         = '#'
	TokenClass         = '.'
	TokenSelectorList  = ','
	TokenVariable      = '@'
	TokenSingleQuote   = '\''
	TokenDoubleQuote   = '"'
	TokenDeclarationOp = ':'
)

// 2-char tokens
const (
	TokenOpenBlockComment  = "/*"
	TokenCloseBlockComment = "*/"
	TokenOpenLineComment   = "//"
	TokenPseudoSelector    = "::"
)

const mapSelector = "Map"
