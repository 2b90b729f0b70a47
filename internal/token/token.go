package token

// Type identifies the lexical class of a token.
type Type string

const (
	ILLEGAL Type = "ILLEGAL"
	EOF     Type = "EOF"

	IDENT  Type = "IDENT"
	INT    Type = "INT"
	FLOAT  Type = "FLOAT"
	STRING Type = "STRING"
	CHAR   Type = "CHAR"

	ASSIGN   Type = "="
	PLUS     Type = "+"
	MINUS    Type = "-"
	ASTERISK Type = "*"
	SLASH    Type = "/"
	PERCENT  Type = "%"
	BANG     Type = "!"

	EQ     Type = "=="
	NOTEQ  Type = "!="
	LT     Type = "<"
	GT     Type = ">"
	LTEQ   Type = "<="
	GTEQ   Type = ">="
	ANDAND Type = "&&"
	OROR   Type = "||"

	PIPE     Type = "|"
	ARROW    Type = "->"
	FATARROW Type = "=>"

	COMMA     Type = ","
	COLON     Type = ":"
	SEMICOLON Type = ";"
	DOT       Type = "."

	LPAREN   Type = "("
	RPAREN   Type = ")"
	LBRACE   Type = "{"
	RBRACE   Type = "}"
	LBRACKET Type = "["
	RBRACKET Type = "]"

	FUN        Type = "FUN"
	VAL        Type = "VAL"
	MUT        Type = "MUT"
	RET        Type = "RET"
	RECORD     Type = "RECORD"
	FROZEN     Type = "FROZEN"
	IMPL       Type = "IMPL"
	CONTEXT    Type = "CONTEXT"
	MATCH      Type = "MATCH"
	IF         Type = "IF"
	ELSE       Type = "ELSE"
	WITH       Type = "WITH"
	CLONE      Type = "CLONE"
	TRUE       Type = "TRUE"
	FALSE      Type = "FALSE"
	SOME       Type = "SOME"
	NONE       Type = "NONE"
	UNDERSCORE Type = "_"
)

// Token is a single lexical unit with its source position.
// Line and Column are 1-based; Column points at the first rune of Lexeme.
type Token struct {
	Type   Type
	Lexeme string
	Line   int
	Column int
}

var keywords = map[string]Type{
	"fun":     FUN,
	"val":     VAL,
	"mut":     MUT,
	"ret":     RET,
	"record":  RECORD,
	"frozen":  FROZEN,
	"impl":    IMPL,
	"context": CONTEXT,
	"match":   MATCH,
	"if":      IF,
	"else":    ELSE,
	"with":    WITH,
	"clone":   CLONE,
	"true":    TRUE,
	"false":   FALSE,
	"Some":    SOME,
	"None":    NONE,
	"_":       UNDERSCORE,
}

// LookupIdent maps an identifier lexeme to its keyword type, or IDENT.
func LookupIdent(ident string) Type {
	if t, ok := keywords[ident]; ok {
		return t
	}
	return IDENT
}
