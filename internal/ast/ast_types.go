package ast

import (
	"github.com/ril-lang/ril/internal/token"
)

// Type is a syntactic type annotation. The checker resolves it to a
// typesystem.Type against the registered record and context shapes.
type Type interface {
	Node
	typeNode()
	GetToken() token.Token
}

// NamedType is a type written by name, possibly with generic arguments:
// Int, List<Int>, Option<String>, Array<Int, 4>, Point.
type NamedType struct {
	Token token.Token
	Name  string
	Args  []Type
	// Size is the element count of Array<T, n>; valid only when HasSize.
	Size    int
	HasSize bool
}

func (nt *NamedType) typeNode()             {}
func (nt *NamedType) TokenLiteral() string  { return nt.Token.Lexeme }
func (nt *NamedType) GetToken() token.Token { return nt.Token }

// FunctionType is a function type annotation: (Int, Int) -> Int.
type FunctionType struct {
	Token  token.Token // The '(' token
	Params []Type
	Return Type
}

func (ft *FunctionType) typeNode()             {}
func (ft *FunctionType) TokenLiteral() string  { return ft.Token.Lexeme }
func (ft *FunctionType) GetToken() token.Token { return ft.Token }
