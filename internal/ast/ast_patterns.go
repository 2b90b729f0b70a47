package ast

import (
	"github.com/ril-lang/ril/internal/token"
)

// Pattern is a Node that can appear on the left of a match arm.
type Pattern interface {
	Node
	patternNode()
	GetToken() token.Token
}

// WildcardPattern matches anything and binds nothing: _.
type WildcardPattern struct {
	Token token.Token
}

func (wp *WildcardPattern) patternNode()          {}
func (wp *WildcardPattern) TokenLiteral() string  { return wp.Token.Lexeme }
func (wp *WildcardPattern) GetToken() token.Token { return wp.Token }

// BindPattern matches anything and binds it to a fresh name.
type BindPattern struct {
	Token token.Token
	Name  *Identifier
}

func (bp *BindPattern) patternNode()          {}
func (bp *BindPattern) TokenLiteral() string  { return bp.Token.Lexeme }
func (bp *BindPattern) GetToken() token.Token { return bp.Token }

// LiteralPattern matches a literal value (int, float, bool, string, char).
type LiteralPattern struct {
	Token token.Token
	Value Expression
}

func (lp *LiteralPattern) patternNode()          {}
func (lp *LiteralPattern) TokenLiteral() string  { return lp.Token.Lexeme }
func (lp *LiteralPattern) GetToken() token.Token { return lp.Token }

// SomePattern matches Some(inner).
type SomePattern struct {
	Token token.Token // The 'Some' token
	Inner Pattern
}

func (sp *SomePattern) patternNode()          {}
func (sp *SomePattern) TokenLiteral() string  { return sp.Token.Lexeme }
func (sp *SomePattern) GetToken() token.Token { return sp.Token }

// NonePattern matches None.
type NonePattern struct {
	Token token.Token
}

func (np *NonePattern) patternNode()          {}
func (np *NonePattern) TokenLiteral() string  { return np.Token.Lexeme }
func (np *NonePattern) GetToken() token.Token { return np.Token }

// EmptyListPattern matches the empty list: [].
type EmptyListPattern struct {
	Token token.Token
}

func (ep *EmptyListPattern) patternNode()          {}
func (ep *EmptyListPattern) TokenLiteral() string  { return ep.Token.Lexeme }
func (ep *EmptyListPattern) GetToken() token.Token { return ep.Token }

// ConsPattern matches a non-empty list: [head | tail].
type ConsPattern struct {
	Token token.Token // The '[' token
	Head  Pattern
	Tail  Pattern
}

func (cp *ConsPattern) patternNode()          {}
func (cp *ConsPattern) TokenLiteral() string  { return cp.Token.Lexeme }
func (cp *ConsPattern) GetToken() token.Token { return cp.Token }

// ExactListPattern matches a list of exactly len(Elements) elements.
// Exact-length patterns alone are never exhaustive.
type ExactListPattern struct {
	Token    token.Token // The '[' token
	Elements []Pattern
}

func (ep *ExactListPattern) patternNode()          {}
func (ep *ExactListPattern) TokenLiteral() string  { return ep.Token.Lexeme }
func (ep *ExactListPattern) GetToken() token.Token { return ep.Token }

// FieldPattern is a single "name: pattern" entry in a record pattern.
type FieldPattern struct {
	Token   token.Token
	Name    *Identifier
	Pattern Pattern
}

// RecordPattern destructures a record: Point { x: a, y: b }.
type RecordPattern struct {
	Token  token.Token // The record name token
	Name   *Identifier
	Fields []*FieldPattern
}

func (rp *RecordPattern) patternNode()          {}
func (rp *RecordPattern) TokenLiteral() string  { return rp.Token.Lexeme }
func (rp *RecordPattern) GetToken() token.Token { return rp.Token }
