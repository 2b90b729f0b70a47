package ast

import (
	"github.com/ril-lang/ril/internal/token"
)

// Identifier represents a name reference.
type Identifier struct {
	Token token.Token
	Value string
}

func (i *Identifier) expressionNode()       {}
func (i *Identifier) TokenLiteral() string  { return i.Token.Lexeme }
func (i *Identifier) GetToken() token.Token { return i.Token }

// IntegerLiteral represents an integer literal. Unannotated integers
// default to Int unless an expected type pushes Float.
type IntegerLiteral struct {
	Token token.Token
	Value int64
}

func (il *IntegerLiteral) expressionNode()       {}
func (il *IntegerLiteral) TokenLiteral() string  { return il.Token.Lexeme }
func (il *IntegerLiteral) GetToken() token.Token { return il.Token }

type FloatLiteral struct {
	Token token.Token
	Value float64
}

func (fl *FloatLiteral) expressionNode()       {}
func (fl *FloatLiteral) TokenLiteral() string  { return fl.Token.Lexeme }
func (fl *FloatLiteral) GetToken() token.Token { return fl.Token }

type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (bl *BooleanLiteral) expressionNode()       {}
func (bl *BooleanLiteral) TokenLiteral() string  { return bl.Token.Lexeme }
func (bl *BooleanLiteral) GetToken() token.Token { return bl.Token }

type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) expressionNode()       {}
func (sl *StringLiteral) TokenLiteral() string  { return sl.Token.Lexeme }
func (sl *StringLiteral) GetToken() token.Token { return sl.Token }

type CharLiteral struct {
	Token token.Token
	Value rune
}

func (cl *CharLiteral) expressionNode()       {}
func (cl *CharLiteral) TokenLiteral() string  { return cl.Token.Lexeme }
func (cl *CharLiteral) GetToken() token.Token { return cl.Token }

// UnitLiteral represents the unit value ().
type UnitLiteral struct {
	Token token.Token
}

func (ul *UnitLiteral) expressionNode()       {}
func (ul *UnitLiteral) TokenLiteral() string  { return ul.Token.Lexeme }
func (ul *UnitLiteral) GetToken() token.Token { return ul.Token }

// ListLiteral represents [e1, e2, ...].
type ListLiteral struct {
	Token    token.Token // The '[' token
	Elements []Expression
}

func (ll *ListLiteral) expressionNode()       {}
func (ll *ListLiteral) TokenLiteral() string  { return ll.Token.Lexeme }
func (ll *ListLiteral) GetToken() token.Token { return ll.Token }

// FieldInit is a single "name: expr" entry in a record literal.
type FieldInit struct {
	Token token.Token
	Name  *Identifier
	Value Expression
}

// RecordLiteral represents Point { x: 1, y: 2 }.
type RecordLiteral struct {
	Token  token.Token // The record name token
	Name   *Identifier
	Fields []*FieldInit
}

func (rl *RecordLiteral) expressionNode()       {}
func (rl *RecordLiteral) TokenLiteral() string  { return rl.Token.Lexeme }
func (rl *RecordLiteral) GetToken() token.Token { return rl.Token }

// SomeExpression represents Some(e).
type SomeExpression struct {
	Token token.Token // The 'Some' token
	Value Expression
}

func (se *SomeExpression) expressionNode()       {}
func (se *SomeExpression) TokenLiteral() string  { return se.Token.Lexeme }
func (se *SomeExpression) GetToken() token.Token { return se.Token }

// NoneExpression represents None.
type NoneExpression struct {
	Token token.Token
}

func (ne *NoneExpression) expressionNode()       {}
func (ne *NoneExpression) TokenLiteral() string  { return ne.Token.Lexeme }
func (ne *NoneExpression) GetToken() token.Token { return ne.Token }

// LambdaExpression represents |x, y| body. Parameter annotations are
// optional; missing ones are inferred from the expected function type.
type LambdaExpression struct {
	Token  token.Token // The first '|' token
	Params []*Parameter
	Body   Expression
}

func (le *LambdaExpression) expressionNode()       {}
func (le *LambdaExpression) TokenLiteral() string  { return le.Token.Lexeme }
func (le *LambdaExpression) GetToken() token.Token { return le.Token }

// CallExpression represents an object-subject-verb call: the argument
// tuple comes first, the callee last. (5, 10) add, x print.
type CallExpression struct {
	Token  token.Token // The callee's first token
	Callee Expression
	Args   []Expression
}

func (ce *CallExpression) expressionNode()       {}
func (ce *CallExpression) TokenLiteral() string  { return ce.Token.Lexeme }
func (ce *CallExpression) GetToken() token.Token { return ce.Token }

// BinaryExpression represents left op right.
type BinaryExpression struct {
	Token    token.Token // The operator token
	Operator string
	Left     Expression
	Right    Expression
}

func (be *BinaryExpression) expressionNode()       {}
func (be *BinaryExpression) TokenLiteral() string  { return be.Token.Lexeme }
func (be *BinaryExpression) GetToken() token.Token { return be.Token }

// UnaryExpression represents -e or !e.
type UnaryExpression struct {
	Token    token.Token // The operator token
	Operator string
	Operand  Expression
}

func (ue *UnaryExpression) expressionNode()       {}
func (ue *UnaryExpression) TokenLiteral() string  { return ue.Token.Lexeme }
func (ue *UnaryExpression) GetToken() token.Token { return ue.Token }

// MemberExpression represents dot access, e.g. p.x.
type MemberExpression struct {
	Token  token.Token // The '.' token
	Left   Expression
	Member *Identifier
}

func (me *MemberExpression) expressionNode()       {}
func (me *MemberExpression) TokenLiteral() string  { return me.Token.Lexeme }
func (me *MemberExpression) GetToken() token.Token { return me.Token }

// BlockExpression is { stmt; ...; expr } — its value is the value of the
// final expression statement, or Unit when the block is empty or ends
// with a non-expression statement.
type BlockExpression struct {
	Token      token.Token // The '{' token
	Statements []Statement
}

func (be *BlockExpression) expressionNode()       {}
func (be *BlockExpression) TokenLiteral() string  { return be.Token.Lexeme }
func (be *BlockExpression) GetToken() token.Token { return be.Token }

// IfExpression represents if c { } else { }. Else may be nil, in which
// case the whole expression is Unit-typed.
type IfExpression struct {
	Token     token.Token // The 'if' token
	Condition Expression
	Then      *BlockExpression
	Else      *BlockExpression
}

func (ie *IfExpression) expressionNode()       {}
func (ie *IfExpression) TokenLiteral() string  { return ie.Token.Lexeme }
func (ie *IfExpression) GetToken() token.Token { return ie.Token }

// MatchArm is one "pattern => body" arm.
type MatchArm struct {
	Token   token.Token
	Pattern Pattern
	Body    Expression
}

// MatchExpression represents match scrutinee { arms }.
// Arms are kept in source order; the first structurally-matching arm
// wins at runtime.
type MatchExpression struct {
	Token     token.Token // The 'match' token
	Scrutinee Expression
	Arms      []*MatchArm
}

func (me *MatchExpression) expressionNode()       {}
func (me *MatchExpression) TokenLiteral() string  { return me.Token.Lexeme }
func (me *MatchExpression) GetToken() token.Token { return me.Token }

// ArenaExpression represents with Arena { ... }. On exit the arena
// pushed for the block is reset; only scalar results escape.
type ArenaExpression struct {
	Token token.Token // The 'with' token
	Body  *BlockExpression
}

func (ae *ArenaExpression) expressionNode()       {}
func (ae *ArenaExpression) TokenLiteral() string  { return ae.Token.Lexeme }
func (ae *ArenaExpression) GetToken() token.Token { return ae.Token }

// CloneExpression represents clone x — a read that does not consume
// the affine binding.
type CloneExpression struct {
	Token   token.Token // The 'clone' token
	Operand Expression
}

func (ce *CloneExpression) expressionNode()       {}
func (ce *CloneExpression) TokenLiteral() string  { return ce.Token.Lexeme }
func (ce *CloneExpression) GetToken() token.Token { return ce.Token }
