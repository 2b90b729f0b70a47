// Package typed holds the typed expression tree produced by the analyzer
// and consumed by the code generator.
//
// Nodes mirror the untyped AST but every node carries its resolved type.
// The tree is pure data: built once by the analyzer, owned by the
// resulting Program, never shared or mutated afterwards.
package typed

import (
	"github.com/ril-lang/ril/internal/token"
	"github.com/ril-lang/ril/internal/typesystem"
)

// Expr is a typed expression node.
type Expr interface {
	Type() typesystem.Type
	GetToken() token.Token
	exprNode()
}

// Stmt is a typed statement node.
type Stmt interface {
	GetToken() token.Token
	stmtNode()
}

// Program is the root of the typed tree.
type Program struct {
	Functions []*Function
	Records   []typesystem.TRecord
	Contexts  []typesystem.TRecord
	Globals   []*Let
}

// Param is a checked function or lambda parameter.
type Param struct {
	Name string
	Typ  typesystem.Type
}

// Function is a checked top-level function (impl methods carry
// "Record.method" names).
type Function struct {
	Token      token.Token
	Name       string
	Params     []Param
	ReturnType typesystem.Type
	Body       *Block
}

// Capture is an outer binding captured by a lambda, in capture order.
type Capture struct {
	Name string
	Typ  typesystem.Type
}

// --- Statements ---

// Let is a checked val/mut binding.
type Let struct {
	Token   token.Token
	Name    string
	Mutable bool
	Typ     typesystem.Type
	Value   Expr
}

func (s *Let) stmtNode()             {}
func (s *Let) GetToken() token.Token { return s.Token }

// Assign is a checked re-assignment of a mut binding.
type Assign struct {
	Token token.Token
	Name  string
	Value Expr
}

func (s *Assign) stmtNode()             {}
func (s *Assign) GetToken() token.Token { return s.Token }

// Return is a checked early return.
type Return struct {
	Token token.Token
	Value Expr // nil returns Unit
}

func (s *Return) stmtNode()             {}
func (s *Return) GetToken() token.Token { return s.Token }

// ExprStmt wraps an expression evaluated for its value or effect.
type ExprStmt struct {
	Token token.Token
	E     Expr
}

func (s *ExprStmt) stmtNode()             {}
func (s *ExprStmt) GetToken() token.Token { return s.Token }

// --- Expressions ---

// Ident is a resolved local binding reference.
type Ident struct {
	Token token.Token
	Name  string
	Typ   typesystem.Type
}

func (e *Ident) exprNode()             {}
func (e *Ident) Type() typesystem.Type { return e.Typ }
func (e *Ident) GetToken() token.Token { return e.Token }

// FuncRef is a reference to a top-level function. As a call target it
// lowers to a direct call; as a value it lowers to a function-table index.
type FuncRef struct {
	Token token.Token
	Name  string
	Typ   typesystem.TFunc
}

func (e *FuncRef) exprNode()             {}
func (e *FuncRef) Type() typesystem.Type { return e.Typ }
func (e *FuncRef) GetToken() token.Token { return e.Token }

type IntLit struct {
	Token token.Token
	Value int64
	Typ   typesystem.Type
}

func (e *IntLit) exprNode()             {}
func (e *IntLit) Type() typesystem.Type { return e.Typ }
func (e *IntLit) GetToken() token.Token { return e.Token }

type FloatLit struct {
	Token token.Token
	Value float64
}

func (e *FloatLit) exprNode()             {}
func (e *FloatLit) Type() typesystem.Type { return typesystem.Float }
func (e *FloatLit) GetToken() token.Token { return e.Token }

type BoolLit struct {
	Token token.Token
	Value bool
}

func (e *BoolLit) exprNode()             {}
func (e *BoolLit) Type() typesystem.Type { return typesystem.Bool }
func (e *BoolLit) GetToken() token.Token { return e.Token }

type StringLit struct {
	Token token.Token
	Value string
}

func (e *StringLit) exprNode()             {}
func (e *StringLit) Type() typesystem.Type { return typesystem.String }
func (e *StringLit) GetToken() token.Token { return e.Token }

type CharLit struct {
	Token token.Token
	Value rune
}

func (e *CharLit) exprNode()             {}
func (e *CharLit) Type() typesystem.Type { return typesystem.Char }
func (e *CharLit) GetToken() token.Token { return e.Token }

type UnitLit struct {
	Token token.Token
}

func (e *UnitLit) exprNode()             {}
func (e *UnitLit) Type() typesystem.Type { return typesystem.Unit }
func (e *UnitLit) GetToken() token.Token { return e.Token }

// ListLit is a checked list literal; Typ is TList.
type ListLit struct {
	Token token.Token
	Elems []Expr
	Typ   typesystem.Type
}

func (e *ListLit) exprNode()             {}
func (e *ListLit) Type() typesystem.Type { return e.Typ }
func (e *ListLit) GetToken() token.Token { return e.Token }

// RecordLit is a checked record literal. Fields are reordered to
// declaration order so codegen can store them at fixed offsets.
type RecordLit struct {
	Token  token.Token
	Rec    typesystem.TRecord
	Fields []Expr
}

func (e *RecordLit) exprNode()             {}
func (e *RecordLit) Type() typesystem.Type { return e.Rec }
func (e *RecordLit) GetToken() token.Token { return e.Token }

// SomeLit is Some(value); Typ is TOption.
type SomeLit struct {
	Token token.Token
	Value Expr
	Typ   typesystem.Type
}

func (e *SomeLit) exprNode()             {}
func (e *SomeLit) Type() typesystem.Type { return e.Typ }
func (e *SomeLit) GetToken() token.Token { return e.Token }

// NoneLit is None; Typ is the TOption the context expects.
type NoneLit struct {
	Token token.Token
	Typ   typesystem.Type
}

func (e *NoneLit) exprNode()             {}
func (e *NoneLit) Type() typesystem.Type { return e.Typ }
func (e *NoneLit) GetToken() token.Token { return e.Token }

// Lambda is a checked lambda with its capture set resolved. Captures
// list the outer bindings the body reads, in first-use order; a lambda
// with no captures lowers to a bare function-table reference.
type Lambda struct {
	Token    token.Token
	Params   []Param
	Body     Expr
	Captures []Capture
	Typ      typesystem.TFunc
}

func (e *Lambda) exprNode()             {}
func (e *Lambda) Type() typesystem.Type { return e.Typ }
func (e *Lambda) GetToken() token.Token { return e.Token }

// Call is a checked call. A *FuncRef callee is a statically-resolved
// direct call; any other callee is an indirect call through the
// function table.
type Call struct {
	Token  token.Token
	Callee Expr
	Args   []Expr
	Typ    typesystem.Type
}

func (e *Call) exprNode()             {}
func (e *Call) Type() typesystem.Type { return e.Typ }
func (e *Call) GetToken() token.Token { return e.Token }

type Binary struct {
	Token    token.Token
	Operator string
	Left     Expr
	Right    Expr
	Typ      typesystem.Type
}

func (e *Binary) exprNode()             {}
func (e *Binary) Type() typesystem.Type { return e.Typ }
func (e *Binary) GetToken() token.Token { return e.Token }

type Unary struct {
	Token    token.Token
	Operator string
	Operand  Expr
	Typ      typesystem.Type
}

func (e *Unary) exprNode()             {}
func (e *Unary) Type() typesystem.Type { return e.Typ }
func (e *Unary) GetToken() token.Token { return e.Token }

// Member is record field access with the field offset index resolved.
type Member struct {
	Token token.Token
	Left  Expr
	Field string
	Index int
	Typ   typesystem.Type
}

func (e *Member) exprNode()             {}
func (e *Member) Type() typesystem.Type { return e.Typ }
func (e *Member) GetToken() token.Token { return e.Token }

// Block is a checked block; its type is the type of the final
// expression statement, or Unit.
type Block struct {
	Token token.Token
	Stmts []Stmt
	Typ   typesystem.Type
}

func (e *Block) exprNode()             {}
func (e *Block) Type() typesystem.Type { return e.Typ }
func (e *Block) GetToken() token.Token { return e.Token }

type If struct {
	Token     token.Token
	Condition Expr
	Then      *Block
	Else      *Block // nil means Unit-typed if
	Typ       typesystem.Type
}

func (e *If) exprNode()             {}
func (e *If) Type() typesystem.Type { return e.Typ }
func (e *If) GetToken() token.Token { return e.Token }

// Arm is one checked match arm.
type Arm struct {
	Token   token.Token
	Pattern Pattern
	Body    Expr
}

// Match is a checked match; arms stay in source order and the analyzer
// has proven them exhaustive for the scrutinee type.
type Match struct {
	Token     token.Token
	Scrutinee Expr
	Arms      []*Arm
	Typ       typesystem.Type
}

func (e *Match) exprNode()             {}
func (e *Match) Type() typesystem.Type { return e.Typ }
func (e *Match) GetToken() token.Token { return e.Token }

// Arena is a checked with-Arena block. The analyzer guarantees the body
// result is scalar (non-aggregate).
type Arena struct {
	Token token.Token
	Body  *Block
}

func (e *Arena) exprNode()             {}
func (e *Arena) Type() typesystem.Type { return e.Body.Typ }
func (e *Arena) GetToken() token.Token { return e.Token }

// Clone reads its operand without consuming the affine binding.
type Clone struct {
	Token   token.Token
	Operand Expr
}

func (e *Clone) exprNode()             {}
func (e *Clone) Type() typesystem.Type { return e.Operand.Type() }
func (e *Clone) GetToken() token.Token { return e.Token }
