package ast

import (
	"github.com/ril-lang/ril/internal/token"
)

// TokenProvider is an interface for any AST node that can provide its primary token.
// This is useful for error reporting.
type TokenProvider interface {
	GetToken() token.Token
}

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string
}

// Statement is a Node that represents a statement.
type Statement interface {
	Node
	statementNode()
	GetToken() token.Token
}

// Expression is a Node that represents an expression.
type Expression interface {
	Node
	expressionNode()
	GetToken() token.Token
}

// Declaration is a top-level statement: Function, Binding, Record, Impl or Context.
type Declaration interface {
	Statement
	declarationNode()
}

// Program is the root node of every AST our parser produces.
type Program struct {
	File         string // Source file path
	Declarations []Declaration
}

func (p *Program) TokenLiteral() string {
	if len(p.Declarations) > 0 {
		return p.Declarations[0].TokenLiteral()
	}
	return ""
}

// Parameter is a single function or lambda parameter.
// TypeAnnotation is nil for unannotated lambda parameters; those are
// inferred bidirectionally by the checker.
type Parameter struct {
	Token          token.Token // The parameter name token
	Name           *Identifier
	TypeAnnotation Type
}

func (p *Parameter) GetToken() token.Token {
	if p == nil {
		return token.Token{}
	}
	return p.Token
}

// FunctionDeclaration represents a named function.
// fun add = x:Int, y:Int { x + y }
type FunctionDeclaration struct {
	Token      token.Token // The 'fun' token
	Name       *Identifier
	Params     []*Parameter
	ReturnType Type // Optional; inferred from the body when nil
	Body       *BlockExpression
}

func (fd *FunctionDeclaration) statementNode()       {}
func (fd *FunctionDeclaration) declarationNode()     {}
func (fd *FunctionDeclaration) TokenLiteral() string { return fd.Token.Lexeme }
func (fd *FunctionDeclaration) GetToken() token.Token {
	if fd == nil {
		return token.Token{}
	}
	return fd.Token
}

// BindingDeclaration represents a val or mut binding.
// val x = 42, mut y: Int = 0
type BindingDeclaration struct {
	Token          token.Token // The 'val' or 'mut' token
	Name           *Identifier
	Mutable        bool
	TypeAnnotation Type // Optional
	Value          Expression
}

func (bd *BindingDeclaration) statementNode()       {}
func (bd *BindingDeclaration) declarationNode()     {}
func (bd *BindingDeclaration) TokenLiteral() string { return bd.Token.Lexeme }
func (bd *BindingDeclaration) GetToken() token.Token {
	if bd == nil {
		return token.Token{}
	}
	return bd.Token
}

// FieldDecl is a single "name: Type" entry in a record or context declaration.
type FieldDecl struct {
	Token          token.Token
	Name           *Identifier
	TypeAnnotation Type
}

// RecordDeclaration represents a record shape.
// record Point { x: Int, y: Int }, frozen record Config { ... }
type RecordDeclaration struct {
	Token  token.Token // The 'record' token
	Name   *Identifier
	Frozen bool
	Fields []*FieldDecl
}

func (rd *RecordDeclaration) statementNode()       {}
func (rd *RecordDeclaration) declarationNode()     {}
func (rd *RecordDeclaration) TokenLiteral() string { return rd.Token.Lexeme }
func (rd *RecordDeclaration) GetToken() token.Token {
	if rd == nil {
		return token.Token{}
	}
	return rd.Token
}

// ImplDeclaration attaches functions to a record type.
// impl Point { fun norm = p:Point { ... } }
type ImplDeclaration struct {
	Token     token.Token // The 'impl' token
	Target    *Identifier
	Functions []*FunctionDeclaration
}

func (id *ImplDeclaration) statementNode()       {}
func (id *ImplDeclaration) declarationNode()     {}
func (id *ImplDeclaration) TokenLiteral() string { return id.Token.Lexeme }
func (id *ImplDeclaration) GetToken() token.Token {
	if id == nil {
		return token.Token{}
	}
	return id.Token
}

// ContextDeclaration declares an ambient context shape.
// context Console { width: Int }
type ContextDeclaration struct {
	Token  token.Token // The 'context' token
	Name   *Identifier
	Fields []*FieldDecl
}

func (cd *ContextDeclaration) statementNode()       {}
func (cd *ContextDeclaration) declarationNode()     {}
func (cd *ContextDeclaration) TokenLiteral() string { return cd.Token.Lexeme }
func (cd *ContextDeclaration) GetToken() token.Token {
	if cd == nil {
		return token.Token{}
	}
	return cd.Token
}

// ExpressionStatement is a statement that consists of a single expression.
type ExpressionStatement struct {
	Token      token.Token // the first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()        {}
func (es *ExpressionStatement) TokenLiteral() string  { return es.Token.Lexeme }
func (es *ExpressionStatement) GetToken() token.Token { return es.Token }

// AssignStatement re-assigns a mut binding: x = e.
// The checker rejects it for immutable bindings.
type AssignStatement struct {
	Token token.Token // The '=' token
	Name  *Identifier
	Value Expression
}

func (as *AssignStatement) statementNode()        {}
func (as *AssignStatement) TokenLiteral() string  { return as.Token.Lexeme }
func (as *AssignStatement) GetToken() token.Token { return as.Token }

// ReturnStatement returns early from a function: ret e.
type ReturnStatement struct {
	Token token.Token // The 'ret' token
	Value Expression  // nil for bare ret (Unit)
}

func (rs *ReturnStatement) statementNode()        {}
func (rs *ReturnStatement) TokenLiteral() string  { return rs.Token.Lexeme }
func (rs *ReturnStatement) GetToken() token.Token { return rs.Token }
