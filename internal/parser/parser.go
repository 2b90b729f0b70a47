// Package parser builds the untyped syntax tree from the token stream.
//
// The grammar is object-subject-verb: a call names its argument tuple
// first and the callee last, as in (5, 10) add. Record literal names are
// required to start with an uppercase letter; that keeps "match x {"
// unambiguous without newline sensitivity.
package parser

import (
	"strconv"

	"github.com/ril-lang/ril/internal/ast"
	"github.com/ril-lang/ril/internal/diagnostics"
	"github.com/ril-lang/ril/internal/lexer"
	"github.com/ril-lang/ril/internal/token"
)

// Operator precedences, lowest first.
const (
	LOWEST      = iota + 1
	OR          // ||
	AND         // &&
	EQUALS      // == !=
	LESSGREATER // < <= > >=
	SUM         // + -
	PRODUCT     // * / %
	PREFIX      // -x !x
	MEMBER      // p.x
)

var precedences = map[token.Type]int{
	token.OROR:     OR,
	token.ANDAND:   AND,
	token.EQ:       EQUALS,
	token.NOTEQ:    EQUALS,
	token.LT:       LESSGREATER,
	token.GT:       LESSGREATER,
	token.LTEQ:     LESSGREATER,
	token.GTEQ:     LESSGREATER,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.ASTERISK: PRODUCT,
	token.SLASH:    PRODUCT,
	token.PERCENT:  PRODUCT,
	token.DOT:      MEMBER,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

type Parser struct {
	l *lexer.Lexer

	curToken  token.Token
	peekToken token.Token

	errors []*diagnostics.DiagnosticError

	prefixParseFns map[token.Type]prefixParseFn
	infixParseFns  map[token.Type]infixParseFn
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}

	p.prefixParseFns = map[token.Type]prefixParseFn{
		token.IDENT:    p.parseIdentifierExpression,
		token.INT:      p.parseIntegerLiteral,
		token.FLOAT:    p.parseFloatLiteral,
		token.STRING:   p.parseStringLiteral,
		token.CHAR:     p.parseCharLiteral,
		token.TRUE:     p.parseBooleanLiteral,
		token.FALSE:    p.parseBooleanLiteral,
		token.LPAREN:   p.parseGroupOrCall,
		token.LBRACKET: p.parseListLiteral,
		token.LBRACE:   p.parseBlockAsExpression,
		token.PIPE:     p.parseLambda,
		token.OROR:     p.parseZeroParamLambda,
		token.SOME:     p.parseSomeExpression,
		token.NONE:     p.parseNoneExpression,
		token.IF:       p.parseIfExpression,
		token.MATCH:    p.parseMatchExpression,
		token.WITH:     p.parseArenaExpression,
		token.CLONE:    p.parseCloneExpression,
		token.MINUS:    p.parseUnaryExpression,
		token.BANG:     p.parseUnaryExpression,
	}
	p.infixParseFns = map[token.Type]infixParseFn{
		token.PLUS:     p.parseBinaryExpression,
		token.MINUS:    p.parseBinaryExpression,
		token.ASTERISK: p.parseBinaryExpression,
		token.SLASH:    p.parseBinaryExpression,
		token.PERCENT:  p.parseBinaryExpression,
		token.EQ:       p.parseBinaryExpression,
		token.NOTEQ:    p.parseBinaryExpression,
		token.LT:       p.parseBinaryExpression,
		token.GT:       p.parseBinaryExpression,
		token.LTEQ:     p.parseBinaryExpression,
		token.GTEQ:     p.parseBinaryExpression,
		token.ANDAND:   p.parseBinaryExpression,
		token.OROR:     p.parseBinaryExpression,
		token.DOT:      p.parseMemberExpression,
	}

	// Read two tokens so curToken and peekToken are both set.
	p.nextToken()
	p.nextToken()
	return p
}

// Errors returns the accumulated parse errors.
func (p *Parser) Errors() []*diagnostics.DiagnosticError {
	return p.errors
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t token.Type) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.Type) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t token.Type) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekError(t token.Type) {
	p.errors = append(p.errors, diagnostics.NewError(
		diagnostics.ErrP001,
		p.peekToken,
		"expected %q, got %q", string(t), p.peekToken.Lexeme,
	))
}

func (p *Parser) addError(tok token.Token, format string, args ...interface{}) {
	p.errors = append(p.errors, diagnostics.NewError(diagnostics.ErrP001, tok, format, args...))
}

// ParseProgram parses the whole input into a Program of declarations.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}

	for !p.curTokenIs(token.EOF) {
		decl := p.parseDeclaration()
		if decl != nil {
			program.Declarations = append(program.Declarations, decl)
		}
		p.nextToken()
	}
	return program
}

func (p *Parser) parseDeclaration() ast.Declaration {
	switch p.curToken.Type {
	case token.FUN:
		return p.parseFunctionDeclaration()
	case token.VAL, token.MUT:
		return p.parseBindingDeclaration()
	case token.RECORD:
		return p.parseRecordDeclaration(false)
	case token.FROZEN:
		if !p.expectPeek(token.RECORD) {
			return nil
		}
		return p.parseRecordDeclaration(true)
	case token.IMPL:
		return p.parseImplDeclaration()
	case token.CONTEXT:
		return p.parseContextDeclaration()
	case token.SEMICOLON:
		return nil
	default:
		p.addError(p.curToken, "unexpected token %q at top level", p.curToken.Lexeme)
		p.skipToDeclarationBoundary()
		return nil
	}
}

// skipToDeclarationBoundary recovers after a top-level error by scanning
// for the next declaration keyword.
func (p *Parser) skipToDeclarationBoundary() {
	for !p.curTokenIs(token.EOF) {
		switch p.peekToken.Type {
		case token.FUN, token.VAL, token.MUT, token.RECORD, token.FROZEN, token.IMPL, token.CONTEXT, token.EOF:
			return
		}
		p.nextToken()
	}
}

// parseFunctionDeclaration parses: fun name = p1:Type, p2:Type [-> Type] { body }
// Zero-parameter functions omit the parameter list: fun main = { body }
func (p *Parser) parseFunctionDeclaration() *ast.FunctionDeclaration {
	fd := &ast.FunctionDeclaration{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	fd.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if !p.expectPeek(token.ASSIGN) {
		return nil
	}

	if p.peekTokenIs(token.IDENT) {
		fd.Params = p.parseParameterList()
		if fd.Params == nil {
			return nil
		}
	}

	if p.peekTokenIs(token.ARROW) {
		p.nextToken()
		p.nextToken()
		fd.ReturnType = p.parseType()
		if fd.ReturnType == nil {
			return nil
		}
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	fd.Body = p.parseBlockExpression()
	return fd
}

// parseParameterList parses "name: Type, name: Type" with annotations
// required (lambdas, which may omit them, use parseLambdaParams).
func (p *Parser) parseParameterList() []*ast.Parameter {
	var params []*ast.Parameter
	for {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		param := &ast.Parameter{
			Token: p.curToken,
			Name:  &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme},
		}
		if !p.expectPeek(token.COLON) {
			return nil
		}
		p.nextToken()
		param.TypeAnnotation = p.parseType()
		if param.TypeAnnotation == nil {
			return nil
		}
		params = append(params, param)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	return params
}

func (p *Parser) parseBindingDeclaration() *ast.BindingDeclaration {
	bd := &ast.BindingDeclaration{
		Token:   p.curToken,
		Mutable: p.curTokenIs(token.MUT),
	}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	bd.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		p.nextToken()
		bd.TypeAnnotation = p.parseType()
		if bd.TypeAnnotation == nil {
			return nil
		}
	}

	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()
	bd.Value = p.parseExpression(LOWEST)
	return bd
}

func (p *Parser) parseRecordDeclaration(frozen bool) *ast.RecordDeclaration {
	rd := &ast.RecordDeclaration{Token: p.curToken, Frozen: frozen}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	rd.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	rd.Fields = p.parseFieldDeclList()
	return rd
}

func (p *Parser) parseContextDeclaration() *ast.ContextDeclaration {
	cd := &ast.ContextDeclaration{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	cd.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	cd.Fields = p.parseFieldDeclList()
	return cd
}

// parseFieldDeclList parses "{ name: Type, ... }" starting at '{'.
func (p *Parser) parseFieldDeclList() []*ast.FieldDecl {
	var fields []*ast.FieldDecl
	for !p.peekTokenIs(token.RBRACE) {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		fld := &ast.FieldDecl{
			Token: p.curToken,
			Name:  &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme},
		}
		if !p.expectPeek(token.COLON) {
			return nil
		}
		p.nextToken()
		fld.TypeAnnotation = p.parseType()
		if fld.TypeAnnotation == nil {
			return nil
		}
		fields = append(fields, fld)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		}
	}
	p.nextToken() // consume '}'
	return fields
}

func (p *Parser) parseImplDeclaration() *ast.ImplDeclaration {
	id := &ast.ImplDeclaration{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	id.Target = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	for !p.peekTokenIs(token.RBRACE) && !p.peekTokenIs(token.EOF) {
		if !p.expectPeek(token.FUN) {
			return nil
		}
		fn := p.parseFunctionDeclaration()
		if fn == nil {
			return nil
		}
		id.Functions = append(id.Functions, fn)
	}
	p.nextToken() // consume '}'
	return id
}

// --- Statements ---

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.VAL, token.MUT:
		return p.parseBindingDeclaration()
	case token.RET:
		return p.parseReturnStatement()
	case token.IDENT:
		if p.peekTokenIs(token.ASSIGN) {
			return p.parseAssignStatement()
		}
		return p.parseExpressionStatement()
	case token.SEMICOLON:
		return nil
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseReturnStatement() *ast.ReturnStatement {
	rs := &ast.ReturnStatement{Token: p.curToken}
	if p.peekTokenIs(token.SEMICOLON) || p.peekTokenIs(token.RBRACE) {
		return rs
	}
	p.nextToken()
	rs.Value = p.parseExpression(LOWEST)
	return rs
}

func (p *Parser) parseAssignStatement() *ast.AssignStatement {
	name := &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	p.nextToken() // the '=' token
	as := &ast.AssignStatement{Token: p.curToken, Name: name}
	p.nextToken()
	as.Value = p.parseExpression(LOWEST)
	return as
}

func (p *Parser) parseExpressionStatement() *ast.ExpressionStatement {
	es := &ast.ExpressionStatement{Token: p.curToken}
	es.Expression = p.parseExpression(LOWEST)
	if es.Expression == nil {
		return nil
	}
	return es
}

// parseIntegerLiteralValue converts the current INT lexeme.
func (p *Parser) parseIntegerLiteralValue() (int64, bool) {
	v, err := strconv.ParseInt(p.curToken.Lexeme, 10, 64)
	if err != nil {
		p.addError(p.curToken, "invalid integer literal %q", p.curToken.Lexeme)
		return 0, false
	}
	return v, true
}
