package parser

import (
	"github.com/ril-lang/ril/internal/ast"
	"github.com/ril-lang/ril/internal/token"
)

// parseType parses a type annotation with curToken at its first token.
//
//	Int  List<Int>  Option<String>  Array<Int, 4>  (Int, Int) -> Int  Point
func (p *Parser) parseType() ast.Type {
	switch p.curToken.Type {
	case token.IDENT:
		return p.parseNamedType()
	case token.LPAREN:
		return p.parseFunctionType()
	default:
		p.addError(p.curToken, "unexpected token %q in type", p.curToken.Lexeme)
		return nil
	}
}

func (p *Parser) parseNamedType() ast.Type {
	nt := &ast.NamedType{Token: p.curToken, Name: p.curToken.Lexeme}

	if !p.peekTokenIs(token.LT) {
		return nt
	}
	p.nextToken() // the '<'
	p.nextToken()
	arg := p.parseType()
	if arg == nil {
		return nil
	}
	nt.Args = append(nt.Args, arg)

	// Array<T, n> carries a compile-time size after the element type.
	if p.peekTokenIs(token.COMMA) {
		p.nextToken()
		if !p.expectPeek(token.INT) {
			return nil
		}
		size, ok := p.parseIntegerLiteralValue()
		if !ok {
			return nil
		}
		nt.Size = int(size)
		nt.HasSize = true
	}

	if !p.expectPeek(token.GT) {
		return nil
	}
	return nt
}

// parseFunctionType parses (T1, T2) -> R with curToken at '('.
func (p *Parser) parseFunctionType() ast.Type {
	ft := &ast.FunctionType{Token: p.curToken}

	for !p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		param := p.parseType()
		if param == nil {
			return nil
		}
		ft.Params = append(ft.Params, param)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		}
	}
	p.nextToken() // the ')'

	if !p.expectPeek(token.ARROW) {
		return nil
	}
	p.nextToken()
	ft.Return = p.parseType()
	if ft.Return == nil {
		return nil
	}
	return ft
}
