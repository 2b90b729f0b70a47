package parser

import (
	"github.com/ril-lang/ril/internal/ast"
	"github.com/ril-lang/ril/internal/token"
)

// parsePattern parses one match-arm pattern with curToken at its first token.
func (p *Parser) parsePattern() ast.Pattern {
	switch p.curToken.Type {
	case token.UNDERSCORE:
		return &ast.WildcardPattern{Token: p.curToken}
	case token.IDENT:
		if p.peekTokenIs(token.LBRACE) && isUpperIdent(p.curToken.Lexeme) {
			return p.parseRecordPattern()
		}
		return &ast.BindPattern{
			Token: p.curToken,
			Name:  &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme},
		}
	case token.INT:
		v, ok := p.parseIntegerLiteralValue()
		if !ok {
			return nil
		}
		return &ast.LiteralPattern{
			Token: p.curToken,
			Value: &ast.IntegerLiteral{Token: p.curToken, Value: v},
		}
	case token.MINUS:
		minus := p.curToken
		if !p.expectPeek(token.INT) {
			return nil
		}
		v, ok := p.parseIntegerLiteralValue()
		if !ok {
			return nil
		}
		return &ast.LiteralPattern{
			Token: minus,
			Value: &ast.IntegerLiteral{Token: minus, Value: -v},
		}
	case token.TRUE, token.FALSE:
		return &ast.LiteralPattern{
			Token: p.curToken,
			Value: &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(token.TRUE)},
		}
	case token.STRING:
		return &ast.LiteralPattern{
			Token: p.curToken,
			Value: &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Lexeme},
		}
	case token.CHAR:
		lit := p.parseCharLiteral()
		if lit == nil {
			return nil
		}
		return &ast.LiteralPattern{Token: p.curToken, Value: lit}
	case token.SOME:
		return p.parseSomePattern()
	case token.NONE:
		return &ast.NonePattern{Token: p.curToken}
	case token.LBRACKET:
		return p.parseListPattern()
	default:
		p.addError(p.curToken, "unexpected token %q in pattern", p.curToken.Lexeme)
		return nil
	}
}

func (p *Parser) parseSomePattern() ast.Pattern {
	sp := &ast.SomePattern{Token: p.curToken}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	sp.Inner = p.parsePattern()
	if sp.Inner == nil {
		return nil
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return sp
}

// parseListPattern distinguishes [], [h | t] and [p1, p2, ...].
func (p *Parser) parseListPattern() ast.Pattern {
	lbracket := p.curToken

	if p.peekTokenIs(token.RBRACKET) {
		p.nextToken()
		return &ast.EmptyListPattern{Token: lbracket}
	}

	p.nextToken()
	first := p.parsePattern()
	if first == nil {
		return nil
	}

	if p.peekTokenIs(token.PIPE) {
		p.nextToken()
		p.nextToken()
		tail := p.parsePattern()
		if tail == nil {
			return nil
		}
		if !p.expectPeek(token.RBRACKET) {
			return nil
		}
		return &ast.ConsPattern{Token: lbracket, Head: first, Tail: tail}
	}

	elems := []ast.Pattern{first}
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		el := p.parsePattern()
		if el == nil {
			return nil
		}
		elems = append(elems, el)
	}
	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return &ast.ExactListPattern{Token: lbracket, Elements: elems}
}

func (p *Parser) parseRecordPattern() ast.Pattern {
	rp := &ast.RecordPattern{
		Token: p.curToken,
		Name:  &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme},
	}
	p.nextToken() // the '{'
	for !p.peekTokenIs(token.RBRACE) {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		fp := &ast.FieldPattern{
			Token: p.curToken,
			Name:  &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme},
		}
		if !p.expectPeek(token.COLON) {
			return nil
		}
		p.nextToken()
		fp.Pattern = p.parsePattern()
		if fp.Pattern == nil {
			return nil
		}
		rp.Fields = append(rp.Fields, fp)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		}
	}
	p.nextToken() // the '}'
	return rp
}
