package parser

import (
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/ril-lang/ril/internal/ast"
	"github.com/ril-lang/ril/internal/token"
)

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.addError(p.curToken, "unexpected token %q in expression", p.curToken.Lexeme)
		return nil
	}
	leftExp := prefix()

	for precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
		if leftExp == nil {
			return nil
		}
	}
	return leftExp
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

// parseIdentifierExpression parses a name reference or, for an
// uppercase name followed by '{', a record literal.
func (p *Parser) parseIdentifierExpression() ast.Expression {
	if p.peekTokenIs(token.LBRACE) && isUpperIdent(p.curToken.Lexeme) {
		return p.parseRecordLiteral()
	}
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
}

func (p *Parser) parseRecordLiteral() ast.Expression {
	rl := &ast.RecordLiteral{
		Token: p.curToken,
		Name:  &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme},
	}
	p.nextToken() // the '{'
	for !p.peekTokenIs(token.RBRACE) {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		fld := &ast.FieldInit{
			Token: p.curToken,
			Name:  &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme},
		}
		if !p.expectPeek(token.COLON) {
			return nil
		}
		p.nextToken()
		fld.Value = p.parseExpression(LOWEST)
		if fld.Value == nil {
			return nil
		}
		rl.Fields = append(rl.Fields, fld)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		}
	}
	p.nextToken() // the '}'
	return rl
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	v, ok := p.parseIntegerLiteralValue()
	if !ok {
		return nil
	}
	return &ast.IntegerLiteral{Token: p.curToken, Value: v}
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	v, err := strconv.ParseFloat(p.curToken.Lexeme, 64)
	if err != nil {
		p.addError(p.curToken, "invalid float literal %q", p.curToken.Lexeme)
		return nil
	}
	return &ast.FloatLiteral{Token: p.curToken, Value: v}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Lexeme}
}

func (p *Parser) parseCharLiteral() ast.Expression {
	r, _ := utf8.DecodeRuneInString(p.curToken.Lexeme)
	return &ast.CharLiteral{Token: p.curToken, Value: r}
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
}

// parseGroupOrCall handles everything that starts with '(':
//
//	()            the unit literal
//	(e)           a grouped expression
//	(e) f         a one-argument OSV call
//	(a, b) f      a multi-argument OSV call
func (p *Parser) parseGroupOrCall() ast.Expression {
	lparen := p.curToken

	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		unit := &ast.UnitLiteral{Token: lparen}
		if p.peekTokenIs(token.IDENT) {
			return p.parseCallWith(nil, lparen)
		}
		return unit
	}

	var args []ast.Expression
	p.nextToken()
	first := p.parseExpression(LOWEST)
	if first == nil {
		return nil
	}
	args = append(args, first)
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		arg := p.parseExpression(LOWEST)
		if arg == nil {
			return nil
		}
		args = append(args, arg)
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	if p.peekTokenIs(token.IDENT) {
		return p.parseCallWith(args, lparen)
	}

	if len(args) > 1 {
		p.addError(lparen, "tuple expression requires a callee: (a, b) fn")
		return nil
	}
	return args[0]
}

// parseCallWith finishes an OSV call once the argument tuple is parsed.
// The callee is an identifier, optionally a dotted method path
// (p) Point.norm.
func (p *Parser) parseCallWith(args []ast.Expression, lparen token.Token) ast.Expression {
	p.nextToken()
	var callee ast.Expression = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	for p.peekTokenIs(token.DOT) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		callee = &ast.MemberExpression{
			Token:  p.curToken,
			Left:   callee,
			Member: &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme},
		}
	}
	return &ast.CallExpression{Token: lparen, Callee: callee, Args: args}
}

func (p *Parser) parseListLiteral() ast.Expression {
	ll := &ast.ListLiteral{Token: p.curToken}
	for !p.peekTokenIs(token.RBRACKET) {
		p.nextToken()
		el := p.parseExpression(LOWEST)
		if el == nil {
			return nil
		}
		ll.Elements = append(ll.Elements, el)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		}
	}
	p.nextToken() // the ']'
	return ll
}

func (p *Parser) parseBlockAsExpression() ast.Expression {
	return p.parseBlockExpression()
}

// parseBlockExpression parses { stmt; ...; expr } with curToken at '{'.
func (p *Parser) parseBlockExpression() *ast.BlockExpression {
	block := &ast.BlockExpression{Token: p.curToken}
	p.nextToken()
	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.nextToken()
	}
	return block
}

// parseLambda parses |x, y| body and |x: Int| body.
func (p *Parser) parseLambda() ast.Expression {
	le := &ast.LambdaExpression{Token: p.curToken}
	le.Params = p.parseLambdaParams()
	p.nextToken()
	le.Body = p.parseExpression(LOWEST)
	if le.Body == nil {
		return nil
	}
	return le
}

// parseLambdaParams parses the parameter list between the pipes; type
// annotations are optional.
func (p *Parser) parseLambdaParams() []*ast.Parameter {
	var params []*ast.Parameter
	for !p.peekTokenIs(token.PIPE) {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		param := &ast.Parameter{
			Token: p.curToken,
			Name:  &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme},
		}
		if p.peekTokenIs(token.COLON) {
			p.nextToken()
			p.nextToken()
			param.TypeAnnotation = p.parseType()
			if param.TypeAnnotation == nil {
				return nil
			}
		}
		params = append(params, param)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		}
	}
	p.nextToken() // the closing '|'
	return params
}

// parseZeroParamLambda handles '||' lexed as one token: || body.
func (p *Parser) parseZeroParamLambda() ast.Expression {
	le := &ast.LambdaExpression{Token: p.curToken}
	p.nextToken()
	le.Body = p.parseExpression(LOWEST)
	if le.Body == nil {
		return nil
	}
	return le
}

func (p *Parser) parseSomeExpression() ast.Expression {
	se := &ast.SomeExpression{Token: p.curToken}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	se.Value = p.parseExpression(LOWEST)
	if se.Value == nil {
		return nil
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return se
}

func (p *Parser) parseNoneExpression() ast.Expression {
	return &ast.NoneExpression{Token: p.curToken}
}

func (p *Parser) parseIfExpression() ast.Expression {
	ie := &ast.IfExpression{Token: p.curToken}
	p.nextToken()
	ie.Condition = p.parseExpression(LOWEST)
	if ie.Condition == nil {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	ie.Then = p.parseBlockExpression()
	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		if !p.expectPeek(token.LBRACE) {
			return nil
		}
		ie.Else = p.parseBlockExpression()
	}
	return ie
}

func (p *Parser) parseMatchExpression() ast.Expression {
	me := &ast.MatchExpression{Token: p.curToken}
	p.nextToken()
	me.Scrutinee = p.parseExpression(LOWEST)
	if me.Scrutinee == nil {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	for !p.peekTokenIs(token.RBRACE) && !p.peekTokenIs(token.EOF) {
		p.nextToken()
		arm := &ast.MatchArm{Token: p.curToken}
		arm.Pattern = p.parsePattern()
		if arm.Pattern == nil {
			return nil
		}
		if !p.expectPeek(token.FATARROW) {
			return nil
		}
		p.nextToken()
		arm.Body = p.parseExpression(LOWEST)
		if arm.Body == nil {
			return nil
		}
		me.Arms = append(me.Arms, arm)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		}
	}
	if !p.expectPeek(token.RBRACE) {
		return nil
	}
	return me
}

// parseArenaExpression parses: with Arena { body }
func (p *Parser) parseArenaExpression() ast.Expression {
	ae := &ast.ArenaExpression{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	if p.curToken.Lexeme != "Arena" {
		p.addError(p.curToken, "expected Arena after with, got %q", p.curToken.Lexeme)
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	ae.Body = p.parseBlockExpression()
	return ae
}

func (p *Parser) parseCloneExpression() ast.Expression {
	ce := &ast.CloneExpression{Token: p.curToken}
	p.nextToken()
	ce.Operand = p.parseExpression(PREFIX)
	if ce.Operand == nil {
		return nil
	}
	return ce
}

func (p *Parser) parseUnaryExpression() ast.Expression {
	ue := &ast.UnaryExpression{Token: p.curToken, Operator: p.curToken.Lexeme}
	p.nextToken()
	ue.Operand = p.parseExpression(PREFIX)
	if ue.Operand == nil {
		return nil
	}
	return ue
}

func (p *Parser) parseBinaryExpression(left ast.Expression) ast.Expression {
	be := &ast.BinaryExpression{
		Token:    p.curToken,
		Operator: p.curToken.Lexeme,
		Left:     left,
	}
	precedence := p.curPrecedence()
	p.nextToken()
	be.Right = p.parseExpression(precedence)
	if be.Right == nil {
		return nil
	}
	return be
}

func (p *Parser) parseMemberExpression(left ast.Expression) ast.Expression {
	me := &ast.MemberExpression{Token: p.curToken, Left: left}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	me.Member = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	return me
}

func isUpperIdent(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}
