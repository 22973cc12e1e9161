package parser

import (
	"github.com/ZOrfeas/llamac/internal/ast"
	"github.com/ZOrfeas/llamac/internal/lexer"
	"github.com/ZOrfeas/llamac/internal/token"
)

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.pk.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.cur.Type]; ok {
		return prec
	}
	return LOWEST
}

// parseExpression is the Pratt core: a prefix parse followed by a
// precedence-climbing loop over infix operators.
func (p *Parser) parseExpression(precedence int) ast.Expression {
	left := p.parsePrefixExpr()
	if left == nil || p.failed() {
		return nil
	}
	for precedence < p.peekPrecedence() && p.hasInfix(p.pk.Type) {
		p.nextToken()
		left = p.parseInfixDispatch(left)
		if p.failed() {
			return nil
		}
	}
	return left
}

func (p *Parser) hasInfix(t token.Type) bool {
	switch t {
	case token.SEMI, token.ASSIGN, token.OR, token.AND,
		token.EQ, token.NEQ, token.EQEQ, token.NEQEQ, token.LT, token.GT, token.LE, token.GE,
		token.PLUS, token.MINUS, token.PLUSF, token.MINUSF,
		token.STAR, token.SLASH, token.MOD, token.STARF, token.SLASHF, token.POW:
		return true
	default:
		return false
	}
}

func (p *Parser) parseInfixDispatch(left ast.Expression) ast.Expression {
	switch p.cur.Type {
	case token.SEMI:
		return p.parseSeqExpr(left)
	case token.ASSIGN:
		return p.parseAssignExpr(left)
	default:
		return p.parseBinaryExpr(left)
	}
}

func (p *Parser) parseBinaryExpr(left ast.Expression) ast.Expression {
	tok := p.cur
	op := p.cur.Type
	prec := p.curPrecedence()
	p.nextToken()
	var right ast.Expression
	if op == token.POW {
		// right-associative
		right = p.parseExpression(prec - 1)
	} else {
		right = p.parseExpression(prec)
	}
	if p.failed() {
		return nil
	}
	b := &ast.BinaryExpr{Op: op, Left: left, Right: right}
	b.Tok = tok
	return b
}

func (p *Parser) parseSeqExpr(left ast.Expression) ast.Expression {
	tok := p.cur
	p.nextToken()
	right := p.parseExpression(SEQ - 1)
	if p.failed() {
		return nil
	}
	s := &ast.SeqExpr{First: left, Second: right}
	s.Tok = tok
	return s
}

func (p *Parser) parseAssignExpr(left ast.Expression) ast.Expression {
	tok := p.cur
	p.nextToken()
	right := p.parseExpression(ASSIGN - 1)
	if p.failed() {
		return nil
	}
	a := &ast.AssignExpr{Target: left, Value: right}
	a.Tok = tok
	return a
}

func (p *Parser) parsePrefixExpr() ast.Expression {
	switch p.cur.Type {
	case token.INT:
		return p.parseIntLiteral()
	case token.FLOAT:
		return p.parseFloatLiteral()
	case token.CHAR:
		return p.parseCharLiteral()
	case token.STRING:
		return p.parseStringLiteral()
	case token.TRUE, token.FALSE:
		return p.parseBoolLiteral()
	case token.IDENT:
		return p.parseIdentifierOrCall()
	case token.LPAREN:
		return p.parseGroupedOrUnit()
	case token.MINUS, token.MINUSF, token.PLUS, token.PLUSF, token.NOT, token.BANG, token.DELETE:
		return p.parseUnaryExpr()
	case token.IF:
		return p.parseIfExpr()
	case token.WHILE:
		return p.parseWhileExpr()
	case token.FOR:
		return p.parseForExpr()
	case token.MATCH:
		return p.parseMatchExpr()
	case token.NEW:
		return p.parseNewExpr()
	case token.LET:
		return p.parseLetInExpr()
	case token.DIM:
		return p.parseDimExpr()
	default:
		p.errorf("unexpected token %q in expression position", p.cur.Lexeme)
		return nil
	}
}

func (p *Parser) parseIntLiteral() ast.Expression {
	v, err := lexer.ParseIntLiteral(p.cur.Lexeme)
	if err != nil {
		p.errorf("invalid integer literal %q", p.cur.Lexeme)
		return nil
	}
	n := &ast.IntLiteral{Value: v}
	n.Tok = p.cur
	return n
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	v, err := lexer.ParseFloatLiteral(p.cur.Lexeme)
	if err != nil {
		p.errorf("invalid float literal %q", p.cur.Lexeme)
		return nil
	}
	n := &ast.FloatLiteral{Value: v}
	n.Tok = p.cur
	return n
}

func (p *Parser) parseCharLiteral() ast.Expression {
	n := &ast.CharLiteral{}
	if len(p.cur.Lexeme) > 0 {
		n.Value = p.cur.Lexeme[0]
	}
	n.Tok = p.cur
	return n
}

func (p *Parser) parseStringLiteral() ast.Expression {
	n := &ast.StringLiteral{Value: p.cur.Lexeme}
	n.Tok = p.cur
	return n
}

func (p *Parser) parseBoolLiteral() ast.Expression {
	n := &ast.BoolLiteral{Value: p.cur.Type == token.TRUE}
	n.Tok = p.cur
	return n
}

// parseIdentifierOrCall handles a bare identifier, "a[i1,...,ik]" indexing,
// and "f a1 a2 ... an" application — llamac has no curried partial
// application (§ non-goals), so a CallExpr is always fully applied here and
// the analyzer rejects under- or over-application.
func (p *Parser) parseIdentifierOrCall() ast.Expression {
	tok := p.cur
	ident := &ast.Identifier{Name: p.cur.Lexeme}
	ident.Tok = tok

	if p.pkIs(token.LBRACKET) {
		return p.parseIndexExpr(ident, tok)
	}
	if !p.pkStartsCallArg() {
		return ident
	}

	var args []ast.Expression
	for p.pkStartsCallArg() {
		p.nextToken()
		arg := p.parseCallArgAtom()
		if p.failed() {
			return nil
		}
		args = append(args, arg)
	}
	call := &ast.CallExpr{Callee: ident, Args: args}
	call.Tok = tok
	return call
}

func (p *Parser) pkStartsCallArg() bool {
	switch p.pk.Type {
	case token.IDENT:
		// "and" separates the bindings of a let/let rec group.
		return p.pk.Lexeme != "and"
	case token.INT, token.FLOAT, token.CHAR, token.STRING, token.TRUE, token.FALSE, token.LPAREN:
		return true
	default:
		return false
	}
}

// parseCallArgAtom parses one application argument or array index: an
// atomic expression, not a further application (those must be parenthesized,
// as in the rest of the ML family).
func (p *Parser) parseCallArgAtom() ast.Expression {
	switch p.cur.Type {
	case token.IDENT:
		tok := p.cur
		id := &ast.Identifier{Name: p.cur.Lexeme}
		id.Tok = tok
		if p.pkIs(token.LBRACKET) {
			return p.parseIndexExpr(id, tok)
		}
		return id
	case token.INT:
		return p.parseIntLiteral()
	case token.FLOAT:
		return p.parseFloatLiteral()
	case token.CHAR:
		return p.parseCharLiteral()
	case token.STRING:
		return p.parseStringLiteral()
	case token.TRUE, token.FALSE:
		return p.parseBoolLiteral()
	case token.LPAREN:
		return p.parseGroupedOrUnit()
	default:
		p.errorf("expected an argument, got %q", p.cur.Lexeme)
		return nil
	}
}

// parseIndexExpr parses "[e1,...,ek]" with cur on the identifier/atom that
// precedes the '[' and pk on the '['.
func (p *Parser) parseIndexExpr(arr ast.Expression, tok token.Token) ast.Expression {
	p.nextToken() // '['
	p.nextToken() // first index expression
	var indices []ast.Expression
	for {
		idx := p.parseExpression(LOWEST)
		if p.failed() {
			return nil
		}
		indices = append(indices, idx)
		if p.pkIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}
	if !p.expect(token.RBRACKET) {
		return nil
	}
	ie := &ast.IndexExpr{Array: arr, Indices: indices}
	ie.Tok = tok
	return ie
}

func (p *Parser) parseGroupedOrUnit() ast.Expression {
	tok := p.cur
	if p.pkIs(token.RPAREN) {
		p.nextToken()
		u := &ast.UnitLiteral{}
		u.Tok = tok
		return u
	}
	p.nextToken()
	inner := p.parseExpression(LOWEST)
	if p.failed() {
		return nil
	}
	if !p.expect(token.RPAREN) {
		return nil
	}
	return inner
}

func (p *Parser) parseUnaryExpr() ast.Expression {
	tok := p.cur
	op := p.cur.Type
	p.nextToken()
	operand := p.parseExpression(UNARY)
	if p.failed() {
		return nil
	}
	u := &ast.UnaryExpr{Op: op, Operand: operand}
	u.Tok = tok
	return u
}

func (p *Parser) parseIfExpr() ast.Expression {
	tok := p.cur
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if p.failed() {
		return nil
	}
	if !p.expect(token.THEN) {
		return nil
	}
	p.nextToken()
	thenBranch := p.parseExpression(LOWEST)
	if p.failed() {
		return nil
	}
	ifExpr := &ast.IfExpr{Cond: cond, Then: thenBranch}
	ifExpr.Tok = tok
	if p.pkIs(token.ELSE) {
		p.nextToken()
		p.nextToken()
		elseBranch := p.parseExpression(LOWEST)
		if p.failed() {
			return nil
		}
		ifExpr.Else = elseBranch
	}
	return ifExpr
}

func (p *Parser) parseWhileExpr() ast.Expression {
	tok := p.cur
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if p.failed() {
		return nil
	}
	if !p.expect(token.DO) {
		return nil
	}
	p.nextToken()
	body := p.parseExpression(LOWEST)
	if p.failed() {
		return nil
	}
	if !p.expect(token.DONE) {
		return nil
	}
	w := &ast.WhileExpr{Cond: cond, Body: body}
	w.Tok = tok
	return w
}

func (p *Parser) parseForExpr() ast.Expression {
	tok := p.cur
	p.nextToken()
	if !p.curIs(token.IDENT) {
		p.errorf("expected loop variable name, got %q", p.cur.Lexeme)
		return nil
	}
	varName := p.cur.Lexeme
	if !p.expect(token.EQ) {
		return nil
	}
	p.nextToken()
	start := p.parseExpression(LOWEST)
	if p.failed() {
		return nil
	}
	down := false
	switch {
	case p.pkIs(token.TO):
		p.nextToken()
	case p.pkIs(token.DOWNTO):
		p.nextToken()
		down = true
	default:
		p.errorf("expected 'to' or 'downto', got %q", p.pk.Lexeme)
		return nil
	}
	p.nextToken()
	finish := p.parseExpression(LOWEST)
	if p.failed() {
		return nil
	}
	if !p.expect(token.DO) {
		return nil
	}
	p.nextToken()
	body := p.parseExpression(LOWEST)
	if p.failed() {
		return nil
	}
	if !p.expect(token.DONE) {
		return nil
	}
	f := &ast.ForExpr{Var: varName, Start: start, Down: down, Finish: finish, Body: body}
	f.Tok = tok
	return f
}

func (p *Parser) parseNewExpr() ast.Expression {
	tok := p.cur
	p.nextToken()
	if p.curIs(token.ARRAY) {
		return p.parseNewArrayExpr(tok)
	}
	typeAST := p.parseTypeExpr()
	if p.failed() {
		return nil
	}
	n := &ast.NewExpr{TypeAST: typeAST}
	n.Tok = tok
	return n
}

func (p *Parser) parseNewArrayExpr(tok token.Token) ast.Expression {
	if !p.expect(token.LBRACKET) {
		return nil
	}
	p.nextToken()
	var sizes []ast.Expression
	for {
		size := p.parseExpression(LOWEST)
		if p.failed() {
			return nil
		}
		sizes = append(sizes, size)
		if p.pkIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}
	if !p.expect(token.RBRACKET) {
		return nil
	}
	if !p.expect(token.OF) {
		return nil
	}
	p.nextToken()
	elem := p.parseTypeExpr()
	if p.failed() {
		return nil
	}
	na := &ast.NewArrayExpr{Sizes: sizes, Elem: elem}
	na.Tok = tok
	return na
}

// parseDimExpr parses "dim a" (index defaults to 1 at lowering) or
// "dim i a" (explicit 1-based dimension index).
func (p *Parser) parseDimExpr() ast.Expression {
	tok := p.cur
	p.nextToken()
	index := 0
	if p.curIs(token.INT) {
		v, err := lexer.ParseIntLiteral(p.cur.Lexeme)
		if err != nil {
			p.errorf("invalid dim index %q", p.cur.Lexeme)
			return nil
		}
		index = int(v)
		p.nextToken()
	}
	arr := p.parseCallArgAtom()
	if p.failed() {
		return nil
	}
	d := &ast.DimExpr{Index: index, Array: arr}
	d.Tok = tok
	return d
}

// parseLetInExpr parses "let ... in e" / "let rec ... in e" in expression
// position, reusing the top-level binding grammar.
func (p *Parser) parseLetInExpr() ast.Expression {
	tok := p.cur
	def := p.parseLetDefinition()
	if p.failed() || def == nil {
		return nil
	}
	if !p.expect(token.IN) {
		return nil
	}
	p.nextToken()
	body := p.parseExpression(LOWEST)
	if p.failed() {
		return nil
	}
	le := &ast.LetInExpr{Def: def, Body: body}
	le.Tok = tok
	return le
}

func (p *Parser) parseMatchExpr() ast.Expression {
	tok := p.cur
	p.nextToken()
	subject := p.parseExpression(LOWEST)
	if p.failed() {
		return nil
	}
	if !p.expect(token.WITH) {
		return nil
	}
	if p.pkIs(token.PIPE) {
		p.nextToken()
	}
	p.nextToken()

	var clauses []*ast.MatchClause
	for {
		clause := p.parseMatchClause()
		if p.failed() {
			return nil
		}
		clauses = append(clauses, clause)
		if p.pkIs(token.PIPE) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}
	m := &ast.MatchExpr{Subject: subject, Clauses: clauses}
	m.Tok = tok
	return m
}

func (p *Parser) parseMatchClause() *ast.MatchClause {
	tok := p.cur
	pat := p.parsePattern()
	if p.failed() || pat == nil {
		return nil
	}
	if !p.expect(token.ARROW) {
		return nil
	}
	p.nextToken()
	body := p.parseExpression(LOWEST)
	if p.failed() {
		return nil
	}
	return &ast.MatchClause{Tok: tok, Pattern: pat, Body: body}
}
