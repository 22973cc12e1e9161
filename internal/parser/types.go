package parser

import (
	"github.com/ZOrfeas/llamac/internal/ast"
	"github.com/ZOrfeas/llamac/internal/token"
)

// parseTypeExpr ::= FuncType
// FuncType ::= RefType ("->" FuncType)?
// cur is positioned on the first token of the type when called.
func (p *Parser) parseTypeExpr() ast.TypeExpr {
	startTok := p.cur
	first := p.parseRefTypeExpr()
	if p.failed() {
		return nil
	}
	if !p.pkIs(token.ARROW) {
		return first
	}
	params := []ast.TypeExpr{first}
	var result ast.TypeExpr
	for p.pkIs(token.ARROW) {
		p.nextToken() // ->
		p.nextToken() // first token of next type
		next := p.parseRefTypeExpr()
		if p.failed() {
			return nil
		}
		if p.pkIs(token.ARROW) {
			params = append(params, next)
			continue
		}
		result = next
		break
	}
	fn := &ast.FuncTypeExpr{Params: params, Result: result}
	fn.Tok = startTok
	return fn
}

// RefType ::= AtomicType ("ref")*
func (p *Parser) parseRefTypeExpr() ast.TypeExpr {
	startTok := p.cur
	t := p.parseAtomicTypeExpr()
	if p.failed() {
		return nil
	}
	for p.pkIs(token.REF) {
		p.nextToken()
		ref := &ast.RefTypeExpr{Inner: t}
		ref.Tok = startTok
		t = ref
	}
	return t
}

// AtomicType ::= IDENT | "array" "[" "*" ("," "*")* "]" "of" TypeExpr | "(" TypeExpr ")"
func (p *Parser) parseAtomicTypeExpr() ast.TypeExpr {
	switch p.cur.Type {
	case token.IDENT:
		n := &ast.NamedTypeExpr{Name: p.cur.Lexeme}
		n.Tok = p.cur
		return n
	case token.LPAREN:
		p.nextToken()
		inner := p.parseTypeExpr()
		if p.failed() {
			return nil
		}
		if !p.expect(token.RPAREN) {
			return nil
		}
		return inner
	case token.ARRAY:
		return p.parseArrayTypeExpr()
	default:
		p.errorf("expected a type, got %q", p.cur.Lexeme)
		return nil
	}
}

// array "[" "*" ("," "*")* "]" "of" TypeExpr
func (p *Parser) parseArrayTypeExpr() ast.TypeExpr {
	startTok := p.cur
	if !p.expect(token.LBRACKET) {
		return nil
	}
	dims := 0
	for {
		p.nextToken()
		if p.cur.Type != token.STAR {
			p.errorf("expected '*' in array type dimension list, got %q", p.cur.Lexeme)
			return nil
		}
		dims++
		if p.pkIs(token.COMMA) {
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
	arr := &ast.ArrayTypeExpr{Dims: dims, Inner: elem}
	arr.Tok = startTok
	return arr
}
