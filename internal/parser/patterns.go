package parser

import (
	"github.com/ZOrfeas/llamac/internal/ast"
	"github.com/ZOrfeas/llamac/internal/token"
)

// parsePattern ::= Literal | "_" | IDENT | ConstructorPattern
// Constructor names are capitalized by convention; a lowercase identifier is
// always a binding (IdPattern), matching the rest of the ML family. A
// constructor's fields are written either juxtaposed ("Pair a b") or
// parenthesized ("Pair(a, b)").
func (p *Parser) parsePattern() ast.Pattern {
	switch p.cur.Type {
	case token.INT, token.FLOAT, token.CHAR, token.TRUE, token.FALSE, token.MINUS, token.MINUSF:
		return p.parseLiteralPattern()
	case token.IDENT:
		if p.cur.Lexeme == "_" {
			w := &ast.WildcardPattern{}
			w.Tok = p.cur
			return w
		}
		if isUpperIdent(p.cur.Lexeme) {
			return p.parseConstructorPattern()
		}
		id := &ast.IdPattern{Name: p.cur.Lexeme}
		id.Tok = p.cur
		return id
	default:
		p.errorf("expected a pattern, got %q", p.cur.Lexeme)
		return nil
	}
}

func (p *Parser) parseLiteralPattern() ast.Pattern {
	tok := p.cur
	var value ast.Expression
	switch p.cur.Type {
	case token.MINUS, token.MINUSF:
		op := p.cur.Type
		p.nextToken()
		var inner ast.Expression
		switch p.cur.Type {
		case token.INT:
			inner = p.parseIntLiteral()
		case token.FLOAT:
			inner = p.parseFloatLiteral()
		default:
			p.errorf("expected a numeric literal after unary %q in pattern, got %q", tok.Lexeme, p.cur.Lexeme)
			return nil
		}
		u := &ast.UnaryExpr{Op: op, Operand: inner}
		u.Tok = tok
		value = u
	case token.INT:
		value = p.parseIntLiteral()
	case token.FLOAT:
		value = p.parseFloatLiteral()
	case token.CHAR:
		value = p.parseCharLiteral()
	case token.TRUE, token.FALSE:
		value = p.parseBoolLiteral()
	}
	lp := &ast.LiteralPattern{Value: value}
	lp.Tok = tok
	return lp
}

// parseConstructorPattern is the top of a match-clause pattern: its fields
// may be juxtaposed ("Pair a b") or parenthesized ("Pair(a, b)").
func (p *Parser) parseConstructorPattern() ast.Pattern {
	tok := p.cur
	cp := &ast.ConstructorPattern{Name: p.cur.Lexeme}
	cp.Tok = tok
	if p.pkIs(token.LPAREN) {
		p.nextToken() // (
		p.nextToken() // first sub-pattern
		for {
			sub := p.parsePattern()
			if p.failed() || sub == nil {
				return nil
			}
			cp.SubPats = append(cp.SubPats, sub)
			if p.pkIs(token.COMMA) {
				p.nextToken()
				p.nextToken()
				continue
			}
			break
		}
		if !p.expect(token.RPAREN) {
			return nil
		}
		return cp
	}
	for p.pkStartsPatternAtom() {
		p.nextToken()
		sub := p.parsePatternAtom()
		if p.failed() || sub == nil {
			return nil
		}
		cp.SubPats = append(cp.SubPats, sub)
	}
	return cp
}

func (p *Parser) pkStartsPatternAtom() bool {
	switch p.pk.Type {
	case token.IDENT, token.INT, token.FLOAT, token.CHAR, token.TRUE, token.FALSE, token.LPAREN, token.MINUS, token.MINUSF:
		return true
	default:
		return false
	}
}

// parsePatternAtom parses one field of a juxtaposed constructor pattern: a
// nested constructor used here may only be bare or parenthesized, never
// itself juxtaposed, mirroring parseCallArgAtom for expressions.
func (p *Parser) parsePatternAtom() ast.Pattern {
	switch p.cur.Type {
	case token.INT, token.FLOAT, token.CHAR, token.TRUE, token.FALSE, token.MINUS, token.MINUSF:
		return p.parseLiteralPattern()
	case token.IDENT:
		if p.cur.Lexeme == "_" {
			w := &ast.WildcardPattern{}
			w.Tok = p.cur
			return w
		}
		if isUpperIdent(p.cur.Lexeme) {
			tok := p.cur
			cp := &ast.ConstructorPattern{Name: p.cur.Lexeme}
			cp.Tok = tok
			if p.pkIs(token.LPAREN) {
				p.nextToken()
				p.nextToken()
				for {
					sub := p.parsePattern()
					if p.failed() || sub == nil {
						return nil
					}
					cp.SubPats = append(cp.SubPats, sub)
					if p.pkIs(token.COMMA) {
						p.nextToken()
						p.nextToken()
						continue
					}
					break
				}
				if !p.expect(token.RPAREN) {
					return nil
				}
			}
			return cp
		}
		id := &ast.IdPattern{Name: p.cur.Lexeme}
		id.Tok = p.cur
		return id
	case token.LPAREN:
		p.nextToken()
		inner := p.parsePattern()
		if p.failed() || inner == nil {
			return nil
		}
		if !p.expect(token.RPAREN) {
			return nil
		}
		return inner
	default:
		p.errorf("expected a pattern, got %q", p.cur.Lexeme)
		return nil
	}
}

func isUpperIdent(name string) bool {
	return len(name) > 0 && name[0] >= 'A' && name[0] <= 'Z'
}
