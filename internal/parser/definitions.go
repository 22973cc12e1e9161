package parser

import (
	"github.com/ZOrfeas/llamac/internal/ast"
	"github.com/ZOrfeas/llamac/internal/token"
)

// parseDefinition ::= LetDefinition | TypeDefinition
func (p *Parser) parseDefinition() ast.Definition {
	switch p.cur.Type {
	case token.LET:
		return p.parseLetDefinition()
	case token.TYPE:
		return p.parseTypeDefinition()
	default:
		p.errorf("expected 'let' or 'type' at top level, got %q", p.cur.Lexeme)
		return nil
	}
}

// LetDefinition ::= "let" ["rec"] Binding ("and" Binding)*
func (p *Parser) parseLetDefinition() ast.Definition {
	tok := p.cur
	isRec := false
	if p.pkIs(token.REC) {
		p.nextToken()
		isRec = true
	}

	var bindings []*ast.Binding
	for {
		p.nextToken() // move onto the binding name
		b := p.parseBinding()
		if p.failed() {
			return nil
		}
		bindings = append(bindings, b)
		// "and" is not its own keyword token — it is the identifier
		// lexeme "and", checked directly.
		if p.pk.Type == token.IDENT && p.pk.Lexeme == "and" {
			p.nextToken() // consume "and"
			continue
		}
		break
	}

	if isRec {
		return &ast.LetRecDefinition{Tok: tok, Bindings: bindings}
	}
	return &ast.LetDefinition{Tok: tok, Bindings: bindings}
}

// Binding ::= IDENT Parameter* [":" TypeExpr] "=" Expression
func (p *Parser) parseBinding() *ast.Binding {
	if !p.curIs(token.IDENT) {
		p.errorf("expected binding name, got %q", p.cur.Lexeme)
		return nil
	}
	b := &ast.Binding{Tok: p.cur, Name: p.cur.Lexeme}

	for p.pkIs(token.LPAREN) || (p.pk.Type == token.IDENT) {
		p.nextToken()
		param := p.parseParameter()
		if p.failed() {
			return nil
		}
		b.Params = append(b.Params, param)
	}

	if p.pkIs(token.COLON) {
		p.nextToken()
		p.nextToken()
		b.ReturnType = p.parseTypeExpr()
		if p.failed() {
			return nil
		}
	}

	if !p.expect(token.EQ) {
		return nil
	}
	p.nextToken()
	b.Body = p.parseExpression(SEQ)
	return b
}

// Parameter ::= IDENT | "(" IDENT ":" TypeExpr ")"
func (p *Parser) parseParameter() *ast.Parameter {
	if p.curIs(token.LPAREN) {
		tok := p.cur
		p.nextToken()
		if !p.curIs(token.IDENT) {
			p.errorf("expected parameter name, got %q", p.cur.Lexeme)
			return nil
		}
		param := &ast.Parameter{Tok: tok, Name: p.cur.Lexeme}
		if !p.expect(token.COLON) {
			return nil
		}
		p.nextToken()
		param.TypeAST = p.parseTypeExpr()
		if p.failed() {
			return nil
		}
		if !p.expect(token.RPAREN) {
			return nil
		}
		return param
	}
	if !p.curIs(token.IDENT) {
		p.errorf("expected parameter name, got %q", p.cur.Lexeme)
		return nil
	}
	return &ast.Parameter{Tok: p.cur, Name: p.cur.Lexeme}
}

// TypeDefinition ::= "type" TypeDecl ("and" TypeDecl)*
func (p *Parser) parseTypeDefinition() ast.Definition {
	tok := p.cur
	var decls []*ast.TypeDecl
	for {
		p.nextToken()
		decl := p.parseTypeDecl()
		if p.failed() {
			return nil
		}
		decls = append(decls, decl)
		if p.pk.Type == token.IDENT && p.pk.Lexeme == "and" {
			p.nextToken()
			continue
		}
		break
	}
	return &ast.TypeDefinition{Tok: tok, Types: decls}
}

// TypeDecl ::= IDENT "=" ConstructorDecl ("|" ConstructorDecl)*
func (p *Parser) parseTypeDecl() *ast.TypeDecl {
	if !p.curIs(token.IDENT) {
		p.errorf("expected type name, got %q", p.cur.Lexeme)
		return nil
	}
	decl := &ast.TypeDecl{Tok: p.cur, Name: p.cur.Lexeme}
	if !p.expect(token.EQ) {
		return nil
	}
	for {
		p.nextToken()
		ctor := p.parseConstructorDecl()
		if p.failed() {
			return nil
		}
		decl.Constructors = append(decl.Constructors, ctor)
		if !p.pkIs(token.PIPE) {
			break
		}
		p.nextToken() // consume |
	}
	return decl
}

// ConstructorDecl ::= IDENT ("of" AtomicType+)?
func (p *Parser) parseConstructorDecl() *ast.ConstructorDecl {
	if !p.curIs(token.IDENT) {
		p.errorf("expected constructor name, got %q", p.cur.Lexeme)
		return nil
	}
	ctor := &ast.ConstructorDecl{Tok: p.cur, Name: p.cur.Lexeme}
	if p.pkIs(token.OF) {
		p.nextToken() // cur now "of"
		for p.pkIsStartOfAtomicType() {
			p.nextToken()
			ctor.Fields = append(ctor.Fields, p.parseAtomicTypeExpr())
			if p.failed() {
				return nil
			}
		}
	}
	return ctor
}

func (p *Parser) pkIsStartOfAtomicType() bool {
	switch p.pk.Type {
	case token.IDENT:
		// "and" separates the TypeDecls of one type definition.
		return p.pk.Lexeme != "and"
	case token.LPAREN, token.ARRAY:
		return true
	default:
		return false
	}
}
