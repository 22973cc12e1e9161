// Package parser is a recursive-descent/Pratt parser that turns an
// internal/lexer token stream into an internal/ast tree (§3.3's "ready
// AST"). It is an external-boundary component per spec §1 (lexing and
// parsing are named as out-of-scope collaborators) included here only so
// the repository is runnable end to end.
package parser

import (
	"fmt"

	"github.com/ZOrfeas/llamac/internal/ast"
	"github.com/ZOrfeas/llamac/internal/diagnostics"
	"github.com/ZOrfeas/llamac/internal/lexer"
	"github.com/ZOrfeas/llamac/internal/token"
)

// Precedence levels, lowest to highest.
const (
	_ int = iota
	LOWEST
	SEQ     // ;
	ASSIGN  // :=
	OR      // ||
	AND     // &&
	COMPARE // = <> == != < > <= >=
	ADD     // + - +. -.
	MUL     // * / mod *. /.
	POW     // **
	UNARY   // not, unary -, !, delete
	CALL    // f x, a[i], dim a
)

var precedences = map[token.Type]int{
	token.SEMI:   SEQ,
	token.ASSIGN: ASSIGN,
	token.OR:     OR,
	token.AND:    AND,
	token.EQ:     COMPARE, token.NEQ: COMPARE, token.EQEQ: COMPARE, token.NEQEQ: COMPARE,
	token.LT: COMPARE, token.GT: COMPARE, token.LE: COMPARE, token.GE: COMPARE,
	token.PLUS: ADD, token.MINUS: ADD, token.PLUSF: ADD, token.MINUSF: ADD,
	token.STAR: MUL, token.SLASH: MUL, token.MOD: MUL, token.STARF: MUL, token.SLASHF: MUL,
	token.POW:     POW,
	token.LPAREN:  CALL,
	token.LBRACKET: CALL,
}

// Parser holds lexer state for one compilation unit. Errors accumulate but
// parsing stops at the first one — there is no error recovery (§7: "no
// error is recovered locally").
type Parser struct {
	l   *lexer.Lexer
	cur token.Token
	pk  token.Token
	err *diagnostics.DiagnosticError
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.cur = p.pk
	p.pk = p.l.NextToken()
}

func (p *Parser) curIs(t token.Type) bool { return p.cur.Type == t }
func (p *Parser) pkIs(t token.Type) bool  { return p.pk.Type == t }

func (p *Parser) expect(t token.Type) bool {
	if p.pkIs(t) {
		p.nextToken()
		return true
	}
	p.errorf("expected next token to be %v, got %v (%q) instead", t, p.pk.Type, p.pk.Lexeme)
	return false
}

func (p *Parser) errorf(format string, args ...any) {
	if p.err != nil {
		return // first error wins, no batching (§7)
	}
	p.err = diagnostics.NewError(diagnostics.ErrParse, p.cur, fmt.Sprintf(format, args...))
}

func (p *Parser) failed() bool { return p.err != nil }

// ParseProgram parses a whole compilation unit: a sequence of top-level
// definitions.
func (p *Parser) ParseProgram() (*ast.Program, *diagnostics.DiagnosticError) {
	prog := &ast.Program{}
	for !p.curIs(token.EOF) && !p.failed() {
		def := p.parseDefinition()
		if p.failed() {
			return nil, p.err
		}
		prog.Definitions = append(prog.Definitions, def)
		p.nextToken()
	}
	if p.failed() {
		return nil, p.err
	}
	return prog, nil
}
