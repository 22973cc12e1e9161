package lexer

import (
	"testing"

	"github.com/ZOrfeas/llamac/internal/token"
)

func TestNextTokenCoversOperatorsAndKeywords(t *testing.T) {
	input := `let rec f x = if x <= 1 then 1 else x * f (x - 1)`
	want := []token.Type{
		token.LET, token.REC, token.IDENT, token.IDENT, token.EQ,
		token.IF, token.IDENT, token.LE, token.INT, token.THEN, token.INT,
		token.ELSE, token.IDENT, token.STAR, token.IDENT, token.LPAREN,
		token.IDENT, token.MINUS, token.INT, token.RPAREN, token.EOF,
	}
	l := New(input)
	for i, wantType := range want {
		tok := l.NextToken()
		if tok.Type != wantType {
			t.Fatalf("token %d: got %v, want %v (lexeme %q)", i, tok.Type, wantType, tok.Lexeme)
		}
	}
}

func TestNextTokenNumbers(t *testing.T) {
	cases := []struct {
		input string
		typ   token.Type
	}{
		{"42", token.INT},
		{"3.14", token.FLOAT},
		{"1e10", token.FLOAT},
		{"1.5e-3", token.FLOAT},
	}
	for _, c := range cases {
		l := New(c.input)
		tok := l.NextToken()
		if tok.Type != c.typ || tok.Lexeme != c.input {
			t.Errorf("input %q: got {%v %q}, want {%v %q}", c.input, tok.Type, tok.Lexeme, c.typ, c.input)
		}
	}
}

func TestNextTokenStringAndCharLiterals(t *testing.T) {
	l := New(`"hello\nworld" 'a' '\n'`)

	str := l.NextToken()
	if str.Type != token.STRING || str.Lexeme != "hello\nworld" {
		t.Fatalf("unexpected string token: %+v", str)
	}
	ch := l.NextToken()
	if ch.Type != token.CHAR || ch.Lexeme != "a" {
		t.Fatalf("unexpected char token: %+v", ch)
	}
	nl := l.NextToken()
	if nl.Type != token.CHAR || nl.Lexeme != "\n" {
		t.Fatalf("unexpected escaped char token: %+v", nl)
	}
}

func TestNextTokenSkipsNestedBlockComments(t *testing.T) {
	l := New("(* outer (* inner *) still outer *) let")
	tok := l.NextToken()
	if tok.Type != token.LET {
		t.Fatalf("expected comment to be skipped entirely, got %+v", tok)
	}
}

func TestNextTokenTracksLineNumbers(t *testing.T) {
	l := New("let\nx\n=\n1")
	lines := []int{1, 2, 3, 4}
	for _, want := range lines {
		tok := l.NextToken()
		if tok.Line != want {
			t.Fatalf("token %+v: expected line %d", tok, want)
		}
	}
}

func TestNextTokenRefAssignAndArrow(t *testing.T) {
	l := New("a := 1; f -> g <> h")
	want := []token.Type{
		token.IDENT, token.ASSIGN, token.INT, token.SEMI,
		token.IDENT, token.ARROW, token.IDENT, token.NEQ, token.IDENT, token.EOF,
	}
	for i, wantType := range want {
		tok := l.NextToken()
		if tok.Type != wantType {
			t.Fatalf("token %d: got %v, want %v", i, tok.Type, wantType)
		}
	}
}
