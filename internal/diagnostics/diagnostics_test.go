package diagnostics

import (
	"testing"

	"github.com/ZOrfeas/llamac/internal/token"
)

func TestErrorRendersStdinLocation(t *testing.T) {
	err := NewErrorAt(ErrTypeMismatch, 7, 3, "expected int, got bool")
	want := "stdin:7: error: expected int, got bool"
	if got := err.Error(); got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestNewErrorUsesTokenPosition(t *testing.T) {
	tok := token.Token{Type: token.IDENT, Lexeme: "x", Line: 4, Column: 12}
	err := NewError(ErrUnknownIdent, tok, "unbound identifier x")
	if err.Line != 4 || err.Column != 12 {
		t.Fatalf("expected line/column from token, got %d/%d", err.Line, err.Column)
	}
}
