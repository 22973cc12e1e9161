// Package diagnostics defines the single error type every compiler stage
// reports through, and its source-line-tagged rendering.
package diagnostics

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/ZOrfeas/llamac/internal/token"
)

// ErrorCode identifies the kind of diagnostic, stable across releases so
// tooling (and the golden fixture store) can match on it instead of on
// message text.
type ErrorCode string

const (
	ErrParse              ErrorCode = "E-PARSE"
	ErrDupType            ErrorCode = "E-DUPTYPE"
	ErrDupCtor            ErrorCode = "E-DUPCTOR"
	ErrUnknownIdent       ErrorCode = "E-UNKIDENT"
	ErrUnknownType        ErrorCode = "E-UNKTYPE"
	ErrUnknownCtor        ErrorCode = "E-UNKCTOR"
	ErrArity              ErrorCode = "E-ARITY"
	ErrTypeMismatch       ErrorCode = "E-TYPEMISMATCH"
	ErrOccurs             ErrorCode = "E-OCCURS"
	ErrUnresolved         ErrorCode = "E-UNRESOLVED"
	ErrArrayOfArray       ErrorCode = "E-ARRAYOFARRAY"
	ErrPartialApp         ErrorCode = "E-PARTIALAPP"
	ErrNotAnLValue        ErrorCode = "E-NOTLVALUE"
	ErrIRVerify           ErrorCode = "E-IRVERIFY"
	ErrNestedClosure      ErrorCode = "E-NESTEDCLOSURE"
	ErrStructEqArray      ErrorCode = "E-STRUCTEQARRAY"
	ErrNonExhaustive      ErrorCode = "E-NONEXHAUSTIVE"
	ErrRefusedArray       ErrorCode = "E-REFUSEDARRAY"
	ErrRefusedFunc        ErrorCode = "E-REFUSEDFUNC"
	ErrRefusedNumericOnly ErrorCode = "E-NUMERICONLY"
)

// DiagnosticError is the one error type every pass (lexer, parser,
// analyzer, inferencer, lowerer) reports through.
type DiagnosticError struct {
	Code    ErrorCode
	Line    int
	Column  int
	Message string
}

func NewError(code ErrorCode, tok token.Token, message string) *DiagnosticError {
	return &DiagnosticError{Code: code, Line: tok.Line, Column: tok.Column, Message: message}
}

func NewErrorAt(code ErrorCode, line, column int, message string) *DiagnosticError {
	return &DiagnosticError{Code: code, Line: line, Column: column, Message: message}
}

// SourceName is printed in place of a file path: the driver always reads
// the program from standard input (§6), so there is no real file to name.
const SourceName = "stdin"

// Error renders "stdin:line: error: message", matching the original
// compiler's diagnostic shape (`sem/infer.cpp`'s error callbacks) rather
// than inventing a caret-pointer format. Column is kept on the struct for
// callers that want finer-grained position (e.g. -idtypes), but is not
// part of the rendered message.
func (e *DiagnosticError) Error() string {
	return fmt.Sprintf("%s:%d: error: %s", SourceName, e.Line, e.Message)
}

// colorEnabled mirrors the teacher's TTY-gated coloring: only colorize when
// stderr is an actual terminal, never when piped into a file or CI log.
var colorEnabled = isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())

const (
	ansiRed   = "\x1b[31m"
	ansiBold  = "\x1b[1m"
	ansiReset = "\x1b[0m"
)

// Print writes err to stderr, bolding the location and reddening "error"
// when stderr is a terminal.
func Print(err *DiagnosticError) {
	if colorEnabled {
		fmt.Fprintf(os.Stderr, "%s%s:%d:%s %serror:%s %s\n",
			ansiBold, SourceName, err.Line, ansiReset,
			ansiRed, ansiReset, err.Message)
		return
	}
	fmt.Fprintln(os.Stderr, err.Error())
}
