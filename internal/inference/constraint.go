// Package inference implements the constraint solver described in spec
// §4.3: a work-list of TG-equality constraints, solved to a fixed-point
// substitution map from Unknown id to resolved TG.
package inference

import (
	"github.com/ZOrfeas/llamac/internal/diagnostics"
	"github.com/ZOrfeas/llamac/internal/typegraph"
)

// ErrThunk reports the failure of the constraint it is attached to. It
// returns the diagnostic rather than printing-and-exiting directly (the
// driver owns printing and process exit); this keeps the solver callable
// from tests without tearing down the process.
type ErrThunk func() *diagnostics.DiagnosticError

// Constraint is "lhs == rhs at line, with err on failure" (§3.4). solveAll
// never mutates Line; Lhs/Rhs may be rewritten in place by path compression.
type Constraint struct {
	Lhs  *typegraph.Node
	Rhs  *typegraph.Node
	Line int
	Err  ErrThunk
}
