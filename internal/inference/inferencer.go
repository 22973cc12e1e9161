package inference

import (
	"fmt"

	"github.com/ZOrfeas/llamac/internal/diagnostics"
	"github.com/ZOrfeas/llamac/internal/typegraph"
)

// Inferencer owns the unknown-id counter, the substitution store, and the
// constraint work-list for one compilation (§4.3, §5: process-wide state
// scoped to a single run, not a package-level global).
type Inferencer struct {
	nextID        int
	substitutions map[int]*typegraph.Node
	worklist      []*Constraint
}

func New() *Inferencer {
	return &Inferencer{substitutions: make(map[int]*typegraph.Node)}
}

// FreshUnknown allocates a new Unknown node with a fresh, monotonically
// increasing id and registers it in the substitution store as unbound.
func (inf *Inferencer) FreshUnknown() *typegraph.Node {
	id := inf.nextID
	inf.nextID++
	u := typegraph.NewUnknown(id)
	inf.substitutions[id] = nil
	return u
}

// TryApply chases t -> t' -> ... -> t* where t* is either a non-Unknown or
// an unbound Unknown, then rewrites every intermediate Unknown directly to
// t* (path compression). Implements typegraph.Resolver so
// typegraph.DeepSubstitute can use it without typegraph depending back on
// this package.
func (inf *Inferencer) TryApply(t *typegraph.Node) *typegraph.Node {
	if t == nil || t.Kind != typegraph.Unknown {
		return t
	}
	var chain []*typegraph.Node
	cur := t
	for cur.Kind == typegraph.Unknown {
		bound, ok := inf.substitutions[cur.ID]
		if !ok || bound == nil {
			break
		}
		chain = append(chain, cur)
		cur = bound
	}
	// cur is now either non-Unknown, or an Unknown with no substitution yet.
	for _, link := range chain {
		inf.substitutions[link.ID] = cur
	}
	return cur
}

// AddConstraint applies TryApply to both sides, then enqueues the result
// (§4.3's addConstraint).
func (inf *Inferencer) AddConstraint(l, r *typegraph.Node, line int, err ErrThunk) {
	inf.worklist = append(inf.worklist, &Constraint{
		Lhs:  inf.TryApply(l),
		Rhs:  inf.TryApply(r),
		Line: line,
		Err:  err,
	})
}

// SolveAll drains the work-list earliest-first, then checks every Unknown
// got resolved when strict is true.
func (inf *Inferencer) SolveAll(strict bool) *diagnostics.DiagnosticError {
	for len(inf.worklist) > 0 {
		c := inf.worklist[0]
		inf.worklist = inf.worklist[1:]
		if err := inf.solveOne(c); err != nil {
			return err
		}
	}
	return inf.checkAllSubstituted(strict)
}

func (inf *Inferencer) checkAllSubstituted(strict bool) *diagnostics.DiagnosticError {
	if !strict {
		return nil
	}
	for id, bound := range inf.substitutions {
		if bound == nil {
			return diagnostics.NewErrorAt(diagnostics.ErrUnresolved, 0, 0,
				fmt.Sprintf("unresolved type variable '_t%d", id))
		}
	}
	return nil
}

// solveOne implements the five-case dispatch of §4.3.
func (inf *Inferencer) solveOne(c *Constraint) *diagnostics.DiagnosticError {
	L := inf.TryApply(c.Lhs)
	R := inf.TryApply(c.Rhs)

	if typegraph.Equals(L, R) {
		return nil
	}
	if L.Kind == typegraph.Unknown {
		return inf.trySubstitute(L, R, c.Line, c.Err)
	}
	if R.Kind == typegraph.Unknown {
		return inf.trySubstitute(R, L, c.Line, c.Err)
	}
	if L.Kind == typegraph.Function && R.Kind == typegraph.Function {
		if len(L.Params) != len(R.Params) {
			return c.Err()
		}
		for i := range L.Params {
			inf.AddConstraint(L.Params[i], R.Params[i], c.Line, c.Err)
		}
		inf.AddConstraint(L.Result, R.Result, c.Line, c.Err)
		return nil
	}
	if L.Kind == typegraph.Ref && R.Kind == typegraph.Ref {
		inf.AddConstraint(L.Inner, R.Inner, c.Line, c.Err)
		return nil
	}
	if L.Kind == typegraph.Array && R.Kind == typegraph.Array {
		return inf.solveArrayPair(L, R, c)
	}
	return c.Err()
}

// solveArrayPair implements the array-compatibility table of §4.3.
func (inf *Inferencer) solveArrayPair(L, R *typegraph.Node, c *Constraint) *diagnostics.DiagnosticError {
	lKnown := L.Dims != typegraph.UnknownDims
	rKnown := R.Dims != typegraph.UnknownDims

	switch {
	case lKnown && rKnown:
		if L.Dims != R.Dims {
			return c.Err()
		}
	case !lKnown && !rKnown:
		merged := L.LowerBound.Value
		if R.LowerBound.Value > merged {
			merged = R.LowerBound.Value
		}
		cell := &typegraph.LowerBoundCell{Value: merged}
		L.LowerBound = cell
		R.LowerBound = cell
	case lKnown && !rKnown:
		if L.Dims < R.LowerBound.Value {
			return c.Err()
		}
		R.LowerBound.Value = L.Dims
		R.Dims = L.Dims
	case !lKnown && rKnown:
		if R.Dims < L.LowerBound.Value {
			return c.Err()
		}
		L.LowerBound.Value = R.Dims
		L.Dims = R.Dims
	}

	inf.AddConstraint(L.Inner, R.Inner, c.Line, c.Err)
	return nil
}

// trySubstitute binds u := t, after validity and occurs checks (§4.3).
func (inf *Inferencer) trySubstitute(u, t *typegraph.Node, line int, err ErrThunk) *diagnostics.DiagnosticError {
	if t.Kind == typegraph.Array && !u.CanBeArray {
		return err()
	}
	if t.Kind == typegraph.Function && !u.CanBeFunc {
		return err()
	}
	if u.OnlyIntCharFloat {
		switch t.Kind {
		case typegraph.Int, typegraph.Char, typegraph.Float, typegraph.Unknown:
			// ok
		default:
			return err()
		}
	}
	if inf.occurs(u, t) {
		return err()
	}

	if t.Kind == typegraph.Unknown {
		t.CanBeArray = t.CanBeArray && u.CanBeArray
		t.CanBeFunc = t.CanBeFunc && u.CanBeFunc
		t.OnlyIntCharFloat = t.OnlyIntCharFloat || u.OnlyIntCharFloat
	}

	inf.substitutions[u.ID] = t
	return nil
}

// occurs reports whether u appears anywhere inside t, after path
// compression, guaranteeing the substitution map never holds a cycle.
func (inf *Inferencer) occurs(u, t *typegraph.Node) bool {
	t = inf.TryApply(t)
	if t == u {
		return true
	}
	switch t.Kind {
	case typegraph.Ref, typegraph.Array:
		return inf.occurs(u, t.Inner)
	case typegraph.Function:
		for _, p := range t.Params {
			if inf.occurs(u, p) {
				return true
			}
		}
		return inf.occurs(u, t.Result)
	default:
		return false
	}
}

// DeepSubstitute replaces every reachable Unknown in t with its resolution,
// for use right before lowering (§4.1's deep_substitute).
func (inf *Inferencer) DeepSubstitute(t *typegraph.Node) *typegraph.Node {
	return typegraph.DeepSubstitute(t, inf)
}
