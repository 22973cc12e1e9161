package inference

import (
	"testing"

	"github.com/ZOrfeas/llamac/internal/diagnostics"
	"github.com/ZOrfeas/llamac/internal/typegraph"
)

// errThunk builds a simple ErrThunk that records whether it fired.
func errThunk(fired *bool) ErrThunk {
	return func() *diagnostics.DiagnosticError {
		*fired = true
		return diagnostics.NewErrorAt(diagnostics.ErrTypeMismatch, 1, 1, "mismatch")
	}
}

func TestSolveAll_UnknownResolvesToInt(t *testing.T) {
	inf := New()
	u := inf.FreshUnknown()
	fired := false
	inf.AddConstraint(u, typegraph.TInt, 1, errThunk(&fired))

	if err := inf.SolveAll(true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fired {
		t.Fatalf("error thunk should not have fired")
	}
	resolved := inf.TryApply(u)
	if resolved != typegraph.TInt {
		t.Fatalf("expected u to resolve to int, got %s", typegraph.String(resolved))
	}
}

func TestSolveAll_MismatchFails(t *testing.T) {
	inf := New()
	fired := false
	inf.AddConstraint(typegraph.TInt, typegraph.TBool, 1, errThunk(&fired))

	if err := inf.SolveAll(true); err == nil {
		t.Fatalf("expected error")
	}
	if !fired {
		t.Fatalf("expected error thunk to fire")
	}
}

func TestSolveAll_FunctionArityMismatch(t *testing.T) {
	inf := New()
	fired := false
	f1 := typegraph.NewFunction([]*typegraph.Node{typegraph.TInt}, typegraph.TBool)
	f2 := typegraph.NewFunction([]*typegraph.Node{typegraph.TInt, typegraph.TInt}, typegraph.TBool)
	inf.AddConstraint(f1, f2, 1, errThunk(&fired))

	if err := inf.SolveAll(true); err == nil {
		t.Fatalf("expected arity mismatch error")
	}
}

func TestSolveAll_ArrayUnknownDimsPinnedByKnown(t *testing.T) {
	inf := New()
	fired := false
	known := typegraph.NewArray(typegraph.NewRef(typegraph.TInt), 2)
	unknown := typegraph.NewArrayLowerBound(typegraph.NewRef(typegraph.TInt), 1)
	inf.AddConstraint(known, unknown, 1, errThunk(&fired))

	if err := inf.SolveAll(true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if unknown.Dims != 2 {
		t.Fatalf("expected unknown array to be pinned to 2 dims, got %d", unknown.Dims)
	}
}

func TestSolveAll_ArrayKnownDimsMismatchFails(t *testing.T) {
	inf := New()
	fired := false
	a := typegraph.NewArray(typegraph.NewRef(typegraph.TInt), 2)
	b := typegraph.NewArray(typegraph.NewRef(typegraph.TInt), 3)
	inf.AddConstraint(a, b, 1, errThunk(&fired))

	if err := inf.SolveAll(true); err == nil {
		t.Fatalf("expected dims mismatch error")
	}
}

func TestSolveAll_ArrayBothUnknownMergesLowerBound(t *testing.T) {
	inf := New()
	fired := false
	a := typegraph.NewArrayLowerBound(typegraph.NewRef(typegraph.TInt), 1)
	b := typegraph.NewArrayLowerBound(typegraph.NewRef(typegraph.TInt), 3)
	inf.AddConstraint(a, b, 1, errThunk(&fired))

	if err := inf.SolveAll(false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.LowerBound != b.LowerBound {
		t.Fatalf("expected merged lower-bound cell to be shared")
	}
	if a.LowerBound.Value != 3 {
		t.Fatalf("expected merged lower bound 3, got %d", a.LowerBound.Value)
	}
}

func TestOccursCheckRejectsRecursiveRef(t *testing.T) {
	inf := New()
	fired := false
	u := inf.FreshUnknown()
	cyclic := typegraph.NewRef(u)
	inf.AddConstraint(u, cyclic, 1, errThunk(&fired))

	if err := inf.SolveAll(true); err == nil {
		t.Fatalf("expected occurs-check error")
	}
}

func TestStrictModeRejectsUnresolved(t *testing.T) {
	inf := New()
	_ = inf.FreshUnknown() // never constrained to anything
	if err := inf.SolveAll(true); err == nil {
		t.Fatalf("expected unresolved-type error under strict mode")
	}
}

func TestNonStrictModeAllowsUnresolved(t *testing.T) {
	inf := New()
	_ = inf.FreshUnknown()
	if err := inf.SolveAll(false); err != nil {
		t.Fatalf("non-strict mode should not fail on unresolved types: %v", err)
	}
}

func TestOnlyIntCharFloatRejectsBool(t *testing.T) {
	inf := New()
	fired := false
	u := inf.FreshUnknown()
	u.OnlyIntCharFloat = true
	inf.AddConstraint(u, typegraph.TBool, 1, errThunk(&fired))

	if err := inf.SolveAll(true); err == nil {
		t.Fatalf("expected numeric-only violation error")
	}
}

// TestDeepSubstituteIsIdempotent exercises §8's "deep_substitute(deep_substitute(t))
// == deep_substitute(t)" law directly: once every Unknown reachable from t
// has been chased and rewritten, a second pass must be a no-op.
func TestDeepSubstituteIsIdempotent(t *testing.T) {
	inf := New()
	a := inf.FreshUnknown()
	b := inf.FreshUnknown()
	fired := false
	inf.AddConstraint(a, b, 1, errThunk(&fired))
	inf.AddConstraint(b, typegraph.TInt, 1, errThunk(&fired))
	if err := inf.SolveAll(true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fn := typegraph.NewFunction([]*typegraph.Node{a, typegraph.NewRef(b)}, a)
	once := inf.DeepSubstitute(fn)
	twice := inf.DeepSubstitute(once)
	if typegraph.String(once) != typegraph.String(twice) {
		t.Fatalf("deep_substitute not idempotent: once=%s twice=%s", typegraph.String(once), typegraph.String(twice))
	}
}

// TestTryApplyIsIdempotentAndPathCompressing exercises §8's "try_apply is
// idempotent and path-compressing" law: chasing a long substitution chain
// once must leave the returned node one step away from a fixed point.
func TestTryApplyIsIdempotentAndPathCompressing(t *testing.T) {
	inf := New()
	u1 := inf.FreshUnknown()
	u2 := inf.FreshUnknown()
	u3 := inf.FreshUnknown()
	fired := false
	inf.AddConstraint(u1, u2, 1, errThunk(&fired))
	inf.AddConstraint(u2, u3, 1, errThunk(&fired))
	inf.AddConstraint(u3, typegraph.TInt, 1, errThunk(&fired))
	if err := inf.SolveAll(true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resolved := inf.TryApply(u1)
	if resolved != typegraph.TInt {
		t.Fatalf("expected u1 to chase through to int, got %s", typegraph.String(resolved))
	}
	again := inf.TryApply(resolved)
	if again != resolved {
		t.Fatalf("try_apply on an already-resolved node must be a no-op")
	}
	// path compression: re-chasing u1 after the first TryApply call must
	// reach the same node in one step, not by walking the original chain.
	if inf.TryApply(u1) != resolved {
		t.Fatalf("expected u1's chain to be path-compressed after the first TryApply")
	}
}
