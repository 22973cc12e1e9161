package typegraph

// Resolver resolves a single Unknown node to whatever it is currently bound
// to, following chains of bound unknowns to a fixed point (§4.3's
// try_apply). DeepSubstitute stays in this package and takes a Resolver
// rather than depending on package inference directly, so typegraph has no
// upward dependency; inference.Inferencer implements this interface.
type Resolver interface {
	TryApply(*Node) *Node
}

// DeepSubstitute walks t, replacing every reachable Unknown leaf with its
// resolution under r (§4.1's deep_substitute). Compound nodes (Ref, Array,
// Function) are rebuilt only when a child actually changed, so a fully
// resolved type is returned unchanged (no needless allocation). Custom
// nodes are never substituted into — a Custom is a named, closed type, not
// a type variable, so substitution simply stops at its boundary.
func DeepSubstitute(t *Node, r Resolver) *Node {
	return deepSubstitute(t, r, make(map[*Node]bool))
}

func deepSubstitute(t *Node, r Resolver, visiting map[*Node]bool) *Node {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case Unit, Int, Char, Bool, Float, Custom, Constructor:
		return t
	case Unknown:
		resolved := r.TryApply(t)
		if resolved == t || resolved == nil {
			return t
		}
		if visiting[resolved] {
			return resolved // recursive type through an unknown chain; stop
		}
		visiting[resolved] = true
		out := deepSubstitute(resolved, r, visiting)
		delete(visiting, resolved)
		return out
	case Ref:
		inner := deepSubstitute(t.Inner, r, visiting)
		if inner == t.Inner {
			return t
		}
		return NewRef(inner)
	case Array:
		inner := deepSubstitute(t.Inner, r, visiting)
		if inner == t.Inner {
			return t
		}
		out := &Node{Kind: Array, Inner: inner, Dims: t.Dims, LowerBound: t.LowerBound}
		return out
	case Function:
		changed := false
		params := make([]*Node, len(t.Params))
		for i, p := range t.Params {
			params[i] = deepSubstitute(p, r, visiting)
			if params[i] != p {
				changed = true
			}
		}
		result := deepSubstitute(t.Result, r, visiting)
		if result != t.Result {
			changed = true
		}
		if !changed {
			return t
		}
		return NewFunction(params, result)
	default:
		return t
	}
}
