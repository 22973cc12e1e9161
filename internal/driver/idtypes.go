package driver

import (
	"fmt"
	"strings"

	"github.com/ZOrfeas/llamac/internal/ast"
	"github.com/ZOrfeas/llamac/internal/inference"
	"github.com/ZOrfeas/llamac/internal/symbols"
	"github.com/ZOrfeas/llamac/internal/typegraph"
)

// idTypeNamer assigns stable "@0", "@1", ... names to still-free Unknown
// nodes in first-encounter order, so repeated compilations of the same
// program produce byte-identical -idtypes output (supplemented from
// original_source/llvm/infer.cpp's non-strict pass, per SPEC_FULL.md D.1 —
// the raw internal Unknown id is otherwise just an allocation-order
// accident, not stable across runs that allocate Unknowns in a different
// order for an unrelated reason).
type idTypeNamer struct {
	names map[*typegraph.Node]string
}

func newIDTypeNamer() *idTypeNamer {
	return &idTypeNamer{names: make(map[*typegraph.Node]string)}
}

func (nm *idTypeNamer) render(t *typegraph.Node) string {
	switch t.Kind {
	case typegraph.Unit, typegraph.Int, typegraph.Char, typegraph.Bool, typegraph.Float:
		return t.Kind.String()
	case typegraph.Ref:
		return "ref " + nm.render(t.Inner)
	case typegraph.Array:
		return fmt.Sprintf("array[%d] of %s", t.Dims, nm.render(t.Inner))
	case typegraph.Function:
		parts := make([]string, len(t.Params))
		for i, p := range t.Params {
			parts[i] = nm.render(p)
		}
		if len(parts) == 0 {
			return "() -> " + nm.render(t.Result)
		}
		return strings.Join(parts, " -> ") + " -> " + nm.render(t.Result)
	case typegraph.Custom:
		return t.Name
	case typegraph.Constructor:
		return t.Parent.Name
	case typegraph.Unknown:
		if name, ok := nm.names[t]; ok {
			return name
		}
		name := fmt.Sprintf("@%d", len(nm.names))
		nm.names[t] = name
		return name
	default:
		return "?"
	}
}

// DumpIDTypes renders one "name : type" line per top-level binding, in
// source order, using types as substituted by inf (call with a
// non-strict inf.SolveAll(false) result to mirror §4.4's "-idtypes"
// non-strict view, or with a strict result for the post-`compile` one).
func DumpIDTypes(prog *ast.Program, terms *symbols.TermTable, inf *inference.Inferencer) string {
	nm := newIDTypeNamer()
	var b strings.Builder
	var names []string
	for _, def := range prog.Definitions {
		var bindings []*ast.Binding
		switch d := def.(type) {
		case *ast.LetDefinition:
			bindings = d.Bindings
		case *ast.LetRecDefinition:
			bindings = d.Bindings
		}
		for _, bnd := range bindings {
			names = append(names, bnd.Name)
		}
	}
	for _, name := range names {
		sym := terms.Lookup(name)
		if sym == nil {
			continue
		}
		t := inf.DeepSubstitute(sym.Type)
		fmt.Fprintf(&b, "%s : %s\n", name, nm.render(t))
	}
	return b.String()
}
