package liveness

import (
	"sort"
	"testing"

	"github.com/ZOrfeas/llamac/internal/ast"
	"github.com/ZOrfeas/llamac/internal/lexer"
	"github.com/ZOrfeas/llamac/internal/parser"
)

func names(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func bindingBody(t *testing.T, src, fnName string) (*ast.Binding, *ast.Program) {
	t.Helper()
	p := parser.New(lexer.New(src))
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	for _, def := range prog.Definitions {
		var bindings []*ast.Binding
		switch d := def.(type) {
		case *ast.LetDefinition:
			bindings = d.Bindings
		case *ast.LetRecDefinition:
			bindings = d.Bindings
		}
		for _, b := range bindings {
			if b.Name == fnName {
				return b, prog
			}
		}
	}
	t.Fatalf("binding %q not found", fnName)
	return nil, nil
}

func TestExternalsTopLevelFunctionHasNoFreeVariables(t *testing.T) {
	b, _ := bindingBody(t, `let add x y = x + y`, "add")
	ext := Externals(paramNames(b), b.Body)
	if len(ext) != 0 {
		t.Fatalf("expected no free variables, got %v", names(ext))
	}
}

func TestExternalsNestedFunctionCapturesEnclosingLocal(t *testing.T) {
	b, _ := bindingBody(t, `
let outer n =
	let adder x = x + n in
	adder 1
`, "outer")
	// adder is the nested function: its only reference to n is free.
	letIn := b.Body.(*ast.LetInExpr)
	inner := letIn.Def.(*ast.LetDefinition).Bindings[0]
	ext := Externals(paramNames(inner), inner.Body)
	if !ext["n"] {
		t.Fatalf("expected 'n' to be free in adder, got %v", names(ext))
	}
	if len(ext) != 1 {
		t.Fatalf("expected exactly one free variable, got %v", names(ext))
	}
}

func TestExternalsMatchPatternBindingsAreNotFree(t *testing.T) {
	b, _ := bindingBody(t, `
type intpair = Pair of int int
let fst p = match p with Pair a b -> a
`, "fst")
	ext := Externals(paramNames(b), b.Body)
	if len(ext) != 0 {
		t.Fatalf("expected no free variables (a, b are pattern-bound), got %v", names(ext))
	}
}

func paramNames(b *ast.Binding) []string {
	names := make([]string, len(b.Params))
	for i, p := range b.Params {
		names[i] = p.Name
	}
	return names
}
