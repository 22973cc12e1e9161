package analyzer

import (
	"testing"

	"github.com/ZOrfeas/llamac/internal/ast"
	"github.com/ZOrfeas/llamac/internal/inference"
	"github.com/ZOrfeas/llamac/internal/lexer"
	"github.com/ZOrfeas/llamac/internal/parser"
	"github.com/ZOrfeas/llamac/internal/symbols"
	"github.com/ZOrfeas/llamac/internal/typegraph"
)

// newPipeline builds the table/inferencer set the driver assembles before
// handing a program to the analyzer, with the prelude already installed.
func newPipeline() (*symbols.TermTable, *symbols.TypeTable, *symbols.ConstructorTable, *inference.Inferencer) {
	terms := symbols.NewTermTable()
	symbols.InsertPrelude(terms)
	return terms, symbols.NewTypeTable(), symbols.NewConstructorTable(), inference.New()
}

func analyze(t *testing.T, src string) (*ast.Program, *Analyzer, *inference.Inferencer) {
	t.Helper()
	p := parser.New(lexer.New(src))
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	terms, types, ctors, inf := newPipeline()
	a := New(terms, types, ctors, inf)
	if semErr := a.Analyze(prog); semErr != nil {
		t.Fatalf("unexpected semantic error: %v", semErr)
	}
	return prog, a, inf
}

func TestAnalyzeIdentityFunctionInfersMatchingParamAndResult(t *testing.T) {
	prog, _, inf := analyze(t, `
let id x = x
let main = print_int (id 3)
`)
	idDef := prog.Definitions[0].(*ast.LetDefinition)
	body := idDef.Bindings[0].Body
	if err := inf.SolveAll(true); err != nil {
		t.Fatalf("unexpected inference error: %v", err)
	}
	resolved := inf.DeepSubstitute(body.ResolvedType())
	if resolved.Kind != typegraph.Int {
		t.Fatalf("expected id's body to resolve to int once applied at an int call site, got %v", resolved.Kind)
	}
}

func TestAnalyzeSumTypeProjectionThroughMatch(t *testing.T) {
	prog, _, inf := analyze(t, `
type intpair = Pair of int int
let fst p = match p with Pair a b -> a
let main = print_int (fst (Pair 3 5))
`)
	if err := inf.SolveAll(true); err != nil {
		t.Fatalf("unexpected inference error: %v", err)
	}
	fstDef := prog.Definitions[1].(*ast.LetDefinition)
	matchExpr := fstDef.Bindings[0].Body.(*ast.MatchExpr)
	resultType := inf.DeepSubstitute(matchExpr.ResolvedType())
	if resultType.Kind != typegraph.Int {
		t.Fatalf("expected match result to resolve to int (the 'a' field of Pair), got %v", resultType.Kind)
	}
}

func TestAnalyzeMutualRecursionRequiresFunctionBindings(t *testing.T) {
	_, _, inf := analyze(t, `
let rec even n = if n = 0 then true else odd (n-1)
and odd n = if n = 0 then false else even (n-1)
`)
	if err := inf.SolveAll(true); err != nil {
		t.Fatalf("unexpected inference error: %v", err)
	}
}

func TestAnalyzeArrayAllocationIndexAndAssign(t *testing.T) {
	_, _, inf := analyze(t, `
let a = new array[3, 4] of int
let _ = a[1,2] := 7
let _ = print_int a[1,2]
`)
	if err := inf.SolveAll(true); err != nil {
		t.Fatalf("unexpected inference error: %v", err)
	}
}

func TestAnalyzeStructuralEqualityOnArrayFreeCustomIsAllowed(t *testing.T) {
	_, _, inf := analyze(t, `
type t = C of int
let main = let a = C 1 in let b = C 1 in a == b
`)
	if err := inf.SolveAll(true); err != nil {
		t.Fatalf("unexpected inference error: %v", err)
	}
}

func TestAnalyzeReferenceEqualityAllowsArrayOperand(t *testing.T) {
	_, _, inf := analyze(t, `
let a = new array[3] of int
let b = new array[3] of int
let main = a = b
`)
	if err := inf.SolveAll(true); err != nil {
		t.Fatalf("unexpected inference error: %v", err)
	}
}

func TestAnalyzeStructuralEqualityRejectsArrayOperand(t *testing.T) {
	p := parser.New(lexer.New(`
let a = new array[3] of int
let b = new array[3] of int
let main = a == b
`))
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	terms, types, ctors, inf := newPipeline()
	a := New(terms, types, ctors, inf)
	semErr := a.Analyze(prog)
	if semErr == nil {
		t.Fatal("expected a semantic error rejecting '==' on arrays")
	}
}

func TestAnalyzeUnknownIdentifierIsReported(t *testing.T) {
	p := parser.New(lexer.New(`let main = print_int undefined_name`))
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	terms, types, ctors, inf := newPipeline()
	a := New(terms, types, ctors, inf)
	if semErr := a.Analyze(prog); semErr == nil {
		t.Fatal("expected an unknown-identifier error")
	}
}

func TestAnalyzePartialApplicationIsRejected(t *testing.T) {
	p := parser.New(lexer.New(`
let add a b = a + b
let main = print_int (add 1)
`))
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	terms, types, ctors, inf := newPipeline()
	a := New(terms, types, ctors, inf)
	if semErr := a.Analyze(prog); semErr == nil {
		t.Fatal("expected a partial-application error for 'add 1'")
	}
}

func TestAnalyzeDuplicateConstructorIsRejected(t *testing.T) {
	p := parser.New(lexer.New(`
type t1 = C of int
type t2 = C of bool
`))
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	terms, types, ctors, inf := newPipeline()
	a := New(terms, types, ctors, inf)
	if semErr := a.Analyze(prog); semErr == nil {
		t.Fatal("expected a duplicate-constructor error")
	}
}
