package parser

import (
	"testing"

	"github.com/ZOrfeas/llamac/internal/ast"
	"github.com/ZOrfeas/llamac/internal/lexer"
	"github.com/ZOrfeas/llamac/internal/token"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := New(lexer.New(src))
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("unexpected parse error for %q: %v", src, err)
	}
	return prog
}

func TestParseIdentityFunction(t *testing.T) {
	prog := parse(t, `let id x = x`)
	if len(prog.Definitions) != 1 {
		t.Fatalf("expected 1 definition, got %d", len(prog.Definitions))
	}
	def, ok := prog.Definitions[0].(*ast.LetDefinition)
	if !ok {
		t.Fatalf("expected *ast.LetDefinition, got %T", prog.Definitions[0])
	}
	if len(def.Bindings) != 1 || def.Bindings[0].Name != "id" {
		t.Fatalf("unexpected bindings: %+v", def.Bindings)
	}
	if len(def.Bindings[0].Params) != 1 || def.Bindings[0].Params[0].Name != "x" {
		t.Fatalf("unexpected params: %+v", def.Bindings[0].Params)
	}
	if _, ok := def.Bindings[0].Body.(*ast.Identifier); !ok {
		t.Fatalf("expected identifier body, got %T", def.Bindings[0].Body)
	}
}

func TestParseSumTypeProjectionThroughMatch(t *testing.T) {
	prog := parse(t, `
type intpair = Pair of int int
let fst p = match p with Pair a b -> a
let main = print_int (fst (Pair 3 5))
`)
	if len(prog.Definitions) != 3 {
		t.Fatalf("expected 3 definitions, got %d", len(prog.Definitions))
	}
	typeDef, ok := prog.Definitions[0].(*ast.TypeDefinition)
	if !ok {
		t.Fatalf("expected *ast.TypeDefinition, got %T", prog.Definitions[0])
	}
	if len(typeDef.Types) != 1 || typeDef.Types[0].Name != "intpair" {
		t.Fatalf("unexpected type decl: %+v", typeDef.Types)
	}
	ctors := typeDef.Types[0].Constructors
	if len(ctors) != 1 || ctors[0].Name != "Pair" || len(ctors[0].Fields) != 2 {
		t.Fatalf("unexpected constructors: %+v", ctors)
	}

	fstDef := prog.Definitions[1].(*ast.LetDefinition)
	matchExpr, ok := fstDef.Bindings[0].Body.(*ast.MatchExpr)
	if !ok {
		t.Fatalf("expected match expression body, got %T", fstDef.Bindings[0].Body)
	}
	if len(matchExpr.Clauses) != 1 {
		t.Fatalf("expected 1 clause, got %d", len(matchExpr.Clauses))
	}
	ctorPat, ok := matchExpr.Clauses[0].Pattern.(*ast.ConstructorPattern)
	if !ok {
		t.Fatalf("expected constructor pattern, got %T", matchExpr.Clauses[0].Pattern)
	}
	if ctorPat.Name != "Pair" || len(ctorPat.SubPats) != 2 {
		t.Fatalf("unexpected constructor pattern: %+v", ctorPat)
	}

	mainDef := prog.Definitions[2].(*ast.LetDefinition)
	call, ok := mainDef.Bindings[0].Body.(*ast.CallExpr)
	if !ok || call.Callee.Name != "print_int" {
		t.Fatalf("expected print_int call, got %+v", mainDef.Bindings[0].Body)
	}
	if len(call.Args) != 1 {
		t.Fatalf("expected 1 arg to print_int, got %d", len(call.Args))
	}
	inner, ok := call.Args[0].(*ast.CallExpr)
	if !ok || inner.Callee.Name != "fst" {
		t.Fatalf("expected nested fst call, got %+v", call.Args[0])
	}
	ctorCall, ok := inner.Args[0].(*ast.CallExpr)
	if !ok || ctorCall.Callee.Name != "Pair" || len(ctorCall.Args) != 2 {
		t.Fatalf("expected Pair 3 5 constructor call, got %+v", inner.Args[0])
	}
}

func TestParseMutualRecursion(t *testing.T) {
	prog := parse(t, `
let rec even n = if n = 0 then true else odd (n-1)
and odd n = if n = 0 then false else even (n-1)
`)
	if len(prog.Definitions) != 1 {
		t.Fatalf("expected 1 definition, got %d", len(prog.Definitions))
	}
	def, ok := prog.Definitions[0].(*ast.LetRecDefinition)
	if !ok {
		t.Fatalf("expected *ast.LetRecDefinition, got %T", prog.Definitions[0])
	}
	if len(def.Bindings) != 2 || def.Bindings[0].Name != "even" || def.Bindings[1].Name != "odd" {
		t.Fatalf("unexpected bindings: %+v", def.Bindings)
	}
	ifExpr, ok := def.Bindings[0].Body.(*ast.IfExpr)
	if !ok {
		t.Fatalf("expected if expression, got %T", def.Bindings[0].Body)
	}
	call, ok := ifExpr.Else.(*ast.CallExpr)
	if !ok || call.Callee.Name != "odd" {
		t.Fatalf("expected call to odd in else branch, got %+v", ifExpr.Else)
	}
}

func TestParseArrayAllocationIndexAndAssign(t *testing.T) {
	prog := parse(t, `
let a = new array[3, 4] of int
let _ = a[1,2] := 7
let _ = print_int a[1,2]
`)
	if len(prog.Definitions) != 3 {
		t.Fatalf("expected 3 definitions, got %d", len(prog.Definitions))
	}
	allocDef := prog.Definitions[0].(*ast.LetDefinition)
	newArr, ok := allocDef.Bindings[0].Body.(*ast.NewArrayExpr)
	if !ok {
		t.Fatalf("expected NewArrayExpr, got %T", allocDef.Bindings[0].Body)
	}
	if len(newArr.Sizes) != 2 {
		t.Fatalf("expected 2 size expressions, got %d", len(newArr.Sizes))
	}

	assignDef := prog.Definitions[1].(*ast.LetDefinition)
	assign, ok := assignDef.Bindings[0].Body.(*ast.AssignExpr)
	if !ok {
		t.Fatalf("expected AssignExpr, got %T", assignDef.Bindings[0].Body)
	}
	idx, ok := assign.Target.(*ast.IndexExpr)
	if !ok || len(idx.Indices) != 2 {
		t.Fatalf("expected 2-dim index target, got %+v", assign.Target)
	}

	printDef := prog.Definitions[2].(*ast.LetDefinition)
	call, ok := printDef.Bindings[0].Body.(*ast.CallExpr)
	if !ok || call.Callee.Name != "print_int" {
		t.Fatalf("expected print_int call, got %+v", printDef.Bindings[0].Body)
	}
	if _, ok := call.Args[0].(*ast.IndexExpr); !ok {
		t.Fatalf("expected index expression argument, got %T", call.Args[0])
	}
}

func TestParseReferenceVsStructuralEquality(t *testing.T) {
	prog := parse(t, `
type t = C of int
let main = let a = C 1 in let b = C 1 in a == b
`)
	typeDef := prog.Definitions[0].(*ast.TypeDefinition)
	if typeDef.Types[0].Constructors[0].Name != "C" {
		t.Fatalf("unexpected constructor: %+v", typeDef.Types[0].Constructors)
	}
	mainDef := prog.Definitions[1].(*ast.LetDefinition)
	outer, ok := mainDef.Bindings[0].Body.(*ast.LetInExpr)
	if !ok {
		t.Fatalf("expected outer let-in, got %T", mainDef.Bindings[0].Body)
	}
	inner, ok := outer.Body.(*ast.LetInExpr)
	if !ok {
		t.Fatalf("expected nested let-in, got %T", outer.Body)
	}
	cmp, ok := inner.Body.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected binary comparison, got %T", inner.Body)
	}
	if cmp.Op != token.EQEQ {
		t.Fatalf("expected == operator, got %v", cmp.Op)
	}
}

func TestParseTypeAnnotationsRefArrayAndFunc(t *testing.T) {
	prog := parse(t, `
let deref (x : int ref) : int = !x
let at (a : array[*,*] of int) : int = a[0,0]
let apply (f : int -> int) (v : int) : int = f v
`)
	if len(prog.Definitions) != 3 {
		t.Fatalf("expected 3 definitions, got %d", len(prog.Definitions))
	}
	derefDef := prog.Definitions[0].(*ast.LetDefinition)
	refType, ok := derefDef.Bindings[0].Params[0].TypeAST.(*ast.RefTypeExpr)
	if !ok {
		t.Fatalf("expected ref type annotation, got %T", derefDef.Bindings[0].Params[0].TypeAST)
	}
	if _, ok := refType.Inner.(*ast.NamedTypeExpr); !ok {
		t.Fatalf("expected named inner type, got %T", refType.Inner)
	}

	atDef := prog.Definitions[1].(*ast.LetDefinition)
	arrType, ok := atDef.Bindings[0].Params[0].TypeAST.(*ast.ArrayTypeExpr)
	if !ok || arrType.Dims != 2 {
		t.Fatalf("expected 2-dim array type annotation, got %+v", atDef.Bindings[0].Params[0].TypeAST)
	}

	applyDef := prog.Definitions[2].(*ast.LetDefinition)
	fnType, ok := applyDef.Bindings[0].Params[0].TypeAST.(*ast.FuncTypeExpr)
	if !ok {
		t.Fatalf("expected func type annotation, got %T", applyDef.Bindings[0].Params[0].TypeAST)
	}
	if len(fnType.Params) != 1 || fnType.Result == nil {
		t.Fatalf("unexpected func type shape: %+v", fnType)
	}
}

func TestParseErrorStopsAtFirstMistake(t *testing.T) {
	p := New(lexer.New(`let x = )`))
	_, err := p.ParseProgram()
	if err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestParseErrorOnMissingDone(t *testing.T) {
	p := New(lexer.New(`let f x = while x do x := x - 1`))
	_, err := p.ParseProgram()
	if err == nil {
		t.Fatal("expected a parse error for missing 'done'")
	}
}
