// Package liveness implements §4.5: for a function body, the set of
// identifiers it references that are bound outside it (its free
// variables, or "externals"). It runs after semantic analysis, over an
// already fully-resolved AST; it only needs name sets, not types, so it
// walks the AST directly instead of going through ast.Visitor.
package liveness

import "github.com/ZOrfeas/llamac/internal/ast"

// Externals computes the free-variable set of a function binding: every
// identifier Body references that is not one of params, nor bound by a
// nested let/let rec/match-pattern/for-variable inside Body itself.
// params are the binding's own parameter names, already known bound.
func Externals(params []string, body ast.Expression) map[string]bool {
	w := &walker{bound: []map[string]bool{{}}, free: make(map[string]bool)}
	for _, p := range params {
		w.bind(p)
	}
	w.walkExpr(body)
	return w.free
}

type walker struct {
	bound []map[string]bool
	free  map[string]bool
}

func (w *walker) push()    { w.bound = append(w.bound, map[string]bool{}) }
func (w *walker) pop()     { w.bound = w.bound[:len(w.bound)-1] }
func (w *walker) bind(name string) {
	w.bound[len(w.bound)-1][name] = true
}

func (w *walker) isBound(name string) bool {
	for i := len(w.bound) - 1; i >= 0; i-- {
		if w.bound[i][name] {
			return true
		}
	}
	return false
}

func (w *walker) reference(name string) {
	if !w.isBound(name) {
		w.free[name] = true
	}
}

func (w *walker) walkExpr(e ast.Expression) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *ast.IntLiteral, *ast.FloatLiteral, *ast.CharLiteral, *ast.BoolLiteral,
		*ast.StringLiteral, *ast.UnitLiteral:
		// no references
	case *ast.Identifier:
		w.reference(n.Name)
	case *ast.BinaryExpr:
		w.walkExpr(n.Left)
		w.walkExpr(n.Right)
	case *ast.UnaryExpr:
		w.walkExpr(n.Operand)
	case *ast.AssignExpr:
		w.walkExpr(n.Target)
		w.walkExpr(n.Value)
	case *ast.SeqExpr:
		w.walkExpr(n.First)
		w.walkExpr(n.Second)
	case *ast.NewExpr:
		// type annotation only, no term references
	case *ast.NewArrayExpr:
		for _, sz := range n.Sizes {
			w.walkExpr(sz)
		}
	case *ast.IfExpr:
		w.walkExpr(n.Cond)
		w.walkExpr(n.Then)
		w.walkExpr(n.Else)
	case *ast.WhileExpr:
		w.walkExpr(n.Cond)
		w.walkExpr(n.Body)
	case *ast.ForExpr:
		w.walkExpr(n.Start)
		w.walkExpr(n.Finish)
		w.push()
		w.bind(n.Var)
		w.walkExpr(n.Body)
		w.pop()
	case *ast.CallExpr:
		// Callee may name a constructor. Constructors are bound in no
		// scope this walk tracks, so a constructor name lands in the free
		// set like any other unbound name.
		w.reference(n.Callee.Name)
		for _, a := range n.Args {
			w.walkExpr(a)
		}
	case *ast.IndexExpr:
		w.walkExpr(n.Array)
		for _, idx := range n.Indices {
			w.walkExpr(idx)
		}
	case *ast.DimExpr:
		w.walkExpr(n.Array)
	case *ast.LetInExpr:
		w.push()
		w.walkDef(n.Def)
		w.walkExpr(n.Body)
		w.pop()
	case *ast.MatchExpr:
		w.walkExpr(n.Subject)
		for _, clause := range n.Clauses {
			w.push()
			w.walkPattern(clause.Pattern)
			w.walkExpr(clause.Body)
			w.pop()
		}
	}
}

// walkDef handles a let/let-rec definition reached in expression
// position (inside a LetInExpr); it binds every introduced name into the
// current scope and walks each binding's body, exactly mirroring the
// scoping rules §4.4 establishes for the analyzer (own params open a
// nested scope of their own; the names being defined are visible to
// sibling bodies only when rec).
func (w *walker) walkDef(d ast.Definition) {
	switch def := d.(type) {
	case *ast.LetDefinition:
		for _, b := range def.Bindings {
			w.walkBinding(b)
		}
		for _, b := range def.Bindings {
			w.bind(b.Name)
		}
	case *ast.LetRecDefinition:
		for _, b := range def.Bindings {
			w.bind(b.Name)
		}
		for _, b := range def.Bindings {
			w.walkBinding(b)
		}
	case *ast.TypeDefinition:
		// introduces no term-level names
	}
}

func (w *walker) walkBinding(b *ast.Binding) {
	if len(b.Params) == 0 {
		w.walkExpr(b.Body)
		return
	}
	w.push()
	for _, p := range b.Params {
		w.bind(p.Name)
	}
	w.walkExpr(b.Body)
	w.pop()
}

func (w *walker) walkPattern(p ast.Pattern) {
	switch pat := p.(type) {
	case *ast.LiteralPattern:
		// no bindings; Value is a literal, not a term reference
	case *ast.IdPattern:
		w.bind(pat.Name)
	case *ast.WildcardPattern:
		// binds nothing
	case *ast.ConstructorPattern:
		for _, sub := range pat.SubPats {
			w.walkPattern(sub)
		}
	}
}
