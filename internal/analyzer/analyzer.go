// Package analyzer implements the semantic analyzer of §4.4: a single
// top-to-bottom walk of the parsed AST that populates the symbol/type/
// constructor tables, resolves every syntactic type annotation to a Type
// Graph node, and emits the constraints the inferencer later solves. It
// never recovers from an error locally (§7): the first failure short-
// circuits the rest of the walk.
package analyzer

import (
	"fmt"

	"github.com/ZOrfeas/llamac/internal/ast"
	"github.com/ZOrfeas/llamac/internal/diagnostics"
	"github.com/ZOrfeas/llamac/internal/inference"
	"github.com/ZOrfeas/llamac/internal/symbols"
	"github.com/ZOrfeas/llamac/internal/token"
	"github.com/ZOrfeas/llamac/internal/typegraph"
)

// Analyzer walks a Program once, in source order, writing the resolved
// type of every expression and pattern node back onto the node itself
// (ast.Expression/ast.Pattern already carry a ResolvedType slot for this).
// It embeds ast.BaseVisitor so it only needs to override the definition
// and expression visits; patterns are walked through the internal
// analyzePattern helper instead of the Visitor dispatch, since pattern
// analysis needs the match-target type threaded in alongside the node,
// which the fixed Visit(node) signature has no room for.
type Analyzer struct {
	ast.BaseVisitor

	terms *symbols.TermTable
	types *symbols.TypeTable
	ctors *symbols.ConstructorTable
	inf   *inference.Inferencer

	err *diagnostics.DiagnosticError
}

// New builds an analyzer over tables and an inferencer already constructed
// by the driver (the prelude must already be inserted into terms).
func New(terms *symbols.TermTable, types *symbols.TypeTable, ctors *symbols.ConstructorTable, inf *inference.Inferencer) *Analyzer {
	return &Analyzer{terms: terms, types: types, ctors: ctors, inf: inf}
}

// Analyze walks every top-level definition in order, stopping at the
// first error.
func (a *Analyzer) Analyze(prog *ast.Program) *diagnostics.DiagnosticError {
	for _, def := range prog.Definitions {
		if a.failed() {
			break
		}
		def.Accept(a)
	}
	return a.err
}

func (a *Analyzer) failed() bool { return a.err != nil }

func (a *Analyzer) fail(err *diagnostics.DiagnosticError) {
	if a.err == nil {
		a.err = err
	}
}

func (a *Analyzer) failAt(line int, code diagnostics.ErrorCode, format string, args ...any) {
	a.fail(diagnostics.NewErrorAt(code, line, 0, fmt.Sprintf(format, args...)))
}

// constrain records l == r as a new constraint, attaching an error thunk
// that re-renders at the constraint's own line if the solver later rejects
// it far from here (§4.3, §7).
func (a *Analyzer) constrain(l, r *typegraph.Node, line int, code diagnostics.ErrorCode, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	a.inf.AddConstraint(l, r, line, func() *diagnostics.DiagnosticError {
		return diagnostics.NewErrorAt(code, line, 0, msg)
	})
}

// infer runs e through the visitor and returns its resolved type, or nil
// once a.err is set.
func (a *Analyzer) infer(e ast.Expression) *typegraph.Node {
	if a.failed() {
		return nil
	}
	e.Accept(a)
	if a.failed() {
		return nil
	}
	return e.ResolvedType()
}

// resolveTypeExpr maps a syntactic type annotation to its Type Graph node
// (§4.1/§4.4), rejecting array-of-array and unknown type names.
func (a *Analyzer) resolveTypeExpr(t ast.TypeExpr) *typegraph.Node {
	switch n := t.(type) {
	case *ast.NamedTypeExpr:
		tg := a.types.Lookup(n.Name)
		if tg == nil {
			a.failAt(n.Line(), diagnostics.ErrUnknownType, "unknown type %q", n.Name)
			return nil
		}
		return tg
	case *ast.RefTypeExpr:
		inner := a.resolveTypeExpr(n.Inner)
		if a.failed() {
			return nil
		}
		if inner.IsArray() {
			a.failAt(n.Line(), diagnostics.ErrArrayOfArray, "a ref cannot hold an array directly")
			return nil
		}
		return typegraph.NewRef(inner)
	case *ast.ArrayTypeExpr:
		inner := a.resolveTypeExpr(n.Inner)
		if a.failed() {
			return nil
		}
		if inner.IsArray() {
			a.failAt(n.Line(), diagnostics.ErrArrayOfArray, "an array's element type cannot itself be an array")
			return nil
		}
		return typegraph.NewArray(typegraph.NewRef(inner), n.Dims)
	case *ast.FuncTypeExpr:
		params := make([]*typegraph.Node, len(n.Params))
		for i, p := range n.Params {
			params[i] = a.resolveTypeExpr(p)
			if a.failed() {
				return nil
			}
		}
		result := a.resolveTypeExpr(n.Result)
		if a.failed() {
			return nil
		}
		return typegraph.NewFunction(params, result)
	default:
		a.failAt(t.Line(), diagnostics.ErrUnknownType, "unrecognized type annotation")
		return nil
	}
}

// --- Definitions ---

func (a *Analyzer) VisitLetDefinition(d *ast.LetDefinition) {
	type pending struct {
		name string
		typ  *typegraph.Node
	}
	results := make([]pending, 0, len(d.Bindings))
	for _, b := range d.Bindings {
		if a.failed() {
			return
		}
		typ := a.analyzeBinding(b)
		if a.failed() {
			return
		}
		results = append(results, pending{b.Name, typ})
	}
	for _, r := range results {
		a.terms.InsertRaw(r.name, r.typ)
	}
}

func (a *Analyzer) VisitLetRecDefinition(d *ast.LetRecDefinition) {
	protos := make([]*typegraph.Node, len(d.Bindings))
	for i, b := range d.Bindings {
		if len(b.Params) == 0 {
			a.failAt(b.Line(), diagnostics.ErrArity, "%q is declared 'rec' but is not a function", b.Name)
			return
		}
		paramTypes := make([]*typegraph.Node, len(b.Params))
		for j, p := range b.Params {
			if p.TypeAST != nil {
				paramTypes[j] = a.resolveTypeExpr(p.TypeAST)
			} else {
				paramTypes[j] = a.inf.FreshUnknown()
			}
			if a.failed() {
				return
			}
		}
		var resultType *typegraph.Node
		if b.ReturnType != nil {
			resultType = a.resolveTypeExpr(b.ReturnType)
			if a.failed() {
				return
			}
		} else {
			resultType = a.inf.FreshUnknown()
		}
		proto := typegraph.NewFunction(paramTypes, resultType)
		protos[i] = proto
		a.terms.InsertRaw(b.Name, proto)
	}
	for i, b := range d.Bindings {
		if a.failed() {
			return
		}
		proto := protos[i]
		a.terms.OpenScope()
		for j, p := range b.Params {
			a.terms.InsertRaw(p.Name, proto.Params[j])
		}
		bodyType := a.infer(b.Body)
		a.terms.CloseScope(true)
		if a.failed() {
			return
		}
		a.constrain(bodyType, proto.Result, b.Line(), diagnostics.ErrTypeMismatch,
			"body of %q does not match its result type", b.Name)
	}
}

// analyzeBinding analyzes one "name params = body" clause, returning the
// type to bind name to. Plain constant bindings (no params) never open a
// scope of their own; function bindings do (§4.4).
func (a *Analyzer) analyzeBinding(b *ast.Binding) *typegraph.Node {
	if len(b.Params) == 0 {
		bodyType := a.infer(b.Body)
		if a.failed() {
			return nil
		}
		if b.ReturnType == nil {
			return bodyType
		}
		declared := a.resolveTypeExpr(b.ReturnType)
		if a.failed() {
			return nil
		}
		a.constrain(bodyType, declared, b.Line(), diagnostics.ErrTypeMismatch,
			"%q's body does not match its declared type", b.Name)
		return declared
	}

	a.terms.OpenScope()
	paramTypes := make([]*typegraph.Node, len(b.Params))
	for i, p := range b.Params {
		var pt *typegraph.Node
		if p.TypeAST != nil {
			pt = a.resolveTypeExpr(p.TypeAST)
		} else {
			pt = a.inf.FreshUnknown()
		}
		if a.failed() {
			a.terms.CloseScope(true)
			return nil
		}
		paramTypes[i] = pt
		a.terms.InsertRaw(p.Name, pt)
	}
	var resultType *typegraph.Node
	if b.ReturnType != nil {
		resultType = a.resolveTypeExpr(b.ReturnType)
		if a.failed() {
			a.terms.CloseScope(true)
			return nil
		}
	} else {
		resultType = a.inf.FreshUnknown()
	}
	bodyType := a.infer(b.Body)
	a.terms.CloseScope(true)
	if a.failed() {
		return nil
	}
	a.constrain(bodyType, resultType, b.Line(), diagnostics.ErrTypeMismatch,
		"body of %q does not match its result type", b.Name)
	return typegraph.NewFunction(paramTypes, resultType)
}

// VisitTypeDefinition inserts every type name in the "and"-chain first,
// then every constructor, so the constructors' field types may reference
// any sibling type in the same block (§4.4's mutual-recursion rule).
func (a *Analyzer) VisitTypeDefinition(d *ast.TypeDefinition) {
	customs := make([]*typegraph.Node, len(d.Types))
	for i, td := range d.Types {
		c := typegraph.NewCustom(td.Name)
		if !a.types.Insert(td.Name, c) {
			a.failAt(td.Tok.Line, diagnostics.ErrDupType, "type %q is already defined", td.Name)
			return
		}
		customs[i] = c
	}
	for i, td := range d.Types {
		custom := customs[i]
		for _, cd := range td.Constructors {
			fields := make([]*typegraph.Node, len(cd.Fields))
			for j, f := range cd.Fields {
				fields[j] = a.resolveTypeExpr(f)
				if a.failed() {
					return
				}
			}
			ctor := typegraph.AddConstructor(custom, cd.Name, fields)
			if !a.ctors.Insert(cd.Name, ctor) {
				a.failAt(cd.Tok.Line, diagnostics.ErrDupCtor, "constructor %q is already defined", cd.Name)
				return
			}
		}
	}
}

// --- Literals and identifiers ---

func (a *Analyzer) VisitIntLiteral(n *ast.IntLiteral)     { n.SetResolvedType(typegraph.TInt) }
func (a *Analyzer) VisitFloatLiteral(n *ast.FloatLiteral) { n.SetResolvedType(typegraph.TFloat) }
func (a *Analyzer) VisitCharLiteral(n *ast.CharLiteral)   { n.SetResolvedType(typegraph.TChar) }
func (a *Analyzer) VisitBoolLiteral(n *ast.BoolLiteral)   { n.SetResolvedType(typegraph.TBool) }
func (a *Analyzer) VisitUnitLiteral(n *ast.UnitLiteral)   { n.SetResolvedType(typegraph.TUnit) }

// VisitStringLiteral resolves to Array(Ref(Char), 1), per the array-of-char
// desugaring documented on ast.StringLiteral.
func (a *Analyzer) VisitStringLiteral(n *ast.StringLiteral) {
	n.SetResolvedType(typegraph.NewArray(typegraph.NewRef(typegraph.TChar), 1))
}

func (a *Analyzer) VisitIdentifier(n *ast.Identifier) {
	sym := a.terms.Lookup(n.Name)
	if sym == nil {
		a.failAt(n.Line(), diagnostics.ErrUnknownIdent, "unknown identifier %q", n.Name)
		return
	}
	n.SetResolvedType(sym.Type)
}

// --- Operators ---

func (a *Analyzer) VisitBinaryExpr(n *ast.BinaryExpr) {
	lt := a.infer(n.Left)
	if a.failed() {
		return
	}
	rt := a.infer(n.Right)
	if a.failed() {
		return
	}

	switch n.Op {
	case token.PLUS, token.MINUS, token.STAR, token.SLASH, token.MOD:
		a.constrain(lt, typegraph.TInt, n.Left.Line(), diagnostics.ErrTypeMismatch, "left operand must be int")
		a.constrain(rt, typegraph.TInt, n.Right.Line(), diagnostics.ErrTypeMismatch, "right operand must be int")
		n.SetResolvedType(typegraph.TInt)
	case token.PLUSF, token.MINUSF, token.STARF, token.SLASHF, token.POW:
		a.constrain(lt, typegraph.TFloat, n.Left.Line(), diagnostics.ErrTypeMismatch, "left operand must be float")
		a.constrain(rt, typegraph.TFloat, n.Right.Line(), diagnostics.ErrTypeMismatch, "right operand must be float")
		n.SetResolvedType(typegraph.TFloat)
	case token.AND, token.OR:
		a.constrain(lt, typegraph.TBool, n.Left.Line(), diagnostics.ErrTypeMismatch, "left operand must be bool")
		a.constrain(rt, typegraph.TBool, n.Right.Line(), diagnostics.ErrTypeMismatch, "right operand must be bool")
		n.SetResolvedType(typegraph.TBool)
	case token.EQ, token.NEQ:
		// Reference equality (§4.6): an identity comparison, meaningful for
		// Custom/Ref and degenerating to ordinary value equality for the
		// primitives; no structural restriction applies.
		a.constrain(lt, rt, n.Line(), diagnostics.ErrTypeMismatch, "= / <> requires operands of the same type")
		n.SetResolvedType(typegraph.TBool)
	case token.EQEQ, token.NEQEQ:
		// Structural equality (§4.6): lowered to a per-Custom recursive
		// equality function, so bare arrays/functions are refused outright,
		// and a Custom whose payload recursively holds an array is refused
		// too (§9 open question, decided: reject rather than defer to the
		// lowerer).
		if lt.Kind == typegraph.Array || lt.Kind == typegraph.Function {
			a.failAt(n.Left.Line(), refusalCode(lt), "== / != cannot compare %ss structurally", lt.Kind)
			return
		}
		if rt.Kind == typegraph.Array || rt.Kind == typegraph.Function {
			a.failAt(n.Right.Line(), refusalCode(rt), "== / != cannot compare %ss structurally", rt.Kind)
			return
		}
		if lt.IsUnknown() {
			lt.CanBeArray, lt.CanBeFunc = false, false
		}
		if rt.IsUnknown() {
			rt.CanBeArray, rt.CanBeFunc = false, false
		}
		a.constrain(lt, rt, n.Line(), diagnostics.ErrTypeMismatch, "== / != requires operands of the same type")
		if custom := structuralCustomOperand(lt, rt); custom != nil && containsArrayField(custom, nil) {
			a.failAt(n.Line(), diagnostics.ErrStructEqArray,
				"%q cannot derive structural equality: a constructor field is an array", custom.Name)
			return
		}
		n.SetResolvedType(typegraph.TBool)
	case token.LT, token.GT, token.LE, token.GE:
		if !isOrderable(lt) {
			a.failAt(n.Left.Line(), diagnostics.ErrRefusedNumericOnly, "comparison operands must be int, char, or float")
			return
		}
		if !isOrderable(rt) {
			a.failAt(n.Right.Line(), diagnostics.ErrRefusedNumericOnly, "comparison operands must be int, char, or float")
			return
		}
		if lt.IsUnknown() {
			lt.OnlyIntCharFloat = true
		}
		if rt.IsUnknown() {
			rt.OnlyIntCharFloat = true
		}
		a.constrain(lt, rt, n.Line(), diagnostics.ErrTypeMismatch, "comparison requires operands of the same type")
		n.SetResolvedType(typegraph.TBool)
	default:
		a.failAt(n.Line(), diagnostics.ErrTypeMismatch, "unsupported binary operator")
	}
}

func refusalCode(t *typegraph.Node) diagnostics.ErrorCode {
	if t.Kind == typegraph.Array {
		return diagnostics.ErrRefusedArray
	}
	return diagnostics.ErrRefusedFunc
}

// structuralCustomOperand returns whichever of l, r is already a concrete
// Custom node at analysis time (before solving), so its constructor fields
// can be checked for an embedded array right away. Returns nil when
// neither side is resolved yet; the lowerer's own generation-time check
// (§4.6 point 3) is the backstop for cases only the solver resolves.
func structuralCustomOperand(l, r *typegraph.Node) *typegraph.Node {
	if l.Kind == typegraph.Custom {
		return l
	}
	if r.Kind == typegraph.Custom {
		return r
	}
	return nil
}

// containsArrayField reports whether any constructor of custom has a
// field that is, or recursively contains, an array. visited guards
// against the Custom/Custom cycles mutually recursive type declarations
// permit (§4.4).
func containsArrayField(custom *typegraph.Node, visited map[*typegraph.Node]bool) bool {
	if visited == nil {
		visited = make(map[*typegraph.Node]bool)
	}
	if visited[custom] {
		return false
	}
	visited[custom] = true
	for _, ctor := range custom.Constructors {
		for _, field := range ctor.Fields {
			if fieldContainsArray(field, visited) {
				return true
			}
		}
	}
	return false
}

func fieldContainsArray(t *typegraph.Node, visited map[*typegraph.Node]bool) bool {
	switch t.Kind {
	case typegraph.Array:
		return true
	case typegraph.Ref:
		return fieldContainsArray(t.Inner, visited)
	case typegraph.Custom:
		return containsArrayField(t, visited)
	default:
		return false
	}
}

func isOrderable(t *typegraph.Node) bool {
	if t.IsUnknown() {
		return true
	}
	switch t.Kind {
	case typegraph.Int, typegraph.Char, typegraph.Float:
		return true
	default:
		return false
	}
}

func (a *Analyzer) VisitUnaryExpr(n *ast.UnaryExpr) {
	et := a.infer(n.Operand)
	if a.failed() {
		return
	}
	switch n.Op {
	case token.PLUS, token.MINUS:
		a.constrain(et, typegraph.TInt, n.Operand.Line(), diagnostics.ErrTypeMismatch, "operand must be int")
		n.SetResolvedType(typegraph.TInt)
	case token.PLUSF, token.MINUSF:
		a.constrain(et, typegraph.TFloat, n.Operand.Line(), diagnostics.ErrTypeMismatch, "operand must be float")
		n.SetResolvedType(typegraph.TFloat)
	case token.NOT:
		a.constrain(et, typegraph.TBool, n.Operand.Line(), diagnostics.ErrTypeMismatch, "operand must be bool")
		n.SetResolvedType(typegraph.TBool)
	case token.BANG:
		result := a.inf.FreshUnknown()
		a.constrain(et, typegraph.NewRef(result), n.Line(), diagnostics.ErrTypeMismatch, "! requires a reference")
		n.SetResolvedType(result)
	case token.DELETE:
		fresh := a.inf.FreshUnknown()
		a.constrain(et, typegraph.NewRef(fresh), n.Line(), diagnostics.ErrTypeMismatch, "delete requires a reference")
		n.SetResolvedType(typegraph.TUnit)
	default:
		a.failAt(n.Line(), diagnostics.ErrTypeMismatch, "unsupported unary operator")
	}
}

func (a *Analyzer) VisitAssignExpr(n *ast.AssignExpr) {
	lt := a.infer(n.Target)
	if a.failed() {
		return
	}
	vt := a.infer(n.Value)
	if a.failed() {
		return
	}
	fresh := a.inf.FreshUnknown()
	a.constrain(lt, typegraph.NewRef(fresh), n.Target.Line(), diagnostics.ErrNotAnLValue,
		"assignment target must be a reference")
	a.constrain(vt, fresh, n.Value.Line(), diagnostics.ErrTypeMismatch,
		"assigned value does not match the reference's type")
	n.SetResolvedType(typegraph.TUnit)
}

func (a *Analyzer) VisitSeqExpr(n *ast.SeqExpr) {
	a.infer(n.First)
	if a.failed() {
		return
	}
	rt := a.infer(n.Second)
	if a.failed() {
		return
	}
	n.SetResolvedType(rt)
}

func (a *Analyzer) VisitNewExpr(n *ast.NewExpr) {
	t := a.resolveTypeExpr(n.TypeAST)
	if a.failed() {
		return
	}
	if t.IsArray() {
		a.failAt(n.Line(), diagnostics.ErrArrayOfArray, "new cannot allocate an array; use 'new array[...] of T'")
		return
	}
	n.SetResolvedType(typegraph.NewRef(t))
}

func (a *Analyzer) VisitNewArrayExpr(n *ast.NewArrayExpr) {
	for _, sz := range n.Sizes {
		st := a.infer(sz)
		if a.failed() {
			return
		}
		a.constrain(st, typegraph.TInt, sz.Line(), diagnostics.ErrTypeMismatch, "array size must be int")
	}
	elem := a.resolveTypeExpr(n.Elem)
	if a.failed() {
		return
	}
	if elem.IsArray() {
		a.failAt(n.Line(), diagnostics.ErrArrayOfArray, "an array's element type cannot itself be an array")
		return
	}
	n.SetResolvedType(typegraph.NewArray(typegraph.NewRef(elem), len(n.Sizes)))
}

func (a *Analyzer) VisitIfExpr(n *ast.IfExpr) {
	ct := a.infer(n.Cond)
	if a.failed() {
		return
	}
	a.constrain(ct, typegraph.TBool, n.Cond.Line(), diagnostics.ErrTypeMismatch, "if condition must be bool")
	tt := a.infer(n.Then)
	if a.failed() {
		return
	}
	if n.Else == nil {
		a.constrain(tt, typegraph.TUnit, n.Then.Line(), diagnostics.ErrTypeMismatch, "if without else must be unit")
		n.SetResolvedType(typegraph.TUnit)
		return
	}
	et := a.infer(n.Else)
	if a.failed() {
		return
	}
	a.constrain(tt, et, n.Line(), diagnostics.ErrTypeMismatch, "if branches must have the same type")
	n.SetResolvedType(tt)
}

func (a *Analyzer) VisitWhileExpr(n *ast.WhileExpr) {
	ct := a.infer(n.Cond)
	if a.failed() {
		return
	}
	a.constrain(ct, typegraph.TBool, n.Cond.Line(), diagnostics.ErrTypeMismatch, "while condition must be bool")
	bt := a.infer(n.Body)
	if a.failed() {
		return
	}
	a.constrain(bt, typegraph.TUnit, n.Body.Line(), diagnostics.ErrTypeMismatch, "while body must be unit")
	n.SetResolvedType(typegraph.TUnit)
}

func (a *Analyzer) VisitForExpr(n *ast.ForExpr) {
	st := a.infer(n.Start)
	if a.failed() {
		return
	}
	a.constrain(st, typegraph.TInt, n.Start.Line(), diagnostics.ErrTypeMismatch, "for start must be int")
	ft := a.infer(n.Finish)
	if a.failed() {
		return
	}
	a.constrain(ft, typegraph.TInt, n.Finish.Line(), diagnostics.ErrTypeMismatch, "for end must be int")

	a.terms.OpenScope()
	a.terms.InsertRaw(n.Var, typegraph.TInt)
	bt := a.infer(n.Body)
	a.terms.CloseScope(true)
	if a.failed() {
		return
	}
	a.constrain(bt, typegraph.TUnit, n.Body.Line(), diagnostics.ErrTypeMismatch, "for body must be unit")
	n.SetResolvedType(typegraph.TUnit)
}

// VisitCallExpr disambiguates a constructor call from a function call by
// checking the constructor table first (§3 CallExpr comment, §4.4).
func (a *Analyzer) VisitCallExpr(n *ast.CallExpr) {
	if ctor := a.ctors.Lookup(n.Callee.Name); ctor != nil {
		if len(n.Args) != len(ctor.Fields) {
			a.failAt(n.Line(), diagnostics.ErrArity, "constructor %q expects %d argument(s), got %d",
				n.Callee.Name, len(ctor.Fields), len(n.Args))
			return
		}
		for i, arg := range n.Args {
			at := a.infer(arg)
			if a.failed() {
				return
			}
			a.constrain(at, ctor.Fields[i], arg.Line(), diagnostics.ErrTypeMismatch,
				"argument %d to %q has the wrong type", i+1, n.Callee.Name)
		}
		n.Callee.SetResolvedType(ctor)
		n.SetResolvedType(ctor.Parent)
		return
	}

	sym := a.terms.Lookup(n.Callee.Name)
	if sym == nil {
		a.failAt(n.Line(), diagnostics.ErrUnknownIdent, "unknown identifier %q", n.Callee.Name)
		return
	}
	n.Callee.SetResolvedType(sym.Type)

	if fn := a.inf.TryApply(sym.Type); fn.Kind == typegraph.Function && len(fn.Params) != len(n.Args) {
		a.failAt(n.Line(), diagnostics.ErrPartialApp,
			"%q expects %d argument(s), got %d (no partial application)", n.Callee.Name, len(fn.Params), len(n.Args))
		return
	}

	argTypes := make([]*typegraph.Node, len(n.Args))
	for i, arg := range n.Args {
		argTypes[i] = a.infer(arg)
		if a.failed() {
			return
		}
	}
	result := a.inf.FreshUnknown()
	a.constrain(sym.Type, typegraph.NewFunction(argTypes, result), n.Line(), diagnostics.ErrTypeMismatch,
		"call to %q does not match its function type", n.Callee.Name)
	n.SetResolvedType(result)
}

func (a *Analyzer) VisitIndexExpr(n *ast.IndexExpr) {
	at := a.infer(n.Array)
	if a.failed() {
		return
	}
	for _, idx := range n.Indices {
		it := a.infer(idx)
		if a.failed() {
			return
		}
		a.constrain(it, typegraph.TInt, idx.Line(), diagnostics.ErrTypeMismatch, "array index must be int")
	}
	elemRef := a.inf.FreshUnknown()
	wanted := typegraph.NewArray(elemRef, len(n.Indices))
	a.constrain(at, wanted, n.Array.Line(), diagnostics.ErrTypeMismatch,
		"expected an array of %d dimension(s)", len(n.Indices))
	n.SetResolvedType(elemRef)
}

func (a *Analyzer) VisitDimExpr(n *ast.DimExpr) {
	at := a.infer(n.Array)
	if a.failed() {
		return
	}
	idx := n.Index
	if idx == 0 {
		idx = 1
	}
	elem := a.inf.FreshUnknown()
	a.constrain(at, typegraph.NewArrayLowerBound(elem, idx), n.Array.Line(), diagnostics.ErrTypeMismatch,
		"dim requires an array of at least %d dimension(s)", idx)
	n.SetResolvedType(typegraph.TInt)
}

func (a *Analyzer) VisitLetInExpr(n *ast.LetInExpr) {
	a.terms.OpenScope()
	n.Def.Accept(a)
	if a.failed() {
		a.terms.CloseScope(true)
		return
	}
	bt := a.infer(n.Body)
	a.terms.CloseScope(true)
	if a.failed() {
		return
	}
	n.SetResolvedType(bt)
}

func (a *Analyzer) VisitMatchExpr(n *ast.MatchExpr) {
	st := a.infer(n.Subject)
	if a.failed() {
		return
	}
	var resultType *typegraph.Node
	for _, clause := range n.Clauses {
		a.terms.OpenScope()
		a.analyzePattern(clause.Pattern, st)
		if a.failed() {
			a.terms.CloseScope(true)
			return
		}
		bt := a.infer(clause.Body)
		a.terms.CloseScope(true)
		if a.failed() {
			return
		}
		if resultType == nil {
			resultType = bt
		} else {
			a.constrain(resultType, bt, clause.Body.Line(), diagnostics.ErrTypeMismatch,
				"match clauses must have the same result type")
		}
	}
	n.SetResolvedType(resultType)
}

// analyzePattern binds pattern-level identifiers into the current (already
// open) scope and constrains the pattern's shape against target, the
// match-target's resolved type (§4.4's pattern-typing rules).
func (a *Analyzer) analyzePattern(p ast.Pattern, target *typegraph.Node) {
	if a.failed() {
		return
	}
	switch pat := p.(type) {
	case *ast.LiteralPattern:
		lt := a.infer(pat.Value)
		if a.failed() {
			return
		}
		a.constrain(target, lt, pat.Line(), diagnostics.ErrTypeMismatch,
			"pattern literal does not match the matched value's type")
		pat.SetResolvedType(lt)
	case *ast.IdPattern:
		a.terms.InsertRaw(pat.Name, target)
		pat.SetResolvedType(target)
	case *ast.WildcardPattern:
		pat.SetResolvedType(target)
	case *ast.ConstructorPattern:
		ctor := a.ctors.Lookup(pat.Name)
		if ctor == nil {
			a.failAt(pat.Line(), diagnostics.ErrUnknownCtor, "unknown constructor %q", pat.Name)
			return
		}
		if len(pat.SubPats) != len(ctor.Fields) {
			a.failAt(pat.Line(), diagnostics.ErrArity, "constructor pattern %q expects %d field(s), got %d",
				pat.Name, len(ctor.Fields), len(pat.SubPats))
			return
		}
		a.constrain(target, ctor.Parent, pat.Line(), diagnostics.ErrTypeMismatch,
			"constructor pattern %q does not match the matched value's type", pat.Name)
		for i, sub := range pat.SubPats {
			a.analyzePattern(sub, ctor.Fields[i])
			if a.failed() {
				return
			}
		}
		pat.SetResolvedType(ctor.Parent)
	default:
		a.failAt(p.Line(), diagnostics.ErrTypeMismatch, "unrecognized pattern")
	}
}
