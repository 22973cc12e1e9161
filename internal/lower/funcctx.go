package lower

import (
	"fmt"

	"github.com/ZOrfeas/llamac/internal/ast"
	"github.com/ZOrfeas/llamac/internal/diagnostics"
	"github.com/ZOrfeas/llamac/internal/ir"
	"github.com/ZOrfeas/llamac/internal/liveness"
	"github.com/ZOrfeas/llamac/internal/token"
	"github.com/ZOrfeas/llamac/internal/typegraph"
)

// scalarSize is the byte footprint lowering uses for GC_malloc_atomic
// sizing; a conservative 8-byte slot per field keeps struct/descriptor
// layout uniform regardless of a field's actual IR type (§4.6's
// "Custom/array object layout" note).
const scalarSize = 8

// funcCtx is the per-function lowering state: the block currently being
// appended to, and the stack of name->register scopes a let-in/match
// clause/for-loop opens and closes, mirroring symbols.TermTable's own
// scope-stack shape but holding SSA values instead of TG types.
type funcCtx struct {
	lw     *Lowerer
	fn     *ir.Function
	blk    *ir.Block
	locals []map[string]ir.Value
}

func (fc *funcCtx) push() { fc.locals = append(fc.locals, map[string]ir.Value{}) }
func (fc *funcCtx) pop()  { fc.locals = fc.locals[:len(fc.locals)-1] }

func (fc *funcCtx) bind(name string, v ir.Value) {
	fc.locals[len(fc.locals)-1][name] = v
}

func (fc *funcCtx) lookupLocal(name string) (ir.Value, bool) {
	for i := len(fc.locals) - 1; i >= 0; i-- {
		if v, ok := fc.locals[i][name]; ok {
			return v, true
		}
	}
	return ir.Value{}, false
}

func (fc *funcCtx) emit(i ir.Instr) { fc.blk.Emit(i) }

func (fc *funcCtx) call(result string, t ir.IRType, callee ir.Value, args ...ir.Value) ir.Value {
	allArgs := append([]ir.Value{callee}, args...)
	fc.emit(ir.Instr{Result: result, Type: t, Op: "call", Args: allArgs})
	return ir.Reg(result, t)
}

func (fc *funcCtx) newBlock(prefix string) *ir.Block {
	return fc.fn.NewBlock(fc.lw.freshLabel(prefix))
}

// --- identifiers and globals ---

// lowerIdentifier resolves a bare name reference: a local (param or
// let/match-bound register) is used directly; any other name is a global
// — a top-level function used as a first-class value yields its code
// pointer, anything else (a param-less top-level constant, or a prelude
// name like "pi") is called with zero arguments, the uniform "thunk"
// convention documented on lowerTopLevelBinding.
func (fc *funcCtx) lowerIdentifier(n *ast.Identifier) ir.Value {
	if v, ok := fc.lookupLocal(n.Name); ok {
		return v
	}
	tg := fc.lw.resolvedType(n)
	irT := GetIRTypeEquivalent(tg)
	if tg.Kind == typegraph.Function {
		return ir.Global(n.Name, irT)
	}
	r := fc.lw.freshTemp()
	return fc.call(r, irT, ir.Global(n.Name, irT))
}

func (fc *funcCtx) lowerExpr(e ast.Expression) ir.Value {
	if fc.lw.failed() {
		return ir.Value{}
	}
	switch n := e.(type) {
	case *ast.IntLiteral:
		return ir.ConstInt(n.Value)
	case *ast.FloatLiteral:
		return ir.ConstFloat(n.Value)
	case *ast.CharLiteral:
		return ir.Value{Type: ir.TI8, IsConst: true, ConstInt: int64(n.Value)}
	case *ast.BoolLiteral:
		return ir.ConstBool(n.Value)
	case *ast.UnitLiteral:
		return ir.Value{Type: ir.TVoid}
	case *ast.StringLiteral:
		return fc.lowerStringLiteral(n)
	case *ast.Identifier:
		return fc.lowerIdentifier(n)
	case *ast.BinaryExpr:
		return fc.lowerBinary(n)
	case *ast.UnaryExpr:
		return fc.lowerUnary(n)
	case *ast.AssignExpr:
		return fc.lowerAssign(n)
	case *ast.SeqExpr:
		fc.lowerExpr(n.First)
		return fc.lowerExpr(n.Second)
	case *ast.NewExpr:
		return fc.lowerNew(n)
	case *ast.NewArrayExpr:
		return fc.lowerNewArray(n)
	case *ast.IfExpr:
		return fc.lowerIf(n)
	case *ast.WhileExpr:
		return fc.lowerWhile(n)
	case *ast.ForExpr:
		return fc.lowerFor(n)
	case *ast.CallExpr:
		return fc.lowerCall(n)
	case *ast.IndexExpr:
		return fc.lowerIndexAddr(n)
	case *ast.DimExpr:
		return fc.lowerDim(n)
	case *ast.LetInExpr:
		return fc.lowerLetIn(n)
	case *ast.MatchExpr:
		return fc.lowerMatch(n)
	default:
		fc.lw.fail(diagnostics.ErrIRVerify, e.Line(), "internal: unhandled expression kind in lowering")
		return ir.Value{}
	}
}

func (fc *funcCtx) lowerStringLiteral(n *ast.StringLiteral) ir.Value {
	name := fmt.Sprintf("str.%d", fc.lw.tmp)
	fc.lw.tmp++
	fc.lw.mod.AddGlobal(&ir.Global{Name: name, Type: ir.TPtr, Init: fmt.Sprintf("%q", n.Value)})
	payload := ir.Global(name, ir.TPtr)
	desc := fc.lw.freshTemp()
	fc.emit(ir.Instr{Result: desc, Type: ir.TPtr, Op: "call",
		Args: []ir.Value{ir.Global("GC_malloc", ir.TPtr), ir.ConstInt(descriptorSize())}, Extra: "; array descriptor"})
	fc.emit(ir.Instr{Op: "setfield", Args: []ir.Value{ir.Reg(desc, ir.TPtr), payload}, Extra: "0 ; payload"})
	fc.emit(ir.Instr{Op: "setfield", Args: []ir.Value{ir.Reg(desc, ir.TPtr), ir.ConstInt(1)}, Extra: "1 ; dims"})
	return ir.Reg(desc, ir.TPtr)
}

// --- operators ---

func (fc *funcCtx) lowerBinary(n *ast.BinaryExpr) ir.Value {
	switch n.Op {
	case token.EQ, token.NEQ, token.EQEQ, token.NEQEQ:
		return fc.lowerEquality(n)
	}
	l := fc.lowerExpr(n.Left)
	r := fc.lowerExpr(n.Right)
	resT := GetIRTypeEquivalent(fc.lw.resolvedType(n))
	isFloat := fc.lw.resolvedType(n.Left).Kind == typegraph.Float
	op, cmp := binOp(n.Op, isFloat)
	result := fc.lw.freshTemp()
	if cmp {
		fc.emit(ir.Instr{Result: result, Type: ir.TI1, Op: op, Args: []ir.Value{l, r}})
		return ir.Reg(result, ir.TI1)
	}
	fc.emit(ir.Instr{Result: result, Type: resT, Op: op, Args: []ir.Value{l, r}})
	return ir.Reg(result, resT)
}

// binOp picks the opcode for n.Op. PLUSF/MINUSF/STARF/SLASHF are their
// own tokens (+./-./*.//.), so they always pick the float opcode
// regardless of isFloat; LT/GT/LE/GE have no float-specific token (§4.6:
// polymorphic over int/char/float), so isFloat — the operand's resolved
// type — is what picks fcmp's ordered variant over icmp's signed one.
func binOp(op token.Type, isFloat bool) (opcode string, isComparison bool) {
	switch op {
	case token.PLUS:
		return "add", false
	case token.PLUSF:
		return "fadd", false
	case token.MINUS:
		return "sub", false
	case token.MINUSF:
		return "fsub", false
	case token.STAR:
		return "mul", false
	case token.STARF:
		return "fmul", false
	case token.SLASH:
		return "div", false
	case token.SLASHF:
		return "fdiv", false
	case token.MOD:
		return "srem", false
	case token.POW:
		return "call @pow", false
	case token.AND:
		return "and", false
	case token.OR:
		return "or", false
	case token.LT:
		if isFloat {
			return "fcmp olt", true
		}
		return "icmp slt", true
	case token.GT:
		if isFloat {
			return "fcmp ogt", true
		}
		return "icmp sgt", true
	case token.LE:
		if isFloat {
			return "fcmp ole", true
		}
		return "icmp sle", true
	case token.GE:
		if isFloat {
			return "fcmp oge", true
		}
		return "icmp sge", true
	default:
		return "?", false
	}
}

// lowerEquality handles all four equality operators in one place: EQ/NEQ
// is reference equality (direct icmp on the IR values, which for scalars
// already means value equality and for Ptr means pointer identity);
// EQEQ/NEQEQ is structural equality, recursing through Ref and dispatching
// to a per-Custom helper (§4.6). Arrays/functions never reach here —
// the analyzer already refused them under EQEQ/NEQEQ, and under EQ/NEQ
// plain pointer identity is exactly what's wanted.
func (fc *funcCtx) lowerEquality(n *ast.BinaryExpr) ir.Value {
	lt := fc.lw.resolvedType(n.Left)
	rt := fc.lw.resolvedType(n.Right)
	l := fc.lowerExpr(n.Left)
	r := fc.lowerExpr(n.Right)
	structural := n.Op == token.EQEQ || n.Op == token.NEQEQ
	eq := fc.compareEqual(structural, lt, rt, l, r)
	if n.Op == token.NEQ || n.Op == token.NEQEQ {
		result := fc.lw.freshTemp()
		fc.emit(ir.Instr{Result: result, Type: ir.TI1, Op: "xor", Args: []ir.Value{eq, ir.ConstBool(true)}})
		return ir.Reg(result, ir.TI1)
	}
	return eq
}

func (fc *funcCtx) compareEqual(structural bool, lt, rt *typegraph.Node, l, r ir.Value) ir.Value {
	if structural && lt.Kind == typegraph.Ref {
		lv := fc.loadRef(l, lt.Inner)
		rv := fc.loadRef(r, rt.Inner)
		return fc.compareEqual(true, lt.Inner, rt.Inner, lv, rv)
	}
	if structural && lt.Kind == typegraph.Custom {
		fn := fc.lw.getOrMakeStructEq(lt)
		result := fc.lw.freshTemp()
		return fc.call(result, ir.TI1, ir.Global(fn, ir.TI1), l, r)
	}
	result := fc.lw.freshTemp()
	if lt.Kind == typegraph.Float {
		// IEEE oeq (§4.6), reached both directly (a == b on two floats)
		// and structurally (a Custom's float field, recursed into here
		// from getOrMakeStructEq).
		fc.emit(ir.Instr{Result: result, Type: ir.TI1, Op: "fcmp oeq", Args: []ir.Value{l, r}})
		return ir.Reg(result, ir.TI1)
	}
	fc.emit(ir.Instr{Result: result, Type: ir.TI1, Op: "icmp eq", Args: []ir.Value{l, r}})
	return ir.Reg(result, ir.TI1)
}

func (fc *funcCtx) loadRef(ptr ir.Value, inner *typegraph.Node) ir.Value {
	t := GetIRTypeEquivalent(inner)
	result := fc.lw.freshTemp()
	fc.emit(ir.Instr{Result: result, Type: t, Op: "load", Args: []ir.Value{ptr}})
	return ir.Reg(result, t)
}

// getOrMakeStructEq returns the name of custom's structural-equality
// helper, defining it on first demand (§4.6): compare tags, then for the
// matching constructor compare every field recursively.
func (lw *Lowerer) getOrMakeStructEq(custom *typegraph.Node) string {
	if name, ok := lw.structEq[custom]; ok {
		return name
	}
	name := custom.Name + ".streq"
	lw.structEq[custom] = name // reserve before recursing, breaks Custom/Custom cycles

	fn := lw.mod.DefineFunction(name, []ir.IRType{ir.TPtr, ir.TPtr}, []string{"a", "b"}, ir.TI1)
	fc := &funcCtx{lw: lw, fn: fn, locals: []map[string]ir.Value{{}}}
	fc.blk = fn.NewBlock("entry")

	tagA := fc.lw.freshTemp()
	fc.emit(ir.Instr{Result: tagA, Type: ir.TI32, Op: "getfield", Args: []ir.Value{ir.Reg("a", ir.TPtr)}, Extra: "0 ; tag"})
	tagB := fc.lw.freshTemp()
	fc.emit(ir.Instr{Result: tagB, Type: ir.TI32, Op: "getfield", Args: []ir.Value{ir.Reg("b", ir.TPtr)}, Extra: "0 ; tag"})
	tagsEq := fc.lw.freshTemp()
	fc.emit(ir.Instr{Result: tagsEq, Type: ir.TI1, Op: "icmp eq", Args: []ir.Value{ir.Reg(tagA, ir.TI32), ir.Reg(tagB, ir.TI32)}})

	mismatch := fn.NewBlock(lw.freshLabel("streq.mismatch"))
	mismatch.Emit(ir.Instr{Op: "ret", Type: ir.TI1, Args: []ir.Value{ir.ConstBool(false)}})

	cur := fc.blk
	for idx, ctor := range custom.Constructors {
		armBlk := fn.NewBlock(lw.freshLabel("streq.arm"))
		nextBlk := fn.NewBlock(lw.freshLabel("streq.next"))
		tagMatches := lw.freshTemp()
		cur.Emit(ir.Instr{Result: tagMatches, Type: ir.TI1, Op: "icmp eq",
			Args: []ir.Value{ir.Reg(tagA, ir.TI32), ir.ConstInt(int64(idx))}})
		and := lw.freshTemp()
		cur.Emit(ir.Instr{Result: and, Type: ir.TI1, Op: "and",
			Args: []ir.Value{ir.Reg(tagsEq, ir.TI1), ir.Reg(tagMatches, ir.TI1)}})
		cur.Emit(ir.Instr{Op: "br", Args: []ir.Value{ir.Reg(and, ir.TI1),
			{Name: armBlk.Label}, {Name: nextBlk.Label}}})

		abc := &funcCtx{lw: lw, fn: fn, blk: armBlk, locals: []map[string]ir.Value{{}}}
		var cond ir.Value = ir.ConstBool(true)
		for i, field := range ctor.Fields {
			if field.Kind == typegraph.Array || field.Kind == typegraph.Function {
				lw.fail(diagnostics.ErrStructEqArray, 0,
					"%q cannot derive structural equality: constructor %q has an array or function field", custom.Name, ctor.Name)
				return name
			}
			av := abc.lw.freshTemp()
			ft := GetIRTypeEquivalent(field)
			armBlk.Emit(ir.Instr{Result: av, Type: ft, Op: "getfield",
				Args: []ir.Value{ir.Reg("a", ir.TPtr)}, Extra: fmt.Sprintf("%d", i+1)})
			bv := abc.lw.freshTemp()
			armBlk.Emit(ir.Instr{Result: bv, Type: ft, Op: "getfield",
				Args: []ir.Value{ir.Reg("b", ir.TPtr)}, Extra: fmt.Sprintf("%d", i+1)})
			fieldEq := abc.compareEqual(true, field, field, ir.Reg(av, ft), ir.Reg(bv, ft))
			if i == 0 {
				cond = fieldEq
			} else {
				merged := abc.lw.freshTemp()
				armBlk.Emit(ir.Instr{Result: merged, Type: ir.TI1, Op: "and", Args: []ir.Value{cond, fieldEq}})
				cond = ir.Reg(merged, ir.TI1)
			}
		}
		armBlk.Emit(ir.Instr{Op: "ret", Type: ir.TI1, Args: []ir.Value{cond}})
		cur = nextBlk
	}
	cur.Emit(ir.Instr{Op: "br", Args: []ir.Value{{Name: mismatch.Label}}})

	return name
}

func (fc *funcCtx) lowerUnary(n *ast.UnaryExpr) ir.Value {
	switch n.Op {
	case token.BANG:
		ptr := fc.lowerExpr(n.Operand)
		innerT := GetIRTypeEquivalent(fc.lw.resolvedType(n))
		result := fc.lw.freshTemp()
		fc.emit(ir.Instr{Result: result, Type: innerT, Op: "load", Args: []ir.Value{ptr}})
		return ir.Reg(result, innerT)
	case token.DELETE:
		ptr := fc.lowerExpr(n.Operand)
		fc.emit(ir.Instr{Op: "call", Type: ir.TVoid, Args: []ir.Value{ir.Global("GC_free", ir.TVoid), ptr}})
		return ir.Value{Type: ir.TVoid}
	case token.MINUS:
		v := fc.lowerExpr(n.Operand)
		result := fc.lw.freshTemp()
		fc.emit(ir.Instr{Result: result, Type: ir.TI32, Op: "sub", Args: []ir.Value{ir.ConstInt(0), v}})
		return ir.Reg(result, ir.TI32)
	case token.MINUSF:
		v := fc.lowerExpr(n.Operand)
		result := fc.lw.freshTemp()
		fc.emit(ir.Instr{Result: result, Type: ir.TF80, Op: "sub", Args: []ir.Value{ir.ConstFloat(0), v}})
		return ir.Reg(result, ir.TF80)
	case token.PLUS, token.PLUSF:
		return fc.lowerExpr(n.Operand)
	case token.NOT:
		v := fc.lowerExpr(n.Operand)
		result := fc.lw.freshTemp()
		fc.emit(ir.Instr{Result: result, Type: ir.TI1, Op: "xor", Args: []ir.Value{v, ir.ConstBool(true)}})
		return ir.Reg(result, ir.TI1)
	default:
		fc.lw.fail(diagnostics.ErrIRVerify, n.Line(), "internal: unhandled unary operator")
		return ir.Value{}
	}
}

func (fc *funcCtx) lowerAssign(n *ast.AssignExpr) ir.Value {
	ptr := fc.lowerExpr(n.Target)
	v := fc.lowerExpr(n.Value)
	fc.emit(ir.Instr{Op: "store", Args: []ir.Value{ptr, v}})
	return ir.Value{Type: ir.TVoid}
}

// --- allocation ---

// lowerNew allocates the single scalarSize-wide slot a `new` ref points
// at. §6 ties `new`'s lifetime (user-managed, freed explicitly by
// `delete`) to GC_malloc_atomic_uncollectable specifically, regardless
// of the referenced type — unlike every other allocation site, which
// picks atomic vs. traced by whether the payload itself holds pointers.
func (fc *funcCtx) lowerNew(n *ast.NewExpr) ir.Value {
	result := fc.lw.freshTemp()
	fc.call(result, ir.TPtr, ir.Global("GC_malloc_atomic_uncollectable", ir.TPtr), ir.ConstInt(scalarSize))
	return ir.Reg(result, ir.TPtr)
}

// lowerNewArray allocates a descriptor { payload, dims, sizes } plus a
// flat payload buffer of dims-product * elemSize bytes, and a GC-owned
// i32[dims] sizes buffer (§4.6's fixed-shape descriptor, see
// arrayDescriptor). Multi-dimensional indexing later addresses this same
// flat buffer in Horner form.
func (fc *funcCtx) lowerNewArray(n *ast.NewArrayExpr) ir.Value {
	elem := fc.lw.resolvedType(n)
	elemRefT := elem.Inner // Array's Inner is Ref(elemType)
	var elemT *typegraph.Node
	if elemRefT != nil {
		elemT = elemRefT.Inner
	}
	irElemT := GetIRTypeEquivalent(elemT)

	sizes := make([]ir.Value, len(n.Sizes))
	for i, s := range n.Sizes {
		sizes[i] = fc.lowerExpr(s)
	}

	count := sizes[0]
	for _, s := range sizes[1:] {
		r := fc.lw.freshTemp()
		fc.emit(ir.Instr{Result: r, Type: ir.TI32, Op: "mul", Args: []ir.Value{count, s}})
		count = ir.Reg(r, ir.TI32)
	}

	alloc := "GC_malloc_atomic"
	if irElemT.Kind == ir.Ptr {
		alloc = "GC_malloc"
	}
	// Each element takes scalarSize bytes, except an x86_fp80 float, which
	// takes 16.
	elemSize := int64(scalarSize)
	if irElemT.Kind == ir.F80 {
		elemSize = 16
	}
	payloadSize := fc.lw.freshTemp()
	fc.emit(ir.Instr{Result: payloadSize, Type: ir.TI32, Op: "mul", Args: []ir.Value{count, ir.ConstInt(elemSize)}})
	payload := fc.lw.freshTemp()
	fc.call(payload, ir.TPtr, ir.Global(alloc, ir.TPtr), ir.Reg(payloadSize, ir.TI32))

	sizesBuf := fc.lw.freshTemp()
	fc.call(sizesBuf, ir.TPtr, ir.Global("GC_malloc_atomic", ir.TPtr), ir.ConstInt(int64(len(n.Sizes)*4)))
	for i, s := range sizes {
		fc.emit(ir.Instr{Op: "setfield", Args: []ir.Value{ir.Reg(sizesBuf, ir.TPtr), s}, Extra: fmt.Sprintf("%d ; sizes[%d]", i, i)})
	}

	desc := fc.lw.freshTemp()
	fc.call(desc, ir.TPtr, ir.Global("GC_malloc", ir.TPtr), ir.ConstInt(descriptorSize()))
	fc.emit(ir.Instr{Op: "setfield", Args: []ir.Value{ir.Reg(desc, ir.TPtr), ir.Reg(payload, ir.TPtr)}, Extra: "0 ; payload"})
	fc.emit(ir.Instr{Op: "setfield", Args: []ir.Value{ir.Reg(desc, ir.TPtr), ir.ConstInt(int64(len(n.Sizes)))}, Extra: "1 ; dims"})
	fc.emit(ir.Instr{Op: "setfield", Args: []ir.Value{ir.Reg(desc, ir.TPtr), ir.Reg(sizesBuf, ir.TPtr)}, Extra: "2 ; sizes"})
	return ir.Reg(desc, ir.TPtr)
}

// --- control flow ---

func (fc *funcCtx) lowerIf(n *ast.IfExpr) ir.Value {
	cond := fc.lowerExpr(n.Cond)
	thenBlk := fc.newBlock("if.then")
	mergeBlk := fc.newBlock("if.merge")

	if n.Else == nil {
		fc.emit(ir.Instr{Op: "br", Args: []ir.Value{cond, {Name: thenBlk.Label}, {Name: mergeBlk.Label}}})
		fc.blk = thenBlk
		fc.lowerExpr(n.Then)
		if !fc.lw.failed() {
			fc.emit(ir.Instr{Op: "br", Args: []ir.Value{{Name: mergeBlk.Label}}})
		}
		fc.blk = mergeBlk
		return ir.Value{Type: ir.TVoid}
	}

	elseBlk := fc.newBlock("if.else")
	fc.emit(ir.Instr{Op: "br", Args: []ir.Value{cond, {Name: thenBlk.Label}, {Name: elseBlk.Label}}})

	resT := GetIRTypeEquivalent(fc.lw.resolvedType(n))
	slot := fc.lw.freshTemp()
	fc.blk.Emit(ir.Instr{Result: slot, Type: ir.TPtr, Op: "alloca", Extra: resT.String()})

	fc.blk = thenBlk
	tv := fc.lowerExpr(n.Then)
	if !fc.lw.failed() {
		fc.emit(ir.Instr{Op: "store", Args: []ir.Value{ir.Reg(slot, ir.TPtr), tv}})
		fc.emit(ir.Instr{Op: "br", Args: []ir.Value{{Name: mergeBlk.Label}}})
	}

	fc.blk = elseBlk
	ev := fc.lowerExpr(n.Else)
	if !fc.lw.failed() {
		fc.emit(ir.Instr{Op: "store", Args: []ir.Value{ir.Reg(slot, ir.TPtr), ev}})
		fc.emit(ir.Instr{Op: "br", Args: []ir.Value{{Name: mergeBlk.Label}}})
	}

	fc.blk = mergeBlk
	result := fc.lw.freshTemp()
	fc.emit(ir.Instr{Result: result, Type: resT, Op: "load", Args: []ir.Value{ir.Reg(slot, ir.TPtr)}})
	return ir.Reg(result, resT)
}

func (fc *funcCtx) lowerWhile(n *ast.WhileExpr) ir.Value {
	condBlk := fc.newBlock("while.cond")
	bodyBlk := fc.newBlock("while.body")
	mergeBlk := fc.newBlock("while.merge")

	fc.emit(ir.Instr{Op: "br", Args: []ir.Value{{Name: condBlk.Label}}})

	fc.blk = condBlk
	cond := fc.lowerExpr(n.Cond)
	fc.emit(ir.Instr{Op: "br", Args: []ir.Value{cond, {Name: bodyBlk.Label}, {Name: mergeBlk.Label}}})

	fc.blk = bodyBlk
	fc.lowerExpr(n.Body)
	if !fc.lw.failed() {
		fc.emit(ir.Instr{Op: "br", Args: []ir.Value{{Name: condBlk.Label}}})
	}

	fc.blk = mergeBlk
	return ir.Value{Type: ir.TVoid}
}

func (fc *funcCtx) lowerFor(n *ast.ForExpr) ir.Value {
	start := fc.lowerExpr(n.Start)
	finish := fc.lowerExpr(n.Finish)

	slot := fc.lw.freshTemp()
	fc.emit(ir.Instr{Result: slot, Type: ir.TPtr, Op: "alloca", Extra: "i32"})
	fc.emit(ir.Instr{Op: "store", Args: []ir.Value{ir.Reg(slot, ir.TPtr), start}})

	condBlk := fc.newBlock("for.cond")
	bodyBlk := fc.newBlock("for.body")
	mergeBlk := fc.newBlock("for.merge")
	fc.emit(ir.Instr{Op: "br", Args: []ir.Value{{Name: condBlk.Label}}})

	fc.blk = condBlk
	cur := fc.lw.freshTemp()
	fc.emit(ir.Instr{Result: cur, Type: ir.TI32, Op: "load", Args: []ir.Value{ir.Reg(slot, ir.TPtr)}})
	cmpOp := "icmp sle"
	if n.Down {
		cmpOp = "icmp sge"
	}
	cond := fc.lw.freshTemp()
	fc.emit(ir.Instr{Result: cond, Type: ir.TI1, Op: cmpOp, Args: []ir.Value{ir.Reg(cur, ir.TI32), finish}})
	fc.emit(ir.Instr{Op: "br", Args: []ir.Value{ir.Reg(cond, ir.TI1), {Name: bodyBlk.Label}, {Name: mergeBlk.Label}}})

	fc.blk = bodyBlk
	fc.push()
	fc.bind(n.Var, ir.Reg(cur, ir.TI32))
	fc.lowerExpr(n.Body)
	fc.pop()
	if !fc.lw.failed() {
		step := "add"
		if n.Down {
			step = "sub"
		}
		next := fc.lw.freshTemp()
		fc.emit(ir.Instr{Result: next, Type: ir.TI32, Op: step, Args: []ir.Value{ir.Reg(cur, ir.TI32), ir.ConstInt(1)}})
		fc.emit(ir.Instr{Op: "store", Args: []ir.Value{ir.Reg(slot, ir.TPtr), ir.Reg(next, ir.TI32)}})
		fc.emit(ir.Instr{Op: "br", Args: []ir.Value{{Name: condBlk.Label}}})
	}

	fc.blk = mergeBlk
	return ir.Value{Type: ir.TVoid}
}

// --- calls, constructors, arrays ---

func (fc *funcCtx) lowerCall(n *ast.CallExpr) ir.Value {
	calleeType := fc.lw.resolvedType(n.Callee)
	if calleeType.Kind == typegraph.Constructor {
		return fc.lowerConstructorCall(n, calleeType)
	}
	if _, ok := fc.lookupLocal(n.Callee.Name); !ok {
		if v, ok := fc.lowerIntrinsicCall(n); ok {
			return v
		}
	}

	resT := GetIRTypeEquivalent(fc.lw.resolvedType(n))
	args := make([]ir.Value, len(n.Args))
	for i, a := range n.Args {
		args[i] = fc.lowerExpr(a)
	}

	var callee ir.Value
	if v, ok := fc.lookupLocal(n.Callee.Name); ok {
		callee = v
	} else {
		callee = ir.Global(n.Callee.Name, GetIRTypeEquivalent(calleeType))
	}
	result := fc.lw.freshTemp()
	return fc.call(result, resT, callee, args...)
}

// lowerIntrinsicCall inlines the handful of prelude names declareWrappers
// gives no standalone IR function: incr/decr/float_of_int/int_of_float/
// round/int_of_char/char_of_int are single-instruction scalar conversions,
// and strlen/strcmp/strcpy/strcat take a source array-of-char descriptor
// where the runtime ABI of the same name wants a bare i8* payload, so the
// descriptor has to be unpacked at the call site rather than forwarded
// straight through (forwarding it would silently compare/copy descriptor
// pointers instead of string bytes). Returns ok=false for every other name,
// which falls through lowerCall's generic global-call path.
func (fc *funcCtx) lowerIntrinsicCall(n *ast.CallExpr) (ir.Value, bool) {
	name := n.Callee.Name
	switch name {
	case "incr", "decr":
		ptr := fc.lowerExpr(n.Args[0])
		cur := fc.lw.freshTemp()
		fc.emit(ir.Instr{Result: cur, Type: ir.TI32, Op: "load", Args: []ir.Value{ptr}})
		op := "add"
		if name == "decr" {
			op = "sub"
		}
		next := fc.lw.freshTemp()
		fc.emit(ir.Instr{Result: next, Type: ir.TI32, Op: op, Args: []ir.Value{ir.Reg(cur, ir.TI32), ir.ConstInt(1)}})
		fc.emit(ir.Instr{Op: "store", Args: []ir.Value{ptr, ir.Reg(next, ir.TI32)}})
		return ir.Value{Type: ir.TVoid}, true
	case "float_of_int":
		v := fc.lowerExpr(n.Args[0])
		r := fc.lw.freshTemp()
		fc.emit(ir.Instr{Result: r, Type: ir.TF80, Op: "sitofp", Args: []ir.Value{v}})
		return ir.Reg(r, ir.TF80), true
	case "int_of_float":
		v := fc.lowerExpr(n.Args[0])
		r := fc.lw.freshTemp()
		fc.emit(ir.Instr{Result: r, Type: ir.TI32, Op: "fptosi", Args: []ir.Value{v}})
		return ir.Reg(r, ir.TI32), true
	case "round":
		v := fc.lowerExpr(n.Args[0])
		r := fc.lw.freshTemp()
		fc.emit(ir.Instr{Result: r, Type: ir.TI32, Op: "fptosi_round", Args: []ir.Value{v}})
		return ir.Reg(r, ir.TI32), true
	case "int_of_char":
		v := fc.lowerExpr(n.Args[0])
		r := fc.lw.freshTemp()
		fc.emit(ir.Instr{Result: r, Type: ir.TI32, Op: "zext", Args: []ir.Value{v}})
		return ir.Reg(r, ir.TI32), true
	case "char_of_int":
		v := fc.lowerExpr(n.Args[0])
		r := fc.lw.freshTemp()
		fc.emit(ir.Instr{Result: r, Type: ir.TI8, Op: "trunc", Args: []ir.Value{v}})
		return ir.Reg(r, ir.TI8), true
	case "strlen":
		payload := fc.strPayload(n.Args[0])
		r := fc.lw.freshTemp()
		fc.call(r, ir.TI32, ir.Global("strlen", ir.TI32), payload)
		return ir.Reg(r, ir.TI32), true
	case "strcmp":
		a := fc.strPayload(n.Args[0])
		b := fc.strPayload(n.Args[1])
		r := fc.lw.freshTemp()
		fc.call(r, ir.TI32, ir.Global("strcmp", ir.TI32), a, b)
		return ir.Reg(r, ir.TI32), true
	case "strcpy", "strcat":
		dst := fc.lowerExpr(n.Args[0])
		dstPayload := fc.lw.freshTemp()
		fc.emit(ir.Instr{Result: dstPayload, Type: ir.TPtr, Op: "getfield", Args: []ir.Value{dst}, Extra: "0 ; array payload"})
		srcPayload := fc.strPayload(n.Args[1])
		fc.emit(ir.Instr{Op: "call", Type: ir.TVoid, Args: []ir.Value{ir.Global(name, ir.TVoid), ir.Reg(dstPayload, ir.TPtr), srcPayload}})
		return dst, true
	default:
		return ir.Value{}, false
	}
}

// strPayload extracts the raw null-terminated i8* out of a source
// array-of-char descriptor, for forwarding to a runtime ABI function that
// only knows about bare pointers.
func (fc *funcCtx) strPayload(e ast.Expression) ir.Value {
	desc := fc.lowerExpr(e)
	payload := fc.lw.freshTemp()
	fc.emit(ir.Instr{Result: payload, Type: ir.TPtr, Op: "getfield", Args: []ir.Value{desc}, Extra: "0 ; array payload"})
	return ir.Reg(payload, ir.TPtr)
}

// lowerConstructorCall builds a Custom heap object: a leading i32 tag
// (the constructor's declaration-order index into its owning Custom,
// §3.1/§8) followed by one scalarSize-wide slot per field.
func (fc *funcCtx) lowerConstructorCall(n *ast.CallExpr, ctor *typegraph.Node) ir.Value {
	idx := 0
	for i, c := range ctor.Parent.Constructors {
		if c == ctor {
			idx = i
			break
		}
	}
	size := scalarSize + scalarSize*len(n.Args)
	obj := fc.lw.freshTemp()
	fc.call(obj, ir.TPtr, ir.Global("GC_malloc", ir.TPtr), ir.ConstInt(int64(size)))
	fc.emit(ir.Instr{Op: "setfield", Args: []ir.Value{ir.Reg(obj, ir.TPtr), ir.ConstInt(int64(idx))}, Extra: "0 ; tag"})
	for i, a := range n.Args {
		v := fc.lowerExpr(a)
		fc.emit(ir.Instr{Op: "setfield", Args: []ir.Value{ir.Reg(obj, ir.TPtr), v}, Extra: fmt.Sprintf("%d", i+1)})
	}
	return ir.Reg(obj, ir.TPtr)
}

// lowerIndexAddr computes the address of a[i1,...,ik] inside the array's
// flat payload buffer, Horner form: offset = (...((i1*size2 + i2)*size3 +
// i3)...*sizek + ik); size1 never enters the formula, matching §8
// scenario 4's worked example (a[1,2] at offset 1*4+2=6 in a 4-column
// array). The returned pointer is itself the "ref" value an IndexExpr
// resolves to — no separate boxed cell, per the element-ref invariant.
func (fc *funcCtx) lowerIndexAddr(n *ast.IndexExpr) ir.Value {
	desc := fc.lowerExpr(n.Array)
	payload := fc.lw.freshTemp()
	fc.emit(ir.Instr{Result: payload, Type: ir.TPtr, Op: "getfield", Args: []ir.Value{desc}, Extra: "0 ; payload"})
	sizesPtr := fc.lw.freshTemp()
	fc.emit(ir.Instr{Result: sizesPtr, Type: ir.TPtr, Op: "getfield", Args: []ir.Value{desc}, Extra: "2 ; sizes"})

	indices := make([]ir.Value, len(n.Indices))
	for i, idx := range n.Indices {
		indices[i] = fc.lowerExpr(idx)
	}

	offset := indices[0]
	for i := 1; i < len(indices); i++ {
		sz := fc.lw.freshTemp()
		fc.emit(ir.Instr{Result: sz, Type: ir.TI32, Op: "getfield",
			Args: []ir.Value{ir.Reg(sizesPtr, ir.TPtr)}, Extra: fmt.Sprintf("%d ; sizes[%d]", i, i)})
		mul := fc.lw.freshTemp()
		fc.emit(ir.Instr{Result: mul, Type: ir.TI32, Op: "mul", Args: []ir.Value{offset, ir.Reg(sz, ir.TI32)}})
		add := fc.lw.freshTemp()
		fc.emit(ir.Instr{Result: add, Type: ir.TI32, Op: "add", Args: []ir.Value{ir.Reg(mul, ir.TI32), indices[i]}})
		offset = ir.Reg(add, ir.TI32)
	}

	elemT := GetIRTypeEquivalent(fc.lw.resolvedType(n).Inner)
	addr := fc.lw.freshTemp()
	fc.emit(ir.Instr{Result: addr, Type: ir.TPtr, Op: "gep",
		Args: []ir.Value{ir.Reg(payload, ir.TPtr), offset}, Extra: elemT.String() + " ; element stride"})
	return ir.Reg(addr, ir.TPtr)
}

func (fc *funcCtx) lowerDim(n *ast.DimExpr) ir.Value {
	desc := fc.lowerExpr(n.Array)
	idx := n.Index
	if idx == 0 {
		idx = 1
	}
	sizesPtr := fc.lw.freshTemp()
	fc.emit(ir.Instr{Result: sizesPtr, Type: ir.TPtr, Op: "getfield", Args: []ir.Value{desc}, Extra: "2 ; sizes"})
	result := fc.lw.freshTemp()
	fc.emit(ir.Instr{Result: result, Type: ir.TI32, Op: "getfield",
		Args: []ir.Value{ir.Reg(sizesPtr, ir.TPtr)}, Extra: fmt.Sprintf("%d ; sizes[%d]", idx-1, idx-1)})
	return ir.Reg(result, ir.TI32)
}

// --- let-in and match ---

func (fc *funcCtx) lowerLetIn(n *ast.LetInExpr) ir.Value {
	fc.push()
	switch def := n.Def.(type) {
	case *ast.LetDefinition:
		for _, b := range def.Bindings {
			fc.lowerLocalBinding(b)
			if fc.lw.failed() {
				return ir.Value{}
			}
		}
	case *ast.LetRecDefinition:
		for _, b := range def.Bindings {
			fc.lowerLocalBinding(b)
			if fc.lw.failed() {
				return ir.Value{}
			}
		}
	case *ast.TypeDefinition:
		// introduces no term-level names; nothing to lower
	}
	v := fc.lowerExpr(n.Body)
	fc.pop()
	return v
}

// lowerLocalBinding handles one "name [params] = body" clause reached
// inside a function. A param-less binding is a true local: evaluate once,
// bind the resulting register. A binding with params is a nested function
// and, per §9's decision, is only allowed when it captures nothing: its
// externals (internal/liveness) must be empty, otherwise ErrNestedClosure
// fires. A capture-free nested function is hoisted into the module as an
// ordinary top-level function under a scope-qualified name, and the outer
// name is bound to its code pointer so calls route correctly.
func (fc *funcCtx) lowerLocalBinding(b *ast.Binding) {
	if len(b.Params) == 0 {
		v := fc.lowerExpr(b.Body)
		if fc.lw.failed() {
			return
		}
		fc.bind(b.Name, v)
		return
	}

	paramNames := make([]string, len(b.Params))
	for i, p := range b.Params {
		paramNames[i] = p.Name
	}
	if ext := liveness.Externals(paramNames, b.Body); len(ext) > 0 {
		fc.lw.fail(diagnostics.ErrNestedClosure, b.Line(),
			"nested function %q captures %d enclosing name(s), which this compiler does not support", b.Name, len(ext))
		return
	}

	sym := fc.lw.terms.Lookup(b.Name)
	fnType := fc.lw.inf.DeepSubstitute(sym.Type)
	paramTypes := make([]ir.IRType, len(fnType.Params))
	for i, p := range fnType.Params {
		paramTypes[i] = GetIRTypeEquivalent(p)
	}
	resultType := GetIRTypeEquivalent(fnType.Result)

	mangled := fmt.Sprintf("%s.%s", fc.fn.Name, b.Name)
	fn := fc.lw.mod.DefineFunction(mangled, paramTypes, paramNames, resultType)
	nested := &funcCtx{lw: fc.lw, fn: fn, locals: []map[string]ir.Value{{}}}
	for i, name := range paramNames {
		nested.bind(name, ir.Reg(name, paramTypes[i]))
	}
	nested.blk = fn.NewBlock("entry")
	v := nested.lowerExpr(b.Body)
	if fc.lw.failed() {
		return
	}
	nested.blk.Emit(ir.Instr{Op: "ret", Type: resultType, Args: []ir.Value{v}})

	fc.bind(b.Name, ir.Global(mangled, GetIRTypeEquivalent(fnType)))
}

func (fc *funcCtx) lowerMatch(n *ast.MatchExpr) ir.Value {
	subject := fc.lowerExpr(n.Subject)
	resT := GetIRTypeEquivalent(fc.lw.resolvedType(n))
	slot := fc.lw.freshTemp()
	fc.blk.Emit(ir.Instr{Result: slot, Type: ir.TPtr, Op: "alloca", Extra: resT.String()})
	mergeBlk := fc.newBlock("match.merge")

	for _, clause := range n.Clauses {
		fc.push()
		cond := fc.lowerPatternTest(clause.Pattern, subject)
		bodyBlk := fc.newBlock("match.body")
		nextBlk := fc.newBlock("match.next")
		fc.emit(ir.Instr{Op: "br", Args: []ir.Value{cond, {Name: bodyBlk.Label}, {Name: nextBlk.Label}}})

		fc.blk = bodyBlk
		v := fc.lowerExpr(clause.Body)
		if !fc.lw.failed() {
			fc.emit(ir.Instr{Op: "store", Args: []ir.Value{ir.Reg(slot, ir.TPtr), v}})
			fc.emit(ir.Instr{Op: "br", Args: []ir.Value{{Name: mergeBlk.Label}}})
		}
		fc.pop()
		fc.blk = nextBlk
	}
	// No exhaustiveness check runs before lowering (ErrNonExhaustive is
	// never raised): a subject that no clause matches falls through to this
	// trap, which calls exit(1), and every block still ends in a terminator.
	fc.emit(ir.Instr{Op: "call", Type: ir.TVoid, Args: []ir.Value{ir.Global("exit", ir.TVoid), ir.ConstInt(1)}})
	fc.emit(ir.Instr{Op: "unreachable"})

	fc.blk = mergeBlk
	result := fc.lw.freshTemp()
	fc.emit(ir.Instr{Result: result, Type: resT, Op: "load", Args: []ir.Value{ir.Reg(slot, ir.TPtr)}})
	return ir.Reg(result, resT)
}

// lowerPatternTest evaluates to an i1 "does pattern match subject"
// condition, binding every pattern-introduced name into the current
// (already pushed) scope as a side effect. Field extraction happens
// unconditionally even under a tag that turns out not to match — textual
// getfield is just an address computation, never a trap — so the whole
// test is a single straight-line boolean expression rather than its own
// nested branches; only the per-clause overall result branches (§9's
// design note permits match lowering via control flow either way).
func (fc *funcCtx) lowerPatternTest(p ast.Pattern, subject ir.Value) ir.Value {
	switch pat := p.(type) {
	case *ast.WildcardPattern:
		return ir.ConstBool(true)
	case *ast.IdPattern:
		fc.bind(pat.Name, subject)
		return ir.ConstBool(true)
	case *ast.LiteralPattern:
		lit := fc.lowerExpr(pat.Value)
		result := fc.lw.freshTemp()
		fc.emit(ir.Instr{Result: result, Type: ir.TI1, Op: "icmp eq", Args: []ir.Value{subject, lit}})
		return ir.Reg(result, ir.TI1)
	case *ast.ConstructorPattern:
		return fc.lowerConstructorPatternTest(pat, subject)
	default:
		fc.lw.fail(diagnostics.ErrIRVerify, p.Line(), "internal: unhandled pattern kind in lowering")
		return ir.ConstBool(false)
	}
}

func (fc *funcCtx) lowerConstructorPatternTest(pat *ast.ConstructorPattern, subject ir.Value) ir.Value {
	ctor := fc.lw.ctorByName(pat.Name)
	idx := 0
	for i, c := range ctor.Parent.Constructors {
		if c == ctor {
			idx = i
			break
		}
	}
	tag := fc.lw.freshTemp()
	fc.emit(ir.Instr{Result: tag, Type: ir.TI32, Op: "getfield", Args: []ir.Value{subject}, Extra: "0 ; tag"})
	cond := fc.lw.freshTemp()
	fc.emit(ir.Instr{Result: cond, Type: ir.TI1, Op: "icmp eq", Args: []ir.Value{ir.Reg(tag, ir.TI32), ir.ConstInt(int64(idx))}})
	result := ir.Reg(cond, ir.TI1)

	for i, sub := range pat.SubPats {
		ft := GetIRTypeEquivalent(ctor.Fields[i])
		fv := fc.lw.freshTemp()
		fc.emit(ir.Instr{Result: fv, Type: ft, Op: "getfield", Args: []ir.Value{subject}, Extra: fmt.Sprintf("%d", i+1)})
		subCond := fc.lowerPatternTest(sub, ir.Reg(fv, ft))
		merged := fc.lw.freshTemp()
		fc.emit(ir.Instr{Result: merged, Type: ir.TI1, Op: "and", Args: []ir.Value{result, subCond}})
		result = ir.Reg(merged, ir.TI1)
	}
	return result
}
