// Package lower implements §4.6: turning a fully-analyzed, fully-solved
// AST into a typed ir.Module under a conservative GC memory model. It is
// the one pass that needs both internal/typegraph (to read resolved
// types) and internal/ir (to emit them), so the TG→IR type mapping
// (GetIRTypeEquivalent) lives here rather than in either leaf package,
// per the design note to keep both of those dependency-free.
package lower

import (
	"fmt"

	"github.com/ZOrfeas/llamac/internal/ast"
	"github.com/ZOrfeas/llamac/internal/diagnostics"
	"github.com/ZOrfeas/llamac/internal/inference"
	"github.com/ZOrfeas/llamac/internal/ir"
	"github.com/ZOrfeas/llamac/internal/symbols"
	"github.com/ZOrfeas/llamac/internal/typegraph"
)

// arrayDescriptor is the fixed struct every array heap object is
// addressed through (GLOSSARY "Descriptor (array)"): a payload pointer,
// the dimensionality, and a pointer to a GC-allocated i32[dims] of
// per-dimension sizes (kept out-of-line so the descriptor itself has a
// fixed shape regardless of dims).
var arrayDescriptor = ir.NewStruct(ir.TPtr, ir.TI32, ir.TPtr)

// descriptorSize is the GC_malloc size (bytes) of one arrayDescriptor
// instance, at scalarSize per field regardless of the field's real width.
func descriptorSize() int64 { return int64(len(arrayDescriptor.Fields)) * scalarSize }

// GetIRTypeEquivalent maps a fully-substituted TG node to its IR
// representation (§4.6's representation-mapping table): Unit/Int/Char/
// Bool/Float map to their natural IR scalar; Ref, Custom and Array are
// all GC-heap pointers (Ptr) — Array's pointee has arrayDescriptor's
// shape, Custom's pointee is {i32 tag, ...fields}; Function is an opaque
// code pointer (closures are rejected, §9, so no environment pointer is
// ever threaded through a call).
func GetIRTypeEquivalent(t *typegraph.Node) ir.IRType {
	switch t.Kind {
	case typegraph.Unit:
		return ir.TVoid
	case typegraph.Int:
		return ir.TI32
	case typegraph.Char:
		return ir.TI8
	case typegraph.Bool:
		return ir.TI1
	case typegraph.Float:
		return ir.TF80
	case typegraph.Ref, typegraph.Custom, typegraph.Array:
		return ir.TPtr
	case typegraph.Function:
		params := make([]ir.IRType, len(t.Params))
		for i, p := range t.Params {
			params[i] = GetIRTypeEquivalent(p)
		}
		return ir.NewFunc(params, GetIRTypeEquivalent(t.Result))
	default:
		return ir.TPtr
	}
}

// Lowerer holds the per-compilation state that outlives any single
// function lowering: the inferencer (for DeepSubstitute), the global
// term table (to recover a top-level binding's solved parameter/result
// types, which live nowhere on the Parameter AST nodes themselves), the
// module being built, and the lazily-generated per-Custom structural
// equality helpers (§4.6's "Custom equality", generated on first
// demand).
type Lowerer struct {
	inf      *inference.Inferencer
	terms    *symbols.TermTable
	ctors    *symbols.ConstructorTable
	mod      *ir.Module
	structEq map[*typegraph.Node]string
	tmp      int
	blk      int

	err *diagnostics.DiagnosticError
}

func New(inf *inference.Inferencer, terms *symbols.TermTable, ctors *symbols.ConstructorTable) *Lowerer {
	return &Lowerer{
		inf:      inf,
		terms:    terms,
		ctors:    ctors,
		mod:      ir.NewModule("llamac"),
		structEq: make(map[*typegraph.Node]string),
	}
}

// ctorByName returns the already-registered Constructor TG node for name;
// it is only ever called on constructor-pattern names the analyzer has
// already validated, so a nil result would mean an internal inconsistency.
func (lw *Lowerer) ctorByName(name string) *typegraph.Node {
	return lw.ctors.Lookup(name)
}

func (lw *Lowerer) failed() bool { return lw.err != nil }

func (lw *Lowerer) fail(code diagnostics.ErrorCode, line int, format string, args ...any) {
	if lw.err == nil {
		lw.err = diagnostics.NewErrorAt(code, line, 0, fmt.Sprintf(format, args...))
	}
}

func (lw *Lowerer) freshTemp() string {
	lw.tmp++
	return fmt.Sprintf("t%d", lw.tmp)
}

func (lw *Lowerer) freshLabel(prefix string) string {
	lw.blk++
	return fmt.Sprintf("%s.%d", prefix, lw.blk)
}

func (lw *Lowerer) resolvedType(e ast.Expression) *typegraph.Node {
	return lw.inf.DeepSubstitute(e.ResolvedType())
}

// --- module init ---

// declareRuntime emits the external declarations for every function in
// §6's "Runtime library ABI (consumed by emitted code)" table.
func (lw *Lowerer) declareRuntime() {
	m := lw.mod
	m.DeclareFunction("readInteger", nil, ir.TI32)
	m.DeclareFunction("readBoolean", nil, ir.TI1)
	m.DeclareFunction("readChar", nil, ir.TI8)
	m.DeclareFunction("readReal", nil, ir.TF80)
	m.DeclareFunction("readString", []ir.IRType{ir.TI32, ir.TPtr}, ir.TVoid)
	m.DeclareFunction("writeInteger", []ir.IRType{ir.TI32}, ir.TVoid)
	m.DeclareFunction("writeBoolean", []ir.IRType{ir.TI1}, ir.TVoid)
	m.DeclareFunction("writeChar", []ir.IRType{ir.TI8}, ir.TVoid)
	m.DeclareFunction("writeReal", []ir.IRType{ir.TF80}, ir.TVoid)
	m.DeclareFunction("writeString", []ir.IRType{ir.TPtr}, ir.TVoid)

	m.DeclareFunction("strlen", []ir.IRType{ir.TPtr}, ir.TI32)
	m.DeclareFunction("strcpy", []ir.IRType{ir.TPtr, ir.TPtr}, ir.TVoid)
	m.DeclareFunction("strcat", []ir.IRType{ir.TPtr, ir.TPtr}, ir.TVoid)
	m.DeclareFunction("strcmp", []ir.IRType{ir.TPtr, ir.TPtr}, ir.TI32)

	m.DeclareFunction("cabs", []ir.IRType{ir.TI32}, ir.TI32)
	for _, name := range []string{"fabs", "sqrt", "sin", "cos", "tan", "atan", "exp", "ln"} {
		m.DeclareFunction(name, []ir.IRType{ir.TF80}, ir.TF80)
	}
	m.DeclareFunction("cpi", nil, ir.TF80)

	m.DeclareFunction("exit", []ir.IRType{ir.TI32}, ir.TVoid)

	m.DeclareFunction("GC_malloc_atomic", []ir.IRType{ir.TI32}, ir.TPtr)
	m.DeclareFunction("GC_malloc_atomic_uncollectable", []ir.IRType{ir.TI32}, ir.TPtr)
	m.DeclareFunction("GC_free", []ir.IRType{ir.TPtr}, ir.TVoid)
	m.DeclareFunction("GC_malloc", []ir.IRType{ir.TI32}, ir.TPtr)
}

// declareWrappers emits the module-level glue bridging source unit/
// array-of-char to the runtime ABI's void/i8* (§4.6): print_string and
// read_string operate on a source array-of-char descriptor but the
// runtime's writeString/readString want a bare null-terminated i8*, so
// a thin wrapper unpacks/repacks the descriptor around the runtime call.
// The other print_*/read_* prelude names and abs/pi need no wrapper of
// their own; abs/pi are aliased directly to the runtime's cabs/cpi names
// to avoid colliding with the IR-level "abs"/"pi" identifiers the
// prelude also exposes as source-level term names.
func (lw *Lowerer) declareWrappers() {
	strTy := ir.TPtr // array-of-char descriptor, by reference

	printString := lw.mod.DefineFunction("print_string", []ir.IRType{strTy}, []string{"s"}, ir.TVoid)
	b := printString.NewBlock("entry")
	payload := lw.freshTemp()
	b.Emit(ir.Instr{Result: payload, Type: ir.TPtr, Op: "getfield",
		Args: []ir.Value{ir.Reg("s", strTy)}, Extra: "0 ; array payload (i8*, null-terminated)"})
	b.Emit(ir.Instr{Op: "call", Type: ir.TVoid, Args: []ir.Value{
		ir.Global("writeString", ir.TVoid), ir.Reg(payload, ir.TPtr)}})
	b.Emit(ir.Instr{Op: "ret", Type: ir.TVoid})

	readString := lw.mod.DefineFunction("read_string", nil, nil, strTy)
	b = readString.NewBlock("entry")
	buf := lw.freshTemp()
	b.Emit(ir.Instr{Result: buf, Type: ir.TPtr, Op: "call", Args: []ir.Value{
		ir.Global("GC_malloc_atomic", ir.TPtr), ir.ConstInt(4096)},
		Extra: "; fixed 4096-byte buffer: readString stores at most 4095 chars plus the NUL"})
	b.Emit(ir.Instr{Op: "call", Type: ir.TVoid, Args: []ir.Value{
		ir.Global("readString", ir.TVoid), ir.ConstInt(4096), ir.Reg(buf, ir.TPtr)}})
	desc := lw.freshTemp()
	b.Emit(ir.Instr{Result: desc, Type: ir.TPtr, Op: "call", Args: []ir.Value{
		ir.Global("GC_malloc", ir.TPtr), ir.ConstInt(descriptorSize())}, Extra: "; array descriptor"})
	b.Emit(ir.Instr{Op: "setfield", Args: []ir.Value{ir.Reg(desc, ir.TPtr), ir.Reg(buf, ir.TPtr)},
		Extra: "0 ; descriptor.payload = buf"})
	b.Emit(ir.Instr{Op: "setfield", Args: []ir.Value{ir.Reg(desc, ir.TPtr), ir.ConstInt(1)},
		Extra: "1 ; descriptor.dims = 1"})
	b.Emit(ir.Instr{Op: "ret", Type: strTy, Args: []ir.Value{ir.Reg(desc, ir.TPtr)}})

	abs := lw.mod.DefineFunction("abs", []ir.IRType{ir.TI32}, []string{"x"}, ir.TI32)
	b = abs.NewBlock("entry")
	r := lw.freshTemp()
	b.Emit(ir.Instr{Result: r, Type: ir.TI32, Op: "call",
		Args: []ir.Value{ir.Global("cabs", ir.TI32), ir.Reg("x", ir.TI32)}})
	b.Emit(ir.Instr{Op: "ret", Type: ir.TI32, Args: []ir.Value{ir.Reg(r, ir.TI32)}})

	pi := lw.mod.DefineFunction("pi", nil, nil, ir.TF80)
	b = pi.NewBlock("entry")
	r = lw.freshTemp()
	b.Emit(ir.Instr{Result: r, Type: ir.TF80, Op: "call", Args: []ir.Value{ir.Global("cpi", ir.TF80)}})
	b.Emit(ir.Instr{Op: "ret", Type: ir.TF80, Args: []ir.Value{ir.Reg(r, ir.TF80)}})

	// incr/decr, float_of_int, int_of_float, round, int_of_char,
	// char_of_int are pure scalar glue (§4.6): thin enough to inline
	// directly at call sites rather than as standalone functions, so
	// lowerCall special-cases them by name. strlen/strcmp/strcpy/strcat
	// get the same call-site treatment rather than a wrapper function,
	// since their source-level name collides with the runtime ABI
	// declaration of the same name declared above; lowerCall unpacks
	// the source array-of-char descriptor(s) to raw i8* right before
	// forwarding to that same-named runtime function.
}

// LowerProgram runs the whole pass: module init, then one IR function
// per top-level binding in source order (constants as thunks, main as the
// i32 entry point). prog must already be fully
// analyzed and solved (inf.SolveAll(true) returned nil).
func (lw *Lowerer) LowerProgram(prog *ast.Program) (*ir.Module, *diagnostics.DiagnosticError) {
	lw.declareRuntime()
	lw.declareWrappers()

	for _, def := range prog.Definitions {
		if lw.failed() {
			break
		}
		lw.lowerTopLevelDefinition(def)
	}
	if lw.failed() {
		return nil, lw.err
	}
	if err := lw.mod.Verify(); err != nil {
		lw.fail(diagnostics.ErrIRVerify, 0, "%s", err)
		return nil, lw.err
	}
	return lw.mod, nil
}

func (lw *Lowerer) lowerTopLevelDefinition(d ast.Definition) {
	switch def := d.(type) {
	case *ast.LetDefinition:
		for _, b := range def.Bindings {
			lw.lowerTopLevelBinding(b)
		}
	case *ast.LetRecDefinition:
		for _, b := range def.Bindings {
			lw.lowerTopLevelBinding(b)
		}
	case *ast.TypeDefinition:
		// Custom layout is entirely implicit in this IR (a heap pointer
		// to {i32 tag, ...fields}); nothing to pre-declare at module
		// init, matching §4.6's "generated on first demand" approach to
		// per-Custom equality helpers.
	}
}

func (lw *Lowerer) lowerTopLevelBinding(b *ast.Binding) {
	if b.Name == "main" && len(b.Params) == 0 {
		lw.lowerMain(b)
		return
	}

	sym := lw.terms.Lookup(b.Name)
	if sym == nil {
		lw.fail(diagnostics.ErrUnknownIdent, b.Line(), "internal: %q missing from the global term table at lowering time", b.Name)
		return
	}
	fnType := lw.inf.DeepSubstitute(sym.Type)

	var paramTypes []ir.IRType
	var resultType ir.IRType
	if fnType.Kind == typegraph.Function {
		paramTypes = make([]ir.IRType, len(fnType.Params))
		for i, p := range fnType.Params {
			paramTypes[i] = GetIRTypeEquivalent(p)
		}
		resultType = GetIRTypeEquivalent(fnType.Result)
	} else {
		// A param-less top-level constant is lowered as a niladic
		// function ("thunk"): every reference to it elsewhere
		// (lowerIdentifier) calls it with zero arguments, the same
		// convention used for the prelude's "pi".
		resultType = GetIRTypeEquivalent(fnType)
	}

	paramNames := make([]string, len(b.Params))
	for i, p := range b.Params {
		paramNames[i] = p.Name
	}

	fn := lw.mod.DefineFunction(b.Name, paramTypes, paramNames, resultType)
	fc := &funcCtx{lw: lw, fn: fn, locals: []map[string]ir.Value{{}}}
	for i, name := range paramNames {
		fc.bind(name, ir.Reg(name, paramTypes[i]))
	}
	fc.blk = fn.NewBlock("entry")
	v := fc.lowerExpr(b.Body)
	if lw.failed() {
		return
	}
	fc.blk.Emit(ir.Instr{Op: "ret", Type: resultType, Args: []ir.Value{v}})
}

func (lw *Lowerer) lowerMain(b *ast.Binding) {
	fn := lw.mod.DefineFunction("main", nil, nil, ir.TI32)
	fc := &funcCtx{lw: lw, fn: fn, locals: []map[string]ir.Value{{}}}
	fc.blk = fn.NewBlock("entry")
	fc.lowerExpr(b.Body)
	if lw.failed() {
		return
	}
	fc.blk.Emit(ir.Instr{Op: "ret", Type: ir.TI32, Args: []ir.Value{ir.ConstInt(0)}})
}
