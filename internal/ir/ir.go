// Package ir implements the typed intermediate representation emitted by
// internal/lower (§4.6). It is a leaf package, like internal/typegraph:
// it knows nothing about the Type Graph or the AST, only about IR-level
// types, instructions, and module structure, so internal/lower is the
// only place that needs to know how a source TG node maps to an IRType
// (kept out of this package to keep it dependency-free).
//
// No third-party LLVM binding is used here: a whole-pack search found no
// Go LLVM binding imported anywhere in the teacher or the rest of the
// example corpus, so this is a from-scratch, minimal, textually-emitted
// IR rather than a hand-rolled stand-in for a library the corpus shows.
package ir

import (
	"fmt"
	"strings"
)

// TypeKind tags the case of an IRType.
type TypeKind int

const (
	Void TypeKind = iota
	I1            // bool
	I8            // char / byte
	I32           // int
	F80           // source float, x86 extended precision
	Ptr           // opaque pointer (GC_malloc'd heap object, or a function pointer)
	StructT
	FuncT
)

// IRType is a flat tagged variant, same discriminant-struct idiom as
// typegraph.Node (see that package's doc comment).
type IRType struct {
	Kind   TypeKind
	Fields []IRType // StructT
	Params []IRType // FuncT
	Result *IRType  // FuncT
}

var (
	TVoid = IRType{Kind: Void}
	TI1   = IRType{Kind: I1}
	TI8   = IRType{Kind: I8}
	TI32  = IRType{Kind: I32}
	TF80  = IRType{Kind: F80}
	TPtr  = IRType{Kind: Ptr}
)

func NewStruct(fields ...IRType) IRType { return IRType{Kind: StructT, Fields: fields} }

func NewFunc(params []IRType, result IRType) IRType {
	return IRType{Kind: FuncT, Params: params, Result: &result}
}

func (t IRType) String() string {
	switch t.Kind {
	case Void:
		return "void"
	case I1:
		return "i1"
	case I8:
		return "i8"
	case I32:
		return "i32"
	case F80:
		return "x86_fp80"
	case Ptr:
		return "ptr"
	case StructT:
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			parts[i] = f.String()
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	case FuncT:
		parts := make([]string, len(t.Params))
		for i, p := range t.Params {
			parts[i] = p.String()
		}
		return fmt.Sprintf("%s (%s)", t.Result.String(), strings.Join(parts, ", "))
	default:
		return "?"
	}
}

// Value is an operand: either a literal constant or a reference to a
// previously defined SSA register / global / block label.
type Value struct {
	Type IRType
	// Exactly one of the following describes the value.
	IsConst  bool
	ConstInt int64
	ConstF   float64
	ConstStr string // for string constants and raw textual operands
	Name     string // "%reg" or "@global" when not a constant
}

func ConstInt(v int64) Value  { return Value{Type: TI32, IsConst: true, ConstInt: v} }
func ConstBool(v bool) Value {
	n := int64(0)
	if v {
		n = 1
	}
	return Value{Type: TI1, IsConst: true, ConstInt: n}
}
func ConstFloat(v float64) Value { return Value{Type: TF80, IsConst: true, ConstF: v} }
func Reg(name string, t IRType) Value { return Value{Type: t, Name: "%" + name} }
func Global(name string, t IRType) Value { return Value{Type: t, Name: "@" + name} }

func (v Value) String() string {
	if v.IsConst {
		switch v.Type.Kind {
		case F80:
			return fmt.Sprintf("%g", v.ConstF)
		case I1, I32, I8:
			return fmt.Sprintf("%d", v.ConstInt)
		default:
			return v.ConstStr
		}
	}
	return v.Name
}

// Instr is a single IR instruction. Op names the opcode textually
// ("add", "call", "load", "gep", "br", "ret", "icmp eq", ...); Args are
// its operands in source order; Result, when non-empty, is the SSA
// register the instruction defines.
type Instr struct {
	Result string // "" for void instructions (store, br, ret, ...)
	Type   IRType
	Op     string
	Args   []Value
	// Extra carries opcode-specific textual detail that doesn't fit the
	// Args/Value shape cleanly (e.g. a gep's literal index list, a
	// struct-field name for readability). Kept as plain text deliberately:
	// this IR is read by humans (via -i) and by the lowerer's own
	// tests, never round-tripped through a real assembler in this module.
	Extra string
}

func (i Instr) String() string {
	var b strings.Builder
	if i.Result != "" {
		fmt.Fprintf(&b, "%%%s = ", i.Result)
	}
	b.WriteString(i.Op)
	if i.Type.Kind != Void || i.Result != "" {
		fmt.Fprintf(&b, " %s", i.Type)
	}
	if len(i.Args) > 0 {
		parts := make([]string, len(i.Args))
		for j, a := range i.Args {
			parts[j] = a.String()
		}
		b.WriteString(" " + strings.Join(parts, ", "))
	}
	if i.Extra != "" {
		b.WriteString(" " + i.Extra)
	}
	return b.String()
}

// Block is a single basic block: a label plus its straight-line
// instruction list, always ending in a terminator (br/ret).
type Block struct {
	Label string
	Instr []Instr
}

func (b *Block) Emit(i Instr) { b.Instr = append(b.Instr, i) }

func (b *Block) String() string {
	var out strings.Builder
	fmt.Fprintf(&out, "%s:\n", b.Label)
	for _, in := range b.Instr {
		fmt.Fprintf(&out, "  %s\n", in)
	}
	return out.String()
}

// Function is one IR function: either a full definition (Blocks
// non-empty) or an external declaration (the runtime ABI functions of
// §6, Blocks empty).
type Function struct {
	Name       string
	Params     []IRType
	ParamNames []string
	Result     IRType
	Blocks     []*Block
	External   bool
}

func (f *Function) NewBlock(label string) *Block {
	b := &Block{Label: label}
	f.Blocks = append(f.Blocks, b)
	return b
}

func (f *Function) String() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		name := ""
		if i < len(f.ParamNames) {
			name = " %" + f.ParamNames[i]
		}
		params[i] = p.String() + name
	}
	sig := fmt.Sprintf("%s @%s(%s)", f.Result, f.Name, strings.Join(params, ", "))
	if f.External {
		return "declare " + sig
	}
	var b strings.Builder
	fmt.Fprintf(&b, "define %s {\n", sig)
	for _, blk := range f.Blocks {
		b.WriteString(blk.String())
	}
	b.WriteString("}\n")
	return b.String()
}

// Global is a module-level constant (string literal data, a Custom
// type's vtable-free tag constant, ...).
type Global struct {
	Name string
	Type IRType
	Init string // textual initializer, e.g. a quoted string constant
}

func (g *Global) String() string {
	return fmt.Sprintf("@%s = global %s %s", g.Name, g.Type, g.Init)
}

// Module is the top-level emitted unit: one per compilation (§5).
type Module struct {
	Name      string
	Globals   []*Global
	Functions []*Function
}

func NewModule(name string) *Module { return &Module{Name: name} }

func (m *Module) DeclareFunction(name string, params []IRType, result IRType) *Function {
	f := &Function{Name: name, Params: params, Result: result, External: true}
	m.Functions = append(m.Functions, f)
	return f
}

func (m *Module) DefineFunction(name string, params []IRType, paramNames []string, result IRType) *Function {
	f := &Function{Name: name, Params: params, ParamNames: paramNames, Result: result}
	m.Functions = append(m.Functions, f)
	return f
}

func (m *Module) AddGlobal(g *Global) { m.Globals = append(m.Globals, g) }

// Lookup returns the already-declared/defined function named name, or
// nil. Used by the lowerer to avoid re-declaring a runtime ABI function
// or re-generating a per-Custom equality helper it already emitted.
func (m *Module) Lookup(name string) *Function {
	for _, f := range m.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// String renders the whole module textually, for -i.
func (m *Module) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "; module %q\n", m.Name)
	for _, g := range m.Globals {
		fmt.Fprintf(&b, "%s\n", g)
	}
	for _, f := range m.Functions {
		fmt.Fprintf(&b, "\n%s", f)
	}
	return b.String()
}

// Verify performs the minimal structural check §7 calls "internal IR
// verification failure": every defined (non-external) function's blocks
// are non-empty and its last instruction is a terminator (br/ret/unreachable).
func (m *Module) Verify() error {
	for _, f := range m.Functions {
		if f.External {
			continue
		}
		if len(f.Blocks) == 0 {
			return fmt.Errorf("function %q has no blocks", f.Name)
		}
		for _, blk := range f.Blocks {
			if len(blk.Instr) == 0 {
				return fmt.Errorf("function %q block %q is empty", f.Name, blk.Label)
			}
			last := blk.Instr[len(blk.Instr)-1]
			switch last.Op {
			case "ret", "br", "unreachable":
			default:
				return fmt.Errorf("function %q block %q does not end in a terminator", f.Name, blk.Label)
			}
		}
	}
	return nil
}
