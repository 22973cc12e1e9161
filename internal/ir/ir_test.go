package ir

import "testing"

func TestVerifyRejectsBlockWithoutTerminator(t *testing.T) {
	m := NewModule("t")
	f := m.DefineFunction("f", nil, nil, TVoid)
	blk := f.NewBlock("entry")
	blk.Emit(Instr{Op: "add", Type: TI32, Result: "r0", Args: []Value{ConstInt(1), ConstInt(2)}})
	if err := m.Verify(); err == nil {
		t.Fatal("expected verification failure for a block with no terminator")
	}
	blk.Emit(Instr{Op: "ret", Type: TVoid})
	if err := m.Verify(); err != nil {
		t.Fatalf("unexpected verification failure: %v", err)
	}
}

func TestVerifyRejectsEmptyFunction(t *testing.T) {
	m := NewModule("t")
	m.DefineFunction("f", nil, nil, TVoid)
	if err := m.Verify(); err == nil {
		t.Fatal("expected verification failure for a function with no blocks")
	}
}

func TestModuleStringIncludesDeclarationsAndDefinitions(t *testing.T) {
	m := NewModule("t")
	m.DeclareFunction("readInteger", nil, TI32)
	f := m.DefineFunction("main", nil, nil, TI32)
	blk := f.NewBlock("entry")
	blk.Emit(Instr{Op: "ret", Type: TI32, Args: []Value{ConstInt(0)}})
	out := m.String()
	if out == "" {
		t.Fatal("expected non-empty module text")
	}
}
