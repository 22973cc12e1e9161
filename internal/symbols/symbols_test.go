package symbols

import (
	"testing"

	"github.com/ZOrfeas/llamac/internal/typegraph"
)

func TestTermTableScoping(t *testing.T) {
	tt := NewTermTable()
	tt.InsertRaw("x", typegraph.TInt)

	tt.OpenScope()
	tt.InsertRaw("y", typegraph.TBool)

	if sym := tt.Lookup("x"); sym == nil || sym.Type != typegraph.TInt {
		t.Fatalf("expected x visible from inner scope")
	}
	if sym := tt.Lookup("y"); sym == nil || sym.Type != typegraph.TBool {
		t.Fatalf("expected y visible in its own scope")
	}

	tt.CloseScope(true)
	if sym := tt.Lookup("y"); sym != nil {
		t.Fatalf("expected y to be gone after CloseScope, got %v", sym)
	}
	if sym := tt.Lookup("x"); sym == nil {
		t.Fatalf("expected x to survive CloseScope of the inner scope")
	}
}

func TestTermTableShadowing(t *testing.T) {
	tt := NewTermTable()
	tt.InsertRaw("x", typegraph.TInt)
	tt.OpenScope()
	tt.InsertRaw("x", typegraph.TBool)

	if sym := tt.Lookup("x"); sym.Type != typegraph.TBool {
		t.Fatalf("expected inner x to shadow outer x")
	}
	tt.CloseScope(true)
	if sym := tt.Lookup("x"); sym.Type != typegraph.TInt {
		t.Fatalf("expected outer x restored after inner scope closes")
	}
}

func TestTypeTablePrimitivesPrepopulated(t *testing.T) {
	types := NewTypeTable()
	cases := map[string]*typegraph.Node{
		"unit": typegraph.TUnit, "int": typegraph.TInt, "char": typegraph.TChar,
		"bool": typegraph.TBool, "float": typegraph.TFloat,
	}
	for name, want := range cases {
		if got := types.Lookup(name); got != want {
			t.Errorf("Lookup(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestTypeTableDuplicateRejected(t *testing.T) {
	types := NewTypeTable()
	if types.Insert("int", typegraph.NewCustom("int")) {
		t.Fatalf("expected duplicate type name to be rejected")
	}
	custom := typegraph.NewCustom("tree")
	if !types.Insert("tree", custom) {
		t.Fatalf("expected fresh type name to be accepted")
	}
	if types.Insert("tree", custom) {
		t.Fatalf("expected re-insertion of tree to be rejected")
	}
}

func TestConstructorTableCrossReferencesCustom(t *testing.T) {
	custom := typegraph.NewCustom("option")
	none := typegraph.AddConstructor(custom, "None", nil)
	some := typegraph.AddConstructor(custom, "Some", []*typegraph.Node{typegraph.TInt})

	ctors := NewConstructorTable()
	if !ctors.Insert("None", none) || !ctors.Insert("Some", some) {
		t.Fatalf("expected fresh constructor names to be accepted")
	}
	if ctors.Insert("None", none) {
		t.Fatalf("expected duplicate constructor name to be rejected")
	}
	if !typegraph.Equals(ctors.Lookup("None"), custom) {
		t.Fatalf("expected None's parent to equal its owning Custom")
	}
}

func TestInsertPreludeBindsStdlib(t *testing.T) {
	term := NewTermTable()
	InsertPrelude(term)

	names := []string{
		"read_int", "read_bool", "read_char", "read_float", "read_string",
		"print_int", "print_bool", "print_char", "print_float", "print_string",
		"abs", "fabs", "sqrt", "sin", "cos", "tan", "atan", "exp", "ln", "pi",
		"incr", "decr", "float_of_int", "int_of_float", "round",
		"int_of_char", "char_of_int", "strlen", "strcmp", "strcpy", "strcat",
	}
	for _, name := range names {
		if term.Lookup(name) == nil {
			t.Errorf("expected prelude to bind %q", name)
		}
	}

	if sym := term.Lookup("print_int"); sym.Type.Kind != typegraph.Function {
		t.Errorf("print_int should be a function, got %s", sym.Type.Kind)
	}
}
