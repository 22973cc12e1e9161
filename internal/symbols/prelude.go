package symbols

import "github.com/ZOrfeas/llamac/internal/typegraph"

// InsertPrelude binds the standard library into the global scope of term
// at startup (§4.2). term must have exactly one open scope (the global
// one) when this is called.
func InsertPrelude(term *TermTable) {
	ref := typegraph.NewRef
	str := typegraph.NewArray(ref(typegraph.TChar), 1)

	unaryFloat := func(name string) {
		term.InsertFunction(name, []*typegraph.Node{typegraph.TFloat}, typegraph.TFloat)
	}

	// read_*
	term.InsertFunction("read_int", nil, typegraph.TInt)
	term.InsertFunction("read_bool", nil, typegraph.TBool)
	term.InsertFunction("read_char", nil, typegraph.TChar)
	term.InsertFunction("read_float", nil, typegraph.TFloat)
	term.InsertFunction("read_string", nil, str)

	// print_*
	term.InsertFunction("print_int", []*typegraph.Node{typegraph.TInt}, typegraph.TUnit)
	term.InsertFunction("print_bool", []*typegraph.Node{typegraph.TBool}, typegraph.TUnit)
	term.InsertFunction("print_char", []*typegraph.Node{typegraph.TChar}, typegraph.TUnit)
	term.InsertFunction("print_float", []*typegraph.Node{typegraph.TFloat}, typegraph.TUnit)
	term.InsertFunction("print_string", []*typegraph.Node{str}, typegraph.TUnit)

	// math
	term.InsertFunction("abs", []*typegraph.Node{typegraph.TInt}, typegraph.TInt)
	unaryFloat("fabs")
	unaryFloat("sqrt")
	unaryFloat("sin")
	unaryFloat("cos")
	unaryFloat("tan")
	unaryFloat("atan")
	unaryFloat("exp")
	unaryFloat("ln")
	term.InsertRaw("pi", typegraph.TFloat)

	// ref helpers
	term.InsertFunction("incr", []*typegraph.Node{ref(typegraph.TInt)}, typegraph.TUnit)
	term.InsertFunction("decr", []*typegraph.Node{ref(typegraph.TInt)}, typegraph.TUnit)

	// conversions
	term.InsertFunction("float_of_int", []*typegraph.Node{typegraph.TInt}, typegraph.TFloat)
	term.InsertFunction("int_of_float", []*typegraph.Node{typegraph.TFloat}, typegraph.TInt)
	term.InsertFunction("round", []*typegraph.Node{typegraph.TFloat}, typegraph.TInt)
	term.InsertFunction("int_of_char", []*typegraph.Node{typegraph.TChar}, typegraph.TInt)
	term.InsertFunction("char_of_int", []*typegraph.Node{typegraph.TInt}, typegraph.TChar)

	// strings
	term.InsertFunction("strlen", []*typegraph.Node{str}, typegraph.TInt)
	term.InsertFunction("strcmp", []*typegraph.Node{str, str}, typegraph.TInt)
	term.InsertFunction("strcpy", []*typegraph.Node{str, str}, str)
	term.InsertFunction("strcat", []*typegraph.Node{str, str}, str)
}
