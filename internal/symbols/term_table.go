package symbols

import "github.com/ZOrfeas/llamac/internal/typegraph"

// TermTable is the scoped symbol table for term-level (value) names: a
// stack of scopes, innermost last. OpenScope/CloseScope bracket every
// construct that introduces lexical scoping (let...in, function bodies,
// for, each match clause — §4.4).
type TermTable struct {
	scopes []map[string]*Symbol
}

// NewTermTable returns a term table with a single open global scope, ready
// for the prelude to be inserted into it.
func NewTermTable() *TermTable {
	return &TermTable{scopes: []map[string]*Symbol{make(map[string]*Symbol)}}
}

func (t *TermTable) OpenScope() {
	t.scopes = append(t.scopes, make(map[string]*Symbol))
}

// CloseScope pops the innermost scope. deleteEntries is always true in
// this compiler (there is no scope-merging use case); kept as a parameter
// to mirror the named operation in §4.2.
func (t *TermTable) CloseScope(deleteEntries bool) {
	if len(t.scopes) <= 1 {
		panic("symbols: CloseScope called on the global scope")
	}
	if deleteEntries {
		t.scopes[len(t.scopes)-1] = nil
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// Depth returns the number of currently open scopes (1 = only global).
func (t *TermTable) Depth() int { return len(t.scopes) }

func (t *TermTable) insert(name string, typ *typegraph.Node) {
	t.scopes[len(t.scopes)-1][name] = &Symbol{Name: name, Type: typ}
}

// InsertRaw attaches typ to name as-is, in the innermost scope.
func (t *TermTable) InsertRaw(name string, typ *typegraph.Node) {
	t.insert(name, typ)
}

// InsertFunction manufactures a Function TG shape (params may be empty)
// and binds name to it.
func (t *TermTable) InsertFunction(name string, params []*typegraph.Node, result *typegraph.Node) {
	t.insert(name, typegraph.NewFunction(params, result))
}

// InsertArray manufactures an Array TG shape of the given fixed
// dimensionality, whose element type is implicitly ref-wrapped per the
// array-element invariant, and binds name to it.
func (t *TermTable) InsertArray(name string, elem *typegraph.Node, dims int) {
	t.insert(name, typegraph.NewArray(typegraph.NewRef(elem), dims))
}

// InsertRef manufactures a Ref TG shape and binds name to it.
func (t *TermTable) InsertRef(name string, inner *typegraph.Node) {
	t.insert(name, typegraph.NewRef(inner))
}

// Lookup searches from the innermost scope outward, returning nil if
// absent — the analyzer turns that into ErrUnknownIdent.
func (t *TermTable) Lookup(name string) *Symbol {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if sym, ok := t.scopes[i][name]; ok {
			return sym
		}
	}
	return nil
}

// LookupLocal only searches the innermost scope (used to detect
// shadowing/duplicate bindings within one let/let-rec group).
func (t *TermTable) LookupLocal(name string) *Symbol {
	return t.scopes[len(t.scopes)-1][name]
}
