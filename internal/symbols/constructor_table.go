package symbols

import "github.com/ZOrfeas/llamac/internal/typegraph"

// ConstructorTable is the flat table of constructor names, each entry
// pointing at a Constructor node whose Parent is the owning Custom
// (§4.2). Constructor names are unique across the whole compilation, not
// just within their owning type.
type ConstructorTable struct {
	entries map[string]*typegraph.Node
}

func NewConstructorTable() *ConstructorTable {
	return &ConstructorTable{entries: make(map[string]*typegraph.Node)}
}

// Insert registers a constructor; returns false if the name is already
// taken (the analyzer raises ErrDupCtor — constructor names are global).
func (t *ConstructorTable) Insert(name string, ctor *typegraph.Node) bool {
	if _, exists := t.entries[name]; exists {
		return false
	}
	t.entries[name] = ctor
	return true
}

// Lookup returns nil when name is unregistered.
func (t *ConstructorTable) Lookup(name string) *typegraph.Node {
	return t.entries[name]
}
