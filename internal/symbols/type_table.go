package symbols

import "github.com/ZOrfeas/llamac/internal/typegraph"

// TypeTable is the flat table of type names, pre-populated with the five
// primitives (§4.2). Unlike the term table it is never scoped: type names
// are compilation-wide.
type TypeTable struct {
	entries map[string]*typegraph.Node
}

func NewTypeTable() *TypeTable {
	t := &TypeTable{entries: make(map[string]*typegraph.Node)}
	t.entries["unit"] = typegraph.TUnit
	t.entries["int"] = typegraph.TInt
	t.entries["char"] = typegraph.TChar
	t.entries["bool"] = typegraph.TBool
	t.entries["float"] = typegraph.TFloat
	return t
}

// Insert registers a user-declared type name (a Custom node). Returns
// false if the name is already taken (the analyzer raises ErrDupType).
func (t *TypeTable) Insert(name string, node *typegraph.Node) bool {
	if _, exists := t.entries[name]; exists {
		return false
	}
	t.entries[name] = node
	return true
}

// Lookup returns nil when name is unregistered.
func (t *TypeTable) Lookup(name string) *typegraph.Node {
	return t.entries[name]
}
