// Package symbols implements the three flat/scoped lookup tables the
// semantic analyzer populates and queries: the scoped term table, and the
// two flat tables for type names and constructor names (§4.2).
package symbols

import "github.com/ZOrfeas/llamac/internal/typegraph"

// Symbol is one entry of the term table: a name bound to a TG shape.
type Symbol struct {
	Name string
	Type *typegraph.Node
}
