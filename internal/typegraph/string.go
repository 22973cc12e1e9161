package typegraph

import (
	"fmt"
	"strings"
)

// String renders a Node the way diagnostics and -idtypes dumps show it to a
// user: close to surface syntax, not the internal node shape.
func String(n *Node) string {
	if n == nil {
		return "<nil>"
	}
	switch n.Kind {
	case Unit:
		return "unit"
	case Int:
		return "int"
	case Char:
		return "char"
	case Bool:
		return "bool"
	case Float:
		return "float"
	case Ref:
		return "ref " + String(n.Inner)
	case Array:
		dims := "?"
		if n.Dims != UnknownDims {
			dims = fmt.Sprintf("%d", n.Dims)
		}
		elem := n.Inner
		if elem != nil && elem.Kind == Ref {
			elem = elem.Inner // surface syntax hides the implicit element ref
		}
		return fmt.Sprintf("array[%s] of %s", dims, String(elem))
	case Function:
		parts := make([]string, len(n.Params))
		for i, p := range n.Params {
			parts[i] = String(p)
		}
		return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), String(n.Result))
	case Constructor:
		return n.Name
	case Custom:
		return n.Name
	case Unknown:
		return fmt.Sprintf("'_t%d", n.ID)
	default:
		return "<?>"
	}
}
