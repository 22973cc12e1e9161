// Package typegraph implements the Type Graph (TG): the value-level
// representation of source types described in spec §3.1/§4.1. It is a
// leaf package — the inferencer, symbol tables, analyzer, and lowerer all
// depend on it, but it depends on nothing in this module.
package typegraph

// Kind tags the case of a Node, playing the role of spec §3.1's tagged
// variant (Go has no sum types; a single struct with a discriminant plus
// per-kind fields is the idiomatic stand-in, matching how the teacher's
// typesystem.Type cases are laid out as sibling structs).
type Kind int

const (
	Unit Kind = iota
	Int
	Char
	Bool
	Float
	Ref
	Array
	Function
	Constructor
	Custom
	Unknown
)

func (k Kind) String() string {
	switch k {
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
		return "ref"
	case Array:
		return "array"
	case Function:
		return "function"
	case Constructor:
		return "constructor"
	case Custom:
		return "custom"
	case Unknown:
		return "unknown"
	default:
		return "?"
	}
}

// UnknownDims marks an Array node whose dimensionality is not yet fixed;
// LowerBound then records the strictest lower bound imposed on it so far.
const UnknownDims = -1

// LowerBoundCell is the shared mutable cell two unknown-dimension Array
// nodes point at once they are unified together (§3.1's "Array
// dimensionality invariant"). Represented as a pointer to a one-field
// struct, per the design note's "small reference-counted cell" option —
// Go's GC retires the refcounting, two Nodes simply hold the same pointer.
type LowerBoundCell struct {
	Value int
}

// Node is a single Type Graph node. Only the fields relevant to Kind are
// meaningful; see the per-kind constructors below for the supported shapes.
type Node struct {
	Kind Kind

	// Ref, Array
	Inner *Node

	// Array
	Dims       int // UnknownDims if not yet fixed
	LowerBound *LowerBoundCell

	// Function
	Params []*Node
	Result *Node

	// Constructor, Custom
	Name string

	// Constructor
	Fields []*Node
	Parent *Node // non-owning back-reference to the owning Custom, set once

	// Custom
	Constructors []*Node // owned; order fixes the runtime tag index

	// Unknown
	ID               int
	CanBeArray       bool
	CanBeFunc        bool
	OnlyIntCharFloat bool
}

// The five basic types are process-wide singletons (§3.1, §5): constructed
// once, shared by reference everywhere a basic type is needed.
var (
	TUnit  = &Node{Kind: Unit}
	TInt   = &Node{Kind: Int}
	TChar  = &Node{Kind: Char}
	TBool  = &Node{Kind: Bool}
	TFloat = &Node{Kind: Float}
)

// NewRef builds a Ref node. inner must not itself be an Array (§3.1
// invariant); callers that can't guarantee this statically should check
// IsArray themselves before calling (the semantic analyzer does, raising
// ErrArrayOfArray).
func NewRef(inner *Node) *Node {
	return &Node{Kind: Ref, Inner: inner}
}

// NewArray builds an Array node with a fixed, known dimensionality.
// inner must be a Ref node per the array-element invariant (§3.1): array
// elements are addressable lvalues, represented as "element ref".
func NewArray(inner *Node, dims int) *Node {
	return &Node{Kind: Array, Inner: inner, Dims: dims, LowerBound: &LowerBoundCell{Value: dims}}
}

// NewArrayLowerBound builds an Array node whose dimensionality is not yet
// known, only lower-bounded (e.g. inferred solely from a `dim i a` use).
func NewArrayLowerBound(inner *Node, lowerBound int) *Node {
	return &Node{Kind: Array, Inner: inner, Dims: UnknownDims, LowerBound: &LowerBoundCell{Value: lowerBound}}
}

// NewFunction builds a Function node.
func NewFunction(params []*Node, result *Node) *Node {
	return &Node{Kind: Function, Params: params, Result: result}
}

// NewCustom builds an empty Custom (sum type) node; constructors are
// attached one at a time via AddConstructor so Parent is set exactly once.
func NewCustom(name string) *Node {
	return &Node{Kind: Custom, Name: name}
}

// AddConstructor appends a new Constructor arm to custom, in declaration
// order (the order fixes the runtime tag index, per §3.1 and §8).
func AddConstructor(custom *Node, name string, fields []*Node) *Node {
	ctor := &Node{Kind: Constructor, Name: name, Fields: fields, Parent: custom}
	custom.Constructors = append(custom.Constructors, ctor)
	return ctor
}

// unknownCounter is the monotonic, globally-unique-per-compilation id
// source for Unknown nodes (§5: process-wide state, lives for one
// compilation). It is owned by the Inferencer, not a package-level global,
// per the design note "pass them as an explicit compilation context to
// every pass; do not scatter them as ambient globals" — see
// inference.Inferencer.FreshUnknown.

// NewUnknown constructs an Unknown node with the given id and default
// (permissive) validity flags. Flags are tightened by trySubstitute's
// occurs/validity checks as constraints accumulate.
func NewUnknown(id int) *Node {
	return &Node{Kind: Unknown, ID: id, CanBeArray: true, CanBeFunc: true, OnlyIntCharFloat: false}
}

func (n *Node) IsArray() bool { return n.Kind == Array }
func (n *Node) IsFunction() bool { return n.Kind == Function }
func (n *Node) IsUnknown() bool { return n.Kind == Unknown }
func (n *Node) IsRef() bool { return n.Kind == Ref }
func (n *Node) IsCustom() bool { return n.Kind == Custom }

// Equals is structural equality modulo unknown identity (§4.1): two Custom
// nodes are equal only if they are the same node, a Constructor is equal to
// a Custom iff its parent is that Custom, and two Unknown nodes are equal
// only by pointer identity (their numeric ids never drive equality).
func Equals(a, b *Node) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}

	// Cross-kind rule: Constructor == its owning Custom.
	if a.Kind == Constructor && b.Kind == Custom {
		return a.Parent == b
	}
	if a.Kind == Custom && b.Kind == Constructor {
		return b.Parent == a
	}

	if a.Kind != b.Kind {
		return false
	}

	switch a.Kind {
	case Unit, Int, Char, Bool, Float:
		return true
	case Unknown:
		return false // only pointer identity equals (handled by a == b above)
	case Ref:
		return Equals(a.Inner, b.Inner)
	case Array:
		if a.Dims == UnknownDims || b.Dims == UnknownDims {
			// Two unknown-dim arrays are never trivially equal, even
			// with identical element types: solveOne's equal-shortcut
			// must not skip solveArrayPair's lower-bound cell merge.
			return false
		}
		if a.Dims != b.Dims {
			return false
		}
		return Equals(a.Inner, b.Inner)
	case Function:
		if len(a.Params) != len(b.Params) {
			return false
		}
		for i := range a.Params {
			if !Equals(a.Params[i], b.Params[i]) {
				return false
			}
		}
		return Equals(a.Result, b.Result)
	case Constructor:
		return a.Parent == b.Parent && a.Name == b.Name
	case Custom:
		return a == b
	default:
		return false
	}
}
