// Package ast defines the AST node types consumed by the semantic analyzer
// and IR lowerer. Per spec §1, lexing and parsing are external collaborators;
// this package only describes the shape of a "ready AST" — every node
// carries its source line number and, once the semantic pass has run, its
// resolved type graph node.
package ast

import (
	"github.com/ZOrfeas/llamac/internal/token"
	"github.com/ZOrfeas/llamac/internal/typegraph"
)

// Node is the base interface implemented by every AST node.
type Node interface {
	Line() int
	Accept(v Visitor)
}

// Expression is a Node that produces a value and carries a resolved type
// graph node once semantic analysis has completed.
type Expression interface {
	Node
	expressionNode()
	ResolvedType() *typegraph.Node
	SetResolvedType(*typegraph.Node)
}

// Definition is a top-level or let-bound definition.
type Definition interface {
	Node
	definitionNode()
}

// Pattern is a match-clause or parameter pattern.
type Pattern interface {
	Node
	patternNode()
	ResolvedType() *typegraph.Node
	SetResolvedType(*typegraph.Node)
}

// exprBase centralizes line tracking and resolved-type storage so every
// concrete expression node only needs to embed it.
type exprBase struct {
	Tok token.Token
	typ *typegraph.Node
}

func (e *exprBase) Line() int                            { return e.Tok.Line }
func (e *exprBase) ResolvedType() *typegraph.Node         { return e.typ }
func (e *exprBase) SetResolvedType(t *typegraph.Node)     { e.typ = t }
func (e *exprBase) expressionNode()                       {}

// Program is the root node produced by the parser: a sequence of top-level
// definitions (lets, let recs, and type declarations), in source order.
type Program struct {
	Definitions []Definition
}

func (p *Program) Line() int       { return 0 }
func (p *Program) Accept(v Visitor) { v.VisitProgram(p) }

// Parameter is a function parameter: a name plus an optional declared type
// (nil when elided, in which case the analyzer manufactures a fresh Unknown).
type Parameter struct {
	Tok     token.Token
	Name    string
	TypeAST TypeExpr // nil if elided
}

func (p *Parameter) Line() int        { return p.Tok.Line }
func (p *Parameter) Accept(v Visitor) { v.VisitParameter(p) }

// TypeExpr is a syntactic type annotation, as written by the programmer
// (e.g. "int", "array [*,*] of int", "int ref", "int -> bool").
type TypeExpr interface {
	Node
	typeExprNode()
}

type typeExprBase struct{ Tok token.Token }

func (t *typeExprBase) Line() int { return t.Tok.Line }
func (t *typeExprBase) typeExprNode() {}

// NamedTypeExpr names one of the five primitives or a user-defined Custom.
type NamedTypeExpr struct {
	typeExprBase
	Name string
}

func (n *NamedTypeExpr) Accept(v Visitor) { v.VisitNamedTypeExpr(n) }

// RefTypeExpr is "T ref".
type RefTypeExpr struct {
	typeExprBase
	Inner TypeExpr
}

func (n *RefTypeExpr) Accept(v Visitor) { v.VisitRefTypeExpr(n) }

// ArrayTypeExpr is "array [*,*,...] of T" — Dims is the number of stars
// (commas+1); per §3.1 the element TG must itself be Ref, so the analyzer
// resolves the element as a Ref to T.
type ArrayTypeExpr struct {
	typeExprBase
	Dims  int
	Inner TypeExpr
}

func (n *ArrayTypeExpr) Accept(v Visitor) { v.VisitArrayTypeExpr(n) }

// FuncTypeExpr is "T1 -> T2 -> ... -> R" flattened to params + result.
type FuncTypeExpr struct {
	typeExprBase
	Params []TypeExpr
	Result TypeExpr
}

func (n *FuncTypeExpr) Accept(v Visitor) { v.VisitFuncTypeExpr(n) }
