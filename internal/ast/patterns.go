package ast

import (
	"github.com/ZOrfeas/llamac/internal/token"
	"github.com/ZOrfeas/llamac/internal/typegraph"
)

type patternBase struct {
	Tok token.Token
	typ *typegraph.Node
}

func (p *patternBase) Line() int                        { return p.Tok.Line }
func (p *patternBase) ResolvedType() *typegraph.Node     { return p.typ }
func (p *patternBase) SetResolvedType(t *typegraph.Node) { p.typ = t }
func (p *patternBase) patternNode()                      {}

// LiteralPattern matches a literal int/char/bool/float value.
type LiteralPattern struct {
	patternBase
	Value Expression // one of IntLiteral/CharLiteral/BoolLiteral/FloatLiteral
}

func (p *LiteralPattern) Accept(v Visitor) { v.VisitLiteralPattern(p) }

// IdPattern binds a fresh name to the matched value (always succeeds).
type IdPattern struct {
	patternBase
	Name string
}

func (p *IdPattern) Accept(v Visitor) { v.VisitIdPattern(p) }

// WildcardPattern "_" always succeeds and binds nothing.
type WildcardPattern struct{ patternBase }

func (p *WildcardPattern) Accept(v Visitor) { v.VisitWildcardPattern(p) }

// ConstructorPattern is "C p1 ... pn", "C(p1, ..., pn)" or "C" (n=0).
type ConstructorPattern struct {
	patternBase
	Name    string
	SubPats []Pattern
}

func (p *ConstructorPattern) Accept(v Visitor) { v.VisitConstructorPattern(p) }
