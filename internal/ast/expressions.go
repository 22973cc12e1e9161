package ast

import "github.com/ZOrfeas/llamac/internal/token"

// --- Literals ---

type IntLiteral struct {
	exprBase
	Value int64
}

func (n *IntLiteral) Accept(v Visitor) { v.VisitIntLiteral(n) }

type FloatLiteral struct {
	exprBase
	Value float64
}

func (n *FloatLiteral) Accept(v Visitor) { v.VisitFloatLiteral(n) }

type CharLiteral struct {
	exprBase
	Value byte
}

func (n *CharLiteral) Accept(v Visitor) { v.VisitCharLiteral(n) }

type BoolLiteral struct {
	exprBase
	Value bool
}

func (n *BoolLiteral) Accept(v Visitor) { v.VisitBoolLiteral(n) }

// StringLiteral desugars to a heap array of char (array of ref char, per the
// array-element invariant in spec §3.1): its resolved type is always
// Array(Ref(Char), dims=1).
type StringLiteral struct {
	exprBase
	Value string
}

func (n *StringLiteral) Accept(v Visitor) { v.VisitStringLiteral(n) }

// UnitLiteral is "()".
type UnitLiteral struct{ exprBase }

func (n *UnitLiteral) Accept(v Visitor) { v.VisitUnitLiteral(n) }

// Identifier references a term-level binding.
type Identifier struct {
	exprBase
	Name string
}

func (n *Identifier) Accept(v Visitor) { v.VisitIdentifier(n) }

// BinaryExpr covers every binary operator in spec §4.4's typing-rule table.
type BinaryExpr struct {
	exprBase
	Op    token.Type
	Left  Expression
	Right Expression
}

func (n *BinaryExpr) Accept(v Visitor) { v.VisitBinaryExpr(n) }

// UnaryExpr covers unary +, -, +., -., not, !, delete.
type UnaryExpr struct {
	exprBase
	Op      token.Type
	Operand Expression
}

func (n *UnaryExpr) Accept(v Visitor) { v.VisitUnaryExpr(n) }

// AssignExpr is "e1 := e2".
type AssignExpr struct {
	exprBase
	Target Expression
	Value  Expression
}

func (n *AssignExpr) Accept(v Visitor) { v.VisitAssignExpr(n) }

// SeqExpr is "e1; e2".
type SeqExpr struct {
	exprBase
	First  Expression
	Second Expression
}

func (n *SeqExpr) Accept(v Visitor) { v.VisitSeqExpr(n) }

// NewExpr is "new T" — T must not itself be an array (§4.4).
type NewExpr struct {
	exprBase
	TypeAST TypeExpr
}

func (n *NewExpr) Accept(v Visitor) { v.VisitNewExpr(n) }

// NewArrayExpr is "new array [e1,...,ek] of T" — array allocation with
// explicit per-dimension size expressions.
type NewArrayExpr struct {
	exprBase
	Sizes   []Expression
	Elem    TypeExpr
}

func (n *NewArrayExpr) Accept(v Visitor) { v.VisitNewArrayExpr(n) }

// IfExpr is "if c then a [else b]".
type IfExpr struct {
	exprBase
	Cond Expression
	Then Expression
	Else Expression // nil if no else branch
}

func (n *IfExpr) Accept(v Visitor) { v.VisitIfExpr(n) }

// WhileExpr is "while c do e done".
type WhileExpr struct {
	exprBase
	Cond Expression
	Body Expression
}

func (n *WhileExpr) Accept(v Visitor) { v.VisitWhileExpr(n) }

// ForExpr is "for i = s to/downto f do e done".
type ForExpr struct {
	exprBase
	Var     string
	Start   Expression
	Down    bool // true = downto, false = to
	Finish  Expression
	Body    Expression
}

func (n *ForExpr) Accept(v Visitor) { v.VisitForExpr(n) }

// CallExpr is a function call or a constructor call; the analyzer
// disambiguates by looking up Callee.Name in the constructor table first.
type CallExpr struct {
	exprBase
	Callee *Identifier
	Args   []Expression
}

func (n *CallExpr) Accept(v Visitor) { v.VisitCallExpr(n) }

// IndexExpr is "a[i1,...,ik]".
type IndexExpr struct {
	exprBase
	Array   Expression
	Indices []Expression
}

func (n *IndexExpr) Accept(v Visitor) { v.VisitIndexExpr(n) }

// DimExpr is "dim i a" (i optional, defaults to 1 when omitted: "dim a").
type DimExpr struct {
	exprBase
	Index int // 1-based; 0 means omitted (defaults to 1 at lowering)
	Array Expression
}

func (n *DimExpr) Accept(v Visitor) { v.VisitDimExpr(n) }

// LetInExpr is "let ... in e" / "let rec ... in e": an expression-position
// definition that opens a scope closed after Body.
type LetInExpr struct {
	exprBase
	Def  Definition // *LetDefinition or *LetRecDefinition
	Body Expression
}

func (n *LetInExpr) Accept(v Visitor) { v.VisitLetInExpr(n) }

// MatchExpr is "match e with p1 -> e1 | p2 -> e2 | ...".
type MatchExpr struct {
	exprBase
	Subject Expression
	Clauses []*MatchClause
}

func (n *MatchExpr) Accept(v Visitor) { v.VisitMatchExpr(n) }

type MatchClause struct {
	Tok     token.Token
	Pattern Pattern
	Body    Expression
}
