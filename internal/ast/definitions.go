package ast

import "github.com/ZOrfeas/llamac/internal/token"

// LetDefinition is "let x1 = e1 and x2 = e2 and ...": each binding analyzed
// in the enclosing scope, all identifiers inserted at the end (§4.4).
type LetDefinition struct {
	Tok      token.Token
	Bindings []*Binding
}

func (d *LetDefinition) Line() int        { return d.Tok.Line }
func (d *LetDefinition) Accept(v Visitor) { v.VisitLetDefinition(d) }
func (d *LetDefinition) definitionNode()  {}

// LetRecDefinition is "let rec f1 params = e1 and f2 params = e2 and ...":
// every binding must be a function; all identifiers inserted first (§4.4).
type LetRecDefinition struct {
	Tok      token.Token
	Bindings []*Binding
}

func (d *LetRecDefinition) Line() int        { return d.Tok.Line }
func (d *LetRecDefinition) Accept(v Visitor) { v.VisitLetRecDefinition(d) }
func (d *LetRecDefinition) definitionNode()  {}

// Binding is a single "name params = body" clause of a let/let rec group.
// Params is empty for a plain constant binding.
type Binding struct {
	Tok        token.Token
	Name       string
	Params     []*Parameter
	ReturnType TypeExpr // optional declared result type
	Body       Expression
}

func (b *Binding) Line() int { return b.Tok.Line }

// TypeDefinition is "type name1 = constructors1 and name2 = constructors2
// and ...": all type names inserted first, then all constructors (§4.4),
// so mutually recursive ADTs can refer to each other.
type TypeDefinition struct {
	Tok   token.Token
	Types []*TypeDecl
}

func (d *TypeDefinition) Line() int        { return d.Tok.Line }
func (d *TypeDefinition) Accept(v Visitor) { v.VisitTypeDefinition(d) }
func (d *TypeDefinition) definitionNode()  {}

// TypeDecl is one "Name = Constructor1 of T... | Constructor2 of T..." arm.
type TypeDecl struct {
	Tok          token.Token
	Name         string
	Constructors []*ConstructorDecl
}

// ConstructorDecl is "CName of T1 T2 ... Tn" (n may be 0).
type ConstructorDecl struct {
	Tok    token.Token
	Name   string
	Fields []TypeExpr
}
