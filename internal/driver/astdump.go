package driver

import (
	"bytes"
	"fmt"

	"github.com/ZOrfeas/llamac/internal/ast"
)

// astDumper renders a parsed Program as an indented tree, one node per
// line, for -ast. Grounded on the teacher's CodePrinter's indent-tracking
// idiom (internal/prettyprinter/code_printer.go), trimmed from a
// round-trippable source printer to a debug tree dump — this view never
// needs to be re-parsed.
type astDumper struct {
	buf    bytes.Buffer
	indent int
}

// DumpAST renders prog as an indented tree of its definitions.
func DumpAST(prog *ast.Program) string {
	d := &astDumper{}
	for _, def := range prog.Definitions {
		d.visitDefinition(def)
	}
	return d.buf.String()
}

func (d *astDumper) line(format string, args ...any) {
	for i := 0; i < d.indent; i++ {
		d.buf.WriteString("  ")
	}
	fmt.Fprintf(&d.buf, format, args...)
	d.buf.WriteByte('\n')
}

func (d *astDumper) visitDefinition(def ast.Definition) {
	switch n := def.(type) {
	case *ast.LetDefinition:
		d.line("LetDefinition")
		d.indent++
		for _, b := range n.Bindings {
			d.visitBinding(b)
		}
		d.indent--
	case *ast.LetRecDefinition:
		d.line("LetRecDefinition")
		d.indent++
		for _, b := range n.Bindings {
			d.visitBinding(b)
		}
		d.indent--
	case *ast.TypeDefinition:
		names := make([]string, len(n.Types))
		for i, t := range n.Types {
			names[i] = t.Name
		}
		d.line("TypeDefinition %v", names)
	default:
		d.line("<unknown definition %T>", def)
	}
}

func (d *astDumper) visitBinding(b *ast.Binding) {
	params := make([]string, len(b.Params))
	for i, p := range b.Params {
		params[i] = p.Name
	}
	d.line("Binding %s%v", b.Name, params)
	d.indent++
	d.visitExpr(b.Body)
	d.indent--
}

func (d *astDumper) visitExpr(e ast.Expression) {
	if e == nil {
		d.line("<nil>")
		return
	}
	switch n := e.(type) {
	case *ast.IntLiteral:
		d.line("IntLiteral %d", n.Value)
	case *ast.FloatLiteral:
		d.line("FloatLiteral %g", n.Value)
	case *ast.CharLiteral:
		d.line("CharLiteral %q", n.Value)
	case *ast.BoolLiteral:
		d.line("BoolLiteral %t", n.Value)
	case *ast.StringLiteral:
		d.line("StringLiteral %q", n.Value)
	case *ast.UnitLiteral:
		d.line("UnitLiteral")
	case *ast.Identifier:
		d.line("Identifier %s", n.Name)
	case *ast.BinaryExpr:
		d.line("BinaryExpr %v", n.Op)
		d.indent++
		d.visitExpr(n.Left)
		d.visitExpr(n.Right)
		d.indent--
	case *ast.UnaryExpr:
		d.line("UnaryExpr %v", n.Op)
		d.indent++
		d.visitExpr(n.Operand)
		d.indent--
	case *ast.AssignExpr:
		d.line("AssignExpr")
		d.indent++
		d.visitExpr(n.Target)
		d.visitExpr(n.Value)
		d.indent--
	case *ast.SeqExpr:
		d.line("SeqExpr")
		d.indent++
		d.visitExpr(n.First)
		d.visitExpr(n.Second)
		d.indent--
	case *ast.NewExpr:
		d.line("NewExpr")
	case *ast.NewArrayExpr:
		d.line("NewArrayExpr")
		d.indent++
		for _, s := range n.Sizes {
			d.visitExpr(s)
		}
		d.indent--
	case *ast.IfExpr:
		d.line("IfExpr")
		d.indent++
		d.visitExpr(n.Cond)
		d.visitExpr(n.Then)
		if n.Else != nil {
			d.visitExpr(n.Else)
		}
		d.indent--
	case *ast.WhileExpr:
		d.line("WhileExpr")
		d.indent++
		d.visitExpr(n.Cond)
		d.visitExpr(n.Body)
		d.indent--
	case *ast.ForExpr:
		d.line("ForExpr %s down=%t", n.Var, n.Down)
		d.indent++
		d.visitExpr(n.Start)
		d.visitExpr(n.Finish)
		d.visitExpr(n.Body)
		d.indent--
	case *ast.CallExpr:
		d.line("CallExpr %s", n.Callee.Name)
		d.indent++
		for _, a := range n.Args {
			d.visitExpr(a)
		}
		d.indent--
	case *ast.IndexExpr:
		d.line("IndexExpr")
		d.indent++
		d.visitExpr(n.Array)
		for _, idx := range n.Indices {
			d.visitExpr(idx)
		}
		d.indent--
	case *ast.DimExpr:
		d.line("DimExpr index=%d", n.Index)
		d.indent++
		d.visitExpr(n.Array)
		d.indent--
	case *ast.LetInExpr:
		d.line("LetInExpr")
		d.indent++
		d.visitDefinition(n.Def)
		d.visitExpr(n.Body)
		d.indent--
	case *ast.MatchExpr:
		d.line("MatchExpr")
		d.indent++
		d.visitExpr(n.Subject)
		for _, c := range n.Clauses {
			d.line("Clause")
			d.indent++
			d.visitPattern(c.Pattern)
			d.visitExpr(c.Body)
			d.indent--
		}
		d.indent--
	default:
		d.line("<unknown expression %T>", e)
	}
}

func (d *astDumper) visitPattern(p ast.Pattern) {
	switch n := p.(type) {
	case *ast.WildcardPattern:
		d.line("WildcardPattern")
	case *ast.IdPattern:
		d.line("IdPattern %s", n.Name)
	case *ast.LiteralPattern:
		d.line("LiteralPattern")
		d.indent++
		d.visitExpr(n.Value)
		d.indent--
	case *ast.ConstructorPattern:
		d.line("ConstructorPattern %s", n.Name)
		d.indent++
		for _, sub := range n.SubPats {
			d.visitPattern(sub)
		}
		d.indent--
	default:
		d.line("<unknown pattern %T>", p)
	}
}
