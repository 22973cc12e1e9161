// Package driver assembles the whole-program pipeline — parse, semantic
// analysis, constraint solving, IR lowering, emission — and the §6
// command-line surface around it. Grounded on the teacher's
// internal/pipeline (Pipeline{processors}, a Processor's
// Process(ctx) *PipelineContext shape), reused here as DriverContext plus
// a short ordered list of stage functions, with one deliberate deviation:
// the teacher's own pipeline.Run comment says "Continue on errors to
// collect diagnostics from all stages" (it needs that for its LSP use
// case); this compiler's §7 error policy is "no diagnostic batching,
// first error wins", so Run stops at the first stage that reports one.
package driver

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/ZOrfeas/llamac/internal/analyzer"
	"github.com/ZOrfeas/llamac/internal/ast"
	"github.com/ZOrfeas/llamac/internal/config"
	"github.com/ZOrfeas/llamac/internal/diagnostics"
	"github.com/ZOrfeas/llamac/internal/inference"
	"github.com/ZOrfeas/llamac/internal/ir"
	"github.com/ZOrfeas/llamac/internal/lexer"
	"github.com/ZOrfeas/llamac/internal/lower"
	"github.com/ZOrfeas/llamac/internal/parser"
	"github.com/ZOrfeas/llamac/internal/symbols"
)

// DriverContext carries the state that flows between stages, mirroring
// the teacher's PipelineContext (AST root, accumulated errors) but
// narrowed to this compiler's single-DiagnosticError, stop-on-first-error
// model: at most one of Err is ever set, and every stage after the one
// that set it is skipped.
type DriverContext struct {
	Session uuid.UUID

	Source string
	Opt    *Options

	Prog  *ast.Program
	Terms *symbols.TermTable
	Types *symbols.TypeTable
	Ctors *symbols.ConstructorTable
	Inf   *inference.Inferencer
	Mod   *ir.Module

	Err *diagnostics.DiagnosticError
}

func (c *DriverContext) failed() bool { return c.Err != nil }

// Run is the entry point cmd/llamac/main.go delegates to: parse args,
// read source from in, run the pipeline, write results to out/logw, and
// return the process exit code (§6: 0 success, 1 any user-visible error).
func Run(args []string, in io.Reader, out, logw io.Writer) int {
	opt, err := ParseArgs(args)
	if err != nil {
		fmt.Fprintln(logw, err)
		fmt.Fprint(logw, Usage)
		return 1
	}
	if opt.Help {
		fmt.Fprint(out, Usage)
		return 0
	}
	if opt.OutFile != "" && !opt.EmitObject && !opt.EmitAsm {
		f, err := os.Create(opt.OutFile)
		if err != nil {
			fmt.Fprintf(logw, "opening %s: %s\n", opt.OutFile, err)
			return 1
		}
		defer f.Close()
		out = f
	}

	src, err := io.ReadAll(in)
	if err != nil {
		fmt.Fprintf(logw, "reading stdin: %s\n", err)
		return 1
	}

	ctx := &DriverContext{Session: uuid.New(), Source: string(src), Opt: opt}
	if opt.InfLogs || opt.TLogs {
		fmt.Fprintf(logw, "[%s] session %s starting\n", config.Version, ctx.Session)
	}

	runPipeline(ctx, out, logw)

	if ctx.failed() {
		diagnostics.Print(ctx.Err)
		return 1
	}
	return 0
}

// runPipeline executes each stage in order, short-circuiting as soon as
// ctx.Err is set or the requested -frontend stage is reached.
func runPipeline(ctx *DriverContext, out, logw io.Writer) {
	stageParse(ctx, logw)
	if ctx.failed() || ctx.Opt.Frontend == config.StageSyntax {
		maybeDumpAST(ctx, out)
		return
	}

	stageAnalyze(ctx, logw)
	maybeDumpAST(ctx, out)
	if ctx.failed() || ctx.Opt.Frontend == config.StageSem {
		return
	}

	stageSolve(ctx, logw)
	if ctx.Opt.DumpIDTypes {
		fmt.Fprint(out, DumpIDTypes(ctx.Prog, ctx.Terms, ctx.Inf))
	}
	if ctx.failed() || ctx.Opt.Frontend == config.StageInf {
		return
	}

	stageLower(ctx, logw)
	if ctx.failed() {
		return
	}

	stageEmit(ctx, out, logw)
}

func maybeDumpAST(ctx *DriverContext, out io.Writer) {
	if ctx.Opt.DumpAST && ctx.Prog != nil {
		fmt.Fprint(out, DumpAST(ctx.Prog))
	}
}

func stageParse(ctx *DriverContext, logw io.Writer) {
	if ctx.Opt.TLogs {
		fmt.Fprintf(logw, "[%s] parse: %d bytes of source\n", ctx.Session, len(ctx.Source))
	}
	p := parser.New(lexer.New(ctx.Source))
	prog, perr := p.ParseProgram()
	if perr != nil {
		ctx.Err = perr
		return
	}
	ctx.Prog = prog
}

func stageAnalyze(ctx *DriverContext, logw io.Writer) {
	ctx.Terms = symbols.NewTermTable()
	symbols.InsertPrelude(ctx.Terms)
	ctx.Types = symbols.NewTypeTable()
	ctx.Ctors = symbols.NewConstructorTable()
	ctx.Inf = inference.New()

	if ctx.Opt.TLogs {
		fmt.Fprintf(logw, "[%s] semantic analysis starting\n", ctx.Session)
	}
	a := analyzer.New(ctx.Terms, ctx.Types, ctx.Ctors, ctx.Inf)
	if err := a.Analyze(ctx.Prog); err != nil {
		ctx.Err = err
	}
}

func stageSolve(ctx *DriverContext, logw io.Writer) {
	strict := ctx.Opt.Frontend != config.StageInf
	if ctx.Opt.InfLogs {
		fmt.Fprintf(logw, "[%s] solving constraints (strict=%t)\n", ctx.Session, strict)
	}
	if err := ctx.Inf.SolveAll(strict); err != nil {
		ctx.Err = err
	}
}

func stageLower(ctx *DriverContext, logw io.Writer) {
	if ctx.Opt.TLogs {
		fmt.Fprintf(logw, "[%s] lowering to IR\n", ctx.Session)
	}
	lw := lower.New(ctx.Inf, ctx.Terms, ctx.Ctors)
	mod, err := lw.LowerProgram(ctx.Prog)
	if err != nil {
		ctx.Err = err
		return
	}
	ctx.Mod = mod
}

// stageEmit writes the requested outputs (§6): -i prints IR text, -f/-S
// are accepted but, absent a real target backend in this module (no Go
// LLVM binding exists anywhere in the reference corpus, see
// internal/ir's package doc), fall back to writing the same textual IR
// to the object/assembly destination — runtime/*.c and an external
// assembler/linker step are what actually turn that into a native binary
// (out of process scope here, same "external collaborator" boundary the
// parser already sits behind).
func stageEmit(ctx *DriverContext, out io.Writer, logw io.Writer) {
	text := ctx.Mod.String()
	if ctx.Opt.PrintIR {
		fmt.Fprint(out, text)
	}
	if !ctx.Opt.EmitObject && !ctx.Opt.EmitAsm {
		return
	}
	dest := ctx.Opt.OutFile
	if dest == "" {
		if ctx.Opt.EmitAsm {
			dest = "a.ll"
		} else {
			dest = "a.o"
		}
	}
	if err := os.WriteFile(dest, []byte(text), 0o644); err != nil {
		ctx.Err = diagnostics.NewErrorAt(diagnostics.ErrIRVerify, 0, 0, fmt.Sprintf("writing %s: %s", dest, err))
		return
	}
	if ctx.Opt.TLogs {
		fmt.Fprintf(logw, "[%s] wrote %s\n", ctx.Session, dest)
	}
}
