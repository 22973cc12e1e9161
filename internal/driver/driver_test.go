package driver

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ZOrfeas/llamac/internal/config"
)

func run(t *testing.T, args []string, src string) (exit int, stdout, stderr string) {
	t.Helper()
	var out, errw bytes.Buffer
	exit = Run(args, strings.NewReader(src), &out, &errw)
	return exit, out.String(), errw.String()
}

func TestParseArgsRecognisesEveryFlag(t *testing.T) {
	opt, err := ParseArgs([]string{"-O", "-i", "-f", "-S", "-ast", "-idtypes", "-inflogs", "-tlogs", "-o", "out.ll", "-frontend", "sem"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !opt.Optimise || !opt.PrintIR || !opt.EmitObject || !opt.EmitAsm || !opt.DumpAST || !opt.DumpIDTypes || !opt.InfLogs || !opt.TLogs {
		t.Fatalf("expected every boolean flag set, got %+v", opt)
	}
	if opt.OutFile != "out.ll" {
		t.Fatalf("expected -o to capture out.ll, got %q", opt.OutFile)
	}
	if opt.Frontend != config.StageSem {
		t.Fatalf("expected -frontend sem, got %q", opt.Frontend)
	}
}

func TestParseArgsRejectsUnknownFlag(t *testing.T) {
	if _, err := ParseArgs([]string{"-bogus"}); err == nil {
		t.Fatal("expected an error for an unrecognised flag")
	}
}

func TestParseArgsRejectsDanglingValueFlags(t *testing.T) {
	if _, err := ParseArgs([]string{"-o"}); err == nil {
		t.Fatal("expected an error when -o has no following argument")
	}
	if _, err := ParseArgs([]string{"-frontend"}); err == nil {
		t.Fatal("expected an error when -frontend has no following argument")
	}
	if _, err := ParseArgs([]string{"-frontend", "bogus"}); err == nil {
		t.Fatal("expected an error for an unknown -frontend stage")
	}
}

func TestRunHelpPrintsUsageAndExitsZero(t *testing.T) {
	exit, out, _ := run(t, []string{"-help"}, "")
	if exit != 0 {
		t.Fatalf("expected exit 0 for -help, got %d", exit)
	}
	if !strings.Contains(out, "usage: llamac") {
		t.Fatalf("expected usage text, got %q", out)
	}
}

func TestRunCompilesAWellTypedProgramToExitZero(t *testing.T) {
	exit, _, stderr := run(t, nil, `let main = print_int 42`)
	if exit != 0 {
		t.Fatalf("expected exit 0, got %d (stderr: %s)", exit, stderr)
	}
}

func TestRunReportsParseErrorAndExitsOne(t *testing.T) {
	exit, _, _ := run(t, nil, `let main = (`)
	if exit != 1 {
		t.Fatalf("expected exit 1 on a parse error, got %d", exit)
	}
}

func TestRunReportsTypeErrorAndExitsOne(t *testing.T) {
	exit, _, _ := run(t, nil, `let main = print_int true`)
	if exit != 1 {
		t.Fatalf("expected exit 1 on a type error, got %d", exit)
	}
}

func TestRunStopsAtSyntaxStageWithoutAnalyzing(t *testing.T) {
	// An unbound identifier would fail semantic analysis, but -frontend
	// syntax must stop before that stage ever runs.
	exit, _, _ := run(t, []string{"-frontend", "syntax"}, `let main = totally_unbound_name`)
	if exit != 0 {
		t.Fatalf("expected exit 0 when stopping at the syntax stage, got %d", exit)
	}
}

func TestRunDumpsASTWhenRequested(t *testing.T) {
	exit, out, _ := run(t, []string{"-ast", "-frontend", "syntax"}, `let main = 1`)
	if exit != 0 {
		t.Fatalf("expected exit 0, got %d", exit)
	}
	if !strings.Contains(out, "LetDefinition") || !strings.Contains(out, "IntLiteral 1") {
		t.Fatalf("expected an AST dump, got %q", out)
	}
}

func TestRunDumpsIDTypesWhenRequested(t *testing.T) {
	exit, out, _ := run(t, []string{"-idtypes"}, `let id x = x
let main = print_int (id 1)`)
	if exit != 0 {
		t.Fatalf("expected exit 0, got %d", exit)
	}
	if !strings.Contains(out, "id :") || !strings.Contains(out, "main :") {
		t.Fatalf("expected id/main type entries, got %q", out)
	}
}

func TestRunPrintsIRWhenRequested(t *testing.T) {
	exit, out, _ := run(t, []string{"-i"}, `let main = print_int 1`)
	if exit != 0 {
		t.Fatalf("expected exit 0, got %d", exit)
	}
	if !strings.Contains(out, "define") && !strings.Contains(out, "main") {
		t.Fatalf("expected IR text mentioning main, got %q", out)
	}
}
