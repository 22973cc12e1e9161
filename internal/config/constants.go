package config

// Version is the current llamac version.
// Set at build time via -ldflags, or left at this default for dev builds.
var Version = "0.1.0"

// SourceFileExt is the extension used when deriving a.ll/a.o names; the
// driver itself always reads the program from standard input (§6).
const SourceFileExt = ".lc"

// OptLevel selects the optimisation pipeline the driver requests. -O maps
// to OptAggressive; its absence maps to OptNone (§6).
type OptLevel int

const (
	OptNone OptLevel = iota
	OptAggressive
)

// FrontendStage names the -frontend STAGE values (§6): the driver stops
// after the named stage instead of running the full pipeline.
type FrontendStage string

const (
	StageSyntax  FrontendStage = "syntax"
	StageSem     FrontendStage = "sem"
	StageInf     FrontendStage = "inf"
	StageCompile FrontendStage = "compile"
)

// IsTestMode is set once at startup by the golden-test harness so the
// driver can suppress interactive-only behavior (e.g. reading from a TTY).
var IsTestMode = false
