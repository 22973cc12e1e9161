package driver

import (
	"fmt"

	"github.com/ZOrfeas/llamac/internal/config"
)

// Options is the parsed form of §6's command-line surface: single-dash,
// no-"=" long options, scanned by hand rather than through the standard
// flag package (the teacher's own cmd/funxy/main.go hand-rolls os.Args
// scanning the same way).
type Options struct {
	Optimise    bool
	PrintIR     bool
	EmitObject  bool
	EmitAsm     bool
	OutFile     string
	DumpAST     bool
	DumpIDTypes bool
	InfLogs     bool
	TLogs       bool
	Frontend    config.FrontendStage
	Help        bool
}

// ParseArgs scans args (os.Args[1:]) for §6's flag table. Unknown flags
// are a usage error; -o and -frontend require a following argument.
func ParseArgs(args []string) (*Options, error) {
	opt := &Options{Frontend: config.StageCompile}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-O":
			opt.Optimise = true
		case "-i":
			opt.PrintIR = true
		case "-f":
			opt.EmitObject = true
		case "-S":
			opt.EmitAsm = true
		case "-ast":
			opt.DumpAST = true
		case "-idtypes":
			opt.DumpIDTypes = true
		case "-inflogs":
			opt.InfLogs = true
		case "-tlogs":
			opt.TLogs = true
		case "-help":
			opt.Help = true
		case "-o":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("-o requires a file argument")
			}
			i++
			opt.OutFile = args[i]
		case "-frontend":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("-frontend requires a STAGE argument")
			}
			i++
			stage := config.FrontendStage(args[i])
			switch stage {
			case config.StageSyntax, config.StageSem, config.StageInf, config.StageCompile:
				opt.Frontend = stage
			default:
				return nil, fmt.Errorf("-frontend: unknown stage %q", args[i])
			}
		default:
			return nil, fmt.Errorf("unknown flag %q", args[i])
		}
	}
	return opt, nil
}

// Usage is printed by -help (§6, exit 0).
const Usage = `usage: llamac [options] < source.lc

  -O           enable the optimisation pipeline
  -i           print IR to stdout
  -f           emit an object file
  -S           emit assembly
  -o FILE      redirect stdout / object output to FILE
  -ast         dump the parsed AST
  -idtypes     dump a table of user identifiers with inferred types
  -inflogs     verbose inferencer logs
  -tlogs       verbose table logs
  -frontend STAGE   stop after STAGE (syntax, sem, inf, compile)
  -help        print this message and exit 0

Source is always read from standard input.
`
