package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"github.com/magistermaks/sequensa-sub000/compiler"
	"github.com/magistermaks/sequensa-sub000/seq"
	"github.com/magistermaks/sequensa-sub000/stdlib"
	"github.com/magistermaks/sequensa-sub000/vm"
)

// shellCmd starts an interactive session: every line is compiled and
// executed, the result stream is printed back.
type shellCmd struct {
	verbose    bool
	strictMath bool
	modules    string
}

func (*shellCmd) Name() string     { return "shell" }
func (*shellCmd) Synopsis() string { return "Start an interactive Sequensa shell" }
func (*shellCmd) Usage() string {
	return `shell:
  Start an interactive Sequensa shell.
`
}

func (s *shellCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&s.verbose, "v", false, "enable verbose output")
	f.BoolVar(&s.strictMath, "strict", false, "treat mismatched operands as runtime errors")
	f.StringVar(&s.modules, "load", "", "comma-separated native modules to preload")
}

func (s *shellCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {

	setupLogging(s.verbose)

	exe := vm.NewExecutor()
	exe.SetStrictMath(s.strictMath)

	header := seq.NewFileHeader(seq.APIVersionMajor, seq.APIVersionMinor, seq.APIVersionPatch, buildHeaderMap(nil))

	for _, name := range strings.Split(s.modules, ",") {
		if name == "" {
			continue
		}
		if err := stdlib.Load(exe, header, name); err != nil {
			fmt.Println(errorText(err.Error()))
			return subcommands.ExitFailure
		}
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     os.TempDir() + "/sequensa_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start shell: %v\n", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	fmt.Printf("Sequensa %d.%d.%d shell, type 'exit' to quit.\n", seq.APIVersionMajor, seq.APIVersionMinor, seq.APIVersionPatch)

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF || strings.TrimSpace(line) == "exit" {
			return subcommands.ExitSuccess
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		buffer, err := compiler.Compile(line)
		if err != nil {
			fmt.Println(errorText(err.Error()))
			continue
		}
		if len(buffer) == 0 {
			continue
		}

		if err := exe.Execute(seq.NewByteBuffer(buffer), nil); err != nil {
			fmt.Println(errorText(err.Error()))
			continue
		}

		var parts []string
		for _, result := range exe.Results() {
			str, err := seq.StringCast(result)
			if err != nil {
				parts = append(parts, "?")
				continue
			}
			parts = append(parts, str.(*seq.String).Value)
		}
		fmt.Println(resultText(strings.Join(parts, " ")))
	}
}
