package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/magistermaks/sequensa-sub000/seq"
	"github.com/magistermaks/sequensa-sub000/vm"
)

// runCmd executes a compiled bytecode file and prints its exit value.
type runCmd struct {
	verbose    bool
	force      bool
	strictMath bool
	printAll   bool
	printNone  bool
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "Execute a compiled Sequensa program" }
func (*runCmd) Usage() string {
	return `run <program.sqc>:
  Execute a compiled Sequensa program.
`
}

func (r *runCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&r.verbose, "v", false, "enable verbose output")
	f.BoolVar(&r.force, "force", false, "run regardless of version mismatch")
	f.BoolVar(&r.strictMath, "strict", false, "treat mismatched operands as runtime errors")
	f.BoolVar(&r.printAll, "all", false, "print the whole result stream")
	f.BoolVar(&r.printNone, "none", false, "do not print the exit value")
}

func (r *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {

	args := f.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Expected one filename!")
		return subcommands.ExitUsageError
	}

	setupLogging(r.verbose)

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read file: %v\n", err)
		return subcommands.ExitFailure
	}

	reader := seq.NewByteBuffer(data).Reader()

	header, ok := loadHeader(reader)
	if !ok {
		return subcommands.ExitFailure
	}
	if !validateVersion(header, r.force) {
		return subcommands.ExitFailure
	}

	exe := vm.NewExecutor()
	exe.SetStrictMath(r.strictMath)

	if !loadNativeLibs(exe, header) {
		fmt.Println("Failed to create virtual environment, start aborted!")
		return subcommands.ExitFailure
	}

	if err := exe.Execute(reader.SubBuffer(), nil); err != nil {
		fmt.Println(errorText("Runtime error!"))
		fmt.Println(err)
		return subcommands.ExitFailure
	}

	if r.printNone {
		return subcommands.ExitSuccess
	}

	fmt.Print("Exit value: ")

	if r.printAll {
		for _, result := range exe.Results() {
			str, err := seq.StringCast(result)
			if err != nil {
				fmt.Println(errorText(err.Error()))
				return subcommands.ExitFailure
			}
			fmt.Print(resultText(str.(*seq.String).Value), " ")
		}
		fmt.Println()
		return subcommands.ExitSuccess
	}

	str, err := exe.ResultString()
	if err != nil {
		fmt.Println(errorText(err.Error()))
		return subcommands.ExitFailure
	}
	fmt.Println(resultText(str))

	return subcommands.ExitSuccess
}
