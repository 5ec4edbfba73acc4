package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"github.com/magistermaks/sequensa-sub000/decompiler"
	"github.com/magistermaks/sequensa-sub000/seq"
)

// decompileCmd reconstructs source text from a compiled file.
type decompileCmd struct {
	force bool
}

func (*decompileCmd) Name() string     { return "decompile" }
func (*decompileCmd) Synopsis() string { return "Reconstruct source from a compiled Sequensa file" }
func (*decompileCmd) Usage() string {
	return `decompile <program.sqc>:
  Reconstruct source from a compiled Sequensa file.
`
}

func (d *decompileCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&d.force, "force", false, "decompile regardless of version mismatch")
}

func (d *decompileCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {

	args := f.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Expected one filename!")
		return subcommands.ExitUsageError
	}

	setupLogging(false)

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
	if !validateVersion(header, d.force) {
		return subcommands.ExitFailure
	}

	source, err := decompiler.Decompile(reader.SubBuffer().Reader())
	if err != nil {
		fmt.Println(errorText(err.Error()))
		return subcommands.ExitFailure
	}

	fmt.Println("// Decompiled using Sequensa Source Decompiler")
	fmt.Printf("// %s\n\n", posixTimeToDate(time.Now().Unix()))

	for _, load := range header.ValueTable("load") {
		fmt.Printf("load %q\n", load)
	}
	if len(header.ValueTable("load")) > 0 {
		fmt.Println()
	}

	fmt.Print(source)
	return subcommands.ExitSuccess
}
