package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/subcommands"

	"github.com/magistermaks/sequensa-sub000/seq"
)

// infoCmd summarizes the header of a compiled file.
type infoCmd struct{}

func (*infoCmd) Name() string     { return "info" }
func (*infoCmd) Synopsis() string { return "Print a summary of a compiled Sequensa file" }
func (*infoCmd) Usage() string {
	return `info <program.sqc>:
  Print a summary of a compiled Sequensa file.
`
}

func (*infoCmd) SetFlags(f *flag.FlagSet) {}

func (*infoCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {

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

	natives := header.ValueTable("load")
	strTable := header.ValueTable("str")

	aligned := ""
	if !header.CheckVersion(seq.APIVersionMajor, seq.APIVersionMinor) {
		aligned = " (unaligned)"
	}

	std, _ := header.Value("std")
	sys, _ := header.Value("sys")

	fmt.Printf("Compiled for: %s %s%s\n", header.VersionString(), std, aligned)
	fmt.Printf("Natives: %s\n", strings.Join(natives, ", "))
	fmt.Printf("Size: %d bytes (without header: %d bytes)\n", len(data), reader.SubBuffer().Size())

	if value, ok := header.Value("time"); ok {
		if seconds, err := strconv.ParseInt(value, 10, 64); err == nil {
			fmt.Printf("Build on: %s, at: %s\n", sys, posixTimeToDate(seconds))
		}
	}

	uses := "no"
	if len(strTable) != 0 {
		uses = "yes"
	}
	fmt.Printf("Uses string table: %s\n", uses)

	return subcommands.ExitSuccess
}
