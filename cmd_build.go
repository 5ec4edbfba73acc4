package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/subcommands"

	"github.com/magistermaks/sequensa-sub000/compiler"
	"github.com/magistermaks/sequensa-sub000/seq"
	"github.com/magistermaks/sequensa-sub000/token"
)

// buildCmd compiles a source tree into one bytecode file. 'load'
// directives naming '.sq' files pull in source dependencies; the rest are
// native module names recorded in the file header.
type buildCmd struct {
	verbose    bool
	multiError bool
}

func (*buildCmd) Name() string     { return "build" }
func (*buildCmd) Synopsis() string { return "Compile Sequensa source into a bytecode file" }
func (*buildCmd) Usage() string {
	return `build <input.sq> <output.sqc>:
  Compile Sequensa source into a bytecode file.
`
}

func (b *buildCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&b.verbose, "v", false, "enable verbose output")
	f.BoolVar(&b.multiError, "m", false, "collect multiple compilation errors")
}

func (b *buildCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {

	args := f.Args()
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "Expected two filenames!")
		return subcommands.ExitUsageError
	}

	setupLogging(b.verbose)

	unit, natives, ok := b.buildTree(args[0], map[string]bool{})
	if !ok {
		fmt.Println(errorText("Build failed!"))
		return subcommands.ExitFailure
	}

	writer := seq.NewBufferWriter()
	writer.PutFileHeader(seq.APIVersionMajor, seq.APIVersionMinor, seq.APIVersionPatch, buildHeaderMap(natives))
	writer.PutBuffer(unit)

	if err := os.WriteFile(args[1], writer.Bytes(), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write output file: %v\n", err)
		return subcommands.ExitFailure
	}

	log.Debugf("written %d bytes to '%s'", len(writer.Bytes()), args[1])
	return subcommands.ExitSuccess
}

// buildTree compiles one source file and, depth-first, every '.sq'
// dependency it loads. Dependency bytecode precedes the dependent unit so
// its definitions execute first.
func (b *buildCmd) buildTree(input string, done map[string]bool) ([]byte, []string, bool) {

	if done[input] {
		return nil, nil, true
	}
	done[input] = true

	data, err := os.ReadFile(input)
	if err != nil {
		fmt.Printf("Compilation of '%s' failed!\n", input)
		fmt.Println("No such file found!")
		return nil, nil, false
	}

	comp := compiler.New()
	failed := false

	if b.multiError {
		comp.SetErrorHandle(func(err *token.CompilerError) bool {
			if err.Critical {
				fmt.Println(errorText("Fatal: " + err.Error()))
				failed = true
				return true
			}
			fmt.Println(errorText("Error: " + err.Error()))
			failed = true
			return false
		})
	}

	buffer, err := comp.Compile(string(data))
	if err != nil || failed {
		if err != nil && !failed {
			fmt.Println(errorText(err.Error()))
		}
		fmt.Printf("Compilation of '%s' failed!\n", input)
		return nil, nil, false
	}

	var unit []byte
	var natives []string
	base := filepath.Dir(input)

	for _, load := range comp.Loads() {
		if strings.HasSuffix(load, ".sq") {
			dependency, subNatives, ok := b.buildTree(filepath.Join(base, load), done)
			if !ok {
				return nil, nil, false
			}
			unit = append(unit, dependency...)
			natives = append(natives, subNatives...)
		} else {
			natives = append(natives, load)
		}
	}

	unit = append(unit, buffer...)
	log.Debugf("compiled '%s' successfully", input)
	return unit, natives, true
}
