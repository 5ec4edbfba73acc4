package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

func main() {

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&buildCmd{}, "sequensa")
	subcommands.Register(&runCmd{}, "sequensa")
	subcommands.Register(&infoCmd{}, "sequensa")
	subcommands.Register(&decompileCmd{}, "sequensa")
	subcommands.Register(&shellCmd{}, "sequensa")

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}
