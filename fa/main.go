// Command fa analyzes a portfolio: net asset value, gains, returns and
// performance attribution over the records stored in a sqlite database.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/folio/cmd"
	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	// exits when invoked by the shell to complete the command line
	cmd.Completion(commander).Complete("fa")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
