package cmd

import (
	"flag"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// flag values that can be predicted, whatever the command.
var predictors = map[string]complete.Predictor{
	"r":      predict.Set{"all", "public", "restricted"},
	"p":      predict.Set{"day", "week", "month", "quarter", "year"},
	"period": predict.Set{"day", "week", "month", "quarter", "year"},
	"m":      predict.Set{"nav", "irr"},
	"b":      predict.Set{"all", "asset-type", "currency", "asset-class", "account"},
	"layout": predict.Set{"unix", "unixms", "2006-01-02"},
	"o":      predict.Files("*"),
	"db":     predict.Files("*.db"),
}

// Completion describes the commands registered in c and their flags for shell
// completion.
func Completion(c *subcommands.Commander) *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: flagPredictors(flag.CommandLine),
	}
	c.VisitCommands(func(_ *subcommands.CommandGroup, cmd subcommands.Command) {
		f := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
		cmd.SetFlags(f)
		sub := &complete.Command{Flags: flagPredictors(f), Args: predict.Nothing}
		if cmd.Name() == "import" {
			sub.Args = predict.Files("*.json*")
		}
		root.Sub[cmd.Name()] = sub
	})
	return root
}

func flagPredictors(f *flag.FlagSet) map[string]complete.Predictor {
	flags := make(map[string]complete.Predictor)
	f.VisitAll(func(fl *flag.Flag) {
		p, ok := predictors[fl.Name]
		if !ok {
			p = predict.Something
		}
		flags[fl.Name] = p
	})
	return flags
}
