package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type fxCmd struct {
	on     string
	amount string
}

func (*fxCmd) Name() string     { return "fx" }
func (*fxCmd) Synopsis() string { return "resolve an exchange rate" }
func (*fxCmd) Usage() string {
	return `fa fx [-d <date>] [-a <amount>] <source> <target>

  Displays the factor converting source currency amounts into target currency,
  the number of quoted pairs used, and the date of each quote.
`
}

func (c *fxCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.on, "d", date.Today().String(), "Date of the rate. See the user manual for supported date formats.")
	f.StringVar(&c.amount, "a", "", "Amount to convert")
}

func (c *fxCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "source and target currencies must be provided")
		return subcommands.ExitUsageError
	}
	on, err := date.Parse(c.on)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	source, target := strings.ToUpper(f.Arg(0)), strings.ToUpper(f.Arg(1))

	e, err := openEnv(ctx)
	if err != nil {
		return fail("opening database", err)
	}
	defer e.Close()

	rate, err := e.a.FX().Rate(source, target, on)
	if err != nil {
		return fail("resolving rate", err)
	}
	fmt.Printf("1 %s = %s %s on %s\n", source, rate.Factor.StringFixed(folio.RatePlaces), target, on)
	fmt.Printf("conversions: %d\n", rate.Conversions)
	for i, d := range rate.Dates {
		fmt.Printf("  quote %d: %s\n", i+1, d)
	}
	if rate.Asynchronous {
		fmt.Println("warning: quotes are from different dates")
	}
	if c.amount != "" {
		amount, err := decimal.NewFromString(c.amount)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing amount: %v\n", err)
			return subcommands.ExitUsageError
		}
		fmt.Println(folio.M(amount, source), "=", folio.M(amount.Mul(rate.Factor), target))
	}
	return subcommands.ExitSuccess
}
