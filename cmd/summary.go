package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/folio/date"
	"github.com/etnz/folio/renderer"
	"github.com/etnz/folio/store"
	"github.com/google/subcommands"
)

type summaryCmd struct {
	on       string
	currency string
	years    int
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "multi-year performance of every account" }
func (*summaryCmd) Usage() string {
	return `fa summary [-d <date>] [-c <currency>] [-y <years>]

  Displays, for every account, the performance year to date, for each full year
  and since inception. Public and restricted accounts are totaled separately.

  Stored annual records are reused, run 'fa refresh' to store them.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.on, "d", date.Today().String(), "Date of the summary. See the user manual for supported date formats.")
	f.StringVar(&c.currency, "c", "", "Reporting currency")
	f.IntVar(&c.years, "y", 0, "Number of full years to display, 0 for all")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := date.Parse(c.on)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.years < 0 {
		fmt.Fprintln(os.Stderr, "-y must not be negative")
		return subcommands.ExitUsageError
	}
	e, err := openEnv(ctx)
	if err != nil {
		return fail("opening database", err)
	}
	defer e.Close()

	s, err := e.store.BuildSummary(ctx, e.a, store.SummaryOptions{On: on, Currency: e.reportCurrency(c.currency), Years: c.years})
	if err != nil {
		return fail("building summary", err)
	}
	printMarkdown(renderer.RenderSummary(s))
	return subcommands.ExitSuccess
}
