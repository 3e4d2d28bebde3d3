package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/etnz/folio/renderer"
	"github.com/google/subcommands"
)

type positionsCmd struct {
	on         string
	start      string
	currency   string
	scope      string
	restricted string
}

func (*positionsCmd) Name() string     { return "positions" }
func (*positionsCmd) Synopsis() string { return "open and closed positions with their returns" }
func (*positionsCmd) Usage() string {
	return `fa positions [-d <date>] [-start <date>] [-c <currency>] [-s <scope>]

  Displays the open positions with their buy-in price, value, gains and IRR,
  then the positions closed since inception or since a start date.
`
}

func (c *positionsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.on, "d", date.Today().String(), "Date. See the user manual for supported date formats.")
	f.StringVar(&c.start, "start", "", "Start of the observation, defaults to inception")
	f.StringVar(&c.currency, "c", "", "Reporting currency")
	f.StringVar(&c.scope, "s", folio.AllScope, "Account, account name or group")
	f.StringVar(&c.restricted, "r", "all", "Restricted accounts filter (all, public, restricted)")
}

func (c *positionsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := date.Parse(c.on)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	start, err := parseStart(c.start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing start date: %v\n", err)
		return subcommands.ExitUsageError
	}
	e, err := openEnv(ctx)
	if err != nil {
		return fail("opening database", err)
	}
	defer e.Close()

	scope, err := e.scope(c.scope, c.restricted)
	if err != nil {
		return fail("parsing scope", err)
	}
	cur := e.reportCurrency(c.currency)
	open, err := e.a.OpenPositions(on, scope, cur, start)
	if err != nil {
		return fail("computing open positions", err)
	}
	closed, totals, err := e.a.ClosedPositions(on, scope, cur, start)
	if err != nil {
		return fail("computing closed positions", err)
	}
	printMarkdown(renderer.RenderPositions(renderer.PositionsReport{
		Scope:        scope.Name,
		On:           on,
		Open:         open,
		Closed:       closed,
		ClosedTotals: totals,
	}))
	return subcommands.ExitSuccess
}
