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

type performanceCmd struct {
	period     string
	start      string
	end        string
	currency   string
	scope      string
	restricted string
	save       bool
}

func (*performanceCmd) Name() string     { return "performance" }
func (*performanceCmd) Synopsis() string { return "attribute the NAV change of a period" }
func (*performanceCmd) Usage() string {
	return `fa performance [-period <period> | -start <date>] [-d <date>] [-c <currency>] [-s <scope>] [-save]

  Explains the change of NAV over a period: cash invested and withdrawn, price
  change, capital distributions, commissions, taxes and currency effect, with
  the money weighted return of the period.

  The beginning NAV is read from a stored record ending the day before, when there is one.
`
}

func (c *performanceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.period, "period", "", "Predefined period containing the end date (day, week, month, quarter, year)")
	f.StringVar(&c.start, "start", "", "Start date of the reporting period. See the user manual for supported date formats.")
	f.StringVar(&c.end, "d", date.Today().String(), "End date of the reporting period. See the user manual for supported date formats.")
	f.StringVar(&c.currency, "c", "", "Reporting currency")
	f.StringVar(&c.scope, "s", folio.AllScope, "Account, account name or group")
	f.StringVar(&c.restricted, "r", "all", "Restricted accounts filter (all, public, restricted)")
	f.BoolVar(&c.save, "save", false, "Store the record")
}

func (c *performanceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.start != "" && c.period != "" {
		fmt.Fprintln(os.Stderr, "-start and -period flags cannot be used together")
		return subcommands.ExitUsageError
	}
	end, err := date.Parse(c.end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing end date: %v\n", err)
		return subcommands.ExitUsageError
	}
	// year to date unless told otherwise
	window := date.YearToDate(end)
	switch {
	case c.period != "":
		p, err := date.ParsePeriod(c.period)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing period: %v\n", err)
			return subcommands.ExitUsageError
		}
		window = date.PeriodRange(end, p)
	case c.start != "":
		start, err := date.Parse(c.start)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing start date: %v\n", err)
			return subcommands.ExitUsageError
		}
		window = date.Range{From: start, To: end}
	}
	if window.To.Before(window.From) {
		fmt.Fprintf(os.Stderr, "empty period %s\n", window)
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
	rec, err := e.a.CalculatePerformance(folio.PerformanceRequest{
		Start:    window.From,
		End:      window.To,
		Scope:    scope,
		Currency: e.reportCurrency(c.currency),
		Prior:    e.store,
	})
	if err != nil {
		return fail("computing performance", err)
	}
	if c.save {
		if err := e.store.SavePerformance(ctx, rec); err != nil {
			return fail("saving performance", err)
		}
	}
	printMarkdown(renderer.RenderPerformance(rec))
	return subcommands.ExitSuccess
}
