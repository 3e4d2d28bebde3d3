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

// gainsCmd holds the flags for the 'gains' subcommand.
type gainsCmd struct {
	on         string
	start      string
	currency   string
	scope      string
	restricted string
}

func (*gainsCmd) Name() string     { return "gains" }
func (*gainsCmd) Synopsis() string { return "realized and unrealized gain analysis" }
func (*gainsCmd) Usage() string {
	return `fa gains [-d <date>] [-start <date>] [-c <currency>] [-s <scope>]

  Calculates and displays realized and unrealized gains for each security,
  split into price appreciation and currency effect.
`
}

func (c *gainsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.on, "d", date.Today().String(), "End date of the reporting period. See the user manual for supported date formats.")
	f.StringVar(&c.start, "start", "", "Start date of the reporting period, defaults to inception")
	f.StringVar(&c.currency, "c", "", "Reporting currency")
	f.StringVar(&c.scope, "s", folio.AllScope, "Account, account name or group")
	f.StringVar(&c.restricted, "r", "all", "Restricted accounts filter (all, public, restricted)")
}

func (c *gainsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := date.Parse(c.on)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing end date: %v\n", err)
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
	report := renderer.GainsReport{Scope: scope.Name, On: on, Currency: e.reportCurrency(c.currency)}
	if start != nil {
		report.Since = *start
	}
	for _, sec := range e.a.Book().HeldSecurities(scope, on) {
		line, err := gainsLine(e.a, sec, on, report.Currency, scope, start)
		if err != nil {
			return fail("computing gains of "+sec, err)
		}
		report.Lines = append(report.Lines, line)
	}
	printMarkdown(renderer.RenderGains(report))
	return subcommands.ExitSuccess
}

func gainsLine(a *folio.Analyzer, sec string, on date.Date, cur string, scope folio.Scope, start *date.Date) (renderer.GainsLine, error) {
	realized, err := a.RealizedGainLoss(sec, on, cur, scope, start)
	if err != nil {
		return renderer.GainsLine{}, err
	}
	unrealized, err := a.UnrealizedGainLoss(sec, on, cur, scope, start)
	if err != nil {
		return renderer.GainsLine{}, err
	}
	name := sec
	if s, ok := a.Book().Security(sec); ok && s.Name != "" {
		name = s.Name
	}
	return renderer.GainsLine{Name: name, Realized: realized.AllTime, Unrealized: unrealized}, nil
}
