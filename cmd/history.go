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

// seriesFlags select a NAV series, shared by history and chart.
type seriesFlags struct {
	start      string
	end        string
	period     string
	currency   string
	scope      string
	restricted string
}

func (c *seriesFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "start", "", "Start date of the series, defaults to inception")
	f.StringVar(&c.end, "d", date.Today().String(), "End date of the series. See the user manual for supported date formats.")
	f.StringVar(&c.period, "p", date.Monthly.String(), "Step of the series (day, week, month, quarter, year)")
	f.StringVar(&c.currency, "c", "", "Reporting currency")
	f.StringVar(&c.scope, "s", folio.AllScope, "Account, account name or group")
	f.StringVar(&c.restricted, "r", "all", "Restricted accounts filter (all, public, restricted)")
}

// series computes the NAV series selected by the flags. A missing start is
// the inception of the scope.
func (c *seriesFlags) series(e *env) (folio.Scope, []folio.NAVPoint, error) {
	end, err := date.Parse(c.end)
	if err != nil {
		return folio.Scope{}, nil, fmt.Errorf("invalid end date: %w", err)
	}
	p, err := date.ParsePeriod(c.period)
	if err != nil {
		return folio.Scope{}, nil, err
	}
	scope, err := e.scope(c.scope, c.restricted)
	if err != nil {
		return folio.Scope{}, nil, err
	}
	start, err := parseStart(c.start)
	if err != nil {
		return folio.Scope{}, nil, fmt.Errorf("invalid start date: %w", err)
	}
	if start == nil {
		inception, ok := e.a.Book().Inception(scope)
		if !ok {
			return scope, nil, nil
		}
		start = &inception
	}
	points, err := e.a.NAVSeries(date.Range{From: *start, To: end}, p, scope, e.reportCurrency(c.currency))
	return scope, points, err
}

type historyCmd struct {
	seriesFlags
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "display the NAV history" }
func (*historyCmd) Usage() string {
	return `fa history [-start <date>] [-d <date>] [-p <period>] [-c <currency>] [-s <scope>]

  Displays the net asset value at the end of each period, with the IRR since
  inception and the IRR over the period.
`
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := openEnv(ctx)
	if err != nil {
		return fail("opening database", err)
	}
	defer e.Close()

	scope, points, err := c.series(e)
	if err != nil {
		return fail("computing history", err)
	}
	if len(points) == 0 {
		fmt.Fprintln(os.Stderr, "no history to display")
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.RenderHistory(renderer.HistoryReport{Scope: scope.Name, Points: points}))
	return subcommands.ExitSuccess
}
