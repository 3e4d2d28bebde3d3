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

type dashboardCmd struct {
	on         string
	currency   string
	scope      string
	restricted string
}

func (*dashboardCmd) Name() string     { return "dashboard" }
func (*dashboardCmd) Synopsis() string { return "headline figures of a portfolio" }
func (*dashboardCmd) Usage() string {
	return `fa dashboard [-d <date>] [-c <currency>] [-s <scope>]

  Displays the NAV, the cash invested and withdrawn, the total return and the IRR.
`
}

func (c *dashboardCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.on, "d", date.Today().String(), "Date. See the user manual for supported date formats.")
	f.StringVar(&c.currency, "c", "", "Reporting currency")
	f.StringVar(&c.scope, "s", folio.AllScope, "Account, account name or group")
	f.StringVar(&c.restricted, "r", "all", "Restricted accounts filter (all, public, restricted)")
}

func (c *dashboardCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := date.Parse(c.on)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
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
	d, err := e.a.Dashboard(on, scope, e.reportCurrency(c.currency))
	if err != nil {
		return fail("computing dashboard", err)
	}
	printMarkdown(renderer.RenderDashboard(renderer.DashboardReport{Scope: scope.Name, Dashboard: d}))
	return subcommands.ExitSuccess
}
