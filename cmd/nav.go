package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/etnz/folio/renderer"
	"github.com/google/subcommands"
)

type navCmd struct {
	on         string
	currency   string
	scope      string
	restricted string
	breakdowns string
}

func (*navCmd) Name() string     { return "nav" }
func (*navCmd) Synopsis() string { return "net asset value with breakdowns" }
func (*navCmd) Usage() string {
	return `fa nav [-d <date>] [-c <currency>] [-s <scope>] [-b <breakdowns>]

  Displays the net asset value of a scope at the end of a day, split by asset
  type, currency, asset class or account.
`
}

func (c *navCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.on, "d", date.Today().String(), "Valuation date. See the user manual for supported date formats.")
	f.StringVar(&c.currency, "c", "", "Reporting currency")
	f.StringVar(&c.scope, "s", folio.AllScope, "Account, account name or group")
	f.StringVar(&c.restricted, "r", "all", "Restricted accounts filter (all, public, restricted)")
	f.StringVar(&c.breakdowns, "b", "asset-type,currency", "Comma separated breakdowns (asset-type, currency, asset-class, account), or 'all'")
}

func (c *navCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := date.Parse(c.on)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	breakdowns, err := parseBreakdowns(c.breakdowns)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing breakdowns: %v\n", err)
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
	nav, err := e.a.NAVAt(on, scope, e.reportCurrency(c.currency), breakdowns...)
	if err != nil {
		return fail("computing NAV", err)
	}
	printMarkdown(renderer.RenderNAV(renderer.NAVReport{Scope: scope.Name, On: on, NAV: nav, Breakdowns: breakdowns}))
	return subcommands.ExitSuccess
}

// parseBreakdowns parses a comma separated list of breakdowns.
func parseBreakdowns(s string) ([]folio.Breakdown, error) {
	if strings.EqualFold(strings.TrimSpace(s), "all") {
		return folio.AllBreakdowns, nil
	}
	var breakdowns []folio.Breakdown
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		b, err := folio.ParseBreakdown(name)
		if err != nil {
			return nil, err
		}
		breakdowns = append(breakdowns, b)
	}
	return breakdowns, nil
}
