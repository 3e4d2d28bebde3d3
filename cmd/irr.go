package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/google/subcommands"
)

type irrCmd struct {
	on         string
	start      string
	currency   string
	scope      string
	restricted string
	security   string
}

func (*irrCmd) Name() string     { return "irr" }
func (*irrCmd) Synopsis() string { return "money weighted return" }
func (*irrCmd) Usage() string {
	return `fa irr [-d <date>] [-start <date>] [-c <currency>] [-s <scope>] [-security <id>]

  Displays the annualized internal rate of return of a scope, or of a single
  security, since inception or since a start date.
`
}

func (c *irrCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.on, "d", date.Today().String(), "End date. See the user manual for supported date formats.")
	f.StringVar(&c.start, "start", "", "Start date, defaults to inception")
	f.StringVar(&c.currency, "c", "", "Reporting currency")
	f.StringVar(&c.scope, "s", folio.AllScope, "Account, account name or group")
	f.StringVar(&c.restricted, "r", "all", "Restricted accounts filter (all, public, restricted)")
	f.StringVar(&c.security, "security", "", "Security to compute the return of")
}

func (c *irrCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	r, err := e.a.IRR(folio.IRRRequest{On: on, Currency: e.reportCurrency(c.currency), Scope: scope, Security: c.security, Start: start})
	if err != nil {
		return fail("computing IRR", err)
	}
	subject := scope.Name
	if c.security != "" {
		subject = c.security + " in " + scope.Name
	}
	fmt.Printf("IRR of %s on %s: %s\n", subject, on, r.SignedString())
	return subcommands.ExitSuccess
}
