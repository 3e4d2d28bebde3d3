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

type positionCmd struct {
	on         string
	scope      string
	restricted string
}

func (*positionCmd) Name() string     { return "position" }
func (*positionCmd) Synopsis() string { return "quantity held of a security" }
func (*positionCmd) Usage() string {
	return `fa position [-d <date>] [-s <scope>] <security>

  Displays the quantity of a security held at the end of a day.
`
}

func (c *positionCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.on, "d", date.Today().String(), "Date of the position. See the user manual for supported date formats.")
	f.StringVar(&c.scope, "s", folio.AllScope, "Account, account name or group")
	f.StringVar(&c.restricted, "r", "all", "Restricted accounts filter (all, public, restricted)")
}

func (c *positionCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "exactly one security must be provided")
		return subcommands.ExitUsageError
	}
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
	sec := f.Arg(0)
	if _, ok := e.a.Book().Security(sec); !ok {
		return fail("reading security", fmt.Errorf("%q: %w", sec, folio.ErrUnknownSecurity))
	}
	fmt.Printf("%s %s on %s: %s\n", scope.Name, sec, on, e.a.PositionAt(sec, on, scope))
	return subcommands.ExitSuccess
}

type buyInCmd struct {
	on         string
	start      string
	currency   string
	scope      string
	restricted string
}

func (*buyInCmd) Name() string     { return "buyin" }
func (*buyInCmd) Synopsis() string { return "average buy-in price of a security" }
func (*buyInCmd) Usage() string {
	return `fa buyin [-d <date>] [-start <date>] [-c <currency>] [-s <scope>] <security>

  Displays the average buy-in price of the position held in a security, in the
  reporting currency, at the exchange rates of the purchase dates.

  With -start, the position held the day before start is bought in at its value then.
`
}

func (c *buyInCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.on, "d", date.Today().String(), "Date of the position. See the user manual for supported date formats.")
	f.StringVar(&c.start, "start", "", "Start of the observation, defaults to inception")
	f.StringVar(&c.currency, "c", "", "Reporting currency")
	f.StringVar(&c.scope, "s", folio.AllScope, "Account, account name or group")
	f.StringVar(&c.restricted, "r", "all", "Restricted accounts filter (all, public, restricted)")
}

func (c *buyInCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "exactly one security must be provided")
		return subcommands.ExitUsageError
	}
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
	sec := f.Arg(0)
	price, ok, err := e.a.BuyInPrice(sec, on, cur, scope, start)
	if err != nil {
		return fail("computing buy-in price", err)
	}
	if !ok {
		fmt.Printf("%s is not held in %s on %s\n", sec, scope.Name, on)
		return subcommands.ExitSuccess
	}
	fmt.Printf("%s buy-in price on %s: %s %s\n", sec, on, price.StringFixed(folio.PricePlaces), cur)
	return subcommands.ExitSuccess
}
