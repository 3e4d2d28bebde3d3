package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/etnz/folio/store"
	"github.com/google/subcommands"
	"github.com/robfig/cron/v3"
)

type refreshCmd struct {
	currency   string
	scope      string
	restricted string
	force      bool
	schedule   bool
	spec       string
}

func (*refreshCmd) Name() string     { return "refresh" }
func (*refreshCmd) Synopsis() string { return "store the annual performance records" }
func (*refreshCmd) Usage() string {
	return `fa refresh [-c <currency>] [-s <scope>] [-force] [-schedule [-cron <spec>]]

  Computes and stores the performance of every full calendar year of every
  account, or of a single scope. Years already stored are kept unless -force.

  With -schedule, runs until interrupted, refreshing on a cron schedule that
  defaults to $FOLIO_SCHEDULE.
`
}

func (c *refreshCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "c", "", "Reporting currency")
	f.StringVar(&c.scope, "s", "", "Account, account name or group, defaults to every account")
	f.StringVar(&c.restricted, "r", "all", "Restricted accounts filter (all, public, restricted)")
	f.BoolVar(&c.force, "force", false, "Recompute the years already stored")
	f.BoolVar(&c.schedule, "schedule", false, "Keep running and refresh on a schedule")
	f.StringVar(&c.spec, "cron", "", "Cron spec of the schedule, e.g. '@daily' or '0 18 * * 1-5'")
}

func (c *refreshCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.schedule {
		if err := c.refresh(ctx); err != nil {
			return fail("refreshing", err)
		}
		return subcommands.ExitSuccess
	}

	spec := c.spec
	if spec == "" {
		cfg, err := loadConfig()
		if err != nil {
			return fail("loading configuration", err)
		}
		spec = cfg.Schedule
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	cr := cron.New()
	if _, err := cr.AddFunc(spec, func() {
		if err := c.refresh(ctx); err != nil {
			log.Printf("refresh failed: %v", err)
		}
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing schedule %q: %v\n", spec, err)
		return subcommands.ExitUsageError
	}
	log.Printf("refreshing on schedule %q", spec)
	cr.Start()
	<-ctx.Done()
	<-cr.Stop().Done()
	return subcommands.ExitSuccess
}

// refresh reloads the book and updates the stored annual records. Years that
// cannot be computed are reported but do not fail the refresh.
func (c *refreshCmd) refresh(ctx context.Context) error {
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	opts := store.UpdateOptions{On: date.Today(), Currency: e.reportCurrency(c.currency), Force: c.force}
	if c.scope != "" {
		scope, err := e.scope(c.scope, c.restricted)
		if err != nil {
			return err
		}
		opts.Scopes = []folio.Scope{scope}
	}
	updated, err := e.store.UpdateAnnualPerformance(ctx, e.a, opts)
	var perr *store.PeriodError
	if err != nil && !errors.As(err, &perr) {
		return err
	}
	for _, rec := range updated {
		log.Printf("stored %s %s over %s: %s", rec.Scope, rec.Currency, rec.Range, rec.MoneyWeightedReturn.SignedString())
	}
	if err != nil {
		log.Printf("some years could not be computed: %v", err)
	}
	return nil
}
