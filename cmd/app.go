// Package cmd implements the CLI application to analyze a portfolio.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/folio"
	"github.com/etnz/folio/config"
	"github.com/etnz/folio/date"
	"github.com/etnz/folio/store"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&importCmd{}, "book")
	c.Register(&exportCmd{}, "book")

	c.Register(&fxCmd{}, "analytics")
	c.Register(&positionCmd{}, "analytics")
	c.Register(&buyInCmd{}, "analytics")
	c.Register(&gainsCmd{}, "analytics")
	c.Register(&navCmd{}, "analytics")
	c.Register(&historyCmd{}, "analytics")
	c.Register(&irrCmd{}, "analytics")
	c.Register(&performanceCmd{}, "analytics")
	c.Register(&positionsCmd{}, "analytics")
	c.Register(&dashboardCmd{}, "analytics")

	c.Register(&summaryCmd{}, "reports")
	c.Register(&refreshCmd{}, "reports")
	c.Register(&chartCmd{}, "reports")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	dbPath   = flag.String("db", "", "Path to the sqlite database. Defaults to $FOLIO_DB or folio.db")
	currency = flag.String("currency", "", "Reporting currency. Defaults to $FOLIO_CURRENCY or EUR")
	raw      = flag.Bool("raw", false, "Print reports as plain markdown")
)

// loadConfig reads the configuration and applies the global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if *dbPath != "" {
		cfg.Database = *dbPath
	}
	if *currency != "" {
		cfg.Currency = strings.ToUpper(*currency)
		if err := folio.ValidCurrency(cfg.Currency); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// env is what a command needs to compute: the configuration, the store and
// an analyzer over the stored book.
type env struct {
	cfg   *config.Config
	store *store.Store
	a     *folio.Analyzer
}

// openEnv loads the book from the store.
func openEnv(ctx context.Context) (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	s, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	b, err := s.LoadBook(ctx)
	if err != nil {
		s.Close()
		return nil, err
	}
	if err := cfg.Apply(b); err != nil {
		s.Close()
		return nil, err
	}
	return &env{cfg: cfg, store: s, a: folio.NewAnalyzer(b, cfg.Options)}, nil
}

func (e *env) Close() error { return e.store.Close() }

// scope resolves a scope name and a restricted filter ("all", "public" or "restricted").
func (e *env) scope(name, restricted string) (folio.Scope, error) {
	f, err := folio.ParseRestrictedFilter(restricted)
	if err != nil {
		return folio.Scope{}, err
	}
	return e.a.Book().Scope(name, f)
}

// reportCurrency is c, or the configured currency when empty.
func (e *env) reportCurrency(c string) string {
	if c == "" {
		return e.cfg.Currency
	}
	return strings.ToUpper(c)
}

// parseStart parses an optional start date.
func parseStart(s string) (*date.Date, error) {
	if s == "" {
		return nil, nil
	}
	start, err := date.Parse(s)
	if err != nil {
		return nil, err
	}
	return &start, nil
}

// fail prints err and returns the exit status matching its kind.
func fail(doing string, err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error %s: %v\n", doing, err)
	if errors.Is(err, folio.ErrUnknownAccount) || errors.Is(err, folio.ErrUnknownSecurity) || errors.Is(err, folio.ErrInvalidCurrency) {
		return subcommands.ExitUsageError
	}
	return subcommands.ExitFailure
}

// printMarkdown renders md for the terminal.
func printMarkdown(md string) {
	if *raw {
		fmt.Print(md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(160))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Fprintf(os.Stderr, "warning, cannot render markdown: %v\n", err)
	fmt.Print(md)
}
