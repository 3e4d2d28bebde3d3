package cmd

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/etnz/folio"
	"github.com/etnz/folio/fetch"
	"github.com/etnz/folio/jsonl"
	"github.com/etnz/folio/store"
	"github.com/google/subcommands"
)

type importCmd struct {
	security string
	pair     string
	rows     string
	date     string
	value    string
	layout   string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import records or quotes into the database" }
func (*importCmd) Usage() string {
	return `fa import <file.jsonl>...
fa import -security <id> | -pair <EURUSD> -rows <path> -date <path> -value <path> [-layout <layout>] <file.json|url>

  Imports accounts, securities, transactions and quotes from JSONL files.
  Sources can be http(s) addresses, downloaded at most once a day.

  With -security or -pair, the files are JSON documents from a data vendor and
  quotes are extracted using JSONPath expressions:

    fa import -pair EURUSD -rows '$.data[*]' -date '$[0]' -value '$[1]' -layout unixms eurusd.json
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.security, "security", "", "security the quotes are prices of")
	f.StringVar(&c.pair, "pair", "", "currency pair the quotes are rates of")
	f.StringVar(&c.rows, "rows", "$[*]", "JSONPath of the list of quotes")
	f.StringVar(&c.date, "date", "$.date", "JSONPath of the date in a quote")
	f.StringVar(&c.value, "value", "$.close", "JSONPath of the value in a quote")
	f.StringVar(&c.layout, "layout", "", "date layout: a Go time layout, 'unix' or 'unixms'")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "at least one file must be provided")
		return subcommands.ExitUsageError
	}
	if c.security != "" && c.pair != "" {
		fmt.Fprintln(os.Stderr, "-security and -pair flags cannot be used together")
		return subcommands.ExitUsageError
	}

	cfg, err := loadConfig()
	if err != nil {
		return fail("loading configuration", err)
	}
	s, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return fail("opening database", err)
	}
	defer s.Close()

	// Records reference accounts and securities that may already be stored.
	b, err := s.LoadBook(ctx)
	if err != nil {
		return fail("loading database", err)
	}
	client := fetch.NewClient("")
	for _, file := range f.Args() {
		if err := c.importFile(ctx, client, b, file); err != nil {
			return fail("importing "+file, err)
		}
	}
	if err := s.Import(ctx, b); err != nil {
		return fail("saving records", err)
	}
	fmt.Printf("imported %d file(s) into %s\n", f.NArg(), cfg.Database)
	return subcommands.ExitSuccess
}

// importFile adds the records of file to b.
func (c *importCmd) importFile(ctx context.Context, client *http.Client, b *folio.Book, file string) error {
	doc, err := fetch.Read(ctx, client, file)
	if err != nil {
		return err
	}
	if c.security == "" && c.pair == "" {
		return jsonl.Decode(bytes.NewReader(doc), b)
	}
	points, err := jsonl.ExtractQuotes(doc, jsonl.QuotePath{Rows: c.rows, Date: c.date, Value: c.value, DateLayout: c.layout})
	if err != nil {
		return err
	}
	if c.security != "" {
		return b.AddPrices(jsonl.PriceQuotes(c.security, points)...)
	}
	pair := folio.CurrencyPair(c.pair)
	if err := pair.Validate(); err != nil {
		return err
	}
	return b.AddFXQuotes(jsonl.FXQuotes(pair, points)...)
}

type exportCmd struct {
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the database as JSONL" }
func (*exportCmd) Usage() string {
	return `fa export [-o <file.jsonl>]

  Writes every record of the database as JSONL, in a format import reads back.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "output file, defaults to stdout")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := openEnv(ctx)
	if err != nil {
		return fail("opening database", err)
	}
	defer e.Close()

	w := os.Stdout
	if c.output != "" {
		if w, err = os.Create(c.output); err != nil {
			return fail("creating output", err)
		}
		defer w.Close()
	}
	if err := jsonl.EncodeBook(w, e.a.Book()); err != nil {
		return fail("exporting", err)
	}
	return subcommands.ExitSuccess
}
