package folio

import (
	"testing"

	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

// d is a helper for tests to parse a date from a const.
func d(s string) date.Date { return date.MustParse(s) }

// dec is a helper for tests to create a decimal from a const.
func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// EUR is a helper for tests to create euro money from a const.
func EUR(s string) Money { return M(dec(s), "EUR") }

// USD is a helper for tests to create usd money from a const.
func USD(s string) Money { return M(dec(s), "USD") }

func must[T any](t *testing.T, v T, err error) T {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
	return v
}

// newTestBook creates a book with a public account "A1", a restricted account
// "A2", a euro stock "AAA" and a dollar stock "UUU".
func newTestBook(t *testing.T) *Book {
	t.Helper()
	b := NewBook()
	for _, a := range []Account{
		{ID: "A1", Name: "Broker one", Country: "FR"},
		{ID: "A2", Name: "Pension", Country: "FR", Restricted: true},
	} {
		if err := b.AddAccount(a); err != nil {
			t.Fatalf("AddAccount() error = %v", err)
		}
	}
	for _, s := range []Security{
		{ID: "AAA", Name: "Alpha", Type: Stock, Currency: "EUR", Exposure: Equity},
		{ID: "UUU", Name: "Uniform", Type: ETF, Currency: "USD", Exposure: Equity},
	} {
		if err := b.AddSecurity(s); err != nil {
			t.Fatalf("AddSecurity() error = %v", err)
		}
	}
	return b
}

func addTx(t *testing.T, b *Book, txs ...Transaction) {
	t.Helper()
	if err := b.AddTransactions(txs...); err != nil {
		t.Fatalf("AddTransactions() error = %v", err)
	}
}

func addPrice(t *testing.T, b *Book, security, on, price string) {
	t.Helper()
	if err := b.AddPrices(PriceQuote{Security: security, Date: d(on), Price: dec(price)}); err != nil {
		t.Fatalf("AddPrices() error = %v", err)
	}
}

func addFX(t *testing.T, b *Book, pair, on, quote string) {
	t.Helper()
	if err := b.AddFXQuotes(FXQuote{Pair: CurrencyPair(pair), Date: d(on), Quote: dec(quote)}); err != nil {
		t.Fatalf("AddFXQuotes() error = %v", err)
	}
}

// trade is a helper for tests to create a trade of AAA on A1 in euros.
func trade(on, qty, price string) Transaction {
	return NewTrade(d(on), "A1", "AAA", dec(qty), dec(price), "EUR")
}

func all(t *testing.T, b *Book) Scope {
	t.Helper()
	return must(t, b.Scope(AllScope, AnyAccount))
}

func ptr[T any](v T) *T { return &v }
