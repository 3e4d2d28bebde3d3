package folio

import (
	"errors"
	"slices"
	"testing"
)

func TestBook_AddTransactions(t *testing.T) {
	b := newTestBook(t)
	valid := trade("2024-01-10", "10", "10")

	testCases := []struct {
		name    string
		tx      Transaction
		wantErr error
	}{
		{name: "unknown account", tx: NewCashIn(d("2024-01-01"), "XX", dec("1"), "EUR"), wantErr: ErrUnknownAccount},
		{name: "unknown security", tx: NewTrade(d("2024-01-01"), "A1", "ZZZ", dec("1"), dec("1"), "EUR"), wantErr: ErrUnknownSecurity},
		{name: "currency of the security", tx: NewTrade(d("2024-01-01"), "A1", "AAA", dec("1"), dec("1"), "USD"), wantErr: ErrInvalidTransaction},
		{name: "invalid", tx: Transaction{Date: d("2024-01-01"), Type: Buy, Account: "A1", Currency: "EUR"}, wantErr: ErrInvalidTransaction},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := b.AddTransactions(valid, tc.tx)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("AddTransactions() error = %v, want %v", err, tc.wantErr)
			}
			// nothing is added when one transaction is rejected
			n := 0
			for range b.Transactions() {
				n++
			}
			if n != 0 {
				t.Errorf("Transactions() has %d items after a failed AddTransactions(), want 0", n)
			}
		})
	}
}

func TestBook_Transactions(t *testing.T) {
	b := newTestBook(t)
	addTx(t, b,
		NewCashIn(d("2024-01-02"), "A1", dec("1000"), "EUR").WithID("c"),
		trade("2024-01-10", "-2", "12").WithID("s"),
		trade("2024-01-10", "5", "10").WithID("b"),
		NewDividend(d("2024-01-05"), "A1", "AAA", dec("3"), "EUR").WithID("d"),
		NewTrade(d("2024-01-03"), "A2", "AAA", dec("1"), dec("9"), "EUR").WithID("r"),
	)
	ids := func(filters ...TxFilter) []string {
		var out []string
		for tx := range b.Transactions(filters...) {
			out = append(out, tx.ID)
		}
		return out
	}
	public := must(t, b.Scope(AllScope, PublicOnly))

	testCases := []struct {
		name    string
		filters []TxFilter
		want    []string
	}{
		{name: "canonical order", want: []string{"c", "r", "d", "b", "s"}},
		{name: "scope", filters: []TxFilter{InScope(public)}, want: []string{"c", "d", "b", "s"}},
		{name: "security", filters: []TxFilter{OfSecurity("AAA"), OfType(Buy, Sell)}, want: []string{"r", "b", "s"}},
		{name: "no security", filters: []TxFilter{NoSecurity()}, want: []string{"c"}},
		{name: "until", filters: []TxFilter{Until(d("2024-01-05"))}, want: []string{"c", "r", "d"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ids(tc.filters...); !slices.Equal(got, tc.want) {
				t.Errorf("Transactions() = %v, want %v", got, tc.want)
			}
		})
	}

	var trades []string
	for tx := range b.Trades("AAA", InScope(public)) {
		trades = append(trades, tx.ID)
	}
	if want := []string{"b", "s"}; !slices.Equal(trades, want) {
		t.Errorf("Trades() = %v, want %v", trades, want)
	}
	if got := b.HeldSecurities(public, d("2024-01-09")); len(got) != 0 {
		t.Errorf("HeldSecurities() = %v, want none", got)
	}
	if got, ok := b.Inception(public); !ok || got != d("2024-01-02") {
		t.Errorf("Inception() = %v, %v, want %v", got, ok, d("2024-01-02"))
	}
}

func TestBook_Prices(t *testing.T) {
	b := newTestBook(t)
	if err := b.AddPrices(PriceQuote{Security: "ZZZ", Date: d("2024-01-01"), Price: dec("1")}); !errors.Is(err, ErrUnknownSecurity) {
		t.Errorf("AddPrices() error = %v, want %v", err, ErrUnknownSecurity)
	}
	if err := b.AddPrices(PriceQuote{Security: "AAA", Date: d("2024-01-01"), Price: dec("0")}); err == nil {
		t.Errorf("AddPrices() with a zero price error = nil, want an error")
	}
	if err := b.AddFXQuotes(FXQuote{Pair: "EURXXX", Date: d("2024-01-01"), Quote: dec("1")}); err == nil {
		t.Errorf("AddFXQuotes() with an unknown currency error = nil, want an error")
	}
	addPrice(t, b, "AAA", "2024-01-02", "10")
	addPrice(t, b, "AAA", "2024-01-02", "11")
	if _, px, ok := b.Prices("AAA").AsOf(d("2024-02-01")); !ok || !px.Equal(dec("11")) {
		t.Errorf("Prices().AsOf() = %v, %v, want 11", px, ok)
	}
	if got := b.Prices("UUU").Len(); got != 0 {
		t.Errorf("Prices(UUU).Len() = %v, want 0", got)
	}
}
