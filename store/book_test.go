package store

import (
	"context"
	"testing"

	"github.com/etnz/folio"
)

func TestStore_Import(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	b := newBook(t)
	noErr(t, b.AddGroup("Everything", "A1", "A2"))
	noErr(t, b.AddTransactions(
		folio.NewDividend(d("2024-03-01"), "A1", "AAA", dec("20"), "EUR").WithID("div-1"),
		folio.NewTrade(d("2024-04-01"), "A1", "AAA", dec("-10"), dec("14"), "EUR").WithCommission(dec("1")),
	))
	noErr(t, b.AddFXTransactions(folio.FXTransaction{Date: d("2023-02-01"), Account: "A1", From: "EUR", To: "USD",
		FromAmount: dec("100"), ToAmount: dec("110"), Commission: dec("0.5")}))
	noErr(t, b.AddFXQuotes(folio.FXQuote{Pair: "EURUSD", Date: d("2023-01-01"), Quote: dec("1.1")}))

	// importing twice does not duplicate records without id
	noErr(t, s.Import(ctx, b))
	noErr(t, s.Import(ctx, b))

	loaded, err := s.LoadBook(ctx)
	if err != nil {
		t.Fatalf("LoadBook() error = %v", err)
	}
	var ids []string
	for tx := range loaded.Transactions() {
		ids = append(ids, tx.ID)
	}
	if len(ids) != 4 {
		t.Fatalf("LoadBook() has %d transactions, want 4", len(ids))
	}
	for _, id := range ids {
		if id == "" {
			t.Errorf("LoadBook() returned a transaction without id")
		}
	}
	if g, ok := loaded.Group("Everything"); !ok || len(g) != 2 {
		t.Errorf("Group(Everything) = %v, %v, want [A1 A2]", g, ok)
	}
	if a, ok := loaded.Account("A2"); !ok || !a.Restricted {
		t.Errorf("Account(A2) = %v, %v, want a restricted account", a, ok)
	}
	if got := loaded.FXQuotes("EURUSD").Len(); got != 1 {
		t.Errorf("FXQuotes(EURUSD).Len() = %d, want 1", got)
	}

	on := d("2024-12-31")
	want := must(t, folio.NewAnalyzer(b, folio.Options{}).NAVAt(on, must(t, b.Scope(folio.AllScope, folio.AnyAccount)), "EUR"))
	got := must(t, folio.NewAnalyzer(loaded, folio.Options{}).NAVAt(on, must(t, loaded.Scope(folio.AllScope, folio.AnyAccount)), "EUR"))
	if !got.Total.Equal(want.Total) {
		t.Errorf("NAVAt() of the loaded book = %v, want %v", got.Total, want.Total)
	}
}

func TestStore_Import_Rollback(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	b := newBook(t)
	noErr(t, s.Import(ctx, b))

	other := folio.NewBook()
	noErr(t, other.AddAccount(folio.Account{ID: "A3", Name: "Other"}))
	noErr(t, other.AddSecurity(folio.Security{ID: "ZZZ", Currency: "EUR"}))
	noErr(t, other.AddPrices(folio.PriceQuote{Security: "ZZZ", Date: d("2024-01-01"), Price: dec("1")}))
	if _, err := s.db.Exec(`CREATE TRIGGER no_zzz BEFORE INSERT ON price WHEN NEW.security_id = 'ZZZ'
		BEGIN SELECT RAISE(ABORT, 'rejected'); END`); err != nil {
		t.Fatal(err)
	}
	// the last insert fails, nothing of other is kept
	if err := s.Import(ctx, other); err == nil {
		t.Fatalf("Import() error = nil, want an error")
	}
	loaded := must(t, s.LoadBook(ctx))
	if _, ok := loaded.Account("A3"); ok {
		t.Errorf("Account(A3) exists after a failed Import()")
	}
}

