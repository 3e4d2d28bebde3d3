package store

import (
	"context"
	"errors"
	"testing"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
)

func TestStore_SavePerformance(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	rec := folio.PerformanceRecord{
		Range:    date.Range{From: d("2024-01-01"), To: d("2024-12-31")},
		Currency: "EUR", Scope: "A1", Restricted: folio.PublicOnly,
		BOPNAV: eur("1000"), Invested: eur("100"), CashOut: eur("-50"), PriceChange: eur("30.25"),
		CapitalDistribution: eur("5"), Commission: eur("-1"), Tax: eur("-2"), FX: eur("0.75"), EOPNAV: eur("1083"),
		MoneyWeightedReturn: folio.Rate(dec("0.0312")),
		Diagnostics:         []folio.Diagnostic{{Code: folio.DiagUnpriced, Message: "no price for ZZZ", Value: dec("0")}},
	}
	noErr(t, s.SavePerformance(ctx, rec))

	got, found, err := s.Performance(ctx, KeyOf(rec))
	if err != nil || !found {
		t.Fatalf("Performance() = %v, %v, want the saved record", found, err)
	}
	if got.Range != rec.Range || got.Scope != "A1" || got.Restricted != folio.PublicOnly {
		t.Errorf("Performance() = %v %v %v, want %v %v %v", got.Scope, got.Restricted, got.Range, rec.Scope, rec.Restricted, rec.Range)
	}
	checks := []struct {
		name      string
		got, want folio.Money
	}{
		{"BOPNAV", got.BOPNAV, rec.BOPNAV},
		{"PriceChange", got.PriceChange, rec.PriceChange},
		{"Commission", got.Commission, rec.Commission},
		{"FX", got.FX, rec.FX},
		{"EOPNAV", got.EOPNAV, rec.EOPNAV},
	}
	for _, c := range checks {
		if !c.got.Equal(c.want) {
			t.Errorf("Performance().%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if !got.MoneyWeightedReturn.Equal(rec.MoneyWeightedReturn) {
		t.Errorf("Performance().MoneyWeightedReturn = %v, want %v", got.MoneyWeightedReturn, rec.MoneyWeightedReturn)
	}
	if len(got.Diagnostics) != 1 || got.Diagnostics[0].Code != folio.DiagUnpriced {
		t.Errorf("Performance().Diagnostics = %v, want %v", got.Diagnostics, rec.Diagnostics)
	}

	// saving again replaces the record
	rec.EOPNAV, rec.MoneyWeightedReturn, rec.Diagnostics = eur("1090"), folio.Return{Status: folio.NotRelevant}, nil
	noErr(t, s.SavePerformance(ctx, rec))
	recs := must(t, s.Records(ctx, "A1", folio.PublicOnly, "EUR"))
	if len(recs) != 1 {
		t.Fatalf("Records() = %d records, want 1", len(recs))
	}
	if recs[0].MoneyWeightedReturn.Status != folio.NotRelevant || recs[0].Diagnostics != nil {
		t.Errorf("Records()[0] = %v %v, want N/R without diagnostics", recs[0].MoneyWeightedReturn, recs[0].Diagnostics)
	}

	scope := folio.NewScope("A1", "A1")
	scope.Restricted = folio.PublicOnly
	if eop, ok := s.EOPNAV(scope, "EUR", d("2024-12-31")); !ok || !eop.Equal(dec("1090")) {
		t.Errorf("EOPNAV() = %v, %v, want 1090", eop, ok)
	}
	if _, ok := s.EOPNAV(scope, "USD", d("2024-12-31")); ok {
		t.Errorf("EOPNAV() in USD found a record, want none")
	}
	if _, found, _ := s.Performance(ctx, Key{Scope: "A2", Currency: "EUR", Range: rec.Range}); found {
		t.Errorf("Performance() of A2 found a record, want none")
	}
}

func TestStore_UpdateAnnualPerformance(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	a := folio.NewAnalyzer(newBook(t), folio.Options{})
	opts := UpdateOptions{On: d("2025-03-01"), Currency: "EUR"}

	updated, err := s.UpdateAnnualPerformance(ctx, a, opts)
	if err != nil {
		t.Fatalf("UpdateAnnualPerformance() error = %v", err)
	}
	if len(updated) != 2 {
		t.Fatalf("UpdateAnnualPerformance() updated %d records, want 2", len(updated))
	}
	recs := must(t, s.Records(ctx, "A1", folio.AnyAccount, "EUR"))
	if len(recs) != 2 {
		t.Fatalf("Records() = %d records, want 2", len(recs))
	}
	want := []struct{ bop, price, eop string }{
		{"0", "200", "1200"},
		{"1200", "300", "1500"},
	}
	for i, w := range want {
		if !same(recs[i].BOPNAV, w.bop) || !same(recs[i].PriceChange, w.price) || !same(recs[i].EOPNAV, w.eop) {
			t.Errorf("Records()[%d] = %v/%v/%v, want %s/%s/%s", i, recs[i].BOPNAV, recs[i].PriceChange, recs[i].EOPNAV, w.bop, w.price, w.eop)
		}
	}

	// stored years are skipped unless forced
	if updated, _ := s.UpdateAnnualPerformance(ctx, a, opts); len(updated) != 0 {
		t.Errorf("UpdateAnnualPerformance() updated %d records, want 0", len(updated))
	}
	opts.Force = true
	if updated, _ := s.UpdateAnnualPerformance(ctx, a, opts); len(updated) != 2 {
		t.Errorf("UpdateAnnualPerformance(Force) updated %d records, want 2", len(updated))
	}
}

func TestStore_UpdateAnnualPerformance_PeriodError(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	b := newBook(t)
	// no quote converts the USD cash of A2 into EUR
	noErr(t, b.AddTransactions(folio.NewCashIn(d("2023-06-01"), "A2", dec("500"), "USD")))
	a := folio.NewAnalyzer(b, folio.Options{})

	updated, err := s.UpdateAnnualPerformance(ctx, a, UpdateOptions{On: d("2025-03-01"), Currency: "EUR"})
	if len(updated) != 2 {
		t.Errorf("UpdateAnnualPerformance() updated %d records, want the 2 of A1", len(updated))
	}
	var pe *PeriodError
	if !errors.As(err, &pe) || pe.Scope != "A2" {
		t.Fatalf("UpdateAnnualPerformance() error = %v, want a *PeriodError on A2", err)
	}
	if !errors.Is(err, folio.ErrFXUnavailable) {
		t.Errorf("UpdateAnnualPerformance() error = %v, want %v", err, folio.ErrFXUnavailable)
	}
}

