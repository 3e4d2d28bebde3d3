package folio

import (
	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

// lotEntry is an item of the replayed stream of a position: either a real
// trade or the synthetic opening of a window.
type lotEntry interface {
	entryDate() date.Date
	quantity() decimal.Decimal
	price() decimal.Decimal
	currency() string
	// rateDate is the day used to convert the price.
	rateDate() date.Date
}

type realEntry struct{ tx Transaction }

func (e realEntry) entryDate() date.Date      { return e.tx.Date }
func (e realEntry) quantity() decimal.Decimal { return e.tx.quantity() }
func (e realEntry) price() decimal.Decimal    { return e.tx.price() }
func (e realEntry) currency() string          { return e.tx.Currency }
func (e realEntry) rateDate() date.Date       { return e.tx.Date }

// syntheticEntry opens a window with the position carried into it, valued at
// the close of the day before.
type syntheticEntry struct {
	on  date.Date
	qty decimal.Decimal
	px  decimal.Decimal
	cur string
}

func (e syntheticEntry) entryDate() date.Date      { return e.on }
func (e syntheticEntry) quantity() decimal.Decimal { return e.qty }
func (e syntheticEntry) price() decimal.Decimal    { return e.px }
func (e syntheticEntry) currency() string          { return e.cur }
func (e syntheticEntry) rateDate() date.Date       { return e.on.Add(-1) }

// step is the effect of one entry on the running position.
type step struct {
	entry         lotEntry
	before, after decimal.Decimal
}

func (s step) isEntry() bool { return s.before.IsZero() && !s.after.IsZero() }
func (s step) isExit() bool  { return !s.before.IsZero() && s.after.IsZero() }

// position sums the quantities of the trades of security in scope up to on.
func (a *Analyzer) position(security string, on date.Date, scope Scope) decimal.Decimal {
	pos := decimal.Zero
	for tx := range a.book.Trades(security, InScope(scope), Until(on)) {
		pos = pos.Add(tx.quantity())
	}
	return pos
}

// PositionAt returns the quantity of security held on the accounts of scope at
// the end of the day.
func (a *Analyzer) PositionAt(security string, on date.Date, scope Scope) decimal.Decimal {
	return round6(a.position(security, on, scope))
}

// entries returns the stream to replay for security up to on. Without start, it
// is every trade. With start, it is the position carried into start (if any)
// followed by the trades dated from start.
func (a *Analyzer) entries(security string, on date.Date, scope Scope, start *date.Date) []lotEntry {
	var out []lotEntry
	if start == nil {
		for tx := range a.book.Trades(security, InScope(scope), Until(on)) {
			out = append(out, realEntry{tx})
		}
		return out
	}
	if carried := a.position(security, start.Add(-1), scope); !carried.IsZero() {
		sec, _ := a.book.Security(security)
		px, _ := a.localPrice(security, start.Add(-1))
		out = append(out, syntheticEntry{on: *start, qty: carried, px: px, cur: sec.Currency})
	}
	for tx := range a.book.Trades(security, InScope(scope), Until(on)) {
		if !tx.Date.Before(*start) {
			out = append(out, realEntry{tx})
		}
	}
	return out
}

// replay accumulates the entries into position steps.
func replay(entries []lotEntry) []step {
	steps := make([]step, 0, len(entries))
	pos := decimal.Zero
	for _, e := range entries {
		next := pos.Add(e.quantity())
		steps = append(steps, step{entry: e, before: pos, after: next})
		pos = next
	}
	return steps
}

// EntryDates returns the dates the position of security went from zero to
// nonzero, up to asOf. With start, history before start is ignored and start
// itself is an entry if a position is carried into it.
func (a *Analyzer) EntryDates(security string, asOf date.Date, scope Scope, start *date.Date) []date.Date {
	var dates []date.Date
	for _, s := range replay(a.entries(security, asOf, scope, start)) {
		if s.isEntry() {
			dates = append(dates, s.entry.entryDate())
		}
	}
	return dates
}

// ExitDates returns the dates the position of security went back to zero, up to asOf.
func (a *Analyzer) ExitDates(security string, asOf date.Date, scope Scope, start *date.Date) []date.Date {
	var dates []date.Date
	for _, s := range replay(a.entries(security, asOf, scope, start)) {
		if s.isExit() {
			dates = append(dates, s.entry.entryDate())
		}
	}
	return dates
}

// localPrice returns the price of security in its own currency at the end of the
// day: the latest quote, else the latest trade price on any account. It reports
// false when neither exists.
func (a *Analyzer) localPrice(security string, on date.Date) (decimal.Decimal, bool) {
	if _, px, ok := a.book.Prices(security).AsOf(on); ok {
		return px, true
	}
	var last decimal.NullDecimal
	for tx := range a.book.Trades(security, Until(on)) {
		last = tx.Price
	}
	return last.Decimal, last.Valid
}
