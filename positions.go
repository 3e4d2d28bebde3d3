package folio

import (
	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

// holding is a span of a position in one direction, with the value of the
// quantities that entered and left it, converted at their own dates.
type holding struct {
	entry, exit           date.Date
	open, long            bool
	qty                   decimal.Decimal
	entryValue, exitValue decimal.Decimal
}

// holdings walks the entries of security up to on and splits them into
// holding periods. A trade crossing zero closes one holding and opens the next.
func (a *Analyzer) holdings(security string, on date.Date, currency string, scope Scope, start *date.Date) ([]holding, error) {
	var out []holding
	var cur *holding
	for _, e := range a.entries(security, on, scope, start) {
		fx, err := a.fx.factor(e.currency(), currency, e.rateDate())
		if err != nil {
			return nil, err
		}
		q, px := e.quantity(), e.price().Mul(fx)
		if cur != nil && cur.long != q.IsPositive() {
			c := q
			if q.Abs().GreaterThan(cur.qty.Abs()) {
				c = cur.qty.Neg()
			}
			cur.exitValue = cur.exitValue.Add(c.Abs().Mul(px))
			cur.qty = cur.qty.Add(c)
			if cur.qty.IsZero() {
				cur.exit, cur.open = e.entryDate(), false
				out = append(out, *cur)
				cur = nil
			}
			q = q.Sub(c)
		}
		if q.IsZero() {
			continue
		}
		if cur == nil {
			cur = &holding{entry: e.entryDate(), open: true, long: q.IsPositive()}
		}
		cur.qty = cur.qty.Add(q)
		cur.entryValue = cur.entryValue.Add(q.Abs().Mul(px))
	}
	if cur != nil {
		out = append(out, *cur)
	}
	return out, nil
}

// holdingSegments pairs the boundaries of the holdings within window. A trade
// crossing zero is both the exit of a holding and the entry of the next one.
func holdingSegments(hs []holding, window date.Range) []Segment {
	var entries, exits []date.Date
	for _, h := range hs {
		entries = append(entries, h.entry)
		if !h.open {
			exits = append(exits, h.exit)
		}
	}
	return PairHoldingPeriods(entries, exits, window)
}

// rateOf is amount/base, not relevant when base is not positive.
func rateOf(amount, base Money) Return {
	if !base.Amount().IsPositive() {
		return notRelevant
	}
	return Rate(amount.Amount().DivRound(base.Amount(), divPrecision).Round(RatePlaces))
}

// PositionTotals sums the money columns of a positions table.
type PositionTotals struct {
	EntryValue          Money
	Value               Money // exit value of closed positions, current value of open ones
	Realized            Money
	Unrealized          Money
	CapitalDistribution Money
	Commission          Money
	TotalReturn         Money
}

func newPositionTotals(cur string) PositionTotals {
	z := Zero(cur)
	return PositionTotals{z, z, z, z, z, z, z}
}

func (t *PositionTotals) add(entry, value, realized, unrealized, distribution, commission, total Money) {
	t.EntryValue = t.EntryValue.Add(entry)
	t.Value = t.Value.Add(value)
	t.Realized = t.Realized.Add(realized)
	t.Unrealized = t.Unrealized.Add(unrealized)
	t.CapitalDistribution = t.CapitalDistribution.Add(distribution)
	t.Commission = t.Commission.Add(commission)
	t.TotalReturn = t.TotalReturn.Add(total)
}

// PriceChangeRate is the realized and unrealized gain over the entry value.
func (t PositionTotals) PriceChangeRate() Return {
	return rateOf(t.Realized.Add(t.Unrealized), M(t.EntryValue.Amount().Abs(), t.EntryValue.Currency()))
}

// TotalReturnRate is the total return over the entry value.
func (t PositionTotals) TotalReturnRate() Return {
	return rateOf(t.TotalReturn, M(t.EntryValue.Amount().Abs(), t.EntryValue.Currency()))
}

// ClosedPosition is a holding period that went back to zero.
type ClosedPosition struct {
	Security            Security
	Entry, Exit         date.Date
	EntryValue          Money
	ExitValue           Money
	Realized            Money // exit - entry value for a long, entry - exit for a short
	CapitalDistribution Money // paid from entry until the next entry
	Commission          Money
	TotalReturn         Money
	IRR                 Return
}

// TotalReturnRate is the total return over the entry value.
func (p ClosedPosition) TotalReturnRate() Return { return rateOf(p.TotalReturn, p.EntryValue) }

// ClosedPositions lists the holding periods of scope closed up to on, by
// security then entry date. With start, the position carried into start is
// entered at the price of the day before.
func (a *Analyzer) ClosedPositions(on date.Date, scope Scope, currency string, start *date.Date) ([]ClosedPosition, PositionTotals, error) {
	var out []ClosedPosition
	totals := newPositionTotals(currency)
	for _, id := range a.book.HeldSecurities(scope, on) {
		sec, _ := a.book.Security(id)
		hs, err := a.holdings(id, on, currency, scope, start)
		if err != nil {
			return nil, totals, err
		}
		for i, h := range hs {
			if h.open {
				continue
			}
			p := ClosedPosition{
				Security:   sec,
				Entry:      h.entry,
				Exit:       h.exit,
				EntryValue: M(round2(h.entryValue), currency),
				ExitValue:  M(round2(h.exitValue), currency),
			}
			if h.long {
				p.Realized = p.ExitValue.Sub(p.EntryValue)
			} else {
				p.Realized = p.EntryValue.Sub(p.ExitValue)
			}
			until := on
			if i+1 < len(hs) {
				until = hs[i+1].entry.Add(-1)
			}
			entry := h.entry
			if p.CapitalDistribution, err = a.CapitalDistribution(id, until, currency, scope, &entry); err != nil {
				return nil, totals, err
			}
			if p.Commission, err = a.CommissionPaid(id, h.exit, currency, scope, &entry); err != nil {
				return nil, totals, err
			}
			p.TotalReturn = p.Realized.Add(p.CapitalDistribution).Add(p.Commission)
			if p.IRR, err = a.IRR(IRRRequest{On: h.exit, Currency: currency, Scope: scope, Security: id, Start: &entry}); err != nil {
				return nil, totals, err
			}
			totals.add(p.EntryValue, p.ExitValue, p.Realized, Zero(currency), p.CapitalDistribution, p.Commission, p.TotalReturn)
			out = append(out, p)
		}
	}
	return out, totals, nil
}

// OpenPosition is a position still held.
type OpenPosition struct {
	Security            Security
	Quantity            decimal.Decimal
	Entry               date.Date
	BuyIn               decimal.Decimal // in the reporting currency
	EntryValue          Money
	CurrentValue        Money
	Share               Return // of the NAV
	Realized            Money  // on the current lot
	Unrealized          Money
	CapitalDistribution Money
	Commission          Money
	TotalReturn         Money
	IRR                 Return
}

// TotalReturnRate is the total return over the entry value.
func (p OpenPosition) TotalReturnRate() Return { return rateOf(p.TotalReturn, p.EntryValue) }

// OpenPositions is the table of open positions of a scope with its totals.
type OpenPositions struct {
	Positions []OpenPosition
	Totals    PositionTotals
	Cash      Money
	NAV       Money
	CashShare Return
	IRR       Return
}

// OpenPositions lists the positions of scope held at the end of on. Each is
// measured from the entry of its current holding, or from start if that is
// later. A holding opened by a trade crossing zero starts on that trade.
func (a *Analyzer) OpenPositions(on date.Date, scope Scope, currency string, start *date.Date) (OpenPositions, error) {
	res := OpenPositions{Totals: newPositionTotals(currency)}
	nav, err := a.NAVAt(on, scope, currency)
	if err != nil {
		return res, err
	}
	res.NAV = nav.Total
	if res.Cash, err = a.PortfolioCash(scope, on, currency); err != nil {
		return res, err
	}
	res.CashShare = rateOf(res.Cash, res.NAV)
	if res.IRR, err = a.IRR(IRRRequest{On: on, Currency: currency, Scope: scope, Start: start}); err != nil {
		return res, err
	}

	for _, id := range a.book.HeldSecurities(scope, on) {
		qty := a.PositionAt(id, on, scope)
		if qty.IsZero() {
			continue
		}
		hs, err := a.holdings(id, on, currency, scope, nil)
		if err != nil {
			return res, err
		}
		if len(hs) == 0 {
			continue
		}
		sec, _ := a.book.Security(id)
		last := hs[len(hs)-1]
		p := OpenPosition{Security: sec, Quantity: qty, Entry: last.entry}
		window := date.Range{From: hs[0].entry, To: on}
		if start != nil && start.After(window.From) {
			window.From = *start
		}
		from := p.Entry
		if segs := holdingSegments(hs, window); len(segs) > 0 && segs[len(segs)-1].Open {
			from = segs[len(segs)-1].Entry
		}
		// the trade reversing the previous holding is charged to the closed one.
		charged := from
		if len(hs) > 1 && hs[len(hs)-2].exit == last.entry && from == last.entry {
			charged = from.Add(1)
		}
		if p.BuyIn, _, err = a.BuyInPrice(id, on, currency, scope, &from); err != nil {
			return res, err
		}
		p.EntryValue = M(round2(p.BuyIn.Mul(qty)), currency)

		u, err := a.unrealized(id, on, currency, scope, &from)
		if err != nil {
			return res, err
		}
		p.CurrentValue = M(round2(u.priceLcl.Mul(u.fx).Mul(qty)), currency)
		p.Share = rateOf(p.CurrentValue, res.NAV)
		p.Unrealized = newGainLoss(u.gain, currency).Total

		realized, err := a.RealizedGainLoss(id, on, currency, scope, &from)
		if err != nil {
			return res, err
		}
		p.Realized = realized.CurrentPosition.Total
		if p.CapitalDistribution, err = a.CapitalDistribution(id, on, currency, scope, &from); err != nil {
			return res, err
		}
		if p.Commission, err = a.CommissionPaid(id, on, currency, scope, &charged); err != nil {
			return res, err
		}
		p.TotalReturn = p.Realized.Add(p.Unrealized).Add(p.CapitalDistribution).Add(p.Commission)
		if p.IRR, err = a.IRR(IRRRequest{On: on, Currency: currency, Scope: scope, Security: id, Start: &from}); err != nil {
			return res, err
		}
		res.Totals.add(p.EntryValue, p.CurrentValue, p.Realized, p.Unrealized, p.CapitalDistribution, p.Commission, p.TotalReturn)
		res.Positions = append(res.Positions, p)
	}
	return res, nil
}
