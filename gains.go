package folio

import (
	"log"

	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

// GainLoss splits a gain into the part due to the local price move and the part
// due to the exchange rate move.
type GainLoss struct {
	PriceAppreciation Money
	FXEffect          Money
	Total             Money
}

func newGainLoss(g gain, currency string) GainLoss {
	price, total := round2(g.price), round2(g.total)
	return GainLoss{
		PriceAppreciation: M(price, currency),
		FXEffect:          M(total.Sub(price), currency),
		Total:             M(total, currency),
	}
}

// Add returns the sum of two gains.
func (g GainLoss) Add(h GainLoss) GainLoss {
	return GainLoss{
		PriceAppreciation: g.PriceAppreciation.Add(h.PriceAppreciation),
		FXEffect:          g.FXEffect.Add(h.FXEffect),
		Total:             g.Total.Add(h.Total),
	}
}

// HoldingPeriod is a span during which a position stayed open, and the gain
// realized while closing it.
type HoldingPeriod struct {
	Entry    date.Date
	Exit     date.Date // zero while open
	Open     bool
	Realized GainLoss
}

// RealizedGainLoss is the gain realized on a security.
type RealizedGainLoss struct {
	CurrentPosition GainLoss // realized on the lot still open, zero if flat
	AllTime         GainLoss // realized over every holding period
	Periods         []HoldingPeriod
}

// RealizedGainLoss computes the gain realized by trades reducing the position in
// security, up to on, in currency.
//
// For a closing quantity q at exit price p converted with rate fx, against an
// average cost c (local) and C (currency):
//
//	price appreciation = -(p - c) * q * fx
//	total              = -(p*fx - C) * q
//
// With start, only trades from start count and the position carried into start
// is the cost basis.
func (a *Analyzer) RealizedGainLoss(security string, on date.Date, currency string, scope Scope, start *date.Date) (RealizedGainLoss, error) {
	r, err := a.replayLots(security, on, currency, scope, start)
	if err != nil {
		return RealizedGainLoss{}, err
	}
	var all, current gain
	res := RealizedGainLoss{}
	for _, p := range r.periods {
		all = all.add(p.realized)
		if p.open {
			current = p.realized
		}
		res.Periods = append(res.Periods, HoldingPeriod{
			Entry:    p.entry,
			Exit:     p.exit,
			Open:     p.open,
			Realized: newGainLoss(p.realized, currency),
		})
	}
	res.AllTime = newGainLoss(all, currency)
	res.CurrentPosition = newGainLoss(current, currency)
	return res, nil
}

// unrealized is the gain of the open lot before rounding.
type unrealized struct {
	qty            decimal.Decimal
	priceLcl, fx   decimal.Decimal
	avgLcl, avgTgt decimal.Decimal
	gain           gain
}

func (a *Analyzer) unrealized(security string, on date.Date, currency string, scope Scope, start *date.Date) (unrealized, error) {
	r, err := a.replayLots(security, on, currency, scope, start)
	if err != nil || r.lot.qty.IsZero() {
		return unrealized{}, err
	}
	sec, _ := a.book.Security(security)
	u := unrealized{qty: r.lot.qty, avgLcl: r.lot.avgLcl, avgTgt: r.lot.avgTgt}
	px, ok := a.localPrice(security, on)
	if !ok {
		log.Printf("no price for %s on %s, valued at its buy-in price", security, on)
		px = r.lot.avgLcl
	}
	u.priceLcl = px
	if u.fx, err = a.fx.factor(sec.Currency, currency, on); err != nil {
		return unrealized{}, err
	}
	u.gain.price = px.Sub(u.avgLcl).Mul(u.qty).Mul(u.fx)
	u.gain.total = px.Mul(u.fx).Sub(u.avgTgt).Mul(u.qty)
	return u, nil
}

// UnrealizedGainLoss computes the gain of the position in security still open
// at the end of on, in currency:
//
//	price appreciation = (price_lcl - buyin_lcl) * qty * fx
//	total              = (price_tgt - buyin_tgt) * qty
//
// The price is the latest quote, else the latest trade price. With start, the
// cost basis is reset at start.
func (a *Analyzer) UnrealizedGainLoss(security string, on date.Date, currency string, scope Scope, start *date.Date) (GainLoss, error) {
	u, err := a.unrealized(security, on, currency, scope, start)
	if err != nil {
		return GainLoss{}, err
	}
	return newGainLoss(u.gain, currency), nil
}

// Segment is a holding period delimited by dates.
type Segment struct {
	Entry, Exit date.Date
	Open        bool // no exit, Exit is the end of the window
}

// PairHoldingPeriods pairs each entry date with the next unused exit date at or
// after it, or with the end of the window if none, and clips the segments to the
// window.
func PairHoldingPeriods(entries, exits []date.Date, window date.Range) []Segment {
	var out []Segment
	j := 0
	for _, e := range entries {
		for j < len(exits) && exits[j].Before(e) {
			j++
		}
		seg := Segment{Entry: e, Exit: window.To, Open: true}
		if j < len(exits) {
			seg.Exit, seg.Open = exits[j], false
			j++
		}
		if seg.Exit.Before(window.From) || seg.Entry.After(window.To) {
			continue
		}
		seg.Entry = date.Max(seg.Entry, window.From)
		seg.Exit = date.Min(seg.Exit, window.To)
		out = append(out, seg)
	}
	return out
}

// CapitalDistribution sums the dividends paid by security on the accounts of scope
// from start (if given) to on, in currency.
func (a *Analyzer) CapitalDistribution(security string, on date.Date, currency string, scope Scope, start *date.Date) (Money, error) {
	return a.sumTransactions(currency, Transaction.cashFlow, OfSecurity(security), OfType(Dividend), InScope(scope), Until(on), since(start))
}

// CommissionPaid sums the commissions charged on trades of security on the accounts
// of scope from start (if given) to on, in currency. The amount is negative.
func (a *Analyzer) CommissionPaid(security string, on date.Date, currency string, scope Scope, start *date.Date) (Money, error) {
	return a.sumTransactions(currency, Transaction.commission, OfSecurity(security), InScope(scope), Until(on), since(start))
}

func since(start *date.Date) TxFilter {
	return func(tx Transaction) bool { return start == nil || !tx.Date.Before(*start) }
}

// sumTransactions sums value over the selected transactions, each converted to
// currency at its date.
func (a *Analyzer) sumTransactions(currency string, value func(Transaction) decimal.Decimal, filters ...TxFilter) (Money, error) {
	total := decimal.Zero
	for tx := range a.book.Transactions(filters...) {
		v := value(tx)
		if v.IsZero() {
			continue
		}
		f, err := a.fx.factor(tx.Currency, currency, tx.Date)
		if err != nil {
			return Money{}, err
		}
		total = total.Add(v.Mul(f))
	}
	return M(round2(total), currency), nil
}
