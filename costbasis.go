package folio

import (
	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

// divPrecision is the precision of intermediate divisions, well above the
// rounding points of the results.
const divPrecision = 16

// lot is the running weighted average cost of an open position, both in the
// trade currency and in a target currency.
type lot struct {
	entry  date.Date
	qty    decimal.Decimal
	long   bool
	avgLcl decimal.Decimal
	avgTgt decimal.Decimal
}

// gain is the result of closing all or part of a lot.
type gain struct {
	price decimal.Decimal // local price move converted at the exit rate
	total decimal.Decimal // full gain in the target currency
}

func (g gain) add(h gain) gain { return gain{g.price.Add(h.price), g.total.Add(h.total)} }

// fold applies a trade of signed quantity q at local price px, converted to the
// target currency with factor fx. It returns the gain realized by the closing leg
// of the trade, and whether the lot was closed.
//
// Trades extending the lot blend their price into the average. Trades reducing it
// leave the average unchanged. A trade crossing zero closes the lot and opens a
// new one, on the other side, at its own price.
func (l *lot) fold(on date.Date, q, px, fx decimal.Decimal) (g gain, closed bool) {
	pxTgt := px.Mul(fx)
	if l.qty.IsZero() {
		*l = lot{entry: on, qty: q, long: q.IsPositive(), avgLcl: px, avgTgt: pxTgt}
		return gain{}, false
	}
	if l.long == q.IsPositive() {
		total := l.qty.Add(q)
		l.avgLcl = l.avgLcl.Mul(l.qty).Add(px.Mul(q)).DivRound(total, divPrecision)
		l.avgTgt = l.avgTgt.Mul(l.qty).Add(pxTgt.Mul(q)).DivRound(total, divPrecision)
		l.qty = total
		return gain{}, false
	}

	c := q // closing leg
	if q.Abs().GreaterThan(l.qty.Abs()) {
		c = l.qty.Neg()
	}
	g.price = px.Sub(l.avgLcl).Mul(c).Mul(fx).Neg()
	g.total = pxTgt.Sub(l.avgTgt).Mul(c).Neg()
	l.qty = l.qty.Add(c)
	if rest := q.Sub(c); !rest.IsZero() {
		*l = lot{entry: on, qty: rest, long: rest.IsPositive(), avgLcl: px, avgTgt: pxTgt}
		return g, true
	}
	return g, l.qty.IsZero()
}

// period is a holding period with its realized gain, before rounding.
type period struct {
	entry, exit date.Date
	open        bool
	realized    gain
}

// lotReplay is the outcome of folding the trades of a position.
type lotReplay struct {
	traded  bool
	lot     lot // last lot, possibly closed
	periods []period
}

// replayLots folds the entries of security up to on, with prices converted to
// currency at the rate of each entry.
func (a *Analyzer) replayLots(security string, on date.Date, currency string, scope Scope, start *date.Date) (lotReplay, error) {
	var r lotReplay
	for _, e := range a.entries(security, on, scope, start) {
		fx, err := a.fx.factor(e.currency(), currency, e.rateDate())
		if err != nil {
			return lotReplay{}, err
		}
		opening := r.lot.qty.IsZero()
		g, closed := r.lot.fold(e.entryDate(), e.quantity(), e.price(), fx)
		r.traded = true
		if opening {
			r.periods = append(r.periods, period{entry: e.entryDate(), open: true})
		}
		cur := &r.periods[len(r.periods)-1]
		cur.realized = cur.realized.add(g)
		if closed {
			cur.exit, cur.open = e.entryDate(), false
			if !r.lot.qty.IsZero() {
				r.periods = append(r.periods, period{entry: e.entryDate(), open: true})
			}
		}
	}
	return r, nil
}

// BuyInPrice returns the weighted average entry price, in currency, of the lot of
// security held on the accounts of scope at the end of on.
//
// Entry prices are converted at the rate of their own date. With start, the
// position carried into start is treated as bought at the price of the day
// before start. A lot that was closed keeps its last average. It reports false
// when there is no trade to average.
func (a *Analyzer) BuyInPrice(security string, on date.Date, currency string, scope Scope, start *date.Date) (decimal.Decimal, bool, error) {
	r, err := a.replayLots(security, on, currency, scope, start)
	if err != nil {
		return decimal.Zero, false, err
	}
	if !r.traded {
		if start != nil {
			return a.BuyInPrice(security, on, currency, scope, nil)
		}
		return decimal.Zero, false, nil
	}
	return round6(r.lot.avgTgt), true, nil
}
