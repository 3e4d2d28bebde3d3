package folio

import (
	"errors"
	"log"
	"math"

	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

// IRRRequest selects the cash flows of a money weighted return.
type IRRRequest struct {
	On       date.Date
	Currency string
	Scope    Scope
	// Security restricts the computation to one security. Empty means the whole
	// portfolio, whose external flows are the cash movements without security.
	Security string
	// Start, if set, treats the value at the day before as the initial investment.
	Start *date.Date
	// TerminalValue, if set, replaces the value computed at On.
	TerminalValue *decimal.Decimal
	// InitialValue, if set with Start, replaces the value computed at the day
	// before Start.
	InitialValue *decimal.Decimal
}

// value is the value of the portfolio, or of a single security, in currency.
func (a *Analyzer) value(on date.Date, scope Scope, currency, security string) (decimal.Decimal, error) {
	if security == "" {
		nav, err := a.NAVAt(on, scope, currency)
		return nav.Total.Amount(), err
	}
	qty := a.position(security, on, scope)
	if qty.IsZero() {
		return decimal.Zero, nil
	}
	px, ok := a.localPrice(security, on)
	if !ok {
		return decimal.Zero, nil
	}
	sec, _ := a.book.Security(security)
	f, err := a.fx.factor(sec.Currency, currency, on)
	if err != nil {
		return decimal.Zero, err
	}
	return round2(qty.Mul(px).Mul(f)), nil
}

// irrCashFlow is the flow of tx from the investor point of view: money put in
// is negative.
func irrCashFlow(tx Transaction, portfolio bool) decimal.Decimal {
	switch tx.Type {
	case CashIn, CashOut:
		return tx.cashFlow().Neg()
	case Commission, Tax:
		return decimal.Zero
	case Interest:
		if portfolio {
			return decimal.Zero
		}
	}
	if cf := tx.cashFlow(); !cf.IsZero() {
		return cf
	}
	return tx.quantity().Neg().Mul(tx.price()).Add(tx.commission())
}

type cashFlow struct {
	on     date.Date
	amount decimal.Decimal
}

// IRR computes the money weighted return of the scope (or of a security) up to
// On, in Currency.
//
// It reports NotRelevant for a negative terminal or starting value and for rates
// at or above the MaxIRR ceiling, and NotAvailable when no rate solves the flows.
// Only an unavailable FX rate is an error.
func (a *Analyzer) IRR(req IRRRequest) (Return, error) {
	portfolio := req.Security == ""
	var terminal decimal.Decimal
	if req.TerminalValue != nil {
		terminal = *req.TerminalValue
	} else {
		v, err := a.value(req.On, req.Scope, req.Currency, req.Security)
		if err != nil {
			return Return{}, err
		}
		terminal = v
	}
	if terminal.IsNegative() {
		return notRelevant, nil
	}

	filters := []TxFilter{InScope(req.Scope), Until(req.On), since(req.Start)}
	if portfolio {
		filters = append(filters, NoSecurity())
	} else {
		filters = append(filters, OfSecurity(req.Security))
	}

	var flows []cashFlow
	if req.Start != nil {
		before := req.Start.Add(-1)
		v0, err := a.initialValue(req, before)
		if err != nil {
			return Return{}, err
		}
		if !portfolio {
			first := decimal.Zero
			for tx := range a.book.Transactions(filters...) {
				first = tx.quantity()
				break
			}
			if v0.IsNegative() || (v0.IsZero() && first.IsNegative()) {
				return notRelevant, nil
			}
		}
		flows = append(flows, cashFlow{before, v0.Neg()})
	}

	for tx := range a.book.Transactions(filters...) {
		f, err := a.fx.factor(tx.Currency, req.Currency, tx.Date)
		if err != nil {
			return Return{}, err
		}
		flows = append(flows, cashFlow{tx.Date, round2(irrCashFlow(tx, portfolio).Mul(f))})
	}
	if n := len(flows); n > 0 && flows[n-1].on == req.On {
		flows[n-1].amount = flows[n-1].amount.Add(terminal)
	} else {
		flows = append(flows, cashFlow{req.On, terminal})
	}

	rate, err := xirr(flows)
	if err != nil {
		log.Printf("irr of %s on %s: %v", req.Scope, req.On, err)
		return notAvailable, nil
	}
	r := decimal.NewFromFloat(rate).Round(RatePlaces)
	if r.GreaterThanOrEqual(a.opts.MaxIRR) {
		return notRelevant, nil
	}
	return Rate(r), nil
}

var errNoIRR = errors.New("no rate solves the cash flows")

// xirr solves sum(amount / (1+r)^(days/365)) = 0 over flows, days counted from
// the first flow.
//
// Newton iterations from 10% are tried first, then a bisection over a bracket
// with a sign change.
func xirr(flows []cashFlow) (float64, error) {
	if len(flows) < 2 {
		return 0, errNoIRR
	}
	t := make([]float64, len(flows))
	v := make([]float64, len(flows))
	pos, neg := false, false
	for i, f := range flows {
		t[i] = float64(flows[0].on.DaysUntil(f.on)) / 365
		v[i] = f.amount.InexactFloat64()
		pos = pos || v[i] > 0
		neg = neg || v[i] < 0
	}
	if !pos || !neg {
		return 0, errNoIRR
	}
	npv := func(r float64) float64 {
		s := 0.0
		for i := range v {
			s += v[i] / math.Pow(1+r, t[i])
		}
		return s
	}
	dnpv := func(r float64) float64 {
		s := 0.0
		for i := range v {
			s -= t[i] * v[i] / math.Pow(1+r, t[i]+1)
		}
		return s
	}

	const tolerance = 1e-10
	r := 0.1
	for range 100 {
		d := dnpv(r)
		if d == 0 || math.IsNaN(d) {
			break
		}
		next := r - npv(r)/d
		if next <= -1 || math.IsNaN(next) || math.IsInf(next, 0) {
			break
		}
		if math.Abs(next-r) < tolerance {
			return next, nil
		}
		r = next
	}

	lo, hi := -0.999999, 1.0
	for npv(lo)*npv(hi) > 0 {
		if hi > 1e6 {
			return 0, errNoIRR
		}
		hi *= 2
	}
	for range 500 {
		mid := (lo + hi) / 2
		if npv(lo)*npv(mid) <= 0 {
			hi = mid
		} else {
			lo = mid
		}
		if hi-lo < tolerance {
			break
		}
	}
	return (lo + hi) / 2, nil
}

func (a *Analyzer) initialValue(req IRRRequest, before date.Date) (decimal.Decimal, error) {
	if req.InitialValue != nil {
		return *req.InitialValue, nil
	}
	return a.value(before, req.Scope, req.Currency, req.Security)
}
