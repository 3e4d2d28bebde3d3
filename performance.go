package folio

import (
	"fmt"

	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

// PriorRecords gives access to performance records already computed, so that
// a period can start from the stored end value of the previous one.
type PriorRecords interface {
	// EOPNAV returns the stored end of period NAV of scope on a day.
	EOPNAV(scope Scope, currency string, on date.Date) (decimal.Decimal, bool)
}

// PerformanceRequest selects a performance record.
type PerformanceRequest struct {
	Start, End date.Date
	Scope      Scope // Scope.Restricted filters the accounts
	Currency   string
	Prior      PriorRecords // optional
}

// Diagnostic codes.
const (
	DiagFXCheck        = "fx-check"
	DiagReconciliation = "reconciliation"
	DiagUnpriced       = "unpriced"
)

// Diagnostic is a warning attached to a performance record.
type Diagnostic struct {
	Code    string
	Message string
	Value   decimal.Decimal
}

func (d Diagnostic) String() string { return fmt.Sprintf("%s: %s", d.Code, d.Message) }

// PerformanceRecord explains the change of NAV over a period:
//
//	EOPNAV = BOPNAV + Invested + CashOut + PriceChange + CapitalDistribution + Commission + Tax + FX
//
// CashOut, Commission and Tax are negative amounts.
type PerformanceRecord struct {
	Range      date.Range
	Currency   string
	Scope      string
	Restricted RestrictedFilter

	BOPNAV              Money
	Invested            Money
	CashOut             Money
	PriceChange         Money
	CapitalDistribution Money
	Commission          Money
	Tax                 Money
	FX                  Money
	EOPNAV              Money

	MoneyWeightedReturn Return
	Diagnostics         []Diagnostic
}

// Explained is the sum of the terms before EOPNAV.
func (r PerformanceRecord) Explained() Money {
	return r.BOPNAV.Add(r.Invested).Add(r.CashOut).Add(r.PriceChange).Add(r.CapitalDistribution).
		Add(r.Commission).Add(r.Tax).Add(r.FX)
}

// Gap is EOPNAV minus the explained value. It stays within a cent.
func (r PerformanceRecord) Gap() Money { return r.EOPNAV.Sub(r.Explained()) }

// CalculatePerformance computes the performance record of a period.
//
// The FX term is the residual that reconciles the record, zeroed when it is
// below the FXNoise option. It is checked against the bottom-up sum of FX
// effects on securities and cash, and a gap above FXCheckTolerance is reported
// as a diagnostic.
func (a *Analyzer) CalculatePerformance(req PerformanceRequest) (PerformanceRecord, error) {
	window, err := date.NewRange(req.Start, req.End)
	if err != nil {
		return PerformanceRecord{}, err
	}
	cur, scope := req.Currency, req.Scope
	before := req.Start.Add(-1)
	rec := PerformanceRecord{Range: window, Currency: cur, Scope: scope.Name, Restricted: scope.Restricted}

	if v, ok := lookupPrior(req, before); ok {
		rec.BOPNAV = M(round2(v), cur)
	} else {
		bop, err := a.NAVAt(before, scope, cur)
		if err != nil {
			return rec, fmt.Errorf("bop nav: %w", err)
		}
		rec.BOPNAV = bop.Total
	}
	eop, err := a.NAVAt(req.End, scope, cur)
	if err != nil {
		return rec, fmt.Errorf("eop nav: %w", err)
	}
	rec.EOPNAV = eop.Total

	inWindow := []TxFilter{InScope(scope), Between(window)}
	sum := func(value func(Transaction) decimal.Decimal, types ...TxType) (Money, error) {
		filters := inWindow
		if len(types) > 0 {
			filters = append(filters[:len(filters):len(filters)], OfType(types...))
		}
		return a.sumTransactions(cur, value, filters...)
	}
	cashFlow := Transaction.cashFlow
	if rec.Invested, err = sum(cashFlow, CashIn); err != nil {
		return rec, err
	}
	if rec.CashOut, err = sum(cashFlow, CashOut); err != nil {
		return rec, err
	}
	if rec.Tax, err = sum(cashFlow, Tax); err != nil {
		return rec, err
	}
	if rec.CapitalDistribution, err = sum(cashFlow, Dividend, Interest); err != nil {
		return rec, err
	}
	if rec.Commission, err = a.commission(window, scope, cur); err != nil {
		return rec, err
	}

	price, fxGains, err := a.securityGains(window, scope, cur, &rec)
	if err != nil {
		return rec, err
	}
	rec.PriceChange = M(round2(price), cur)

	rec.FX = M(decimal.Zero, cur)
	residual := rec.EOPNAV.Sub(rec.Explained())
	if residual.Amount().Abs().GreaterThanOrEqual(a.opts.FXNoise) {
		rec.FX = residual
	} else if !residual.IsZero() {
		rec.Diagnostics = append(rec.Diagnostics, Diagnostic{
			Code:    DiagReconciliation,
			Message: fmt.Sprintf("%s left unexplained below the fx noise threshold", residual),
			Value:   residual.Amount(),
		})
	}

	cashFX, err := a.cashFX(window, scope, cur)
	if err != nil {
		return rec, err
	}
	bottomUp := round2(fxGains.Add(cashFX))
	if diff := rec.FX.Amount().Sub(bottomUp); diff.Abs().GreaterThan(a.opts.FXCheckTolerance) {
		rec.Diagnostics = append(rec.Diagnostics, Diagnostic{
			Code:    DiagFXCheck,
			Message: fmt.Sprintf("fx residual %s differs from the bottom-up fx effect %s", rec.FX, M(bottomUp, cur)),
			Value:   diff,
		})
	}

	start := req.Start
	bopValue, eopValue := rec.BOPNAV.Amount(), rec.EOPNAV.Amount()
	irr := IRRRequest{On: req.End, Currency: cur, Scope: scope, Start: &start, InitialValue: &bopValue, TerminalValue: &eopValue}
	if rec.MoneyWeightedReturn, err = a.IRR(irr); err != nil {
		return rec, err
	}
	return rec, nil
}

func lookupPrior(req PerformanceRequest, on date.Date) (decimal.Decimal, bool) {
	if req.Prior == nil {
		return decimal.Zero, false
	}
	return req.Prior.EOPNAV(req.Scope, req.Currency, on)
}

// commission sums trade commissions, broker commissions and conversion fees.
func (a *Analyzer) commission(window date.Range, scope Scope, cur string) (Money, error) {
	fees := func(tx Transaction) decimal.Decimal {
		if tx.Type == Commission {
			return tx.cashFlow().Add(tx.commission())
		}
		return tx.commission()
	}
	total, err := a.sumTransactions(cur, fees, InScope(scope), Between(window))
	if err != nil {
		return Money{}, err
	}
	conv := decimal.Zero
	for tx := range a.book.FXTransactions(scope, window.To) {
		if tx.Date.Before(window.From) || tx.Commission.IsZero() {
			continue
		}
		f, err := a.fx.factor(tx.From, cur, tx.Date)
		if err != nil {
			return Money{}, err
		}
		conv = conv.Sub(tx.Commission.Mul(f))
	}
	return total.Add(M(round2(conv), cur)), nil
}

// securityGains sums, over the securities of scope, the gains realized in window
// and the gains still open at its end, with cost basis reset at its start. It
// returns the price appreciation and the fx effect, before rounding.
func (a *Analyzer) securityGains(window date.Range, scope Scope, cur string, rec *PerformanceRecord) (price, fx decimal.Decimal, err error) {
	start := window.From
	for _, id := range a.book.HeldSecurities(scope, window.To) {
		r, err := a.replayLots(id, window.To, cur, scope, &start)
		if err != nil {
			return price, fx, err
		}
		for _, p := range r.periods {
			price = price.Add(p.realized.price)
			fx = fx.Add(p.realized.total.Sub(p.realized.price))
		}
		if r.lot.qty.IsZero() {
			continue
		}
		if _, ok := a.localPrice(id, window.To); !ok {
			rec.Diagnostics = append(rec.Diagnostics, Diagnostic{
				Code:    DiagUnpriced,
				Message: fmt.Sprintf("%s has no price on %s", id, window.To),
				Value:   r.lot.qty,
			})
		}
		u, err := a.unrealized(id, window.To, cur, scope, &start)
		if err != nil {
			return price, fx, err
		}
		price = price.Add(u.gain.price)
		fx = fx.Add(u.gain.total.Sub(u.gain.price))
	}
	return price, fx, nil
}

// cashFX is the fx effect on cash over window: the change of the converted cash
// balances that is not explained by the movements converted at their own date.
// Conversions count with their fee only, so that their exchange gain is part of
// the effect.
func (a *Analyzer) cashFX(window date.Range, scope Scope, cur string) (decimal.Decimal, error) {
	before := window.From.Add(-1)
	fx := decimal.Zero
	convert := func(amount decimal.Decimal, from string, on date.Date) (decimal.Decimal, error) {
		f, err := a.fx.factor(from, cur, on)
		return amount.Mul(f), err
	}
	for _, account := range scope.Accounts() {
		for c, v := range a.CashBalance(account, window.To) {
			x, err := convert(v, c, window.To)
			if err != nil {
				return fx, err
			}
			fx = fx.Add(x)
		}
		for c, v := range a.CashBalance(account, before) {
			x, err := convert(v, c, before)
			if err != nil {
				return fx, err
			}
			fx = fx.Sub(x)
		}
	}
	for tx := range a.book.Transactions(InScope(scope), Between(window)) {
		x, err := convert(tx.CashImpact(), tx.Currency, tx.Date)
		if err != nil {
			return fx, err
		}
		fx = fx.Sub(x)
	}
	for tx := range a.book.FXTransactions(scope, window.To) {
		if tx.Date.Before(window.From) {
			continue
		}
		x, err := convert(tx.Commission, tx.From, tx.Date)
		if err != nil {
			return fx, err
		}
		fx = fx.Add(x)
	}
	return fx, nil
}
