package folio

import (
	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

// NAVPoint is a step of a NAV history.
type NAVPoint struct {
	Date       date.Date
	NAV        NAV
	IRR        Return // since inception
	RollingIRR Return // since the previous step
}

// NAVSeries values scope at the end of each period of window, with the returns
// since inception and over each step.
func (a *Analyzer) NAVSeries(window date.Range, p date.Period, scope Scope, currency string, breakdowns ...Breakdown) ([]NAVPoint, error) {
	var points []NAVPoint
	from := window.From
	for on := range window.Steps(p) {
		nav, err := a.NAVAt(on, scope, currency, breakdowns...)
		if err != nil {
			return nil, err
		}
		total := nav.Total.Amount()
		pt := NAVPoint{Date: on, NAV: nav}
		if pt.IRR, err = a.IRR(IRRRequest{On: on, Currency: currency, Scope: scope, TerminalValue: &total}); err != nil {
			return nil, err
		}
		start := from
		if pt.RollingIRR, err = a.IRR(IRRRequest{On: on, Currency: currency, Scope: scope, Start: &start, TerminalValue: &total}); err != nil {
			return nil, err
		}
		points = append(points, pt)
		from = on.Add(1)
	}
	return points, nil
}

// Dashboard holds the headline figures of a scope.
type Dashboard struct {
	On          date.Date
	NAV         Money
	Invested    Money
	CashOut     Money // negative
	TotalReturn Return
	IRR         Return
}

// Dashboard computes the headline figures of scope at the end of on. The total
// return is (NAV - cash out) / invested - 1.
func (a *Analyzer) Dashboard(on date.Date, scope Scope, currency string) (Dashboard, error) {
	d := Dashboard{On: on}
	nav, err := a.NAVAt(on, scope, currency)
	if err != nil {
		return d, err
	}
	d.NAV = nav.Total
	upTo := []TxFilter{InScope(scope), Until(on)}
	if d.Invested, err = a.sumTransactions(currency, Transaction.cashFlow, append(upTo, OfType(CashIn))...); err != nil {
		return d, err
	}
	if d.CashOut, err = a.sumTransactions(currency, Transaction.cashFlow, append(upTo, OfType(CashOut))...); err != nil {
		return d, err
	}
	d.TotalReturn = notAvailable
	if !d.Invested.IsZero() {
		r := d.NAV.Sub(d.CashOut).Amount().DivRound(d.Invested.Amount(), divPrecision).Sub(decimal.NewFromInt(1))
		d.TotalReturn = Rate(r.Round(RatePlaces))
	}
	if d.IRR, err = a.IRR(IRRRequest{On: on, Currency: currency, Scope: scope}); err != nil {
		return d, err
	}
	return d, nil
}
