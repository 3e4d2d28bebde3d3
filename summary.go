package folio

import (
	"github.com/shopspring/decimal"
)

// Column names of summary tables besides the years.
const (
	YTDColumn     = "YTD"
	AllTimeColumn = "All-time"
)

// SummaryCell is a performance record reduced to the figures of a summary table.
type SummaryCell struct {
	BOPNAV     Money
	CashInOut  Money // invested + cash out
	Return     Money // price change + capital distribution + commission + tax
	FX         Money
	EOPNAV     Money
	Commission Money
	FeePerAuM  decimal.Decimal // -commission / average NAV
	TSR        Return
	Err        string // set when the period could not be computed
}

// NewSummaryCell reduces a record.
func NewSummaryCell(r PerformanceRecord) SummaryCell {
	c := SummaryCell{
		BOPNAV:     r.BOPNAV,
		CashInOut:  r.Invested.Add(r.CashOut),
		Return:     r.PriceChange.Add(r.CapitalDistribution).Add(r.Commission).Add(r.Tax),
		FX:         r.FX,
		EOPNAV:     r.EOPNAV,
		Commission: r.Commission,
		TSR:        r.MoneyWeightedReturn,
	}
	if sum := r.BOPNAV.Amount().Add(r.EOPNAV.Amount()); !sum.IsZero() {
		avg := sum.Div(decimal.NewFromInt(2))
		c.FeePerAuM = r.Commission.Amount().Neg().DivRound(avg, divPrecision).Round(RatePlaces + 2)
	}
	return c
}

// addFlows adds the flow terms of s to r, leaving the NAVs alone.
func addFlows(r, s PerformanceRecord) PerformanceRecord {
	r.Invested = r.Invested.Add(s.Invested)
	r.CashOut = r.CashOut.Add(s.CashOut)
	r.PriceChange = r.PriceChange.Add(s.PriceChange)
	r.CapitalDistribution = r.CapitalDistribution.Add(s.CapitalDistribution)
	r.Commission = r.Commission.Add(s.Commission)
	r.Tax = r.Tax.Add(s.Tax)
	r.FX = r.FX.Add(s.FX)
	return r
}

// AllTime rolls up the records of consecutive periods of one scope, in
// chronological order. Every flow is summed, BOP NAV is zero and EOP NAV is
// the one of the last record. The return is left for the caller to compute.
func AllTime(records ...PerformanceRecord) PerformanceRecord {
	var all PerformanceRecord
	if len(records) == 0 {
		return all
	}
	first, last := records[0], records[len(records)-1]
	cur := last.Currency
	all = PerformanceRecord{
		Currency: cur, Scope: last.Scope, Restricted: last.Restricted,
		BOPNAV: Zero(cur), Invested: Zero(cur), CashOut: Zero(cur), PriceChange: Zero(cur),
		CapitalDistribution: Zero(cur), Commission: Zero(cur), Tax: Zero(cur), FX: Zero(cur),
	}
	all.Range.From, all.Range.To = first.Range.From, last.Range.To
	for _, r := range records {
		all = addFlows(all, r)
		all.Diagnostics = append(all.Diagnostics, r.Diagnostics...)
	}
	all.EOPNAV = last.EOPNAV
	return all
}

// Total adds the records of different scopes over the same period, NAVs
// included. The return is left for the caller to compute.
func Total(name string, records ...PerformanceRecord) PerformanceRecord {
	if len(records) == 0 {
		return PerformanceRecord{Scope: name}
	}
	t := records[0]
	t.Scope, t.Restricted, t.Diagnostics, t.MoneyWeightedReturn = name, AnyAccount, nil, Return{}
	for _, r := range records[1:] {
		t = addFlows(t, r)
		t.BOPNAV = t.BOPNAV.Add(r.BOPNAV)
		t.EOPNAV = t.EOPNAV.Add(r.EOPNAV)
	}
	return t
}

// SummaryLine is a row of a summary table, one cell per column.
type SummaryLine struct {
	Name  string
	Cells map[string]SummaryCell
}

// SummarySection is a group of rows with their sub-total.
type SummarySection struct {
	Title    string
	Lines    []SummaryLine
	SubTotal SummaryLine
}

// Summary is the performance of accounts over YTD, each full year and all time.
type Summary struct {
	Currency string
	Columns  []string // YTD, years from the latest, All-time
	Sections []SummarySection
	Total    SummaryLine
}
