package renderer

import (
	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
)

// NAVReport is the net asset value of a scope on a day, split along breakdowns.
type NAVReport struct {
	Scope      string
	On         date.Date
	NAV        folio.NAV
	Breakdowns []folio.Breakdown
}

// NAVTable is one breakdown of a NAV, categories by decreasing value.
type NAVTable struct {
	Title folio.Breakdown
	Rows  []NAVRow
	Total folio.Money
}

type NAVRow struct {
	Category string
	Value    folio.Money
}

// Tables returns the breakdowns of the report in the requested order.
func (r NAVReport) Tables() []NAVTable {
	var tables []NAVTable
	for _, b := range r.Breakdowns {
		t := NAVTable{Title: b, Total: r.NAV.Total}
		for _, cat := range r.NAV.Categories(b) {
			t.Rows = append(t.Rows, NAVRow{Category: cat, Value: r.NAV.Breakdowns[b][cat]})
		}
		tables = append(tables, t)
	}
	return tables
}

// RenderNAV renders the NAV and its breakdowns.
func RenderNAV(r NAVReport) string {
	partials := map[string]string{
		"nav_title":     "nav_title.md",
		"nav_breakdown": "nav_breakdown.md",
	}
	return renderTemplate("nav", "nav.md", partials, r)
}
