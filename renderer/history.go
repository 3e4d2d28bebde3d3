package renderer

import "github.com/etnz/folio"

// HistoryReport is the NAV of a scope at the end of successive periods.
type HistoryReport struct {
	Scope  string
	Points []folio.NAVPoint
}

// RenderHistory renders the NAV history with its returns.
func RenderHistory(r HistoryReport) string {
	return renderTemplate("history", "history.md", nil, r)
}
