package renderer

import (
	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
)

// PositionsReport holds the open and closed positions of a scope.
type PositionsReport struct {
	Scope        string
	On           date.Date
	Open         folio.OpenPositions
	Closed       []folio.ClosedPosition
	ClosedTotals folio.PositionTotals
}

// RenderPositions renders the open positions then the closed ones.
func RenderPositions(r PositionsReport) string {
	partials := map[string]string{
		"positions_open":   "positions_open.md",
		"positions_closed": "positions_closed.md",
	}
	return renderTemplate("positions", "positions.md", partials, r)
}
