package renderer

import (
	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
)

// GainsLine is the gain on a security. Realized covers the holding periods
// since the report start, Unrealized the position still open.
type GainsLine struct {
	Name       string
	Realized   folio.GainLoss
	Unrealized folio.GainLoss
}

// Total is the realized plus the unrealized gain.
func (l GainsLine) Total() folio.Money { return l.Realized.Total.Add(l.Unrealized.Total) }

// GainsReport lists the gains of the securities of a scope.
type GainsReport struct {
	Scope    string
	On       date.Date
	Since    date.Date // zero for inception
	Currency string
	Lines    []GainsLine
}

// Total sums every line.
func (r GainsReport) Total() GainsLine {
	z := folio.Zero(r.Currency)
	t := GainsLine{
		Name:       "**Total**",
		Realized:   folio.GainLoss{PriceAppreciation: z, FXEffect: z, Total: z},
		Unrealized: folio.GainLoss{PriceAppreciation: z, FXEffect: z, Total: z},
	}
	for _, l := range r.Lines {
		t.Realized = t.Realized.Add(l.Realized)
		t.Unrealized = t.Unrealized.Add(l.Unrealized)
	}
	return t
}

// RenderGains renders the gains table.
func RenderGains(r GainsReport) string {
	partials := map[string]string{
		"gains_line": "gains_line.md",
	}
	return renderTemplate("gains", "gains.md", partials, r)
}
