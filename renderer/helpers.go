package renderer

import (
	"text/template"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

// funcs are available to every template.
var funcs = template.FuncMap{
	// percent formats a ratio, 0.1 is "10.00%".
	"percent": func(d decimal.Decimal) string { return folio.Rate(d).String() },
	// share formats part over whole, "-" when whole is zero.
	"share": func(part, whole folio.Money) string {
		if whole.IsZero() {
			return "-"
		}
		return folio.Rate(part.Amount().DivRound(whole.Amount(), 8)).String()
	},
	"qty":   func(d decimal.Decimal) string { return d.String() },
	"price": func(d decimal.Decimal) string { return d.StringFixed(4) },
	"date":  formatDate,
	"name":  securityName,
	"row":   newSummaryRow,
}

// securityName is the name of a security, or its ID when it has none.
func securityName(s folio.Security) string {
	if s.Name == "" {
		return s.ID
	}
	return s.Name
}

// formatDate shows "-" for a zero date.
func formatDate(d date.Date) string {
	if d.IsZero() {
		return "-"
	}
	return d.String()
}
