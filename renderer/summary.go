package renderer

import "github.com/etnz/folio"

// summaryRow is a line of a summary table for one column, already formatted.
type summaryRow struct {
	Name  string
	Cells []string
}

func bold(s string) string {
	if s == "" || s == "-" {
		return s
	}
	return "**" + s + "**"
}

// newSummaryRow formats the cell of l in column col.
func newSummaryRow(l folio.SummaryLine, col string, strong bool) summaryRow {
	row := summaryRow{Name: l.Name}
	c, ok := l.Cells[col]
	switch {
	case !ok:
		row.Cells = []string{"-", "-", "-", "-", "-", "-", "-"}
	case c.Err != "" && c.EOPNAV.Currency() == "":
		row.Cells = []string{c.Err, "", "", "", "", "", ""}
	default:
		row.Cells = []string{
			c.BOPNAV.String(),
			c.CashInOut.SignedString(),
			c.Return.SignedString(),
			c.FX.SignedString(),
			c.EOPNAV.String(),
			folio.Rate(c.FeePerAuM).String(),
			c.TSR.SignedString(),
		}
		if c.Err != "" {
			row.Cells[6] += " (" + c.Err + ")"
		}
	}
	if strong {
		row.Name = bold(row.Name)
		for i, s := range row.Cells {
			row.Cells[i] = bold(s)
		}
	}
	return row
}

// RenderSummary renders one table per column of s: YTD, each year and All-time.
func RenderSummary(s folio.Summary) string {
	partials := map[string]string{
		"summary_line": "summary_line.md",
	}
	return renderTemplate("summary", "summary.md", partials, s)
}
