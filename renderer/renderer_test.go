package renderer

import (
	"io/fs"
	"slices"
	"strings"
	"testing"
	"text/template"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

func d(s string) date.Date         { return date.MustParse(s) }
func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
func eur(s string) folio.Money     { return folio.M(dec(s), "EUR") }

// document is the parsed markdown of a report.
type document struct {
	headings []string
	tables   [][][]string // rows of cells, header included
	text     []string     // paragraphs
}

// plain concatenates the text under n, dropping emphasis.
func plain(n ast.Node, src []byte) string {
	var b strings.Builder
	ast.Walk(n, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Text:
			b.Write(n.Segment.Value(src))
			if n.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(n.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

func cells(n ast.Node, src []byte) []string {
	var row []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		row = append(row, plain(c, src))
	}
	return row
}

func parse(t *testing.T, md string) document {
	t.Helper()
	if strings.HasPrefix(md, "error ") {
		t.Fatalf("rendering failed: %s", md)
	}
	src := []byte(md)
	root := goldmark.New(goldmark.WithExtensions(extension.Table)).Parser().Parse(text.NewReader(src))
	var doc document
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Heading:
			doc.headings = append(doc.headings, plain(n, src))
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph:
			doc.text = append(doc.text, plain(n, src))
			return ast.WalkSkipChildren, nil
		case *extast.Table:
			var rows [][]string
			for r := n.FirstChild(); r != nil; r = r.NextSibling() {
				rows = append(rows, cells(r, src))
			}
			doc.tables = append(doc.tables, rows)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return doc
}

// row returns the first row of table starting with name.
func (doc document) row(t *testing.T, table int, name string) []string {
	t.Helper()
	if table >= len(doc.tables) {
		t.Fatalf("document has %d tables, want more than %d", len(doc.tables), table)
	}
	for _, r := range doc.tables[table] {
		if len(r) > 0 && r[0] == name {
			return r
		}
	}
	t.Fatalf("table %d has no row %q: %v", table, name, doc.tables[table])
	return nil
}

func checkRow(t *testing.T, got []string, want ...string) {
	t.Helper()
	if !slices.Equal(got, want) {
		t.Errorf("row = %q, want %q", got, want)
	}
}

func TestTemplatesParse(t *testing.T) {
	files, err := fs.Glob(templates, "templates/*.md")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no template embedded")
	}
	for _, file := range files {
		content, err := fs.ReadFile(templates, file)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := template.New(file).Funcs(funcs).Parse(string(content)); err != nil {
			t.Errorf("template %s: %v", file, err)
		}
	}
}

func TestRenderNAV(t *testing.T) {
	r := NAVReport{
		Scope: "Broker",
		On:    d("2024-12-31"),
		NAV: folio.NAV{
			Total: eur("1500"),
			Breakdowns: map[folio.Breakdown]map[string]folio.Money{
				folio.ByAssetType: {"Stock": eur("1200"), folio.CashCategory: eur("300")},
				folio.ByCurrency:  {"EUR": eur("1500")},
			},
		},
		Breakdowns: []folio.Breakdown{folio.ByAssetType, folio.ByCurrency},
	}
	doc := parse(t, RenderNAV(r))
	if want := []string{"Broker on 2024-12-31", "By Asset type", "By Currency"}; !slices.Equal(doc.headings, want) {
		t.Errorf("headings = %q, want %q", doc.headings, want)
	}
	if len(doc.text) == 0 || doc.text[0] != "Net asset value: €1,500.00" {
		t.Errorf("text = %q, want the net asset value", doc.text)
	}
	checkRow(t, doc.tables[0][0], "Asset type", "Value", "Share")
	// rows by decreasing value
	checkRow(t, doc.tables[0][1], "Stock", "€1,200.00", "80.00%")
	checkRow(t, doc.tables[0][2], "Cash", "€300.00", "20.00%")
	checkRow(t, doc.row(t, 1, "EUR"), "EUR", "€1,500.00", "100.00%")
}

func TestRenderPerformance(t *testing.T) {
	rec := folio.PerformanceRecord{
		Range: date.Range{From: d("2024-01-01"), To: d("2024-12-31")}, Currency: "EUR", Scope: "Broker",
		BOPNAV: eur("1000"), Invested: eur("100"), CashOut: eur("-50"), PriceChange: eur("200"),
		CapitalDistribution: eur("10"), Commission: eur("-5"), Tax: eur("-3"), FX: eur("0"), EOPNAV: eur("1252"),
		MoneyWeightedReturn: folio.Rate(dec("0.1234")),
	}
	doc := parse(t, RenderPerformance(rec))
	if len(doc.headings) != 1 || doc.headings[0] != "Performance of Broker from 2024-01-01 to 2024-12-31" {
		t.Errorf("headings = %q", doc.headings)
	}
	tests := []struct {
		term, want string
	}{
		{"Beginning NAV", "€1,000.00"},
		{"Invested", "+€100.00"},
		{"Cash out", "-€50.00"},
		{"Price change", "+€200.00"},
		{"Commission", "-€5.00"},
		{"FX", "€0.00"},
		{"Ending NAV", "€1,252.00"},
	}
	for _, tt := range tests {
		checkRow(t, doc.row(t, 0, tt.term), tt.term, tt.want)
	}
	if !slices.Contains(doc.text, "Money weighted return: +12.34%") {
		t.Errorf("text = %q, want the money weighted return", doc.text)
	}

	rec.Diagnostics = []folio.Diagnostic{{Code: folio.DiagUnpriced, Message: "no price for AAA"}}
	doc = parse(t, RenderPerformance(rec))
	if !slices.Contains(doc.headings, "Diagnostics") {
		t.Errorf("headings = %q, want Diagnostics", doc.headings)
	}
}

func TestRenderSummary(t *testing.T) {
	cell := folio.SummaryCell{
		BOPNAV: eur("1200"), CashInOut: eur("0"), Return: eur("300"), FX: eur("0"), EOPNAV: eur("1500"),
		Commission: eur("0"), TSR: folio.Rate(dec("0.1")),
	}
	broker := folio.SummaryLine{Name: "Broker", Cells: map[string]folio.SummaryCell{
		"2024":              cell,
		folio.YTDColumn:     {Err: "no quote"},
		folio.AllTimeColumn: cell,
	}}
	s := folio.Summary{
		Currency: "EUR",
		Columns:  []string{folio.YTDColumn, "2024", folio.AllTimeColumn},
		Sections: []folio.SummarySection{{
			Title:    "Public",
			Lines:    []folio.SummaryLine{broker, {Name: "Empty", Cells: map[string]folio.SummaryCell{}}},
			SubTotal: folio.SummaryLine{Name: "Public", Cells: map[string]folio.SummaryCell{"2024": cell}},
		}},
		Total: folio.SummaryLine{Name: "Total", Cells: map[string]folio.SummaryCell{"2024": cell}},
	}
	doc := parse(t, RenderSummary(s))
	if want := []string{"Summary in EUR", "YTD", "2024", "All-time"}; !slices.Equal(doc.headings, want) {
		t.Fatalf("headings = %q, want %q", doc.headings, want)
	}
	if len(doc.tables) != 3 {
		t.Fatalf("tables = %d, want 3", len(doc.tables))
	}
	checkRow(t, doc.row(t, 0, "Broker"), "Broker", "no quote", "", "", "", "", "", "")
	checkRow(t, doc.row(t, 1, "Broker"), "Broker", "€1,200.00", "€0.00", "+€300.00", "€0.00", "€1,500.00", "0.00%", "+10.00%")
	checkRow(t, doc.row(t, 1, "Empty"), "Empty", "-", "-", "-", "-", "-", "-", "-")
	checkRow(t, doc.row(t, 1, "Total"), "Total", "€1,200.00", "€0.00", "+€300.00", "€0.00", "€1,500.00", "0.00%", "+10.00%")
	// every table ends with the total
	for i, table := range doc.tables {
		if last := table[len(table)-1]; last[0] != "Total" {
			t.Errorf("table %d ends with %q, want Total", i, last[0])
		}
	}
}

func TestRenderPositions(t *testing.T) {
	sec := folio.Security{ID: "AAA", Name: "Alpha", Currency: "EUR"}
	totals := folio.PositionTotals{
		EntryValue: eur("1000"), Value: eur("1500"), Realized: eur("0"), Unrealized: eur("500"),
		CapitalDistribution: eur("20"), Commission: eur("-2"), TotalReturn: eur("518"),
	}
	r := PositionsReport{
		Scope: "Broker",
		On:    d("2024-12-31"),
		Open: folio.OpenPositions{
			Positions: []folio.OpenPosition{{
				Security: sec, Quantity: dec("100"), Entry: d("2023-01-03"), BuyIn: dec("10"),
				EntryValue: eur("1000"), CurrentValue: eur("1500"), Share: folio.Rate(dec("1")),
				Realized: eur("0"), Unrealized: eur("500"), CapitalDistribution: eur("20"), Commission: eur("-2"),
				TotalReturn: eur("518"), IRR: folio.Rate(dec("0.25")),
			}},
			Totals:    totals,
			Cash:      eur("0"),
			NAV:       eur("1500"),
			CashShare: folio.Rate(dec("0")),
			IRR:       folio.Rate(dec("0.25")),
		},
	}
	doc := parse(t, RenderPositions(r))
	if want := []string{"Positions of Broker on 2024-12-31", "Open positions", "Closed positions"}; !slices.Equal(doc.headings, want) {
		t.Errorf("headings = %q, want %q", doc.headings, want)
	}
	checkRow(t, doc.row(t, 0, "Alpha"), "Alpha", "100", "2023-01-03", "10.0000", "€1,000.00", "€1,500.00", "100.00%",
		"+€500.00", "+€20.00", "-€2.00", "+€518.00", "+51.80%", "+25.00%")
	checkRow(t, doc.row(t, 0, "Cash"), "Cash", "", "", "", "", "€0.00", "0.00%", "", "", "", "", "", "")
	if len(doc.tables) != 1 || !slices.Contains(doc.text, "No closed position.") {
		t.Errorf("closed positions = %v %q, want none", doc.tables[1:], doc.text)
	}

	r.Closed = []folio.ClosedPosition{{
		Security: folio.Security{ID: "BBB"}, Entry: d("2023-02-01"), Exit: d("2023-06-01"),
		EntryValue: eur("100"), ExitValue: eur("90"), Realized: eur("-10"), CapitalDistribution: eur("0"),
		Commission: eur("-1"), TotalReturn: eur("-11"), IRR: folio.Return{Status: folio.NotRelevant},
	}}
	r.ClosedTotals = folio.PositionTotals{
		EntryValue: eur("100"), Value: eur("90"), Realized: eur("-10"), Unrealized: eur("0"),
		CapitalDistribution: eur("0"), Commission: eur("-1"), TotalReturn: eur("-11"),
	}
	doc = parse(t, RenderPositions(r))
	checkRow(t, doc.row(t, 1, "BBB"), "BBB", "2023-02-01", "2023-06-01", "€100.00", "€90.00", "-€10.00", "€0.00",
		"-€1.00", "-€11.00", "-11.00%", "N/R")
}

func TestRenderGains(t *testing.T) {
	gl := func(price, fx string) folio.GainLoss {
		return folio.GainLoss{PriceAppreciation: eur(price), FXEffect: eur(fx), Total: eur(price).Add(eur(fx))}
	}
	r := GainsReport{
		Scope: "Broker", On: d("2024-12-31"), Currency: "EUR",
		Lines: []GainsLine{
			{Name: "Alpha", Realized: gl("100", "10"), Unrealized: gl("50", "0")},
			{Name: "Beta", Realized: gl("-20", "0"), Unrealized: gl("0", "-5")},
		},
	}
	doc := parse(t, RenderGains(r))
	if !slices.Contains(doc.text, "Since inception, in EUR.") {
		t.Errorf("text = %q, want since inception", doc.text)
	}
	checkRow(t, doc.row(t, 0, "Alpha"), "Alpha", "+€110.00", "+€10.00", "+€50.00", "€0.00", "+€160.00")
	checkRow(t, doc.row(t, 0, "Total"), "Total", "+€90.00", "+€10.00", "+€45.00", "-€5.00", "+€135.00")

	r.Since = d("2024-01-01")
	doc = parse(t, RenderGains(r))
	if !slices.Contains(doc.text, "Since 2024-01-01, in EUR.") {
		t.Errorf("text = %q, want since 2024-01-01", doc.text)
	}
}

func TestRenderHistory(t *testing.T) {
	r := HistoryReport{Scope: "All", Points: []folio.NAVPoint{
		{Date: d("2024-01-31"), NAV: folio.NAV{Total: eur("1000")}, IRR: folio.Return{Status: folio.NotAvailable}, RollingIRR: folio.Return{Status: folio.NotAvailable}},
		{Date: d("2024-02-29"), NAV: folio.NAV{Total: eur("1100")}, IRR: folio.Rate(dec("0.5")), RollingIRR: folio.Rate(dec("1.2"))},
	}}
	doc := parse(t, RenderHistory(r))
	checkRow(t, doc.row(t, 0, "2024-01-31"), "2024-01-31", "€1,000.00", "N/A", "N/A")
	checkRow(t, doc.row(t, 0, "2024-02-29"), "2024-02-29", "€1,100.00", "50.00%", "120.00%")
}

func TestRenderDashboard(t *testing.T) {
	r := DashboardReport{Scope: "All", Dashboard: folio.Dashboard{
		On: d("2024-12-31"), NAV: eur("1500"), Invested: eur("1000"), CashOut: eur("-100"),
		TotalReturn: folio.Rate(dec("0.6")), IRR: folio.Rate(dec("0.2")),
	}}
	doc := parse(t, RenderDashboard(r))
	if len(doc.headings) != 1 || doc.headings[0] != "All on 2024-12-31" {
		t.Errorf("headings = %q", doc.headings)
	}
	checkRow(t, doc.row(t, 0, "Net asset value"), "Net asset value", "€1,500.00")
	checkRow(t, doc.row(t, 0, "Cash out"), "Cash out", "-€100.00")
	checkRow(t, doc.row(t, 0, "Total return"), "Total return", "+60.00%")
}

func TestRenderTemplate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		main     string
		partials map[string]string
	}{
		{"missing main", "missing.md", nil},
		{"missing partial", "nav.md", map[string]string{"nav_title": "missing.md"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderTemplate("nav", tt.main, tt.partials, NAVReport{}); !strings.HasPrefix(got, "error ") {
				t.Errorf("renderTemplate() = %q, want an error", got)
			}
		})
	}
}
