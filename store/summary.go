package store

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"golang.org/x/sync/errgroup"
)

// SummaryOptions selects the columns of a summary.
type SummaryOptions struct {
	On       date.Date
	Currency string
	Years    int // full years shown besides YTD and All-time, 0 for all
	Limit    int // accounts computed in parallel, default 4
}

// accountRecords are the records of one account: full years in chronological
// order, then YTD.
type accountRecords struct {
	years map[int]folio.PerformanceRecord
	order []int
	ytd   folio.PerformanceRecord
	errs  map[string]string // column to error
}

// annualRecords returns the record of every year of scope since inception, read
// from the store or computed, plus the YTD record.
func (s *Store) annualRecords(ctx context.Context, a *folio.Analyzer, scope folio.Scope, opts SummaryOptions) (accountRecords, error) {
	recs := accountRecords{years: make(map[int]folio.PerformanceRecord), errs: make(map[string]string)}
	inception, ok := a.Book().Inception(scope)
	if !ok {
		return recs, nil
	}
	compute := func(window date.Range) (folio.PerformanceRecord, error) {
		return a.CalculatePerformance(folio.PerformanceRequest{
			Start: window.From, End: window.To, Scope: scope, Currency: opts.Currency, Prior: s,
		})
	}
	for year := inception.Year(); year < opts.On.Year(); year++ {
		window := date.Range{From: date.New(year, time.January, 1), To: date.New(year, time.December, 31)}
		rec, found, err := s.Performance(ctx, Key{Scope: scope.Name, Restricted: scope.Restricted, Currency: opts.Currency, Range: window})
		if err != nil {
			return recs, err
		}
		if !found {
			if rec, err = compute(window); err != nil {
				recs.errs[strconv.Itoa(year)] = err.Error()
				continue
			}
		}
		recs.years[year] = rec
		recs.order = append(recs.order, year)
	}
	ytd, err := compute(date.YearToDate(opts.On))
	if err != nil {
		recs.errs[folio.YTDColumn] = err.Error()
	}
	recs.ytd = ytd
	return recs, nil
}

// line builds the cells of one account and keeps the records behind them for totals.
func (r accountRecords) line(name string, columns []string, allTime folio.Return) (folio.SummaryLine, map[string]folio.PerformanceRecord) {
	line := folio.SummaryLine{Name: name, Cells: make(map[string]folio.SummaryCell)}
	byColumn := make(map[string]folio.PerformanceRecord)
	for _, col := range columns {
		if msg, ok := r.errs[col]; ok {
			line.Cells[col] = folio.SummaryCell{Err: msg}
			continue
		}
		switch col {
		case folio.YTDColumn:
			byColumn[col] = r.ytd
		case folio.AllTimeColumn:
			chain := make([]folio.PerformanceRecord, 0, len(r.order)+1)
			for _, y := range r.order {
				chain = append(chain, r.years[y])
			}
			if _, failed := r.errs[folio.YTDColumn]; !failed {
				chain = append(chain, r.ytd)
			}
			if len(chain) == 0 {
				continue
			}
			all := folio.AllTime(chain...)
			all.MoneyWeightedReturn = allTime
			byColumn[col] = all
		default:
			year, _ := strconv.Atoi(col)
			rec, ok := r.years[year]
			if !ok {
				continue
			}
			byColumn[col] = rec
		}
	}
	for col, rec := range byColumn {
		cell := folio.NewSummaryCell(rec)
		if col == folio.AllTimeColumn && len(r.errs) > 0 {
			cell.Err = "incomplete"
		}
		line.Cells[col] = cell
	}
	return line, byColumn
}

// irrOrNA reports a return that cannot be computed as not available.
func irrOrNA(a *folio.Analyzer, req folio.IRRRequest) folio.Return {
	mwr, err := a.IRR(req)
	if err != nil {
		log.Printf("no return for %s on %s: %v", req.Scope, req.On, err)
		return folio.Return{Status: folio.NotAvailable}
	}
	return mwr
}

// columnRange is the period covered by a column.
func columnRange(col string, on date.Date) (date.Range, bool) {
	switch col {
	case folio.YTDColumn:
		return date.YearToDate(on), true
	case folio.AllTimeColumn:
		return date.Range{}, false
	}
	year, _ := strconv.Atoi(col)
	return date.Range{From: date.New(year, time.January, 1), To: date.New(year, time.December, 31)}, true
}

// totalLine adds the records of several lines, the return being the one of scope.
func totalLine(a *folio.Analyzer, name string, scope folio.Scope, columns []string, opts SummaryOptions, records []map[string]folio.PerformanceRecord) (folio.SummaryLine, map[string]folio.PerformanceRecord) {
	line := folio.SummaryLine{Name: name, Cells: make(map[string]folio.SummaryCell)}
	byColumn := make(map[string]folio.PerformanceRecord)
	for _, col := range columns {
		var recs []folio.PerformanceRecord
		for _, r := range records {
			if rec, ok := r[col]; ok {
				recs = append(recs, rec)
			}
		}
		if len(recs) == 0 {
			continue
		}
		total := folio.Total(name, recs...)
		req := folio.IRRRequest{On: opts.On, Currency: opts.Currency, Scope: scope}
		if window, ok := columnRange(col, opts.On); ok {
			eop := total.EOPNAV.Amount()
			req.On, req.Start, req.TerminalValue = window.To, &window.From, &eop
		}
		total.MoneyWeightedReturn = irrOrNA(a, req)
		byColumn[col] = total
		line.Cells[col] = folio.NewSummaryCell(total)
	}
	return line, byColumn
}

// BuildSummary builds the performance table of every account: YTD, each full
// year from the latest, and All-time, grouped in a public and a restricted
// section with sub-totals, and a grand total.
//
// Stored annual records are used when present, missing ones are computed but
// not stored. A period that cannot be computed shows its error in its cell.
func (s *Store) BuildSummary(ctx context.Context, a *folio.Analyzer, opts SummaryOptions) (folio.Summary, error) {
	b := a.Book()
	all, err := b.Scope(folio.AllScope, folio.AnyAccount)
	if err != nil {
		return folio.Summary{}, err
	}
	summary := folio.Summary{Currency: opts.Currency, Columns: []string{folio.YTDColumn}}
	first := opts.On.Year()
	if inception, ok := b.Inception(all); ok {
		first = inception.Year()
	}
	for year := opts.On.Year() - 1; year >= first; year-- {
		if opts.Years > 0 && len(summary.Columns) > opts.Years {
			break
		}
		summary.Columns = append(summary.Columns, strconv.Itoa(year))
	}
	summary.Columns = append(summary.Columns, folio.AllTimeColumn)

	// every account is computed once, concurrently
	accounts := b.Accounts()
	records := make([]accountRecords, len(accounts))
	allTime := make([]folio.Return, len(accounts))
	limit := opts.Limit
	if limit <= 0 {
		limit = 4
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, acc := range accounts {
		g.Go(func() error {
			scope := folio.NewScope(acc.ID, acc.ID)
			recs, err := s.annualRecords(gctx, a, scope, opts)
			if err != nil {
				return err
			}
			records[i] = recs
			allTime[i] = irrOrNA(a, folio.IRRRequest{On: opts.On, Currency: opts.Currency, Scope: scope})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return summary, err
	}

	var sectionRecords []map[string]folio.PerformanceRecord
	for _, f := range []folio.RestrictedFilter{folio.PublicOnly, folio.RestrictedOnly} {
		scope, err := b.Scope(folio.AllScope, f)
		if err != nil {
			return summary, err
		}
		if scope.IsEmpty() {
			continue
		}
		section := folio.SummarySection{Title: f.String()}
		var lineRecords []map[string]folio.PerformanceRecord
		for i, acc := range accounts {
			if !scope.Contains(acc.ID) {
				continue
			}
			line, byColumn := records[i].line(acc.Name, summary.Columns, allTime[i])
			section.Lines = append(section.Lines, line)
			lineRecords = append(lineRecords, byColumn)
		}
		subTotal, byColumn := totalLine(a, f.String(), scope, summary.Columns, opts, lineRecords)
		section.SubTotal = subTotal
		summary.Sections = append(summary.Sections, section)
		sectionRecords = append(sectionRecords, byColumn)
	}
	summary.Total, _ = totalLine(a, "Total", all, summary.Columns, opts, sectionRecords)
	return summary, nil
}
