package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// PeriodError is the failure to compute the performance of a scope over a period.
type PeriodError struct {
	Scope string
	Range date.Range
	Err   error
}

func (e *PeriodError) Error() string { return fmt.Sprintf("%s over %s: %v", e.Scope, e.Range, e.Err) }
func (e *PeriodError) Unwrap() error { return e.Err }

// Key identifies a stored performance record.
type Key struct {
	Scope      string
	Restricted folio.RestrictedFilter
	Currency   string
	Range      date.Range
}

// KeyOf returns the key of rec.
func KeyOf(rec folio.PerformanceRecord) Key {
	return Key{Scope: rec.Scope, Restricted: rec.Restricted, Currency: rec.Currency, Range: rec.Range}
}

// SavePerformance stores rec, replacing the record with the same key.
func (s *Store) SavePerformance(ctx context.Context, rec folio.PerformanceRecord) error {
	diags, err := json.Marshal(rec.Diagnostics)
	if err != nil {
		return fmt.Errorf("failed to marshal diagnostics: %w", err)
	}
	if rec.Diagnostics == nil {
		diags = []byte("[]")
	}
	mwr, err := json.Marshal(rec.MoneyWeightedReturn)
	if err != nil {
		return err
	}
	var mwrText string
	if err := json.Unmarshal(mwr, &mwrText); err != nil {
		mwrText = string(mwr)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO performance (id, scope, restricted, currency, start_date, end_date,
			bop_nav, invested, cash_out, price_change, capital_distribution, commission, tax, fx, eop_nav,
			mwr, diagnostics, calculated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(scope, restricted, currency, start_date, end_date) DO UPDATE SET
			bop_nav = excluded.bop_nav, invested = excluded.invested, cash_out = excluded.cash_out,
			price_change = excluded.price_change, capital_distribution = excluded.capital_distribution,
			commission = excluded.commission, tax = excluded.tax, fx = excluded.fx, eop_nav = excluded.eop_nav,
			mwr = excluded.mwr, diagnostics = excluded.diagnostics, calculated_at = excluded.calculated_at`,
		uuid.New().String(), rec.Scope, rec.Restricted.String(), rec.Currency,
		dateArg(rec.Range.From), dateArg(rec.Range.To),
		rec.BOPNAV.Amount(), rec.Invested.Amount(), rec.CashOut.Amount(), rec.PriceChange.Amount(),
		rec.CapitalDistribution.Amount(), rec.Commission.Amount(), rec.Tax.Amount(), rec.FX.Amount(), rec.EOPNAV.Amount(),
		mwrText, string(diags), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save performance of %s over %s: %w", rec.Scope, rec.Range, err)
	}
	return nil
}

const performanceColumns = `scope, restricted, currency, start_date, end_date,
	bop_nav, invested, cash_out, price_change, capital_distribution, commission, tax, fx, eop_nav,
	mwr, diagnostics`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPerformance(row rowScanner) (folio.PerformanceRecord, error) {
	var rec folio.PerformanceRecord
	var restricted, from, to, mwr, diags string
	var bop, invested, cashOut, price, dist, commission, tax, fx, eop decimal.Decimal
	err := row.Scan(&rec.Scope, &restricted, &rec.Currency, &from, &to,
		&bop, &invested, &cashOut, &price, &dist, &commission, &tax, &fx, &eop, &mwr, &diags)
	if err != nil {
		return rec, err
	}
	if rec.Restricted, err = folio.ParseRestrictedFilter(restricted); err != nil {
		return rec, err
	}
	if rec.Range.From, err = scanDate(from); err != nil {
		return rec, err
	}
	if rec.Range.To, err = scanDate(to); err != nil {
		return rec, err
	}
	if rec.MoneyWeightedReturn, err = folio.ParseReturn(mwr); err != nil {
		return rec, err
	}
	if err := json.Unmarshal([]byte(diags), &rec.Diagnostics); err != nil {
		return rec, fmt.Errorf("failed to parse diagnostics: %w", err)
	}
	if len(rec.Diagnostics) == 0 {
		rec.Diagnostics = nil
	}
	cur := rec.Currency
	rec.BOPNAV, rec.Invested, rec.CashOut = folio.M(bop, cur), folio.M(invested, cur), folio.M(cashOut, cur)
	rec.PriceChange, rec.CapitalDistribution = folio.M(price, cur), folio.M(dist, cur)
	rec.Commission, rec.Tax, rec.FX, rec.EOPNAV = folio.M(commission, cur), folio.M(tax, cur), folio.M(fx, cur), folio.M(eop, cur)
	return rec, nil
}

// Performance returns the stored record with key k.
func (s *Store) Performance(ctx context.Context, k Key) (folio.PerformanceRecord, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+performanceColumns+` FROM performance
		WHERE scope = ? AND restricted = ? AND currency = ? AND start_date = ? AND end_date = ?`,
		k.Scope, k.Restricted.String(), k.Currency, dateArg(k.Range.From), dateArg(k.Range.To))
	rec, err := scanPerformance(row)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, false, nil
	}
	if err != nil {
		return rec, false, fmt.Errorf("failed to read performance: %w", err)
	}
	return rec, true, nil
}

// Records returns the stored records of a scope in chronological order.
func (s *Store) Records(ctx context.Context, scope string, restricted folio.RestrictedFilter, currency string) ([]folio.PerformanceRecord, error) {
	var recs []folio.PerformanceRecord
	err := s.each(ctx, `SELECT `+performanceColumns+` FROM performance
		WHERE scope = ? AND restricted = ? AND currency = ? ORDER BY start_date, end_date`,
		func(rows *sql.Rows) error {
			rec, err := scanPerformance(rows)
			if err != nil {
				return err
			}
			recs = append(recs, rec)
			return nil
		}, scope, restricted.String(), currency)
	if err != nil {
		return nil, fmt.Errorf("failed to read performance: %w", err)
	}
	return recs, nil
}

// EOPNAV returns the end of period NAV of the most recent record of scope ending on a day.
// It makes the Store a folio.PriorRecords.
func (s *Store) EOPNAV(scope folio.Scope, currency string, on date.Date) (decimal.Decimal, bool) {
	var eop decimal.Decimal
	err := s.db.QueryRowContext(context.Background(), `SELECT eop_nav FROM performance
		WHERE scope = ? AND restricted = ? AND currency = ? AND end_date = ?
		ORDER BY calculated_at DESC LIMIT 1`,
		scope.Name, scope.Restricted.String(), currency, dateArg(on)).Scan(&eop)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("cannot read the stored nav of %s on %s: %v", scope, on, err)
		}
		return decimal.Zero, false
	}
	return eop, true
}

var _ folio.PriorRecords = (*Store)(nil)

// UpdateOptions selects the records UpdateAnnualPerformance computes.
type UpdateOptions struct {
	On       date.Date // only years ending on or before On are computed
	Currency string
	Scopes   []folio.Scope // default is one scope per account
	Force    bool          // recompute years already stored
	Limit    int           // scopes computed in parallel, default 4
}

// UpdateAnnualPerformance computes and stores the performance of every full
// calendar year of each scope since its inception. Years are chained: a year
// starts from the stored end value of the previous one.
//
// A year that cannot be computed is reported as a *PeriodError in the joined
// error, and the following years are still computed.
func (s *Store) UpdateAnnualPerformance(ctx context.Context, a *folio.Analyzer, opts UpdateOptions) ([]folio.PerformanceRecord, error) {
	scopes := opts.Scopes
	if len(scopes) == 0 {
		for _, acc := range a.Book().Accounts() {
			scopes = append(scopes, folio.NewScope(acc.ID, acc.ID))
		}
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 4
	}

	var (
		mu      sync.Mutex
		updated []folio.PerformanceRecord
		failed  []error
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, scope := range scopes {
		g.Go(func() error {
			inception, ok := a.Book().Inception(scope)
			if !ok {
				return nil
			}
			for year := inception.Year(); ; year++ {
				window := date.Range{From: date.New(year, time.January, 1), To: date.New(year, time.December, 31)}
				if window.To.After(opts.On) {
					return nil
				}
				key := Key{Scope: scope.Name, Restricted: scope.Restricted, Currency: opts.Currency, Range: window}
				if !opts.Force {
					_, found, err := s.Performance(ctx, key)
					if err != nil {
						return err
					}
					if found {
						continue
					}
				}
				rec, err := a.CalculatePerformance(folio.PerformanceRequest{
					Start: window.From, End: window.To, Scope: scope, Currency: opts.Currency, Prior: s,
				})
				if err != nil {
					log.Printf("skipping %s over %s: %v", scope, window, err)
					mu.Lock()
					failed = append(failed, &PeriodError{Scope: scope.Name, Range: window, Err: err})
					mu.Unlock()
					continue
				}
				if err := s.SavePerformance(ctx, rec); err != nil {
					return err
				}
				mu.Lock()
				updated = append(updated, rec)
				mu.Unlock()
			}
		})
	}
	if err := g.Wait(); err != nil {
		return updated, err
	}
	return updated, errors.Join(failed...)
}
