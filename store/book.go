package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// txNamespace seeds the ids of imported records that come without one.
var txNamespace = uuid.MustParse("6f1d2c39-4c8e-4b0e-9d3a-2f4b7d9e1a55")

// contentID derives a stable id from the content of a record, so that importing
// the same file twice does not duplicate it. seen counts identical records.
func contentID(seen map[string]int, content string) string {
	n := seen[content]
	seen[content] = n + 1
	return uuid.NewSHA1(txNamespace, fmt.Appendf(nil, "%s#%d", content, n)).String()
}

func txContent(tx folio.Transaction) string {
	return fmt.Sprintf("tx|%s|%s|%s|%s|%s|%s|%s|%s|%s|%s", tx.Date, tx.Type, tx.Account, tx.Security, tx.Currency,
		tx.Quantity.Decimal, tx.Price.Decimal, tx.CashFlow.Decimal, tx.Commission.Decimal, tx.Memo)
}

func fxContent(tx folio.FXTransaction) string {
	return fmt.Sprintf("fx|%s|%s|%s|%s|%s|%s|%s", tx.Date, tx.Account, tx.From, tx.FromAmount, tx.To, tx.ToAmount, tx.Commission)
}

func nullString(s string) sql.NullString { return sql.NullString{String: s, Valid: s != ""} }

// Import upserts every record of b. Records without id get one derived from
// their content. It is all or nothing.
func (s *Store) Import(ctx context.Context, b *folio.Book) error {
	return s.inTx(ctx, func(q querier) error {
		for _, a := range b.Accounts() {
			_, err := q.ExecContext(ctx, `
				INSERT INTO account (id, name, country, restricted) VALUES (?, ?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET name = excluded.name, country = excluded.country, restricted = excluded.restricted`,
				a.ID, a.Name, a.Country, a.Restricted)
			if err != nil {
				return fmt.Errorf("failed to insert account %q: %w", a.ID, err)
			}
		}
		for _, sec := range b.Securities() {
			_, err := q.ExecContext(ctx, `
				INSERT INTO security (id, name, isin, type, currency, exposure, restricted) VALUES (?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET name = excluded.name, isin = excluded.isin, type = excluded.type,
					currency = excluded.currency, exposure = excluded.exposure, restricted = excluded.restricted`,
				sec.ID, sec.Name, sec.ISIN, sec.Type, sec.Currency, sec.Exposure, sec.Restricted)
			if err != nil {
				return fmt.Errorf("failed to insert security %q: %w", sec.ID, err)
			}
		}
		for _, name := range b.Groups() {
			if _, err := q.ExecContext(ctx, `DELETE FROM account_group WHERE name = ?`, name); err != nil {
				return fmt.Errorf("failed to reset group %q: %w", name, err)
			}
			accounts, _ := b.Group(name)
			for _, id := range accounts {
				if _, err := q.ExecContext(ctx, `INSERT INTO account_group (name, account_id) VALUES (?, ?)`, name, id); err != nil {
					return fmt.Errorf("failed to insert group %q: %w", name, err)
				}
			}
		}

		seen := make(map[string]int)
		for tx := range b.Transactions() {
			id := tx.ID
			if id == "" {
				id = contentID(seen, txContent(tx))
			}
			_, err := q.ExecContext(ctx, `
				INSERT INTO "transaction" (id, date, type, account_id, security_id, currency, quantity, price, cash_flow, commission, memo)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET date = excluded.date, type = excluded.type, account_id = excluded.account_id,
					security_id = excluded.security_id, currency = excluded.currency, quantity = excluded.quantity,
					price = excluded.price, cash_flow = excluded.cash_flow, commission = excluded.commission, memo = excluded.memo`,
				id, dateArg(tx.Date), tx.Type, tx.Account, nullString(tx.Security), tx.Currency,
				tx.Quantity, tx.Price, tx.CashFlow, tx.Commission, tx.Memo)
			if err != nil {
				return fmt.Errorf("failed to insert transaction %s on %s: %w", tx.Type, tx.Date, err)
			}
		}

		all, err := b.Scope(folio.AllScope, folio.AnyAccount)
		if err != nil {
			return err
		}
		for tx := range b.FXTransactions(all, date.New(9999, 12, 31)) {
			id := tx.ID
			if id == "" {
				id = contentID(seen, fxContent(tx))
			}
			_, err := q.ExecContext(ctx, `
				INSERT INTO fx_transaction (id, date, account_id, from_currency, from_amount, to_currency, to_amount, commission)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET date = excluded.date, account_id = excluded.account_id,
					from_currency = excluded.from_currency, from_amount = excluded.from_amount,
					to_currency = excluded.to_currency, to_amount = excluded.to_amount, commission = excluded.commission`,
				id, dateArg(tx.Date), tx.Account, tx.From, tx.FromAmount, tx.To, tx.ToAmount, tx.Commission)
			if err != nil {
				return fmt.Errorf("failed to insert fx transaction on %s: %w", tx.Date, err)
			}
		}

		for _, sec := range b.Securities() {
			for day, px := range b.Prices(sec.ID).Values() {
				if err := upsertQuote(ctx, q, `price`, `security_id`, `price`, sec.ID, day, px); err != nil {
					return err
				}
			}
		}
		for _, pair := range b.Pairs() {
			for day, v := range b.FXQuotes(pair).Values() {
				if err := upsertQuote(ctx, q, `fx_quote`, `pair`, `quote`, string(pair), day, v); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func upsertQuote(ctx context.Context, q querier, table, key, value, id string, day date.Date, v decimal.Decimal) error {
	query := fmt.Sprintf(`INSERT INTO %[1]s (%[2]s, date, %[3]s) VALUES (?, ?, ?)
		ON CONFLICT(%[2]s, date) DO UPDATE SET %[3]s = excluded.%[3]s`, table, key, value)
	if _, err := q.ExecContext(ctx, query, id, dateArg(day), v); err != nil {
		return fmt.Errorf("failed to insert %s of %s on %s: %w", table, id, day, err)
	}
	return nil
}

// LoadBook reads the whole book.
func (s *Store) LoadBook(ctx context.Context) (*folio.Book, error) {
	b := folio.NewBook()

	err := s.each(ctx, `SELECT id, name, country, restricted FROM account ORDER BY id`, func(rows *sql.Rows) error {
		var a folio.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Country, &a.Restricted); err != nil {
			return err
		}
		return b.AddAccount(a)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	err = s.each(ctx, `SELECT id, name, isin, type, currency, exposure, restricted FROM security ORDER BY id`, func(rows *sql.Rows) error {
		var sec folio.Security
		if err := rows.Scan(&sec.ID, &sec.Name, &sec.ISIN, &sec.Type, &sec.Currency, &sec.Exposure, &sec.Restricted); err != nil {
			return err
		}
		return b.AddSecurity(sec)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load securities: %w", err)
	}

	groups := make(map[string][]string)
	var names []string
	err = s.each(ctx, `SELECT name, account_id FROM account_group ORDER BY name, account_id`, func(rows *sql.Rows) error {
		var name, id string
		if err := rows.Scan(&name, &id); err != nil {
			return err
		}
		if _, ok := groups[name]; !ok {
			names = append(names, name)
		}
		groups[name] = append(groups[name], id)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load groups: %w", err)
	}
	for _, name := range names {
		if err := b.AddGroup(name, groups[name]...); err != nil {
			return nil, err
		}
	}

	var txs []folio.Transaction
	err = s.each(ctx, `
		SELECT id, date, type, account_id, security_id, currency, quantity, price, cash_flow, commission, memo
		FROM "transaction" ORDER BY date, id`, func(rows *sql.Rows) error {
		var tx folio.Transaction
		var day string
		var security sql.NullString
		if err := rows.Scan(&tx.ID, &day, &tx.Type, &tx.Account, &security, &tx.Currency,
			&tx.Quantity, &tx.Price, &tx.CashFlow, &tx.Commission, &tx.Memo); err != nil {
			return err
		}
		var err error
		if tx.Date, err = scanDate(day); err != nil {
			return err
		}
		tx.Security = security.String
		txs = append(txs, tx)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	if err := b.AddTransactions(txs...); err != nil {
		return nil, err
	}

	var fx []folio.FXTransaction
	err = s.each(ctx, `
		SELECT id, date, account_id, from_currency, from_amount, to_currency, to_amount, commission
		FROM fx_transaction ORDER BY date, id`, func(rows *sql.Rows) error {
		var tx folio.FXTransaction
		var day string
		if err := rows.Scan(&tx.ID, &day, &tx.Account, &tx.From, &tx.FromAmount, &tx.To, &tx.ToAmount, &tx.Commission); err != nil {
			return err
		}
		var err error
		if tx.Date, err = scanDate(day); err != nil {
			return err
		}
		fx = append(fx, tx)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load fx transactions: %w", err)
	}
	if err := b.AddFXTransactions(fx...); err != nil {
		return nil, err
	}

	err = s.each(ctx, `SELECT security_id, date, price FROM price ORDER BY security_id, date`, func(rows *sql.Rows) error {
		var q folio.PriceQuote
		var day string
		if err := rows.Scan(&q.Security, &day, &q.Price); err != nil {
			return err
		}
		var err error
		if q.Date, err = scanDate(day); err != nil {
			return err
		}
		return b.AddPrices(q)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load prices: %w", err)
	}

	err = s.each(ctx, `SELECT pair, date, quote FROM fx_quote ORDER BY pair, date`, func(rows *sql.Rows) error {
		var q folio.FXQuote
		var day string
		if err := rows.Scan(&q.Pair, &day, &q.Quote); err != nil {
			return err
		}
		var err error
		if q.Date, err = scanDate(day); err != nil {
			return err
		}
		return b.AddFXQuotes(q)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load fx quotes: %w", err)
	}
	return b, nil
}

// each calls f on every row of the query.
func (s *Store) each(ctx context.Context, query string, f func(*sql.Rows) error, args ...any) error {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := f(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
