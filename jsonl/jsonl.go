// Package jsonl reads and writes a folio.Book as JSON lines.
//
// Each line is an object with a "kind" field: account, security, group, tx, fx,
// price or fxquote. Lines can appear in any order, declarations are applied
// before the records referencing them.
package jsonl

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Kind of a line.
const (
	KindAccount  = "account"
	KindSecurity = "security"
	KindGroup    = "group"
	KindTx       = "tx"
	KindFX       = "fx"
	KindPrice    = "price"
	KindFXQuote  = "fxquote"
)

type accountLine struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Country    string `json:"country"`
	Restricted bool   `json:"restricted"`
}

type securityLine struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ISIN       string `json:"isin"`
	Type       string `json:"type"`
	Currency   string `json:"currency"`
	Exposure   string `json:"exposure"`
	Restricted bool   `json:"restricted"`
}

type groupLine struct {
	Name     string   `json:"name"`
	Accounts []string `json:"accounts"`
}

type txLine struct {
	ID         string              `json:"id"`
	Date       date.Date           `json:"date"`
	Type       string              `json:"type"`
	Account    string              `json:"account"`
	Security   string              `json:"security"`
	Currency   string              `json:"currency"`
	Quantity   decimal.NullDecimal `json:"quantity"`
	Price      decimal.NullDecimal `json:"price"`
	CashFlow   decimal.NullDecimal `json:"cashflow"`
	Commission decimal.NullDecimal `json:"commission"`
	Memo       string              `json:"memo"`
}

// transaction normalizes the signs of the amounts that are always debits.
func (l txLine) transaction() (folio.Transaction, error) {
	typ, err := folio.ParseTxType(l.Type)
	if err != nil {
		return folio.Transaction{}, err
	}
	tx := folio.Transaction{
		ID:       l.ID,
		Date:     l.Date,
		Type:     typ,
		Account:  l.Account,
		Security: l.Security,
		Currency: l.Currency,
		Quantity: l.Quantity,
		Price:    l.Price,
		CashFlow: l.CashFlow,
		Memo:     l.Memo,
	}
	if l.Commission.Valid {
		tx = tx.WithCommission(l.Commission.Decimal)
	}
	switch typ {
	case folio.CashOut, folio.Tax, folio.Commission:
		if tx.CashFlow.Valid {
			tx.CashFlow.Decimal = tx.CashFlow.Decimal.Abs().Neg()
		}
	}
	return tx, nil
}

type fxLine struct {
	ID         string          `json:"id"`
	Date       date.Date       `json:"date"`
	Account    string          `json:"account"`
	From       string          `json:"from"`
	FromAmount decimal.Decimal `json:"fromAmount"`
	To         string          `json:"to"`
	ToAmount   decimal.Decimal `json:"toAmount"`
	Commission decimal.Decimal `json:"commission"`
}

type priceLine struct {
	Security string          `json:"security"`
	Date     date.Date       `json:"date"`
	Price    decimal.Decimal `json:"price"`
}

type fxQuoteLine struct {
	Pair  string          `json:"pair"`
	Date  date.Date       `json:"date"`
	Quote decimal.Decimal `json:"quote"`
}

// records collects decoded lines by kind.
type records struct {
	accounts   []folio.Account
	securities []folio.Security
	groups     []groupLine
	txs        []folio.Transaction
	fx         []folio.FXTransaction
	prices     []folio.PriceQuote
	quotes     []folio.FXQuote
}

func (r *records) decode(line []byte) error {
	var identifier struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(line, &identifier); err != nil {
		return fmt.Errorf("could not identify kind: %w", err)
	}

	switch identifier.Kind {
	case KindAccount:
		var l accountLine
		if err := json.Unmarshal(line, &l); err != nil {
			return err
		}
		r.accounts = append(r.accounts, folio.Account(l))
	case KindSecurity:
		var l securityLine
		if err := json.Unmarshal(line, &l); err != nil {
			return err
		}
		r.securities = append(r.securities, folio.Security{
			ID: l.ID, Name: l.Name, ISIN: l.ISIN, Type: folio.AssetType(l.Type),
			Currency: l.Currency, Exposure: folio.Exposure(l.Exposure), Restricted: l.Restricted,
		})
	case KindGroup:
		var l groupLine
		if err := json.Unmarshal(line, &l); err != nil {
			return err
		}
		r.groups = append(r.groups, l)
	case KindTx:
		var l txLine
		if err := json.Unmarshal(line, &l); err != nil {
			return err
		}
		tx, err := l.transaction()
		if err != nil {
			return err
		}
		r.txs = append(r.txs, tx)
	case KindFX:
		var l fxLine
		if err := json.Unmarshal(line, &l); err != nil {
			return err
		}
		r.fx = append(r.fx, folio.FXTransaction{
			ID: l.ID, Date: l.Date, Account: l.Account, From: l.From, To: l.To,
			FromAmount: l.FromAmount, ToAmount: l.ToAmount, Commission: l.Commission,
		})
	case KindPrice:
		var l priceLine
		if err := json.Unmarshal(line, &l); err != nil {
			return err
		}
		r.prices = append(r.prices, folio.PriceQuote(l))
	case KindFXQuote:
		var l fxQuoteLine
		if err := json.Unmarshal(line, &l); err != nil {
			return err
		}
		r.quotes = append(r.quotes, folio.FXQuote{Pair: folio.CurrencyPair(l.Pair), Date: l.Date, Quote: l.Quote})
	default:
		return fmt.Errorf("unknown kind %q", identifier.Kind)
	}
	return nil
}

// Decode reads JSON lines from r into b.
// Transactions are added all at once, so an invalid one leaves b without any.
func Decode(r io.Reader, b *folio.Book) error {
	var recs records
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for scanner.Scan() {
		n++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := recs.decode(line); err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading from input: %w", err)
	}

	var errs []error
	for _, a := range recs.accounts {
		errs = append(errs, b.AddAccount(a))
	}
	for _, s := range recs.securities {
		errs = append(errs, b.AddSecurity(s))
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	for _, g := range recs.groups {
		if err := b.AddGroup(g.Name, g.Accounts...); err != nil {
			return err
		}
	}
	if err := b.AddTransactions(recs.txs...); err != nil {
		return err
	}
	if err := b.AddFXTransactions(recs.fx...); err != nil {
		return err
	}
	if err := b.AddPrices(recs.prices...); err != nil {
		return err
	}
	return b.AddFXQuotes(recs.quotes...)
}

// DecodeBook decodes a new Book from r.
func DecodeBook(r io.Reader) (*folio.Book, error) {
	b := folio.NewBook()
	if err := Decode(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

func writeLine(w io.Writer, o *objectWriter) error {
	data, err := o.MarshalJSON()
	if err != nil {
		return err
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write line: %w", err)
	}
	return nil
}

// EncodeTransaction writes a single transaction as a JSON line.
func EncodeTransaction(w io.Writer, tx folio.Transaction) error {
	o := new(objectWriter).
		Append("kind", KindTx).
		Optional("id", tx.ID).
		Append("date", tx.Date).
		Append("type", tx.Type).
		Append("account", tx.Account).
		Optional("security", tx.Security).
		Append("currency", tx.Currency).
		Decimal("quantity", tx.Quantity).
		Decimal("price", tx.Price).
		Decimal("cashflow", tx.CashFlow).
		Decimal("commission", tx.Commission).
		Optional("memo", tx.Memo)
	return writeLine(w, o)
}

// EncodeBook writes every record of b in a canonical order: declarations,
// transactions, then quotes by security or pair and date.
func EncodeBook(w io.Writer, b *folio.Book) error {
	for _, a := range b.Accounts() {
		o := new(objectWriter).
			Append("kind", KindAccount).
			Append("id", a.ID).
			Optional("name", a.Name).
			Optional("country", a.Country).
			Optional("restricted", a.Restricted)
		if err := writeLine(w, o); err != nil {
			return err
		}
	}
	for _, s := range b.Securities() {
		o := new(objectWriter).
			Append("kind", KindSecurity).
			Append("id", s.ID).
			Optional("name", s.Name).
			Optional("isin", s.ISIN).
			Optional("type", s.Type).
			Append("currency", s.Currency).
			Optional("exposure", s.Exposure).
			Optional("restricted", s.Restricted)
		if err := writeLine(w, o); err != nil {
			return err
		}
	}
	for _, name := range b.Groups() {
		accounts, _ := b.Group(name)
		o := new(objectWriter).
			Append("kind", KindGroup).
			Append("name", name).
			Append("accounts", accounts)
		if err := writeLine(w, o); err != nil {
			return err
		}
	}
	for tx := range b.Transactions() {
		if err := EncodeTransaction(w, tx); err != nil {
			return err
		}
	}
	all, err := b.Scope(folio.AllScope, folio.AnyAccount)
	if err != nil {
		return err
	}
	for tx := range b.FXTransactions(all, date.New(9999, 12, 31)) {
		o := new(objectWriter).
			Append("kind", KindFX).
			Optional("id", tx.ID).
			Append("date", tx.Date).
			Append("account", tx.Account).
			Append("from", tx.From).
			Append("fromAmount", tx.FromAmount).
			Append("to", tx.To).
			Append("toAmount", tx.ToAmount)
		if !tx.Commission.IsZero() {
			o.Append("commission", tx.Commission)
		}
		if err := writeLine(w, o); err != nil {
			return err
		}
	}
	for _, s := range b.Securities() {
		for day, px := range b.Prices(s.ID).Values() {
			o := new(objectWriter).
				Append("kind", KindPrice).
				Append("security", s.ID).
				Append("date", day).
				Append("price", px)
			if err := writeLine(w, o); err != nil {
				return err
			}
		}
	}
	for _, pair := range b.Pairs() {
		for day, q := range b.FXQuotes(pair).Values() {
			o := new(objectWriter).
				Append("kind", KindFXQuote).
				Append("pair", pair).
				Append("date", day).
				Append("quote", q)
			if err := writeLine(w, o); err != nil {
				return err
			}
		}
	}
	return nil
}
