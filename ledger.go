package folio

import (
	"cmp"
	"errors"
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"

	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

// PriceQuote is the closing price of a security on a day, in the security currency.
type PriceQuote struct {
	Security string
	Date     date.Date
	Price    decimal.Decimal
}

// FXQuote is the quote of a currency pair on a day.
type FXQuote struct {
	Pair  CurrencyPair
	Date  date.Date
	Quote decimal.Decimal
}

// Book is the set of records the analytics read: accounts, securities,
// transactions, FX transactions, price quotes and FX quotes.
//
// Transactions are always kept in canonical order (see compareTx). A Book must not
// be modified while an Analyzer computes on it; call Analyzer.Invalidate after
// any write.
type Book struct {
	accounts   map[string]Account
	securities map[string]Security
	groups     map[string][]string

	transactions []Transaction
	trades       map[string][]Transaction // quantity-bearing transactions by security
	fx           []FXTransaction

	prices   map[string]*date.History[decimal.Decimal]
	fxQuotes map[CurrencyPair]*date.History[decimal.Decimal]
}

// NewBook creates an empty book.
func NewBook() *Book {
	return &Book{
		accounts:   make(map[string]Account),
		securities: make(map[string]Security),
		groups:     make(map[string][]string),
		trades:     make(map[string][]Transaction),
		prices:     make(map[string]*date.History[decimal.Decimal]),
		fxQuotes:   make(map[CurrencyPair]*date.History[decimal.Decimal]),
	}
}

// AddAccount declares an account. Declaring an existing ID replaces it.
func (b *Book) AddAccount(a Account) error {
	if a.ID == "" {
		return errors.New("account without id")
	}
	if a.Name == "" {
		a.Name = a.ID
	}
	b.accounts[a.ID] = a
	return nil
}

// AddSecurity declares a security. Declaring an existing ID replaces it.
func (b *Book) AddSecurity(s Security) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if s.Name == "" {
		s.Name = s.ID
	}
	b.securities[s.ID] = s
	return nil
}

// AddGroup declares a named group of accounts.
func (b *Book) AddGroup(name string, accounts ...string) error {
	if name == "" || strings.EqualFold(name, AllScope) {
		return fmt.Errorf("invalid group name %q", name)
	}
	for _, id := range accounts {
		if _, ok := b.accounts[id]; !ok {
			return fmt.Errorf("group %q: %w %q", name, ErrUnknownAccount, id)
		}
	}
	ids := slices.Clone(accounts)
	slices.Sort(ids)
	b.groups[name] = slices.Compact(ids)
	return nil
}

// checkTransaction validates tx against the declarations of the book.
func (b *Book) checkTransaction(tx Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	if _, ok := b.accounts[tx.Account]; !ok {
		return fmt.Errorf("%w %q in %s on %s", ErrUnknownAccount, tx.Account, tx.Type, tx.Date)
	}
	if tx.Security == "" {
		return nil
	}
	sec, ok := b.securities[tx.Security]
	if !ok {
		return fmt.Errorf("%w %q in %s on %s", ErrUnknownSecurity, tx.Security, tx.Type, tx.Date)
	}
	if tx.IsTrade() && tx.Currency != sec.Currency {
		return fmt.Errorf("%w %s on %s: traded in %s but %s is quoted in %s", ErrInvalidTransaction, tx.Type, tx.Date, tx.Currency, sec.ID, sec.Currency)
	}
	return nil
}

// AddTransactions adds transactions in canonical order. Nothing is added if
// any transaction is invalid, and all the errors are returned.
func (b *Book) AddTransactions(txs ...Transaction) error {
	var errs []error
	for _, tx := range txs {
		if err := b.checkTransaction(tx); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	for _, tx := range txs {
		b.transactions = insertTx(b.transactions, tx)
		if tx.IsTrade() {
			b.trades[tx.Security] = insertTx(b.trades[tx.Security], tx)
		}
	}
	return nil
}

func insertTx(txs []Transaction, tx Transaction) []Transaction {
	i, _ := slices.BinarySearchFunc(txs, tx, compareTx)
	return slices.Insert(txs, i, tx)
}

// AddFXTransactions adds currency conversions in date order.
func (b *Book) AddFXTransactions(txs ...FXTransaction) error {
	var errs []error
	for _, tx := range txs {
		err := tx.Validate()
		if _, ok := b.accounts[tx.Account]; err == nil && !ok {
			err = fmt.Errorf("%w %q in fx on %s", ErrUnknownAccount, tx.Account, tx.Date)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	for _, tx := range txs {
		i, _ := slices.BinarySearchFunc(b.fx, tx, func(a, b FXTransaction) int {
			return cmp.Or(a.Date.Compare(b.Date), strings.Compare(a.ID, b.ID))
		})
		b.fx = slices.Insert(b.fx, i, tx)
	}
	return nil
}

// AddPrices records price quotes. A quote on an existing day replaces it.
func (b *Book) AddPrices(quotes ...PriceQuote) error {
	for _, q := range quotes {
		if _, ok := b.securities[q.Security]; !ok {
			return fmt.Errorf("price on %s: %w %q", q.Date, ErrUnknownSecurity, q.Security)
		}
		if !q.Price.IsPositive() {
			return fmt.Errorf("price of %s on %s must be positive, got %s", q.Security, q.Date, q.Price)
		}
		h, ok := b.prices[q.Security]
		if !ok {
			h = new(date.History[decimal.Decimal])
			b.prices[q.Security] = h
		}
		h.Append(q.Date, q.Price)
	}
	return nil
}

// AddFXQuotes records currency pair quotes. A quote on an existing day replaces it.
func (b *Book) AddFXQuotes(quotes ...FXQuote) error {
	for _, q := range quotes {
		if err := q.Pair.Validate(); err != nil {
			return err
		}
		if !q.Quote.IsPositive() {
			return fmt.Errorf("quote of %s on %s must be positive, got %s", q.Pair, q.Date, q.Quote)
		}
		h, ok := b.fxQuotes[q.Pair]
		if !ok {
			h = new(date.History[decimal.Decimal])
			b.fxQuotes[q.Pair] = h
		}
		h.Append(q.Date, q.Quote)
	}
	return nil
}

// Validate checks every record of the book again and reports all the problems.
func (b *Book) Validate() error {
	var errs []error
	for _, s := range b.Securities() {
		errs = append(errs, s.Validate())
	}
	for _, tx := range b.transactions {
		errs = append(errs, b.checkTransaction(tx))
	}
	for _, tx := range b.fx {
		errs = append(errs, tx.Validate())
	}
	return errors.Join(errs...)
}

// Account returns the account declared with this id.
func (b *Book) Account(id string) (Account, bool) {
	a, ok := b.accounts[id]
	return a, ok
}

// Security returns the security declared with this id.
func (b *Book) Security(id string) (Security, bool) {
	s, ok := b.securities[id]
	return s, ok
}

// Accounts returns all accounts sorted by ID.
func (b *Book) Accounts() []Account {
	return sortedValues(b.accounts)
}

// Securities returns all securities sorted by ID.
func (b *Book) Securities() []Security {
	return sortedValues(b.securities)
}

func sortedValues[V any](m map[string]V) []V {
	keys := slices.Sorted(maps.Keys(m))
	values := make([]V, 0, len(keys))
	for _, k := range keys {
		values = append(values, m[k])
	}
	return values
}

// Groups returns the sorted names of the declared account groups.
func (b *Book) Groups() []string { return slices.Sorted(maps.Keys(b.groups)) }

// Group returns the accounts of a group.
func (b *Book) Group(name string) ([]string, bool) {
	ids, ok := b.groups[name]
	return slices.Clone(ids), ok
}

// TxFilter selects transactions.
type TxFilter func(Transaction) bool

// InScope selects transactions on the accounts of the scope.
func InScope(s Scope) TxFilter { return func(tx Transaction) bool { return s.Contains(tx.Account) } }

// OfSecurity selects transactions on a security.
func OfSecurity(id string) TxFilter { return func(tx Transaction) bool { return tx.Security == id } }

// NoSecurity selects pure cash movements.
func NoSecurity() TxFilter { return func(tx Transaction) bool { return tx.Security == "" } }

// OfType selects transactions of any of the types.
func OfType(types ...TxType) TxFilter {
	return func(tx Transaction) bool { return slices.Contains(types, tx.Type) }
}

// Between selects transactions dated within r.
func Between(r date.Range) TxFilter { return func(tx Transaction) bool { return r.Contains(tx.Date) } }

// Until selects transactions dated on or before on.
func Until(on date.Date) TxFilter { return func(tx Transaction) bool { return !tx.Date.After(on) } }

// Transactions iterates in canonical order over transactions accepted by every filter.
func (b *Book) Transactions(filters ...TxFilter) iter.Seq[Transaction] {
	return filtered(b.transactions, filters)
}

// Trades iterates in canonical order over the quantity-bearing transactions of a
// security accepted by every filter.
func (b *Book) Trades(security string, filters ...TxFilter) iter.Seq[Transaction] {
	return filtered(b.trades[security], filters)
}

func filtered(txs []Transaction, filters []TxFilter) iter.Seq[Transaction] {
	return func(yield func(Transaction) bool) {
	next:
		for _, tx := range txs {
			for _, accept := range filters {
				if !accept(tx) {
					continue next
				}
			}
			if !yield(tx) {
				return
			}
		}
	}
}

// FXTransactions iterates in date order over the conversions on the accounts of s
// dated on or before on.
func (b *Book) FXTransactions(s Scope, on date.Date) iter.Seq[FXTransaction] {
	return func(yield func(FXTransaction) bool) {
		for _, tx := range b.fx {
			if tx.Date.After(on) {
				return
			}
			if s.Contains(tx.Account) && !yield(tx) {
				return
			}
		}
	}
}

// Prices returns the quote history of a security, or nil.
func (b *Book) Prices(security string) *date.History[decimal.Decimal] { return b.prices[security] }

// FXQuotes returns the quote history of a pair, or nil.
func (b *Book) FXQuotes(pair CurrencyPair) *date.History[decimal.Decimal] { return b.fxQuotes[pair] }

// Pairs returns the quoted currency pairs in lexical order.
func (b *Book) Pairs() []CurrencyPair { return slices.Sorted(maps.Keys(b.fxQuotes)) }

// Inception returns the date of the first transaction on the accounts of s.
func (b *Book) Inception(s Scope) (date.Date, bool) {
	var first date.Date
	for tx := range b.Transactions(InScope(s)) {
		first = tx.Date
		break
	}
	for tx := range b.FXTransactions(s, date.New(9999, 12, 31)) {
		if first.IsZero() || tx.Date.Before(first) {
			first = tx.Date
		}
		break
	}
	return first, !first.IsZero()
}

// HeldSecurities returns the securities ever traded on the accounts of s up to on,
// sorted by ID.
func (b *Book) HeldSecurities(s Scope, on date.Date) []string {
	var ids []string
	for id, txs := range b.trades {
		for _, tx := range txs {
			if tx.Date.After(on) {
				break
			}
			if s.Contains(tx.Account) {
				ids = append(ids, id)
				break
			}
		}
	}
	slices.Sort(ids)
	return ids
}
