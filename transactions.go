package folio

import (
	"errors"
	"fmt"
	"strings"

	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

// TxType is the kind of a Transaction.
type TxType string

// Transaction types. The values are the labels used in persisted files.
const (
	Buy        TxType = "Buy"
	Sell       TxType = "Sell"
	CashIn     TxType = "Cash in"
	CashOut    TxType = "Cash out"
	Dividend   TxType = "Dividend"
	Commission TxType = "Broker commission"
	Tax        TxType = "Tax"
	Interest   TxType = "Interest income"
)

var txTypes = []TxType{Buy, Sell, CashIn, CashOut, Dividend, Commission, Tax, Interest}

// ParseTxType parses a transaction type label. It is case insensitive and also
// accepts the short forms "cash-in", "cash-out", "commission" and "interest".
func ParseTxType(s string) (TxType, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	switch norm {
	case "cash-in", "deposit":
		return CashIn, nil
	case "cash-out", "withdraw":
		return CashOut, nil
	case "commission", "fee":
		return Commission, nil
	case "interest":
		return Interest, nil
	}
	for _, t := range txTypes {
		if strings.ToLower(string(t)) == norm {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown transaction type %q", s)
}

// Transaction is a single movement recorded on an account.
//
// Quantity is signed: positive increases a long position or covers a short one,
// negative reduces a long position or opens a short one. Commission, CashOut
// and Tax amounts are stored negative. Optional fields are null decimals.
type Transaction struct {
	ID         string
	Date       date.Date
	Type       TxType
	Account    string
	Security   string // empty for pure cash movements
	Currency   string
	Quantity   decimal.NullDecimal
	Price      decimal.NullDecimal
	CashFlow   decimal.NullDecimal
	Commission decimal.NullDecimal
	Memo       string
}

func some(d decimal.Decimal) decimal.NullDecimal { return decimal.NewNullDecimal(d) }

// NewTrade creates a Buy (positive quantity) or a Sell (negative quantity).
func NewTrade(on date.Date, account, security string, quantity, price decimal.Decimal, currency string) Transaction {
	typ := Buy
	if quantity.IsNegative() {
		typ = Sell
	}
	return Transaction{Date: on, Type: typ, Account: account, Security: security, Currency: currency,
		Quantity: some(quantity), Price: some(price)}
}

// NewCashIn creates a deposit of amount on the account.
func NewCashIn(on date.Date, account string, amount decimal.Decimal, currency string) Transaction {
	return Transaction{Date: on, Type: CashIn, Account: account, Currency: currency, CashFlow: some(amount.Abs())}
}

// NewCashOut creates a withdrawal of amount from the account.
func NewCashOut(on date.Date, account string, amount decimal.Decimal, currency string) Transaction {
	return Transaction{Date: on, Type: CashOut, Account: account, Currency: currency, CashFlow: some(amount.Abs().Neg())}
}

// NewDividend creates a capital distribution paid by security.
func NewDividend(on date.Date, account, security string, amount decimal.Decimal, currency string) Transaction {
	return Transaction{Date: on, Type: Dividend, Account: account, Security: security, Currency: currency, CashFlow: some(amount)}
}

// NewInterest creates an interest income on the account cash.
func NewInterest(on date.Date, account string, amount decimal.Decimal, currency string) Transaction {
	return Transaction{Date: on, Type: Interest, Account: account, Currency: currency, CashFlow: some(amount)}
}

// NewTax creates a tax paid from the account.
func NewTax(on date.Date, account string, amount decimal.Decimal, currency string) Transaction {
	return Transaction{Date: on, Type: Tax, Account: account, Currency: currency, CashFlow: some(amount.Abs().Neg())}
}

// NewFee creates a broker commission not attached to a trade.
func NewFee(on date.Date, account string, amount decimal.Decimal, currency string) Transaction {
	return Transaction{Date: on, Type: Commission, Account: account, Currency: currency, CashFlow: some(amount.Abs().Neg())}
}

// WithCommission returns a copy of t charged with a commission.
func (t Transaction) WithCommission(amount decimal.Decimal) Transaction {
	t.Commission = some(amount.Abs().Neg())
	return t
}

// WithID returns a copy of t with the given id.
func (t Transaction) WithID(id string) Transaction {
	t.ID = id
	return t
}

// IsTrade reports whether t changes a position.
func (t Transaction) IsTrade() bool { return t.Quantity.Valid }

func (t Transaction) quantity() decimal.Decimal   { return t.Quantity.Decimal }
func (t Transaction) price() decimal.Decimal      { return t.Price.Decimal }
func (t Transaction) cashFlow() decimal.Decimal   { return t.CashFlow.Decimal }
func (t Transaction) commission() decimal.Decimal { return t.Commission.Decimal }

// CashImpact is the change of the account balance, in the transaction currency.
func (t Transaction) CashImpact() decimal.Decimal {
	return t.cashFlow().Add(t.commission()).Sub(t.price().Mul(t.quantity()))
}

// Validate checks the internal consistency of t. It does not check that the
// account or security exist, the Ledger does.
func (t Transaction) Validate() error {
	var errs []error
	if t.Date.IsZero() {
		errs = append(errs, errors.New("missing date"))
	}
	if t.Account == "" {
		errs = append(errs, errors.New("missing account"))
	}
	if err := ValidCurrency(t.Currency); err != nil {
		errs = append(errs, err)
	}
	switch t.Type {
	case Buy, Sell:
		switch {
		case !t.Quantity.Valid || t.quantity().IsZero():
			errs = append(errs, errors.New("trade without quantity"))
		case t.Type == Buy && t.quantity().IsNegative():
			errs = append(errs, errors.New("buy with a negative quantity"))
		case t.Type == Sell && t.quantity().IsPositive():
			errs = append(errs, errors.New("sell with a positive quantity"))
		}
	case CashIn, CashOut, Dividend, Interest, Tax, Commission:
		if !t.CashFlow.Valid {
			errs = append(errs, fmt.Errorf("%s without cash flow", t.Type))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown type %q", t.Type))
	}
	if t.Quantity.Valid {
		if t.Security == "" {
			errs = append(errs, errors.New("quantity without security"))
		}
		if !t.Price.Valid {
			errs = append(errs, errors.New("quantity without price"))
		}
	}
	if t.Type == Dividend && t.Security == "" {
		errs = append(errs, errors.New("dividend without security"))
	}
	if t.Type == CashIn && t.cashFlow().IsNegative() {
		errs = append(errs, errors.New("negative cash in"))
	}
	if t.Type == CashOut && t.cashFlow().IsPositive() {
		errs = append(errs, errors.New("positive cash out"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w %s %s on %s: %w", ErrInvalidTransaction, t.Type, t.ID, t.Date, errors.Join(errs...))
	}
	return nil
}

// compareTx is the canonical order of transactions: by date, then quantity
// descending, then price, then id. Replays do not depend on the input order of
// same-day transactions.
func compareTx(a, b Transaction) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	if c := b.quantity().Cmp(a.quantity()); c != 0 {
		return c
	}
	if c := a.price().Cmp(b.price()); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

// FXTransaction converts cash between two currencies within an account.
// Commission is a positive amount debited in the From currency.
type FXTransaction struct {
	ID         string
	Date       date.Date
	Account    string
	From, To   string
	FromAmount decimal.Decimal
	ToAmount   decimal.Decimal
	Commission decimal.Decimal
}

// Validate checks the internal consistency of t.
func (t FXTransaction) Validate() error {
	var errs []error
	if t.Date.IsZero() {
		errs = append(errs, errors.New("missing date"))
	}
	if t.Account == "" {
		errs = append(errs, errors.New("missing account"))
	}
	if err := ValidCurrency(t.From); err != nil {
		errs = append(errs, err)
	}
	if err := ValidCurrency(t.To); err != nil {
		errs = append(errs, err)
	}
	if t.From == t.To {
		errs = append(errs, errors.New("same currency on both legs"))
	}
	if !t.FromAmount.IsPositive() || !t.ToAmount.IsPositive() {
		errs = append(errs, errors.New("amounts must be positive"))
	}
	if t.Commission.IsNegative() {
		errs = append(errs, errors.New("negative commission"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w fx %s on %s: %w", ErrInvalidTransaction, t.ID, t.Date, errors.Join(errs...))
	}
	return nil
}

// impact returns the balance change of t for currency cur.
func (t FXTransaction) impact(cur string) decimal.Decimal {
	switch cur {
	case t.From:
		return t.FromAmount.Add(t.Commission).Neg()
	case t.To:
		return t.ToAmount
	}
	return decimal.Zero
}
