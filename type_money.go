package folio

import (
	"encoding/json"
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Rounding points of the analytics.
const (
	MoneyPlaces = 2 // monetary amounts
	PricePlaces = 6 // prices, quantities and fx factors
	RatePlaces  = 4 // returns
)

// Money is an exact decimal amount in a given currency.
type Money struct {
	value decimal.Decimal
	cur   string
}

// M creates a new Money.
func M(value decimal.Decimal, currency string) Money { return Money{value: value, cur: currency} }

// Zero returns a zero amount in currency.
func Zero(currency string) Money { return Money{cur: currency} }

// ValidCurrency reports an error if code is not an ISO 4217 currency known to go-money.
func ValidCurrency(code string) error {
	if len(code) != 3 || money.GetCurrency(code) == nil {
		return fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}
	return nil
}

func (m Money) Amount() decimal.Decimal { return m.value }
func (m Money) Currency() string        { return m.cur }
func (m Money) IsZero() bool            { return m.value.IsZero() }
func (m Money) IsNegative() bool        { return m.value.IsNegative() }
func (m Money) Neg() Money              { return Money{value: m.value.Neg(), cur: m.cur} }
func (m Money) Equal(n Money) bool      { return m.value.Equal(n.value) && m.cur == n.cur }

// Round rounds half away from zero to the given number of decimal places.
func (m Money) Round(places int32) Money { return Money{value: m.value.Round(places), cur: m.cur} }

// Add returns m+n. Both amounts must share the currency, "" being compatible with any.
func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: cur(m, n)} }

// Sub returns m-n.
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value), cur: cur(m, n)} }

// cur returns the currency shared by A and B. A zero currency is a weak one that
// takes the other. Mixing currencies is a programming error.
func cur(A, B Money) string {
	switch {
	case A.cur == B.cur || B.cur == "":
		return A.cur
	case A.cur == "":
		return B.cur
	default:
		panic(fmt.Sprintf("currency mismatch: %s vs %s", A.cur, B.cur))
	}
}

// String formats the amount with the currency symbol and grouping rules of go-money.
func (m Money) String() string {
	c := money.GetCurrency(m.cur)
	if c == nil {
		return m.value.StringFixed(MoneyPlaces)
	}
	minor := m.value.Shift(int32(c.Fraction)).Round(0)
	return c.Formatter().Format(minor.IntPart())
}

// SignedString is like String with an explicit "+" for positive amounts.
func (m Money) SignedString() string {
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

// MarshalJSON writes {"amount": 12.34, "currency": "EUR"} with the amount rounded
// to the currency fraction.
func (m Money) MarshalJSON() ([]byte, error) {
	places := int32(MoneyPlaces)
	if c := money.GetCurrency(m.cur); c != nil {
		places = int32(c.Fraction)
	}
	return json.Marshal(struct {
		Amount   decimal.Decimal `json:"amount"`
		Currency string          `json:"currency"`
	}{m.value.Round(places), m.cur})
}

// round2 is the boundary rounding for every monetary output.
func round2(d decimal.Decimal) decimal.Decimal { return d.Round(MoneyPlaces) }

// round6 is the rounding for prices, quantities and fx factors.
func round6(d decimal.Decimal) decimal.Decimal { return d.Round(PricePlaces) }
