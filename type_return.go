package folio

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// ReturnStatus tells whether a Return carries a rate.
type ReturnStatus int

const (
	// ReturnOK is a computed rate.
	ReturnOK ReturnStatus = iota
	// NotRelevant is reported for short positions and degenerate rates.
	NotRelevant
	// NotAvailable is reported when the rate could not be computed.
	NotAvailable
)

func (s ReturnStatus) String() string {
	switch s {
	case NotRelevant:
		return "N/R"
	case NotAvailable:
		return "N/A"
	default:
		return "OK"
	}
}

// Return is an annualized rate such as a money weighted return. 0.1 is 10%.
type Return struct {
	Rate   decimal.Decimal
	Status ReturnStatus
}

// Rate creates a computed Return.
func Rate(r decimal.Decimal) Return { return Return{Rate: r} }

var (
	notRelevant  = Return{Status: NotRelevant}
	notAvailable = Return{Status: NotAvailable}
)

// OK reports whether r carries a rate.
func (r Return) OK() bool { return r.Status == ReturnOK }

// Equal compares two returns at the precision of rates.
func (r Return) Equal(s Return) bool {
	return r.Status == s.Status && r.Rate.Round(RatePlaces).Equal(s.Rate.Round(RatePlaces))
}

// String formats the rate as a percentage with two decimals, or the status.
func (r Return) String() string {
	if !r.OK() {
		return r.Status.String()
	}
	return r.Rate.Shift(2).StringFixed(2) + "%"
}

// SignedString is like String with an explicit sign, and "-" for zero.
func (r Return) SignedString() string {
	if !r.OK() {
		return r.Status.String()
	}
	s := r.String()
	switch {
	case r.Rate.Shift(2).Round(2).IsZero():
		return "-"
	case r.Rate.IsPositive():
		return "+" + s
	}
	return s
}

// MarshalJSON writes the rate as a number, or the status as a string.
func (r Return) MarshalJSON() ([]byte, error) {
	if !r.OK() {
		return json.Marshal(r.Status.String())
	}
	return json.Marshal(json.Number(r.Rate.Round(RatePlaces).String()))
}

// ParseReturn reads a rate, "N/R" or "N/A" as written by Return.MarshalJSON.
func ParseReturn(s string) (Return, error) {
	switch s {
	case NotRelevant.String():
		return notRelevant, nil
	case NotAvailable.String():
		return notAvailable, nil
	}
	r, err := decimal.NewFromString(s)
	if err != nil {
		return Return{}, fmt.Errorf("invalid return %q: %w", s, err)
	}
	return Rate(r), nil
}
