package folio

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// isinRegex checks for the basic structure: 2 letters, 9 alphanumeric, 1 digit.
var isinRegex = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{9}[0-9]$`)

// currencyPairRegex checks for the format: 6 uppercase letters (3 for base, 3 for quote).
var currencyPairRegex = regexp.MustCompile(`^[A-Z]{6}$`)

// AssetType classifies a security for the "Asset type" breakdown.
type AssetType string

const (
	Stock      AssetType = "Stock"
	Bond       AssetType = "Bond"
	ETF        AssetType = "ETF"
	MutualFund AssetType = "Mutual fund"
	Option     AssetType = "Option"
	Future     AssetType = "Future"
)

// Exposure is the asset class a security gives exposure to.
type Exposure string

const (
	Equity      Exposure = "Equity"
	FixedIncome Exposure = "FI"
	FXExposure  Exposure = "FX"
	Commodity   Exposure = "Commodity"
	RealEstate  Exposure = "Real estate"
	Alternative Exposure = "Alternative"
)

// Security is a tradable asset. Prices of a security are quoted in its Currency.
type Security struct {
	ID         string
	Name       string
	ISIN       string // optional
	Type       AssetType
	Currency   string
	Exposure   Exposure
	Restricted bool
}

// Validate checks the security declaration.
func (s Security) Validate() error {
	var errs []error
	if s.ID == "" {
		errs = append(errs, errors.New("missing id"))
	}
	if err := ValidCurrency(s.Currency); err != nil {
		errs = append(errs, err)
	}
	if s.ISIN != "" {
		if err := ValidateISIN(s.ISIN); err != nil {
			errs = append(errs, fmt.Errorf("invalid ISIN: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("security %q: %w", s.ID, errors.Join(errs...))
	}
	return nil
}

// Account is a brokerage or bank account holding securities and cash.
type Account struct {
	ID         string
	Name       string
	Country    string
	Restricted bool
}

// CurrencyPair identifies a quoted FX pair using the market convention
// <Base><Quote>: "EURUSD" is the price of one USD expressed in EUR, so a quote
// converts amounts in the quote currency into the base currency.
type CurrencyPair string

// NewCurrencyPair creates a CurrencyPair from two currency codes after validation.
func NewCurrencyPair(base, quote string) (CurrencyPair, error) {
	p := CurrencyPair(base + quote)
	if err := p.Validate(); err != nil {
		return "", err
	}
	return p, nil
}

// Validate checks both legs of the pair.
func (p CurrencyPair) Validate() error {
	if !currencyPairRegex.MatchString(string(p)) {
		return fmt.Errorf("invalid currency pair %q: must be 6 uppercase letters", string(p))
	}
	if p.Base() == p.Quote() {
		return fmt.Errorf("invalid currency pair %q: same currency twice", string(p))
	}
	return errors.Join(ValidCurrency(p.Base()), ValidCurrency(p.Quote()))
}

func (p CurrencyPair) Base() string  { return string(p)[:3] }
func (p CurrencyPair) Quote() string { return string(p)[3:] }

// ValidateISIN checks if a string is a validly formatted ISIN.
// It returns nil if valid, or a descriptive error if invalid.
func ValidateISIN(isin string) error {
	if len(isin) != 12 {
		return fmt.Errorf("invalid length: must be 12 characters, got %d", len(isin))
	}
	if !isinRegex.MatchString(isin) {
		return fmt.Errorf("invalid format: must be 2 uppercase letters, 9 alphanumeric chars, and 1 digit")
	}

	// letters count as two digits, A=10 to Z=35
	var digits strings.Builder
	for _, char := range isin[:11] {
		if char >= 'A' && char <= 'Z' {
			digits.WriteString(strconv.Itoa(int(char - 'A' + 10)))
		} else {
			digits.WriteRune(char)
		}
	}

	// Luhn, doubling from the rightmost digit.
	sum := 0
	double := true
	s := digits.String()
	for i := len(s) - 1; i >= 0; i-- {
		digit := int(s[i] - '0')
		if double {
			digit *= 2
		}
		sum += digit/10 + digit%10
		double = !double
	}

	expected := (10 - sum%10) % 10
	if actual := int(isin[11] - '0'); expected != actual {
		return fmt.Errorf("invalid check digit: expected %d, got %d", expected, actual)
	}
	return nil
}
