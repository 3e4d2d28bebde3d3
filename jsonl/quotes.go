package jsonl

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

// Date layouts for epoch timestamps in QuotePath.DateLayout.
const (
	UnixSeconds = "unix"
	UnixMillis  = "unixms"
)

// QuotePath locates (date, value) rows in a JSON document returned by a data
// vendor. Rows selects the array of rows, Date and Value are evaluated on each row.
//
//	{"Rows": "$.series.history.data[*]", "Date": "$[0]", "Value": "$[1]", "DateLayout": "unixms"}
//	{"Rows": "$[*]", "Date": "$.date", "Value": "$.close"}
type QuotePath struct {
	Rows       string
	Date       string
	Value      string
	DateLayout string // time layout, UnixSeconds or UnixMillis. Defaults to date.DateFormat.
}

// Point is a dated value extracted from a document.
type Point struct {
	Date  date.Date
	Value decimal.Decimal
}

// ExtractQuotes evaluates p on the JSON document doc.
func ExtractQuotes(doc []byte, p QuotePath) ([]Point, error) {
	var jobj any
	if err := json.Unmarshal(doc, &jobj); err != nil {
		return nil, fmt.Errorf("invalid json document: %w", err)
	}
	jrows, err := jsonpath.Get(p.Rows, jobj)
	if err != nil {
		return nil, fmt.Errorf("error evaluating rows %q: %w", p.Rows, err)
	}
	rows, ok := jrows.([]any)
	if !ok {
		return nil, fmt.Errorf("rows %q is not a list: %T", p.Rows, jrows)
	}

	points := make([]Point, 0, len(rows))
	for i, row := range rows {
		jdate, err := first(p.Date, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		on, err := parseDate(jdate, p.DateLayout)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		jval, err := first(p.Value, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		val, err := parseValue(jval)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		points = append(points, Point{Date: on, Value: val})
	}
	return points, nil
}

// first evaluates path and keeps the first answer when jsonpath returns a list.
func first(path string, v any) (any, error) {
	jval, err := jsonpath.Get(path, v)
	if err != nil {
		return nil, fmt.Errorf("error evaluating %q: %w", path, err)
	}
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	return jval, nil
}

func parseDate(jval any, layout string) (date.Date, error) {
	switch v := jval.(type) {
	case float64:
		switch layout {
		case UnixSeconds:
			return date.New(time.Unix(int64(v), 0).UTC().Date()), nil
		case UnixMillis:
			return date.New(time.UnixMilli(int64(v)).UTC().Date()), nil
		}
		return date.Date{}, fmt.Errorf("numeric date %v needs layout %q or %q", v, UnixSeconds, UnixMillis)
	case string:
		if layout == "" || layout == UnixSeconds || layout == UnixMillis {
			return date.Parse(v)
		}
		t, err := time.Parse(layout, v)
		if err != nil {
			return date.Date{}, err
		}
		return date.New(t.Date()), nil
	}
	return date.Date{}, fmt.Errorf("cannot read a date from %v", jval)
}

// parseValue accepts numbers and strings, some vendors return "1 234,5".
func parseValue(jval any) (decimal.Decimal, error) {
	switch v := jval.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		s := strings.ReplaceAll(v, " ", "")
		s = strings.ReplaceAll(s, ",", ".")
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, fmt.Errorf("value is an invalid string %q: %w", v, err)
		}
		return d, nil
	}
	return decimal.Zero, fmt.Errorf("cannot read a value from %v", jval)
}

// PriceQuotes turns points into quotes of a security.
func PriceQuotes(security string, points []Point) []folio.PriceQuote {
	quotes := make([]folio.PriceQuote, len(points))
	for i, p := range points {
		quotes[i] = folio.PriceQuote{Security: security, Date: p.Date, Price: p.Value}
	}
	return quotes
}

// FXQuotes turns points into quotes of a currency pair.
func FXQuotes(pair folio.CurrencyPair, points []Point) []folio.FXQuote {
	quotes := make([]folio.FXQuote, len(points))
	for i, p := range points {
		quotes[i] = folio.FXQuote{Pair: pair, Date: p.Date, Quote: p.Value}
	}
	return quotes
}
