package folio

import (
	"encoding/json"
	"testing"
)

func TestMoney_String(t *testing.T) {
	testCases := []struct {
		m          Money
		want       string
		wantSigned string
	}{
		{m: USD("1234.5"), want: "$1,234.50", wantSigned: "+$1,234.50"},
		{m: USD("-0.125"), want: "-$0.13", wantSigned: "-$0.13"},
		{m: USD("0"), want: "$0.00", wantSigned: "$0.00"},
		{m: M(dec("3.14159"), ""), want: "3.14", wantSigned: "+3.14"},
	}
	for _, tc := range testCases {
		t.Run(tc.want, func(t *testing.T) {
			if got := tc.m.String(); got != tc.want {
				t.Errorf("String() = %q, want %q", got, tc.want)
			}
			if got := tc.m.SignedString(); got != tc.wantSigned {
				t.Errorf("SignedString() = %q, want %q", got, tc.wantSigned)
			}
		})
	}
}

func TestMoney_Add(t *testing.T) {
	got := EUR("1.5").Add(Zero("")).Sub(EUR("0.25"))
	if want := EUR("1.25"); !got.Equal(want) {
		t.Errorf("Add().Sub() = %v, want %v", got, want)
	}
	if got := Zero("").Add(USD("2")); got.Currency() != "USD" {
		t.Errorf("Add().Currency() = %q, want USD", got.Currency())
	}

	defer func() {
		if recover() == nil {
			t.Errorf("EUR.Add(USD) did not panic")
		}
	}()
	EUR("1").Add(USD("1"))
}

func TestValidCurrency(t *testing.T) {
	for _, c := range []string{"EUR", "USD", "JPY", "CHF"} {
		if err := ValidCurrency(c); err != nil {
			t.Errorf("ValidCurrency(%q) = %v, want nil", c, err)
		}
	}
	for _, c := range []string{"", "eur", "EURO", "XYZ"} {
		if err := ValidCurrency(c); err == nil {
			t.Errorf("ValidCurrency(%q) = nil, want an error", c)
		}
	}
}

func TestReturn_String(t *testing.T) {
	testCases := []struct {
		r          Return
		want       string
		wantSigned string
		wantJSON   string
	}{
		{r: Rate(dec("0.12345")), want: "12.35%", wantSigned: "+12.35%", wantJSON: "0.1235"},
		{r: Rate(dec("-0.05")), want: "-5.00%", wantSigned: "-5.00%", wantJSON: "-0.05"},
		{r: Rate(dec("0.00001")), want: "0.00%", wantSigned: "-", wantJSON: "0"},
		{r: Rate(dec("1234567890123.4567")), want: "123456789012345.67%", wantSigned: "+123456789012345.67%", wantJSON: "1234567890123.4567"},
		{r: notRelevant, want: "N/R", wantSigned: "N/R", wantJSON: `"N/R"`},
		{r: notAvailable, want: "N/A", wantSigned: "N/A", wantJSON: `"N/A"`},
	}
	for _, tc := range testCases {
		t.Run(tc.want, func(t *testing.T) {
			if got := tc.r.String(); got != tc.want {
				t.Errorf("String() = %q, want %q", got, tc.want)
			}
			if got := tc.r.SignedString(); got != tc.wantSigned {
				t.Errorf("SignedString() = %q, want %q", got, tc.wantSigned)
			}
			got, err := json.Marshal(tc.r)
			if err != nil {
				t.Fatalf("MarshalJSON() error = %v", err)
			}
			if string(got) != tc.wantJSON {
				t.Errorf("MarshalJSON() = %s, want %s", got, tc.wantJSON)
			}
		})
	}
}

func TestParseReturn(t *testing.T) {
	for _, r := range []Return{Rate(dec("0.1235")), Rate(dec("-0.05")), notRelevant, notAvailable} {
		data, err := json.Marshal(r)
		if err != nil {
			t.Fatalf("MarshalJSON() error = %v", err)
		}
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			s = string(data)
		}
		got, err := ParseReturn(s)
		if err != nil {
			t.Fatalf("ParseReturn(%q) error = %v", s, err)
		}
		if !got.Equal(r) {
			t.Errorf("ParseReturn(%q) = %v, want %v", s, got, r)
		}
	}
	if _, err := ParseReturn("ten"); err == nil {
		t.Errorf("ParseReturn(%q) error = nil, want an error", "ten")
	}
}
