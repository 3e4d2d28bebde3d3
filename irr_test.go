package folio

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestAnalyzer_IRR(t *testing.T) {
	testCases := []struct {
		name   string
		txs    []Transaction
		prices [][2]string // AAA quotes
		req    func(s Scope) IRRRequest
		want   Return
	}{
		{
			name: "ten percent over a year",
			txs: []Transaction{
				NewCashIn(d("2023-01-01"), "A1", dec("1000"), "EUR"),
				trade("2023-01-01", "100", "10"),
			},
			prices: [][2]string{{"2024-01-01", "11"}},
			req:    func(s Scope) IRRRequest { return IRRRequest{On: d("2024-01-01"), Currency: "EUR", Scope: s} },
			want:   Rate(dec("0.1")),
		},
		{
			name: "given terminal value",
			txs:  []Transaction{NewCashIn(d("2023-01-01"), "A1", dec("1000"), "EUR")},
			req: func(s Scope) IRRRequest {
				return IRRRequest{On: d("2024-01-01"), Currency: "EUR", Scope: s, TerminalValue: ptr(dec("1100"))}
			},
			want: Rate(dec("0.1")),
		},
		{
			name: "given initial value",
			txs:  []Transaction{NewCashIn(d("2022-01-01"), "A1", dec("1000"), "EUR")},
			req: func(s Scope) IRRRequest {
				return IRRRequest{On: d("2024-01-01"), Currency: "EUR", Scope: s, Start: ptr(d("2023-01-02")),
					InitialValue: ptr(dec("500")), TerminalValue: ptr(dec("550"))}
			},
			want: Rate(dec("0.1")),
		},
		{
			name: "negative terminal value",
			txs:  []Transaction{NewCashIn(d("2023-01-01"), "A1", dec("1000"), "EUR")},
			req: func(s Scope) IRRRequest {
				return IRRRequest{On: d("2024-01-01"), Currency: "EUR", Scope: s, TerminalValue: ptr(dec("-1"))}
			},
			want: notRelevant,
		},
		{
			name: "above the ceiling",
			txs:  []Transaction{NewCashIn(d("2023-01-01"), "A1", dec("1000"), "EUR")},
			req: func(s Scope) IRRRequest {
				return IRRRequest{On: d("2024-01-01"), Currency: "EUR", Scope: s, TerminalValue: ptr(dec("5000"))}
			},
			want: notRelevant,
		},
		{
			name: "no flows",
			req:  func(s Scope) IRRRequest { return IRRRequest{On: d("2024-01-01"), Currency: "EUR", Scope: s} },
			want: notAvailable,
		},
		{
			name: "security",
			txs: []Transaction{
				NewCashIn(d("2023-01-01"), "A1", dec("5000"), "EUR"),
				trade("2023-01-01", "10", "100"),
			},
			prices: [][2]string{{"2024-01-01", "110"}},
			req: func(s Scope) IRRRequest {
				return IRRRequest{On: d("2024-01-01"), Currency: "EUR", Scope: s, Security: "AAA"}
			},
			want: Rate(dec("0.1")),
		},
		{
			name: "security with a dividend",
			txs: []Transaction{
				trade("2023-01-01", "10", "100"),
				NewDividend(d("2024-01-01"), "A1", "AAA", dec("50"), "EUR"),
			},
			prices: [][2]string{{"2024-01-01", "105"}},
			req: func(s Scope) IRRRequest {
				return IRRRequest{On: d("2024-01-01"), Currency: "EUR", Scope: s, Security: "AAA"}
			},
			want: Rate(dec("0.1")),
		},
		{
			name: "short opened after start",
			txs:  []Transaction{trade("2024-01-10", "-10", "100")},
			req: func(s Scope) IRRRequest {
				return IRRRequest{On: d("2024-06-30"), Currency: "EUR", Scope: s, Security: "AAA", Start: ptr(d("2024-01-01"))}
			},
			want: notRelevant,
		},
		{
			name: "value before start is the first flow",
			txs: []Transaction{
				NewCashIn(d("2022-06-01"), "A1", dec("1000"), "EUR"),
				trade("2022-06-01", "100", "10"),
			},
			prices: [][2]string{{"2023-01-01", "10"}, {"2024-01-01", "11"}},
			req: func(s Scope) IRRRequest {
				return IRRRequest{On: d("2024-01-01"), Currency: "EUR", Scope: s, Start: ptr(d("2023-01-02"))}
			},
			want: Rate(dec("0.1")),
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b := newTestBook(t)
			if len(tc.txs) > 0 {
				addTx(t, b, tc.txs...)
			}
			for _, p := range tc.prices {
				addPrice(t, b, "AAA", p[0], p[1])
			}
			a := NewAnalyzer(b, Options{})
			got, err := a.IRR(tc.req(all(t, b)))
			if err != nil {
				t.Fatalf("IRR() error = %v", err)
			}
			if !got.Equal(tc.want) {
				t.Errorf("IRR() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIRRCashFlow(t *testing.T) {
	testCases := []struct {
		name      string
		tx        Transaction
		portfolio bool
		want      string
	}{
		{name: "cash in", tx: NewCashIn(d("2024-01-01"), "A1", dec("100"), "EUR"), portfolio: true, want: "-100"},
		{name: "cash out", tx: NewCashOut(d("2024-01-01"), "A1", dec("100"), "EUR"), portfolio: true, want: "100"},
		{name: "tax", tx: NewTax(d("2024-01-01"), "A1", dec("5"), "EUR"), portfolio: true, want: "0"},
		{name: "fee", tx: NewFee(d("2024-01-01"), "A1", dec("5"), "EUR"), portfolio: true, want: "0"},
		{name: "interest in a portfolio", tx: NewInterest(d("2024-01-01"), "A1", dec("3"), "EUR"), portfolio: true, want: "0"},
		{name: "interest alone", tx: NewInterest(d("2024-01-01"), "A1", dec("3"), "EUR"), want: "3"},
		{name: "buy", tx: trade("2024-01-01", "10", "5").WithCommission(dec("1")), want: "-51"},
		{name: "sell", tx: trade("2024-01-01", "-10", "5").WithCommission(dec("1")), want: "49"},
		{name: "dividend", tx: NewDividend(d("2024-01-01"), "A1", "AAA", dec("7"), "EUR"), want: "7"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := irrCashFlow(tc.tx, tc.portfolio); !got.Equal(dec(tc.want)) {
				t.Errorf("irrCashFlow() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestXIRR(t *testing.T) {
	testCases := []struct {
		name    string
		flows   []cashFlow
		want    float64
		wantErr bool
	}{
		{
			name:  "one year",
			flows: []cashFlow{{d("2023-01-01"), dec("-1000")}, {d("2024-01-01"), dec("1100")}},
			want:  0.1,
		},
		{
			name:  "loss",
			flows: []cashFlow{{d("2023-01-01"), dec("-1000")}, {d("2024-01-01"), dec("500")}},
			want:  -0.5,
		},
		{
			name: "several flows",
			flows: []cashFlow{
				{d("2023-01-01"), dec("-1000")},
				{d("2023-07-02"), dec("-1000")},
				{d("2024-01-01"), dec("2100")},
			},
			want: 0.067,
		},
		{
			name:    "single sign",
			flows:   []cashFlow{{d("2023-01-01"), dec("1000")}, {d("2024-01-01"), dec("1100")}},
			wantErr: true,
		},
		{
			name:    "single flow",
			flows:   []cashFlow{{d("2023-01-01"), dec("-1000")}},
			wantErr: true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := xirr(tc.flows)
			if (err != nil) != tc.wantErr {
				t.Fatalf("xirr() error = %v, wantErr %v", err, tc.wantErr)
			}
			if tc.wantErr {
				return
			}
			if r := decimal.NewFromFloat(got).Round(4); !r.Equal(decimal.NewFromFloat(tc.want)) {
				t.Errorf("xirr() = %v, want %v", got, tc.want)
			}
		})
	}
}
