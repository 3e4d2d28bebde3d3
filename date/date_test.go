package date

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{in: "2025-07-01", want: New(2025, time.July, 1)},
		{in: "2025-7-1", want: New(2025, time.July, 1)},
		{in: " 2024-02-29 ", want: New(2024, time.February, 29)},
		{in: "2024-13-01", wantErr: true},
		{in: "yesterday", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if !tc.wantErr && got != tc.want {
				t.Errorf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseRelative(t *testing.T) {
	today := Today()
	if got, want := MustParse("-1d"), today.Add(-1); got != want {
		t.Errorf("Parse(-1d) = %v, want %v", got, want)
	}
	if got, want := MustParse("+2w"), today.Add(14); got != want {
		t.Errorf("Parse(+2w) = %v, want %v", got, want)
	}
	if got, want := MustParse("-1y"), today.AddYears(-1); got != want {
		t.Errorf("Parse(-1y) = %v, want %v", got, want)
	}
}

func TestNormalization(t *testing.T) {
	if got, want := New(2024, time.March, 0), New(2024, time.February, 29); got != want {
		t.Errorf("New(2024, 3, 0) = %v, want %v", got, want)
	}
	if got, want := New(2024, time.December, 31).Add(1), New(2025, time.January, 1); got != want {
		t.Errorf("Add(1) = %v, want %v", got, want)
	}
}

func TestCompare(t *testing.T) {
	a, b := New(2023, time.December, 31), New(2024, time.January, 1)
	if !a.Before(b) || b.Before(a) || !b.After(a) {
		t.Errorf("%v and %v are not ordered", a, b)
	}
	if a.Compare(a) != 0 {
		t.Errorf("Compare(%v, %v) = %d, want 0", a, a, a.Compare(a))
	}
	if got := Min(b, a); got != a {
		t.Errorf("Min() = %v, want %v", got, a)
	}
	if got := Max(a, b); got != b {
		t.Errorf("Max() = %v, want %v", got, b)
	}
}

func TestDaysUntil(t *testing.T) {
	testCases := []struct {
		from, to Date
		want     int
	}{
		{New(2023, time.January, 1), New(2024, time.January, 1), 365},
		{New(2024, time.January, 1), New(2025, time.January, 1), 366},
		{New(2024, time.January, 10), New(2024, time.January, 1), -9},
	}
	for _, tc := range testCases {
		if got := tc.from.DaysUntil(tc.to); got != tc.want {
			t.Errorf("%v.DaysUntil(%v) = %d, want %d", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestStartEndOf(t *testing.T) {
	d := New(2025, time.September, 10) // a Wednesday
	testCases := []struct {
		p          Period
		start, end Date
	}{
		{Daily, d, d},
		{Weekly, New(2025, time.September, 8), New(2025, time.September, 14)},
		{Monthly, New(2025, time.September, 1), New(2025, time.September, 30)},
		{Quarterly, New(2025, time.July, 1), New(2025, time.September, 30)},
		{Yearly, New(2025, time.January, 1), New(2025, time.December, 31)},
	}
	for _, tc := range testCases {
		t.Run(tc.p.String(), func(t *testing.T) {
			if got := d.StartOf(tc.p); got != tc.start {
				t.Errorf("StartOf(%v) = %v, want %v", tc.p, got, tc.start)
			}
			if got := d.EndOf(tc.p); got != tc.end {
				t.Errorf("EndOf(%v) = %v, want %v", tc.p, got, tc.end)
			}
		})
	}
}

func TestJSON(t *testing.T) {
	d := New(2025, time.July, 1)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if got, want := string(b), `"2025-07-01"`; got != want {
		t.Errorf("Marshal() = %s, want %s", got, want)
	}
	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if back != d {
		t.Errorf("Unmarshal() = %v, want %v", back, d)
	}
}
