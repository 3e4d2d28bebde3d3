package date

import (
	"errors"
	"fmt"
	"iter"
)

// ErrInvalidRange is returned when a range ends before it starts.
var ErrInvalidRange = errors.New("invalid date range")

// Range represents a range of dates, both boundaries included.
type Range struct{ From, To Date }

// NewRange returns the range [from, to] or an error if to is before from.
func NewRange(from, to Date) (Range, error) {
	if to.Before(from) {
		return Range{}, fmt.Errorf("%w: %s is before %s", ErrInvalidRange, to, from)
	}
	return Range{From: from, To: to}, nil
}

// PeriodRange returns the period p that contains d.
func PeriodRange(d Date, p Period) Range {
	return Range{From: d.StartOf(p), To: d.EndOf(p)}
}

// YearToDate returns the range from January 1st to on.
func YearToDate(on Date) Range { return Range{From: on.StartOf(Yearly), To: on} }

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(d Date) bool { return !d.Before(r.From) && !d.After(r.To) }

// Days returns the number of days in the range.
func (r Range) Days() int { return r.From.DaysUntil(r.To) + 1 }

// Steps iterates over the end dates of each period p within the range.
// The last step is always r.To even if it does not close a full period.
func (r Range) Steps(p Period) iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for on := r.From.EndOf(p); on.Before(r.To); on = on.Add(1).EndOf(p) {
			if !yield(on) {
				return
			}
		}
		yield(r.To)
	}
}

// Years returns the full calendar years covered by the range.
func (r Range) Years() []int {
	var years []int
	for y := r.From.Year(); y <= r.To.Year(); y++ {
		years = append(years, y)
	}
	return years
}

// String formats the range as "from..to".
func (r Range) String() string { return fmt.Sprintf("%s..%s", r.From, r.To) }

// Identifier computes a short identifier for the range, "2024" for a calendar year,
// "2024-Q1" for a quarter, "2024-03" for a month and "from_to" otherwise.
func (r Range) Identifier() string {
	switch {
	case r == PeriodRange(r.From, Yearly):
		return r.From.Format("2006")
	case r == PeriodRange(r.From, Quarterly):
		return fmt.Sprintf("%d-Q%d", r.From.Year(), (r.From.Month()-1)/3+1)
	case r == PeriodRange(r.From, Monthly):
		return r.From.Format("2006-01")
	case r.From == r.To:
		return r.From.String()
	default:
		return fmt.Sprintf("%s_%s", r.From, r.To)
	}
}
