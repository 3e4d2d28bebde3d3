package date

import (
	"fmt"
	"strings"
)

// Period is a standard calendar period used to step through time.
type Period int

const (
	Daily Period = iota
	Weekly
	Monthly
	Quarterly
	Yearly
)

// periodNames holds the adjective then the nouns accepted for each period.
var periodNames = [...][]string{
	Daily:     {"daily", "day"},
	Weekly:    {"weekly", "week"},
	Monthly:   {"monthly", "month"},
	Quarterly: {"quarterly", "quarter"},
	Yearly:    {"yearly", "year", "annual"},
}

func (p Period) String() string {
	if p < Daily || p > Yearly {
		return fmt.Sprintf("Period(%d)", int(p))
	}
	return periodNames[p][0]
}

// ParsePeriod accepts both the adjective and the noun ("monthly", "month").
func ParsePeriod(s string) (Period, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for p, names := range periodNames {
		for _, name := range names {
			if name == norm {
				return Period(p), nil
			}
		}
	}
	return Daily, fmt.Errorf("unknown period %q", s)
}
