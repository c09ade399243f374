package models

import (
	"fmt"
	"strings"
)

// Period is a user-facing display duration selected on a dashboard page.
type Period string

const (
	Period1D  Period = "1d"
	Period5D  Period = "5d"
	Period1M  Period = "1mo"
	Period3M  Period = "3mo"
	Period6M  Period = "6mo"
	Period1Y  Period = "1y"
	Period2Y  Period = "2y"
	Period5Y  Period = "5y"
	Period10Y Period = "10y"
)

// AllPeriods lists every period in ascending order of length.
var AllPeriods = []Period{
	Period1D, Period5D, Period1M, Period3M, Period6M,
	Period1Y, Period2Y, Period5Y, Period10Y,
}

// ParsePeriod converts user input such as "6mo" into a Period
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllPeriods {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("invalid period %q (expected one of %s)", s, joinPeriods(AllPeriods))
}

func (p Period) String() string {
	return string(p)
}

func joinPeriods(periods []Period) string {
	parts := make([]string, len(periods))
	for i, p := range periods {
		parts[i] = string(p)
	}
	return strings.Join(parts, ", ")
}
