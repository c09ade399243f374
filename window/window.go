// Package window turns a display period into the concrete date range a page
// fetches and the range it shows.
package window

import (
	"errors"
	"fmt"
	"time"

	"stock-viewer/models"
)

// DefaultWarmupDays is the calendar-day lead fetched ahead of the display window.
// 70 calendar days hold roughly 50 weekday sessions, enough for MACD(12,26,9)
// (33 rows) and EMA(50) (49 rows) when no holidays fall inside the lead.
const DefaultWarmupDays = 70

// ErrUnmappedPeriod is returned for a period with no entry in the span table
var ErrUnmappedPeriod = errors.New("period has no span mapping")

// spanDays is intentionally literal: months are 30 days and years 365.
var spanDays = map[models.Period]int{
	models.Period1D:  1,
	models.Period5D:  5,
	models.Period1M:  30,
	models.Period3M:  90,
	models.Period6M:  180,
	models.Period1Y:  365,
	models.Period2Y:  730,
	models.Period5Y:  1825,
	models.Period10Y: 3650,
}

// SpanDays returns the calendar-day span of a period
func SpanDays(p models.Period) (int, error) {
	days, ok := spanDays[p]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnmappedPeriod, p)
	}
	return days, nil
}

// Resolver computes DateWindows with a fixed warm-up lead
type Resolver struct {
	warmupDays int
}

// NewResolver creates a Resolver. A warmup shorter than DefaultWarmupDays is
// raised to DefaultWarmupDays.
func NewResolver(warmupDays int) *Resolver {
	if warmupDays < DefaultWarmupDays {
		warmupDays = DefaultWarmupDays
	}
	return &Resolver{warmupDays: warmupDays}
}

// WarmupDays returns the configured warm-up lead in calendar days
func (r *Resolver) WarmupDays() int {
	return r.warmupDays
}

// Resolve translates period into a DateWindow ending on now's calendar date
func (r *Resolver) Resolve(period models.Period, now time.Time) (models.DateWindow, error) {
	span, err := SpanDays(period)
	if err != nil {
		return models.DateWindow{}, err
	}

	end := Day(now)
	displayStart := end.AddDate(0, 0, -span)
	fetchStart := displayStart.AddDate(0, 0, -r.warmupDays)

	return models.DateWindow{
		FetchStart:   fetchStart,
		DisplayStart: displayStart,
		End:          end,
	}, nil
}

// TradingDays estimates the weekday sessions contained in the warm-up lead
func (r *Resolver) TradingDays() int {
	return r.warmupDays / 7 * 5
}

// Covers reports whether the warm-up lead holds more sessions than an
// indicator with the given lookback (in rows) consumes.
func (r *Resolver) Covers(lookback int) bool {
	return r.TradingDays() > lookback
}

// Day truncates t to midnight UTC of its UTC calendar date
func Day(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
