package services

import (
	"sort"
	"strings"
	"time"

	"stock-viewer/models"
	"stock-viewer/window"
)

// normalizeSymbol upper-cases and trims a ticker symbol
func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// buildSeries orders bars by date, keeps the last bar for a duplicated date and
// drops bars outside [start, end]. An empty result is reported as EmptyResult.
func buildSeries(provider, symbol string, bars []models.Bar, start, end time.Time) (*models.PriceSeries, error) {
	from, to := window.Day(start), window.Day(end)

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	out := make([]models.Bar, 0, len(bars))
	for _, bar := range bars {
		bar.Date = window.Day(bar.Date)
		if bar.Date.Before(from) || bar.Date.After(to) {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Date.Equal(bar.Date) {
			out[n-1] = bar
			continue
		}
		out = append(out, bar)
	}

	if len(out) == 0 {
		return nil, EmptyResult(provider, "history", symbol, nil)
	}
	return &models.PriceSeries{Symbol: symbol, Bars: out}, nil
}
