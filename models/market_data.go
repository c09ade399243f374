package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateWindow is the resolved date range for one render.
// FetchStart <= DisplayStart <= End always holds.
type DateWindow struct {
	FetchStart   time.Time `json:"fetch_start"`
	DisplayStart time.Time `json:"display_start"`
	End          time.Time `json:"end"`
}

// WarmupDays returns the number of calendar days fetched ahead of the display window
func (w DateWindow) WarmupDays() int {
	return int(w.DisplayStart.Sub(w.FetchStart).Hours() / 24)
}

// Bar represents daily OHLCV price data
type Bar struct {
	Date   time.Time       `json:"date"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
}

// PriceSeries is a symbol's daily bars ordered by strictly increasing date
type PriceSeries struct {
	Symbol string `json:"symbol"`
	Bars   []Bar  `json:"bars"`
}

// Len returns the number of bars in the series
func (s *PriceSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Bars)
}

// Closes returns the close prices as float64 for indicator input
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, s.Len())
	for i, bar := range s.Bars {
		closes[i] = bar.Close.InexactFloat64()
	}
	return closes
}

// IndexFrom returns the index of the first bar dated on or after t,
// or Len() when every bar is earlier.
func (s *PriceSeries) IndexFrom(t time.Time) int {
	for i, bar := range s.Bars {
		if !bar.Date.Before(t) {
			return i
		}
	}
	return s.Len()
}

// ClosePoint is a single close price in a close-only series
type ClosePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// CloseSeries is a close-only series used by the comparison page
type CloseSeries struct {
	Symbol string       `json:"symbol"`
	Points []ClosePoint `json:"points"`
}

// CloseSeriesOf projects a PriceSeries onto its close prices
func CloseSeriesOf(s *PriceSeries) CloseSeries {
	points := make([]ClosePoint, s.Len())
	for i, bar := range s.Bars {
		points[i] = ClosePoint{Date: bar.Date, Close: bar.Close.InexactFloat64()}
	}
	return CloseSeries{Symbol: s.Symbol, Points: points}
}

// CompanyInfo is the provider's metadata for a symbol. Fields carries the
// raw provider mapping for the expandable detail view.
type CompanyInfo struct {
	Symbol    string         `json:"symbol"`
	ShortName string         `json:"short_name"`
	Exchange  string         `json:"exchange,omitempty"`
	Currency  string         `json:"currency,omitempty"`
	Fields    map[string]any `json:"fields"`
}
