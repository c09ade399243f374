package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"stock-viewer/indicators"
	"stock-viewer/models"
	"stock-viewer/observability"
	"stock-viewer/window"
)

// fakeProvider serves weekday bars with rising closes unless overridden
type fakeProvider struct {
	mu        sync.Mutex
	historyFn func(symbol string, start, end time.Time) (*models.PriceSeries, error)
	infoFn    func(symbol string) (*models.CompanyInfo, error)
	calls     int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) GetHistory(ctx context.Context, symbol string, start, end time.Time) (*models.PriceSeries, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.historyFn != nil {
		return f.historyFn(symbol, start, end)
	}
	return weekdaySeries(symbol, start, end, 100, 1), nil
}

func (f *fakeProvider) GetInfo(ctx context.Context, symbol string) (*models.CompanyInfo, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.infoFn != nil {
		return f.infoFn(symbol)
	}
	return &models.CompanyInfo{
		Symbol:    symbol,
		ShortName: symbol + " Inc.",
		Fields:    map[string]any{"symbol": symbol},
	}, nil
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// weekdaySeries returns one bar per weekday in [start, end], closes rising by step
func weekdaySeries(symbol string, start, end time.Time, first, step float64) *models.PriceSeries {
	s := &models.PriceSeries{Symbol: symbol}
	price := first
	for d := window.Day(start); !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		s.Bars = append(s.Bars, bar(d, price))
		price += step
	}
	return s
}

func bar(d time.Time, close float64) models.Bar {
	c := decimal.NewFromFloat(close)
	return models.Bar{
		Date:   d,
		Open:   c,
		High:   c.Add(decimal.NewFromInt(1)),
		Low:    c.Sub(decimal.NewFromInt(1)),
		Close:  c,
		Volume: 1_000_000,
	}
}

func closeSeries(symbol string, dates []time.Time, closes []float64) *models.PriceSeries {
	s := &models.PriceSeries{Symbol: symbol}
	for i, d := range dates {
		s.Bars = append(s.Bars, bar(d, closes[i]))
	}
	return s
}

func newTestBuilder(p *fakeProvider) (*Builder, *observability.Metrics) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	b := NewBuilder(p, window.NewResolver(window.DefaultWarmupDays), indicators.DefaultParams, Settings{}, metrics)
	return b, metrics
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
