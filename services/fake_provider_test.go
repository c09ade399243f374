package services

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"stock-viewer/models"
)

// fakeProvider is a scripted MarketDataProvider for tests
type fakeProvider struct {
	mu          sync.Mutex
	name        string
	historyFn   func(ctx context.Context, symbol string, start, end time.Time) (*models.PriceSeries, error)
	infoFn      func(ctx context.Context, symbol string) (*models.CompanyInfo, error)
	historyCall int
	infoCall    int
}

func (f *fakeProvider) Name() string {
	if f.name == "" {
		return "fake"
	}
	return f.name
}

func (f *fakeProvider) GetHistory(ctx context.Context, symbol string, start, end time.Time) (*models.PriceSeries, error) {
	f.mu.Lock()
	f.historyCall++
	f.mu.Unlock()
	if f.historyFn == nil {
		return dailySeries(symbol, start, 3, 100), nil
	}
	return f.historyFn(ctx, symbol, start, end)
}

func (f *fakeProvider) GetInfo(ctx context.Context, symbol string) (*models.CompanyInfo, error) {
	f.mu.Lock()
	f.infoCall++
	f.mu.Unlock()
	if f.infoFn == nil {
		return &models.CompanyInfo{Symbol: symbol, ShortName: symbol + " Inc"}, nil
	}
	return f.infoFn(ctx, symbol)
}

func (f *fakeProvider) historyCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.historyCall
}

func (f *fakeProvider) infoCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.infoCall
}

// dailySeries builds n consecutive daily bars starting at start with closes first, first+1, ...
func dailySeries(symbol string, start time.Time, n int, first float64) *models.PriceSeries {
	bars := make([]models.Bar, n)
	for i := range bars {
		c := decimal.NewFromFloat(first + float64(i))
		bars[i] = models.Bar{Date: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 1000}
	}
	return &models.PriceSeries{Symbol: symbol, Bars: bars}
}
