package main

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
	"time"

	"stock-viewer/models"
	"stock-viewer/services"
	"stock-viewer/window"

	"github.com/shopspring/decimal"
)

// fixtureCompany is the static metadata served for one symbol
type fixtureCompany struct {
	name     string
	sector   string
	industry string
	price    float64
}

var fixtureCompanies = map[string]fixtureCompany{
	"AAPL":  {"Apple Inc.", "Technology", "Consumer Electronics", 190},
	"MSFT":  {"Microsoft Corporation", "Technology", "Software - Infrastructure", 420},
	"GOOGL": {"Alphabet Inc.", "Communication Services", "Internet Content & Information", 170},
	"AMZN":  {"Amazon.com, Inc.", "Consumer Cyclical", "Internet Retail", 180},
	"TSLA":  {"Tesla, Inc.", "Consumer Cyclical", "Auto Manufacturers", 180},
	"NVDA":  {"NVIDIA Corporation", "Technology", "Semiconductors", 900},
}

// FixtureProvider serves deterministic daily bars without network access.
// Prices follow a per-symbol drift plus a slow oscillation so every
// indicator has something to show.
type FixtureProvider struct{}

func NewFixtureProvider() *FixtureProvider {
	return &FixtureProvider{}
}

func (p *FixtureProvider) Name() string { return "fixture" }

func (p *FixtureProvider) GetHistory(ctx context.Context, symbol string, start, end time.Time) (*models.PriceSeries, error) {
	company, ok := fixtureCompanies[symbol]
	if !ok {
		return nil, services.NotFound(p.Name(), "history", symbol, errors.New("unknown fixture symbol"))
	}

	seed := symbolSeed(symbol)
	series := &models.PriceSeries{Symbol: symbol}
	for d := window.Day(start); !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, services.Transient(p.Name(), "history", symbol, err)
		}

		// days since epoch keep a bar's price independent of the requested range
		n := float64(d.Unix() / 86400)
		price := company.price * (1 + 0.0002*(n-19800)) * (1 + 0.08*math.Sin(n/23+seed))
		spread := price * 0.01

		series.Bars = append(series.Bars, models.Bar{
			Date:   d,
			Open:   decimal.NewFromFloat(price - spread/2).Round(2),
			High:   decimal.NewFromFloat(price + spread).Round(2),
			Low:    decimal.NewFromFloat(price - spread).Round(2),
			Close:  decimal.NewFromFloat(price).Round(2),
			Volume: int64(20_000_000 + 5_000_000*math.Cos(n/7+seed)),
		})
	}

	if series.Len() == 0 {
		return nil, services.EmptyResult(p.Name(), "history", symbol, errors.New("no sessions in range"))
	}
	return series, nil
}

func (p *FixtureProvider) GetInfo(ctx context.Context, symbol string) (*models.CompanyInfo, error) {
	company, ok := fixtureCompanies[symbol]
	if !ok {
		return nil, services.NotFound(p.Name(), "info", symbol, errors.New("unknown fixture symbol"))
	}
	return &models.CompanyInfo{
		Symbol:    symbol,
		ShortName: company.name,
		Exchange:  "NMS",
		Currency:  "USD",
		Fields: map[string]any{
			"longName": company.name,
			"sector":   company.sector,
			"industry": company.industry,
		},
	}, nil
}

func symbolSeed(symbol string) float64 {
	h := fnv.New32a()
	h.Write([]byte(symbol))
	return float64(h.Sum32()%628) / 100
}

var _ services.MarketDataProvider = (*FixtureProvider)(nil)
