package services

import (
	"context"
	"time"

	"stock-viewer/models"
)

// MarketDataProvider is a source of daily price history and company metadata.
// Implementations classify failures with NotFound, Transient or EmptyResult.
type MarketDataProvider interface {
	// Name identifies the provider in logs, metrics and breaker names.
	Name() string
	// GetHistory returns daily bars with dates in [start, end], ascending.
	GetHistory(ctx context.Context, symbol string, start, end time.Time) (*models.PriceSeries, error)
	// GetInfo returns company metadata for symbol.
	GetInfo(ctx context.Context, symbol string) (*models.CompanyInfo, error)
}

// Compile-time interface checks
var (
	_ MarketDataProvider = (*YahooService)(nil)
	_ MarketDataProvider = (*AlphaVantageService)(nil)
	_ MarketDataProvider = (*AlpacaService)(nil)
	_ MarketDataProvider = (*PolygonService)(nil)
	_ MarketDataProvider = (*ResilientProvider)(nil)
)
