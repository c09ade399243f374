package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"stock-viewer/models"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"
)

// alpacaBarsClient is the part of *marketdata.Client used for history
type alpacaBarsClient interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
}

// alpacaAssetsClient is the part of *alpaca.Client used for company info
type alpacaAssetsClient interface {
	GetAsset(symbol string) (*alpaca.Asset, error)
}

// AlpacaService reads daily bars and asset metadata from Alpaca
type AlpacaService struct {
	tradeClient alpacaAssetsClient
	dataClient  alpacaBarsClient
	feed        marketdata.Feed
}

// NewAlpacaService creates a new AlpacaService instance. feed selects the
// market data feed ("iex" for free accounts, "sip" with a subscription).
func NewAlpacaService(apiKey, apiSecret, baseURL, feed string) *AlpacaService {
	tradeClient := alpaca.NewClient(alpaca.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
		BaseURL:   baseURL,
	})

	dataClient := marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	})

	if feed == "" {
		feed = "iex"
	}

	return &AlpacaService{
		tradeClient: tradeClient,
		dataClient:  dataClient,
		feed:        marketdata.Feed(feed),
	}
}

// Name returns the provider name
func (s *AlpacaService) Name() string { return BreakerAlpaca }

// GetHistory returns split and dividend adjusted daily bars for a symbol
func (s *AlpacaService) GetHistory(ctx context.Context, symbol string, start, end time.Time) (*models.PriceSeries, error) {
	symbol = normalizeSymbol(symbol)
	if symbol == "" {
		return nil, NotFound(s.Name(), "history", symbol, errors.New("empty symbol"))
	}
	// the Alpaca SDK takes no context
	if err := ctx.Err(); err != nil {
		return nil, Transient(s.Name(), "history", symbol, err)
	}

	bars, err := s.dataClient.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame:  marketdata.OneDay,
		Start:      start,
		End:        end.AddDate(0, 0, 1),
		Adjustment: marketdata.All,
		Feed:       s.feed,
	})
	if err != nil {
		return nil, s.classify("history", symbol, fmt.Errorf("failed to get bars for %s: %w", symbol, err))
	}

	result := make([]models.Bar, 0, len(bars))
	for _, bar := range bars {
		result = append(result, models.Bar{
			Date:   bar.Timestamp,
			Open:   decimal.NewFromFloat(bar.Open),
			High:   decimal.NewFromFloat(bar.High),
			Low:    decimal.NewFromFloat(bar.Low),
			Close:  decimal.NewFromFloat(bar.Close),
			Volume: int64(bar.Volume),
		})
	}

	return buildSeries(s.Name(), symbol, result, start, end)
}

// GetInfo returns the Alpaca asset record as company info
func (s *AlpacaService) GetInfo(ctx context.Context, symbol string) (*models.CompanyInfo, error) {
	symbol = normalizeSymbol(symbol)
	if symbol == "" {
		return nil, NotFound(s.Name(), "info", symbol, errors.New("empty symbol"))
	}
	if err := ctx.Err(); err != nil {
		return nil, Transient(s.Name(), "info", symbol, err)
	}

	asset, err := s.tradeClient.GetAsset(symbol)
	if err != nil {
		return nil, s.classify("info", symbol, fmt.Errorf("failed to get asset for %s: %w", symbol, err))
	}

	fields := map[string]any{}
	if raw, err := json.Marshal(asset); err == nil {
		_ = json.Unmarshal(raw, &fields)
	}

	return &models.CompanyInfo{
		Symbol:    symbol,
		ShortName: asset.Name,
		Exchange:  asset.Exchange,
		Currency:  "USD",
		Fields:    fields,
	}, nil
}

func (s *AlpacaService) classify(op, symbol string, err error) error {
	var apiErr *alpaca.APIError
	if errors.As(err, &apiErr) && statusKind(apiErr.StatusCode) == KindNotFound {
		return NotFound(s.Name(), op, symbol, err)
	}
	return Transient(s.Name(), op, symbol, err)
}
