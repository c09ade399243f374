package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"stock-viewer/models"

	polygon "github.com/polygon-io/client-go/rest"
	pmodels "github.com/polygon-io/client-go/rest/models"
	"github.com/shopspring/decimal"
)

// polygonAggsIterator is the iterator returned by ListAggs
type polygonAggsIterator interface {
	Next() bool
	Item() pmodels.Agg
	Err() error
}

// polygonAPI is the subset of the Polygon REST client used here
type polygonAPI interface {
	ListAggs(ctx context.Context, params *pmodels.ListAggsParams, opts ...pmodels.RequestOption) polygonAggsIterator
	GetTickerDetails(ctx context.Context, params *pmodels.GetTickerDetailsParams, opts ...pmodels.RequestOption) (*pmodels.GetTickerDetailsResponse, error)
}

// polygonClient adapts *polygon.Client to polygonAPI
type polygonClient struct {
	client *polygon.Client
}

func (c polygonClient) ListAggs(ctx context.Context, params *pmodels.ListAggsParams, opts ...pmodels.RequestOption) polygonAggsIterator {
	return c.client.ListAggs(ctx, params, opts...)
}

func (c polygonClient) GetTickerDetails(ctx context.Context, params *pmodels.GetTickerDetailsParams, opts ...pmodels.RequestOption) (*pmodels.GetTickerDetailsResponse, error) {
	return c.client.GetTickerDetails(ctx, params, opts...)
}

// PolygonService reads daily aggregates and ticker details from Polygon.io
type PolygonService struct {
	apiClient polygonAPI
}

// NewPolygonService creates a new PolygonService instance
func NewPolygonService(apiKey string) (*PolygonService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("polygon api key is required")
	}
	return &PolygonService{apiClient: polygonClient{client: polygon.New(apiKey)}}, nil
}

// Name returns the provider name
func (s *PolygonService) Name() string { return BreakerPolygon }

// GetHistory returns adjusted daily aggregates for symbol between start and end inclusive
func (s *PolygonService) GetHistory(ctx context.Context, symbol string, start, end time.Time) (*models.PriceSeries, error) {
	symbol = normalizeSymbol(symbol)
	if symbol == "" {
		return nil, NotFound(s.Name(), "history", symbol, errors.New("empty symbol"))
	}

	params := pmodels.ListAggsParams{
		Ticker:     symbol,
		Multiplier: 1,
		Timespan:   pmodels.Day,
		From:       pmodels.Millis(start),
		To:         pmodels.Millis(end),
	}.WithAdjusted(true).WithOrder(pmodels.Asc).WithLimit(50000)

	iter := s.apiClient.ListAggs(ctx, params)

	var bars []models.Bar
	for iter.Next() {
		agg := iter.Item()
		bars = append(bars, models.Bar{
			Date:   time.Time(agg.Timestamp),
			Open:   decimal.NewFromFloat(agg.Open),
			High:   decimal.NewFromFloat(agg.High),
			Low:    decimal.NewFromFloat(agg.Low),
			Close:  decimal.NewFromFloat(agg.Close),
			Volume: int64(agg.Volume),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, s.classify("history", symbol, fmt.Errorf("error iterating polygon aggregates: %w", err))
	}

	return buildSeries(s.Name(), symbol, bars, start, end)
}

// GetInfo returns Polygon ticker details as company info
func (s *PolygonService) GetInfo(ctx context.Context, symbol string) (*models.CompanyInfo, error) {
	symbol = normalizeSymbol(symbol)
	if symbol == "" {
		return nil, NotFound(s.Name(), "info", symbol, errors.New("empty symbol"))
	}

	resp, err := s.apiClient.GetTickerDetails(ctx, &pmodels.GetTickerDetailsParams{Ticker: symbol})
	if err != nil {
		return nil, s.classify("info", symbol, fmt.Errorf("failed to get ticker details: %w", err))
	}

	fields := map[string]any{}
	if raw, err := json.Marshal(resp.Results); err == nil {
		_ = json.Unmarshal(raw, &fields)
	}

	return &models.CompanyInfo{
		Symbol:    symbol,
		ShortName: resp.Results.Name,
		Exchange:  resp.Results.PrimaryExchange,
		Currency:  resp.Results.CurrencyName,
		Fields:    fields,
	}, nil
}

func (s *PolygonService) classify(op, symbol string, err error) error {
	var errResp *pmodels.ErrorResponse
	if errors.As(err, &errResp) && statusKind(errResp.StatusCode) == KindNotFound {
		return NotFound(s.Name(), op, symbol, err)
	}
	return Transient(s.Name(), op, symbol, err)
}
