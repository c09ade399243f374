package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"stock-viewer/models"
	"stock-viewer/observability"

	"github.com/shopspring/decimal"
)

// DefaultAlphaVantageBaseURL is the Alpha Vantage query endpoint
const DefaultAlphaVantageBaseURL = "https://www.alphavantage.co/query"

// AlphaVantageService handles communication with Alpha Vantage API
type AlphaVantageService struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewAlphaVantageService creates a new AlphaVantageService instance
func NewAlphaVantageService(apiKey, baseURL string, timeout time.Duration) *AlphaVantageService {
	if baseURL == "" {
		baseURL = DefaultAlphaVantageBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AlphaVantageService{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

// Name returns the provider name
func (s *AlphaVantageService) Name() string { return BreakerAlphaVantage }

// OverviewResponse represents the company overview response from Alpha Vantage
type OverviewResponse struct {
	Symbol      string `json:"Symbol"`
	Name        string `json:"Name"`
	Description string `json:"Description"`
	Exchange    string `json:"Exchange"`
	Currency    string `json:"Currency"`
	Country     string `json:"Country"`
	Sector      string `json:"Sector"`
	Industry    string `json:"Industry"`
	MarketCap   string `json:"MarketCapitalization"`
	PERatio     string `json:"PERatio"`
	Week52High  string `json:"52WeekHigh"`
	Week52Low   string `json:"52WeekLow"`
}

// DailySeriesResponse represents a TIME_SERIES_DAILY response
type DailySeriesResponse struct {
	TimeSeries map[string]DailyBar `json:"Time Series (Daily)"`
}

// DailyBar is one day of a TIME_SERIES_DAILY response
type DailyBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

// apiMessages are the in-band error fields Alpha Vantage returns with status 200
type apiMessages struct {
	ErrorMessage string `json:"Error Message"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`
}

// GetHistory returns daily bars for symbol between start and end inclusive
func (s *AlphaVantageService) GetHistory(ctx context.Context, symbol string, start, end time.Time) (*models.PriceSeries, error) {
	symbol = normalizeSymbol(symbol)

	params := url.Values{}
	params.Set("function", "TIME_SERIES_DAILY")
	params.Set("symbol", symbol)
	params.Set("outputsize", outputSize(start, end))

	body, err := s.query(ctx, "history", symbol, params)
	if err != nil {
		return nil, err
	}

	var daily DailySeriesResponse
	if err := json.Unmarshal(body, &daily); err != nil {
		return nil, Transient(s.Name(), "history", symbol, fmt.Errorf("failed to decode daily series: %w", err))
	}
	if daily.TimeSeries == nil {
		return nil, NotFound(s.Name(), "history", symbol, errors.New("response has no daily series"))
	}

	bars := make([]models.Bar, 0, len(daily.TimeSeries))
	for day, raw := range daily.TimeSeries {
		date, err := time.Parse(time.DateOnly, day)
		if err != nil {
			observability.Warn("skipping unparseable date", "provider", s.Name(), "symbol", symbol, "date", day)
			continue
		}
		closePrice, err := decimal.NewFromString(raw.Close)
		if err != nil {
			observability.Warn("skipping bar without close", "provider", s.Name(), "symbol", symbol, "date", day)
			continue
		}
		bar := models.Bar{Date: date, Close: closePrice}
		bar.Open = decimalOr(raw.Open, closePrice)
		bar.High = decimalOr(raw.High, closePrice)
		bar.Low = decimalOr(raw.Low, closePrice)
		if raw.Volume != "" {
			bar.Volume, err = strconv.ParseInt(raw.Volume, 10, 64)
			if err != nil {
				observability.Warn("failed to parse volume", "provider", s.Name(), "symbol", symbol, "volume", raw.Volume)
			}
		}
		bars = append(bars, bar)
	}

	return buildSeries(s.Name(), symbol, bars, start, end)
}

// GetInfo returns company overview data for a symbol
func (s *AlphaVantageService) GetInfo(ctx context.Context, symbol string) (*models.CompanyInfo, error) {
	symbol = normalizeSymbol(symbol)

	params := url.Values{}
	params.Set("function", "OVERVIEW")
	params.Set("symbol", symbol)

	body, err := s.query(ctx, "info", symbol, params)
	if err != nil {
		return nil, err
	}

	var overview OverviewResponse
	if err := json.Unmarshal(body, &overview); err != nil {
		return nil, Transient(s.Name(), "info", symbol, fmt.Errorf("failed to decode overview: %w", err))
	}
	// unknown symbols come back as an empty object
	if overview.Symbol == "" {
		return nil, NotFound(s.Name(), "info", symbol, errors.New("empty overview"))
	}

	fields := map[string]any{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, Transient(s.Name(), "info", symbol, fmt.Errorf("failed to decode overview: %w", err))
	}

	return &models.CompanyInfo{
		Symbol:    symbol,
		ShortName: overview.Name,
		Exchange:  overview.Exchange,
		Currency:  overview.Currency,
		Fields:    fields,
	}, nil
}

// query performs one API call and classifies transport and in-band errors
func (s *AlphaVantageService) query(ctx context.Context, op, symbol string, params url.Values) ([]byte, error) {
	if symbol == "" {
		return nil, NotFound(s.Name(), op, symbol, errors.New("empty symbol"))
	}
	params.Set("apikey", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, NotFound(s.Name(), op, symbol, fmt.Errorf("failed to build request: %w", err))
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, Transient(s.Name(), op, symbol, fmt.Errorf("failed to fetch %s: %w", params.Get("function"), err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Transient(s.Name(), op, symbol, fmt.Errorf("failed to read response: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		statusErr := fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(string(body), 200))
		if statusKind(resp.StatusCode) == KindNotFound {
			return nil, NotFound(s.Name(), op, symbol, statusErr)
		}
		return nil, Transient(s.Name(), op, symbol, statusErr)
	}

	var msgs apiMessages
	if err := json.Unmarshal(body, &msgs); err == nil {
		switch {
		case msgs.ErrorMessage != "":
			return nil, NotFound(s.Name(), op, symbol, errors.New(msgs.ErrorMessage))
		case msgs.Note != "":
			return nil, Transient(s.Name(), op, symbol, errors.New(msgs.Note))
		case msgs.Information != "":
			return nil, Transient(s.Name(), op, symbol, errors.New(msgs.Information))
		}
	}

	return body, nil
}

// outputSize picks "compact" (latest 100 sessions) when the range fits in it.
// end is the render's now, so the range is measured back from it.
func outputSize(start, end time.Time) string {
	if span := end.Sub(start); span >= 0 && span < 130*24*time.Hour {
		return "compact"
	}
	return "full"
}

func decimalOr(s string, fallback decimal.Decimal) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fallback
	}
	return d
}
