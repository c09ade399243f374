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

	"github.com/shopspring/decimal"
)

// DefaultYahooBaseURL is the public Yahoo Finance chart endpoint host
const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooService reads daily history and quote metadata from the Yahoo Finance chart API
type YahooService struct {
	httpClient *http.Client
	baseURL    string
}

// NewYahooService creates a YahooService. An empty baseURL selects DefaultYahooBaseURL.
func NewYahooService(baseURL string, timeout time.Duration) *YahooService {
	if baseURL == "" {
		baseURL = DefaultYahooBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &YahooService{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

// Name returns the provider name
func (s *YahooService) Name() string { return BreakerYahoo }

// yahooChart is the response structure of the v8 chart endpoint
type yahooChart struct {
	Chart struct {
		Result []yahooChartResult `json:"result"`
		Error  *yahooChartError   `json:"error"`
	} `json:"chart"`
}

type yahooChartResult struct {
	Meta       json.RawMessage `json:"meta"`
	Timestamp  []int64         `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*int64   `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

type yahooChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// yahooMeta is the subset of chart metadata mapped onto CompanyInfo
type yahooMeta struct {
	Symbol           string `json:"symbol"`
	ShortName        string `json:"shortName"`
	LongName         string `json:"longName"`
	Currency         string `json:"currency"`
	ExchangeName     string `json:"exchangeName"`
	FullExchangeName string `json:"fullExchangeName"`
	GMTOffset        int64  `json:"gmtoffset"`
}

// GetHistory returns daily bars for symbol between start and end inclusive
func (s *YahooService) GetHistory(ctx context.Context, symbol string, start, end time.Time) (*models.PriceSeries, error) {
	symbol = normalizeSymbol(symbol)

	params := url.Values{}
	params.Set("period1", strconv.FormatInt(start.Unix(), 10))
	// period2 is exclusive
	params.Set("period2", strconv.FormatInt(end.AddDate(0, 0, 1).Unix(), 10))
	params.Set("interval", "1d")
	params.Set("events", "history")

	result, err := s.fetchChart(ctx, "history", symbol, params)
	if err != nil {
		return nil, err
	}

	var meta yahooMeta
	if len(result.Meta) > 0 {
		if err := json.Unmarshal(result.Meta, &meta); err != nil {
			return nil, Transient(s.Name(), "history", symbol, fmt.Errorf("failed to decode chart meta: %w", err))
		}
	}
	if len(result.Indicators.Quote) == 0 {
		return nil, EmptyResult(s.Name(), "history", symbol, nil)
	}

	quote := result.Indicators.Quote[0]
	bars := make([]models.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		open, high, low, cl := at(quote.Open, i), at(quote.High, i), at(quote.Low, i), at(quote.Close, i)
		// null rows are holidays or halted sessions
		if cl == nil {
			continue
		}
		bar := models.Bar{
			Date:  time.Unix(ts+meta.GMTOffset, 0).UTC(),
			Close: decimal.NewFromFloat(*cl),
		}
		bar.Open = valueOr(open, bar.Close)
		bar.High = valueOr(high, bar.Close)
		bar.Low = valueOr(low, bar.Close)
		if v := at(quote.Volume, i); v != nil {
			bar.Volume = *v
		}
		bars = append(bars, bar)
	}

	return buildSeries(s.Name(), symbol, bars, start, end)
}

// GetInfo returns the chart metadata for symbol as company info
func (s *YahooService) GetInfo(ctx context.Context, symbol string) (*models.CompanyInfo, error) {
	symbol = normalizeSymbol(symbol)

	params := url.Values{}
	params.Set("range", "1d")
	params.Set("interval", "1d")

	result, err := s.fetchChart(ctx, "info", symbol, params)
	if err != nil {
		return nil, err
	}

	var meta yahooMeta
	fields := map[string]any{}
	if len(result.Meta) > 0 {
		if err := json.Unmarshal(result.Meta, &meta); err != nil {
			return nil, Transient(s.Name(), "info", symbol, fmt.Errorf("failed to decode chart meta: %w", err))
		}
		if err := json.Unmarshal(result.Meta, &fields); err != nil {
			return nil, Transient(s.Name(), "info", symbol, fmt.Errorf("failed to decode chart meta: %w", err))
		}
	}

	shortName := meta.ShortName
	if shortName == "" {
		shortName = meta.LongName
	}
	exchange := meta.FullExchangeName
	if exchange == "" {
		exchange = meta.ExchangeName
	}

	return &models.CompanyInfo{
		Symbol:    symbol,
		ShortName: shortName,
		Exchange:  exchange,
		Currency:  meta.Currency,
		Fields:    fields,
	}, nil
}

func (s *YahooService) fetchChart(ctx context.Context, op, symbol string, params url.Values) (*yahooChartResult, error) {
	if symbol == "" {
		return nil, NotFound(s.Name(), op, symbol, errors.New("empty symbol"))
	}

	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", s.baseURL, url.PathEscape(symbol), params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, NotFound(s.Name(), op, symbol, fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, Transient(s.Name(), op, symbol, fmt.Errorf("failed to fetch chart: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Transient(s.Name(), op, symbol, fmt.Errorf("failed to read chart: %w", err))
	}

	var chart yahooChart
	decodeErr := json.Unmarshal(body, &chart)

	if chart.Chart.Error != nil {
		apiErr := fmt.Errorf("chart error %s: %s", chart.Chart.Error.Code, chart.Chart.Error.Description)
		if chart.Chart.Error.Code == "Not Found" || statusKind(resp.StatusCode) == KindNotFound {
			return nil, NotFound(s.Name(), op, symbol, apiErr)
		}
		return nil, Transient(s.Name(), op, symbol, apiErr)
	}
	if resp.StatusCode != http.StatusOK {
		statusErr := fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(string(body), 200))
		if statusKind(resp.StatusCode) == KindNotFound {
			return nil, NotFound(s.Name(), op, symbol, statusErr)
		}
		return nil, Transient(s.Name(), op, symbol, statusErr)
	}
	if decodeErr != nil {
		return nil, Transient(s.Name(), op, symbol, fmt.Errorf("failed to decode chart: %w", decodeErr))
	}
	if len(chart.Chart.Result) == 0 {
		return nil, NotFound(s.Name(), op, symbol, errors.New("no chart result"))
	}

	return &chart.Chart.Result[0], nil
}

func at[T any](values []*T, i int) *T {
	if i < len(values) {
		return values[i]
	}
	return nil
}

func valueOr(v *float64, fallback decimal.Decimal) decimal.Decimal {
	if v == nil {
		return fallback
	}
	return decimal.NewFromFloat(*v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
