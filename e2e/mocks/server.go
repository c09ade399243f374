// Package mocks provides HTTP mock servers for the market data APIs used in E2E tests.
package mocks

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// easternOffset is the gmtoffset the mock reports (EDT)
const easternOffset = -4 * 60 * 60

// marketOpen is 09:30 EDT expressed in UTC
const marketOpen = 13*time.Hour + 30*time.Minute

// MockServer provides configurable mock responses for the Yahoo chart and
// Alpha Vantage query APIs.
type MockServer struct {
	mu     sync.RWMutex
	server *httptest.Server

	// Response configurations
	symbols map[string]SymbolFixture
	now     func() time.Time

	// Error injection
	yahooStatus       int
	yahooFailures     int
	alphaVantageNote  string
	alphaVantageError string

	// Request tracking for assertions
	requestLog []RequestLog
}

// RequestLog records incoming requests for test assertions.
type RequestLog struct {
	Method string
	Path   string
	Query  string
}

// NewMockServer creates a new mock server with default responses.
func NewMockServer() *MockServer {
	m := &MockServer{
		symbols:    make(map[string]SymbolFixture),
		now:        time.Now,
		requestLog: make([]RequestLog, 0),
	}
	m.setDefaults()
	m.server = httptest.NewServer(m)
	return m
}

// URL returns the mock server's base URL.
func (m *MockServer) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockServer) Close() {
	m.server.Close()
}

// ServeHTTP implements http.Handler to route requests to appropriate mock handlers.
func (m *MockServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.requestLog = append(m.requestLog, RequestLog{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
	})
	m.mu.Unlock()

	path := r.URL.Path

	switch {
	case strings.HasPrefix(path, "/v8/finance/chart/"):
		m.handleYahooChart(w, r, strings.TrimPrefix(path, "/v8/finance/chart/"))
	case path == "/query":
		m.handleAlphaVantage(w, r)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// GetRequestLog returns all logged requests for assertions.
func (m *MockServer) GetRequestLog() []RequestLog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]RequestLog{}, m.requestLog...)
}

// CountRequests returns how many logged requests had a path containing fragment.
func (m *MockServer) CountRequests(fragment string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, r := range m.requestLog {
		if strings.Contains(r.Path, fragment) || strings.Contains(r.Query, fragment) {
			n++
		}
	}
	return n
}

// ClearRequestLog clears the request log.
func (m *MockServer) ClearRequestLog() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestLog = make([]RequestLog, 0)
}

// SetSymbol adds or replaces a listed symbol.
func (m *MockServer) SetSymbol(f SymbolFixture) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.symbols[f.Symbol] = f
}

// RemoveSymbol delists a symbol so that it answers Not Found.
func (m *MockServer) RemoveSymbol(symbol string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.symbols, symbol)
}

// SetNow sets the day the Alpha Vantage daily series ends on.
func (m *MockServer) SetNow(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = func() time.Time { return now }
}

// SetYahooError makes the next failures chart requests answer with status.
// failures <= 0 fails every request until cleared with status 0.
func (m *MockServer) SetYahooError(status, failures int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.yahooStatus = status
	m.yahooFailures = failures
}

// SetAlphaVantageNote configures Alpha Vantage to answer with a rate-limit note.
func (m *MockServer) SetAlphaVantageNote(note string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alphaVantageNote = note
}

// SetAlphaVantageError configures Alpha Vantage to answer with an error message.
func (m *MockServer) SetAlphaVantageError(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alphaVantageError = msg
}

func (m *MockServer) setDefaults() {
	defaults := []SymbolFixture{
		{Symbol: "AAPL", ShortName: "Apple Inc.", LongName: "Apple Inc.", Exchange: "NasdaqGS", Sector: "Technology", BasePrice: 150, Step: 0.5},
		{Symbol: "MSFT", ShortName: "Microsoft Corporation", LongName: "Microsoft Corporation", Exchange: "NasdaqGS", Sector: "Technology", BasePrice: 300, Step: 0.8},
		{Symbol: "GOOGL", ShortName: "Alphabet Inc.", LongName: "Alphabet Inc.", Exchange: "NasdaqGS", Sector: "Communication Services", BasePrice: 120, Step: 0.2},
		{Symbol: "AMZN", ShortName: "Amazon.com, Inc.", LongName: "Amazon.com, Inc.", Exchange: "NasdaqGS", Sector: "Consumer Cyclical", BasePrice: 130, Step: 0.3},
		{Symbol: "TSLA", ShortName: "Tesla, Inc.", LongName: "Tesla, Inc.", Exchange: "NasdaqGS", Sector: "Consumer Cyclical", BasePrice: 200, Step: -0.4},
		{Symbol: "NVDA", ShortName: "NVIDIA Corporation", LongName: "NVIDIA Corporation", Exchange: "NasdaqGS", Sector: "Technology", BasePrice: 400, Step: 2},
	}
	for _, f := range defaults {
		f.Currency = "USD"
		m.symbols[f.Symbol] = f
	}
}

func (m *MockServer) lookup(symbol string) (SymbolFixture, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.symbols[symbol]
	return f, ok
}

// injectedYahooStatus consumes one injected failure, returning 0 when none is pending.
func (m *MockServer) injectedYahooStatus() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.yahooStatus == 0 {
		return 0
	}
	status := m.yahooStatus
	if m.yahooFailures > 0 {
		m.yahooFailures--
		if m.yahooFailures == 0 {
			m.yahooStatus = 0
		}
	}
	return status
}

func (m *MockServer) handleYahooChart(w http.ResponseWriter, r *http.Request, symbol string) {
	if status := m.injectedYahooStatus(); status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}

	f, ok := m.lookup(symbol)
	if !ok {
		writeJSON(w, http.StatusNotFound, YahooChartResponse{Chart: YahooChart{
			Error: &YahooChartError{Code: "Not Found", Description: "No data found, symbol may be delisted"},
		}})
		return
	}

	result := YahooChartResult{
		Meta: YahooMeta{
			Symbol:           f.Symbol,
			ShortName:        f.ShortName,
			LongName:         f.LongName,
			Currency:         f.Currency,
			ExchangeName:     "NMS",
			FullExchangeName: f.Exchange,
			GMTOffset:        easternOffset,
			InstrumentType:   "EQUITY",
		},
		Indicators: YahooIndicators{Quote: []YahooQuote{{}}},
	}

	q := r.URL.Query()
	if q.Get("period1") != "" {
		start, err1 := strconv.ParseInt(q.Get("period1"), 10, 64)
		end, err2 := strconv.ParseInt(q.Get("period2"), 10, 64)
		if err1 != nil || err2 != nil {
			writeJSON(w, http.StatusBadRequest, YahooChartResponse{Chart: YahooChart{
				Error: &YahooChartError{Code: "Bad Request", Description: "invalid period"},
			}})
			return
		}
		quote := &result.Indicators.Quote[0]
		for i, day := range weekdays(time.Unix(start, 0).UTC(), time.Unix(end, 0).UTC()) {
			price := f.BasePrice + f.Step*float64(i)
			open, high, low, cl := price, price+1, price-1, price
			vol := int64(1_000_000 + i*1000)
			result.Timestamp = append(result.Timestamp, day.Add(marketOpen).Unix())
			quote.Open = append(quote.Open, &open)
			quote.High = append(quote.High, &high)
			quote.Low = append(quote.Low, &low)
			quote.Close = append(quote.Close, &cl)
			quote.Volume = append(quote.Volume, &vol)
		}
	}

	writeJSON(w, http.StatusOK, YahooChartResponse{Chart: YahooChart{Result: []YahooChartResult{result}}})
}

func (m *MockServer) handleAlphaVantage(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	note, errMsg, now := m.alphaVantageNote, m.alphaVantageError, m.now()
	m.mu.RUnlock()

	if note != "" {
		writeJSON(w, http.StatusOK, map[string]string{"Note": note})
		return
	}
	if errMsg != "" {
		writeJSON(w, http.StatusOK, map[string]string{"Error Message": errMsg})
		return
	}

	q := r.URL.Query()
	f, ok := m.lookup(q.Get("symbol"))

	switch q.Get("function") {
	case "OVERVIEW":
		if !ok {
			writeJSON(w, http.StatusOK, map[string]string{})
			return
		}
		writeJSON(w, http.StatusOK, AlphaVantageOverview{
			Symbol:    f.Symbol,
			Name:      f.LongName,
			Exchange:  "NASDAQ",
			Currency:  f.Currency,
			Country:   "USA",
			Sector:    f.Sector,
			MarketCap: "1000000000000",
			PERatio:   "25.5",
		})
	case "TIME_SERIES_DAILY":
		if !ok {
			writeJSON(w, http.StatusOK, map[string]string{"Error Message": "Invalid API call. Please retry or visit the documentation."})
			return
		}
		// full output covers roughly twenty years, compact the last 100 sessions
		end := now.UTC().Truncate(24 * time.Hour)
		start := end.AddDate(-20, 0, 0)
		days := weekdays(start, end.AddDate(0, 0, 1))
		if q.Get("outputsize") != "full" && len(days) > 100 {
			days = days[len(days)-100:]
		}
		daily := AlphaVantageDaily{TimeSeries: make(map[string]AlphaVantageDailyBar, len(days))}
		for i, day := range days {
			price := f.BasePrice + f.Step*float64(i%500)
			daily.TimeSeries[day.Format(time.DateOnly)] = AlphaVantageDailyBar{
				Open:   fmt.Sprintf("%.4f", price),
				High:   fmt.Sprintf("%.4f", price+1),
				Low:    fmt.Sprintf("%.4f", price-1),
				Close:  fmt.Sprintf("%.4f", price),
				Volume: strconv.Itoa(1_000_000 + i),
			}
		}
		writeJSON(w, http.StatusOK, daily)
	default:
		writeJSON(w, http.StatusOK, map[string]string{"Error Message": "unsupported function"})
	}
}

// weekdays returns the UTC midnights of weekdays in [start, end)
func weekdays(start, end time.Time) []time.Time {
	var days []time.Time
	d := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	for ; d.Before(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		days = append(days, d)
	}
	return days
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
