//go:build e2e
// +build e2e

package scenarios

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"stock-viewer/config"
	"stock-viewer/e2e"
)

type tickerRow struct {
	Date    string   `json:"date"`
	Close   string   `json:"close"`
	EMAFast *float64 `json:"ema_fast"`
	EMASlow *float64 `json:"ema_slow"`
	RSI     *float64 `json:"rsi"`
	MACD    *float64 `json:"macd"`
}

type tickerResponse struct {
	Symbol string `json:"symbol"`
	Period string `json:"period"`
	Window struct {
		FetchStart   string `json:"fetch_start"`
		DisplayStart string `json:"display_start"`
		End          string `json:"end"`
	} `json:"window"`
	Info struct {
		ShortName string `json:"short_name"`
	} `json:"info"`
	Columns []string    `json:"columns"`
	Rows    []tickerRow `json:"rows"`
	Recent  []tickerRow `json:"recent"`
	Latest  struct {
		Change *string `json:"change"`
	} `json:"latest"`
}

func setup(t *testing.T, opts ...e2e.Option) *e2e.TestHarness {
	t.Helper()
	harness := e2e.NewTestHarness(t, opts...)
	if err := harness.Setup(); err != nil {
		t.Fatalf("failed to setup test harness: %v", err)
	}
	t.Cleanup(harness.Teardown)
	return harness
}

func TestTickerPage_FullStack(t *testing.T) {
	for _, provider := range []string{config.ProviderYahoo, config.ProviderAlphaVantage} {
		t.Run(provider, func(t *testing.T) {
			harness := setup(t, e2e.WithProvider(provider))

			resp := harness.DoRequest(http.MethodGet, "/api/ticker/AAPL?period=3mo&variant=full")
			if resp.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
			}

			var page tickerResponse
			if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}

			if page.Symbol != "AAPL" {
				t.Errorf("expected symbol AAPL, got %s", page.Symbol)
			}
			if page.Info.ShortName == "" {
				t.Error("expected company short name")
			}
			if len(page.Rows) == 0 {
				t.Fatal("expected rows")
			}
			if page.Rows[0].Date < page.Window.DisplayStart {
				t.Errorf("first row %s precedes display start %s", page.Rows[0].Date, page.Window.DisplayStart)
			}
			// warm-up history covers EMA 20 and RSI 14 from the first displayed row
			first := page.Rows[0]
			if first.EMAFast == nil || first.RSI == nil || first.MACD == nil {
				t.Errorf("expected warm indicators on first displayed row, got %+v", first)
			}
			if len(page.Recent) != harness.Config().Dashboard.RecentRows {
				t.Errorf("expected %d recent rows, got %d", harness.Config().Dashboard.RecentRows, len(page.Recent))
			}
			if page.Latest.Change == nil {
				t.Error("expected a latest change with more than one row")
			}
		})
	}
}

func TestTickerPage_HTMXPartial(t *testing.T) {
	harness := setup(t)

	resp := harness.DoHTMXRequest(http.MethodGet, "/?symbol=MSFT&period=6mo&variant=technical")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	body := resp.Body.String()
	if strings.Contains(body, "<html") {
		t.Error("HTMX request should receive a partial")
	}
	for _, want := range []string{"Microsoft Corporation (MSFT)", "ticker-chart-data", "rsi-chart"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected partial to contain %q", want)
		}
	}
	if strings.Contains(body, "macd-chart") {
		t.Error("technical variant should not render the MACD chart")
	}
}

func TestTickerPage_NotFound(t *testing.T) {
	harness := setup(t)
	harness.MockServer().RemoveSymbol("TSLA")

	resp := harness.DoHTMXRequest(http.MethodGet, "/?symbol=TSLA&period=1y")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}

	body := resp.Body.String()
	if !strings.Contains(body, "error-state") {
		t.Error("expected error state")
	}
	if strings.Contains(body, "ticker-chart-data") {
		t.Error("failed render must not include chart data")
	}

	// not found is not retried
	if n := harness.MockServer().CountRequests("TSLA"); n > 2 {
		t.Errorf("expected at most one request per fetch, got %d", n)
	}
}

func TestTickerPage_TransientRecovers(t *testing.T) {
	harness := setup(t)
	harness.MockServer().SetYahooError(http.StatusServiceUnavailable, 2)

	resp := harness.DoRequest(http.MethodGet, "/api/ticker/AAPL?period=1mo")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected retries to recover, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestTickerPage_TransientExhausted(t *testing.T) {
	harness := setup(t)
	harness.MockServer().SetYahooError(http.StatusServiceUnavailable, 0)

	resp := harness.DoRequest(http.MethodGet, "/api/ticker/AAPL?period=1mo")
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d: %s", resp.Code, resp.Body.String())
	}

	var errResp map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if errResp["error"] == "" {
		t.Error("expected error message")
	}
}

func TestTickerPage_AlphaVantageRateLimited(t *testing.T) {
	harness := setup(t, e2e.WithProvider(config.ProviderAlphaVantage))
	harness.MockServer().SetAlphaVantageNote("Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute.")

	resp := harness.DoRequest(http.MethodGet, "/api/ticker/AAPL?period=1mo")
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", resp.Code)
	}
}

func TestComparison_FullStack(t *testing.T) {
	harness := setup(t)

	resp := harness.DoRequest(http.MethodGet, "/api/compare?tickers=AAPL,MSFT,NVDA&period=1y")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var page struct {
		Symbols []string `json:"symbols"`
		Dates   []string `json:"dates"`
		Series  []struct {
			Symbol string     `json:"symbol"`
			Values []*float64 `json:"values"`
		} `json:"series"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(page.Series) != 3 {
		t.Fatalf("expected 3 series, got %d", len(page.Series))
	}
	for _, s := range page.Series {
		if len(s.Values) != len(page.Dates) {
			t.Errorf("%s: expected %d values, got %d", s.Symbol, len(page.Dates), len(s.Values))
		}
		if len(s.Values) == 0 || s.Values[0] == nil || *s.Values[0] != 100 {
			t.Errorf("%s: expected series to start at 100", s.Symbol)
		}
	}
}

func TestComparison_NoSelection(t *testing.T) {
	harness := setup(t)

	resp := harness.DoHTMXRequest(http.MethodGet, "/compare?tickers=&period=1y")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "Select at least one ticker") {
		t.Error("expected selection notice")
	}
	if n := harness.MockServer().CountRequests("/v8/finance/chart/"); n != 0 {
		t.Errorf("expected no provider requests, got %d", n)
	}
}

func TestWindowEndpoint(t *testing.T) {
	harness := setup(t)

	resp := harness.DoRequest(http.MethodGet, "/api/window?period=1mo&now=2024-06-01")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	var win map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&win); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !strings.HasPrefix(win["display_start"].(string), "2024-05-02") {
		t.Errorf("unexpected display start %v", win["display_start"])
	}

	resp = harness.DoRequest(http.MethodGet, "/api/window?period=3d")
	if resp.Code != http.StatusBadRequest {
		t.Errorf("expected unmapped period to be rejected, got %d", resp.Code)
	}
}

func TestHealth_ReflectsProvider(t *testing.T) {
	harness := setup(t)

	resp := harness.DoRequest(http.MethodGet, "/api/health")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
}
