// Package e2e provides end-to-end testing infrastructure for stock-viewer.
package e2e

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stock-viewer/config"
	"stock-viewer/e2e/mocks"
	"stock-viewer/internal/api"
	"stock-viewer/internal/app"
	"stock-viewer/observability"

	"github.com/prometheus/client_golang/prometheus"
)

// FixedNow is the clock every harness renders against
var FixedNow = time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC)

// TestHarness provides the infrastructure for running E2E tests.
type TestHarness struct {
	t          *testing.T
	ctx        context.Context
	cancel     context.CancelFunc
	mockServer *mocks.MockServer
	app        *app.App
	router     http.Handler
	config     *config.Config
	provider   string
}

// Option configures a TestHarness
type Option func(*TestHarness)

// WithProvider selects the market data provider served by the mock server
func WithProvider(name string) Option {
	return func(h *TestHarness) {
		h.provider = name
	}
}

// NewTestHarness creates a new test harness with all dependencies initialized.
func NewTestHarness(t *testing.T, opts ...Option) *TestHarness {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)

	h := &TestHarness{
		t:        t,
		ctx:      ctx,
		cancel:   cancel,
		provider: config.ProviderYahoo,
	}
	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Setup initializes all test dependencies.
func (h *TestHarness) Setup() error {
	// Start mock server for external APIs
	h.mockServer = mocks.NewMockServer()
	h.mockServer.SetNow(FixedNow)

	// Create test configuration
	h.config = h.createTestConfig()

	observability.InitLogger(false)
	observability.SetMetrics(observability.NewMetrics(prometheus.NewRegistry()))

	// Create application
	var err error
	h.app, err = app.NewFromConfig(h.config)
	if err != nil {
		return err
	}
	h.app.SetClock(func() time.Time { return FixedNow })

	// Create router
	handler := api.NewHandler(h.app, h.config)
	h.router = api.NewRouter(handler, h.config)

	return nil
}

// Teardown cleans up all test resources.
func (h *TestHarness) Teardown() {
	if h.cancel != nil {
		h.cancel()
	}

	if h.mockServer != nil {
		h.mockServer.Close()
	}
}

// Context returns the test context.
func (h *TestHarness) Context() context.Context {
	return h.ctx
}

// MockServer returns the mock server for configuring responses.
func (h *TestHarness) MockServer() *mocks.MockServer {
	return h.mockServer
}

// App returns the application instance.
func (h *TestHarness) App() *app.App {
	return h.app
}

// Router returns the HTTP router for making requests.
func (h *TestHarness) Router() http.Handler {
	return h.router
}

// Config returns the test configuration.
func (h *TestHarness) Config() *config.Config {
	return h.config
}

// DoRequest performs an HTTP request and returns the response.
func (h *TestHarness) DoRequest(method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

// DoHTMXRequest performs an HTMX request and returns the response.
func (h *TestHarness) DoHTMXRequest(method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("HX-Request", "true")

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *TestHarness) createTestConfig() *config.Config {
	mockURL := h.mockServer.URL()

	// Create a test config with mock server URLs
	cfg := config.NewTestConfig()
	cfg.Provider.Name = h.provider
	cfg.Provider.TimeoutSeconds = 5
	cfg.Yahoo.BaseURL = mockURL
	cfg.AlphaVantage.BaseURL = strings.TrimSuffix(mockURL, "/") + "/query"
	cfg.AlphaVantage.APIKey = "test-key"

	// Keep retries quick
	cfg.Resilience.InitialBackoffMillis = 1
	cfg.Resilience.MaxBackoffMillis = 5
	cfg.HTTP.RequestTimeoutSeconds = 10

	return cfg
}
