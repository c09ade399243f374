package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"stock-viewer/models"
	"stock-viewer/window"
)

// Supported market data providers
const (
	ProviderYahoo        = "yahoo"
	ProviderAlphaVantage = "alphavantage"
	ProviderAlpaca       = "alpaca"
	ProviderPolygon      = "polygon"
)

// Page variants of the single-ticker dashboard
const (
	VariantBasic     = "basic"
	VariantTechnical = "technical"
	VariantFull      = "full"
)

// Config holds all application configuration
type Config struct {
	// Market data provider selection and credentials
	Provider     ProviderConfig
	Yahoo        YahooConfig
	AlphaVantage AlphaVantageConfig
	Alpaca       AlpacaConfig
	Polygon      PolygonConfig

	// Dashboard computation
	Window     WindowConfig
	Indicators IndicatorConfig
	Dashboard  DashboardConfig

	Resilience ResilienceConfig
	HTTP       HTTPConfig
	Log        LogConfig
}

// ProviderConfig selects the market data provider
type ProviderConfig struct {
	Name                  string
	TimeoutSeconds        int
	Concurrency           int
	HealthCacheTTLSeconds int
	ProbeSymbol           string
}

// YahooConfig holds Yahoo Finance configuration
type YahooConfig struct {
	BaseURL string
}

// AlphaVantageConfig holds Alpha Vantage API configuration
type AlphaVantageConfig struct {
	APIKey  string
	BaseURL string
}

// AlpacaConfig holds Alpaca API configuration
type AlpacaConfig struct {
	APIKey    string
	APISecret string
	BaseURL   string
	Feed      string
}

// PolygonConfig holds Polygon.io API configuration
type PolygonConfig struct {
	APIKey string
}

// WindowConfig controls the date window resolver
type WindowConfig struct {
	WarmupDays int `yaml:"warmup_days"`
}

// IndicatorConfig holds indicator lengths
type IndicatorConfig struct {
	EMAFast    int `yaml:"ema_fast"`
	EMASlow    int `yaml:"ema_slow"`
	RSI        int `yaml:"rsi"`
	MACDFast   int `yaml:"macd_fast"`
	MACDSlow   int `yaml:"macd_slow"`
	MACDSignal int `yaml:"macd_signal"`
}

// DashboardConfig holds the page allow-lists and defaults
type DashboardConfig struct {
	Tickers              []string `yaml:"tickers"`
	CompareTickers       []string `yaml:"compare_tickers"`
	CompareDefaults      []string `yaml:"compare_defaults"`
	ComparePeriods       []string `yaml:"compare_periods"`
	DefaultPeriod        string   `yaml:"default_period"`
	DefaultComparePeriod string   `yaml:"default_compare_period"`
	DefaultVariant       string   `yaml:"default_variant"`
	RecentRows           int      `yaml:"recent_rows"`
}

// ResilienceConfig holds retry and circuit breaker settings
type ResilienceConfig struct {
	MaxRetries             int
	InitialBackoffMillis   int
	MaxBackoffMillis       int
	BreakerMaxRequests     int
	BreakerIntervalSeconds int
	BreakerTimeoutSeconds  int
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Port                  string
	CORSAllowedOrigins    string
	RequestTimeoutSeconds int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string
	Production bool
}

// fileConfig is the YAML overlay document
type fileConfig struct {
	Window     WindowConfig    `yaml:"window"`
	Indicators IndicatorConfig `yaml:"indicators"`
	Dashboard  DashboardConfig `yaml:"dashboard"`
}

// Load builds configuration from defaults, the optional CONFIG_FILE YAML
// overlay and environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFile overlays the window, indicator and dashboard sections from a YAML file.
// Keys absent from the file keep their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	doc := fileConfig{Window: c.Window, Indicators: c.Indicators, Dashboard: c.Dashboard}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.Window = doc.Window
	c.Indicators = doc.Indicators
	c.Dashboard = doc.Dashboard
	return nil
}

func (c *Config) applyEnv() {
	c.Provider = ProviderConfig{
		Name:                  strings.ToLower(getEnvString("MARKET_DATA_PROVIDER", c.Provider.Name)),
		TimeoutSeconds:        getEnvInt("PROVIDER_TIMEOUT_SECONDS", c.Provider.TimeoutSeconds),
		Concurrency:           getEnvInt("PROVIDER_CONCURRENCY", c.Provider.Concurrency),
		HealthCacheTTLSeconds: getEnvInt("PROVIDER_HEALTH_CACHE_TTL_SECONDS", c.Provider.HealthCacheTTLSeconds),
		ProbeSymbol:           getEnvString("PROVIDER_PROBE_SYMBOL", c.Provider.ProbeSymbol),
	}
	c.Yahoo.BaseURL = getEnvString("YAHOO_BASE_URL", c.Yahoo.BaseURL)
	c.AlphaVantage = AlphaVantageConfig{
		APIKey:  getEnvString("ALPHA_VANTAGE_API_KEY", c.AlphaVantage.APIKey),
		BaseURL: getEnvString("ALPHA_VANTAGE_BASE_URL", c.AlphaVantage.BaseURL),
	}
	c.Alpaca = AlpacaConfig{
		APIKey:    getEnvString("ALPACA_API_KEY", c.Alpaca.APIKey),
		APISecret: getEnvString("ALPACA_API_SECRET", c.Alpaca.APISecret),
		BaseURL:   getEnvString("ALPACA_BASE_URL", c.Alpaca.BaseURL),
		Feed:      getEnvString("ALPACA_DATA_FEED", c.Alpaca.Feed),
	}
	c.Polygon.APIKey = getEnvString("POLYGON_API_KEY", c.Polygon.APIKey)

	c.Window.WarmupDays = getEnvInt("WINDOW_WARMUP_DAYS", c.Window.WarmupDays)

	c.Dashboard.Tickers = getEnvList("DASHBOARD_TICKERS", c.Dashboard.Tickers)
	c.Dashboard.CompareTickers = getEnvList("COMPARE_TICKERS", c.Dashboard.CompareTickers)
	c.Dashboard.CompareDefaults = getEnvList("COMPARE_DEFAULT_TICKERS", c.Dashboard.CompareDefaults)
	c.Dashboard.DefaultPeriod = getEnvString("DASHBOARD_DEFAULT_PERIOD", c.Dashboard.DefaultPeriod)
	c.Dashboard.DefaultComparePeriod = getEnvString("COMPARE_DEFAULT_PERIOD", c.Dashboard.DefaultComparePeriod)
	c.Dashboard.DefaultVariant = getEnvString("DASHBOARD_DEFAULT_VARIANT", c.Dashboard.DefaultVariant)
	c.Dashboard.RecentRows = getEnvInt("DASHBOARD_RECENT_ROWS", c.Dashboard.RecentRows)

	c.Resilience = ResilienceConfig{
		MaxRetries:             getEnvInt("RETRY_MAX_RETRIES", c.Resilience.MaxRetries),
		InitialBackoffMillis:   getEnvInt("RETRY_INITIAL_BACKOFF_MS", c.Resilience.InitialBackoffMillis),
		MaxBackoffMillis:       getEnvInt("RETRY_MAX_BACKOFF_MS", c.Resilience.MaxBackoffMillis),
		BreakerMaxRequests:     getEnvInt("BREAKER_MAX_REQUESTS", c.Resilience.BreakerMaxRequests),
		BreakerIntervalSeconds: getEnvInt("BREAKER_INTERVAL_SECONDS", c.Resilience.BreakerIntervalSeconds),
		BreakerTimeoutSeconds:  getEnvInt("BREAKER_TIMEOUT_SECONDS", c.Resilience.BreakerTimeoutSeconds),
	}

	c.HTTP = HTTPConfig{
		Port:                  getEnvString("PORT", c.HTTP.Port),
		CORSAllowedOrigins:    getEnvString("CORS_ALLOWED_ORIGINS", c.HTTP.CORSAllowedOrigins),
		RequestTimeoutSeconds: getEnvInt("HTTP_REQUEST_TIMEOUT_SECONDS", c.HTTP.RequestTimeoutSeconds),
	}

	c.Log = LogConfig{
		Level:      getEnvString("LOG_LEVEL", c.Log.Level),
		Production: getEnvString("APP_ENV", "") == "production" || getEnvBool("LOG_JSON", c.Log.Production),
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Provider.Name {
	case ProviderYahoo:
	case ProviderAlphaVantage:
		if !c.HasAlphaVantage() {
			return fmt.Errorf("ALPHA_VANTAGE_API_KEY is required for provider %s", c.Provider.Name)
		}
	case ProviderAlpaca:
		if !c.HasAlpaca() {
			return fmt.Errorf("ALPACA_API_KEY and ALPACA_API_SECRET are required for provider %s", c.Provider.Name)
		}
	case ProviderPolygon:
		if !c.HasPolygon() {
			return fmt.Errorf("POLYGON_API_KEY is required for provider %s", c.Provider.Name)
		}
	default:
		return fmt.Errorf("unknown MARKET_DATA_PROVIDER %q (expected yahoo, alphavantage, alpaca or polygon)", c.Provider.Name)
	}

	// Validate positive integers
	if c.Provider.TimeoutSeconds <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT_SECONDS must be positive, got %d", c.Provider.TimeoutSeconds)
	}
	if c.Provider.Concurrency <= 0 {
		return fmt.Errorf("PROVIDER_CONCURRENCY must be positive, got %d", c.Provider.Concurrency)
	}
	if c.Window.WarmupDays < window.DefaultWarmupDays {
		return fmt.Errorf("WINDOW_WARMUP_DAYS must be at least %d, got %d", window.DefaultWarmupDays, c.Window.WarmupDays)
	}
	if c.Dashboard.RecentRows <= 0 {
		return fmt.Errorf("DASHBOARD_RECENT_ROWS must be positive, got %d", c.Dashboard.RecentRows)
	}

	if len(c.Dashboard.Tickers) == 0 {
		return fmt.Errorf("dashboard ticker list must not be empty")
	}
	if len(c.Dashboard.CompareTickers) == 0 {
		return fmt.Errorf("comparison ticker list must not be empty")
	}
	for _, ticker := range c.Dashboard.CompareDefaults {
		if !contains(c.Dashboard.CompareTickers, ticker) {
			return fmt.Errorf("default comparison ticker %s is not in the comparison list", ticker)
		}
	}

	if _, err := models.ParsePeriod(c.Dashboard.DefaultPeriod); err != nil {
		return fmt.Errorf("DASHBOARD_DEFAULT_PERIOD: %w", err)
	}
	for _, p := range c.Dashboard.ComparePeriods {
		if _, err := models.ParsePeriod(p); err != nil {
			return fmt.Errorf("comparison periods: %w", err)
		}
	}
	if !contains(c.Dashboard.ComparePeriods, c.Dashboard.DefaultComparePeriod) {
		return fmt.Errorf("default comparison period %s is not in the comparison period list", c.Dashboard.DefaultComparePeriod)
	}

	switch c.Dashboard.DefaultVariant {
	case VariantBasic, VariantTechnical, VariantFull:
	default:
		return fmt.Errorf("DASHBOARD_DEFAULT_VARIANT must be basic, technical or full, got %q", c.Dashboard.DefaultVariant)
	}

	return nil
}

// HasAlpaca returns true if Alpaca configuration is available
func (c *Config) HasAlpaca() bool {
	return c.Alpaca.APIKey != "" && c.Alpaca.APISecret != ""
}

// HasAlphaVantage returns true if Alpha Vantage configuration is available
func (c *Config) HasAlphaVantage() bool {
	return c.AlphaVantage.APIKey != ""
}

// HasPolygon returns true if Polygon configuration is available
func (c *Config) HasPolygon() bool {
	return c.Polygon.APIKey != ""
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

func getEnvString(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvList reads a comma-separated, upper-cased list
func getEnvList(key string, defaultValue []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.ToUpper(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// NewTestConfig creates a Config with default values for testing
func NewTestConfig() *Config {
	return Default()
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Provider: ProviderConfig{
			Name:                  ProviderYahoo,
			TimeoutSeconds:        15,
			Concurrency:           4,
			HealthCacheTTLSeconds: 30,
			ProbeSymbol:           "AAPL",
		},
		Yahoo: YahooConfig{
			BaseURL: "https://query1.finance.yahoo.com",
		},
		AlphaVantage: AlphaVantageConfig{
			BaseURL: "https://www.alphavantage.co/query",
		},
		Alpaca: AlpacaConfig{
			BaseURL: "https://paper-api.alpaca.markets",
			Feed:    "iex",
		},
		Window: WindowConfig{
			WarmupDays: 70,
		},
		Indicators: IndicatorConfig{
			EMAFast:    20,
			EMASlow:    50,
			RSI:        14,
			MACDFast:   12,
			MACDSlow:   26,
			MACDSignal: 9,
		},
		Dashboard: DashboardConfig{
			Tickers:              []string{"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA"},
			CompareTickers:       []string{"AAPL", "MSFT", "GOOGL", "TSLA", "NVDA"},
			CompareDefaults:      []string{"AAPL", "MSFT", "GOOGL"},
			ComparePeriods:       []string{"1mo", "3mo", "6mo", "1y", "2y", "5y", "10y"},
			DefaultPeriod:        "1y",
			DefaultComparePeriod: "1y",
			DefaultVariant:       VariantFull,
			RecentRows:           10,
		},
		Resilience: ResilienceConfig{
			MaxRetries:             3,
			InitialBackoffMillis:   100,
			MaxBackoffMillis:       5000,
			BreakerMaxRequests:     5,
			BreakerIntervalSeconds: 60,
			BreakerTimeoutSeconds:  30,
		},
		HTTP: HTTPConfig{
			Port:                  "8080",
			CORSAllowedOrigins:    "*",
			RequestTimeoutSeconds: 60,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
