package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// saveEnv saves current environment variables for restoration
func saveEnv(t *testing.T, keys []string) map[string]string {
	t.Helper()
	saved := make(map[string]string)
	for _, key := range keys {
		saved[key] = os.Getenv(key)
	}
	return saved
}

// restoreEnv restores previously saved environment variables
func restoreEnv(t *testing.T, saved map[string]string) {
	t.Helper()
	for key, val := range saved {
		if val == "" {
			os.Unsetenv(key)
		} else {
			os.Setenv(key, val)
		}
	}
}

// clearEnv clears environment variables
func clearEnv(t *testing.T, keys []string) {
	t.Helper()
	for _, key := range keys {
		os.Unsetenv(key)
	}
}

var allEnvKeys = []string{
	"CONFIG_FILE",
	"MARKET_DATA_PROVIDER",
	"PROVIDER_TIMEOUT_SECONDS",
	"PROVIDER_CONCURRENCY",
	"PROVIDER_HEALTH_CACHE_TTL_SECONDS",
	"PROVIDER_PROBE_SYMBOL",
	"YAHOO_BASE_URL",
	"ALPHA_VANTAGE_API_KEY",
	"ALPHA_VANTAGE_BASE_URL",
	"ALPACA_API_KEY",
	"ALPACA_API_SECRET",
	"ALPACA_BASE_URL",
	"ALPACA_DATA_FEED",
	"POLYGON_API_KEY",
	"WINDOW_WARMUP_DAYS",
	"DASHBOARD_TICKERS",
	"COMPARE_TICKERS",
	"COMPARE_DEFAULT_TICKERS",
	"DASHBOARD_DEFAULT_PERIOD",
	"COMPARE_DEFAULT_PERIOD",
	"DASHBOARD_DEFAULT_VARIANT",
	"DASHBOARD_RECENT_ROWS",
	"RETRY_MAX_RETRIES",
	"RETRY_INITIAL_BACKOFF_MS",
	"RETRY_MAX_BACKOFF_MS",
	"BREAKER_MAX_REQUESTS",
	"BREAKER_INTERVAL_SECONDS",
	"BREAKER_TIMEOUT_SECONDS",
	"PORT",
	"CORS_ALLOWED_ORIGINS",
	"HTTP_REQUEST_TIMEOUT_SECONDS",
	"LOG_LEVEL",
	"LOG_JSON",
	"APP_ENV",
}

func TestLoad_Defaults(t *testing.T) {
	saved := saveEnv(t, allEnvKeys)
	defer restoreEnv(t, saved)
	clearEnv(t, allEnvKeys)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with defaults failed: %v", err)
	}

	// Check defaults
	if cfg.Provider.Name != ProviderYahoo {
		t.Errorf("expected Provider.Name=yahoo, got %s", cfg.Provider.Name)
	}
	if cfg.Window.WarmupDays != 70 {
		t.Errorf("expected WarmupDays=70, got %d", cfg.Window.WarmupDays)
	}
	if cfg.Indicators.EMASlow != 50 {
		t.Errorf("expected EMASlow=50, got %d", cfg.Indicators.EMASlow)
	}
	if got := strings.Join(cfg.Dashboard.Tickers, ","); got != "AAPL,MSFT,GOOGL,AMZN,TSLA" {
		t.Errorf("expected default tickers, got %s", got)
	}
	if got := strings.Join(cfg.Dashboard.CompareTickers, ","); got != "AAPL,MSFT,GOOGL,TSLA,NVDA" {
		t.Errorf("expected default comparison tickers, got %s", got)
	}
	if got := strings.Join(cfg.Dashboard.CompareDefaults, ","); got != "AAPL,MSFT,GOOGL" {
		t.Errorf("expected default comparison selection, got %s", got)
	}
	if cfg.Dashboard.DefaultPeriod != "1y" {
		t.Errorf("expected DefaultPeriod=1y, got %s", cfg.Dashboard.DefaultPeriod)
	}
	if cfg.Dashboard.ComparePeriods[0] != "1mo" {
		t.Errorf("expected comparison periods to start at 1mo, got %s", cfg.Dashboard.ComparePeriods[0])
	}
	if cfg.Alpaca.BaseURL != "https://paper-api.alpaca.markets" {
		t.Errorf("expected Alpaca.BaseURL='https://paper-api.alpaca.markets', got %s", cfg.Alpaca.BaseURL)
	}
	if cfg.HTTP.Port != "8080" {
		t.Errorf("expected Port=8080, got %s", cfg.HTTP.Port)
	}
	if cfg.HTTP.CORSAllowedOrigins != "*" {
		t.Errorf("expected CORSAllowedOrigins='*', got %s", cfg.HTTP.CORSAllowedOrigins)
	}
	if cfg.Log.Production {
		t.Error("expected development logging by default")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	saved := saveEnv(t, allEnvKeys)
	defer restoreEnv(t, saved)
	clearEnv(t, allEnvKeys)

	os.Setenv("MARKET_DATA_PROVIDER", "Alpaca")
	os.Setenv("ALPACA_API_KEY", "test-key")
	os.Setenv("ALPACA_API_SECRET", "test-secret")
	os.Setenv("ALPACA_BASE_URL", "https://api.alpaca.markets")
	os.Setenv("ALPACA_DATA_FEED", "sip")
	os.Setenv("PROVIDER_TIMEOUT_SECONDS", "5")
	os.Setenv("WINDOW_WARMUP_DAYS", "120")
	os.Setenv("DASHBOARD_TICKERS", "aapl, nvda ,")
	os.Setenv("DASHBOARD_DEFAULT_PERIOD", "6mo")
	os.Setenv("DASHBOARD_DEFAULT_VARIANT", "basic")
	os.Setenv("PORT", "9090")
	os.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	os.Setenv("APP_ENV", "production")
	os.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with custom values failed: %v", err)
	}

	if cfg.Provider.Name != ProviderAlpaca {
		t.Errorf("expected Provider.Name=alpaca, got %s", cfg.Provider.Name)
	}
	if cfg.Alpaca.APIKey != "test-key" {
		t.Errorf("expected Alpaca.APIKey='test-key', got %s", cfg.Alpaca.APIKey)
	}
	if cfg.Alpaca.BaseURL != "https://api.alpaca.markets" {
		t.Errorf("expected Alpaca.BaseURL='https://api.alpaca.markets', got %s", cfg.Alpaca.BaseURL)
	}
	if cfg.Alpaca.Feed != "sip" {
		t.Errorf("expected Alpaca.Feed=sip, got %s", cfg.Alpaca.Feed)
	}
	if cfg.Provider.TimeoutSeconds != 5 {
		t.Errorf("expected TimeoutSeconds=5, got %d", cfg.Provider.TimeoutSeconds)
	}
	if cfg.Window.WarmupDays != 120 {
		t.Errorf("expected WarmupDays=120, got %d", cfg.Window.WarmupDays)
	}
	if got := strings.Join(cfg.Dashboard.Tickers, ","); got != "AAPL,NVDA" {
		t.Errorf("expected tickers AAPL,NVDA, got %s", got)
	}
	if cfg.Dashboard.DefaultPeriod != "6mo" {
		t.Errorf("expected DefaultPeriod=6mo, got %s", cfg.Dashboard.DefaultPeriod)
	}
	if cfg.Dashboard.DefaultVariant != VariantBasic {
		t.Errorf("expected DefaultVariant=basic, got %s", cfg.Dashboard.DefaultVariant)
	}
	if cfg.HTTP.Port != "9090" {
		t.Errorf("expected Port=9090, got %s", cfg.HTTP.Port)
	}
	if !cfg.Log.Production {
		t.Error("expected production logging for APP_ENV=production")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected Log.Level=debug, got %s", cfg.Log.Level)
	}
}

func TestLoad_YAMLOverlay(t *testing.T) {
	saved := saveEnv(t, allEnvKeys)
	defer restoreEnv(t, saved)
	clearEnv(t, allEnvKeys)

	path := filepath.Join(t.TempDir(), "dashboards.yaml")
	content := `
window:
  warmup_days: 90
dashboard:
  tickers: [AAPL, META]
  default_period: 2y
  recent_rows: 20
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	os.Setenv("CONFIG_FILE", path)
	// env wins over the file
	os.Setenv("DASHBOARD_RECENT_ROWS", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with config file failed: %v", err)
	}

	if cfg.Window.WarmupDays != 90 {
		t.Errorf("expected WarmupDays=90 from file, got %d", cfg.Window.WarmupDays)
	}
	if got := strings.Join(cfg.Dashboard.Tickers, ","); got != "AAPL,META" {
		t.Errorf("expected tickers from file, got %s", got)
	}
	if cfg.Dashboard.DefaultPeriod != "2y" {
		t.Errorf("expected DefaultPeriod=2y from file, got %s", cfg.Dashboard.DefaultPeriod)
	}
	if cfg.Dashboard.RecentRows != 5 {
		t.Errorf("expected RecentRows=5 from env, got %d", cfg.Dashboard.RecentRows)
	}
	// keys absent from the file keep their defaults
	if got := strings.Join(cfg.Dashboard.CompareDefaults, ","); got != "AAPL,MSFT,GOOGL" {
		t.Errorf("expected default comparison selection to survive, got %s", got)
	}
	if cfg.Indicators.RSI != 14 {
		t.Errorf("expected RSI=14 to survive, got %d", cfg.Indicators.RSI)
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	saved := saveEnv(t, allEnvKeys)
	defer restoreEnv(t, saved)
	clearEnv(t, allEnvKeys)

	os.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := Load(); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoad_RejectsShortWarmup(t *testing.T) {
	saved := saveEnv(t, allEnvKeys)
	defer restoreEnv(t, saved)
	clearEnv(t, allEnvKeys)

	os.Setenv("WINDOW_WARMUP_DAYS", "10")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for a warm-up shorter than 70 days")
	}
	if !strings.Contains(err.Error(), "WINDOW_WARMUP_DAYS") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadFile_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("dashboard: [unterminated"), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg := NewTestConfig()
	if err := cfg.LoadFile(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"unknown provider", func(c *Config) { c.Provider.Name = "bloomberg" }, "unknown MARKET_DATA_PROVIDER"},
		{"alphavantage without key", func(c *Config) { c.Provider.Name = ProviderAlphaVantage }, "ALPHA_VANTAGE_API_KEY"},
		{"alpaca without secret", func(c *Config) {
			c.Provider.Name = ProviderAlpaca
			c.Alpaca.APIKey = "key"
		}, "ALPACA_API_KEY"},
		{"polygon without key", func(c *Config) { c.Provider.Name = ProviderPolygon }, "POLYGON_API_KEY"},
		{"polygon with key", func(c *Config) {
			c.Provider.Name = ProviderPolygon
			c.Polygon.APIKey = "key"
		}, ""},
		{"zero timeout", func(c *Config) { c.Provider.TimeoutSeconds = 0 }, "PROVIDER_TIMEOUT_SECONDS"},
		{"zero concurrency", func(c *Config) { c.Provider.Concurrency = 0 }, "PROVIDER_CONCURRENCY"},
		{"zero warmup", func(c *Config) { c.Window.WarmupDays = 0 }, "WINDOW_WARMUP_DAYS"},
		{"warmup below 70 days", func(c *Config) { c.Window.WarmupDays = 69 }, "at least 70"},
		{"warmup of 70 days", func(c *Config) { c.Window.WarmupDays = 70 }, ""},
		{"zero recent rows", func(c *Config) { c.Dashboard.RecentRows = 0 }, "DASHBOARD_RECENT_ROWS"},
		{"empty tickers", func(c *Config) { c.Dashboard.Tickers = nil }, "ticker list"},
		{"empty comparison tickers", func(c *Config) { c.Dashboard.CompareTickers = nil }, "comparison ticker list"},
		{"default outside comparison list", func(c *Config) { c.Dashboard.CompareDefaults = []string{"AMZN"} }, "AMZN"},
		{"bad default period", func(c *Config) { c.Dashboard.DefaultPeriod = "3w" }, "DASHBOARD_DEFAULT_PERIOD"},
		{"bad comparison period", func(c *Config) { c.Dashboard.ComparePeriods = []string{"1y", "forever"} }, "comparison periods"},
		{"default comparison period not offered", func(c *Config) { c.Dashboard.DefaultComparePeriod = "1d" }, "default comparison period"},
		{"bad variant", func(c *Config) { c.Dashboard.DefaultVariant = "fancy" }, "DASHBOARD_DEFAULT_VARIANT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewTestConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestHasAlpaca(t *testing.T) {
	cfg := NewTestConfig()
	if cfg.HasAlpaca() {
		t.Error("expected HasAlpaca() to return false for empty credentials")
	}

	cfg.Alpaca.APIKey = "key"
	if cfg.HasAlpaca() {
		t.Error("expected HasAlpaca() to return false when secret is missing")
	}

	cfg.Alpaca.APISecret = "secret"
	if !cfg.HasAlpaca() {
		t.Error("expected HasAlpaca() to return true with key and secret")
	}
}

func TestHasAlphaVantage(t *testing.T) {
	cfg := NewTestConfig()
	if cfg.HasAlphaVantage() {
		t.Error("expected HasAlphaVantage() to return false for empty key")
	}

	cfg.AlphaVantage.APIKey = "key"
	if !cfg.HasAlphaVantage() {
		t.Error("expected HasAlphaVantage() to return true for non-empty key")
	}
}

func TestHasPolygon(t *testing.T) {
	cfg := NewTestConfig()
	if cfg.HasPolygon() {
		t.Error("expected HasPolygon() to return false for empty key")
	}

	cfg.Polygon.APIKey = "key"
	if !cfg.HasPolygon() {
		t.Error("expected HasPolygon() to return true for non-empty key")
	}
}

func TestGetEnvString(t *testing.T) {
	key := "TEST_GET_ENV_STRING"
	defer os.Unsetenv(key)

	// Empty returns default
	os.Unsetenv(key)
	if got := getEnvString(key, "default"); got != "default" {
		t.Errorf("expected 'default', got %s", got)
	}

	// Set value returns value
	os.Setenv(key, "custom")
	if got := getEnvString(key, "default"); got != "custom" {
		t.Errorf("expected 'custom', got %s", got)
	}
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_GET_ENV_INT"
	defer os.Unsetenv(key)

	// Empty returns default
	os.Unsetenv(key)
	if got := getEnvInt(key, 42); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}

	// Valid integer
	os.Setenv(key, "100")
	if got := getEnvInt(key, 42); got != 100 {
		t.Errorf("expected 100, got %d", got)
	}

	// Invalid integer returns default
	os.Setenv(key, "invalid")
	if got := getEnvInt(key, 42); got != 42 {
		t.Errorf("expected 42 for invalid value, got %d", got)
	}

	// Negative returns default
	os.Setenv(key, "-5")
	if got := getEnvInt(key, 42); got != 42 {
		t.Errorf("expected 42 for negative value, got %d", got)
	}

	// Zero returns default
	os.Setenv(key, "0")
	if got := getEnvInt(key, 42); got != 42 {
		t.Errorf("expected 42 for zero value, got %d", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_GET_ENV_BOOL"
	defer os.Unsetenv(key)

	os.Unsetenv(key)
	if got := getEnvBool(key, true); !got {
		t.Error("expected default true")
	}

	os.Setenv(key, "false")
	if got := getEnvBool(key, true); got {
		t.Error("expected false")
	}

	os.Setenv(key, "nope")
	if got := getEnvBool(key, true); !got {
		t.Error("expected default for invalid value")
	}
}

func TestGetEnvList(t *testing.T) {
	key := "TEST_GET_ENV_LIST"
	defer os.Unsetenv(key)

	def := []string{"AAPL"}

	os.Unsetenv(key)
	if got := getEnvList(key, def); len(got) != 1 || got[0] != "AAPL" {
		t.Errorf("expected default list, got %v", got)
	}

	os.Setenv(key, " msft,, tsla ")
	got := getEnvList(key, def)
	if strings.Join(got, ",") != "MSFT,TSLA" {
		t.Errorf("expected MSFT,TSLA, got %v", got)
	}

	os.Setenv(key, " , ")
	if got := getEnvList(key, def); len(got) != 1 || got[0] != "AAPL" {
		t.Errorf("expected default list for blank entries, got %v", got)
	}
}
