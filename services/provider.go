package services

import (
	"fmt"
	"time"

	"stock-viewer/config"
)

// NewProvider builds the market data provider selected by cfg.Provider.Name
func NewProvider(cfg *config.Config) (MarketDataProvider, error) {
	timeout := time.Duration(cfg.Provider.TimeoutSeconds) * time.Second

	switch cfg.Provider.Name {
	case config.ProviderYahoo, "":
		return NewYahooService(cfg.Yahoo.BaseURL, timeout), nil
	case config.ProviderAlphaVantage:
		if !cfg.HasAlphaVantage() {
			return nil, fmt.Errorf("alphavantage provider requires ALPHA_VANTAGE_API_KEY")
		}
		return NewAlphaVantageService(cfg.AlphaVantage.APIKey, cfg.AlphaVantage.BaseURL, timeout), nil
	case config.ProviderAlpaca:
		if !cfg.HasAlpaca() {
			return nil, fmt.Errorf("alpaca provider requires ALPACA_API_KEY and ALPACA_API_SECRET")
		}
		return NewAlpacaService(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.BaseURL, cfg.Alpaca.Feed), nil
	case config.ProviderPolygon:
		return NewPolygonService(cfg.Polygon.APIKey)
	default:
		return nil, fmt.Errorf("unknown market data provider %q", cfg.Provider.Name)
	}
}

// RetryConfigFrom converts the resilience settings to a RetryConfig
func RetryConfigFrom(cfg config.ResilienceConfig) RetryConfig {
	return RetryConfig{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: time.Duration(cfg.InitialBackoffMillis) * time.Millisecond,
		MaxBackoff:     time.Duration(cfg.MaxBackoffMillis) * time.Millisecond,
	}
}

// CircuitBreakerConfigFrom converts the resilience settings to a CircuitBreakerConfig
func CircuitBreakerConfigFrom(cfg config.ResilienceConfig) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		MaxRequests: uint32(cfg.BreakerMaxRequests),
		Interval:    time.Duration(cfg.BreakerIntervalSeconds) * time.Second,
		Timeout:     time.Duration(cfg.BreakerTimeoutSeconds) * time.Second,
	}
}
