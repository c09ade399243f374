package app

import (
	"context"
	"fmt"
	"time"

	"stock-viewer/config"
	"stock-viewer/dashboard"
	"stock-viewer/indicators"
	"stock-viewer/models"
	"stock-viewer/services"
	"stock-viewer/window"
)

// App struct holds application dependencies. It keeps no per-render data.
type App struct {
	cfg      *config.Config
	provider services.MarketDataProvider
	breakers *services.CircuitBreakerRegistry
	health   *services.ProviderHealth
	builder  *dashboard.Builder
	now      func() time.Time
}

// New creates an App around an already decorated provider
func New(cfg *config.Config, provider services.MarketDataProvider, breakers *services.CircuitBreakerRegistry) (*App, error) {
	params := ParamsFrom(cfg.Indicators)
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid indicator settings: %w", err)
	}
	if breakers == nil {
		breakers = services.GetGlobalRegistry()
	}

	resolver := window.NewResolver(cfg.Window.WarmupDays)
	if err := checkCoverage(resolver, params); err != nil {
		return nil, err
	}
	builder := dashboard.NewBuilder(provider, resolver, params, dashboard.Settings{
		RecentRows:  cfg.Dashboard.RecentRows,
		Concurrency: cfg.Provider.Concurrency,
	}, nil)

	health := services.NewProviderHealth(provider, cfg.Provider.ProbeSymbol,
		time.Duration(cfg.Provider.HealthCacheTTLSeconds)*time.Second)
	// a breaker transition makes the cached probe result stale
	breakers.OnStateChange(func(name, from, to string) {
		health.Invalidate()
	})

	return &App{
		cfg:      cfg,
		provider: provider,
		breakers: breakers,
		health:   health,
		builder:  builder,
		now:      time.Now,
	}, nil
}

// NewFromConfig builds the configured provider, wraps it with timeout, retry
// and circuit breaking, and creates the App
func NewFromConfig(cfg *config.Config) (*App, error) {
	inner, err := services.NewProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create market data provider: %w", err)
	}

	breakers := services.NewCircuitBreakerRegistry(services.CircuitBreakerConfigFrom(cfg.Resilience))
	services.SetGlobalRegistry(breakers)

	provider := services.NewResilientProvider(inner, breakers,
		services.RetryConfigFrom(cfg.Resilience),
		time.Duration(cfg.Provider.TimeoutSeconds)*time.Second,
		nil)

	return New(cfg, provider, breakers)
}

// ParamsFrom converts indicator settings to indicator parameters
func ParamsFrom(cfg config.IndicatorConfig) indicators.Params {
	return indicators.Params{
		EMAFast:    cfg.EMAFast,
		EMASlow:    cfg.EMASlow,
		RSI:        cfg.RSI,
		MACDFast:   cfg.MACDFast,
		MACDSlow:   cfg.MACDSlow,
		MACDSignal: cfg.MACDSignal,
	}
}

// checkCoverage rejects indicator settings whose warm-up the resolver's lead cannot hold
func checkCoverage(resolver *window.Resolver, params indicators.Params) error {
	lookback := params.MaxLookback()
	if resolver.Covers(lookback) {
		return nil
	}
	return fmt.Errorf("warm-up of %d calendar days (~%d sessions) does not cover indicator lookback of %d rows",
		resolver.WarmupDays(), resolver.TradingDays(), lookback)
}

// SetClock replaces the wall clock (for testing)
func (a *App) SetClock(now func() time.Time) {
	a.now = now
}

// Config returns the application configuration
func (a *App) Config() *config.Config {
	return a.cfg
}

// ProviderName returns the active market data provider
func (a *App) ProviderName() string {
	return a.provider.Name()
}

// TickerPage builds the single-ticker page as of now
func (a *App) TickerPage(ctx context.Context, symbol string, period models.Period, variant dashboard.Variant) (*dashboard.TickerPage, error) {
	return a.builder.TickerPage(ctx, symbol, period, dashboard.OptionsFor(variant), a.now())
}

// Comparison builds the comparison page as of now
func (a *App) Comparison(ctx context.Context, symbols []string, period models.Period) (*dashboard.ComparisonPage, error) {
	return a.builder.Comparison(ctx, symbols, period, a.now())
}

// Window resolves period against now, or against the current time when now is zero
func (a *App) Window(period models.Period, now time.Time) (models.DateWindow, error) {
	if now.IsZero() {
		now = a.now()
	}
	return a.builder.Resolver().Resolve(period, now)
}

// HealthStatus reports the provider probe and circuit breaker states
type HealthStatus struct {
	Status          string                                   `json:"status"`
	Provider        string                                   `json:"provider"`
	ProviderHealthy bool                                     `json:"provider_healthy"`
	CircuitBreakers map[string]services.CircuitBreakerStatus `json:"circuit_breakers"`
}

// Health probes the provider (cached) and collects breaker states
func (a *App) Health(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:          "ok",
		Provider:        a.health.ProviderName(),
		ProviderHealthy: a.health.Available(ctx),
		CircuitBreakers: a.breakers.Status(),
	}
	if !status.ProviderHealthy {
		status.Status = "degraded"
	}
	for _, cb := range status.CircuitBreakers {
		if cb.State == "open" {
			status.Status = "degraded"
			break
		}
	}
	return status
}
