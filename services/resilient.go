package services

import (
	"context"
	"errors"
	"time"

	"stock-viewer/models"
	"stock-viewer/observability"
)

// ResilientProvider decorates a MarketDataProvider with a per-call timeout,
// retries of transient failures, a circuit breaker and provider metrics.
type ResilientProvider struct {
	inner    MarketDataProvider
	registry *CircuitBreakerRegistry
	retry    RetryConfig
	timeout  time.Duration
	metrics  *observability.Metrics
}

// NewResilientProvider wraps inner. A nil registry uses the global registry and
// a nil metrics uses the global metrics.
func NewResilientProvider(inner MarketDataProvider, registry *CircuitBreakerRegistry, retry RetryConfig, timeout time.Duration, metrics *observability.Metrics) *ResilientProvider {
	if registry == nil {
		registry = GetGlobalRegistry()
	}
	if metrics == nil {
		metrics = observability.GetMetrics()
	}
	return &ResilientProvider{
		inner:    inner,
		registry: registry,
		retry:    retry,
		timeout:  timeout,
		metrics:  metrics,
	}
}

// Name returns the wrapped provider's name
func (p *ResilientProvider) Name() string { return p.inner.Name() }

// GetHistory fetches history through the resilience chain
func (p *ResilientProvider) GetHistory(ctx context.Context, symbol string, start, end time.Time) (*models.PriceSeries, error) {
	return call(ctx, p, "history", symbol, func(ctx context.Context) (*models.PriceSeries, error) {
		return p.inner.GetHistory(ctx, symbol, start, end)
	})
}

// GetInfo fetches company info through the resilience chain
func (p *ResilientProvider) GetInfo(ctx context.Context, symbol string) (*models.CompanyInfo, error) {
	return call(ctx, p, "info", symbol, func(ctx context.Context) (*models.CompanyInfo, error) {
		return p.inner.GetInfo(ctx, symbol)
	})
}

// call runs fn as breaker(retry(fn)) under the provider timeout
func call[T any](ctx context.Context, p *ResilientProvider, op, symbol string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	name := p.inner.Name()

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	p.metrics.RecordExternalAPIRequest(name, op)
	timer := p.metrics.NewTimer()

	result, err := WithCircuitBreaker(ctx, p.registry, name, func() (T, error) {
		var out T
		err := WithRetry(ctx, p.retry, func() error {
			v, err := fn(ctx)
			if err != nil {
				return err
			}
			out = v
			return nil
		})
		return out, err
	})
	timer.ObserveExternalAPI(name, op)

	if err != nil {
		var dataErr *DataUnavailableError
		if !errors.As(err, &dataErr) {
			err = Transient(name, op, symbol, err)
		}
		p.metrics.RecordExternalAPIError(name, op, string(KindOf(err)))
		observability.WithSymbol(ctx, symbol).Warn("market data request failed",
			"provider", name,
			"operation", op,
			"kind", string(KindOf(err)),
			"error", err)
		return zero, err
	}

	return result, nil
}
