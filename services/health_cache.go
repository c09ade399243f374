package services

import (
	"context"
	"sync"
	"time"

	"stock-viewer/observability"
)

// HealthCache provides TTL-based caching for provider health checks
// to reduce redundant API calls during frequent availability checks.
type HealthCache struct {
	mu        sync.RWMutex
	available bool
	checkedAt time.Time
	ttl       time.Duration
}

// NewHealthCache creates a new HealthCache with the specified TTL.
// A TTL of 0 effectively disables caching.
func NewHealthCache(ttl time.Duration) *HealthCache {
	return &HealthCache{
		ttl: ttl,
	}
}

// Get returns the cached availability status and whether the cache is valid.
func (c *HealthCache) Get() (available bool, valid bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	valid = !c.checkedAt.IsZero() && time.Since(c.checkedAt) < c.ttl
	return c.available, valid
}

// Set updates the cached availability status.
func (c *HealthCache) Set(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.available = available
	c.checkedAt = time.Now()
}

// Invalidate clears the cache, forcing the next check to make a live call.
func (c *HealthCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkedAt = time.Time{}
}

// DefaultHealthCacheTTL is the default TTL for health check caching (30 seconds).
const DefaultHealthCacheTTL = 30 * time.Second

// ProviderHealth probes a provider with a cheap info request and caches the
// outcome. A NotFound answer still proves the provider is reachable.
type ProviderHealth struct {
	provider    MarketDataProvider
	cache       *HealthCache
	probeSymbol string
}

// NewProviderHealth creates a ProviderHealth probing probeSymbol
func NewProviderHealth(provider MarketDataProvider, probeSymbol string, ttl time.Duration) *ProviderHealth {
	if probeSymbol == "" {
		probeSymbol = "AAPL"
	}
	return &ProviderHealth{
		provider:    provider,
		cache:       NewHealthCache(ttl),
		probeSymbol: probeSymbol,
	}
}

// Available reports whether the provider answered the last probe
func (h *ProviderHealth) Available(ctx context.Context) bool {
	if available, valid := h.cache.Get(); valid {
		return available
	}

	_, err := h.provider.GetInfo(ctx, h.probeSymbol)
	available := err == nil || KindOf(err) == KindNotFound
	if !available {
		observability.Warn("provider health probe failed", "provider", h.provider.Name(), "error", err)
	}
	h.cache.Set(available)
	return available
}

// Invalidate forces the next Available call to probe again
func (h *ProviderHealth) Invalidate() {
	h.cache.Invalidate()
}

// ProviderName returns the probed provider's name
func (h *ProviderHealth) ProviderName() string {
	return h.provider.Name()
}
