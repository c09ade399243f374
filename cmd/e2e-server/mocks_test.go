package main

import (
	"context"
	"testing"
	"time"

	"stock-viewer/services"
)

func TestFixtureProvider_GetHistory(t *testing.T) {
	p := NewFixtureProvider()
	start := time.Date(2024, 5, 27, 0, 0, 0, 0, time.UTC) // Monday
	end := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)    // Sunday

	series, err := p.GetHistory(context.Background(), "AAPL", start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if series.Len() != 5 {
		t.Fatalf("expected 5 weekday bars, got %d", series.Len())
	}
	for _, bar := range series.Bars {
		if bar.High.LessThan(bar.Close) || bar.Low.GreaterThan(bar.Close) {
			t.Errorf("bar %s close outside high/low", bar.Date.Format(time.DateOnly))
		}
	}

	// a bar's price does not depend on the requested range
	wider, err := p.GetHistory(context.Background(), "AAPL", start.AddDate(0, -1, 0), end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	last := wider.Bars[wider.Len()-1]
	if !last.Close.Equal(series.Bars[series.Len()-1].Close) {
		t.Errorf("expected stable closes, got %s and %s", last.Close, series.Bars[series.Len()-1].Close)
	}
}

func TestFixtureProvider_Errors(t *testing.T) {
	p := NewFixtureProvider()
	ctx := context.Background()

	_, err := p.GetHistory(ctx, "ZZZZ", time.Now().AddDate(0, -1, 0), time.Now())
	if services.KindOf(err) != services.KindNotFound {
		t.Errorf("expected not found, got %v", err)
	}

	saturday := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err = p.GetHistory(ctx, "AAPL", saturday, saturday.AddDate(0, 0, 1))
	if services.KindOf(err) != services.KindEmptyResult {
		t.Errorf("expected empty result, got %v", err)
	}

	info, err := p.GetInfo(ctx, "NVDA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.ShortName != "NVIDIA Corporation" {
		t.Errorf("unexpected short name %q", info.ShortName)
	}
}
