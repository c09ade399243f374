package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"stock-viewer/indicators"
	"stock-viewer/models"
	"stock-viewer/services"
	"stock-viewer/window"
)

var testNow = time.Date(2024, 6, 1, 15, 30, 0, 0, time.UTC)

func TestBuilder_TickerPage(t *testing.T) {
	p := &fakeProvider{}
	b, metrics := newTestBuilder(p)

	page, err := b.TickerPage(context.Background(), "AAPL", models.Period1M, OptionsFor(VariantFull), testNow)
	if err != nil {
		t.Fatalf("TickerPage() error = %v", err)
	}

	if page.RenderID == "" {
		t.Error("expected a render id")
	}
	if page.Title() != "AAPL Inc. (AAPL)" {
		t.Errorf("Title() = %q", page.Title())
	}
	if !page.Window.DisplayStart.Equal(date(2024, 5, 2)) {
		t.Errorf("DisplayStart = %v, want 2024-05-02", page.Window.DisplayStart)
	}
	if len(page.Rows) == 0 {
		t.Fatal("expected rows")
	}
	for _, r := range page.Rows {
		if r.Date.Before(page.Window.DisplayStart) {
			t.Errorf("row %v precedes DisplayStart", r.Date)
		}
		if !r.Warm() {
			t.Errorf("row %v has null indicator values", r.Date)
		}
	}
	if len(page.Columns) != 6 || page.Columns[0] != "EMA_20" {
		t.Errorf("Columns = %v", page.Columns)
	}

	if len(page.Recent) != DefaultRecentRows {
		t.Errorf("len(Recent) = %d, want %d", len(page.Recent), DefaultRecentRows)
	}
	if !page.Recent[len(page.Recent)-1].Date.Equal(page.Rows[len(page.Rows)-1].Date) {
		t.Error("Recent should end with the last displayed row")
	}

	if !page.Latest.HasDelta() {
		t.Fatal("expected a delta with many rows")
	}
	if page.Latest.DeltaText() == NotAvailable {
		t.Error("delta should be available")
	}

	if got := testutil.ToFloat64(metrics.PageRendersTotal.WithLabelValues(PageTicker, "full", "success")); got != 1 {
		t.Errorf("renders_total = %v, want 1", got)
	}
}

func TestBuilder_TickerPage_FetchesWarmupLead(t *testing.T) {
	var gotStart, gotEnd time.Time
	p := &fakeProvider{
		historyFn: func(symbol string, start, end time.Time) (*models.PriceSeries, error) {
			gotStart, gotEnd = start, end
			return weekdaySeries(symbol, start, end, 100, 1), nil
		},
	}
	b, _ := newTestBuilder(p)

	if _, err := b.TickerPage(context.Background(), "MSFT", models.Period1Y, OptionsFor(VariantBasic), testNow); err != nil {
		t.Fatalf("TickerPage() error = %v", err)
	}
	if !gotStart.Equal(date(2023, 3, 24)) {
		t.Errorf("history start = %v, want 2023-03-24", gotStart)
	}
	if !gotEnd.Equal(date(2024, 6, 1)) {
		t.Errorf("history end = %v, want 2024-06-01", gotEnd)
	}
}

func TestBuilder_TickerPage_SingleRow(t *testing.T) {
	p := &fakeProvider{
		historyFn: func(symbol string, start, end time.Time) (*models.PriceSeries, error) {
			return weekdaySeries(symbol, start, date(2024, 5, 2), 100, 1), nil
		},
	}
	b, _ := newTestBuilder(p)

	for _, v := range AllVariants {
		t.Run(string(v), func(t *testing.T) {
			page, err := b.TickerPage(context.Background(), "TSLA", models.Period1M, OptionsFor(v), testNow)
			if err != nil {
				t.Fatalf("TickerPage() error = %v", err)
			}
			if len(page.Rows) != 1 {
				t.Fatalf("len(Rows) = %d, want 1", len(page.Rows))
			}
			if page.Latest.HasDelta() {
				t.Error("delta should be unavailable with a single row")
			}
			if page.Latest.DeltaText() != NotAvailable {
				t.Errorf("DeltaText() = %q, want %q", page.Latest.DeltaText(), NotAvailable)
			}
			if page.Latest.CloseText() == "" {
				t.Error("latest close should still be shown")
			}
		})
	}
}

func TestBuilder_TickerPage_EmptyAfterSlicing(t *testing.T) {
	p := &fakeProvider{
		historyFn: func(symbol string, start, end time.Time) (*models.PriceSeries, error) {
			return weekdaySeries(symbol, start, date(2024, 5, 1), 100, 1), nil
		},
	}
	b, metrics := newTestBuilder(p)

	_, err := b.TickerPage(context.Background(), "AAPL", models.Period1M, OptionsFor(VariantFull), testNow)
	if !errors.Is(err, services.ErrEmptyResult) {
		t.Fatalf("error = %v, want EmptyResult", err)
	}
	if got := testutil.ToFloat64(metrics.PageRenderErrorsTotal.WithLabelValues(PageTicker, "empty_result")); got != 1 {
		t.Errorf("render_errors_total = %v, want 1", got)
	}
}

func TestBuilder_TickerPage_MissingShortName(t *testing.T) {
	p := &fakeProvider{
		infoFn: func(symbol string) (*models.CompanyInfo, error) {
			return &models.CompanyInfo{Symbol: symbol}, nil
		},
	}
	b, _ := newTestBuilder(p)

	_, err := b.TickerPage(context.Background(), "ZZZZ", models.Period1M, OptionsFor(VariantFull), testNow)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("error = %v, want NotFound", err)
	}
}

func TestBuilder_TickerPage_ProviderErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"not found", services.NotFound("fake", "history", "ZZZZ", nil), services.ErrNotFound},
		{"transient", services.Transient("fake", "history", "AAPL", errors.New("503")), services.ErrTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProvider{
				historyFn: func(symbol string, start, end time.Time) (*models.PriceSeries, error) {
					return nil, tt.err
				},
			}
			b, _ := newTestBuilder(p)

			page, err := b.TickerPage(context.Background(), "AAPL", models.Period1Y, OptionsFor(VariantFull), testNow)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			if page != nil {
				t.Error("no page should be returned on error")
			}
		})
	}
}

func TestBuilder_TickerPage_UnmappedPeriod(t *testing.T) {
	p := &fakeProvider{}
	b, _ := newTestBuilder(p)

	_, err := b.TickerPage(context.Background(), "AAPL", models.Period("3w"), OptionsFor(VariantFull), testNow)
	if !errors.Is(err, window.ErrUnmappedPeriod) {
		t.Fatalf("error = %v, want ErrUnmappedPeriod", err)
	}
	if p.callCount() != 0 {
		t.Errorf("provider called %d times, want 0", p.callCount())
	}
}

func TestBuilder_TickerPage_RecentRowsSetting(t *testing.T) {
	p := &fakeProvider{}
	b := NewBuilder(p, window.NewResolver(0), indicators.DefaultParams, Settings{RecentRows: 2}, nil)

	page, err := b.TickerPage(context.Background(), "AAPL", models.Period3M, OptionsFor(VariantTechnical), testNow)
	if err != nil {
		t.Fatalf("TickerPage() error = %v", err)
	}
	if len(page.Recent) != 2 {
		t.Errorf("len(Recent) = %d, want 2", len(page.Recent))
	}
}

func TestTickerPage_Chart(t *testing.T) {
	p := &fakeProvider{}
	b, _ := newTestBuilder(p)

	tests := []struct {
		variant  Variant
		wantEMA  bool
		wantRSI  bool
		wantMACD bool
	}{
		{VariantBasic, false, false, false},
		{VariantTechnical, true, true, false},
		{VariantFull, true, true, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.variant), func(t *testing.T) {
			page, err := b.TickerPage(context.Background(), "AAPL", models.Period1M, OptionsFor(tt.variant), testNow)
			if err != nil {
				t.Fatalf("TickerPage() error = %v", err)
			}
			c := page.Chart()
			if len(c.Dates) != len(page.Rows) || len(c.Close) != len(page.Rows) {
				t.Errorf("chart length mismatch: %d dates for %d rows", len(c.Dates), len(page.Rows))
			}
			if (c.EMAFast != nil) != tt.wantEMA {
				t.Errorf("EMA present = %v, want %v", c.EMAFast != nil, tt.wantEMA)
			}
			if (c.RSI != nil) != tt.wantRSI {
				t.Errorf("RSI present = %v, want %v", c.RSI != nil, tt.wantRSI)
			}
			if (c.MACD != nil) != tt.wantMACD {
				t.Errorf("MACD present = %v, want %v", c.MACD != nil, tt.wantMACD)
			}
		})
	}
}
