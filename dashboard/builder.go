// Package dashboard assembles the page models of the single-ticker and
// comparison dashboards from provider data and computed indicators.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"stock-viewer/indicators"
	"stock-viewer/models"
	"stock-viewer/observability"
	"stock-viewer/services"
	"stock-viewer/window"
)

// Page names used as metric labels
const (
	PageTicker  = "ticker"
	PageCompare = "compare"
)

// DefaultRecentRows is the length of the recent-rows table
const DefaultRecentRows = 5

// Settings tunes a Builder
type Settings struct {
	RecentRows  int
	Concurrency int
}

// TickerPage is the model of one single-ticker render
type TickerPage struct {
	RenderID string              `json:"render_id"`
	Symbol   string              `json:"symbol"`
	Period   models.Period       `json:"period"`
	Options  PageOptions         `json:"options"`
	Window   models.DateWindow   `json:"window"`
	Info     *models.CompanyInfo `json:"info"`
	Columns  []string            `json:"columns"`
	Rows     []models.Row        `json:"rows"`
	Recent   []models.Row        `json:"recent"`
	Latest   LatestMetric        `json:"latest"`
}

// Title is the page header, e.g. "Apple Inc. (AAPL)"
func (p *TickerPage) Title() string {
	return fmt.Sprintf("%s (%s)", p.Info.ShortName, p.Symbol)
}

// Builder builds page models. It holds no per-render state.
type Builder struct {
	provider    services.MarketDataProvider
	resolver    *window.Resolver
	params      indicators.Params
	recentRows  int
	concurrency int
	metrics     *observability.Metrics
}

// NewBuilder creates a Builder. A nil metrics uses the global metrics.
func NewBuilder(provider services.MarketDataProvider, resolver *window.Resolver, params indicators.Params, settings Settings, metrics *observability.Metrics) *Builder {
	if settings.RecentRows <= 0 {
		settings.RecentRows = DefaultRecentRows
	}
	if settings.Concurrency <= 0 {
		settings.Concurrency = services.DefaultFetchConcurrency
	}
	if metrics == nil {
		metrics = observability.GetMetrics()
	}
	return &Builder{
		provider:    provider,
		resolver:    resolver,
		params:      params,
		recentRows:  settings.RecentRows,
		concurrency: settings.Concurrency,
		metrics:     metrics,
	}
}

// Resolver returns the builder's date window resolver
func (b *Builder) Resolver() *window.Resolver {
	return b.resolver
}

// Params returns the indicator parameters
func (b *Builder) Params() indicators.Params {
	return b.params
}

// TickerPage builds the single-ticker page for symbol over period as of now:
// 1. Resolve the date window
// 2. Fetch history from FetchStart and company info in parallel
// 3. Compute indicators over the whole fetched series
// 4. Keep rows dated on or after DisplayStart
// 5. Summarise the latest close and the most recent rows
func (b *Builder) TickerPage(ctx context.Context, symbol string, period models.Period, opts PageOptions, now time.Time) (page *TickerPage, err error) {
	renderID := uuid.NewString()
	ctx = observability.ContextWithRenderID(ctx, renderID)
	timer := b.metrics.NewTimer()
	defer func() {
		b.observe(ctx, PageTicker, string(opts.Variant), timer, err)
	}()

	w, err := b.resolver.Resolve(period, now)
	if err != nil {
		return nil, err
	}

	var (
		series *models.PriceSeries
		info   *models.CompanyInfo
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := b.provider.GetHistory(gctx, symbol, w.FetchStart, w.End)
		if err != nil {
			return err
		}
		series = s
		return nil
	})
	g.Go(func() error {
		i, err := b.provider.GetInfo(gctx, symbol)
		if err != nil {
			return err
		}
		info = i
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if info == nil || info.ShortName == "" {
		return nil, services.NotFound(b.provider.Name(), "info", symbol, errors.New("company info has no short name"))
	}

	set, err := indicators.Compute(series, b.params)
	if err != nil {
		return nil, fmt.Errorf("failed to compute indicators: %w", err)
	}

	rows := models.JoinRows(series, set, series.IndexFrom(w.DisplayStart))
	if len(rows) == 0 {
		return nil, services.EmptyResult(b.provider.Name(), "display", symbol,
			fmt.Errorf("no sessions between %s and %s", w.DisplayStart.Format(time.DateOnly), w.End.Format(time.DateOnly)))
	}

	columns := make([]string, 0, 6)
	for _, c := range set.Columns() {
		columns = append(columns, c.Name)
	}

	b.metrics.RecordRowsDisplayed(PageTicker, len(rows))
	observability.WithSymbol(ctx, symbol).Debug("ticker page built",
		"period", period,
		"fetched", series.Len(),
		"displayed", len(rows))

	if series.Symbol != "" {
		symbol = series.Symbol
	}
	return &TickerPage{
		RenderID: renderID,
		Symbol:   symbol,
		Period:   period,
		Options:  opts,
		Window:   w,
		Info:     info,
		Columns:  columns,
		Rows:     rows,
		Recent:   tail(rows, b.recentRows),
		Latest:   latestMetric(rows),
	}, nil
}

// observe records the outcome of a render
func (b *Builder) observe(ctx context.Context, page, variant string, timer *observability.Timer, err error) {
	if err == nil {
		timer.ObservePage(page, variant, "success")
		return
	}
	kind := "invalid"
	if !errors.Is(err, window.ErrUnmappedPeriod) {
		kind = string(services.KindOf(err))
	}
	timer.ObservePage(page, variant, "error")
	b.metrics.RecordPageRenderError(page, kind)
	observability.WithContext(ctx).Warn("page render failed",
		"page", page,
		"error_kind", kind,
		"error", err)
}

func tail(rows []models.Row, n int) []models.Row {
	if len(rows) <= n {
		return rows
	}
	return rows[len(rows)-n:]
}
