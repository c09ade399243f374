package dashboard

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"

	"stock-viewer/models"
	"stock-viewer/observability"
	"stock-viewer/services"
)

// BaseValue is the normalised value of every ticker on its first session
const BaseValue = 100.0

// NormalizedSeries is one ticker's closes rebased to BaseValue, aligned to ComparisonPage.Dates
type NormalizedSeries struct {
	Symbol string                     `json:"symbol"`
	Values []optional.Option[float64] `json:"values"`
	Return optional.Option[float64]   `json:"return_pct"`
}

// ComparisonPage is the model of one comparison render
type ComparisonPage struct {
	RenderID string             `json:"render_id"`
	Symbols  []string           `json:"symbols"`
	Period   models.Period      `json:"period"`
	Window   models.DateWindow  `json:"window"`
	Dates    []time.Time        `json:"dates"`
	Series   []NormalizedSeries `json:"series"`
}

// Empty reports whether nothing was selected
func (p *ComparisonPage) Empty() bool {
	return len(p.Symbols) == 0
}

// Comparison builds the comparison page: each symbol's closes over the display
// window, rebased so that its first close is BaseValue. An empty selection
// yields an empty page without touching the provider.
func (b *Builder) Comparison(ctx context.Context, symbols []string, period models.Period, now time.Time) (page *ComparisonPage, err error) {
	renderID := uuid.NewString()
	ctx = observability.ContextWithRenderID(ctx, renderID)
	timer := b.metrics.NewTimer()
	defer func() {
		b.observe(ctx, PageCompare, "", timer, err)
	}()

	w, err := b.resolver.Resolve(period, now)
	if err != nil {
		return nil, err
	}

	symbols = uniqueSymbols(symbols)
	page = &ComparisonPage{
		RenderID: renderID,
		Symbols:  symbols,
		Period:   period,
		Window:   w,
		Dates:    []time.Time{},
		Series:   []NormalizedSeries{},
	}
	if len(symbols) == 0 {
		return page, nil
	}

	closes, err := services.FetchMultiClose(ctx, b.provider, symbols, w.DisplayStart, w.End, b.concurrency)
	if err != nil {
		return nil, err
	}

	page.Dates, page.Series = Normalize(closes)
	b.metrics.RecordRowsDisplayed(PageCompare, len(page.Dates))
	return page, nil
}

// Normalize aligns the series on the union of their dates and divides each by
// its own first close, scaled to BaseValue. Dates a ticker did not trade on
// are None for that ticker.
func Normalize(closes []models.CloseSeries) ([]time.Time, []NormalizedSeries) {
	seen := make(map[time.Time]struct{})
	for _, cs := range closes {
		for _, p := range cs.Points {
			seen[p.Date] = struct{}{}
		}
	}
	dates := make([]time.Time, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	index := make(map[time.Time]int, len(dates))
	for i, d := range dates {
		index[d] = i
	}

	series := make([]NormalizedSeries, len(closes))
	for i, cs := range closes {
		values := make([]optional.Option[float64], len(dates))
		for j := range values {
			values[j] = optional.None[float64]()
		}
		ns := NormalizedSeries{Symbol: cs.Symbol, Values: values, Return: optional.None[float64]()}

		if len(cs.Points) > 0 && cs.Points[0].Close != 0 {
			base := cs.Points[0].Close
			var last float64
			for _, p := range cs.Points {
				last = p.Close / base * BaseValue
				values[index[p.Date]] = optional.Some(last)
			}
			ns.Return = optional.Some(last - BaseValue)
		}
		series[i] = ns
	}
	return dates, series
}

func uniqueSymbols(symbols []string) []string {
	out := make([]string, 0, len(symbols))
	seen := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
