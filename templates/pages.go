// Package templates renders the full dashboard pages
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"stock-viewer/dashboard"
	"stock-viewer/models"
	"stock-viewer/templates/components"
)

// AppTitle is shown in the page header and the document title
const AppTitle = "Stock Price Viewer"

// TickerForm holds the selector state of the single-ticker page
type TickerForm struct {
	Tickers  []string
	Periods  []models.Period
	Variants []dashboard.Variant
	Symbol   string
	Period   models.Period
	Variant  dashboard.Variant
}

// CompareForm holds the selector state of the comparison page
type CompareForm struct {
	Tickers  []string
	Selected []string
	Periods  []models.Period
	Period   models.Period
}

// TickerIndex renders the single-ticker page around its content
func TickerIndex(form TickerForm, content templ.Component) templ.Component {
	tickers := make([]components.Option, len(form.Tickers))
	for i, t := range form.Tickers {
		tickers[i] = components.Option{Value: t, Selected: t == form.Symbol}
	}
	variants := make([]components.Option, len(form.Variants))
	for i, v := range form.Variants {
		variants[i] = components.Option{Value: string(v), Selected: v == form.Variant}
	}

	controls := []templ.Component{
		components.Select("symbol", "Ticker", false, tickers),
		components.Select("period", "Period", false, periodOptions(form.Periods, form.Period)),
		components.Select("variant", "View", false, variants),
	}
	return Layout(AppTitle, "/", dashboardBody("/", controls, content))
}

// CompareIndex renders the comparison page around its content
func CompareIndex(form CompareForm, content templ.Component) templ.Component {
	selected := make(map[string]bool, len(form.Selected))
	for _, s := range form.Selected {
		selected[s] = true
	}
	tickers := make([]components.Option, len(form.Tickers))
	for i, t := range form.Tickers {
		tickers[i] = components.Option{Value: t, Selected: selected[t]}
	}

	controls := []templ.Component{
		components.Hidden("tickers", ""),
		components.Select("tickers", "Tickers", true, tickers),
		components.Select("period", "Period", false, periodOptions(form.Periods, form.Period)),
	}
	return Layout("Compare | "+AppTitle, "/compare", dashboardBody("/compare", controls, content))
}

func periodOptions(periods []models.Period, current models.Period) []components.Option {
	out := make([]components.Option, len(periods))
	for i, p := range periods {
		out[i] = components.Option{Value: p.String(), Selected: p == current}
	}
	return out
}

// dashboardBody renders the selector form and the swappable content area.
// Changing any selector fetches the partial for the new selection.
func dashboardBody(path string, controls []templ.Component, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := components.NewWriter(ctx, w)
		hw.Raw(`<form class="controls" hx-get="`)
		hw.Text(path)
		hw.Raw(`" hx-target="#content" hx-trigger="change" hx-push-url="true">`)
		for _, c := range controls {
			hw.Render(c)
		}
		hw.Raw(`</form><div id="content">`)
		hw.Render(content)
		hw.Raw(`</div>`)
		return hw.Err()
	})
}

// Layout renders the HTML document shell
func Layout(title, active string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := components.NewWriter(ctx, w)
		hw.Raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>`)
		hw.Text(title)
		hw.Raw(`</title>`)
		hw.Raw(`<meta name="htmx-config" content='{"responseHandling":[{"code":".*","swap":true}]}'>`)
		hw.Raw(`<script src="https://unpkg.com/htmx.org@2.0.4"></script>`)
		hw.Raw(`<script src="https://cdn.plot.ly/plotly-2.35.2.min.js"></script>`)
		hw.Raw(`<style>` + styles + `</style><script>` + chartScript + `</script></head><body><header><h1>`)
		hw.Text(AppTitle)
		hw.Raw(`</h1><nav>`)
		for _, link := range []struct{ href, label string }{{"/", "Ticker"}, {"/compare", "Compare"}} {
			hw.Raw(`<a href="`)
			hw.Text(link.href)
			hw.Raw(`"`)
			if link.href == active {
				hw.Raw(` class="active"`)
			}
			hw.Raw(`>`)
			hw.Text(link.label)
			hw.Raw(`</a>`)
		}
		hw.Raw(`</nav></header><main>`)
		hw.Render(body)
		hw.Raw(`</main></body></html>`)
		return hw.Err()
	})
}
