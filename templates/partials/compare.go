package partials

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"stock-viewer/dashboard"
	"stock-viewer/templates/components"
)

// Comparison renders the normalised performance chart and per-ticker returns
func Comparison(page *dashboard.ComparisonPage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := components.NewWriter(ctx, w)
		if page.Empty() {
			hw.Render(components.Notice("Select at least one ticker to compare."))
			return hw.Err()
		}

		hw.Raw(`<section class="comparison" data-render-id="`)
		hw.Text(page.RenderID)
		hw.Raw(`"><h3>Performance comparison (`)
		hw.Text(page.Period.String())
		hw.Raw(`)</h3>`)

		hw.Render(templ.JSONScript("compare-chart-data", page.Chart()))
		hw.Raw(`<div id="compare-chart" class="chart"></div><script>drawComparisonChart("compare-chart-data")</script>`)

		hw.Raw(`<table class="returns"><thead><tr><th>Ticker</th><th>Return</th></tr></thead><tbody>`)
		for _, s := range page.Series {
			hw.Raw(`<tr><td>`)
			hw.Text(s.Symbol)
			hw.Raw(`</td><td>`)
			if ret, err := s.Return.Take(); err == nil {
				hw.Text(strconv.FormatFloat(ret, 'f', 2, 64) + "%")
			} else {
				hw.Text(dashboard.NotAvailable)
			}
			hw.Raw(`</td></tr>`)
		}
		hw.Raw(`</tbody></table></section>`)
		return hw.Err()
	})
}
