// Package partials renders the page fragments swapped in by htmx.
package partials

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/a-h/templ"
	"github.com/moznion/go-optional"

	"stock-viewer/dashboard"
	"stock-viewer/models"
	"stock-viewer/templates/components"
)

// TickerPage renders the body of a single-ticker render
func TickerPage(page *dashboard.TickerPage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := components.NewWriter(ctx, w)

		hw.Raw(`<section class="ticker-page" data-render-id="`)
		hw.Text(page.RenderID)
		hw.Raw(`" data-variant="`)
		hw.Text(string(page.Options.Variant))
		hw.Raw(`"><h2>`)
		hw.Text(page.Title())
		hw.Raw(`</h2>`)

		hw.Render(LatestMetric(page.Latest))

		hw.Render(templ.JSONScript("ticker-chart-data", page.Chart()))
		if page.Options.Layout == dashboard.LayoutSimple {
			hw.Raw(`<div id="close-chart" class="chart"></div><div id="volume-chart" class="chart"></div>`)
		} else {
			hw.Raw(`<div id="price-chart" class="chart"></div><div id="rsi-chart" class="chart"></div>`)
			if page.Options.ShowMACD {
				hw.Raw(`<div id="macd-chart" class="chart"></div>`)
			}
		}
		hw.Raw(`<script>drawTickerCharts("ticker-chart-data")</script>`)

		hw.Raw(`<h3>Recent sessions</h3>`)
		hw.Render(RowsTable(page.Recent, page.Columns, page.Options))

		hw.Raw(`<details><summary>All sessions (`)
		hw.Text(strconv.Itoa(len(page.Rows)))
		hw.Raw(`)</summary>`)
		hw.Render(RowsTable(page.Rows, page.Columns, page.Options))
		hw.Raw(`</details>`)

		hw.Render(CompanyInfo(page.Info))
		hw.Raw(`</section>`)
		return hw.Err()
	})
}

// LatestMetric renders the latest close with its change against the previous close
func LatestMetric(m dashboard.LatestMetric) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := components.NewWriter(ctx, w)
		class := "delta"
		if change, err := m.Change.Take(); err == nil {
			if change.IsNegative() {
				class += " down"
			} else {
				class += " up"
			}
		}
		hw.Raw(`<div class="metric"><span class="label">Latest close `)
		hw.Text(m.Date.Format(time.DateOnly))
		hw.Raw(`</span><span class="value">`)
		hw.Text(m.CloseText())
		hw.Raw(`</span><span class="`)
		hw.Text(class)
		hw.Raw(`">`)
		hw.Text(m.DeltaText())
		hw.Raw(`</span></div>`)
		return hw.Err()
	})
}

// RowsTable renders price rows with the indicator columns the options draw
func RowsTable(rows []models.Row, columns []string, opts dashboard.PageOptions) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := components.NewWriter(ctx, w)
		hw.Raw(`<table class="rows"><thead><tr><th>Date</th><th>Open</th><th>High</th><th>Low</th><th>Close</th><th>Volume</th>`)
		for _, name := range visibleColumns(columns, opts) {
			hw.Raw(`<th>`)
			hw.Text(name)
			hw.Raw(`</th>`)
		}
		hw.Raw(`</tr></thead><tbody>`)

		for _, r := range rows {
			hw.Raw(`<tr><td>`)
			hw.Text(r.Date.Format(time.DateOnly))
			for _, v := range []string{r.Open.StringFixed(2), r.High.StringFixed(2), r.Low.StringFixed(2), r.Close.StringFixed(2), strconv.FormatInt(r.Volume, 10)} {
				hw.Raw(`</td><td>`)
				hw.Text(v)
			}
			for _, v := range visibleValues(r, opts) {
				hw.Raw(`</td><td>`)
				hw.Text(formatOption(v))
			}
			hw.Raw(`</td></tr>`)
		}
		hw.Raw(`</tbody></table>`)
		return hw.Err()
	})
}

// CompanyInfo renders the provider's metadata in a collapsed block
func CompanyInfo(info *models.CompanyInfo) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if info == nil {
			return nil
		}
		body, err := json.MarshalIndent(info.Fields, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode company info: %w", err)
		}
		hw := components.NewWriter(ctx, w)
		hw.Raw(`<details class="company-info"><summary>Company info</summary><pre>`)
		hw.Text(string(body))
		hw.Raw(`</pre></details>`)
		return hw.Err()
	})
}

// visibleColumns picks the indicator headers in IndicatorSet column order
func visibleColumns(columns []string, opts dashboard.PageOptions) []string {
	if len(columns) != 6 {
		return nil
	}
	var out []string
	if opts.ShowOverlays {
		out = append(out, columns[0], columns[1])
	}
	if opts.ShowRSI() {
		out = append(out, columns[2])
	}
	if opts.ShowMACD {
		out = append(out, columns[3:]...)
	}
	return out
}

func visibleValues(r models.Row, opts dashboard.PageOptions) []optional.Option[float64] {
	var out []optional.Option[float64]
	if opts.ShowOverlays {
		out = append(out, r.EMAFast, r.EMASlow)
	}
	if opts.ShowRSI() {
		out = append(out, r.RSI)
	}
	if opts.ShowMACD {
		out = append(out, r.MACD, r.MACDSignal, r.MACDHistogram)
	}
	return out
}

func formatOption(v optional.Option[float64]) string {
	f, err := v.Take()
	if err != nil {
		return ""
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}
