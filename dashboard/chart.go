package dashboard

import (
	"time"

	"github.com/moznion/go-optional"
)

// PriceChart is the column-oriented chart payload of a TickerPage.
// Indicator columns are omitted when the page options do not draw them.
type PriceChart struct {
	Dates         []string                   `json:"dates"`
	Open          []float64                  `json:"open"`
	High          []float64                  `json:"high"`
	Low           []float64                  `json:"low"`
	Close         []float64                  `json:"close"`
	Volume        []int64                    `json:"volume"`
	EMAFast       []optional.Option[float64] `json:"ema_fast,omitempty"`
	EMASlow       []optional.Option[float64] `json:"ema_slow,omitempty"`
	RSI           []optional.Option[float64] `json:"rsi,omitempty"`
	MACD          []optional.Option[float64] `json:"macd,omitempty"`
	MACDSignal    []optional.Option[float64] `json:"macd_signal,omitempty"`
	MACDHistogram []optional.Option[float64] `json:"macd_histogram,omitempty"`
}

// Chart projects the displayed rows onto chart columns
func (p *TickerPage) Chart() PriceChart {
	n := len(p.Rows)
	c := PriceChart{
		Dates:  make([]string, n),
		Open:   make([]float64, n),
		High:   make([]float64, n),
		Low:    make([]float64, n),
		Close:  make([]float64, n),
		Volume: make([]int64, n),
	}
	for i, r := range p.Rows {
		c.Dates[i] = r.Date.Format(time.DateOnly)
		c.Open[i] = r.Open.InexactFloat64()
		c.High[i] = r.High.InexactFloat64()
		c.Low[i] = r.Low.InexactFloat64()
		c.Close[i] = r.Close.InexactFloat64()
		c.Volume[i] = r.Volume
	}

	if p.Options.ShowOverlays {
		c.EMAFast = make([]optional.Option[float64], n)
		c.EMASlow = make([]optional.Option[float64], n)
		for i, r := range p.Rows {
			c.EMAFast[i] = r.EMAFast
			c.EMASlow[i] = r.EMASlow
		}
	}
	if p.Options.ShowRSI() {
		c.RSI = make([]optional.Option[float64], n)
		for i, r := range p.Rows {
			c.RSI[i] = r.RSI
		}
	}
	if p.Options.ShowMACD {
		c.MACD = make([]optional.Option[float64], n)
		c.MACDSignal = make([]optional.Option[float64], n)
		c.MACDHistogram = make([]optional.Option[float64], n)
		for i, r := range p.Rows {
			c.MACD[i] = r.MACD
			c.MACDSignal[i] = r.MACDSignal
			c.MACDHistogram[i] = r.MACDHistogram
		}
	}
	return c
}

// ComparisonChart is the chart payload of a ComparisonPage
type ComparisonChart struct {
	Dates  []string                              `json:"dates"`
	Series map[string][]optional.Option[float64] `json:"series"`
}

// Chart projects the normalised series onto chart columns
func (p *ComparisonPage) Chart() ComparisonChart {
	c := ComparisonChart{
		Dates:  make([]string, len(p.Dates)),
		Series: make(map[string][]optional.Option[float64], len(p.Series)),
	}
	for i, d := range p.Dates {
		c.Dates[i] = d.Format(time.DateOnly)
	}
	for _, s := range p.Series {
		c.Series[s.Symbol] = s.Values
	}
	return c
}
