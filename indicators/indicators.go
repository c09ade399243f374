// Package indicators derives EMA, RSI and MACD columns from a price series.
// The math is delegated to go-talib; this package only aligns the output to
// the input index and masks each column's warm-up rows as null.
package indicators

import (
	"fmt"

	talib "github.com/markcheno/go-talib"
	"github.com/moznion/go-optional"

	"stock-viewer/models"
)

// Params selects the indicator lengths
type Params struct {
	EMAFast    int
	EMASlow    int
	RSI        int
	MACDFast   int
	MACDSlow   int
	MACDSignal int
}

// DefaultParams are EMA(20), EMA(50), RSI(14) and MACD(12,26,9)
var DefaultParams = Params{
	EMAFast:    20,
	EMASlow:    50,
	RSI:        14,
	MACDFast:   12,
	MACDSlow:   26,
	MACDSignal: 9,
}

// Validate checks every length is usable by the indicator library
func (p Params) Validate() error {
	if p.EMAFast < 2 || p.EMASlow < 2 {
		return fmt.Errorf("EMA lengths must be at least 2, got %d and %d", p.EMAFast, p.EMASlow)
	}
	if p.RSI < 2 {
		return fmt.Errorf("RSI length must be at least 2, got %d", p.RSI)
	}
	if p.MACDFast < 2 || p.MACDSlow < 2 || p.MACDSignal < 1 {
		return fmt.Errorf("invalid MACD lengths %d/%d/%d", p.MACDFast, p.MACDSlow, p.MACDSignal)
	}
	if p.MACDFast >= p.MACDSlow {
		return fmt.Errorf("MACD fast length %d must be shorter than slow length %d", p.MACDFast, p.MACDSlow)
	}
	return nil
}

// EMALookback is the number of leading rows EMA(n) leaves null
func EMALookback(n int) int {
	return n - 1
}

// RSILookback is the number of leading rows RSI(n) leaves null.
// The library needs n price changes, so n rows are consumed.
func RSILookback(n int) int {
	return n
}

// MACDLookback is the number of leading rows MACD(fast, slow, signal) leaves null
func MACDLookback(slow, signal int) int {
	return (slow - 1) + (signal - 1)
}

// MaxLookback returns the longest warm-up across every configured column
func (p Params) MaxLookback() int {
	lookback := EMALookback(p.EMAFast)
	for _, l := range []int{
		EMALookback(p.EMASlow),
		RSILookback(p.RSI),
		MACDLookback(p.MACDSlow, p.MACDSignal),
	} {
		if l > lookback {
			lookback = l
		}
	}
	return lookback
}

// Compute derives the full IndicatorSet for series
func Compute(series *models.PriceSeries, p Params) (*models.IndicatorSet, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	closes := series.Closes()
	macd, signal, hist := MACD(closes, p.MACDFast, p.MACDSlow, p.MACDSignal)

	return &models.IndicatorSet{
		EMAFast:       EMA(closes, p.EMAFast),
		EMASlow:       EMA(closes, p.EMASlow),
		RSI:           RSI(closes, p.RSI),
		MACD:          macd,
		MACDSignal:    signal,
		MACDHistogram: hist,
	}, nil
}

// EMA computes an exponential moving average column
func EMA(closes []float64, n int) models.Column {
	lookback := EMALookback(n)
	col := models.Column{Name: fmt.Sprintf("EMA_%d", n), Lookback: lookback}
	if len(closes) <= lookback {
		col.Values = nulls(len(closes))
		return col
	}
	col.Values = mask(talib.Ema(closes, n), lookback)
	return col
}

// RSI computes a relative strength index column
func RSI(closes []float64, n int) models.Column {
	lookback := RSILookback(n)
	col := models.Column{Name: fmt.Sprintf("RSI_%d", n), Lookback: lookback}
	if len(closes) <= lookback {
		col.Values = nulls(len(closes))
		return col
	}
	col.Values = mask(talib.Rsi(closes, n), lookback)
	return col
}

// MACD computes the MACD line, its signal line and the histogram
func MACD(closes []float64, fast, slow, signal int) (line, sig, hist models.Column) {
	lookback := MACDLookback(slow, signal)
	suffix := fmt.Sprintf("%d_%d_%d", fast, slow, signal)
	line = models.Column{Name: "MACD_" + suffix, Lookback: lookback}
	sig = models.Column{Name: "MACDs_" + suffix, Lookback: lookback}
	hist = models.Column{Name: "MACDh_" + suffix, Lookback: lookback}

	if len(closes) <= lookback {
		line.Values = nulls(len(closes))
		sig.Values = nulls(len(closes))
		hist.Values = nulls(len(closes))
		return line, sig, hist
	}

	m, s, h := talib.Macd(closes, fast, slow, signal)
	line.Values = mask(m, lookback)
	sig.Values = mask(s, lookback)
	hist.Values = mask(h, lookback)
	return line, sig, hist
}

func mask(values []float64, lookback int) []optional.Option[float64] {
	out := make([]optional.Option[float64], len(values))
	for i, v := range values {
		if i < lookback {
			out[i] = optional.None[float64]()
			continue
		}
		out[i] = optional.Some(v)
	}
	return out
}

func nulls(n int) []optional.Option[float64] {
	out := make([]optional.Option[float64], n)
	for i := range out {
		out[i] = optional.None[float64]()
	}
	return out
}
