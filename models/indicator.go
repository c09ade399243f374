package models

import (
	"github.com/moznion/go-optional"
)

// Column is one derived indicator column aligned to a PriceSeries.
// Values inside the lookback are None.
type Column struct {
	Name     string                     `json:"name"`
	Lookback int                        `json:"lookback"`
	Values   []optional.Option[float64] `json:"values"`
}

// At returns the value at index i, None when i is out of range
func (c Column) At(i int) optional.Option[float64] {
	if i < 0 || i >= len(c.Values) {
		return optional.None[float64]()
	}
	return c.Values[i]
}

// FirstValid returns the index of the first non-null value, or -1
func (c Column) FirstValid() int {
	for i, v := range c.Values {
		if v.IsSome() {
			return i
		}
	}
	return -1
}

// IndicatorSet holds the derived columns computed for one PriceSeries
type IndicatorSet struct {
	EMAFast       Column `json:"ema_fast"`
	EMASlow       Column `json:"ema_slow"`
	RSI           Column `json:"rsi"`
	MACD          Column `json:"macd"`
	MACDSignal    Column `json:"macd_signal"`
	MACDHistogram Column `json:"macd_histogram"`
}

// Columns returns every column in display order
func (s *IndicatorSet) Columns() []Column {
	return []Column{s.EMAFast, s.EMASlow, s.RSI, s.MACD, s.MACDSignal, s.MACDHistogram}
}

// Row is a bar joined with its indicator values
type Row struct {
	Bar
	EMAFast       optional.Option[float64] `json:"ema_fast"`
	EMASlow       optional.Option[float64] `json:"ema_slow"`
	RSI           optional.Option[float64] `json:"rsi"`
	MACD          optional.Option[float64] `json:"macd"`
	MACDSignal    optional.Option[float64] `json:"macd_signal"`
	MACDHistogram optional.Option[float64] `json:"macd_histogram"`
}

// Warm reports whether every indicator value on the row is present
func (r Row) Warm() bool {
	return r.EMAFast.IsSome() && r.EMASlow.IsSome() && r.RSI.IsSome() &&
		r.MACD.IsSome() && r.MACDSignal.IsSome() && r.MACDHistogram.IsSome()
}

// JoinRows zips the series with its indicators, keeping rows from index start onward
func JoinRows(series *PriceSeries, set *IndicatorSet, start int) []Row {
	if start < 0 {
		start = 0
	}
	n := series.Len()
	if start >= n {
		return []Row{}
	}
	rows := make([]Row, 0, n-start)
	for i := start; i < n; i++ {
		row := Row{Bar: series.Bars[i]}
		if set != nil {
			row.EMAFast = set.EMAFast.At(i)
			row.EMASlow = set.EMASlow.At(i)
			row.RSI = set.RSI.At(i)
			row.MACD = set.MACD.At(i)
			row.MACDSignal = set.MACDSignal.At(i)
			row.MACDHistogram = set.MACDHistogram.At(i)
		}
		rows = append(rows, row)
	}
	return rows
}
