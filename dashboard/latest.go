package dashboard

import (
	"strings"
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"

	"stock-viewer/models"
)

// NotAvailable is shown in place of a delta that cannot be computed
const NotAvailable = "n/a"

var hundred = decimal.NewFromInt(100)

// LatestMetric is the most recent close and its change against the previous session
type LatestMetric struct {
	Date          time.Time                        `json:"date"`
	Close         decimal.Decimal                  `json:"close"`
	PreviousClose optional.Option[decimal.Decimal] `json:"previous_close"`
	Change        optional.Option[decimal.Decimal] `json:"change"`
	ChangePercent optional.Option[decimal.Decimal] `json:"change_percent"`
}

// latestMetric summarises the last two rows. With a single row the delta is None.
func latestMetric(rows []models.Row) LatestMetric {
	if len(rows) == 0 {
		return LatestMetric{
			PreviousClose: optional.None[decimal.Decimal](),
			Change:        optional.None[decimal.Decimal](),
			ChangePercent: optional.None[decimal.Decimal](),
		}
	}

	last := rows[len(rows)-1]
	m := LatestMetric{
		Date:          last.Date,
		Close:         last.Close,
		PreviousClose: optional.None[decimal.Decimal](),
		Change:        optional.None[decimal.Decimal](),
		ChangePercent: optional.None[decimal.Decimal](),
	}
	if len(rows) < 2 {
		return m
	}

	prev := rows[len(rows)-2].Close
	change := last.Close.Sub(prev)
	m.PreviousClose = optional.Some(prev)
	m.Change = optional.Some(change)
	if !prev.IsZero() {
		m.ChangePercent = optional.Some(change.Div(prev).Mul(hundred))
	}
	return m
}

// HasDelta reports whether a previous close was available
func (m LatestMetric) HasDelta() bool {
	return m.Change.IsSome()
}

// CloseText formats the close as dollars, e.g. "$1,234.56"
func (m LatestMetric) CloseText() string {
	return "$" + formatThousands(m.Close)
}

// DeltaText formats the change as "1.23 (0.45%)", or NotAvailable
func (m LatestMetric) DeltaText() string {
	change, err := m.Change.Take()
	if err != nil {
		return NotAvailable
	}
	text := formatThousands(change)
	if pct, err := m.ChangePercent.Take(); err == nil {
		text += " (" + pct.StringFixed(2) + "%)"
	}
	return text
}

// formatThousands renders d with two decimals and comma-grouped integer digits
func formatThousands(d decimal.Decimal) string {
	s := d.StringFixed(2)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "." + frac
}
