package dashboard

import (
	"fmt"
	"strings"

	"stock-viewer/config"
)

// Variant selects how much of the single-ticker page is rendered
type Variant string

const (
	VariantBasic     Variant = config.VariantBasic
	VariantTechnical Variant = config.VariantTechnical
	VariantFull      Variant = config.VariantFull
)

// AllVariants lists the variants in increasing order of detail
var AllVariants = []Variant{VariantBasic, VariantTechnical, VariantFull}

// Layout is the arrangement of chart panels on the page
type Layout string

const (
	// LayoutSimple shows a close line and volume bars above the table
	LayoutSimple Layout = "simple"
	// LayoutStacked shows a candlestick panel with indicator panels below it
	LayoutStacked Layout = "stacked"
)

// PageOptions parameterises the single-ticker page
type PageOptions struct {
	Variant      Variant `json:"variant"`
	ShowOverlays bool    `json:"show_overlays"`
	ShowMACD     bool    `json:"show_macd"`
	Layout       Layout  `json:"layout"`
}

// ShowRSI reports whether the RSI panel is drawn
func (o PageOptions) ShowRSI() bool {
	return o.Layout == LayoutStacked
}

// ParseVariant parses a variant name, case-insensitively
func ParseVariant(s string) (Variant, error) {
	v := Variant(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllVariants {
		if v == known {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown page variant %q", s)
}

// OptionsFor returns the page options of a variant. Unknown variants get the full page.
func OptionsFor(v Variant) PageOptions {
	switch v {
	case VariantBasic:
		return PageOptions{Variant: v, Layout: LayoutSimple}
	case VariantTechnical:
		return PageOptions{Variant: v, ShowOverlays: true, Layout: LayoutStacked}
	default:
		return PageOptions{Variant: VariantFull, ShowOverlays: true, ShowMACD: true, Layout: LayoutStacked}
	}
}
