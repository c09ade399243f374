package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"stock-viewer/config"
	"stock-viewer/dashboard"
	"stock-viewer/internal/app"
	"stock-viewer/models"
	"stock-viewer/observability"
	"stock-viewer/services"
	"stock-viewer/templates"
	"stock-viewer/templates/components"
	"stock-viewer/templates/partials"
	"stock-viewer/window"

	"github.com/go-chi/chi/v5"
)

var symbolPattern = regexp.MustCompile(`^[A-Z0-9.-]+$`)

// Handler handles HTTP API requests
type Handler struct {
	app *app.App
	cfg *config.Config
}

// NewHandler creates a new Handler
func NewHandler(application *app.App, cfg *config.Config) *Handler {
	return &Handler{app: application, cfg: cfg}
}

// tickerRequest is a validated single-ticker selection
type tickerRequest struct {
	symbol  string
	period  models.Period
	variant dashboard.Variant
}

// compareRequest is a validated comparison selection
type compareRequest struct {
	symbols []string
	period  models.Period
}

// HandleIndex serves the single-ticker page; htmx requests get the content partial only
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseTickerRequest(r, r.URL.Query().Get("symbol"))
	if err != nil {
		h.renderTicker(w, r, req, http.StatusBadRequest, components.ErrorState(err.Error()))
		return
	}

	page, err := h.app.TickerPage(r.Context(), req.symbol, req.period, req.variant)
	if err != nil {
		h.renderTicker(w, r, req, statusFor(err), components.ErrorState(err.Error()))
		return
	}
	h.renderTicker(w, r, req, http.StatusOK, partials.TickerPage(page))
}

// HandleCompare serves the comparison page; htmx requests get the content partial only
func (h *Handler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseCompareRequest(r)
	if err != nil {
		h.renderCompare(w, r, req, http.StatusBadRequest, components.ErrorState(err.Error()))
		return
	}

	page, err := h.app.Comparison(r.Context(), req.symbols, req.period)
	if err != nil {
		h.renderCompare(w, r, req, statusFor(err), components.ErrorState(err.Error()))
		return
	}
	h.renderCompare(w, r, req, http.StatusOK, partials.Comparison(page))
}

// HandleGetTicker returns the single-ticker page model as JSON
func (h *Handler) HandleGetTicker(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseTickerRequest(r, chi.URLParam(r, "symbol"))
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	page, err := h.app.TickerPage(r.Context(), req.symbol, req.period, req.variant)
	if err != nil {
		h.jsonError(w, err.Error(), statusFor(err))
		return
	}
	h.jsonResponse(w, page)
}

// HandleGetCompare returns the comparison page model as JSON
func (h *Handler) HandleGetCompare(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseCompareRequest(r)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	page, err := h.app.Comparison(r.Context(), req.symbols, req.period)
	if err != nil {
		h.jsonError(w, err.Error(), statusFor(err))
		return
	}
	h.jsonResponse(w, page)
}

// HandleGetWindow resolves a period to its DateWindow. An optional now
// (YYYY-MM-DD) replaces the current date.
func (h *Handler) HandleGetWindow(w http.ResponseWriter, r *http.Request) {
	period, err := h.ParsePeriodParam(r, h.cfg.Dashboard.DefaultPeriod)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var now time.Time
	if s := r.URL.Query().Get("now"); s != "" {
		now, err = time.Parse(time.DateOnly, s)
		if err != nil {
			h.jsonError(w, "invalid now (expected YYYY-MM-DD)", http.StatusBadRequest)
			return
		}
	}

	dw, err := h.app.Window(period, now)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.jsonResponse(w, map[string]interface{}{
		"period":        period,
		"fetch_start":   dw.FetchStart.Format(time.DateOnly),
		"display_start": dw.DisplayStart.Format(time.DateOnly),
		"end":           dw.End.Format(time.DateOnly),
		"warmup_days":   dw.WarmupDays(),
	})
}

// HandleGetPeriods lists the supported periods with their spans
func (h *Handler) HandleGetPeriods(w http.ResponseWriter, r *http.Request) {
	type periodInfo struct {
		Period   models.Period `json:"period"`
		SpanDays int           `json:"span_days"`
	}

	periods := make([]periodInfo, 0, len(models.AllPeriods))
	for _, p := range models.AllPeriods {
		days, err := window.SpanDays(p)
		if err != nil {
			continue
		}
		periods = append(periods, periodInfo{Period: p, SpanDays: days})
	}

	h.jsonResponse(w, map[string]interface{}{
		"periods":         periods,
		"compare_periods": h.cfg.Dashboard.ComparePeriods,
		"tickers":         h.cfg.Dashboard.Tickers,
		"compare_tickers": h.cfg.Dashboard.CompareTickers,
		"variants":        dashboard.AllVariants,
	})
}

// HandleHealth returns the health status of the application
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := h.app.Health(r.Context())
	if status.Status != "ok" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(status)
		return
	}
	h.jsonResponse(w, status)
}

// Helper functions

func (h *Handler) parseTickerRequest(r *http.Request, symbol string) (tickerRequest, error) {
	req := tickerRequest{
		symbol:  strings.ToUpper(strings.TrimSpace(symbol)),
		period:  models.Period(h.cfg.Dashboard.DefaultPeriod),
		variant: dashboard.Variant(h.cfg.Dashboard.DefaultVariant),
	}
	if req.symbol == "" {
		req.symbol = h.cfg.Dashboard.Tickers[0]
	}

	if err := h.ValidateSymbol(req.symbol); err != nil {
		return req, err
	}
	if !contains(h.cfg.Dashboard.Tickers, req.symbol) {
		return req, fmt.Errorf("ticker %s is not available (choose one of %s)", req.symbol, strings.Join(h.cfg.Dashboard.Tickers, ", "))
	}

	period, err := h.ParsePeriodParam(r, h.cfg.Dashboard.DefaultPeriod)
	if err != nil {
		return req, err
	}
	req.period = period

	if v := r.URL.Query().Get("variant"); v != "" {
		variant, err := dashboard.ParseVariant(v)
		if err != nil {
			return req, err
		}
		req.variant = variant
	}
	return req, nil
}

func (h *Handler) parseCompareRequest(r *http.Request) (compareRequest, error) {
	req := compareRequest{period: models.Period(h.cfg.Dashboard.DefaultComparePeriod)}

	query := r.URL.Query()
	if _, ok := query["tickers"]; ok {
		req.symbols = []string{}
		for _, value := range query["tickers"] {
			for _, s := range strings.Split(value, ",") {
				if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
					req.symbols = append(req.symbols, s)
				}
			}
		}
	} else {
		req.symbols = append([]string(nil), h.cfg.Dashboard.CompareDefaults...)
	}

	for _, s := range req.symbols {
		if !contains(h.cfg.Dashboard.CompareTickers, s) {
			return req, fmt.Errorf("ticker %s is not available for comparison", s)
		}
	}

	period, err := h.ParsePeriodParam(r, h.cfg.Dashboard.DefaultComparePeriod)
	if err != nil {
		return req, err
	}
	if !contains(h.cfg.Dashboard.ComparePeriods, period.String()) {
		return req, fmt.Errorf("period %s is not available for comparison", period)
	}
	req.period = period
	return req, nil
}

func (h *Handler) renderTicker(w http.ResponseWriter, r *http.Request, req tickerRequest, status int, content templComponent) {
	if isHTMXRequest(r) {
		h.htmlResponse(w, status, content, r)
		return
	}
	form := templates.TickerForm{
		Tickers:  h.cfg.Dashboard.Tickers,
		Periods:  models.AllPeriods,
		Variants: dashboard.AllVariants,
		Symbol:   req.symbol,
		Period:   req.period,
		Variant:  req.variant,
	}
	h.htmlResponse(w, status, templates.TickerIndex(form, content), r)
}

func (h *Handler) renderCompare(w http.ResponseWriter, r *http.Request, req compareRequest, status int, content templComponent) {
	if isHTMXRequest(r) {
		h.htmlResponse(w, status, content, r)
		return
	}
	periods := make([]models.Period, 0, len(h.cfg.Dashboard.ComparePeriods))
	for _, p := range h.cfg.Dashboard.ComparePeriods {
		periods = append(periods, models.Period(p))
	}
	form := templates.CompareForm{
		Tickers:  h.cfg.Dashboard.CompareTickers,
		Selected: req.symbols,
		Periods:  periods,
		Period:   req.period,
	}
	h.htmlResponse(w, status, templates.CompareIndex(form, content), r)
}

// statusFor maps a render failure to an HTTP status
func statusFor(err error) int {
	if errors.Is(err, window.ErrUnmappedPeriod) {
		return http.StatusBadRequest
	}
	switch services.KindOf(err) {
	case services.KindNotFound, services.KindEmptyResult:
		return http.StatusNotFound
	default:
		return http.StatusServiceUnavailable
	}
}

// isHTMXRequest checks if the request is from HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// templComponent matches the templ.Component interface
type templComponent interface {
	Render(ctx context.Context, w io.Writer) error
}

// htmlResponse renders a templ component as HTML
func (h *Handler) htmlResponse(w http.ResponseWriter, status int, component templComponent, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := component.Render(r.Context(), w); err != nil {
		observability.WithError(err).Error("failed to render page", "path", r.URL.Path)
	}
}

// ValidateSymbol validates a stock symbol
func (h *Handler) ValidateSymbol(symbol string) error {
	if symbol == "" {
		return fmt.Errorf("symbol is required")
	}

	if len(symbol) > 10 {
		return fmt.Errorf("symbol too long (max 10 characters)")
	}

	if !symbolPattern.MatchString(symbol) {
		return fmt.Errorf("invalid symbol format (alphanumeric, dots, and dashes only)")
	}

	return nil
}

// ParsePeriodParam parses the period query parameter
func (h *Handler) ParsePeriodParam(r *http.Request, defaultPeriod string) (models.Period, error) {
	s := r.URL.Query().Get("period")
	if s == "" {
		s = defaultPeriod
	}
	return models.ParsePeriod(s)
}

func (h *Handler) jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
