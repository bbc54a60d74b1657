package product

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/salesdash/internal/transaction"
)

var errInvalidFormat = errors.New("invalid format")

type Handler struct {
	svc     *transaction.Service
	timeout time.Duration
}

// NewHandler bounds every store call made for a request by timeout.
func NewHandler(svc *transaction.Service, timeout time.Duration) *Handler {
	return &Handler{svc: svc, timeout: timeout}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/statistics", h.statistics)
	r.Get("/bar-chart", h.barChart)
	r.Get("/pie-chart", h.pieChart)
	r.Get("/combined", h.combined)
}

func (h *Handler) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(r.Context())
	}

	return context.WithTimeout(r.Context(), h.timeout)
}

// parseFilter reads month and year. A missing month is an error only when
// required is set.
func parseFilter(r *http.Request, required bool) (transaction.Filter, error) {
	var (
		f   transaction.Filter
		err error
	)

	q := r.URL.Query()

	if s := q.Get("month"); s != "" || required {
		if f.Month, err = transaction.ParseMonth(s); err != nil {
			return f, err
		}
	}

	if f.Year, err = transaction.ParseYear(q.Get("year")); err != nil {
		return f, err
	}

	return f, nil
}

func parseFormat(r *http.Request) (format, error) {
	switch f := format(strings.ToLower(r.URL.Query().Get("format"))); f {
	case formatArray, formatLabels:
		return f, nil
	}

	return formatArray, errInvalidFormat
}

func parsePositive(s string) (int, error) {
	if s == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, transaction.ErrInvalidPage
	}

	return n, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r, false)
	if err != nil {
		h.fail(w, r, err, "Failed to fetch products")
		return
	}

	filter := transaction.ListFilter{Filter: f, Search: r.URL.Query().Get("search")}

	if filter.Page, err = parsePositive(r.URL.Query().Get("page")); err != nil {
		h.fail(w, r, err, "Failed to fetch products")
		return
	}

	if filter.PerPage, err = parsePositive(r.URL.Query().Get("perPage")); err != nil {
		h.fail(w, r, err, "Failed to fetch products")
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	txs, err := h.svc.List(ctx, filter)
	if err != nil {
		h.fail(w, r, err, "Failed to fetch products")
		return
	}

	writeJSON(w, http.StatusOK, toResponseList(txs))
}

func (h *Handler) statistics(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r, true)
	if err != nil {
		h.fail(w, r, err, "Failed to fetch statistics")
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	stats, err := h.svc.Statistics(ctx, f)
	if err != nil {
		h.fail(w, r, err, "Failed to fetch statistics")
		return
	}

	writeJSON(w, http.StatusOK, toStatisticsResponse(stats))
}

func (h *Handler) barChart(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r, true)
	if err != nil {
		h.fail(w, r, err, "Failed to fetch bar chart data")
		return
	}

	fm, err := parseFormat(r)
	if err != nil {
		h.fail(w, r, err, "Failed to fetch bar chart data")
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	buckets, err := h.svc.BarChart(ctx, f)
	if err != nil {
		h.fail(w, r, err, "Failed to fetch bar chart data")
		return
	}

	writeJSON(w, http.StatusOK, toBarChartResponse(buckets, fm))
}

func (h *Handler) pieChart(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r, true)
	if err != nil {
		h.fail(w, r, err, "Failed to fetch pie chart data")
		return
	}

	fm, err := parseFormat(r)
	if err != nil {
		h.fail(w, r, err, "Failed to fetch pie chart data")
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	counts, err := h.svc.PieChart(ctx, f)
	if err != nil {
		h.fail(w, r, err, "Failed to fetch pie chart data")
		return
	}

	writeJSON(w, http.StatusOK, toPieChartResponse(counts, fm))
}

func (h *Handler) combined(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r, true)
	if err != nil {
		h.fail(w, r, err, "Failed to fetch combined data")
		return
	}

	fm, err := parseFormat(r)
	if err != nil {
		h.fail(w, r, err, "Failed to fetch combined data")
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	c, err := h.svc.Combined(ctx, f)
	if err != nil {
		h.fail(w, r, err, "Failed to fetch combined data")
		return
	}

	writeJSON(w, http.StatusOK, toCombinedResponse(c, fm))
}

// fail answers every failure, bad query parameters included, with a 500 and
// the endpoint's static msg. Only the log tells input errors apart.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, msg string) {
	if isInputError(err) {
		slog.WarnContext(r.Context(), msg, "path", r.URL.Path, "query", r.URL.RawQuery, "reason", "invalid request", "error", err)
	} else {
		slog.ErrorContext(r.Context(), msg, "path", r.URL.Path, "error", err)
	}

	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msg})
}

func isInputError(err error) bool {
	return errors.Is(err, transaction.ErrInvalidMonth) ||
		errors.Is(err, transaction.ErrInvalidYear) ||
		errors.Is(err, transaction.ErrInvalidPage) ||
		errors.Is(err, errInvalidFormat)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
