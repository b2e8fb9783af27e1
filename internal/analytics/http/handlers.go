package analytichttp

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/verifintek/verifintek/internal/analytics"
	"github.com/verifintek/verifintek/internal/analytics/export"
	"github.com/verifintek/verifintek/internal/platform/httpx"
	"github.com/verifintek/verifintek/internal/shared"
)

const requestTimeout = 5 * time.Second

// ReportService defines the aggregation contract used by the handler.
type ReportService interface {
	Aggregate(ctx context.Context, userID int64, filter analytics.Filter) (analytics.ReportBundle, error)
}

// Handler coordinates HTTP requests for the reporting endpoints.
type Handler struct {
	logger  *slog.Logger
	service ReportService
	bufPool sync.Pool
}

// NewHandler constructs the reporting HTTP handler.
func NewHandler(logger *slog.Logger, service ReportService) *Handler {
	h := &Handler{logger: logger, service: service}
	h.bufPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

func (h *Handler) handleBundle(w http.ResponseWriter, r *http.Request) {
	bundle, ok := h.loadBundle(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, bundle)
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	bundle, ok := h.loadBundle(w, r)
	if !ok {
		return
	}

	buf := h.bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer h.bufPool.Put(buf)

	if err := export.WriteBundleCSV(buf, bundle); err != nil {
		h.logger.Error("render report csv", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="report.csv"`)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) handleText(w http.ResponseWriter, r *http.Request) {
	bundle, ok := h.loadBundle(w, r)
	if !ok {
		return
	}

	buf := h.bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer h.bufPool.Put(buf)

	if err := export.WriteSummaryText(buf, bundle); err != nil {
		h.logger.Error("render report summary", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) loadBundle(w http.ResponseWriter, r *http.Request) (analytics.ReportBundle, bool) {
	sess := shared.SessionFromContext(r.Context())
	userID := sessionUserID(sess)
	if userID == 0 {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
		return analytics.ReportBundle{}, false
	}

	filter, err := parseFilter(r, sess)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return analytics.ReportBundle{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	bundle, err := h.service.Aggregate(ctx, userID, filter)
	if err != nil {
		if errors.Is(err, analytics.ErrPermissionDenied) {
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "report access denied for this scope")
			return analytics.ReportBundle{}, false
		}
		h.logger.Error("aggregate report", "error", err, "company_id", filter.CompanyID)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return analytics.ReportBundle{}, false
	}
	return bundle, true
}

// parseFilter builds the report scope from the query string, falling
// back to the session's selected company and sub-unit.
func parseFilter(r *http.Request, sess *shared.Session) (analytics.Filter, error) {
	var filter analytics.Filter

	if raw := r.URL.Query().Get("company_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return analytics.Filter{}, errors.New("invalid company_id")
		}
		filter.CompanyID = id
	} else if sess != nil {
		filter.CompanyID = sess.SelectedCompany()
	}
	if filter.CompanyID == 0 {
		return analytics.Filter{}, errors.New("company_id required (none selected)")
	}

	if raw := r.URL.Query().Get("sub_unit_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return analytics.Filter{}, errors.New("invalid sub_unit_id")
		}
		filter.SubUnitID = &id
	} else if sess != nil {
		if id := sess.SelectedSubUnit(); id != 0 {
			filter.SubUnitID = &id
		}
	}

	if raw := r.URL.Query().Get("concept_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return analytics.Filter{}, errors.New("invalid concept_id")
		}
		filter.ConceptID = &id
	}

	var err error
	if filter.From, err = parseDate(r.URL.Query().Get("from")); err != nil {
		return analytics.Filter{}, errors.New("invalid from date, want YYYY-MM-DD")
	}
	if filter.To, err = parseDate(r.URL.Query().Get("to")); err != nil {
		return analytics.Filter{}, errors.New("invalid to date, want YYYY-MM-DD")
	}
	return filter, nil
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", raw)
}

func sessionUserID(sess *shared.Session) int64 {
	if sess == nil {
		return 0
	}
	id, err := strconv.ParseInt(sess.User(), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
