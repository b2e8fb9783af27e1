package subunits

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/verifintek/verifintek/internal/masterdata/shared"
	"github.com/verifintek/verifintek/internal/platform/httpx"
	appshared "github.com/verifintek/verifintek/internal/shared"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers sub-unit endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Show)
	r.Put("/{id}", h.Update)
	r.Post("/{id}/activate", h.Activate)
	r.Post("/{id}/deactivate", h.Deactivate)
	r.Delete("/{id}", h.Delete)
}

type subUnitForm struct {
	CompanyID int64  `json:"company_id"`
	Name      string `json:"name"`
	IsActive  *bool  `json:"is_active"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = shared.DefaultPage
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = shared.DefaultLimit
	}
	filters := shared.ListFilters{
		Page:    page,
		Limit:   limit,
		Search:  r.URL.Query().Get("search"),
		SortDir: r.URL.Query().Get("dir"),
	}
	if raw := r.URL.Query().Get("company_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filters.CompanyID = &id
		}
	}
	if raw := r.URL.Query().Get("active"); raw != "" {
		active := raw == "true" || raw == "1"
		filters.IsActive = &active
	}

	units, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list sub-units failed", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "failed to load sub-units")
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"sub_units":  units,
		"pagination": appshared.NewPagination(page, limit, total),
	})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid sub-unit ID")
		return
	}

	su, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "sub-unit not found")
			return
		}
		h.logger.Error("get sub-unit failed", "error", err, "id", id)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, su)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var form subUnitForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}

	created, err := h.service.Create(r.Context(), SubUnit{CompanyID: form.CompanyID, Name: form.Name})
	if err != nil {
		h.writeServiceError(w, err, "create sub-unit failed")
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid sub-unit ID")
		return
	}

	var form subUnitForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}

	current, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err, "get sub-unit failed")
		return
	}
	current.Name = form.Name
	if form.CompanyID != 0 {
		current.CompanyID = form.CompanyID
	}
	if form.IsActive != nil {
		current.IsActive = *form.IsActive
	}

	if err := h.service.Update(r.Context(), id, current); err != nil {
		h.writeServiceError(w, err, "update sub-unit failed")
		return
	}
	httpx.JSON(w, http.StatusOK, current)
}

func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid sub-unit ID")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, err, "delete sub-unit failed")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid sub-unit ID")
		return
	}
	var opErr error
	if active {
		opErr = h.service.Activate(r.Context(), id)
	} else {
		opErr = h.service.Deactivate(r.Context(), id)
	}
	if opErr != nil {
		h.writeServiceError(w, opErr, "toggle sub-unit failed")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": id, "is_active": active})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "sub-unit not found")
	case errors.Is(err, ErrNameTaken):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, shared.ErrInvalidID), errors.Is(err, ErrNameRequired), errors.Is(err, ErrCompanyRequired):
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
	default:
		h.logger.Error(logMsg, "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
