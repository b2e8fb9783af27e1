package access

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/verifintek/verifintek/internal/platform/httpx"
	"github.com/verifintek/verifintek/internal/shared"
)

// Handler exposes scope resolution and selection. The current selection
// lives in the session with last-write-wins semantics; a rejected
// selection leaves it untouched.
type Handler struct {
	logger   *slog.Logger
	resolver *Resolver
}

// NewHandler constructs the scope HTTP handler.
func NewHandler(logger *slog.Logger, resolver *Resolver) *Handler {
	return &Handler{logger: logger, resolver: resolver}
}

// MountRoutes registers scope endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	r.Get("/scope", h.Show)
	r.Post("/scope/company/{id}", h.SelectCompany)
	r.Delete("/scope/company", h.ClearCompany)
	r.Post("/scope/subunit/{id}", h.SelectSubUnit)
	r.Post("/memberships", h.Grant)
	r.Delete("/memberships/{id}", h.Revoke)
}

type scopeResponse struct {
	Superuser         bool         `json:"superuser"`
	Companies         []CompanyRef `json:"companies"`
	SubUnits          []SubUnitRef `json:"sub_units"`
	SelectedCompanyID int64        `json:"selected_company_id,omitempty"`
	SelectedSubUnitID int64        `json:"selected_sub_unit_id,omitempty"`
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	sess, userID := h.requireUser(w, r)
	if userID == 0 {
		return
	}

	scope, err := h.resolver.ResolveScope(r.Context(), userID, sess.SelectedCompany(), sess.SelectedSubUnit())
	if err != nil {
		h.logger.Error("resolve scope failed", "error", err, "user_id", userID)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	httpx.JSON(w, http.StatusOK, scopeResponse{
		Superuser:         scope.Superuser,
		Companies:         scope.Companies,
		SubUnits:          scope.SubUnits,
		SelectedCompanyID: scope.SelectedCompanyID,
		SelectedSubUnitID: scope.SelectedSubUnitID,
	})
}

func (h *Handler) SelectCompany(w http.ResponseWriter, r *http.Request) {
	sess, userID := h.requireUser(w, r)
	if userID == 0 {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid company ID")
		return
	}

	company, err := h.resolver.AuthorizeCompanySelection(r.Context(), userID, id)
	if err != nil {
		h.writeSelectionError(w, err)
		return
	}

	sess.SetSelectedCompany(company.ID)
	sess.SetSelectedSubUnit(0)
	httpx.JSON(w, http.StatusOK, map[string]any{"selected_company_id": company.ID})
}

func (h *Handler) ClearCompany(w http.ResponseWriter, r *http.Request) {
	sess, userID := h.requireUser(w, r)
	if userID == 0 {
		return
	}
	sess.SetSelectedCompany(0)
	httpx.JSON(w, http.StatusOK, map[string]any{"selected_company_id": 0})
}

func (h *Handler) SelectSubUnit(w http.ResponseWriter, r *http.Request) {
	sess, userID := h.requireUser(w, r)
	if userID == 0 {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid sub-unit ID")
		return
	}

	su, err := h.resolver.AuthorizeSubUnitSelection(r.Context(), userID, id)
	if err != nil {
		h.writeSelectionError(w, err)
		return
	}

	sess.SetSelectedCompany(su.CompanyID)
	sess.SetSelectedSubUnit(su.ID)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"selected_company_id":  su.CompanyID,
		"selected_sub_unit_id": su.ID,
	})
}

type grantRequest struct {
	UserID         int64  `json:"user_id"`
	CompanyID      int64  `json:"company_id"`
	SubUnitID      *int64 `json:"sub_unit_id"`
	Role           string `json:"role"`
	CanRead        bool   `json:"can_read"`
	CanWrite       bool   `json:"can_write"`
	CanListReports bool   `json:"can_list_reports"`
}

func (h *Handler) Grant(w http.ResponseWriter, r *http.Request) {
	_, userID := h.requireUser(w, r)
	if userID == 0 {
		return
	}

	var req grantRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}

	membership, err := h.resolver.GrantMembership(r.Context(), GrantInput{
		UserID:         req.UserID,
		CompanyID:      req.CompanyID,
		SubUnitID:      req.SubUnitID,
		Role:           Role(req.Role),
		CanRead:        req.CanRead,
		CanWrite:       req.CanWrite,
		CanListReports: req.CanListReports,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRole):
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		case errors.Is(err, ErrCompanyConflict), errors.Is(err, ErrDuplicateMembership):
			httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
		default:
			h.logger.Error("grant membership failed", "error", err)
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, membership)
}

func (h *Handler) Revoke(w http.ResponseWriter, r *http.Request) {
	_, userID := h.requireUser(w, r)
	if userID == 0 {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid membership ID")
		return
	}
	if err := h.resolver.RevokeMembership(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "membership not found")
			return
		}
		h.logger.Error("revoke membership failed", "error", err, "id", id)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}

func (h *Handler) writeSelectionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "record not found")
	case errors.Is(err, ErrScopeDenied):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "selection not permitted; current selection unchanged")
	default:
		h.logger.Error("scope selection failed", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request) (*shared.Session, int64) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
		return nil, 0
	}
	id, err := strconv.ParseInt(sess.User(), 10, 64)
	if err != nil || id == 0 {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
		return nil, 0
	}
	return sess, id
}
