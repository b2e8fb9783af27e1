package movements

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/verifintek/verifintek/internal/concepts"
	"github.com/verifintek/verifintek/internal/platform/httpx"
	"github.com/verifintek/verifintek/internal/shared"
)

func suggestedType(raw string) concepts.SuggestedType {
	st := concepts.SuggestedType(raw)
	switch st {
	case concepts.SuggestedAsset, concepts.SuggestedLiability:
		return st
	}
	return concepts.SuggestedNone
}

// CacheInvalidator bumps downstream report caches after a mutation.
type CacheInvalidator interface {
	InvalidateCache(ctx context.Context) error
}

// WarmupScheduler queues a background report warmup once the stale caches
// have been bumped.
type WarmupScheduler interface {
	ScheduleWarmup(ctx context.Context) error
}

// Handler exposes the movement and installment endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	caches    CacheInvalidator
	warmups   WarmupScheduler
}

// NewHandler constructs the movements HTTP handler. caches and warmups may
// be nil when no report cache or job queue is wired.
func NewHandler(logger *slog.Logger, service *Service, caches CacheInvalidator, warmups WarmupScheduler) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
		caches:    caches,
		warmups:   warmups,
	}
}

// MountRoutes registers movement endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	r.Route("/movements", func(mr chi.Router) {
		mr.Get("/", h.List)
		mr.Post("/", h.Create)
		mr.Get("/{id}", h.Show)
		mr.Delete("/{id}", h.Delete)
	})
	r.Patch("/installments/{id}", h.EditInstallment)
}

type createMovementRequest struct {
	CompanyID        int64  `json:"company_id" validate:"required,gt=0"`
	SubUnitID        *int64 `json:"sub_unit_id"`
	Type             string `json:"type" validate:"required"`
	ConceptName      string `json:"concept_name" validate:"required"`
	SuggestedType    string `json:"suggested_type"`
	TotalAmount      string `json:"total_amount" validate:"required"`
	StartDate        string `json:"start_date" validate:"required"`
	Frequency        string `json:"frequency" validate:"required"`
	InstallmentCount int    `json:"installment_count"`
	Notes            string `json:"notes"`
}

type installmentResponse struct {
	ID       int64   `json:"id"`
	Sequence int     `json:"sequence"`
	DueDate  string  `json:"due_date"`
	Amount   string  `json:"amount"`
	Paid     bool    `json:"paid"`
	PaidDate *string `json:"paid_date,omitempty"`
}

type movementResponse struct {
	ID               int64                 `json:"id"`
	CompanyID        int64                 `json:"company_id"`
	SubUnitID        *int64                `json:"sub_unit_id,omitempty"`
	Type             string                `json:"type"`
	ConceptID        int64                 `json:"concept_id"`
	Folio            string                `json:"folio"`
	TotalAmount      string                `json:"total_amount"`
	RegisteredOn     string                `json:"registered_on"`
	StartDate        string                `json:"start_date"`
	InstallmentCount int                   `json:"installment_count"`
	Frequency        string                `json:"frequency"`
	Notes            string                `json:"notes,omitempty"`
	WorkflowStatus   string                `json:"workflow_status"`
	Settlement       string                `json:"settlement,omitempty"`
	Installments     []installmentResponse `json:"installments,omitempty"`
}

func toMovementResponse(m Movement) movementResponse {
	return movementResponse{
		ID:               m.ID,
		CompanyID:        m.CompanyID,
		SubUnitID:        m.SubUnitID,
		Type:             string(m.Type),
		ConceptID:        m.ConceptID,
		Folio:            m.Folio,
		TotalAmount:      m.TotalAmount.StringFixed(2),
		RegisteredOn:     m.RegisteredOn.Format("2006-01-02"),
		StartDate:        m.StartDate.Format("2006-01-02"),
		InstallmentCount: m.InstallmentCount,
		Frequency:        string(m.Frequency),
		Notes:            m.Notes,
		WorkflowStatus:   string(m.WorkflowStatus),
	}
}

func toViewResponse(view MovementView) movementResponse {
	resp := toMovementResponse(view.Movement)
	resp.Settlement = string(view.Settlement)
	resp.Installments = make([]installmentResponse, 0, len(view.Installments))
	for _, inst := range view.Installments {
		resp.Installments = append(resp.Installments, toInstallmentResponse(inst))
	}
	return resp
}

func toInstallmentResponse(inst Installment) installmentResponse {
	resp := installmentResponse{
		ID:       inst.ID,
		Sequence: inst.Sequence,
		DueDate:  inst.DueDate.Format("2006-01-02"),
		Amount:   inst.Amount.StringFixed(2),
		Paid:     inst.IsPaid(),
	}
	if inst.PaidDate != nil {
		v := inst.PaidDate.Format("2006-01-02")
		resp.PaidDate = &v
	}
	return resp
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actorID := h.requireUser(w, r)
	if actorID == 0 {
		return
	}

	var req createMovementRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	amount, err := ParseAmount(req.TotalAmount)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "total_amount must be a positive amount")
		return
	}
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "start_date must be YYYY-MM-DD")
		return
	}

	input := CreateMovementInput{
		CompanyID:        req.CompanyID,
		SubUnitID:        req.SubUnitID,
		CapturedBy:       actorID,
		Type:             Type(req.Type),
		ConceptName:      req.ConceptName,
		SuggestedType:    suggestedType(req.SuggestedType),
		TotalAmount:      amount,
		StartDate:        startDate,
		Frequency:        Frequency(req.Frequency),
		InstallmentCount: req.InstallmentCount,
		Notes:            req.Notes,
	}

	movement, err := h.service.CreateMovement(r.Context(), input)
	if err != nil {
		h.writeServiceError(w, err, "create movement failed")
		return
	}
	h.bumpCaches(r.Context())
	httpx.JSON(w, http.StatusCreated, toMovementResponse(*movement))
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	actorID := h.requireUser(w, r)
	if actorID == 0 {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid movement ID")
		return
	}

	view, err := h.service.GetMovement(r.Context(), actorID, id)
	if err != nil {
		h.writeServiceError(w, err, "get movement failed")
		return
	}
	httpx.JSON(w, http.StatusOK, toViewResponse(*view))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actorID := h.requireUser(w, r)
	if actorID == 0 {
		return
	}

	filter, err := h.parseListFilter(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	views, err := h.service.ListMovements(r.Context(), actorID, filter)
	if err != nil {
		h.writeServiceError(w, err, "list movements failed")
		return
	}

	out := make([]movementResponse, 0, len(views))
	for _, view := range views {
		out = append(out, toViewResponse(view))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"movements": out})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID := h.requireUser(w, r)
	if actorID == 0 {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid movement ID")
		return
	}

	if err := h.service.DeleteMovement(r.Context(), actorID, id); err != nil {
		h.writeServiceError(w, err, "delete movement failed")
		return
	}
	h.bumpCaches(r.Context())
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type editInstallmentRequest struct {
	PaidDate *string `json:"paid_date"`
}

func (h *Handler) EditInstallment(w http.ResponseWriter, r *http.Request) {
	actorID := h.requireUser(w, r)
	if actorID == 0 {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid installment ID")
		return
	}

	var req editInstallmentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}

	input := EditInstallmentInput{ActorID: actorID}
	if req.PaidDate != nil && *req.PaidDate != "" {
		paidDate, err := time.Parse("2006-01-02", *req.PaidDate)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "paid_date must be YYYY-MM-DD")
			return
		}
		input.PaidDate = &paidDate
	}

	installment, err := h.service.EditInstallment(r.Context(), id, input)
	if err != nil {
		h.writeServiceError(w, err, "edit installment failed")
		return
	}
	h.bumpCaches(r.Context())
	httpx.JSON(w, http.StatusOK, toInstallmentResponse(*installment))
}

func (h *Handler) parseListFilter(r *http.Request) (ListFilter, error) {
	q := r.URL.Query()
	filter := ListFilter{}

	if raw := q.Get("company_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return ListFilter{}, errors.New("invalid company_id")
		}
		filter.CompanyID = id
	} else if sess := shared.SessionFromContext(r.Context()); sess != nil {
		filter.CompanyID = sess.SelectedCompany()
	}
	if filter.CompanyID == 0 {
		return ListFilter{}, errors.New("company_id required (none selected)")
	}

	if raw := q.Get("sub_unit_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return ListFilter{}, errors.New("invalid sub_unit_id")
		}
		filter.SubUnitID = &id
	} else if sess := shared.SessionFromContext(r.Context()); sess != nil {
		if id := sess.SelectedSubUnit(); id != 0 {
			filter.SubUnitID = &id
		}
	}

	if raw := q.Get("type"); raw != "" {
		filter.Type = Type(raw)
		if !filter.Type.Valid() {
			return ListFilter{}, errors.New("invalid type")
		}
	}
	if raw := q.Get("concept_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return ListFilter{}, errors.New("invalid concept_id")
		}
		filter.ConceptID = id
	}
	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return ListFilter{}, errors.New("invalid from date")
		}
		filter.FromDate = t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return ListFilter{}, errors.New("invalid to date")
		}
		filter.ToDate = t
	}

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = 20
	}
	filter.Limit = limit
	filter.Offset = (page - 1) * limit
	return filter, nil
}

func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request) int64 {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
		return 0
	}
	id, err := strconv.ParseInt(sess.User(), 10, 64)
	if err != nil || id == 0 {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
		return 0
	}
	return id
}

func (h *Handler) bumpCaches(ctx context.Context) {
	if h.caches != nil {
		if err := h.caches.InvalidateCache(ctx); err != nil {
			h.logger.Warn("bump report cache", slog.Any("error", err))
		}
	}
	if h.warmups != nil {
		if err := h.warmups.ScheduleWarmup(ctx); err != nil {
			h.logger.Warn("schedule report warmup", slog.Any("error", err))
		}
	}
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "record not found")
	case errors.Is(err, shared.ErrWriteDenied), errors.Is(err, shared.ErrScopeDenied):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "not permitted for this scope")
	case errors.Is(err, ErrInvalidType),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrMissingStartDate),
		errors.Is(err, ErrMissingConcept),
		errors.Is(err, ErrUnknownFrequency):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error(logMsg, "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
