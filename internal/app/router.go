package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/verifintek/verifintek/internal/access"
	analytichttp "github.com/verifintek/verifintek/internal/analytics/http"
	"github.com/verifintek/verifintek/internal/auth"
	"github.com/verifintek/verifintek/internal/concepts"
	"github.com/verifintek/verifintek/internal/masterdata/companies"
	"github.com/verifintek/verifintek/internal/masterdata/subunits"
	"github.com/verifintek/verifintek/internal/movements"
	"github.com/verifintek/verifintek/internal/observability"
	"github.com/verifintek/verifintek/internal/shared"
	"github.com/verifintek/verifintek/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager

	AuthHandler      *auth.Handler
	AccessHandler    *access.Handler
	MovementsHandler *movements.Handler
	ConceptsHandler  *concepts.Handler
	CompaniesHandler *companies.Handler
	SubUnitsHandler  *subunits.Handler
	AnalyticsHandler *analytichttp.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	if params.AccessHandler != nil {
		params.AccessHandler.MountRoutes(r)
	}
	if params.MovementsHandler != nil {
		params.MovementsHandler.MountRoutes(r)
	}
	if params.ConceptsHandler != nil {
		params.ConceptsHandler.MountRoutes(r)
	}
	if params.CompaniesHandler != nil {
		r.Route("/companies", params.CompaniesHandler.MountRoutes)
	}
	if params.SubUnitsHandler != nil {
		r.Route("/subunits", params.SubUnitsHandler.MountRoutes)
	}
	if params.AnalyticsHandler != nil {
		params.AnalyticsHandler.MountRoutes(r)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
