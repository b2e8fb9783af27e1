package movements

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/verifintek/verifintek/internal/shared"
)

type recordingCaches struct{ bumps int }

func (c *recordingCaches) InvalidateCache(context.Context) error {
	c.bumps++
	return nil
}

type recordingWarmups struct{ scheduled int }

func (w *recordingWarmups) ScheduleWarmup(context.Context) error {
	w.scheduled++
	return nil
}

func fixtureRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func doJSON(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	sess := &shared.Session{}
	sess.SetUser("7")
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateMovementBumpsAndWarmsReportCaches(t *testing.T) {
	caches := &recordingCaches{}
	warmups := &recordingWarmups{}
	svc := fixtureService(newMemRepo())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := fixtureRouter(NewHandler(logger, svc, caches, warmups))

	body := `{
		"company_id": 1,
		"type": "ASSET",
		"concept_name": "Equipment lease",
		"total_amount": "300.00",
		"start_date": "2024-01-01",
		"frequency": "WEEKLY",
		"installment_count": 3
	}`
	rec := doJSON(router, http.MethodPost, "/movements", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, 1, caches.bumps)
	require.Equal(t, 1, warmups.scheduled)

	// A rejected request must leave the caches untouched.
	rec = doJSON(router, http.MethodPost, "/movements", `{"company_id": 1}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, 1, caches.bumps)
	require.Equal(t, 1, warmups.scheduled)
}

func TestCreateMovementWorksWithoutCachePorts(t *testing.T) {
	svc := fixtureService(newMemRepo())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := fixtureRouter(NewHandler(logger, svc, nil, nil))

	body := `{
		"company_id": 1,
		"type": "LIABILITY",
		"concept_name": "Bank loan",
		"total_amount": "100.00",
		"start_date": "2024-02-01",
		"frequency": "MONTHLY",
		"installment_count": 2
	}`
	rec := doJSON(router, http.MethodPost, "/movements", body)
	require.Equal(t, http.StatusCreated, rec.Code)
}
