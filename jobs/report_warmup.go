package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/verifintek/verifintek/internal/analytics"
	jobmetrics "github.com/verifintek/verifintek/internal/jobs"
)

// SystemAccess grants every report scope. Only for trusted background
// jobs; HTTP traffic goes through the membership resolver instead.
type SystemAccess struct{}

func (SystemAccess) CanListReports(ctx context.Context, userID, companyID int64, subUnitID *int64) (bool, error) {
	return true, nil
}

// ReportWarmupJob pre-populates the report caches for every company and
// its active sub-units so the first dashboard hit after an invalidation
// stays cheap.
type ReportWarmupJob struct {
	Analytics *analytics.Service
	Pool      *pgxpool.Pool
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
}

// NewReportWarmupJob wires dependencies for the warmup handler.
func NewReportWarmupJob(analyticsSvc *analytics.Service, pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportWarmupJob {
	return &ReportWarmupJob{
		Analytics: analyticsSvc,
		Pool:      pool,
		Logger:    logger,
		Metrics:   metrics,
	}
}

// Handle processes report warmup tasks.
func (j *ReportWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("report warmup: handler not configured")
	}
	var payload ReportWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Scope == "" {
		payload.Scope = "active"
	}

	tracker := j.metrics().Track(TaskReportWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("scope", payload.Scope))
	logger.Info("starting report warmup")

	scopes, err := j.fetchScopes(ctx)
	if err != nil {
		resultErr = err
		logger.Error("load warmup scopes", slog.Any("error", err))
		return resultErr
	}
	if len(scopes) == 0 {
		logger.Info("no scopes discovered for warmup")
		return resultErr
	}

	start := time.Now()
	warmed := 0
	for _, scope := range scopes {
		if err := j.warmScope(ctx, scope); err != nil {
			resultErr = err
			logger.Error("warm scope",
				slog.Int64("company_id", scope.CompanyID),
				slog.Int64("sub_unit_id", scope.subUnitValue()),
				slog.Any("error", err))
			return resultErr
		}
		warmed++
	}

	logger.Info("completed report warmup", slog.Int("scopes", warmed), slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *ReportWarmupJob) warmScope(ctx context.Context, scope warmupScope) error {
	if j.Analytics == nil {
		return nil
	}
	// Bound each scope so a slow query cannot stall the whole run.
	scopeCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	_, err := j.Analytics.Aggregate(scopeCtx, 0, analytics.Filter{
		CompanyID: scope.CompanyID,
		SubUnitID: scope.SubUnitID,
	})
	return err
}

func (j *ReportWarmupJob) fetchScopes(ctx context.Context) ([]warmupScope, error) {
	if j.Pool == nil {
		return nil, errors.New("report warmup: pool not configured")
	}
	rows, err := j.Pool.Query(ctx, `
		SELECT c.id, su.id
		FROM companies c
		LEFT JOIN sub_units su ON su.company_id = c.id AND su.is_active
		ORDER BY c.id, su.id NULLS FIRST`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scopes := make([]warmupScope, 0)
	seen := make(map[int64]bool)
	for rows.Next() {
		var companyID int64
		var subUnitID *int64
		if err := rows.Scan(&companyID, &subUnitID); err != nil {
			return nil, err
		}
		if !seen[companyID] {
			seen[companyID] = true
			scopes = append(scopes, warmupScope{CompanyID: companyID})
		}
		if subUnitID != nil {
			scopes = append(scopes, warmupScope{CompanyID: companyID, SubUnitID: subUnitID})
		}
	}
	return scopes, rows.Err()
}

func (j *ReportWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReportWarmup))
	}
	return slog.Default().With(slog.String("job", TaskReportWarmup))
}

func (j *ReportWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

type warmupScope struct {
	CompanyID int64
	SubUnitID *int64
}

func (s warmupScope) subUnitValue() int64 {
	if s.SubUnitID == nil {
		return 0
	}
	return *s.SubUnitID
}
