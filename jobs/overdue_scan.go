package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/verifintek/verifintek/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// OverdueGauge receives the total overdue count for dashboards.
type OverdueGauge interface {
	SetOverdueInstallments(count int)
}

// OverdueScanJob counts unpaid installments past their due date per company
// and publishes the totals as metrics.
type OverdueScanJob struct {
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	Gauge   OverdueGauge
	clock   func() time.Time
}

// NewOverdueScanJob wires dependencies for the overdue scan handler.
func NewOverdueScanJob(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics, gauge OverdueGauge) *OverdueScanJob {
	return &OverdueScanJob{
		Pool:    pool,
		Logger:  logger,
		Metrics: metrics,
		Gauge:   gauge,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes overdue-scan tasks.
func (j *OverdueScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("overdue scan: handler not configured")
	}
	var payload OverdueScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskOverdueScan)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	today := j.now().Truncate(24 * time.Hour)

	counts, err := j.countOverdue(ctx, payload.CompanyID, today)
	if err != nil {
		resultErr = err
		logger.Error("count overdue installments", slog.Any("error", err))
		return resultErr
	}

	total := 0
	for companyID, count := range counts {
		j.metrics().SetOverdue(companyID, count)
		total += count
	}
	if j.Gauge != nil {
		j.Gauge.SetOverdueInstallments(total)
	}

	logger.Info("completed overdue scan",
		slog.Int("companies", len(counts)),
		slog.Int("overdue", total),
		slog.Time("as_of", today))
	return resultErr
}

// countOverdueQuery counts installments past due that are not settled.
// Settled is evaluated from the row itself (a positive amount with a paid
// date) rather than trusting the stored paid flag.
func countOverdueQuery(companyID int64, asOf time.Time) (string, []any) {
	query := `
		SELECT m.company_id, COUNT(*)
		FROM installments i
		JOIN movements m ON m.id = i.movement_id
		WHERE NOT (i.amount > 0 AND i.paid_date IS NOT NULL) AND i.due_date < $1`
	args := []any{asOf}
	if companyID > 0 {
		query += ` AND m.company_id = $2`
		args = append(args, companyID)
	}
	query += ` GROUP BY m.company_id`
	return query, args
}

func (j *OverdueScanJob) countOverdue(ctx context.Context, companyID int64, asOf time.Time) (map[int64]int, error) {
	if j.Pool == nil {
		return nil, errors.New("overdue scan: pool not configured")
	}
	query, args := countOverdueQuery(companyID, asOf)
	rows, err := j.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var id int64
		var count int
		if err := rows.Scan(&id, &count); err != nil {
			return nil, err
		}
		counts[id] = count
	}
	return counts, rows.Err()
}

func (j *OverdueScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskOverdueScan))
	}
	return slog.Default().With(slog.String("job", TaskOverdueScan))
}

func (j *OverdueScanJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *OverdueScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
