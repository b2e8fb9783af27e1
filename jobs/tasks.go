package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskOverdueScan marks unpaid installments past their due date.
	TaskOverdueScan = "ledger:overdue_scan"
	// TaskReportWarmup pre-populates report caches for active scopes.
	TaskReportWarmup = "reports:warmup"
)

// OverdueScanPayload configures an overdue installment scan run.
type OverdueScanPayload struct {
	// CompanyID restricts the scan to one company; zero scans all.
	CompanyID int64 `json:"company_id"`
}

// NewOverdueScanTask constructs an overdue-scan task.
func NewOverdueScanTask(companyID int64) (*asynq.Task, error) {
	data, err := json.Marshal(OverdueScanPayload{CompanyID: companyID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOverdueScan, data), nil
}

// ReportWarmupPayload configures a report warmup run.
type ReportWarmupPayload struct {
	// Scope selects which companies to warm; "active" is the default.
	Scope string `json:"scope"`
}

// NewReportWarmupTask constructs a report warmup task.
func NewReportWarmupTask(scope string) (*asynq.Task, error) {
	data, err := json.Marshal(ReportWarmupPayload{Scope: scope})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportWarmup, data), nil
}
