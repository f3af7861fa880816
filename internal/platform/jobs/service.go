package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"erp/internal/platform/db"
)

const (
	JobPayrollProcess = "payroll_process"
	JobPayrollApprove = "payroll_approve"
	JobNotifyResend   = "notify_resend"
)

const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Service records every batch it runs in job_runs.
type Service struct {
	DB db.Queryer
}

func New(q db.Queryer) *Service {
	return &Service{DB: q}
}

// RunNow runs fn synchronously. Bookkeeping failures are logged and never
// change the outcome of fn.
func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error) {
	if s == nil || s.DB == nil {
		return run(ctx)
	}

	runID := ""
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, status)
    VALUES ($1,$2)
    RETURNING id
  `, jobType, StatusRunning).Scan(&runID); err != nil {
		slog.Warn("job run insert failed", "jobType", jobType, "err", err)
	}

	details, err := run(ctx)
	status := StatusCompleted
	recorded := details
	if err != nil {
		status = StatusFailed
		recorded = map[string]any{"error": err.Error()}
	}
	detailsJSON, marshalErr := json.Marshal(recorded)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "jobType", jobType, "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.Warn("job run update failed", "jobType", jobType, "err", updErr)
		}
	}
	return details, err
}
