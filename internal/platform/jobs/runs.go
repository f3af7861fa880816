package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"erp/internal/platform/db"
)

var ErrRunNotFound = errors.New("job run not found")

type Run struct {
	ID          string         `json:"id"`
	JobType     string         `json:"jobType"`
	Status      string         `json:"status"`
	Details     map[string]any `json:"details"`
	StartedAt   time.Time      `json:"startedAt"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
}

type Filter struct {
	JobType string
	Status  string
}

const runColumns = `id, job_type, status, COALESCE(details_json, '{}'::jsonb), started_at, completed_at`

func (s *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]Run, error) {
	query, args := buildRunsQuery(filter)
	query += " ORDER BY started_at DESC LIMIT $" + strconv.Itoa(len(args)+1) + " OFFSET $" + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := db.QueryerFromContext(ctx, s.DB).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func (s *Service) Get(ctx context.Context, id string) (Run, error) {
	row := db.QueryerFromContext(ctx, s.DB).QueryRow(ctx, "SELECT "+runColumns+" FROM job_runs WHERE id = $1", id)
	run, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	return run, err
}

func buildRunsQuery(filter Filter) (string, []any) {
	query := "SELECT " + runColumns + " FROM job_runs WHERE 1=1"
	var args []any
	if value := strings.TrimSpace(filter.JobType); value != "" {
		args = append(args, value)
		query += " AND job_type = $" + strconv.Itoa(len(args))
	}
	if value := strings.TrimSpace(filter.Status); value != "" {
		args = append(args, value)
		query += " AND status = $" + strconv.Itoa(len(args))
	}
	return query, args
}

func scanRun(row pgx.Row) (Run, error) {
	var run Run
	var raw []byte
	if err := row.Scan(&run.ID, &run.JobType, &run.Status, &raw, &run.StartedAt, &run.CompletedAt); err != nil {
		return Run{}, err
	}
	run.Details = decodeDetails(raw)
	return run, nil
}

func decodeDetails(raw []byte) map[string]any {
	if len(raw) == 0 {
		return map[string]any{}
	}
	details := map[string]any{}
	if err := json.Unmarshal(raw, &details); err != nil {
		return map[string]any{"raw": string(raw)}
	}
	return details
}
