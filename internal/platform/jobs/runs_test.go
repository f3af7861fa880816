package jobs

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

var runCols = []string{"id", "job_type", "status", "details_json", "started_at", "completed_at"}

func TestListFiltersByTypeAndStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	started := time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)
	done := started.Add(time.Minute)
	mock.ExpectQuery(regexp.QuoteMeta("FROM job_runs WHERE 1=1 AND job_type = $1 AND status = $2 ORDER BY started_at DESC LIMIT $3 OFFSET $4")).
		WithArgs(JobPayrollProcess, StatusCompleted, 10, 0).
		WillReturnRows(pgxmock.NewRows(runCols).
			AddRow("run-1", JobPayrollProcess, StatusCompleted, []byte(`{"created":3}`), started, &done))

	runs, err := New(mock).List(context.Background(), Filter{JobType: JobPayrollProcess, Status: StatusCompleted}, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected one run, got %d", len(runs))
	}
	if runs[0].Details["created"] != float64(3) {
		t.Fatalf("expected decoded details, got %v", runs[0].Details)
	}
	if runs[0].CompletedAt == nil || !runs[0].CompletedAt.Equal(done) {
		t.Fatalf("expected completion time, got %v", runs[0].CompletedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetMissingRun(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM job_runs WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	if _, err := New(mock).Get(context.Background(), "missing"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestDecodeDetailsKeepsUnparsedPayload(t *testing.T) {
	got := decodeDetails([]byte("not json"))
	if got["raw"] != "not json" {
		t.Fatalf("expected raw payload, got %v", got)
	}
	if len(decodeDetails(nil)) != 0 {
		t.Fatal("expected empty details for nil payload")
	}
}
