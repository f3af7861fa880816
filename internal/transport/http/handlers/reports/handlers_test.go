package reportshandler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"erp/internal/domain/auth"
	"erp/internal/domain/payroll"
	"erp/internal/domain/reports"
	"erp/internal/platform/jobs"
	"erp/internal/transport/http/middleware"
)

type fakeSummary struct {
	period payroll.Period
}

func (f *fakeSummary) PeriodSummary(_ context.Context, period payroll.Period) (reports.PeriodSummary, error) {
	f.period = period
	return reports.PeriodSummary{Period: period.String(), Paid: 2, NetTotal: decimal.NewFromInt(2095)}, nil
}

type fakeRuns struct {
	filter jobs.Filter
	limit  int
}

func (f *fakeRuns) List(_ context.Context, filter jobs.Filter, limit, _ int) ([]jobs.Run, error) {
	f.filter, f.limit = filter, limit
	return nil, nil
}

func (f *fakeRuns) Get(context.Context, string) (jobs.Run, error) {
	return jobs.Run{}, jobs.ErrRunNotFound
}

func serve(h *Handler, role, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithUser(req.Context(), auth.UserContext{Subject: "u", Role: role})))
		})
	})
	h.RegisterRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestPeriodSummary(t *testing.T) {
	summary := &fakeSummary{}
	h := NewHandler(summary, &fakeRuns{}, auth.NewAuthorizer(auth.RolePermissions))
	rec := serve(h, auth.RoleManager, "/reports/payroll/2024/6")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if summary.period.String() != "2024-06" {
		t.Fatalf("expected 2024-06, got %s", summary.period.String())
	}
	rec = serve(h, auth.RoleEmployee, "/reports/payroll/2024/6")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for employees, got %d", rec.Code)
	}
}

func TestListJobsCapsLimit(t *testing.T) {
	runs := &fakeRuns{}
	h := NewHandler(&fakeSummary{}, runs, auth.NewAuthorizer(auth.RolePermissions))
	rec := serve(h, auth.RoleAdmin, "/reports/jobs?jobType=payroll_process&limit=900")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if runs.filter.JobType != jobs.JobPayrollProcess || runs.limit != 200 {
		t.Fatalf("unexpected filter %+v limit %d", runs.filter, runs.limit)
	}
}

func TestGetJobNotFound(t *testing.T) {
	h := NewHandler(&fakeSummary{}, &fakeRuns{}, auth.NewAuthorizer(auth.RolePermissions))
	rec := serve(h, auth.RoleAdmin, "/reports/jobs/0b0e8a9e-4d0f-4c3e-9a57-4c2a1f0d8e11")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
