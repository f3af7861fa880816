package reportshandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"erp/internal/domain/auth"
	"erp/internal/domain/payroll"
	"erp/internal/domain/reports"
	"erp/internal/platform/jobs"
	"erp/internal/transport/http/api"
	"erp/internal/transport/http/middleware"
	"erp/internal/transport/http/shared"
)

type SummaryService interface {
	PeriodSummary(ctx context.Context, period payroll.Period) (reports.PeriodSummary, error)
}

type JobRuns interface {
	List(ctx context.Context, filter jobs.Filter, limit, offset int) ([]jobs.Run, error)
	Get(ctx context.Context, id string) (jobs.Run, error)
}

type Handler struct {
	Service SummaryService
	Jobs    JobRuns
	Authz   middleware.Authorizer
}

func NewHandler(service SummaryService, jobRuns JobRuns, authz middleware.Authorizer) *Handler {
	return &Handler{Service: service, Jobs: jobRuns, Authz: authz}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.ActionReportsRead, h.Authz)).Get("/payroll/{year}/{month}", h.handlePeriodSummary)
		r.With(middleware.RequirePermission(auth.ActionReportsRead, h.Authz)).Get("/jobs", h.handleListJobs)
		r.With(middleware.RequirePermission(auth.ActionReportsRead, h.Authz)).Get("/jobs/{id}", h.handleGetJob)
	})
}

func (h *Handler) handlePeriodSummary(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	period, ok := v.Period(chi.URLParam(r, "year"), chi.URLParam(r, "month"))
	if !ok {
		v.Reject(w, reqID)
		return
	}
	summary, err := h.Service.PeriodSummary(r.Context(), period)
	if err != nil {
		slog.Error("payroll summary failed", "requestId", reqID, "period", period.String(), "err", err)
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build payroll summary", reqID)
		return
	}
	api.Success(w, summary, reqID)
}

func (h *Handler) handleListJobs(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 50, 200)
	filter := jobs.Filter{
		JobType: r.URL.Query().Get("jobType"),
		Status:  r.URL.Query().Get("status"),
	}
	runs, err := h.Jobs.List(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		slog.Error("job run list failed", "requestId", reqID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "job_runs_failed", "failed to list job runs", reqID)
		return
	}
	if runs == nil {
		runs = []jobs.Run{}
	}
	api.Success(w, runs, reqID)
}

func (h *Handler) handleGetJob(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	v := shared.NewValidator()
	v.UUID("id", id)
	if v.Reject(w, reqID) {
		return
	}
	run, err := h.Jobs.Get(r.Context(), id)
	if errors.Is(err, jobs.ErrRunNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), reqID)
		return
	}
	if err != nil {
		slog.Error("job run lookup failed", "requestId", reqID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "job_runs_failed", "failed to load job run", reqID)
		return
	}
	api.Success(w, run, reqID)
}
