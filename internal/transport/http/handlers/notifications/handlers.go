package notificationshandler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"erp/internal/domain/audit"
	"erp/internal/domain/auth"
	"erp/internal/domain/notifications"
	"erp/internal/domain/payroll"
	"erp/internal/platform/jobs"
	"erp/internal/transport/http/api"
	"erp/internal/transport/http/middleware"
	"erp/internal/transport/http/shared"
)

type MessageService interface {
	ListByEmployee(ctx context.Context, employeeID string) ([]notifications.Message, error)
	ListByPeriod(ctx context.Context, period payroll.Period) ([]notifications.Message, error)
	ResendFailed(ctx context.Context) (notifications.DispatchReport, error)
}

type JobRunner interface {
	RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error)
}

type Metrics interface {
	RecordDispatch(sent, failed int)
}

type Handler struct {
	Service MessageService
	Jobs    JobRunner
	Metrics Metrics
	Audit   shared.Auditor
	Authz   middleware.Authorizer
}

func NewHandler(service MessageService, jobs JobRunner, metrics Metrics, auditor shared.Auditor, authz middleware.Authorizer) *Handler {
	return &Handler{Service: service, Jobs: jobs, Metrics: metrics, Audit: auditor, Authz: authz}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/messages", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.ActionMessagesRead, h.Authz)).Get("/employee/{employeeID}", h.handleByEmployee)
		r.With(middleware.RequirePermission(auth.ActionMessagesRead, h.Authz)).Get("/{year}/{month}", h.handleByPeriod)
		r.With(middleware.RequirePermission(auth.ActionMessagesResend, h.Authz)).Post("/resend-failed", h.handleResendFailed)
	})
}

func (h *Handler) handleByEmployee(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	employeeID := strings.TrimSpace(chi.URLParam(r, "employeeID"))
	v := shared.NewValidator()
	v.UUID("employeeID", employeeID)
	if v.Reject(w, reqID) {
		return
	}
	items, err := h.Service.ListByEmployee(r.Context(), employeeID)
	if err != nil {
		fail(w, reqID, err)
		return
	}
	api.Success(w, nonNil(items), reqID)
}

func (h *Handler) handleByPeriod(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	period, ok := v.Period(chi.URLParam(r, "year"), chi.URLParam(r, "month"))
	if !ok {
		v.Reject(w, reqID)
		return
	}
	items, err := h.Service.ListByPeriod(r.Context(), period)
	if err != nil {
		fail(w, reqID, err)
		return
	}
	api.Success(w, nonNil(items), reqID)
}

func (h *Handler) handleResendFailed(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var report notifications.DispatchReport
	_, err := h.Jobs.RunNow(r.Context(), jobs.JobNotifyResend, func(ctx context.Context) (any, error) {
		var err error
		report, err = h.Service.ResendFailed(ctx)
		return report, err
	})
	if err != nil {
		fail(w, reqID, err)
		return
	}
	if h.Metrics != nil {
		h.Metrics.RecordDispatch(report.Sent, report.Failed)
	}
	shared.Audit(r.Context(), h.Audit, audit.ActionMessagesResend, audit.EntityMessage, "failed", nil, map[string]int{"sent": report.Sent, "failed": report.Failed})
	api.Success(w, report, reqID)
}

func fail(w http.ResponseWriter, reqID string, err error) {
	slog.Error("message request failed", "requestId", reqID, "err", err)
	api.Fail(w, http.StatusInternalServerError, "messages_failed", "message request failed", reqID)
}

func nonNil(items []notifications.Message) []notifications.Message {
	if items == nil {
		return []notifications.Message{}
	}
	return items
}
