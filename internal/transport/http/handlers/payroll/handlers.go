package payrollhandler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

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

type PayrollService interface {
	Process(ctx context.Context, period payroll.Period) (payroll.RunReport, error)
	Approve(ctx context.Context, period payroll.Period) ([]payroll.PaySlip, error)
	ListByPeriod(ctx context.Context, period payroll.Period) ([]payroll.PaySlip, error)
	Get(ctx context.Context, id string) (payroll.PaySlip, error)
	OwnPaySlips(ctx context.Context, callerEmployeeID string) ([]payroll.PaySlip, error)
	OwnPaySlip(ctx context.Context, callerEmployeeID string, period payroll.Period) (payroll.PaySlip, error)
	RenderPDF(ctx context.Context, callerEmployeeID string, period payroll.Period) ([]byte, error)
}

type Notifier interface {
	NotifyApproved(ctx context.Context, period payroll.Period) (notifications.DispatchReport, error)
}

type JobRunner interface {
	RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error)
}

type Metrics interface {
	RecordPayrollRun(created, skipped, failed int)
	RecordApproved(count int)
	RecordDispatch(sent, failed int)
}

type Handler struct {
	Service  PayrollService
	Notifier Notifier
	Jobs     JobRunner
	Metrics  Metrics
	Audit    shared.Auditor
	Authz    middleware.Authorizer
}

func NewHandler(service PayrollService, notifier Notifier, jobs JobRunner, metrics Metrics, auditor shared.Auditor, authz middleware.Authorizer) *Handler {
	return &Handler{Service: service, Notifier: notifier, Jobs: jobs, Metrics: metrics, Audit: auditor, Authz: authz}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.ActionPayrollProcess, h.Authz)).Post("/process", h.handleProcess)
		r.With(middleware.RequirePermission(auth.ActionPayrollApprove, h.Authz)).Patch("/approve/{year}/{month}", h.handleApprove)
		r.With(middleware.RequirePermission(auth.ActionPayrollReadOwn, h.Authz)).Get("/slips/me", h.handleOwnSlips)
		r.With(middleware.RequirePermission(auth.ActionPayrollReadOwn, h.Authz)).Get("/slips/me/{year}/{month}", h.handleOwnSlip)
		r.With(middleware.RequirePermission(auth.ActionPayrollReadOwn, h.Authz)).Get("/slips/me/{year}/{month}/pdf", h.handleOwnSlipPDF)
		r.With(middleware.RequirePermission(auth.ActionPayrollReadPeriod, h.Authz)).Get("/slips/{year}/{month}", h.handleListByPeriod)
		r.With(middleware.RequirePermission(auth.ActionPayrollReadPeriod, h.Authz)).Get("/slips/{id}", h.handleGet)
	})
}

type processRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

type approveResponse struct {
	Approved          []payroll.PaySlip             `json:"approved"`
	Notifications     *notifications.DispatchReport `json:"notifications,omitempty"`
	NotificationError string                        `json:"notificationError,omitempty"`
}

func (h *Handler) handleProcess(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload processRequest
	if err := api.Decode(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), reqID)
		return
	}
	v := shared.NewValidator()
	period, ok := v.Period(strconv.Itoa(payload.Year), strconv.Itoa(payload.Month))
	if !ok {
		v.Reject(w, reqID)
		return
	}

	var report payroll.RunReport
	_, err := h.Jobs.RunNow(r.Context(), jobs.JobPayrollProcess, func(ctx context.Context) (any, error) {
		var err error
		report, err = h.Service.Process(ctx, period)
		return report, err
	})
	if err != nil {
		writeError(w, reqID, err)
		return
	}
	if h.Metrics != nil {
		h.Metrics.RecordPayrollRun(len(report.Created), len(report.Skipped), len(report.Failed))
	}
	shared.Audit(r.Context(), h.Audit, audit.ActionPayrollProcess, audit.EntityPayrollPeriod, period.String(), nil, map[string]int{
		"created": len(report.Created),
		"skipped": len(report.Skipped),
		"failed":  len(report.Failed),
	})
	api.Success(w, report, reqID)
}

// handleApprove approves the period and then notifies the employees whose
// payslips became PAID. A notification failure does not undo the approval.
func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	period, ok := v.Period(chi.URLParam(r, "year"), chi.URLParam(r, "month"))
	if !ok {
		v.Reject(w, reqID)
		return
	}

	var resp approveResponse
	_, err := h.Jobs.RunNow(r.Context(), jobs.JobPayrollApprove, func(ctx context.Context) (any, error) {
		approved, err := h.Service.Approve(ctx, period)
		if err != nil {
			return nil, err
		}
		resp.Approved = approved
		if h.Notifier == nil {
			return resp, nil
		}
		dispatch, err := h.Notifier.NotifyApproved(ctx, period)
		if err != nil {
			slog.Warn("payroll notifications failed after approval", "period", period.String(), "err", err)
			resp.NotificationError = err.Error()
			return resp, nil
		}
		resp.Notifications = &dispatch
		return resp, nil
	})
	if err != nil {
		writeError(w, reqID, err)
		return
	}
	shared.Audit(r.Context(), h.Audit, audit.ActionPayrollApprove, audit.EntityPayrollPeriod, period.String(), nil, map[string]int{"approved": len(resp.Approved)})
	if h.Metrics != nil {
		h.Metrics.RecordApproved(len(resp.Approved))
		if resp.Notifications != nil {
			h.Metrics.RecordDispatch(resp.Notifications.Sent, resp.Notifications.Failed)
		}
	}
	api.Success(w, resp, reqID)
}

func (h *Handler) handleListByPeriod(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	period, ok := v.Period(chi.URLParam(r, "year"), chi.URLParam(r, "month"))
	if !ok {
		v.Reject(w, reqID)
		return
	}
	slips, err := h.Service.ListByPeriod(r.Context(), period)
	if err != nil {
		writeError(w, reqID, err)
		return
	}
	api.Success(w, nonNil(slips), reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id := chi.URLParam(r, "id")
	v := shared.NewValidator()
	v.UUID("id", id)
	if v.Reject(w, reqID) {
		return
	}
	slip, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeError(w, reqID, err)
		return
	}
	api.Success(w, slip, reqID)
}

func (h *Handler) handleOwnSlips(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	slips, err := h.Service.OwnPaySlips(r.Context(), user.EmployeeID)
	if err != nil {
		writeError(w, reqID, err)
		return
	}
	api.Success(w, nonNil(slips), reqID)
}

func (h *Handler) handleOwnSlip(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	v := shared.NewValidator()
	period, ok := v.Period(chi.URLParam(r, "year"), chi.URLParam(r, "month"))
	if !ok {
		v.Reject(w, reqID)
		return
	}
	slip, err := h.Service.OwnPaySlip(r.Context(), user.EmployeeID, period)
	if err != nil {
		writeError(w, reqID, err)
		return
	}
	api.Success(w, slip, reqID)
}

func (h *Handler) handleOwnSlipPDF(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	v := shared.NewValidator()
	period, ok := v.Period(chi.URLParam(r, "year"), chi.URLParam(r, "month"))
	if !ok {
		v.Reject(w, reqID)
		return
	}
	data, err := h.Service.RenderPDF(r.Context(), user.EmployeeID, period)
	if err != nil {
		writeError(w, reqID, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"payslip-%s.pdf\"", period.String()))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Warn("payslip pdf write failed", "requestId", reqID, "err", err)
	}
}

func writeError(w http.ResponseWriter, reqID string, err error) {
	switch {
	case errors.Is(err, payroll.ErrDeductionsNotConfigured):
		api.Fail(w, http.StatusConflict, "payroll_not_configured", err.Error(), reqID)
	case errors.Is(err, payroll.ErrInvalidPeriod):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), reqID)
	case errors.Is(err, payroll.ErrPaySlipNotFound), errors.Is(err, payroll.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), reqID)
	case errors.Is(err, payroll.ErrMissingEmployee):
		api.Fail(w, http.StatusForbidden, "forbidden", err.Error(), reqID)
	default:
		slog.Error("payroll request failed", "requestId", reqID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "payroll_failed", "payroll request failed", reqID)
	}
}

func nonNil(slips []payroll.PaySlip) []payroll.PaySlip {
	if slips == nil {
		return []payroll.PaySlip{}
	}
	return slips
}
