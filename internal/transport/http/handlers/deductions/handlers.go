package deductionshandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"erp/internal/domain/audit"
	"erp/internal/domain/auth"
	"erp/internal/domain/deductions"
	"erp/internal/transport/http/api"
	"erp/internal/transport/http/middleware"
	"erp/internal/transport/http/shared"
)

type DeductionService interface {
	List(ctx context.Context) ([]deductions.Deduction, error)
	Get(ctx context.Context, id string) (deductions.Deduction, error)
	GetByCode(ctx context.Context, code string) (deductions.Deduction, error)
	GetByName(ctx context.Context, name string) (deductions.Deduction, error)
	Create(ctx context.Context, in deductions.Input) (deductions.Deduction, error)
	Update(ctx context.Context, id string, in deductions.Input) (deductions.Deduction, error)
	Delete(ctx context.Context, id string) error
	SeedDefaults(ctx context.Context) (int, error)
}

type Handler struct {
	Service DeductionService
	Audit   shared.Auditor
	Authz   middleware.Authorizer
}

func NewHandler(service DeductionService, auditor shared.Auditor, authz middleware.Authorizer) *Handler {
	return &Handler{Service: service, Audit: auditor, Authz: authz}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/deductions", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.ActionDeductionsList, h.Authz)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.ActionDeductionsWrite, h.Authz)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.ActionDeductionsWrite, h.Authz)).Post("/initialize", h.handleInitialize)
		r.With(middleware.RequirePermission(auth.ActionDeductionsRead, h.Authz)).Get("/code/{code}", h.handleGetByCode)
		r.With(middleware.RequirePermission(auth.ActionDeductionsRead, h.Authz)).Get("/name/{name}", h.handleGetByName)
		r.With(middleware.RequirePermission(auth.ActionDeductionsRead, h.Authz)).Get("/{id}", h.handleGet)
		r.With(middleware.RequirePermission(auth.ActionDeductionsWrite, h.Authz)).Put("/{id}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.ActionDeductionsWrite, h.Authz)).Delete("/{id}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	items, err := h.Service.List(r.Context())
	if err != nil {
		writeError(w, reqID, err)
		return
	}
	if items == nil {
		items = []deductions.Deduction{}
	}
	api.Success(w, items, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id, ok := pathID(w, r, reqID)
	if !ok {
		return
	}
	item, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeError(w, reqID, err)
		return
	}
	api.Success(w, item, reqID)
}

func (h *Handler) handleGetByCode(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	item, err := h.Service.GetByCode(r.Context(), strings.TrimSpace(chi.URLParam(r, "code")))
	if err != nil {
		writeError(w, reqID, err)
		return
	}
	api.Success(w, item, reqID)
}

func (h *Handler) handleGetByName(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	item, err := h.Service.GetByName(r.Context(), strings.TrimSpace(chi.URLParam(r, "name")))
	if err != nil {
		writeError(w, reqID, err)
		return
	}
	api.Success(w, item, reqID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload deductions.Input
	if err := api.Decode(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), reqID)
		return
	}
	created, err := h.Service.Create(r.Context(), payload)
	if err != nil {
		writeError(w, reqID, err)
		return
	}
	shared.Audit(r.Context(), h.Audit, audit.ActionDeductionCreate, audit.EntityDeduction, created.ID, nil, created)
	api.Created(w, created, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id, ok := pathID(w, r, reqID)
	if !ok {
		return
	}
	var payload deductions.Input
	if err := api.Decode(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), reqID)
		return
	}
	before, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeError(w, reqID, err)
		return
	}
	updated, err := h.Service.Update(r.Context(), id, payload)
	if err != nil {
		writeError(w, reqID, err)
		return
	}
	shared.Audit(r.Context(), h.Audit, audit.ActionDeductionUpdate, audit.EntityDeduction, id, before, updated)
	api.Success(w, updated, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id, ok := pathID(w, r, reqID)
	if !ok {
		return
	}
	before, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeError(w, reqID, err)
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeError(w, reqID, err)
		return
	}
	shared.Audit(r.Context(), h.Audit, audit.ActionDeductionDelete, audit.EntityDeduction, id, before, nil)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleInitialize(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	created, err := h.Service.SeedDefaults(r.Context())
	if err != nil {
		writeError(w, reqID, err)
		return
	}
	if created > 0 {
		shared.Audit(r.Context(), h.Audit, audit.ActionDeductionSeed, audit.EntityDeduction, "defaults", nil, map[string]int{"created": created})
	}
	api.Success(w, map[string]int{"created": created}, reqID)
}

func pathID(w http.ResponseWriter, r *http.Request, reqID string) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	v := shared.NewValidator()
	v.UUID("id", id)
	if v.Reject(w, reqID) {
		return "", false
	}
	return id, true
}

func writeError(w http.ResponseWriter, reqID string, err error) {
	switch {
	case errors.Is(err, deductions.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), reqID)
	case deductions.IsValidation(err):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), reqID)
	default:
		slog.Error("deduction request failed", "requestId", reqID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "deductions_failed", "deduction request failed", reqID)
	}
}
