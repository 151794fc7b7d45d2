package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"veriledger/internal/tenant/models"
	tenantservice "veriledger/internal/tenant/service"
	id "veriledger/pkg/domain"
	"veriledger/pkg/platform/httputil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service is the tenant registry surface the handler uses.
type Service interface {
	CreateTenant(ctx context.Context, caller id.Identity, cmd tenantservice.CreateCommand) (*models.Tenant, error)
	UpdatePolicy(ctx context.Context, caller id.Identity, tenantID id.TenantID, p models.Policy) (*models.Tenant, error)
	AddCustomField(ctx context.Context, caller id.Identity, tenantID id.TenantID, field string) (*models.Tenant, error)
	Deactivate(ctx context.Context, caller id.Identity, tenantID id.TenantID) (*models.Tenant, error)
	Reactivate(ctx context.Context, caller id.Identity, tenantID id.TenantID) (*models.Tenant, error)
	Get(ctx context.Context, tenantID id.TenantID) (*models.Tenant, error)
	List(ctx context.Context) ([]*models.Tenant, error)
}

// Handler serves the tenant endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the tenant routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/tenants", h.HandleCreate)
	r.Get("/tenants", h.HandleList)
	r.Get("/tenants/{tenantID}", h.HandleGet)
	r.Put("/tenants/{tenantID}/policy", h.HandleUpdatePolicy)
	r.Post("/tenants/{tenantID}/custom-fields", h.HandleAddCustomField)
	r.Post("/tenants/{tenantID}/deactivate", h.HandleDeactivate)
	r.Post("/tenants/{tenantID}/reactivate", h.HandleReactivate)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := httputil.RequireCaller(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[CreateTenantRequest](w, r, h.logger)
	if !ok {
		return
	}
	t, err := h.service.CreateTenant(ctx, caller, req.command())
	if err != nil {
		httputil.WriteFailure(ctx, w, h.logger, "failed to create tenant", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(t))
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenants, err := h.service.List(ctx)
	if err != nil {
		httputil.WriteFailure(ctx, w, h.logger, "failed to list tenants", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.NewList(tenants, toResponse))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID, err := id.ParseTenantID(chi.URLParam(r, "tenantID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	t, err := h.service.Get(ctx, tenantID)
	if err != nil {
		httputil.WriteFailure(ctx, w, h.logger, "failed to get tenant", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(t))
}

func (h *Handler) HandleUpdatePolicy(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "failed to update tenant policy", func(ctx context.Context, caller id.Identity, tenantID id.TenantID) (*models.Tenant, error) {
		req, ok := httputil.DecodeAndPrepare[PolicyRequest](w, r, h.logger)
		if !ok {
			return nil, errHandled
		}
		return h.service.UpdatePolicy(ctx, caller, tenantID, req.policy())
	})
}

func (h *Handler) HandleAddCustomField(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "failed to add custom field", func(ctx context.Context, caller id.Identity, tenantID id.TenantID) (*models.Tenant, error) {
		req, ok := httputil.DecodeAndPrepare[CustomFieldRequest](w, r, h.logger)
		if !ok {
			return nil, errHandled
		}
		return h.service.AddCustomField(ctx, caller, tenantID, req.Field)
	})
}

func (h *Handler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "failed to deactivate tenant", h.service.Deactivate)
}

func (h *Handler) HandleReactivate(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "failed to reactivate tenant", h.service.Reactivate)
}

type mutation func(ctx context.Context, caller id.Identity, tenantID id.TenantID) (*models.Tenant, error)

// mutate resolves the caller and tenant id, then runs fn. fn returns
// errHandled when it already wrote the response.
func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, msg string, fn mutation) {
	ctx := r.Context()
	caller, err := httputil.RequireCaller(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	tenantID, err := id.ParseTenantID(chi.URLParam(r, "tenantID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	t, err := fn(ctx, caller, tenantID)
	if errors.Is(err, errHandled) {
		return
	}
	if err != nil {
		httputil.WriteFailure(ctx, w, h.logger, msg, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(t))
}
