package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"veriledger/internal/credentialtype/models"
	id "veriledger/pkg/domain"
	dErrors "veriledger/pkg/domain-errors"
	"veriledger/pkg/platform/httputil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service is the credential type catalog.
type Service interface {
	Register(ctx context.Context, caller id.Identity, typeID id.CredentialTypeID, def models.Definition) (*models.CredentialType, error)
	UpdateStatus(ctx context.Context, caller id.Identity, typeID id.CredentialTypeID, status models.Status) (*models.CredentialType, error)
	UpdateDefinition(ctx context.Context, caller id.Identity, typeID id.CredentialTypeID, def models.Definition) (*models.CredentialType, error)
	Get(ctx context.Context, typeID id.CredentialTypeID) (*models.CredentialType, error)
	List(ctx context.Context, category models.Category) ([]*models.CredentialType, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/credential-types", h.HandleRegister)
	r.Get("/credential-types", h.HandleList)
	r.Get("/credential-types/{typeID}", h.HandleGet)
	r.Put("/credential-types/{typeID}/status", h.HandleUpdateStatus)
	r.Put("/credential-types/{typeID}/definition", h.HandleUpdateDefinition)
}

// HandleRegister handles POST /credential-types.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := httputil.RequireCaller(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger)
	if !ok {
		return
	}
	ct, err := h.service.Register(ctx, caller, req.typeID, req.Definition.parsed)
	if err != nil {
		httputil.WriteFailure(ctx, w, h.logger, "failed to register credential type", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(ct))
}

// HandleList handles GET /credential-types with an optional category filter.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	category := models.Category(r.URL.Query().Get("category"))
	if category != "" && !category.IsValid() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "unknown category"))
		return
	}
	types, err := h.service.List(ctx, category)
	if err != nil {
		httputil.WriteFailure(ctx, w, h.logger, "failed to list credential types", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.NewList(types, toResponse))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	typeID, err := id.ParseCredentialTypeID(chi.URLParam(r, "typeID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	ct, err := h.service.Get(ctx, typeID)
	if err != nil {
		httputil.WriteFailure(ctx, w, h.logger, "failed to get credential type", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(ct))
}

func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, typeID, ok := h.target(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[StatusRequest](w, r, h.logger)
	if !ok {
		return
	}
	ct, err := h.service.UpdateStatus(ctx, caller, typeID, models.Status(req.Status))
	if err != nil {
		httputil.WriteFailure(ctx, w, h.logger, "failed to update credential type status", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(ct))
}

func (h *Handler) HandleUpdateDefinition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, typeID, ok := h.target(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[DefinitionRequest](w, r, h.logger)
	if !ok {
		return
	}
	ct, err := h.service.UpdateDefinition(ctx, caller, typeID, req.parsed)
	if err != nil {
		httputil.WriteFailure(ctx, w, h.logger, "failed to update credential type definition", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(ct))
}

func (h *Handler) target(w http.ResponseWriter, r *http.Request) (id.Identity, id.CredentialTypeID, bool) {
	caller, err := httputil.RequireCaller(r.Context(), h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return "", "", false
	}
	typeID, err := id.ParseCredentialTypeID(chi.URLParam(r, "typeID"))
	if err != nil {
		httputil.WriteError(w, err)
		return "", "", false
	}
	return caller, typeID, true
}
