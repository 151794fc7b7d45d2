// Package handler exposes the onboarding session flow over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"veriledger/internal/onboarding/models"
	id "veriledger/pkg/domain"
	"veriledger/pkg/platform/httputil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

type Service interface {
	StartSession(ctx context.Context, caller, subject id.Identity, tenantID id.TenantID) (*models.Session, error)
	ExecuteStep(ctx context.Context, caller, subject id.Identity, step models.Step, payload models.Payload) (*models.Session, error)
	CancelSession(ctx context.Context, caller id.Identity) (*models.Session, error)
	ForceComplete(ctx context.Context, caller, subject id.Identity) (*models.Session, error)
	ForceFail(ctx context.Context, caller, subject id.Identity, reason string) (*models.Session, error)
	GetSession(ctx context.Context, subject id.Identity) (*models.Session, error)
	SessionData(ctx context.Context, sessionID id.SessionID) (map[string]string, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the caller-facing routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/onboarding/sessions", h.HandleStart)
	r.Post("/onboarding/cancel", h.HandleCancel)
	r.Get("/onboarding/sessions/{subject}", h.HandleGet)
	r.Post("/onboarding/sessions/{subject}/steps/{step}", h.HandleExecuteStep)
	r.Post("/onboarding/sessions/{subject}/force-complete", h.HandleForceComplete)
	r.Post("/onboarding/sessions/{subject}/force-fail", h.HandleForceFail)
}

// RegisterAdmin mounts routes that read stored KYC data. The caller must
// guard r with an operator credential.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/sessions/{sessionID}/data", h.HandleSessionData)
}

// HandleStart handles POST /onboarding/sessions. The subject defaults to the
// caller.
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := httputil.RequireCaller(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[StartRequest](w, r, h.logger)
	if !ok {
		return
	}
	subject := req.subject
	if subject.IsZero() {
		subject = caller
	}
	session, err := h.service.StartSession(ctx, caller, subject, req.tenantID)
	if err != nil {
		httputil.WriteFailure(ctx, w, h.logger, "failed to start onboarding session", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(session))
}

func (h *Handler) HandleExecuteStep(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, subject, ok := h.callerAndSubject(w, r)
	if !ok {
		return
	}
	step, err := models.ParseStep(chi.URLParam(r, "step"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[StepRequest](w, r, h.logger)
	if !ok {
		return
	}
	session, err := h.service.ExecuteStep(ctx, caller, subject, step, req.payload())
	if err != nil {
		httputil.WriteFailure(ctx, w, h.logger, "failed to execute onboarding step", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(session))
}

// HandleCancel abandons the caller's own active session.
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := httputil.RequireCaller(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	session, err := h.service.CancelSession(ctx, caller)
	if err != nil {
		httputil.WriteFailure(ctx, w, h.logger, "failed to cancel onboarding session", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(session))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subject, err := id.ParseIdentity(chi.URLParam(r, "subject"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	session, err := h.service.GetSession(ctx, subject)
	if err != nil {
		httputil.WriteFailure(ctx, w, h.logger, "failed to get onboarding session", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(session))
}

func (h *Handler) HandleForceComplete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, subject, ok := h.callerAndSubject(w, r)
	if !ok {
		return
	}
	session, err := h.service.ForceComplete(ctx, caller, subject)
	if err != nil {
		httputil.WriteFailure(ctx, w, h.logger, "failed to force-complete onboarding session", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(session))
}

func (h *Handler) HandleForceFail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, subject, ok := h.callerAndSubject(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ForceFailRequest](w, r, h.logger)
	if !ok {
		return
	}
	session, err := h.service.ForceFail(ctx, caller, subject, req.Reason)
	if err != nil {
		httputil.WriteFailure(ctx, w, h.logger, "failed to force-fail onboarding session", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(session))
}

func (h *Handler) HandleSessionData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, err := id.ParseSessionID(chi.URLParam(r, "sessionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	fields, err := h.service.SessionData(ctx, sessionID)
	if err != nil {
		httputil.WriteFailure(ctx, w, h.logger, "failed to load session data", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SessionDataResponse{
		SessionID: sessionID.String(),
		Fields:    fields,
	})
}

func (h *Handler) callerAndSubject(w http.ResponseWriter, r *http.Request) (id.Identity, id.Identity, bool) {
	caller, err := httputil.RequireCaller(r.Context(), h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return "", "", false
	}
	subject, err := id.ParseIdentity(chi.URLParam(r, "subject"))
	if err != nil {
		httputil.WriteError(w, err)
		return "", "", false
	}
	return caller, subject, true
}
