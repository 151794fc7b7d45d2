// Package handler exposes compliance checks over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"veriledger/internal/compliance"
	id "veriledger/pkg/domain"
	dErrors "veriledger/pkg/domain-errors"
	"veriledger/pkg/platform/httputil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Checker

type Checker interface {
	Evaluate(ctx context.Context, subject id.Identity, tenantID id.TenantID) (compliance.Report, error)
	IsCredentialCompliant(ctx context.Context, credID id.CredentialID) bool
}

type Handler struct {
	checker Checker
	logger  *slog.Logger
}

func New(checker Checker, logger *slog.Logger) *Handler {
	return &Handler{checker: checker, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/compliance/{subject}", h.HandleEvaluate)
	r.Get("/credentials/{credentialID}/compliance", h.HandleCredential)
}

type ReportResponse struct {
	Subject         string    `json:"subject"`
	TenantID        string    `json:"tenant_id"`
	TenantActive    bool      `json:"tenant_active"`
	HasIdentity     bool      `json:"has_identity"`
	Satisfied       []string  `json:"satisfied"`
	Missing         []string  `json:"missing"`
	Compliant       bool      `json:"compliant"`
	PolicySatisfied bool      `json:"policy_satisfied"`
	EvaluatedAt     time.Time `json:"evaluated_at"`
}

type CredentialComplianceResponse struct {
	CredentialID string `json:"credential_id"`
	Compliant    bool   `json:"compliant"`
}

// HandleEvaluate handles GET /compliance/{subject}?tenant=. A non-compliant
// subject is still a 200; only malformed input or an unknown tenant fails.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subject, err := id.ParseIdentity(chi.URLParam(r, "subject"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	rawTenant := r.URL.Query().Get("tenant")
	if rawTenant == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "tenant query parameter is required"))
		return
	}
	tenantID, err := id.ParseTenantID(rawTenant)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	report, err := h.checker.Evaluate(ctx, subject, tenantID)
	if err != nil {
		httputil.WriteFailure(ctx, w, h.logger, "failed to evaluate compliance", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(report))
}

func (h *Handler) HandleCredential(w http.ResponseWriter, r *http.Request) {
	credID, err := id.ParseCredentialID(chi.URLParam(r, "credentialID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CredentialComplianceResponse{
		CredentialID: credID.String(),
		Compliant:    h.checker.IsCredentialCompliant(r.Context(), credID),
	})
}

func toResponse(r compliance.Report) ReportResponse {
	return ReportResponse{
		Subject:         r.Subject.String(),
		TenantID:        r.TenantID.String(),
		TenantActive:    r.TenantActive,
		HasIdentity:     r.HasIdentity,
		Satisfied:       typeIDs(r.Satisfied),
		Missing:         typeIDs(r.Missing),
		Compliant:       r.Compliant,
		PolicySatisfied: r.PolicySatisfied(),
		EvaluatedAt:     r.EvaluatedAt.UTC(),
	}
}

func typeIDs(in []id.CredentialTypeID) []string {
	out := make([]string, len(in))
	for i, t := range in {
		out[i] = t.String()
	}
	return out
}
