package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	authmodels "veriledger/internal/governance/authorization/models"
	id "veriledger/pkg/domain"
	"veriledger/pkg/platform/httputil"
)

func (h *Handler) HandleGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := httputil.RequireCaller(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[GrantRequest](w, r, h.logger)
	if !ok {
		return
	}
	grant, err := h.grants.Grant(ctx, caller, req.subject, req.perms...)
	if err != nil {
		httputil.WriteFailure(ctx, w, h.logger, "failed to grant permissions", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toGrantResponse(grant))
}

func (h *Handler) HandleListGrants(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	grants, err := h.grants.ListGrants(ctx)
	if err != nil {
		httputil.WriteFailure(ctx, w, h.logger, "failed to list grants", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.NewList(grants, toGrantResponse))
}

func (h *Handler) HandleGetGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subject, err := id.ParseIdentity(chi.URLParam(r, "subject"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	grant, err := h.grants.GetGrant(ctx, subject)
	if err != nil {
		httputil.WriteFailure(ctx, w, h.logger, "failed to get grant", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toGrantResponse(grant))
}

func (h *Handler) HandleRevokeGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, subject, ok := h.callerAndSubject(w, r)
	if !ok {
		return
	}
	if err := h.grants.Revoke(ctx, caller, subject); err != nil {
		httputil.WriteFailure(ctx, w, h.logger, "failed to revoke grant", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleRevokePermission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, subject, ok := h.callerAndSubject(w, r)
	if !ok {
		return
	}
	perm, err := authmodels.ParsePermission(chi.URLParam(r, "permission"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.grants.RevokePermission(ctx, caller, subject, perm); err != nil {
		httputil.WriteFailure(ctx, w, h.logger, "failed to revoke permission", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
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
