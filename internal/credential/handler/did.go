package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	id "veriledger/pkg/domain"
	"veriledger/pkg/platform/httputil"
)

// HandleRegisterDID handles POST /dids. The subject defaults to the caller.
func (h *Handler) HandleRegisterDID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := httputil.RequireCaller(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[RegisterDIDRequest](w, r, h.logger)
	if !ok {
		return
	}
	subject := req.subject
	if subject.IsZero() {
		subject = caller
	}
	rec, err := h.service.RegisterDID(ctx, caller, subject, req.Document)
	if err != nil {
		httputil.WriteFailure(ctx, w, h.logger, "failed to register DID", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toDIDResponse(rec))
}

func (h *Handler) HandleGetDID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	did, err := id.ParseDID(chi.URLParam(r, "did"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	rec, err := h.service.GetDID(ctx, did)
	if err != nil {
		httputil.WriteFailure(ctx, w, h.logger, "failed to get DID", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDIDResponse(rec))
}

func (h *Handler) HandleUpdateDIDDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := httputil.RequireCaller(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	did, err := id.ParseDID(chi.URLParam(r, "did"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[DocumentRequest](w, r, h.logger)
	if !ok {
		return
	}
	rec, err := h.service.UpdateDIDDocument(ctx, caller, did, req.Document)
	if err != nil {
		httputil.WriteFailure(ctx, w, h.logger, "failed to update DID document", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDIDResponse(rec))
}

func (h *Handler) HandleDeactivateDID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := httputil.RequireCaller(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	did, err := id.ParseDID(chi.URLParam(r, "did"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	rec, err := h.service.DeactivateDID(ctx, caller, did)
	if err != nil {
		httputil.WriteFailure(ctx, w, h.logger, "failed to deactivate DID", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDIDResponse(rec))
}

func (h *Handler) HandleListDIDs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subject, err := id.ParseIdentity(chi.URLParam(r, "subject"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	records, err := h.service.ListDIDsBySubject(ctx, subject)
	if err != nil {
		httputil.WriteFailure(ctx, w, h.logger, "failed to list DIDs", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.NewList(records, toDIDResponse))
}
