package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"veriledger/internal/credential/models"
	credservice "veriledger/internal/credential/service"
	id "veriledger/pkg/domain"
	"veriledger/pkg/platform/httputil"
	"veriledger/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service is the credential and DID registry surface.
type Service interface {
	Issue(ctx context.Context, caller id.Identity, cmd credservice.IssueCommand) (*models.Credential, error)
	Get(ctx context.Context, credID id.CredentialID) (*models.Credential, error)
	Revoke(ctx context.Context, caller id.Identity, credID id.CredentialID) (*models.Credential, error)
	IsValid(ctx context.Context, credID id.CredentialID) bool
	ListBySubject(ctx context.Context, subject id.Identity) ([]*models.Credential, error)
	ListByIssuer(ctx context.Context, issuer id.Identity) ([]*models.Credential, error)

	RegisterDID(ctx context.Context, caller, subject id.Identity, document []byte) (*models.DIDRecord, error)
	GetDID(ctx context.Context, did id.DID) (*models.DIDRecord, error)
	ListDIDsBySubject(ctx context.Context, subject id.Identity) ([]*models.DIDRecord, error)
	UpdateDIDDocument(ctx context.Context, caller id.Identity, did id.DID, document []byte) (*models.DIDRecord, error)
	DeactivateDID(ctx context.Context, caller id.Identity, did id.DID) (*models.DIDRecord, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/credentials", h.HandleIssue)
	r.Get("/credentials/{credentialID}", h.HandleGet)
	r.Get("/credentials/{credentialID}/validity", h.HandleValidity)
	r.Post("/credentials/{credentialID}/revoke", h.HandleRevoke)
	r.Get("/subjects/{subject}/credentials", h.HandleListBySubject)
	r.Get("/issuers/{issuer}/credentials", h.HandleListByIssuer)

	r.Post("/dids", h.HandleRegisterDID)
	r.Get("/dids/{did}", h.HandleGetDID)
	r.Put("/dids/{did}/document", h.HandleUpdateDIDDocument)
	r.Post("/dids/{did}/deactivate", h.HandleDeactivateDID)
	r.Get("/subjects/{subject}/dids", h.HandleListDIDs)
}

// HandleIssue handles POST /credentials. The issuer defaults to the caller.
func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := httputil.RequireCaller(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[IssueRequest](w, r, h.logger)
	if !ok {
		return
	}
	c, err := h.service.Issue(ctx, caller, req.command(caller))
	if err != nil {
		httputil.WriteFailure(ctx, w, h.logger, "failed to issue credential", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toCredentialResponse(c, c.IsValidAt(requestcontext.Now(ctx))))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	credID, err := id.ParseCredentialID(chi.URLParam(r, "credentialID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.service.Get(ctx, credID)
	if err != nil {
		httputil.WriteFailure(ctx, w, h.logger, "failed to get credential", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCredentialResponse(c, c.IsValidAt(requestcontext.Now(ctx))))
}

// HandleValidity answers whether a credential is currently valid. Unknown
// credentials are reported invalid rather than not found.
func (h *Handler) HandleValidity(w http.ResponseWriter, r *http.Request) {
	credID, err := id.ParseCredentialID(chi.URLParam(r, "credentialID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ValidityResponse{
		CredentialID: credID.String(),
		Valid:        h.service.IsValid(r.Context(), credID),
	})
}

func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := httputil.RequireCaller(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	credID, err := id.ParseCredentialID(chi.URLParam(r, "credentialID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.service.Revoke(ctx, caller, credID)
	if err != nil {
		httputil.WriteFailure(ctx, w, h.logger, "failed to revoke credential", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCredentialResponse(c, false))
}

func (h *Handler) HandleListBySubject(w http.ResponseWriter, r *http.Request) {
	h.listCredentials(w, r, "subject", h.service.ListBySubject)
}

func (h *Handler) HandleListByIssuer(w http.ResponseWriter, r *http.Request) {
	h.listCredentials(w, r, "issuer", h.service.ListByIssuer)
}

func (h *Handler) listCredentials(w http.ResponseWriter, r *http.Request, param string,
	list func(context.Context, id.Identity) ([]*models.Credential, error),
) {
	ctx := r.Context()
	who, err := id.ParseIdentity(chi.URLParam(r, param))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	creds, err := list(ctx, who)
	if err != nil {
		httputil.WriteFailure(ctx, w, h.logger, "failed to list credentials", err)
		return
	}
	now := requestcontext.Now(ctx)
	httputil.WriteJSON(w, http.StatusOK, httputil.NewList(creds, func(c *models.Credential) CredentialResponse {
		return toCredentialResponse(c, c.IsValidAt(now))
	}))
}
