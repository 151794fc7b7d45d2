// Package handler exposes governance controls over HTTP: authorization
// grants, the emergency flag, multisig proposals and the gate upgrade.
package handler

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"

	authmodels "veriledger/internal/governance/authorization/models"
	"veriledger/internal/governance/emergency"
	"veriledger/internal/governance/multisig"
	"veriledger/internal/governance/policy"
	id "veriledger/pkg/domain"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Grants,Emergency,Multisig,Gate

type Grants interface {
	Grant(ctx context.Context, caller, subject id.Identity, perms ...authmodels.Permission) (*authmodels.Grant, error)
	Revoke(ctx context.Context, caller, subject id.Identity) error
	RevokePermission(ctx context.Context, caller, subject id.Identity, perm authmodels.Permission) error
	GetGrant(ctx context.Context, subject id.Identity) (*authmodels.Grant, error)
	ListGrants(ctx context.Context) ([]*authmodels.Grant, error)
}

type Emergency interface {
	Activate(ctx context.Context, caller id.Identity) error
	Deactivate(ctx context.Context, caller id.Identity) error
	State(ctx context.Context) (emergency.State, error)
}

type Multisig interface {
	Propose(ctx context.Context, proposer id.Identity, action string) (*multisig.Proposal, error)
	Approve(ctx context.Context, signer id.Identity, proposalID id.ProposalID) (*multisig.Proposal, error)
	GetProposal(ctx context.Context, proposalID id.ProposalID) (*multisig.Proposal, error)
	Signers() []id.Identity
	Threshold() int
}

type Gate interface {
	Upgrade(ctx context.Context, caller id.Identity) error
	Mode() policy.Mode
	Owner() id.Identity
}

type Handler struct {
	grants    Grants
	emergency Emergency
	multisig  Multisig
	gate      Gate
	logger    *slog.Logger
}

func New(grants Grants, control Emergency, authority Multisig, gate Gate, logger *slog.Logger) *Handler {
	return &Handler{
		grants:    grants,
		emergency: control,
		multisig:  authority,
		gate:      gate,
		logger:    logger,
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/governance", func(r chi.Router) {
		r.Post("/grants", h.HandleGrant)
		r.Get("/grants", h.HandleListGrants)
		r.Get("/grants/{subject}", h.HandleGetGrant)
		r.Delete("/grants/{subject}", h.HandleRevokeGrant)
		r.Delete("/grants/{subject}/permissions/{permission}", h.HandleRevokePermission)

		r.Get("/emergency", h.HandleEmergencyState)
		r.Post("/emergency/activate", h.HandleEmergencyActivate)
		r.Post("/emergency/deactivate", h.HandleEmergencyDeactivate)

		r.Get("/multisig", h.HandleMultisig)
		r.Post("/proposals", h.HandlePropose)
		r.Get("/proposals/{proposalID}", h.HandleGetProposal)
		r.Post("/proposals/{proposalID}/approve", h.HandleApprove)

		r.Get("/gate", h.HandleGate)
		r.Post("/gate/upgrade", h.HandleGateUpgrade)
	})
}
