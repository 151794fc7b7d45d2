package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	id "veriledger/pkg/domain"
	"veriledger/pkg/platform/httputil"
)

func (h *Handler) HandleEmergencyState(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state, err := h.emergency.State(ctx)
	if err != nil {
		httputil.WriteFailure(ctx, w, h.logger, "failed to read emergency state", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toEmergencyResponse(state))
}

func (h *Handler) HandleEmergencyActivate(w http.ResponseWriter, r *http.Request) {
	h.setEmergency(w, r, true)
}

func (h *Handler) HandleEmergencyDeactivate(w http.ResponseWriter, r *http.Request) {
	h.setEmergency(w, r, false)
}

func (h *Handler) setEmergency(w http.ResponseWriter, r *http.Request, active bool) {
	ctx := r.Context()
	caller, err := httputil.RequireCaller(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	transition := h.emergency.Deactivate
	if active {
		transition = h.emergency.Activate
	}
	if err := transition(ctx, caller); err != nil {
		httputil.WriteFailure(ctx, w, h.logger, "failed to change emergency state", err)
		return
	}
	h.HandleEmergencyState(w, r)
}

func (h *Handler) HandleMultisig(w http.ResponseWriter, _ *http.Request) {
	signers := h.multisig.Signers()
	names := make([]string, len(signers))
	for i, s := range signers {
		names[i] = s.String()
	}
	httputil.WriteJSON(w, http.StatusOK, MultisigResponse{
		Signers:   names,
		Threshold: h.multisig.Threshold(),
	})
}

func (h *Handler) HandlePropose(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := httputil.RequireCaller(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[ProposeRequest](w, r, h.logger)
	if !ok {
		return
	}
	p, err := h.multisig.Propose(ctx, caller, req.Action)
	if err != nil {
		httputil.WriteFailure(ctx, w, h.logger, "failed to create proposal", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toProposalResponse(p))
}

func (h *Handler) HandleGetProposal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	proposalID, err := id.ParseProposalID(chi.URLParam(r, "proposalID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := h.multisig.GetProposal(ctx, proposalID)
	if err != nil {
		httputil.WriteFailure(ctx, w, h.logger, "failed to get proposal", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toProposalResponse(p))
}

func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := httputil.RequireCaller(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	proposalID, err := id.ParseProposalID(chi.URLParam(r, "proposalID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := h.multisig.Approve(ctx, caller, proposalID)
	if err != nil {
		httputil.WriteFailure(ctx, w, h.logger, "failed to approve proposal", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toProposalResponse(p))
}

func (h *Handler) HandleGate(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, GateResponse{
		Mode:  string(h.gate.Mode()),
		Owner: h.gate.Owner().String(),
	})
}

// HandleGateUpgrade switches privileged gating from the owner to the
// multisig signer set. It cannot be undone.
func (h *Handler) HandleGateUpgrade(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := httputil.RequireCaller(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.gate.Upgrade(ctx, caller); err != nil {
		httputil.WriteFailure(ctx, w, h.logger, "failed to upgrade gate", err)
		return
	}
	h.HandleGate(w, r)
}
