package handler

import (
	"strings"
	"time"

	authmodels "veriledger/internal/governance/authorization/models"
	"veriledger/internal/governance/emergency"
	"veriledger/internal/governance/multisig"
	id "veriledger/pkg/domain"
	dErrors "veriledger/pkg/domain-errors"
	strs "veriledger/pkg/platform/strings"
)

type GrantRequest struct {
	Subject     string   `json:"subject"`
	Permissions []string `json:"permissions"`

	subject id.Identity
	perms   []authmodels.Permission
}

func (r *GrantRequest) Normalize() {
	r.Permissions = strs.DedupeAndTrimLower(r.Permissions)
}

func (r *GrantRequest) Validate() error {
	subject, err := id.ParseIdentity(r.Subject)
	if err != nil {
		return err
	}
	r.subject = subject
	if len(r.Permissions) == 0 {
		return dErrors.New(dErrors.CodeValidation, "at least one permission is required")
	}
	r.perms = make([]authmodels.Permission, 0, len(r.Permissions))
	for _, raw := range r.Permissions {
		p, err := authmodels.ParsePermission(raw)
		if err != nil {
			return err
		}
		r.perms = append(r.perms, p)
	}
	return nil
}

type ProposeRequest struct {
	Action string `json:"action"`
}

func (r *ProposeRequest) Normalize() {
	r.Action = strings.TrimSpace(r.Action)
}

func (r *ProposeRequest) Validate() error {
	if r.Action == "" {
		return dErrors.New(dErrors.CodeValidation, "action is required")
	}
	return nil
}

type GrantResponse struct {
	Subject     string    `json:"subject"`
	Permissions []string  `json:"permissions"`
	GrantedBy   string    `json:"granted_by"`
	GrantedAt   time.Time `json:"granted_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type EmergencyResponse struct {
	Active    bool       `json:"active"`
	ChangedBy string     `json:"changed_by,omitempty"`
	ChangedAt *time.Time `json:"changed_at,omitempty"`
}

type MultisigResponse struct {
	Signers   []string `json:"signers"`
	Threshold int      `json:"threshold"`
}

type ProposalResponse struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Proposer  string    `json:"proposer"`
	Approvals []string  `json:"approvals"`
	Approved  bool      `json:"approved"`
	CreatedAt time.Time `json:"created_at"`
}

type GateResponse struct {
	Mode  string `json:"mode"`
	Owner string `json:"owner"`
}

func toGrantResponse(g *authmodels.Grant) GrantResponse {
	perms := make([]string, len(g.Permissions))
	for i, p := range g.Permissions {
		perms[i] = string(p)
	}
	return GrantResponse{
		Subject:     g.Subject.String(),
		Permissions: perms,
		GrantedBy:   g.GrantedBy.String(),
		GrantedAt:   g.GrantedAt.UTC(),
		UpdatedAt:   g.UpdatedAt.UTC(),
	}
}

func toEmergencyResponse(s emergency.State) EmergencyResponse {
	resp := EmergencyResponse{
		Active:    s.Active,
		ChangedBy: s.ChangedBy.String(),
	}
	if !s.ChangedAt.IsZero() {
		t := s.ChangedAt.UTC()
		resp.ChangedAt = &t
	}
	return resp
}

func toProposalResponse(p *multisig.Proposal) ProposalResponse {
	approvals := make([]string, len(p.Approvals))
	for i, a := range p.Approvals {
		approvals[i] = a.String()
	}
	return ProposalResponse{
		ID:        p.ID.String(),
		Action:    p.Action,
		Proposer:  p.Proposer.String(),
		Approvals: approvals,
		Approved:  p.Approved,
		CreatedAt: p.CreatedAt.UTC(),
	}
}
