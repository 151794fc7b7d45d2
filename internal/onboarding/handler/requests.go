package handler

import (
	"strings"
	"time"

	"veriledger/internal/onboarding/models"
	id "veriledger/pkg/domain"
	dErrors "veriledger/pkg/domain-errors"
)

type StartRequest struct {
	Subject  string `json:"subject"`
	TenantID string `json:"tenant_id"`

	subject  id.Identity
	tenantID id.TenantID
}

func (r *StartRequest) Normalize() {
	r.Subject = strings.TrimSpace(r.Subject)
	r.TenantID = strings.TrimSpace(r.TenantID)
}

func (r *StartRequest) Validate() error {
	var err error
	if r.Subject != "" {
		if r.subject, err = id.ParseIdentity(r.Subject); err != nil {
			return err
		}
	}
	if r.TenantID != "" {
		if r.tenantID, err = id.ParseTenantID(r.TenantID); err != nil {
			return err
		}
	}
	return nil
}

// StepRequest carries step input. Field validation happens in the service,
// which knows the rules for each step.
type StepRequest struct {
	Fields         map[string]string `json:"fields"`
	DocumentHashes []string          `json:"document_hashes"`
	DocumentTypes  []string          `json:"document_types"`
}

func (r *StepRequest) payload() models.Payload {
	return models.Payload{
		Fields:         r.Fields,
		DocumentHashes: r.DocumentHashes,
		DocumentTypes:  r.DocumentTypes,
	}
}

type ForceFailRequest struct {
	Reason string `json:"reason"`
}

func (r *ForceFailRequest) Normalize() {
	r.Reason = strings.TrimSpace(r.Reason)
}

func (r *ForceFailRequest) Validate() error {
	if r.Reason == "" {
		return dErrors.New(dErrors.CodeValidation, "reason is required")
	}
	return nil
}

type SessionResponse struct {
	ID             string    `json:"id"`
	Subject        string    `json:"subject"`
	TenantID       string    `json:"tenant_id,omitempty"`
	CurrentStep    string    `json:"current_step"`
	CompletedSteps []string  `json:"completed_steps"`
	Active         bool      `json:"active"`
	FailureReason  string    `json:"failure_reason,omitempty"`
	DID            string    `json:"did,omitempty"`
	CredentialID   string    `json:"credential_id,omitempty"`
	StartedAt      time.Time `json:"started_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type SessionDataResponse struct {
	SessionID string            `json:"session_id"`
	Fields    map[string]string `json:"fields"`
}

func toResponse(s *models.Session) SessionResponse {
	steps := make([]string, len(s.CompletedSteps))
	for i, step := range s.CompletedSteps {
		steps[i] = string(step)
	}
	return SessionResponse{
		ID:             s.ID.String(),
		Subject:        s.Subject.String(),
		TenantID:       s.TenantID.String(),
		CurrentStep:    string(s.CurrentStep),
		CompletedSteps: steps,
		Active:         s.Active,
		FailureReason:  s.FailureReason,
		DID:            s.DID.String(),
		CredentialID:   s.CredentialID.String(),
		StartedAt:      s.StartedAt.UTC(),
		UpdatedAt:      s.UpdatedAt.UTC(),
	}
}
