package handler

import (
	"encoding/json"
	"time"

	"veriledger/internal/credential/models"
	credservice "veriledger/internal/credential/service"
	id "veriledger/pkg/domain"
	dErrors "veriledger/pkg/domain-errors"
)

// MaxDocumentBytes bounds credential data and DID documents.
const MaxDocumentBytes = 64 << 10

type IssueRequest struct {
	Issuer    string          `json:"issuer"`
	Subject   string          `json:"subject"`
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	IssuedAt  *time.Time      `json:"issued_at"`
	ExpiresAt *time.Time      `json:"expires_at"`

	issuer   id.Identity
	subject  id.Identity
	credType id.CredentialTypeID
}

func (r *IssueRequest) Validate() error {
	var err error
	if r.Issuer != "" {
		if r.issuer, err = id.ParseIdentity(r.Issuer); err != nil {
			return err
		}
	}
	if r.subject, err = id.ParseIdentity(r.Subject); err != nil {
		return err
	}
	if r.credType, err = id.ParseCredentialTypeID(r.Type); err != nil {
		return err
	}
	if len(r.Data) > MaxDocumentBytes {
		return dErrors.New(dErrors.CodeValidation, "data is too large")
	}
	return nil
}

func (r *IssueRequest) command(caller id.Identity) credservice.IssueCommand {
	cmd := credservice.IssueCommand{
		Issuer:  r.issuer,
		Subject: r.subject,
		Type:    r.credType,
		Data:    []byte(r.Data),
	}
	if cmd.Issuer.IsZero() {
		cmd.Issuer = caller
	}
	if r.IssuedAt != nil {
		cmd.IssuedAt = r.IssuedAt.UTC()
	}
	if r.ExpiresAt != nil {
		cmd.ExpiresAt = r.ExpiresAt.UTC()
	}
	return cmd
}

type RegisterDIDRequest struct {
	Subject  string          `json:"subject"`
	Document json.RawMessage `json:"document"`

	subject id.Identity
}

func (r *RegisterDIDRequest) Validate() error {
	if r.Subject != "" {
		subject, err := id.ParseIdentity(r.Subject)
		if err != nil {
			return err
		}
		r.subject = subject
	}
	return validateDocument(r.Document)
}

type DocumentRequest struct {
	Document json.RawMessage `json:"document"`
}

func (r *DocumentRequest) Validate() error {
	return validateDocument(r.Document)
}

func validateDocument(doc json.RawMessage) error {
	if len(doc) == 0 {
		return dErrors.New(dErrors.CodeValidation, "document is required")
	}
	if len(doc) > MaxDocumentBytes {
		return dErrors.New(dErrors.CodeValidation, "document is too large")
	}
	return nil
}

type CredentialResponse struct {
	ID        string          `json:"id"`
	Issuer    string          `json:"issuer"`
	Subject   string          `json:"subject"`
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	IssuedAt  time.Time       `json:"issued_at"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
	Revoked   bool            `json:"revoked"`
	RevokedAt *time.Time      `json:"revoked_at,omitempty"`
	Valid     bool            `json:"valid"`
}

type ValidityResponse struct {
	CredentialID string `json:"credential_id"`
	Valid        bool   `json:"valid"`
}

type DIDResponse struct {
	ID        string          `json:"id"`
	Subject   string          `json:"subject"`
	Document  json.RawMessage `json:"document,omitempty"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func toCredentialResponse(c *models.Credential, valid bool) CredentialResponse {
	resp := CredentialResponse{
		ID:       c.ID.String(),
		Issuer:   c.Issuer.String(),
		Subject:  c.Subject.String(),
		Type:     c.Type.String(),
		Data:     rawJSON(c.Data),
		IssuedAt: c.IssuedAt.UTC(),
		Revoked:  c.Revoked,
		Valid:    valid,
	}
	if !c.ExpiresAt.IsZero() {
		t := c.ExpiresAt.UTC()
		resp.ExpiresAt = &t
	}
	if !c.RevokedAt.IsZero() {
		t := c.RevokedAt.UTC()
		resp.RevokedAt = &t
	}
	return resp
}

func toDIDResponse(d *models.DIDRecord) DIDResponse {
	return DIDResponse{
		ID:        d.ID.String(),
		Subject:   d.Subject.String(),
		Document:  rawJSON(d.Document),
		Active:    d.Active,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

// rawJSON embeds stored bytes as-is when they are JSON and as a JSON
// string otherwise.
func rawJSON(b []byte) json.RawMessage {
	if len(b) == 0 {
		return nil
	}
	if json.Valid(b) {
		return json.RawMessage(b)
	}
	quoted, _ := json.Marshal(string(b))
	return quoted
}
