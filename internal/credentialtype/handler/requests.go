package handler

import (
	"strings"
	"time"

	"veriledger/internal/credentialtype/models"
	id "veriledger/pkg/domain"
	dErrors "veriledger/pkg/domain-errors"
)

// DefinitionRequest is the wire form of models.Definition. Validity is in
// whole seconds.
type DefinitionRequest struct {
	Name                  string   `json:"name"`
	Category              string   `json:"category"`
	RequiredFields        []string `json:"required_fields"`
	OptionalFields        []string `json:"optional_fields"`
	ValiditySeconds       int64    `json:"validity_seconds"`
	RequiresBiometric     bool     `json:"requires_biometric"`
	RequiresDocumentProof bool     `json:"requires_document_proof"`
	RequiresThirdParty    bool     `json:"requires_third_party"`
	MaxIssuance           int      `json:"max_issuance"`

	parsed models.Definition
}

func (r *DefinitionRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Category = strings.ToLower(strings.TrimSpace(r.Category))
}

// Validate checks the wire-level constraints; field rules are enforced by
// the model.
func (r *DefinitionRequest) Validate() error {
	if r.ValiditySeconds < 0 {
		return dErrors.New(dErrors.CodeValidation, "validity_seconds must not be negative")
	}
	category := models.Category(r.Category)
	if !category.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "unknown category")
	}
	r.parsed = models.Definition{
		Name:                  r.Name,
		Category:              category,
		RequiredFields:        r.RequiredFields,
		OptionalFields:        r.OptionalFields,
		ValidityPeriod:        time.Duration(r.ValiditySeconds) * time.Second,
		RequiresBiometric:     r.RequiresBiometric,
		RequiresDocumentProof: r.RequiresDocumentProof,
		RequiresThirdParty:    r.RequiresThirdParty,
		MaxIssuance:           r.MaxIssuance,
	}
	return nil
}

type RegisterRequest struct {
	ID         string            `json:"id"`
	Definition DefinitionRequest `json:"definition"`

	typeID id.CredentialTypeID
}

func (r *RegisterRequest) Normalize() {
	r.Definition.Normalize()
}

func (r *RegisterRequest) Validate() error {
	typeID, err := id.ParseCredentialTypeID(r.ID)
	if err != nil {
		return err
	}
	r.typeID = typeID
	return r.Definition.Validate()
}

type StatusRequest struct {
	Status string `json:"status"`
}

func (r *StatusRequest) Normalize() { r.Status = strings.ToLower(strings.TrimSpace(r.Status)) }

func (r *StatusRequest) Validate() error {
	if !models.Status(r.Status).IsValid() {
		return dErrors.New(dErrors.CodeValidation, "unknown status")
	}
	return nil
}

type CredentialTypeResponse struct {
	ID                    string    `json:"id"`
	Name                  string    `json:"name"`
	Category              string    `json:"category"`
	RequiredFields        []string  `json:"required_fields"`
	OptionalFields        []string  `json:"optional_fields"`
	ValiditySeconds       int64     `json:"validity_seconds"`
	RequiresBiometric     bool      `json:"requires_biometric"`
	RequiresDocumentProof bool      `json:"requires_document_proof"`
	RequiresThirdParty    bool      `json:"requires_third_party"`
	MaxIssuance           int       `json:"max_issuance"`
	Status                string    `json:"status"`
	CreatedBy             string    `json:"created_by"`
	Version               int       `json:"version"`
	Referenced            bool      `json:"referenced"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func toResponse(ct *models.CredentialType) CredentialTypeResponse {
	def := ct.Definition
	return CredentialTypeResponse{
		ID:                    ct.ID.String(),
		Name:                  def.Name,
		Category:              string(def.Category),
		RequiredFields:        append([]string{}, def.RequiredFields...),
		OptionalFields:        append([]string{}, def.OptionalFields...),
		ValiditySeconds:       int64(def.ValidityPeriod / time.Second),
		RequiresBiometric:     def.RequiresBiometric,
		RequiresDocumentProof: def.RequiresDocumentProof,
		RequiresThirdParty:    def.RequiresThirdParty,
		MaxIssuance:           def.MaxIssuance,
		Status:                string(ct.Status),
		CreatedBy:             ct.CreatedBy.String(),
		Version:               ct.Version,
		Referenced:            ct.Referenced,
		CreatedAt:             ct.CreatedAt.UTC(),
		UpdatedAt:             ct.UpdatedAt.UTC(),
	}
}
