package handler

import (
	"errors"
	"strings"
	"time"

	"veriledger/internal/tenant/models"
	tenantservice "veriledger/internal/tenant/service"
	id "veriledger/pkg/domain"
	dErrors "veriledger/pkg/domain-errors"
)

// errHandled signals that a response was already written.
var errHandled = errors.New("response written")

type CreateTenantRequest struct {
	ID                      string   `json:"id"`
	Name                    string   `json:"name"`
	Admin                   string   `json:"admin"`
	RequiredCredentialTypes []string `json:"required_credential_types"`
	MaxRiskScore            int      `json:"max_risk_score"`
	Jurisdictions           []string `json:"jurisdictions"`

	tenantID id.TenantID
	admin    id.Identity
	policy   models.Policy
}

func (r *CreateTenantRequest) Normalize() {
	r.ID = strings.TrimSpace(r.ID)
	r.Name = strings.TrimSpace(r.Name)
}

func (r *CreateTenantRequest) Validate() error {
	tenantID, err := id.ParseTenantID(r.ID)
	if err != nil {
		return err
	}
	admin, err := id.ParseIdentity(r.Admin)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "admin: "+err.Error())
	}
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	policy, err := parsePolicy(r.RequiredCredentialTypes, r.MaxRiskScore, r.Jurisdictions)
	if err != nil {
		return err
	}
	r.tenantID, r.admin, r.policy = tenantID, admin, policy
	return nil
}

func (r *CreateTenantRequest) command() tenantservice.CreateCommand {
	return tenantservice.CreateCommand{ID: r.tenantID, Name: r.Name, Admin: r.admin, Policy: r.policy}
}

type PolicyRequest struct {
	RequiredCredentialTypes []string `json:"required_credential_types"`
	MaxRiskScore            int      `json:"max_risk_score"`
	Jurisdictions           []string `json:"jurisdictions"`

	parsed models.Policy
}

func (r *PolicyRequest) Validate() error {
	p, err := parsePolicy(r.RequiredCredentialTypes, r.MaxRiskScore, r.Jurisdictions)
	if err != nil {
		return err
	}
	r.parsed = p
	return nil
}

func (r *PolicyRequest) policy() models.Policy { return r.parsed }

type CustomFieldRequest struct {
	Field string `json:"field"`
}

func (r *CustomFieldRequest) Normalize() { r.Field = strings.TrimSpace(r.Field) }

func (r *CustomFieldRequest) Validate() error {
	if r.Field == "" {
		return dErrors.New(dErrors.CodeValidation, "field is required")
	}
	return nil
}

func parsePolicy(types []string, maxRisk int, jurisdictions []string) (models.Policy, error) {
	p := models.Policy{MaxRiskScore: maxRisk, Jurisdictions: jurisdictions}
	for _, raw := range types {
		ct, err := id.ParseCredentialTypeID(raw)
		if err != nil {
			return models.Policy{}, err
		}
		p.RequiredCredentialTypes = append(p.RequiredCredentialTypes, ct)
	}
	return p, nil
}

type TenantResponse struct {
	ID                      string    `json:"id"`
	Name                    string    `json:"name"`
	Admin                   string    `json:"admin"`
	RequiredCredentialTypes []string  `json:"required_credential_types"`
	MaxRiskScore            int       `json:"max_risk_score"`
	Jurisdictions           []string  `json:"jurisdictions"`
	CustomFields            []string  `json:"custom_fields"`
	Active                  bool      `json:"active"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

func toResponse(t *models.Tenant) TenantResponse {
	types := make([]string, 0, len(t.RequiredCredentialTypes))
	for _, ct := range t.RequiredCredentialTypes {
		types = append(types, ct.String())
	}
	return TenantResponse{
		ID:                      t.ID.String(),
		Name:                    t.Name,
		Admin:                   t.Admin.String(),
		RequiredCredentialTypes: types,
		MaxRiskScore:            t.MaxRiskScore,
		Jurisdictions:           append([]string{}, t.Jurisdictions...),
		CustomFields:            append([]string{}, t.CustomFields...),
		Active:                  t.Active,
		CreatedAt:               t.CreatedAt.UTC(),
		UpdatedAt:               t.UpdatedAt.UTC(),
	}
}
