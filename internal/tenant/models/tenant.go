package models

import (
	"slices"
	"strings"
	"time"

	id "veriledger/pkg/domain"
	dErrors "veriledger/pkg/domain-errors"
	strs "veriledger/pkg/platform/strings"
)

const (
	MaxNameLength = 128
	MaxRiskScore  = 100
)

// Tenant is an independent policy domain layered on the shared credential
// infrastructure. Tenants are deactivated, never deleted.
type Tenant struct {
	ID                      id.TenantID
	Name                    string
	Admin                   id.Identity
	RequiredCredentialTypes []id.CredentialTypeID
	MaxRiskScore            int
	Jurisdictions           []string
	CustomFields            []string
	Active                  bool
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// Policy is the mutable compliance configuration of a tenant.
type Policy struct {
	RequiredCredentialTypes []id.CredentialTypeID
	MaxRiskScore            int
	Jurisdictions           []string
}

// NewTenant validates and normalizes a tenant. Jurisdiction codes are
// upper-cased and de-duplicated.
func NewTenant(tenantID id.TenantID, name string, admin id.Identity, policy Policy, now time.Time) (*Tenant, error) {
	if tenantID.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "tenant id is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "tenant name cannot be empty")
	}
	if len(name) > MaxNameLength {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "tenant name must be 128 characters or less")
	}
	if admin.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "tenant admin identity is required")
	}
	t := &Tenant{
		ID:        tenantID,
		Name:      name,
		Admin:     admin,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := t.ApplyPolicy(policy, now); err != nil {
		return nil, err
	}
	return t, nil
}

// ApplyPolicy replaces the compliance configuration.
func (t *Tenant) ApplyPolicy(p Policy, now time.Time) error {
	if p.MaxRiskScore < 0 || p.MaxRiskScore > MaxRiskScore {
		return dErrors.New(dErrors.CodeInvalidInput, "max risk score must be between 0 and 100")
	}
	types := make([]id.CredentialTypeID, 0, len(p.RequiredCredentialTypes))
	for _, ct := range p.RequiredCredentialTypes {
		if ct.IsZero() {
			return dErrors.New(dErrors.CodeInvalidInput, "required credential type cannot be empty")
		}
		if !slices.Contains(types, ct) {
			types = append(types, ct)
		}
	}
	jurisdictions, err := normalizeJurisdictions(p.Jurisdictions)
	if err != nil {
		return err
	}
	t.RequiredCredentialTypes = types
	t.MaxRiskScore = p.MaxRiskScore
	t.Jurisdictions = jurisdictions
	t.UpdatedAt = now
	return nil
}

// Policy returns a copy of the compliance configuration.
func (t *Tenant) Policy() Policy {
	return Policy{
		RequiredCredentialTypes: slices.Clone(t.RequiredCredentialTypes),
		MaxRiskScore:            t.MaxRiskScore,
		Jurisdictions:           slices.Clone(t.Jurisdictions),
	}
}

// AddCustomField records an additional onboarding field name.
func (t *Tenant) AddCustomField(name string, now time.Time) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "custom field name cannot be empty")
	}
	if slices.Contains(t.CustomFields, name) {
		return dErrors.New(dErrors.CodeConflict, "custom field already exists")
	}
	t.CustomFields = append(t.CustomFields, name)
	t.UpdatedAt = now
	return nil
}

// Deactivate fails when the tenant is already inactive.
func (t *Tenant) Deactivate(now time.Time) error {
	if !t.Active {
		return dErrors.New(dErrors.CodeInvalidStateTransition, "tenant is already inactive")
	}
	t.Active = false
	t.UpdatedAt = now
	return nil
}

// Reactivate fails when the tenant is already active.
func (t *Tenant) Reactivate(now time.Time) error {
	if t.Active {
		return dErrors.New(dErrors.CodeInvalidStateTransition, "tenant is already active")
	}
	t.Active = true
	t.UpdatedAt = now
	return nil
}

// AllowsJurisdiction reports whether code is in the allowed set. An empty
// set allows every jurisdiction.
func (t *Tenant) AllowsJurisdiction(code string) bool {
	if len(t.Jurisdictions) == 0 {
		return true
	}
	return slices.Contains(t.Jurisdictions, strings.ToUpper(strings.TrimSpace(code)))
}

// Requires reports whether ct is one of the tenant's required types.
func (t *Tenant) Requires(ct id.CredentialTypeID) bool {
	return slices.Contains(t.RequiredCredentialTypes, ct)
}

// Clone returns a deep copy.
func (t *Tenant) Clone() *Tenant {
	c := *t
	c.RequiredCredentialTypes = slices.Clone(t.RequiredCredentialTypes)
	c.Jurisdictions = slices.Clone(t.Jurisdictions)
	c.CustomFields = slices.Clone(t.CustomFields)
	return &c
}

func normalizeJurisdictions(codes []string) ([]string, error) {
	if strs.HasBlank(codes) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "jurisdiction code cannot be empty")
	}
	out := strs.DedupeAndTrimUpper(codes)
	if out == nil {
		out = []string{}
	}
	return out, nil
}
