package models

import (
	"encoding/json"
	"slices"
	"strings"
	"time"

	id "veriledger/pkg/domain"
	dErrors "veriledger/pkg/domain-errors"
)

// Category groups credential types.
type Category string

const (
	CategoryIdentity     Category = "identity"
	CategoryFinancial    Category = "financial"
	CategoryProfessional Category = "professional"
	CategoryCompliance   Category = "compliance"
	CategoryCustom       Category = "custom"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryIdentity, CategoryFinancial, CategoryProfessional, CategoryCompliance, CategoryCustom:
		return true
	}
	return false
}

// Status gates issuance. Only active types can be issued.
type Status string

const (
	StatusActive     Status = "active"
	StatusInactive   Status = "inactive"
	StatusDeprecated Status = "deprecated"
	StatusSuspended  Status = "suspended"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusDeprecated, StatusSuspended:
		return true
	}
	return false
}

// Definition is the part of a credential type frozen once a credential of
// that type has been issued.
type Definition struct {
	Name                  string
	Category              Category
	RequiredFields        []string
	OptionalFields        []string
	ValidityPeriod        time.Duration
	RequiresBiometric     bool
	RequiresDocumentProof bool
	RequiresThirdParty    bool
	// MaxIssuance caps credentials of this type per subject; 0 is unlimited.
	MaxIssuance int
}

// CredentialType is a catalog entry.
type CredentialType struct {
	ID         id.CredentialTypeID
	Definition Definition
	Status     Status
	CreatedBy  id.Identity
	Version    int
	Referenced bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewCredentialType validates def and returns an active type at version 1.
func NewCredentialType(typeID id.CredentialTypeID, def Definition, creator id.Identity, now time.Time) (*CredentialType, error) {
	if typeID.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "credential type id is required")
	}
	if creator.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "creator identity is required")
	}
	def, err := normalizeDefinition(def)
	if err != nil {
		return nil, err
	}
	return &CredentialType{
		ID:         typeID,
		Definition: def,
		Status:     StatusActive,
		CreatedBy:  creator,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// SetStatus changes the status. Allowed even once referenced.
func (t *CredentialType) SetStatus(status Status, now time.Time) error {
	if !status.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "unknown credential type status")
	}
	if t.Status == status {
		return dErrors.New(dErrors.CodeInvalidStateTransition, "credential type already has this status")
	}
	t.Status = status
	t.UpdatedAt = now
	return nil
}

// Redefine replaces the definition and bumps the version. Fails once the
// type is referenced by an issued credential.
func (t *CredentialType) Redefine(def Definition, now time.Time) error {
	if t.Referenced {
		return dErrors.New(dErrors.CodeInvalidStateTransition, "credential type is referenced by issued credentials")
	}
	def, err := normalizeDefinition(def)
	if err != nil {
		return err
	}
	t.Definition = def
	t.Version++
	t.UpdatedAt = now
	return nil
}

// CanIssue reports whether another credential may be issued given the
// number already issued to that subject.
func (t *CredentialType) CanIssue(issued int) error {
	if t.Status != StatusActive {
		return dErrors.New(dErrors.CodeInvalidInput, "credential type is "+string(t.Status))
	}
	if t.Definition.MaxIssuance > 0 && issued >= t.Definition.MaxIssuance {
		return dErrors.New(dErrors.CodeConflict, "issuance cap reached for subject")
	}
	return nil
}

// ValidateData checks data is a JSON object carrying every required field
// with a non-empty value. Types without required fields accept any payload.
func (t *CredentialType) ValidateData(data []byte) error {
	if len(t.Definition.RequiredFields) == 0 {
		return nil
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "credential data must be a JSON object")
	}
	for _, name := range t.Definition.RequiredFields {
		v, ok := fields[name]
		if !ok || v == nil {
			return dErrors.New(dErrors.CodeInvalidInput, "missing required field: "+name)
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			return dErrors.New(dErrors.CodeInvalidInput, "missing required field: "+name)
		}
	}
	return nil
}

// ExpiryFor returns the default expiry for a credential issued at issuedAt;
// zero when the type has no validity period.
func (t *CredentialType) ExpiryFor(issuedAt time.Time) time.Time {
	if t.Definition.ValidityPeriod <= 0 {
		return time.Time{}
	}
	return issuedAt.Add(t.Definition.ValidityPeriod)
}

// Clone returns a deep copy.
func (t *CredentialType) Clone() *CredentialType {
	c := *t
	c.Definition.RequiredFields = slices.Clone(t.Definition.RequiredFields)
	c.Definition.OptionalFields = slices.Clone(t.Definition.OptionalFields)
	return &c
}

func normalizeDefinition(def Definition) (Definition, error) {
	def.Name = strings.TrimSpace(def.Name)
	if def.Name == "" {
		return def, dErrors.New(dErrors.CodeInvalidInput, "credential type name is required")
	}
	if !def.Category.IsValid() {
		return def, dErrors.New(dErrors.CodeInvalidInput, "unknown credential type category")
	}
	if def.ValidityPeriod < 0 {
		return def, dErrors.New(dErrors.CodeInvalidInput, "validity period cannot be negative")
	}
	if def.MaxIssuance < 0 {
		return def, dErrors.New(dErrors.CodeInvalidInput, "max issuance cannot be negative")
	}
	seen := make(map[string]bool)
	var err error
	if def.RequiredFields, err = normalizeFields(def.RequiredFields, seen); err != nil {
		return def, err
	}
	if def.OptionalFields, err = normalizeFields(def.OptionalFields, seen); err != nil {
		return def, err
	}
	return def, nil
}

func normalizeFields(fields []string, seen map[string]bool) ([]string, error) {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "field name cannot be empty")
		}
		if seen[f] {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "field listed twice: "+f)
		}
		seen[f] = true
		out = append(out, f)
	}
	return out, nil
}
