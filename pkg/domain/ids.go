// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "veriledger/pkg/domain-errors"
)

// MaxIdentifierLength bounds every string identifier accepted at a trust boundary.
const MaxIdentifierLength = 128

// Identity is an authenticated ledger principal (account address or key id).
// Identities are compared case-insensitively, so they are stored lower-cased.
type Identity string

// Distinct ID types - compiler prevents passing a TenantID where a CredentialTypeID is expected.
type (
	TenantID         string
	CredentialTypeID string
	CredentialID     string
	DID              string
	SessionID        uuid.UUID
	ProposalID       uuid.UUID
)

// Parse functions - use at trust boundaries (handlers, API inputs).

func ParseIdentity(s string) (Identity, error) {
	v, err := parseString(s, "identity")
	if err != nil {
		return "", err
	}
	if strings.ContainsAny(v, " \t\r\n") {
		return "", dErrors.New(dErrors.CodeInvalidInput, "identity must not contain whitespace")
	}
	return Identity(strings.ToLower(v)), nil
}

func ParseTenantID(s string) (TenantID, error) {
	v, err := parseString(s, "tenant ID")
	return TenantID(v), err
}

func ParseCredentialTypeID(s string) (CredentialTypeID, error) {
	v, err := parseString(s, "credential type ID")
	return CredentialTypeID(v), err
}

func ParseCredentialID(s string) (CredentialID, error) {
	v, err := parseString(s, "credential ID")
	return CredentialID(strings.ToLower(v)), err
}

func ParseDID(s string) (DID, error) {
	v, err := parseString(s, "DID")
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(v, "did:") {
		return "", dErrors.New(dErrors.CodeInvalidInput, "DID must start with did:")
	}
	return DID(v), nil
}

func ParseSessionID(s string) (SessionID, error) {
	id, err := parseUUID(s, "session ID")
	return SessionID(id), err
}

func ParseProposalID(s string) (ProposalID, error) {
	id, err := parseUUID(s, "proposal ID")
	return ProposalID(id), err
}

// String methods - for logging and debugging.

func (id Identity) String() string         { return string(id) }
func (id TenantID) String() string         { return string(id) }
func (id CredentialTypeID) String() string { return string(id) }
func (id CredentialID) String() string     { return string(id) }
func (id DID) String() string              { return string(id) }
func (id SessionID) String() string        { return uuid.UUID(id).String() }
func (id ProposalID) String() string       { return uuid.UUID(id).String() }

// IsZero checks - used for service-layer validation.

func (id Identity) IsZero() bool         { return id == "" }
func (id TenantID) IsZero() bool         { return id == "" }
func (id CredentialTypeID) IsZero() bool { return id == "" }
func (id CredentialID) IsZero() bool     { return id == "" }
func (id DID) IsZero() bool              { return id == "" }
func (id SessionID) IsZero() bool        { return uuid.UUID(id) == uuid.Nil }
func (id ProposalID) IsZero() bool       { return uuid.UUID(id) == uuid.Nil }

func NewSessionID() SessionID   { return SessionID(uuid.New()) }
func NewProposalID() ProposalID { return ProposalID(uuid.New()) }

func parseString(s, label string) (string, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	if len(v) > MaxIdentifierLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, label+" is too long")
	}
	return v, nil
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label+" format")
	}
	if id == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return id, nil
}
