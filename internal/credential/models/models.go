// Package models holds credential and DID records.
package models

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"time"

	"golang.org/x/crypto/sha3"

	id "veriledger/pkg/domain"
	dErrors "veriledger/pkg/domain-errors"
)

// DIDMethod prefixes every DID this ledger mints.
const DIDMethod = "did:veri:"

// Credential is an issued verifiable credential. Data is opaque to the
// ledger apart from catalog field checks.
type Credential struct {
	ID        id.CredentialID
	Issuer    id.Identity
	Subject   id.Identity
	Type      id.CredentialTypeID
	Data      []byte
	IssuedAt  time.Time
	ExpiresAt time.Time // zero never expires
	Revoked   bool
	RevokedAt time.Time
}

// IsValidAt reports whether the credential is unrevoked and unexpired at
// now. A credential is still valid at the instant it expires.
func (c *Credential) IsValidAt(now time.Time) bool {
	if c.Revoked {
		return false
	}
	return c.ExpiresAt.IsZero() || !now.After(c.ExpiresAt)
}

// Revoke marks the credential revoked. Revocation is permanent.
func (c *Credential) Revoke(now time.Time) error {
	if c.Revoked {
		return dErrors.New(dErrors.CodeInvalidStateTransition, "credential already revoked")
	}
	c.Revoked = true
	c.RevokedAt = now
	return nil
}

// Clone returns a deep copy.
func (c *Credential) Clone() *Credential {
	cp := *c
	cp.Data = bytes.Clone(c.Data)
	return &cp
}

// DIDRecord is a decentralized identifier owned by a subject.
type DIDRecord struct {
	ID        id.DID
	Subject   id.Identity
	Document  []byte
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UpdateDocument replaces the document of an active DID.
func (d *DIDRecord) UpdateDocument(doc []byte, now time.Time) error {
	if !d.Active {
		return dErrors.New(dErrors.CodeInvalidStateTransition, "DID is deactivated")
	}
	d.Document = bytes.Clone(doc)
	d.UpdatedAt = now
	return nil
}

// Deactivate retires the DID. Deactivation is permanent.
func (d *DIDRecord) Deactivate(now time.Time) error {
	if !d.Active {
		return dErrors.New(dErrors.CodeInvalidStateTransition, "DID already deactivated")
	}
	d.Active = false
	d.UpdatedAt = now
	return nil
}

// Clone returns a deep copy.
func (d *DIDRecord) Clone() *DIDRecord {
	cp := *d
	cp.Document = bytes.Clone(d.Document)
	return &cp
}

// DeriveID returns the content id of a credential: Keccak-256 over the
// length-prefixed issuer, subject, type, data and issuance time, hex encoded
// with a 0x prefix.
func DeriveID(issuer, subject id.Identity, typeID id.CredentialTypeID, data []byte, issuedAt time.Time) id.CredentialID {
	sum := keccak(
		[]byte(issuer),
		[]byte(subject),
		[]byte(typeID),
		data,
		timeBytes(issuedAt),
	)
	return id.CredentialID("0x" + sum)
}

// DeriveDID mints a DID for subject. seq distinguishes DIDs registered for
// the same subject.
func DeriveDID(subject id.Identity, seq int, createdAt time.Time) id.DID {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(seq))
	sum := keccak([]byte(subject), n[:], timeBytes(createdAt))
	return id.DID(DIDMethod + sum[:40])
}

func keccak(fields ...[]byte) string {
	h := sha3.NewLegacyKeccak256()
	var size [8]byte
	for _, f := range fields {
		binary.BigEndian.PutUint64(size[:], uint64(len(f)))
		h.Write(size[:])
		h.Write(f)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func timeBytes(t time.Time) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(t.UTC().UnixNano()))
	return b[:]
}
