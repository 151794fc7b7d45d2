// Package store persists credentials and DID records.
package store

import (
	"context"

	"veriledger/internal/credential/models"
	"veriledger/internal/sentinel"
	id "veriledger/pkg/domain"
	psync "veriledger/pkg/platform/sync"
)

// InMemory keeps credentials and DIDs in journaled tables.
type InMemory struct {
	credentials *psync.Table[id.CredentialID, *models.Credential]
	dids        *psync.Table[id.DID, *models.DIDRecord]
}

// NewInMemory creates an empty in-memory credential store.
func NewInMemory() *InMemory {
	return &InMemory{
		credentials: psync.NewTable[id.CredentialID, *models.Credential](),
		dids:        psync.NewTable[id.DID, *models.DIDRecord](),
	}
}

func (s *InMemory) CreateCredential(ctx context.Context, c *models.Credential) error {
	if !s.credentials.Insert(ctx, c.ID, c.Clone()) {
		return sentinel.ErrAlreadyExists
	}
	return nil
}

func (s *InMemory) UpdateCredential(ctx context.Context, c *models.Credential) error {
	if !s.credentials.Replace(ctx, c.ID, c.Clone()) {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *InMemory) FindCredential(_ context.Context, credID id.CredentialID) (*models.Credential, error) {
	c, ok := s.credentials.Get(credID)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return c.Clone(), nil
}

func (s *InMemory) ListBySubject(_ context.Context, subject id.Identity) ([]*models.Credential, error) {
	return s.listCredentials(func(c *models.Credential) bool { return c.Subject == subject }), nil
}

func (s *InMemory) ListByIssuer(_ context.Context, issuer id.Identity) ([]*models.Credential, error) {
	return s.listCredentials(func(c *models.Credential) bool { return c.Issuer == issuer }), nil
}

func (s *InMemory) CreateDID(ctx context.Context, d *models.DIDRecord) error {
	if !s.dids.Insert(ctx, d.ID, d.Clone()) {
		return sentinel.ErrAlreadyExists
	}
	return nil
}

func (s *InMemory) UpdateDID(ctx context.Context, d *models.DIDRecord) error {
	if !s.dids.Replace(ctx, d.ID, d.Clone()) {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *InMemory) FindDID(_ context.Context, did id.DID) (*models.DIDRecord, error) {
	d, ok := s.dids.Get(did)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return d.Clone(), nil
}

func (s *InMemory) ListDIDsBySubject(_ context.Context, subject id.Identity) ([]*models.DIDRecord, error) {
	rows := s.dids.Filter(func(d *models.DIDRecord) bool { return d.Subject == subject },
		func(a, b *models.DIDRecord) bool {
			if a.CreatedAt.Equal(b.CreatedAt) {
				return a.ID < b.ID
			}
			return a.CreatedAt.Before(b.CreatedAt)
		})
	out := make([]*models.DIDRecord, len(rows))
	for i, d := range rows {
		out[i] = d.Clone()
	}
	return out, nil
}

func (s *InMemory) listCredentials(keep func(*models.Credential) bool) []*models.Credential {
	rows := s.credentials.Filter(keep, func(a, b *models.Credential) bool {
		if a.IssuedAt.Equal(b.IssuedAt) {
			return a.ID < b.ID
		}
		return a.IssuedAt.Before(b.IssuedAt)
	})
	out := make([]*models.Credential, len(rows))
	for i, c := range rows {
		out[i] = c.Clone()
	}
	return out
}
