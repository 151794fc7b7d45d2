// Package store persists credential type definitions and per-subject
// issuance counters.
package store

import (
	"context"

	"veriledger/internal/credentialtype/models"
	"veriledger/internal/sentinel"
	id "veriledger/pkg/domain"
	psync "veriledger/pkg/platform/sync"
)

type issuanceKey struct {
	typeID  id.CredentialTypeID
	subject id.Identity
}

// InMemory keeps the catalog in journaled tables.
type InMemory struct {
	types  *psync.Table[id.CredentialTypeID, *models.CredentialType]
	counts *psync.Table[issuanceKey, int]
}

// NewInMemory creates an empty in-memory catalog store.
func NewInMemory() *InMemory {
	return &InMemory{
		types:  psync.NewTable[id.CredentialTypeID, *models.CredentialType](),
		counts: psync.NewTable[issuanceKey, int](),
	}
}

func (s *InMemory) Create(ctx context.Context, ct *models.CredentialType) error {
	if !s.types.Insert(ctx, ct.ID, ct.Clone()) {
		return sentinel.ErrAlreadyExists
	}
	return nil
}

func (s *InMemory) Update(ctx context.Context, ct *models.CredentialType) error {
	if !s.types.Replace(ctx, ct.ID, ct.Clone()) {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *InMemory) FindByID(_ context.Context, typeID id.CredentialTypeID) (*models.CredentialType, error) {
	ct, ok := s.types.Get(typeID)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return ct.Clone(), nil
}

// List returns types ordered by id; an empty category matches all.
func (s *InMemory) List(_ context.Context, category models.Category) ([]*models.CredentialType, error) {
	rows := s.types.Filter(func(ct *models.CredentialType) bool {
		return category == "" || ct.Definition.Category == category
	}, func(a, b *models.CredentialType) bool { return a.ID < b.ID })
	out := make([]*models.CredentialType, len(rows))
	for i, ct := range rows {
		out[i] = ct.Clone()
	}
	return out, nil
}

func (s *InMemory) IssuedCount(_ context.Context, typeID id.CredentialTypeID, subject id.Identity) (int, error) {
	n, _ := s.counts.Get(issuanceKey{typeID: typeID, subject: subject})
	return n, nil
}

func (s *InMemory) IncrementIssued(ctx context.Context, typeID id.CredentialTypeID, subject id.Identity) error {
	key := issuanceKey{typeID: typeID, subject: subject}
	n, _ := s.counts.Get(key)
	s.counts.Put(ctx, key, n+1)
	return nil
}
