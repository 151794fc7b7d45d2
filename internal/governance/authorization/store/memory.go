package store

import (
	"context"

	"veriledger/internal/governance/authorization/models"
	"veriledger/internal/sentinel"
	id "veriledger/pkg/domain"
	psync "veriledger/pkg/platform/sync"
)

// InMemory stores grants in a journaled table.
type InMemory struct {
	grants *psync.Table[id.Identity, *models.Grant]
}

// NewInMemory creates an in-memory grant store.
func NewInMemory() *InMemory {
	return &InMemory{grants: psync.NewTable[id.Identity, *models.Grant]()}
}

func (s *InMemory) Find(_ context.Context, subject id.Identity) (*models.Grant, error) {
	g, ok := s.grants.Get(subject)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return g.Clone(), nil
}

func (s *InMemory) Save(ctx context.Context, grant *models.Grant) error {
	s.grants.Put(ctx, grant.Subject, grant.Clone())
	return nil
}

func (s *InMemory) Delete(ctx context.Context, subject id.Identity) error {
	if _, ok := s.grants.Get(subject); !ok {
		return sentinel.ErrNotFound
	}
	s.grants.Delete(ctx, subject)
	return nil
}

func (s *InMemory) List(_ context.Context) ([]*models.Grant, error) {
	rows := s.grants.Filter(nil, func(a, b *models.Grant) bool { return a.Subject < b.Subject })
	out := make([]*models.Grant, len(rows))
	for i, g := range rows {
		out[i] = g.Clone()
	}
	return out, nil
}
