// Package store persists tenants.
package store

import (
	"context"

	"veriledger/internal/sentinel"
	"veriledger/internal/tenant/models"
	id "veriledger/pkg/domain"
	psync "veriledger/pkg/platform/sync"
)

// InMemory keeps tenants in a journaled table.
type InMemory struct {
	tenants *psync.Table[id.TenantID, *models.Tenant]
}

// NewInMemory creates an in-memory tenant store.
func NewInMemory() *InMemory {
	return &InMemory{tenants: psync.NewTable[id.TenantID, *models.Tenant]()}
}

func (s *InMemory) Create(ctx context.Context, t *models.Tenant) error {
	if !s.tenants.Insert(ctx, t.ID, t.Clone()) {
		return sentinel.ErrAlreadyExists
	}
	return nil
}

func (s *InMemory) Update(ctx context.Context, t *models.Tenant) error {
	if !s.tenants.Replace(ctx, t.ID, t.Clone()) {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *InMemory) FindByID(_ context.Context, tenantID id.TenantID) (*models.Tenant, error) {
	t, ok := s.tenants.Get(tenantID)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return t.Clone(), nil
}

func (s *InMemory) List(_ context.Context) ([]*models.Tenant, error) {
	rows := s.tenants.Filter(nil, func(a, b *models.Tenant) bool { return a.ID < b.ID })
	out := make([]*models.Tenant, len(rows))
	for i, t := range rows {
		out[i] = t.Clone()
	}
	return out, nil
}
