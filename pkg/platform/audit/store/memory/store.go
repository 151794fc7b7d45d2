package memory

import (
	"context"
	"sync"

	"veriledger/pkg/platform/audit"
	"veriledger/pkg/platform/tx"
)

// Store is an in-memory audit.Store. An append made inside a unit of work is
// withdrawn if that unit rolls back; committed entries are never removed.
type Store struct {
	mu      sync.RWMutex
	entries []*audit.Entry
	seq     int64
}

func New() *Store {
	return &Store{}
}

func (s *Store) Append(ctx context.Context, entry *audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	entry.Sequence = s.seq
	stored := *entry
	s.entries = append(s.entries, &stored)

	tx.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i := len(s.entries) - 1; i >= 0; i-- {
			if s.entries[i].ID == stored.ID {
				s.entries = append(s.entries[:i], s.entries[i+1:]...)
				break
			}
		}
	})
	return nil
}

func (s *Store) List(_ context.Context, filter audit.Filter) ([]*audit.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*audit.Entry, 0)
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if !filter.Matches(e) {
			continue
		}
		copied := *e
		out = append(out, &copied)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (s *Store) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.entries)), nil
}
