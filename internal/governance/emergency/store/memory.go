// Package store holds the emergency flag backends.
package store

import (
	"context"
	"sync"

	"veriledger/internal/governance/emergency"
	"veriledger/pkg/platform/tx"
)

// InMemory keeps the flag in process memory.
type InMemory struct {
	mu    sync.RWMutex
	state emergency.State
}

// NewInMemory creates an inactive flag.
func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Get(_ context.Context) (emergency.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, nil
}

func (s *InMemory) Set(ctx context.Context, state emergency.State) error {
	s.mu.Lock()
	prev := s.state
	s.state = state
	s.mu.Unlock()

	tx.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.state = prev
	})
	return nil
}
