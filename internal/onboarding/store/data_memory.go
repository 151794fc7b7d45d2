package store

import (
	"context"
	"maps"

	id "veriledger/pkg/domain"
	psync "veriledger/pkg/platform/sync"
)

// InMemoryData keeps KYC fields per session.
type InMemoryData struct {
	fields *psync.Table[id.SessionID, map[string]string]
}

func NewInMemoryData() *InMemoryData {
	return &InMemoryData{fields: psync.NewTable[id.SessionID, map[string]string]()}
}

// Put merges fields into the session's data.
func (s *InMemoryData) Put(ctx context.Context, sessionID id.SessionID, fields map[string]string) error {
	merged := map[string]string{}
	if prev, ok := s.fields.Get(sessionID); ok {
		maps.Copy(merged, prev)
	}
	maps.Copy(merged, fields)
	s.fields.Put(ctx, sessionID, merged)
	return nil
}

// Get returns a copy of the session's data; empty when none was stored.
func (s *InMemoryData) Get(_ context.Context, sessionID id.SessionID) (map[string]string, error) {
	out := map[string]string{}
	if prev, ok := s.fields.Get(sessionID); ok {
		maps.Copy(out, prev)
	}
	return out, nil
}
