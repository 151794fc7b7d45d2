// Package store persists onboarding sessions and the KYC data collected by
// their steps.
package store

import (
	"context"

	"veriledger/internal/onboarding/models"
	"veriledger/internal/sentinel"
	id "veriledger/pkg/domain"
	psync "veriledger/pkg/platform/sync"
)

// InMemorySessions keeps sessions in a journaled table.
type InMemorySessions struct {
	sessions *psync.Table[id.SessionID, *models.Session]
}

func NewInMemorySessions() *InMemorySessions {
	return &InMemorySessions{sessions: psync.NewTable[id.SessionID, *models.Session]()}
}

// Create stores a session. A second active session for the same subject is
// ErrAlreadyExists.
func (s *InMemorySessions) Create(ctx context.Context, session *models.Session) error {
	if session.Active {
		if _, err := s.FindActiveBySubject(ctx, session.Subject); err == nil {
			return sentinel.ErrAlreadyExists
		}
	}
	if !s.sessions.Insert(ctx, session.ID, session.Clone()) {
		return sentinel.ErrAlreadyExists
	}
	return nil
}

func (s *InMemorySessions) Update(ctx context.Context, session *models.Session) error {
	if !s.sessions.Replace(ctx, session.ID, session.Clone()) {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *InMemorySessions) FindByID(_ context.Context, sessionID id.SessionID) (*models.Session, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return session.Clone(), nil
}

func (s *InMemorySessions) FindActiveBySubject(_ context.Context, subject id.Identity) (*models.Session, error) {
	rows := s.sessions.Filter(func(session *models.Session) bool {
		return session.Active && session.Subject == subject
	}, nil)
	if len(rows) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return rows[0].Clone(), nil
}

// FindLatestBySubject returns the most recently started session, preferring
// the active one on a tie.
func (s *InMemorySessions) FindLatestBySubject(_ context.Context, subject id.Identity) (*models.Session, error) {
	rows := s.sessions.Filter(func(session *models.Session) bool {
		return session.Subject == subject
	}, func(a, b *models.Session) bool {
		if a.StartedAt.Equal(b.StartedAt) {
			return a.Active && !b.Active
		}
		return a.StartedAt.After(b.StartedAt)
	})
	if len(rows) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return rows[0].Clone(), nil
}
