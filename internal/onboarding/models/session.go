// Package models holds the onboarding state machine and session records.
package models

import (
	"slices"
	"time"

	id "veriledger/pkg/domain"
	dErrors "veriledger/pkg/domain-errors"
)

const ReasonCancelled = "cancelled"

// Session tracks one subject's progress through onboarding. Field data
// lives in the KYC data store, keyed by session id.
type Session struct {
	ID             id.SessionID
	Subject        id.Identity
	TenantID       id.TenantID
	CurrentStep    Step
	CompletedSteps []Step
	Active         bool
	FailureReason  string
	DID            id.DID
	CredentialID   id.CredentialID
	StartedAt      time.Time
	UpdatedAt      time.Time
}

// NewSession starts a session at the first step.
func NewSession(subject id.Identity, tenantID id.TenantID, now time.Time) (*Session, error) {
	if subject.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "subject is required")
	}
	first, _ := StepNotStarted.Next()
	return &Session{
		ID:          id.NewSessionID(),
		Subject:     subject,
		TenantID:    tenantID,
		CurrentStep: first,
		Active:      true,
		StartedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// IsComplete reports whether step has been completed.
func (s *Session) IsComplete(step Step) bool {
	return slices.Contains(s.CompletedSteps, step)
}

// CanExecute checks step may run now.
func (s *Session) CanExecute(step Step) error {
	if !s.Active {
		return dErrors.New(dErrors.CodeInvalidStateTransition, "session is not active")
	}
	if step != s.CurrentStep {
		return dErrors.New(dErrors.CodeInvalidStateTransition,
			"step "+string(step)+" is out of order; current step is "+string(s.CurrentStep))
	}
	if s.IsComplete(step) {
		return dErrors.New(dErrors.CodeInvalidStateTransition, "step "+string(step)+" already completed")
	}
	return nil
}

// Complete marks step done and advances. It returns the new current step.
func (s *Session) Complete(step Step, now time.Time) (Step, error) {
	if err := s.CanExecute(step); err != nil {
		return "", err
	}
	next, ok := step.Next()
	if !ok {
		return "", dErrors.New(dErrors.CodeInvalidStateTransition, "step "+string(step)+" has no successor")
	}
	s.CompletedSteps = append(s.CompletedSteps, step)
	s.CurrentStep = next
	s.UpdatedAt = now
	return next, nil
}

// Finish closes the session as completed with the identifiers it produced.
func (s *Session) Finish(did id.DID, credID id.CredentialID, now time.Time) {
	s.CurrentStep = StepCompleted
	s.Active = false
	s.DID = did
	s.CredentialID = credID
	s.UpdatedAt = now
}

// Fail closes an active session as failed.
func (s *Session) Fail(reason string, now time.Time) error {
	if !s.Active {
		return dErrors.New(dErrors.CodeInvalidStateTransition, "session is not active")
	}
	s.CurrentStep = StepFailed
	s.Active = false
	s.FailureReason = reason
	s.UpdatedAt = now
	return nil
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	c := *s
	c.CompletedSteps = slices.Clone(s.CompletedSteps)
	return &c
}
