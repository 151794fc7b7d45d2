package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

// DomainErrorsSuite tests the domain error primitives.
//
// Justification: every ledger component reports failures through these codes and
// the HTTP layer maps them to statuses. A code lost while wrapping turns a
// duplicate credential into a 500.
type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestError() {
	s.Run("message wins over code", func() {
		err := &Error{Code: CodeNotFound, Message: "credential not found"}
		s.Equal("credential not found", err.Error())
	})

	s.Run("code is used when message is empty", func() {
		err := &Error{Code: CodeSessionAlreadyActive}
		s.Equal("session_already_active", err.Error())
	})

	s.Run("unwraps to the cause", func() {
		cause := errors.New("connection reset")
		err := &Error{Code: CodeInternal, Err: cause}
		s.Equal(cause, errors.Unwrap(err))
	})
}

func (s *DomainErrorsSuite) TestIs() {
	s.Run("matches by code", func() {
		a := New(CodeDuplicateCredential, "credential 0xab already issued")
		b := &Error{Code: CodeDuplicateCredential}
		s.True(errors.Is(a, b))
	})

	s.Run("different codes do not match", func() {
		a := New(CodeInvalidStateTransition, "step out of order")
		s.False(errors.Is(a, &Error{Code: CodeConflict}))
	})

	s.Run("plain errors never match", func() {
		s.False(New(CodeNotFound, "x").(*Error).Is(errors.New("not found")))
	})

	s.Run("matches through fmt wrapping", func() {
		inner := New(CodeUnauthorized, "caller is not a signer")
		wrapped := fmt.Errorf("activate: %w", inner)
		s.True(errors.Is(wrapped, &Error{Code: CodeUnauthorized}))
	})
}

func (s *DomainErrorsSuite) TestWrap() {
	s.Run("keeps the code of a wrapped domain error", func() {
		inner := New(CodeNotFound, "tenant not found")
		wrapped := Wrap(inner, CodeInternal, "compliance lookup failed")

		var de *Error
		s.Require().True(errors.As(wrapped, &de))
		s.Equal(CodeNotFound, de.Code)
		s.Equal("compliance lookup failed", de.Message)
	})

	s.Run("uses the given code for foreign errors", func() {
		cause := errors.New("deadlock detected")
		wrapped := Wrap(cause, CodeInternal, "issue failed")

		s.True(HasCode(wrapped, CodeInternal))
		s.True(errors.Is(wrapped, cause))
	})
}

func (s *DomainErrorsSuite) TestHasCode() {
	s.Run("finds code through chain", func() {
		err := fmt.Errorf("outer: %w", New(CodeSessionAlreadyActive, "active"))
		s.True(HasCode(err, CodeSessionAlreadyActive))
	})

	s.Run("false for other codes and plain errors", func() {
		s.False(HasCode(New(CodeNotFound, "x"), CodeInternal))
		s.False(HasCode(errors.New("x"), CodeNotFound))
		s.False(HasCode(nil, CodeNotFound))
	})
}
