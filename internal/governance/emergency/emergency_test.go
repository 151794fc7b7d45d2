package emergency_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"veriledger/internal/governance/emergency"
	"veriledger/internal/governance/emergency/mocks"
	"veriledger/internal/governance/emergency/store"
	"veriledger/internal/governance/multisig"
	id "veriledger/pkg/domain"
	dErrors "veriledger/pkg/domain-errors"
	"veriledger/pkg/platform/audit"
	auditmemory "veriledger/pkg/platform/audit/store/memory"
)

// ControlSuite covers the emergency switch.
//
// Justification: the flag pauses every guarded write, so only signers may
// flip it and each flip must be audited exactly once.
type ControlSuite struct {
	suite.Suite
	ctx       context.Context
	authority *multisig.Authority
	flags     *store.InMemory
	audit     *audit.Log
	control   *emergency.Control
}

func TestControlSuite(t *testing.T) {
	suite.Run(t, new(ControlSuite))
}

func (s *ControlSuite) SetupTest() {
	s.ctx = context.Background()
	authority, err := multisig.New([]id.Identity{"0xs1", "0xs2"}, 2)
	s.Require().NoError(err)
	s.authority = authority
	s.flags = store.NewInMemory()
	l, err := audit.NewLog(auditmemory.New())
	s.Require().NoError(err)
	s.audit = l
	c, err := emergency.New(s.flags, s.authority, s.audit)
	s.Require().NoError(err)
	s.control = c
}

func (s *ControlSuite) TestNewRequiresAuthority() {
	_, err := emergency.New(s.flags, nil, s.audit)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func (s *ControlSuite) TestTransitions() {
	s.Run("starts inactive", func() {
		s.False(s.control.IsEmergencyMode(s.ctx))
		s.NoError(s.control.Guard(s.ctx))
	})

	s.Run("signer activates", func() {
		s.Require().NoError(s.control.Activate(s.ctx, "0xs1"))
		s.True(s.control.IsEmergencyMode(s.ctx))

		state, err := s.control.State(s.ctx)
		s.Require().NoError(err)
		s.Equal(id.Identity("0xs1"), state.ChangedBy)
	})

	s.Run("guard forbids while active", func() {
		err := s.control.Guard(s.ctx)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("activating twice is an invalid transition", func() {
		err := s.control.Activate(s.ctx, "0xs2")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStateTransition))
	})

	s.Run("another signer deactivates", func() {
		s.Require().NoError(s.control.Deactivate(s.ctx, "0xs2"))
		s.False(s.control.IsEmergencyMode(s.ctx))
		err := s.control.Deactivate(s.ctx, "0xs2")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStateTransition))
	})

	activated, err := s.audit.ListByAction(s.ctx, audit.ActionEmergencyActivated)
	s.Require().NoError(err)
	s.Len(activated, 1)
	deactivated, err := s.audit.ListByAction(s.ctx, audit.ActionEmergencyDeactivated)
	s.Require().NoError(err)
	s.Len(deactivated, 1)
}

func (s *ControlSuite) TestNonSignerIsUnauthorized() {
	err := s.control.Activate(s.ctx, "0xowner")
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	s.False(s.control.IsEmergencyMode(s.ctx))

	err = s.control.Activate(s.ctx, "")
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *ControlSuite) TestAuditFailureRestoresFlag() {
	ctrl := gomock.NewController(s.T())
	auditLog := mocks.NewMockAuditLog(ctrl)
	c, err := emergency.New(s.flags, s.authority, auditLog)
	s.Require().NoError(err)

	auditLog.EXPECT().Append(gomock.Any(), gomock.Any()).Return(errors.New("audit store down"))

	s.Require().Error(c.Activate(s.ctx, "0xs1"))
	s.False(c.IsEmergencyMode(s.ctx))
}

func (s *ControlSuite) TestFlagReadFailureFailsClosed() {
	ctrl := gomock.NewController(s.T())
	flags := mocks.NewMockFlagStore(ctrl)
	c, err := emergency.New(flags, s.authority, s.audit)
	s.Require().NoError(err)

	flags.EXPECT().Get(gomock.Any()).Return(emergency.State{}, errors.New("connection refused")).Times(2)

	s.True(c.IsEmergencyMode(s.ctx))
	s.True(dErrors.HasCode(c.Guard(s.ctx), dErrors.CodeInternal))
}
