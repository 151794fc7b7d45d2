package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"veriledger/internal/governance/authorization/models"
	"veriledger/internal/governance/authorization/service"
	"veriledger/internal/governance/authorization/service/mocks"
	"veriledger/internal/governance/authorization/store"
	"veriledger/internal/governance/policy"
	id "veriledger/pkg/domain"
	dErrors "veriledger/pkg/domain-errors"
	"veriledger/pkg/platform/audit"
	auditmemory "veriledger/pkg/platform/audit/store/memory"
)

const owner id.Identity = "0xowner"

type signers map[id.Identity]bool

func (s signers) IsAuthorizedSigner(identity id.Identity) bool { return s[identity] }

// ManagerSuite covers grant and revoke semantics of the authorization manager.
//
// Justification: grants decide who may issue credentials; each change must be
// gated and leave exactly one audit entry.
type ManagerSuite struct {
	suite.Suite
	ctx     context.Context
	grants  *store.InMemory
	audit   *audit.Log
	manager *service.Manager
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerSuite))
}

func (s *ManagerSuite) SetupTest() {
	s.ctx = context.Background()
	s.grants = store.NewInMemory()
	l, err := audit.NewLog(auditmemory.New())
	s.Require().NoError(err)
	s.audit = l
	gate, err := policy.NewDual(owner, nil)
	s.Require().NoError(err)
	m, err := service.New(s.grants, gate, s.audit)
	s.Require().NoError(err)
	s.manager = m
}

func (s *ManagerSuite) countAudit(action audit.Action) int {
	entries, err := s.audit.ListByAction(s.ctx, action)
	s.Require().NoError(err)
	return len(entries)
}

func (s *ManagerSuite) TestNew() {
	gate, err := policy.Owner(owner)
	s.Require().NoError(err)

	s.Run("grant store is required", func() {
		_, err := service.New(nil, gate, s.audit)
		s.Error(err)
	})
	s.Run("gate is required", func() {
		_, err := service.New(s.grants, nil, s.audit)
		s.Error(err)
	})
	s.Run("audit log is required", func() {
		_, err := service.New(s.grants, gate, nil)
		s.Error(err)
	})
}

func (s *ManagerSuite) TestGrant() {
	s.Run("owner grants issuer by default", func() {
		g, err := s.manager.Grant(s.ctx, owner, "0xissuer")
		s.Require().NoError(err)
		s.Equal([]models.Permission{models.PermissionIssuer}, g.Permissions)
		s.True(s.manager.IsAuthorized(s.ctx, "0xissuer"))
		s.True(s.manager.HasPermission(s.ctx, "0xissuer", models.PermissionIssuer))
		s.False(s.manager.HasPermission(s.ctx, "0xissuer", models.PermissionOperator))
		s.Equal(1, s.countAudit(audit.ActionGrantCreated))
	})

	s.Run("second grant merges permissions", func() {
		g, err := s.manager.Grant(s.ctx, owner, "0xissuer", models.PermissionOperator)
		s.Require().NoError(err)
		s.Equal([]models.Permission{models.PermissionIssuer, models.PermissionOperator}, g.Permissions)
		s.Equal(2, s.countAudit(audit.ActionGrantCreated))
	})

	s.Run("non-owner is unauthorized and writes nothing", func() {
		_, err := s.manager.Grant(s.ctx, "0xmallory", "0xmallory")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.False(s.manager.IsAuthorized(s.ctx, "0xmallory"))
		s.Equal(2, s.countAudit(audit.ActionGrantCreated))
	})

	s.Run("zero subject is invalid", func() {
		_, err := s.manager.Grant(s.ctx, owner, "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *ManagerSuite) TestRevoke() {
	_, err := s.manager.Grant(s.ctx, owner, "0xissuer", models.PermissionIssuer, models.PermissionOperator)
	s.Require().NoError(err)

	s.Run("single permission", func() {
		s.Require().NoError(s.manager.RevokePermission(s.ctx, owner, "0xissuer", models.PermissionOperator))
		s.True(s.manager.IsAuthorized(s.ctx, "0xissuer"))
		s.False(s.manager.HasPermission(s.ctx, "0xissuer", models.PermissionOperator))

		err := s.manager.RevokePermission(s.ctx, owner, "0xissuer", models.PermissionOperator)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("whole grant", func() {
		s.Require().NoError(s.manager.Revoke(s.ctx, owner, "0xissuer"))
		s.False(s.manager.IsAuthorized(s.ctx, "0xissuer"))
		s.Equal(1, s.countAudit(audit.ActionGrantRevoked))
	})

	s.Run("absent subject", func() {
		err := s.manager.Revoke(s.ctx, owner, "0xissuer")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("unauthorized caller", func() {
		err := s.manager.Revoke(s.ctx, "0xissuer", "0xissuer")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *ManagerSuite) TestMultisigGating() {
	gate, err := policy.NewDual(owner, signers{"0xs1": true})
	s.Require().NoError(err)
	m, err := service.New(s.grants, gate, s.audit)
	s.Require().NoError(err)

	_, err = m.Grant(s.ctx, owner, "0xissuer")
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized), "owner loses standing once signers are configured")

	_, err = m.Grant(s.ctx, "0xs1", "0xissuer")
	s.Require().NoError(err)
}

func (s *ManagerSuite) TestAuditFailureRollsBackGrant() {
	ctrl := gomock.NewController(s.T())
	auditLog := mocks.NewMockAuditLog(ctrl)
	gate, err := policy.Owner(owner)
	s.Require().NoError(err)
	m, err := service.New(s.grants, gate, auditLog)
	s.Require().NoError(err)

	auditLog.EXPECT().Append(gomock.Any(), gomock.Any()).Return(errors.New("audit store down"))

	_, err = m.Grant(s.ctx, owner, "0xissuer")
	s.Require().Error(err)
	s.False(m.IsAuthorized(s.ctx, "0xissuer"))
}

func (s *ManagerSuite) TestStoreFailureIsInternal() {
	ctrl := gomock.NewController(s.T())
	grants := mocks.NewMockStore(ctrl)
	gate, err := policy.Owner(owner)
	s.Require().NoError(err)
	m, err := service.New(grants, gate, s.audit)
	s.Require().NoError(err)

	grants.EXPECT().Find(gomock.Any(), id.Identity("0xissuer")).Return(nil, errors.New("connection reset"))

	_, err = m.Grant(s.ctx, owner, "0xissuer")
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}
