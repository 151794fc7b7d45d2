package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"veriledger/internal/credential/models"
	"veriledger/internal/credential/service"
	"veriledger/internal/credential/service/mocks"
	"veriledger/internal/credential/store"
	ctmodels "veriledger/internal/credentialtype/models"
	ctservice "veriledger/internal/credentialtype/service"
	ctstore "veriledger/internal/credentialtype/store"
	authmodels "veriledger/internal/governance/authorization/models"
	authservice "veriledger/internal/governance/authorization/service"
	authstore "veriledger/internal/governance/authorization/store"
	"veriledger/internal/governance/emergency"
	emergencystore "veriledger/internal/governance/emergency/store"
	"veriledger/internal/governance/multisig"
	"veriledger/internal/governance/policy"
	"veriledger/internal/sentinel"
	id "veriledger/pkg/domain"
	dErrors "veriledger/pkg/domain-errors"
	"veriledger/pkg/platform/audit"
	auditmemory "veriledger/pkg/platform/audit/store/memory"
	"veriledger/pkg/platform/tx"
	"veriledger/pkg/requestcontext"
	"veriledger/pkg/testutil"
)

const (
	owner    id.Identity = "0xowner"
	issuer   id.Identity = "0xissuer"
	investor id.Identity = "0xinvestor"
)

var issuedAt = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

// ServiceSuite covers the credential lifecycle and DID records.
//
// Justification: compliance answers are derived from these records, so
// uniqueness, irreversible revocation and the expiry boundary must hold
// exactly, and every write must be gated and audited.
type ServiceSuite struct {
	suite.Suite
	ctx     context.Context
	ledger  *tx.Ledger
	store   *store.InMemory
	audit   *audit.Log
	service *service.Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), issuedAt)
	s.ledger = tx.NewLedger()
	s.store = store.NewInMemory()
	l, err := audit.NewLog(auditmemory.New())
	s.Require().NoError(err)
	s.audit = l
	s.service = s.newService()
}

func (s *ServiceSuite) newService(opts ...service.Option) *service.Service {
	gate, err := policy.NewDual(owner, nil)
	s.Require().NoError(err)
	svc, err := service.New(s.store, gate, s.audit, append([]service.Option{service.WithTx(s.ledger)}, opts...)...)
	s.Require().NoError(err)
	return svc
}

func (s *ServiceSuite) issue(cmd service.IssueCommand) (*models.Credential, error) {
	if cmd.Issuer.IsZero() {
		cmd.Issuer = issuer
	}
	if cmd.Subject.IsZero() {
		cmd.Subject = investor
	}
	if cmd.Type.IsZero() {
		cmd.Type = "kyc-identity"
	}
	return s.service.Issue(s.ctx, owner, cmd)
}

func (s *ServiceSuite) auditCount(action audit.Action) int {
	entries, err := s.audit.ListByAction(s.ctx, action)
	s.Require().NoError(err)
	return len(entries)
}

func (s *ServiceSuite) TestIssue() {
	s.Run("derives the content id and indexes the credential", func() {
		c, err := s.issue(service.IssueCommand{Data: []byte(`{"country":"US"}`)})
		s.Require().NoError(err)
		s.Equal(models.DeriveID(issuer, investor, "kyc-identity", []byte(`{"country":"US"}`), issuedAt), c.ID)
		s.Equal(issuedAt, c.IssuedAt)
		s.True(c.ExpiresAt.IsZero())

		bySubject, err := s.service.ListBySubject(s.ctx, investor)
		s.Require().NoError(err)
		s.Len(bySubject, 1)
		byIssuer, err := s.service.ListByIssuer(s.ctx, issuer)
		s.Require().NoError(err)
		s.Len(byIssuer, 1)
		s.Equal(1, s.auditCount(audit.ActionCredentialIssued))
	})

	s.Run("same content is a duplicate", func() {
		_, err := s.issue(service.IssueCommand{Data: []byte(`{"country":"US"}`)})
		s.True(dErrors.HasCode(err, dErrors.CodeDuplicateCredential))
		s.Equal(1, s.auditCount(audit.ActionCredentialIssued))
	})

	s.Run("explicit id collision is a duplicate", func() {
		_, err := s.issue(service.IssueCommand{ID: "cred-1"})
		s.Require().NoError(err)
		_, err = s.issue(service.IssueCommand{ID: "cred-1", Subject: "0xsomeone"})
		s.True(dErrors.HasCode(err, dErrors.CodeDuplicateCredential))
	})
}

func (s *ServiceSuite) TestIssueValidation() {
	cases := map[string]service.IssueCommand{
		"zero issuer":  {Subject: investor, Type: "kyc-identity"},
		"zero subject": {Issuer: issuer, Type: "kyc-identity"},
		"empty type":   {Issuer: issuer, Subject: investor},
	}
	for name, cmd := range cases {
		s.Run(name, func() {
			_, err := s.service.Issue(s.ctx, owner, cmd)
			s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
		})
	}

	s.Run("expiry not after issuance", func() {
		_, err := s.issue(service.IssueCommand{IssuedAt: issuedAt, ExpiresAt: issuedAt})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *ServiceSuite) TestIssueAuthorization() {
	s.Run("stranger is unauthorized", func() {
		_, err := s.service.Issue(s.ctx, "0xstranger", service.IssueCommand{Issuer: issuer, Subject: investor, Type: "kyc-identity"})
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("granted issuer may write", func() {
		ctrl := gomock.NewController(s.T())
		grants := mocks.NewMockGrants(ctrl)
		grants.EXPECT().HasPermission(gomock.Any(), issuer, authmodels.PermissionIssuer).Return(true)

		_, err := s.newService(service.WithGrants(grants)).Issue(s.ctx, issuer, service.IssueCommand{
			Issuer: issuer, Subject: investor, Type: "kyc-identity", Data: []byte("granted"),
		})
		s.NoError(err)
	})

	s.Run("trusted writer bypasses the gate", func() {
		_, err := s.newService(service.WithTrustedWriter("0xonboarding")).Issue(s.ctx, "0xonboarding", service.IssueCommand{
			Issuer: "0xonboarding", Subject: investor, Type: "kyc-identity", Data: []byte("trusted"),
		})
		s.NoError(err)
	})
}

func (s *ServiceSuite) TestValidityBoundary() {
	expires := issuedAt.Add(time.Hour)
	c, err := s.issue(service.IssueCommand{ExpiresAt: expires})
	s.Require().NoError(err)

	at := func(t time.Time) context.Context { return requestcontext.WithTime(context.Background(), t) }
	s.True(s.service.IsValid(at(issuedAt), c.ID))
	s.True(s.service.IsValid(at(expires), c.ID), "valid when now equals expiry")
	s.False(s.service.IsValid(at(expires.Add(time.Nanosecond)), c.ID))
	s.False(s.service.IsValid(s.ctx, "missing"))
}

func (s *ServiceSuite) TestRevoke() {
	c, err := s.issue(service.IssueCommand{})
	s.Require().NoError(err)

	revoked, err := s.service.Revoke(s.ctx, owner, c.ID)
	s.Require().NoError(err)
	s.True(revoked.Revoked)
	s.Equal(issuedAt, revoked.RevokedAt)
	s.False(s.service.IsValid(s.ctx, c.ID))

	s.Run("revoking twice fails and stays revoked", func() {
		_, err := s.service.Revoke(s.ctx, owner, c.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStateTransition))
		got, err := s.service.Get(s.ctx, c.ID)
		s.Require().NoError(err)
		s.True(got.Revoked)
	})

	s.Run("unknown credential", func() {
		_, err := s.service.Revoke(s.ctx, owner, "missing")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Equal(1, s.auditCount(audit.ActionCredentialRevoked))
}

func (s *ServiceSuite) TestCatalogEnforcement() {
	types := ctstore.NewInMemory()
	gate, err := policy.Owner(owner)
	s.Require().NoError(err)
	catalog, err := ctservice.New(types, gate, s.audit, ctservice.WithTx(s.ledger))
	s.Require().NoError(err)
	_, err = catalog.Register(s.ctx, owner, "kyc-identity", ctmodels.Definition{
		Name:           "KYC identity",
		Category:       ctmodels.CategoryIdentity,
		RequiredFields: []string{"country"},
		ValidityPeriod: 24 * time.Hour,
		MaxIssuance:    1,
	})
	s.Require().NoError(err)
	svc := s.newService(service.WithCatalog(catalog))

	c, err := svc.Issue(s.ctx, owner, service.IssueCommand{
		ID: "cred-1", Issuer: issuer, Subject: investor, Type: "kyc-identity", Data: []byte(`{"country":"US"}`),
	})
	s.Require().NoError(err)
	s.Equal(issuedAt.Add(24*time.Hour), c.ExpiresAt, "catalog default validity")

	s.Run("cap reached", func() {
		_, err := svc.Issue(s.ctx, owner, service.IssueCommand{
			Issuer: issuer, Subject: investor, Type: "kyc-identity", Data: []byte(`{"country":"GB"}`),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("failed issuance does not consume the cap", func() {
		_, err := svc.Issue(s.ctx, owner, service.IssueCommand{
			ID: "cred-1", Issuer: issuer, Subject: "0xsecond", Type: "kyc-identity", Data: []byte(`{"country":"US"}`),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeDuplicateCredential))
		n, err := types.IssuedCount(s.ctx, "kyc-identity", "0xsecond")
		s.Require().NoError(err)
		s.Zero(n)
	})

	s.Run("missing required field", func() {
		_, err := svc.Issue(s.ctx, owner, service.IssueCommand{
			Issuer: issuer, Subject: "0xthird", Type: "kyc-identity", Data: []byte(`{}`),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("reused id on a capped type is a duplicate", func() {
		_, err := svc.Issue(s.ctx, owner, service.IssueCommand{
			ID: "cred-1", Issuer: issuer, Subject: investor, Type: "kyc-identity", Data: []byte(`{"country":"US"}`),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeDuplicateCredential), "got %v", err)
	})

	s.Run("reused id on a suspended type is a duplicate", func() {
		_, err := catalog.UpdateStatus(s.ctx, owner, "kyc-identity", ctmodels.StatusSuspended)
		s.Require().NoError(err)

		_, err = svc.Issue(s.ctx, owner, service.IssueCommand{
			ID: "cred-1", Issuer: issuer, Subject: investor, Type: "kyc-identity", Data: []byte(`{"country":"US"}`),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeDuplicateCredential), "got %v", err)

		_, err = svc.Issue(s.ctx, owner, service.IssueCommand{
			ID: "cred-2", Issuer: issuer, Subject: "0xfourth", Type: "kyc-identity", Data: []byte(`{"country":"US"}`),
		})
		s.False(dErrors.HasCode(err, dErrors.CodeDuplicateCredential))
		s.Error(err)
	})
}

func (s *ServiceSuite) TestGuardBlocksWrites() {
	ctrl := gomock.NewController(s.T())
	guard := mocks.NewMockGuard(ctrl)
	guard.EXPECT().Guard(gomock.Any()).Return(dErrors.New(dErrors.CodeForbidden, "ledger is in emergency mode")).Times(2)
	svc := s.newService(service.WithGuard(guard))

	_, err := svc.Issue(s.ctx, owner, service.IssueCommand{Issuer: issuer, Subject: investor, Type: "kyc-identity"})
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	_, err = svc.RegisterDID(s.ctx, owner, investor, nil)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

// whileHeld runs held inside an open transaction and starts waiting once the
// ledger lock is taken. held commits before waiting can acquire the lock.
func (s *ServiceSuite) whileHeld(held func(txCtx context.Context) error, waiting func() error) (error, error) {
	locked := make(chan struct{})
	heldErr := make(chan error, 1)
	go func() {
		heldErr <- s.ledger.RunInTx(s.ctx, func(txCtx context.Context) error {
			close(locked)
			time.Sleep(100 * time.Millisecond)
			return held(txCtx)
		})
	}()
	<-locked
	waitErr := waiting()
	return <-heldErr, waitErr
}

func (s *ServiceSuite) TestStandingRecheckedInsideTransaction() {
	s.Run("pause committed while an issue waits", func() {
		authority, err := multisig.New([]id.Identity{owner}, 1)
		s.Require().NoError(err)
		control, err := emergency.New(emergencystore.NewInMemory(), authority, s.audit, emergency.WithTx(s.ledger))
		s.Require().NoError(err)
		svc := s.newService(service.WithGuard(control))

		heldErr, issueErr := s.whileHeld(
			func(txCtx context.Context) error { return control.Activate(txCtx, owner) },
			func() error {
				_, err := svc.Issue(s.ctx, owner, service.IssueCommand{
					ID: "cred-paused", Issuer: issuer, Subject: investor, Type: "kyc-identity",
				})
				return err
			},
		)
		s.Require().NoError(heldErr)
		s.True(control.IsEmergencyMode(s.ctx))
		s.True(dErrors.HasCode(issueErr, dErrors.CodeForbidden), "got %v", issueErr)
		_, err = s.store.FindCredential(s.ctx, "cred-paused")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("grant revoked while an issue waits", func() {
		const delegate id.Identity = "0xdelegate"
		gate, err := policy.Owner(owner)
		s.Require().NoError(err)
		grants, err := authservice.New(authstore.NewInMemory(), gate, s.audit, authservice.WithTx(s.ledger))
		s.Require().NoError(err)
		_, err = grants.Grant(s.ctx, owner, delegate, authmodels.PermissionIssuer)
		s.Require().NoError(err)
		svc := s.newService(service.WithGrants(grants))

		heldErr, issueErr := s.whileHeld(
			func(txCtx context.Context) error { return grants.Revoke(txCtx, owner, delegate) },
			func() error {
				_, err := svc.Issue(s.ctx, delegate, service.IssueCommand{
					ID: "cred-revoked", Issuer: issuer, Subject: investor, Type: "kyc-identity",
				})
				return err
			},
		)
		s.Require().NoError(heldErr)
		s.True(dErrors.HasCode(issueErr, dErrors.CodeUnauthorized), "got %v", issueErr)
		_, err = s.store.FindCredential(s.ctx, "cred-revoked")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *ServiceSuite) TestAuditFailureRollsBackIssue() {
	ctrl := gomock.NewController(s.T())
	auditLog := mocks.NewMockAuditLog(ctrl)
	auditLog.EXPECT().Append(gomock.Any(), gomock.Any()).Return(errors.New("audit store down"))

	gate, err := policy.Owner(owner)
	s.Require().NoError(err)
	svc, err := service.New(s.store, gate, auditLog, service.WithTx(s.ledger))
	s.Require().NoError(err)

	_, err = svc.Issue(s.ctx, owner, service.IssueCommand{Issuer: issuer, Subject: investor, Type: "kyc-identity"})
	s.Require().Error(err)
	listed, err := s.service.ListBySubject(s.ctx, investor)
	s.Require().NoError(err)
	s.Empty(listed)
}

func (s *ServiceSuite) TestDIDs() {
	d, err := s.service.RegisterDID(s.ctx, owner, investor, []byte(`{"v":1}`))
	s.Require().NoError(err)
	s.True(d.Active)

	second, err := s.service.RegisterDID(s.ctx, owner, investor, nil)
	s.Require().NoError(err)
	s.NotEqual(d.ID, second.ID)

	listed, err := s.service.ListDIDsBySubject(s.ctx, investor)
	s.Require().NoError(err)
	s.Len(listed, 2)

	s.Run("subject updates its own document", func() {
		updated, err := s.service.UpdateDIDDocument(s.ctx, investor, d.ID, []byte(`{"v":2}`))
		s.Require().NoError(err)
		s.Equal([]byte(`{"v":2}`), updated.Document)
	})

	s.Run("strangers cannot touch it", func() {
		_, err := s.service.DeactivateDID(s.ctx, "0xstranger", d.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("deactivation is permanent", func() {
		_, err := s.service.DeactivateDID(s.ctx, owner, d.ID)
		s.Require().NoError(err)
		_, err = s.service.DeactivateDID(s.ctx, investor, d.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStateTransition))
		_, err = s.service.UpdateDIDDocument(s.ctx, investor, d.ID, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStateTransition))
	})

	s.Run("unknown DID", func() {
		_, err := s.service.GetDID(s.ctx, "did:veri:missing")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Equal(2, s.auditCount(audit.ActionDIDRegistered))
	s.Equal(1, s.auditCount(audit.ActionDIDDeactivated))
}

func (s *ServiceSuite) TestConcurrentWrites() {
	s.Run("identical issues yield one credential", func() {
		result := testutil.RunConcurrent(8, func(int) error {
			_, err := s.issue(service.IssueCommand{Data: []byte(`{"country":"FR"}`)})
			return err
		})
		s.EqualValues(1, result.Successes)
		s.EqualValues(7, result.Conflicts)
		s.EqualValues(0, result.Errors)
	})

	s.Run("racing revokes succeed once", func() {
		c, err := s.issue(service.IssueCommand{ID: "cred-race"})
		s.Require().NoError(err)
		result := testutil.RunConcurrent(5, func(int) error {
			_, err := s.service.Revoke(s.ctx, owner, c.ID)
			return err
		})
		s.EqualValues(1, result.Successes)
		s.EqualValues(4, result.Conflicts)
		s.EqualValues(5, result.Total())
	})
}
