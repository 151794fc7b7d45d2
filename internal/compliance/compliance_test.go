package compliance_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"veriledger/internal/compliance"
	"veriledger/internal/compliance/mocks"
	credservice "veriledger/internal/credential/service"
	credstore "veriledger/internal/credential/store"
	ctmodels "veriledger/internal/credentialtype/models"
	ctservice "veriledger/internal/credentialtype/service"
	ctstore "veriledger/internal/credentialtype/store"
	"veriledger/internal/governance/policy"
	tenantmodels "veriledger/internal/tenant/models"
	tenantservice "veriledger/internal/tenant/service"
	tenantstore "veriledger/internal/tenant/store"
	id "veriledger/pkg/domain"
	dErrors "veriledger/pkg/domain-errors"
	"veriledger/pkg/platform/audit"
	auditmemory "veriledger/pkg/platform/audit/store/memory"
	"veriledger/pkg/platform/tx"
	"veriledger/pkg/requestcontext"
)

const (
	owner    id.Identity = "0xowner"
	investor id.Identity = "0xinvestor"
)

var now = time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

// CheckerSuite covers compliance answers over real in-memory components.
//
// Justification: a compliance answer combines credential validity, catalog
// categories and tenant state; each input must be able to flip the answer.
type CheckerSuite struct {
	suite.Suite
	ctx         context.Context
	tenants     *tenantservice.Registry
	catalog     *ctservice.Catalog
	credentials *credservice.Service
	checker     *compliance.Checker
}

func TestCheckerSuite(t *testing.T) {
	suite.Run(t, new(CheckerSuite))
}

func (s *CheckerSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), now)
	ledger := tx.NewLedger()
	auditLog, err := audit.NewLog(auditmemory.New())
	s.Require().NoError(err)
	gate, err := policy.Owner(owner)
	s.Require().NoError(err)

	s.tenants, err = tenantservice.New(tenantstore.NewInMemory(), gate, auditLog, tenantservice.WithTx(ledger))
	s.Require().NoError(err)
	s.catalog, err = ctservice.New(ctstore.NewInMemory(), gate, auditLog, ctservice.WithTx(ledger))
	s.Require().NoError(err)
	s.credentials, err = credservice.New(credstore.NewInMemory(), gate, auditLog,
		credservice.WithTx(ledger), credservice.WithCatalog(s.catalog))
	s.Require().NoError(err)
	s.checker, err = compliance.New(s.credentials, s.catalog, s.tenants)
	s.Require().NoError(err)

	_, err = s.catalog.Register(s.ctx, owner, "kyc-identity", ctmodels.Definition{Name: "KYC", Category: ctmodels.CategoryIdentity})
	s.Require().NoError(err)
	_, err = s.catalog.Register(s.ctx, owner, "accreditation", ctmodels.Definition{Name: "Accredited", Category: ctmodels.CategoryFinancial})
	s.Require().NoError(err)
	_, err = s.tenants.CreateTenant(s.ctx, owner, tenantservice.CreateCommand{
		ID:    "acme",
		Name:  "Acme",
		Admin: "0xadmin",
		Policy: tenantmodels.Policy{
			RequiredCredentialTypes: []id.CredentialTypeID{"kyc-identity", "accreditation"},
			MaxRiskScore:            50,
		},
	})
	s.Require().NoError(err)
}

func (s *CheckerSuite) issue(typeID id.CredentialTypeID, expiresAt time.Time) id.CredentialID {
	c, err := s.credentials.Issue(s.ctx, owner, credservice.IssueCommand{
		Issuer: owner, Subject: investor, Type: typeID, ExpiresAt: expiresAt,
	})
	s.Require().NoError(err)
	return c.ID
}

func (s *CheckerSuite) TestIsCompliant() {
	s.Run("no credentials", func() {
		s.False(s.checker.IsCompliant(s.ctx, investor, "acme"))
	})

	s.Run("non-identity credential is not enough", func() {
		s.issue("accreditation", time.Time{})
		s.False(s.checker.IsCompliant(s.ctx, investor, "acme"))
	})

	credID := s.issue("kyc-identity", now.Add(time.Hour))
	s.Run("valid identity credential at an active tenant", func() {
		s.True(s.checker.IsCompliant(s.ctx, investor, "acme"))
		s.True(s.checker.IsCredentialCompliant(s.ctx, credID))
	})

	s.Run("unknown tenant", func() {
		s.False(s.checker.IsCompliant(s.ctx, investor, "globex"))
	})

	s.Run("expired credential", func() {
		later := requestcontext.WithTime(context.Background(), now.Add(time.Hour+time.Second))
		s.False(s.checker.IsCompliant(later, investor, "acme"))
		s.False(s.checker.IsCredentialCompliant(later, credID))
	})

	s.Run("inactive tenant", func() {
		_, err := s.tenants.Deactivate(s.ctx, owner, "acme")
		s.Require().NoError(err)
		s.False(s.checker.IsCompliant(s.ctx, investor, "acme"))
	})
}

func (s *CheckerSuite) TestRevocationFlipsTheAnswer() {
	credID := s.issue("kyc-identity", time.Time{})
	s.Require().True(s.checker.IsCompliant(s.ctx, investor, "acme"))

	_, err := s.credentials.Revoke(s.ctx, owner, credID)
	s.Require().NoError(err)
	s.False(s.checker.IsCompliant(s.ctx, investor, "acme"))
	s.False(s.checker.IsCredentialCompliant(s.ctx, credID))
}

func (s *CheckerSuite) TestEvaluate() {
	s.issue("kyc-identity", time.Time{})

	report, err := s.checker.Evaluate(s.ctx, investor, "acme")
	s.Require().NoError(err)
	s.True(report.Compliant)
	s.False(report.PolicySatisfied())
	s.Equal([]id.CredentialTypeID{"kyc-identity"}, report.Satisfied)
	s.Equal([]id.CredentialTypeID{"accreditation"}, report.Missing)

	s.issue("accreditation", time.Time{})
	report, err = s.checker.Evaluate(s.ctx, investor, "acme")
	s.Require().NoError(err)
	s.True(report.PolicySatisfied())
	s.Empty(report.Missing)

	s.Run("unknown tenant is not found", func() {
		_, err := s.checker.Evaluate(s.ctx, investor, "globex")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("zero subject", func() {
		_, err := s.checker.Evaluate(s.ctx, "", "acme")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *CheckerSuite) TestStoreFailures() {
	ctrl := gomock.NewController(s.T())
	credentials := mocks.NewMockCredentials(ctrl)
	credentials.EXPECT().ListBySubject(gomock.Any(), investor).
		Return(nil, dErrors.Wrap(errors.New("connection reset"), dErrors.CodeInternal, "failed to list credentials")).
		Times(2)

	checker, err := compliance.New(credentials, mocks.NewMockCatalog(ctrl), s.tenants)
	s.Require().NoError(err)

	s.False(checker.IsCompliant(s.ctx, investor, "acme"))
	_, err = checker.Evaluate(s.ctx, investor, "acme")
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}
