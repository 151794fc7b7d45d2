package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	credmodels "veriledger/internal/credential/models"
	credservice "veriledger/internal/credential/service"
	credstore "veriledger/internal/credential/store"
	ctmodels "veriledger/internal/credentialtype/models"
	ctservice "veriledger/internal/credentialtype/service"
	ctstore "veriledger/internal/credentialtype/store"
	authmodels "veriledger/internal/governance/authorization/models"
	"veriledger/internal/governance/policy"
	"veriledger/internal/onboarding/models"
	"veriledger/internal/onboarding/service"
	"veriledger/internal/onboarding/service/mocks"
	"veriledger/internal/onboarding/store"
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
	issuer   id.Identity = "0xonboarding"
	investor id.Identity = "0xinvestor"
	operator id.Identity = "0xoperator"
)

var now = time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

func payloadFor(step models.Step) models.Payload {
	switch step {
	case models.StepRegistration:
		return models.Payload{Fields: map[string]string{
			models.FieldEmail:        "ada@example.com",
			models.FieldPasswordHash: "$argon2id$hash",
			models.FieldFirstName:    "Ada",
			models.FieldLastName:     "Lovelace",
		}}
	case models.StepInvestorTypeSelection:
		return models.Payload{Fields: map[string]string{models.FieldInvestorType: "accredited"}}
	case models.StepEligibilityCheck:
		return models.Payload{Fields: map[string]string{
			models.FieldCountry: "US",
			models.FieldAge:     "36",
			models.FieldIncome:  "250000",
		}}
	case models.StepDocumentUpload:
		return models.Payload{DocumentHashes: []string{"0xdoc1", "0xdoc2"}, DocumentTypes: []string{"passport", "utility_bill"}}
	}
	return models.Payload{Fields: map[string]string{models.FieldNotes: "looks good"}}
}

// OrchestratorSuite covers the onboarding state machine end to end against
// in-memory stores.
//
// Justification: onboarding is the only path that issues credentials on a
// subject's behalf; steps must run strictly in order, one session at a time,
// and a failed finalization must leave no partial state.
type OrchestratorSuite struct {
	suite.Suite
	ctx          context.Context
	ledger       *tx.Ledger
	audit        *audit.Log
	sessions     *store.InMemorySessions
	data         *store.InMemoryData
	credentials  *credservice.Service
	tenants      *tenantservice.Registry
	orchestrator *service.Orchestrator
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorSuite))
}

func (s *OrchestratorSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), now)
	s.ledger = tx.NewLedger()
	l, err := audit.NewLog(auditmemory.New())
	s.Require().NoError(err)
	s.audit = l
	s.sessions = store.NewInMemorySessions()
	s.data = store.NewInMemoryData()

	gate, err := policy.Owner(owner)
	s.Require().NoError(err)
	catalog, err := ctservice.New(ctstore.NewInMemory(), gate, s.audit, ctservice.WithTx(s.ledger))
	s.Require().NoError(err)
	_, err = catalog.Register(s.ctx, owner, "kyc-identity", ctmodels.Definition{
		Name:           "KYC identity",
		Category:       ctmodels.CategoryIdentity,
		RequiredFields: []string{"did", "session_id"},
		OptionalFields: []string{"investor_type", "country", "tenant_id"},
		MaxIssuance:    1,
	})
	s.Require().NoError(err)
	s.credentials, err = credservice.New(credstore.NewInMemory(), gate, s.audit,
		credservice.WithTx(s.ledger),
		credservice.WithCatalog(catalog),
		credservice.WithTrustedWriter(issuer),
	)
	s.Require().NoError(err)
	s.tenants, err = tenantservice.New(tenantstore.NewInMemory(), gate, s.audit, tenantservice.WithTx(s.ledger))
	s.Require().NoError(err)
	_, err = s.tenants.CreateTenant(s.ctx, owner, tenantservice.CreateCommand{
		ID:     "acme",
		Name:   "Acme",
		Admin:  "0xadmin",
		Policy: tenantmodels.Policy{MaxRiskScore: 40, Jurisdictions: []string{"US"}},
	})
	s.Require().NoError(err)

	s.orchestrator = s.newOrchestrator(s.credentials)
}

func (s *OrchestratorSuite) newOrchestrator(credentials service.Credentials, opts ...service.Option) *service.Orchestrator {
	gate, err := policy.Owner(owner)
	s.Require().NoError(err)
	base := []service.Option{service.WithTx(s.ledger), service.WithTenants(s.tenants)}
	o, err := service.New(s.sessions, s.data, credentials, gate, s.audit, service.Issuance{
		Issuer:         issuer,
		CredentialType: "kyc-identity",
		Validity:       365 * 24 * time.Hour,
	}, append(base, opts...)...)
	s.Require().NoError(err)
	return o
}

func (s *OrchestratorSuite) runSteps(o *service.Orchestrator, caller id.Identity, steps ...models.Step) *models.Session {
	var session *models.Session
	for _, step := range steps {
		var err error
		session, err = o.ExecuteStep(s.ctx, caller, investor, step, payloadFor(step))
		s.Require().NoError(err, string(step))
	}
	return session
}

func (s *OrchestratorSuite) auditCount(action audit.Action) int {
	entries, err := s.audit.ListByAction(s.ctx, action)
	s.Require().NoError(err)
	return len(entries)
}

func (s *OrchestratorSuite) TestHappyPath() {
	session, err := s.orchestrator.StartSession(s.ctx, investor, investor, "acme")
	s.Require().NoError(err)
	s.Equal(models.StepRegistration, session.CurrentStep)

	done := s.runSteps(s.orchestrator, investor, models.Sequence...)
	s.False(done.Active)
	s.Equal(models.StepCompleted, done.CurrentStep)
	s.Equal(models.Sequence, done.CompletedSteps)

	creds, err := s.credentials.ListBySubject(s.ctx, investor)
	s.Require().NoError(err)
	s.Require().Len(creds, 1)
	s.Equal(done.CredentialID, creds[0].ID)
	s.Equal(issuer, creds[0].Issuer)
	s.Equal(now.Add(365*24*time.Hour), creds[0].ExpiresAt)
	s.True(s.credentials.IsValid(s.ctx, creds[0].ID))

	dids, err := s.credentials.ListDIDsBySubject(s.ctx, investor)
	s.Require().NoError(err)
	s.Require().Len(dids, 1)
	s.Equal(done.DID, dids[0].ID)

	s.Equal(1, s.auditCount(audit.ActionSessionStarted))
	s.Equal(5, s.auditCount(audit.ActionStepCompleted))
	s.Equal(1, s.auditCount(audit.ActionSessionCompleted))

	data, err := s.orchestrator.SessionData(s.ctx, done.ID)
	s.Require().NoError(err)
	s.Equal("accredited", data[models.FieldInvestorType])
	s.Equal("looks good", data[models.FieldNotes])

	latest, err := s.orchestrator.GetSession(s.ctx, investor)
	s.Require().NoError(err)
	s.Equal(done.ID, latest.ID)
}

func (s *OrchestratorSuite) TestOperatorActsForSubject() {
	ctrl := gomock.NewController(s.T())
	grants := mocks.NewMockGrants(ctrl)
	grants.EXPECT().HasPermission(gomock.Any(), operator, authmodels.PermissionOperator).Return(true).AnyTimes()
	o := s.newOrchestrator(s.credentials, service.WithGrants(grants))

	_, err := o.StartSession(s.ctx, operator, investor, "")
	s.Require().NoError(err)
	s.runSteps(o, operator, models.Sequence...)

	creds, err := s.credentials.ListBySubject(s.ctx, investor)
	s.Require().NoError(err)
	s.Len(creds, 1, "credential belongs to the session subject")
	none, err := s.credentials.ListBySubject(s.ctx, operator)
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *OrchestratorSuite) TestOutOfOrderIsRejected() {
	_, err := s.orchestrator.StartSession(s.ctx, investor, investor, "")
	s.Require().NoError(err)

	_, err = s.orchestrator.ExecuteStep(s.ctx, investor, investor, models.StepDocumentUpload, payloadFor(models.StepDocumentUpload))
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidStateTransition))

	session, err := s.orchestrator.GetSession(s.ctx, investor)
	s.Require().NoError(err)
	s.Equal(models.StepRegistration, session.CurrentStep)
	s.Empty(session.CompletedSteps)

	s.Run("replaying a completed step", func() {
		s.runSteps(s.orchestrator, investor, models.StepRegistration)
		_, err := s.orchestrator.ExecuteStep(s.ctx, investor, investor, models.StepRegistration, payloadFor(models.StepRegistration))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStateTransition))
	})

	s.Run("invalid payload does not advance", func() {
		_, err := s.orchestrator.ExecuteStep(s.ctx, investor, investor, models.StepInvestorTypeSelection,
			models.Payload{Fields: map[string]string{models.FieldInvestorType: "whale"}})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		session, err := s.orchestrator.GetSession(s.ctx, investor)
		s.Require().NoError(err)
		s.Equal(models.StepInvestorTypeSelection, session.CurrentStep)
	})

	s.Run("no session", func() {
		_, err := s.orchestrator.ExecuteStep(s.ctx, "0xnobody", "0xnobody", models.StepRegistration, payloadFor(models.StepRegistration))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *OrchestratorSuite) TestSingleActiveSession() {
	_, err := s.orchestrator.StartSession(s.ctx, investor, investor, "")
	s.Require().NoError(err)

	_, err = s.orchestrator.StartSession(s.ctx, investor, investor, "")
	s.True(dErrors.HasCode(err, dErrors.CodeSessionAlreadyActive))

	cancelled, err := s.orchestrator.CancelSession(s.ctx, investor)
	s.Require().NoError(err)
	s.Equal(models.StepFailed, cancelled.CurrentStep)
	s.Equal(models.ReasonCancelled, cancelled.FailureReason)

	restarted, err := s.orchestrator.StartSession(s.ctx, investor, investor, "")
	s.Require().NoError(err)
	s.NotEqual(cancelled.ID, restarted.ID)

	latest, err := s.orchestrator.GetSession(s.ctx, investor)
	s.Require().NoError(err)
	s.Equal(restarted.ID, latest.ID)
}

func (s *OrchestratorSuite) TestAuthorization() {
	_, err := s.orchestrator.StartSession(s.ctx, "0xstranger", investor, "")
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	_, err = s.orchestrator.StartSession(s.ctx, investor, investor, "")
	s.Require().NoError(err)

	_, err = s.orchestrator.ExecuteStep(s.ctx, "0xstranger", investor, models.StepRegistration, payloadFor(models.StepRegistration))
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	_, err = s.orchestrator.ForceFail(s.ctx, investor, investor, "self-service")
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *OrchestratorSuite) TestTenantJurisdiction() {
	_, err := s.orchestrator.StartSession(s.ctx, investor, investor, "acme")
	s.Require().NoError(err)
	s.runSteps(s.orchestrator, investor, models.StepRegistration, models.StepInvestorTypeSelection)

	_, err = s.orchestrator.ExecuteStep(s.ctx, investor, investor, models.StepEligibilityCheck, models.Payload{Fields: map[string]string{
		models.FieldCountry: "FR", models.FieldAge: "30", models.FieldIncome: "1",
	}})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	s.Run("inactive tenants cannot onboard", func() {
		_, err := s.tenants.Deactivate(s.ctx, owner, "acme")
		s.Require().NoError(err)
		_, err = s.orchestrator.StartSession(s.ctx, "0xsecond", "0xsecond", "acme")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *OrchestratorSuite) TestForceOperations() {
	_, err := s.orchestrator.StartSession(s.ctx, investor, investor, "")
	s.Require().NoError(err)
	s.runSteps(s.orchestrator, investor, models.StepRegistration)

	completed, err := s.orchestrator.ForceComplete(s.ctx, owner, investor)
	s.Require().NoError(err)
	s.Equal(models.StepCompleted, completed.CurrentStep)
	s.False(completed.DID.IsZero())
	s.True(s.credentials.IsValid(s.ctx, completed.CredentialID))
	s.Equal(1, s.auditCount(audit.ActionSessionForceComplete))
	s.Zero(s.auditCount(audit.ActionSessionCompleted))

	_, err = s.orchestrator.ForceComplete(s.ctx, owner, investor)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.orchestrator.StartSession(s.ctx, "0xsecond", "0xsecond", "")
	s.Require().NoError(err)
	failed, err := s.orchestrator.ForceFail(s.ctx, owner, "0xsecond", "sanctions hit")
	s.Require().NoError(err)
	s.Equal(models.StepFailed, failed.CurrentStep)
	s.Equal("sanctions hit", failed.FailureReason)
	s.Equal(1, s.auditCount(audit.ActionSessionForceFailed))
}

func (s *OrchestratorSuite) TestFailedFinalizationRollsBack() {
	ctrl := gomock.NewController(s.T())
	credentials := mocks.NewMockCredentials(ctrl)
	credentials.EXPECT().RegisterDID(gomock.Any(), issuer, investor, gomock.Any()).
		Return(&credmodels.DIDRecord{ID: "did:veri:abc", Subject: investor, Active: true}, nil)
	credentials.EXPECT().Issue(gomock.Any(), issuer, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ id.Identity, cmd credservice.IssueCommand) (*credmodels.Credential, error) {
			s.Equal(investor, cmd.Subject)
			return nil, errors.New("ledger write failed")
		})
	o := s.newOrchestrator(credentials)

	_, err := o.StartSession(s.ctx, investor, investor, "")
	s.Require().NoError(err)
	s.runSteps(o, investor, models.Sequence[:4]...)

	_, err = o.ExecuteStep(s.ctx, investor, investor, models.StepFinalVerification, payloadFor(models.StepFinalVerification))
	s.Require().Error(err)

	session, err := o.GetSession(s.ctx, investor)
	s.Require().NoError(err)
	s.True(session.Active)
	s.Equal(models.StepFinalVerification, session.CurrentStep)
	s.Len(session.CompletedSteps, 4)

	data, err := o.SessionData(s.ctx, session.ID)
	s.Require().NoError(err)
	s.NotContains(data, models.FieldNotes)
	s.Equal(4, s.auditCount(audit.ActionStepCompleted))
}

func (s *OrchestratorSuite) TestGuardBlocksWrites() {
	ctrl := gomock.NewController(s.T())
	guard := mocks.NewMockGuard(ctrl)
	guard.EXPECT().Guard(gomock.Any()).Return(dErrors.New(dErrors.CodeForbidden, "ledger is in emergency mode"))
	o := s.newOrchestrator(s.credentials, service.WithGuard(guard))

	_, err := o.StartSession(s.ctx, investor, investor, "")
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}
