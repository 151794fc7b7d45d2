package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"veriledger/internal/credentialtype/models"
	"veriledger/internal/credentialtype/service"
	"veriledger/internal/credentialtype/service/mocks"
	"veriledger/internal/credentialtype/store"
	authmodels "veriledger/internal/governance/authorization/models"
	"veriledger/internal/governance/policy"
	id "veriledger/pkg/domain"
	dErrors "veriledger/pkg/domain-errors"
	"veriledger/pkg/platform/audit"
	auditmemory "veriledger/pkg/platform/audit/store/memory"
	"veriledger/pkg/platform/tx"
)

const (
	owner     id.Identity = "0xowner"
	registrar id.Identity = "0xregistrar"
	investor  id.Identity = "0xinvestor"
)

func identityDefinition() models.Definition {
	return models.Definition{
		Name:           "KYC identity",
		Category:       models.CategoryIdentity,
		RequiredFields: []string{"country"},
		ValidityPeriod: 30 * 24 * time.Hour,
		MaxIssuance:    1,
	}
}

// CatalogSuite covers registration, mutation and issuance accounting.
//
// Justification: issued credentials point at catalog definitions, so a
// definition must freeze once referenced and the issuance cap must hold
// across rolled-back issuances.
type CatalogSuite struct {
	suite.Suite
	ctx     context.Context
	types   *store.InMemory
	audit   *audit.Log
	ledger  *tx.Ledger
	catalog *service.Catalog
}

func TestCatalogSuite(t *testing.T) {
	suite.Run(t, new(CatalogSuite))
}

func (s *CatalogSuite) SetupTest() {
	s.ctx = context.Background()
	s.types = store.NewInMemory()
	l, err := audit.NewLog(auditmemory.New())
	s.Require().NoError(err)
	s.audit = l
	s.ledger = tx.NewLedger()
	s.catalog = s.newCatalog(s.types)
}

func (s *CatalogSuite) newCatalog(types service.Store, opts ...service.Option) *service.Catalog {
	gate, err := policy.Owner(owner)
	s.Require().NoError(err)
	c, err := service.New(types, gate, s.audit, append([]service.Option{service.WithTx(s.ledger)}, opts...)...)
	s.Require().NoError(err)
	return c
}

func (s *CatalogSuite) register() *models.CredentialType {
	ct, err := s.catalog.Register(s.ctx, owner, "kyc-identity", identityDefinition())
	s.Require().NoError(err)
	return ct
}

func (s *CatalogSuite) TestRegister() {
	s.Run("owner registers an active type", func() {
		ct := s.register()
		s.Equal(models.StatusActive, ct.Status)
		s.Equal(owner, ct.CreatedBy)

		entries, err := s.audit.ListByAction(s.ctx, audit.ActionCredentialTypeAdded)
		s.Require().NoError(err)
		s.Len(entries, 1)
		s.Equal("kyc-identity", entries[0].Detail["type_id"])
	})

	s.Run("duplicate id is a conflict", func() {
		_, err := s.catalog.Register(s.ctx, owner, "kyc-identity", identityDefinition())
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("stranger is unauthorized", func() {
		_, err := s.catalog.Register(s.ctx, "0xstranger", "aml", identityDefinition())
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *CatalogSuite) TestRegistrarGrant() {
	ctrl := gomock.NewController(s.T())
	grants := mocks.NewMockGrants(ctrl)
	grants.EXPECT().HasPermission(gomock.Any(), registrar, authmodels.PermissionRegistrar).Return(true)

	c := s.newCatalog(s.types, service.WithGrants(grants))
	_, err := c.Register(s.ctx, registrar, "accreditation", models.Definition{
		Name:     "Accredited investor",
		Category: models.CategoryFinancial,
	})
	s.NoError(err)
}

func (s *CatalogSuite) TestUpdateDefinition() {
	s.register()

	def := identityDefinition()
	def.MaxIssuance = 2
	ct, err := s.catalog.UpdateDefinition(s.ctx, owner, "kyc-identity", def)
	s.Require().NoError(err)
	s.Equal(2, ct.Version)

	_, err = s.catalog.RecordIssuance(s.ctx, "kyc-identity", investor, []byte(`{"country":"US"}`))
	s.Require().NoError(err)

	s.Run("frozen once referenced", func() {
		_, err := s.catalog.UpdateDefinition(s.ctx, owner, "kyc-identity", identityDefinition())
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStateTransition))
	})

	s.Run("status stays mutable", func() {
		ct, err := s.catalog.UpdateStatus(s.ctx, owner, "kyc-identity", models.StatusDeprecated)
		s.Require().NoError(err)
		s.Equal(models.StatusDeprecated, ct.Status)
	})

	s.Run("unknown type", func() {
		_, err := s.catalog.UpdateStatus(s.ctx, owner, "missing", models.StatusActive)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *CatalogSuite) TestRecordIssuance() {
	s.register()

	s.Run("uncatalogued types pass through", func() {
		ct, err := s.catalog.RecordIssuance(s.ctx, "free-form", investor, nil)
		s.NoError(err)
		s.Nil(ct)
	})

	s.Run("missing required field", func() {
		_, err := s.catalog.RecordIssuance(s.ctx, "kyc-identity", investor, []byte(`{}`))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("cap is enforced per subject", func() {
		_, err := s.catalog.RecordIssuance(s.ctx, "kyc-identity", investor, []byte(`{"country":"US"}`))
		s.Require().NoError(err)

		_, err = s.catalog.RecordIssuance(s.ctx, "kyc-identity", investor, []byte(`{"country":"US"}`))
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))

		_, err = s.catalog.RecordIssuance(s.ctx, "kyc-identity", "0xother", []byte(`{"country":"GB"}`))
		s.NoError(err)
	})

	s.Run("suspended types cannot be issued", func() {
		_, err := s.catalog.UpdateStatus(s.ctx, owner, "kyc-identity", models.StatusSuspended)
		s.Require().NoError(err)
		_, err = s.catalog.RecordIssuance(s.ctx, "kyc-identity", "0xthird", []byte(`{"country":"US"}`))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *CatalogSuite) TestRolledBackIssuanceDoesNotCount() {
	s.register()

	err := s.ledger.RunInTx(s.ctx, func(txCtx context.Context) error {
		if _, err := s.catalog.RecordIssuance(txCtx, "kyc-identity", investor, []byte(`{"country":"US"}`)); err != nil {
			return err
		}
		return errors.New("credential write failed")
	})
	s.Require().Error(err)

	n, err := s.types.IssuedCount(s.ctx, "kyc-identity", investor)
	s.Require().NoError(err)
	s.Zero(n)
	ct, err := s.catalog.Get(s.ctx, "kyc-identity")
	s.Require().NoError(err)
	s.False(ct.Referenced)
}

func (s *CatalogSuite) TestList() {
	s.register()
	_, err := s.catalog.Register(s.ctx, owner, "accreditation", models.Definition{Name: "Accredited", Category: models.CategoryFinancial})
	s.Require().NoError(err)

	all, err := s.catalog.List(s.ctx, "")
	s.Require().NoError(err)
	s.Len(all, 2)
	s.Equal(id.CredentialTypeID("accreditation"), all[0].ID)

	identity, err := s.catalog.List(s.ctx, models.CategoryIdentity)
	s.Require().NoError(err)
	s.Len(identity, 1)

	_, err = s.catalog.List(s.ctx, "astrology")
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func (s *CatalogSuite) TestStoreFailureIsInternal() {
	ctrl := gomock.NewController(s.T())
	types := mocks.NewMockStore(ctrl)
	types.EXPECT().FindByID(gomock.Any(), id.CredentialTypeID("kyc-identity")).Return(nil, errors.New("connection reset"))

	_, err := s.newCatalog(types).Get(s.ctx, "kyc-identity")
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}
