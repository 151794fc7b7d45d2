package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "veriledger/pkg/domain"
	dErrors "veriledger/pkg/domain-errors"
)

// TenantModelSuite tests Tenant domain model behaviors.
type TenantModelSuite struct {
	suite.Suite
	now time.Time
}

func TestTenantModelSuite(t *testing.T) {
	suite.Run(t, new(TenantModelSuite))
}

func (s *TenantModelSuite) SetupTest() {
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func (s *TenantModelSuite) newTenant() *Tenant {
	t, err := NewTenant("acme", "Acme", "0xadmin", Policy{
		RequiredCredentialTypes: []id.CredentialTypeID{"kyc-identity"},
		MaxRiskScore:            40,
		Jurisdictions:           []string{"us", "DE"},
	}, s.now)
	s.Require().NoError(err)
	return t
}

func (s *TenantModelSuite) TestNewTenant() {
	s.Run("normalizes policy", func() {
		t := s.newTenant()
		s.True(t.Active)
		s.Equal([]string{"US", "DE"}, t.Jurisdictions)
		s.Equal(s.now, t.UpdatedAt)
	})

	s.Run("rejects invalid input", func() {
		cases := []struct {
			name   string
			id     id.TenantID
			tname  string
			admin  id.Identity
			policy Policy
		}{
			{"empty id", "", "Acme", "0xadmin", Policy{}},
			{"empty name", "acme", "  ", "0xadmin", Policy{}},
			{"zero admin", "acme", "Acme", "", Policy{}},
			{"risk above 100", "acme", "Acme", "0xadmin", Policy{MaxRiskScore: 101}},
			{"negative risk", "acme", "Acme", "0xadmin", Policy{MaxRiskScore: -1}},
			{"empty jurisdiction", "acme", "Acme", "0xadmin", Policy{Jurisdictions: []string{" "}}},
			{"empty credential type", "acme", "Acme", "0xadmin", Policy{RequiredCredentialTypes: []id.CredentialTypeID{""}}},
		}
		for _, tc := range cases {
			_, err := NewTenant(tc.id, tc.tname, tc.admin, tc.policy, s.now)
			s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput), tc.name)
		}
	})
}

// TestLifecycle verifies tenants cannot repeat a transition.
func (s *TenantModelSuite) TestLifecycle() {
	t := s.newTenant()
	later := s.now.Add(time.Hour)

	s.Require().NoError(t.Deactivate(later))
	s.False(t.Active)
	s.Equal(later, t.UpdatedAt)
	s.True(dErrors.HasCode(t.Deactivate(later), dErrors.CodeInvalidStateTransition))

	s.Require().NoError(t.Reactivate(later))
	s.True(t.Active)
	s.True(dErrors.HasCode(t.Reactivate(later), dErrors.CodeInvalidStateTransition))
}

func (s *TenantModelSuite) TestJurisdictions() {
	t := s.newTenant()
	s.True(t.AllowsJurisdiction("us"))
	s.False(t.AllowsJurisdiction("FR"))

	open, err := NewTenant("open", "Open", "0xadmin", Policy{}, s.now)
	s.Require().NoError(err)
	s.True(open.AllowsJurisdiction("FR"), "empty set allows every jurisdiction")
}

func (s *TenantModelSuite) TestCustomFields() {
	t := s.newTenant()
	s.Require().NoError(t.AddCustomField("accreditation_letter", s.now))
	s.True(dErrors.HasCode(t.AddCustomField("accreditation_letter", s.now), dErrors.CodeConflict))
	s.True(dErrors.HasCode(t.AddCustomField("", s.now), dErrors.CodeInvalidInput))
}

func (s *TenantModelSuite) TestCloneIsDeep() {
	t := s.newTenant()
	c := t.Clone()
	c.Jurisdictions[0] = "FR"
	c.RequiredCredentialTypes = append(c.RequiredCredentialTypes, "other")
	s.Equal("US", t.Jurisdictions[0])
	s.Len(t.RequiredCredentialTypes, 1)
}
