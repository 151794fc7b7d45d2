package admin

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"veriledger/internal/admin/mocks"
	ctmodels "veriledger/internal/credentialtype/models"
	"veriledger/internal/governance/policy"
	tenantmodels "veriledger/internal/tenant/models"
	id "veriledger/pkg/domain"
	"veriledger/pkg/platform/audit"
	"veriledger/pkg/requestcontext"
)

// AdminSuite covers stats aggregation and audit listing.
//
// Justification: the audit listing is the only read path over the audit
// trail, and its limit clamping protects the store from unbounded scans.
type AdminSuite struct {
	suite.Suite
	audit     *mocks.MockAuditReader
	tenants   *mocks.MockTenantLister
	catalog   *mocks.MockCatalogLister
	emergency *mocks.MockEmergencyReader
	gate      *mocks.MockGateReader
	router    chi.Router
}

func TestAdminSuite(t *testing.T) {
	suite.Run(t, new(AdminSuite))
}

func (s *AdminSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.audit = mocks.NewMockAuditReader(ctrl)
	s.tenants = mocks.NewMockTenantLister(ctrl)
	s.catalog = mocks.NewMockCatalogLister(ctrl)
	s.emergency = mocks.NewMockEmergencyReader(ctrl)
	s.gate = mocks.NewMockGateReader(ctrl)
	svc := NewService(s.audit, s.tenants, s.catalog, s.emergency, s.gate)
	s.router = chi.NewRouter()
	New(svc, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(s.router)
}

func (s *AdminSuite) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req = req.WithContext(requestcontext.WithTime(req.Context(), time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *AdminSuite) TestStats() {
	s.Run("aggregates ledger state", func() {
		s.audit.EXPECT().Count(gomock.Any()).Return(int64(12), nil)
		s.tenants.EXPECT().List(gomock.Any()).Return([]*tenantmodels.Tenant{
			{ID: "acme", Active: true},
			{ID: "globex", Active: false},
		}, nil)
		s.catalog.EXPECT().List(gomock.Any(), ctmodels.Category("")).Return([]*ctmodels.CredentialType{{ID: "kyc-identity"}}, nil)
		s.emergency.EXPECT().IsEmergencyMode(gomock.Any()).Return(true)
		s.gate.EXPECT().Mode().Return(policy.ModeOwner)

		w := s.get("/stats")
		s.Require().Equal(http.StatusOK, w.Code)
		s.JSONEq(`{
			"audit_entries": 12,
			"tenants": 2,
			"active_tenants": 1,
			"credential_types": 1,
			"emergency_mode": true,
			"gate_mode": "owner",
			"timestamp": "2026-03-01T00:00:00Z"
		}`, w.Body.String())
	})

	s.Run("store failure is an internal error", func() {
		s.audit.EXPECT().Count(gomock.Any()).Return(int64(0), errors.New("db down"))
		w := s.get("/stats")
		s.Equal(http.StatusInternalServerError, w.Code)
	})
}

func (s *AdminSuite) TestAuditListing() {
	s.Run("filters are parsed and limit defaults", func() {
		s.audit.EXPECT().List(gomock.Any(), audit.Filter{
			Actor:    "0xowner",
			Action:   audit.ActionTenantCreated,
			TenantID: "acme",
			Limit:    DefaultAuditLimit,
		}).Return([]*audit.Entry{{
			ID:        uuid.New(),
			Sequence:  1,
			Actor:     id.Identity("0xowner"),
			Action:    audit.ActionTenantCreated,
			TenantID:  "acme",
			Timestamp: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		}}, nil)
		w := s.get("/audit?actor=0xOwner&action=tenant_created&tenant=acme")
		s.Require().Equal(http.StatusOK, w.Code)
		s.Contains(w.Body.String(), `"count":1`)
	})

	s.Run("limit is clamped", func() {
		s.audit.EXPECT().List(gomock.Any(), audit.Filter{Limit: maxAuditLimit}).Return(nil, nil)
		w := s.get("/audit?limit=100000")
		s.Equal(http.StatusOK, w.Code)
	})

	s.Run("non-numeric limit is rejected", func() {
		w := s.get("/audit?limit=ten")
		s.Equal(http.StatusBadRequest, w.Code)
	})
}
