package admin

import (
	"context"
	"time"

	ctmodels "veriledger/internal/credentialtype/models"
	"veriledger/internal/governance/policy"
	tenantmodels "veriledger/internal/tenant/models"
	"veriledger/pkg/platform/audit"
	"veriledger/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks AuditReader,TenantLister,CatalogLister,EmergencyReader,GateReader

// DefaultAuditLimit caps audit listings when no limit is given.
const DefaultAuditLimit = 50

const maxAuditLimit = 500

type AuditReader interface {
	List(ctx context.Context, filter audit.Filter) ([]*audit.Entry, error)
	Count(ctx context.Context) (int64, error)
}

type TenantLister interface {
	List(ctx context.Context) ([]*tenantmodels.Tenant, error)
}

type CatalogLister interface {
	List(ctx context.Context, category ctmodels.Category) ([]*ctmodels.CredentialType, error)
}

type EmergencyReader interface {
	IsEmergencyMode(ctx context.Context) bool
}

type GateReader interface {
	Mode() policy.Mode
}

// Service provides operator-level monitoring over the ledger.
type Service struct {
	audit     AuditReader
	tenants   TenantLister
	catalog   CatalogLister
	emergency EmergencyReader
	gate      GateReader
}

func NewService(auditLog AuditReader, tenants TenantLister, catalog CatalogLister, emergency EmergencyReader, gate GateReader) *Service {
	return &Service{
		audit:     auditLog,
		tenants:   tenants,
		catalog:   catalog,
		emergency: emergency,
		gate:      gate,
	}
}

// Stats is a point-in-time summary of ledger state.
type Stats struct {
	AuditEntries    int64
	Tenants         int
	ActiveTenants   int
	CredentialTypes int
	EmergencyMode   bool
	GateMode        policy.Mode
	Timestamp       time.Time
}

func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	entries, err := s.audit.Count(ctx)
	if err != nil {
		return nil, err
	}
	tenants, err := s.tenants.List(ctx)
	if err != nil {
		return nil, err
	}
	types, err := s.catalog.List(ctx, "")
	if err != nil {
		return nil, err
	}
	active := 0
	for _, t := range tenants {
		if t.Active {
			active++
		}
	}
	return &Stats{
		AuditEntries:    entries,
		Tenants:         len(tenants),
		ActiveTenants:   active,
		CredentialTypes: len(types),
		EmergencyMode:   s.emergency.IsEmergencyMode(ctx),
		GateMode:        s.gate.Mode(),
		Timestamp:       requestcontext.Now(ctx),
	}, nil
}

// RecentAuditEvents lists audit entries newest first. The limit is clamped
// to [1, 500] and defaults to DefaultAuditLimit.
func (s *Service) RecentAuditEvents(ctx context.Context, filter audit.Filter) ([]*audit.Entry, error) {
	switch {
	case filter.Limit <= 0:
		filter.Limit = DefaultAuditLimit
	case filter.Limit > maxAuditLimit:
		filter.Limit = maxAuditLimit
	}
	return s.audit.List(ctx, filter)
}
