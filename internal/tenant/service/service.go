// Package service implements the tenant registry: per-tenant compliance
// policy that only the platform authority or the tenant's own admin may
// change.
package service

import (
	"context"
	"errors"
	"log/slog"

	"veriledger/internal/governance/policy"
	"veriledger/internal/platform/metrics"
	"veriledger/internal/sentinel"
	"veriledger/internal/tenant/models"
	id "veriledger/pkg/domain"
	dErrors "veriledger/pkg/domain-errors"
	"veriledger/pkg/platform/audit"
	"veriledger/pkg/platform/tx"
	"veriledger/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,AuditLog,Guard

// Store persists tenants.
type Store interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	Update(ctx context.Context, tenant *models.Tenant) error
	FindByID(ctx context.Context, tenantID id.TenantID) (*models.Tenant, error)
	List(ctx context.Context) ([]*models.Tenant, error)
}

// AuditLog records tenant changes.
type AuditLog interface {
	Append(ctx context.Context, entry audit.Entry) error
}

// Guard blocks writes while the ledger is paused.
type Guard interface {
	Guard(ctx context.Context) error
}

// CreateCommand describes a new tenant.
type CreateCommand struct {
	ID     id.TenantID
	Name   string
	Admin  id.Identity
	Policy models.Policy
}

// Registry manages tenant configuration.
type Registry struct {
	tenants Store
	gate    policy.Gate
	audit   AuditLog
	guard   Guard
	tx      tx.Runner
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Registry.
type Option func(*Registry)

func WithTx(runner tx.Runner) Option {
	return func(r *Registry) {
		r.tx = runner
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// WithGuard makes every write consult guard first.
func WithGuard(guard Guard) Option {
	return func(r *Registry) {
		r.guard = guard
	}
}

// New creates a Registry. gate decides who acts as the platform authority.
func New(tenants Store, gate policy.Gate, auditLog AuditLog, opts ...Option) (*Registry, error) {
	if tenants == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "tenant store is required")
	}
	if gate == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "authorization gate is required")
	}
	if auditLog == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "audit log is required")
	}
	r := &Registry{tenants: tenants, gate: gate, audit: auditLog}
	for _, opt := range opts {
		opt(r)
	}
	if r.tx == nil {
		r.tx = tx.NewLedger()
	}
	return r, nil
}

// CreateTenant registers a tenant. Only the platform authority may call it.
func (r *Registry) CreateTenant(ctx context.Context, caller id.Identity, cmd CreateCommand) (*models.Tenant, error) {
	var created *models.Tenant
	err := r.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := r.gate.Authorize(txCtx, caller); err != nil {
			return err
		}
		if err := r.checkGuard(txCtx); err != nil {
			return err
		}
		t, err := models.NewTenant(cmd.ID, cmd.Name, cmd.Admin, cmd.Policy, requestcontext.Now(txCtx))
		if err != nil {
			return err
		}
		if err := r.tenants.Create(txCtx, t); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyExists) {
				return dErrors.New(dErrors.CodeConflict, "tenant id already exists")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create tenant")
		}
		if err := r.record(txCtx, caller, audit.ActionTenantCreated, t, map[string]string{
			"name":  t.Name,
			"admin": t.Admin.String(),
		}); err != nil {
			return err
		}
		created = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.metrics.IncrementTenantsCreated()
	r.log(ctx, "tenant created", "tenant_id", created.ID.String())
	return created, nil
}

// UpdatePolicy replaces the tenant's compliance policy.
func (r *Registry) UpdatePolicy(ctx context.Context, caller id.Identity, tenantID id.TenantID, p models.Policy) (*models.Tenant, error) {
	return r.mutate(ctx, caller, tenantID, audit.ActionTenantUpdated, func(txCtx context.Context, t *models.Tenant) (map[string]string, error) {
		if err := t.ApplyPolicy(p, requestcontext.Now(txCtx)); err != nil {
			return nil, err
		}
		return map[string]string{"change": "policy"}, nil
	})
}

// AddCustomField adds an onboarding field name to the tenant.
func (r *Registry) AddCustomField(ctx context.Context, caller id.Identity, tenantID id.TenantID, field string) (*models.Tenant, error) {
	return r.mutate(ctx, caller, tenantID, audit.ActionTenantUpdated, func(txCtx context.Context, t *models.Tenant) (map[string]string, error) {
		if err := t.AddCustomField(field, requestcontext.Now(txCtx)); err != nil {
			return nil, err
		}
		return map[string]string{"change": "custom_field", "field": field}, nil
	})
}

// Deactivate disables the tenant. Tenants are never deleted.
func (r *Registry) Deactivate(ctx context.Context, caller id.Identity, tenantID id.TenantID) (*models.Tenant, error) {
	t, err := r.mutate(ctx, caller, tenantID, audit.ActionTenantDeactivated, func(txCtx context.Context, t *models.Tenant) (map[string]string, error) {
		return nil, t.Deactivate(requestcontext.Now(txCtx))
	})
	if err == nil {
		r.metrics.IncrementTenantStatus("inactive")
	}
	return t, err
}

// Reactivate re-enables a deactivated tenant.
func (r *Registry) Reactivate(ctx context.Context, caller id.Identity, tenantID id.TenantID) (*models.Tenant, error) {
	t, err := r.mutate(ctx, caller, tenantID, audit.ActionTenantReactivated, func(txCtx context.Context, t *models.Tenant) (map[string]string, error) {
		return nil, t.Reactivate(requestcontext.Now(txCtx))
	})
	if err == nil {
		r.metrics.IncrementTenantStatus("active")
	}
	return t, err
}

// Get returns the tenant.
func (r *Registry) Get(ctx context.Context, tenantID id.TenantID) (*models.Tenant, error) {
	if tenantID.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "tenant id is required")
	}
	t, err := r.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, wrapTenantErr(err, "failed to load tenant")
	}
	return t, nil
}

// List returns every tenant ordered by id.
func (r *Registry) List(ctx context.Context) ([]*models.Tenant, error) {
	tenants, err := r.tenants.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list tenants")
	}
	return tenants, nil
}

// IsActive reports whether the tenant exists and is active.
func (r *Registry) IsActive(ctx context.Context, tenantID id.TenantID) bool {
	t, err := r.Get(ctx, tenantID)
	return err == nil && t.Active
}

// IsJurisdictionAllowed reports whether code is allowed by the tenant.
// Unknown tenants allow nothing.
func (r *Registry) IsJurisdictionAllowed(ctx context.Context, tenantID id.TenantID, code string) bool {
	t, err := r.Get(ctx, tenantID)
	return err == nil && t.AllowsJurisdiction(code)
}

type mutation func(ctx context.Context, t *models.Tenant) (map[string]string, error)

// mutate loads the tenant, checks the caller is its admin or the platform
// authority, applies fn and writes the audit entry in one transaction.
func (r *Registry) mutate(ctx context.Context, caller id.Identity, tenantID id.TenantID, action audit.Action, fn mutation) (*models.Tenant, error) {
	if caller.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	if tenantID.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "tenant id is required")
	}
	var updated *models.Tenant
	err := r.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := r.checkGuard(txCtx); err != nil {
			return err
		}
		t, err := r.tenants.FindByID(txCtx, tenantID)
		if err != nil {
			return wrapTenantErr(err, "failed to load tenant")
		}
		if caller != t.Admin {
			if err := r.gate.Authorize(txCtx, caller); err != nil {
				return dErrors.New(dErrors.CodeUnauthorized, "caller is neither the tenant admin nor the platform authority")
			}
		}
		detail, err := fn(txCtx, t)
		if err != nil {
			return err
		}
		if err := r.tenants.Update(txCtx, t); err != nil {
			return wrapTenantErr(err, "failed to update tenant")
		}
		if err := r.record(txCtx, caller, action, t, detail); err != nil {
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.log(ctx, string(action), "tenant_id", tenantID.String(), "caller", caller.String())
	return updated, nil
}

func (r *Registry) record(ctx context.Context, caller id.Identity, action audit.Action, t *models.Tenant, detail map[string]string) error {
	entry := audit.Entry{
		Actor:    caller,
		Action:   action,
		Detail:   detail,
		TenantID: t.ID,
	}
	if len(t.Jurisdictions) == 1 {
		entry.Jurisdiction = t.Jurisdictions[0]
	}
	return r.audit.Append(ctx, entry)
}

func (r *Registry) checkGuard(ctx context.Context) error {
	if r.guard == nil {
		return nil
	}
	return r.guard.Guard(ctx)
}

func (r *Registry) log(ctx context.Context, msg string, args ...any) {
	if r.logger != nil {
		r.logger.InfoContext(ctx, msg, args...)
	}
}

func wrapTenantErr(err error, action string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "tenant not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, action)
}
