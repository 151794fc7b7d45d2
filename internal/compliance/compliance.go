// Package compliance answers whether an identity satisfies a tenant's
// policy. It only reads: nothing here mutates or caches ledger state.
package compliance

import (
	"context"
	"log/slog"
	"slices"
	"time"

	credmodels "veriledger/internal/credential/models"
	ctmodels "veriledger/internal/credentialtype/models"
	"veriledger/internal/platform/metrics"
	"veriledger/internal/platform/tracer"
	tenantmodels "veriledger/internal/tenant/models"
	id "veriledger/pkg/domain"
	dErrors "veriledger/pkg/domain-errors"
	"veriledger/pkg/requestcontext"
)

//go:generate mockgen -source=compliance.go -destination=mocks/mocks.go -package=mocks Credentials,Catalog,Tenants

// Credentials reads issued credentials.
type Credentials interface {
	ListBySubject(ctx context.Context, subject id.Identity) ([]*credmodels.Credential, error)
	IsValid(ctx context.Context, credID id.CredentialID) bool
}

// Catalog reads credential type definitions.
type Catalog interface {
	Get(ctx context.Context, typeID id.CredentialTypeID) (*ctmodels.CredentialType, error)
}

// Tenants reads tenant configuration.
type Tenants interface {
	Get(ctx context.Context, tenantID id.TenantID) (*tenantmodels.Tenant, error)
}

// Report is the outcome of Evaluate.
type Report struct {
	Subject      id.Identity
	TenantID     id.TenantID
	TenantActive bool
	// HasIdentity is set when the subject holds a valid identity credential.
	HasIdentity bool
	Satisfied   []id.CredentialTypeID
	Missing     []id.CredentialTypeID
	// Compliant matches IsCompliant.
	Compliant   bool
	EvaluatedAt time.Time
}

// PolicySatisfied reports whether every type the tenant requires is held.
func (r Report) PolicySatisfied() bool {
	return r.Compliant && len(r.Missing) == 0
}

// Checker aggregates credentials, the catalog and tenant configuration.
type Checker struct {
	credentials Credentials
	catalog     Catalog
	tenants     Tenants
	tracer      tracer.Tracer
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

type Option func(*Checker)

func WithTracer(t tracer.Tracer) Option {
	return func(c *Checker) {
		c.tracer = t
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Checker) {
		c.metrics = m
	}
}

// New creates a Checker.
func New(credentials Credentials, catalog Catalog, tenants Tenants, opts ...Option) (*Checker, error) {
	if credentials == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "credential store is required")
	}
	if catalog == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "credential type catalog is required")
	}
	if tenants == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "tenant registry is required")
	}
	c := &Checker{credentials: credentials, catalog: catalog, tenants: tenants}
	for _, opt := range opts {
		opt(c)
	}
	if c.tracer == nil {
		c.tracer = tracer.NewNoop()
	}
	return c, nil
}

// IsCompliant reports whether subject holds a valid identity credential and
// the tenant is active. Unknown tenants and read failures answer false.
func (c *Checker) IsCompliant(ctx context.Context, subject id.Identity, tenantID id.TenantID) bool {
	ctx, span := c.tracer.Start(ctx, tracer.SpanComplianceCheck,
		tracer.String(tracer.AttrSubject, tracer.HashIdentity(subject.String())),
		tracer.String(tracer.AttrTenant, tenantID.String()),
	)
	report, err := c.evaluate(ctx, subject, tenantID)
	compliant := err == nil && report.Compliant
	span.SetAttributes(tracer.Bool(tracer.AttrCompliant, compliant))
	span.End(err)

	c.metrics.IncrementComplianceChecks(compliant)
	if err != nil && c.logger != nil {
		c.logger.WarnContext(ctx, "compliance check failed",
			"tenant_id", tenantID.String(),
			"error", err,
		)
	}
	return compliant
}

// IsCredentialCompliant reports whether the credential is currently valid.
func (c *Checker) IsCredentialCompliant(ctx context.Context, credID id.CredentialID) bool {
	return c.credentials.IsValid(ctx, credID)
}

// Evaluate details which of the tenant's required types subject holds.
func (c *Checker) Evaluate(ctx context.Context, subject id.Identity, tenantID id.TenantID) (Report, error) {
	if subject.IsZero() {
		return Report{}, dErrors.New(dErrors.CodeInvalidInput, "subject is required")
	}
	if tenantID.IsZero() {
		return Report{}, dErrors.New(dErrors.CodeInvalidInput, "tenant id is required")
	}
	ctx, span := c.tracer.Start(ctx, tracer.SpanComplianceEvaluate,
		tracer.String(tracer.AttrSubject, tracer.HashIdentity(subject.String())),
		tracer.String(tracer.AttrTenant, tenantID.String()),
	)
	report, err := c.evaluate(ctx, subject, tenantID)
	if err == nil {
		missing := make([]string, len(report.Missing))
		for i, t := range report.Missing {
			missing[i] = t.String()
		}
		span.SetAttributes(
			tracer.Bool(tracer.AttrCompliant, report.Compliant),
			tracer.Attribute{Key: tracer.AttrMissing, Value: missing},
		)
	}
	span.End(err)
	return report, err
}

func (c *Checker) evaluate(ctx context.Context, subject id.Identity, tenantID id.TenantID) (Report, error) {
	now := requestcontext.Now(ctx)
	report := Report{Subject: subject, TenantID: tenantID, EvaluatedAt: now}

	tenant, err := c.tenants.Get(ctx, tenantID)
	if err != nil {
		return report, err
	}
	report.TenantActive = tenant.Active

	held, err := c.credentials.ListBySubject(ctx, subject)
	if err != nil {
		return report, err
	}
	valid := make(map[id.CredentialTypeID]bool)
	for _, cred := range held {
		if !cred.IsValidAt(now) || valid[cred.Type] {
			continue
		}
		valid[cred.Type] = true
		if report.HasIdentity {
			continue
		}
		isIdentity, err := c.isIdentityType(ctx, cred.Type)
		if err != nil {
			return report, err
		}
		report.HasIdentity = isIdentity
	}

	for _, t := range tenant.RequiredCredentialTypes {
		if valid[t] {
			report.Satisfied = append(report.Satisfied, t)
		} else {
			report.Missing = append(report.Missing, t)
		}
	}
	slices.Sort(report.Satisfied)
	slices.Sort(report.Missing)
	report.Compliant = report.TenantActive && report.HasIdentity
	return report, nil
}

// isIdentityType reports whether the catalog files typeID under identity.
// Uncatalogued types are not identity credentials.
func (c *Checker) isIdentityType(ctx context.Context, typeID id.CredentialTypeID) (bool, error) {
	ct, err := c.catalog.Get(ctx, typeID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return false, nil
		}
		return false, err
	}
	return ct.Definition.Category == ctmodels.CategoryIdentity, nil
}
