// Package service issues, revokes and validates credentials and manages the
// DID records they are anchored to.
package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"time"

	"veriledger/internal/credential/models"
	ctmodels "veriledger/internal/credentialtype/models"
	authmodels "veriledger/internal/governance/authorization/models"
	"veriledger/internal/governance/policy"
	"veriledger/internal/platform/metrics"
	"veriledger/internal/sentinel"
	id "veriledger/pkg/domain"
	dErrors "veriledger/pkg/domain-errors"
	"veriledger/pkg/platform/audit"
	"veriledger/pkg/platform/tx"
	"veriledger/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,AuditLog,Grants,Catalog,Guard

// Store persists credentials and DIDs.
type Store interface {
	CreateCredential(ctx context.Context, c *models.Credential) error
	UpdateCredential(ctx context.Context, c *models.Credential) error
	FindCredential(ctx context.Context, credID id.CredentialID) (*models.Credential, error)
	ListBySubject(ctx context.Context, subject id.Identity) ([]*models.Credential, error)
	ListByIssuer(ctx context.Context, issuer id.Identity) ([]*models.Credential, error)
	CreateDID(ctx context.Context, d *models.DIDRecord) error
	UpdateDID(ctx context.Context, d *models.DIDRecord) error
	FindDID(ctx context.Context, did id.DID) (*models.DIDRecord, error)
	ListDIDsBySubject(ctx context.Context, subject id.Identity) ([]*models.DIDRecord, error)
}

// AuditLog records credential and DID changes.
type AuditLog interface {
	Append(ctx context.Context, entry audit.Entry) error
}

// Grants answers whether a subject holds a named permission.
type Grants interface {
	HasPermission(ctx context.Context, subject id.Identity, perm authmodels.Permission) bool
}

// Catalog governs issuance of catalogued credential types. It returns a nil
// type for types it does not know.
type Catalog interface {
	RecordIssuance(ctx context.Context, typeID id.CredentialTypeID, subject id.Identity, data []byte) (*ctmodels.CredentialType, error)
}

// Guard blocks writes while the ledger is paused.
type Guard interface {
	Guard(ctx context.Context) error
}

// IssueCommand describes a credential to issue. An empty ID is derived from
// the content; a zero IssuedAt is the request time; a zero ExpiresAt takes
// the catalog default, or never expires.
type IssueCommand struct {
	ID        id.CredentialID
	Issuer    id.Identity
	Subject   id.Identity
	Type      id.CredentialTypeID
	Data      []byte
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Service is the credential ledger.
type Service struct {
	store   Store
	gate    policy.Gate
	audit   AuditLog
	grants  Grants
	catalog Catalog
	guard   Guard
	trusted map[id.Identity]struct{}
	tx      tx.Runner
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

func WithTx(runner tx.Runner) Option {
	return func(s *Service) {
		s.tx = runner
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithGrants admits holders of the issuer permission as writers.
func WithGrants(grants Grants) Option {
	return func(s *Service) {
		s.grants = grants
	}
}

// WithCatalog enforces catalog definitions on issuance.
func WithCatalog(catalog Catalog) Option {
	return func(s *Service) {
		s.catalog = catalog
	}
}

// WithGuard makes every write consult guard first.
func WithGuard(guard Guard) Option {
	return func(s *Service) {
		s.guard = guard
	}
}

// WithTrustedWriter admits identity as a writer regardless of the gate. The
// onboarding orchestrator writes under such an identity.
func WithTrustedWriter(identity id.Identity) Option {
	return func(s *Service) {
		if !identity.IsZero() {
			s.trusted[identity] = struct{}{}
		}
	}
}

// New creates a credential Service.
func New(store Store, gate policy.Gate, auditLog AuditLog, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "credential store is required")
	}
	if gate == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "authorization gate is required")
	}
	if auditLog == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "audit log is required")
	}
	s := &Service{store: store, gate: gate, audit: auditLog, trusted: make(map[id.Identity]struct{})}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = tx.NewLedger()
	}
	return s, nil
}

// Issue records a new credential.
func (s *Service) Issue(ctx context.Context, caller id.Identity, cmd IssueCommand) (*models.Credential, error) {
	if caller.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	if cmd.Issuer.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "issuer is required")
	}
	if cmd.Subject.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "subject is required")
	}
	if cmd.Type.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "credential type is required")
	}

	var issued *models.Credential
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.admit(txCtx, caller); err != nil {
			return err
		}
		c := &models.Credential{
			ID:        cmd.ID,
			Issuer:    cmd.Issuer,
			Subject:   cmd.Subject,
			Type:      cmd.Type,
			Data:      bytes.Clone(cmd.Data),
			IssuedAt:  cmd.IssuedAt,
			ExpiresAt: cmd.ExpiresAt,
		}
		if c.IssuedAt.IsZero() {
			c.IssuedAt = requestcontext.Now(txCtx)
		}
		if c.ID.IsZero() {
			c.ID = models.DeriveID(c.Issuer, c.Subject, c.Type, c.Data, c.IssuedAt)
		}
		// A reused id is a duplicate whatever the catalog would say.
		if _, err := s.store.FindCredential(txCtx, c.ID); err == nil {
			return dErrors.New(dErrors.CodeDuplicateCredential, "credential id already exists")
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load credential")
		}
		if s.catalog != nil {
			ct, err := s.catalog.RecordIssuance(txCtx, c.Type, c.Subject, c.Data)
			if err != nil {
				return err
			}
			if ct != nil && c.ExpiresAt.IsZero() {
				c.ExpiresAt = ct.ExpiryFor(c.IssuedAt)
			}
		}
		if !c.ExpiresAt.IsZero() && !c.ExpiresAt.After(c.IssuedAt) {
			return dErrors.New(dErrors.CodeInvalidInput, "expiry must be after issuance")
		}
		if err := s.store.CreateCredential(txCtx, c); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyExists) {
				return dErrors.New(dErrors.CodeDuplicateCredential, "credential id already exists")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store credential")
		}
		issued = c
		return s.audit.Append(txCtx, audit.Entry{
			Actor:  caller,
			Action: audit.ActionCredentialIssued,
			Detail: map[string]string{
				"credential_id": c.ID.String(),
				"issuer":        c.Issuer.String(),
				"subject":       c.Subject.String(),
				"type":          c.Type.String(),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementCredentialsIssued(issued.Type.String())
	s.log(ctx, "credential issued", "credential_id", issued.ID.String(), "type", issued.Type.String())
	return issued, nil
}

// Get returns the credential.
func (s *Service) Get(ctx context.Context, credID id.CredentialID) (*models.Credential, error) {
	if credID.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "credential id is required")
	}
	c, err := s.store.FindCredential(ctx, credID)
	if err != nil {
		return nil, wrapStoreErr(err, "credential not found", "failed to load credential")
	}
	return c, nil
}

// Revoke permanently revokes the credential.
func (s *Service) Revoke(ctx context.Context, caller id.Identity, credID id.CredentialID) (*models.Credential, error) {
	if caller.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	if credID.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "credential id is required")
	}

	var revoked *models.Credential
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.admit(txCtx, caller); err != nil {
			return err
		}
		c, err := s.store.FindCredential(txCtx, credID)
		if err != nil {
			return wrapStoreErr(err, "credential not found", "failed to load credential")
		}
		if err := c.Revoke(requestcontext.Now(txCtx)); err != nil {
			return err
		}
		if err := s.store.UpdateCredential(txCtx, c); err != nil {
			return wrapStoreErr(err, "credential not found", "failed to revoke credential")
		}
		revoked = c
		return s.audit.Append(txCtx, audit.Entry{
			Actor:  caller,
			Action: audit.ActionCredentialRevoked,
			Detail: map[string]string{
				"credential_id": c.ID.String(),
				"subject":       c.Subject.String(),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementCredentialsRevoked()
	s.log(ctx, "credential revoked", "credential_id", credID.String(), "caller", caller.String())
	return revoked, nil
}

// IsValid reports whether the credential exists, is unrevoked and is
// unexpired at the request time.
func (s *Service) IsValid(ctx context.Context, credID id.CredentialID) bool {
	c, err := s.store.FindCredential(ctx, credID)
	if err != nil {
		return false
	}
	return c.IsValidAt(requestcontext.Now(ctx))
}

// ListBySubject returns the subject's credentials in issuance order.
func (s *Service) ListBySubject(ctx context.Context, subject id.Identity) ([]*models.Credential, error) {
	if subject.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "subject is required")
	}
	out, err := s.store.ListBySubject(ctx, subject)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list credentials")
	}
	return out, nil
}

// ListByIssuer returns the issuer's credentials in issuance order.
func (s *Service) ListByIssuer(ctx context.Context, issuer id.Identity) ([]*models.Credential, error) {
	if issuer.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "issuer is required")
	}
	out, err := s.store.ListByIssuer(ctx, issuer)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list credentials")
	}
	return out, nil
}

func (s *Service) authorize(ctx context.Context, caller id.Identity) error {
	if caller.IsZero() {
		return dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	if _, ok := s.trusted[caller]; ok {
		return nil
	}
	err := s.gate.Authorize(ctx, caller)
	if err == nil {
		return nil
	}
	if s.grants != nil && s.grants.HasPermission(ctx, caller, authmodels.PermissionIssuer) {
		return nil
	}
	return err
}

// admit authorizes caller and consults the guard. It runs inside the unit
// of work so a concurrent revoke or pause that commits first is observed.
func (s *Service) admit(ctx context.Context, caller id.Identity) error {
	if err := s.authorize(ctx, caller); err != nil {
		return err
	}
	return s.checkGuard(ctx)
}

func (s *Service) checkGuard(ctx context.Context) error {
	if s.guard == nil {
		return nil
	}
	return s.guard.Guard(ctx)
}

func (s *Service) log(ctx context.Context, msg string, args ...any) {
	if s.logger != nil {
		s.logger.InfoContext(ctx, msg, args...)
	}
}

func wrapStoreErr(err error, notFound, action string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, notFound)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, action)
}
