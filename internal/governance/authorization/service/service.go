// Package service implements the authorization manager: the grant table that
// records which identities may write ledger state on the platform's behalf.
package service

import (
	"context"
	"errors"
	"log/slog"

	"veriledger/internal/governance/authorization/models"
	"veriledger/internal/governance/policy"
	"veriledger/internal/sentinel"
	id "veriledger/pkg/domain"
	dErrors "veriledger/pkg/domain-errors"
	"veriledger/pkg/platform/audit"
	"veriledger/pkg/platform/tx"
	"veriledger/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,AuditLog

// Store persists grants.
type Store interface {
	Find(ctx context.Context, subject id.Identity) (*models.Grant, error)
	Save(ctx context.Context, grant *models.Grant) error
	Delete(ctx context.Context, subject id.Identity) error
	List(ctx context.Context) ([]*models.Grant, error)
}

// AuditLog records every grant change.
type AuditLog interface {
	Append(ctx context.Context, entry audit.Entry) error
}

// Manager grants and revokes permissions.
type Manager struct {
	grants Store
	gate   policy.Gate
	audit  AuditLog
	tx     tx.Runner
	logger *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

func WithTx(runner tx.Runner) Option {
	return func(m *Manager) {
		m.tx = runner
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// New creates a Manager. Grants, gate and audit log are required.
func New(grants Store, gate policy.Gate, auditLog AuditLog, opts ...Option) (*Manager, error) {
	if grants == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "grant store is required")
	}
	if gate == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "authorization gate is required")
	}
	if auditLog == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "audit log is required")
	}
	m := &Manager{grants: grants, gate: gate, audit: auditLog}
	for _, opt := range opts {
		opt(m)
	}
	if m.tx == nil {
		m.tx = tx.NewLedger()
	}
	return m, nil
}

// Grant adds perms to subject. Without perms the issuer permission is granted.
func (m *Manager) Grant(ctx context.Context, caller, subject id.Identity, perms ...models.Permission) (*models.Grant, error) {
	if subject.IsZero() {
		return nil, errInvalidSubject()
	}
	if len(perms) == 0 {
		perms = []models.Permission{models.PermissionIssuer}
	}

	var result *models.Grant
	err := m.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := m.gate.Authorize(txCtx, caller); err != nil {
			return err
		}
		now := requestcontext.Now(txCtx)
		grant, err := m.grants.Find(txCtx, subject)
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			grant, err = models.NewGrant(subject, caller, perms, now)
			if err != nil {
				return err
			}
		case err != nil:
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load grant")
		default:
			grant.Add(perms...)
			grant.GrantedBy = caller
			grant.UpdatedAt = now
		}

		if err := m.grants.Save(txCtx, grant); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save grant")
		}
		if err := m.audit.Append(txCtx, audit.Entry{
			Actor:  caller,
			Action: audit.ActionGrantCreated,
			Detail: map[string]string{"subject": subject.String(), "permissions": grant.PermissionNames()},
		}); err != nil {
			return err
		}
		result = grant
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.log(ctx, "authorization granted", "subject", subject.String(), "permissions", result.PermissionNames())
	return result, nil
}

// Revoke removes every permission held by subject.
func (m *Manager) Revoke(ctx context.Context, caller, subject id.Identity) error {
	if subject.IsZero() {
		return errInvalidSubject()
	}

	err := m.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := m.gate.Authorize(txCtx, caller); err != nil {
			return err
		}
		if err := m.grants.Delete(txCtx, subject); err != nil {
			return wrapGrantErr(err, "failed to revoke grant")
		}
		return m.audit.Append(txCtx, audit.Entry{
			Actor:  caller,
			Action: audit.ActionGrantRevoked,
			Detail: map[string]string{"subject": subject.String()},
		})
	})
	if err != nil {
		return err
	}
	m.log(ctx, "authorization revoked", "subject", subject.String())
	return nil
}

// RevokePermission removes one permission. Removing the last permission
// removes the grant.
func (m *Manager) RevokePermission(ctx context.Context, caller, subject id.Identity, perm models.Permission) error {
	if subject.IsZero() {
		return errInvalidSubject()
	}

	return m.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := m.gate.Authorize(txCtx, caller); err != nil {
			return err
		}
		grant, err := m.grants.Find(txCtx, subject)
		if err != nil {
			return wrapGrantErr(err, "failed to load grant")
		}
		if !grant.Remove(perm) {
			return dErrors.New(dErrors.CodeNotFound, "permission not granted")
		}
		if len(grant.Permissions) == 0 {
			err = m.grants.Delete(txCtx, subject)
		} else {
			grant.UpdatedAt = requestcontext.Now(txCtx)
			err = m.grants.Save(txCtx, grant)
		}
		if err != nil {
			return wrapGrantErr(err, "failed to update grant")
		}
		return m.audit.Append(txCtx, audit.Entry{
			Actor:  caller,
			Action: audit.ActionPermissionRevoked,
			Detail: map[string]string{"subject": subject.String(), "permission": string(perm)},
		})
	})
}

// IsAuthorized reports whether subject holds any permission.
func (m *Manager) IsAuthorized(ctx context.Context, subject id.Identity) bool {
	grant, ok := m.find(ctx, subject)
	return ok && len(grant.Permissions) > 0
}

// HasPermission reports whether subject holds perm.
func (m *Manager) HasPermission(ctx context.Context, subject id.Identity, perm models.Permission) bool {
	grant, ok := m.find(ctx, subject)
	return ok && grant.Has(perm)
}

// GetGrant returns the grant held by subject.
func (m *Manager) GetGrant(ctx context.Context, subject id.Identity) (*models.Grant, error) {
	if subject.IsZero() {
		return nil, errInvalidSubject()
	}
	grant, err := m.grants.Find(ctx, subject)
	if err != nil {
		return nil, wrapGrantErr(err, "failed to load grant")
	}
	return grant, nil
}

// ListGrants returns every grant ordered by subject.
func (m *Manager) ListGrants(ctx context.Context) ([]*models.Grant, error) {
	grants, err := m.grants.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list grants")
	}
	return grants, nil
}

func (m *Manager) find(ctx context.Context, subject id.Identity) (*models.Grant, bool) {
	if subject.IsZero() {
		return nil, false
	}
	grant, err := m.grants.Find(ctx, subject)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) && m.logger != nil {
			m.logger.ErrorContext(ctx, "grant lookup failed", "subject", subject.String(), "error", err)
		}
		return nil, false
	}
	return grant, true
}

func (m *Manager) log(ctx context.Context, msg string, args ...any) {
	if m.logger != nil {
		m.logger.InfoContext(ctx, msg, args...)
	}
}

func errInvalidSubject() error {
	return dErrors.New(dErrors.CodeInvalidInput, "invalid subject: identity cannot be empty")
}

func wrapGrantErr(err error, msg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "grant not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
