// Package service implements the credential type catalog.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"veriledger/internal/credentialtype/models"
	authmodels "veriledger/internal/governance/authorization/models"
	"veriledger/internal/governance/policy"
	"veriledger/internal/sentinel"
	id "veriledger/pkg/domain"
	dErrors "veriledger/pkg/domain-errors"
	"veriledger/pkg/platform/audit"
	"veriledger/pkg/platform/tx"
	"veriledger/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,AuditLog,Grants

// Store persists credential types and issuance counters.
type Store interface {
	Create(ctx context.Context, ct *models.CredentialType) error
	Update(ctx context.Context, ct *models.CredentialType) error
	FindByID(ctx context.Context, typeID id.CredentialTypeID) (*models.CredentialType, error)
	List(ctx context.Context, category models.Category) ([]*models.CredentialType, error)
	IssuedCount(ctx context.Context, typeID id.CredentialTypeID, subject id.Identity) (int, error)
	IncrementIssued(ctx context.Context, typeID id.CredentialTypeID, subject id.Identity) error
}

// AuditLog records catalog changes.
type AuditLog interface {
	Append(ctx context.Context, entry audit.Entry) error
}

// Grants answers whether a subject holds a named permission.
type Grants interface {
	HasPermission(ctx context.Context, subject id.Identity, perm authmodels.Permission) bool
}

// Catalog manages credential type definitions.
type Catalog struct {
	types  Store
	gate   policy.Gate
	audit  AuditLog
	grants Grants
	tx     tx.Runner
	logger *slog.Logger
}

// Option configures a Catalog.
type Option func(*Catalog)

func WithTx(runner tx.Runner) Option {
	return func(c *Catalog) {
		c.tx = runner
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) {
		c.logger = logger
	}
}

// WithGrants lets holders of the registrar permission manage types.
func WithGrants(grants Grants) Option {
	return func(c *Catalog) {
		c.grants = grants
	}
}

// New creates a Catalog.
func New(types Store, gate policy.Gate, auditLog AuditLog, opts ...Option) (*Catalog, error) {
	if types == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "credential type store is required")
	}
	if gate == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "authorization gate is required")
	}
	if auditLog == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "audit log is required")
	}
	c := &Catalog{types: types, gate: gate, audit: auditLog}
	for _, opt := range opts {
		opt(c)
	}
	if c.tx == nil {
		c.tx = tx.NewLedger()
	}
	return c, nil
}

// Register adds a new active credential type.
func (c *Catalog) Register(ctx context.Context, caller id.Identity, typeID id.CredentialTypeID, def models.Definition) (*models.CredentialType, error) {
	var created *models.CredentialType
	err := c.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := c.authorize(txCtx, caller); err != nil {
			return err
		}
		ct, err := models.NewCredentialType(typeID, def, caller, requestcontext.Now(txCtx))
		if err != nil {
			return err
		}
		if err := c.types.Create(txCtx, ct); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyExists) {
				return dErrors.New(dErrors.CodeConflict, "credential type already exists")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to register credential type")
		}
		created = ct
		return c.audit.Append(txCtx, audit.Entry{
			Actor:  caller,
			Action: audit.ActionCredentialTypeAdded,
			Detail: map[string]string{
				"type_id":  ct.ID.String(),
				"category": string(ct.Definition.Category),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	c.log(ctx, "credential type registered", "type_id", created.ID.String())
	return created, nil
}

// UpdateStatus changes the type status. Status stays mutable after issuance.
func (c *Catalog) UpdateStatus(ctx context.Context, caller id.Identity, typeID id.CredentialTypeID, status models.Status) (*models.CredentialType, error) {
	return c.mutate(ctx, caller, typeID, audit.ActionCredentialTypeStatus, func(txCtx context.Context, ct *models.CredentialType) (map[string]string, error) {
		if err := ct.SetStatus(status, requestcontext.Now(txCtx)); err != nil {
			return nil, err
		}
		return map[string]string{"status": string(status)}, nil
	})
}

// UpdateDefinition replaces the definition of a type no credential
// references yet.
func (c *Catalog) UpdateDefinition(ctx context.Context, caller id.Identity, typeID id.CredentialTypeID, def models.Definition) (*models.CredentialType, error) {
	return c.mutate(ctx, caller, typeID, audit.ActionCredentialTypeUpdate, func(txCtx context.Context, ct *models.CredentialType) (map[string]string, error) {
		if err := ct.Redefine(def, requestcontext.Now(txCtx)); err != nil {
			return nil, err
		}
		return map[string]string{"version": strconv.Itoa(ct.Version)}, nil
	})
}

// Get returns the type.
func (c *Catalog) Get(ctx context.Context, typeID id.CredentialTypeID) (*models.CredentialType, error) {
	if typeID.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "credential type id is required")
	}
	ct, err := c.types.FindByID(ctx, typeID)
	if err != nil {
		return nil, wrapTypeErr(err, "failed to load credential type")
	}
	return ct, nil
}

// List returns types ordered by id. An empty category lists every type.
func (c *Catalog) List(ctx context.Context, category models.Category) ([]*models.CredentialType, error) {
	if category != "" && !category.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown credential type category")
	}
	types, err := c.types.List(ctx, category)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list credential types")
	}
	return types, nil
}

// RecordIssuance checks that a credential of typeID may be issued to subject
// with data, then counts it and marks the type referenced. It joins the
// caller's transaction, so a failed issuance undoes the count. Types absent
// from the catalog are not governed by it: RecordIssuance returns nil, nil.
func (c *Catalog) RecordIssuance(ctx context.Context, typeID id.CredentialTypeID, subject id.Identity, data []byte) (*models.CredentialType, error) {
	var recorded *models.CredentialType
	err := c.tx.RunInTx(ctx, func(txCtx context.Context) error {
		ct, err := c.types.FindByID(txCtx, typeID)
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil
		}
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load credential type")
		}
		issued, err := c.types.IssuedCount(txCtx, typeID, subject)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read issuance count")
		}
		if err := ct.CanIssue(issued); err != nil {
			return err
		}
		if err := ct.ValidateData(data); err != nil {
			return err
		}
		if err := c.types.IncrementIssued(txCtx, typeID, subject); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count issuance")
		}
		if !ct.Referenced {
			ct.Referenced = true
			if err := c.types.Update(txCtx, ct); err != nil {
				return wrapTypeErr(err, "failed to mark credential type referenced")
			}
		}
		recorded = ct
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recorded, nil
}

type mutation func(ctx context.Context, ct *models.CredentialType) (map[string]string, error)

func (c *Catalog) mutate(ctx context.Context, caller id.Identity, typeID id.CredentialTypeID, action audit.Action, fn mutation) (*models.CredentialType, error) {
	if typeID.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "credential type id is required")
	}
	var updated *models.CredentialType
	err := c.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := c.authorize(txCtx, caller); err != nil {
			return err
		}
		ct, err := c.types.FindByID(txCtx, typeID)
		if err != nil {
			return wrapTypeErr(err, "failed to load credential type")
		}
		detail, err := fn(txCtx, ct)
		if err != nil {
			return err
		}
		if err := c.types.Update(txCtx, ct); err != nil {
			return wrapTypeErr(err, "failed to update credential type")
		}
		if detail == nil {
			detail = map[string]string{}
		}
		detail["type_id"] = ct.ID.String()
		updated = ct
		return c.audit.Append(txCtx, audit.Entry{Actor: caller, Action: action, Detail: detail})
	})
	if err != nil {
		return nil, err
	}
	c.log(ctx, string(action), "type_id", typeID.String(), "caller", caller.String())
	return updated, nil
}

// authorize admits the gate or a registrar grant.
func (c *Catalog) authorize(ctx context.Context, caller id.Identity) error {
	err := c.gate.Authorize(ctx, caller)
	if err == nil {
		return nil
	}
	if c.grants != nil && !caller.IsZero() && c.grants.HasPermission(ctx, caller, authmodels.PermissionRegistrar) {
		return nil
	}
	return err
}

func (c *Catalog) log(ctx context.Context, msg string, args ...any) {
	if c.logger != nil {
		c.logger.InfoContext(ctx, msg, args...)
	}
}

func wrapTypeErr(err error, action string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "credential type not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, action)
}
