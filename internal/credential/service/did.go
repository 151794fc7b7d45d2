package service

import (
	"bytes"
	"context"
	"errors"

	"veriledger/internal/credential/models"
	"veriledger/internal/sentinel"
	id "veriledger/pkg/domain"
	dErrors "veriledger/pkg/domain-errors"
	"veriledger/pkg/platform/audit"
	"veriledger/pkg/requestcontext"
)

// RegisterDID mints an active DID for subject.
func (s *Service) RegisterDID(ctx context.Context, caller, subject id.Identity, document []byte) (*models.DIDRecord, error) {
	if caller.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	if subject.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "subject is required")
	}

	var registered *models.DIDRecord
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.admit(txCtx, caller); err != nil {
			return err
		}
		existing, err := s.store.ListDIDsBySubject(txCtx, subject)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list DIDs")
		}
		now := requestcontext.Now(txCtx)
		d := &models.DIDRecord{
			ID:        models.DeriveDID(subject, len(existing), now),
			Subject:   subject,
			Document:  bytes.Clone(document),
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.store.CreateDID(txCtx, d); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyExists) {
				return dErrors.New(dErrors.CodeConflict, "DID already exists")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store DID")
		}
		registered = d
		return s.audit.Append(txCtx, audit.Entry{
			Actor:  caller,
			Action: audit.ActionDIDRegistered,
			Detail: map[string]string{"did": d.ID.String(), "subject": subject.String()},
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementDIDsRegistered()
	s.log(ctx, "did registered", "did", registered.ID.String())
	return registered, nil
}

// GetDID returns the DID record.
func (s *Service) GetDID(ctx context.Context, did id.DID) (*models.DIDRecord, error) {
	if did.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "DID is required")
	}
	d, err := s.store.FindDID(ctx, did)
	if err != nil {
		return nil, wrapStoreErr(err, "DID not found", "failed to load DID")
	}
	return d, nil
}

// ListDIDsBySubject returns the subject's DIDs in registration order.
func (s *Service) ListDIDsBySubject(ctx context.Context, subject id.Identity) ([]*models.DIDRecord, error) {
	if subject.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "subject is required")
	}
	out, err := s.store.ListDIDsBySubject(ctx, subject)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list DIDs")
	}
	return out, nil
}

// UpdateDIDDocument replaces the document of an active DID. The DID subject
// may update its own record.
func (s *Service) UpdateDIDDocument(ctx context.Context, caller id.Identity, did id.DID, document []byte) (*models.DIDRecord, error) {
	return s.mutateDID(ctx, caller, did, audit.ActionDIDUpdated, func(txCtx context.Context, d *models.DIDRecord) error {
		return d.UpdateDocument(document, requestcontext.Now(txCtx))
	})
}

// DeactivateDID permanently retires a DID. The DID subject may deactivate
// its own record.
func (s *Service) DeactivateDID(ctx context.Context, caller id.Identity, did id.DID) (*models.DIDRecord, error) {
	return s.mutateDID(ctx, caller, did, audit.ActionDIDDeactivated, func(txCtx context.Context, d *models.DIDRecord) error {
		return d.Deactivate(requestcontext.Now(txCtx))
	})
}

func (s *Service) mutateDID(ctx context.Context, caller id.Identity, did id.DID, action audit.Action, fn func(context.Context, *models.DIDRecord) error) (*models.DIDRecord, error) {
	if caller.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	if did.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "DID is required")
	}

	var updated *models.DIDRecord
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.checkGuard(txCtx); err != nil {
			return err
		}
		d, err := s.store.FindDID(txCtx, did)
		if err != nil {
			return wrapStoreErr(err, "DID not found", "failed to load DID")
		}
		if caller != d.Subject {
			if err := s.authorize(txCtx, caller); err != nil {
				return err
			}
		}
		if err := fn(txCtx, d); err != nil {
			return err
		}
		if err := s.store.UpdateDID(txCtx, d); err != nil {
			return wrapStoreErr(err, "DID not found", "failed to update DID")
		}
		updated = d
		return s.audit.Append(txCtx, audit.Entry{
			Actor:  caller,
			Action: action,
			Detail: map[string]string{"did": d.ID.String(), "subject": d.Subject.String()},
		})
	})
	if err != nil {
		return nil, err
	}
	s.log(ctx, string(action), "did", did.String(), "caller", caller.String())
	return updated, nil
}
