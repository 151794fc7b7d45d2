// Package policy holds the authorization gate every privileged component is
// composed with. A gate is either owner-gated or signer-gated; a Dual gate
// starts owner-gated and can be upgraded to signer gating in place, so the
// components using it keep the same call surface.
package policy

import (
	"context"
	"sync"

	id "veriledger/pkg/domain"
	dErrors "veriledger/pkg/domain-errors"
)

// Mode names the active gating variant.
type Mode string

const (
	ModeOwner    Mode = "owner"
	ModeMultisig Mode = "multisig"
)

// SignerChecker is the part of a multisig authority a gate needs.
type SignerChecker interface {
	IsAuthorizedSigner(identity id.Identity) bool
}

// Gate authorizes privileged callers.
type Gate interface {
	Authorize(ctx context.Context, caller id.Identity) error
	Mode() Mode
}

type ownerGate struct {
	owner id.Identity
}

// Owner returns a gate that only admits owner.
func Owner(owner id.Identity) (Gate, error) {
	if owner.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "owner identity is required")
	}
	return ownerGate{owner: owner}, nil
}

func (g ownerGate) Authorize(_ context.Context, caller id.Identity) error {
	if caller.IsZero() || caller != g.owner {
		return dErrors.New(dErrors.CodeUnauthorized, "caller is not the owner")
	}
	return nil
}

func (g ownerGate) Mode() Mode { return ModeOwner }

type signerGate struct {
	authority SignerChecker
}

// Signers returns a gate that admits any authorized signer of authority.
// There is no owner fallback.
func Signers(authority SignerChecker) (Gate, error) {
	if authority == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "multisig authority is required")
	}
	return signerGate{authority: authority}, nil
}

func (g signerGate) Authorize(_ context.Context, caller id.Identity) error {
	if caller.IsZero() || !g.authority.IsAuthorizedSigner(caller) {
		return dErrors.New(dErrors.CodeUnauthorized, "caller is not an authorized signer")
	}
	return nil
}

func (g signerGate) Mode() Mode { return ModeMultisig }

// Dual is owner-gated until an authority is set, signer-gated afterwards.
type Dual struct {
	mu        sync.RWMutex
	owner     id.Identity
	authority SignerChecker
}

// NewDual creates a dual gate. authority may be nil.
func NewDual(owner id.Identity, authority SignerChecker) (*Dual, error) {
	if owner.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "owner identity is required")
	}
	return &Dual{owner: owner, authority: authority}, nil
}

func (d *Dual) Authorize(ctx context.Context, caller id.Identity) error {
	d.mu.RLock()
	owner, authority := d.owner, d.authority
	d.mu.RUnlock()

	if authority != nil {
		return signerGate{authority: authority}.Authorize(ctx, caller)
	}
	return ownerGate{owner: owner}.Authorize(ctx, caller)
}

func (d *Dual) Mode() Mode {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.authority != nil {
		return ModeMultisig
	}
	return ModeOwner
}

// Owner returns the configured owner identity.
func (d *Dual) Owner() id.Identity {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.owner
}

// Upgrade switches the gate to signer gating. Only the owner may call it,
// and only while the gate is still owner-gated.
func (d *Dual) Upgrade(_ context.Context, caller id.Identity, authority SignerChecker) error {
	if authority == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "multisig authority is required")
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if caller.IsZero() || caller != d.owner {
		return dErrors.New(dErrors.CodeUnauthorized, "caller is not the owner")
	}
	if d.authority != nil {
		return dErrors.New(dErrors.CodeInvalidStateTransition, "gate is already multisig-gated")
	}
	d.authority = authority
	return nil
}

func (d *Dual) downgrade() {
	d.mu.Lock()
	d.authority = nil
	d.mu.Unlock()
}
