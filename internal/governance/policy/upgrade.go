package policy

import (
	"context"
	"log/slog"

	id "veriledger/pkg/domain"
	dErrors "veriledger/pkg/domain-errors"
	"veriledger/pkg/platform/audit"
	"veriledger/pkg/platform/tx"
)

// AuditLog is the audit sink gate upgrades are recorded in.
type AuditLog interface {
	Append(ctx context.Context, entry audit.Entry) error
}

// Upgrader moves a Dual gate to a fixed multisig authority and records the
// switch in the same unit of work.
type Upgrader struct {
	gate      *Dual
	authority SignerChecker
	audit     AuditLog
	tx        tx.Runner
	logger    *slog.Logger
}

type UpgraderOption func(*Upgrader)

func WithTx(runner tx.Runner) UpgraderOption {
	return func(u *Upgrader) {
		u.tx = runner
	}
}

func WithLogger(logger *slog.Logger) UpgraderOption {
	return func(u *Upgrader) {
		u.logger = logger
	}
}

func NewUpgrader(gate *Dual, authority SignerChecker, auditLog AuditLog, opts ...UpgraderOption) (*Upgrader, error) {
	if gate == nil || authority == nil || auditLog == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "gate, authority and audit log are required")
	}
	u := &Upgrader{gate: gate, authority: authority, audit: auditLog}
	for _, opt := range opts {
		opt(u)
	}
	if u.tx == nil {
		u.tx = tx.NewLedger()
	}
	return u, nil
}

// Upgrade switches the gate to signer gating. A failed audit append leaves
// the gate owner-gated.
func (u *Upgrader) Upgrade(ctx context.Context, caller id.Identity) error {
	err := u.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := u.gate.Upgrade(txCtx, caller, u.authority); err != nil {
			return err
		}
		tx.OnRollback(txCtx, u.gate.downgrade)
		return u.audit.Append(txCtx, audit.Entry{
			Actor:  caller,
			Action: audit.ActionGateUpgraded,
			Detail: map[string]string{
				"from": string(ModeOwner),
				"to":   string(ModeMultisig),
			},
		})
	})
	if err != nil {
		return err
	}
	if u.logger != nil {
		u.logger.InfoContext(ctx, "authorization gate upgraded", "caller", caller.String())
	}
	return nil
}

// Mode reports the current gating variant.
func (u *Upgrader) Mode() Mode { return u.gate.Mode() }

// Owner returns the configured owner identity.
func (u *Upgrader) Owner() id.Identity { return u.gate.Owner() }
