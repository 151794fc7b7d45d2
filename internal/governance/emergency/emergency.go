// Package emergency implements the global pause switch. It is always
// signer-gated: emergency powers never rest with a single key.
package emergency

import (
	"context"
	"log/slog"
	"time"

	"veriledger/internal/governance/policy"
	"veriledger/internal/platform/metrics"
	id "veriledger/pkg/domain"
	dErrors "veriledger/pkg/domain-errors"
	"veriledger/pkg/platform/audit"
	"veriledger/pkg/platform/tx"
	"veriledger/pkg/requestcontext"
)

//go:generate mockgen -source=emergency.go -destination=mocks/mocks.go -package=mocks FlagStore,AuditLog

// State is the persisted flag.
type State struct {
	Active    bool
	ChangedBy id.Identity
	ChangedAt time.Time
}

// FlagStore persists the flag. Set must register its own undo with the
// unit of work so a failed transition leaves the previous state in place.
type FlagStore interface {
	Get(ctx context.Context) (State, error)
	Set(ctx context.Context, state State) error
}

// AuditLog records transitions.
type AuditLog interface {
	Append(ctx context.Context, entry audit.Entry) error
}

// Control toggles emergency mode.
type Control struct {
	flags   FlagStore
	gate    policy.Gate
	audit   AuditLog
	tx      tx.Runner
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Control.
type Option func(*Control)

func WithTx(runner tx.Runner) Option {
	return func(c *Control) {
		c.tx = runner
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Control) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Control) {
		c.metrics = m
	}
}

// New creates a Control gated by authority. There is no owner fallback, so
// a nil authority is rejected.
func New(flags FlagStore, authority policy.SignerChecker, auditLog AuditLog, opts ...Option) (*Control, error) {
	if flags == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "flag store is required")
	}
	if auditLog == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "audit log is required")
	}
	gate, err := policy.Signers(authority)
	if err != nil {
		return nil, err
	}
	c := &Control{flags: flags, gate: gate, audit: auditLog}
	for _, opt := range opts {
		opt(c)
	}
	if c.tx == nil {
		c.tx = tx.NewLedger()
	}
	return c, nil
}

// Activate pauses every guarded operation.
func (c *Control) Activate(ctx context.Context, caller id.Identity) error {
	return c.transition(ctx, caller, true)
}

// Deactivate resumes normal operation.
func (c *Control) Deactivate(ctx context.Context, caller id.Identity) error {
	return c.transition(ctx, caller, false)
}

// IsEmergencyMode reports the current flag. A store failure is reported as
// active so guarded callers fail closed.
func (c *Control) IsEmergencyMode(ctx context.Context) bool {
	state, err := c.flags.Get(ctx)
	if err != nil {
		if c.logger != nil {
			c.logger.ErrorContext(ctx, "emergency flag read failed", "error", err)
		}
		return true
	}
	return state.Active
}

// State returns the stored flag with who changed it last.
func (c *Control) State(ctx context.Context) (State, error) {
	state, err := c.flags.Get(ctx)
	if err != nil {
		return State{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read emergency flag")
	}
	return state, nil
}

// Guard returns a Forbidden error while emergency mode is active.
func (c *Control) Guard(ctx context.Context) error {
	state, err := c.flags.Get(ctx)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read emergency flag")
	}
	if state.Active {
		return dErrors.New(dErrors.CodeForbidden, "ledger is in emergency mode")
	}
	return nil
}

func (c *Control) transition(ctx context.Context, caller id.Identity, active bool) error {
	action := audit.ActionEmergencyDeactivated
	if active {
		action = audit.ActionEmergencyActivated
	}

	err := c.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := c.gate.Authorize(txCtx, caller); err != nil {
			return err
		}
		current, err := c.flags.Get(txCtx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read emergency flag")
		}
		if current.Active == active {
			if active {
				return dErrors.New(dErrors.CodeInvalidStateTransition, "emergency mode is already active")
			}
			return dErrors.New(dErrors.CodeInvalidStateTransition, "emergency mode is not active")
		}
		next := State{Active: active, ChangedBy: caller, ChangedAt: requestcontext.Now(txCtx)}
		if err := c.flags.Set(txCtx, next); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store emergency flag")
		}
		return c.audit.Append(txCtx, audit.Entry{Actor: caller, Action: action})
	})
	if err != nil {
		return err
	}

	c.metrics.SetEmergencyActive(active)
	if c.logger != nil {
		c.logger.WarnContext(ctx, string(action), "caller", caller.String())
	}
	return nil
}
