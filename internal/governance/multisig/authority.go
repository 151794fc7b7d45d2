// Package multisig implements the n-of-m signer set that gates high-risk
// operations, plus threshold proposals signers approve one by one.
package multisig

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	id "veriledger/pkg/domain"
	dErrors "veriledger/pkg/domain-errors"
	"veriledger/pkg/platform/audit"
	"veriledger/pkg/platform/tx"
	"veriledger/pkg/requestcontext"
)

// AuditLog is the audit sink proposals are recorded in.
type AuditLog interface {
	Append(ctx context.Context, entry audit.Entry) error
}

// Proposal is an action awaiting threshold approval.
type Proposal struct {
	ID        id.ProposalID
	Action    string
	Proposer  id.Identity
	Approvals []id.Identity
	CreatedAt time.Time
	Approved  bool
}

func (p *Proposal) hasApproval(signer id.Identity) bool {
	for _, a := range p.Approvals {
		if a == signer {
			return true
		}
	}
	return false
}

func (p *Proposal) clone() *Proposal {
	c := *p
	c.Approvals = append([]id.Identity(nil), p.Approvals...)
	return &c
}

// Authority is an immutable signer set with a threshold.
type Authority struct {
	signers   map[id.Identity]struct{}
	threshold int

	mu        sync.RWMutex
	proposals map[id.ProposalID]*Proposal

	audit  AuditLog
	tx     tx.Runner
	logger *slog.Logger
}

// Option configures an Authority.
type Option func(*Authority)

func WithAuditLog(log AuditLog) Option {
	return func(a *Authority) {
		a.audit = log
	}
}

func WithTx(runner tx.Runner) Option {
	return func(a *Authority) {
		a.tx = runner
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(a *Authority) {
		a.logger = logger
	}
}

// New validates 1 <= threshold <= |signers| over the de-duplicated signer set.
func New(signers []id.Identity, threshold int, opts ...Option) (*Authority, error) {
	set := make(map[id.Identity]struct{}, len(signers))
	for _, s := range signers {
		signer, err := id.ParseIdentity(s.String())
		if err != nil {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "signer identity cannot be empty")
		}
		set[signer] = struct{}{}
	}
	if len(set) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "signer set cannot be empty")
	}
	if threshold < 1 || threshold > len(set) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "threshold must be between 1 and the number of signers")
	}

	a := &Authority{
		signers:   set,
		threshold: threshold,
		proposals: make(map[id.ProposalID]*Proposal),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.tx == nil {
		a.tx = tx.NewLedger()
	}
	return a, nil
}

// IsAuthorizedSigner reports whether identity belongs to the signer set.
// Identities are compared in their parsed form.
func (a *Authority) IsAuthorizedSigner(identity id.Identity) bool {
	_, ok := a.signer(identity)
	return ok
}

func (a *Authority) signer(identity id.Identity) (id.Identity, bool) {
	canonical, err := id.ParseIdentity(identity.String())
	if err != nil {
		return "", false
	}
	_, ok := a.signers[canonical]
	return canonical, ok
}

// SignerCount returns the size of the signer set.
func (a *Authority) SignerCount() int {
	return len(a.signers)
}

// Threshold returns the number of approvals a proposal needs.
func (a *Authority) Threshold() int {
	return a.threshold
}

// Signers returns the signer set sorted for stable output.
func (a *Authority) Signers() []id.Identity {
	out := make([]id.Identity, 0, len(a.signers))
	for s := range a.signers {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Propose opens a proposal; the proposer's approval is counted.
func (a *Authority) Propose(ctx context.Context, proposer id.Identity, action string) (*Proposal, error) {
	proposer, ok := a.signer(proposer)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller is not an authorized signer")
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "proposal action is required")
	}

	var created *Proposal
	err := a.tx.RunInTx(ctx, func(txCtx context.Context) error {
		p := &Proposal{
			ID:        id.NewProposalID(),
			Action:    action,
			Proposer:  proposer,
			Approvals: []id.Identity{proposer},
			CreatedAt: requestcontext.Now(txCtx),
		}
		p.Approved = len(p.Approvals) >= a.threshold

		a.mu.Lock()
		a.proposals[p.ID] = p
		a.mu.Unlock()
		tx.OnRollback(txCtx, func() {
			a.mu.Lock()
			delete(a.proposals, p.ID)
			a.mu.Unlock()
		})

		if err := a.record(txCtx, proposer, audit.ActionProposalCreated, p); err != nil {
			return err
		}
		created = p.clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Approve adds signer's approval. Approving twice is a conflict.
func (a *Authority) Approve(ctx context.Context, signer id.Identity, proposalID id.ProposalID) (*Proposal, error) {
	signer, ok := a.signer(signer)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller is not an authorized signer")
	}

	var approved *Proposal
	err := a.tx.RunInTx(ctx, func(txCtx context.Context) error {
		a.mu.Lock()
		p, ok := a.proposals[proposalID]
		if !ok {
			a.mu.Unlock()
			return dErrors.New(dErrors.CodeNotFound, "proposal not found")
		}
		if p.hasApproval(signer) {
			a.mu.Unlock()
			return dErrors.New(dErrors.CodeConflict, "signer already approved this proposal")
		}
		before := p.clone()
		p.Approvals = append(p.Approvals, signer)
		p.Approved = len(p.Approvals) >= a.threshold
		snapshot := p.clone()
		a.mu.Unlock()

		tx.OnRollback(txCtx, func() {
			a.mu.Lock()
			a.proposals[proposalID] = before
			a.mu.Unlock()
		})

		if err := a.record(txCtx, signer, audit.ActionProposalApproved, snapshot); err != nil {
			return err
		}
		approved = snapshot
		return nil
	})
	if err != nil {
		return nil, err
	}
	return approved, nil
}

// GetProposal returns a copy of the proposal.
func (a *Authority) GetProposal(_ context.Context, proposalID id.ProposalID) (*Proposal, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	p, ok := a.proposals[proposalID]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "proposal not found")
	}
	return p.clone(), nil
}

// IsApproved reports whether the proposal reached the threshold. Unknown
// proposals are not approved.
func (a *Authority) IsApproved(ctx context.Context, proposalID id.ProposalID) bool {
	p, err := a.GetProposal(ctx, proposalID)
	return err == nil && p.Approved
}

func (a *Authority) record(ctx context.Context, actor id.Identity, action audit.Action, p *Proposal) error {
	if a.logger != nil {
		a.logger.InfoContext(ctx, string(action),
			"proposal_id", p.ID.String(),
			"approvals", len(p.Approvals),
			"threshold", a.threshold,
		)
	}
	if a.audit == nil {
		return nil
	}
	approved := "false"
	if p.Approved {
		approved = "true"
	}
	return a.audit.Append(ctx, audit.Entry{
		Actor:  actor,
		Action: action,
		Detail: map[string]string{
			"proposal_id": p.ID.String(),
			"action":      p.Action,
			"approved":    approved,
		},
	})
}
