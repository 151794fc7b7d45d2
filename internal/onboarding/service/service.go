// Package service drives subjects through onboarding and, on completion,
// registers a DID and issues a credential to the session subject.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	credmodels "veriledger/internal/credential/models"
	credservice "veriledger/internal/credential/service"
	authmodels "veriledger/internal/governance/authorization/models"
	"veriledger/internal/governance/policy"
	"veriledger/internal/onboarding/models"
	"veriledger/internal/platform/metrics"
	"veriledger/internal/platform/tracer"
	"veriledger/internal/sentinel"
	tenantmodels "veriledger/internal/tenant/models"
	id "veriledger/pkg/domain"
	dErrors "veriledger/pkg/domain-errors"
	"veriledger/pkg/platform/audit"
	"veriledger/pkg/platform/tx"
	"veriledger/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks SessionStore,DataStore,Credentials,Tenants,AuditLog,Grants,Guard

// SessionStore persists sessions. Create fails with ErrAlreadyExists when
// the subject already has an active session.
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	Update(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, sessionID id.SessionID) (*models.Session, error)
	FindActiveBySubject(ctx context.Context, subject id.Identity) (*models.Session, error)
	FindLatestBySubject(ctx context.Context, subject id.Identity) (*models.Session, error)
}

// DataStore holds the KYC fields collected by each step.
type DataStore interface {
	Put(ctx context.Context, sessionID id.SessionID, fields map[string]string) error
	Get(ctx context.Context, sessionID id.SessionID) (map[string]string, error)
}

// Credentials writes the DID and credential produced by a completed session.
type Credentials interface {
	RegisterDID(ctx context.Context, caller, subject id.Identity, document []byte) (*credmodels.DIDRecord, error)
	Issue(ctx context.Context, caller id.Identity, cmd credservice.IssueCommand) (*credmodels.Credential, error)
}

// Tenants reads tenant configuration.
type Tenants interface {
	Get(ctx context.Context, tenantID id.TenantID) (*tenantmodels.Tenant, error)
}

// AuditLog records session transitions.
type AuditLog interface {
	Append(ctx context.Context, entry audit.Entry) error
}

// Grants answers whether a subject holds a named permission.
type Grants interface {
	HasPermission(ctx context.Context, subject id.Identity, perm authmodels.Permission) bool
}

// Guard blocks writes while the ledger is paused.
type Guard interface {
	Guard(ctx context.Context) error
}

// Issuance configures what a completed session produces.
type Issuance struct {
	// Issuer writes the DID and credential; it must be a trusted writer of
	// the credential service.
	Issuer         id.Identity
	CredentialType id.CredentialTypeID
	// Validity of the issued credential; zero defers to the catalog.
	Validity time.Duration
}

// Orchestrator runs the onboarding state machine.
type Orchestrator struct {
	sessions    SessionStore
	data        DataStore
	credentials Credentials
	gate        policy.Gate
	audit       AuditLog
	issuance    Issuance
	tenants     Tenants
	grants      Grants
	guard       Guard
	tx          tx.Runner
	tracer      tracer.Tracer
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

type Option func(*Orchestrator)

func WithTx(runner tx.Runner) Option {
	return func(o *Orchestrator) {
		o.tx = runner
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(o *Orchestrator) {
		o.tracer = t
	}
}

// WithTenants checks tenant state and jurisdictions for tenant sessions.
func WithTenants(tenants Tenants) Option {
	return func(o *Orchestrator) {
		o.tenants = tenants
	}
}

// WithGrants lets holders of the operator permission act for subjects.
func WithGrants(grants Grants) Option {
	return func(o *Orchestrator) {
		o.grants = grants
	}
}

// WithGuard makes every write consult guard first.
func WithGuard(guard Guard) Option {
	return func(o *Orchestrator) {
		o.guard = guard
	}
}

// New creates an Orchestrator. gate protects the force operations.
func New(sessions SessionStore, data DataStore, credentials Credentials, gate policy.Gate, auditLog AuditLog, issuance Issuance, opts ...Option) (*Orchestrator, error) {
	switch {
	case sessions == nil:
		return nil, dErrors.New(dErrors.CodeInternal, "session store is required")
	case data == nil:
		return nil, dErrors.New(dErrors.CodeInternal, "KYC data store is required")
	case credentials == nil:
		return nil, dErrors.New(dErrors.CodeInternal, "credential service is required")
	case gate == nil:
		return nil, dErrors.New(dErrors.CodeInternal, "authorization gate is required")
	case auditLog == nil:
		return nil, dErrors.New(dErrors.CodeInternal, "audit log is required")
	case issuance.Issuer.IsZero():
		return nil, dErrors.New(dErrors.CodeInternal, "issuer identity is required")
	case issuance.CredentialType.IsZero():
		return nil, dErrors.New(dErrors.CodeInternal, "onboarding credential type is required")
	}
	o := &Orchestrator{
		sessions:    sessions,
		data:        data,
		credentials: credentials,
		gate:        gate,
		audit:       auditLog,
		issuance:    issuance,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.tx == nil {
		o.tx = tx.NewLedger()
	}
	if o.tracer == nil {
		o.tracer = tracer.NewNoop()
	}
	return o, nil
}

// StartSession opens a session for subject, optionally bound to a tenant.
func (o *Orchestrator) StartSession(ctx context.Context, caller, subject id.Identity, tenantID id.TenantID) (*models.Session, error) {
	if err := checkActor(caller, subject); err != nil {
		return nil, err
	}

	var started *models.Session
	err := o.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := o.admit(txCtx, caller, subject); err != nil {
			return err
		}
		if !tenantID.IsZero() {
			if err := o.checkTenant(txCtx, tenantID); err != nil {
				return err
			}
		}
		if _, err := o.sessions.FindActiveBySubject(txCtx, subject); err == nil {
			return errSessionActive()
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
		}
		session, err := models.NewSession(subject, tenantID, requestcontext.Now(txCtx))
		if err != nil {
			return err
		}
		if err := o.sessions.Create(txCtx, session); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyExists) {
				return errSessionActive()
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create session")
		}
		started = session
		return o.record(txCtx, caller, audit.ActionSessionStarted, session, nil)
	})
	if err != nil {
		return nil, err
	}

	o.metrics.IncrementSessionsStarted()
	o.log(ctx, "onboarding session started", "session_id", started.ID.String(), "tenant_id", tenantID.String())
	return started, nil
}

// ExecuteStep validates and completes the subject's current step. Completing
// the last step finalizes the session in the same transaction.
func (o *Orchestrator) ExecuteStep(ctx context.Context, caller, subject id.Identity, step models.Step, payload models.Payload) (*models.Session, error) {
	if err := checkActor(caller, subject); err != nil {
		return nil, err
	}
	ctx, span := o.tracer.Start(ctx, tracer.SpanOnboardingStep,
		tracer.String(tracer.AttrSubject, tracer.HashIdentity(subject.String())),
		tracer.String(tracer.AttrStep, string(step)),
	)

	var updated *models.Session
	err := o.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := o.admit(txCtx, caller, subject); err != nil {
			return err
		}
		session, err := o.activeSession(txCtx, subject)
		if err != nil {
			return err
		}
		if err := session.CanExecute(step); err != nil {
			return err
		}
		fields, err := models.Validate(step, payload, o.jurisdictionCheck(txCtx, session))
		if err != nil {
			return err
		}
		now := requestcontext.Now(txCtx)
		next, err := session.Complete(step, now)
		if err != nil {
			return err
		}
		if err := o.data.Put(txCtx, session.ID, fields); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store step data")
		}
		if err := o.record(txCtx, caller, audit.ActionStepCompleted, session, map[string]string{
			"step": string(step),
			"next": string(next),
		}); err != nil {
			return err
		}
		if next == models.StepCompleted {
			if err := o.finalize(txCtx, session); err != nil {
				return err
			}
		}
		if err := o.sessions.Update(txCtx, session); err != nil {
			return wrapSessionErr(err, "failed to update session")
		}
		updated = session
		if next != models.StepCompleted {
			return nil
		}
		return o.record(txCtx, caller, audit.ActionSessionCompleted, session, completionDetail(session))
	})
	span.End(err)
	if err != nil {
		return nil, err
	}

	o.metrics.IncrementStepsCompleted(string(step))
	if !updated.Active {
		o.metrics.IncrementSessionsFinished("completed")
	}
	o.log(ctx, "onboarding step completed", "session_id", updated.ID.String(), "step", string(step))
	return updated, nil
}

// CancelSession lets the caller abandon its own active session.
func (o *Orchestrator) CancelSession(ctx context.Context, caller id.Identity) (*models.Session, error) {
	if caller.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	session, err := o.terminate(ctx, caller, caller, false, audit.ActionSessionCancelled, func(txCtx context.Context, s *models.Session) error {
		return s.Fail(models.ReasonCancelled, requestcontext.Now(txCtx))
	})
	if err != nil {
		return nil, err
	}
	o.metrics.IncrementSessionsFinished("cancelled")
	return session, nil
}

// ForceComplete finalizes the subject's active session regardless of its
// current step.
func (o *Orchestrator) ForceComplete(ctx context.Context, caller, subject id.Identity) (*models.Session, error) {
	session, err := o.terminate(ctx, caller, subject, true, audit.ActionSessionForceComplete, o.finalize)
	if err != nil {
		return nil, err
	}
	o.metrics.IncrementSessionsFinished("completed")
	return session, nil
}

// ForceFail fails the subject's active session with reason.
func (o *Orchestrator) ForceFail(ctx context.Context, caller, subject id.Identity, reason string) (*models.Session, error) {
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "failure reason is required")
	}
	session, err := o.terminate(ctx, caller, subject, true, audit.ActionSessionForceFailed, func(txCtx context.Context, s *models.Session) error {
		return s.Fail(reason, requestcontext.Now(txCtx))
	})
	if err != nil {
		return nil, err
	}
	o.metrics.IncrementSessionsFinished("failed")
	return session, nil
}

// GetSession returns the subject's latest session.
func (o *Orchestrator) GetSession(ctx context.Context, subject id.Identity) (*models.Session, error) {
	if subject.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "subject is required")
	}
	session, err := o.sessions.FindLatestBySubject(ctx, subject)
	if err != nil {
		return nil, wrapSessionErr(err, "failed to load session")
	}
	return session, nil
}

// SessionData returns the KYC fields stored for a session.
func (o *Orchestrator) SessionData(ctx context.Context, sessionID id.SessionID) (map[string]string, error) {
	if sessionID.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "session id is required")
	}
	if _, err := o.sessions.FindByID(ctx, sessionID); err != nil {
		return nil, wrapSessionErr(err, "failed to load session")
	}
	fields, err := o.data.Get(ctx, sessionID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session data")
	}
	return fields, nil
}

type termination func(ctx context.Context, s *models.Session) error

// terminate applies fn to the subject's active session and records action.
// Privileged terminations require the configured gate to admit caller.
func (o *Orchestrator) terminate(ctx context.Context, caller, subject id.Identity, privileged bool, action audit.Action, fn termination) (*models.Session, error) {
	if subject.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "subject is required")
	}
	var ended *models.Session
	err := o.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if privileged {
			if err := o.gate.Authorize(txCtx, caller); err != nil {
				return err
			}
		}
		if err := o.checkGuard(txCtx); err != nil {
			return err
		}
		session, err := o.activeSession(txCtx, subject)
		if err != nil {
			return err
		}
		if err := fn(txCtx, session); err != nil {
			return err
		}
		if err := o.sessions.Update(txCtx, session); err != nil {
			return wrapSessionErr(err, "failed to update session")
		}
		detail := completionDetail(session)
		if session.FailureReason != "" {
			detail["reason"] = session.FailureReason
		}
		ended = session
		return o.record(txCtx, caller, action, session, detail)
	})
	if err != nil {
		return nil, err
	}
	o.log(ctx, string(action), "session_id", ended.ID.String(), "caller", caller.String())
	return ended, nil
}

func (o *Orchestrator) activeSession(ctx context.Context, subject id.Identity) (*models.Session, error) {
	session, err := o.sessions.FindActiveBySubject(ctx, subject)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no active onboarding session")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}
	return session, nil
}

func checkActor(caller, subject id.Identity) error {
	if caller.IsZero() {
		return dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	if subject.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "subject is required")
	}
	return nil
}

// admit authorizes caller for subject and consults the guard. It runs inside
// the unit of work so a revoked grant or a pause committed first is observed.
func (o *Orchestrator) admit(ctx context.Context, caller, subject id.Identity) error {
	if err := o.authorizeSubject(ctx, caller, subject); err != nil {
		return err
	}
	return o.checkGuard(ctx)
}

// authorizeSubject admits the subject itself or a granted operator.
func (o *Orchestrator) authorizeSubject(ctx context.Context, caller, subject id.Identity) error {
	if err := checkActor(caller, subject); err != nil {
		return err
	}
	if caller == subject {
		return nil
	}
	if o.grants != nil && o.grants.HasPermission(ctx, caller, authmodels.PermissionOperator) {
		return nil
	}
	return dErrors.New(dErrors.CodeUnauthorized, "caller may not act for this subject")
}

func (o *Orchestrator) checkTenant(ctx context.Context, tenantID id.TenantID) error {
	if o.tenants == nil {
		return nil
	}
	t, err := o.tenants.Get(ctx, tenantID)
	if err != nil {
		return err
	}
	if !t.Active {
		return dErrors.New(dErrors.CodeInvalidInput, "tenant is not active")
	}
	return nil
}

// jurisdictionCheck returns nil when the session has no tenant to consult.
func (o *Orchestrator) jurisdictionCheck(ctx context.Context, session *models.Session) models.JurisdictionCheck {
	if session.TenantID.IsZero() || o.tenants == nil {
		return nil
	}
	return func(country string) bool {
		t, err := o.tenants.Get(ctx, session.TenantID)
		return err == nil && t.AllowsJurisdiction(country)
	}
}

func (o *Orchestrator) record(ctx context.Context, caller id.Identity, action audit.Action, session *models.Session, detail map[string]string) error {
	if detail == nil {
		detail = map[string]string{}
	}
	detail["session_id"] = session.ID.String()
	detail["subject"] = session.Subject.String()
	return o.audit.Append(ctx, audit.Entry{
		Actor:    caller,
		Action:   action,
		Detail:   detail,
		TenantID: session.TenantID,
	})
}

func (o *Orchestrator) checkGuard(ctx context.Context) error {
	if o.guard == nil {
		return nil
	}
	return o.guard.Guard(ctx)
}

func (o *Orchestrator) log(ctx context.Context, msg string, args ...any) {
	if o.logger != nil {
		o.logger.InfoContext(ctx, msg, args...)
	}
}

func completionDetail(session *models.Session) map[string]string {
	detail := map[string]string{}
	if !session.DID.IsZero() {
		detail["did"] = session.DID.String()
	}
	if !session.CredentialID.IsZero() {
		detail["credential_id"] = session.CredentialID.String()
	}
	return detail
}

func errSessionActive() error {
	return dErrors.New(dErrors.CodeSessionAlreadyActive, "subject already has an active onboarding session")
}

func wrapSessionErr(err error, action string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "onboarding session not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, action)
}
