package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"veriledger/internal/admin"
	"veriledger/internal/compliance"
	credentialservice "veriledger/internal/credential/service"
	credentialstore "veriledger/internal/credential/store"
	typemodels "veriledger/internal/credentialtype/models"
	typeservice "veriledger/internal/credentialtype/service"
	typestore "veriledger/internal/credentialtype/store"
	grantservice "veriledger/internal/governance/authorization/service"
	grantstore "veriledger/internal/governance/authorization/store"
	"veriledger/internal/governance/emergency"
	emergencystore "veriledger/internal/governance/emergency/store"
	"veriledger/internal/governance/multisig"
	"veriledger/internal/governance/policy"
	onboardingservice "veriledger/internal/onboarding/service"
	onboardingstore "veriledger/internal/onboarding/store"
	"veriledger/internal/platform/config"
	"veriledger/internal/platform/metrics"
	"veriledger/internal/platform/tracer"
	tenantservice "veriledger/internal/tenant/service"
	tenantstore "veriledger/internal/tenant/store"
	id "veriledger/pkg/domain"
	dErrors "veriledger/pkg/domain-errors"
	"veriledger/pkg/platform/audit"
	auditmetrics "veriledger/pkg/platform/audit/metrics"
	"veriledger/pkg/platform/audit/outbox"
	outboxmetrics "veriledger/pkg/platform/audit/outbox/metrics"
	outboxmemory "veriledger/pkg/platform/audit/outbox/store/memory"
	outboxpostgres "veriledger/pkg/platform/audit/outbox/store/postgres"
	"veriledger/pkg/platform/audit/outbox/worker"
	auditmemory "veriledger/pkg/platform/audit/store/memory"
	auditpostgres "veriledger/pkg/platform/audit/store/postgres"
	"veriledger/pkg/platform/circuit"
	"veriledger/pkg/platform/tx"
)

// app is the wired component graph the router serves.
type app struct {
	metrics     *metrics.Metrics
	auditLog    *audit.Log
	outbox      *worker.Worker
	gate        *policy.Dual
	upgrader    *policy.Upgrader
	authority   *multisig.Authority
	grants      *grantservice.Manager
	emergency   *emergency.Control
	tenants     *tenantservice.Registry
	catalog     *typeservice.Catalog
	credentials *credentialservice.Service
	compliance  *compliance.Checker
	onboarding  *onboardingservice.Orchestrator
	admin       *admin.Service
}

func buildApp(ctx context.Context, cfg config.Server, in *infra, log *slog.Logger) (*app, error) {
	owner, err := id.ParseIdentity(cfg.Ledger.Owner)
	if err != nil {
		return nil, fmt.Errorf("LEDGER_OWNER: %w", err)
	}
	issuer, err := id.ParseIdentity(cfg.Ledger.Issuer)
	if err != nil {
		return nil, fmt.Errorf("LEDGER_ISSUER: %w", err)
	}
	signers, threshold, err := signerSet(cfg, owner)
	if err != nil {
		return nil, err
	}
	typeID, err := id.ParseCredentialTypeID(cfg.Ledger.CredentialType)
	if err != nil {
		return nil, fmt.Errorf("ONBOARDING_CREDENTIAL_TYPE: %w", err)
	}

	a := &app{metrics: metrics.New()}
	trc := tracer.NewOTel()

	txOpts := []tx.Option{tx.WithTimeout(cfg.Ledger.TxTimeout), tx.WithLogger(log)}
	if in.db != nil {
		txOpts = append(txOpts, tx.WithDB(in.db.DB()))
	}
	ledger := tx.NewLedger(txOpts...)

	var (
		auditStore  audit.Store
		outboxStore outbox.Store
	)
	if in.db != nil {
		auditStore = auditpostgres.New(in.db.DB())
		outboxStore = outboxpostgres.New(in.db.DB())
	} else {
		auditStore = auditmemory.New()
		outboxStore = outboxmemory.New()
	}
	auditOpts := []audit.Option{audit.WithLogger(log), audit.WithMetrics(auditmetrics.New())}
	if in.producer != nil {
		auditOpts = append(auditOpts, audit.WithOutbox(outboxStore))
		a.outbox = worker.New(outboxStore, in.producer,
			worker.WithTopic(cfg.Kafka.Topic),
			worker.WithMetrics(outboxmetrics.New()),
			worker.WithLogger(log),
			worker.WithBreaker(circuit.New("audit-stream")),
		)
	}
	a.auditLog, err = audit.NewLog(auditStore, auditOpts...)
	if err != nil {
		return nil, fmt.Errorf("audit log: %w", err)
	}

	a.authority, err = multisig.New(signers, threshold,
		multisig.WithAuditLog(a.auditLog),
		multisig.WithTx(ledger),
		multisig.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("multisig authority: %w", err)
	}
	a.gate, err = policy.NewDual(owner, nil)
	if err != nil {
		return nil, fmt.Errorf("authorization gate: %w", err)
	}
	a.upgrader, err = policy.NewUpgrader(a.gate, a.authority, a.auditLog,
		policy.WithTx(ledger),
		policy.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("gate upgrader: %w", err)
	}

	if err := a.buildGovernance(ledger, in, log); err != nil {
		return nil, err
	}
	if err := a.buildRegistries(ledger, in, issuer, log, trc); err != nil {
		return nil, err
	}
	if err := seedCredentialType(ctx, a.catalog, owner, typeID, cfg.Ledger.CredentialValidity, log); err != nil {
		return nil, err
	}

	var (
		sessions onboardingservice.SessionStore
		data     onboardingservice.DataStore
	)
	if in.db != nil {
		sessions = onboardingstore.NewPostgresSessions(in.db.DB())
	} else {
		sessions = onboardingstore.NewInMemorySessions()
	}
	if in.redis != nil {
		data = onboardingstore.NewRedisData(in.redis, onboardingstore.DefaultDataPrefix, onboardingstore.WithDataLogger(log))
	} else {
		data = onboardingstore.NewInMemoryData()
	}
	a.onboarding, err = onboardingservice.New(sessions, data, a.credentials, a.gate, a.auditLog,
		onboardingservice.Issuance{
			Issuer:         issuer,
			CredentialType: typeID,
			Validity:       cfg.Ledger.CredentialValidity,
		},
		onboardingservice.WithTx(ledger),
		onboardingservice.WithLogger(log),
		onboardingservice.WithMetrics(a.metrics),
		onboardingservice.WithTracer(trc),
		onboardingservice.WithTenants(a.tenants),
		onboardingservice.WithGrants(a.grants),
		onboardingservice.WithGuard(a.emergency),
	)
	if err != nil {
		return nil, fmt.Errorf("onboarding orchestrator: %w", err)
	}

	a.admin = admin.NewService(a.auditLog, a.tenants, a.catalog, a.emergency, a.gate)
	return a, nil
}

func (a *app) buildGovernance(ledger tx.Runner, in *infra, log *slog.Logger) error {
	var (
		grants grantservice.Store
		flags  emergency.FlagStore
	)
	if in.db != nil {
		grants = grantstore.NewPostgres(in.db.DB())
	} else {
		grants = grantstore.NewInMemory()
	}
	if in.redis != nil {
		flags = emergencystore.NewRedis(in.redis, emergencystore.DefaultKey)
	} else {
		flags = emergencystore.NewInMemory()
	}

	var err error
	a.grants, err = grantservice.New(grants, a.gate, a.auditLog,
		grantservice.WithTx(ledger),
		grantservice.WithLogger(log),
	)
	if err != nil {
		return fmt.Errorf("authorization manager: %w", err)
	}
	a.emergency, err = emergency.New(flags, a.authority, a.auditLog,
		emergency.WithTx(ledger),
		emergency.WithLogger(log),
		emergency.WithMetrics(a.metrics),
	)
	if err != nil {
		return fmt.Errorf("emergency control: %w", err)
	}
	return nil
}

func (a *app) buildRegistries(ledger tx.Runner, in *infra, issuer id.Identity, log *slog.Logger, trc tracer.Tracer) error {
	var (
		tenants     tenantservice.Store
		types       typeservice.Store
		credentials credentialservice.Store
	)
	if in.db != nil {
		tenants = tenantstore.NewPostgres(in.db.DB())
		types = typestore.NewPostgres(in.db.DB())
		credentials = credentialstore.NewPostgres(in.db.DB())
	} else {
		tenants = tenantstore.NewInMemory()
		types = typestore.NewInMemory()
		credentials = credentialstore.NewInMemory()
	}

	var err error
	a.tenants, err = tenantservice.New(tenants, a.gate, a.auditLog,
		tenantservice.WithTx(ledger),
		tenantservice.WithLogger(log),
		tenantservice.WithMetrics(a.metrics),
		tenantservice.WithGuard(a.emergency),
	)
	if err != nil {
		return fmt.Errorf("tenant registry: %w", err)
	}
	a.catalog, err = typeservice.New(types, a.gate, a.auditLog,
		typeservice.WithTx(ledger),
		typeservice.WithLogger(log),
		typeservice.WithGrants(a.grants),
	)
	if err != nil {
		return fmt.Errorf("credential type catalog: %w", err)
	}
	a.credentials, err = credentialservice.New(credentials, a.gate, a.auditLog,
		credentialservice.WithTx(ledger),
		credentialservice.WithLogger(log),
		credentialservice.WithMetrics(a.metrics),
		credentialservice.WithGrants(a.grants),
		credentialservice.WithCatalog(a.catalog),
		credentialservice.WithGuard(a.emergency),
		credentialservice.WithTrustedWriter(issuer),
	)
	if err != nil {
		return fmt.Errorf("credential service: %w", err)
	}
	a.compliance, err = compliance.New(a.credentials, a.catalog, a.tenants,
		compliance.WithTracer(trc),
		compliance.WithLogger(log),
		compliance.WithMetrics(a.metrics),
	)
	if err != nil {
		return fmt.Errorf("compliance checker: %w", err)
	}
	return nil
}

// signerSet returns the configured multisig signers. Without a signer set
// the owner alone forms a 1-of-1 authority, so emergency control and the
// gate upgrade stay owner-operated until signers are configured.
func signerSet(cfg config.Server, owner id.Identity) ([]id.Identity, int, error) {
	if !cfg.MultisigEnabled() {
		return []id.Identity{owner}, 1, nil
	}
	signers := make([]id.Identity, 0, len(cfg.Ledger.Signers))
	for _, raw := range cfg.Ledger.Signers {
		signer, err := id.ParseIdentity(raw)
		if err != nil {
			return nil, 0, fmt.Errorf("LEDGER_SIGNERS: %w", err)
		}
		signers = append(signers, signer)
	}
	return signers, cfg.Ledger.Threshold, nil
}

// seedCredentialType registers the type onboarding issues when the catalog
// does not hold it yet. A restart against a persistent store keeps the
// existing definition.
func seedCredentialType(ctx context.Context, catalog *typeservice.Catalog, owner id.Identity, typeID id.CredentialTypeID, validity time.Duration, log *slog.Logger) error {
	_, err := catalog.Get(ctx, typeID)
	if err == nil {
		return nil
	}
	if !dErrors.HasCode(err, dErrors.CodeNotFound) {
		return fmt.Errorf("lookup onboarding credential type: %w", err)
	}
	_, err = catalog.Register(ctx, owner, typeID, typemodels.Definition{
		Name:                  "KYC identity",
		Category:              typemodels.CategoryIdentity,
		RequiredFields:        []string{"did", "session_id"},
		OptionalFields:        []string{"investor_type", "country", "tenant_id"},
		ValidityPeriod:        validity,
		RequiresDocumentProof: true,
	})
	if err != nil {
		return fmt.Errorf("seed onboarding credential type: %w", err)
	}
	log.Info("seeded onboarding credential type", "credential_type", typeID)
	return nil
}
