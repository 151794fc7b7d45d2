package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the ledger-wide Prometheus collectors.
type Metrics struct {
	TenantsCreated      prometheus.Counter
	TenantStatusChanges *prometheus.CounterVec

	CredentialsIssued  *prometheus.CounterVec
	CredentialsRevoked prometheus.Counter
	DIDsRegistered     prometheus.Counter

	SessionsStarted  prometheus.Counter
	SessionsFinished *prometheus.CounterVec
	StepsCompleted   *prometheus.CounterVec
	ActiveSessions   prometheus.Gauge

	ComplianceChecks *prometheus.CounterVec
	EmergencyActive  prometheus.Gauge

	EndpointLatency *prometheus.HistogramVec
}

var (
	instance *Metrics
	once     sync.Once
)

// New returns the process-wide collectors, registering them on first use.
func New() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			TenantsCreated: promauto.NewCounter(prometheus.CounterOpts{
				Name: "veriledger_tenants_created_total",
				Help: "Total number of tenants created",
			}),
			TenantStatusChanges: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "veriledger_tenant_status_changes_total",
				Help: "Tenant activations and deactivations, labeled by resulting status",
			}, []string{"status"}),
			CredentialsIssued: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "veriledger_credentials_issued_total",
				Help: "Total number of credentials issued, labeled by credential type",
			}, []string{"type"}),
			CredentialsRevoked: promauto.NewCounter(prometheus.CounterOpts{
				Name: "veriledger_credentials_revoked_total",
				Help: "Total number of credentials revoked",
			}),
			DIDsRegistered: promauto.NewCounter(prometheus.CounterOpts{
				Name: "veriledger_dids_registered_total",
				Help: "Total number of DID records registered",
			}),
			SessionsStarted: promauto.NewCounter(prometheus.CounterOpts{
				Name: "veriledger_onboarding_sessions_started_total",
				Help: "Total number of onboarding sessions started",
			}),
			SessionsFinished: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "veriledger_onboarding_sessions_finished_total",
				Help: "Onboarding sessions that left the active state, labeled by outcome",
			}, []string{"outcome"}),
			StepsCompleted: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "veriledger_onboarding_steps_completed_total",
				Help: "Onboarding steps completed, labeled by step",
			}, []string{"step"}),
			ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "veriledger_onboarding_active_sessions",
				Help: "Current number of active onboarding sessions",
			}),
			ComplianceChecks: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "veriledger_compliance_checks_total",
				Help: "Compliance checks, labeled by result",
			}, []string{"result"}),
			EmergencyActive: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "veriledger_emergency_active",
				Help: "1 while emergency mode is active",
			}),
			EndpointLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "veriledger_endpoint_latency_seconds",
				Help:    "Latency of HTTP endpoints in seconds",
				Buckets: prometheus.DefBuckets,
			}, []string{"endpoint"}),
		}
	})
	return instance
}

// The methods below are nil-safe so services can run without metrics.

func (m *Metrics) IncrementTenantsCreated() {
	if m != nil {
		m.TenantsCreated.Inc()
	}
}

func (m *Metrics) IncrementTenantStatus(status string) {
	if m != nil {
		m.TenantStatusChanges.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) IncrementCredentialsIssued(credentialType string) {
	if m != nil {
		m.CredentialsIssued.WithLabelValues(credentialType).Inc()
	}
}

func (m *Metrics) IncrementCredentialsRevoked() {
	if m != nil {
		m.CredentialsRevoked.Inc()
	}
}

func (m *Metrics) IncrementDIDsRegistered() {
	if m != nil {
		m.DIDsRegistered.Inc()
	}
}

func (m *Metrics) IncrementSessionsStarted() {
	if m != nil {
		m.SessionsStarted.Inc()
		m.ActiveSessions.Inc()
	}
}

// IncrementSessionsFinished records a session leaving the active state.
func (m *Metrics) IncrementSessionsFinished(outcome string) {
	if m != nil {
		m.SessionsFinished.WithLabelValues(outcome).Inc()
		m.ActiveSessions.Dec()
	}
}

func (m *Metrics) IncrementStepsCompleted(step string) {
	if m != nil {
		m.StepsCompleted.WithLabelValues(step).Inc()
	}
}

func (m *Metrics) IncrementComplianceChecks(compliant bool) {
	if m == nil {
		return
	}
	result := "non_compliant"
	if compliant {
		result = "compliant"
	}
	m.ComplianceChecks.WithLabelValues(result).Inc()
}

func (m *Metrics) SetEmergencyActive(active bool) {
	if m == nil {
		return
	}
	if active {
		m.EmergencyActive.Set(1)
		return
	}
	m.EmergencyActive.Set(0)
}

// ObserveEndpointLatency records the latency for a given endpoint.
func (m *Metrics) ObserveEndpointLatency(endpoint string, durationSeconds float64) {
	if m != nil {
		m.EndpointLatency.WithLabelValues(endpoint).Observe(durationSeconds)
	}
}
