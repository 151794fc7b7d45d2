package audit

import (
	"time"

	"github.com/google/uuid"

	id "veriledger/pkg/domain"
)

// Action is the audit action code. Codes are stable strings consumed by the
// off-chain indexer, so never rename one.
type Action string

const (
	ActionTenantCreated        Action = "tenant_created"
	ActionTenantUpdated        Action = "tenant_updated"
	ActionTenantDeactivated    Action = "tenant_deactivated"
	ActionTenantReactivated    Action = "tenant_reactivated"
	ActionCredentialTypeAdded  Action = "credential_type_registered"
	ActionCredentialTypeStatus Action = "credential_type_status_changed"
	ActionCredentialTypeUpdate Action = "credential_type_updated"
	ActionGrantCreated         Action = "authorization_granted"
	ActionGrantRevoked         Action = "authorization_revoked"
	ActionPermissionRevoked    Action = "permission_revoked"
	ActionGateUpgraded         Action = "gate_upgraded"
	ActionProposalCreated      Action = "multisig_proposal_created"
	ActionProposalApproved     Action = "multisig_proposal_approved"
	ActionEmergencyActivated   Action = "emergency_activated"
	ActionEmergencyDeactivated Action = "emergency_deactivated"
	ActionCredentialIssued     Action = "credential_issued"
	ActionCredentialRevoked    Action = "credential_revoked"
	ActionDIDRegistered        Action = "did_registered"
	ActionDIDUpdated           Action = "did_updated"
	ActionDIDDeactivated       Action = "did_deactivated"
	ActionSessionStarted       Action = "onboarding_session_started"
	ActionStepCompleted        Action = "onboarding_step_completed"
	ActionSessionCompleted     Action = "onboarding_session_completed"
	ActionSessionCancelled     Action = "onboarding_session_cancelled"
	ActionSessionForceComplete Action = "onboarding_session_force_completed"
	ActionSessionForceFailed   Action = "onboarding_session_force_failed"
)

// Entry is one append-only audit record.
type Entry struct {
	ID           uuid.UUID
	Sequence     int64
	Actor        id.Identity
	Action       Action
	Detail       map[string]string
	TenantID     id.TenantID
	Jurisdiction string
	RequestID    string
	Timestamp    time.Time
}

// Filter selects entries for listing. Zero fields match everything.
type Filter struct {
	Actor    id.Identity
	Action   Action
	TenantID id.TenantID
	Limit    int
}

// Matches reports whether e satisfies every non-zero field of f.
func (f Filter) Matches(e *Entry) bool {
	if !f.Actor.IsZero() && e.Actor != f.Actor {
		return false
	}
	if f.Action != "" && e.Action != f.Action {
		return false
	}
	if !f.TenantID.IsZero() && e.TenantID != f.TenantID {
		return false
	}
	return true
}
