// Package admin serves operator monitoring endpoints. Routes are expected to
// be mounted behind the admin token middleware.
package admin

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	id "veriledger/pkg/domain"
	dErrors "veriledger/pkg/domain-errors"
	"veriledger/pkg/platform/audit"
	"veriledger/pkg/platform/httputil"
	adminmw "veriledger/pkg/platform/middleware/admin"
	"veriledger/pkg/requestcontext"
)

// Handler handles admin monitoring endpoints.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

func New(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts routes relative to the admin prefix.
func (h *Handler) Register(r chi.Router) {
	r.Get("/stats", h.HandleGetStats)
	r.Get("/audit", h.HandleListAudit)
}

func (h *Handler) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats, err := h.service.GetStats(ctx)
	if err != nil {
		httputil.WriteFailure(ctx, w, h.logger, "failed to get stats", err)
		return
	}
	h.logger.InfoContext(ctx, "admin stats retrieved",
		"request_id", requestcontext.RequestID(ctx),
		"admin_actor", adminmw.ActorID(ctx),
	)
	httputil.WriteJSON(w, http.StatusOK, StatsResponse{
		AuditEntries:    stats.AuditEntries,
		Tenants:         stats.Tenants,
		ActiveTenants:   stats.ActiveTenants,
		CredentialTypes: stats.CredentialTypes,
		EmergencyMode:   stats.EmergencyMode,
		GateMode:        string(stats.GateMode),
		Timestamp:       stats.Timestamp.UTC(),
	})
}

// HandleListAudit handles GET /audit?actor=&action=&tenant=&limit=.
func (h *Handler) HandleListAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter, err := parseFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	entries, err := h.service.RecentAuditEvents(ctx, filter)
	if err != nil {
		httputil.WriteFailure(ctx, w, h.logger, "failed to list audit entries", err)
		return
	}
	h.logger.InfoContext(ctx, "admin audit entries retrieved",
		"request_id", requestcontext.RequestID(ctx),
		"admin_actor", adminmw.ActorID(ctx),
		"count", len(entries),
	)
	httputil.WriteJSON(w, http.StatusOK, httputil.NewList(entries, toEntryResponse))
}

func parseFilter(r *http.Request) (audit.Filter, error) {
	q := r.URL.Query()
	var filter audit.Filter
	if raw := q.Get("actor"); raw != "" {
		actor, err := id.ParseIdentity(raw)
		if err != nil {
			return filter, err
		}
		filter.Actor = actor
	}
	if raw := q.Get("tenant"); raw != "" {
		tenantID, err := id.ParseTenantID(raw)
		if err != nil {
			return filter, err
		}
		filter.TenantID = tenantID
	}
	filter.Action = audit.Action(q.Get("action"))
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return filter, dErrors.New(dErrors.CodeValidation, "limit must be a positive integer")
		}
		filter.Limit = limit
	}
	return filter, nil
}

type StatsResponse struct {
	AuditEntries    int64     `json:"audit_entries"`
	Tenants         int       `json:"tenants"`
	ActiveTenants   int       `json:"active_tenants"`
	CredentialTypes int       `json:"credential_types"`
	EmergencyMode   bool      `json:"emergency_mode"`
	GateMode        string    `json:"gate_mode"`
	Timestamp       time.Time `json:"timestamp"`
}

type EntryResponse struct {
	ID           string            `json:"id"`
	Sequence     int64             `json:"sequence"`
	Actor        string            `json:"actor"`
	Action       string            `json:"action"`
	Detail       map[string]string `json:"detail,omitempty"`
	TenantID     string            `json:"tenant_id,omitempty"`
	Jurisdiction string            `json:"jurisdiction,omitempty"`
	RequestID    string            `json:"request_id,omitempty"`
	Timestamp    time.Time         `json:"timestamp"`
}

func toEntryResponse(e *audit.Entry) EntryResponse {
	return EntryResponse{
		ID:           e.ID.String(),
		Sequence:     e.Sequence,
		Actor:        e.Actor.String(),
		Action:       string(e.Action),
		Detail:       e.Detail,
		TenantID:     e.TenantID.String(),
		Jurisdiction: e.Jurisdiction,
		RequestID:    e.RequestID,
		Timestamp:    e.Timestamp.UTC(),
	}
}
