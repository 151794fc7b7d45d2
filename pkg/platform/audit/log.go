package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"maps"
	"time"

	"github.com/google/uuid"

	id "veriledger/pkg/domain"
	dErrors "veriledger/pkg/domain-errors"
	"veriledger/pkg/platform/audit/metrics"
	"veriledger/pkg/platform/audit/outbox"
	"veriledger/pkg/platform/tx"
	"veriledger/pkg/requestcontext"
)

// AggregateType tags outbox rows that carry audit entries.
const AggregateType = "audit"

// Log is the append-only audit ledger. Appends join the caller's unit of work,
// so an entry written by a call that later fails is rolled back with it.
type Log struct {
	store   Store
	outbox  outbox.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Log.
type Option func(*Log)

// WithOutbox stages every entry for the audit stream.
func WithOutbox(store outbox.Store) Option {
	return func(l *Log) {
		l.outbox = store
	}
}

// WithLogger mirrors every entry to the structured log.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Log) {
		l.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Log) {
		l.metrics = m
	}
}

// NewLog creates an audit log over store.
func NewLog(store Store, opts ...Option) (*Log, error) {
	if store == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "audit store is required")
	}
	l := &Log{store: store}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Append records one entry. The entry ID, timestamp and request id are stamped here.
func (l *Log) Append(ctx context.Context, entry Entry) error {
	if entry.Actor.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "audit actor is required")
	}
	if entry.Action == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "audit action is required")
	}
	start := time.Now()

	e := entry
	e.ID = uuid.New()
	if e.Timestamp.IsZero() {
		e.Timestamp = requestcontext.Now(ctx)
	}
	if e.RequestID == "" {
		e.RequestID = requestcontext.RequestID(ctx)
	}
	e.Detail = enrichDetail(ctx, entry.Detail)

	if err := l.store.Append(ctx, &e); err != nil {
		if l.metrics != nil {
			l.metrics.IncPersistFailures()
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to append audit entry")
	}

	if l.outbox != nil {
		payload, err := json.Marshal(toMessage(&e))
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode audit entry")
		}
		ob := outbox.NewEntry(AggregateType, aggregateID(&e), string(e.Action), payload, e.Timestamp)
		if err := l.outbox.Append(ctx, ob); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to stage audit entry")
		}
	}

	if l.metrics != nil {
		l.metrics.ObserveAppendDuration(time.Since(start).Seconds())
	}
	// Entries rolled back with their unit of work are never reported.
	tx.AfterCommit(ctx, func() {
		if l.logger != nil {
			l.logger.InfoContext(ctx, string(e.Action),
				"log_type", "audit",
				"actor", e.Actor.String(),
				"tenant_id", e.TenantID.String(),
				"jurisdiction", e.Jurisdiction,
				"request_id", e.RequestID,
			)
		}
		if l.metrics != nil {
			l.metrics.IncAppended(string(e.Action))
		}
	})
	return nil
}

// List returns entries matching filter, newest first.
func (l *Log) List(ctx context.Context, filter Filter) ([]*Entry, error) {
	entries, err := l.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit entries")
	}
	return entries, nil
}

// ListByActor returns every entry written on behalf of actor.
func (l *Log) ListByActor(ctx context.Context, actor id.Identity) ([]*Entry, error) {
	return l.List(ctx, Filter{Actor: actor})
}

// ListByAction returns every entry with the given action code.
func (l *Log) ListByAction(ctx context.Context, action Action) ([]*Entry, error) {
	return l.List(ctx, Filter{Action: action})
}

// Count returns the number of recorded entries.
func (l *Log) Count(ctx context.Context) (int64, error) {
	n, err := l.store.Count(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count audit entries")
	}
	return n, nil
}

func enrichDetail(ctx context.Context, detail map[string]string) map[string]string {
	out := make(map[string]string, len(detail)+3)
	maps.Copy(out, detail)
	client := requestcontext.ClientInfo(ctx)
	if client.IP != "" {
		out["client_ip"] = client.IP
	}
	if client.Browser != "" {
		out["client_browser"] = client.Browser
	}
	if client.OS != "" {
		out["client_os"] = client.OS
	}
	return out
}

func aggregateID(e *Entry) string {
	if !e.TenantID.IsZero() {
		return e.TenantID.String()
	}
	return e.Actor.String()
}

// Message is the wire shape of an entry on the audit stream.
type Message struct {
	ID           string            `json:"id"`
	Actor        string            `json:"actor"`
	Action       string            `json:"action"`
	Detail       map[string]string `json:"detail,omitempty"`
	TenantID     string            `json:"tenant_id,omitempty"`
	Jurisdiction string            `json:"jurisdiction,omitempty"`
	RequestID    string            `json:"request_id,omitempty"`
	Timestamp    time.Time         `json:"timestamp"`
}

func toMessage(e *Entry) Message {
	return Message{
		ID:           e.ID.String(),
		Actor:        e.Actor.String(),
		Action:       string(e.Action),
		Detail:       e.Detail,
		TenantID:     e.TenantID.String(),
		Jurisdiction: e.Jurisdiction,
		RequestID:    e.RequestID,
		Timestamp:    e.Timestamp,
	}
}
