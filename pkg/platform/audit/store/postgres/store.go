package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	id "veriledger/pkg/domain"
	"veriledger/pkg/platform/audit"
	"veriledger/pkg/platform/tx"
)

const maxListLimit = 1000

// Store implements audit.Store using PostgreSQL.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append inserts an entry into audit_entries inside the active transaction.
func (s *Store) Append(ctx context.Context, entry *audit.Entry) error {
	detail, err := json.Marshal(entry.Detail)
	if err != nil {
		return fmt.Errorf("encode audit detail: %w", err)
	}
	query := `
		INSERT INTO audit_entries (
			id, actor, action, detail, tenant_id, jurisdiction, request_id, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING seq
	`
	err = tx.Executor(ctx, s.db).QueryRowContext(ctx, query,
		entry.ID,
		entry.Actor.String(),
		string(entry.Action),
		detail,
		entry.TenantID.String(),
		entry.Jurisdiction,
		entry.RequestID,
		entry.Timestamp,
	).Scan(&entry.Sequence)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// List returns entries matching filter, newest first.
func (s *Store) List(ctx context.Context, filter audit.Filter) ([]*audit.Entry, error) {
	var (
		clauses []string
		args    []any
	)
	if !filter.Actor.IsZero() {
		args = append(args, filter.Actor.String())
		clauses = append(clauses, fmt.Sprintf("actor = $%d", len(args)))
	}
	if filter.Action != "" {
		args = append(args, string(filter.Action))
		clauses = append(clauses, fmt.Sprintf("action = $%d", len(args)))
	}
	if !filter.TenantID.IsZero() {
		args = append(args, filter.TenantID.String())
		clauses = append(clauses, fmt.Sprintf("tenant_id = $%d", len(args)))
	}
	limit := filter.Limit
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	args = append(args, limit)

	query := `
		SELECT id, seq, actor, action, detail, tenant_id, jurisdiction, request_id, created_at
		FROM audit_entries`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY seq DESC LIMIT $%d", len(args))

	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := tx.Executor(ctx, s.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count audit entries: %w", err)
	}
	return n, nil
}

func scanEntries(rows *sql.Rows) ([]*audit.Entry, error) {
	entries := make([]*audit.Entry, 0)
	for rows.Next() {
		var (
			e        audit.Entry
			actor    string
			action   string
			detail   []byte
			tenantID string
		)
		if err := rows.Scan(&e.ID, &e.Sequence, &actor, &action, &detail, &tenantID, &e.Jurisdiction, &e.RequestID, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.Actor = id.Identity(actor)
		e.Action = audit.Action(action)
		e.TenantID = id.TenantID(tenantID)
		if len(detail) > 0 {
			if err := json.Unmarshal(detail, &e.Detail); err != nil {
				return nil, fmt.Errorf("decode audit detail: %w", err)
			}
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}
