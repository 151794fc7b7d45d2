package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"veriledger/internal/governance/authorization/models"
	"veriledger/internal/sentinel"
	id "veriledger/pkg/domain"
	"veriledger/pkg/platform/tx"
)

// PostgresStore persists grants in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed grant store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const grantColumns = `subject, permissions, granted_by, granted_at, updated_at`

func (s *PostgresStore) Find(ctx context.Context, subject id.Identity) (*models.Grant, error) {
	row := tx.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+grantColumns+` FROM authorization_grants WHERE subject = $1`, subject.String())
	g, err := scanGrant(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find grant: %w", err)
	}
	return g, nil
}

func (s *PostgresStore) Save(ctx context.Context, grant *models.Grant) error {
	query := `
		INSERT INTO authorization_grants (subject, permissions, granted_by, granted_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (subject) DO UPDATE
		SET permissions = EXCLUDED.permissions, granted_by = EXCLUDED.granted_by, updated_at = EXCLUDED.updated_at
	`
	_, err := tx.Executor(ctx, s.db).ExecContext(ctx, query,
		grant.Subject.String(),
		grant.PermissionNames(),
		grant.GrantedBy.String(),
		grant.GrantedAt,
		grant.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save grant: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, subject id.Identity) error {
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx,
		`DELETE FROM authorization_grants WHERE subject = $1`, subject.String())
	if err != nil {
		return fmt.Errorf("delete grant: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete grant rows: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Grant, error) {
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx,
		`SELECT `+grantColumns+` FROM authorization_grants ORDER BY subject`)
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Grant, 0)
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan grant: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate grants: %w", err)
	}
	return out, nil
}

type grantRow interface {
	Scan(dest ...any) error
}

func scanGrant(row grantRow) (*models.Grant, error) {
	var (
		g                  models.Grant
		subject, grantedBy string
		permissions        string
	)
	if err := row.Scan(&subject, &permissions, &grantedBy, &g.GrantedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	g.Subject = id.Identity(subject)
	g.GrantedBy = id.Identity(grantedBy)
	for _, p := range strings.Split(permissions, ",") {
		if p != "" {
			g.Permissions = append(g.Permissions, models.Permission(p))
		}
	}
	return &g, nil
}
