package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"veriledger/internal/platform/database"
	"veriledger/internal/sentinel"
	"veriledger/internal/tenant/models"
	id "veriledger/pkg/domain"
	"veriledger/pkg/platform/tx"
)

// PostgresStore persists tenants in PostgreSQL. List-valued columns are
// stored as JSONB arrays.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed tenant store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const tenantColumns = `id, name, admin, required_credential_types, max_risk_score, jurisdictions, custom_fields, active, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, t *models.Tenant) error {
	args, err := tenantArgs(t)
	if err != nil {
		return err
	}
	_, err = tx.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO tenants (`+tenantColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, args...)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyExists
		}
		return fmt.Errorf("insert tenant: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, t *models.Tenant) error {
	args, err := tenantArgs(t)
	if err != nil {
		return err
	}
	// created_at is immutable; drop it from the positional arguments.
	args = append(args[:8], args[9])
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx, `
		UPDATE tenants
		SET name = $2, admin = $3, required_credential_types = $4, max_risk_score = $5,
		    jurisdictions = $6, custom_fields = $7, active = $8, updated_at = $9
		WHERE id = $1
	`, args...)
	if err != nil {
		return fmt.Errorf("update tenant: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update tenant rows: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, tenantID id.TenantID) (*models.Tenant, error) {
	row := tx.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, tenantID.String())
	t, err := scanTenant(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find tenant: %w", err)
	}
	return t, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Tenant, error) {
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Tenant, 0)
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tenants: %w", err)
	}
	return out, nil
}

func tenantArgs(t *models.Tenant) ([]any, error) {
	types, err := json.Marshal(nonNil(t.RequiredCredentialTypes))
	if err != nil {
		return nil, fmt.Errorf("marshal required types: %w", err)
	}
	jurisdictions, err := json.Marshal(nonNil(t.Jurisdictions))
	if err != nil {
		return nil, fmt.Errorf("marshal jurisdictions: %w", err)
	}
	fields, err := json.Marshal(nonNil(t.CustomFields))
	if err != nil {
		return nil, fmt.Errorf("marshal custom fields: %w", err)
	}
	return []any{
		t.ID.String(), t.Name, t.Admin.String(), types, t.MaxRiskScore,
		jurisdictions, fields, t.Active, t.CreatedAt, t.UpdatedAt,
	}, nil
}

type tenantRow interface {
	Scan(dest ...any) error
}

func scanTenant(row tenantRow) (*models.Tenant, error) {
	var (
		t                            models.Tenant
		tenantID, admin              string
		types, jurisdictions, fields []byte
	)
	if err := row.Scan(&tenantID, &t.Name, &admin, &types, &t.MaxRiskScore,
		&jurisdictions, &fields, &t.Active, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.ID = id.TenantID(tenantID)
	t.Admin = id.Identity(admin)
	if err := json.Unmarshal(types, &t.RequiredCredentialTypes); err != nil {
		return nil, fmt.Errorf("decode required types: %w", err)
	}
	if err := json.Unmarshal(jurisdictions, &t.Jurisdictions); err != nil {
		return nil, fmt.Errorf("decode jurisdictions: %w", err)
	}
	if err := json.Unmarshal(fields, &t.CustomFields); err != nil {
		return nil, fmt.Errorf("decode custom fields: %w", err)
	}
	return &t, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
