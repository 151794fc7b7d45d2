package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"veriledger/internal/credentialtype/models"
	"veriledger/internal/platform/database"
	"veriledger/internal/sentinel"
	id "veriledger/pkg/domain"
	"veriledger/pkg/platform/tx"
)

// PostgresStore persists the catalog in PostgreSQL. Validity periods are
// stored in whole seconds.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed catalog store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const typeColumns = `id, name, category, required_fields, optional_fields, validity_seconds,
	requires_biometric, requires_document_proof, requires_third_party, max_issuance,
	status, created_by, version, referenced, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, ct *models.CredentialType) error {
	args, err := typeArgs(ct)
	if err != nil {
		return err
	}
	_, err = tx.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO credential_types (`+typeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`, args...)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyExists
		}
		return fmt.Errorf("insert credential type: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, ct *models.CredentialType) error {
	args, err := typeArgs(ct)
	if err != nil {
		return err
	}
	// id, created_by and created_at never change.
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx, `
		UPDATE credential_types
		SET name = $2, category = $3, required_fields = $4, optional_fields = $5,
		    validity_seconds = $6, requires_biometric = $7, requires_document_proof = $8,
		    requires_third_party = $9, max_issuance = $10, status = $11, version = $12,
		    referenced = $13, updated_at = $14
		WHERE id = $1
	`, args[0], args[1], args[2], args[3], args[4], args[5], args[6], args[7],
		args[8], args[9], args[10], args[12], args[13], args[15])
	if err != nil {
		return fmt.Errorf("update credential type: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update credential type rows: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, typeID id.CredentialTypeID) (*models.CredentialType, error) {
	row := tx.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+typeColumns+` FROM credential_types WHERE id = $1`, typeID.String())
	ct, err := scanType(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find credential type: %w", err)
	}
	return ct, nil
}

func (s *PostgresStore) List(ctx context.Context, category models.Category) ([]*models.CredentialType, error) {
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx,
		`SELECT `+typeColumns+` FROM credential_types
		 WHERE ($1 = '' OR category = $1) ORDER BY id`, string(category))
	if err != nil {
		return nil, fmt.Errorf("list credential types: %w", err)
	}
	defer rows.Close()

	out := make([]*models.CredentialType, 0)
	for rows.Next() {
		ct, err := scanType(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credential type: %w", err)
		}
		out = append(out, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credential types: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) IssuedCount(ctx context.Context, typeID id.CredentialTypeID, subject id.Identity) (int, error) {
	var n int
	err := tx.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT issued FROM credential_issuance_counts WHERE type_id = $1 AND subject = $2`,
		typeID.String(), subject.String()).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read issuance count: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) IncrementIssued(ctx context.Context, typeID id.CredentialTypeID, subject id.Identity) error {
	_, err := tx.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO credential_issuance_counts (type_id, subject, issued)
		VALUES ($1, $2, 1)
		ON CONFLICT (type_id, subject) DO UPDATE SET issued = credential_issuance_counts.issued + 1
	`, typeID.String(), subject.String())
	if err != nil {
		return fmt.Errorf("increment issuance count: %w", err)
	}
	return nil
}

func typeArgs(ct *models.CredentialType) ([]any, error) {
	def := ct.Definition
	required, err := json.Marshal(nonNil(def.RequiredFields))
	if err != nil {
		return nil, fmt.Errorf("marshal required fields: %w", err)
	}
	optional, err := json.Marshal(nonNil(def.OptionalFields))
	if err != nil {
		return nil, fmt.Errorf("marshal optional fields: %w", err)
	}
	return []any{
		ct.ID.String(), def.Name, string(def.Category), required, optional,
		int64(def.ValidityPeriod / time.Second), def.RequiresBiometric, def.RequiresDocumentProof,
		def.RequiresThirdParty, def.MaxIssuance, string(ct.Status), ct.CreatedBy.String(),
		ct.Version, ct.Referenced, ct.CreatedAt, ct.UpdatedAt,
	}, nil
}

type typeRow interface {
	Scan(dest ...any) error
}

func scanType(row typeRow) (*models.CredentialType, error) {
	var (
		ct                       models.CredentialType
		typeID, category, status string
		createdBy                string
		required, optional       []byte
		validitySeconds          int64
	)
	def := &ct.Definition
	if err := row.Scan(&typeID, &def.Name, &category, &required, &optional, &validitySeconds,
		&def.RequiresBiometric, &def.RequiresDocumentProof, &def.RequiresThirdParty, &def.MaxIssuance,
		&status, &createdBy, &ct.Version, &ct.Referenced, &ct.CreatedAt, &ct.UpdatedAt); err != nil {
		return nil, err
	}
	ct.ID = id.CredentialTypeID(typeID)
	ct.Status = models.Status(status)
	ct.CreatedBy = id.Identity(createdBy)
	def.Category = models.Category(category)
	def.ValidityPeriod = time.Duration(validitySeconds) * time.Second
	if err := json.Unmarshal(required, &def.RequiredFields); err != nil {
		return nil, fmt.Errorf("decode required fields: %w", err)
	}
	if err := json.Unmarshal(optional, &def.OptionalFields); err != nil {
		return nil, fmt.Errorf("decode optional fields: %w", err)
	}
	return &ct, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
