package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"veriledger/internal/credential/models"
	"veriledger/internal/platform/database"
	"veriledger/internal/sentinel"
	id "veriledger/pkg/domain"
	"veriledger/pkg/platform/tx"
)

// PostgresStore persists credentials and DIDs in PostgreSQL. A zero expiry
// or revocation time is stored as NULL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed credential store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const (
	credentialColumns = `id, issuer, subject, type, data, issued_at, expires_at, revoked, revoked_at`
	didColumns        = `id, subject, document, active, created_at, updated_at`
)

func (s *PostgresStore) CreateCredential(ctx context.Context, c *models.Credential) error {
	_, err := tx.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO credentials (`+credentialColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, c.ID.String(), c.Issuer.String(), c.Subject.String(), c.Type.String(), c.Data,
		c.IssuedAt, nullTime(c.ExpiresAt), c.Revoked, nullTime(c.RevokedAt))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyExists
		}
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

// UpdateCredential writes the revocation state, the only mutable part.
func (s *PostgresStore) UpdateCredential(ctx context.Context, c *models.Credential) error {
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx,
		`UPDATE credentials SET revoked = $2, revoked_at = $3 WHERE id = $1`,
		c.ID.String(), c.Revoked, nullTime(c.RevokedAt))
	if err != nil {
		return fmt.Errorf("update credential: %w", err)
	}
	return requireRow(res, "update credential")
}

func (s *PostgresStore) FindCredential(ctx context.Context, credID id.CredentialID) (*models.Credential, error) {
	row := tx.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+credentialColumns+` FROM credentials WHERE id = $1`, credID.String())
	c, err := scanCredential(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find credential: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) ListBySubject(ctx context.Context, subject id.Identity) ([]*models.Credential, error) {
	return s.listCredentials(ctx, `subject = $1`, subject.String())
}

func (s *PostgresStore) ListByIssuer(ctx context.Context, issuer id.Identity) ([]*models.Credential, error) {
	return s.listCredentials(ctx, `issuer = $1`, issuer.String())
}

func (s *PostgresStore) CreateDID(ctx context.Context, d *models.DIDRecord) error {
	_, err := tx.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO dids (`+didColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, d.ID.String(), d.Subject.String(), d.Document, d.Active, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyExists
		}
		return fmt.Errorf("insert did: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateDID(ctx context.Context, d *models.DIDRecord) error {
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx,
		`UPDATE dids SET document = $2, active = $3, updated_at = $4 WHERE id = $1`,
		d.ID.String(), d.Document, d.Active, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update did: %w", err)
	}
	return requireRow(res, "update did")
}

func (s *PostgresStore) FindDID(ctx context.Context, did id.DID) (*models.DIDRecord, error) {
	row := tx.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+didColumns+` FROM dids WHERE id = $1`, did.String())
	d, err := scanDID(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find did: %w", err)
	}
	return d, nil
}

func (s *PostgresStore) ListDIDsBySubject(ctx context.Context, subject id.Identity) ([]*models.DIDRecord, error) {
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx,
		`SELECT `+didColumns+` FROM dids WHERE subject = $1 ORDER BY created_at, id`, subject.String())
	if err != nil {
		return nil, fmt.Errorf("list dids: %w", err)
	}
	defer rows.Close()

	out := make([]*models.DIDRecord, 0)
	for rows.Next() {
		d, err := scanDID(rows)
		if err != nil {
			return nil, fmt.Errorf("scan did: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dids: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) listCredentials(ctx context.Context, where string, arg any) ([]*models.Credential, error) {
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx,
		`SELECT `+credentialColumns+` FROM credentials WHERE `+where+` ORDER BY issued_at, id`, arg)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Credential, 0)
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credentials: %w", err)
	}
	return out, nil
}

type row interface {
	Scan(dest ...any) error
}

func scanCredential(r row) (*models.Credential, error) {
	var (
		c                              models.Credential
		credID, issuer, subject, typed string
		expiresAt, revokedAt           sql.NullTime
	)
	if err := r.Scan(&credID, &issuer, &subject, &typed, &c.Data, &c.IssuedAt,
		&expiresAt, &c.Revoked, &revokedAt); err != nil {
		return nil, err
	}
	c.ID = id.CredentialID(credID)
	c.Issuer = id.Identity(issuer)
	c.Subject = id.Identity(subject)
	c.Type = id.CredentialTypeID(typed)
	if expiresAt.Valid {
		c.ExpiresAt = expiresAt.Time
	}
	if revokedAt.Valid {
		c.RevokedAt = revokedAt.Time
	}
	return &c, nil
}

func scanDID(r row) (*models.DIDRecord, error) {
	var (
		d            models.DIDRecord
		did, subject string
	)
	if err := r.Scan(&did, &subject, &d.Document, &d.Active, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	d.ID = id.DID(did)
	d.Subject = id.Identity(subject)
	return &d, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func requireRow(res sql.Result, action string) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows: %w", action, err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
