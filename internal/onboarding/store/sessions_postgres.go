package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"veriledger/internal/onboarding/models"
	"veriledger/internal/platform/database"
	"veriledger/internal/sentinel"
	id "veriledger/pkg/domain"
	"veriledger/pkg/platform/tx"
)

// PostgresSessions persists sessions in PostgreSQL. A partial unique index
// enforces one active session per subject.
type PostgresSessions struct {
	db *sql.DB
}

func NewPostgresSessions(db *sql.DB) *PostgresSessions {
	return &PostgresSessions{db: db}
}

const sessionColumns = `id, subject, tenant_id, current_step, completed_steps, active,
	failure_reason, did, credential_id, started_at, updated_at`

func (s *PostgresSessions) Create(ctx context.Context, session *models.Session) error {
	completed, err := json.Marshal(nonNilSteps(session.CompletedSteps))
	if err != nil {
		return fmt.Errorf("marshal completed steps: %w", err)
	}
	_, err = tx.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO onboarding_sessions (`+sessionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, uuid.UUID(session.ID), session.Subject.String(), session.TenantID.String(),
		string(session.CurrentStep), completed, session.Active, session.FailureReason,
		session.DID.String(), session.CredentialID.String(), session.StartedAt, session.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyExists
		}
		return fmt.Errorf("insert onboarding session: %w", err)
	}
	return nil
}

func (s *PostgresSessions) Update(ctx context.Context, session *models.Session) error {
	completed, err := json.Marshal(nonNilSteps(session.CompletedSteps))
	if err != nil {
		return fmt.Errorf("marshal completed steps: %w", err)
	}
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx, `
		UPDATE onboarding_sessions
		SET current_step = $2, completed_steps = $3, active = $4, failure_reason = $5,
		    did = $6, credential_id = $7, updated_at = $8
		WHERE id = $1
	`, uuid.UUID(session.ID), string(session.CurrentStep), completed, session.Active,
		session.FailureReason, session.DID.String(), session.CredentialID.String(), session.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update onboarding session: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update onboarding session rows: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresSessions) FindByID(ctx context.Context, sessionID id.SessionID) (*models.Session, error) {
	return s.findOne(ctx, `WHERE id = $1`, uuid.UUID(sessionID))
}

func (s *PostgresSessions) FindActiveBySubject(ctx context.Context, subject id.Identity) (*models.Session, error) {
	return s.findOne(ctx, `WHERE subject = $1 AND active`, subject.String())
}

func (s *PostgresSessions) FindLatestBySubject(ctx context.Context, subject id.Identity) (*models.Session, error) {
	return s.findOne(ctx, `WHERE subject = $1 ORDER BY started_at DESC, active DESC LIMIT 1`, subject.String())
}

func (s *PostgresSessions) findOne(ctx context.Context, clause string, arg any) (*models.Session, error) {
	row := tx.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM onboarding_sessions `+clause, arg)
	var (
		session                           models.Session
		sessionID                         uuid.UUID
		subject, tenantID, step, did, cid string
		completed                         []byte
	)
	err := row.Scan(&sessionID, &subject, &tenantID, &step, &completed, &session.Active,
		&session.FailureReason, &did, &cid, &session.StartedAt, &session.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find onboarding session: %w", err)
	}
	session.ID = id.SessionID(sessionID)
	session.Subject = id.Identity(subject)
	session.TenantID = id.TenantID(tenantID)
	session.CurrentStep = models.Step(step)
	session.DID = id.DID(did)
	session.CredentialID = id.CredentialID(cid)
	if err := json.Unmarshal(completed, &session.CompletedSteps); err != nil {
		return nil, fmt.Errorf("decode completed steps: %w", err)
	}
	return &session, nil
}

func nonNilSteps(steps []models.Step) []models.Step {
	if steps == nil {
		return []models.Step{}
	}
	return steps
}
