//go:build integration

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"veriledger/internal/onboarding/models"
	"veriledger/internal/onboarding/store"
	"veriledger/internal/sentinel"
	"veriledger/pkg/platform/tx"
	"veriledger/pkg/testutil/containers"
)

type PostgresSessionsSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresSessions
}

func TestPostgresSessionsSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresSessionsSuite))
}

func (s *PostgresSessionsSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgresSessions(s.postgres.DB)
}

func (s *PostgresSessionsSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "onboarding_sessions"))
}

func (s *PostgresSessionsSuite) TestLifecycle() {
	ctx := context.Background()
	start := time.Now().UTC().Truncate(time.Microsecond)
	session, err := models.NewSession("0xinvestor", "acme", start)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(ctx, session))

	second, err := models.NewSession("0xinvestor", "", start.Add(time.Second))
	s.Require().NoError(err)
	s.ErrorIs(s.store.Create(ctx, second), sentinel.ErrAlreadyExists, "unique active index")

	_, err = session.Complete(models.StepRegistration, start.Add(time.Minute))
	s.Require().NoError(err)
	s.Require().NoError(s.store.Update(ctx, session))

	found, err := s.store.FindActiveBySubject(ctx, "0xinvestor")
	s.Require().NoError(err)
	s.Equal(session.ID, found.ID)
	s.Equal(models.StepInvestorTypeSelection, found.CurrentStep)
	s.Equal([]models.Step{models.StepRegistration}, found.CompletedSteps)
	s.Equal(session.UpdatedAt, found.UpdatedAt.UTC())

	s.Require().NoError(session.Fail("sanctions hit", start.Add(2*time.Minute)))
	s.Require().NoError(s.store.Update(ctx, session))
	_, err = s.store.FindActiveBySubject(ctx, "0xinvestor")
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.Require().NoError(s.store.Create(ctx, second))
	latest, err := s.store.FindLatestBySubject(ctx, "0xinvestor")
	s.Require().NoError(err)
	s.Equal(second.ID, latest.ID)

	failed, err := s.store.FindByID(ctx, session.ID)
	s.Require().NoError(err)
	s.False(failed.Active)
	s.Equal("sanctions hit", failed.FailureReason)
}

func (s *PostgresSessionsSuite) TestRollbackDiscardsCreate() {
	ledger := tx.NewLedger(tx.WithDB(s.postgres.DB))
	session, err := models.NewSession("0xrollback", "", time.Now().UTC())
	s.Require().NoError(err)

	err = ledger.RunInTx(context.Background(), func(ctx context.Context) error {
		if err := s.store.Create(ctx, session); err != nil {
			return err
		}
		return errors.New("abort")
	})
	s.Require().Error(err)

	_, err = s.store.FindByID(context.Background(), session.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
