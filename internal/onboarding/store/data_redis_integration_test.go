//go:build integration

package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"veriledger/internal/onboarding/store"
	id "veriledger/pkg/domain"
	"veriledger/pkg/platform/tx"
	"veriledger/pkg/testutil/containers"
)

type RedisDataSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *store.RedisData
}

func TestRedisDataSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisDataSuite))
}

func (s *RedisDataSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = store.NewRedisData(s.redis.Client, "")
}

func (s *RedisDataSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisDataSuite) TestPutMergesFields() {
	ctx := context.Background()
	sessionID := id.SessionID(uuid.New())

	s.Require().NoError(s.store.Put(ctx, sessionID, map[string]string{"email": "ada@example.com"}))
	s.Require().NoError(s.store.Put(ctx, sessionID, map[string]string{"country": "US"}))

	fields, err := s.store.Get(ctx, sessionID)
	s.Require().NoError(err)
	s.Equal(map[string]string{"email": "ada@example.com", "country": "US"}, fields)

	keys, err := s.redis.Client.Keys(ctx, store.DefaultDataPrefix+"*").Result()
	s.Require().NoError(err)
	s.Len(keys, 1)
}

func (s *RedisDataSuite) TestRollbackRestoresPreviousValues() {
	ledger := tx.NewLedger()
	sessionID := id.SessionID(uuid.New())
	s.Require().NoError(s.store.Put(context.Background(), sessionID, map[string]string{"country": "US"}))

	err := ledger.RunInTx(context.Background(), func(ctx context.Context) error {
		if err := s.store.Put(ctx, sessionID, map[string]string{"country": "FR", "age": "30"}); err != nil {
			return err
		}
		return errors.New("abort")
	})
	s.Require().Error(err)

	fields, err := s.store.Get(context.Background(), sessionID)
	s.Require().NoError(err)
	s.Equal(map[string]string{"country": "US"}, fields)
}

func (s *RedisDataSuite) TestMissingSessionIsEmpty() {
	fields, err := s.store.Get(context.Background(), id.SessionID(uuid.New()))
	s.Require().NoError(err)
	s.Empty(fields)
}
