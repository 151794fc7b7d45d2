package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	id "veriledger/pkg/domain"
	"veriledger/pkg/platform/tx"
)

// DefaultDataPrefix prefixes the per-session KYC hash keys.
const DefaultDataPrefix = "veriledger:kyc:"

// RedisData keeps KYC fields in one hash per session.
type RedisData struct {
	client redis.Cmdable
	prefix string
	logger *slog.Logger
}

// RedisDataOption configures a RedisData.
type RedisDataOption func(*RedisData)

// WithDataLogger sets the logger that reports failed rollback restores.
func WithDataLogger(logger *slog.Logger) RedisDataOption {
	return func(s *RedisData) {
		s.logger = logger
	}
}

// NewRedisData creates a Redis-backed data store. An empty prefix uses
// DefaultDataPrefix.
func NewRedisData(client redis.Cmdable, prefix string, opts ...RedisDataOption) *RedisData {
	if prefix == "" {
		prefix = DefaultDataPrefix
	}
	s := &RedisData{client: client, prefix: prefix, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisData) key(sessionID id.SessionID) string {
	return s.prefix + sessionID.String()
}

// Put writes fields and registers a compensating write restoring the
// previous values of those fields if the unit of work rolls back.
func (s *RedisData) Put(ctx context.Context, sessionID id.SessionID, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	key := s.key(sessionID)
	names := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)*2)
	for name, value := range fields {
		names = append(names, name)
		args = append(args, name, value)
	}
	prev, err := s.client.HMGet(ctx, key, names...).Result()
	if err != nil {
		return fmt.Errorf("read kyc data: %w", err)
	}
	if err := s.client.HSet(ctx, key, args...).Err(); err != nil {
		return fmt.Errorf("write kyc data: %w", err)
	}

	tx.OnRollback(ctx, func() {
		restoreCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), restoreTimeout)
		defer cancel()
		pipe := s.client.TxPipeline()
		for i, name := range names {
			if v, ok := prev[i].(string); ok {
				pipe.HSet(restoreCtx, key, name, v)
			} else {
				pipe.HDel(restoreCtx, key, name)
			}
		}
		if _, err := pipe.Exec(restoreCtx); err != nil && s.logger != nil {
			s.logger.ErrorContext(restoreCtx, "kyc data restore failed",
				"session_id", sessionID.String(),
				"fields", len(names),
				"error", err,
			)
		}
	})
	return nil
}

func (s *RedisData) Get(ctx context.Context, sessionID id.SessionID) (map[string]string, error) {
	fields, err := s.client.HGetAll(ctx, s.key(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("read kyc data: %w", err)
	}
	return fields, nil
}

const restoreTimeout = 2 * time.Second
