package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"veriledger/internal/governance/emergency"
	id "veriledger/pkg/domain"
	"veriledger/pkg/platform/tx"
)

// DefaultKey is the hash holding the flag.
const DefaultKey = "veriledger:emergency"

const restoreTimeout = 2 * time.Second

// Redis shares the flag between replicas.
type Redis struct {
	client redis.Cmdable
	key    string
}

// NewRedis creates a Redis-backed flag under key (DefaultKey when empty).
func NewRedis(client redis.Cmdable, key string) *Redis {
	if key == "" {
		key = DefaultKey
	}
	return &Redis{client: client, key: key}
}

func (s *Redis) Get(ctx context.Context) (emergency.State, error) {
	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return emergency.State{}, fmt.Errorf("read emergency flag: %w", err)
	}
	if len(fields) == 0 {
		return emergency.State{}, nil
	}
	state := emergency.State{
		Active:    fields["active"] == "1",
		ChangedBy: id.Identity(fields["changed_by"]),
	}
	if raw := fields["changed_at"]; raw != "" {
		changedAt, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return emergency.State{}, fmt.Errorf("parse emergency flag timestamp: %w", err)
		}
		state.ChangedAt = changedAt
	}
	return state, nil
}

// Set writes state and registers a compensating write that restores the
// previous hash if the surrounding unit of work rolls back.
func (s *Redis) Set(ctx context.Context, state emergency.State) error {
	prev, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return fmt.Errorf("read emergency flag: %w", err)
	}

	active := "0"
	if state.Active {
		active = "1"
	}
	if err := s.client.HSet(ctx, s.key,
		"active", active,
		"changed_by", state.ChangedBy.String(),
		"changed_at", state.ChangedAt.UTC().Format(time.RFC3339Nano),
	).Err(); err != nil {
		return fmt.Errorf("write emergency flag: %w", err)
	}

	tx.OnRollback(ctx, func() {
		restoreCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), restoreTimeout)
		defer cancel()
		pipe := s.client.TxPipeline()
		pipe.Del(restoreCtx, s.key)
		if len(prev) > 0 {
			args := make([]any, 0, len(prev)*2)
			for field, value := range prev {
				args = append(args, field, value)
			}
			pipe.HSet(restoreCtx, s.key, args...)
		}
		_, _ = pipe.Exec(restoreCtx)
	})
	return nil
}
