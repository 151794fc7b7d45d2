//go:build integration

// Package containers starts the Postgres, Redis and Redpanda instances the
// integration suites run against. Each backend starts once per test binary
// and is shared by every suite in the package.
package containers

import (
	"sync"
	"testing"
)

// Manager hands out the shared containers, starting each on first use.
type Manager struct {
	mu       sync.Mutex
	postgres *PostgresContainer
	redis    *RedisContainer
	kafka    *KafkaContainer
}

var (
	globalManager *Manager
	initOnce      sync.Once
)

// GetManager returns the process-wide manager.
func GetManager() *Manager {
	initOnce.Do(func() {
		globalManager = &Manager{}
	})
	return globalManager
}

// lazy returns *slot, starting it under the manager lock when unset.
func lazy[T any](m *Manager, t *testing.T, slot **T, start func(*testing.T) *T) *T {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if *slot == nil {
		*slot = start(t)
	}
	return *slot
}

// GetPostgres returns the shared Postgres container with the schema applied.
func (m *Manager) GetPostgres(t *testing.T) *PostgresContainer {
	return lazy(m, t, &m.postgres, NewPostgresContainer)
}

func (m *Manager) GetRedis(t *testing.T) *RedisContainer {
	return lazy(m, t, &m.redis, NewRedisContainer)
}

// GetKafka returns the shared Redpanda broker backing the audit stream tests.
func (m *Manager) GetKafka(t *testing.T) *KafkaContainer {
	return lazy(m, t, &m.kafka, NewKafkaContainer)
}
