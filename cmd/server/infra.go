package main

import (
	"context"
	"fmt"
	"log/slog"

	"veriledger/internal/platform/config"
	"veriledger/internal/platform/database"
	"veriledger/internal/platform/kafka/producer"
	"veriledger/internal/platform/redis"
	"veriledger/migrations"
)

// infra holds the optional backends. Each is nil when not configured and
// the components fall back to their in-memory stores.
type infra struct {
	db       *database.Pool
	redis    *redis.Client
	producer *producer.Producer
}

func openInfra(ctx context.Context, cfg config.Server, log *slog.Logger) (*infra, error) {
	in := &infra{}

	pool, err := database.New(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	in.db = pool
	if pool != nil {
		if err := migrations.Apply(ctx, pool.DB()); err != nil {
			in.close(log)
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		log.Info("postgres connected, schema applied")
	}

	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		in.close(log)
		return nil, fmt.Errorf("open redis: %w", err)
	}
	in.redis = client
	if client != nil {
		log.Info("redis connected")
	}

	if cfg.Kafka.Brokers != "" {
		prod, err := producer.New(producer.DefaultConfig(cfg.Kafka.Brokers), log)
		if err != nil {
			in.close(log)
			return nil, fmt.Errorf("create kafka producer: %w", err)
		}
		in.producer = prod
		if err := prod.EnsureTopic(ctx, cfg.Kafka.Topic, 1, 1); err != nil {
			// The broker may auto-create the topic; a missing topic shows
			// up as publish failures on the outbox worker.
			log.Warn("failed to ensure audit topic", "topic", cfg.Kafka.Topic, "error", err)
		}
	}
	return in, nil
}

func (in *infra) backend() string {
	if in.db != nil {
		return "postgres"
	}
	return "memory"
}

func (in *infra) close(log *slog.Logger) {
	if in.producer != nil {
		if err := in.producer.Close(); err != nil {
			log.Error("failed to close kafka producer", "error", err)
		}
	}
	if in.redis != nil {
		if err := in.redis.Close(); err != nil {
			log.Error("failed to close redis", "error", err)
		}
	}
	if in.db != nil {
		if err := in.db.Close(); err != nil {
			log.Error("failed to close database", "error", err)
		}
	}
}
