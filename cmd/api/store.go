package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/xavierca1/lead-caller/internal/config"
	"github.com/xavierca1/lead-caller/internal/entity"
	"github.com/xavierca1/lead-caller/internal/infra/database"
)

type leadStore interface {
	entity.LeadRepositoryInterface
	Ping(ctx context.Context) error
}

// openLeadStore builds the store named by cfg.LeadStore. The returned close
// func is never nil.
func openLeadStore(ctx context.Context, cfg *config.Config) (leadStore, func(), error) {
	switch cfg.LeadStore {
	case config.StoreMemory, "":
		return database.NewMemoryLeadRepository(), func() {}, nil

	case config.StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, nil, fmt.Errorf("LEAD_STORE=postgres requires DATABASE_URL")
		}
		db, err := database.NewDBConnection(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := database.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return database.NewLeadRepository(db), func() { db.Close() }, nil

	case config.StoreRedis:
		if cfg.RedisAddr == "" {
			return nil, nil, fmt.Errorf("LEAD_STORE=redis requires REDIS_ADDR")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("redis: ping: %w", err)
		}
		return database.NewRedisLeadRepository(client), func() { client.Close() }, nil
	}

	return nil, nil, fmt.Errorf("unknown LEAD_STORE %q", cfg.LeadStore)
}
