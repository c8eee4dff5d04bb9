package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ai-or-human-service/internal/app"
	"ai-or-human-service/internal/config"
	"ai-or-human-service/internal/domain"
	"ai-or-human-service/internal/infra/memory"
	"ai-or-human-service/internal/infra/postgres"
	infraredis "ai-or-human-service/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
)

type itemStore interface {
	app.ItemRepository
	LoadItems(ctx context.Context) ([]domain.RoundItem, error)
}

// stores picks a backend per concern: Postgres when configured, Redis for
// players when Postgres is absent, memory otherwise. Redis also caches items.
type stores struct {
	players app.PlayerRepository
	items   app.ItemRepository
	closers []func()
}

func openStores(ctx context.Context, cfg config.Config, logger *slog.Logger) (*stores, error) {
	s := &stores{}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		s.closers = append(s.closers, func() { _ = redisClient.Close() })
	}

	var source itemStore = memory.NewItemRepository(sampleItems()...)
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		s.closers = append(s.closers, pool.Close)
		db := openBun(cfg.Postgres.URL)
		s.closers = append(s.closers, func() { _ = db.Close() })

		s.players = postgres.NewPlayerRepository(db)
		source = postgres.NewItemStore(pool)
		logger.Info("using postgres storage")
	} else if redisClient != nil {
		s.players = infraredis.NewPlayerRepository(redisClient)
		logger.Info("using redis player storage")
	} else {
		s.players = memory.NewPlayerRepository()
		logger.Warn("no postgres or redis configured; state is kept in memory")
	}

	if redisClient != nil {
		ttl := config.TTLDuration(cfg.Game.CacheTTL, 10*time.Minute)
		s.items = infraredis.NewItemRepository(redisClient, source, ttl)
	} else {
		s.items = source
	}
	return s, nil
}

// Close releases connections in reverse order of opening.
func (s *stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// sampleItems seeds the in-memory pool so a fresh instance is playable.
func sampleItems() []domain.RoundItem {
	created := time.Date(2024, 11, 22, 0, 0, 0, 0, time.UTC)
	return []domain.RoundItem{
		{
			ID:        "sample-1",
			Prompt:    "What is your favourite thing about rainy days?",
			Answer:    "Honestly the sound on the roof. I grew up in a house with a tin porch and it still puts me to sleep faster than anything. Plus nobody expects you to go outside.",
			IsAI:      false,
			CreatedAt: created,
		},
		{
			ID:        "sample-2",
			Prompt:    "What is your favourite thing about rainy days?",
			Answer:    "Rainy days offer a unique sense of calm and coziness. The gentle rhythm of raindrops creates a soothing atmosphere, perfect for reading or reflection. They also nourish the earth and refresh the air.",
			IsAI:      true,
			CreatedAt: created,
		},
		{
			ID:        "sample-3",
			Prompt:    "Describe the best meal you have ever eaten.",
			Answer:    "A bowl of ramen at a tiny counter place in Osaka at 2am after missing the last train. The broth was almost too salty. I would fly back just for that bowl.",
			IsAI:      false,
			CreatedAt: created,
		},
	}
}
