// Package cache
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/daoforge/governor-backend/types"
)

type Adapter string

const (
	RedisAdapter Adapter = "redis"
)

type Config struct {
	Adapter Adapter
	URL     string
	DB      int

	IsFlush bool

	DefaultExpiredTime time.Duration

	Logger *zap.Logger
}

// Client caches the published per-pass snapshots. Each pass overwrites the
// previous generation wholesale; readers always see one consistent vintage.
type Client interface {
	UpdateProposals(ctx context.Context, proposals []*types.Proposal, status *types.SyncStatus) error
	Proposals(ctx context.Context) ([]*types.Proposal, error)
	SyncStatus(ctx context.Context) (*types.SyncStatus, error)

	UpdateVoteCost(ctx context.Context, cost string) error
	VoteCost(ctx context.Context) (string, error)
}

func New(cfg Config) (Client, error) {
	switch cfg.Adapter {
	case RedisAdapter:
		return newRedis(cfg)
	}
	return nil, errors.New("invalid cache config")
}

func newRedis(cfg Config) (Client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.URL,
		DB:   cfg.DB,
	})

	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		return nil, err
	}
	if cfg.IsFlush {
		msg, err := redisClient.FlushAll(context.Background()).Result()
		if err != nil || msg != "OK" {
			return nil, err
		}
	}

	logger := cfg.Logger.With(zap.String("cache", "redis"))
	client := &Redis{
		cfg:    cfg,
		client: redisClient,
		logger: logger,
	}
	return client, nil
}
