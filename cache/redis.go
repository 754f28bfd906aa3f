// Package cache
package cache

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/daoforge/governor-backend/types"
)

const (
	KeyProposals  = "#proposals#latest"
	KeySyncStatus = "#sync#status"
	KeyVoteCost   = "#governor#voteCost"
)

type Redis struct {
	cfg    Config
	client *redis.Client

	logger *zap.Logger
}

// UpdateProposals publishes a whole generation atomically: list and status
// go in one pipeline so a reader never pairs a new list with an old status.
func (c *Redis) UpdateProposals(ctx context.Context, proposals []*types.Proposal, status *types.SyncStatus) error {
	listData, err := json.Marshal(proposals)
	if err != nil {
		return err
	}
	statusData, err := json.Marshal(status)
	if err != nil {
		return err
	}
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, KeyProposals, string(listData), c.cfg.DefaultExpiredTime)
		pipe.Set(ctx, KeySyncStatus, string(statusData), 0)
		return nil
	})
	return err
}

func (c *Redis) Proposals(ctx context.Context) ([]*types.Proposal, error) {
	result, err := c.client.Get(ctx, KeyProposals).Result()
	if err != nil {
		return nil, err
	}
	var proposals []*types.Proposal
	if err := json.Unmarshal([]byte(result), &proposals); err != nil {
		return nil, err
	}
	return proposals, nil
}

func (c *Redis) SyncStatus(ctx context.Context) (*types.SyncStatus, error) {
	result, err := c.client.Get(ctx, KeySyncStatus).Result()
	if err != nil {
		return nil, err
	}
	var status *types.SyncStatus
	if err := json.Unmarshal([]byte(result), &status); err != nil {
		return nil, err
	}
	return status, nil
}

func (c *Redis) UpdateVoteCost(ctx context.Context, cost string) error {
	return c.client.Set(ctx, KeyVoteCost, cost, c.cfg.DefaultExpiredTime).Err()
}

func (c *Redis) VoteCost(ctx context.Context) (string, error) {
	return c.client.Get(ctx, KeyVoteCost).Result()
}
