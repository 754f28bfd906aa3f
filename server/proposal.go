// Package server
package server

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/daoforge/governor-backend/types"
)

// proposalList returns the reconciled list. Without a caller the published
// cache generation is served; a caller address forces a live pass because
// has-voted and eligibility are caller-scoped and never cached.
func (s *Server) proposalList(ctx context.Context, caller string) ([]*types.Proposal, error) {
	lgr := s.logger.With(zap.String("method", "proposalList"))

	if caller == "" {
		proposals, err := s.cache.Proposals(ctx)
		if err == nil {
			return proposals, nil
		}
		lgr.Info("cache miss, resolving live", zap.Error(err))
		return s.syncer.ListProposals(ctx, nil)
	}

	if !common.IsHexAddress(caller) {
		return nil, fmt.Errorf("invalid caller address: %s", caller)
	}
	addr := common.HexToAddress(caller)
	return s.syncer.ListProposals(ctx, &addr)
}

func (s *Server) proposalByID(ctx context.Context, id string, caller string) (*types.Proposal, error) {
	proposals, err := s.proposalList(ctx, caller)
	if err != nil {
		return nil, err
	}
	for _, p := range proposals {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, types.ErrProposalNotFound
}

// eligibilityFor resolves an account's voting power at the proposal's
// snapshot block. The snapshot block comes from the proposal itself;
// evaluating at the current block would silently approve zero-weight votes.
func (s *Server) eligibilityFor(ctx context.Context, id string, account string) (*types.EligibilitySnapshot, error) {
	if !common.IsHexAddress(account) {
		return nil, fmt.Errorf("invalid account address: %s", account)
	}
	p, err := s.proposalByID(ctx, id, "")
	if err != nil {
		return nil, err
	}
	return s.eligibility.Check(ctx, common.HexToAddress(account), p.ID, p.Snapshot)
}

func (s *Server) syncStatus(ctx context.Context) (*types.SyncStatus, error) {
	return s.cache.SyncStatus(ctx)
}
