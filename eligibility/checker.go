// Package eligibility
package eligibility

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/daoforge/governor-backend/types"
)

// PowerReader is the slice of the chain reader this checker needs.
type PowerReader interface {
	VotingPower(ctx context.Context, account common.Address) (*big.Int, error)
	VotingPowerAt(ctx context.Context, account common.Address, block uint64) (*big.Int, error)
}

// Checker resolves whether an account's vote would carry weight. Weight is
// frozen at the proposal's snapshot block: an account with live power but
// none at the snapshot can still submit a vote the chain accepts, it just
// counts for zero. The two conditions must stay distinguishable.
type Checker struct {
	reader PowerReader
	logger *zap.Logger
}

func New(reader PowerReader, logger *zap.Logger) *Checker {
	return &Checker{
		reader: reader,
		logger: logger.With(zap.String("component", "eligibility")),
	}
}

// Check evaluates the account's power at the proposal's snapshot block.
// An unavailable snapshot read yields EligibilityUnknown, which blocks the
// vote path; missing data never authorizes a sensitive action.
func (c *Checker) Check(ctx context.Context, account common.Address, proposalID string, snapshotBlock uint64) (*types.EligibilitySnapshot, error) {
	lgr := c.logger.With(zap.String("proposalId", proposalID), zap.String("account", account.Hex()))

	snap := &types.EligibilitySnapshot{
		Account:       account.Hex(),
		ProposalID:    proposalID,
		SnapshotBlock: snapshotBlock,
	}

	powerAt, err := c.reader.VotingPowerAt(ctx, account, snapshotBlock)
	if err != nil {
		lgr.Warn("snapshot power unavailable", zap.Error(err))
		snap.Status = types.EligibilityUnknown
		return snap, nil
	}
	snap.PowerAtSnapshot = powerAt.String()

	current, err := c.reader.VotingPower(ctx, account)
	if err != nil {
		// Live power is informational; zero keeps the display consistent
		// but the verdict below depends on the snapshot value alone.
		lgr.Warn("live power unavailable, showing zero", zap.Error(err))
		current = new(big.Int)
	}
	snap.CurrentPower = current.String()

	switch {
	case powerAt.Sign() > 0:
		snap.Status = types.Eligible
	case current.Sign() > 0:
		snap.Status = types.NoneAtSnapshot
	default:
		snap.Status = types.NoPower
	}
	return snap, nil
}
