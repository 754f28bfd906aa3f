// Package indexer
package indexer

import (
	"math/big"

	"go.uber.org/zap"

	"github.com/daoforge/governor-backend/types"
)

// FoldTally folds vote records into per-support totals: the sum of weights
// grouped by support. When voteCost is known, an alternative fold (record
// count times the fixed per-ballot cost) must agree with the weight fold.
// Disagreement means a protocol assumption was violated; it is reported, not
// corrected, and the weight fold is still returned.
func FoldTally(records []*types.VoteRecord, voteCost *big.Int) (*types.Tally, bool) {
	tally := types.NewTally()
	counts := map[types.SupportType]int64{}
	for _, rec := range records {
		counts[rec.Support]++
		switch rec.Support {
		case types.SupportFor:
			tally.For.Add(tally.For, rec.Weight)
		case types.SupportAgainst:
			tally.Against.Add(tally.Against, rec.Weight)
		case types.SupportAbstain:
			tally.Abstain.Add(tally.Abstain, rec.Weight)
		}
	}

	if voteCost == nil || voteCost.Sign() <= 0 {
		return tally, false
	}
	countFold := &types.Tally{
		For:     new(big.Int).Mul(voteCost, big.NewInt(counts[types.SupportFor])),
		Against: new(big.Int).Mul(voteCost, big.NewInt(counts[types.SupportAgainst])),
		Abstain: new(big.Int).Mul(voteCost, big.NewInt(counts[types.SupportAbstain])),
	}
	return tally, !tally.Equal(countFold)
}

// LogFoldAnomaly reports a weight/count fold disagreement for one proposal.
func LogFoldAnomaly(lgr *zap.Logger, proposalID string, tally *types.Tally, voteCost *big.Int, count int) {
	lgr.Warn("event fold disagreement: weight sum does not match count*cost",
		zap.String("proposalId", proposalID),
		zap.String("for", tally.For.String()),
		zap.String("against", tally.Against.String()),
		zap.String("abstain", tally.Abstain.String()),
		zap.String("voteCost", voteCost.String()),
		zap.Int("records", count))
}
