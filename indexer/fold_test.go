// Package indexer
package indexer

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/daoforge/governor-backend/types"
)

func record(voter string, support types.SupportType, weight int64) *types.VoteRecord {
	return &types.VoteRecord{
		Voter:      voter,
		ProposalID: "77",
		Support:    support,
		Weight:     big.NewInt(weight),
	}
}

func TestFoldTally_GroupsWeightsBySupport(t *testing.T) {
	records := []*types.VoteRecord{
		record("0xa1", types.SupportFor, 10),
		record("0xa2", types.SupportFor, 10),
		record("0xa3", types.SupportAgainst, 10),
	}
	tally, anomaly := FoldTally(records, big.NewInt(10))
	assert.False(t, anomaly)
	assert.Equal(t, "20", tally.For.String())
	assert.Equal(t, "10", tally.Against.String())
	assert.Equal(t, "0", tally.Abstain.String())
}

func TestFoldTally_EmptyRecords(t *testing.T) {
	tally, anomaly := FoldTally(nil, big.NewInt(10))
	assert.False(t, anomaly)
	assert.True(t, tally.IsZero())
}

func TestFoldTally_CountFoldAgreement(t *testing.T) {
	// Five ballots at the fixed cost: weight fold and count*cost fold must
	// land on the same totals.
	records := []*types.VoteRecord{
		record("0xa1", types.SupportFor, 25),
		record("0xa2", types.SupportFor, 25),
		record("0xa3", types.SupportAgainst, 25),
		record("0xa4", types.SupportAbstain, 25),
		record("0xa5", types.SupportAbstain, 25),
	}
	tally, anomaly := FoldTally(records, big.NewInt(25))
	assert.False(t, anomaly)
	assert.Equal(t, "50", tally.For.String())
	assert.Equal(t, "25", tally.Against.String())
	assert.Equal(t, "50", tally.Abstain.String())
}

func TestFoldTally_CountFoldDisagreementFlagged(t *testing.T) {
	// One record carries a weight that cannot come from the fixed cost.
	// The weight fold is still returned; the anomaly is only reported.
	records := []*types.VoteRecord{
		record("0xa1", types.SupportFor, 10),
		record("0xa2", types.SupportFor, 7),
	}
	tally, anomaly := FoldTally(records, big.NewInt(10))
	assert.True(t, anomaly)
	assert.Equal(t, "17", tally.For.String())
}

func TestFoldTally_NoCostSkipsCrossCheck(t *testing.T) {
	records := []*types.VoteRecord{
		record("0xa1", types.SupportFor, 7),
	}
	tally, anomaly := FoldTally(records, nil)
	assert.False(t, anomaly)
	assert.Equal(t, "7", tally.For.String())

	_, anomaly = FoldTally(records, big.NewInt(0))
	assert.False(t, anomaly)
}

func TestFoldTally_RepeatVoterNotDeduplicated(t *testing.T) {
	// The contract may allow vote changes; the event stream alone cannot
	// prove uniqueness, so the fold must sum every record.
	records := []*types.VoteRecord{
		record("0xa1", types.SupportFor, 10),
		record("0xa1", types.SupportAgainst, 10),
	}
	tally, _ := FoldTally(records, big.NewInt(10))
	assert.Equal(t, "10", tally.For.String())
	assert.Equal(t, "10", tally.Against.String())
}
