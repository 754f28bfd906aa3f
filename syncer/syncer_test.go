// Package syncer
package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/daoforge/governor-backend/indexer"
	"github.com/daoforge/governor-backend/types"
)

type fakeReader struct {
	cores      map[string]*types.ProposalCore
	aggregates map[string]*types.Tally
	hasVoted   map[string]bool
	voteCost   *big.Int

	latestBlock uint64
	latestTime  time.Time
	blockTimes  map[uint64]time.Time

	failCore map[string]bool
}

func (f *fakeReader) ProposalCore(ctx context.Context, id *big.Int) (*types.ProposalCore, error) {
	if f.failCore[id.String()] {
		return nil, fmt.Errorf("%w: state", types.ErrUnavailable)
	}
	core, ok := f.cores[id.String()]
	if !ok {
		return nil, fmt.Errorf("%w: state", types.ErrUnavailable)
	}
	return core, nil
}

func (f *fakeReader) AggregateVotes(ctx context.Context, id *big.Int) (*types.Tally, error) {
	if t, ok := f.aggregates[id.String()]; ok {
		return t, nil
	}
	return types.NewTally(), nil
}

func (f *fakeReader) HasVoted(ctx context.Context, id *big.Int, account common.Address) (bool, error) {
	return f.hasVoted[id.String()], nil
}

func (f *fakeReader) VoteCost(ctx context.Context) (*big.Int, error) {
	if f.voteCost == nil {
		return nil, fmt.Errorf("%w: voteCost", types.ErrUnavailable)
	}
	return f.voteCost, nil
}

func (f *fakeReader) LatestBlock(ctx context.Context) (uint64, time.Time, error) {
	if f.latestBlock == 0 {
		return 0, time.Time{}, fmt.Errorf("%w: latest header", types.ErrUnavailable)
	}
	return f.latestBlock, f.latestTime, nil
}

func (f *fakeReader) BlockTime(ctx context.Context, number uint64) (time.Time, error) {
	if t, ok := f.blockTimes[number]; ok {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: header %d", types.ErrUnavailable, number)
}

type fakeEvents struct {
	creations []*indexer.ProposalCreatedEvent
	votes     map[string][]*types.VoteRecord
}

func (f *fakeEvents) CreationEvents(ctx context.Context) ([]*indexer.ProposalCreatedEvent, error) {
	return f.creations, nil
}

func (f *fakeEvents) VoteEvents(ctx context.Context, id *big.Int) ([]*types.VoteRecord, error) {
	return f.votes[id.String()], nil
}

type fakeChecker struct{}

func (f *fakeChecker) Check(ctx context.Context, account common.Address, proposalID string, snapshotBlock uint64) (*types.EligibilitySnapshot, error) {
	return &types.EligibilitySnapshot{
		Account:       account.Hex(),
		ProposalID:    proposalID,
		SnapshotBlock: snapshotBlock,
		Status:        types.Eligible,
	}, nil
}

func creation(id int64, proposer string, description string) *indexer.ProposalCreatedEvent {
	return &indexer.ProposalCreatedEvent{
		ID:          big.NewInt(id),
		Proposer:    common.HexToAddress(proposer),
		Description: description,
		BlockHeight: 900,
	}
}

func vote(proposalID string, support types.SupportType, weight int64) *types.VoteRecord {
	return &types.VoteRecord{
		ProposalID: proposalID,
		Support:    support,
		Weight:     big.NewInt(weight),
	}
}

func newTestSynchronizer(t *testing.T, reader ChainReader, events EventSource) *Synchronizer {
	lgr, err := zap.NewDevelopment()
	assert.Nil(t, err)
	return New(Config{
		Reader:       reader,
		Events:       events,
		Eligibility:  &fakeChecker{},
		Workers:      4,
		AvgBlockTime: 12 * time.Second,
		Logger:       lgr,
	})
}

func TestListProposals_StaleAggregateLosesToEvents(t *testing.T) {
	// The aggregate getter still shows zeros while three vote events are
	// already indexed (2 for, 1 against, cost 10 each).
	reader := &fakeReader{
		cores: map[string]*types.ProposalCore{
			"7": {State: types.StateActive, Snapshot: 1000, Deadline: 2000},
		},
		aggregates: map[string]*types.Tally{
			"7": types.NewTally(),
		},
		voteCost:    big.NewInt(10),
		latestBlock: 1500,
		latestTime:  time.Unix(1_700_000_000, 0),
	}
	events := &fakeEvents{
		creations: []*indexer.ProposalCreatedEvent{creation(7, "0xa1", "Fund the grant\ntreasury\n100\n0xdead")},
		votes: map[string][]*types.VoteRecord{
			"7": {
				vote("7", types.SupportFor, 10),
				vote("7", types.SupportFor, 10),
				vote("7", types.SupportAgainst, 10),
			},
		},
	}
	s := newTestSynchronizer(t, reader, events)

	proposals, err := s.ListProposals(context.Background(), nil)
	assert.Nil(t, err)
	assert.Len(t, proposals, 1)

	p := proposals[0]
	assert.Equal(t, "20", p.Tally.For)
	assert.Equal(t, "10", p.Tally.Against)
	assert.Equal(t, "0", p.Tally.Abstain)
	assert.Equal(t, types.ProvenanceEventDerived, p.Tally.Provenance)
	assert.True(t, p.Tally.Mismatch)
	assert.Equal(t, "Fund the grant", p.Meta.Title)
	assert.Equal(t, "treasury", p.Meta.Category)
}

func TestListProposals_PartialFailureIsolated(t *testing.T) {
	// Proposal 2's core read fails; 1 and 3 must still resolve and the
	// failed entry is omitted, not null-padded.
	reader := &fakeReader{
		cores: map[string]*types.ProposalCore{
			"1": {State: types.StateExecuted, Snapshot: 100, Deadline: 200},
			"2": {State: types.StateActive, Snapshot: 300, Deadline: 400},
			"3": {State: types.StateActive, Snapshot: 500, Deadline: 600},
		},
		failCore:    map[string]bool{"2": true},
		voteCost:    big.NewInt(10),
		latestBlock: 1000,
		latestTime:  time.Unix(1_700_000_000, 0),
	}
	events := &fakeEvents{
		creations: []*indexer.ProposalCreatedEvent{
			creation(1, "0xa1", "one"),
			creation(2, "0xa2", "two"),
			creation(3, "0xa3", "three"),
		},
		votes: map[string][]*types.VoteRecord{},
	}
	s := newTestSynchronizer(t, reader, events)

	proposals, err := s.ListProposals(context.Background(), nil)
	assert.Nil(t, err)
	assert.Len(t, proposals, 2)
	assert.Equal(t, "3", proposals[0].ID)
	assert.Equal(t, "1", proposals[1].ID)
	for _, p := range proposals {
		assert.NotNil(t, p)
	}
}

func TestListProposals_Idempotent(t *testing.T) {
	reader := &fakeReader{
		cores: map[string]*types.ProposalCore{
			"5": {State: types.StateActive, Snapshot: 1000, Deadline: 2000},
			"9": {State: types.StateSucceeded, Snapshot: 500, Deadline: 900},
		},
		aggregates: map[string]*types.Tally{
			"9": {For: big.NewInt(30), Against: big.NewInt(0), Abstain: big.NewInt(10)},
		},
		voteCost:    big.NewInt(10),
		latestBlock: 1500,
		latestTime:  time.Unix(1_700_000_000, 0),
		blockTimes:  map[uint64]time.Time{900: time.Unix(1_699_000_000, 0)},
	}
	events := &fakeEvents{
		creations: []*indexer.ProposalCreatedEvent{
			creation(5, "0xa1", "five"),
			creation(9, "0xa2", "nine"),
		},
		votes: map[string][]*types.VoteRecord{
			"5": {vote("5", types.SupportFor, 10)},
		},
	}
	s := newTestSynchronizer(t, reader, events)

	first, err := s.ListProposals(context.Background(), nil)
	assert.Nil(t, err)
	second, err := s.ListProposals(context.Background(), nil)
	assert.Nil(t, err)

	firstJSON, err := json.Marshal(first)
	assert.Nil(t, err)
	secondJSON, err := json.Marshal(second)
	assert.Nil(t, err)
	assert.Equal(t, firstJSON, secondJSON)
}

func TestListProposals_SortedNewestFirst(t *testing.T) {
	reader := &fakeReader{
		cores: map[string]*types.ProposalCore{
			"100": {Snapshot: 1, Deadline: 2},
			"999": {Snapshot: 1, Deadline: 2},
			"42":  {Snapshot: 1, Deadline: 2},
		},
		latestBlock: 10,
		latestTime:  time.Unix(1_700_000_000, 0),
		blockTimes:  map[uint64]time.Time{2: time.Unix(1_600_000_000, 0)},
	}
	events := &fakeEvents{
		creations: []*indexer.ProposalCreatedEvent{
			creation(100, "0xa1", ""),
			creation(999, "0xa2", ""),
			creation(42, "0xa3", ""),
		},
	}
	s := newTestSynchronizer(t, reader, events)

	proposals, err := s.ListProposals(context.Background(), nil)
	assert.Nil(t, err)
	assert.Len(t, proposals, 3)
	assert.Equal(t, "999", proposals[0].ID)
	assert.Equal(t, "100", proposals[1].ID)
	assert.Equal(t, "42", proposals[2].ID)
}

func TestListProposals_DeadlineEstimate(t *testing.T) {
	latest := time.Unix(1_700_000_000, 0)
	reader := &fakeReader{
		cores: map[string]*types.ProposalCore{
			// Mined deadline with a known header time.
			"1": {State: types.StateExecuted, Snapshot: 100, Deadline: 200},
			// Deadline 100 blocks ahead of the latest header.
			"2": {State: types.StateActive, Snapshot: 900, Deadline: 1100},
		},
		latestBlock: 1000,
		latestTime:  latest,
		blockTimes:  map[uint64]time.Time{200: time.Unix(1_650_000_000, 0)},
	}
	events := &fakeEvents{
		creations: []*indexer.ProposalCreatedEvent{
			creation(1, "0xa1", ""),
			creation(2, "0xa2", ""),
		},
	}
	s := newTestSynchronizer(t, reader, events)

	proposals, err := s.ListProposals(context.Background(), nil)
	assert.Nil(t, err)
	assert.Len(t, proposals, 2)

	future := proposals[0] // id 2
	assert.True(t, future.DeadlineIsEst)
	assert.Equal(t, latest.Add(100*12*time.Second).Unix(), future.DeadlineTime)

	mined := proposals[1] // id 1
	assert.False(t, mined.DeadlineIsEst)
	assert.Equal(t, int64(1_650_000_000), mined.DeadlineTime)
}

func TestListProposals_CallerScopedFields(t *testing.T) {
	reader := &fakeReader{
		cores: map[string]*types.ProposalCore{
			"7": {State: types.StateActive, Snapshot: 1000, Deadline: 2000},
		},
		hasVoted:    map[string]bool{"7": true},
		latestBlock: 1500,
		latestTime:  time.Unix(1_700_000_000, 0),
	}
	events := &fakeEvents{
		creations: []*indexer.ProposalCreatedEvent{creation(7, "0xa1", "")},
	}
	s := newTestSynchronizer(t, reader, events)

	caller := common.HexToAddress("0x1b3cB81E51011b549d78bf720b0d924ac763A7C2")
	proposals, err := s.ListProposals(context.Background(), &caller)
	assert.Nil(t, err)
	assert.Len(t, proposals, 1)
	assert.True(t, proposals[0].HasVoted)
	assert.NotNil(t, proposals[0].Eligibility)
	assert.Equal(t, uint64(1000), proposals[0].Eligibility.SnapshotBlock)

	// Without a caller the scoped fields stay unset.
	bare, err := s.ListProposals(context.Background(), nil)
	assert.Nil(t, err)
	assert.False(t, bare[0].HasVoted)
	assert.Nil(t, bare[0].Eligibility)
}

func TestListProposals_SnapshotDeadlineInversionSurfaced(t *testing.T) {
	reader := &fakeReader{
		cores: map[string]*types.ProposalCore{
			"7": {State: types.StateActive, Snapshot: 3000, Deadline: 2000},
		},
		latestBlock: 1500,
		latestTime:  time.Unix(1_700_000_000, 0),
	}
	events := &fakeEvents{
		creations: []*indexer.ProposalCreatedEvent{creation(7, "0xa1", "")},
	}
	s := newTestSynchronizer(t, reader, events)

	proposals, err := s.ListProposals(context.Background(), nil)
	assert.Nil(t, err)
	assert.Len(t, proposals, 1)
	assert.NotEmpty(t, proposals[0].Anomalies)
	// Values stay as read.
	assert.Equal(t, uint64(3000), proposals[0].Snapshot)
	assert.Equal(t, uint64(2000), proposals[0].Deadline)
}
