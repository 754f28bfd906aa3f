// Package syncer orchestrates one synchronization pass: it seeds proposals
// from creation events, resolves each proposal's details concurrently, and
// publishes a fresh immutable snapshot. A pass never mutates the previous
// result; callers swap whole generations, which keeps fields from different
// vintages out of one proposal.
package syncer

import (
	"context"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/daoforge/governor-backend/indexer"
	"github.com/daoforge/governor-backend/reconcile"
	"github.com/daoforge/governor-backend/types"
)

// ChainReader is the aggregate-read surface a pass consumes.
type ChainReader interface {
	ProposalCore(ctx context.Context, id *big.Int) (*types.ProposalCore, error)
	AggregateVotes(ctx context.Context, id *big.Int) (*types.Tally, error)
	HasVoted(ctx context.Context, id *big.Int, account common.Address) (bool, error)
	VoteCost(ctx context.Context) (*big.Int, error)
	LatestBlock(ctx context.Context) (uint64, time.Time, error)
	BlockTime(ctx context.Context, number uint64) (time.Time, error)
}

// EventSource is the append-only-log surface of a pass.
type EventSource interface {
	CreationEvents(ctx context.Context) ([]*indexer.ProposalCreatedEvent, error)
	VoteEvents(ctx context.Context, id *big.Int) ([]*types.VoteRecord, error)
}

type EligibilityChecker interface {
	Check(ctx context.Context, account common.Address, proposalID string, snapshotBlock uint64) (*types.EligibilitySnapshot, error)
}

type Config struct {
	Reader      ChainReader
	Events      EventSource
	Eligibility EligibilityChecker

	// Workers bounds how many proposals resolve concurrently in one pass.
	Workers int

	// AvgBlockTime feeds the deadline extrapolation for unmined blocks.
	AvgBlockTime time.Duration

	Logger *zap.Logger
}

type Synchronizer struct {
	reader       ChainReader
	events       EventSource
	eligibility  EligibilityChecker
	reconciler   *reconcile.Reconciler
	workers      int
	avgBlockTime time.Duration
	logger       *zap.Logger
}

func New(cfg Config) *Synchronizer {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}
	return &Synchronizer{
		reader:       cfg.Reader,
		events:       cfg.Events,
		eligibility:  cfg.Eligibility,
		reconciler:   reconcile.New(cfg.Logger),
		workers:      workers,
		avgBlockTime: cfg.AvgBlockTime,
		logger:       cfg.Logger.With(zap.String("component", "syncer")),
	}
}

// ListProposals runs one full pass. caller may be nil; when present the
// per-caller fields (has-voted, eligibility) are resolved too. One
// proposal's failure never aborts the others: failed entries are dropped
// from the result, not null-padded.
func (s *Synchronizer) ListProposals(ctx context.Context, caller *common.Address) ([]*types.Proposal, error) {
	lgr := s.logger.With(zap.String("method", "ListProposals"))

	creations, err := s.events.CreationEvents(ctx)
	if err != nil {
		return nil, err
	}
	if len(creations) == 0 {
		return []*types.Proposal{}, nil
	}

	// Pass-scoped reads shared by every resolution below. Both are allowed
	// to be unavailable: the fold check and the deadline estimate degrade,
	// resolution itself does not.
	voteCost, err := s.reader.VoteCost(ctx)
	if err != nil {
		lgr.Warn("vote cost unavailable, fold cross-check disabled", zap.Error(err))
		voteCost = nil
	}
	latestBlock, latestTime, err := s.reader.LatestBlock(ctx)
	if err != nil {
		lgr.Warn("latest block unavailable, deadline estimates disabled", zap.Error(err))
		latestBlock = 0
	}

	var (
		mu        sync.Mutex
		proposals []*types.Proposal
		wg        sync.WaitGroup
	)
	pool, err := ants.NewPoolWithFunc(s.workers, func(i interface{}) {
		defer wg.Done()
		ev := i.(*indexer.ProposalCreatedEvent)
		p, err := s.resolve(ctx, ev, caller, voteCost, latestBlock, latestTime)
		if err != nil {
			lgr.Warn("cannot resolve proposal, dropping from this pass",
				zap.String("proposalId", ev.ID.String()), zap.Error(err))
			return
		}
		mu.Lock()
		proposals = append(proposals, p)
		mu.Unlock()
	})
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	for _, ev := range creations {
		wg.Add(1)
		if err := pool.Invoke(ev); err != nil {
			wg.Done()
			lgr.Warn("cannot submit proposal resolution", zap.Error(err))
		}
	}
	wg.Wait()

	sort.Slice(proposals, func(i, j int) bool {
		a, _ := new(big.Int).SetString(proposals[i].ID, 10)
		b, _ := new(big.Int).SetString(proposals[j].ID, 10)
		return a.Cmp(b) > 0
	})
	return proposals, nil
}

// resolve builds one proposal from reads taken within this pass only. The
// reconciler is fed the event set and the aggregate fetched here, never a
// mix with a later pass.
func (s *Synchronizer) resolve(ctx context.Context, ev *indexer.ProposalCreatedEvent, caller *common.Address, voteCost *big.Int, latestBlock uint64, latestTime time.Time) (*types.Proposal, error) {
	lgr := s.logger.With(zap.String("proposalId", ev.ID.String()))

	core, err := s.reader.ProposalCore(ctx, ev.ID)
	if err != nil {
		return nil, err
	}

	aggregate, err := s.reader.AggregateVotes(ctx, ev.ID)
	if err != nil {
		lgr.Warn("aggregate votes unavailable", zap.Error(err))
		aggregate = nil
	}
	records, err := s.events.VoteEvents(ctx, ev.ID)
	if err != nil {
		lgr.Warn("vote events unavailable", zap.Error(err))
		records = nil
	}

	anomalies := s.reconciler.CoreAnomalies(ev.ID.String(), core)

	eventTally, foldAnomaly := indexer.FoldTally(records, voteCost)
	if foldAnomaly {
		indexer.LogFoldAnomaly(s.logger, ev.ID.String(), eventTally, voteCost, len(records))
		anomalies = append(anomalies, "event weight fold disagrees with record-count fold")
	}
	view := s.reconciler.Tally(ev.ID.String(), aggregate, eventTally, len(records))

	p := &types.Proposal{
		ID:          ev.ID.String(),
		Proposer:    ev.Proposer.Hex(),
		Description: ev.Description,
		Meta:        types.ParseProposalMeta(ev.Description),
		State:       core.State,
		StateLabel:  core.State.String(),
		Snapshot:    core.Snapshot,
		Deadline:    core.Deadline,
		BlockHeight: ev.BlockHeight,
		Tally:       view,
		Anomalies:   anomalies,
	}
	s.estimateDeadline(ctx, p, latestBlock, latestTime)

	if caller != nil {
		voted, err := s.reader.HasVoted(ctx, ev.ID, *caller)
		if err != nil {
			lgr.Warn("has-voted unavailable, reporting false for display", zap.Error(err))
			voted = false
		}
		p.HasVoted = voted

		snap, err := s.eligibility.Check(ctx, *caller, p.ID, p.Snapshot)
		if err != nil {
			lgr.Warn("eligibility check failed", zap.Error(err))
		} else {
			p.Eligibility = snap
		}
	}
	return p, nil
}

// estimateDeadline converts the deadline block to wall-clock time: exact
// when the block is already mined, otherwise linearly extrapolated from the
// latest header at the assumed average block interval and labeled as an
// estimate.
func (s *Synchronizer) estimateDeadline(ctx context.Context, p *types.Proposal, latestBlock uint64, latestTime time.Time) {
	if latestBlock == 0 {
		p.DeadlineIsEst = true
		return
	}
	if p.Deadline <= latestBlock {
		if t, err := s.reader.BlockTime(ctx, p.Deadline); err == nil {
			p.DeadlineTime = t.Unix()
			p.DeadlineIsEst = false
			return
		}
		// Header fetch failed; fall through to extrapolation from latest.
	}
	remaining := int64(p.Deadline) - int64(latestBlock)
	if remaining < 0 {
		remaining = 0
	}
	p.DeadlineTime = latestTime.Add(time.Duration(remaining) * s.avgBlockTime).Unix()
	p.DeadlineIsEst = true
}
