// Package indexer
package indexer

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/daoforge/governor-backend/chain"
	"github.com/daoforge/governor-backend/types"
)

type Config struct {
	Node            chain.Node
	GovernorAddress common.Address

	// FromBlock bounds the scan to the governor's deployment height; zero
	// scans from genesis.
	FromBlock uint64

	Logger *zap.Logger
}

// Indexer replays the governor's append-only log. Vote totals derived here
// are independent of the contract's aggregate getter; the reconciler decides
// which source is authoritative.
type Indexer struct {
	node      chain.Node
	governor  common.Address
	fromBlock uint64
	logger    *zap.Logger
}

func New(cfg Config) *Indexer {
	return &Indexer{
		node:      cfg.Node,
		governor:  cfg.GovernorAddress,
		fromBlock: cfg.FromBlock,
		logger:    cfg.Logger.With(zap.String("component", "indexer")),
	}
}

func (ix *Indexer) scan(ctx context.Context, topic common.Hash) ([]DecodedEvent, error) {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(ix.fromBlock),
		Addresses: []common.Address{ix.governor},
		Topics:    [][]common.Hash{{topic}},
	}
	logs, err := ix.node.FilterLogs(ctx, query)
	if err != nil {
		ix.logger.Warn("log scan failed", zap.Error(err))
		return nil, fmt.Errorf("%w: getLogs: %v", types.ErrUnavailable, err)
	}
	var (
		decoded []DecodedEvent
		skipped int
	)
	for _, l := range logs {
		if l.Removed {
			continue
		}
		ev := decodeLog(l)
		if ev.Kind == KindUnknown {
			skipped++
			continue
		}
		decoded = append(decoded, ev)
	}
	if skipped > 0 {
		ix.logger.Warn("skipped undecodable log entries", zap.Int("count", skipped))
	}
	return decoded, nil
}

// CreationEvents scans all proposal-creation records. This is the seed list:
// there is no separate proposal registry to enumerate.
func (ix *Indexer) CreationEvents(ctx context.Context) ([]*ProposalCreatedEvent, error) {
	decoded, err := ix.scan(ctx, ProposalCreatedTopic)
	if err != nil {
		return nil, err
	}
	var events []*ProposalCreatedEvent
	for _, ev := range decoded {
		if ev.Kind == KindProposalCreated {
			events = append(events, ev.ProposalCreated)
		}
	}
	return events, nil
}

// VoteEvents returns all vote-cast records for one proposal. The scan pulls
// every VoteCast log and filters by id client-side: single-field indexed
// filtering is not reliable across providers. Records are not deduplicated
// per voter; the contract may allow vote changes.
func (ix *Indexer) VoteEvents(ctx context.Context, id *big.Int) ([]*types.VoteRecord, error) {
	decoded, err := ix.scan(ctx, VoteCastTopic)
	if err != nil {
		return nil, err
	}
	want := id.String()
	var records []*types.VoteRecord
	for _, ev := range decoded {
		if ev.Kind != KindVoteCast {
			continue
		}
		if ev.VoteCast.ProposalID == want {
			records = append(records, ev.VoteCast)
		}
	}
	return records, nil
}
