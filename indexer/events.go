// Package indexer
package indexer

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/daoforge/governor-backend/chain"
	"github.com/daoforge/governor-backend/types"
)

// Event signatures (keccak256 of the canonical signature).
var (
	// ProposalCreated(uint256 indexed proposalId, address indexed proposer, uint256 voteStart, uint256 voteEnd, string description)
	ProposalCreatedTopic = crypto.Keccak256Hash([]byte("ProposalCreated(uint256,address,uint256,uint256,string)"))

	// VoteCast(address indexed voter, uint256 indexed proposalId, uint8 support, uint256 weight)
	VoteCastTopic = crypto.Keccak256Hash([]byte("VoteCast(address,uint256,uint8,uint256)"))
)

type EventKind int

const (
	KindUnknown EventKind = iota
	KindProposalCreated
	KindVoteCast
)

// ProposalCreatedEvent is the decoded creation record; the seed entry every
// proposal in the reconciled list is built from.
type ProposalCreatedEvent struct {
	ID          *big.Int
	Proposer    common.Address
	VoteStart   uint64
	VoteEnd     uint64
	Description string
	BlockHeight uint64
	TxHash      common.Hash
}

// DecodedEvent is a tagged variant over the governance log entries this
// service understands. Exactly one of the payload fields is set, matching
// Kind; unparseable logs come back as KindUnknown and are counted by the
// scanner rather than coerced.
type DecodedEvent struct {
	Kind            EventKind
	ProposalCreated *ProposalCreatedEvent
	VoteCast        *types.VoteRecord
}

func decodeLog(l ethtypes.Log) DecodedEvent {
	if len(l.Topics) == 0 {
		return DecodedEvent{Kind: KindUnknown}
	}
	switch l.Topics[0] {
	case ProposalCreatedTopic:
		return decodeProposalCreated(l)
	case VoteCastTopic:
		return decodeVoteCast(l)
	}
	return DecodedEvent{Kind: KindUnknown}
}

func decodeProposalCreated(l ethtypes.Log) DecodedEvent {
	if len(l.Topics) < 3 {
		return DecodedEvent{Kind: KindUnknown}
	}
	var data struct {
		VoteStart   *big.Int
		VoteEnd     *big.Int
		Description string
	}
	if err := chain.GovernorABI.UnpackIntoInterface(&data, "ProposalCreated", l.Data); err != nil {
		return DecodedEvent{Kind: KindUnknown}
	}
	return DecodedEvent{
		Kind: KindProposalCreated,
		ProposalCreated: &ProposalCreatedEvent{
			ID:          new(big.Int).SetBytes(l.Topics[1].Bytes()),
			Proposer:    common.BytesToAddress(l.Topics[2].Bytes()),
			VoteStart:   data.VoteStart.Uint64(),
			VoteEnd:     data.VoteEnd.Uint64(),
			Description: data.Description,
			BlockHeight: l.BlockNumber,
			TxHash:      l.TxHash,
		},
	}
}

func decodeVoteCast(l ethtypes.Log) DecodedEvent {
	if len(l.Topics) < 3 {
		return DecodedEvent{Kind: KindUnknown}
	}
	var data struct {
		Support uint8
		Weight  *big.Int
	}
	if err := chain.GovernorABI.UnpackIntoInterface(&data, "VoteCast", l.Data); err != nil {
		return DecodedEvent{Kind: KindUnknown}
	}
	if data.Support > uint8(types.SupportAbstain) {
		return DecodedEvent{Kind: KindUnknown}
	}
	return DecodedEvent{
		Kind: KindVoteCast,
		VoteCast: &types.VoteRecord{
			Voter:       common.BytesToAddress(l.Topics[1].Bytes()).Hex(),
			ProposalID:  new(big.Int).SetBytes(l.Topics[2].Bytes()).String(),
			Support:     types.SupportType(data.Support),
			Weight:      data.Weight,
			BlockHeight: l.BlockNumber,
			TxHash:      l.TxHash.Hex(),
			LogIndex:    l.Index,
		},
	}
}
