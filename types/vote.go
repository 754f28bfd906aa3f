// Package types
package types

import (
	"math/big"
)

// SupportType is the ballot option encoded in a vote-cast event.
type SupportType uint8

const (
	SupportAgainst SupportType = 0
	SupportFor     SupportType = 1
	SupportAbstain SupportType = 2
)

func (s SupportType) String() string {
	switch s {
	case SupportAgainst:
		return "Against"
	case SupportFor:
		return "For"
	case SupportAbstain:
		return "Abstain"
	default:
		return "Unknown"
	}
}

// VoteRecord is one vote-cast entry replayed from the event log. The log may
// hold several records per (voter, proposal) if the contract allows vote
// changes; nothing here assumes uniqueness.
type VoteRecord struct {
	Voter       string      `json:"voter"`
	ProposalID  string      `json:"proposalId"`
	Support     SupportType `json:"support"`
	Weight      *big.Int    `json:"weight"`
	BlockHeight uint64      `json:"blockHeight"`
	TxHash      string      `json:"txHash"`
	LogIndex    uint        `json:"logIndex"`
}

// Tally holds raw vote totals as big integers, used inside a synchronization
// pass before the reconciled view is published.
type Tally struct {
	For     *big.Int
	Against *big.Int
	Abstain *big.Int
}

func NewTally() *Tally {
	return &Tally{
		For:     new(big.Int),
		Against: new(big.Int),
		Abstain: new(big.Int),
	}
}

// Equal reports whether two tallies match exactly. A nil side never matches.
func (t *Tally) Equal(other *Tally) bool {
	if t == nil || other == nil {
		return false
	}
	return t.For.Cmp(other.For) == 0 &&
		t.Against.Cmp(other.Against) == 0 &&
		t.Abstain.Cmp(other.Abstain) == 0
}

func (t *Tally) IsZero() bool {
	return t.For.Sign() == 0 && t.Against.Sign() == 0 && t.Abstain.Sign() == 0
}
