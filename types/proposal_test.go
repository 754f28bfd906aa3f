// Package types
package types

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseProposalMeta(t *testing.T) {
	meta := ParseProposalMeta("Fund the grant\ntreasury\n100\n0xdead")
	assert.Equal(t, "Fund the grant", meta.Title)
	assert.Equal(t, "treasury", meta.Category)
	assert.Equal(t, "100", meta.Amount)
	assert.Equal(t, "0xdead", meta.Recipient)
}

func TestParseProposalMeta_PartialDescription(t *testing.T) {
	meta := ParseProposalMeta("Only a title")
	assert.Equal(t, "Only a title", meta.Title)
	assert.Equal(t, "", meta.Category)
	assert.Equal(t, "", meta.Recipient)

	empty := ParseProposalMeta("")
	assert.Equal(t, "", empty.Title)
}

func TestParseProposalMeta_ExtraLinesIgnored(t *testing.T) {
	meta := ParseProposalMeta("t\nc\n1\nr\nfree text\nmore text")
	assert.Equal(t, "t", meta.Title)
	assert.Equal(t, "r", meta.Recipient)
}

func TestProposalStateLabels(t *testing.T) {
	assert.Equal(t, "Pending", StatePending.String())
	assert.Equal(t, "Active", StateActive.String())
	assert.Equal(t, "Executed", StateExecuted.String())
	assert.Equal(t, "Unknown", ProposalState(99).String())
}

func TestProposalStateTerminal(t *testing.T) {
	assert.True(t, StateCanceled.IsTerminal())
	assert.True(t, StateDefeated.IsTerminal())
	assert.True(t, StateExpired.IsTerminal())
	assert.True(t, StateExecuted.IsTerminal())
	assert.False(t, StateActive.IsTerminal())
	assert.False(t, StateQueued.IsTerminal())
	assert.False(t, StateSucceeded.IsTerminal())
}

func TestTallyView(t *testing.T) {
	tally := &Tally{For: big.NewInt(20), Against: big.NewInt(10), Abstain: new(big.Int)}
	view := tally.View(ProvenanceEventDerived)
	assert.Equal(t, "20", view.For)
	assert.Equal(t, "10", view.Against)
	assert.Equal(t, "0", view.Abstain)
	assert.Equal(t, ProvenanceEventDerived, view.Provenance)
	assert.False(t, view.Mismatch)
}

func TestTallyEqual(t *testing.T) {
	a := &Tally{For: big.NewInt(1), Against: big.NewInt(2), Abstain: big.NewInt(3)}
	b := &Tally{For: big.NewInt(1), Against: big.NewInt(2), Abstain: big.NewInt(3)}
	assert.True(t, a.Equal(b))

	b.For = big.NewInt(9)
	assert.False(t, a.Equal(b))
	assert.False(t, a.Equal(nil))
}
