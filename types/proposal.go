// Package types
package types

import (
	"strings"
)

// ProposalState mirrors the governor contract state enum. The label is always
// read back from the contract, never derived locally.
type ProposalState uint8

const (
	StatePending ProposalState = iota
	StateActive
	StateCanceled
	StateDefeated
	StateSucceeded
	StateQueued
	StateExpired
	StateExecuted
)

func (s ProposalState) String() string {
	switch s {
	case StatePending:
		return "Pending"
	case StateActive:
		return "Active"
	case StateCanceled:
		return "Canceled"
	case StateDefeated:
		return "Defeated"
	case StateSucceeded:
		return "Succeeded"
	case StateQueued:
		return "Queued"
	case StateExpired:
		return "Expired"
	case StateExecuted:
		return "Executed"
	default:
		return "Unknown"
	}
}

// IsTerminal reports whether the proposal can no longer change state.
func (s ProposalState) IsTerminal() bool {
	switch s {
	case StateCanceled, StateDefeated, StateExpired, StateExecuted:
		return true
	}
	return false
}

// ProposalMeta is the structured part of a proposal description. Descriptions
// encode metadata as newline-delimited fields by convention, there is no
// on-chain schema.
type ProposalMeta struct {
	Title     string `json:"title" bson:"title"`
	Category  string `json:"category" bson:"category"`
	Amount    string `json:"amount" bson:"amount"`
	Recipient string `json:"recipient" bson:"recipient"`
}

// ParseProposalMeta splits a free-text description into its conventional
// fields. Missing trailing fields are left empty, the first line is always
// the title.
func ParseProposalMeta(description string) ProposalMeta {
	meta := ProposalMeta{}
	lines := strings.Split(description, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		switch i {
		case 0:
			meta.Title = line
		case 1:
			meta.Category = line
		case 2:
			meta.Amount = line
		case 3:
			meta.Recipient = line
		}
	}
	return meta
}

type ProposalCore struct {
	State    ProposalState `json:"state"`
	Snapshot uint64        `json:"snapshot"`
	Deadline uint64        `json:"deadline"`
}

// Proposal is one reconciled governance proposal. Every field is a value
// captured within a single synchronization pass; a new pass replaces the
// whole struct rather than mutating fields in place.
type Proposal struct {
	ID          string       `json:"id" bson:"id"`
	Proposer    string       `json:"proposer" bson:"proposer"`
	Description string       `json:"description" bson:"description"`
	Meta        ProposalMeta `json:"meta" bson:"meta"`

	State      ProposalState `json:"state"`
	StateLabel string        `json:"stateLabel"`
	Snapshot   uint64        `json:"snapshot"`
	Deadline   uint64        `json:"deadline"`

	// DeadlineTime is an estimate until the deadline block is mined.
	DeadlineTime  int64  `json:"deadlineTime"`
	DeadlineIsEst bool   `json:"deadlineIsEstimate"`
	BlockHeight   uint64 `json:"blockHeight"`

	Tally TallyView `json:"tally"`

	// Caller-scoped fields, only populated when a caller address was given.
	HasVoted    bool                 `json:"hasVoted"`
	Eligibility *EligibilitySnapshot `json:"eligibility,omitempty"`

	// Anomalies carries data-source inconsistencies detected during
	// reconciliation (snapshot/deadline inversion, fold disagreement).
	// They are surfaced, never silently corrected.
	Anomalies []string `json:"anomalies,omitempty"`
}
