// Package types
package types

// EligibilityStatus distinguishes the ways an account can be unable to cast
// a counting vote. NoneAtSnapshot and NoPower are different verdicts: a vote
// submitted with zero snapshot power is accepted by the chain but counts for
// nothing, so collapsing the two would hide the reason from the voter.
type EligibilityStatus string

const (
	Eligible       EligibilityStatus = "eligible"
	NoneAtSnapshot EligibilityStatus = "none-at-snapshot"
	NoPower        EligibilityStatus = "no-power"
	// EligibilityUnknown means the snapshot-block read was unavailable.
	// Unknown blocks the vote path, it never authorizes it.
	EligibilityUnknown EligibilityStatus = "unknown"
)

// EligibilitySnapshot is an account's voting power measured at one
// proposal's snapshot block. It is computed on demand and only valid for
// that proposal.
type EligibilitySnapshot struct {
	Account         string            `json:"account"`
	ProposalID      string            `json:"proposalId"`
	SnapshotBlock   uint64            `json:"snapshotBlock"`
	PowerAtSnapshot string            `json:"powerAtSnapshot"`
	CurrentPower    string            `json:"currentPower"`
	Status          EligibilityStatus `json:"status"`
}

// CanVote reports whether submitting a vote would count for non-zero weight.
func (e *EligibilitySnapshot) CanVote() bool {
	return e.Status == Eligible
}
