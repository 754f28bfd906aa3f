// Package reconcile merges the two vote-tally sources into one authoritative
// view. The precedence rule is a deliberate design decision: the aggregate
// getter lags the event log right after a transaction is mined, while the
// log is complete as soon as the transaction is indexed, so event-derived
// totals win whenever at least one vote event exists. The two sources are
// never averaged; one is selected and the choice is recorded as provenance.
package reconcile

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/daoforge/governor-backend/types"
)

type Reconciler struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Reconciler {
	return &Reconciler{
		logger: logger.With(zap.String("component", "reconcile")),
	}
}

// Tally selects the authoritative totals for one proposal. Both inputs must
// come from the same synchronization pass; mixing vintages across passes
// breaks the precedence reasoning.
//
// aggregate may be nil when the getter was unavailable. eventTally must not
// be nil; an empty record set folds to a zero tally with eventCount 0.
func (r *Reconciler) Tally(proposalID string, aggregate *types.Tally, eventTally *types.Tally, eventCount int) types.TallyView {
	if eventCount > 0 {
		view := eventTally.View(types.ProvenanceEventDerived)
		view.EventCount = eventCount
		// Totals are integers on chain, comparison is exact.
		if aggregate != nil && !aggregate.Equal(eventTally) {
			view.Mismatch = true
			r.logger.Warn("tally sources disagree, event-derived selected",
				zap.String("proposalId", proposalID),
				zap.String("aggregateFor", aggregate.For.String()),
				zap.String("aggregateAgainst", aggregate.Against.String()),
				zap.String("aggregateAbstain", aggregate.Abstain.String()),
				zap.String("eventFor", eventTally.For.String()),
				zap.String("eventAgainst", eventTally.Against.String()),
				zap.String("eventAbstain", eventTally.Abstain.String()))
		}
		return view
	}

	if aggregate != nil {
		return aggregate.View(types.ProvenanceAggregate)
	}

	// Both sources empty-handed: publish zeros for display continuity only.
	// Nothing that gates a write may rely on this value.
	r.logger.Warn("no tally source available, publishing zero totals",
		zap.String("proposalId", proposalID))
	return types.NewTally().View(types.ProvenanceAggregate)
}

// CoreAnomalies validates cross-field invariants of a proposal core read.
// A violation marks the data source inconsistent; values are reported as
// read, never swapped or clamped.
func (r *Reconciler) CoreAnomalies(proposalID string, core *types.ProposalCore) []string {
	var anomalies []string
	if core.Snapshot > core.Deadline {
		msg := fmt.Sprintf("snapshot block %d is after deadline block %d", core.Snapshot, core.Deadline)
		anomalies = append(anomalies, msg)
		r.logger.Warn("proposal core invariant violated",
			zap.String("proposalId", proposalID),
			zap.Uint64("snapshot", core.Snapshot),
			zap.Uint64("deadline", core.Deadline))
	}
	return anomalies
}
