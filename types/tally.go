// Package types
package types

// Provenance records which data source a reconciled tally came from.
type Provenance string

const (
	ProvenanceAggregate    Provenance = "aggregate"
	ProvenanceEventDerived Provenance = "event-derived"
)

// TallyView is the reconciled, published tally for one proposal. Totals are
// decimal strings; Mismatch is set when the aggregate getter and the
// event-derived fold disagreed at reconciliation time.
type TallyView struct {
	For     string `json:"for" bson:"for"`
	Against string `json:"against" bson:"against"`
	Abstain string `json:"abstain" bson:"abstain"`

	Provenance Provenance `json:"provenance" bson:"provenance"`
	Mismatch   bool       `json:"mismatch" bson:"mismatch"`

	// EventCount is the number of vote-cast records behind an event-derived
	// tally; zero when the aggregate source was selected.
	EventCount int `json:"eventCount" bson:"eventCount"`
}

// View publishes a raw tally under the given provenance.
func (t *Tally) View(p Provenance) TallyView {
	return TallyView{
		For:        t.For.String(),
		Against:    t.Against.String(),
		Abstain:    t.Abstain.String(),
		Provenance: p,
	}
}
