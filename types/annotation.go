// Package types
package types

// Annotation is an off-chain status or update record attached to a proposal.
// The payload is an opaque JSON document; only the envelope is structured.
type Annotation struct {
	ProposalID string `json:"proposalId" bson:"proposalId"`
	Key        string `json:"key" bson:"key"`
	Author     string `json:"author" bson:"author"`
	Payload    string `json:"payload" bson:"payload"`
	UpdateTime int64  `json:"updateTime" bson:"updateTime"`
}
