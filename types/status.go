// Package types
package types

// SyncStatus describes the last published synchronization generation.
type SyncStatus struct {
	Generation uint64 `json:"generation"`
	SyncedAt   int64  `json:"syncedAt"`
	Proposals  int    `json:"proposals"`
}
