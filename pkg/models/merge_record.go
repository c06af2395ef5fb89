package models

import "github.com/google/uuid"

// PartitionTagHistory is the constant partition tag under which every merge
// snapshot is appended.
const PartitionTagHistory = "history"

// MergeRecord is one immutable snapshot of a successful merge. Records are
// written once by the pipeline and never mutated; the table is an append-only
// log indexed by creation time.
type MergeRecord struct {
	ID           uuid.UUID `json:"id"`
	PartitionTag string    `json:"partitionTag"`
	TotalCount   int       `json:"totalCount"`
	// Payload holds the serialized entity list of the snapshot.
	Payload []byte `json:"-"`
	// CreatedAt is epoch milliseconds at write time.
	CreatedAt int64 `json:"createdAt"`
}
