package models

import "github.com/google/uuid"

// StoragePayload is the client-supplied document accepted by the storage
// endpoint. Unknown fields are rejected at decode time.
type StoragePayload struct {
	Title       string `json:"title" validate:"required,max=120,safe_title"`
	Description string `json:"description" validate:"required,max=5000,no_tags"`
	UserID      string `json:"userId" validate:"required,user_id"`
	Timestamp   int64  `json:"timestamp" validate:"required,gt=0"`
}

// StorageEntry is a persisted storage payload.
type StorageEntry struct {
	ID        uuid.UUID      `json:"id"`
	Payload   StoragePayload `json:"payload"`
	CreatedAt int64          `json:"createdAt"`
}
