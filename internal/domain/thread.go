package domain

import "time"

// Thread is a persisted conversation keyed by an opaque identifier.
// A thread is created on first reference to an unseen identifier and is
// never explicitly destroyed; its history grows only by appending.
type Thread struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Messages  []Message `json:"messages,omitempty"`
}
