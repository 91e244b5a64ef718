package model

import "time"

// PendingChange is the local fallback record written when every attempt to
// persist a document's content has failed. The durable write is lost, the
// content is not.
type PendingChange struct {
	Identifier NodeID    `json:"identifier"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
}
