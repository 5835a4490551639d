// Package transcript persists per-persona conversation logs.
//
// Storage model:
//   - A single BoltDB file holds all transcripts; one bucket per persona id,
//     one key per session id, value = JSON-encoded message slice.
//   - Saves replace the whole record inside one transaction, so a reader
//     never observes a partially written transcript, and concurrent writers
//     on the same persona are serialized by the database.
//   - Absence is a valid empty state: loading an unknown persona or session
//     returns an empty transcript, never a not-found error.
package transcript

import "time"

// Role tags a message's author within a transcript.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in the append-only conversation log.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
