package domain

import "time"

// Session is one chat conversation. Each session owns its own device
// registry inside the session manager; the stored record only carries the
// transcript and bookkeeping.
type Session struct {
	ID         string
	Transcript []Turn
	Status     SessionStatus
	StartedAt  time.Time
	UpdatedAt  time.Time
}

// Role identifies who produced a transcript turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single transcript entry.
type Turn struct {
	Role      Role
	Text      string
	VideoURLs []string
	At        time.Time
}

// SessionStatus tracks the lifecycle of a chat session.
type SessionStatus int

const (
	SessionActive SessionStatus = iota
	SessionExpired
	SessionClosed
)

// String returns a human-readable session status.
func (s SessionStatus) String() string {
	switch s {
	case SessionActive:
		return "active"
	case SessionExpired:
		return "expired"
	case SessionClosed:
		return "closed"
	default:
		return "unknown"
	}
}
