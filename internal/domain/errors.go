package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrNotFound        = errors.New("not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session is closed")
	ErrTooManySessions = errors.New("too many sessions")
	ErrNotImplemented  = errors.New("not implemented")
)
