package session

import "errors"

// Sentinel errors.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrUnknownMode     = errors.New("unknown mode")
	ErrSessionClosed   = errors.New("session closed")
)
