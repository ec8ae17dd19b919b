package session

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrNoActiveSession signals a turn or query against a manager with no
	// active session. A precondition violation, not a retryable failure.
	ErrNoActiveSession = errors.New("no active conversation session")

	// ErrSessionActive signals a start attempt while a session is active.
	ErrSessionActive = errors.New("a conversation session is already active")

	// ErrInvalidSpeaker signals an unknown speaker value.
	ErrInvalidSpeaker = errors.New("invalid speaker")
)
