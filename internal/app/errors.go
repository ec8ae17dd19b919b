package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrUnknownTopic          = errors.New("unknown topic")
	ErrPersistenceDisabled   = errors.New("session persistence is disabled")
	ErrTranscriptionDisabled = errors.New("transcription is not configured")
)
