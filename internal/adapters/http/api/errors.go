package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest  = errors.New("bad request")
	ErrNotFound    = errors.New("not found")
	ErrNoSession   = errors.New("no active session")
	ErrUnavailable = errors.New("service unavailable")
)
