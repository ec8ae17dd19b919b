package semantic

import "errors"

// Sentinel kinds for semantic analysis errors.
var (
	ErrEmptyResponse   = errors.New("empty analysis response")
	ErrInvalidResponse = errors.New("invalid analysis response")
)
