package config

import "errors"

// Sentinel error kinds, matchable with errors.Is from callers.
var (
	// ErrInvalidConfig marks a configuration that fails validation.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrLoadConfig marks a failure to read or parse configuration sources.
	ErrLoadConfig = errors.New("load config failed")
)
