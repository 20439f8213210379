package models

import "errors"

var (
	// ErrUnsupportedPlatform means the platform is unknown or has no working
	// client for the requested capability.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	// ErrMalformedInput marks a record that was skipped or neutralised.
	ErrMalformedInput = errors.New("malformed input")
	// ErrExternalService wraps failures reported by a remote platform API.
	ErrExternalService = errors.New("external service failure")
	// ErrNotFound is returned by stores and the scheduler for unknown ids.
	ErrNotFound = errors.New("not found")
)
