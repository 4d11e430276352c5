package api

import "errors"

var (
	// ErrNotFound is returned when no events exist for a release
	ErrNotFound = errors.New("release not found")

	// ErrConfiguration is returned when a release's declared platform set is missing or malformed
	ErrConfiguration = errors.New("release is misconfigured")

	// ErrDuplicateEvent is returned when an event with the same release and event name is already recorded
	ErrDuplicateEvent = errors.New("release event already exists")

	// ErrInvalidEvent is returned when an ingested event fails validation
	ErrInvalidEvent = errors.New("release event is invalid")
)
