package repository

import "errors"

var (
	// ErrNotFound is returned when no post, account or entry exists for the key.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition is returned when a status change is not allowed
	// from the post's current status. Callers should re-fetch and retry.
	ErrInvalidTransition = errors.New("invalid status transition")
)
