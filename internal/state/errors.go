package state

import "errors"

// Sentinel errors for the state package.
var (
	// ErrAlreadySeeded is returned when Seed is called after the list has been
	// seeded or mutated.
	ErrAlreadySeeded = errors.New("store already seeded")

	// ErrUnknownAction is returned for actions the store cannot apply.
	ErrUnknownAction = errors.New("unknown action")
)
