package game

import "errors"

var (
	// ErrNotFound covers unknown user IDs and unknown or consumed lobby codes.
	ErrNotFound = errors.New("not found")

	// ErrInvalidAction is an action submitted in the wrong state. It never
	// mutates anything and never kills the connection.
	ErrInvalidAction = errors.New("invalid action")

	// ErrAlreadyInMatch means the user already occupies a slot somewhere.
	ErrAlreadyInMatch = errors.New("already in a match")
)
