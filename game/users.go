package game

import "context"

// UserInfo is the slice of a user the engine cares about.
type UserInfo struct {
	ID     string
	Handle string
	Rating int
}

// UserUpdate is applied to a user's persistent counters at match end.
type UserUpdate struct {
	RatingDelta   int
	WinIncrement  int
	LossIncrement int
}

// UserDirectory is the external user collaborator. FindUser returns
// ErrNotFound for unknown IDs.
type UserDirectory interface {
	FindUser(ctx context.Context, id string) (*UserInfo, error)
	UpdateUser(ctx context.Context, id string, upd UserUpdate) error
}
