package game

import (
	"context"

	"github.com/rpsarena/rps-backend/utils/logger"
)

const (
	WinnerRatingDelta = 10
	LoserRatingDelta  = -5
)

// ResultCommitter applies a finished match to both players' persistent
// rating and win/loss counters.
type ResultCommitter struct {
	users UserDirectory
}

func NewResultCommitter(users UserDirectory) *ResultCommitter {
	return &ResultCommitter{users: users}
}

// Commit updates winner and loser independently. A failure on either side is
// logged and swallowed: the match already finished and the clients were
// already told who won.
func (rc *ResultCommitter) Commit(ctx context.Context, winnerID, loserID string) {
	if err := rc.users.UpdateUser(ctx, winnerID, UserUpdate{
		RatingDelta:  WinnerRatingDelta,
		WinIncrement: 1,
	}); err != nil {
		logger.Errorf("failed to update winner %s: %v", winnerID, err)
	}

	if err := rc.users.UpdateUser(ctx, loserID, UserUpdate{
		RatingDelta:   LoserRatingDelta,
		LossIncrement: 1,
	}); err != nil {
		logger.Errorf("failed to update loser %s: %v", loserID, err)
	}
}
