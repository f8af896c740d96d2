package store

import (
	"context"
	"encoding/json"

	"github.com/rpsarena/rps-backend/game"
	"github.com/rpsarena/rps-backend/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Matches archives finished and abandoned matches with their round history.
type Matches struct {
	db *gorm.DB
}

func NewMatches(db *gorm.DB) *Matches {
	return &Matches{db: db}
}

func (s *Matches) ArchiveMatch(ctx context.Context, rec game.ArchivedMatch) error {
	rounds, err := json.Marshal(rec.Rounds)
	if err != nil {
		return err
	}

	record := models.MatchRecord{
		ID:             rec.ID,
		FirstPlayerID:  rec.FirstPlayerID,
		SecondPlayerID: rec.SecondPlayerID,
		WinnerID:       rec.WinnerID,
		Status:         rec.Status,
		RoundsJSON:     datatypes.JSON(rounds),
		StartedAt:      rec.StartedAt,
		EndedAt:        rec.EndedAt,
	}
	return s.db.WithContext(ctx).Create(&record).Error
}
