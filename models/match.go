package models

import (
	"time"

	"gorm.io/datatypes"
)

type MatchRecord struct {
	ID             string `gorm:"primaryKey"`
	FirstPlayerID  string `gorm:"index"`
	SecondPlayerID string `gorm:"index"`
	WinnerID       string // empty for abandoned matches
	Status         string // finished | abandoned
	RoundsJSON     datatypes.JSON
	StartedAt      time.Time
	EndedAt        time.Time
	CreatedAt      time.Time
}
