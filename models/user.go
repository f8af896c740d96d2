package models

import "time"

type User struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	Handle      string    `gorm:"uniqueIndex" json:"handle"`
	EloRating   int       `gorm:"default:1000" json:"elo_rating"`
	TotalWins   int       `json:"total_wins"`
	TotalLosses int       `json:"total_losses"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
