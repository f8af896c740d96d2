package store

import (
	"context"
	"errors"

	"github.com/rpsarena/rps-backend/game"
	"github.com/rpsarena/rps-backend/models"

	"gorm.io/gorm"
)

// Users backs the engine's user collaborator with the users table.
type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

func (s *Users) FindUser(ctx context.Context, id string) (*game.UserInfo, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, game.ErrNotFound
		}
		return nil, err
	}
	return &game.UserInfo{ID: user.ID, Handle: user.Handle, Rating: user.EloRating}, nil
}

// UpdateUser applies the deltas atomically in the database rather than
// read-modify-write, so two match finishes touching the same user can't lose
// an update.
func (s *Users) UpdateUser(ctx context.Context, id string, upd game.UserUpdate) error {
	fields := map[string]any{
		"elo_rating": gorm.Expr("elo_rating + ?", upd.RatingDelta),
	}
	if upd.WinIncrement != 0 {
		fields["total_wins"] = gorm.Expr("total_wins + ?", upd.WinIncrement)
	}
	if upd.LossIncrement != 0 {
		fields["total_losses"] = gorm.Expr("total_losses + ?", upd.LossIncrement)
	}

	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return game.ErrNotFound
	}
	return nil
}
