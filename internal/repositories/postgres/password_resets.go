package postgres

import (
	"context"

	"github.com/rebecca-roussel/ecoride/internal/models"
)

func (s *Store) CreatePasswordReset(ctx context.Context, reset *models.PasswordReset) error {
	return mapErr(s.db.WithContext(ctx).Create(reset).Error)
}

func (s *Store) InvalidatePasswordResets(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Model(&models.PasswordReset{}).
		Where("user_id = ? AND used = ?", userID, false).
		Update("used", true).Error
}
