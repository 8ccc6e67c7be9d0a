package postgres

import (
	"context"
	"strings"

	"github.com/rebecca-roussel/ecoride/internal/models"
	"gorm.io/gorm"
)

func (s *Store) withRoles(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Preload("Employee").Preload("Administrator")
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	return mapErr(s.db.WithContext(ctx).Create(user).Error)
}

func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.withRoles(ctx).First(&user, id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.withRoles(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return &user, nil
}

// UpdateProfile writes the editable profile columns only; credits, status
// and password never change through this path.
func (s *Store) UpdateProfile(ctx context.Context, user *models.User) error {
	result := s.db.WithContext(ctx).Model(user).
		Select("pseudo", "phone", "is_driver", "is_passenger", "smoker", "animals").
		Updates(user)
	if result.Error != nil {
		return mapErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return mapErr(gorm.ErrRecordNotFound)
	}
	return nil
}

func (s *Store) SetPhoto(ctx context.Context, userID uint, url string) error {
	return s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("photo_url", url).Error
}

func (s *Store) SetStatus(ctx context.Context, userID uint, from, to models.UserStatus) (int64, error) {
	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND status = ?", userID, from).
		Update("status", to)
	return result.RowsAffected, result.Error
}

func (s *Store) CreateEmployee(ctx context.Context, user *models.User, createdBy uint) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	return mapErr(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		employee := &models.Employee{UserID: user.ID, CreatedBy: &createdBy}
		if err := tx.Create(employee).Error; err != nil {
			return err
		}
		user.Employee = employee
		return nil
	}))
}
