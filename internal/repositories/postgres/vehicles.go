package postgres

import (
	"context"
	"strings"

	"github.com/rebecca-roussel/ecoride/internal/models"
)

func (s *Store) CreateVehicle(ctx context.Context, v *models.Vehicle) error {
	v.Plate = strings.ToUpper(strings.TrimSpace(v.Plate))
	return mapErr(s.db.WithContext(ctx).Create(v).Error)
}

func (s *Store) GetVehicle(ctx context.Context, id uint) (*models.Vehicle, error) {
	var v models.Vehicle
	if err := s.db.WithContext(ctx).First(&v, id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &v, nil
}

func (s *Store) VehiclesByOwner(ctx context.Context, ownerID uint, activeOnly bool) ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	query := s.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	err := query.Order("created_at ASC").Find(&vehicles).Error
	return vehicles, err
}

func (s *Store) ActivePlateExists(ctx context.Context, plate string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Vehicle{}).
		Where("plate = ? AND active = ?", strings.ToUpper(strings.TrimSpace(plate)), true).
		Count(&count).Error
	return count > 0, err
}
