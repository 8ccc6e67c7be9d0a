package postgres

import (
	"context"
	"time"

	"github.com/rebecca-roussel/ecoride/internal/models"
)

func (s *Store) ModerateReview(ctx context.Context, reviewID, employeeID uint, status models.ReviewStatus, at time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Model(&models.Review{}).
		Where("id = ? AND status = ?", reviewID, models.ReviewStatusPending).
		Updates(map[string]interface{}{
			"status":       status,
			"moderated_by": employeeID,
			"moderated_at": at,
		})
	return result.RowsAffected, result.Error
}

func (s *Store) PendingReviews(ctx context.Context) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.WithContext(ctx).Preload("Author").
		Where("status = ?", models.ReviewStatusPending).
		Order("created_at ASC").
		Find(&reviews).Error
	return reviews, err
}

func (s *Store) ApprovedReviewsForDriver(ctx context.Context, driverID uint) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.WithContext(ctx).Preload("Author").
		Where("driver_id = ? AND status = ?", driverID, models.ReviewStatusApproved).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

func (s *Store) DriverRatings(ctx context.Context, driverIDs []uint) (map[uint]float64, error) {
	ratings := make(map[uint]float64, len(driverIDs))
	if len(driverIDs) == 0 {
		return ratings, nil
	}

	var rows []struct {
		DriverID uint
		Average  float64
	}
	err := s.db.WithContext(ctx).Model(&models.Review{}).
		Select("driver_id, AVG(rating) AS average").
		Where("driver_id IN ? AND status = ?", driverIDs, models.ReviewStatusApproved).
		Group("driver_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		ratings[row.DriverID] = row.Average
	}
	return ratings, nil
}

func (s *Store) ReviewByParticipation(ctx context.Context, participationID uint) (*models.Review, error) {
	var review models.Review
	err := s.db.WithContext(ctx).
		Where("participation_id = ?", participationID).
		First(&review).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return &review, nil
}
