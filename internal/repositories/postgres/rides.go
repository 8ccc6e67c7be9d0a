package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/rebecca-roussel/ecoride/internal/models"
	"github.com/rebecca-roussel/ecoride/internal/repositories"
	"gorm.io/gorm"
)

func (s *Store) GetRide(ctx context.Context, id uint) (*models.Ride, error) {
	var ride models.Ride
	err := s.db.WithContext(ctx).Preload("Driver").Preload("Vehicle").First(&ride, id).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return &ride, nil
}

// bookableRides applies the filters shared by the search and the next-date
// lookup, so the limit counts only matching rides. Cities compare
// case-insensitively.
func (s *Store) bookableRides(ctx context.Context, q repositories.RideQuery) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.Ride{}).
		Where("covoiturage.status = ? AND covoiturage.seats_available > 0", models.RideStatusPlanned).
		Where("LOWER(covoiturage.departure_city) = LOWER(?)", q.DepartureCity).
		Where("LOWER(covoiturage.arrival_city) = LOWER(?)", q.ArrivalCity)

	if q.EcoOnly {
		query = query.Joins("JOIN voiture ON voiture.id = covoiturage.vehicle_id AND voiture.energy = ?", models.EnergyElectric)
	}
	if q.MaxPrice > 0 {
		query = query.Where("covoiturage.price_credits <= ?", q.MaxPrice)
	}
	if q.MaxDuration > 0 {
		query = query.Where("EXTRACT(EPOCH FROM (covoiturage.arrival_at - covoiturage.departure_at)) <= ?", q.MaxDuration.Seconds())
	}
	if q.MinRating > 0 {
		rated := s.db.Model(&models.Review{}).
			Select("driver_id").
			Where("status = ?", models.ReviewStatusApproved).
			Group("driver_id").
			Having("AVG(rating) >= ?", q.MinRating)
		query = query.Where("covoiturage.driver_id IN (?)", rated)
	}
	return query
}

func (s *Store) SearchRides(ctx context.Context, q repositories.RideQuery) ([]models.Ride, error) {
	query := s.bookableRides(ctx, q).
		Preload("Driver").Preload("Vehicle").
		Where("covoiturage.departure_at >= ?", q.From)
	if !q.To.IsZero() {
		query = query.Where("covoiturage.departure_at < ?", q.To)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	var rides []models.Ride
	err := query.Order("covoiturage.departure_at ASC").Find(&rides).Error
	return rides, err
}

func (s *Store) NextDepartureDate(ctx context.Context, q repositories.RideQuery) (time.Time, error) {
	var next sql.NullTime
	err := s.bookableRides(ctx, q).
		Where("covoiturage.departure_at >= ?", q.From).
		Select("MIN(covoiturage.departure_at)").
		Row().Scan(&next)
	if err != nil {
		return time.Time{}, err
	}
	if !next.Valid {
		return time.Time{}, repositories.ErrNotFound
	}
	return next.Time, nil
}

func (s *Store) RidesByDriver(ctx context.Context, driverID uint) ([]models.Ride, error) {
	var rides []models.Ride
	err := s.db.WithContext(ctx).Preload("Vehicle").
		Where("driver_id = ?", driverID).
		Order("departure_at DESC").
		Find(&rides).Error
	return rides, err
}

func (s *Store) ParticipationsByPassenger(ctx context.Context, passengerID uint) ([]models.Participation, error) {
	var participations []models.Participation
	err := s.db.WithContext(ctx).Preload("Ride").Preload("Ride.Driver").
		Where("passenger_id = ?", passengerID).
		Order("created_at DESC").
		Find(&participations).Error
	return participations, err
}

func (s *Store) OpenIncidents(ctx context.Context) ([]models.Ride, error) {
	var rides []models.Ride
	err := s.db.WithContext(ctx).Preload("Driver").
		Where("status = ? AND incident_resolved = ?", models.RideStatusIncident, false).
		Order("incident_declared_at ASC").
		Find(&rides).Error
	return rides, err
}

func (s *Store) ResolveIncident(ctx context.Context, rideID, employeeID uint, at time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Model(&models.Ride{}).
		Where("id = ? AND status = ? AND incident_resolved = ?", rideID, models.RideStatusIncident, false).
		Updates(map[string]interface{}{
			"incident_resolved":    true,
			"incident_resolved_at": at,
			"incident_resolved_by": employeeID,
		})
	return result.RowsAffected, result.Error
}
