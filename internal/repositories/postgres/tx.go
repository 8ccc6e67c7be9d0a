package postgres

import (
	"fmt"
	"sort"
	"time"

	"github.com/rebecca-roussel/ecoride/internal/models"
	"github.com/rebecca-roussel/ecoride/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type txStore struct {
	db *gorm.DB
}

var _ repositories.Tx = (*txStore)(nil)

func (t *txStore) forUpdate() *gorm.DB {
	return t.db.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (t *txStore) LockRide(id uint) (*models.Ride, error) {
	var ride models.Ride
	if err := t.forUpdate().First(&ride, id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &ride, nil
}

func (t *txStore) LockUser(id uint) (*models.User, error) {
	var user models.User
	if err := t.forUpdate().First(&user, id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &user, nil
}

func (t *txStore) LockUsers(ids []uint) (map[uint]*models.User, error) {
	sorted := append([]uint(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	users := make(map[uint]*models.User, len(sorted))
	for _, id := range sorted {
		if _, seen := users[id]; seen {
			continue
		}
		user, err := t.LockUser(id)
		if err != nil {
			return nil, fmt.Errorf("lock user %d: %w", id, err)
		}
		users[id] = user
	}
	return users, nil
}

func (t *txStore) LockVehicle(id uint) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := t.forUpdate().First(&vehicle, id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &vehicle, nil
}

func (t *txStore) FindActiveParticipation(rideID, passengerID uint) (*models.Participation, error) {
	var p models.Participation
	err := t.forUpdate().
		Where("ride_id = ? AND passenger_id = ? AND cancelled = ?", rideID, passengerID, false).
		First(&p).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (t *txStore) ActiveParticipations(rideID uint) ([]models.Participation, error) {
	var participations []models.Participation
	err := t.db.Preload("Passenger").
		Where("ride_id = ? AND cancelled = ?", rideID, false).
		Order("passenger_id ASC").
		Find(&participations).Error
	return participations, mapErr(err)
}

func (t *txStore) CreateParticipation(p *models.Participation) error {
	return mapErr(t.db.Create(p).Error)
}

func (t *txStore) CancelParticipation(id uint, at time.Time) (int64, error) {
	result := t.db.Model(&models.Participation{}).
		Where("id = ? AND cancelled = ?", id, false).
		Updates(map[string]interface{}{
			"cancelled":    true,
			"cancelled_at": at,
			"validation":   models.ValidationNotRequested,
		})
	return result.RowsAffected, result.Error
}

func (t *txStore) CancelRideParticipations(rideID uint, at time.Time) (int64, error) {
	result := t.db.Model(&models.Participation{}).
		Where("ride_id = ? AND cancelled = ?", rideID, false).
		Updates(map[string]interface{}{
			"cancelled":    true,
			"cancelled_at": at,
			"validation":   models.ValidationNotRequested,
		})
	return result.RowsAffected, result.Error
}

func (t *txStore) RequestValidation(rideID uint) (int64, error) {
	result := t.db.Model(&models.Participation{}).
		Where("ride_id = ? AND cancelled = ? AND validation = ?", rideID, false, models.ValidationNotRequested).
		Update("validation", models.ValidationPending)
	return result.RowsAffected, result.Error
}

func (t *txStore) MarkValidated(participationID uint) (int64, error) {
	result := t.db.Model(&models.Participation{}).
		Where("id = ? AND cancelled = ? AND validation = ?", participationID, false, models.ValidationPending).
		Update("validation", models.ValidationOK)
	return result.RowsAffected, result.Error
}

func (t *txStore) AdjustSeats(rideID uint, delta int) error {
	result := t.db.Model(&models.Ride{}).
		Where("id = ? AND seats_available + ? >= 0 AND seats_available + ? <= seats_total", rideID, delta, delta).
		Update("seats_available", gorm.Expr("seats_available + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("adjust seats of ride %d by %d: out of bounds", rideID, delta)
	}
	return nil
}

func (t *txStore) AdjustCredits(userID uint, delta int) error {
	result := t.db.Model(&models.User{}).
		Where("id = ? AND credits + ? >= 0", userID, delta).
		Update("credits", gorm.Expr("credits + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("adjust credits of user %d by %d: balance would go negative", userID, delta)
	}
	return nil
}

func (t *txStore) TransitionRide(rideID, driverID uint, from []models.RideStatus, to models.RideStatus) (int64, error) {
	result := t.db.Model(&models.Ride{}).
		Where("id = ? AND driver_id = ? AND status IN ?", rideID, driverID, from).
		Update("status", to)
	return result.RowsAffected, result.Error
}

func (t *txStore) DeclareIncident(rideID, driverID uint, from []models.RideStatus, comment string, at time.Time) (int64, error) {
	result := t.db.Model(&models.Ride{}).
		Where("id = ? AND driver_id = ? AND status IN ?", rideID, driverID, from).
		Updates(map[string]interface{}{
			"status":               models.RideStatusIncident,
			"incident_comment":     comment,
			"incident_declared_at": at,
			"incident_resolved":    false,
		})
	return result.RowsAffected, result.Error
}

func (t *txStore) ReviewExists(participationID uint) (bool, error) {
	var count int64
	err := t.db.Model(&models.Review{}).Where("participation_id = ?", participationID).Count(&count).Error
	return count > 0, err
}

func (t *txStore) CreateReview(r *models.Review) error {
	return mapErr(t.db.Create(r).Error)
}

func (t *txStore) CreateCommission(c *models.PlatformCommission) error {
	return mapErr(t.db.Create(c).Error)
}

func (t *txStore) CreateRide(ride *models.Ride) error {
	return mapErr(t.db.Omit("Driver", "Vehicle").Create(ride).Error)
}

func (t *txStore) CountOpenRides(vehicleID uint) (int64, error) {
	var count int64
	err := t.db.Model(&models.Ride{}).
		Where("vehicle_id = ? AND status IN ?", vehicleID,
			[]models.RideStatus{models.RideStatusPlanned, models.RideStatusInProgress}).
		Count(&count).Error
	return count, err
}

func (t *txStore) DeactivateVehicle(vehicleID uint, at time.Time) (int64, error) {
	result := t.db.Model(&models.Vehicle{}).
		Where("id = ? AND active = ?", vehicleID, true).
		Updates(map[string]interface{}{"active": false, "deactivated_at": at})
	return result.RowsAffected, result.Error
}

func (t *txStore) ConsumePasswordReset(tokenHash string, now time.Time) (*models.PasswordReset, error) {
	var reset models.PasswordReset
	if err := t.forUpdate().Where("token_hash = ?", tokenHash).First(&reset).Error; err != nil {
		return nil, mapErr(err)
	}
	if !reset.IsValid(now) {
		return nil, repositories.ErrNotFound
	}
	if err := t.db.Model(&reset).Update("used", true).Error; err != nil {
		return nil, err
	}
	reset.Used = true
	return &reset, nil
}

func (t *txStore) SetPassword(userID uint, hash string) error {
	result := t.db.Model(&models.User{}).Where("id = ?", userID).Update("password_hash", hash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return repositories.ErrNotFound
	}
	return nil
}
