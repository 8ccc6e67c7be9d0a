package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rebecca-roussel/ecoride/internal/apperr"
	"github.com/rebecca-roussel/ecoride/internal/models"
	"github.com/rebecca-roussel/ecoride/internal/repositories"
	"github.com/rebecca-roussel/ecoride/internal/validators"
)

type VehicleInput struct {
	Plate           string     `json:"plate" validate:"required,license_plate"`
	Brand           string     `json:"brand" validate:"required,max=50"`
	Model           string     `json:"model" validate:"required,max=50"`
	Color           string     `json:"color" validate:"max=30"`
	Energy          string     `json:"energy" validate:"required,oneof=ELECTRIC HYBRID PETROL DIESEL"`
	Seats           int        `json:"seats" validate:"required,min=1,max=8"`
	FirstRegistered *time.Time `json:"firstRegistered"`
}

type VehicleService struct {
	store    repositories.Store
	users    repositories.UserRepository
	vehicles repositories.VehicleRepository
	sideEffects
}

func NewVehicleService(d Deps, users repositories.UserRepository, vehicles repositories.VehicleRepository) *VehicleService {
	return &VehicleService{store: d.Store, users: users, vehicles: vehicles, sideEffects: newSideEffects(d)}
}

func (s *VehicleService) Add(ctx context.Context, ownerID uint, input VehicleInput) (*models.Vehicle, error) {
	input.Plate = strings.ToUpper(strings.TrimSpace(input.Plate))
	input.Energy = strings.ToUpper(strings.TrimSpace(input.Energy))
	if err := validators.ValidateStruct(input); err != nil {
		return nil, err
	}
	if input.FirstRegistered != nil && input.FirstRegistered.After(s.now()) {
		return nil, apperr.Invalid("firstRegistered", "firstRegistered cannot be in the future")
	}

	owner, err := s.users.GetUser(ctx, ownerID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.ErrUserNotFound
	}
	if err != nil {
		return nil, classify("load user", err)
	}
	if !owner.IsDriver {
		return nil, apperr.ErrNotDriver
	}

	taken, err := s.vehicles.ActivePlateExists(ctx, input.Plate)
	if err != nil {
		return nil, classify("check plate", err)
	}
	if taken {
		return nil, apperr.ErrPlateTaken
	}

	vehicle := &models.Vehicle{
		OwnerID:         ownerID,
		Plate:           input.Plate,
		Brand:           strings.TrimSpace(input.Brand),
		Model:           strings.TrimSpace(input.Model),
		Color:           strings.TrimSpace(input.Color),
		Energy:          models.Energy(input.Energy),
		Seats:           input.Seats,
		FirstRegistered: input.FirstRegistered,
		Active:          true,
	}
	if err := s.vehicles.CreateVehicle(ctx, vehicle); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperr.ErrPlateTaken
		}
		return nil, classify("create vehicle", err)
	}

	s.record(ctx, models.Event{
		Action:   models.EventVehicleAdded,
		Entity:   "voiture",
		EntityID: vehicle.ID,
		ActorID:  ownerID,
		Payload:  map[string]interface{}{"energy": vehicle.Energy, "seats": vehicle.Seats},
	})
	return vehicle, nil
}

func (s *VehicleService) List(ctx context.Context, ownerID uint) ([]models.Vehicle, error) {
	vehicles, err := s.vehicles.VehiclesByOwner(ctx, ownerID, true)
	if err != nil {
		return nil, classify("list vehicles", err)
	}
	return vehicles, nil
}

// Deactivate retires a vehicle. The row stays so past rides keep their
// reference; vehicles still assigned to open rides are refused. The vehicle
// row is locked across the check and the update, the same lock Publish
// takes before inserting a ride.
func (s *VehicleService) Deactivate(ctx context.Context, ownerID, vehicleID uint) (Outcome, error) {
	outcome := Applied
	err := s.store.WithTx(ctx, func(tx repositories.Tx) error {
		vehicle, err := tx.LockVehicle(vehicleID)
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.ErrVehicleNotFound
		}
		if err != nil {
			return classify("lock vehicle", err)
		}
		if vehicle.OwnerID != ownerID {
			return apperr.ErrVehicleNotFound
		}
		if !vehicle.Active {
			outcome = AlreadyHandled
			return nil
		}

		open, err := tx.CountOpenRides(vehicleID)
		if err != nil {
			return classify("count open rides", err)
		}
		if open > 0 {
			return apperr.ErrVehicleInUse
		}

		affected, err := tx.DeactivateVehicle(vehicleID, s.now())
		if err != nil {
			return classify("deactivate vehicle", err)
		}
		if affected == 0 {
			outcome = AlreadyHandled
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if outcome == AlreadyHandled {
		return AlreadyHandled, nil
	}

	s.record(ctx, models.Event{
		Action:   models.EventVehicleDeactivated,
		Entity:   "voiture",
		EntityID: vehicleID,
		ActorID:  ownerID,
	})
	return Applied, nil
}
