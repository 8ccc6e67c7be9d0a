package services

import (
	"context"
	"errors"

	"github.com/rebecca-roussel/ecoride/internal/apperr"
	"github.com/rebecca-roussel/ecoride/internal/models"
	"github.com/rebecca-roussel/ecoride/internal/repositories"
)

type BookingService struct {
	store repositories.Store
	rides repositories.RideRepository
	sideEffects
}

func NewBookingService(d Deps, rides repositories.RideRepository) *BookingService {
	return &BookingService{store: d.Store, rides: rides, sideEffects: newSideEffects(d)}
}

// Book reserves one seat on a ride for the passenger. The ride row is
// locked first, then the passenger row; the seat and the credits move in
// the same transaction as the participation insert.
func (s *BookingService) Book(ctx context.Context, rideID, passengerID uint) (*models.Participation, error) {
	var (
		participation *models.Participation
		ride          *models.Ride
	)

	err := s.store.WithTx(ctx, func(tx repositories.Tx) error {
		r, err := tx.LockRide(rideID)
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.ErrRideNotFound
		}
		if err != nil {
			return err
		}

		switch {
		case r.Status != models.RideStatusPlanned:
			return apperr.ErrRideNotBookable
		case r.DriverID == passengerID:
			return apperr.ErrSelfBooking
		case r.SeatsAvailable < 1:
			return apperr.ErrRideFull
		case r.PriceCredits < 1:
			return apperr.ErrRideNotBookable
		}

		passenger, err := tx.LockUser(passengerID)
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.ErrUserNotFound
		}
		if err != nil {
			return err
		}
		if !passenger.IsActive() {
			return apperr.ErrAccountSuspended
		}
		if !passenger.IsPassenger {
			return apperr.ErrNotPassenger
		}

		_, err = tx.FindActiveParticipation(rideID, passengerID)
		if err == nil {
			return apperr.ErrAlreadyBooked
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return err
		}

		if passenger.Credits < r.PriceCredits {
			return apperr.ErrInsufficientCredits
		}

		p := &models.Participation{
			RideID:         rideID,
			PassengerID:    passengerID,
			CreditsCharged: r.PriceCredits,
			Validation:     models.ValidationNotRequested,
		}
		if err := tx.CreateParticipation(p); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return apperr.ErrAlreadyBooked
			}
			return err
		}
		if err := tx.AdjustSeats(rideID, -1); err != nil {
			return err
		}
		if err := tx.AdjustCredits(passengerID, -r.PriceCredits); err != nil {
			return err
		}

		r.SeatsAvailable--
		participation, ride = p, r
		return nil
	})
	s.metrics.Booking("book", outcomeOf(err))
	if err != nil {
		return nil, classify("book ride", err)
	}

	s.log.WithRideID(rideID).WithUserID(passengerID).Info("ride booked")
	s.record(ctx, models.Event{
		Action:   models.EventRideBooked,
		Entity:   "participation",
		EntityID: participation.ID,
		ActorID:  passengerID,
		Payload: map[string]interface{}{
			"rideId":         rideID,
			"creditsCharged": participation.CreditsCharged,
		},
	})
	s.notify(ctx, RideNotice{
		Kind:       NoticeRideBooked,
		Ride:       *ride,
		Recipients: []Recipient{{UserID: ride.DriverID}},
	})

	return participation, nil
}

// CancelBooking withdraws the passenger from a ride that has not started:
// the seat comes back and the credits charged are refunded.
func (s *BookingService) CancelBooking(ctx context.Context, rideID, passengerID uint) (*models.Participation, error) {
	var (
		participation *models.Participation
		ride          *models.Ride
	)

	err := s.store.WithTx(ctx, func(tx repositories.Tx) error {
		r, err := tx.LockRide(rideID)
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.ErrRideNotFound
		}
		if err != nil {
			return err
		}

		if _, err := tx.LockUser(passengerID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return apperr.ErrUserNotFound
			}
			return err
		}

		p, err := tx.FindActiveParticipation(rideID, passengerID)
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.ErrBookingNotFound
		}
		if err != nil {
			return err
		}
		if r.Status != models.RideStatusPlanned {
			return apperr.ErrInvalidTransition
		}

		now := s.now()
		affected, err := tx.CancelParticipation(p.ID, now)
		if err != nil {
			return err
		}
		if affected != 1 {
			return apperr.ErrConcurrentUpdate
		}
		if err := tx.AdjustSeats(rideID, 1); err != nil {
			return err
		}
		if err := tx.AdjustCredits(passengerID, p.CreditsCharged); err != nil {
			return err
		}

		p.Cancelled = true
		p.CancelledAt = &now
		p.Validation = models.ValidationNotRequested
		r.SeatsAvailable++
		participation, ride = p, r
		return nil
	})
	s.metrics.Booking("cancel", outcomeOf(err))
	if err != nil {
		return nil, classify("cancel booking", err)
	}

	s.log.WithRideID(rideID).WithUserID(passengerID).Info("booking cancelled")
	s.record(ctx, models.Event{
		Action:   models.EventBookingCancelled,
		Entity:   "participation",
		EntityID: participation.ID,
		ActorID:  passengerID,
		Payload: map[string]interface{}{
			"rideId":          rideID,
			"creditsRefunded": participation.CreditsCharged,
		},
	})
	s.notify(ctx, RideNotice{
		Kind:       NoticeBookingCancelled,
		Ride:       *ride,
		Recipients: []Recipient{{UserID: ride.DriverID}},
	})

	return participation, nil
}

func (s *BookingService) ListForPassenger(ctx context.Context, passengerID uint) ([]models.Participation, error) {
	participations, err := s.rides.ParticipationsByPassenger(ctx, passengerID)
	if err != nil {
		return nil, classify("list bookings", err)
	}
	return participations, nil
}
