package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/rebecca-roussel/ecoride/internal/apperr"
	"github.com/rebecca-roussel/ecoride/internal/models"
	"github.com/rebecca-roussel/ecoride/internal/repositories"
)

const maxIncidentComment = 1000

// LifecycleService moves a ride through its states on behalf of its
// driver.
type LifecycleService struct {
	store repositories.Store
	sideEffects
}

func NewLifecycleService(d Deps) *LifecycleService {
	return &LifecycleService{store: d.Store, sideEffects: newSideEffects(d)}
}

type transition struct {
	name   string
	from   []models.RideStatus
	to     models.RideStatus
	action models.EventAction
	notice NoticeKind
	// apply performs the guarded update; the ride is locked and its owner
	// and status already checked.
	apply func(tx repositories.Tx, ride *models.Ride) ([]models.Participation, error)
}

func allowed(status models.RideStatus, from []models.RideStatus) bool {
	for _, s := range from {
		if s == status {
			return true
		}
	}
	return false
}

func (s *LifecycleService) run(ctx context.Context, rideID, driverID uint, t transition, payload map[string]interface{}) (*models.Ride, error) {
	var (
		ride     *models.Ride
		affected []models.Participation
	)

	err := s.store.WithTx(ctx, func(tx repositories.Tx) error {
		r, err := tx.LockRide(rideID)
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.ErrRideNotFound
		}
		if err != nil {
			return err
		}
		if r.DriverID != driverID {
			return apperr.ErrNotRideOwner
		}
		if !allowed(r.Status, t.from) {
			return apperr.ErrInvalidTransition
		}

		participations, err := t.apply(tx, r)
		if err != nil {
			return err
		}
		r.Status = t.to
		ride, affected = r, participations
		return nil
	})
	s.metrics.RideTransition(t.name, outcomeOf(err))
	if err != nil {
		return nil, classify(t.name+" ride", err)
	}

	s.log.WithRideID(rideID).WithUserID(driverID).WithField("status", ride.Status).Info("ride " + t.name)
	if payload == nil {
		payload = map[string]interface{}{}
	}
	payload["status"] = ride.Status
	payload["passengers"] = len(affected)
	s.record(ctx, models.Event{
		Action:   t.action,
		Entity:   "covoiturage",
		EntityID: ride.ID,
		ActorID:  driverID,
		Payload:  payload,
	})
	if t.notice != "" {
		s.notify(ctx, RideNotice{Kind: t.notice, Ride: *ride, Recipients: recipientsOf(affected)})
	}

	return ride, nil
}

// transitionTo applies the status change and requires exactly one row.
func transitionTo(tx repositories.Tx, ride *models.Ride, from []models.RideStatus, to models.RideStatus) error {
	affected, err := tx.TransitionRide(ride.ID, ride.DriverID, from, to)
	if err != nil {
		return err
	}
	if affected != 1 {
		return apperr.ErrConcurrentUpdate
	}
	return nil
}

func (s *LifecycleService) Start(ctx context.Context, rideID, driverID uint) (*models.Ride, error) {
	from := []models.RideStatus{models.RideStatusPlanned}
	return s.run(ctx, rideID, driverID, transition{
		name:   "start",
		from:   from,
		to:     models.RideStatusInProgress,
		action: models.EventRideStarted,
		notice: NoticeRideStarted,
		apply: func(tx repositories.Tx, ride *models.Ride) ([]models.Participation, error) {
			if err := transitionTo(tx, ride, from, models.RideStatusInProgress); err != nil {
				return nil, err
			}
			return tx.ActiveParticipations(ride.ID)
		},
	}, nil)
}

// Finish completes the ride and asks every active passenger to validate
// the trip.
func (s *LifecycleService) Finish(ctx context.Context, rideID, driverID uint) (*models.Ride, error) {
	from := []models.RideStatus{models.RideStatusInProgress}
	return s.run(ctx, rideID, driverID, transition{
		name:   "finish",
		from:   from,
		to:     models.RideStatusCompleted,
		action: models.EventRideFinished,
		notice: NoticeRideCompleted,
		apply: func(tx repositories.Tx, ride *models.Ride) ([]models.Participation, error) {
			if err := transitionTo(tx, ride, from, models.RideStatusCompleted); err != nil {
				return nil, err
			}
			if _, err := tx.RequestValidation(ride.ID); err != nil {
				return nil, err
			}
			return tx.ActiveParticipations(ride.ID)
		},
	}, nil)
}

// Cancel cancels a ride that is planned or under way. Every active
// passenger is refunded and the seats are given back.
func (s *LifecycleService) Cancel(ctx context.Context, rideID, driverID uint) (*models.Ride, error) {
	from := []models.RideStatus{models.RideStatusPlanned, models.RideStatusInProgress}
	return s.run(ctx, rideID, driverID, transition{
		name:   "cancel",
		from:   from,
		to:     models.RideStatusCancelled,
		action: models.EventRideCancelled,
		notice: NoticeRideCancelled,
		apply: func(tx repositories.Tx, ride *models.Ride) ([]models.Participation, error) {
			participations, err := tx.ActiveParticipations(ride.ID)
			if err != nil {
				return nil, err
			}

			passengerIDs := make([]uint, 0, len(participations))
			for _, p := range participations {
				passengerIDs = append(passengerIDs, p.PassengerID)
			}
			if _, err := tx.LockUsers(passengerIDs); err != nil {
				return nil, err
			}

			if err := transitionTo(tx, ride, from, models.RideStatusCancelled); err != nil {
				return nil, err
			}

			cancelled, err := tx.CancelRideParticipations(ride.ID, s.now())
			if err != nil {
				return nil, err
			}
			if cancelled != int64(len(participations)) {
				return nil, apperr.ErrConcurrentUpdate
			}

			for _, p := range participations {
				if err := tx.AdjustCredits(p.PassengerID, p.CreditsCharged); err != nil {
					return nil, err
				}
			}
			if len(participations) > 0 {
				if err := tx.AdjustSeats(ride.ID, len(participations)); err != nil {
					return nil, err
				}
				ride.SeatsAvailable += len(participations)
			}
			return participations, nil
		},
	}, nil)
}

// DeclareIncident flags a ride under way or just completed. The comment is
// required and limited to 1000 characters.
func (s *LifecycleService) DeclareIncident(ctx context.Context, rideID, driverID uint, comment string) (*models.Ride, error) {
	comment = strings.TrimSpace(comment)
	switch {
	case comment == "":
		return nil, apperr.Invalid("comment", "comment is required")
	case utf8.RuneCountInString(comment) > maxIncidentComment:
		return nil, apperr.Invalid("comment", "comment must be at most 1000 characters")
	}

	from := []models.RideStatus{models.RideStatusInProgress, models.RideStatusCompleted}
	ride, err := s.run(ctx, rideID, driverID, transition{
		name:   "incident",
		from:   from,
		to:     models.RideStatusIncident,
		action: models.EventIncidentDeclared,
		notice: NoticeIncidentDeclared,
		apply: func(tx repositories.Tx, ride *models.Ride) ([]models.Participation, error) {
			now := s.now()
			affected, err := tx.DeclareIncident(ride.ID, ride.DriverID, from, comment, now)
			if err != nil {
				return nil, err
			}
			if affected != 1 {
				return nil, apperr.ErrConcurrentUpdate
			}
			ride.IncidentComment = comment
			ride.IncidentDeclaredAt = &now
			ride.IncidentResolved = false
			return tx.ActiveParticipations(ride.ID)
		},
	}, map[string]interface{}{"comment": comment})
	if err != nil {
		return nil, err
	}
	return ride, nil
}
