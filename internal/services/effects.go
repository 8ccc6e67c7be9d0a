package services

import (
	"context"
	"errors"
	"time"

	"github.com/rebecca-roussel/ecoride/internal/apperr"
	"github.com/rebecca-roussel/ecoride/internal/metrics"
	"github.com/rebecca-roussel/ecoride/internal/models"
	"github.com/rebecca-roussel/ecoride/internal/repositories"
	"github.com/rebecca-roussel/ecoride/pkg/logger"
)

// Journal appends events to the activity journal.
type Journal interface {
	Record(ctx context.Context, event models.Event) error
}

type NoticeKind string

const (
	NoticeRideBooked       NoticeKind = "ride_booked"
	NoticeBookingCancelled NoticeKind = "booking_cancelled"
	NoticeRideStarted      NoticeKind = "ride_started"
	NoticeRideCompleted    NoticeKind = "ride_completed"
	NoticeRideCancelled    NoticeKind = "ride_cancelled"
	NoticeIncidentDeclared NoticeKind = "incident_declared"
)

type Recipient struct {
	UserID uint   `json:"userId"`
	Email  string `json:"-"`
}

// RideNotice describes a committed ride change. Recipients are collected
// inside the transaction that made the change.
type RideNotice struct {
	Kind       NoticeKind
	Ride       models.Ride
	Recipients []Recipient
}

type Notifier interface {
	NotifyRide(ctx context.Context, notice RideNotice) error
}

// Deps are shared by the services. Notifier and Journal may be nil.
type Deps struct {
	Store    repositories.Store
	Notifier Notifier
	Journal  Journal
	Metrics  *metrics.Metrics
	Logger   *logger.Logger
	Now      func() time.Time
}

// sideEffects runs the post-commit work. Nothing here may fail the caller.
type sideEffects struct {
	notifier Notifier
	journal  Journal
	metrics  *metrics.Metrics
	log      *logger.Logger
	now      func() time.Time
}

func newSideEffects(d Deps) sideEffects {
	log := d.Logger
	if log == nil {
		log = logger.Discard()
	}
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return sideEffects{notifier: d.Notifier, journal: d.Journal, metrics: d.Metrics, log: log, now: now}
}

func (s sideEffects) notify(ctx context.Context, notice RideNotice) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyRide(ctx, notice); err != nil {
		s.log.WithRideID(notice.Ride.ID).WithField("notice", notice.Kind).WithError(err).Warn("ride notification failed")
	}
}

func (s sideEffects) record(ctx context.Context, event models.Event) {
	if s.journal == nil {
		return
	}
	if event.At.IsZero() {
		event.At = s.now()
	}
	if err := s.journal.Record(ctx, event); err != nil {
		s.metrics.SideEffectFailed("journal")
		s.log.WithFields(map[string]interface{}{
			"action":   event.Action,
			"entity":   event.Entity,
			"entityId": event.EntityID,
		}).WithError(err).Warn("journal write failed")
	}
}

// classify keeps application errors as they are and wraps anything else as
// a technical failure.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperr.Technical(op, err)
}

func outcomeOf(err error) string {
	var appErr *apperr.Error
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, apperr.ErrConcurrentUpdate),
		errors.Is(err, apperr.ErrAlreadyBooked),
		errors.Is(err, apperr.ErrAlreadyReviewed):
		return metrics.OutcomeConflict
	case errors.As(err, &appErr) && appErr.Kind != apperr.KindTechnical:
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeError
	}
}

// Outcome of an idempotent back-office action.
type Outcome string

const (
	Applied        Outcome = "applied"
	AlreadyHandled Outcome = "already_handled"
)

func recipientsOf(participations []models.Participation) []Recipient {
	recipients := make([]Recipient, 0, len(participations))
	for _, p := range participations {
		r := Recipient{UserID: p.PassengerID}
		if p.Passenger != nil {
			r.Email = p.Passenger.Email
		}
		recipients = append(recipients, r)
	}
	return recipients
}
