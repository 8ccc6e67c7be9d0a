package services

import (
	"context"

	"github.com/rebecca-roussel/ecoride/internal/models"
	"github.com/rebecca-roussel/ecoride/internal/repositories"
)

// ModerationService backs the employee back-office. Each action is one
// conditional UPDATE; when no row matches the action was already taken.
type ModerationService struct {
	rides   repositories.RideRepository
	reviews repositories.ReviewRepository
	sideEffects
}

func NewModerationService(d Deps, rides repositories.RideRepository, reviews repositories.ReviewRepository) *ModerationService {
	return &ModerationService{rides: rides, reviews: reviews, sideEffects: newSideEffects(d)}
}

func (s *ModerationService) ModerateReview(ctx context.Context, reviewID, employeeID uint, approve bool) (Outcome, error) {
	status := models.ReviewStatusRejected
	if approve {
		status = models.ReviewStatusApproved
	}

	affected, err := s.reviews.ModerateReview(ctx, reviewID, employeeID, status, s.now())
	if err != nil {
		s.metrics.Moderation("review", outcomeOf(err))
		return "", classify("moderate review", err)
	}
	if affected == 0 {
		s.metrics.Moderation("review", string(AlreadyHandled))
		return AlreadyHandled, nil
	}
	s.metrics.Moderation("review", string(Applied))

	s.log.WithUserID(employeeID).WithField("reviewId", reviewID).WithField("status", status).Info("review moderated")
	s.record(ctx, models.Event{
		Action:   models.EventReviewModerated,
		Entity:   "avis",
		EntityID: reviewID,
		ActorID:  employeeID,
		Payload:  map[string]interface{}{"status": status},
	})
	return Applied, nil
}

// ResolveIncident marks an open incident resolved. The ride keeps its
// INCIDENT status.
func (s *ModerationService) ResolveIncident(ctx context.Context, rideID, employeeID uint) (Outcome, error) {
	affected, err := s.rides.ResolveIncident(ctx, rideID, employeeID, s.now())
	if err != nil {
		s.metrics.Moderation("incident", outcomeOf(err))
		return "", classify("resolve incident", err)
	}
	if affected == 0 {
		s.metrics.Moderation("incident", string(AlreadyHandled))
		return AlreadyHandled, nil
	}
	s.metrics.Moderation("incident", string(Applied))

	s.log.WithRideID(rideID).WithUserID(employeeID).Info("incident resolved")
	s.record(ctx, models.Event{
		Action:   models.EventIncidentResolved,
		Entity:   "covoiturage",
		EntityID: rideID,
		ActorID:  employeeID,
	})
	return Applied, nil
}

func (s *ModerationService) PendingReviews(ctx context.Context) ([]models.Review, error) {
	reviews, err := s.reviews.PendingReviews(ctx)
	if err != nil {
		return nil, classify("list pending reviews", err)
	}
	return reviews, nil
}

func (s *ModerationService) OpenIncidents(ctx context.Context) ([]models.Ride, error) {
	rides, err := s.rides.OpenIncidents(ctx)
	if err != nil {
		return nil, classify("list open incidents", err)
	}
	return rides, nil
}
