package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rebecca-roussel/ecoride/internal/apperr"
	"github.com/rebecca-roussel/ecoride/internal/models"
	"github.com/rebecca-roussel/ecoride/internal/repositories"
	"github.com/rebecca-roussel/ecoride/internal/validators"
)

type ReviewInput struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

type ReviewService struct {
	store      repositories.Store
	rides      repositories.RideRepository
	reviews    repositories.ReviewRepository
	commission int
	sideEffects
}

// NewReviewService takes the number of credits the platform keeps on each
// validated participation.
func NewReviewService(d Deps, rides repositories.RideRepository, reviews repositories.ReviewRepository, commission int) *ReviewService {
	return &ReviewService{
		store:       d.Store,
		rides:       rides,
		reviews:     reviews,
		commission:  commission,
		sideEffects: newSideEffects(d),
	}
}

// checkEligibility is shared by the read-only check and the locked recheck.
func checkEligibility(ride *models.Ride, p *models.Participation, reviewed bool) error {
	switch {
	case reviewed:
		return apperr.ErrAlreadyReviewed
	case p.Cancelled:
		return apperr.ErrNotEligible
	case ride.Status != models.RideStatusCompleted:
		return apperr.ErrNotEligible
	case p.Validation != models.ValidationPending:
		return apperr.ErrNotEligible
	}
	return nil
}

// Eligibility returns nil when the passenger may review the ride now.
func (s *ReviewService) Eligibility(ctx context.Context, rideID, passengerID uint) error {
	participations, err := s.rides.ParticipationsByPassenger(ctx, passengerID)
	if err != nil {
		return classify("load participations", err)
	}

	for i := range participations {
		p := &participations[i]
		if p.RideID != rideID || p.Cancelled {
			continue
		}
		if p.Ride == nil {
			return apperr.ErrRideNotFound
		}
		_, err := s.reviews.ReviewByParticipation(ctx, p.ID)
		switch {
		case err == nil:
			return apperr.ErrAlreadyReviewed
		case !errors.Is(err, repositories.ErrNotFound):
			return classify("load review", err)
		}
		return checkEligibility(p.Ride, p, false)
	}
	return apperr.ErrNotEligible
}

// Submit records the passenger's review, validates the participation and
// pays the driver the price minus the platform commission.
func (s *ReviewService) Submit(ctx context.Context, rideID, passengerID uint, input ReviewInput) (*models.Review, error) {
	input.Comment = strings.TrimSpace(input.Comment)
	if err := validators.ValidateStruct(input); err != nil {
		s.metrics.Review(outcomeOf(err))
		return nil, err
	}

	var (
		review     *models.Review
		driverPaid int
	)
	err := s.store.WithTx(ctx, func(tx repositories.Tx) error {
		ride, err := tx.LockRide(rideID)
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.ErrRideNotFound
		}
		if err != nil {
			return err
		}
		if _, err := tx.LockUsers([]uint{passengerID, ride.DriverID}); err != nil {
			return err
		}

		p, err := tx.FindActiveParticipation(rideID, passengerID)
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.ErrNotEligible
		}
		if err != nil {
			return err
		}
		reviewed, err := tx.ReviewExists(p.ID)
		if err != nil {
			return err
		}
		if err := checkEligibility(ride, p, reviewed); err != nil {
			return err
		}

		r := &models.Review{
			ParticipationID: p.ID,
			RideID:          rideID,
			AuthorID:        passengerID,
			DriverID:        ride.DriverID,
			Rating:          input.Rating,
			Comment:         input.Comment,
			Status:          models.ReviewStatusPending,
		}
		if err := tx.CreateReview(r); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return apperr.ErrAlreadyReviewed
			}
			return err
		}

		affected, err := tx.MarkValidated(p.ID)
		if err != nil {
			return err
		}
		if affected != 1 {
			return apperr.ErrConcurrentUpdate
		}

		commission := s.commission
		if commission > p.CreditsCharged {
			commission = p.CreditsCharged
		}
		payout := p.CreditsCharged - commission
		if payout > 0 {
			if err := tx.AdjustCredits(ride.DriverID, payout); err != nil {
				return err
			}
		}
		if err := tx.CreateCommission(&models.PlatformCommission{
			ParticipationID: p.ID,
			RideID:          rideID,
			Credits:         commission,
		}); err != nil {
			return err
		}

		review, driverPaid = r, payout
		return nil
	})
	s.metrics.Review(outcomeOf(err))
	if err != nil {
		return nil, classify("submit review", err)
	}

	s.log.WithRideID(rideID).WithUserID(passengerID).WithField("driverPaid", driverPaid).Info("review submitted")
	s.record(ctx, models.Event{
		Action:   models.EventReviewSubmitted,
		Entity:   "avis",
		EntityID: review.ID,
		ActorID:  passengerID,
		Payload: map[string]interface{}{
			"rideId":     rideID,
			"rating":     review.Rating,
			"driverPaid": driverPaid,
		},
	})

	return review, nil
}
