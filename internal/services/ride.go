package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/rebecca-roussel/ecoride/internal/apperr"
	"github.com/rebecca-roussel/ecoride/internal/models"
	"github.com/rebecca-roussel/ecoride/internal/repositories"
	"github.com/rebecca-roussel/ecoride/internal/validators"
	"github.com/rebecca-roussel/ecoride/pkg/utils"
)

const searchLimit = 50

type PublishInput struct {
	VehicleID        uint      `json:"vehicleId" validate:"required"`
	DepartureCity    string    `json:"departureCity" validate:"required,max=100"`
	DepartureAddress string    `json:"departureAddress" validate:"max=255"`
	DepartureLat     *float64  `json:"departureLat" validate:"omitempty,latitude"`
	DepartureLng     *float64  `json:"departureLng" validate:"omitempty,longitude"`
	ArrivalCity      string    `json:"arrivalCity" validate:"required,max=100"`
	ArrivalAddress   string    `json:"arrivalAddress" validate:"max=255"`
	ArrivalLat       *float64  `json:"arrivalLat" validate:"omitempty,latitude"`
	ArrivalLng       *float64  `json:"arrivalLng" validate:"omitempty,longitude"`
	DepartureAt      time.Time `json:"departureAt" validate:"required"`
	ArrivalAt        time.Time `json:"arrivalAt" validate:"required,gtfield=DepartureAt"`
	Seats            int       `json:"seats" validate:"required,min=1,max=8"`
	PriceCredits     int       `json:"priceCredits" validate:"required,min=1"`
}

type SearchInput struct {
	DepartureCity      string       `json:"departureCity" validate:"required"`
	ArrivalCity        string       `json:"arrivalCity" validate:"required"`
	Date               time.Time    `json:"date" validate:"required"`
	EcoOnly            bool         `json:"ecoOnly"`
	MaxPrice           int          `json:"maxPrice" validate:"min=0"`
	MaxDurationMinutes int          `json:"maxDuration" validate:"min=0"`
	MinRating          float64      `json:"minRating" validate:"min=0,max=5"`
	Near               *utils.Point `json:"near"`
}

type RideSummary struct {
	models.Ride
	Eco          bool     `json:"eco"`
	DriverRating *float64 `json:"driverRating,omitempty"`
	DistanceKm   *float64 `json:"distanceKm,omitempty"`
}

// SearchResult carries NextDate when nothing departs on the requested day
// but a later ride exists.
type SearchResult struct {
	Rides    []RideSummary `json:"rides"`
	NextDate *time.Time    `json:"nextDate,omitempty"`
}

type RideDetails struct {
	RideSummary
	Reviews []models.Review `json:"reviews"`
}

// Place is a geocoding suggestion.
type Place struct {
	Label string  `json:"label"`
	City  string  `json:"city"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
}

type Geocoder interface {
	Suggest(ctx context.Context, query string) ([]Place, error)
}

type RideService struct {
	store      repositories.Store
	users      repositories.UserRepository
	rides      repositories.RideRepository
	reviews    repositories.ReviewRepository
	geocoder   Geocoder
	commission int
	sideEffects
}

func NewRideService(
	d Deps,
	users repositories.UserRepository,
	rides repositories.RideRepository,
	reviews repositories.ReviewRepository,
	geocoder Geocoder,
	commission int,
) *RideService {
	return &RideService{
		store:       d.Store,
		users:       users,
		rides:       rides,
		reviews:     reviews,
		geocoder:    geocoder,
		commission:  commission,
		sideEffects: newSideEffects(d),
	}
}

// Publish offers a new ride. The price must leave the driver something
// once the platform commission is taken.
func (s *RideService) Publish(ctx context.Context, driverID uint, input PublishInput) (*models.Ride, error) {
	input.DepartureCity = strings.TrimSpace(input.DepartureCity)
	input.ArrivalCity = strings.TrimSpace(input.ArrivalCity)
	if err := validators.ValidateStruct(input); err != nil {
		return nil, err
	}
	if !input.DepartureAt.After(s.now()) {
		return nil, apperr.Invalid("departureAt", "departureAt must be in the future")
	}
	if input.PriceCredits <= s.commission {
		return nil, apperr.Invalid("priceCredits", "priceCredits must exceed the platform commission")
	}

	driver, err := s.users.GetUser(ctx, driverID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.ErrUserNotFound
	}
	if err != nil {
		return nil, classify("load driver", err)
	}
	if !driver.IsActive() {
		return nil, apperr.ErrAccountSuspended
	}
	if !driver.IsDriver {
		return nil, apperr.ErrNotDriver
	}

	ride := &models.Ride{
		DriverID:         driverID,
		VehicleID:        input.VehicleID,
		DepartureCity:    input.DepartureCity,
		DepartureAddress: strings.TrimSpace(input.DepartureAddress),
		DepartureLat:     input.DepartureLat,
		DepartureLng:     input.DepartureLng,
		ArrivalCity:      input.ArrivalCity,
		ArrivalAddress:   strings.TrimSpace(input.ArrivalAddress),
		ArrivalLat:       input.ArrivalLat,
		ArrivalLng:       input.ArrivalLng,
		DepartureAt:      input.DepartureAt,
		ArrivalAt:        input.ArrivalAt,
		SeatsTotal:       input.Seats,
		SeatsAvailable:   input.Seats,
		PriceCredits:     input.PriceCredits,
		Status:           models.RideStatusPlanned,
	}
	if ride.DepartureLat == nil || ride.DepartureLng == nil {
		ride.DepartureLat, ride.DepartureLng = s.locate(ctx, ride.DepartureAddress, ride.DepartureCity)
	}
	if ride.ArrivalLat == nil || ride.ArrivalLng == nil {
		ride.ArrivalLat, ride.ArrivalLng = s.locate(ctx, ride.ArrivalAddress, ride.ArrivalCity)
	}

	// The vehicle stays locked until the ride row exists, so a concurrent
	// deactivation either sees the ride or runs first.
	var vehicle *models.Vehicle
	err = s.store.WithTx(ctx, func(tx repositories.Tx) error {
		var err error
		vehicle, err = tx.LockVehicle(input.VehicleID)
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.ErrVehicleNotFound
		}
		if err != nil {
			return classify("lock vehicle", err)
		}
		if vehicle.OwnerID != driverID || !vehicle.Active {
			return apperr.ErrVehicleNotFound
		}
		if input.Seats > vehicle.Seats {
			return apperr.Invalid("seats", "seats cannot exceed the capacity of the vehicle")
		}
		if err := tx.CreateRide(ride); err != nil {
			return classify("create ride", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	ride.Vehicle = vehicle

	s.log.WithRideID(ride.ID).WithUserID(driverID).Info("ride published")
	s.record(ctx, models.Event{
		Action:   models.EventRidePublished,
		Entity:   "covoiturage",
		EntityID: ride.ID,
		ActorID:  driverID,
		Payload: map[string]interface{}{
			"from":  ride.DepartureCity,
			"to":    ride.ArrivalCity,
			"seats": ride.SeatsTotal,
			"price": ride.PriceCredits,
		},
	})
	return ride, nil
}

// locate geocodes an address when the client sent no coordinates. A failed
// lookup only leaves the coordinates empty.
func (s *RideService) locate(ctx context.Context, address, city string) (*float64, *float64) {
	if s.geocoder == nil {
		return nil, nil
	}
	query := city
	if address != "" {
		query = address + ", " + city
	}
	places, err := s.geocoder.Suggest(ctx, query)
	if err != nil {
		s.log.WithField("query", query).WithError(err).Warn("geocoding failed")
		return nil, nil
	}
	if len(places) == 0 {
		return nil, nil
	}
	lat, lng := places[0].Lat, places[0].Lng
	return &lat, &lng
}

// Search lists the bookable rides of the requested day. When none match,
// NextDate points at the first later day that has one.
func (s *RideService) Search(ctx context.Context, input SearchInput) (*SearchResult, error) {
	input.DepartureCity = strings.TrimSpace(input.DepartureCity)
	input.ArrivalCity = strings.TrimSpace(input.ArrivalCity)
	if err := validators.ValidateStruct(input); err != nil {
		return nil, err
	}

	now := s.now()
	dayStart := time.Date(input.Date.Year(), input.Date.Month(), input.Date.Day(), 0, 0, 0, 0, input.Date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	q := repositories.RideQuery{
		DepartureCity: input.DepartureCity,
		ArrivalCity:   input.ArrivalCity,
		From:          dayStart,
		To:            dayEnd,
		EcoOnly:       input.EcoOnly,
		MaxPrice:      input.MaxPrice,
		MaxDuration:   time.Duration(input.MaxDurationMinutes) * time.Minute,
		MinRating:     input.MinRating,
		Limit:         searchLimit,
	}
	if q.From.Before(now) {
		q.From = now
	}

	result := &SearchResult{Rides: []RideSummary{}}
	if q.From.Before(q.To) {
		rides, err := s.rides.SearchRides(ctx, q)
		if err != nil {
			return nil, classify("search rides", err)
		}
		summaries, err := s.summarize(ctx, rides, input.Near)
		if err != nil {
			return nil, err
		}
		result.Rides = summaries
		sortSummaries(result.Rides, input.Near != nil)
	}

	if len(result.Rides) == 0 {
		next := q
		next.From = dayEnd
		if next.From.Before(now) {
			next.From = now
		}
		date, err := s.rides.NextDepartureDate(ctx, next)
		switch {
		case err == nil:
			result.NextDate = &date
		case !errors.Is(err, repositories.ErrNotFound):
			return nil, classify("find next departure", err)
		}
	}
	return result, nil
}

func (s *RideService) summarize(ctx context.Context, rides []models.Ride, near *utils.Point) ([]RideSummary, error) {
	driverIDs := make([]uint, 0, len(rides))
	for _, r := range rides {
		driverIDs = append(driverIDs, r.DriverID)
	}
	ratings, err := s.reviews.DriverRatings(ctx, driverIDs)
	if err != nil {
		return nil, classify("load driver ratings", err)
	}

	summaries := make([]RideSummary, 0, len(rides))
	for _, r := range rides {
		summary := RideSummary{Ride: r, Eco: r.IsEco()}
		if rating, ok := ratings[r.DriverID]; ok {
			rating := rating
			summary.DriverRating = &rating
		}
		if near != nil && r.DepartureLat != nil && r.DepartureLng != nil {
			distance := near.DistanceTo(utils.Point{Lat: *r.DepartureLat, Lng: *r.DepartureLng})
			summary.DistanceKm = &distance
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// sortSummaries orders by distance when requested, rides without
// coordinates last, and by departure time otherwise.
func sortSummaries(summaries []RideSummary, byDistance bool) {
	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		if byDistance {
			switch {
			case a.DistanceKm != nil && b.DistanceKm == nil:
				return true
			case a.DistanceKm == nil && b.DistanceKm != nil:
				return false
			case a.DistanceKm != nil && *a.DistanceKm != *b.DistanceKm:
				return *a.DistanceKm < *b.DistanceKm
			}
		}
		return a.DepartureAt.Before(b.DepartureAt)
	})
}

func (s *RideService) Get(ctx context.Context, rideID uint) (*RideDetails, error) {
	ride, err := s.rides.GetRide(ctx, rideID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.ErrRideNotFound
	}
	if err != nil {
		return nil, classify("load ride", err)
	}

	summaries, err := s.summarize(ctx, []models.Ride{*ride}, nil)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviews.ApprovedReviewsForDriver(ctx, ride.DriverID)
	if err != nil {
		return nil, classify("load reviews", err)
	}
	return &RideDetails{RideSummary: summaries[0], Reviews: reviews}, nil
}

func (s *RideService) ListForDriver(ctx context.Context, driverID uint) ([]models.Ride, error) {
	rides, err := s.rides.RidesByDriver(ctx, driverID)
	if err != nil {
		return nil, classify("list driver rides", err)
	}
	return rides, nil
}

// DriverRating is the average of the driver's approved reviews; ok is
// false while the driver has none.
func (s *RideService) DriverRating(ctx context.Context, driverID uint) (rating float64, ok bool, err error) {
	ratings, err := s.reviews.DriverRatings(ctx, []uint{driverID})
	if err != nil {
		return 0, false, classify("load driver rating", err)
	}
	rating, ok = ratings[driverID]
	return rating, ok, nil
}
