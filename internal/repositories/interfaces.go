package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/rebecca-roussel/ecoride/internal/models"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert violates a unique constraint.
var ErrDuplicate = errors.New("duplicate record")

// Store runs fn inside one database transaction. The transaction is
// committed when fn returns nil and rolled back otherwise.
type Store interface {
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx exposes the locking and guarded mutations used by the booking,
// lifecycle and review flows. Locks must be taken ride first, then users
// in ascending id order. A vehicle lock is never combined with the others.
type Tx interface {
	// LockRide loads the ride with SELECT ... FOR UPDATE.
	LockRide(id uint) (*models.Ride, error)
	// LockUser loads the user with SELECT ... FOR UPDATE.
	LockUser(id uint) (*models.User, error)
	// LockUsers locks several users in ascending id order.
	LockUsers(ids []uint) (map[uint]*models.User, error)
	// LockVehicle loads the vehicle with SELECT ... FOR UPDATE. Publishing a
	// ride and deactivating the vehicle both hold it.
	LockVehicle(id uint) (*models.Vehicle, error)

	FindActiveParticipation(rideID, passengerID uint) (*models.Participation, error)
	ActiveParticipations(rideID uint) ([]models.Participation, error)
	CreateParticipation(p *models.Participation) error
	CancelParticipation(id uint, at time.Time) (int64, error)
	// CancelRideParticipations cancels every active participation of the
	// ride and resets their validation to NOT_REQUESTED.
	CancelRideParticipations(rideID uint, at time.Time) (int64, error)
	// RequestValidation moves active NOT_REQUESTED participations to PENDING.
	RequestValidation(rideID uint) (int64, error)
	// MarkValidated moves one PENDING participation to OK.
	MarkValidated(participationID uint) (int64, error)

	// AdjustSeats adds delta to the available seats; it fails instead of
	// going below zero or above the seats offered.
	AdjustSeats(rideID uint, delta int) error
	// AdjustCredits adds delta to the balance; it fails instead of going
	// below zero.
	AdjustCredits(userID uint, delta int) error

	// TransitionRide sets status to `to` when the ride belongs to driverID
	// and its status is one of `from`. It returns the affected row count.
	TransitionRide(rideID, driverID uint, from []models.RideStatus, to models.RideStatus) (int64, error)
	DeclareIncident(rideID, driverID uint, from []models.RideStatus, comment string, at time.Time) (int64, error)

	ReviewExists(participationID uint) (bool, error)
	CreateReview(r *models.Review) error
	CreateCommission(c *models.PlatformCommission) error

	CreateRide(ride *models.Ride) error
	// CountOpenRides counts the PLANNED or IN_PROGRESS rides of the vehicle.
	CountOpenRides(vehicleID uint) (int64, error)
	DeactivateVehicle(vehicleID uint, at time.Time) (int64, error)

	// ConsumePasswordReset locks the token and marks it used when it is
	// still valid at now. Any other token yields ErrNotFound.
	ConsumePasswordReset(tokenHash string, now time.Time) (*models.PasswordReset, error)
	SetPassword(userID uint, hash string) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	SetPhoto(ctx context.Context, userID uint, url string) error
	SetStatus(ctx context.Context, userID uint, from, to models.UserStatus) (int64, error)
	CreateEmployee(ctx context.Context, user *models.User, createdBy uint) error
}

type VehicleRepository interface {
	CreateVehicle(ctx context.Context, v *models.Vehicle) error
	GetVehicle(ctx context.Context, id uint) (*models.Vehicle, error)
	VehiclesByOwner(ctx context.Context, ownerID uint, activeOnly bool) ([]models.Vehicle, error)
	ActivePlateExists(ctx context.Context, plate string) (bool, error)
}

// RideQuery filters the public ride search. MinRating keeps drivers whose
// average approved rating reaches it.
type RideQuery struct {
	DepartureCity string
	ArrivalCity   string
	From          time.Time
	To            time.Time
	EcoOnly       bool
	MaxPrice      int
	MaxDuration   time.Duration
	MinRating     float64
	Limit         int
}

type RideRepository interface {
	GetRide(ctx context.Context, id uint) (*models.Ride, error)
	SearchRides(ctx context.Context, q RideQuery) ([]models.Ride, error)
	// NextDepartureDate returns the first departure after q.From matching the
	// cities, or ErrNotFound.
	NextDepartureDate(ctx context.Context, q RideQuery) (time.Time, error)
	RidesByDriver(ctx context.Context, driverID uint) ([]models.Ride, error)
	ParticipationsByPassenger(ctx context.Context, passengerID uint) ([]models.Participation, error)
	OpenIncidents(ctx context.Context) ([]models.Ride, error)
	ResolveIncident(ctx context.Context, rideID, employeeID uint, at time.Time) (int64, error)
}

type ReviewRepository interface {
	ModerateReview(ctx context.Context, reviewID, employeeID uint, status models.ReviewStatus, at time.Time) (int64, error)
	PendingReviews(ctx context.Context) ([]models.Review, error)
	ApprovedReviewsForDriver(ctx context.Context, driverID uint) ([]models.Review, error)
	// DriverRatings returns the average approved rating per driver.
	DriverRatings(ctx context.Context, driverIDs []uint) (map[uint]float64, error)
	ReviewByParticipation(ctx context.Context, participationID uint) (*models.Review, error)
}

type PasswordResetRepository interface {
	CreatePasswordReset(ctx context.Context, reset *models.PasswordReset) error
	InvalidatePasswordResets(ctx context.Context, userID uint) error
}
