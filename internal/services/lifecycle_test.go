package services

import (
	"context"
	"strings"
	"testing"

	"github.com/rebecca-roussel/ecoride/internal/apperr"
	"github.com/rebecca-roussel/ecoride/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartThenStartAgain(t *testing.T) {
	env := newTestEnv()
	driver := env.driver()
	ride := env.plannedRide(driver.ID, 3, 5)
	svc := NewLifecycleService(env.deps)

	started, err := svc.Start(context.Background(), ride.ID, driver.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RideStatusInProgress, started.Status)

	_, err = svc.Start(context.Background(), ride.ID, driver.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
	assert.Equal(t, models.RideStatusInProgress, env.store.ride(ride.ID).Status)
	assert.Equal(t, []NoticeKind{NoticeRideStarted}, env.notifier.kinds())
}

func TestOnlyTheDriverMovesTheRide(t *testing.T) {
	env := newTestEnv()
	driver := env.driver()
	other := env.passenger("mallory", 20)
	ride := env.plannedRide(driver.ID, 3, 5)
	svc := NewLifecycleService(env.deps)

	_, err := svc.Start(context.Background(), ride.ID, other.ID)
	assert.ErrorIs(t, err, apperr.ErrNotRideOwner)
	_, err = svc.Cancel(context.Background(), ride.ID, other.ID)
	assert.ErrorIs(t, err, apperr.ErrNotRideOwner)
	_, err = svc.DeclareIncident(context.Background(), ride.ID, other.ID, "flat tyre")
	assert.ErrorIs(t, err, apperr.ErrNotRideOwner)

	_, err = svc.Start(context.Background(), 12345, driver.ID)
	assert.ErrorIs(t, err, apperr.ErrRideNotFound)
	assert.Equal(t, models.RideStatusPlanned, env.store.ride(ride.ID).Status)
}

func TestFinishOnlyFromInProgress(t *testing.T) {
	for _, status := range []models.RideStatus{models.RideStatusPlanned, models.RideStatusCompleted, models.RideStatusCancelled} {
		t.Run(string(status), func(t *testing.T) {
			env := newTestEnv()
			driver := env.driver()
			passenger := env.passenger("alice", 20)
			ride := env.plannedRide(driver.ID, 3, 5)
			_, err := NewBookingService(env.deps, env.store).Book(context.Background(), ride.ID, passenger.ID)
			require.NoError(t, err)
			env.store.rides[ride.ID].Status = status
			before := env.store.participationsOf(ride.ID)

			_, err = NewLifecycleService(env.deps).Finish(context.Background(), ride.ID, driver.ID)

			assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
			assert.Equal(t, status, env.store.ride(ride.ID).Status)
			assert.Equal(t, before, env.store.participationsOf(ride.ID))
		})
	}
}

func TestFinishRequestsValidation(t *testing.T) {
	env := newTestEnv()
	driver := env.driver()
	alice := env.passenger("alice", 20)
	bob := env.passenger("bob", 20)
	ride := env.plannedRide(driver.ID, 3, 5)
	booking := NewBookingService(env.deps, env.store)
	_, err := booking.Book(context.Background(), ride.ID, alice.ID)
	require.NoError(t, err)
	_, err = booking.Book(context.Background(), ride.ID, bob.ID)
	require.NoError(t, err)
	_, err = booking.CancelBooking(context.Background(), ride.ID, bob.ID)
	require.NoError(t, err)

	svc := NewLifecycleService(env.deps)
	_, err = svc.Start(context.Background(), ride.ID, driver.ID)
	require.NoError(t, err)
	finished, err := svc.Finish(context.Background(), ride.ID, driver.ID)

	require.NoError(t, err)
	assert.Equal(t, models.RideStatusCompleted, finished.Status)
	for _, p := range env.store.participationsOf(ride.ID) {
		if p.Cancelled {
			assert.Equal(t, models.ValidationNotRequested, p.Validation)
		} else {
			assert.Equal(t, models.ValidationPending, p.Validation)
		}
	}

	notice := env.notifier.notices[len(env.notifier.notices)-1]
	assert.Equal(t, NoticeRideCompleted, notice.Kind)
	require.Len(t, notice.Recipients, 1)
	assert.Equal(t, "alice@ecoride.fr", notice.Recipients[0].Email)
}

func TestCancelRefundsEveryPassenger(t *testing.T) {
	for _, status := range []models.RideStatus{models.RideStatusPlanned, models.RideStatusInProgress} {
		t.Run(string(status), func(t *testing.T) {
			env := newTestEnv()
			driver := env.driver()
			alice := env.passenger("alice", 20)
			bob := env.passenger("bob", 9)
			ride := env.plannedRide(driver.ID, 3, 5)
			booking := NewBookingService(env.deps, env.store)
			for _, id := range []uint{alice.ID, bob.ID} {
				_, err := booking.Book(context.Background(), ride.ID, id)
				require.NoError(t, err)
			}
			env.store.rides[ride.ID].Status = status

			cancelled, err := NewLifecycleService(env.deps).Cancel(context.Background(), ride.ID, driver.ID)

			require.NoError(t, err)
			assert.Equal(t, models.RideStatusCancelled, cancelled.Status)
			assert.Equal(t, models.RideStatusCancelled, env.store.ride(ride.ID).Status)
			assert.Equal(t, 3, env.store.ride(ride.ID).SeatsAvailable)
			assert.Equal(t, 20, env.store.user(alice.ID).Credits)
			assert.Equal(t, 9, env.store.user(bob.ID).Credits)
			for _, p := range env.store.participationsOf(ride.ID) {
				assert.True(t, p.Cancelled)
				assert.Equal(t, models.ValidationNotRequested, p.Validation)
			}
			assertCreditsMatchSeats(t, env.store, ride.ID)

			notice := env.notifier.notices[len(env.notifier.notices)-1]
			assert.Equal(t, NoticeRideCancelled, notice.Kind)
			assert.Len(t, notice.Recipients, 2)
		})
	}
}

func TestCancelCompletedRideFails(t *testing.T) {
	env := newTestEnv()
	driver := env.driver()
	passenger := env.passenger("alice", 20)
	ride := env.plannedRide(driver.ID, 3, 5)
	_, err := NewBookingService(env.deps, env.store).Book(context.Background(), ride.ID, passenger.ID)
	require.NoError(t, err)
	env.store.rides[ride.ID].Status = models.RideStatusCompleted

	_, err = NewLifecycleService(env.deps).Cancel(context.Background(), ride.ID, driver.ID)

	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
	assert.Equal(t, models.RideStatusCompleted, env.store.ride(ride.ID).Status)
	assert.Equal(t, 15, env.store.user(passenger.ID).Credits)
	assert.False(t, env.store.participationsOf(ride.ID)[0].Cancelled)
}

func TestDeclareIncident(t *testing.T) {
	env := newTestEnv()
	driver := env.driver()
	ride := env.plannedRide(driver.ID, 3, 5)
	svc := NewLifecycleService(env.deps)

	_, err := svc.DeclareIncident(context.Background(), ride.ID, driver.ID, "breakdown")
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition, "a planned ride cannot have an incident")

	_, err = svc.Start(context.Background(), ride.ID, driver.ID)
	require.NoError(t, err)

	_, err = svc.DeclareIncident(context.Background(), ride.ID, driver.ID, "   ")
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.KindValidation, appErr.Kind)

	_, err = svc.DeclareIncident(context.Background(), ride.ID, driver.ID, strings.Repeat("é", 1001))
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.KindValidation, appErr.Kind)

	flagged, err := svc.DeclareIncident(context.Background(), ride.ID, driver.ID, strings.Repeat("é", 1000))
	require.NoError(t, err)
	assert.Equal(t, models.RideStatusIncident, flagged.Status)
	assert.NotNil(t, env.store.ride(ride.ID).IncidentDeclaredAt)

	_, err = svc.DeclareIncident(context.Background(), ride.ID, driver.ID, "again")
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
}

func TestDeclareIncidentAfterCompletion(t *testing.T) {
	env := newTestEnv()
	driver := env.driver()
	ride := env.plannedRide(driver.ID, 3, 5)
	env.store.rides[ride.ID].Status = models.RideStatusCompleted

	flagged, err := NewLifecycleService(env.deps).DeclareIncident(context.Background(), ride.ID, driver.ID, " passenger left luggage ")

	require.NoError(t, err)
	assert.Equal(t, "passenger left luggage", flagged.IncidentComment)
	assert.Contains(t, env.journal.actions(), models.EventIncidentDeclared)
}
