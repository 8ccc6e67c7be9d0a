package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rebecca-roussel/ecoride/internal/apperr"
	"github.com/rebecca-roussel/ecoride/internal/config"
	"github.com/rebecca-roussel/ecoride/internal/models"
	"github.com/rebecca-roussel/ecoride/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "Secret#2024"

type fakePhotos struct {
	saved   []string
	deleted []string
}

func (f *fakePhotos) SaveProfilePhoto(_ context.Context, userID uint, _ []byte) (string, error) {
	url := fmt.Sprintf("http://localhost:8080/uploads/profiles/%d/photo-%d.png", userID, len(f.saved))
	f.saved = append(f.saved, url)
	return url, nil
}

func (f *fakePhotos) DeleteProfilePhoto(_ context.Context, photoURL string) error {
	f.deleted = append(f.deleted, photoURL)
	return nil
}

type fakeResetMailer struct {
	to    string
	token string
	err   error
}

func (f *fakeResetMailer) SendPasswordResetEmail(to, token string, _ time.Duration) error {
	f.to, f.token = to, token
	return f.err
}

func newAccountService(env *testEnv, photos PhotoStore, mailer ResetMailer) *AccountService {
	security := &config.SecurityConfig{
		JWTSecret:        "test-secret",
		JWTTTL:           time.Hour,
		BcryptCost:       bcrypt.MinCost,
		PasswordResetTTL: time.Hour,
	}
	rules := &config.RulesConfig{WelcomeCredits: 20, CommissionCredits: 2}
	return NewAccountService(env.deps, env.store, env.store, photos, mailer, security, rules)
}

func TestRegisterGrantsWelcomeCredits(t *testing.T) {
	env := newTestEnv()
	svc := newAccountService(env, &fakePhotos{}, nil)

	result, err := svc.Register(context.Background(), RegisterInput{
		Pseudo: "alice", Email: " Alice@EcoRide.fr ", Password: testPassword, IsPassenger: true,
	})

	require.NoError(t, err)
	assert.Equal(t, 20, result.User.Credits)
	assert.Equal(t, "alice@ecoride.fr", result.User.Email)
	assert.Equal(t, int64(3600), result.ExpiresIn)

	claims, err := utils.ValidateToken(result.Token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)
	assert.True(t, claims.HasRole(models.RolePassenger))
	assert.False(t, claims.HasRole(models.RoleDriver))
	assert.Equal(t, []models.EventAction{models.EventUserRegistered}, env.journal.actions())
}

func TestRegisterRejections(t *testing.T) {
	env := newTestEnv()
	svc := newAccountService(env, &fakePhotos{}, nil)
	_, err := svc.Register(context.Background(), RegisterInput{Pseudo: "alice", Email: "alice@ecoride.fr", Password: testPassword, IsDriver: true})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{Pseudo: "alice2", Email: "ALICE@ecoride.fr", Password: testPassword, IsDriver: true})
	assert.ErrorIs(t, err, apperr.ErrEmailTaken)

	_, err = svc.Register(context.Background(), RegisterInput{Pseudo: "bob", Email: "bob@ecoride.fr", Password: testPassword})
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "roles")

	_, err = svc.Register(context.Background(), RegisterInput{Pseudo: "bob", Email: "bob@ecoride.fr", Password: "weak", IsDriver: true})
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "password")
}

func TestLogin(t *testing.T) {
	env := newTestEnv()
	svc := newAccountService(env, &fakePhotos{}, nil)
	registered, err := svc.Register(context.Background(), RegisterInput{Pseudo: "alice", Email: "alice@ecoride.fr", Password: testPassword, IsPassenger: true})
	require.NoError(t, err)

	result, err := svc.Login(context.Background(), "alice@ecoride.fr", testPassword)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, result.User.ID)

	_, err = svc.Login(context.Background(), "alice@ecoride.fr", "Wrong#2024")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
	_, err = svc.Login(context.Background(), "nobody@ecoride.fr", testPassword)
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)

	admin := env.store.addUser(models.User{Pseudo: "root", Email: "root@ecoride.fr"})
	outcome, err := svc.Suspend(context.Background(), admin.ID, registered.User.ID)
	require.NoError(t, err)
	assert.Equal(t, Applied, outcome)

	_, err = svc.Login(context.Background(), "alice@ecoride.fr", testPassword)
	assert.ErrorIs(t, err, apperr.ErrAccountSuspended)
}

func TestSuspendAndReactivate(t *testing.T) {
	env := newTestEnv()
	svc := newAccountService(env, &fakePhotos{}, nil)
	admin := env.store.addUser(models.User{Pseudo: "root", Email: "root@ecoride.fr"})
	user := env.passenger("alice", 20)

	_, err := svc.Suspend(context.Background(), admin.ID, admin.ID)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.KindValidation, appErr.Kind)

	_, err = svc.Suspend(context.Background(), admin.ID, 9999)
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)

	outcome, err := svc.Reactivate(context.Background(), admin.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, AlreadyHandled, outcome)

	outcome, err = svc.Suspend(context.Background(), admin.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, Applied, outcome)
	outcome, err = svc.Suspend(context.Background(), admin.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, AlreadyHandled, outcome)

	outcome, err = svc.Reactivate(context.Background(), admin.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, Applied, outcome)
	assert.Equal(t, models.UserStatusActive, env.store.user(user.ID).Status)
	assert.Equal(t, []models.EventAction{models.EventUserSuspended, models.EventUserReactivated}, env.journal.actions())
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv()
	svc := newAccountService(env, &fakePhotos{}, nil)
	user := env.passenger("alice", 20)

	updated, err := svc.UpdateProfile(context.Background(), user.ID, ProfileInput{
		Pseudo: "alice_b", Phone: "06 12 34 56 78", IsDriver: true, IsPassenger: true, Animals: true,
	})

	require.NoError(t, err)
	assert.True(t, updated.IsDriver)
	stored := env.store.user(user.ID)
	assert.Equal(t, "alice_b", stored.Pseudo)
	assert.True(t, stored.Animals)
	assert.Equal(t, 20, stored.Credits, "profile edits never touch credits")

	_, err = svc.UpdateProfile(context.Background(), user.ID, ProfileInput{Pseudo: "alice_b"})
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "roles")
}

func TestSetPhotoReplacesPrevious(t *testing.T) {
	env := newTestEnv()
	photos := &fakePhotos{}
	svc := newAccountService(env, photos, nil)
	user := env.passenger("alice", 20)

	first, err := svc.SetPhoto(context.Background(), user.ID, []byte("png"))
	require.NoError(t, err)
	second, err := svc.SetPhoto(context.Background(), user.ID, []byte("png"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, second, env.store.user(user.ID).PhotoURL)
	assert.Equal(t, []string{first}, photos.deleted)
}

func TestPasswordReset(t *testing.T) {
	env := newTestEnv()
	mailer := &fakeResetMailer{}
	svc := newAccountService(env, &fakePhotos{}, mailer)
	_, err := svc.Register(context.Background(), RegisterInput{Pseudo: "alice", Email: "alice@ecoride.fr", Password: testPassword, IsPassenger: true})
	require.NoError(t, err)

	require.NoError(t, svc.RequestPasswordReset(context.Background(), "nobody@ecoride.fr"))
	assert.Empty(t, mailer.token)

	require.NoError(t, svc.RequestPasswordReset(context.Background(), "alice@ecoride.fr"))
	require.NotEmpty(t, mailer.token)
	assert.Equal(t, "alice@ecoride.fr", mailer.to)

	assert.ErrorIs(t, svc.ResetPassword(context.Background(), "not-a-token", "NewSecret#1"), apperr.ErrInvalidResetToken)
	require.NoError(t, svc.ResetPassword(context.Background(), mailer.token, "NewSecret#1"))
	assert.ErrorIs(t, svc.ResetPassword(context.Background(), mailer.token, "Other#Secret2"), apperr.ErrInvalidResetToken, "tokens are single use")

	_, err = svc.Login(context.Background(), "alice@ecoride.fr", "NewSecret#1")
	assert.NoError(t, err)
	_, err = svc.Login(context.Background(), "alice@ecoride.fr", testPassword)
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
}

func TestPasswordResetKeepsTokenWhenPasswordWriteFails(t *testing.T) {
	env := newTestEnv()
	mailer := &fakeResetMailer{}
	svc := newAccountService(env, &fakePhotos{}, mailer)
	_, err := svc.Register(context.Background(), RegisterInput{Pseudo: "alice", Email: "alice@ecoride.fr", Password: testPassword, IsPassenger: true})
	require.NoError(t, err)
	require.NoError(t, svc.RequestPasswordReset(context.Background(), "alice@ecoride.fr"))

	env.store.passwordWriteErr = errors.New("connection reset by peer")
	err = svc.ResetPassword(context.Background(), mailer.token, "NewSecret#1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperr.ErrInvalidResetToken)
	_, err = svc.Login(context.Background(), "alice@ecoride.fr", testPassword)
	assert.NoError(t, err, "the old password still works")

	env.store.passwordWriteErr = nil
	require.NoError(t, svc.ResetPassword(context.Background(), mailer.token, "NewSecret#1"), "the token was not spent by the failed attempt")
	assert.ErrorIs(t, svc.ResetPassword(context.Background(), mailer.token, "Other#Secret2"), apperr.ErrInvalidResetToken)
	_, err = svc.Login(context.Background(), "alice@ecoride.fr", "NewSecret#1")
	assert.NoError(t, err)
}

func TestPasswordResetMailFailureIsSilent(t *testing.T) {
	env := newTestEnv()
	mailer := &fakeResetMailer{err: errors.New("smtp down")}
	svc := newAccountService(env, &fakePhotos{}, mailer)
	env.passenger("alice", 20)

	assert.NoError(t, svc.RequestPasswordReset(context.Background(), "alice@ecoride.fr"))
	assert.Contains(t, env.metricsText(t), `ecoride_side_effect_failures_total{kind="mail"} 1`)
}

func TestCreateEmployee(t *testing.T) {
	env := newTestEnv()
	svc := newAccountService(env, &fakePhotos{}, nil)
	admin := env.store.addUser(models.User{Pseudo: "root", Email: "root@ecoride.fr"})

	employee, err := svc.CreateEmployee(context.Background(), admin.ID, EmployeeInput{Pseudo: "staff", Email: "Staff@EcoRide.fr", Password: testPassword})

	require.NoError(t, err)
	assert.Equal(t, 0, employee.Credits)
	assert.Equal(t, []string{models.RoleEmployee}, employee.Roles())

	_, err = svc.CreateEmployee(context.Background(), admin.ID, EmployeeInput{Pseudo: "staff2", Email: "staff@ecoride.fr", Password: testPassword})
	assert.ErrorIs(t, err, apperr.ErrEmailTaken)
}
