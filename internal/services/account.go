package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rebecca-roussel/ecoride/internal/apperr"
	"github.com/rebecca-roussel/ecoride/internal/config"
	"github.com/rebecca-roussel/ecoride/internal/models"
	"github.com/rebecca-roussel/ecoride/internal/repositories"
	"github.com/rebecca-roussel/ecoride/internal/validators"
	"github.com/rebecca-roussel/ecoride/pkg/utils"
)

type RegisterInput struct {
	Pseudo      string `json:"pseudo" validate:"required,min=3,max=50"`
	Email       string `json:"email" validate:"required,email,max=255"`
	Password    string `json:"password" validate:"required,strong_password"`
	Phone       string `json:"phone" validate:"omitempty,phone_number"`
	IsDriver    bool   `json:"isDriver"`
	IsPassenger bool   `json:"isPassenger"`
}

type ProfileInput struct {
	Pseudo      string `json:"pseudo" validate:"required,min=3,max=50"`
	Phone       string `json:"phone" validate:"omitempty,phone_number"`
	IsDriver    bool   `json:"isDriver"`
	IsPassenger bool   `json:"isPassenger"`
	Smoker      bool   `json:"smoker"`
	Animals     bool   `json:"animals"`
}

type EmployeeInput struct {
	Pseudo   string `json:"pseudo" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,strong_password"`
}

type AuthResult struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresIn int64        `json:"expiresIn"`
}

// PhotoStore persists a profile photo and returns its public URL.
type PhotoStore interface {
	SaveProfilePhoto(ctx context.Context, userID uint, data []byte) (string, error)
	DeleteProfilePhoto(ctx context.Context, photoURL string) error
}

type ResetMailer interface {
	SendPasswordResetEmail(to, token string, ttl time.Duration) error
}

type AccountService struct {
	store    repositories.Store
	users    repositories.UserRepository
	resets   repositories.PasswordResetRepository
	photos   PhotoStore
	mailer   ResetMailer
	security *config.SecurityConfig
	rules    *config.RulesConfig
	sideEffects
}

func NewAccountService(
	d Deps,
	users repositories.UserRepository,
	resets repositories.PasswordResetRepository,
	photos PhotoStore,
	mailer ResetMailer,
	security *config.SecurityConfig,
	rules *config.RulesConfig,
) *AccountService {
	return &AccountService{
		store:       d.Store,
		users:       users,
		resets:      resets,
		photos:      photos,
		mailer:      mailer,
		security:    security,
		rules:       rules,
		sideEffects: newSideEffects(d),
	}
}

func requireOneRole(isDriver, isPassenger bool) error {
	if !isDriver && !isPassenger {
		return apperr.Invalid("roles", "choose at least one of driver or passenger")
	}
	return nil
}

func (s *AccountService) issueToken(user *models.User) (*AuthResult, error) {
	token, err := utils.GenerateToken(user, s.security.JWTSecret, s.security.JWTTTL)
	if err != nil {
		return nil, apperr.Technical("sign token", err)
	}
	return &AuthResult{User: user, Token: token, ExpiresIn: int64(s.security.JWTTTL.Seconds())}, nil
}

// Register creates the account with the welcome credits and logs it in.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	input.Pseudo = strings.TrimSpace(input.Pseudo)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validators.ValidateStruct(input); err != nil {
		return nil, err
	}
	if err := requireOneRole(input.IsDriver, input.IsPassenger); err != nil {
		return nil, err
	}

	user := &models.User{
		Pseudo:      input.Pseudo,
		Email:       input.Email,
		Phone:       input.Phone,
		Credits:     s.rules.WelcomeCredits,
		IsDriver:    input.IsDriver,
		IsPassenger: input.IsPassenger,
		Status:      models.UserStatusActive,
	}
	if err := user.SetPassword(input.Password, s.security.BcryptCost); err != nil {
		return nil, apperr.Technical("hash password", err)
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperr.ErrEmailTaken
		}
		return nil, classify("create user", err)
	}

	s.log.WithUserID(user.ID).Info("user registered")
	s.record(ctx, models.Event{
		Action:   models.EventUserRegistered,
		Entity:   "utilisateur",
		EntityID: user.ID,
		ActorID:  user.ID,
		Payload:  map[string]interface{}{"credits": user.Credits, "roles": user.Roles()},
	})
	return s.issueToken(user)
}

func (s *AccountService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.ErrInvalidCredentials
	}
	if err != nil {
		return nil, classify("load user", err)
	}
	if err := user.CheckPassword(password); err != nil {
		return nil, apperr.ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, apperr.ErrAccountSuspended
	}
	return s.issueToken(user)
}

func (s *AccountService) Profile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.GetUser(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.ErrUserNotFound
	}
	if err != nil {
		return nil, classify("load user", err)
	}
	return user, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID uint, input ProfileInput) (*models.User, error) {
	input.Pseudo = strings.TrimSpace(input.Pseudo)
	if err := validators.ValidateStruct(input); err != nil {
		return nil, err
	}
	if err := requireOneRole(input.IsDriver, input.IsPassenger); err != nil {
		return nil, err
	}

	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Pseudo = input.Pseudo
	user.Phone = input.Phone
	user.IsDriver = input.IsDriver
	user.IsPassenger = input.IsPassenger
	user.Smoker = input.Smoker
	user.Animals = input.Animals

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperr.ErrEmailTaken
		}
		return nil, classify("update profile", err)
	}
	return user, nil
}

// SetPhoto replaces the profile photo. The previous file is removed on a
// best-effort basis.
func (s *AccountService) SetPhoto(ctx context.Context, userID uint, data []byte) (string, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return "", err
	}
	url, err := s.photos.SaveProfilePhoto(ctx, userID, data)
	if err != nil {
		return "", classify("store photo", err)
	}
	if err := s.users.SetPhoto(ctx, userID, url); err != nil {
		return "", classify("save photo url", err)
	}

	if user.PhotoURL != "" {
		if err := s.photos.DeleteProfilePhoto(ctx, user.PhotoURL); err != nil {
			s.log.WithUserID(userID).WithError(err).Warn("failed to delete previous photo")
		}
	}
	return url, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// RequestPasswordReset mails a one-time link. Unknown emails get the same
// silent success so the endpoint does not reveal who is registered.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil
	}
	if err != nil {
		return classify("load user", err)
	}
	if !user.IsActive() {
		return nil
	}

	token := uuid.NewString()
	if err := s.resets.InvalidatePasswordResets(ctx, user.ID); err != nil {
		return classify("invalidate reset tokens", err)
	}
	reset := &models.PasswordReset{
		UserID:    user.ID,
		TokenHash: hashToken(token),
		ExpiresAt: s.now().Add(s.security.PasswordResetTTL),
	}
	if err := s.resets.CreatePasswordReset(ctx, reset); err != nil {
		return classify("store reset token", err)
	}

	if s.mailer != nil {
		if err := s.mailer.SendPasswordResetEmail(user.Email, token, s.security.PasswordResetTTL); err != nil {
			s.metrics.SideEffectFailed("mail")
			s.log.WithUserID(user.ID).WithError(err).Warn("password reset email failed")
		}
	}
	return nil
}

func (s *AccountService) ResetPassword(ctx context.Context, token, password string) error {
	input := struct {
		Token    string `json:"token" validate:"required"`
		Password string `json:"password" validate:"required,strong_password"`
	}{Token: token, Password: password}
	if err := validators.ValidateStruct(input); err != nil {
		return err
	}

	var user models.User
	if err := user.SetPassword(password, s.security.BcryptCost); err != nil {
		return apperr.Technical("hash password", err)
	}

	// The token is only spent if the new password is stored with it.
	var userID uint
	err := s.store.WithTx(ctx, func(tx repositories.Tx) error {
		reset, err := tx.ConsumePasswordReset(hashToken(token), s.now())
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.ErrInvalidResetToken
		}
		if err != nil {
			return classify("consume reset token", err)
		}
		if err := tx.SetPassword(reset.UserID, user.PasswordHash); err != nil {
			return classify("save password", err)
		}
		userID = reset.UserID
		return nil
	})
	if err != nil {
		return err
	}

	s.log.WithUserID(userID).Info("password reset")
	return nil
}

func (s *AccountService) Suspend(ctx context.Context, adminID, userID uint) (Outcome, error) {
	return s.setStatus(ctx, adminID, userID, models.UserStatusActive, models.UserStatusSuspended, models.EventUserSuspended)
}

func (s *AccountService) Reactivate(ctx context.Context, adminID, userID uint) (Outcome, error) {
	return s.setStatus(ctx, adminID, userID, models.UserStatusSuspended, models.UserStatusActive, models.EventUserReactivated)
}

func (s *AccountService) setStatus(ctx context.Context, adminID, userID uint, from, to models.UserStatus, action models.EventAction) (Outcome, error) {
	if adminID == userID {
		return "", apperr.Invalid("userId", "you cannot change the status of your own account")
	}
	if _, err := s.Profile(ctx, userID); err != nil {
		return "", err
	}

	affected, err := s.users.SetStatus(ctx, userID, from, to)
	if err != nil {
		return "", classify("set user status", err)
	}
	if affected == 0 {
		return AlreadyHandled, nil
	}

	s.log.WithUserID(userID).WithField("adminId", adminID).WithField("status", to).Info("account status changed")
	s.record(ctx, models.Event{
		Action:   action,
		Entity:   "utilisateur",
		EntityID: userID,
		ActorID:  adminID,
	})
	return Applied, nil
}

// CreateEmployee opens a staff account. Employees hold no credits and no
// carpooling role.
func (s *AccountService) CreateEmployee(ctx context.Context, adminID uint, input EmployeeInput) (*models.User, error) {
	input.Pseudo = strings.TrimSpace(input.Pseudo)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validators.ValidateStruct(input); err != nil {
		return nil, err
	}

	user := &models.User{
		Pseudo: input.Pseudo,
		Email:  input.Email,
		Status: models.UserStatusActive,
	}
	if err := user.SetPassword(input.Password, s.security.BcryptCost); err != nil {
		return nil, apperr.Technical("hash password", err)
	}

	if err := s.users.CreateEmployee(ctx, user, adminID); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperr.ErrEmailTaken
		}
		return nil, classify("create employee", err)
	}

	s.log.WithUserID(user.ID).WithField("adminId", adminID).Info("employee created")
	s.record(ctx, models.Event{
		Action:   models.EventEmployeeCreated,
		Entity:   "employe",
		EntityID: user.ID,
		ActorID:  adminID,
	})
	return user, nil
}
