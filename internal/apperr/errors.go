// Package apperr classifies failures so callers can choose how much to
// tell the user: validation errors carry field messages, business errors
// carry a stable code, technical errors are logged and hidden.
package apperr

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
)

type Kind int

const (
	KindTechnical Kind = iota
	KindValidation
	KindBusiness
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindBusiness:
		return "business"
	default:
		return "technical"
	}
}

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+e.Fields[k])
		}
		return fmt.Sprintf("%s: %s", e.Code, strings.Join(parts, "; "))
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Code so sentinels work with errors.Is even after wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func Business(code, message string) *Error {
	return &Error{Kind: KindBusiness, Code: code, Message: message}
}

func Validation(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Code: CodeValidation, Message: "invalid input", Fields: fields}
}

// Invalid is a single-field validation error.
func Invalid(field, message string) *Error {
	return Validation(map[string]string{field: message})
}

func Technical(op string, err error) *Error {
	return &Error{Kind: KindTechnical, Code: CodeInternal, Message: op, Err: err}
}

const (
	CodeValidation = "VALIDATION_ERROR"
	CodeInternal   = "INTERNAL_ERROR"
)

var (
	ErrRideNotFound        = Business("RIDE_NOT_FOUND", "ride not found")
	ErrRideNotBookable     = Business("RIDE_NOT_BOOKABLE", "ride is not open for booking")
	ErrSelfBooking         = Business("SELF_BOOKING", "a driver cannot book their own ride")
	ErrRideFull            = Business("RIDE_FULL", "no seats left on this ride")
	ErrInsufficientCredits = Business("INSUFFICIENT_CREDITS", "not enough credits")
	ErrAlreadyBooked       = Business("ALREADY_BOOKED", "you already booked this ride")
	ErrBookingNotFound     = Business("BOOKING_NOT_FOUND", "booking not found")
	ErrNotRideOwner        = Business("NOT_RIDE_OWNER", "only the driver of this ride can do that")
	ErrInvalidTransition   = Business("INVALID_TRANSITION", "the ride is not in a state that allows this")
	ErrConcurrentUpdate    = Business("CONCURRENT_UPDATE", "the ride changed meanwhile, please retry")
	ErrNotEligible         = Business("NOT_ELIGIBLE", "this trip cannot be reviewed")
	ErrAlreadyReviewed     = Business("ALREADY_REVIEWED", "you already reviewed this trip")
	ErrAccountSuspended    = Business("ACCOUNT_SUSPENDED", "this account is suspended")
	ErrUserNotFound        = Business("USER_NOT_FOUND", "user not found")
	ErrVehicleNotFound     = Business("VEHICLE_NOT_FOUND", "vehicle not found")
	ErrVehicleInUse        = Business("VEHICLE_IN_USE", "the vehicle is assigned to upcoming rides")
	ErrNotDriver           = Business("NOT_DRIVER", "the driver role is required")
	ErrNotPassenger        = Business("NOT_PASSENGER", "the passenger role is required")
	ErrEmailTaken          = Business("EMAIL_TAKEN", "email or pseudo already in use")
	ErrPlateTaken          = Business("PLATE_TAKEN", "a vehicle with this plate is already registered")
	ErrInvalidCredentials  = Business("INVALID_CREDENTIALS", "invalid credentials")
	ErrInvalidResetToken   = Business("INVALID_RESET_TOKEN", "the reset link is invalid or expired")
	ErrReviewNotFound      = Business("REVIEW_NOT_FOUND", "review not found")
)

var notFoundCodes = map[string]bool{
	ErrRideNotFound.Code:    true,
	ErrBookingNotFound.Code: true,
	ErrUserNotFound.Code:    true,
	ErrVehicleNotFound.Code: true,
	ErrReviewNotFound.Code:  true,
}

var forbiddenCodes = map[string]bool{
	ErrNotRideOwner.Code:     true,
	ErrNotDriver.Code:        true,
	ErrNotPassenger.Code:     true,
	ErrAccountSuspended.Code: true,
}

// HTTPStatus maps an error to the status code the API answers with.
func HTTPStatus(err *Error) int {
	switch err.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindBusiness:
		switch {
		case notFoundCodes[err.Code]:
			return http.StatusNotFound
		case forbiddenCodes[err.Code]:
			return http.StatusForbidden
		case err.Code == ErrInvalidCredentials.Code:
			return http.StatusUnauthorized
		default:
			return http.StatusConflict
		}
	default:
		return http.StatusInternalServerError
	}
}
