package validators

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/rebecca-roussel/ecoride/internal/apperr"
)

var validate *validator.Validate

var (
	plateRegex = regexp.MustCompile(`^[A-Z]{2}-?[0-9]{3}-?[A-Z]{2}$|^[0-9]{1,4}\s?[A-Z]{1,3}\s?[0-9]{2}$`)
	phoneRegex = regexp.MustCompile(`^(\+33|0)[1-9]([ .-]?[0-9]{2}){4}$`)
)

func init() {
	validate = validator.New()

	// Report fields under their JSON names.
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	validate.RegisterValidation("license_plate", validateLicensePlate)
	validate.RegisterValidation("phone_number", validatePhoneNumber)
	validate.RegisterValidation("strong_password", validateStrongPassword)
}

// Engine exposes the shared validator so gin's binding can reuse the same
// custom tags.
func Engine() *validator.Validate {
	return validate
}

// ValidateStruct returns nil or an apperr validation error keyed by JSON
// field name.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperr.Technical("validate input", err)
	}

	fields := make(map[string]string, len(fieldErrors))
	for _, fe := range fieldErrors {
		if _, seen := fields[fe.Field()]; !seen {
			fields[fe.Field()] = getErrorMessage(fe)
		}
	}
	return apperr.Validation(fields)
}

func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", err.Field())
	case "email":
		return "Invalid email format"
	case "min":
		if err.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
		}
		return fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
	case "max":
		if err.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		}
		return fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
	case "gtfield":
		return fmt.Sprintf("%s must be after %s", err.Field(), err.Param())
	case "license_plate":
		return "Invalid license plate format"
	case "phone_number":
		return "Invalid phone number format"
	case "strong_password":
		return "Password must contain uppercase, lowercase, number, and special character"
	default:
		return fmt.Sprintf("Validation failed for %s", err.Field())
	}
}

// validateLicensePlate accepts the SIV format (AB-123-CD) and the older
// FNI format (1234 AB 56).
func validateLicensePlate(fl validator.FieldLevel) bool {
	plate := fl.Field().String()
	if plate == "" {
		return true
	}
	return plateRegex.MatchString(strings.ToUpper(strings.TrimSpace(plate)))
}

func validatePhoneNumber(fl validator.FieldLevel) bool {
	phone := fl.Field().String()
	if phone == "" {
		return true
	}
	return phoneRegex.MatchString(phone)
}

func validateStrongPassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()
	if len(password) < 8 || len(password) > 128 {
		return false
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}
	return hasUpper && hasLower && hasNumber && hasSpecial
}
