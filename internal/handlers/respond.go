package handlers

import (
	"errors"
	"strconv"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rebecca-roussel/ecoride/internal/apperr"
	"github.com/rebecca-roussel/ecoride/internal/middleware"
)

// respondError writes the error body. Technical errors are attached to the
// context for the request logger and answered with a generic message.
func respondError(c *gin.Context, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		appErr = apperr.Technical("request", err)
	}

	status := apperr.HTTPStatus(appErr)
	if status >= 500 {
		c.Error(err)
		c.AbortWithStatusJSON(status, gin.H{"error": "An internal error occurred", "code": appErr.Code})
		return
	}

	body := gin.H{"error": appErr.Message, "code": appErr.Code}
	if len(appErr.Fields) > 0 {
		body["fields"] = appErr.Fields
	}
	c.AbortWithStatusJSON(status, body)
}

// bindError turns a gin binding failure into a validation error.
func bindError(err error) error {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return apperr.Invalid("body", "malformed request")
	}
	fields := make(map[string]string, len(fieldErrors))
	for _, fe := range fieldErrors {
		name := lowerFirst(fe.Field())
		if fe.Param() != "" {
			fields[name] = "failed on " + fe.Tag() + "=" + fe.Param()
		} else {
			fields[name] = "failed on " + fe.Tag()
		}
	}
	return apperr.Validation(fields)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param(name)), 10, 32)
	if err != nil || id == 0 {
		respondError(c, apperr.Invalid(name, "must be a positive integer"))
		return 0, false
	}
	return uint(id), true
}

func currentUserID(c *gin.Context) uint {
	return c.GetUint(middleware.UserIDKey)
}
