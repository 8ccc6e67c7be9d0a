package handlers

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/rebecca-roussel/ecoride/internal/apperr"
	"github.com/rebecca-roussel/ecoride/internal/services"
)

// maxUploadRead bounds what is read from a multipart file; the storage
// applies the real photo limit.
const maxUploadRead = 8 << 20

// GetProfile returns the authenticated user's profile
func GetProfile(accounts *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := accounts.Profile(c.Request.Context(), currentUserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, gin.H{"user": user, "roles": user.Roles()})
	}
}

func UpdateProfile(accounts *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.ProfileInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, bindError(err))
			return
		}

		user, err := accounts.UpdateProfile(c.Request.Context(), currentUserID(c), input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, gin.H{"user": user, "roles": user.Roles()})
	}
}

// UploadPhoto expects a multipart form with a "photo" file.
func UploadPhoto(accounts *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header, err := c.FormFile("photo")
		if err != nil {
			respondError(c, apperr.Invalid("photo", "photo is required"))
			return
		}
		file, err := header.Open()
		if err != nil {
			respondError(c, err)
			return
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxUploadRead))
		if err != nil {
			respondError(c, err)
			return
		}

		url, err := accounts.SetPhoto(c.Request.Context(), currentUserID(c), data)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, gin.H{"photoUrl": url})
	}
}
