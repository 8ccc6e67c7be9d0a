package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rebecca-roussel/ecoride/internal/services"
)

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func Register(accounts *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.RegisterInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, bindError(err))
			return
		}

		result, err := accounts.Register(c.Request.Context(), input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(201, result)
	}
}

func Login(accounts *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input LoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, bindError(err))
			return
		}

		result, err := accounts.Login(c.Request.Context(), input.Email, input.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, result)
	}
}

// RequestPasswordReset answers the same way whether or not the email is
// registered.
func RequestPasswordReset(accounts *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Email string `json:"email" binding:"required,email"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, bindError(err))
			return
		}

		if err := accounts.RequestPasswordReset(c.Request.Context(), input.Email); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, gin.H{"message": "If this email is registered, a reset link has been sent."})
	}
}

func ResetPassword(accounts *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Token    string `json:"token" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, bindError(err))
			return
		}

		if err := accounts.ResetPassword(c.Request.Context(), input.Token, input.Password); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, gin.H{"message": "Password updated, you can now log in."})
	}
}
