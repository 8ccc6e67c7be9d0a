package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rebecca-roussel/ecoride/internal/services"
)

func CreateEmployee(accounts *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.EmployeeInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, bindError(err))
			return
		}

		employee, err := accounts.CreateEmployee(c.Request.Context(), currentUserID(c), input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(201, employee)
	}
}

type statusChange func(ctx context.Context, adminID, userID uint) (services.Outcome, error)

func accountStatusHandler(change statusChange) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := idParam(c, "id")
		if !ok {
			return
		}

		outcome, err := change(c.Request.Context(), currentUserID(c), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, gin.H{"outcome": outcome})
	}
}

func SuspendUser(accounts *services.AccountService) gin.HandlerFunc {
	return accountStatusHandler(accounts.Suspend)
}

func ReactivateUser(accounts *services.AccountService) gin.HandlerFunc {
	return accountStatusHandler(accounts.Reactivate)
}
