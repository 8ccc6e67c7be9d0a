package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rebecca-roussel/ecoride/internal/models"
	"github.com/rebecca-roussel/ecoride/internal/services"
)

type rideTransition func(ctx context.Context, rideID, driverID uint) (*models.Ride, error)

func transitionHandler(apply rideTransition) gin.HandlerFunc {
	return func(c *gin.Context) {
		rideID, ok := idParam(c, "id")
		if !ok {
			return
		}

		ride, err := apply(c.Request.Context(), rideID, currentUserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, ride)
	}
}

// StartRide moves a planned ride to IN_PROGRESS
func StartRide(lifecycle *services.LifecycleService) gin.HandlerFunc {
	return transitionHandler(lifecycle.Start)
}

// FinishRide completes the ride and asks passengers to validate it
func FinishRide(lifecycle *services.LifecycleService) gin.HandlerFunc {
	return transitionHandler(lifecycle.Finish)
}

// CancelRide cancels the ride and refunds every passenger
func CancelRide(lifecycle *services.LifecycleService) gin.HandlerFunc {
	return transitionHandler(lifecycle.Cancel)
}

func DeclareIncident(lifecycle *services.LifecycleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rideID, ok := idParam(c, "id")
		if !ok {
			return
		}
		var input struct {
			Comment string `json:"comment"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, bindError(err))
			return
		}

		ride, err := lifecycle.DeclareIncident(c.Request.Context(), rideID, currentUserID(c), input.Comment)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, ride)
	}
}
