package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rebecca-roussel/ecoride/internal/services"
)

func AddVehicle(vehicles *services.VehicleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.VehicleInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, bindError(err))
			return
		}

		vehicle, err := vehicles.Add(c.Request.Context(), currentUserID(c), input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(201, vehicle)
	}
}

func ListVehicles(vehicles *services.VehicleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := vehicles.List(c.Request.Context(), currentUserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, list)
	}
}

// DeactivateVehicle soft-deletes the vehicle; repeating the call is not an
// error.
func DeactivateVehicle(vehicles *services.VehicleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		vehicleID, ok := idParam(c, "id")
		if !ok {
			return
		}

		outcome, err := vehicles.Deactivate(c.Request.Context(), currentUserID(c), vehicleID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, gin.H{"outcome": outcome})
	}
}
