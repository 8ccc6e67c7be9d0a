package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rebecca-roussel/ecoride/internal/services"
)

// BookRide reserves one seat for the authenticated passenger
func BookRide(bookings *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rideID, ok := idParam(c, "id")
		if !ok {
			return
		}

		participation, err := bookings.Book(c.Request.Context(), rideID, currentUserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(201, participation)
	}
}

// CancelBooking withdraws the authenticated passenger from the ride
func CancelBooking(bookings *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rideID, ok := idParam(c, "id")
		if !ok {
			return
		}

		participation, err := bookings.CancelBooking(c.Request.Context(), rideID, currentUserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, participation)
	}
}

func GetPassengerBookings(bookings *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := bookings.ListForPassenger(c.Request.Context(), currentUserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, list)
	}
}
