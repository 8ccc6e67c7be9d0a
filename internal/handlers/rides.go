package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rebecca-roussel/ecoride/internal/apperr"
	"github.com/rebecca-roussel/ecoride/internal/services"
	"github.com/rebecca-roussel/ecoride/pkg/utils"
)

type searchQuery struct {
	From        string   `form:"from" binding:"required"`
	To          string   `form:"to" binding:"required"`
	Date        string   `form:"date" binding:"required"`
	Eco         bool     `form:"eco"`
	MaxPrice    int      `form:"maxPrice" binding:"min=0"`
	MaxDuration int      `form:"maxDuration" binding:"min=0"`
	MinRating   float64  `form:"minRating" binding:"min=0,max=5"`
	Lat         *float64 `form:"lat" binding:"omitempty,latitude"`
	Lng         *float64 `form:"lng" binding:"omitempty,longitude"`
}

// SearchRides lists the bookable rides between two cities on a day
// (YYYY-MM-DD). Public.
func SearchRides(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q searchQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			respondError(c, bindError(err))
			return
		}
		date, err := time.ParseInLocation("2006-01-02", q.Date, time.Local)
		if err != nil {
			respondError(c, apperr.Invalid("date", "date must use the YYYY-MM-DD format"))
			return
		}

		input := services.SearchInput{
			DepartureCity:      q.From,
			ArrivalCity:        q.To,
			Date:               date,
			EcoOnly:            q.Eco,
			MaxPrice:           q.MaxPrice,
			MaxDurationMinutes: q.MaxDuration,
			MinRating:          q.MinRating,
		}
		if q.Lat != nil && q.Lng != nil {
			input.Near = &utils.Point{Lat: *q.Lat, Lng: *q.Lng}
		}

		result, err := rides.Search(c.Request.Context(), input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, result)
	}
}

func GetRide(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rideID, ok := idParam(c, "id")
		if !ok {
			return
		}

		details, err := rides.Get(c.Request.Context(), rideID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, details)
	}
}

// PublishRide handles the creation of a new ride by a driver
func PublishRide(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.PublishInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, bindError(err))
			return
		}

		ride, err := rides.Publish(c.Request.Context(), currentUserID(c), input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(201, ride)
	}
}

// GetDriverRides lists the rides published by the authenticated driver
func GetDriverRides(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := rides.ListForDriver(c.Request.Context(), currentUserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, list)
	}
}

func GetDriverRating(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID, ok := idParam(c, "id")
		if !ok {
			return
		}

		rating, rated, err := rides.DriverRating(c.Request.Context(), driverID)
		if err != nil {
			respondError(c, err)
			return
		}
		if !rated {
			c.JSON(200, gin.H{"driverId": driverID, "rating": nil})
			return
		}
		c.JSON(200, gin.H{"driverId": driverID, "rating": rating})
	}
}

// SuggestPlaces feeds the address autocompletion of the ride forms.
func SuggestPlaces(geocoder services.Geocoder) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := strings.TrimSpace(c.Query("q"))
		if geocoder == nil {
			c.JSON(200, []services.Place{})
			return
		}

		places, err := geocoder.Suggest(c.Request.Context(), query)
		if err != nil {
			c.Error(err)
			c.JSON(200, []services.Place{})
			return
		}
		c.JSON(200, places)
	}
}
