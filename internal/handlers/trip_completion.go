package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rebecca-roussel/ecoride/internal/apperr"
	"github.com/rebecca-roussel/ecoride/internal/services"
)

// GetReviewEligibility tells the passenger whether the trip can be reviewed
// now, and why not otherwise.
func GetReviewEligibility(reviews *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rideID, ok := idParam(c, "id")
		if !ok {
			return
		}

		err := reviews.Eligibility(c.Request.Context(), rideID, currentUserID(c))
		var appErr *apperr.Error
		switch {
		case err == nil:
			c.JSON(200, gin.H{"eligible": true})
		case errors.As(err, &appErr) && appErr.Kind == apperr.KindBusiness:
			c.JSON(200, gin.H{"eligible": false, "code": appErr.Code, "reason": appErr.Message})
		default:
			respondError(c, err)
		}
	}
}

// SubmitReview validates the trip and records the passenger's review
func SubmitReview(reviews *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rideID, ok := idParam(c, "id")
		if !ok {
			return
		}
		var input services.ReviewInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, bindError(err))
			return
		}

		review, err := reviews.Submit(c.Request.Context(), rideID, currentUserID(c), input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(201, review)
	}
}
