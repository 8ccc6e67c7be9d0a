package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rebecca-roussel/ecoride/internal/services"
)

func GetPendingReviews(moderation *services.ModerationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		reviews, err := moderation.PendingReviews(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, reviews)
	}
}

// ModerateReview approves or rejects a pending review. A review that was
// already moderated answers with outcome "already_handled".
func ModerateReview(moderation *services.ModerationService, approve bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		reviewID, ok := idParam(c, "id")
		if !ok {
			return
		}

		outcome, err := moderation.ModerateReview(c.Request.Context(), reviewID, currentUserID(c), approve)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, gin.H{"outcome": outcome})
	}
}

func GetOpenIncidents(moderation *services.ModerationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rides, err := moderation.OpenIncidents(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, rides)
	}
}

func ResolveIncident(moderation *services.ModerationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rideID, ok := idParam(c, "id")
		if !ok {
			return
		}

		outcome, err := moderation.ResolveIncident(c.Request.Context(), rideID, currentUserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, gin.H{"outcome": outcome})
	}
}
