package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rebecca-roussel/ecoride/internal/services"
)

// WebSocketHandler upgrades the connection for the authenticated user
func WebSocketHandler(hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		hub.HandleWebSocket(c.Writer, c.Request, currentUserID(c))
	}
}
