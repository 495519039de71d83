package handlers

import (
	"net/http"

	"stylora/middleware"
	"stylora/services/session"
	"stylora/utils"

	"github.com/gin-gonic/gin"
)

// StartSessionHandler issues a session grant and opens the session on the
// first join.
func StartSessionHandler(coord *session.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.ActorFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}
		grant, err := coord.StartSession(c.Request.Context(), c.Param("id"), actor)
		if err != nil {
			utils.JSONAppError(c, err)
			return
		}
		c.JSON(http.StatusOK, grant)
	}
}

// EndSessionHandler closes the session and completes the booking.
func EndSessionHandler(coord *session.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.ActorFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}
		updated, err := coord.EndSession(c.Request.Context(), c.Param("id"), actor)
		if err != nil {
			utils.JSONAppError(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

// RefreshSessionHandler reissues a session token when the current one is
// about to expire.
func RefreshSessionHandler(coord *session.Coordinator, bufferSeconds int) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.ActorFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}
		grant, refreshed, err := coord.RefreshIfNeeded(c.Request.Context(), c.Param("id"), actor, bufferSeconds)
		if err != nil {
			utils.JSONAppError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"grant": grant, "refreshed": refreshed})
	}
}
