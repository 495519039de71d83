package handlers

import (
	"net/http"
	"time"

	"stylora/models"
	"stylora/utils"

	"github.com/gin-gonic/gin"
)

// DevTokenHandler mints an actor bearer token for local development and
// testing. Only registered outside production; real deployments issue tokens
// through the identity service.
func DevTokenHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Subject    string `json:"subject" binding:"required"`
			Role       string `json:"role" binding:"required"`
			TTLMinutes int    `json:"ttlMinutes"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
			return
		}
		if input.Role != models.RoleUser && input.Role != models.RoleStylist {
			utils.JSONError(c, http.StatusBadRequest, "invalid input", "role must be user or stylist")
			return
		}
		if input.TTLMinutes <= 0 {
			input.TTLMinutes = 60
		}

		token, err := utils.GenerateActorToken(input.Subject, input.Role, time.Duration(input.TTLMinutes)*time.Minute)
		if err != nil {
			utils.JSONError(c, http.StatusInternalServerError, "failed to mint token", err.Error())
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}
