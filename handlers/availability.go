package handlers

import (
	"net/http"

	"stylora/middleware"
	"stylora/models"
	"stylora/services/availability"
	"stylora/utils"

	"github.com/gin-gonic/gin"
)

// stylistOnly resolves the acting stylist and rejects everyone else.
func stylistOnly(c *gin.Context) (models.Actor, bool) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
		return models.Actor{}, false
	}
	if actor.Role != models.RoleStylist {
		c.JSON(http.StatusForbidden, utils.ErrorResponse{Code: utils.CodeForbidden, Message: "only stylists can manage availability"})
		return models.Actor{}, false
	}
	return actor, true
}

// GetAvailabilityHandler returns the caller's availability, creating the
// default schedule on first access.
func GetAvailabilityHandler(svc availability.AvailabilityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := stylistOnly(c)
		if !ok {
			return
		}
		av, err := svc.GetOrCreateDefault(c.Request.Context(), actor.ID)
		if err != nil {
			utils.JSONAppError(c, err)
			return
		}
		c.JSON(http.StatusOK, av)
	}
}

// SetWeeklyScheduleHandler replaces the caller's weekly template.
func SetWeeklyScheduleHandler(svc availability.AvailabilityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := stylistOnly(c)
		if !ok {
			return
		}
		var input struct {
			WeeklySchedule map[string]models.DaySchedule `json:"weeklySchedule" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
			return
		}
		av, err := svc.SetWeeklySchedule(c.Request.Context(), actor.ID, input.WeeklySchedule)
		if err != nil {
			utils.JSONAppError(c, err)
			return
		}
		c.JSON(http.StatusOK, av)
	}
}

// SetBookingPreferencesHandler replaces the caller's booking preferences.
func SetBookingPreferencesHandler(svc availability.AvailabilityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := stylistOnly(c)
		if !ok {
			return
		}
		var prefs models.BookingPreferences
		if err := c.ShouldBindJSON(&prefs); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
			return
		}
		av, err := svc.SetBookingPreferences(c.Request.Context(), actor.ID, prefs)
		if err != nil {
			utils.JSONAppError(c, err)
			return
		}
		c.JSON(http.StatusOK, av)
	}
}

// UpsertDateOverrideHandler adds or replaces a date override.
func UpsertDateOverrideHandler(svc availability.AvailabilityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := stylistOnly(c)
		if !ok {
			return
		}
		var override models.DateOverride
		if err := c.ShouldBindJSON(&override); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
			return
		}
		av, err := svc.UpsertDateOverride(c.Request.Context(), actor.ID, override)
		if err != nil {
			utils.JSONAppError(c, err)
			return
		}
		c.JSON(http.StatusOK, av)
	}
}

// RemoveDateOverrideHandler deletes the override for a date.
func RemoveDateOverrideHandler(svc availability.AvailabilityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := stylistOnly(c)
		if !ok {
			return
		}
		av, err := svc.RemoveDateOverride(c.Request.Context(), actor.ID, c.Param("date"))
		if err != nil {
			utils.JSONAppError(c, err)
			return
		}
		c.JSON(http.StatusOK, av)
	}
}

// DeactivateAvailabilityHandler makes the caller globally unbookable.
func DeactivateAvailabilityHandler(svc availability.AvailabilityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := stylistOnly(c)
		if !ok {
			return
		}
		av, err := svc.Deactivate(c.Request.Context(), actor.ID)
		if err != nil {
			utils.JSONAppError(c, err)
			return
		}
		c.JSON(http.StatusOK, av)
	}
}
