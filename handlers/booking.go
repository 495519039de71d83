package handlers

import (
	"net/http"
	"strconv"

	"stylora/middleware"
	"stylora/models"
	"stylora/services/booking"
	"stylora/utils"

	"github.com/gin-gonic/gin"
)

// GetAvailableSlotsHandler lists the bookable slots for a stylist on a date.
// Query params: stylistId, date (YYYY-MM-DD), durationMinutes (optional).
func GetAvailableSlotsHandler(svc booking.SchedulingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		stylistID := c.Query("stylistId")
		date := c.Query("date")
		if stylistID == "" || date == "" {
			utils.JSONError(c, http.StatusBadRequest, "invalid input", "stylistId and date are required")
			return
		}
		duration := 0
		if raw := c.Query("durationMinutes"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				utils.JSONError(c, http.StatusBadRequest, "invalid input", "durationMinutes must be a positive integer")
				return
			}
			duration = parsed
		}

		slots, err := svc.GetAvailableSlots(c.Request.Context(), stylistID, date, duration)
		if err != nil {
			utils.JSONAppError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"stylistId": stylistID, "date": date, "slots": slots})
	}
}

// CreateBookingHandler creates a pending booking for the authenticated user.
func CreateBookingHandler(svc booking.SchedulingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.ActorFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}
		var req booking.CreateBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
			return
		}
		// The booking always belongs to the caller.
		req.UserID = actor.ID

		result, err := svc.CreateBooking(c.Request.Context(), req)
		if err != nil {
			utils.JSONAppError(c, err)
			return
		}
		c.JSON(http.StatusCreated, result)
	}
}

// ConfirmPaymentHandler verifies the gateway confirmation and confirms the
// booking. Safe to replay.
func ConfirmPaymentHandler(svc booking.SchedulingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingID := c.Param("id")
		var confirmation models.PaymentConfirmation
		if err := c.ShouldBindJSON(&confirmation); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
			return
		}

		updated, err := svc.ConfirmPayment(c.Request.Context(), bookingID, confirmation)
		if err != nil {
			utils.JSONAppError(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

// CancelBookingHandler cancels a confirmed booking and refunds it.
func CancelBookingHandler(svc booking.SchedulingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.ActorFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}
		bookingID := c.Param("id")
		var input struct {
			Reason string `json:"reason"`
		}
		// Body is optional.
		_ = c.ShouldBindJSON(&input)

		updated, err := svc.CancelBooking(c.Request.Context(), bookingID, actor, input.Reason)
		if err != nil {
			utils.JSONAppError(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

// RescheduleBookingHandler moves a confirmed booking to a new slot by closing
// it out and opening a linked replacement.
func RescheduleBookingHandler(svc booking.SchedulingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.ActorFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}
		bookingID := c.Param("id")
		var input struct {
			ScheduledDate string `json:"scheduledDate" binding:"required"`
			ScheduledTime string `json:"scheduledTime" binding:"required"`
			Reason        string `json:"reason"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
			return
		}

		result, err := svc.RescheduleBooking(c.Request.Context(), bookingID, actor,
			input.ScheduledDate, input.ScheduledTime, input.Reason)
		if err != nil {
			utils.JSONAppError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// MarkNoShowHandler lets the stylist flag a confirmed booking whose user never
// joined.
func MarkNoShowHandler(svc booking.SchedulingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.ActorFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}
		updated, err := svc.MarkNoShow(c.Request.Context(), c.Param("id"), actor)
		if err != nil {
			utils.JSONAppError(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

// GetBookingHandler returns a single booking the caller participates in.
func GetBookingHandler(svc booking.SchedulingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.ActorFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}
		b, err := svc.GetBooking(c.Request.Context(), c.Param("id"), actor)
		if err != nil {
			utils.JSONAppError(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

// ListBookingsHandler lists the caller's bookings, newest first.
func ListBookingsHandler(svc booking.SchedulingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.ActorFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}
		bookings, err := svc.ListBookings(c.Request.Context(), actor)
		if err != nil {
			utils.JSONAppError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"bookings": bookings})
	}
}
