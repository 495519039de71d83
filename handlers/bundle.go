package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all the endpoint handlers into one struct.
type HandlerBundle struct {
	// Slot + booking endpoints
	GetAvailableSlotsHandler gin.HandlerFunc
	CreateBookingHandler     gin.HandlerFunc
	ConfirmPaymentHandler    gin.HandlerFunc
	CancelBookingHandler     gin.HandlerFunc
	RescheduleBookingHandler gin.HandlerFunc
	MarkNoShowHandler        gin.HandlerFunc
	GetBookingHandler        gin.HandlerFunc
	ListBookingsHandler      gin.HandlerFunc

	// Session endpoints
	StartSessionHandler   gin.HandlerFunc
	EndSessionHandler     gin.HandlerFunc
	RefreshSessionHandler gin.HandlerFunc

	// Availability endpoints
	GetAvailabilityHandler        gin.HandlerFunc
	SetWeeklyScheduleHandler      gin.HandlerFunc
	SetBookingPreferencesHandler  gin.HandlerFunc
	UpsertDateOverrideHandler     gin.HandlerFunc
	RemoveDateOverrideHandler     gin.HandlerFunc
	DeactivateAvailabilityHandler gin.HandlerFunc
}
