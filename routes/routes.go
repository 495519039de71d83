package routes

import (
	"net/http"
	"time"

	"stylora/config"
	"stylora/handlers"
	"stylora/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterSlotRoutes registers the public slot listing endpoint.
func RegisterSlotRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api")
	{
		api.GET("/slots", hb.GetAvailableSlotsHandler)
	}
}

// RegisterBookingRoutes registers the booking lifecycle endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("", hb.CreateBookingHandler)
		api.GET("", hb.ListBookingsHandler)
		api.GET("/:id", hb.GetBookingHandler)
		api.POST("/:id/payment-confirmation", hb.ConfirmPaymentHandler)
		api.POST("/:id/cancel", hb.CancelBookingHandler)
		api.POST("/:id/reschedule", hb.RescheduleBookingHandler)
		api.POST("/:id/no-show", hb.MarkNoShowHandler)

		api.POST("/:id/session/start", hb.StartSessionHandler)
		api.POST("/:id/session/end", hb.EndSessionHandler)
		api.POST("/:id/session/refresh", hb.RefreshSessionHandler)
	}
}

// RegisterAvailabilityRoutes registers the stylist calendar endpoints.
func RegisterAvailabilityRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/availability")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.GET("", hb.GetAvailabilityHandler)
		api.PUT("/weekly-schedule", hb.SetWeeklyScheduleHandler)
		api.PUT("/preferences", hb.SetBookingPreferencesHandler)
		api.PUT("/overrides", hb.UpsertDateOverrideHandler)
		api.DELETE("/overrides/:date", hb.RemoveDateOverrideHandler)
		api.DELETE("", hb.DeactivateAvailabilityHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterSlotRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterAvailabilityRoutes(r, hb)

	// Development-only token mint; production tokens come from the identity
	// service.
	if !config.IsProduction() {
		r.POST("/api/dev/token", handlers.DevTokenHandler())
	}
}
