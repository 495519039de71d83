package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stylora/config"
	"stylora/cron"
	"stylora/database"
	availabilityRepoPkg "stylora/database/repository/availability"
	bookingRepoPkg "stylora/database/repository/booking"
	directoryRepoPkg "stylora/database/repository/directory"
	"stylora/handlers"
	"stylora/middleware"
	"stylora/routes"
	availabilitySvc "stylora/services/availability"
	"stylora/services/booking"
	"stylora/services/notification"
	"stylora/services/payment"
	"stylora/services/session"
	"stylora/services/tasks"
	"stylora/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
)

const sessionRefreshBufferSeconds = 60

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()
	utils.FirebaseInit()

	loc, err := time.LoadLocation(config.AppConfig.Timezone)
	if err != nil {
		logger.Sugar().Fatalf("main: invalid timezone %q: %v", config.AppConfig.Timezone, err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	stripe.Key = config.AppConfig.StripeKey

	// repositories.
	availabilityRepo := availabilityRepoPkg.NewMongoAvailabilityRepo()
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	directoryRepo := directoryRepoPkg.NewMongoDirectoryRepo()

	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelIndexes()
	if repo, ok := availabilityRepo.(*availabilityRepoPkg.MongoAvailabilityRepo); ok {
		if err := repo.EnsureIndexes(indexCtx); err != nil {
			logger.Sugar().Fatalf("main: failed to ensure availability indexes: %v", err)
		}
	}
	if repo, ok := bookingRepo.(*bookingRepoPkg.MongoBookingRepo); ok {
		if err := repo.EnsureIndexes(indexCtx); err != nil {
			logger.Sugar().Fatalf("main: failed to ensure booking indexes: %v", err)
		}
	}

	// services.
	notificationService := notification.NewDefaultNotificationService(directoryRepo, utils.FCMClient, logger)

	queueClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer queueClient.Close()

	schedulingEngine := &booking.DefaultSchedulingEngine{
		Bookings:     bookingRepo,
		Availability: availabilityRepo,
		Directory:    directoryRepo,
		Payments:     payment.NewStripeGateway(config.AppConfig.PaymentSigningSecret, logger),
		Notifier:     notificationService,
		Reminders:    &tasks.AsynqReminderScheduler{Client: queueClient},
		ReminderLead: time.Duration(config.AppConfig.ReminderLeadMin) * time.Minute,
		Loc:          loc,
	}

	availabilityService := &availabilitySvc.DefaultAvailabilityService{
		Repo: availabilityRepo,
	}

	sessionCoordinator := &session.Coordinator{
		Bookings:         bookingRepo,
		Tokens:           session.NewJWTTokenProvider(config.AppConfig.RTCAppID, config.AppConfig.RTCAppSecret),
		Expiry:           &session.RedisExpiryStore{Client: utils.GetSessionCacheClient()},
		JoinLeadMinutes:  config.AppConfig.SessionJoinLeadMin,
		JoinGraceMinutes: config.AppConfig.SessionJoinGraceMin,
		TokenTTL:         time.Duration(config.AppConfig.SessionTokenTTLMin) * time.Minute,
		Loc:              loc,
	}

	// Run the reminder worker alongside the API server.
	cron.InitReminderWorker(notificationService)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		GetAvailableSlotsHandler: handlers.GetAvailableSlotsHandler(schedulingEngine),
		CreateBookingHandler:     handlers.CreateBookingHandler(schedulingEngine),
		ConfirmPaymentHandler:    handlers.ConfirmPaymentHandler(schedulingEngine),
		CancelBookingHandler:     handlers.CancelBookingHandler(schedulingEngine),
		RescheduleBookingHandler: handlers.RescheduleBookingHandler(schedulingEngine),
		MarkNoShowHandler:        handlers.MarkNoShowHandler(schedulingEngine),
		GetBookingHandler:        handlers.GetBookingHandler(schedulingEngine),
		ListBookingsHandler:      handlers.ListBookingsHandler(schedulingEngine),

		StartSessionHandler:   handlers.StartSessionHandler(sessionCoordinator),
		EndSessionHandler:     handlers.EndSessionHandler(sessionCoordinator),
		RefreshSessionHandler: handlers.RefreshSessionHandler(sessionCoordinator, sessionRefreshBufferSeconds),

		GetAvailabilityHandler:        handlers.GetAvailabilityHandler(availabilityService),
		SetWeeklyScheduleHandler:      handlers.SetWeeklyScheduleHandler(availabilityService),
		SetBookingPreferencesHandler:  handlers.SetBookingPreferencesHandler(availabilityService),
		UpsertDateOverrideHandler:     handlers.UpsertDateOverrideHandler(availabilityService),
		RemoveDateOverrideHandler:     handlers.RemoveDateOverrideHandler(availabilityService),
		DeactivateAvailabilityHandler: handlers.DeactivateAvailabilityHandler(availabilityService),
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
