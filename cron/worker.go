package cron

import (
	"context"
	"encoding/json"
	"fmt"

	"stylora/config"
	"stylora/services/notification"
	"stylora/services/tasks"
	"stylora/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// InitReminderWorker runs the asynq worker in the background, delivering
// booking reminders to both counterparties when they fire.
func InitReminderWorker(notifSvc notification.Service) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeBookingReminder, handleReminderTask(notifSvc))

	go func() {
		logger := utils.GetLogger()
		logger.Info("starting reminder worker")
		if err := srv.Run(mux); err != nil {
			logger.Error("reminder worker stopped", zap.Error(err))
		}
	}()
}

func handleReminderTask(notifSvc notification.Service) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()

		var p tasks.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("invalid reminder payload", zap.Error(err))
			return err
		}

		title := "Upcoming booking"
		body := fmt.Sprintf("Your booking on %s at %s is coming up.", p.ScheduledDate, p.ScheduledTime)
		data := map[string]string{
			"bookingId": p.BookingID,
			"date":      p.ScheduledDate,
			"time":      p.ScheduledTime,
		}

		if err := notifSvc.NotifyUser(ctx, p.UserID, title, body, data); err != nil {
			logger.Warn("failed to deliver user reminder", zap.String("bookingID", p.BookingID), zap.Error(err))
		}
		if err := notifSvc.NotifyStylist(ctx, p.StylistID, title, body, data); err != nil {
			logger.Warn("failed to deliver stylist reminder", zap.String("bookingID", p.BookingID), zap.Error(err))
		}
		return nil
	}
}
