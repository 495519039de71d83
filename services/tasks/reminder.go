package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"stylora/models"

	"github.com/hibiken/asynq"
)

const TypeBookingReminder = "booking:reminder"

// ReminderPayload is the deferred reminder for an upcoming booking.
type ReminderPayload struct {
	BookingID     string `json:"bookingId"`
	StylistID     string `json:"stylistId"`
	UserID        string `json:"userId"`
	ScheduledDate string `json:"scheduledDate"`
	ScheduledTime string `json:"scheduledTime"`
}

// NewBookingReminderTask builds the asynq task for a booking reminder.
func NewBookingReminderTask(payload ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBookingReminder, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}
	return task, opts, nil
}

// AsynqReminderScheduler enqueues booking reminders on the asynq queue.
type AsynqReminderScheduler struct {
	Client *asynq.Client
}

// ScheduleReminder enqueues a reminder for the booking to fire at fireAt.
func (s *AsynqReminderScheduler) ScheduleReminder(ctx context.Context, booking *models.Booking, fireAt time.Time) error {
	task, opts, err := NewBookingReminderTask(ReminderPayload{
		BookingID:     booking.ID,
		StylistID:     booking.StylistID,
		UserID:        booking.UserID,
		ScheduledDate: booking.ScheduledDate,
		ScheduledTime: booking.ScheduledTime,
	}, fireAt)
	if err != nil {
		return fmt.Errorf("failed to build reminder task: %w", err)
	}
	if _, err := s.Client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("failed to enqueue reminder: %w", err)
	}
	return nil
}
