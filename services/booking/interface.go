package booking

import (
	"context"
	"time"

	availabilityRepo "stylora/database/repository/availability"
	bookingRepo "stylora/database/repository/booking"
	directoryRepo "stylora/database/repository/directory"
	"stylora/models"
	"stylora/services/notification"
	"stylora/services/payment"
)

// CreateBookingRequest is the input for creating a pending booking.
type CreateBookingRequest struct {
	StylistID       string `json:"stylistId" binding:"required"`
	UserID          string `json:"userId"`
	Type            string `json:"type" binding:"required"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	ScheduledDate   string `json:"scheduledDate" binding:"required"`
	ScheduledTime   string `json:"scheduledTime" binding:"required"`
	DurationMinutes int    `json:"durationMinutes"`
}

// CreateBookingResult carries the pending booking plus what the client needs
// to complete payment.
type CreateBookingResult struct {
	Booking      *models.Booking `json:"booking"`
	ClientSecret string          `json:"clientSecret,omitempty"`
}

// RescheduleResult links the terminal original booking with its replacement.
type RescheduleResult struct {
	Original    *models.Booking `json:"original"`
	Replacement *models.Booking `json:"replacement"`
}

// ReminderScheduler enqueues a deferred booking reminder.
type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, booking *models.Booking, fireAt time.Time) error
}

// SchedulingService is the facade calling code uses: list slots and drive a
// booking through its lifecycle.
type SchedulingService interface {
	GetAvailableSlots(ctx context.Context, stylistID, date string, durationMinutes int) ([]models.Slot, error)
	CreateBooking(ctx context.Context, req CreateBookingRequest) (*CreateBookingResult, error)
	ConfirmPayment(ctx context.Context, bookingID string, confirmation models.PaymentConfirmation) (*models.Booking, error)
	CancelBooking(ctx context.Context, bookingID string, actor models.Actor, reason string) (*models.Booking, error)
	RescheduleBooking(ctx context.Context, bookingID string, actor models.Actor, newDate, newTime, reason string) (*RescheduleResult, error)
	MarkNoShow(ctx context.Context, bookingID string, actor models.Actor) (*models.Booking, error)
	GetBooking(ctx context.Context, bookingID string, actor models.Actor) (*models.Booking, error)
	ListBookings(ctx context.Context, actor models.Actor) ([]models.Booking, error)
}

// DefaultSchedulingEngine is the production scheduling facade.
type DefaultSchedulingEngine struct {
	Bookings     bookingRepo.BookingRepository
	Availability availabilityRepo.AvailabilityRepository
	Directory    directoryRepo.DirectoryRepository
	Payments     payment.Gateway
	Notifier     notification.Service
	Reminders    ReminderScheduler // optional
	ReminderLead time.Duration     // how long before start the reminder fires
	Loc          *time.Location
	Now          func() time.Time // injectable clock; defaults to time.Now
}

func (se *DefaultSchedulingEngine) now() time.Time {
	if se.Now != nil {
		return se.Now()
	}
	return time.Now()
}

func (se *DefaultSchedulingEngine) loc() *time.Location {
	if se.Loc != nil {
		return se.Loc
	}
	return time.Local
}
