package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	availabilityRepo "stylora/database/repository/availability"
	bookingRepo "stylora/database/repository/booking"
	directoryRepo "stylora/database/repository/directory"
	"stylora/models"
	"stylora/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GetAvailableSlots computes the bookable slots for a stylist on a date.
func (se *DefaultSchedulingEngine) GetAvailableSlots(ctx context.Context, stylistID, date string, durationMinutes int) ([]models.Slot, error) {
	availability, err := se.loadAvailability(ctx, stylistID)
	if err != nil {
		return nil, err
	}
	committed, err := se.Bookings.ListForStylistDate(ctx, stylistID, date, models.CommittedStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return ComputeSlots(availability, date, durationMinutes, committed, se.now(), se.loc())
}

// CreateBooking validates the requested slot against a fresh recompute,
// enforces the daily cap, creates a payment intent, and persists a pending
// booking. The slot list shown earlier was a snapshot, never a reservation,
// so the recompute plus the unique slot index decide races here.
func (se *DefaultSchedulingEngine) CreateBooking(ctx context.Context, req CreateBookingRequest) (*CreateBookingResult, error) {
	logger := utils.GetLogger()

	stylist, err := se.Directory.GetStylist(ctx, req.StylistID)
	if err != nil {
		if errors.Is(err, directoryRepo.ErrNotFound) {
			return nil, utils.NewNotFoundError("stylist " + req.StylistID + " not found")
		}
		return nil, fmt.Errorf("failed to load stylist: %w", err)
	}
	amount, ok := stylist.Rates[req.Type]
	if !ok {
		return nil, utils.NewValidationError("stylist does not offer service type " + req.Type)
	}

	availability, err := se.loadAvailability(ctx, req.StylistID)
	if err != nil {
		return nil, err
	}
	duration := req.DurationMinutes
	if duration <= 0 {
		duration = availability.BookingPreferences.SlotDurationMinutes
	}

	committed, err := se.Bookings.ListForStylistDate(ctx, req.StylistID, req.ScheduledDate, models.CommittedStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	slots, err := ComputeSlots(availability, req.ScheduledDate, duration, committed, se.now(), se.loc())
	if err != nil {
		return nil, err
	}
	if !slotListed(slots, req.ScheduledTime) {
		return nil, utils.NewSlotUnavailableError(
			fmt.Sprintf("slot %s %s is not available", req.ScheduledDate, req.ScheduledTime))
	}

	// Daily cap is a hard gate at creation, counting every booking that holds
	// calendar time including still-pending ones.
	dayCount, err := se.Bookings.CountForStylistDate(ctx, req.StylistID, req.ScheduledDate, models.ActiveStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}
	if dayCount >= availability.BookingPreferences.MaxBookingsPerDay {
		return nil, utils.NewSlotUnavailableError("daily booking limit reached")
	}

	bookingID := uuid.New().String()
	intent, err := se.Payments.CreateIntent(ctx, amount, stylist.Currency, map[string]string{
		"bookingId": bookingID,
		"stylistId": req.StylistID,
		"userId":    req.UserID,
	})
	if err != nil {
		return nil, err
	}

	now := se.now()
	newBooking := &models.Booking{
		ID:              bookingID,
		StylistID:       req.StylistID,
		UserID:          req.UserID,
		Type:            req.Type,
		Title:           req.Title,
		Description:     req.Description,
		ScheduledDate:   req.ScheduledDate,
		ScheduledTime:   req.ScheduledTime,
		DurationMinutes: duration,
		Status:          models.BookingStatusPending,
		PaymentStatus:   models.PaymentStatusPending,
		PaymentAmount:   amount,
		PaymentCurrency: stylist.Currency,
		PaymentOrderID:  intent.OrderID,
		SessionStatus:   models.SessionStatusNotStarted,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := se.Bookings.Create(ctx, newBooking); err != nil {
		se.cancelIntent(ctx, intent.OrderID)
		if errors.Is(err, bookingRepo.ErrSlotTaken) {
			return nil, utils.NewSlotUnavailableError(
				fmt.Sprintf("slot %s %s was just taken", req.ScheduledDate, req.ScheduledTime))
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	// The count-then-insert above is not atomic, so two creates racing at
	// cap-1 can both pass the gate. Re-count after insert and back out the
	// overflow; a rare tie may back out both sides, which keeps the cap.
	if overflow, err := se.dayOverCap(ctx, availability, req.StylistID, req.ScheduledDate); err != nil {
		logger.Warn("failed to re-verify daily cap",
			zap.String("bookingID", newBooking.ID), zap.Error(err))
	} else if overflow {
		if err := se.Bookings.Delete(ctx, newBooking.ID); err != nil {
			logger.Error("failed to remove booking over the daily cap",
				zap.String("bookingID", newBooking.ID), zap.Error(err))
		}
		se.cancelIntent(ctx, intent.OrderID)
		return nil, utils.NewSlotUnavailableError("daily booking limit reached")
	}

	logger.Info("booking created",
		zap.String("bookingID", newBooking.ID),
		zap.String("stylistID", newBooking.StylistID),
		zap.String("date", newBooking.ScheduledDate),
		zap.String("time", newBooking.ScheduledTime),
	)
	return &CreateBookingResult{Booking: newBooking, ClientSecret: intent.ClientSecret}, nil
}

// GetBooking returns a booking visible to the requesting actor.
func (se *DefaultSchedulingEngine) GetBooking(ctx context.Context, bookingID string, actor models.Actor) (*models.Booking, error) {
	b, err := se.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.InvolvedActor(actor) {
		return nil, utils.NewForbiddenError("not a participant of this booking")
	}
	return b, nil
}

// ListBookings returns the actor's bookings, newest first.
func (se *DefaultSchedulingEngine) ListBookings(ctx context.Context, actor models.Actor) ([]models.Booking, error) {
	switch actor.Role {
	case models.RoleUser:
		return se.Bookings.ListForUser(ctx, actor.ID)
	case models.RoleStylist:
		return se.Bookings.ListForStylist(ctx, actor.ID)
	}
	return nil, utils.NewForbiddenError("unknown actor role " + actor.Role)
}

// dayOverCap reports whether the stylist's day now holds more active bookings
// than the preferences allow.
func (se *DefaultSchedulingEngine) dayOverCap(ctx context.Context, availability *models.Availability, stylistID, date string) (bool, error) {
	count, err := se.Bookings.CountForStylistDate(ctx, stylistID, date, models.ActiveStatuses)
	if err != nil {
		return false, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count > availability.BookingPreferences.MaxBookingsPerDay, nil
}

// cancelIntent voids a payment intent whose booking never landed. Best effort;
// a failure here leaves an uncaptured intent to expire on the gateway side.
func (se *DefaultSchedulingEngine) cancelIntent(ctx context.Context, orderID string) {
	if err := se.Payments.CancelIntent(ctx, orderID); err != nil {
		utils.GetLogger().Warn("failed to cancel orphaned payment intent",
			zap.String("orderID", orderID), zap.Error(err))
	}
}

func (se *DefaultSchedulingEngine) loadAvailability(ctx context.Context, stylistID string) (*models.Availability, error) {
	availability, err := se.Availability.Get(ctx, stylistID)
	if err != nil {
		if errors.Is(err, availabilityRepo.ErrNotFound) {
			return nil, utils.NewNotFoundError("no availability for stylist " + stylistID)
		}
		return nil, fmt.Errorf("failed to load availability: %w", err)
	}
	return availability, nil
}

func (se *DefaultSchedulingEngine) getBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := se.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, utils.NewNotFoundError("booking " + bookingID + " not found")
		}
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	return b, nil
}

// hoursUntilStart returns the whole and fractional hours between now and the
// booking's scheduled start.
func (se *DefaultSchedulingEngine) hoursUntilStart(b *models.Booking) (float64, error) {
	start, err := b.ScheduledStart(se.loc())
	if err != nil {
		return 0, utils.NewValidationError("booking has an invalid schedule")
	}
	return start.Sub(se.now()).Hours(), nil
}

// notifyParties sends one notification per counterparty. Dispatch failures
// are logged and swallowed; they never roll back a booking transition.
func (se *DefaultSchedulingEngine) notifyParties(ctx context.Context, b *models.Booking, title, userBody, stylistBody string) {
	if se.Notifier == nil {
		return
	}
	data := map[string]string{
		"bookingId": b.ID,
		"status":    b.Status,
		"date":      b.ScheduledDate,
		"time":      b.ScheduledTime,
	}
	if err := se.Notifier.NotifyUser(ctx, b.UserID, title, userBody, data); err != nil {
		utils.GetLogger().Warn("user notification failed", zap.String("bookingID", b.ID), zap.Error(err))
	}
	if err := se.Notifier.NotifyStylist(ctx, b.StylistID, title, stylistBody, data); err != nil {
		utils.GetLogger().Warn("stylist notification failed", zap.String("bookingID", b.ID), zap.Error(err))
	}
}

func (se *DefaultSchedulingEngine) scheduleReminder(ctx context.Context, b *models.Booking, lead time.Duration) {
	if se.Reminders == nil {
		return
	}
	start, err := b.ScheduledStart(se.loc())
	if err != nil {
		return
	}
	fireAt := start.Add(-lead)
	if fireAt.Before(se.now()) {
		return
	}
	if err := se.Reminders.ScheduleReminder(ctx, b, fireAt); err != nil {
		utils.GetLogger().Warn("failed to schedule reminder", zap.String("bookingID", b.ID), zap.Error(err))
	}
}
