package booking

import (
	"context"
	"errors"
	"fmt"

	bookingRepo "stylora/database/repository/booking"
	"stylora/models"
	"stylora/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ConfirmPayment applies a verified payment confirmation, flipping the
// booking from pending to confirmed. Replaying the same confirmation against
// an already-confirmed booking is a no-op with no duplicate side effects.
func (se *DefaultSchedulingEngine) ConfirmPayment(ctx context.Context, bookingID string, confirmation models.PaymentConfirmation) (*models.Booking, error) {
	b, err := se.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	// Idempotency guard: the booking's own state decides whether this
	// confirmation was already processed.
	if b.Status == models.BookingStatusConfirmed && b.PaymentID == confirmation.PaymentID {
		return b, nil
	}
	if b.Status != models.BookingStatusPending {
		return nil, utils.NewInvalidStateTransitionError(
			fmt.Sprintf("cannot confirm payment for a %s booking", b.Status))
	}

	if confirmation.OrderID != b.PaymentOrderID {
		return nil, utils.NewPaymentVerificationError("order reference does not match booking")
	}
	if err := se.Payments.VerifyConfirmation(confirmation.OrderID, confirmation.PaymentID, confirmation.Signature); err != nil {
		return nil, err
	}

	// The unique slot index only guards identical start times, and pending
	// bookings never hide slots, so a competing booking confirmed since this
	// one was created can still overlap it. Re-check the interval against the
	// day's committed bookings before committing this one.
	availability, err := se.loadAvailability(ctx, b.StylistID)
	if err != nil {
		return nil, err
	}
	committed, err := se.Bookings.ListForStylistDate(ctx, b.StylistID, b.ScheduledDate, models.CommittedStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	if conflictsWithCommitted(availability.BookingPreferences, b, committed) {
		return nil, se.releaseLostSlot(ctx, b, confirmation)
	}

	updated, err := se.Bookings.UpdateIfStatus(ctx, bookingID,
		[]string{models.BookingStatusPending},
		map[string]interface{}{
			"status":         models.BookingStatusConfirmed,
			"payment_status": models.PaymentStatusCompleted,
			"payment_id":     confirmation.PaymentID,
		})
	if err != nil {
		if errors.Is(err, bookingRepo.ErrStaleStatus) {
			// A concurrent delivery of the same confirmation won the race.
			current, getErr := se.getBooking(ctx, bookingID)
			if getErr == nil && current.Status == models.BookingStatusConfirmed && current.PaymentID == confirmation.PaymentID {
				return current, nil
			}
			return nil, utils.NewInvalidStateTransitionError("booking left pending state concurrently")
		}
		return nil, fmt.Errorf("failed to confirm booking: %w", err)
	}

	utils.GetLogger().Info("booking confirmed",
		zap.String("bookingID", updated.ID),
		zap.String("paymentID", confirmation.PaymentID),
	)
	se.notifyParties(ctx, updated, "Booking confirmed",
		fmt.Sprintf("Your booking on %s at %s is confirmed.", updated.ScheduledDate, updated.ScheduledTime),
		fmt.Sprintf("A booking on %s at %s was confirmed.", updated.ScheduledDate, updated.ScheduledTime),
	)
	se.scheduleReminder(ctx, updated, se.ReminderLead)
	return updated, nil
}

// releaseLostSlot closes out a pending booking whose interval was taken by a
// competing confirmation and returns the captured funds. Always returns the
// SlotUnavailableError the caller should surface.
func (se *DefaultSchedulingEngine) releaseLostSlot(ctx context.Context, b *models.Booking, confirmation models.PaymentConfirmation) error {
	lostErr := utils.NewSlotUnavailableError(
		fmt.Sprintf("slot %s %s was taken by another booking", b.ScheduledDate, b.ScheduledTime))

	updated, err := se.Bookings.UpdateIfStatus(ctx, b.ID,
		[]string{models.BookingStatusPending},
		map[string]interface{}{
			"status":              models.BookingStatusCancelled,
			"is_cancelled":        true,
			"cancellation_reason": "slot taken by a competing booking",
			"cancelled_at":        se.now(),
			"payment_id":          confirmation.PaymentID,
		})
	if err != nil {
		utils.GetLogger().Error("failed to cancel booking that lost its slot",
			zap.String("bookingID", b.ID), zap.Error(err))
		return lostErr
	}

	refundID, refundErr := se.Payments.Refund(ctx, confirmation.PaymentID, updated.PaymentAmount, updated.PaymentCurrency)
	if refundErr != nil {
		utils.GetLogger().Error("refund failed for booking that lost its slot",
			zap.String("bookingID", updated.ID), zap.Error(refundErr))
		if after, err := se.Bookings.UpdateIfStatus(ctx, b.ID,
			[]string{models.BookingStatusCancelled},
			map[string]interface{}{"refund_error": refundErr.Error()}); err == nil {
			updated = after
		} else {
			utils.GetLogger().Error("failed to record refund failure",
				zap.String("bookingID", b.ID), zap.Error(err))
		}
	} else {
		if after, err := se.Bookings.UpdateIfStatus(ctx, b.ID,
			[]string{models.BookingStatusCancelled},
			map[string]interface{}{
				"payment_status": models.PaymentStatusRefunded,
				"refund_id":      refundID,
			}); err == nil {
			updated = after
		} else {
			utils.GetLogger().Error("failed to record refund",
				zap.String("bookingID", b.ID), zap.Error(err))
		}
	}

	se.notifyParties(ctx, updated, "Booking cancelled",
		fmt.Sprintf("Your booking on %s at %s is no longer available and was refunded.", updated.ScheduledDate, updated.ScheduledTime),
		fmt.Sprintf("The booking on %s at %s could not be confirmed.", updated.ScheduledDate, updated.ScheduledTime),
	)
	return lostErr
}

// CancelBooking cancels a confirmed, paid booking outside the cancellation
// window and triggers a refund. The refund is best-effort: if it fails, the
// cancellation still stands, the payment status stays completed, and the
// failure is recorded on the booking for manual follow-up.
func (se *DefaultSchedulingEngine) CancelBooking(ctx context.Context, bookingID string, actor models.Actor, reason string) (*models.Booking, error) {
	b, err := se.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.InvolvedActor(actor) {
		return nil, utils.NewForbiddenError("not a participant of this booking")
	}
	if b.Status != models.BookingStatusConfirmed {
		return nil, utils.NewInvalidStateTransitionError(
			fmt.Sprintf("cannot cancel a %s booking", b.Status))
	}
	if b.PaymentStatus != models.PaymentStatusCompleted {
		return nil, utils.NewInvalidStateTransitionError("booking payment is not completed")
	}

	availability, err := se.loadAvailability(ctx, b.StylistID)
	if err != nil {
		return nil, err
	}
	hoursUntil, err := se.hoursUntilStart(b)
	if err != nil {
		return nil, err
	}
	if hoursUntil <= float64(availability.BookingPreferences.CancellationWindowHours) {
		return nil, utils.NewTooLateError(fmt.Sprintf(
			"bookings can only be cancelled more than %d hours in advance",
			availability.BookingPreferences.CancellationWindowHours))
	}

	now := se.now()
	updated, err := se.Bookings.UpdateIfStatus(ctx, bookingID,
		[]string{models.BookingStatusConfirmed},
		map[string]interface{}{
			"status":              models.BookingStatusCancelled,
			"is_cancelled":        true,
			"cancellation_reason": reason,
			"cancelled_at":        now,
		})
	if err != nil {
		if errors.Is(err, bookingRepo.ErrStaleStatus) {
			return nil, utils.NewInvalidStateTransitionError("booking left confirmed state concurrently")
		}
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}

	refundID, refundErr := se.Payments.Refund(ctx, updated.PaymentID, updated.PaymentAmount, updated.PaymentCurrency)
	if refundErr != nil {
		utils.GetLogger().Error("refund failed after cancellation",
			zap.String("bookingID", updated.ID),
			zap.Error(refundErr),
		)
		if after, err := se.Bookings.UpdateIfStatus(ctx, bookingID,
			[]string{models.BookingStatusCancelled},
			map[string]interface{}{"refund_error": refundErr.Error()}); err == nil {
			updated = after
		} else {
			utils.GetLogger().Error("failed to record refund failure",
				zap.String("bookingID", bookingID), zap.Error(err))
		}
	} else {
		if after, err := se.Bookings.UpdateIfStatus(ctx, bookingID,
			[]string{models.BookingStatusCancelled},
			map[string]interface{}{
				"payment_status": models.PaymentStatusRefunded,
				"refund_id":      refundID,
			}); err == nil {
			updated = after
		} else {
			utils.GetLogger().Error("failed to record refund",
				zap.String("bookingID", bookingID), zap.Error(err))
		}
	}

	se.notifyParties(ctx, updated, "Booking cancelled",
		fmt.Sprintf("Your booking on %s at %s was cancelled.", updated.ScheduledDate, updated.ScheduledTime),
		fmt.Sprintf("The booking on %s at %s was cancelled.", updated.ScheduledDate, updated.ScheduledTime),
	)
	return updated, nil
}

// RescheduleBooking moves a confirmed booking to a new slot. The original
// record becomes terminal (rescheduled) and a new pending booking is spawned
// carrying the payment over, linked back via originalBookingId.
func (se *DefaultSchedulingEngine) RescheduleBooking(ctx context.Context, bookingID string, actor models.Actor, newDate, newTime, reason string) (*RescheduleResult, error) {
	b, err := se.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.InvolvedActor(actor) {
		return nil, utils.NewForbiddenError("not a participant of this booking")
	}
	if b.Status != models.BookingStatusConfirmed {
		return nil, utils.NewInvalidStateTransitionError(
			fmt.Sprintf("cannot reschedule a %s booking", b.Status))
	}

	availability, err := se.loadAvailability(ctx, b.StylistID)
	if err != nil {
		return nil, err
	}
	hoursUntil, err := se.hoursUntilStart(b)
	if err != nil {
		return nil, err
	}
	if hoursUntil <= float64(availability.BookingPreferences.RescheduleWindowHours) {
		return nil, utils.NewTooLateError(fmt.Sprintf(
			"bookings can only be rescheduled more than %d hours in advance",
			availability.BookingPreferences.RescheduleWindowHours))
	}

	// Validate the new slot exactly the way creation does.
	committed, err := se.Bookings.ListForStylistDate(ctx, b.StylistID, newDate, models.CommittedStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	slots, err := ComputeSlots(availability, newDate, b.DurationMinutes, committed, se.now(), se.loc())
	if err != nil {
		return nil, err
	}
	if !slotListed(slots, newTime) {
		return nil, utils.NewSlotUnavailableError(
			fmt.Sprintf("slot %s %s is not available", newDate, newTime))
	}
	dayCount, err := se.Bookings.CountForStylistDate(ctx, b.StylistID, newDate, models.ActiveStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}
	if dayCount >= availability.BookingPreferences.MaxBookingsPerDay {
		return nil, utils.NewSlotUnavailableError("daily booking limit reached")
	}

	now := se.now()
	replacement := &models.Booking{
		ID:                uuid.New().String(),
		StylistID:         b.StylistID,
		UserID:            b.UserID,
		Type:              b.Type,
		Title:             b.Title,
		Description:       b.Description,
		ScheduledDate:     newDate,
		ScheduledTime:     newTime,
		DurationMinutes:   b.DurationMinutes,
		Status:            models.BookingStatusPending,
		PaymentStatus:     b.PaymentStatus,
		PaymentAmount:     b.PaymentAmount,
		PaymentCurrency:   b.PaymentCurrency,
		PaymentOrderID:    b.PaymentOrderID,
		PaymentID:         b.PaymentID,
		SessionStatus:     models.SessionStatusNotStarted,
		IsRescheduled:     true,
		OriginalBookingID: b.ID,
		RescheduleReason:  reason,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := se.Bookings.Create(ctx, replacement); err != nil {
		if errors.Is(err, bookingRepo.ErrSlotTaken) {
			return nil, utils.NewSlotUnavailableError(
				fmt.Sprintf("slot %s %s was just taken", newDate, newTime))
		}
		return nil, fmt.Errorf("failed to create replacement booking: %w", err)
	}

	// Same re-count compensation as creation: concurrent writers at cap-1 can
	// both pass the pre-insert gate, so back the replacement out on overflow.
	if overflow, err := se.dayOverCap(ctx, availability, b.StylistID, newDate); err != nil {
		utils.GetLogger().Warn("failed to re-verify daily cap",
			zap.String("bookingID", replacement.ID), zap.Error(err))
	} else if overflow {
		if err := se.Bookings.Delete(ctx, replacement.ID); err != nil {
			utils.GetLogger().Error("failed to remove booking over the daily cap",
				zap.String("bookingID", replacement.ID), zap.Error(err))
		}
		return nil, utils.NewSlotUnavailableError("daily booking limit reached")
	}

	original, err := se.Bookings.UpdateIfStatus(ctx, bookingID,
		[]string{models.BookingStatusConfirmed},
		map[string]interface{}{
			"status":            models.BookingStatusRescheduled,
			"reschedule_reason": reason,
		})
	if err != nil {
		// The original left confirmed concurrently; undo the replacement so
		// no orphan slot hold remains.
		if delErr := se.Bookings.Delete(ctx, replacement.ID); delErr != nil {
			utils.GetLogger().Error("failed to delete orphan replacement booking",
				zap.String("bookingID", replacement.ID), zap.Error(delErr))
		}
		if errors.Is(err, bookingRepo.ErrStaleStatus) {
			return nil, utils.NewInvalidStateTransitionError("booking left confirmed state concurrently")
		}
		return nil, fmt.Errorf("failed to mark booking rescheduled: %w", err)
	}

	utils.GetLogger().Info("booking rescheduled",
		zap.String("originalID", original.ID),
		zap.String("replacementID", replacement.ID),
		zap.String("newDate", newDate),
		zap.String("newTime", newTime),
	)
	se.notifyParties(ctx, replacement, "Booking rescheduled",
		fmt.Sprintf("Your booking moved to %s at %s.", newDate, newTime),
		fmt.Sprintf("A booking moved to %s at %s.", newDate, newTime),
	)
	return &RescheduleResult{Original: original, Replacement: replacement}, nil
}

// MarkNoShow flags a confirmed booking whose scheduled end passed without a
// session ever starting. Policy hook only; no automatic refund.
func (se *DefaultSchedulingEngine) MarkNoShow(ctx context.Context, bookingID string, actor models.Actor) (*models.Booking, error) {
	b, err := se.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleStylist || actor.ID != b.StylistID {
		return nil, utils.NewForbiddenError("only the stylist may mark a no-show")
	}
	if b.Status != models.BookingStatusConfirmed {
		return nil, utils.NewInvalidStateTransitionError(
			fmt.Sprintf("cannot mark a %s booking as no-show", b.Status))
	}
	if b.SessionStatus != models.SessionStatusNotStarted {
		return nil, utils.NewInvalidStateTransitionError("session already started for this booking")
	}
	end, err := b.ScheduledEnd(se.loc())
	if err != nil {
		return nil, utils.NewValidationError("booking has an invalid schedule")
	}
	if se.now().Before(end) {
		return nil, utils.NewTooEarlyError("booking has not passed its scheduled end yet")
	}

	updated, err := se.Bookings.UpdateIfStatus(ctx, bookingID,
		[]string{models.BookingStatusConfirmed},
		map[string]interface{}{"status": models.BookingStatusNoShow})
	if err != nil {
		if errors.Is(err, bookingRepo.ErrStaleStatus) {
			return nil, utils.NewInvalidStateTransitionError("booking left confirmed state concurrently")
		}
		return nil, fmt.Errorf("failed to mark no-show: %w", err)
	}
	return updated, nil
}

var _ SchedulingService = (*DefaultSchedulingEngine)(nil)
