package booking

import (
	"context"
	"testing"

	"stylora/models"
	"stylora/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingBooking(id string) *models.Booking {
	return &models.Booking{
		ID:              id,
		StylistID:       "s1",
		UserID:          "u1",
		Type:            "styling",
		ScheduledDate:   "2026-09-02",
		ScheduledTime:   "10:00",
		DurationMinutes: 60,
		Status:          models.BookingStatusPending,
		PaymentStatus:   models.PaymentStatusPending,
		PaymentAmount:   1200,
		PaymentCurrency: "inr",
		PaymentOrderID:  "order-1",
		SessionStatus:   models.SessionStatusNotStarted,
	}
}

func confirmedBooking(id, date, clock string) *models.Booking {
	b := pendingBooking(id)
	b.ScheduledDate = date
	b.ScheduledTime = clock
	b.Status = models.BookingStatusConfirmed
	b.PaymentStatus = models.PaymentStatusCompleted
	b.PaymentID = "pay-1"
	return b
}

func TestConfirmPayment(t *testing.T) {
	ctx := context.Background()
	confirmation := models.PaymentConfirmation{
		OrderID:   "order-1",
		PaymentID: "pay-1",
		Signature: "sig-ok",
	}

	t.Run("flips pending to confirmed", func(t *testing.T) {
		f := newEngineFixture(t)
		f.seed(t, pendingBooking("b1"))

		updated, err := f.engine.ConfirmPayment(ctx, "b1", confirmation)
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusConfirmed, updated.Status)
		assert.Equal(t, models.PaymentStatusCompleted, updated.PaymentStatus)
		assert.Equal(t, "pay-1", updated.PaymentID)

		assert.Equal(t, 1, f.notifier.userCalls)
		assert.Equal(t, 1, f.notifier.stylistCalls)
		assert.Equal(t, []string{"b1"}, f.reminders.scheduled)
	})

	t.Run("replay is a no-op without duplicate side effects", func(t *testing.T) {
		f := newEngineFixture(t)
		f.seed(t, pendingBooking("b1"))

		first, err := f.engine.ConfirmPayment(ctx, "b1", confirmation)
		require.NoError(t, err)
		second, err := f.engine.ConfirmPayment(ctx, "b1", confirmation)
		require.NoError(t, err)

		assert.Equal(t, first.Status, second.Status)
		assert.Equal(t, first.PaymentID, second.PaymentID)
		assert.Equal(t, 1, f.notifier.userCalls, "replay must not notify again")
		assert.Len(t, f.reminders.scheduled, 1, "replay must not schedule another reminder")
	})

	t.Run("order mismatch", func(t *testing.T) {
		f := newEngineFixture(t)
		f.seed(t, pendingBooking("b1"))

		bad := confirmation
		bad.OrderID = "order-other"
		_, err := f.engine.ConfirmPayment(ctx, "b1", bad)
		assertCode(t, err, utils.CodePaymentVerification)

		stored, _ := f.repo.GetByID(ctx, "b1")
		assert.Equal(t, models.BookingStatusPending, stored.Status)
	})

	t.Run("bad signature", func(t *testing.T) {
		f := newEngineFixture(t)
		f.seed(t, pendingBooking("b1"))

		bad := confirmation
		bad.Signature = "forged"
		_, err := f.engine.ConfirmPayment(ctx, "b1", bad)
		assertCode(t, err, utils.CodePaymentVerification)
	})

	t.Run("cannot confirm a cancelled booking", func(t *testing.T) {
		f := newEngineFixture(t)
		b := pendingBooking("b1")
		b.Status = models.BookingStatusCancelled
		f.seed(t, b)

		_, err := f.engine.ConfirmPayment(ctx, "b1", confirmation)
		assertCode(t, err, utils.CodeInvalidStateTransition)
	})

	t.Run("overlapping pending loses its slot at confirmation", func(t *testing.T) {
		f := newEngineFixture(t)
		// Two pendings at distinct starts whose intervals overlap. The unique
		// slot index never saw a conflict, so confirmation must.
		f.seed(t, pendingBooking("b1"))
		b2 := pendingBooking("b2")
		b2.ScheduledTime = "10:30"
		b2.PaymentOrderID = "order-2"
		f.seed(t, b2)

		_, err := f.engine.ConfirmPayment(ctx, "b1", confirmation)
		require.NoError(t, err)

		second := models.PaymentConfirmation{OrderID: "order-2", PaymentID: "pay-2", Signature: "sig-ok"}
		_, err = f.engine.ConfirmPayment(ctx, "b2", second)
		assertCode(t, err, utils.CodeSlotUnavailable)

		loser, err := f.repo.GetByID(ctx, "b2")
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusCancelled, loser.Status)
		assert.True(t, loser.IsCancelled)
		assert.Equal(t, models.PaymentStatusRefunded, loser.PaymentStatus, "captured funds go back")
		assert.Equal(t, "re_1", loser.RefundID)
		assert.Equal(t, 1, f.gateway.refunds)

		winner, err := f.repo.GetByID(ctx, "b1")
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusConfirmed, winner.Status)
	})

	t.Run("non-overlapping pendings both confirm", func(t *testing.T) {
		f := newEngineFixture(t)
		f.seed(t, pendingBooking("b1"))
		// 11:30 starts past the buffered end of the 10:00 hour.
		b2 := pendingBooking("b2")
		b2.ScheduledTime = "11:30"
		b2.PaymentOrderID = "order-2"
		f.seed(t, b2)

		_, err := f.engine.ConfirmPayment(ctx, "b1", confirmation)
		require.NoError(t, err)

		second := models.PaymentConfirmation{OrderID: "order-2", PaymentID: "pay-2", Signature: "sig-ok"}
		updated, err := f.engine.ConfirmPayment(ctx, "b2", second)
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusConfirmed, updated.Status)
		assert.Zero(t, f.gateway.refunds)
	})
}

func TestCancelBooking(t *testing.T) {
	ctx := context.Background()
	user := models.Actor{ID: "u1", Role: models.RoleUser}

	t.Run("outside the window cancels and refunds", func(t *testing.T) {
		f := newEngineFixture(t)
		// Three hours before the start against a two-hour window.
		f.seed(t, confirmedBooking("b1", "2026-09-01", "11:00"))

		updated, err := f.engine.CancelBooking(ctx, "b1", user, "changed plans")
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusCancelled, updated.Status)
		assert.True(t, updated.IsCancelled)
		assert.Equal(t, "changed plans", updated.CancellationReason)
		assert.Equal(t, models.PaymentStatusRefunded, updated.PaymentStatus)
		assert.Equal(t, "re_1", updated.RefundID)
		assert.Equal(t, 1, f.gateway.refunds)
		assert.Equal(t, 1, f.notifier.userCalls)
		assert.Equal(t, 1, f.notifier.stylistCalls)
	})

	t.Run("inside the window is too late", func(t *testing.T) {
		f := newEngineFixture(t)
		// One hour out.
		f.seed(t, confirmedBooking("b1", "2026-09-01", "09:00"))

		_, err := f.engine.CancelBooking(ctx, "b1", user, "")
		assertCode(t, err, utils.CodeTooLate)

		stored, _ := f.repo.GetByID(ctx, "b1")
		assert.Equal(t, models.BookingStatusConfirmed, stored.Status)
		assert.Zero(t, f.gateway.refunds)
	})

	t.Run("refund failure keeps the cancellation and flags it", func(t *testing.T) {
		f := newEngineFixture(t)
		f.gateway.failRefund = true
		f.seed(t, confirmedBooking("b1", "2026-09-01", "11:00"))

		updated, err := f.engine.CancelBooking(ctx, "b1", user, "")
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusCancelled, updated.Status)
		assert.Equal(t, models.PaymentStatusCompleted, updated.PaymentStatus, "money is still captured")
		assert.NotEmpty(t, updated.RefundError)
		assert.Empty(t, updated.RefundID)
	})

	t.Run("refund bookkeeping failure does not undo the cancellation", func(t *testing.T) {
		f := newEngineFixture(t)
		f.engine.Bookings = &flakyUpdateRepo{fakeBookingRepo: f.repo}
		f.seed(t, confirmedBooking("b1", "2026-09-01", "11:00"))

		updated, err := f.engine.CancelBooking(ctx, "b1", user, "changed plans")
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusCancelled, updated.Status)
		assert.Equal(t, 1, f.gateway.refunds)
		assert.Equal(t, models.PaymentStatusCompleted, updated.PaymentStatus, "refund reference was never recorded")
		assert.Empty(t, updated.RefundID)
	})

	t.Run("stranger cannot cancel", func(t *testing.T) {
		f := newEngineFixture(t)
		f.seed(t, confirmedBooking("b1", "2026-09-01", "11:00"))

		_, err := f.engine.CancelBooking(ctx, "b1", models.Actor{ID: "u9", Role: models.RoleUser}, "")
		assertCode(t, err, utils.CodeForbidden)
	})

	t.Run("pending bookings are not cancellable", func(t *testing.T) {
		f := newEngineFixture(t)
		f.seed(t, pendingBooking("b1"))

		_, err := f.engine.CancelBooking(ctx, "b1", user, "")
		assertCode(t, err, utils.CodeInvalidStateTransition)
	})
}

func TestRescheduleBooking(t *testing.T) {
	ctx := context.Background()
	user := models.Actor{ID: "u1", Role: models.RoleUser}

	t.Run("spawns a linked pending replacement carrying the payment", func(t *testing.T) {
		f := newEngineFixture(t)
		// 50 hours before the start against a 24-hour window.
		f.seed(t, confirmedBooking("b1", "2026-09-03", "10:00"))

		result, err := f.engine.RescheduleBooking(ctx, "b1", user, "2026-09-04", "11:00", "conflict")
		require.NoError(t, err)

		assert.Equal(t, models.BookingStatusRescheduled, result.Original.Status)
		assert.Equal(t, "conflict", result.Original.RescheduleReason)

		r := result.Replacement
		assert.Equal(t, models.BookingStatusPending, r.Status)
		assert.Equal(t, "2026-09-04", r.ScheduledDate)
		assert.Equal(t, "11:00", r.ScheduledTime)
		assert.True(t, r.IsRescheduled)
		assert.Equal(t, "b1", r.OriginalBookingID)
		assert.Equal(t, models.PaymentStatusCompleted, r.PaymentStatus, "payment carries over")
		assert.Equal(t, "pay-1", r.PaymentID)
		assert.Equal(t, "order-1", r.PaymentOrderID)
		assert.Zero(t, f.gateway.intents, "no second charge for a reschedule")

		stored, err := f.repo.GetByID(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusPending, stored.Status)
	})

	t.Run("inside the window is too late", func(t *testing.T) {
		f := newEngineFixture(t)
		// Twelve hours out against a 24-hour window.
		f.seed(t, confirmedBooking("b1", "2026-09-01", "20:00"))

		_, err := f.engine.RescheduleBooking(ctx, "b1", user, "2026-09-04", "11:00", "")
		assertCode(t, err, utils.CodeTooLate)
	})

	t.Run("target slot already committed", func(t *testing.T) {
		f := newEngineFixture(t)
		f.seed(t, confirmedBooking("b1", "2026-09-03", "10:00"))
		f.seed(t, confirmedBooking("b2", "2026-09-04", "11:00"))

		_, err := f.engine.RescheduleBooking(ctx, "b1", user, "2026-09-04", "11:00", "")
		assertCode(t, err, utils.CodeSlotUnavailable)

		stored, _ := f.repo.GetByID(ctx, "b1")
		assert.Equal(t, models.BookingStatusConfirmed, stored.Status, "original is untouched on failure")
	})

	t.Run("concurrent reschedules at the cap back out the replacement", func(t *testing.T) {
		f := newEngineFixture(t)
		f.engine.Bookings = &staleCountRepo{fakeBookingRepo: f.repo}
		av, err := f.avail.Get(ctx, "s1")
		require.NoError(t, err)
		av.BookingPreferences.MaxBookingsPerDay = 2
		require.NoError(t, f.avail.Upsert(ctx, av))

		f.seed(t, confirmedBooking("b1", "2026-09-03", "10:00"))
		f.seed(t, &models.Booking{ID: "b2", StylistID: "s1", UserID: "u2",
			ScheduledDate: "2026-09-04", ScheduledTime: "09:00", Status: models.BookingStatusPending})
		f.seed(t, &models.Booking{ID: "b3", StylistID: "s1", UserID: "u3",
			ScheduledDate: "2026-09-04", ScheduledTime: "15:00", Status: models.BookingStatusPending})

		_, err = f.engine.RescheduleBooking(ctx, "b1", user, "2026-09-04", "11:00", "")
		assertCode(t, err, utils.CodeSlotUnavailable)

		count, err := f.repo.CountForStylistDate(ctx, "s1", "2026-09-04", models.ActiveStatuses)
		require.NoError(t, err)
		assert.Equal(t, 2, count, "the replacement is removed")

		stored, _ := f.repo.GetByID(ctx, "b1")
		assert.Equal(t, models.BookingStatusConfirmed, stored.Status, "original is untouched")
	})

	t.Run("stranger cannot reschedule", func(t *testing.T) {
		f := newEngineFixture(t)
		f.seed(t, confirmedBooking("b1", "2026-09-03", "10:00"))

		_, err := f.engine.RescheduleBooking(ctx, "b1", models.Actor{ID: "s9", Role: models.RoleStylist}, "2026-09-04", "11:00", "")
		assertCode(t, err, utils.CodeForbidden)
	})
}

func TestMarkNoShow(t *testing.T) {
	ctx := context.Background()
	stylist := models.Actor{ID: "s1", Role: models.RoleStylist}

	t.Run("after the scheduled end", func(t *testing.T) {
		f := newEngineFixture(t)
		// Ended 06:00-07:00, now is 08:00.
		f.seed(t, confirmedBooking("b1", "2026-09-01", "06:00"))

		updated, err := f.engine.MarkNoShow(ctx, "b1", stylist)
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusNoShow, updated.Status)
	})

	t.Run("before the scheduled end is too early", func(t *testing.T) {
		f := newEngineFixture(t)
		f.seed(t, confirmedBooking("b1", "2026-09-01", "09:00"))

		_, err := f.engine.MarkNoShow(ctx, "b1", stylist)
		assertCode(t, err, utils.CodeTooEarly)
	})

	t.Run("only the stylist may flag it", func(t *testing.T) {
		f := newEngineFixture(t)
		f.seed(t, confirmedBooking("b1", "2026-09-01", "06:00"))

		_, err := f.engine.MarkNoShow(ctx, "b1", models.Actor{ID: "u1", Role: models.RoleUser})
		assertCode(t, err, utils.CodeForbidden)
	})

	t.Run("not after the session started", func(t *testing.T) {
		f := newEngineFixture(t)
		b := confirmedBooking("b1", "2026-09-01", "06:00")
		b.SessionStatus = models.SessionStatusInitiated
		f.seed(t, b)

		_, err := f.engine.MarkNoShow(ctx, "b1", stylist)
		assertCode(t, err, utils.CodeInvalidStateTransition)
	})
}
