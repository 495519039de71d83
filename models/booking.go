package models

import (
	"time"

	"stylora/utils"
)

// Booking status lifecycle.
const (
	BookingStatusPending     = "pending"
	BookingStatusConfirmed   = "confirmed"
	BookingStatusInProgress  = "in_progress"
	BookingStatusCompleted   = "completed"
	BookingStatusCancelled   = "cancelled"
	BookingStatusRescheduled = "rescheduled"
	BookingStatusNoShow      = "no_show"
)

// Payment status values.
const (
	PaymentStatusPending           = "pending"
	PaymentStatusProcessing        = "processing"
	PaymentStatusCompleted         = "completed"
	PaymentStatusFailed            = "failed"
	PaymentStatusRefunded          = "refunded"
	PaymentStatusPartiallyRefunded = "partially_refunded"
)

// Session status values.
const (
	SessionStatusNotStarted = "not_started"
	SessionStatusInitiated  = "initiated"
	SessionStatusInProgress = "in_progress"
	SessionStatusEnded      = "ended"
	SessionStatusFailed     = "failed"
)

// CommittedStatuses are the booking statuses that occupy calendar time.
var CommittedStatuses = []string{BookingStatusConfirmed, BookingStatusInProgress}

// ActiveStatuses additionally include pending bookings, which hold a slot
// until payment completes or the caller abandons them.
var ActiveStatuses = []string{BookingStatusPending, BookingStatusConfirmed, BookingStatusInProgress}

// Booking is a single appointment between a user and a stylist.
type Booking struct {
	ID        string `bson:"id" json:"id"`
	StylistID string `bson:"stylist_id" json:"stylistId"`
	UserID    string `bson:"user_id" json:"userId"`

	Type        string `bson:"type" json:"type"` // e.g. "consultation", "styling"
	Title       string `bson:"title,omitempty" json:"title,omitempty"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`

	ScheduledDate   string `bson:"scheduled_date" json:"scheduledDate"` // "YYYY-MM-DD"
	ScheduledTime   string `bson:"scheduled_time" json:"scheduledTime"` // "HH:MM"
	DurationMinutes int    `bson:"duration_minutes" json:"durationMinutes"`

	Status string `bson:"status" json:"status"`

	PaymentStatus   string  `bson:"payment_status" json:"paymentStatus"`
	PaymentAmount   float64 `bson:"payment_amount" json:"paymentAmount"`
	PaymentCurrency string  `bson:"payment_currency" json:"paymentCurrency"`
	PaymentOrderID  string  `bson:"payment_order_id,omitempty" json:"paymentOrderId,omitempty"`
	PaymentID       string  `bson:"payment_id,omitempty" json:"paymentId,omitempty"`
	RefundID        string  `bson:"refund_id,omitempty" json:"refundId,omitempty"`
	RefundError     string  `bson:"refund_error,omitempty" json:"refundError,omitempty"`

	SessionStatus          string     `bson:"session_status" json:"sessionStatus"`
	ChannelID              string     `bson:"channel_id,omitempty" json:"channelId,omitempty"`
	SessionStartedAt       *time.Time `bson:"session_started_at,omitempty" json:"sessionStartedAt,omitempty"`
	SessionEndedAt         *time.Time `bson:"session_ended_at,omitempty" json:"sessionEndedAt,omitempty"`
	SessionDurationMinutes int        `bson:"session_duration_minutes,omitempty" json:"sessionDurationMinutes,omitempty"`

	IsRescheduled     bool   `bson:"is_rescheduled,omitempty" json:"isRescheduled,omitempty"`
	OriginalBookingID string `bson:"original_booking_id,omitempty" json:"originalBookingId,omitempty"`
	RescheduleReason  string `bson:"reschedule_reason,omitempty" json:"rescheduleReason,omitempty"`

	IsCancelled        bool       `bson:"is_cancelled,omitempty" json:"isCancelled,omitempty"`
	CancellationReason string     `bson:"cancellation_reason,omitempty" json:"cancellationReason,omitempty"`
	CancelledAt        *time.Time `bson:"cancelled_at,omitempty" json:"cancelledAt,omitempty"`
	CancellationFee    float64    `bson:"cancellation_fee,omitempty" json:"cancellationFee,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// ScheduledStart resolves the booking's absolute start instant.
func (b *Booking) ScheduledStart(loc *time.Location) (time.Time, error) {
	return utils.CombineDateClock(b.ScheduledDate, b.ScheduledTime, loc)
}

// ScheduledEnd resolves the booking's absolute end instant.
func (b *Booking) ScheduledEnd(loc *time.Location) (time.Time, error) {
	start, err := b.ScheduledStart(loc)
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(time.Duration(b.DurationMinutes) * time.Minute), nil
}

// InvolvedActor reports whether the actor is one of the booking's two parties.
func (b *Booking) InvolvedActor(actor Actor) bool {
	switch actor.Role {
	case RoleUser:
		return actor.ID == b.UserID
	case RoleStylist:
		return actor.ID == b.StylistID
	}
	return false
}

// Slot is a candidate bookable interval on a given date.
type Slot struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// PaymentConfirmation is the signed attestation delivered by the payment
// gateway once funds for a booking were captured.
type PaymentConfirmation struct {
	OrderID   string `json:"externalOrderId" binding:"required"`
	PaymentID string `json:"externalPaymentId" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

// SessionGrant is what a participant needs to join the real-time session.
type SessionGrant struct {
	ChannelID string    `json:"channelId"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
