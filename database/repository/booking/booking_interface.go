package bookingRepo

import (
	"context"
	"errors"

	"stylora/models"
)

var (
	// ErrNotFound is returned when no booking matches the lookup.
	ErrNotFound = errors.New("booking not found")
	// ErrSlotTaken is returned when another active booking already holds the
	// same stylist/date/time slot.
	ErrSlotTaken = errors.New("slot already taken")
	// ErrStaleStatus is returned when a guarded transition matched no
	// document, i.e. the booking left the expected status concurrently.
	ErrStaleStatus = errors.New("booking not in expected status")
)

// BookingRepository defines data access for booking records. Transitions are
// conditional writes so concurrent requests resolve to exactly one winner.
type BookingRepository interface {
	// Create persists a new booking. Returns ErrSlotTaken when an active
	// booking already occupies the same stylist/date/time.
	Create(ctx context.Context, booking *models.Booking) error
	// Delete removes a booking record (compensation path only).
	Delete(ctx context.Context, bookingID string) error
	// GetByID retrieves a booking by its ID.
	GetByID(ctx context.Context, bookingID string) (*models.Booking, error)
	// GetByOrderID retrieves the most recent booking referencing a payment
	// order ID.
	GetByOrderID(ctx context.Context, orderID string) (*models.Booking, error)
	// ListForStylistDate returns a stylist's bookings on a date, filtered to
	// the given statuses.
	ListForStylistDate(ctx context.Context, stylistID, date string, statuses []string) ([]models.Booking, error)
	// CountForStylistDate counts a stylist's bookings on a date in the given
	// statuses.
	CountForStylistDate(ctx context.Context, stylistID, date string, statuses []string) (int, error)
	// ListForUser returns a user's bookings, newest first.
	ListForUser(ctx context.Context, userID string) ([]models.Booking, error)
	// ListForStylist returns a stylist's bookings, newest first.
	ListForStylist(ctx context.Context, stylistID string) ([]models.Booking, error)
	// UpdateIfStatus applies the given field updates only while the booking is
	// in one of fromStatuses, returning the updated document. Returns
	// ErrStaleStatus when the guard missed and ErrNotFound when the booking
	// does not exist at all.
	UpdateIfStatus(ctx context.Context, bookingID string, fromStatuses []string, set map[string]interface{}) (*models.Booking, error)
}
