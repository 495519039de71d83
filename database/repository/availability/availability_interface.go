package availabilityRepo

import (
	"context"
	"errors"

	"stylora/models"
)

// ErrNotFound is returned when no availability record exists for a stylist.
var ErrNotFound = errors.New("availability not found")

// AvailabilityRepository defines data access for stylist availability records.
type AvailabilityRepository interface {
	// Get retrieves the availability record for a stylist.
	Get(ctx context.Context, stylistID string) (*models.Availability, error)
	// Upsert writes the full availability record for a stylist.
	Upsert(ctx context.Context, availability *models.Availability) error
}
