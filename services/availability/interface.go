package availability

import (
	"context"

	availabilityRepo "stylora/database/repository/availability"
	"stylora/models"
)

// AvailabilityService manages a stylist's bookable calendar: the recurring
// weekly template, date overrides, and booking preferences.
type AvailabilityService interface {
	// GetOrCreateDefault returns the stylist's availability, materializing the
	// documented default schedule on first access.
	GetOrCreateDefault(ctx context.Context, stylistID string) (*models.Availability, error)
	// Get returns the stylist's availability, or NotFoundError.
	Get(ctx context.Context, stylistID string) (*models.Availability, error)
	// SetWeeklySchedule replaces the full weekly template.
	SetWeeklySchedule(ctx context.Context, stylistID string, schedule map[string]models.DaySchedule) (*models.Availability, error)
	// SetBookingPreferences replaces the booking preferences.
	SetBookingPreferences(ctx context.Context, stylistID string, prefs models.BookingPreferences) (*models.Availability, error)
	// UpsertDateOverride replaces any existing override for the same date.
	UpsertDateOverride(ctx context.Context, stylistID string, override models.DateOverride) (*models.Availability, error)
	// RemoveDateOverride deletes the override for a date, or NotFoundError.
	RemoveDateOverride(ctx context.Context, stylistID, date string) (*models.Availability, error)
	// Deactivate makes the stylist globally unbookable. Records are never
	// deleted, only deactivated.
	Deactivate(ctx context.Context, stylistID string) (*models.Availability, error)
}

// DefaultAvailabilityService implements AvailabilityService.
type DefaultAvailabilityService struct {
	Repo availabilityRepo.AvailabilityRepository
}
