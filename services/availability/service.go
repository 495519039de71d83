package availability

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	availabilityRepo "stylora/database/repository/availability"
	"stylora/models"
	"stylora/utils"
)

// GetOrCreateDefault returns the stylist's availability record, creating it
// with the documented default schedule on first access. Materialization is
// explicit here, never a silent side effect of slot reads.
func (s *DefaultAvailabilityService) GetOrCreateDefault(ctx context.Context, stylistID string) (*models.Availability, error) {
	availability, err := s.Repo.Get(ctx, stylistID)
	if err == nil {
		return availability, nil
	}
	if !errors.Is(err, availabilityRepo.ErrNotFound) {
		return nil, fmt.Errorf("failed to load availability: %w", err)
	}

	availability = models.DefaultAvailability(stylistID)
	if err := s.Repo.Upsert(ctx, availability); err != nil {
		return nil, fmt.Errorf("failed to create default availability: %w", err)
	}
	return availability, nil
}

// Get returns the stylist's availability record.
func (s *DefaultAvailabilityService) Get(ctx context.Context, stylistID string) (*models.Availability, error) {
	availability, err := s.Repo.Get(ctx, stylistID)
	if err != nil {
		if errors.Is(err, availabilityRepo.ErrNotFound) {
			return nil, utils.NewNotFoundError("no availability for stylist " + stylistID)
		}
		return nil, fmt.Errorf("failed to load availability: %w", err)
	}
	return availability, nil
}

// SetWeeklySchedule validates and fully replaces the weekly template.
func (s *DefaultAvailabilityService) SetWeeklySchedule(ctx context.Context, stylistID string, schedule map[string]models.DaySchedule) (*models.Availability, error) {
	if len(schedule) == 0 {
		return nil, utils.NewValidationError("weekly schedule must not be empty")
	}
	valid := make(map[string]bool, len(models.Weekdays))
	for _, day := range models.Weekdays {
		valid[day] = true
	}
	for day, entry := range schedule {
		if !valid[day] {
			return nil, utils.NewValidationError("unknown weekday " + day)
		}
		if err := validateDayWindow(day, entry.IsAvailable, entry.StartTime, entry.EndTime, entry.Breaks); err != nil {
			return nil, err
		}
	}

	availability, err := s.GetOrCreateDefault(ctx, stylistID)
	if err != nil {
		return nil, err
	}
	availability.WeeklySchedule = schedule
	availability.UpdatedAt = time.Now()
	if err := s.Repo.Upsert(ctx, availability); err != nil {
		return nil, fmt.Errorf("failed to save weekly schedule: %w", err)
	}
	return availability, nil
}

// SetBookingPreferences validates and replaces the booking preferences.
func (s *DefaultAvailabilityService) SetBookingPreferences(ctx context.Context, stylistID string, prefs models.BookingPreferences) (*models.Availability, error) {
	if prefs.SlotDurationMinutes <= 0 {
		return nil, utils.NewValidationError("slotDurationMinutes must be positive")
	}
	if prefs.BufferMinutes < 0 {
		return nil, utils.NewValidationError("bufferMinutes must not be negative")
	}
	if prefs.MinAdvanceBookingHours < 0 || prefs.MaxAdvanceBookingDays <= 0 {
		return nil, utils.NewValidationError("advance booking bounds out of range")
	}
	if prefs.MaxBookingsPerDay <= 0 {
		return nil, utils.NewValidationError("maxBookingsPerDay must be positive")
	}
	if prefs.CancellationWindowHours < 0 || prefs.RescheduleWindowHours < 0 {
		return nil, utils.NewValidationError("cancellation and reschedule windows must not be negative")
	}

	availability, err := s.GetOrCreateDefault(ctx, stylistID)
	if err != nil {
		return nil, err
	}
	availability.BookingPreferences = prefs
	availability.UpdatedAt = time.Now()
	if err := s.Repo.Upsert(ctx, availability); err != nil {
		return nil, fmt.Errorf("failed to save booking preferences: %w", err)
	}
	return availability, nil
}

// UpsertDateOverride replaces any existing override for the same calendar
// date. At most one override per date; last write wins.
func (s *DefaultAvailabilityService) UpsertDateOverride(ctx context.Context, stylistID string, override models.DateOverride) (*models.Availability, error) {
	if _, err := utils.ParseDate(override.Date, time.UTC); err != nil {
		return nil, utils.NewValidationError("invalid override date: " + override.Date)
	}
	if err := validateDayWindow(override.Date, override.IsAvailable, override.StartTime, override.EndTime, override.Breaks); err != nil {
		return nil, err
	}

	availability, err := s.GetOrCreateDefault(ctx, stylistID)
	if err != nil {
		return nil, err
	}

	replaced := false
	for i := range availability.DateOverrides {
		if availability.DateOverrides[i].Date == override.Date {
			availability.DateOverrides[i] = override
			replaced = true
			break
		}
	}
	if !replaced {
		availability.DateOverrides = append(availability.DateOverrides, override)
		sort.Slice(availability.DateOverrides, func(i, j int) bool {
			return availability.DateOverrides[i].Date < availability.DateOverrides[j].Date
		})
	}
	availability.UpdatedAt = time.Now()
	if err := s.Repo.Upsert(ctx, availability); err != nil {
		return nil, fmt.Errorf("failed to save date override: %w", err)
	}
	return availability, nil
}

// RemoveDateOverride deletes the override for the given date.
func (s *DefaultAvailabilityService) RemoveDateOverride(ctx context.Context, stylistID, date string) (*models.Availability, error) {
	availability, err := s.Get(ctx, stylistID)
	if err != nil {
		return nil, err
	}

	kept := availability.DateOverrides[:0]
	found := false
	for _, ov := range availability.DateOverrides {
		if ov.Date == date {
			found = true
			continue
		}
		kept = append(kept, ov)
	}
	if !found {
		return nil, utils.NewNotFoundError("no override for date " + date)
	}
	availability.DateOverrides = kept
	availability.UpdatedAt = time.Now()
	if err := s.Repo.Upsert(ctx, availability); err != nil {
		return nil, fmt.Errorf("failed to remove date override: %w", err)
	}
	return availability, nil
}

// Deactivate makes the stylist globally unbookable.
func (s *DefaultAvailabilityService) Deactivate(ctx context.Context, stylistID string) (*models.Availability, error) {
	availability, err := s.Get(ctx, stylistID)
	if err != nil {
		return nil, err
	}
	availability.IsActive = false
	availability.UpdatedAt = time.Now()
	if err := s.Repo.Upsert(ctx, availability); err != nil {
		return nil, fmt.Errorf("failed to deactivate availability: %w", err)
	}
	return availability, nil
}

// validateDayWindow enforces the schedule invariants for one day entry:
// startTime < endTime, breaks inside [startTime, endTime], breaks disjoint.
func validateDayWindow(label string, isAvailable bool, startTime, endTime string, breaks []models.Break) error {
	if !isAvailable {
		return nil
	}
	start, err := utils.ParseClock(startTime)
	if err != nil {
		return utils.NewValidationError(fmt.Sprintf("%s: invalid startTime %q", label, startTime))
	}
	end, err := utils.ParseClock(endTime)
	if err != nil {
		return utils.NewValidationError(fmt.Sprintf("%s: invalid endTime %q", label, endTime))
	}
	if start >= end {
		return utils.NewValidationError(fmt.Sprintf("%s: startTime must be before endTime", label))
	}

	type span struct{ start, end int }
	spans := make([]span, 0, len(breaks))
	for _, br := range breaks {
		bs, err := utils.ParseClock(br.StartTime)
		if err != nil {
			return utils.NewValidationError(fmt.Sprintf("%s: invalid break startTime %q", label, br.StartTime))
		}
		be, err := utils.ParseClock(br.EndTime)
		if err != nil {
			return utils.NewValidationError(fmt.Sprintf("%s: invalid break endTime %q", label, br.EndTime))
		}
		if bs >= be {
			return utils.NewValidationError(fmt.Sprintf("%s: break start must be before break end", label))
		}
		if bs < start || be > end {
			return utils.NewValidationError(fmt.Sprintf("%s: break must lie within working hours", label))
		}
		spans = append(spans, span{bs, be})
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	for i := 1; i < len(spans); i++ {
		if spans[i].start < spans[i-1].end {
			return utils.NewValidationError(fmt.Sprintf("%s: breaks must not overlap", label))
		}
	}
	return nil
}
