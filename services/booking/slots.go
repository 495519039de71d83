package booking

import (
	"time"

	"stylora/models"
	"stylora/utils"
)

// slotStepMinutes is the scheduling granularity: candidate starts are walked
// on a fixed 30-minute grid regardless of the requested duration, which only
// determines slot length.
const slotStepMinutes = 30

type span struct{ start, end int }

// overlaps reports half-open interval overlap: [a.start, a.end) vs
// [b.start, b.end). Touching boundaries do not overlap.
func (a span) overlaps(b span) bool {
	return a.start < b.end && b.start < a.end
}

// ComputeSlots produces the ordered list of bookable start times for a date.
// Break windows, committed bookings (padded by the symmetric buffer), the
// past, and the stylist's advance-booking bounds are all subtracted. The
// daily booking cap is deliberately not applied here; it gates creation only,
// so listings show raw availability.
func ComputeSlots(
	availability *models.Availability,
	date string,
	durationMinutes int,
	existing []models.Booking,
	now time.Time,
	loc *time.Location,
) ([]models.Slot, error) {
	window := availability.EffectiveWindow(date)
	if window == nil {
		return nil, nil
	}

	windowStart, err := utils.ParseClock(window.StartTime)
	if err != nil {
		return nil, utils.NewValidationError("invalid window start: " + window.StartTime)
	}
	windowEnd, err := utils.ParseClock(window.EndTime)
	if err != nil {
		return nil, utils.NewValidationError("invalid window end: " + window.EndTime)
	}
	dayStart, err := utils.ParseDate(date, loc)
	if err != nil {
		return nil, utils.NewValidationError("invalid date: " + date)
	}

	prefs := availability.BookingPreferences
	if durationMinutes <= 0 {
		durationMinutes = prefs.SlotDurationMinutes
	}

	breaks := make([]span, 0, len(window.Breaks))
	for _, br := range window.Breaks {
		bs, err1 := utils.ParseClock(br.StartTime)
		be, err2 := utils.ParseClock(br.EndTime)
		if err1 != nil || err2 != nil {
			continue
		}
		breaks = append(breaks, span{bs, be})
	}

	// Committed bookings block their interval plus the symmetric buffer on
	// both sides.
	busy := make([]span, 0, len(existing))
	for _, b := range existing {
		if b.Status != models.BookingStatusConfirmed && b.Status != models.BookingStatusInProgress {
			continue
		}
		bStart, err := utils.ParseClock(b.ScheduledTime)
		if err != nil {
			continue
		}
		busy = append(busy, span{
			start: bStart - prefs.BufferMinutes,
			end:   bStart + b.DurationMinutes + prefs.BufferMinutes,
		})
	}

	earliest := now.Add(time.Duration(prefs.MinAdvanceBookingHours) * time.Hour)
	latest := now.AddDate(0, 0, prefs.MaxAdvanceBookingDays)

	var slots []models.Slot
	for start := windowStart; start+durationMinutes <= windowEnd; start += slotStepMinutes {
		candidate := span{start, start + durationMinutes}

		blocked := false
		for _, br := range breaks {
			if candidate.overlaps(br) {
				blocked = true
				break
			}
		}
		if !blocked {
			for _, b := range busy {
				if candidate.overlaps(b) {
					blocked = true
					break
				}
			}
		}
		if blocked {
			continue
		}

		instant := dayStart.Add(time.Duration(start) * time.Minute)
		if instant.Before(earliest) || instant.After(latest) {
			continue
		}

		slots = append(slots, models.Slot{
			StartTime: utils.FormatClock(start),
			EndTime:   utils.FormatClock(start + durationMinutes),
		})
	}
	return slots, nil
}

// slotListed reports whether the requested start time survives slot
// computation for the date.
func slotListed(slots []models.Slot, startTime string) bool {
	for _, s := range slots {
		if s.StartTime == startTime {
			return true
		}
	}
	return false
}

// conflictsWithCommitted reports whether the booking's interval overlaps any
// committed booking other than itself, with the same buffer padding slot
// computation applies. Pending bookings never hide slots, so this is the
// check that keeps two overlapping pendings from both reaching confirmed.
func conflictsWithCommitted(prefs models.BookingPreferences, b *models.Booking, committed []models.Booking) bool {
	start, err := utils.ParseClock(b.ScheduledTime)
	if err != nil {
		return false
	}
	candidate := span{start, start + b.DurationMinutes}
	for _, other := range committed {
		if other.ID == b.ID {
			continue
		}
		otherStart, err := utils.ParseClock(other.ScheduledTime)
		if err != nil {
			continue
		}
		busy := span{
			start: otherStart - prefs.BufferMinutes,
			end:   otherStart + other.DurationMinutes + prefs.BufferMinutes,
		}
		if candidate.overlaps(busy) {
			return true
		}
	}
	return false
}
