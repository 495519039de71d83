package models

import (
	"strings"
	"time"

	"stylora/utils"
)

// Break is an unbookable window inside a working day, e.g. lunch.
type Break struct {
	StartTime string `bson:"start_time" json:"startTime"` // "HH:MM"
	EndTime   string `bson:"end_time" json:"endTime"`     // "HH:MM"
	Reason    string `bson:"reason,omitempty" json:"reason,omitempty"`
}

// DaySchedule is one weekday entry of the recurring weekly template.
type DaySchedule struct {
	IsAvailable bool    `bson:"is_available" json:"isAvailable"`
	StartTime   string  `bson:"start_time,omitempty" json:"startTime,omitempty"`
	EndTime     string  `bson:"end_time,omitempty" json:"endTime,omitempty"`
	Breaks      []Break `bson:"breaks,omitempty" json:"breaks,omitempty"`
}

// DateOverride fully supersedes the weekly template for one calendar date.
type DateOverride struct {
	Date        string  `bson:"date" json:"date"` // "YYYY-MM-DD"
	IsAvailable bool    `bson:"is_available" json:"isAvailable"`
	StartTime   string  `bson:"start_time,omitempty" json:"startTime,omitempty"`
	EndTime     string  `bson:"end_time,omitempty" json:"endTime,omitempty"`
	Breaks      []Break `bson:"breaks,omitempty" json:"breaks,omitempty"`
	Reason      string  `bson:"reason,omitempty" json:"reason,omitempty"`
}

// BookingPreferences are the stylist's global booking knobs.
type BookingPreferences struct {
	MinAdvanceBookingHours  int `bson:"min_advance_booking_hours" json:"minAdvanceBookingHours"`
	MaxAdvanceBookingDays   int `bson:"max_advance_booking_days" json:"maxAdvanceBookingDays"`
	SlotDurationMinutes     int `bson:"slot_duration_minutes" json:"slotDurationMinutes"`
	MaxBookingsPerDay       int `bson:"max_bookings_per_day" json:"maxBookingsPerDay"`
	BufferMinutes           int `bson:"buffer_minutes" json:"bufferMinutes"`
	CancellationWindowHours int `bson:"cancellation_window_hours" json:"cancellationWindowHours"`
	RescheduleWindowHours   int `bson:"reschedule_window_hours" json:"rescheduleWindowHours"`
}

// Availability is a stylist's bookable calendar: a recurring weekly template
// plus date-specific overrides and booking preferences. Pure data and query
// methods; validation and persistence live in the availability service.
type Availability struct {
	StylistID          string                 `bson:"stylist_id" json:"stylistId"`
	WeeklySchedule     map[string]DaySchedule `bson:"weekly_schedule" json:"weeklySchedule"` // keyed by lowercase weekday name
	DateOverrides      []DateOverride         `bson:"date_overrides,omitempty" json:"dateOverrides,omitempty"`
	BookingPreferences BookingPreferences     `bson:"booking_preferences" json:"bookingPreferences"`
	IsActive           bool                   `bson:"is_active" json:"isActive"`
	CreatedAt          time.Time              `bson:"created_at" json:"createdAt"`
	UpdatedAt          time.Time              `bson:"updated_at" json:"updatedAt"`
}

// DayWindow is the resolved bookable window for a single date.
type DayWindow struct {
	StartTime string  `json:"startTime"`
	EndTime   string  `json:"endTime"`
	Breaks    []Break `json:"breaks,omitempty"`
}

// Weekdays lists the valid weekly-schedule keys.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// WeekdayKey returns the weekly-schedule key for a calendar date, or "" if the
// date does not parse.
func WeekdayKey(date string) string {
	t, err := time.Parse(utils.DateLayout, date)
	if err != nil {
		return ""
	}
	return strings.ToLower(t.Weekday().String())
}

// OverrideFor returns the override for the exact calendar date, if any.
func (a *Availability) OverrideFor(date string) *DateOverride {
	for i := range a.DateOverrides {
		if a.DateOverrides[i].Date == date {
			return &a.DateOverrides[i]
		}
	}
	return nil
}

// EffectiveWindow resolves the bookable window for a date: the override when
// present, otherwise the weekly template for that weekday. Returns nil when
// the day is not bookable at all.
func (a *Availability) EffectiveWindow(date string) *DayWindow {
	if !a.IsActive {
		return nil
	}
	if ov := a.OverrideFor(date); ov != nil {
		if !ov.IsAvailable {
			return nil
		}
		return &DayWindow{StartTime: ov.StartTime, EndTime: ov.EndTime, Breaks: ov.Breaks}
	}
	day, ok := a.WeeklySchedule[WeekdayKey(date)]
	if !ok || !day.IsAvailable {
		return nil
	}
	return &DayWindow{StartTime: day.StartTime, EndTime: day.EndTime, Breaks: day.Breaks}
}

// IsAvailableAt reports whether the clock value falls inside the effective
// window for the date and outside every break. Interval tests are half-open:
// [startTime, endTime) and [breakStart, breakEnd).
func (a *Availability) IsAvailableAt(date, clock string) bool {
	window := a.EffectiveWindow(date)
	if window == nil {
		return false
	}
	at, err := utils.ParseClock(clock)
	if err != nil {
		return false
	}
	start, err := utils.ParseClock(window.StartTime)
	if err != nil {
		return false
	}
	end, err := utils.ParseClock(window.EndTime)
	if err != nil {
		return false
	}
	if at < start || at >= end {
		return false
	}
	for _, br := range window.Breaks {
		bs, err1 := utils.ParseClock(br.StartTime)
		be, err2 := utils.ParseClock(br.EndTime)
		if err1 != nil || err2 != nil {
			continue
		}
		if at >= bs && at < be {
			return false
		}
	}
	return true
}

// DefaultAvailability is the documented default schedule materialized on a
// stylist's first write: Mon-Sat 09:00-18:00 with a 13:00-14:00 lunch break,
// Sundays off.
func DefaultAvailability(stylistID string) *Availability {
	now := time.Now()
	schedule := make(map[string]DaySchedule, len(Weekdays))
	for _, day := range Weekdays {
		if day == "sunday" {
			schedule[day] = DaySchedule{IsAvailable: false}
			continue
		}
		schedule[day] = DaySchedule{
			IsAvailable: true,
			StartTime:   "09:00",
			EndTime:     "18:00",
			Breaks:      []Break{{StartTime: "13:00", EndTime: "14:00", Reason: "lunch"}},
		}
	}
	return &Availability{
		StylistID:      stylistID,
		WeeklySchedule: schedule,
		BookingPreferences: BookingPreferences{
			MinAdvanceBookingHours:  2,
			MaxAdvanceBookingDays:   30,
			SlotDurationMinutes:     60,
			MaxBookingsPerDay:       8,
			BufferMinutes:           15,
			CancellationWindowHours: 2,
			RescheduleWindowHours:   24,
		},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
