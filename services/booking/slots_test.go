package booking

import (
	"testing"
	"time"

	"stylora/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2026-09-02 is a Wednesday in the default Mon-Sat template.
const slotDate = "2026-09-02"

func slotStarts(slots []models.Slot) []string {
	starts := make([]string, 0, len(slots))
	for _, s := range slots {
		starts = append(starts, s.StartTime)
	}
	return starts
}

func TestComputeSlotsDefaultDay(t *testing.T) {
	av := models.DefaultAvailability("stylist-1")
	now := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

	slots, err := ComputeSlots(av, slotDate, 60, nil, now, time.UTC)
	require.NoError(t, err)

	// 09:00-18:00 on a 30-minute grid with 60-minute slots gives 17 candidate
	// starts; the lunch break knocks out 12:30, 13:00 and 13:30.
	assert.Len(t, slots, 14)
	starts := slotStarts(slots)
	assert.Equal(t, "09:00", starts[0])
	assert.Equal(t, "17:00", starts[len(starts)-1])
	assert.Contains(t, starts, "12:00", "slot ending exactly at the break start is bookable")
	assert.Contains(t, starts, "14:00", "slot starting exactly at the break end is bookable")
	assert.NotContains(t, starts, "12:30")
	assert.NotContains(t, starts, "13:00")
	assert.NotContains(t, starts, "13:30")

	for _, s := range slots {
		assert.True(t, av.IsAvailableAt(slotDate, s.StartTime))
	}
}

func TestComputeSlotsBufferAroundCommittedBooking(t *testing.T) {
	av := models.DefaultAvailability("stylist-1")
	now := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	existing := []models.Booking{{
		StylistID:       "stylist-1",
		ScheduledDate:   slotDate,
		ScheduledTime:   "10:30",
		DurationMinutes: 60,
		Status:          models.BookingStatusConfirmed,
	}}

	slots, err := ComputeSlots(av, slotDate, 60, existing, now, time.UTC)
	require.NoError(t, err)

	// The booking blocks 10:30-11:30 plus the 15-minute buffer on both sides,
	// so every 60-minute slot touching 10:15-11:45 disappears.
	starts := slotStarts(slots)
	assert.Contains(t, starts, "09:00")
	assert.NotContains(t, starts, "09:30")
	assert.NotContains(t, starts, "10:00")
	assert.NotContains(t, starts, "10:30")
	assert.NotContains(t, starts, "11:00")
	assert.NotContains(t, starts, "11:30")
	assert.Contains(t, starts, "12:00")
}

func TestComputeSlotsIgnoresPendingBookings(t *testing.T) {
	av := models.DefaultAvailability("stylist-1")
	now := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	existing := []models.Booking{{
		ScheduledDate:   slotDate,
		ScheduledTime:   "10:30",
		DurationMinutes: 60,
		Status:          models.BookingStatusPending,
	}}

	slots, err := ComputeSlots(av, slotDate, 60, existing, now, time.UTC)
	require.NoError(t, err)
	assert.Contains(t, slotStarts(slots), "10:30", "pending bookings do not hide slots from listings")
}

func TestComputeSlotsUnavailableDay(t *testing.T) {
	av := models.DefaultAvailability("stylist-1")
	now := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

	t.Run("weekly off day", func(t *testing.T) {
		slots, err := ComputeSlots(av, "2026-09-06", 60, nil, now, time.UTC)
		require.NoError(t, err)
		assert.Empty(t, slots)
	})

	t.Run("override marks the date unavailable", func(t *testing.T) {
		av := models.DefaultAvailability("stylist-1")
		av.DateOverrides = []models.DateOverride{{Date: slotDate, IsAvailable: false}}
		slots, err := ComputeSlots(av, slotDate, 60, nil, now, time.UTC)
		require.NoError(t, err)
		assert.Empty(t, slots)
	})

	t.Run("deactivated stylist", func(t *testing.T) {
		av := models.DefaultAvailability("stylist-1")
		av.IsActive = false
		slots, err := ComputeSlots(av, slotDate, 60, nil, now, time.UTC)
		require.NoError(t, err)
		assert.Empty(t, slots)
	})
}

func TestComputeSlotsAdvanceBounds(t *testing.T) {
	av := models.DefaultAvailability("stylist-1")

	t.Run("minimum advance hides the near future", func(t *testing.T) {
		// Same-day request at noon with a 2-hour minimum advance.
		now := time.Date(2026, 9, 2, 12, 0, 0, 0, time.UTC)
		slots, err := ComputeSlots(av, slotDate, 60, nil, now, time.UTC)
		require.NoError(t, err)
		starts := slotStarts(slots)
		assert.NotContains(t, starts, "13:30")
		assert.Contains(t, starts, "14:00", "a slot exactly at the advance boundary is allowed")
		assert.NotContains(t, starts, "12:00")
	})

	t.Run("maximum advance hides the far future", func(t *testing.T) {
		now := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
		// 2026-10-15 is 44 days out, past the 30-day horizon.
		slots, err := ComputeSlots(av, "2026-10-15", 60, nil, now, time.UTC)
		require.NoError(t, err)
		assert.Empty(t, slots)
	})
}

func TestComputeSlotsShortDuration(t *testing.T) {
	av := models.DefaultAvailability("stylist-1")
	now := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

	slots, err := ComputeSlots(av, slotDate, 30, nil, now, time.UTC)
	require.NoError(t, err)

	starts := slotStarts(slots)
	assert.Contains(t, starts, "17:30", "shorter slots fit closer to the window end")
	assert.Contains(t, starts, "12:30", "a 30-minute slot ending at the break start fits")
	assert.NotContains(t, starts, "13:00")
	assert.NotContains(t, starts, "13:30")
	assert.Contains(t, starts, "14:00")
}
