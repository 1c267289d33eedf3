//go:build unit

package booking_test

import (
	"testing"
	"time"

	"studio-backend/internal/domain/booking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSlot(t *testing.T) {
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("accepts the full grid", func(t *testing.T) {
		for hour := booking.FirstSlotHour; hour <= booking.LastSlotHour; hour++ {
			slot, err := booking.NewSlot(date, hour)
			require.NoError(t, err)
			assert.Equal(t, hour, slot.Hour())
		}
	})

	t.Run("rejects off-grid hours", func(t *testing.T) {
		for _, hour := range []int{0, 9, 23, -1} {
			_, err := booking.NewSlot(date, hour)
			assert.ErrorIs(t, err, booking.ErrInvalidSlotTime, "hour %d", hour)
		}
	})

	t.Run("normalizes the date to midnight", func(t *testing.T) {
		noisy := time.Date(2026, 3, 10, 17, 45, 12, 0, time.UTC)
		slot, err := booking.NewSlot(noisy, 14)
		require.NoError(t, err)
		assert.Equal(t, date, slot.Date())
		assert.Equal(t, date.Add(14*time.Hour), slot.StartTime())
	})
}

func TestSlotFromTime(t *testing.T) {
	slot, err := booking.SlotFromTime(time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 10, slot.Hour())

	_, err = booking.SlotFromTime(time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, booking.ErrInvalidSlotTime)
}

func TestSlotGrid(t *testing.T) {
	times := booking.SlotTimes()
	assert.Len(t, times, booking.SlotCount())
	assert.Equal(t, booking.FirstSlotHour, times[0])
	assert.Equal(t, booking.LastSlotHour, times[len(times)-1])
}

func TestOverlaps(t *testing.T) {
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	slot, err := booking.NewSlot(date, 14)
	require.NoError(t, err)

	t.Run("booking covering the hour", func(t *testing.T) {
		assert.True(t, booking.Overlaps(slot, date.Add(14*time.Hour), time.Hour))
	})

	t.Run("long booking spanning the slot", func(t *testing.T) {
		assert.True(t, booking.Overlaps(slot, date.Add(13*time.Hour), 3*time.Hour))
	})

	t.Run("booking ending exactly at slot start", func(t *testing.T) {
		assert.False(t, booking.Overlaps(slot, date.Add(13*time.Hour), time.Hour))
	})

	t.Run("booking starting exactly at slot end", func(t *testing.T) {
		assert.False(t, booking.Overlaps(slot, date.Add(15*time.Hour), time.Hour))
	})
}

func TestSlotIsPast(t *testing.T) {
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	slot, err := booking.NewSlot(date, 14)
	require.NoError(t, err)

	assert.True(t, slot.IsPast(date.Add(15*time.Hour)))
	assert.False(t, slot.IsPast(date.Add(13*time.Hour)))
}
