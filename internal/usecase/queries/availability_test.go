//go:build unit

package queries_test

import (
	"testing"
	"time"

	"studio-backend/internal/domain/booking"
	"studio-backend/internal/usecase/queries"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slotState(t *testing.T, day queries.DayAvailability, label string) queries.SlotState {
	t.Helper()
	for _, cell := range day.Slots {
		if cell.Time == label {
			return cell.State
		}
	}
	t.Fatalf("slot %s not found in day %s", label, day.Date)
	return ""
}

func TestBuildMonthGrid(t *testing.T) {
	// A moment well before the month under test so nothing is past.
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	t.Run("empty month is fully free", func(t *testing.T) {
		grid := queries.BuildMonthGrid(2026, time.March, now, nil, nil)

		assert.Equal(t, 2026, grid.Year)
		assert.Equal(t, 3, grid.Month)
		require.Len(t, grid.Days, 31)

		for _, day := range grid.Days {
			assert.Equal(t, queries.DayFree, day.State, day.Date)
			assert.Len(t, day.Slots, booking.SlotCount())
			for _, cell := range day.Slots {
				assert.Equal(t, queries.SlotFree, cell.State)
			}
		}
	})

	t.Run("bookings and blocks are unioned", func(t *testing.T) {
		occupied := []queries.OccupiedSlotRow{
			// Two hours starting 14:00 on March 10.
			{StartTime: time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC), DurationMin: 120},
		}
		blocked := []queries.BlockedSlotRow{
			{Date: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), Hour: 18},
		}

		grid := queries.BuildMonthGrid(2026, time.March, now, occupied, blocked)
		day := grid.Days[9]
		require.Equal(t, "2026-03-10", day.Date)

		assert.Equal(t, queries.SlotBooked, slotState(t, day, "14:00"))
		assert.Equal(t, queries.SlotBooked, slotState(t, day, "15:00"))
		assert.Equal(t, queries.SlotFree, slotState(t, day, "16:00"))
		assert.Equal(t, queries.SlotBlocked, slotState(t, day, "18:00"))
		assert.Equal(t, queries.DayPartial, day.State)

		// Neighboring days are untouched.
		assert.Equal(t, queries.DayFree, grid.Days[8].State)
		assert.Equal(t, queries.DayFree, grid.Days[10].State)
	})

	t.Run("booking takes precedence over a block on the same hour", func(t *testing.T) {
		occupied := []queries.OccupiedSlotRow{
			{StartTime: time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC), DurationMin: 60},
		}
		blocked := []queries.BlockedSlotRow{
			{Date: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), Hour: 10},
		}

		grid := queries.BuildMonthGrid(2026, time.March, now, occupied, blocked)
		assert.Equal(t, queries.SlotBooked, slotState(t, grid.Days[4], "10:00"))
	})

	t.Run("fully taken day", func(t *testing.T) {
		var blocked []queries.BlockedSlotRow
		for _, hour := range booking.SlotTimes() {
			blocked = append(blocked, queries.BlockedSlotRow{
				Date: time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC),
				Hour: hour,
			})
		}

		grid := queries.BuildMonthGrid(2026, time.March, now, nil, blocked)
		assert.Equal(t, queries.DayFull, grid.Days[19].State)
	})

	t.Run("past slots", func(t *testing.T) {
		// Midday on March 10: morning slots are gone, evening still open.
		midday := time.Date(2026, 3, 10, 12, 30, 0, 0, time.UTC)
		grid := queries.BuildMonthGrid(2026, time.March, midday, nil, nil)

		day := grid.Days[9]
		assert.Equal(t, queries.SlotPast, slotState(t, day, "10:00"))
		assert.Equal(t, queries.SlotPast, slotState(t, day, "12:00"))
		assert.Equal(t, queries.SlotFree, slotState(t, day, "13:00"))

		// The day before is entirely in the past.
		assert.Equal(t, queries.DayPast, grid.Days[8].State)
	})
}
