//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"studio-backend/internal/domain/booking"
	"studio-backend/internal/infra"
	"studio-backend/internal/pkg/clock"
	"studio-backend/internal/usecase/commands"
	"studio-backend/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockedSlotStoreFake struct {
	blocked map[string]map[int]bool // date -> hour -> blocked
	dupOn   map[int]bool            // hours whose insert reports a duplicate
}

func newBlockedSlotStoreFake() *blockedSlotStoreFake {
	return &blockedSlotStoreFake{blocked: make(map[string]map[int]bool)}
}

func (f *blockedSlotStoreFake) key(date time.Time) string {
	return date.Format("2006-01-02")
}

func (f *blockedSlotStoreFake) block(date time.Time, hours ...int) {
	k := f.key(date)
	if f.blocked[k] == nil {
		f.blocked[k] = make(map[int]bool)
	}
	for _, h := range hours {
		f.blocked[k][h] = true
	}
}

func (f *blockedSlotStoreFake) Insert(_ context.Context, date time.Time, hour int, _ uuid.UUID) error {
	if f.dupOn[hour] {
		return infra.WrapRepoErr("slot already blocked", nil, infra.KindDuplicateKey)
	}
	f.block(date, hour)
	return nil
}

func (f *blockedSlotStoreFake) Delete(_ context.Context, date time.Time, hour int) (int64, error) {
	k := f.key(date)
	if f.blocked[k][hour] {
		delete(f.blocked[k], hour)
		return 1, nil
	}
	return 0, nil
}

func (f *blockedSlotStoreFake) ListHoursByDay(_ context.Context, date time.Time) ([]int, error) {
	var hours []int
	for _, h := range booking.SlotTimes() {
		if f.blocked[f.key(date)][h] {
			hours = append(hours, h)
		}
	}
	return hours, nil
}

type occupancyStoreFake struct {
	rows []queries.OccupiedSlotRow
}

func (f *occupancyStoreFake) OccupyingBookingsBetween(_ context.Context, from, to time.Time) ([]queries.OccupiedSlotRow, error) {
	var out []queries.OccupiedSlotRow
	for _, r := range f.rows {
		if r.StartTime.Before(to) && r.StartTime.Add(time.Duration(r.DurationMin)*time.Minute).After(from) {
			out = append(out, r)
		}
	}
	return out, nil
}

func newScheduleFixture(now time.Time) (commands.ScheduleCommands, *blockedSlotStoreFake, *occupancyStoreFake) {
	slots := newBlockedSlotStoreFake()
	occupancy := &occupancyStoreFake{}
	cmds := commands.NewScheduleCommands(slots, occupancy, clock.NewMockClock(now), time.Time{})
	return cmds, slots, occupancy
}

func TestToggleSlot(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	adminID := uuid.New()

	t.Run("free slot becomes blocked", func(t *testing.T) {
		cmds, slots, _ := newScheduleFixture(now)

		blocked, err := cmds.ToggleSlot(context.Background(), date, 14, adminID)
		require.NoError(t, err)
		assert.True(t, blocked)
		assert.True(t, slots.blocked["2026-03-10"][14])
	})

	t.Run("blocked slot becomes free", func(t *testing.T) {
		cmds, slots, _ := newScheduleFixture(now)
		slots.block(date, 14)

		blocked, err := cmds.ToggleSlot(context.Background(), date, 14, adminID)
		require.NoError(t, err)
		assert.False(t, blocked)
		assert.False(t, slots.blocked["2026-03-10"][14])
	})

	t.Run("occupied slot cannot be blocked", func(t *testing.T) {
		cmds, _, occupancy := newScheduleFixture(now)
		occupancy.rows = []queries.OccupiedSlotRow{
			{StartTime: date.Add(14 * time.Hour), DurationMin: 60},
		}

		_, err := cmds.ToggleSlot(context.Background(), date, 14, adminID)
		assert.ErrorIs(t, err, commands.ErrSlotOccupied)
	})

	t.Run("slot inside a long booking cannot be blocked", func(t *testing.T) {
		cmds, _, occupancy := newScheduleFixture(now)
		occupancy.rows = []queries.OccupiedSlotRow{
			{StartTime: date.Add(14 * time.Hour), DurationMin: 180},
		}

		_, err := cmds.ToggleSlot(context.Background(), date, 16, adminID)
		assert.ErrorIs(t, err, commands.ErrSlotOccupied)
	})

	t.Run("off-grid hour", func(t *testing.T) {
		cmds, _, _ := newScheduleFixture(now)
		_, err := cmds.ToggleSlot(context.Background(), date, 8, adminID)
		assert.ErrorIs(t, err, commands.ErrSlotOutOfSchedule)
	})

	t.Run("past slot", func(t *testing.T) {
		cmds, _, _ := newScheduleFixture(now)
		yesterday := now.AddDate(0, 0, -1)
		_, err := cmds.ToggleSlot(context.Background(), yesterday, 14, adminID)
		assert.ErrorIs(t, err, commands.ErrSlotInPast)
	})

	t.Run("concurrent block reports blocked", func(t *testing.T) {
		cmds, slots, _ := newScheduleFixture(now)
		slots.dupOn = map[int]bool{14: true}

		blocked, err := cmds.ToggleSlot(context.Background(), date, 14, adminID)
		require.NoError(t, err)
		assert.True(t, blocked)
	})
}

func TestToggleDay(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	adminID := uuid.New()

	t.Run("blocks every free slot", func(t *testing.T) {
		cmds, slots, _ := newScheduleFixture(now)
		slots.block(date, 12)

		result, err := cmds.ToggleDay(context.Background(), date, adminID)
		require.NoError(t, err)
		assert.Equal(t, "blocked", result.Action)
		require.Len(t, result.Results, booking.SlotCount())
		for _, r := range result.Results {
			assert.True(t, r.Blocked, r.Time)
			assert.Empty(t, r.Error, r.Time)
		}
	})

	t.Run("fully blocked day is unblocked", func(t *testing.T) {
		cmds, slots, _ := newScheduleFixture(now)
		slots.block(date, booking.SlotTimes()...)

		result, err := cmds.ToggleDay(context.Background(), date, adminID)
		require.NoError(t, err)
		assert.Equal(t, "unblocked", result.Action)
		for _, r := range result.Results {
			assert.False(t, r.Blocked, r.Time)
		}
		assert.Empty(t, slots.blocked["2026-03-10"])
	})

	t.Run("occupied hours are skipped, the rest are blocked", func(t *testing.T) {
		cmds, slots, occupancy := newScheduleFixture(now)
		occupancy.rows = []queries.OccupiedSlotRow{
			{StartTime: date.Add(14 * time.Hour), DurationMin: 120},
		}

		result, err := cmds.ToggleDay(context.Background(), date, adminID)
		require.NoError(t, err)
		assert.Equal(t, "blocked", result.Action)

		for _, r := range result.Results {
			switch r.Time {
			case "14:00", "15:00":
				assert.False(t, r.Blocked, r.Time)
				assert.NotEmpty(t, r.Error, r.Time)
			default:
				assert.True(t, r.Blocked, r.Time)
			}
		}
		assert.False(t, slots.blocked["2026-03-10"][14])
		assert.True(t, slots.blocked["2026-03-10"][16])
	})

	t.Run("past day", func(t *testing.T) {
		cmds, _, _ := newScheduleFixture(now)
		_, err := cmds.ToggleDay(context.Background(), now.AddDate(0, 0, -1), adminID)
		assert.ErrorIs(t, err, commands.ErrSlotInPast)
	})

	t.Run("below the calendar lower bound", func(t *testing.T) {
		slots := newBlockedSlotStoreFake()
		minDate := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
		cmds := commands.NewScheduleCommands(slots, &occupancyStoreFake{}, clock.NewMockClock(now), minDate)

		_, err := cmds.ToggleDay(context.Background(), date, adminID)
		assert.ErrorIs(t, err, commands.ErrDateBelowMinimum)
	})
}
