package queries

import (
	"context"
	"time"

	"studio-backend/internal/domain/booking"
	"studio-backend/internal/pkg/clock"
	"studio-backend/internal/pkg/errs"
)

var ErrMonthOutOfRange = errs.New("month is before the calendar lower bound")

// SlotState classifies one grid cell for display.
type SlotState string

const (
	SlotFree    SlotState = "free"
	SlotBlocked SlotState = "blocked"
	SlotBooked  SlotState = "booked"
	SlotPast    SlotState = "past"
)

// DayState summarizes a whole day.
type DayState string

const (
	DayFree    DayState = "free"
	DayPartial DayState = "partial"
	DayFull    DayState = "full"
	DayPast    DayState = "past"
)

type SlotCell struct {
	Time  string    `json:"time"`
	State SlotState `json:"state"`
}

type DayAvailability struct {
	Date  string     `json:"date"` // YYYY-MM-DD
	State DayState   `json:"state"`
	Slots []SlotCell `json:"slots"`
}

type MonthAvailability struct {
	Year  int               `json:"year"`
	Month int               `json:"month"`
	Days  []DayAvailability `json:"days"`
}

// OccupiedSlotRow is how the read store reports bookings that hold slots
// (status accepted or confirmed only).
type OccupiedSlotRow struct {
	StartTime   time.Time
	DurationMin int32
}

type BlockedSlotRow struct {
	Date time.Time
	Hour int
}

type AvailabilityReadStore interface {
	OccupyingBookingsBetween(ctx context.Context, from, to time.Time) ([]OccupiedSlotRow, error)
	BlockedSlotsBetween(ctx context.Context, from, to time.Time) ([]BlockedSlotRow, error)
}

type AvailabilityQueries interface {
	MonthGrid(ctx context.Context, year int, month time.Month) (*MonthAvailability, error)
}

type availabilityQueriesImpl struct {
	store   AvailabilityReadStore
	clock   clock.Clock
	minDate time.Time
}

func NewAvailabilityQueries(store AvailabilityReadStore, clk clock.Clock, minDate time.Time) AvailabilityQueries {
	return &availabilityQueriesImpl{store: store, clock: clk, minDate: minDate}
}

func (q *availabilityQueriesImpl) MonthGrid(ctx context.Context, year int, month time.Month) (*MonthAvailability, error) {
	now := q.clock.Now()

	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)

	if monthEnd.Before(q.minDate) || monthEnd.Equal(q.minDate) {
		return nil, ErrMonthOutOfRange
	}

	occupied, err := q.store.OccupyingBookingsBetween(ctx, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}
	blocked, err := q.store.BlockedSlotsBetween(ctx, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}

	return BuildMonthGrid(year, month, now, occupied, blocked), nil
}

// BuildMonthGrid merges the two occupancy sources into the per-day,
// per-slot classification. Pure so the union semantics are testable
// without a store.
func BuildMonthGrid(year int, month time.Month, now time.Time, occupied []OccupiedSlotRow, blocked []BlockedSlotRow) *MonthAvailability {
	type dayKey struct {
		y, d int
		m    time.Month
	}

	blockedSet := make(map[dayKey]map[int]bool)
	for _, b := range blocked {
		k := dayKey{b.Date.Year(), b.Date.Day(), b.Date.Month()}
		if blockedSet[k] == nil {
			blockedSet[k] = make(map[int]bool)
		}
		blockedSet[k][b.Hour] = true
	}

	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, now.Location())
	daysInMonth := monthStart.AddDate(0, 1, -1).Day()

	out := &MonthAvailability{Year: year, Month: int(month), Days: make([]DayAvailability, 0, daysInMonth)}

	for d := 1; d <= daysInMonth; d++ {
		date := time.Date(year, month, d, 0, 0, 0, 0, now.Location())
		k := dayKey{date.Year(), date.Day(), date.Month()}

		day := DayAvailability{
			Date:  date.Format("2006-01-02"),
			Slots: make([]SlotCell, 0, booking.SlotCount()),
		}

		free, taken := 0, 0
		for _, hour := range booking.SlotTimes() {
			slot, _ := booking.NewSlot(date, hour)
			cell := SlotCell{Time: slot.TimeLabel()}

			switch {
			case slot.IsPast(now):
				cell.State = SlotPast
			case hourOccupiedByBooking(slot, occupied):
				cell.State = SlotBooked
				taken++
			case blockedSet[k][hour]:
				cell.State = SlotBlocked
				taken++
			default:
				cell.State = SlotFree
				free++
			}
			day.Slots = append(day.Slots, cell)
		}

		switch {
		case free == 0 && taken == 0:
			day.State = DayPast
		case free == 0:
			day.State = DayFull
		case taken == 0:
			day.State = DayFree
		default:
			day.State = DayPartial
		}
		out.Days = append(out.Days, day)
	}

	return out
}

func hourOccupiedByBooking(slot booking.Slot, occupied []OccupiedSlotRow) bool {
	for _, o := range occupied {
		if booking.Overlaps(slot, o.StartTime, time.Duration(o.DurationMin)*time.Minute) {
			return true
		}
	}
	return false
}
