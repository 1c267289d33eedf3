package booking

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidSlotTime = errors.New("time is not a bookable slot")
	ErrSlotInPast      = errors.New("slot is in the past")
)

// The studio opens a fixed hourly grid, 10:00 through 22:00 inclusive.
const (
	FirstSlotHour = 10
	LastSlotHour  = 22
)

// SlotTimes returns every bookable time of day, in order.
func SlotTimes() []int {
	times := make([]int, 0, LastSlotHour-FirstSlotHour+1)
	for h := FirstSlotHour; h <= LastSlotHour; h++ {
		times = append(times, h)
	}
	return times
}

func SlotCount() int {
	return LastSlotHour - FirstSlotHour + 1
}

// Slot identifies one bookable unit: a calendar date plus an hour from the
// fixed grid. Slots are not stored rows; occupancy is derived by unioning
// confirmed bookings and admin blocks.
type Slot struct {
	date time.Time // normalized to midnight in its location
	hour int
}

func NewSlot(date time.Time, hour int) (Slot, error) {
	if hour < FirstSlotHour || hour > LastSlotHour {
		return Slot{}, ErrInvalidSlotTime
	}
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return Slot{date: d, hour: hour}, nil
}

// SlotFromTime maps an instant onto the grid; fails for off-grid hours.
func SlotFromTime(t time.Time) (Slot, error) {
	return NewSlot(t, t.Hour())
}

func (s Slot) Date() time.Time {
	return s.date
}

func (s Slot) Hour() int {
	return s.hour
}

func (s Slot) StartTime() time.Time {
	return s.date.Add(time.Duration(s.hour) * time.Hour)
}

func (s Slot) TimeLabel() string {
	return fmt.Sprintf("%02d:00", s.hour)
}

func (s Slot) IsPast(now time.Time) bool {
	return s.StartTime().Before(now)
}

// Overlaps reports whether the half-open interval [start, start+duration)
// of a booking covers this slot's hour.
func Overlaps(slot Slot, start time.Time, duration time.Duration) bool {
	slotStart := slot.StartTime()
	slotEnd := slotStart.Add(time.Hour)
	end := start.Add(duration)
	return start.Before(slotEnd) && end.After(slotStart)
}

// IntervalsOverlap is the generic half-open interval check used when the
// conflict candidate is another booking rather than a grid slot.
func IntervalsOverlap(aStart time.Time, aDur time.Duration, bStart time.Time, bDur time.Duration) bool {
	aEnd := aStart.Add(aDur)
	bEnd := bStart.Add(bDur)
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// SameDay compares calendar dates ignoring time of day.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
