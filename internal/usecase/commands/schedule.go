package commands

import (
	"context"
	"time"

	"studio-backend/internal/domain/booking"
	"studio-backend/internal/infra"
	"studio-backend/internal/pkg/clock"
	"studio-backend/internal/pkg/errs"
	"studio-backend/internal/usecase/queries"

	"github.com/google/uuid"
)

var (
	ErrSlotInPast        = errs.New("slot is in the past")
	ErrSlotOutOfSchedule = errs.New("time is outside the bookable schedule")
	ErrSlotOccupied      = errs.New("slot is occupied by a booking")
	ErrDateBelowMinimum  = errs.New("date is before the calendar lower bound")
	ErrScheduleFailure   = errs.New("schedule operation failed")
)

// SlotToggleResult reports what happened to a single slot.
type SlotToggleResult struct {
	Time    string `json:"time"`
	Blocked bool   `json:"blocked"`
	Error   string `json:"error,omitempty"`
}

type ToggleDayResult struct {
	Date    string             `json:"date"`
	Action  string             `json:"action"` // blocked / unblocked
	Results []SlotToggleResult `json:"results"`
}

type BlockedSlotStore interface {
	Insert(ctx context.Context, date time.Time, hour int, createdBy uuid.UUID) error
	Delete(ctx context.Context, date time.Time, hour int) (int64, error)
	ListHoursByDay(ctx context.Context, date time.Time) ([]int, error)
}

type OccupancyReadStore interface {
	OccupyingBookingsBetween(ctx context.Context, from, to time.Time) ([]queries.OccupiedSlotRow, error)
}

type ScheduleCommands interface {
	ToggleSlot(ctx context.Context, date time.Time, hour int, adminID uuid.UUID) (blocked bool, err error)
	ToggleDay(ctx context.Context, date time.Time, adminID uuid.UUID) (*ToggleDayResult, error)
}

type scheduleCommandsImpl struct {
	blockedSlots BlockedSlotStore
	occupancy    OccupancyReadStore
	clock        clock.Clock
	minDate      time.Time
}

func NewScheduleCommands(blockedSlots BlockedSlotStore, occupancy OccupancyReadStore, clk clock.Clock, minDate time.Time) ScheduleCommands {
	return &scheduleCommandsImpl{
		blockedSlots: blockedSlots,
		occupancy:    occupancy,
		clock:        clk,
		minDate:      minDate,
	}
}

// ToggleSlot flips a single slot between blocked and free. Slots occupied
// by a real booking and slots in the past are rejected.
func (s *scheduleCommandsImpl) ToggleSlot(ctx context.Context, date time.Time, hour int, adminID uuid.UUID) (bool, error) {
	slot, err := booking.NewSlot(date, hour)
	if err != nil {
		return false, errs.Mark(err, ErrSlotOutOfSchedule)
	}
	if err := s.validateSlot(slot); err != nil {
		return false, err
	}

	deleted, err := s.blockedSlots.Delete(ctx, slot.Date(), slot.Hour())
	if err != nil {
		return false, errs.Mark(err, ErrScheduleFailure)
	}
	if deleted > 0 {
		return false, nil
	}

	occupied, err := s.slotOccupied(ctx, slot)
	if err != nil {
		return false, errs.Mark(err, ErrScheduleFailure)
	}
	if occupied {
		return false, ErrSlotOccupied
	}

	if err := s.blockedSlots.Insert(ctx, slot.Date(), slot.Hour(), adminID); err != nil {
		// A concurrent toggle blocked it first; report it as blocked.
		if infra.IsKind(err, infra.KindDuplicateKey) {
			return true, nil
		}
		return false, errs.Mark(err, ErrScheduleFailure)
	}
	return true, nil
}

// ToggleDay blocks every free slot of the day, unless every slot is
// already blocked, in which case it unblocks them all. Each slot is an
// independent operation; one failure never aborts the rest.
func (s *scheduleCommandsImpl) ToggleDay(ctx context.Context, date time.Time, adminID uuid.UUID) (*ToggleDayResult, error) {
	if err := s.validateDay(date); err != nil {
		return nil, err
	}

	blockedHours, err := s.blockedSlots.ListHoursByDay(ctx, date)
	if err != nil {
		return nil, errs.Mark(err, ErrScheduleFailure)
	}
	blockedSet := make(map[int]bool, len(blockedHours))
	for _, h := range blockedHours {
		blockedSet[h] = true
	}

	result := &ToggleDayResult{Date: date.Format("2006-01-02")}

	if len(blockedHours) == booking.SlotCount() {
		result.Action = "unblocked"
		for _, hour := range booking.SlotTimes() {
			slot, _ := booking.NewSlot(date, hour)
			outcome := SlotToggleResult{Time: slot.TimeLabel(), Blocked: false}
			if _, err := s.blockedSlots.Delete(ctx, date, hour); err != nil {
				outcome.Blocked = true
				outcome.Error = err.Error()
			}
			result.Results = append(result.Results, outcome)
		}
		return result, nil
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	occupied, err := s.occupancy.OccupyingBookingsBetween(ctx, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, errs.Mark(err, ErrScheduleFailure)
	}

	result.Action = "blocked"
	now := s.clock.Now()
	for _, hour := range booking.SlotTimes() {
		slot, _ := booking.NewSlot(date, hour)
		outcome := SlotToggleResult{Time: slot.TimeLabel()}

		switch {
		case blockedSet[hour]:
			outcome.Blocked = true
		case slot.IsPast(now):
			outcome.Error = ErrSlotInPast.Error()
		case hourTakenByBooking(slot, occupied):
			outcome.Error = ErrSlotOccupied.Error()
		default:
			if err := s.blockedSlots.Insert(ctx, date, hour, adminID); err != nil && !infra.IsKind(err, infra.KindDuplicateKey) {
				outcome.Error = err.Error()
			} else {
				outcome.Blocked = true
			}
		}
		result.Results = append(result.Results, outcome)
	}
	return result, nil
}

func (s *scheduleCommandsImpl) validateSlot(slot booking.Slot) error {
	if slot.StartTime().Before(s.minDate) {
		return ErrDateBelowMinimum
	}
	if slot.IsPast(s.clock.Now()) {
		return ErrSlotInPast
	}
	return nil
}

func (s *scheduleCommandsImpl) validateDay(date time.Time) error {
	if date.Before(s.minDate) {
		return ErrDateBelowMinimum
	}
	dayEnd := time.Date(date.Year(), date.Month(), date.Day(), booking.LastSlotHour, 0, 0, 0, date.Location())
	if dayEnd.Before(s.clock.Now()) {
		return ErrSlotInPast
	}
	return nil
}

func (s *scheduleCommandsImpl) slotOccupied(ctx context.Context, slot booking.Slot) (bool, error) {
	occupied, err := s.occupancy.OccupyingBookingsBetween(ctx, slot.StartTime(), slot.StartTime().Add(time.Hour))
	if err != nil {
		return false, err
	}
	return hourTakenByBooking(slot, occupied), nil
}

func hourTakenByBooking(slot booking.Slot, occupied []queries.OccupiedSlotRow) bool {
	for _, o := range occupied {
		if booking.Overlaps(slot, o.StartTime, time.Duration(o.DurationMin)*time.Minute) {
			return true
		}
	}
	return false
}
