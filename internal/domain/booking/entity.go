package booking

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidStatus     = errors.New("invalid booking status")
	ErrInvalidTransition = errors.New("booking status transition not allowed")
	ErrInvalidDuration   = errors.New("booking duration must be positive")
)

type Booking struct {
	id        uuid.UUID
	userID    uuid.UUID
	startTime time.Time
	duration  time.Duration
	category  string
	notes     string
	status    Status
	paymentID *uuid.UUID
	couponID  *uuid.UUID
	createdAt time.Time
	updatedAt time.Time
}

func NewBooking(
	userID uuid.UUID,
	startTime time.Time,
	duration time.Duration,
	category, notes string,
	status Status,
) (*Booking, error) {
	if duration <= 0 {
		return nil, ErrInvalidDuration
	}
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	return &Booking{
		id:        uuid.New(),
		userID:    userID,
		startTime: startTime,
		duration:  duration,
		category:  category,
		notes:     notes,
		status:    status,
	}, nil
}

func ReconstructBooking(
	id, userID uuid.UUID,
	startTime time.Time,
	duration time.Duration,
	category, notes string,
	status Status,
	paymentID, couponID *uuid.UUID,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:        id,
		userID:    userID,
		startTime: startTime,
		duration:  duration,
		category:  category,
		notes:     notes,
		status:    status,
		paymentID: paymentID,
		couponID:  couponID,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// Transition moves the booking to next, enforcing the transition table.
// Bookings are never hard-deleted; cancellation is itself a transition.
func (b *Booking) Transition(next Status) error {
	if !next.IsValid() {
		return ErrInvalidStatus
	}
	if !b.status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	b.status = next
	return nil
}

func (b *Booking) AttachPayment(paymentID uuid.UUID) {
	id := paymentID
	b.paymentID = &id
}

func (b *Booking) AttachCoupon(couponID uuid.UUID) {
	id := couponID
	b.couponID = &id
}

func (b *Booking) OccupiesSlot() bool {
	return b.status.Occupies()
}

func (b *Booking) EndTime() time.Time {
	return b.startTime.Add(b.duration)
}

func (b *Booking) ConflictsWith(otherStart time.Time, otherDuration time.Duration) bool {
	return IntervalsOverlap(b.startTime, b.duration, otherStart, otherDuration)
}

func (b *Booking) ID() uuid.UUID           { return b.id }
func (b *Booking) UserID() uuid.UUID       { return b.userID }
func (b *Booking) StartTime() time.Time    { return b.startTime }
func (b *Booking) Duration() time.Duration { return b.duration }
func (b *Booking) Category() string        { return b.category }
func (b *Booking) Notes() string           { return b.notes }
func (b *Booking) Status() Status          { return b.status }
func (b *Booking) PaymentID() *uuid.UUID   { return b.paymentID }
func (b *Booking) CouponID() *uuid.UUID    { return b.couponID }
func (b *Booking) CreatedAt() time.Time    { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time    { return b.updatedAt }
