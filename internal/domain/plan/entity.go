package plan

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidCycle    = errors.New("invalid billing cycle")
	ErrInvalidAmount   = errors.New("plan amount cannot be negative")
	ErrAlreadyCanceled = errors.New("plan is already canceled")
	ErrNotActive       = errors.New("plan is not active")
)

// Subscription is one user's enrollment in a catalog plan. The external
// processor owns billing; this record tracks the entitlement window.
type Subscription struct {
	id           uuid.UUID
	userID       uuid.UUID
	planID       uuid.UUID
	cycle        Cycle
	amountCents  int64
	status       Status
	startDate    time.Time
	endDate      time.Time
	gatewaySubID *string
	createdAt    time.Time
	updatedAt    time.Time
}

func Activate(userID, planID uuid.UUID, cycle Cycle, amountCents int64, start time.Time) (*Subscription, error) {
	if !cycle.IsValid() {
		return nil, ErrInvalidCycle
	}
	if amountCents < 0 {
		return nil, ErrInvalidAmount
	}

	return &Subscription{
		id:          uuid.New(),
		userID:      userID,
		planID:      planID,
		cycle:       cycle,
		amountCents: amountCents,
		status:      StatusActive,
		startDate:   start,
		endDate:     AddCycle(start, cycle),
	}, nil
}

func ReconstructSubscription(
	id, userID, planID uuid.UUID,
	cycle Cycle,
	amountCents int64,
	status Status,
	startDate, endDate time.Time,
	gatewaySubID *string,
	createdAt, updatedAt time.Time,
) *Subscription {
	return &Subscription{
		id:           id,
		userID:       userID,
		planID:       planID,
		cycle:        cycle,
		amountCents:  amountCents,
		status:       status,
		startDate:    startDate,
		endDate:      endDate,
		gatewaySubID: gatewaySubID,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

// Renew extends the entitlement by one further period computed from the
// current end date, not from the renewal payment's arrival time.
func (s *Subscription) Renew() error {
	if s.status != StatusActive {
		return ErrNotActive
	}
	s.endDate = AddCycle(s.endDate, s.cycle)
	return nil
}

func (s *Subscription) Cancel() error {
	if s.status == StatusCanceled {
		return ErrAlreadyCanceled
	}
	s.status = StatusCanceled
	return nil
}

// Reactivate resets the entitlement window in place. Used when a payment
// for an already-known (userID, planID) pair arrives again.
func (s *Subscription) Reactivate(cycle Cycle, amountCents int64, start time.Time) error {
	if !cycle.IsValid() {
		return ErrInvalidCycle
	}
	s.cycle = cycle
	s.amountCents = amountCents
	s.status = StatusActive
	s.startDate = start
	s.endDate = AddCycle(start, cycle)
	return nil
}

func (s *Subscription) BindGatewaySubscription(gatewaySubID string) {
	id := gatewaySubID
	s.gatewaySubID = &id
}

func (s *Subscription) IsActive() bool {
	return s.status == StatusActive
}

func (s *Subscription) ID() uuid.UUID         { return s.id }
func (s *Subscription) UserID() uuid.UUID     { return s.userID }
func (s *Subscription) PlanID() uuid.UUID     { return s.planID }
func (s *Subscription) Cycle() Cycle          { return s.cycle }
func (s *Subscription) AmountCents() int64    { return s.amountCents }
func (s *Subscription) Status() Status        { return s.status }
func (s *Subscription) StartDate() time.Time  { return s.startDate }
func (s *Subscription) EndDate() time.Time    { return s.endDate }
func (s *Subscription) GatewaySubID() *string { return s.gatewaySubID }
func (s *Subscription) CreatedAt() time.Time  { return s.createdAt }
func (s *Subscription) UpdatedAt() time.Time  { return s.updatedAt }
