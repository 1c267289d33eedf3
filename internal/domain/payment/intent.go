package payment

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidIntent     = errors.New("invalid payment intent payload")
	ErrUnknownIntentKind = errors.New("unknown payment intent kind")
)

type IntentKind string

const (
	IntentBooking IntentKind = "booking"
	IntentPlan    IntentKind = "plan"
)

// Intent is the customer's original request, captured before the redirect
// to the processor and recovered from the webhook. It is a tagged union:
// exactly one of Booking or Plan is set, selected by Kind.
type Intent struct {
	Kind    IntentKind     `json:"kind"`
	Booking *BookingIntent `json:"booking,omitempty"`
	Plan    *PlanIntent    `json:"plan,omitempty"`
}

type BookingIntent struct {
	BookingID  *uuid.UUID    `json:"booking_id,omitempty"`
	StartTime  time.Time     `json:"start_time"`
	Duration   time.Duration `json:"duration"`
	Category   string        `json:"category"`
	Notes      string        `json:"notes,omitempty"`
	CouponCode *string       `json:"coupon_code,omitempty"`
}

type PlanIntent struct {
	PlanID      uuid.UUID `json:"plan_id"`
	Cycle       string    `json:"cycle"`
	AmountCents int64     `json:"amount_cents"`
}

func NewBookingIntent(b BookingIntent) Intent {
	return Intent{Kind: IntentBooking, Booking: &b}
}

func NewPlanIntent(p PlanIntent) Intent {
	return Intent{Kind: IntentPlan, Plan: &p}
}

func (i Intent) Validate() error {
	switch i.Kind {
	case IntentBooking:
		if i.Booking == nil || i.Plan != nil {
			return ErrInvalidIntent
		}
	case IntentPlan:
		if i.Plan == nil || i.Booking != nil {
			return ErrInvalidIntent
		}
	default:
		return ErrUnknownIntentKind
	}
	return nil
}

func (i Intent) Encode() ([]byte, error) {
	if err := i.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(i)
}

func DecodeIntent(data []byte) (Intent, error) {
	var i Intent
	if err := json.Unmarshal(data, &i); err != nil {
		return Intent{}, ErrInvalidIntent
	}
	if err := i.Validate(); err != nil {
		return Intent{}, err
	}
	return i, nil
}
