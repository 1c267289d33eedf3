package queries

import (
	"time"

	"github.com/google/uuid"
)

// Read models (DTO for read side)

type BookingView struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	UserEmail   string     `json:"user_email"`
	StartTime   time.Time  `json:"start_time"`
	DurationMin int32      `json:"duration_min"`
	Category    string     `json:"category"`
	Notes       *string    `json:"notes,omitempty"`
	Status      string     `json:"status"`
	PaymentID   *uuid.UUID `json:"payment_id,omitempty"`
	CouponID    *uuid.UUID `json:"coupon_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type BookingListItem struct {
	ID          uuid.UUID `json:"id"`
	StartTime   time.Time `json:"start_time"`
	DurationMin int32     `json:"duration_min"`
	Category    string    `json:"category"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type CouponView struct {
	ID              uuid.UUID  `json:"id"`
	Code            string     `json:"code"`
	Kind            string     `json:"kind"`
	AmountOffCents  *int64     `json:"amount_off_cents,omitempty"`
	PercentOff      *float64   `json:"percent_off,omitempty"`
	ServiceCategory *string    `json:"service_category,omitempty"`
	SubscriptionID  *uuid.UUID `json:"subscription_id,omitempty"`
	Status          string     `json:"status"` // derived: available / used / expired
	UsedAt          *time.Time `json:"used_at,omitempty"`
	ExpiresAt       time.Time  `json:"expires_at"`
	CreatedAt       time.Time  `json:"created_at"`
}

type PlanCatalogView struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	MonthlyPriceCents int64     `json:"monthly_price_cents"`
	YearlyPriceCents  int64     `json:"yearly_price_cents"`
	Entitlements      []string  `json:"entitlements"`
	Active            bool      `json:"active"`
}

type SubscriptionView struct {
	ID          uuid.UUID `json:"id"`
	PlanID      uuid.UUID `json:"plan_id"`
	PlanName    string    `json:"plan_name"`
	Cycle       string    `json:"cycle"`
	AmountCents int64     `json:"amount_cents"`
	Status      string    `json:"status"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	CreatedAt   time.Time `json:"created_at"`
}

type AuthorizedUserView struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	IsActive bool      `json:"is_active"`
}

type FaqEntryView struct {
	ID        uuid.UUID `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Position  int32     `json:"position"`
	Published bool      `json:"published"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ChatMessageView struct {
	ID        uuid.UUID `json:"id"`
	ThreadID  uuid.UUID `json:"thread_id"`
	Sender    string    `json:"sender"` // customer / agent / assistant
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatThreadView struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	UserEmail     string    `json:"user_email"`
	Mode          string    `json:"mode"` // assistant / human
	LastMessageAt time.Time `json:"last_message_at"`
}
