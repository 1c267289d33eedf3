package commands

import (
	"context"
	"time"

	"studio-backend/internal/infra/db"
	"studio-backend/internal/infra/gateway"

	"github.com/google/uuid"
)

type UserSnapshot struct {
	ID                uuid.UUID
	Name              string
	Email             string
	Phone             *string
	Role              string
	IsActive          bool
	GatewayCustomerID *string
}

type BookingSnapshot struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	StartTime   time.Time
	DurationMin int32
	Category    string
	Notes       *string
	Status      string
	PaymentID   *uuid.UUID
	CouponID    *uuid.UUID
	AmountCents *int64
}

type PlanCatalogSnapshot struct {
	ID                uuid.UUID
	Name              string
	MonthlyPriceCents int64
	YearlyPriceCents  int64
	Entitlements      []string
	Active            bool
}

type PaymentSnapshot struct {
	ID               uuid.UUID
	GatewayPaymentID string
	UserID           uuid.UUID
	AmountCents      int64
	Status           string
	Description      *string
	Kind             string
}

type PendingMetadataSnapshot struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	Payload          []byte
	GatewayPaymentID *string
	CreatedAt        time.Time
	ExpiresAt        time.Time
}

// PaymentGateway abstracts the external processor's REST API. The processor
// owns the payment state machine; we only create charges and react to
// webhooks.
type PaymentGateway interface {
	CreateCustomer(ctx context.Context, req gateway.CustomerRequest) (*gateway.Customer, error)
	GetCustomer(ctx context.Context, customerID string) (*gateway.Customer, error)
	CreateCharge(ctx context.Context, req gateway.ChargeRequest) (*gateway.Charge, error)
	CreateSubscription(ctx context.Context, req gateway.SubscriptionRequest) (*gateway.GatewaySubscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string) error
	RefundPayment(ctx context.Context, paymentID string, amountCents int64) error
}

// NotificationMessage is an outbound message parked for out-of-band
// delivery. Reconciliation only enqueues; a delivery worker drains the
// queue separately.
type NotificationMessage struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Channel  string
	Template string
	Payload  []byte
}

type NotificationStore interface {
	Enqueue(ctx context.Context, tx db.DBTX, msg NotificationMessage) error
}
