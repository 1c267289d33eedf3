package coupon

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrCouponAlreadyUsed = errors.New("coupon already used")
	ErrCouponExpired     = errors.New("coupon has expired")
	ErrInvalidKind       = errors.New("invalid coupon kind")
)

type Kind string

const (
	// KindPlan coupons are issued in batches when a subscription activates
	// or renews, each granting one service from the plan's entitlements.
	KindPlan Kind = "plan"
	// KindRefund coupons carry a fixed monetary credit issued when a paid
	// booking or plan is canceled with the refund-to-coupon choice.
	KindRefund Kind = "refund"
)

func (k Kind) IsValid() bool {
	return k == KindPlan || k == KindRefund
}

// DisplayStatus is derived at read time, never stored.
type DisplayStatus string

const (
	DisplayAvailable DisplayStatus = "available"
	DisplayUsed      DisplayStatus = "used"
	DisplayExpired   DisplayStatus = "expired"
)

type Coupon struct {
	id              uuid.UUID
	code            Code
	kind            Kind
	discount        Discount
	userID          uuid.UUID
	serviceCategory *string
	subscriptionID  *uuid.UUID
	used            bool
	usedAt          *time.Time
	usedBy          *uuid.UUID
	bookingID       *uuid.UUID
	expiresAt       time.Time
	createdAt       time.Time
	updatedAt       time.Time
}

func NewCoupon(
	kind Kind,
	discount Discount,
	userID uuid.UUID,
	serviceCategory *string,
	subscriptionID *uuid.UUID,
	expiresAt time.Time,
) (*Coupon, error) {
	if !kind.IsValid() {
		return nil, ErrInvalidKind
	}

	return &Coupon{
		id:              uuid.New(),
		code:            GenerateCode(),
		kind:            kind,
		discount:        discount,
		userID:          userID,
		serviceCategory: serviceCategory,
		subscriptionID:  subscriptionID,
		expiresAt:       expiresAt,
	}, nil
}

func ReconstructCoupon(
	id uuid.UUID,
	code Code,
	kind Kind,
	discount Discount,
	userID uuid.UUID,
	serviceCategory *string,
	subscriptionID *uuid.UUID,
	used bool,
	usedAt *time.Time,
	usedBy, bookingID *uuid.UUID,
	expiresAt time.Time,
	createdAt, updatedAt time.Time,
) *Coupon {
	return &Coupon{
		id:              id,
		code:            code,
		kind:            kind,
		discount:        discount,
		userID:          userID,
		serviceCategory: serviceCategory,
		subscriptionID:  subscriptionID,
		used:            used,
		usedAt:          usedAt,
		usedBy:          usedBy,
		bookingID:       bookingID,
		expiresAt:       expiresAt,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// ValidateRedemption checks used and expiry but does not mutate; the
// actual flip of the used flag must happen atomically in the store.
func (c *Coupon) ValidateRedemption(now time.Time) error {
	if c.used {
		return ErrCouponAlreadyUsed
	}
	if now.After(c.expiresAt) {
		return ErrCouponExpired
	}
	return nil
}

func (c *Coupon) StatusAt(now time.Time) DisplayStatus {
	if c.used {
		return DisplayUsed
	}
	if now.After(c.expiresAt) {
		return DisplayExpired
	}
	return DisplayAvailable
}

func (c *Coupon) ApplyDiscount(basePriceCents int64) int64 {
	return c.discount.Apply(basePriceCents)
}

func (c *Coupon) ID() uuid.UUID              { return c.id }
func (c *Coupon) Code() Code                 { return c.code }
func (c *Coupon) Kind() Kind                 { return c.kind }
func (c *Coupon) Discount() Discount         { return c.discount }
func (c *Coupon) UserID() uuid.UUID          { return c.userID }
func (c *Coupon) ServiceCategory() *string   { return c.serviceCategory }
func (c *Coupon) SubscriptionID() *uuid.UUID { return c.subscriptionID }
func (c *Coupon) Used() bool                 { return c.used }
func (c *Coupon) UsedAt() *time.Time         { return c.usedAt }
func (c *Coupon) UsedBy() *uuid.UUID         { return c.usedBy }
func (c *Coupon) BookingID() *uuid.UUID      { return c.bookingID }
func (c *Coupon) ExpiresAt() time.Time       { return c.expiresAt }
func (c *Coupon) CreatedAt() time.Time       { return c.createdAt }
func (c *Coupon) UpdatedAt() time.Time       { return c.updatedAt }
