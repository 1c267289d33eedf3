package commands

import (
	"context"
	"errors"
	"time"

	"studio-backend/internal/domain/coupon"
	"studio-backend/internal/domain/plan"
	"studio-backend/internal/infra"
	"studio-backend/internal/infra/db"
	"studio-backend/internal/pkg/clock"
	"studio-backend/internal/pkg/errs"
	"studio-backend/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrCouponNotFound    = errs.New("coupon not found")
	ErrCouponAlreadyUsed = errs.New("coupon already used")
	ErrCouponExpired     = errs.New("coupon expired")
	ErrCouponFailure     = errs.New("coupon operation failed")
)

// Plan coupons stay redeemable for one month past the plan period they
// were issued for.
const planCouponGraceMonths = 1

type CouponStore interface {
	Create(ctx context.Context, tx db.DBTX, c *coupon.Coupon) error
	FindByCode(ctx context.Context, code string) (*coupon.Coupon, error)
	FindByCodeTx(ctx context.Context, tx db.DBTX, code string) (*coupon.Coupon, error)
	Redeem(ctx context.Context, tx db.DBTX, code string, userID, bookingID uuid.UUID, now time.Time) (int64, error)
	VoidBySubscription(ctx context.Context, tx db.DBTX, subscriptionID uuid.UUID, at time.Time) (int64, error)
}

type CouponCommands interface {
	Redeem(ctx context.Context, code string, userID, bookingID uuid.UUID) error
	RedeemTx(ctx context.Context, tx db.DBTX, code string, userID, bookingID uuid.UUID) error
	IssuePlanCoupons(ctx context.Context, userID, subscriptionID uuid.UUID, entitlements []string, planEnd time.Time) ([]string, error)
	IssueRefundCoupon(ctx context.Context, userID uuid.UUID, amountCents int64, expiresAt time.Time) (string, error)
	VoidPlanCoupons(ctx context.Context, tx db.DBTX, subscriptionID uuid.UUID) (int64, error)
}

type couponCommandsImpl struct {
	coupons CouponStore
	pool    *pgxpool.Pool
	clock   clock.Clock
}

func NewCouponCommands(coupons CouponStore, pool *pgxpool.Pool, clk clock.Clock) CouponCommands {
	return &couponCommandsImpl{coupons: coupons, pool: pool, clock: clk}
}

func (c *couponCommandsImpl) Redeem(ctx context.Context, code string, userID, bookingID uuid.UUID) error {
	_, err := shared.RunInTx(ctx, c.pool, func(tx db.DBTX) (struct{}, error) {
		return struct{}{}, c.RedeemTx(ctx, tx, code, userID, bookingID)
	})
	return err
}

// RedeemTx flips the used flag with a compare-and-set; two concurrent
// redemptions of the same code cannot both succeed. On a zero-row update
// the coupon is re-read to tell AlreadyUsed, Expired and NotFound apart.
func (c *couponCommandsImpl) RedeemTx(ctx context.Context, tx db.DBTX, code string, userID, bookingID uuid.UUID) error {
	now := c.clock.Now()

	existing, err := c.coupons.FindByCodeTx(ctx, tx, code)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return ErrCouponNotFound
		}
		return errs.Mark(err, ErrCouponFailure)
	}
	if existing.UserID() != userID {
		// A foreign code behaves exactly like a nonexistent one.
		return ErrCouponNotFound
	}

	affected, err := c.coupons.Redeem(ctx, tx, code, userID, bookingID, now)
	if err != nil {
		return errs.Mark(err, ErrCouponFailure)
	}
	if affected > 0 {
		return nil
	}

	if err := existing.ValidateRedemption(now); err != nil {
		switch {
		case errors.Is(err, coupon.ErrCouponAlreadyUsed):
			return ErrCouponAlreadyUsed
		case errors.Is(err, coupon.ErrCouponExpired):
			return ErrCouponExpired
		}
	}
	// Lost a race with a concurrent redemption of the same code.
	return ErrCouponAlreadyUsed
}

// IssuePlanCoupons creates one 100%-off coupon per plan entitlement.
// Issuance is best-effort per coupon; one failure does not stop the rest.
func (c *couponCommandsImpl) IssuePlanCoupons(ctx context.Context, userID, subscriptionID uuid.UUID, entitlements []string, planEnd time.Time) ([]string, error) {
	discount, err := coupon.NewPercentageDiscount(100)
	if err != nil {
		return nil, errs.Mark(err, ErrCouponFailure)
	}
	expiresAt := planEnd
	for i := 0; i < planCouponGraceMonths; i++ {
		expiresAt = plan.AddCycle(expiresAt, plan.CycleMonthly)
	}

	var (
		codes   []string
		lastErr error
	)
	for _, category := range entitlements {
		category := category
		entity, err := coupon.NewCoupon(coupon.KindPlan, discount, userID, &category, &subscriptionID, expiresAt)
		if err != nil {
			lastErr = err
			continue
		}
		if err := c.coupons.Create(ctx, c.pool, entity); err != nil {
			lastErr = err
			continue
		}
		codes = append(codes, entity.Code().String())
	}
	if lastErr != nil {
		return codes, errs.Mark(lastErr, ErrCouponFailure)
	}
	return codes, nil
}

func (c *couponCommandsImpl) IssueRefundCoupon(ctx context.Context, userID uuid.UUID, amountCents int64, expiresAt time.Time) (string, error) {
	discount, err := coupon.NewFixedDiscount(amountCents)
	if err != nil {
		return "", errs.Mark(err, ErrCouponFailure)
	}
	entity, err := coupon.NewCoupon(coupon.KindRefund, discount, userID, nil, nil, expiresAt)
	if err != nil {
		return "", errs.Mark(err, ErrCouponFailure)
	}
	if err := c.coupons.Create(ctx, c.pool, entity); err != nil {
		return "", errs.Mark(err, ErrCouponFailure)
	}
	return entity.Code().String(), nil
}

// VoidPlanCoupons expires all unused coupons tied to a subscription as of
// now. The rows stay in the ledger for audit; the read-time status
// derivation reports them as expired.
func (c *couponCommandsImpl) VoidPlanCoupons(ctx context.Context, tx db.DBTX, subscriptionID uuid.UUID) (int64, error) {
	voided, err := c.coupons.VoidBySubscription(ctx, tx, subscriptionID, c.clock.Now())
	if err != nil {
		return 0, errs.Mark(err, ErrCouponFailure)
	}
	return voided, nil
}
