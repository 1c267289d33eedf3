package repository

import (
	"context"
	"strings"
	"time"

	"studio-backend/internal/domain/coupon"
	"studio-backend/internal/infra"
	"studio-backend/internal/infra/db"
	"studio-backend/internal/pkg/pgconv"
	"studio-backend/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type CouponRepository struct {
	db db.DBTX
}

func NewCouponRepository(pool db.DBTX) *CouponRepository {
	return &CouponRepository{db: pool}
}

const createCouponSQL = `
INSERT INTO coupons (id, code, kind, amount_off_cents, percent_off, user_id, service_category,
                     subscription_id, used, expires_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, false, $9, now(), now())
`

func (r *CouponRepository) Create(ctx context.Context, tx db.DBTX, c *coupon.Coupon) error {
	var amountOff *int64
	var percentOff *float64
	if c.Discount().IsFixed() {
		v := c.Discount().AmountOffCents()
		amountOff = &v
	}
	if c.Discount().IsPercentage() {
		v := c.Discount().PercentOff()
		percentOff = &v
	}

	_, err := tx.Exec(ctx, createCouponSQL,
		c.ID(), c.Code().String(), string(c.Kind()), amountOff, percentOff,
		c.UserID(), pgconv.TextFromPtr(c.ServiceCategory()),
		pgconv.UUIDFromPtr(c.SubscriptionID()), c.ExpiresAt(),
	)
	if err != nil {
		if pgconv.IsUniqueViolation(err) {
			return infra.WrapRepoErr("coupon code collision", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to create coupon", err)
	}
	return nil
}

const findCouponByCodeSQL = `
SELECT id, code, kind, amount_off_cents, percent_off, user_id, service_category,
       subscription_id, used, used_at, used_by, booking_id, expires_at, created_at, updated_at
FROM coupons
WHERE code = $1
`

func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	return r.findByCode(ctx, r.db, code)
}

func (r *CouponRepository) FindByCodeTx(ctx context.Context, tx db.DBTX, code string) (*coupon.Coupon, error) {
	return r.findByCode(ctx, tx, code)
}

func (r *CouponRepository) findByCode(ctx context.Context, q db.DBTX, code string) (*coupon.Coupon, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))

	var (
		id              uuid.UUID
		codeCol         string
		kind            string
		amountOff       pgtype.Int8
		percentOff      pgtype.Float8
		userID          uuid.UUID
		serviceCategory pgtype.Text
		subscriptionID  pgtype.UUID
		used            bool
		usedAt          pgtype.Timestamptz
		usedBy          pgtype.UUID
		bookingID       pgtype.UUID
		expiresAt       time.Time
		createdAt       time.Time
		updatedAt       time.Time
	)
	err := q.QueryRow(ctx, findCouponByCodeSQL, normalized).Scan(
		&id, &codeCol, &kind, &amountOff, &percentOff, &userID, &serviceCategory,
		&subscriptionID, &used, &usedAt, &usedBy, &bookingID, &expiresAt, &createdAt, &updatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("coupon not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find coupon by code", err)
	}

	var amountOffPtr *int64
	if amountOff.Valid {
		amountOffPtr = &amountOff.Int64
	}
	var percentOffPtr *float64
	if percentOff.Valid {
		percentOffPtr = &percentOff.Float64
	}
	discount, err := coupon.NewDiscount(amountOffPtr, percentOffPtr)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to convert coupon discount", err)
	}

	return coupon.ReconstructCoupon(
		id, coupon.Code(codeCol), coupon.Kind(kind), discount, userID,
		pgconv.StringPtrFromPgtype(serviceCategory),
		pgconv.UUIDPtrFromPgtype(subscriptionID),
		used,
		pgconv.TimePtrFromPgtype(usedAt),
		pgconv.UUIDPtrFromPgtype(usedBy),
		pgconv.UUIDPtrFromPgtype(bookingID),
		expiresAt, createdAt, updatedAt,
	), nil
}

const redeemCouponSQL = `
UPDATE coupons
SET used = true, used_at = $4, used_by = $2, booking_id = $3, updated_at = now()
WHERE code = $1 AND used = false AND expires_at >= $4
`

// Redeem is the single atomic compare-and-set on used. Zero rows affected
// means the coupon was already used, expired, or never existed; the caller
// distinguishes by re-reading.
func (r *CouponRepository) Redeem(ctx context.Context, tx db.DBTX, code string, userID, bookingID uuid.UUID, now time.Time) (int64, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	tag, err := tx.Exec(ctx, redeemCouponSQL, normalized, userID, bookingID, now)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to redeem coupon", err)
	}
	return tag.RowsAffected(), nil
}

const voidCouponsBySubscriptionSQL = `
UPDATE coupons
SET expires_at = $2, updated_at = now()
WHERE subscription_id = $1 AND used = false AND expires_at > $2
`

// VoidBySubscription makes unused plan coupons non-redeemable by expiring
// them at the cancellation instant. Rows stay in the ledger.
func (r *CouponRepository) VoidBySubscription(ctx context.Context, tx db.DBTX, subscriptionID uuid.UUID, at time.Time) (int64, error) {
	tag, err := tx.Exec(ctx, voidCouponsBySubscriptionSQL, subscriptionID, at)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to void plan coupons", err)
	}
	return tag.RowsAffected(), nil
}

const couponsByUserSQL = `
SELECT id, code, kind, amount_off_cents, percent_off, service_category, subscription_id,
       used, used_at, expires_at, created_at
FROM coupons
WHERE user_id = $1
ORDER BY created_at DESC
`

func (r *CouponRepository) ListByUser(ctx context.Context, userID uuid.UUID, now time.Time) ([]*queries.CouponView, error) {
	rows, err := r.db.Query(ctx, couponsByUserSQL, userID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list coupons", err)
	}
	defer rows.Close()

	var out []*queries.CouponView
	for rows.Next() {
		var (
			view            queries.CouponView
			amountOff       pgtype.Int8
			percentOff      pgtype.Float8
			serviceCategory pgtype.Text
			subscriptionID  pgtype.UUID
			used            bool
			usedAt          pgtype.Timestamptz
		)
		err := rows.Scan(
			&view.ID, &view.Code, &view.Kind, &amountOff, &percentOff,
			&serviceCategory, &subscriptionID, &used, &usedAt, &view.ExpiresAt, &view.CreatedAt,
		)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan coupon", err)
		}
		if amountOff.Valid {
			v := amountOff.Int64
			view.AmountOffCents = &v
		}
		if percentOff.Valid {
			v := percentOff.Float64
			view.PercentOff = &v
		}
		view.ServiceCategory = pgconv.StringPtrFromPgtype(serviceCategory)
		view.SubscriptionID = pgconv.UUIDPtrFromPgtype(subscriptionID)
		view.UsedAt = pgconv.TimePtrFromPgtype(usedAt)

		// Display status is derived, never stored (see coupon.DisplayStatus).
		switch {
		case used:
			view.Status = string(coupon.DisplayUsed)
		case now.After(view.ExpiresAt):
			view.Status = string(coupon.DisplayExpired)
		default:
			view.Status = string(coupon.DisplayAvailable)
		}

		out = append(out, &view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate coupons", err)
	}
	return out, nil
}
