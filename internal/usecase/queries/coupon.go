package queries

import (
	"context"
	"time"

	"studio-backend/internal/pkg/clock"

	"github.com/google/uuid"
)

type CouponReadStore interface {
	ListByUser(ctx context.Context, userID uuid.UUID, now time.Time) ([]*CouponView, error)
}

type CouponQueries interface {
	ListMine(ctx context.Context, userID uuid.UUID) ([]*CouponView, error)
}

type couponQueriesImpl struct {
	store CouponReadStore
	clock clock.Clock
}

func NewCouponQueries(store CouponReadStore, clk clock.Clock) CouponQueries {
	return &couponQueriesImpl{store: store, clock: clk}
}

func (q *couponQueriesImpl) ListMine(ctx context.Context, userID uuid.UUID) ([]*CouponView, error) {
	return q.store.ListByUser(ctx, userID, q.clock.Now())
}
