package queries

import (
	"context"

	"github.com/google/uuid"
)

type PlanReadStore interface {
	ListPlans(ctx context.Context) ([]*PlanCatalogView, error)
	ListViewsByUser(ctx context.Context, userID uuid.UUID) ([]*SubscriptionView, error)
}

type PlanQueries interface {
	ListPlans(ctx context.Context) ([]*PlanCatalogView, error)
	ListMySubscriptions(ctx context.Context, userID uuid.UUID) ([]*SubscriptionView, error)
}

type planQueriesImpl struct {
	store PlanReadStore
}

func NewPlanQueries(store PlanReadStore) PlanQueries {
	return &planQueriesImpl{store: store}
}

func (q *planQueriesImpl) ListPlans(ctx context.Context) ([]*PlanCatalogView, error) {
	return q.store.ListPlans(ctx)
}

func (q *planQueriesImpl) ListMySubscriptions(ctx context.Context, userID uuid.UUID) ([]*SubscriptionView, error) {
	return q.store.ListViewsByUser(ctx, userID)
}
