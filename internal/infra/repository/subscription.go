package repository

import (
	"context"
	"time"

	"studio-backend/internal/domain/plan"
	"studio-backend/internal/infra"
	"studio-backend/internal/infra/db"
	"studio-backend/internal/pkg/pgconv"
	"studio-backend/internal/usecase/commands"
	"studio-backend/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type SubscriptionRepository struct {
	db db.DBTX
}

func NewSubscriptionRepository(pool db.DBTX) *SubscriptionRepository {
	return &SubscriptionRepository{db: pool}
}

const createSubscriptionSQL = `
INSERT INTO subscriptions (id, user_id, plan_id, cycle, amount_cents, status, start_date, end_date,
                           gateway_subscription_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
RETURNING id
`

func (r *SubscriptionRepository) Create(ctx context.Context, tx db.DBTX, s *plan.Subscription) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.QueryRow(ctx, createSubscriptionSQL,
		s.ID(), s.UserID(), s.PlanID(), s.Cycle().String(), s.AmountCents(),
		s.Status().String(), s.StartDate(), s.EndDate(),
		pgconv.TextFromPtr(s.GatewaySubID()),
	).Scan(&id)
	if err != nil {
		if pgconv.IsUniqueViolation(err) {
			return uuid.Nil, infra.WrapRepoErr("subscription already exists for user and plan", err, infra.KindDuplicateKey)
		}
		return uuid.Nil, infra.WrapRepoErr("failed to create subscription", err)
	}
	return id, nil
}

const updateSubscriptionSQL = `
UPDATE subscriptions
SET cycle = $2, amount_cents = $3, status = $4, start_date = $5, end_date = $6,
    gateway_subscription_id = $7, updated_at = now()
WHERE id = $1
`

func (r *SubscriptionRepository) Update(ctx context.Context, tx db.DBTX, s *plan.Subscription) error {
	_, err := tx.Exec(ctx, updateSubscriptionSQL,
		s.ID(), s.Cycle().String(), s.AmountCents(), s.Status().String(),
		s.StartDate(), s.EndDate(), pgconv.TextFromPtr(s.GatewaySubID()),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update subscription", err)
	}
	return nil
}

const subscriptionColumns = `
id, user_id, plan_id, cycle, amount_cents, status, start_date, end_date,
gateway_subscription_id, created_at, updated_at
`

func (r *SubscriptionRepository) FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*plan.Subscription, error) {
	row := tx.QueryRow(ctx, "SELECT "+subscriptionColumns+" FROM subscriptions WHERE id = $1", id)
	return scanSubscription(row)
}

func (r *SubscriptionRepository) FindByUserAndPlan(ctx context.Context, tx db.DBTX, userID, planID uuid.UUID) (*plan.Subscription, error) {
	row := tx.QueryRow(ctx,
		"SELECT "+subscriptionColumns+" FROM subscriptions WHERE user_id = $1 AND plan_id = $2", userID, planID)
	return scanSubscription(row)
}

func (r *SubscriptionRepository) FindByGatewaySubID(ctx context.Context, tx db.DBTX, gatewaySubID string) (*plan.Subscription, error) {
	row := tx.QueryRow(ctx,
		"SELECT "+subscriptionColumns+" FROM subscriptions WHERE gateway_subscription_id = $1", gatewaySubID)
	return scanSubscription(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row rowScanner) (*plan.Subscription, error) {
	var (
		id, userID, planID uuid.UUID
		cycle, status      string
		amountCents        int64
		startDate, endDate time.Time
		gatewaySubID       pgtype.Text
		createdAt          time.Time
		updatedAt          time.Time
	)
	err := row.Scan(
		&id, &userID, &planID, &cycle, &amountCents, &status,
		&startDate, &endDate, &gatewaySubID, &createdAt, &updatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("subscription not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to scan subscription", err)
	}

	return plan.ReconstructSubscription(
		id, userID, planID,
		plan.Cycle(cycle), amountCents, plan.Status(status),
		startDate, endDate,
		pgconv.StringPtrFromPgtype(gatewaySubID),
		createdAt, updatedAt,
	), nil
}

// --- plan catalog ---

const findPlanCatalogSQL = `
SELECT id, name, monthly_price_cents, yearly_price_cents, entitlements, active
FROM plan_catalog
WHERE id = $1
`

func (r *SubscriptionRepository) FindPlan(ctx context.Context, id uuid.UUID) (*commands.PlanCatalogSnapshot, error) {
	var snap commands.PlanCatalogSnapshot
	err := r.db.QueryRow(ctx, findPlanCatalogSQL, id).Scan(
		&snap.ID, &snap.Name, &snap.MonthlyPriceCents, &snap.YearlyPriceCents,
		&snap.Entitlements, &snap.Active,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("plan not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find plan", err)
	}
	return &snap, nil
}

const listPlanCatalogSQL = `
SELECT id, name, monthly_price_cents, yearly_price_cents, entitlements, active
FROM plan_catalog
WHERE active = true
ORDER BY monthly_price_cents
`

func (r *SubscriptionRepository) ListPlans(ctx context.Context) ([]*queries.PlanCatalogView, error) {
	rows, err := r.db.Query(ctx, listPlanCatalogSQL)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list plans", err)
	}
	defer rows.Close()

	var out []*queries.PlanCatalogView
	for rows.Next() {
		var view queries.PlanCatalogView
		if err := rows.Scan(&view.ID, &view.Name, &view.MonthlyPriceCents, &view.YearlyPriceCents, &view.Entitlements, &view.Active); err != nil {
			return nil, infra.WrapRepoErr("failed to scan plan", err)
		}
		out = append(out, &view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate plans", err)
	}
	return out, nil
}

const subscriptionViewsByUserSQL = `
SELECT s.id, s.plan_id, p.name, s.cycle, s.amount_cents, s.status, s.start_date, s.end_date, s.created_at
FROM subscriptions s
JOIN plan_catalog p ON p.id = s.plan_id
WHERE s.user_id = $1
ORDER BY s.created_at DESC
`

func (r *SubscriptionRepository) ListViewsByUser(ctx context.Context, userID uuid.UUID) ([]*queries.SubscriptionView, error) {
	rows, err := r.db.Query(ctx, subscriptionViewsByUserSQL, userID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list subscriptions", err)
	}
	defer rows.Close()

	var out []*queries.SubscriptionView
	for rows.Next() {
		var view queries.SubscriptionView
		err := rows.Scan(&view.ID, &view.PlanID, &view.PlanName, &view.Cycle,
			&view.AmountCents, &view.Status, &view.StartDate, &view.EndDate, &view.CreatedAt)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan subscription view", err)
		}
		out = append(out, &view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate subscriptions", err)
	}
	return out, nil
}
