package repository

import (
	"context"

	"studio-backend/internal/infra"
	"studio-backend/internal/infra/db"
	"studio-backend/internal/pkg/pgconv"
	"studio-backend/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type PaymentRepository struct {
	db db.DBTX
}

func NewPaymentRepository(pool db.DBTX) *PaymentRepository {
	return &PaymentRepository{db: pool}
}

const tryInsertPaymentSQL = `
INSERT INTO payments (id, gateway_payment_id, user_id, amount_cents, status, description, kind, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
RETURNING id
`

// TryInsert is the idempotency gate for webhook processing. The unique
// constraint on gateway_payment_id makes the check-and-insert atomic, so a
// replayed event surfaces as KindDuplicateKey instead of a second row.
func (r *PaymentRepository) TryInsert(ctx context.Context, tx db.DBTX, snap commands.PaymentSnapshot) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.QueryRow(ctx, tryInsertPaymentSQL,
		snap.ID, snap.GatewayPaymentID, snap.UserID, snap.AmountCents,
		snap.Status, pgconv.TextFromPtr(snap.Description), snap.Kind,
	).Scan(&id)
	if err != nil {
		if pgconv.IsUniqueViolation(err) {
			return uuid.Nil, infra.WrapRepoErr("payment event already processed", err, infra.KindDuplicateKey)
		}
		return uuid.Nil, infra.WrapRepoErr("failed to insert payment", err)
	}
	return id, nil
}

const findPaymentByGatewayIDSQL = `
SELECT id, gateway_payment_id, user_id, amount_cents, status, description, kind
FROM payments
WHERE gateway_payment_id = $1
`

func (r *PaymentRepository) FindByGatewayID(ctx context.Context, tx db.DBTX, gatewayPaymentID string) (*commands.PaymentSnapshot, error) {
	var (
		snap        commands.PaymentSnapshot
		description pgtype.Text
	)
	err := tx.QueryRow(ctx, findPaymentByGatewayIDSQL, gatewayPaymentID).Scan(
		&snap.ID, &snap.GatewayPaymentID, &snap.UserID, &snap.AmountCents,
		&snap.Status, &description, &snap.Kind,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("payment not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find payment", err)
	}
	snap.Description = pgconv.StringPtrFromPgtype(description)
	return &snap, nil
}

const findPaymentByIDSQL = `
SELECT id, gateway_payment_id, user_id, amount_cents, status, description, kind
FROM payments
WHERE id = $1
`

func (r *PaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*commands.PaymentSnapshot, error) {
	var (
		snap        commands.PaymentSnapshot
		description pgtype.Text
	)
	err := r.db.QueryRow(ctx, findPaymentByIDSQL, id).Scan(
		&snap.ID, &snap.GatewayPaymentID, &snap.UserID, &snap.AmountCents,
		&snap.Status, &description, &snap.Kind,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("payment not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find payment", err)
	}
	snap.Description = pgconv.StringPtrFromPgtype(description)
	return &snap, nil
}

const findLatestPaymentByUserAndKindSQL = `
SELECT id, gateway_payment_id, user_id, amount_cents, status, description, kind
FROM payments
WHERE user_id = $1 AND kind = $2
ORDER BY created_at DESC
LIMIT 1
`

func (r *PaymentRepository) FindLatestByUserAndKind(ctx context.Context, userID uuid.UUID, kind string) (*commands.PaymentSnapshot, error) {
	var (
		snap        commands.PaymentSnapshot
		description pgtype.Text
	)
	err := r.db.QueryRow(ctx, findLatestPaymentByUserAndKindSQL, userID, kind).Scan(
		&snap.ID, &snap.GatewayPaymentID, &snap.UserID, &snap.AmountCents,
		&snap.Status, &description, &snap.Kind,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("payment not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find payment", err)
	}
	snap.Description = pgconv.StringPtrFromPgtype(description)
	return &snap, nil
}

const updatePaymentStatusSQL = `
UPDATE payments SET status = $2, updated_at = now() WHERE gateway_payment_id = $1
`

func (r *PaymentRepository) UpdateStatusByGatewayID(ctx context.Context, tx db.DBTX, gatewayPaymentID, status string) error {
	tag, err := tx.Exec(ctx, updatePaymentStatusSQL, gatewayPaymentID, status)
	if err != nil {
		return infra.WrapRepoErr("failed to update payment status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("payment not found", nil, infra.KindNotFound)
	}
	return nil
}
