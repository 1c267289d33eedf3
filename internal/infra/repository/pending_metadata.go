package repository

import (
	"context"
	"time"

	"studio-backend/internal/infra"
	"studio-backend/internal/infra/db"
	"studio-backend/internal/pkg/pgconv"
	"studio-backend/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// PendingMetadataRepository stores checkout intents that outlive the HTTP
// request. The gateway's externalReference field is length-capped, so the
// full intent is parked here and correlated back when the webhook arrives.
type PendingMetadataRepository struct {
	db db.DBTX
}

func NewPendingMetadataRepository(pool db.DBTX) *PendingMetadataRepository {
	return &PendingMetadataRepository{db: pool}
}

const createPendingMetadataSQL = `
INSERT INTO pending_payment_metadata (id, user_id, payload, gateway_payment_id, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6)
`

func (r *PendingMetadataRepository) Create(ctx context.Context, tx db.DBTX, snap commands.PendingMetadataSnapshot) error {
	_, err := tx.Exec(ctx, createPendingMetadataSQL,
		snap.ID, snap.UserID, snap.Payload,
		pgconv.TextFromPtr(snap.GatewayPaymentID), snap.CreatedAt, snap.ExpiresAt,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create pending metadata", err)
	}
	return nil
}

const findPendingByGatewayIDSQL = `
SELECT id, user_id, payload, gateway_payment_id, created_at, expires_at
FROM pending_payment_metadata
WHERE gateway_payment_id = $1 AND expires_at > $2
`

func (r *PendingMetadataRepository) FindByGatewayID(ctx context.Context, tx db.DBTX, gatewayPaymentID string, now time.Time) (*commands.PendingMetadataSnapshot, error) {
	row := tx.QueryRow(ctx, findPendingByGatewayIDSQL, gatewayPaymentID, now)
	return scanPendingMetadata(row)
}

const findLatestPendingByUserSQL = `
SELECT id, user_id, payload, gateway_payment_id, created_at, expires_at
FROM pending_payment_metadata
WHERE user_id = $1 AND expires_at > $2
ORDER BY created_at DESC
LIMIT 1
`

// FindLatestByUser is the fallback correlation path for events whose
// externalReference was lost or truncated upstream.
func (r *PendingMetadataRepository) FindLatestByUser(ctx context.Context, tx db.DBTX, userID uuid.UUID, now time.Time) (*commands.PendingMetadataSnapshot, error) {
	row := tx.QueryRow(ctx, findLatestPendingByUserSQL, userID, now)
	return scanPendingMetadata(row)
}

const findPendingByIDSQL = `
SELECT id, user_id, payload, gateway_payment_id, created_at, expires_at
FROM pending_payment_metadata
WHERE id = $1 AND expires_at > $2
`

func (r *PendingMetadataRepository) FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID, now time.Time) (*commands.PendingMetadataSnapshot, error) {
	row := tx.QueryRow(ctx, findPendingByIDSQL, id, now)
	return scanPendingMetadata(row)
}

func scanPendingMetadata(row rowScanner) (*commands.PendingMetadataSnapshot, error) {
	var (
		snap      commands.PendingMetadataSnapshot
		gatewayID pgtype.Text
	)
	err := row.Scan(&snap.ID, &snap.UserID, &snap.Payload, &gatewayID, &snap.CreatedAt, &snap.ExpiresAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("pending metadata not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to scan pending metadata", err)
	}
	snap.GatewayPaymentID = pgconv.StringPtrFromPgtype(gatewayID)
	return &snap, nil
}

const bindPendingGatewayIDSQL = `
UPDATE pending_payment_metadata
SET gateway_payment_id = $2
WHERE id = $1 AND gateway_payment_id IS NULL
`

// BindGatewayID ties a parked intent to the charge the gateway created for
// it. Only an unbound row may be claimed.
func (r *PendingMetadataRepository) BindGatewayID(ctx context.Context, tx db.DBTX, id uuid.UUID, gatewayPaymentID string) error {
	tag, err := tx.Exec(ctx, bindPendingGatewayIDSQL, id, gatewayPaymentID)
	if err != nil {
		return infra.WrapRepoErr("failed to bind pending metadata", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("pending metadata already bound", nil, infra.KindConflict)
	}
	return nil
}

const deletePendingSQL = `DELETE FROM pending_payment_metadata WHERE id = $1`

func (r *PendingMetadataRepository) Delete(ctx context.Context, tx db.DBTX, id uuid.UUID) error {
	if _, err := tx.Exec(ctx, deletePendingSQL, id); err != nil {
		return infra.WrapRepoErr("failed to delete pending metadata", err)
	}
	return nil
}

const purgeExpiredPendingSQL = `DELETE FROM pending_payment_metadata WHERE expires_at <= $1`

func (r *PendingMetadataRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, purgeExpiredPendingSQL, now)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to purge pending metadata", err)
	}
	return tag.RowsAffected(), nil
}
