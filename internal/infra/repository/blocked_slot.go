package repository

import (
	"context"
	"time"

	"studio-backend/internal/infra"
	"studio-backend/internal/infra/db"
	"studio-backend/internal/pkg/pgconv"
	"studio-backend/internal/usecase/queries"

	"github.com/google/uuid"
)

type BlockedSlotRepository struct {
	db db.DBTX
}

func NewBlockedSlotRepository(pool db.DBTX) *BlockedSlotRepository {
	return &BlockedSlotRepository{db: pool}
}

const insertBlockedSlotSQL = `
INSERT INTO blocked_slots (id, slot_date, slot_hour, created_by, created_at)
VALUES ($1, $2, $3, $4, now())
`

// Insert relies on the (slot_date, slot_hour) unique constraint so two
// admins toggling the same slot cannot both insert.
func (r *BlockedSlotRepository) Insert(ctx context.Context, date time.Time, hour int, createdBy uuid.UUID) error {
	_, err := r.db.Exec(ctx, insertBlockedSlotSQL, uuid.New(), date, hour, createdBy)
	if err != nil {
		if pgconv.IsUniqueViolation(err) {
			return infra.WrapRepoErr("slot already blocked", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to block slot", err)
	}
	return nil
}

const deleteBlockedSlotSQL = `
DELETE FROM blocked_slots WHERE slot_date = $1 AND slot_hour = $2
`

func (r *BlockedSlotRepository) Delete(ctx context.Context, date time.Time, hour int) (int64, error) {
	tag, err := r.db.Exec(ctx, deleteBlockedSlotSQL, date, hour)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to unblock slot", err)
	}
	return tag.RowsAffected(), nil
}

const listBlockedHoursByDaySQL = `
SELECT slot_hour FROM blocked_slots WHERE slot_date = $1 ORDER BY slot_hour
`

func (r *BlockedSlotRepository) ListHoursByDay(ctx context.Context, date time.Time) ([]int, error) {
	rows, err := r.db.Query(ctx, listBlockedHoursByDaySQL, date)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list blocked slots", err)
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var hour int
		if err := rows.Scan(&hour); err != nil {
			return nil, infra.WrapRepoErr("failed to scan blocked slot", err)
		}
		out = append(out, hour)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate blocked slots", err)
	}
	return out, nil
}

const blockedSlotsBetweenSQL = `
SELECT slot_date, slot_hour
FROM blocked_slots
WHERE slot_date >= $1 AND slot_date < $2
`

func (r *BlockedSlotRepository) BlockedSlotsBetween(ctx context.Context, from, to time.Time) ([]queries.BlockedSlotRow, error) {
	rows, err := r.db.Query(ctx, blockedSlotsBetweenSQL, from, to)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list blocked slots", err)
	}
	defer rows.Close()

	var out []queries.BlockedSlotRow
	for rows.Next() {
		var row queries.BlockedSlotRow
		if err := rows.Scan(&row.Date, &row.Hour); err != nil {
			return nil, infra.WrapRepoErr("failed to scan blocked slot", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate blocked slots", err)
	}
	return out, nil
}
