package repository

import (
	"context"
	"time"

	"studio-backend/internal/domain/booking"
	"studio-backend/internal/infra"
	"studio-backend/internal/infra/db"
	"studio-backend/internal/pkg/pgconv"
	"studio-backend/internal/usecase/commands"
	"studio-backend/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type BookingRepository struct {
	db db.DBTX
}

func NewBookingRepository(pool db.DBTX) *BookingRepository {
	return &BookingRepository{db: pool}
}

const createBookingSQL = `
INSERT INTO bookings (id, user_id, start_time, duration_min, category, notes, status, payment_id, coupon_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
RETURNING id
`

func (r *BookingRepository) Create(ctx context.Context, tx db.DBTX, b *booking.Booking) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.QueryRow(ctx, createBookingSQL,
		b.ID(), b.UserID(), b.StartTime(), int32(b.Duration().Minutes()),
		b.Category(), b.Notes(), b.Status().String(),
		pgconv.UUIDFromPtr(b.PaymentID()), pgconv.UUIDFromPtr(b.CouponID()),
	).Scan(&id)
	if err != nil {
		if pgconv.IsUniqueViolation(err) {
			return uuid.Nil, infra.WrapRepoErr("booking slot already taken", err, infra.KindConflict)
		}
		return uuid.Nil, infra.WrapRepoErr("failed to create booking", err)
	}
	return id, nil
}

const findBookingByIDSQL = `
SELECT b.id, b.user_id, b.start_time, b.duration_min, b.category, b.notes, b.status,
       b.payment_id, b.coupon_id, p.amount_cents
FROM bookings b
LEFT JOIN payments p ON p.id = b.payment_id
WHERE b.id = $1
`

func (r *BookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*commands.BookingSnapshot, error) {
	return r.findByID(ctx, r.db, id)
}

func (r *BookingRepository) FindByIDTx(ctx context.Context, tx db.DBTX, id uuid.UUID) (*commands.BookingSnapshot, error) {
	return r.findByID(ctx, tx, id)
}

func (r *BookingRepository) findByID(ctx context.Context, q db.DBTX, id uuid.UUID) (*commands.BookingSnapshot, error) {
	var (
		snap      commands.BookingSnapshot
		notes     pgtype.Text
		paymentID pgtype.UUID
		couponID  pgtype.UUID
		amount    pgtype.Int8
	)
	err := q.QueryRow(ctx, findBookingByIDSQL, id).Scan(
		&snap.ID, &snap.UserID, &snap.StartTime, &snap.DurationMin,
		&snap.Category, &notes, &snap.Status, &paymentID, &couponID, &amount,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find booking", err)
	}
	snap.Notes = pgconv.StringPtrFromPgtype(notes)
	snap.PaymentID = pgconv.UUIDPtrFromPgtype(paymentID)
	snap.CouponID = pgconv.UUIDPtrFromPgtype(couponID)
	if amount.Valid {
		v := amount.Int64
		snap.AmountCents = &v
	}
	return &snap, nil
}

const updateBookingStatusSQL = `
UPDATE bookings SET status = $3, updated_at = now()
WHERE id = $1 AND status = $2
`

// UpdateStatus is guarded on the expected current status so concurrent
// transitions cannot both win.
func (r *BookingRepository) UpdateStatus(ctx context.Context, tx db.DBTX, id uuid.UUID, from, to booking.Status) (int64, error) {
	tag, err := tx.Exec(ctx, updateBookingStatusSQL, id, from.String(), to.String())
	if err != nil {
		return 0, infra.WrapRepoErr("failed to update booking status", err)
	}
	return tag.RowsAffected(), nil
}

const attachBookingPaymentSQL = `
UPDATE bookings SET payment_id = $2, updated_at = now() WHERE id = $1
`

func (r *BookingRepository) AttachPayment(ctx context.Context, tx db.DBTX, id, paymentID uuid.UUID) error {
	if _, err := tx.Exec(ctx, attachBookingPaymentSQL, id, paymentID); err != nil {
		return infra.WrapRepoErr("failed to attach payment to booking", err)
	}
	return nil
}

const listConflictingSQL = `
SELECT id, user_id, start_time, duration_min, category, status
FROM bookings
WHERE status IN ('accepted', 'confirmed')
  AND start_time < $2
  AND start_time + make_interval(mins => duration_min) > $1
`

// ListConflicting returns occupying bookings whose [start, start+duration)
// interval overlaps [from, to).
func (r *BookingRepository) ListConflicting(ctx context.Context, tx db.DBTX, from, to time.Time) ([]commands.BookingSnapshot, error) {
	rows, err := tx.Query(ctx, listConflictingSQL, from, to)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list conflicting bookings", err)
	}
	defer rows.Close()

	var out []commands.BookingSnapshot
	for rows.Next() {
		var snap commands.BookingSnapshot
		if err := rows.Scan(&snap.ID, &snap.UserID, &snap.StartTime, &snap.DurationMin, &snap.Category, &snap.Status); err != nil {
			return nil, infra.WrapRepoErr("failed to scan conflicting booking", err)
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate conflicting bookings", err)
	}
	return out, nil
}

// --- read side ---

const occupyingBookingsBetweenSQL = `
SELECT start_time, duration_min
FROM bookings
WHERE status IN ('accepted', 'confirmed')
  AND start_time < $2
  AND start_time + make_interval(mins => duration_min) > $1
`

// OccupyingBookingsBetween returns occupying bookings whose interval overlaps
// [from, to), including ones that started before the window.
func (r *BookingRepository) OccupyingBookingsBetween(ctx context.Context, from, to time.Time) ([]queries.OccupiedSlotRow, error) {
	rows, err := r.db.Query(ctx, occupyingBookingsBetweenSQL, from, to)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list occupying bookings", err)
	}
	defer rows.Close()

	var out []queries.OccupiedSlotRow
	for rows.Next() {
		var row queries.OccupiedSlotRow
		if err := rows.Scan(&row.StartTime, &row.DurationMin); err != nil {
			return nil, infra.WrapRepoErr("failed to scan occupying booking", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate occupying bookings", err)
	}
	return out, nil
}

const bookingViewByIDSQL = `
SELECT b.id, b.user_id, u.email, b.start_time, b.duration_min, b.category, b.notes,
       b.status, b.payment_id, b.coupon_id, b.created_at, b.updated_at
FROM bookings b
JOIN users u ON u.id = b.user_id
WHERE b.id = $1
`

func (r *BookingRepository) ViewByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	var (
		view      queries.BookingView
		notes     pgtype.Text
		paymentID pgtype.UUID
		couponID  pgtype.UUID
	)
	err := r.db.QueryRow(ctx, bookingViewByIDSQL, id).Scan(
		&view.ID, &view.UserID, &view.UserEmail, &view.StartTime, &view.DurationMin,
		&view.Category, &notes, &view.Status, &paymentID, &couponID,
		&view.CreatedAt, &view.UpdatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to load booking view", err)
	}
	view.Notes = pgconv.StringPtrFromPgtype(notes)
	view.PaymentID = pgconv.UUIDPtrFromPgtype(paymentID)
	view.CouponID = pgconv.UUIDPtrFromPgtype(couponID)
	return &view, nil
}

const bookingsByUserSQL = `
SELECT id, start_time, duration_min, category, status, created_at
FROM bookings
WHERE user_id = $1
ORDER BY start_time DESC
LIMIT $2
`

func (r *BookingRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int32) ([]*queries.BookingListItem, error) {
	rows, err := r.db.Query(ctx, bookingsByUserSQL, userID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list bookings by user", err)
	}
	defer rows.Close()

	var out []*queries.BookingListItem
	for rows.Next() {
		var item queries.BookingListItem
		if err := rows.Scan(&item.ID, &item.StartTime, &item.DurationMin, &item.Category, &item.Status, &item.CreatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking list item", err)
		}
		out = append(out, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate bookings", err)
	}
	return out, nil
}
