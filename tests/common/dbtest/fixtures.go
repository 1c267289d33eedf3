//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// bcrypt hash of "password123"
const testPasswordHash = "$2a$12$uhAjVE9f92IGYv3E25pJNetg.27lVt0p7jmLWjqjmhOg92ldPS0A."

func CreateTestUser(t *testing.T, db DBLike, email, role string) uuid.UUID {
	t.Helper()

	userID := uuid.New()
	ctx := context.Background()

	tag, err := db.Exec(ctx,
		"INSERT INTO users (id, name, email, password_hash, role, is_active) VALUES ($1, $2, $3, $4, $5, true) ON CONFLICT (email) DO NOTHING",
		userID, "Test User", email, testPasswordHash, role)
	require.NoError(t, err)

	if tag.RowsAffected() == 0 {
		_ = db.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&userID)
	}

	return userID
}

func CreateTestPlan(t *testing.T, db DBLike, name string, monthlyCents, yearlyCents int64) uuid.UUID {
	t.Helper()

	planID := uuid.New()
	_, err := db.Exec(context.Background(),
		"INSERT INTO plan_catalog (id, name, monthly_price_cents, yearly_price_cents, entitlements, active) VALUES ($1, $2, $3, $4, '{}', true)",
		planID, name, monthlyCents, yearlyCents)
	require.NoError(t, err)

	return planID
}

func CreateTestBooking(t *testing.T, db DBLike, userID uuid.UUID, start time.Time, durationMin int, category, status string) uuid.UUID {
	t.Helper()

	bookingID := uuid.New()
	_, err := db.Exec(context.Background(),
		"INSERT INTO bookings (id, user_id, start_time, duration_min, category, status) VALUES ($1, $2, $3, $4, $5, $6)",
		bookingID, userID, start, durationMin, category, status)
	require.NoError(t, err)

	return bookingID
}

func CreateTestPayment(t *testing.T, db DBLike, userID uuid.UUID, gatewayPaymentID string, amountCents int64, status string) uuid.UUID {
	t.Helper()

	paymentID := uuid.New()
	_, err := db.Exec(context.Background(),
		"INSERT INTO payments (id, gateway_payment_id, user_id, amount_cents, status, kind) VALUES ($1, $2, $3, $4, $5, 'booking')",
		paymentID, gatewayPaymentID, userID, amountCents, status)
	require.NoError(t, err)

	return paymentID
}

func CreateTestCoupon(t *testing.T, db DBLike, userID uuid.UUID, code, kind string, amountOffCents int64, expiresAt time.Time) uuid.UUID {
	t.Helper()

	couponID := uuid.New()
	_, err := db.Exec(context.Background(),
		"INSERT INTO coupons (id, code, kind, amount_off_cents, user_id, expires_at) VALUES ($1, $2, $3, $4, $5, $6)",
		couponID, code, kind, amountOffCents, userID, expiresAt)
	require.NoError(t, err)

	return couponID
}

func CreatePendingMetadata(t *testing.T, db DBLike, userID uuid.UUID, payload []byte, expiresAt time.Time) uuid.UUID {
	t.Helper()

	metadataID := uuid.New()
	_, err := db.Exec(context.Background(),
		"INSERT INTO pending_payment_metadata (id, user_id, payload, expires_at) VALUES ($1, $2, $3, $4)",
		metadataID, userID, payload, expiresAt)
	require.NoError(t, err)

	return metadataID
}

// inserts basic reference data needed by tests
func SeedReferenceData(pool *pgxpool.Pool) error {
	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		INSERT INTO plan_catalog (id, name, monthly_price_cents, yearly_price_cents, entitlements, active)
		VALUES (gen_random_uuid(), 'Essencial', 9900, 99000, ARRAY['discount_10'], true)
		ON CONFLICT DO NOTHING;
	`)
	return err
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables and reseeds reference data
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	if _, err := pool.Exec(ctx, sqlAny.(string)); err != nil {
		return err
	}

	return SeedReferenceData(pool)
}
