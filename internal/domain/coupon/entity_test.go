//go:build unit

package coupon_test

import (
	"testing"
	"time"

	"studio-backend/internal/domain/coupon"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCoupon(t *testing.T, discount coupon.Discount, expiresAt time.Time) *coupon.Coupon {
	t.Helper()
	c, err := coupon.NewCoupon(coupon.KindRefund, discount, uuid.New(), nil, nil, expiresAt)
	require.NoError(t, err)
	return c
}

func TestNewCoupon(t *testing.T) {
	discount, err := coupon.NewFixedDiscount(5000)
	require.NoError(t, err)

	t.Run("basic success case", func(t *testing.T) {
		c := newTestCoupon(t, discount, time.Now().Add(24*time.Hour))
		assert.NotEqual(t, uuid.Nil, c.ID())
		assert.Len(t, c.Code().String(), 10)
		assert.False(t, c.Used())
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		_, err := coupon.NewCoupon(coupon.Kind("gift"), discount, uuid.New(), nil, nil, time.Now())
		assert.ErrorIs(t, err, coupon.ErrInvalidKind)
	})
}

func TestNewCode(t *testing.T) {
	t.Run("uppercases and trims", func(t *testing.T) {
		code, err := coupon.NewCode("  promo42  ")
		require.NoError(t, err)
		assert.Equal(t, "PROMO42", code.String())
	})

	t.Run("rejects malformed codes", func(t *testing.T) {
		for _, raw := range []string{"", "ab", "has space", "way-too-long-for-a-code-xx", "lower!"} {
			_, err := coupon.NewCode(raw)
			assert.ErrorIs(t, err, coupon.ErrInvalidCouponCode, "code %q", raw)
		}
	})
}

func TestValidateRedemption(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	discount, err := coupon.NewFixedDiscount(1000)
	require.NoError(t, err)

	t.Run("available coupon", func(t *testing.T) {
		c := newTestCoupon(t, discount, now.Add(time.Hour))
		assert.NoError(t, c.ValidateRedemption(now))
		assert.Equal(t, coupon.DisplayAvailable, c.StatusAt(now))
	})

	t.Run("expired coupon", func(t *testing.T) {
		c := newTestCoupon(t, discount, now.Add(-time.Minute))
		assert.ErrorIs(t, c.ValidateRedemption(now), coupon.ErrCouponExpired)
		assert.Equal(t, coupon.DisplayExpired, c.StatusAt(now))
	})

	t.Run("used coupon", func(t *testing.T) {
		usedAt := now.Add(-time.Hour)
		usedBy := uuid.New()
		c := coupon.ReconstructCoupon(
			uuid.New(), coupon.Code("USEDCODE42"), coupon.KindRefund, discount,
			uuid.New(), nil, nil,
			true, &usedAt, &usedBy, nil,
			now.Add(time.Hour), usedAt, usedAt,
		)
		assert.ErrorIs(t, c.ValidateRedemption(now), coupon.ErrCouponAlreadyUsed)
		assert.Equal(t, coupon.DisplayUsed, c.StatusAt(now))
	})
}

func TestDiscountApply(t *testing.T) {
	t.Run("fixed discount", func(t *testing.T) {
		d, err := coupon.NewFixedDiscount(3000)
		require.NoError(t, err)
		assert.Equal(t, int64(7000), d.Apply(10000))
	})

	t.Run("fixed discount larger than the total floors at zero", func(t *testing.T) {
		d, err := coupon.NewFixedDiscount(15000)
		require.NoError(t, err)
		assert.Equal(t, int64(0), d.Apply(10000))
	})

	t.Run("percentage discount", func(t *testing.T) {
		d, err := coupon.NewPercentageDiscount(25)
		require.NoError(t, err)
		assert.Equal(t, int64(7500), d.Apply(10000))
	})

	t.Run("full percentage discount", func(t *testing.T) {
		d, err := coupon.NewPercentageDiscount(100)
		require.NoError(t, err)
		assert.Equal(t, int64(0), d.Apply(10000))
	})

	t.Run("invalid discounts", func(t *testing.T) {
		_, err := coupon.NewFixedDiscount(-1)
		assert.ErrorIs(t, err, coupon.ErrInvalidDiscountAmount)

		_, err = coupon.NewPercentageDiscount(101)
		assert.ErrorIs(t, err, coupon.ErrInvalidDiscountPercent)

		_, err = coupon.NewPercentageDiscount(-0.5)
		assert.ErrorIs(t, err, coupon.ErrInvalidDiscountPercent)
	})

	t.Run("cannot combine fixed and percentage", func(t *testing.T) {
		amount := int64(1000)
		percent := 10.0
		_, err := coupon.NewDiscount(&amount, &percent)
		assert.Error(t, err)

		_, err = coupon.NewDiscount(nil, nil)
		assert.Error(t, err)
	})
}
