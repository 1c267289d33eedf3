//go:build unit

package payment_test

import (
	"testing"
	"time"

	"studio-backend/internal/domain/payment"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntentValidate(t *testing.T) {
	booking := payment.BookingIntent{
		StartTime: time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC),
		Duration:  time.Hour,
		Category:  "Ensaio",
	}
	plan := payment.PlanIntent{PlanID: uuid.New(), Cycle: "monthly", AmountCents: 9900}

	t.Run("tagged union is enforced", func(t *testing.T) {
		assert.NoError(t, payment.NewBookingIntent(booking).Validate())
		assert.NoError(t, payment.NewPlanIntent(plan).Validate())

		bad := payment.Intent{Kind: payment.IntentBooking}
		assert.ErrorIs(t, bad.Validate(), payment.ErrInvalidIntent)

		both := payment.NewBookingIntent(booking)
		both.Plan = &plan
		assert.ErrorIs(t, both.Validate(), payment.ErrInvalidIntent)

		unknown := payment.Intent{Kind: payment.IntentKind("voucher")}
		assert.ErrorIs(t, unknown.Validate(), payment.ErrUnknownIntentKind)
	})

	t.Run("encode and decode round trip", func(t *testing.T) {
		bookingID := uuid.New()
		code := "PROMO42"
		in := payment.NewBookingIntent(payment.BookingIntent{
			BookingID:  &bookingID,
			StartTime:  booking.StartTime,
			Duration:   2 * time.Hour,
			Category:   "Gravacao",
			CouponCode: &code,
		})

		raw, err := in.Encode()
		require.NoError(t, err)

		out, err := payment.DecodeIntent(raw)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("decode rejects garbage", func(t *testing.T) {
		_, err := payment.DecodeIntent([]byte("not json"))
		assert.ErrorIs(t, err, payment.ErrInvalidIntent)

		_, err = payment.DecodeIntent([]byte(`{"kind":"plan"}`))
		assert.ErrorIs(t, err, payment.ErrInvalidIntent)
	})
}

func TestParseStatus(t *testing.T) {
	cases := []struct {
		wire    string
		want    payment.Status
		success bool
	}{
		{"RECEIVED", payment.StatusReceived, true},
		{"RECEIVED_IN_CASH", payment.StatusReceived, true},
		{"CONFIRMED", payment.StatusConfirmed, true},
		{"confirmed", payment.StatusConfirmed, true},
		{" PENDING ", payment.StatusCreated, false},
		{"AWAITING_RISK_ANALYSIS", payment.StatusCreated, false},
		{"OVERDUE", payment.StatusOverdue, false},
		{"DELETED", payment.StatusDeleted, false},
		{"REFUNDED", payment.StatusRefunded, false},
		{"REFUND_REQUESTED", payment.StatusRefunded, false},
	}

	for _, tc := range cases {
		t.Run(tc.wire, func(t *testing.T) {
			got, err := payment.ParseStatus(tc.wire)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.success, got.IsSuccess())
		})
	}

	t.Run("unknown wire value", func(t *testing.T) {
		_, err := payment.ParseStatus("CHARGEBACK_DISPUTE")
		assert.ErrorIs(t, err, payment.ErrUnknownStatus)
	})
}
