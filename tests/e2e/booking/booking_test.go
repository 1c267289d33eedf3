//go:build e2e

package booking_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"studio-backend/internal/domain/user"
	reqdto "studio-backend/internal/handler/dto/request"
	"studio-backend/tests/common/authtest"
	"studio-backend/tests/common/dbtest"
	"studio-backend/tests/common/httptest"
	"studio-backend/tests/e2e"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type BookingSuite struct {
	e2e.SharedSuite
}

func TestBookingSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(BookingSuite))
}

func (s *BookingSuite) location(t *testing.T) *time.Location {
	loc, err := time.LoadLocation(s.Config.DB.TimeZone)
	require.NoError(t, err)
	return loc
}

// futureSlot returns a slot start far enough ahead that it is never past.
func (s *BookingSuite) futureSlot(t *testing.T, hour int) time.Time {
	d := time.Now().In(s.location(t)).AddDate(0, 2, 0)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, s.location(t))
}

func (s *BookingSuite) bookingCount(t *testing.T) int {
	var n int
	err := s.DB.QueryRow(context.Background(), "SELECT count(*) FROM bookings").Scan(&n)
	require.NoError(t, err)
	return n
}

func (s *BookingSuite) TestBookingConflict() {
	s.Run("overlapping request is rejected and not created", func() {
		t := s.T()
		start := s.futureSlot(t, 14)

		holderID := dbtest.CreateTestUser(t, s.DB, "holder@example.com", string(user.RoleCustomer))
		dbtest.CreateTestBooking(t, s.DB, holderID, start, 120, "Ensaio", "accepted")

		token := authtest.CreateAndLogin(t, s.DB, s.Router, "requester@example.com", string(user.RoleCustomer))
		body := reqdto.CreateBookingRequest{
			Date:        start.Format("2006-01-02"),
			Time:        "15:00",
			DurationMin: 60,
			Category:    "Ensaio",
			AmountCents: 10000,
		}

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, "/api/bookings", body, token)
		require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
		require.Equal(t, 1, s.bookingCount(t))
	})

	s.Run("exact same slot cannot be booked twice", func() {
		t := s.T()
		start := s.futureSlot(t, 14)

		holderID := dbtest.CreateTestUser(t, s.DB, "holder2@example.com", string(user.RoleCustomer))
		dbtest.CreateTestBooking(t, s.DB, holderID, start, 60, "Ensaio", "confirmed")

		token := authtest.CreateAndLogin(t, s.DB, s.Router, "requester2@example.com", string(user.RoleCustomer))
		body := reqdto.CreateBookingRequest{
			Date:        start.Format("2006-01-02"),
			Time:        "14:00",
			DurationMin: 60,
			Category:    "Gravacao",
			AmountCents: 20000,
		}

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, "/api/bookings", body, token)
		require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
		require.Equal(t, 1, s.bookingCount(t))
	})
}

func (s *BookingSuite) TestCancelWithRefundCoupon() {
	s.Run("paid booking cancels and issues a refund coupon", func() {
		t := s.T()
		start := s.futureSlot(t, 16)

		userID := dbtest.CreateTestUser(t, s.DB, "cancel@example.com", string(user.RoleCustomer))
		bookingID := dbtest.CreateTestBooking(t, s.DB, userID, start, 60, "Ensaio", "confirmed")
		paymentID := dbtest.CreateTestPayment(t, s.DB, userID, "pay_cancel_1", 15000, "received")
		_, err := s.DB.Exec(context.Background(),
			"UPDATE bookings SET payment_id = $1 WHERE id = $2", paymentID, bookingID)
		require.NoError(t, err)

		token := authtest.LoginUser(t, s.Router, "cancel@example.com", "password123")
		body := reqdto.CancelBookingRequest{RefundType: "coupon"}

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, "/api/bookings/"+bookingID.String()+"/cancel", body, token)
		require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

		var status string
		err = s.DB.QueryRow(context.Background(), "SELECT status FROM bookings WHERE id = $1", bookingID).Scan(&status)
		require.NoError(t, err)
		require.Equal(t, "canceled", status)

		var (
			amountOff int64
			used      bool
		)
		err = s.DB.QueryRow(context.Background(),
			"SELECT amount_off_cents, used FROM coupons WHERE user_id = $1 AND kind = 'refund'", userID).
			Scan(&amountOff, &used)
		require.NoError(t, err)
		require.Equal(t, int64(15000), amountOff)
		require.False(t, used)
	})

	s.Run("canceling another user's booking is not found", func() {
		t := s.T()
		start := s.futureSlot(t, 18)

		ownerID := dbtest.CreateTestUser(t, s.DB, "owner@example.com", string(user.RoleCustomer))
		bookingID := dbtest.CreateTestBooking(t, s.DB, ownerID, start, 60, "Ensaio", "confirmed")

		token := authtest.CreateAndLogin(t, s.DB, s.Router, "stranger@example.com", string(user.RoleCustomer))
		body := reqdto.CancelBookingRequest{RefundType: "direct"}

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, "/api/bookings/"+bookingID.String()+"/cancel", body, token)
		require.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
	})
}

func (s *BookingSuite) TestCouponSingleUse() {
	s.Run("second redemption of the same code fails", func() {
		t := s.T()
		start := s.futureSlot(t, 20)

		userID := dbtest.CreateTestUser(t, s.DB, "redeemer@example.com", string(user.RoleCustomer))
		bookingID := dbtest.CreateTestBooking(t, s.DB, userID, start, 60, "Ensaio", "accepted")
		dbtest.CreateTestCoupon(t, s.DB, userID, "REFUNDAB34", "refund", 5000, time.Now().AddDate(0, 1, 0))

		token := authtest.LoginUser(t, s.Router, "redeemer@example.com", "password123")
		body := reqdto.RedeemCouponRequest{Code: "REFUNDAB34", BookingID: bookingID}

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, "/api/coupons/redeem", body, token)
		require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

		w = httptest.PerformRequest(t, s.Router, http.MethodPost, "/api/coupons/redeem", body, token)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

		var (
			used   bool
			usedBy string
		)
		err := s.DB.QueryRow(context.Background(),
			"SELECT used, used_by::text FROM coupons WHERE code = $1", "REFUNDAB34").Scan(&used, &usedBy)
		require.NoError(t, err)
		require.True(t, used)
		require.Equal(t, userID.String(), usedBy)
	})

	s.Run("expired coupon is rejected", func() {
		t := s.T()
		start := s.futureSlot(t, 21)

		userID := dbtest.CreateTestUser(t, s.DB, "expired@example.com", string(user.RoleCustomer))
		bookingID := dbtest.CreateTestBooking(t, s.DB, userID, start, 60, "Ensaio", "accepted")
		dbtest.CreateTestCoupon(t, s.DB, userID, "EXPRDAB234", "refund", 5000, time.Now().AddDate(0, 0, -1))

		token := authtest.LoginUser(t, s.Router, "expired@example.com", "password123")
		body := reqdto.RedeemCouponRequest{Code: "EXPRDAB234", BookingID: bookingID}

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, "/api/coupons/redeem", body, token)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	})
}
