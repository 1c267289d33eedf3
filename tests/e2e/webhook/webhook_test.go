//go:build e2e

package webhook_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"studio-backend/internal/domain/payment"
	"studio-backend/internal/domain/user"
	"studio-backend/tests/common/dbtest"
	"studio-backend/tests/common/httptest"
	"studio-backend/tests/e2e"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type WebhookSuite struct {
	e2e.SharedSuite
}

func TestWebhookSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(WebhookSuite))
}

const webhookURL = "/webhooks/payments"

func paymentEvent(gatewayPaymentID, status, externalReference, description string, value float64) map[string]any {
	return map[string]any{
		"event": "PAYMENT_" + status,
		"payment": map[string]any{
			"id":                gatewayPaymentID,
			"status":            status,
			"value":             value,
			"externalReference": externalReference,
			"description":       description,
		},
	}
}

func (s *WebhookSuite) bookingFixture(t *testing.T) (userID, bookingID, metadataID uuid.UUID, reference string) {
	userID = dbtest.CreateTestUser(t, s.DB, "payer@example.com", string(user.RoleCustomer))

	start := time.Now().AddDate(0, 1, 0).Truncate(time.Hour)
	bookingID = dbtest.CreateTestBooking(t, s.DB, userID, start, 60, "Ensaio", "pending")

	intent := payment.NewBookingIntent(payment.BookingIntent{
		BookingID: &bookingID,
		StartTime: start,
		Duration:  time.Hour,
		Category:  "Ensaio",
	})
	payload, err := intent.Encode()
	require.NoError(t, err)

	metadataID = dbtest.CreatePendingMetadata(t, s.DB, userID, payload, time.Now().Add(time.Hour))
	reference = "user:" + userID.String() + ";meta:" + metadataID.String()
	return userID, bookingID, metadataID, reference
}

func (s *WebhookSuite) bookingStatus(t *testing.T, bookingID uuid.UUID) string {
	var status string
	err := s.DB.QueryRow(context.Background(), "SELECT status FROM bookings WHERE id = $1", bookingID).Scan(&status)
	require.NoError(t, err)
	return status
}

func (s *WebhookSuite) paymentCount(t *testing.T, gatewayPaymentID string) int {
	var n int
	err := s.DB.QueryRow(context.Background(), "SELECT count(*) FROM payments WHERE gateway_payment_id = $1", gatewayPaymentID).Scan(&n)
	require.NoError(t, err)
	return n
}

func (s *WebhookSuite) TestPaymentConfirmation() {
	s.Run("confirmed payment promotes the pending booking", func() {
		t := s.T()
		_, bookingID, metadataID, reference := s.bookingFixture(t)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, webhookURL,
			paymentEvent("pay_e2e_1", "CONFIRMED", reference, "", 150.0), "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		require.Equal(t, "accepted", s.bookingStatus(t, bookingID))
		require.Equal(t, 1, s.paymentCount(t, "pay_e2e_1"))

		// consumed metadata is removed
		var left int
		require.NoError(t, s.DB.QueryRow(context.Background(),
			"SELECT count(*) FROM pending_payment_metadata WHERE id = $1", metadataID).Scan(&left))
		require.Zero(t, left)
	})

	s.Run("replayed notification is a no-op", func() {
		t := s.T()
		_, bookingID, _, reference := s.bookingFixture(t)

		event := paymentEvent("pay_e2e_2", "CONFIRMED", reference, "", 150.0)
		for range 3 {
			w := httptest.PerformRequest(t, s.Router, http.MethodPost, webhookURL, event, "")
			require.Equal(t, http.StatusOK, w.Code)
		}

		require.Equal(t, "accepted", s.bookingStatus(t, bookingID))
		require.Equal(t, 1, s.paymentCount(t, "pay_e2e_2"))
	})

	s.Run("payment without intent falls back to the charge description", func() {
		t := s.T()
		userID := dbtest.CreateTestUser(t, s.DB, "walkin@example.com", string(user.RoleCustomer))

		start := time.Now().AddDate(0, 1, 0).Truncate(time.Hour)
		desc := "Reserva " + start.Format("02/01/2006 15:04") + " - Ensaio"

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, webhookURL,
			paymentEvent("pay_e2e_3", "RECEIVED", userID.String(), desc, 90.0), "")
		require.Equal(t, http.StatusOK, w.Code)

		// A booking materialized from the description, already holding its slot.
		var status string
		err := s.DB.QueryRow(context.Background(),
			"SELECT status FROM bookings WHERE user_id = $1", userID).Scan(&status)
		require.NoError(t, err)
		require.Equal(t, "accepted", status)
	})

	s.Run("refund updates the payment record only", func() {
		t := s.T()
		_, bookingID, _, reference := s.bookingFixture(t)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, webhookURL,
			paymentEvent("pay_e2e_4", "CONFIRMED", reference, "", 150.0), "")
		require.Equal(t, http.StatusOK, w.Code)

		// A later refund notification flips the stored payment status but
		// does not resurrect anything.
		w = httptest.PerformRequest(t, s.Router, http.MethodPost, webhookURL,
			paymentEvent("pay_e2e_4", "REFUNDED", reference, "", 150.0), "")
		require.Equal(t, http.StatusOK, w.Code)

		var paymentStatus string
		require.NoError(t, s.DB.QueryRow(context.Background(),
			"SELECT status FROM payments WHERE gateway_payment_id = 'pay_e2e_4'").Scan(&paymentStatus))
		require.Equal(t, "refunded", paymentStatus)
		require.Equal(t, "accepted", s.bookingStatus(t, bookingID))
	})

	s.Run("unresolvable events are acknowledged and dropped", func() {
		t := s.T()

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, webhookURL,
			paymentEvent("pay_e2e_5", "CONFIRMED", "order-999", "", 10.0), "")
		require.Equal(t, http.StatusOK, w.Code)

		require.Zero(t, s.paymentCount(t, "pay_e2e_5"))
	})
}

func (s *WebhookSuite) TestSubscriptionActivation() {
	s.Run("plan payment activates the subscription", func() {
		t := s.T()

		userID := dbtest.CreateTestUser(t, s.DB, "assinante@example.com", string(user.RoleCustomer))
		planID := dbtest.CreateTestPlan(t, s.DB, "Estudio+", 19900, 199000)

		intent := payment.NewPlanIntent(payment.PlanIntent{
			PlanID:      planID,
			Cycle:       "monthly",
			AmountCents: 19900,
		})
		payload, err := intent.Encode()
		require.NoError(t, err)
		metadataID := dbtest.CreatePendingMetadata(t, s.DB, userID, payload, time.Now().Add(time.Hour))
		reference := "user:" + userID.String() + ";meta:" + metadataID.String()

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, webhookURL,
			paymentEvent("pay_e2e_sub", "CONFIRMED", reference, "Assinatura Estudio+ (monthly)", 199.0), "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var status string
		var endDate time.Time
		require.NoError(t, s.DB.QueryRow(context.Background(),
			"SELECT status, end_date FROM subscriptions WHERE user_id = $1 AND plan_id = $2",
			userID, planID).Scan(&status, &endDate))
		require.Equal(t, "active", status)
		require.True(t, endDate.After(time.Now().AddDate(0, 0, 27)))
	})
}
