//go:build unit

package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"studio-backend/internal/handler/api"
	reqdto "studio-backend/internal/handler/dto/request"
	"studio-backend/internal/pkg/config"
	"studio-backend/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type webhookCommandsStub struct {
	outcome commands.WebhookOutcome
	err     error
	calls   int
	lastReq reqdto.PaymentWebhookRequest
}

func (s *webhookCommandsStub) ProcessPaymentEvent(_ context.Context, req reqdto.PaymentWebhookRequest) (commands.WebhookOutcome, error) {
	s.calls++
	s.lastReq = req
	return s.outcome, s.err
}

func newWebhookRouter(stub *webhookCommandsStub, token string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := config.Config{}
	cfg.Payment.WebhookToken = token
	h := api.NewWebhookHandler(stub, cfg)

	router := gin.New()
	router.POST("/webhooks/payments", h.HandlePaymentEvent)
	return router
}

func postWebhook(router *gin.Engine, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

const validEvent = `{"event":"PAYMENT_CONFIRMED","payment":{"id":"pay_123","status":"CONFIRMED","value":150.00}}`

func TestWebhookAlwaysAcknowledges(t *testing.T) {
	t.Run("processed event", func(t *testing.T) {
		stub := &webhookCommandsStub{outcome: commands.WebhookProcessed}
		w := postWebhook(newWebhookRouter(stub, ""), validEvent, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"received":true}`, w.Body.String())
		assert.Equal(t, 1, stub.calls)
		assert.Equal(t, "pay_123", stub.lastReq.Payment.ID)
	})

	t.Run("reconciliation failure still returns 200", func(t *testing.T) {
		stub := &webhookCommandsStub{outcome: commands.WebhookError, err: assert.AnError}
		w := postWebhook(newWebhookRouter(stub, ""), validEvent, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"received":true}`, w.Body.String())
	})

	t.Run("malformed payload is acknowledged without processing", func(t *testing.T) {
		stub := &webhookCommandsStub{}
		w := postWebhook(newWebhookRouter(stub, ""), `{"event":`, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 0, stub.calls)
	})

	t.Run("missing required fields is acknowledged without processing", func(t *testing.T) {
		stub := &webhookCommandsStub{}
		w := postWebhook(newWebhookRouter(stub, ""), `{"event":"PAYMENT_CONFIRMED"}`, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 0, stub.calls)
	})
}

func TestWebhookTokenCheck(t *testing.T) {
	t.Run("valid token", func(t *testing.T) {
		stub := &webhookCommandsStub{outcome: commands.WebhookProcessed}
		w := postWebhook(newWebhookRouter(stub, "secret"), validEvent, map[string]string{
			"asaas-access-token": "secret",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, stub.calls)
	})

	t.Run("wrong token", func(t *testing.T) {
		stub := &webhookCommandsStub{}
		w := postWebhook(newWebhookRouter(stub, "secret"), validEvent, map[string]string{
			"asaas-access-token": "wrong",
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, 0, stub.calls)
	})

	t.Run("no token configured skips the check", func(t *testing.T) {
		stub := &webhookCommandsStub{outcome: commands.WebhookProcessed}
		w := postWebhook(newWebhookRouter(stub, ""), validEvent, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, stub.calls)
	})
}
