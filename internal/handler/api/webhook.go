package api

import (
	"net/http"

	reqdto "studio-backend/internal/handler/dto/request"
	"studio-backend/internal/pkg/config"
	"studio-backend/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

// webhookAuthHeader carries the shared token the processor is configured
// to send with every callback.
const webhookAuthHeader = "asaas-access-token"

type WebhookHandler struct {
	webhookCommands commands.WebhookCommands
	cfg             config.PaymentConfig
}

func NewWebhookHandler(webhookCommands commands.WebhookCommands, cfg config.Config) *WebhookHandler {
	return &WebhookHandler{
		webhookCommands: webhookCommands,
		cfg:             cfg.Payment,
	}
}

// @Summary Payment webhook
// @Description Receives payment notifications from the processor. Always
// @Description acknowledges with 200 so the processor does not retry forever;
// @Description failures are reconciled through the idempotent payment record.
// @Tags webhooks
// @Accept json
// @Produce json
// @Param request body reqdto.PaymentWebhookRequest true "Notification"
// @Success 200 {object} map[string]bool
// @Failure 401 {object} map[string]string
// @Router /webhooks/payments [post]
func (h *WebhookHandler) HandlePaymentEvent(c *gin.Context) {
	if h.cfg.WebhookToken != "" && c.GetHeader(webhookAuthHeader) != h.cfg.WebhookToken {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid webhook token",
		})
		return
	}

	var req reqdto.PaymentWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Malformed payloads are acknowledged too; retrying them cannot
		// succeed and only keeps the delivery queue stuck.
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	// Outcome and error are recorded inside the command; the response is
	// an acknowledgment either way.
	_, _ = h.webhookCommands.ProcessPaymentEvent(c.Request.Context(), req)

	c.JSON(http.StatusOK, gin.H{"received": true})
}
