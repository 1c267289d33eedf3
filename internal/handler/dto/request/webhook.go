package request

import (
	"encoding/json"
	"math"
	"strings"
)

// PaymentEventPrefix gates which webhook events are processed; everything
// else is acknowledged and ignored.
const PaymentEventPrefix = "PAYMENT_"

type PaymentWebhookRequest struct {
	Event   string         `json:"event" binding:"required"`
	Payment WebhookPayment `json:"payment" binding:"required"`
}

type WebhookPayment struct {
	ID                string          `json:"id" binding:"required"`
	Status            string          `json:"status" binding:"required"`
	Value             float64         `json:"value"`
	Customer          string          `json:"customer"`
	ExternalReference string          `json:"externalReference"`
	Description       string          `json:"description"`
	Subscription      string          `json:"subscription"`
	Metadata          json.RawMessage `json:"metadata,omitempty"`
}

func (r PaymentWebhookRequest) IsPaymentEvent() bool {
	return strings.HasPrefix(r.Event, PaymentEventPrefix)
}

// AmountCents converts the processor's decimal-reais value to cents.
func (p WebhookPayment) AmountCents() int64 {
	return int64(math.Round(p.Value * 100))
}
