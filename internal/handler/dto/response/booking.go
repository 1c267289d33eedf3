package response

import (
	"studio-backend/internal/usecase/commands"

	"github.com/google/uuid"
)

type CheckoutResponse struct {
	BookingID   *uuid.UUID `json:"booking_id,omitempty"`
	PaymentID   string     `json:"payment_id,omitempty"`
	CheckoutURL string     `json:"checkout_url,omitempty"`
	AmountCents int64      `json:"amount_cents"`
	// Paid is true when a full-discount coupon settled the booking with
	// no processor checkout.
	Paid bool `json:"paid"`
}

func FromCheckoutResult(r *commands.CheckoutResult) *CheckoutResponse {
	return &CheckoutResponse{
		BookingID:   r.BookingID,
		PaymentID:   r.GatewayPaymentID,
		CheckoutURL: r.CheckoutURL,
		AmountCents: r.AmountCents,
		Paid:        r.Paid,
	}
}
