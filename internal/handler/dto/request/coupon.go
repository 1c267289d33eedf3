package request

import (
	"strings"

	"github.com/google/uuid"
)

type RedeemCouponRequest struct {
	Code      string    `json:"code" binding:"required"`
	BookingID uuid.UUID `json:"booking_id" binding:"required"`
}

func (r RedeemCouponRequest) NormalizedCode() string {
	return strings.ToUpper(strings.TrimSpace(r.Code))
}
