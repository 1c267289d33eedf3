package request

import (
	"strings"
	"time"
)

type CreateBookingRequest struct {
	Date        string  `json:"date" binding:"required"` // YYYY-MM-DD
	Time        string  `json:"time" binding:"required"` // HH:MM
	DurationMin int32   `json:"duration_min" binding:"required,min=60"`
	Category    string  `json:"category" binding:"required"`
	AmountCents int64   `json:"amount_cents" binding:"required,min=0"`
	BillingType string  `json:"billing_type,omitempty"` // defaults to UNDEFINED (processor asks)
	Notes       *string `json:"notes,omitempty"`
	CouponCode  *string `json:"coupon_code,omitempty"`
}

func (r CreateBookingRequest) GetCouponCode() *string {
	if r.CouponCode == nil {
		return nil
	}
	trimmed := strings.ToUpper(strings.TrimSpace(*r.CouponCode))
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (r CreateBookingRequest) GetNotes() string {
	if r.Notes == nil {
		return ""
	}
	return strings.TrimSpace(*r.Notes)
}

// StartTime combines the date and time fields in the given location.
func (r CreateBookingRequest) StartTime(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", r.Date+" "+r.Time, loc)
}

type CancelBookingRequest struct {
	RefundType string `json:"refund_type" binding:"required,oneof=direct coupon"`
}

type SetBookingStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=accepted confirmed rejected canceled"`
}
