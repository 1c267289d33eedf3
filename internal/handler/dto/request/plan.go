package request

import "github.com/google/uuid"

type SubscribeRequest struct {
	PlanID      uuid.UUID `json:"plan_id" binding:"required"`
	Cycle       string    `json:"cycle" binding:"required,oneof=monthly yearly"`
	BillingType string    `json:"billing_type,omitempty"`
}

type CancelPlanRequest struct {
	RefundType string `json:"refund_type" binding:"required,oneof=direct coupon"`
}
