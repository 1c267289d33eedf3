package components

import (
	"studio-backend/internal/handler"
	"studio-backend/internal/handler/api"
	"studio-backend/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		middleware.NewAuthMiddleware,

		api.NewAuthHandler,
		api.NewAvailabilityHandler,
		api.NewBookingHandler,
		api.NewScheduleHandler,
		api.NewCouponHandler,
		api.NewPlanHandler,
		api.NewFaqHandler,
		api.NewChatHandler,
		api.NewWebhookHandler,

		NewHandlers,
	),
	fx.Invoke(handler.NewRouter),
)

func NewHandlers(
	auth *api.AuthHandler,
	availability *api.AvailabilityHandler,
	booking *api.BookingHandler,
	schedule *api.ScheduleHandler,
	coupon *api.CouponHandler,
	plan *api.PlanHandler,
	faq *api.FaqHandler,
	chat *api.ChatHandler,
	webhook *api.WebhookHandler,
) handler.Handlers {
	return handler.Handlers{
		Auth:         auth,
		Availability: availability,
		Booking:      booking,
		Schedule:     schedule,
		Coupon:       coupon,
		Plan:         plan,
		Faq:          faq,
		Chat:         chat,
		Webhook:      webhook,
	}
}
