package components

import (
	"studio-backend/internal/infra/assistant"
	"studio-backend/internal/infra/gateway"
	"studio-backend/internal/pkg/clock"
	"studio-backend/internal/pkg/config"
	"studio-backend/internal/usecase/commands"
	"studio-backend/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	fx.Provide(
		clock.NewRealClock,
		NewPaymentGateway,
		NewAssistantResponder,

		commands.NewAuthCommands,
		commands.NewScheduleCommands,
		commands.NewCouponCommands,
		commands.NewBookingCommands,
		commands.NewPlanCommands,
		commands.NewWebhookCommands,
		commands.NewChatCommands,
		commands.NewFaqCommands,
		commands.NewMaintenanceCommands,

		queries.NewAvailabilityQueries,
		queries.NewBookingQueries,
		queries.NewCouponQueries,
		queries.NewPlanQueries,
		queries.NewFaqQueries,
		queries.NewChatQueries,
		queries.NewUserQueries,
	),
)

func NewPaymentGateway(cfg config.Config) commands.PaymentGateway {
	return gateway.NewClient(cfg.Payment)
}

func NewAssistantResponder(cfg config.Config) commands.Responder {
	return assistant.NewClient(cfg.Assistant)
}
