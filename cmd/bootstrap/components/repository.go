package components

import (
	"studio-backend/internal/infra/db"
	repo_impl "studio-backend/internal/infra/repository"
	"studio-backend/internal/usecase/commands"
	"studio-backend/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		NewDBTX,
		fx.Annotate(
			repo_impl.NewUserRepository,
			fx.As(new(commands.AuthUserStore)),
			fx.As(new(commands.GatewayUserStore)),
			fx.As(new(commands.WebhookUserStore)),
			fx.As(new(queries.UserReadStore)),
		),
		fx.Annotate(
			repo_impl.NewBookingRepository,
			fx.As(new(commands.BookingStore)),
			fx.As(new(commands.OccupancyReadStore)),
			fx.As(new(queries.BookingReadStore)),
		),
		fx.Annotate(
			repo_impl.NewBlockedSlotRepository,
			fx.As(new(commands.BlockedSlotStore)),
		),
		fx.Annotate(
			repo_impl.NewCouponRepository,
			fx.As(new(commands.CouponStore)),
			fx.As(new(queries.CouponReadStore)),
		),
		fx.Annotate(
			repo_impl.NewSubscriptionRepository,
			fx.As(new(commands.SubscriptionStore)),
			fx.As(new(queries.PlanReadStore)),
		),
		fx.Annotate(
			repo_impl.NewPaymentRepository,
			fx.As(new(commands.PaymentStore)),
		),
		fx.Annotate(
			repo_impl.NewPendingMetadataRepository,
			fx.As(new(commands.PendingMetadataStore)),
			fx.As(new(commands.ExpiredMetadataStore)),
		),
		fx.Annotate(
			repo_impl.NewNotificationRepository,
			fx.As(new(commands.NotificationStore)),
		),
		fx.Annotate(
			repo_impl.NewFaqRepository,
			fx.As(new(commands.FaqStore)),
			fx.As(new(queries.FaqReadStore)),
		),
		fx.Annotate(
			repo_impl.NewChatRepository,
			fx.As(new(commands.ChatStore)),
			fx.As(new(queries.ChatReadStore)),
		),
		fx.Annotate(
			NewAvailabilityStore,
			fx.As(new(queries.AvailabilityReadStore)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}

// availabilityStore joins the two occupancy sources behind the read
// interface the availability grid consumes.
type availabilityStore struct {
	*repo_impl.BookingRepository
	*repo_impl.BlockedSlotRepository
}

func NewAvailabilityStore(pool db.DBTX) *availabilityStore {
	return &availabilityStore{
		BookingRepository:     repo_impl.NewBookingRepository(pool),
		BlockedSlotRepository: repo_impl.NewBlockedSlotRepository(pool),
	}
}
