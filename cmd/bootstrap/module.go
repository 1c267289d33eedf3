package bootstrap

import (
	"studio-backend/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	DBModule,
	JWTModule,
	ScheduleModule,
	MetricsModule,
	MaintenanceModule,
	components.RepositoryModule,
	components.UseCaseModule,
	components.HandlerModule,
)
