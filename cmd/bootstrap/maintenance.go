package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"studio-backend/internal/usecase/commands"

	"go.uber.org/fx"
)

const metadataPurgeInterval = time.Hour

// MaintenanceModule runs the housekeeping timer for the process lifetime.
var MaintenanceModule = fx.Module("maintenance",
	fx.Invoke(StartMetadataJanitor),
)

// StartMetadataJanitor purges expired pending payment metadata once at
// startup and then on a fixed interval until shutdown.
func StartMetadataJanitor(lc fx.Lifecycle, maintenance commands.MaintenanceCommands, logger *slog.Logger) {
	ctx, cancel := context.WithCancel(context.Background())

	purge := func() {
		purged, err := maintenance.PurgeExpiredMetadata(ctx)
		if err != nil {
			logger.Error("pending metadata purge failed", "error", err.Error())
			return
		}
		if purged > 0 {
			logger.Info("purged expired pending metadata", "rows", purged)
		}
	}

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				purge()
				ticker := time.NewTicker(metadataPurgeInterval)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						purge()
					}
				}
			}()
			return nil
		},
		OnStop: func(_ context.Context) error {
			cancel()
			return nil
		},
	})
}
