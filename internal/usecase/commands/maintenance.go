package commands

import (
	"context"
	"time"

	"studio-backend/internal/pkg/clock"
	"studio-backend/internal/pkg/errs"
)

var ErrMaintenanceFailure = errs.New("maintenance operation failed")

type ExpiredMetadataStore interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// MaintenanceCommands groups housekeeping work that runs on a timer, not
// behind an endpoint.
type MaintenanceCommands interface {
	PurgeExpiredMetadata(ctx context.Context) (int64, error)
}

type maintenanceCommandsImpl struct {
	metadata ExpiredMetadataStore
	clock    clock.Clock
}

func NewMaintenanceCommands(metadata ExpiredMetadataStore, clk clock.Clock) MaintenanceCommands {
	return &maintenanceCommandsImpl{metadata: metadata, clock: clk}
}

// PurgeExpiredMetadata drops pending payment intents whose correlation
// window has lapsed. An uncorrelated intent past its TTL can never be
// resolved by a webhook, so the rows are safe to delete.
func (m *maintenanceCommandsImpl) PurgeExpiredMetadata(ctx context.Context) (int64, error) {
	purged, err := m.metadata.PurgeExpired(ctx, m.clock.Now())
	if err != nil {
		return 0, errs.Mark(err, ErrMaintenanceFailure)
	}
	return purged, nil
}
