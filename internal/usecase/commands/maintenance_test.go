//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"studio-backend/internal/pkg/clock"
	"studio-backend/internal/pkg/errs"
	"studio-backend/internal/usecase/commands"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type expiredMetadataStoreFake struct {
	purgedAt time.Time
	rows     int64
	err      error
}

func (f *expiredMetadataStoreFake) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	f.purgedAt = now
	return f.rows, f.err
}

func TestPurgeExpiredMetadata(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	t.Run("purges at the current instant", func(t *testing.T) {
		store := &expiredMetadataStoreFake{rows: 3}
		cmds := commands.NewMaintenanceCommands(store, clock.NewMockClock(now))

		purged, err := cmds.PurgeExpiredMetadata(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(3), purged)
		assert.Equal(t, now, store.purgedAt)
	})

	t.Run("store failure is surfaced", func(t *testing.T) {
		store := &expiredMetadataStoreFake{err: errs.New("connection lost")}
		cmds := commands.NewMaintenanceCommands(store, clock.NewMockClock(now))

		_, err := cmds.PurgeExpiredMetadata(context.Background())
		assert.ErrorIs(t, err, commands.ErrMaintenanceFailure)
	})
}
