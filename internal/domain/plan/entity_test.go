//go:build unit

package plan_test

import (
	"testing"
	"time"

	"studio-backend/internal/domain/plan"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivate(t *testing.T) {
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("monthly subscription", func(t *testing.T) {
		sub, err := plan.Activate(uuid.New(), uuid.New(), plan.CycleMonthly, 9900, start)
		require.NoError(t, err)

		assert.True(t, sub.IsActive())
		assert.Equal(t, start, sub.StartDate())
		assert.Equal(t, start.AddDate(0, 1, 0), sub.EndDate())
		assert.Nil(t, sub.GatewaySubID())
	})

	t.Run("yearly subscription", func(t *testing.T) {
		sub, err := plan.Activate(uuid.New(), uuid.New(), plan.CycleYearly, 99000, start)
		require.NoError(t, err)
		assert.Equal(t, start.AddDate(1, 0, 0), sub.EndDate())
	})

	t.Run("rejects bad input", func(t *testing.T) {
		_, err := plan.Activate(uuid.New(), uuid.New(), plan.Cycle("weekly"), 9900, start)
		assert.ErrorIs(t, err, plan.ErrInvalidCycle)

		_, err = plan.Activate(uuid.New(), uuid.New(), plan.CycleMonthly, -1, start)
		assert.ErrorIs(t, err, plan.ErrInvalidAmount)
	})
}

func TestAddCycle(t *testing.T) {
	cases := []struct {
		name  string
		from  time.Time
		cycle plan.Cycle
		want  time.Time
	}{
		{
			name:  "mid-month stays on the same day",
			from:  time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			cycle: plan.CycleMonthly,
			want:  time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "jan 31 clamps to feb 28",
			from:  time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
			cycle: plan.CycleMonthly,
			want:  time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "jan 31 clamps to feb 29 in leap years",
			from:  time.Date(2028, 1, 31, 0, 0, 0, 0, time.UTC),
			cycle: plan.CycleMonthly,
			want:  time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "oct 31 clamps to nov 30",
			from:  time.Date(2026, 10, 31, 0, 0, 0, 0, time.UTC),
			cycle: plan.CycleMonthly,
			want:  time.Date(2026, 11, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "yearly across a leap day",
			from:  time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC),
			cycle: plan.CycleYearly,
			want:  time.Date(2029, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "time of day is preserved",
			from:  time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC),
			cycle: plan.CycleMonthly,
			want:  time.Date(2026, 4, 10, 15, 30, 0, 0, time.UTC),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, plan.AddCycle(tc.from, tc.cycle))
		})
	}
}

func TestRenew(t *testing.T) {
	start := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	sub, err := plan.Activate(uuid.New(), uuid.New(), plan.CycleMonthly, 9900, start)
	require.NoError(t, err)

	t.Run("extends from the current end date", func(t *testing.T) {
		require.NoError(t, sub.Renew())
		assert.Equal(t, time.Date(2026, 3, 28, 0, 0, 0, 0, time.UTC), sub.EndDate())
	})

	t.Run("canceled subscriptions do not renew", func(t *testing.T) {
		require.NoError(t, sub.Cancel())
		assert.ErrorIs(t, sub.Renew(), plan.ErrNotActive)
	})
}

func TestCancel(t *testing.T) {
	sub, err := plan.Activate(uuid.New(), uuid.New(), plan.CycleMonthly, 9900, time.Now())
	require.NoError(t, err)

	require.NoError(t, sub.Cancel())
	assert.False(t, sub.IsActive())
	assert.ErrorIs(t, sub.Cancel(), plan.ErrAlreadyCanceled)
}

func TestReactivate(t *testing.T) {
	sub, err := plan.Activate(uuid.New(), uuid.New(), plan.CycleMonthly, 9900, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, sub.Cancel())

	restart := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, sub.Reactivate(plan.CycleYearly, 99000, restart))

	assert.True(t, sub.IsActive())
	assert.Equal(t, plan.CycleYearly, sub.Cycle())
	assert.Equal(t, int64(99000), sub.AmountCents())
	assert.Equal(t, restart.AddDate(1, 0, 0), sub.EndDate())

	assert.ErrorIs(t, sub.Reactivate(plan.Cycle("biweekly"), 100, restart), plan.ErrInvalidCycle)
}
