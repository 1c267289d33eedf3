//go:build unit

package booking_test

import (
	"testing"
	"time"

	"studio-backend/internal/domain/booking"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBooking(t *testing.T) {
	start := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	t.Run("basic success case", func(t *testing.T) {
		b, err := booking.NewBooking(uuid.New(), start, time.Hour, "rehearsal", "", booking.StatusPending)
		require.NoError(t, err)
		require.NotNil(t, b)

		assert.NotEqual(t, uuid.Nil, b.ID())
		assert.Equal(t, start, b.StartTime())
		assert.Equal(t, start.Add(time.Hour), b.EndTime())
		assert.Equal(t, booking.StatusPending, b.Status())
		assert.Nil(t, b.PaymentID())
		assert.Nil(t, b.CouponID())
	})

	t.Run("rejects non-positive duration", func(t *testing.T) {
		_, err := booking.NewBooking(uuid.New(), start, 0, "rehearsal", "", booking.StatusPending)
		assert.ErrorIs(t, err, booking.ErrInvalidDuration)

		_, err = booking.NewBooking(uuid.New(), start, -time.Hour, "rehearsal", "", booking.StatusPending)
		assert.ErrorIs(t, err, booking.ErrInvalidDuration)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		_, err := booking.NewBooking(uuid.New(), start, time.Hour, "rehearsal", "", booking.Status("parked"))
		assert.ErrorIs(t, err, booking.ErrInvalidStatus)
	})
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		name    string
		from    booking.Status
		to      booking.Status
		allowed bool
	}{
		{"pending to accepted", booking.StatusPending, booking.StatusAccepted, true},
		{"pending to confirmed", booking.StatusPending, booking.StatusConfirmed, true},
		{"pending to rejected", booking.StatusPending, booking.StatusRejected, true},
		{"pending to canceled", booking.StatusPending, booking.StatusCanceled, true},
		{"accepted to confirmed", booking.StatusAccepted, booking.StatusConfirmed, true},
		{"accepted to canceled", booking.StatusAccepted, booking.StatusCanceled, true},
		{"accepted back to pending", booking.StatusAccepted, booking.StatusPending, false},
		{"confirmed to canceled", booking.StatusConfirmed, booking.StatusCanceled, true},
		{"confirmed to accepted", booking.StatusConfirmed, booking.StatusAccepted, false},
		{"rejected is terminal", booking.StatusRejected, booking.StatusPending, false},
		{"canceled is terminal", booking.StatusCanceled, booking.StatusAccepted, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to))
		})
	}

	t.Run("transition mutates only when allowed", func(t *testing.T) {
		b, err := booking.NewBooking(uuid.New(), time.Now(), time.Hour, "recording", "", booking.StatusPending)
		require.NoError(t, err)

		require.NoError(t, b.Transition(booking.StatusAccepted))
		assert.Equal(t, booking.StatusAccepted, b.Status())

		err = b.Transition(booking.StatusPending)
		assert.ErrorIs(t, err, booking.ErrInvalidTransition)
		assert.Equal(t, booking.StatusAccepted, b.Status())
	})
}

func TestOccupiesSlot(t *testing.T) {
	assert.False(t, booking.StatusPending.Occupies())
	assert.True(t, booking.StatusAccepted.Occupies())
	assert.True(t, booking.StatusConfirmed.Occupies())
	assert.False(t, booking.StatusRejected.Occupies())
	assert.False(t, booking.StatusCanceled.Occupies())
}

func TestConflictsWith(t *testing.T) {
	start := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	b, err := booking.NewBooking(uuid.New(), start, 2*time.Hour, "rehearsal", "", booking.StatusAccepted)
	require.NoError(t, err)

	t.Run("fully overlapping", func(t *testing.T) {
		assert.True(t, b.ConflictsWith(start, time.Hour))
	})

	t.Run("partial overlap at tail", func(t *testing.T) {
		assert.True(t, b.ConflictsWith(start.Add(time.Hour), 2*time.Hour))
	})

	t.Run("adjacent intervals do not conflict", func(t *testing.T) {
		assert.False(t, b.ConflictsWith(start.Add(2*time.Hour), time.Hour))
		assert.False(t, b.ConflictsWith(start.Add(-time.Hour), time.Hour))
	})
}
