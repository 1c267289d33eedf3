//go:build unit

package commands_test

import (
	"testing"

	"studio-backend/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceRoundTrip(t *testing.T) {
	userID := uuid.New()
	metaID := uuid.New()

	ref := commands.EncodeReference(userID, metaID)
	assert.LessOrEqual(t, len(ref), 100, "processor caps externalReference at 100 chars")

	gotUser, gotMeta := commands.ParseReference(ref)
	require.NotNil(t, gotUser)
	require.NotNil(t, gotMeta)
	assert.Equal(t, userID, *gotUser)
	assert.Equal(t, metaID, *gotMeta)
}

func TestParseReference(t *testing.T) {
	userID := uuid.New()

	t.Run("legacy bare uuid", func(t *testing.T) {
		gotUser, gotMeta := commands.ParseReference(userID.String())
		require.NotNil(t, gotUser)
		assert.Equal(t, userID, *gotUser)
		assert.Nil(t, gotMeta)
	})

	t.Run("user part only", func(t *testing.T) {
		gotUser, gotMeta := commands.ParseReference("user:" + userID.String())
		require.NotNil(t, gotUser)
		assert.Equal(t, userID, *gotUser)
		assert.Nil(t, gotMeta)
	})

	t.Run("surrounding whitespace", func(t *testing.T) {
		gotUser, _ := commands.ParseReference("  " + userID.String() + "  ")
		require.NotNil(t, gotUser)
		assert.Equal(t, userID, *gotUser)
	})

	t.Run("garbage", func(t *testing.T) {
		for _, ref := range []string{"", "order-1234", "user:not-a-uuid", "user:;meta:"} {
			gotUser, gotMeta := commands.ParseReference(ref)
			assert.Nil(t, gotUser, "ref %q", ref)
			assert.Nil(t, gotMeta, "ref %q", ref)
		}
	})

	t.Run("valid meta with broken user part", func(t *testing.T) {
		metaID := uuid.New()
		gotUser, gotMeta := commands.ParseReference("user:broken;meta:" + metaID.String())
		assert.Nil(t, gotUser)
		require.NotNil(t, gotMeta)
		assert.Equal(t, metaID, *gotMeta)
	})
}
