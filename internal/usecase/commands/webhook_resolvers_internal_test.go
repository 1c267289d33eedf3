//go:build unit

package commands

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChargeDescription(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	t.Run("well-formed description", func(t *testing.T) {
		bi, ok := parseChargeDescription("Reserva 02/01/2026 15:00 - Ensaio", loc)
		require.True(t, ok)
		assert.Equal(t, time.Date(2026, 1, 2, 15, 0, 0, 0, loc), bi.StartTime)
		assert.Equal(t, time.Hour, bi.Duration)
		assert.Equal(t, "Ensaio", bi.Category)
	})

	t.Run("category containing a hyphen", func(t *testing.T) {
		bi, ok := parseChargeDescription("Reserva 15/06/2026 10:00 - Hip-Hop", loc)
		require.True(t, ok)
		assert.Equal(t, "Hip-Hop", bi.Category)
	})

	t.Run("surrounding whitespace", func(t *testing.T) {
		bi, ok := parseChargeDescription("  Reserva 02/01/2026 15:00 -  Ensaio ", loc)
		require.True(t, ok)
		assert.Equal(t, "Ensaio", bi.Category)
	})

	t.Run("unparseable descriptions", func(t *testing.T) {
		for _, desc := range []string{
			"",
			"Assinatura Essencial (monthly)",
			"Reserva sem data - Ensaio",
			"Reserva 02/01/2026 15:00",
			"Reserva 02/01/2026 15:00 - ",
			"02/01/2026 15:00 - Ensaio",
		} {
			_, ok := parseChargeDescription(desc, loc)
			assert.False(t, ok, "desc %q", desc)
		}
	})
}
