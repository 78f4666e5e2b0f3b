package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDevelopment(t *testing.T) {
	t.Parallel()

	logger, err := New(true)
	require.NoError(t, err)
	require.NotNil(t, logger)
	require.True(t, logger.Core().Enabled(-1)) // debug enabled in dev
}

func TestNewProduction(t *testing.T) {
	t.Parallel()

	logger, err := New(false)
	require.NoError(t, err)
	require.NotNil(t, logger)
	require.False(t, logger.Core().Enabled(-1))
}

func TestNewConfigCarriesServiceField(t *testing.T) {
	t.Parallel()

	for _, development := range []bool{true, false} {
		cfg := NewConfig(development)
		require.Equal(t, "docwatch", cfg.InitialFields["service"])
		require.Equal(t, "ts", cfg.EncoderConfig.TimeKey)
	}
}
