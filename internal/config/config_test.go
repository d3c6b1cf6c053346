package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesDocumentedFlagDefaults(t *testing.T) {
	opts := Default()
	require.Equal(t, 50.0, opts.MinBPM)
	require.Equal(t, 220.0, opts.MaxBPM)
	require.Equal(t, 0.5, opts.ClickVolume)
	require.Equal(t, 1000.0, opts.ClickFreq)
	require.Equal(t, 1500.0, opts.DownbeatFreq)
	require.False(t, opts.Verbose)
	require.False(t, opts.AccentDownbeats)
	require.False(t, opts.NoMeter)
	require.False(t, opts.NoKey)
}
