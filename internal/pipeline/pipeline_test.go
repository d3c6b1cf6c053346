package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeFilenameReplacesUnsafeCharacters(t *testing.T) {
	got := sanitizeFilename(`My Song: Part/One\Two*Three?"<>|-End`)
	require.NotContains(t, got, " ")
	require.NotContains(t, got, "/")
	require.NotContains(t, got, "\\")
	require.NotContains(t, got, ":")
	require.NotContains(t, got, "*")
	require.NotContains(t, got, "?")
	require.NotContains(t, got, "\"")
	require.NotContains(t, got, "<")
	require.NotContains(t, got, ">")
	require.NotContains(t, got, "|")
	require.NotContains(t, got, "-")
}

func TestSanitizeFilenamePreservesSafeCharacters(t *testing.T) {
	got := sanitizeFilename("Track_01.v2")
	require.Equal(t, "Track_01.v2", got)
}

func TestOutputPathsExplicitOutputHasNoRawPath(t *testing.T) {
	actual, raw := outputPaths("custom.wav", "Some Title", 128)
	require.Equal(t, "custom.wav", actual)
	require.Empty(t, raw)
}

func TestOutputPathsNoTitleNoOutputFallsBackToDefault(t *testing.T) {
	actual, raw := outputPaths("", "", 128)
	require.Equal(t, "output_click.wav", actual)
	require.Empty(t, raw)
}

func TestOutputPathsURLWithTitleDerivesBothPaths(t *testing.T) {
	actual, raw := outputPaths("", "My Track", 127.6)
	require.Equal(t, "My_Track_128bpm.wav", actual)
	require.Equal(t, "My_Track.wav", raw)
}
