package wavio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/beattrack/bpmdetect/internal/pcm"
)

func TestWriteThenReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.wav")

	original := pcm.Buffer{
		Samples:    []float32{0.5, -0.5, 0.25, -0.25, 0, 0},
		SampleRate: 44100,
		Channels:   2,
	}

	require.NoError(t, Write(path, original))

	got, err := Read(path)
	require.NoError(t, err)
	require.Equal(t, original.SampleRate, got.SampleRate)
	require.Equal(t, original.Channels, got.Channels)
	require.Len(t, got.Samples, len(original.Samples))
	for i := range original.Samples {
		require.InDelta(t, original.Samples[i], got.Samples[i], 1e-3)
	}
}

func TestWriteRejectsInvalidBuffer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.wav")

	err := Write(path, pcm.Buffer{SampleRate: 0, Channels: 1})
	require.Error(t, err)
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read("/nonexistent/path/does-not-exist.wav")
	require.Error(t, err)
}

func TestReadRejectsNonWavFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "not-a-wav.txt")
	require.NoError(t, os.WriteFile(path, []byte("not a wav file"), 0o644))

	_, err := Read(path)
	require.Error(t, err)
}
