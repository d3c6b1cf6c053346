package pcm

import (
	"testing"

	"github.com/go-audio/audio"
	"github.com/stretchr/testify/require"
)

func TestNumFrames(t *testing.T) {
	cases := []struct {
		name     string
		channels int
		samples  int
		want     int
	}{
		{"mono", 1, 100, 100},
		{"stereo", 2, 100, 50},
		{"zero channels", 0, 100, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b := Buffer{Samples: make([]float32, c.samples), Channels: c.channels}
			require.Equal(t, c.want, b.NumFrames())
		})
	}
}

func TestToMonoAveragesChannels(t *testing.T) {
	b := Buffer{
		Samples:    []float32{1.0, -1.0, 0.5, 0.5},
		SampleRate: 44100,
		Channels:   2,
	}
	mono := b.ToMono()
	require.Equal(t, 1, mono.Channels)
	require.Len(t, mono.Samples, 2)
	require.InDelta(t, 0.0, mono.Samples[0], 1e-6)
	require.InDelta(t, 0.5, mono.Samples[1], 1e-6)
	require.Equal(t, 44100, mono.SampleRate)
}

func TestToMonoIsNoOpForMono(t *testing.T) {
	b := Buffer{Samples: []float32{1, 2, 3}, Channels: 1, SampleRate: 48000}
	mono := b.ToMono()
	require.Equal(t, b.Samples, mono.Samples)
}

func TestDurationSec(t *testing.T) {
	b := Buffer{Samples: make([]float32, 200), Channels: 2, SampleRate: 100}
	require.InDelta(t, 1.0, b.DurationSec(), 1e-9)

	zeroRate := Buffer{Samples: make([]float32, 10), Channels: 1, SampleRate: 0}
	require.Equal(t, 0.0, zeroRate.DurationSec())
}

func TestFromIntBufferAndBack(t *testing.T) {
	intBuf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: 44100},
		Data:           []int{16384, -16384, 0},
		SourceBitDepth: 16,
	}
	b := FromIntBuffer(intBuf)
	require.Equal(t, 44100, b.SampleRate)
	require.Equal(t, 1, b.Channels)
	require.InDelta(t, 0.5, b.Samples[0], 1e-4)
	require.InDelta(t, -0.5, b.Samples[1], 1e-4)

	back := b.ToIntBuffer()
	require.Equal(t, 16383, back.Data[0]) // 0.5*32767 truncated
}

func TestToIntBufferClamps(t *testing.T) {
	b := Buffer{Samples: []float32{2.0, -2.0}, Channels: 1, SampleRate: 1000}
	back := b.ToIntBuffer()
	require.Equal(t, 32767, back.Data[0])
	require.Equal(t, -32767, back.Data[1])
}
