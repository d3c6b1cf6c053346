package beat

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTrackWithAlphaDegenerateInputs(t *testing.T) {
	require.Equal(t, Sequence{Period: 10}, TrackWithAlpha(nil, 10, 512, DefaultAlpha))
	require.Equal(t, Sequence{Period: 0}, TrackWithAlpha([]float64{1, 2, 3}, 0, 512, DefaultAlpha))
	require.Equal(t, Sequence{Period: 10}, TrackWithAlpha([]float64{1, 2, 3}, 10, 0, DefaultAlpha))
}

func TestTrackFindsRegularBeats(t *testing.T) {
	const period = 20
	const hopSize = 512
	frames := period * 10

	series := make([]float64, frames)
	for i := 0; i < frames; i += period {
		series[i] = 1.0
	}

	seq := Track(series, period, hopSize)
	require.NotEmpty(t, seq.Samples)
	require.Equal(t, period, seq.Period)

	// Samples must be strictly increasing.
	for i := 1; i < len(seq.Samples); i++ {
		require.Greater(t, seq.Samples[i], seq.Samples[i-1])
	}

	// Gaps should cluster near the period (in samples), within the
	// DP's search window of [period*0.5, period*2.0].
	minGap := int(math.Round(float64(period)*0.5)) * hopSize
	maxGap := int(math.Round(float64(period)*2.0)) * hopSize
	for i := 1; i < len(seq.Samples); i++ {
		gap := seq.Samples[i] - seq.Samples[i-1]
		require.GreaterOrEqual(t, gap, minGap)
		require.LessOrEqual(t, gap, maxGap)
	}
}

func TestTrackSamplesAreFrameIndexTimesHopSize(t *testing.T) {
	series := []float64{0, 1, 0, 1, 0, 1, 0, 1}
	seq := Track(series, 2, 100)
	for _, s := range seq.Samples {
		require.Zero(t, s%100)
	}
}

func TestReverseInts(t *testing.T) {
	xs := []int{1, 2, 3, 4, 5}
	reverseInts(xs)
	require.Equal(t, []int{5, 4, 3, 2, 1}, xs)

	single := []int{1}
	reverseInts(single)
	require.Equal(t, []int{1}, single)
}

func TestClampInt(t *testing.T) {
	require.Equal(t, 0, clampInt(-5, 0, 10))
	require.Equal(t, 10, clampInt(15, 0, 10))
	require.Equal(t, 5, clampInt(5, 0, 10))
}
