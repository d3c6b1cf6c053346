package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/beattrack/bpmdetect/internal/tempo"
)

func pulseTrain(period, repeats int) []float64 {
	series := make([]float64, period*repeats)
	for i := 0; i < len(series); i += period {
		series[i] = 1.0
	}
	return series
}

func TestEvaluateCandidateScoresByBeatCount(t *testing.T) {
	series := pulseTrain(20, 10)
	beats, normScore := evaluateCandidate(series, 20, 100)
	require.NotEmpty(t, beats.Samples)
	require.Equal(t, 20, beats.Period)
	require.Greater(t, normScore, 0.0)
	require.InDelta(t, beats.Score/float64(len(beats.Samples)), normScore, 1e-12)
}

func TestEvaluateCandidateEmptyTrackYieldsZeroScore(t *testing.T) {
	_, normScore := evaluateCandidate(nil, 20, 100)
	require.Zero(t, normScore)
}

func TestArbitrateKeepsPrimaryWhenNoCandidateBeatsMargin(t *testing.T) {
	sampleRate := 44100
	hopSize := 512
	frameRate := float64(sampleRate) / float64(hopSize)
	period := 20

	series := pulseTrain(period, 20)
	primaryBPM := 60.0 * frameRate / float64(period)

	result := tempo.Result{
		BPM:        primaryBPM,
		PeriodLag:  period,
		Candidates: []int{period},
	}

	arb := Arbitrate(series, result, sampleRate, hopSize)
	require.Equal(t, period, arb.Period)
	require.InDelta(t, primaryBPM, arb.BPM, 1e-6)
}

func TestArbitrateSkipsCandidatesOutsideThirtyPercentBand(t *testing.T) {
	sampleRate := 44100
	hopSize := 512
	frameRate := float64(sampleRate) / float64(hopSize)
	period := 20
	farPeriod := period * 3 // well outside +-30%

	series := pulseTrain(period, 20)
	primaryBPM := 60.0 * frameRate / float64(period)

	result := tempo.Result{
		BPM:        primaryBPM,
		PeriodLag:  period,
		Candidates: []int{period, farPeriod},
	}

	arb := Arbitrate(series, result, sampleRate, hopSize)

	var sawSkip bool
	for _, c := range arb.Log {
		if c.Period == farPeriod {
			require.True(t, c.Skipped)
			sawSkip = true
		}
	}
	require.True(t, sawSkip)
}

func TestArbitrateHandlesZeroCandidatesGracefully(t *testing.T) {
	result := tempo.Result{BPM: 120, PeriodLag: 20, Candidates: nil}
	arb := Arbitrate(pulseTrain(20, 10), result, 44100, 512)
	require.Equal(t, 20, arb.Period)
	require.Empty(t, arb.Log)
}
