package key

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/beattrack/bpmdetect/internal/pcm"
)

func TestDetectRejectsNonMono(t *testing.T) {
	buf := pcm.Buffer{Samples: make([]float32, fftSize), SampleRate: 44100, Channels: 2}
	_, err := Detect(buf)
	require.Error(t, err)
}

func TestDetectRejectsInvalidSampleRate(t *testing.T) {
	buf := pcm.Buffer{Samples: make([]float32, fftSize), SampleRate: 0, Channels: 1}
	_, err := Detect(buf)
	require.Error(t, err)
}

func TestDetectSilenceYieldsZeroChromaAndZeroConfidence(t *testing.T) {
	buf := pcm.Buffer{Samples: make([]float32, fftSize*2), SampleRate: 44100, Channels: 1}
	result, err := Detect(buf)
	require.NoError(t, err)
	for _, v := range result.Chroma {
		require.Zero(t, v)
	}
	require.Zero(t, result.Confidence)
	require.NotEmpty(t, result.Label)
}

func TestDetectTooShortBufferYieldsZeroChroma(t *testing.T) {
	buf := pcm.Buffer{Samples: make([]float32, fftSize/2), SampleRate: 44100, Channels: 1}
	result, err := Detect(buf)
	require.NoError(t, err)
	for _, v := range result.Chroma {
		require.Zero(t, v)
	}
}

func TestPearsonCorrelationIdenticalVectorsIsOne(t *testing.T) {
	v := [chromaBins]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	require.InDelta(t, 1.0, pearsonCorrelation(v, v), 1e-9)
}

func TestPearsonCorrelationConstantVectorIsZero(t *testing.T) {
	v := [chromaBins]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	flat := [chromaBins]float64{}
	for i := range flat {
		flat[i] = 5
	}
	require.Zero(t, pearsonCorrelation(v, flat))
}

func TestRotateIsCyclicAndInvertible(t *testing.T) {
	v := [chromaBins]float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
	rotated := rotate(v, 3)
	back := rotate(rotated, -3+chromaBins)
	require.Equal(t, v, back)
}

func TestHannWindowEndpointsAreZero(t *testing.T) {
	w := hannWindow(8)
	require.InDelta(t, 0.0, w[0], 1e-9)
	require.InDelta(t, 0.0, w[len(w)-1], 1e-9)
	for _, v := range w {
		require.GreaterOrEqual(t, v, -1e-9)
		require.LessOrEqual(t, v, 1.0+1e-9)
	}
}

func TestChromagramToneInEveryOctaveFavorsMatchingPitchClass(t *testing.T) {
	sampleRate := 44100
	// A2..A6 (110-1760 Hz), pitch class 9 ("A") in every analyzed
	// octave. Each octave is L1-normalized on its own, so an octave with
	// no tone of its own would be weighted by spectral leakage alone.
	freqs := []float64{110, 220, 440, 880, 1760}
	numSamples := fftSize * 4
	samples := make([]float32, numSamples)
	for i := 0; i < numSamples; i++ {
		var v float64
		for _, freq := range freqs {
			v += 0.2 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
		}
		samples[i] = float32(v)
	}

	buf := pcm.Buffer{Samples: samples, SampleRate: sampleRate, Channels: 1}
	chroma := computeChromagram(buf)

	maxBin := 0
	for i := 1; i < chromaBins; i++ {
		if chroma[i] > chroma[maxBin] {
			maxBin = i
		}
	}
	require.Equal(t, 9, maxBin)
}
