// Package onset computes a mel-spectral-flux onset-strength function
// from a mono PCM signal.
package onset

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/beattrack/bpmdetect/internal/bpmerr"
	"github.com/beattrack/bpmdetect/internal/pcm"
)

const (
	// FFTSize is the analysis window length in samples.
	FFTSize = 2048
	// HopSize is the frame advance in samples.
	HopSize = 512
	// MelBands is the number of triangular mel filters.
	MelBands = 40

	minMelHz = 30.0
	maxMelHz = 8000.0
)

// Series is the per-frame onset-strength function plus the parameters
// used to produce it.
type Series struct {
	Strength []float64
	HopSize  int
	FFTSize  int
	SampleRate int
}

// FrameRate returns SampleRate/HopSize, the effective onset frame rate.
func (s Series) FrameRate() float64 {
	if s.HopSize <= 0 {
		return 0
	}
	return float64(s.SampleRate) / float64(s.HopSize)
}

// Detect computes the onset-strength series for a mono buffer.
func Detect(mono pcm.Buffer) (Series, error) {
	if mono.Channels != 1 {
		return Series{}, fmt.Errorf("onset: expected mono audio, got %d channels: %w", mono.Channels, bpmerr.ErrInvalidArgument)
	}
	if mono.SampleRate <= 0 {
		return Series{}, fmt.Errorf("onset: invalid sample rate %d: %w", mono.SampleRate, bpmerr.ErrInvalidArgument)
	}
	if len(mono.Samples) == 0 {
		return Series{HopSize: HopSize, FFTSize: FFTSize, SampleRate: mono.SampleRate}, nil
	}

	window := hannWindow(FFTSize)
	filters := melFilterbank(mono.SampleRate, FFTSize, MelBands, minMelHz, maxMelHz)

	frames := 0
	if len(mono.Samples) >= FFTSize {
		frames = 1 + (len(mono.Samples)-FFTSize)/HopSize
	}

	strength := make([]float64, frames)
	prevMel := make([]float64, MelBands)

	fft := fourier.NewFFT(FFTSize)
	frame := make([]float64, FFTSize)

	for fi := 0; fi < frames; fi++ {
		offset := fi * HopSize
		for i := 0; i < FFTSize; i++ {
			frame[i] = float64(mono.Samples[offset+i]) * window[i]
		}

		coeffs := fft.Coefficients(nil, frame)

		melEnergy := make([]float64, MelBands)
		for band := 0; band < MelBands; band++ {
			var sum float64
			filter := filters[band]
			for bin := 0; bin < len(coeffs); bin++ {
				re := real(coeffs[bin])
				im := imag(coeffs[bin])
				power := re*re + im*im
				sum += power * filter[bin]
			}
			melEnergy[band] = math.Log10(sum + 1e-10)
		}

		var flux float64
		for band := 0; band < MelBands; band++ {
			diff := melEnergy[band] - prevMel[band]
			if diff > 0 {
				flux += diff
			}
		}
		strength[fi] = flux
		prevMel = melEnergy
	}

	normalize(strength)

	return Series{
		Strength:   strength,
		HopSize:    HopSize,
		FFTSize:    FFTSize,
		SampleRate: mono.SampleRate,
	}, nil
}

// normalize z-score normalizes in place; left unnormalized if stddev is
// below the numeric noise floor.
func normalize(x []float64) {
	n := len(x)
	if n == 0 {
		return
	}
	var mean float64
	for _, v := range x {
		mean += v
	}
	mean /= float64(n)

	var variance float64
	for _, v := range x {
		d := v - mean
		variance += d * d
	}
	variance /= float64(n)
	stddev := math.Sqrt(variance)

	if stddev > 1e-6 {
		for i, v := range x {
			x[i] = (v - mean) / stddev
		}
	}
}

func hannWindow(n int) []float64 {
	w := make([]float64, n)
	denom := float64(n - 1)
	for i := 0; i < n; i++ {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/denom)
	}
	return w
}

func hzToMel(hz float64) float64 {
	return 2595.0 * math.Log10(1.0+hz/700.0)
}

func melToHz(mel float64) float64 {
	return 700.0 * (math.Pow(10.0, mel/2595.0) - 1.0)
}

// melFilterbank builds the triangular mel filters, one per band, each
// of length fftSize/2+1. Band edges are nudged apart when degenerate
// (adjacent bin points coincide).
func melFilterbank(sampleRate, fftSize, bands int, lowHz, highHz float64) [][]float64 {
	lowMel := hzToMel(lowHz)
	highMel := hzToMel(highHz)

	melPoints := make([]float64, bands+2)
	for i := 0; i < bands+2; i++ {
		t := float64(i) / float64(bands+1)
		melPoints[i] = lowMel + t*(highMel-lowMel)
	}

	numBins := fftSize/2 + 1
	binPoints := make([]int, bands+2)
	for i, mel := range melPoints {
		hz := melToHz(mel)
		bin := int(math.Floor(float64(fftSize+1) * hz / float64(sampleRate)))
		if bin < 0 {
			bin = 0
		}
		if bin > fftSize/2 {
			bin = fftSize / 2
		}
		binPoints[i] = bin
	}

	filters := make([][]float64, bands)
	for band := 0; band < bands; band++ {
		filters[band] = make([]float64, numBins)
		left := binPoints[band]
		center := binPoints[band+1]
		right := binPoints[band+2]
		if center == left {
			center = left + 1
		}
		if right == center {
			right = center + 1
		}

		for bin := left; bin < center; bin++ {
			if bin >= 0 && bin <= fftSize/2 {
				filters[band][bin] = float64(bin-left) / float64(center-left)
			}
		}
		for bin := center; bin < right; bin++ {
			if bin >= 0 && bin <= fftSize/2 {
				filters[band][bin] = float64(right-bin) / float64(right-center)
			}
		}
	}

	return filters
}
