// Package key estimates a musical key signature from a mono PCM signal
// via multi-octave interpolated chroma and Krumhansl-Schmuckler
// correlation. It is a supporting feature, not the focus of the
// analysis pipeline.
package key

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/beattrack/bpmdetect/internal/bpmerr"
	"github.com/beattrack/bpmdetect/internal/pcm"
)

const (
	fftSize = 4096
	hopSize = 4096

	minFreqHz = 65.4  // C2
	maxFreqHz = 2093.0 // C7
	c0Hz      = 16.3516

	chromaBins = 12
)

// Krumhansl-Kessler key profiles (Krumhansl 1990). Index 0 = tonic.
var majorProfile = [chromaBins]float64{
	6.35, 2.23, 3.48, 2.33, 4.38, 4.09,
	2.52, 5.19, 2.39, 3.66, 2.29, 2.88,
}

var minorProfile = [chromaBins]float64{
	6.33, 2.68, 3.52, 5.38, 2.60, 3.53,
	2.54, 4.75, 3.98, 2.69, 3.34, 3.17,
}

var keyNames = [chromaBins]string{
	"C", "C#", "D", "Eb", "E", "F",
	"F#", "G", "Ab", "A", "Bb", "B",
}

// Result is the detected key signature.
type Result struct {
	KeyName     string
	Mode        string // "major" or "minor"
	Label       string // e.g. "C# minor"
	Correlation float64
	Confidence  float64 // best correlation minus runner-up
	Chroma      [chromaBins]float64
}

// Detect estimates the key signature of a mono buffer.
func Detect(mono pcm.Buffer) (Result, error) {
	if mono.Channels != 1 {
		return Result{}, fmt.Errorf("key: expected mono audio, got %d channels: %w", mono.Channels, bpmerr.ErrInvalidArgument)
	}
	if mono.SampleRate <= 0 {
		return Result{}, fmt.Errorf("key: invalid sample rate %d: %w", mono.SampleRate, bpmerr.ErrInvalidArgument)
	}

	chroma := computeChromagram(mono)

	bestCorr := -2.0
	secondBestCorr := -2.0
	bestRoot := 0
	bestIsMajor := true

	for root := 0; root < chromaBins; root++ {
		rotatedMajor := rotate(majorProfile, root)
		rotatedMinor := rotate(minorProfile, root)

		corrMajor := pearsonCorrelation(chroma, rotatedMajor)
		corrMinor := pearsonCorrelation(chroma, rotatedMinor)

		if corrMajor > bestCorr {
			secondBestCorr = bestCorr
			bestCorr = corrMajor
			bestRoot = root
			bestIsMajor = true
		} else if corrMajor > secondBestCorr {
			secondBestCorr = corrMajor
		}

		if corrMinor > bestCorr {
			secondBestCorr = bestCorr
			bestCorr = corrMinor
			bestRoot = root
			bestIsMajor = false
		} else if corrMinor > secondBestCorr {
			secondBestCorr = corrMinor
		}
	}

	mode := "minor"
	if bestIsMajor {
		mode = "major"
	}

	return Result{
		KeyName:     keyNames[bestRoot],
		Mode:        mode,
		Label:       keyNames[bestRoot] + " " + mode,
		Correlation: bestCorr,
		Confidence:  bestCorr - secondBestCorr,
		Chroma:      chroma,
	}, nil
}

// binMapping is the precomputed pitch-class/octave assignment for one
// FFT bin, distributing its power between the two nearest pitch
// classes by linear interpolation.
type binMapping struct {
	chromaLo, chromaHi int
	weightHi           float64
	octave             int
	valid              bool
}

func computeChromagram(mono pcm.Buffer) [chromaBins]float64 {
	var chroma [chromaBins]float64
	if len(mono.Samples) < fftSize {
		return chroma
	}

	window := hannWindow(fftSize)
	numBins := fftSize/2 + 1
	sr := float64(mono.SampleRate)

	minPitch := 12.0 * math.Log2(minFreqHz/c0Hz)
	minOctave := int(math.Floor(minPitch / 12.0))
	maxPitch := 12.0 * math.Log2(maxFreqHz/c0Hz)
	maxOctave := int(math.Floor(maxPitch / 12.0))
	numOctaves := maxOctave - minOctave + 1

	binMap := make([]binMapping, numBins)
	for k := 1; k < numBins; k++ {
		freq := float64(k) * sr / float64(fftSize)
		if freq < minFreqHz || freq > maxFreqHz {
			continue
		}
		pitch := 12.0 * math.Log2(freq/c0Hz)
		pitchFloor := math.Floor(pitch)
		frac := pitch - pitchFloor
		pcLo := int(pitchFloor) % 12
		if pcLo < 0 {
			pcLo += 12
		}
		pcHi := (pcLo + 1) % 12
		octave := int(math.Floor(pitch/12.0)) - minOctave
		if octave < 0 {
			octave = 0
		}
		if octave > numOctaves-1 {
			octave = numOctaves - 1
		}

		binMap[k] = binMapping{
			chromaLo: pcLo,
			chromaHi: pcHi,
			weightHi: frac,
			octave:   octave,
			valid:    true,
		}
	}

	octaveChroma := make([][chromaBins]float64, numOctaves)

	fft := fourier.NewFFT(fftSize)
	numFrames := 1 + (len(mono.Samples)-fftSize)/hopSize
	frame := make([]float64, fftSize)

	for fi := 0; fi < numFrames; fi++ {
		offset := fi * hopSize
		for i := 0; i < fftSize; i++ {
			frame[i] = float64(mono.Samples[offset+i]) * window[i]
		}

		coeffs := fft.Coefficients(nil, frame)

		for k := 1; k < fftSize/2; k++ {
			m := binMap[k]
			if !m.valid {
				continue
			}
			re := real(coeffs[k])
			im := imag(coeffs[k])
			power := re*re + im*im
			oc := &octaveChroma[m.octave]
			oc[m.chromaLo] += power * (1.0 - m.weightHi)
			oc[m.chromaHi] += power * m.weightHi
		}
	}

	contributingOctaves := 0
	for oct := 0; oct < numOctaves; oct++ {
		oc := &octaveChroma[oct]
		var total float64
		for _, v := range oc {
			total += v
		}
		if total < 1e-12 {
			continue
		}
		for i := range oc {
			oc[i] /= total
		}
		for i := 0; i < chromaBins; i++ {
			chroma[i] += oc[i]
		}
		contributingOctaves++
	}

	if contributingOctaves > 0 {
		scale := 1.0 / float64(contributingOctaves)
		for i := range chroma {
			chroma[i] *= scale
		}
	}

	return chroma
}

func pearsonCorrelation(x, y [chromaBins]float64) float64 {
	var meanX, meanY float64
	for i := 0; i < chromaBins; i++ {
		meanX += x[i]
		meanY += y[i]
	}
	meanX /= chromaBins
	meanY /= chromaBins

	var num, denX, denY float64
	for i := 0; i < chromaBins; i++ {
		dx := x[i] - meanX
		dy := y[i] - meanY
		num += dx * dy
		denX += dx * dx
		denY += dy * dy
	}

	den := math.Sqrt(denX * denY)
	if den < 1e-12 {
		return 0
	}
	return num / den
}

func rotate(profile [chromaBins]float64, root int) [chromaBins]float64 {
	var rotated [chromaBins]float64
	for i := 0; i < chromaBins; i++ {
		rotated[i] = profile[((i-root)%chromaBins+chromaBins)%chromaBins]
	}
	return rotated
}

func hannWindow(n int) []float64 {
	w := make([]float64, n)
	denom := float64(n - 1)
	for i := 0; i < n; i++ {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/denom)
	}
	return w
}
