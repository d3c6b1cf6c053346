// Package tempo estimates a global BPM and period from an onset-strength
// series via autocorrelation, a log-Gaussian tempo prior, and iterative
// octave correction.
package tempo

import (
	"fmt"
	"math"
	"sort"

	"github.com/beattrack/bpmdetect/internal/bpmerr"
)

const (
	priorCenterBPM = 120.0
	priorSigma     = 1.0
	maxCandidates  = 5
)

// Candidate is one weighted autocorrelation peak considered during
// selection, kept for verbose diagnostics.
type Candidate struct {
	Lag        int
	BPM        float64
	Autocorr   float64
	Weighted   float64
}

// Result is the outcome of tempo estimation.
type Result struct {
	BPM        float64
	PeriodLag  int
	Candidates []int // unique integer lags, primary included, top peaks by weighted score
	Diagnostics []Candidate // top-10 weighted peaks, for verbose tracing
}

// Estimate computes the primary tempo and candidate periods for an
// onset-strength series.
//
// The >200 BPM hard-doubling safety below is a known, intentional
// trade-off: a genuinely fast half-time tempo (e.g. drum & bass) can be
// pushed to an incorrect double-time lag. This matches the reference
// behavior and is not special-cased.
func Estimate(onsetStrength []float64, sampleRate, hopSize int, minBPM, maxBPM float64) (Result, error) {
	if sampleRate <= 0 || hopSize <= 0 {
		return Result{}, fmt.Errorf("tempo: invalid sample rate %d or hop size %d: %w", sampleRate, hopSize, bpmerr.ErrInvalidArgument)
	}
	if len(onsetStrength) < 2 {
		return Result{}, nil
	}

	frameRate := float64(sampleRate) / float64(hopSize)
	if minBPM < 1 {
		minBPM = 1
	}
	if maxBPM < minBPM+1 {
		maxBPM = minBPM + 1
	}

	maxLag := int(math.Floor(60.0 * frameRate / minBPM))
	minLag := int(math.Ceil(60.0 * frameRate / maxBPM))
	if minLag < 1 {
		minLag = 1
	}
	if maxLag > len(onsetStrength)-1 {
		maxLag = len(onsetStrength) - 1
	}
	if maxLag <= minLag {
		return Result{}, nil
	}

	autocorr := make([]float64, maxLag+1)
	for lag := minLag; lag <= maxLag; lag++ {
		var sum float64
		count := len(onsetStrength) - lag
		for i := lag; i < len(onsetStrength); i++ {
			sum += onsetStrength[i] * onsetStrength[i-lag]
		}
		if count > 0 {
			autocorr[lag] = sum / float64(count)
		}
	}

	weighted := make([]float64, len(autocorr))
	bestLag := minLag
	bestScore := math.Inf(-1)
	for lag := minLag; lag <= maxLag; lag++ {
		bpm := bpmFromLag(lag, frameRate)
		if bpm <= 0 {
			continue
		}
		logRatio := math.Log2(bpm / priorCenterBPM)
		prior := math.Exp(-0.5 * (logRatio * logRatio) / (priorSigma * priorSigma))
		weighted[lag] = autocorr[lag] * prior
		if weighted[lag] > bestScore {
			bestScore = weighted[lag]
			bestLag = lag
		}
	}

	diagnostics := topPeaks(weighted, autocorr, minLag, maxLag, frameRate, 10)

	medianWeighted := median(weighted[minLag : maxLag+1])

	// Iterative octave correction: repeatedly halve the lag while the
	// halved peak is genuine (above the noise floor and at least half
	// the parent's strength). Strict '>' per the reference behavior.
	for {
		halfCenter := bestLag / 2
		searchLo := maxInt(minLag, halfCenter-2)
		searchHi := minInt(maxLag, halfCenter+2)

		bestHalf := -1
		bestHalfScore := math.Inf(-1)
		for lag := searchLo; lag <= searchHi; lag++ {
			if weighted[lag] > bestHalfScore {
				bestHalfScore = weighted[lag]
				bestHalf = lag
			}
		}

		if bestHalf < minLag {
			break
		}
		parentScore := weighted[bestLag]
		if bestHalfScore > medianWeighted && bestHalfScore > 0.5*parentScore {
			bestLag = bestHalf
		} else {
			break
		}
	}

	// Half-tempo safety: an apparent tempo above 200 BPM is almost
	// always an octave error; prefer the half-tempo lag when it still
	// fits the search range.
	if candidateBPM := bpmFromLag(bestLag, frameRate); candidateBPM > 200 {
		doubled := bestLag * 2
		if doubled <= maxLag {
			bestLag = doubled
		}
	}

	refinedLag := parabolicInterpolate(autocorr, bestLag, minLag, maxLag)

	candidates := candidatePeriods(weighted, bestLag, minLag, maxLag, maxCandidates)

	return Result{
		BPM:         bpmFromLagF(refinedLag, frameRate),
		PeriodLag:   bestLag,
		Candidates:  candidates,
		Diagnostics: diagnostics,
	}, nil
}

func bpmFromLag(lag int, frameRate float64) float64 {
	if lag <= 0 || frameRate <= 0 {
		return 0
	}
	return 60.0 * frameRate / float64(lag)
}

func bpmFromLagF(lag, frameRate float64) float64 {
	if lag <= 0 || frameRate <= 0 {
		return 0
	}
	return 60.0 * frameRate / lag
}

// parabolicInterpolate fits a parabola through data[peak-1..peak+1] on
// the raw autocorrelation and returns the fractional lag of its vertex
// (peak plus the offset), guarded against a near-flat/degenerate
// denominator.
func parabolicInterpolate(data []float64, peak, lo, hi int) float64 {
	if peak <= lo || peak >= hi {
		return float64(peak)
	}
	a := data[peak-1]
	b := data[peak]
	c := data[peak+1]
	denom := a - 2*b + c
	if math.Abs(denom) < 1e-12 {
		return float64(peak)
	}
	delta := 0.5 * (a - c) / denom
	return float64(peak) + delta
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}

// candidatePeriods returns up to maxN unique lags, the local peaks of
// the weighted score ranked by that score, with the primary lag
// guaranteed to be included.
func candidatePeriods(weighted []float64, primary, minLag, maxLag, maxN int) []int {
	type scored struct {
		lag   int
		score float64
	}
	peaks := make([]scored, 0, maxLag-minLag+1)
	for lag := minLag; lag <= maxLag; lag++ {
		if lag > minLag && weighted[lag] < weighted[lag-1] {
			continue
		}
		if lag < maxLag && weighted[lag] < weighted[lag+1] {
			continue
		}
		peaks = append(peaks, scored{lag, weighted[lag]})
	}
	sort.Slice(peaks, func(i, j int) bool { return peaks[i].score > peaks[j].score })

	seen := map[int]bool{primary: true}
	result := []int{primary}
	for _, p := range peaks {
		if len(result) >= maxN {
			break
		}
		if seen[p.lag] {
			continue
		}
		seen[p.lag] = true
		result = append(result, p.lag)
	}
	return result
}

func topPeaks(weighted, autocorr []float64, minLag, maxLag int, frameRate float64, n int) []Candidate {
	all := make([]Candidate, 0, maxLag-minLag+1)
	for lag := minLag; lag <= maxLag; lag++ {
		if lag > minLag && weighted[lag] < weighted[lag-1] {
			continue
		}
		if lag < maxLag && weighted[lag] < weighted[lag+1] {
			continue
		}
		all = append(all, Candidate{
			Lag:      lag,
			BPM:      bpmFromLag(lag, frameRate),
			Autocorr: autocorr[lag],
			Weighted: weighted[lag],
		})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Weighted > all[j].Weighted })
	if len(all) > n {
		all = all[:n]
	}
	return all
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
