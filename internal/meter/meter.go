// Package meter infers a time signature and downbeat positions from a
// beat sequence's onset-strength accent pattern.
package meter

import "math"

// TimeSignature is one of the small set of supported meters.
type TimeSignature int

const (
	TwoFour TimeSignature = iota
	ThreeFour
	FourFour
	SixEight
)

// String renders the canonical time-signature form, e.g. "4/4".
func (t TimeSignature) String() string {
	switch t {
	case TwoFour:
		return "2/4"
	case ThreeFour:
		return "3/4"
	case SixEight:
		return "6/8"
	default:
		return "4/4"
	}
}

const (
	accentWeight   = 0.7
	autocorrWeight = 0.3

	fourFourBiasAccent = 0.1
	fourFourBiasScore  = 0.8

	lowConfidence       = 0.15
	lowConfidenceMargin = 1.1

	compoundMargin = 1.1

	minBeatsForDetection = 8
	minPairsForCompound  = 4
)

// Result is the detected meter and its downbeat offsets.
type Result struct {
	TimeSignature   TimeSignature
	BeatsPerMeasure int
	DownbeatPhase   int
	Confidence      float64
	DownbeatSamples []int
}

// Detect infers the time signature from beat sample offsets and the
// onset-strength series they were drawn from. Fewer than 8 beats
// yields a default 4/4 result with zero confidence.
func Detect(beatSamples []int, onsetStrength []float64, hopSize int) Result {
	numBeats := len(beatSamples)
	if numBeats < minBeatsForDetection {
		return Result{
			TimeSignature:   FourFour,
			BeatsPerMeasure: 4,
			DownbeatPhase:   0,
			Confidence:      0,
			DownbeatSamples: extractDownbeats(beatSamples, 4, 0),
		}
	}

	onsetAtBeat := make([]float64, numBeats)
	onsetLen := len(onsetStrength)
	for i, sample := range beatSamples {
		frame := sample / hopSize
		if frame >= 0 && frame < onsetLen {
			onsetAtBeat[i] = onsetStrength[frame]
		}
	}

	bestGrouping := 4
	bestPhase := 0
	bestScore := math.Inf(-1)
	bestAccent := 0.0

	for _, g := range []int{2, 3, 4} {
		autocorr := beatAutocorrelation(onsetAtBeat, g)
		for phi := 0; phi < g; phi++ {
			accent := accentScore(onsetAtBeat, g, phi)
			score := accentWeight*accent + autocorrWeight*autocorr
			if score > bestScore {
				bestScore = score
				bestGrouping = g
				bestPhase = phi
				bestAccent = accent
			}
		}
	}

	// 2/4 vs 4/4: 4/4 is far more common, so prefer it whenever the
	// 4-grouping shows any meaningful accent contrast or comes close
	// to matching the 2/4 score.
	if bestGrouping == 2 {
		autocorr4 := beatAutocorrelation(onsetAtBeat, 4)
		best4Accent := math.Inf(-1)
		best4Phase := 0
		for phi := 0; phi < 4; phi++ {
			accent := accentScore(onsetAtBeat, 4, phi)
			if accent > best4Accent {
				best4Accent = accent
				best4Phase = phi
			}
		}
		score4 := accentWeight*best4Accent + autocorrWeight*autocorr4
		if best4Accent > fourFourBiasAccent || score4 > bestScore*fourFourBiasScore {
			bestGrouping = 4
			bestPhase = best4Phase
			bestAccent = best4Accent
			bestScore = score4
		}
	}

	result := Result{BeatsPerMeasure: bestGrouping, DownbeatPhase: bestPhase}
	switch bestGrouping {
	case 2:
		result.TimeSignature = TwoFour
	case 3:
		result.TimeSignature = ThreeFour
	default:
		result.TimeSignature = FourFour
	}

	result.Confidence = clamp01(bestAccent / 2.0)

	// Low-confidence fallback to 4/4, unless the winner clearly beats
	// the best 4-grouping score by more than 10%.
	if result.Confidence < lowConfidence && bestGrouping != 4 {
		best4Score := math.Inf(-1)
		best4Phase := 0
		autocorr4 := beatAutocorrelation(onsetAtBeat, 4)
		for phi := 0; phi < 4; phi++ {
			accent := accentScore(onsetAtBeat, 4, phi)
			score := accentWeight*accent + autocorrWeight*autocorr4
			if score > best4Score {
				best4Score = score
				best4Phase = phi
			}
		}
		if bestScore < best4Score*lowConfidenceMargin {
			result.TimeSignature = FourFour
			result.BeatsPerMeasure = 4
			result.DownbeatPhase = best4Phase
		}
	}

	// 6/8 compound-subdivision check, applied whether the winner is
	// 2/4 or 3/4.
	if result.TimeSignature == TwoFour {
		if checkCompoundSubdivision(beatSamples, onsetStrength, hopSize) {
			result.TimeSignature = SixEight
			// BeatsPerMeasure stays 2: dotted-quarter beats.
		}
	} else if result.TimeSignature == ThreeFour {
		if checkCompoundSubdivision(beatSamples, onsetStrength, hopSize) {
			result.TimeSignature = SixEight
			result.BeatsPerMeasure = 6
		}
	}

	result.DownbeatSamples = extractDownbeats(beatSamples, result.BeatsPerMeasure, result.DownbeatPhase)
	return result
}

// accentScore is the z-score contrast between the downbeat position
// (residue 0) and all other positions within a grouping.
func accentScore(onsetAtBeat []float64, grouping, phase int) float64 {
	n := len(onsetAtBeat)
	if n < grouping {
		return 0
	}

	positionSum := make([]float64, grouping)
	positionCount := make([]int, grouping)
	for i, v := range onsetAtBeat {
		pos := ((i-phase)%grouping + grouping) % grouping
		positionSum[pos] += v
		positionCount[pos]++
	}

	if positionCount[0] == 0 {
		return 0
	}
	downbeatMean := positionSum[0] / float64(positionCount[0])

	var otherSum float64
	var otherCount int
	for p := 1; p < grouping; p++ {
		otherSum += positionSum[p]
		otherCount += positionCount[p]
	}
	if otherCount == 0 {
		return 0
	}
	otherMean := otherSum / float64(otherCount)

	var mean float64
	for _, v := range onsetAtBeat {
		mean += v
	}
	mean /= float64(n)

	var variance float64
	for _, v := range onsetAtBeat {
		d := v - mean
		variance += d * d
	}
	variance /= float64(n)
	stddev := math.Sqrt(variance)

	return (downbeatMean - otherMean) / (stddev + 1e-6)
}

// beatAutocorrelation is the normalized autocorrelation of the beat
// accent vector at the given lag, overlap-corrected by n/(n-lag).
func beatAutocorrelation(onsetAtBeat []float64, lag int) float64 {
	n := len(onsetAtBeat)
	if lag <= 0 || lag >= n {
		return 0
	}

	var r0 float64
	for _, v := range onsetAtBeat {
		r0 += v * v
	}
	if r0 < 1e-12 {
		return 0
	}

	var rLag float64
	for i := 0; i < n-lag; i++ {
		rLag += onsetAtBeat[i] * onsetAtBeat[i+lag]
	}

	scale := float64(n) / float64(n-lag)
	return (rLag * scale) / r0
}

// checkCompoundSubdivision decides whether consecutive beats subdivide
// into 3 (compound/6-8) rather than 2 (simple) by comparing onset
// strength sampled at the ternary (1/3, 2/3) and binary (1/2) points of
// each beat interval.
func checkCompoundSubdivision(beatSamples []int, onsetStrength []float64, hopSize int) bool {
	n := len(beatSamples)
	if n < minPairsForCompound {
		return false
	}

	onsetLen := len(onsetStrength)
	var ternaryTotal, binaryTotal float64
	var count int

	for i := 0; i < n-1; i++ {
		start := float64(beatSamples[i])
		end := float64(beatSamples[i+1])
		span := end - start
		if span <= 0 {
			continue
		}

		frameT1 := roundInt((start + span/3.0) / float64(hopSize))
		frameT2 := roundInt((start + 2.0*span/3.0) / float64(hopSize))
		frameB := roundInt((start + span/2.0) / float64(hopSize))

		if frameT1 >= onsetLen || frameT2 >= onsetLen || frameB >= onsetLen {
			continue
		}
		if frameT1 < 0 || frameT2 < 0 || frameB < 0 {
			continue
		}

		tStrength := (onsetStrength[frameT1] + onsetStrength[frameT2]) / 2.0
		bStrength := onsetStrength[frameB]

		ternaryTotal += tStrength
		binaryTotal += bStrength
		count++
	}

	if count < minPairsForCompound {
		return false
	}

	ternaryAvg := ternaryTotal / float64(count)
	binaryAvg := binaryTotal / float64(count)

	if ternaryAvg <= 0 {
		return false
	}
	if binaryAvg <= 0 {
		return true
	}
	return ternaryAvg > compoundMargin*binaryAvg
}

func extractDownbeats(beatSamples []int, grouping, phase int) []int {
	var downbeats []int
	for i := phase; i < len(beatSamples); i += grouping {
		downbeats = append(downbeats, beatSamples[i])
	}
	return downbeats
}

func roundInt(x float64) int {
	return int(math.Round(x))
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
