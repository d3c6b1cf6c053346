package pipeline

import (
	"math"

	"github.com/beattrack/bpmdetect/internal/beat"
	"github.com/beattrack/bpmdetect/internal/tempo"
)

const primaryMargin = 1.05

// CandidateLog records one candidate period's evaluation, for verbose
// diagnostics.
type CandidateLog struct {
	Period    int
	BPM       float64
	Score     float64
	BeatCount int
	NormScore float64
	Skipped   bool
}

// ArbitrationResult is the outcome of running the beat tracker over
// every surviving tempo candidate and picking the highest normalized
// score.
type ArbitrationResult struct {
	Period int
	Beats  beat.Sequence
	BPM    float64
	Log    []CandidateLog
}

// evaluateCandidate is the pure per-candidate function the arbitration
// policy is built from: given a period, it returns the beat track and
// its per-beat-normalized DP score. Kept standalone so it can be
// unit-tested on its own; Arbitrate calls it directly for each
// surviving candidate.
func evaluateCandidate(onsetStrength []float64, period, hopSize int) (beat.Sequence, float64) {
	beats := beat.Track(onsetStrength, period, hopSize)
	if len(beats.Samples) == 0 {
		return beats, 0
	}
	return beats, beats.Score / float64(len(beats.Samples))
}

// Arbitrate runs the beat tracker over every tempo candidate within
// ±30% of the primary BPM and picks the candidate with the best
// normalized DP score, requiring non-primary candidates to beat the
// primary's normalized score by a 5% margin.
func Arbitrate(onsetStrength []float64, result tempo.Result, sampleRate, hopSize int) ArbitrationResult {
	frameRate := float64(sampleRate) / float64(hopSize)
	primaryBPM := result.BPM

	bestPeriod := result.PeriodLag
	var bestBeats beat.Sequence
	bestScore := math.Inf(-1)
	primaryNormScore := math.Inf(-1)

	var log []CandidateLog

	for _, period := range result.Candidates {
		candidateBPM := 0.0
		if period > 0 {
			candidateBPM = 60.0 * frameRate / float64(period)
		}

		ratio := candidateBPM / primaryBPM
		if ratio < 0.7 || ratio > 1.3 {
			log = append(log, CandidateLog{Period: period, BPM: candidateBPM, Skipped: true})
			continue
		}

		beats, normScore := evaluateCandidate(onsetStrength, period, hopSize)
		log = append(log, CandidateLog{
			Period:    period,
			BPM:       candidateBPM,
			Score:     beats.Score,
			BeatCount: len(beats.Samples),
			NormScore: normScore,
		})

		if period == result.PeriodLag {
			primaryNormScore = normScore
		}

		threshold := bestScore
		if period != result.PeriodLag && primaryNormScore > math.Inf(-1) {
			threshold = math.Max(threshold, primaryNormScore*primaryMargin)
		}

		if normScore > threshold {
			bestScore = normScore
			bestBeats = beats
			bestPeriod = period
		}
	}

	finalBPM := result.BPM
	if bestPeriod > 0 {
		finalBPM = 60.0 * frameRate / float64(bestPeriod)
	}

	return ArbitrationResult{
		Period: bestPeriod,
		Beats:  bestBeats,
		BPM:    finalBPM,
		Log:    log,
	}
}
