// Package pipeline orchestrates the full analysis: decode, onset
// detection, tempo estimation, beat-tracker arbitration, meter
// detection, optional key detection, click overlay, and WAV output.
package pipeline

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/beattrack/bpmdetect/internal/click"
	"github.com/beattrack/bpmdetect/internal/config"
	"github.com/beattrack/bpmdetect/internal/decode"
	"github.com/beattrack/bpmdetect/internal/key"
	"github.com/beattrack/bpmdetect/internal/meter"
	"github.com/beattrack/bpmdetect/internal/onset"
	"github.com/beattrack/bpmdetect/internal/tempo"
	"github.com/beattrack/bpmdetect/internal/wavio"
)

// Summary is everything the CLI driver needs to print per §6's stdout
// contract.
type Summary struct {
	BPM           float64
	BeatCount     int
	Meter         meter.Result
	MeterDetected bool
	Key           key.Result
	KeyDetected   bool
	OutputPath    string
	RawAudioPath  string // non-empty only for URL inputs
}

// Run decodes input, analyzes it, overlays a metronome click at the
// detected beats, and writes the result to output (or a derived
// default path when output is empty).
func Run(input, output string, opts config.Options, logger *slog.Logger) (Summary, error) {
	stereo, err := decode.Decode(input)
	if err != nil {
		return Summary{}, err
	}
	logger.Debug("decoded input", "frames", stereo.NumFrames(), "sample_rate", stereo.SampleRate, "channels", stereo.Channels)

	mono := stereo.ToMono()

	onsetSeries, err := onset.Detect(mono)
	if err != nil {
		return Summary{}, err
	}
	logger.Debug("computed onset strength", "frames", len(onsetSeries.Strength))

	tempoResult, err := tempo.Estimate(onsetSeries.Strength, mono.SampleRate, onsetSeries.HopSize, opts.MinBPM, opts.MaxBPM)
	if err != nil {
		return Summary{}, err
	}
	if opts.Verbose {
		logTempoDiagnostics(logger, tempoResult)
	}

	arbitration := Arbitrate(onsetSeries.Strength, tempoResult, mono.SampleRate, onsetSeries.HopSize)
	if opts.Verbose {
		for _, c := range arbitration.Log {
			if c.Skipped {
				logger.Debug("candidate skipped (outside ±30%)", "period", c.Period, "bpm", c.BPM)
				continue
			}
			logger.Debug("candidate evaluated", "period", c.Period, "bpm", c.BPM, "score", c.Score, "beats", c.BeatCount, "norm", c.NormScore)
		}
		if arbitration.Period != tempoResult.PeriodLag {
			logger.Debug("beat tracker re-estimated tempo", "from_bpm", tempoResult.BPM, "to_bpm", arbitration.BPM, "period", arbitration.Period)
		}
	}

	finalBPM := arbitration.BPM
	beats := arbitration.Beats

	summary := Summary{
		BPM:       finalBPM,
		BeatCount: len(beats.Samples),
	}

	var meterResult meter.Result
	if !opts.NoMeter {
		meterResult = meter.Detect(beats.Samples, onsetSeries.Strength, onsetSeries.HopSize)
		summary.Meter = meterResult
		summary.MeterDetected = true
	}

	if !opts.NoKey {
		keyResult, err := key.Detect(mono)
		if err != nil {
			return Summary{}, err
		}
		summary.Key = keyResult
		summary.KeyDetected = true
	}

	actualOutput, rawOutput := outputPaths(output, stereo.Title, finalBPM)
	summary.OutputPath = actualOutput
	summary.RawAudioPath = rawOutput

	// The raw undecorated stereo copy (for URL inputs) is written
	// before the click overlay mutates the buffer in place.
	if rawOutput != "" {
		if err := wavio.Write(rawOutput, stereo); err != nil {
			return Summary{}, err
		}
	}

	volume := math.Max(0, math.Min(1, opts.ClickVolume))
	if !opts.NoMeter && len(meterResult.DownbeatSamples) > 0 && opts.AccentDownbeats {
		click.OverlayWithDownbeats(&stereo, beats.Samples, meterResult.DownbeatSamples, volume, opts.ClickFreq, opts.DownbeatFreq)
	} else {
		click.Overlay(&stereo, beats.Samples, volume, opts.ClickFreq)
	}

	if err := wavio.Write(actualOutput, stereo); err != nil {
		return Summary{}, err
	}

	return summary, nil
}

// outputPaths builds the final click-track output path and, for URL
// inputs with a known title, a companion raw-audio path.
func outputPaths(output, title string, bpm float64) (actual, raw string) {
	bpmInt := int(math.Round(bpm))

	if output == "" && title != "" {
		base := sanitizeFilename(title)
		return fmt.Sprintf("%s_%dbpm.wav", base, bpmInt), base + ".wav"
	}
	if output == "" {
		return "output_click.wav", ""
	}
	return output, ""
}

// sanitizeFilename replaces characters unsafe in file names with
// underscores: / \ : * ? " < > | space -
func sanitizeFilename(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, c := range name {
		switch c {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ', '-':
			b.WriteByte('_')
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}

func logTempoDiagnostics(logger *slog.Logger, result tempo.Result) {
	for _, c := range result.Diagnostics {
		logger.Debug("tempo candidate", "lag", c.Lag, "bpm", c.BPM, "weighted", c.Weighted, "autocorr", c.Autocorr)
	}
	logger.Debug("primary tempo", "period", result.PeriodLag, "bpm", result.BPM)
}
