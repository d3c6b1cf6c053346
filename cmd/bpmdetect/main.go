// Command bpmdetect estimates tempo, beat positions, time signature,
// and (optionally) key signature for a piece of recorded music, and
// writes a WAV copy with a synthesized metronome click mixed in at
// the detected beats.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/beattrack/bpmdetect/internal/config"
	"github.com/beattrack/bpmdetect/internal/decode"
	"github.com/beattrack/bpmdetect/internal/pipeline"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := config.Default()
	var output string

	cmd := &cobra.Command{
		Use:   "bpmdetect [options] <input>",
		Short: "Detect tempo, beats, meter, and key, and overlay a metronome click",
		Long: "bpmdetect estimates BPM, beat positions, a time signature, and an optional\n" +
			"key signature from recorded music, and writes a 16-bit PCM WAV copy with\n" +
			"a synthesized metronome click mixed in at the detected beats.\n\n" +
			"Supported inputs: WAV, MP3, MP4, M4A, or a URL (\"://\").\n" +
			"MP4/M4A require ffmpeg. URLs require yt-dlp and ffmpeg.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], output, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.Flags()
	flags.StringVarP(&output, "output", "o", "", "Output WAV path (default: <input>_click.wav; for URLs <title>_<bpm>bpm.wav)")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "Print detailed diagnostic tracing")
	flags.Float64Var(&opts.MinBPM, "min-bpm", opts.MinBPM, "Lower search bound for tempo estimation")
	flags.Float64Var(&opts.MaxBPM, "max-bpm", opts.MaxBPM, "Upper search bound for tempo estimation")
	flags.Float64Var(&opts.ClickVolume, "click-volume", opts.ClickVolume, "Click amplitude, clamped before mix")
	flags.Float64Var(&opts.ClickFreq, "click-freq", opts.ClickFreq, "Beat click tone in Hz")
	flags.Float64Var(&opts.DownbeatFreq, "downbeat-freq", opts.DownbeatFreq, "Downbeat click tone in Hz")
	flags.BoolVar(&opts.AccentDownbeats, "accent-downbeats", false, "Use a distinct downbeat click on measure-starts")
	flags.BoolVar(&opts.NoMeter, "no-meter", false, "Disable time-signature detection")
	flags.BoolVar(&opts.NoKey, "no-key", false, "Disable key-signature detection")

	return cmd
}

func run(input, output string, opts config.Options) error {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	if output == "" && !decode.IsURL(input) {
		output = input + "_click.wav"
	}

	summary, err := pipeline.Run(input, output, opts, logger)
	if err != nil {
		return err
	}

	fmt.Printf("Detected BPM: %.2f\n", summary.BPM)
	fmt.Printf("Beat count: %d\n", summary.BeatCount)
	if summary.MeterDetected {
		fmt.Printf("Time signature: %s\n", summary.Meter.TimeSignature)
	}
	if summary.KeyDetected {
		fmt.Printf("Key: %s (confidence %.2f)\n", summary.Key.Label, summary.Key.Confidence)
	}
	if summary.RawAudioPath != "" {
		fmt.Printf("Audio: %s\n", summary.RawAudioPath)
	}
	fmt.Printf("Output: %s\n", summary.OutputPath)

	return nil
}
