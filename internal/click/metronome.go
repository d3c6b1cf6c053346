// Package click synthesizes metronome clicks and mixes them into a
// stereo PCM buffer at detected beat positions.
package click

import (
	"math"

	"github.com/beattrack/bpmdetect/internal/pcm"
)

const (
	defaultDuration = 0.020 // seconds
	defaultDecay    = 200.0

	// DefaultFreq is the default beat click tone in Hz.
	DefaultFreq = 1000.0
	// DefaultDownbeatFreq is the default downbeat click tone in Hz.
	DefaultDownbeatFreq = 1500.0
)

// SynthClick renders a decaying sine burst: volume * sin(2*pi*f*t) *
// exp(-decay*t), for the default 20ms duration.
func SynthClick(sampleRate int, volume, freq float64) []float64 {
	return synthClick(sampleRate, volume, freq, defaultDuration, defaultDecay)
}

func synthClick(sampleRate int, volume, freq, duration, decay float64) []float64 {
	if sampleRate <= 0 || duration <= 0 {
		return nil
	}

	length := int(math.Round(duration * float64(sampleRate)))
	if length < 1 {
		length = 1
	}
	click := make([]float64, length)

	for i := 0; i < length; i++ {
		t := float64(i) / float64(sampleRate)
		env := math.Exp(-decay * t)
		click[i] = volume * math.Sin(2*math.Pi*freq*t) * env
	}

	return click
}

// Overlay mixes a beat click into audio at every offset in beatSamples
// using (volume, freq), then clamps every sample in the buffer to
// [-1, 1].
func Overlay(audio *pcm.Buffer, beatSamples []int, volume, freq float64) {
	OverlayWithDownbeats(audio, beatSamples, nil, volume, freq, DefaultDownbeatFreq)
}

// OverlayWithDownbeats mixes a beat click at beatSamples and an
// optional higher/lower-pitched click at downbeatSamples, then clamps
// every sample once, after all mixing is done.
func OverlayWithDownbeats(audio *pcm.Buffer, beatSamples, downbeatSamples []int, volume, freq, downbeatFreq float64) {
	if audio.SampleRate <= 0 || audio.Channels <= 0 || len(audio.Samples) == 0 {
		return
	}
	if len(beatSamples) == 0 {
		return
	}

	click := SynthClick(audio.SampleRate, volume, freq)
	if len(click) == 0 {
		return
	}

	mix(audio, beatSamples, click)

	if len(downbeatSamples) > 0 {
		downbeatClick := SynthClick(audio.SampleRate, volume, downbeatFreq)
		if len(downbeatClick) > 0 {
			mix(audio, downbeatSamples, downbeatClick)
		}
	}

	clampAll(audio.Samples)
}

func mix(audio *pcm.Buffer, offsets []int, click []float64) {
	frames := audio.NumFrames()
	channels := audio.Channels

	for _, beat := range offsets {
		if beat < 0 || beat >= frames {
			continue
		}
		for i, v := range click {
			frame := beat + i
			if frame >= frames {
				break
			}
			for ch := 0; ch < channels; ch++ {
				idx := frame*channels + ch
				audio.Samples[idx] += float32(v)
			}
		}
	}
}

func clampAll(samples []float32) {
	for i, s := range samples {
		if s < -1 {
			samples[i] = -1
		} else if s > 1 {
			samples[i] = 1
		}
	}
}
