// Copyright 2019 Marius Ackerman
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package pcm holds the interleaved float sample container shared by
// every analysis and I/O stage.
package pcm

import "github.com/go-audio/audio"

// Buffer is an interleaved PCM signal with samples nominally in [-1, 1].
type Buffer struct {
	Samples    []float32
	SampleRate int
	Channels   int
	Title      string
}

// NumFrames returns len(Samples)/Channels, or 0 if Channels <= 0.
func (b Buffer) NumFrames() int {
	if b.Channels <= 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

// DurationSec returns the buffer length in seconds, or 0 if SampleRate <= 0.
func (b Buffer) DurationSec() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(b.NumFrames()) / float64(b.SampleRate)
}

// ToMono averages all channels into a single channel, matching the
// original's ascending-channel-index sum before dividing by the count.
func (b Buffer) ToMono() Buffer {
	if b.Channels <= 1 {
		return b
	}

	frames := b.NumFrames()
	mono := make([]float32, frames)
	channels := b.Channels
	for frame := 0; frame < frames; frame++ {
		var sum float64
		base := frame * channels
		for ch := 0; ch < channels; ch++ {
			sum += float64(b.Samples[base+ch])
		}
		mono[frame] = float32(sum / float64(channels))
	}

	return Buffer{
		Samples:    mono,
		SampleRate: b.SampleRate,
		Channels:   1,
		Title:      b.Title,
	}
}

// FromIntBuffer converts a go-audio integer PCM buffer (as produced by
// wav.Decoder.FullPCMBuffer) into a float Buffer.
func FromIntBuffer(buf *audio.IntBuffer) Buffer {
	if buf == nil || buf.Format == nil {
		return Buffer{}
	}
	samples := make([]float32, len(buf.Data))
	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = 16
	}
	full := float32(int(1) << (bitDepth - 1))
	for i, v := range buf.Data {
		samples[i] = float32(v) / full
	}
	return Buffer{
		Samples:    samples,
		SampleRate: buf.Format.SampleRate,
		Channels:   buf.Format.NumChannels,
	}
}

// ToIntBuffer converts a float Buffer into a 16-bit go-audio integer PCM
// buffer, clamping each sample to [-1, 1] before scaling, matching the
// wav writer's s16 = clamp(x, -1, 1) * 32767 rule.
func (b Buffer) ToIntBuffer() *audio.IntBuffer {
	data := make([]int, len(b.Samples))
	for i, s := range b.Samples {
		data[i] = int(clamp(s) * 32767)
	}
	return &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: b.Channels,
			SampleRate:  b.SampleRate,
		},
		Data:           data,
		SourceBitDepth: 16,
	}
}

func clamp(s float32) float32 {
	switch {
	case s < -1:
		return -1
	case s > 1:
		return 1
	default:
		return s
	}
}
