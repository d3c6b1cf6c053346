// Package wavio reads and writes 16-bit PCM RIFF/WAVE files, the
// output format and the one non-compressed input format the pipeline
// understands natively.
package wavio

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"

	"github.com/beattrack/bpmdetect/internal/bpmerr"
	"github.com/beattrack/bpmdetect/internal/pcm"
)

// Read decodes a 16-bit PCM WAV file into a pcm.Buffer.
func Read(path string) (pcm.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return pcm.Buffer{}, fmt.Errorf("wavio: open %s: %w", path, bpmerr.ErrIO)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return pcm.Buffer{}, fmt.Errorf("wavio: %s is not a valid WAV file: %w", path, bpmerr.ErrDecodeFailure)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return pcm.Buffer{}, fmt.Errorf("wavio: decode %s: %w", path, bpmerr.ErrDecodeFailure)
	}
	if decoder.BitDepth != 16 {
		return pcm.Buffer{}, fmt.Errorf("wavio: %s is %d-bit, expected 16-bit: %w", path, decoder.BitDepth, bpmerr.ErrDecodeFailure)
	}

	buffer := pcm.FromIntBuffer(buf)
	if len(buffer.Samples) == 0 {
		return pcm.Buffer{}, fmt.Errorf("wavio: %s has no audio data: %w", path, bpmerr.ErrDecodeFailure)
	}
	return buffer, nil
}

// Write encodes a pcm.Buffer as a 16-bit PCM WAV file, clamping each
// sample to [-1, 1] before the int16 conversion.
func Write(path string, audio pcm.Buffer) error {
	if audio.SampleRate <= 0 || audio.Channels <= 0 {
		return fmt.Errorf("wavio: invalid buffer for %s (rate=%d channels=%d): %w", path, audio.SampleRate, audio.Channels, bpmerr.ErrInvalidArgument)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("wavio: create %s: %w", path, bpmerr.ErrIO)
	}

	encoder := wav.NewEncoder(f, audio.SampleRate, 16, audio.Channels, 1)
	if err := encoder.Write(audio.ToIntBuffer()); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("wavio: write %s: %w", path, bpmerr.ErrIO)
	}
	if err := encoder.Close(); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("wavio: finalize %s: %w", path, bpmerr.ErrIO)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("wavio: close %s: %w", path, bpmerr.ErrIO)
	}
	return nil
}
