package decode

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/hajimehoshi/go-mp3"

	"github.com/beattrack/bpmdetect/internal/bpmerr"
	"github.com/beattrack/bpmdetect/internal/pcm"
)

// decodeMP3 decodes an MP3 file with a pure Go decoder. go-mp3 yields
// 16-bit signed little-endian stereo interleaved PCM via io.Reader.
func decodeMP3(path string) (pcm.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return pcm.Buffer{}, fmt.Errorf("decode: open %s: %w", path, bpmerr.ErrIO)
	}
	defer f.Close()

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		return pcm.Buffer{}, fmt.Errorf("decode: create mp3 decoder for %s: %w", path, bpmerr.ErrDecodeFailure)
	}

	raw, err := io.ReadAll(decoder)
	if err != nil {
		return pcm.Buffer{}, fmt.Errorf("decode: read mp3 %s: %w", path, bpmerr.ErrDecodeFailure)
	}

	numSamples := len(raw) / 2
	if numSamples == 0 {
		return pcm.Buffer{}, fmt.Errorf("decode: mp3 %s contained no samples: %w", path, bpmerr.ErrDecodeFailure)
	}

	samples := make([]float32, numSamples)
	for i := 0; i < numSamples; i++ {
		v := int16(binary.LittleEndian.Uint16(raw[i*2:]))
		samples[i] = float32(v) / 32768.0
	}

	return pcm.Buffer{
		Samples:    samples,
		SampleRate: decoder.SampleRate(),
		Channels:   2,
	}, nil
}
