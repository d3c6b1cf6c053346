// Package decode dispatches an input source — a local file or a
// "://"-tagged URL — to the concrete adapter that can produce a
// stereo pcm.Buffer from it.
package decode

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/beattrack/bpmdetect/internal/bpmerr"
	"github.com/beattrack/bpmdetect/internal/pcm"
	"github.com/beattrack/bpmdetect/internal/wavio"
)

// IsURL reports whether input names a URL rather than a local file
// path, per the "://" substring convention.
func IsURL(input string) bool {
	return strings.Contains(input, "://")
}

// Decode dispatches input to the concrete decoder for its extension
// (or, for a URL, the external download+convert adapter) and returns
// the decoded stereo buffer.
func Decode(input string) (pcm.Buffer, error) {
	if IsURL(input) {
		return decodeURL(input)
	}

	ext := strings.ToLower(filepath.Ext(input))
	switch ext {
	case ".wav":
		return wavio.Read(input)
	case ".mp3":
		return decodeMP3(input)
	case ".mp4", ".m4a":
		return decodeMP4(input)
	default:
		return pcm.Buffer{}, fmt.Errorf("decode: unsupported file format %q (supported: .wav, .mp3, .mp4, .m4a, or a URL): %w", ext, bpmerr.ErrInvalidArgument)
	}
}
