package decode

import (
	"fmt"
	"os"

	"github.com/beattrack/bpmdetect/internal/bpmerr"
	"github.com/beattrack/bpmdetect/internal/pcm"
	"github.com/beattrack/bpmdetect/internal/wavio"
)

// decodeMP4 extracts the audio track of an MP4/M4A file via ffmpeg
// into a temporary 44.1kHz stereo WAV, reads it, and removes the
// temp file on every exit path.
func decodeMP4(path string) (pcm.Buffer, error) {
	tmp, err := tempPath("bpmdetect-mp4-*.wav")
	if err != nil {
		return pcm.Buffer{}, err
	}
	defer os.Remove(tmp)

	if err := runTool("ffmpeg", "-y", "-i", path, "-vn", "-acodec", "pcm_s16le", "-ar", "44100", "-ac", "2", tmp); err != nil {
		return pcm.Buffer{}, fmt.Errorf("decode: extract audio from %s: %w", path, wrapDecode(err))
	}

	buffer, err := wavio.Read(tmp)
	if err != nil {
		return pcm.Buffer{}, fmt.Errorf("decode: read extracted audio from %s: %w", path, err)
	}
	return buffer, nil
}

func wrapDecode(err error) error {
	if err == nil {
		return bpmerr.ErrDecodeFailure
	}
	return err
}
