package decode

import (
	"fmt"
	"os"

	"github.com/beattrack/bpmdetect/internal/pcm"
	"github.com/beattrack/bpmdetect/internal/wavio"
)

// decodeURL downloads the best audio stream with yt-dlp and converts
// it to WAV with ffmpeg, removing both temp artifacts on every exit
// path, success or error.
func decodeURL(url string) (pcm.Buffer, error) {
	dl, err := tempPath("bpmdetect-yt-*")
	if err != nil {
		return pcm.Buffer{}, err
	}
	defer os.Remove(dl)

	if err := runTool("yt-dlp", "-f", "bestaudio", "--no-playlist", "-o", dl, url); err != nil {
		return pcm.Buffer{}, fmt.Errorf("decode: download audio from %s: %w", url, wrapDecode(err))
	}

	wavPath, err := tempPath("bpmdetect-yt-*.wav")
	if err != nil {
		return pcm.Buffer{}, err
	}
	defer os.Remove(wavPath)

	if err := runTool("ffmpeg", "-y", "-i", dl, "-vn", "-acodec", "pcm_s16le", "-ar", "44100", "-ac", "2", wavPath); err != nil {
		return pcm.Buffer{}, fmt.Errorf("decode: convert downloaded audio from %s: %w", url, wrapDecode(err))
	}

	buffer, err := wavio.Read(wavPath)
	if err != nil {
		return pcm.Buffer{}, fmt.Errorf("decode: read converted audio from %s: %w", url, err)
	}
	buffer.Title = titleFromURL(url)
	return buffer, nil
}

// titleFromURL derives a human-readable title placeholder from a URL,
// used to name the raw-audio-copy and click-track outputs. A real
// title would come from yt-dlp's metadata; this module keeps the
// decode boundary narrow and leaves richer metadata extraction out of
// scope, matching the original's minimal title handling.
func titleFromURL(url string) string {
	return url
}
