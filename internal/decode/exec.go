package decode

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/beattrack/bpmdetect/internal/bpmerr"
)

// runTool invokes an external binary, returning a decode-failure error
// annotated with the binary name on nonzero exit or when it is not on
// PATH, so callers can surface a clear fatal message.
func runTool(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("decode: %s failed (ensure it is installed and on PATH): %v: %w", name, err, bpmerr.ErrDecodeFailure)
	}
	return nil
}

// tempPath returns a unique path under the OS temp directory without
// creating the file, so an external tool can create it itself.
func tempPath(pattern string) (string, error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", fmt.Errorf("decode: create temp file: %w", bpmerr.ErrIO)
	}
	path := f.Name()
	f.Close()
	os.Remove(path)
	return path, nil
}
