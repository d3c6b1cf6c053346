// Package bpmerr defines the sentinel error kinds from the pipeline's
// error handling design: invalid arguments, decode failures, and I/O
// failures are all fatal and distinguishable via errors.Is.
package bpmerr

import "errors"

var (
	// ErrInvalidArgument marks a bad configuration value (non-positive
	// sample rate or hop, empty input, missing required field).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDecodeFailure marks a fatal failure to decode input audio:
	// nonzero external extractor exit, malformed container, empty stream.
	ErrDecodeFailure = errors.New("decode failure")

	// ErrIO marks a fatal failure reading or writing a file.
	ErrIO = errors.New("i/o failure")
)
