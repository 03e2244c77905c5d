package cliexec

import "github.com/cockroachdb/errors"

// The error taxonomy for a single tool call. Every failure surfaced to the
// caller wraps exactly one of these sentinels, so callers classify with
// errors.Is instead of string matching.
var (
	// ErrInvalidArgument is returned when the caller's arguments fail the
	// declared schema or domain constraints. No subprocess is spawned.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrCommandFailed is returned when the external command exits nonzero
	// (or cannot be started). The message carries captured stderr.
	ErrCommandFailed = errors.New("external command failed")

	// ErrCommandTimeout is returned when the external command exceeded its
	// wall-clock bound and was terminated. Never retried here.
	ErrCommandTimeout = errors.New("external command timed out")

	// ErrMalformedOutput is returned when the command ran but its stdout
	// could not be decoded as JSON.
	ErrMalformedOutput = errors.New("malformed output")

	// ErrUnsupportedSchema indicates a normalizer was invoked with a schema
	// kind it does not know. This is a programming error, not a data error.
	ErrUnsupportedSchema = errors.New("unsupported schema kind")
)
