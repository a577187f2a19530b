package video

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoVideoStream is returned when ffprobe reports no video stream
	ErrNoVideoStream = errors.New("no video stream found")

	// ErrMissingPixelFormat is returned when a video stream has no pix_fmt
	ErrMissingPixelFormat = errors.New("video stream has no pixel format")

	// ErrUnsupportedOutputCodec is returned for an output codec family that has no encoder
	ErrUnsupportedOutputCodec = errors.New("output codec not supported")

	// ErrOutputCollision is returned when an output path was already used by
	// another file in the same run
	ErrOutputCollision = errors.New("output path already used in this run")

	// ErrFailureCopy marks a file that could not be copied into the failures folder
	ErrFailureCopy = errors.New("failed to copy file to failures folder")
)

// ProbeError is returned when stream metadata cannot be read for a file
type ProbeError struct {
	Path   string
	Stderr string
	Err    error
}

func (e *ProbeError) Error() string {
	msg := fmt.Sprintf("probe %s: %v", e.Path, e.Err)
	if line := firstLine(e.Stderr); line != "" {
		msg += ": " + line
	}
	return msg
}

func (e *ProbeError) Unwrap() error { return e.Err }

// TranscodeError is returned when ffmpeg exits abnormally
type TranscodeError struct {
	Source   string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *TranscodeError) Error() string {
	msg := fmt.Sprintf("transcode %s: exit code %d", e.Source, e.ExitCode)
	if line := lastLine(e.Stderr); line != "" {
		msg += ": " + line
	}
	return msg
}

func (e *TranscodeError) Unwrap() error { return e.Err }

// stderrOf returns the captured tool output carried by err, if any
func stderrOf(err error) string {
	var pe *ProbeError
	if errors.As(err, &pe) {
		return pe.Stderr
	}
	var te *TranscodeError
	if errors.As(err, &te) {
		return te.Stderr
	}
	return ""
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

// lastLine returns the last non-empty line, which is where ffmpeg puts the fatal error
func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}

// tail keeps the last n lines of tool output for logging
func tail(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
