package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// CodecFamily is the output video compression standard
type CodecFamily string

const (
	CodecH264 CodecFamily = "h264"
	CodecH265 CodecFamily = "h265"
)

// Quality limits for the constant rate factor
const (
	MinQuality = 0
	MaxQuality = 51
)

// DefaultPreset trades encoding speed for compression efficiency
const DefaultPreset = "slow"

// ParseCodecFamily parses an output codec name as given on the command line
func ParseCodecFamily(name string) (CodecFamily, error) {
	switch c := CodecFamily(strings.ToLower(name)); c {
	case CodecH264, CodecH265:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedOutputCodec, name)
	}
}

// Encoder returns the ffmpeg video encoder for the codec family
func (c CodecFamily) Encoder() (string, error) {
	switch c {
	case CodecH264:
		return "libx264", nil
	case CodecH265:
		return "libx265", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedOutputCodec, string(c))
	}
}

// DefaultQuality returns the CRF used when none is given. H.265 at CRF 28 gives
// roughly the visual quality of H.264 at CRF 23 at about half the bitrate.
func (c CodecFamily) DefaultQuality() int {
	if c == CodecH265 {
		return 28
	}
	return 23
}

// ResolveQuality parses a CRF value, falling back to the codec default when raw
// is empty. Values outside 0..maxQuality are rejected.
func ResolveQuality(raw string, codec CodecFamily, maxQuality int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return codec.DefaultQuality(), nil
	}

	quality, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid crf %q: %w", raw, err)
	}
	if quality < MinQuality || quality > maxQuality {
		return 0, fmt.Errorf("crf %d out of range %d-%d", quality, MinQuality, maxQuality)
	}
	return quality, nil
}

// TranscodeRequest describes a single transcode
type TranscodeRequest struct {
	Source      string
	Destination string
	Codec       CodecFamily
	Quality     int
	PixelFormat string

	ExcludeDataStreams bool
}

// Transcoder re-encodes the video stream of a file
type Transcoder interface {
	Transcode(ctx context.Context, req TranscodeRequest) error
}

// BuildTranscodeArgs returns the ffmpeg arguments (without the binary) for req.
// All streams and global metadata are copied as-is; only the video stream is
// re-encoded, keeping the source pixel format.
func BuildTranscodeArgs(req TranscodeRequest) ([]string, error) {
	encoder, err := req.Codec.Encoder()
	if err != nil {
		return nil, err
	}
	if req.PixelFormat == "" {
		return nil, ErrMissingPixelFormat
	}

	args := []string{
		"-hide_banner", "-nostdin", "-y",
		"-loglevel", "error",
		"-i", req.Source,
		"-copy_unknown",
		"-map_metadata", "0",
		"-map", "0",
	}
	if req.ExcludeDataStreams {
		args = append(args, "-map", "-0:d")
	}
	args = append(args,
		"-codec", "copy",
		"-codec:v", encoder,
		"-pix_fmt", req.PixelFormat,
		"-preset", DefaultPreset,
		"-crf", strconv.Itoa(req.Quality),
		req.Destination,
	)
	return args, nil
}

// FFmpeg runs the ffmpeg binary
type FFmpeg struct {
	Binary  string
	Timeout time.Duration // zero means no limit
}

// NewFFmpeg returns a transcoder that runs the given ffmpeg binary
func NewFFmpeg(binary string, timeout time.Duration) *FFmpeg {
	return &FFmpeg{Binary: binary, Timeout: timeout}
}

// Transcode runs ffmpeg for req and then carries the source file dates over to
// the output. A failed run leaves no output file behind.
func (f *FFmpeg) Transcode(ctx context.Context, req TranscodeRequest) error {
	args, err := BuildTranscodeArgs(req)
	if err != nil {
		return err
	}

	// Capture before ffmpeg reads the source
	times, err := captureTimes(req.Source)
	if err != nil {
		return err
	}

	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, f.Binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		_ = os.Remove(req.Destination)
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return &TranscodeError{
			Source:   req.Source,
			ExitCode: exitCode,
			Stderr:   stderr.String(),
			Err:      err,
		}
	}

	// Preserve file dates that are not in the video metadata
	if err := times.apply(req.Destination); err != nil {
		_ = os.Remove(req.Destination)
		return err
	}
	return nil
}
