package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"
)

// Prober reads stream metadata for a file
type Prober interface {
	Probe(ctx context.Context, path string) (*StreamMetadata, error)
}

// FFprobe runs the ffprobe binary to read stream metadata
type FFprobe struct {
	Binary  string
	Timeout time.Duration // zero means no limit
}

// NewFFprobe returns a prober that runs the given ffprobe binary
func NewFFprobe(binary string, timeout time.Duration) *FFprobe {
	return &FFprobe{Binary: binary, Timeout: timeout}
}

// Probe runs ffprobe on path and returns the first video stream's descriptor
func (p *FFprobe) Probe(ctx context.Context, path string) (*StreamMetadata, error) {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, p.Binary,
		"-v", "error",
		"-print_format", "json",
		"-show_streams",
		path)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, &ProbeError{Path: path, Stderr: stderr.String(), Err: err}
	}

	metadata, err := ParseProbeOutput(stdout.Bytes())
	if err != nil {
		return nil, &ProbeError{Path: path, Stderr: stderr.String(), Err: err}
	}
	return metadata, nil
}

// ParseProbeOutput decodes ffprobe -show_streams JSON output. The first video
// stream becomes the representative descriptor; the first audio stream is kept
// for information.
func ParseProbeOutput(data []byte) (*StreamMetadata, error) {
	var output struct {
		Streams []json.RawMessage `json:"streams"`
	}
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	metadata := &StreamMetadata{}
	for _, raw := range output.Streams {
		var stream ProbeStream
		if err := json.Unmarshal(raw, &stream); err != nil {
			return nil, fmt.Errorf("failed to parse stream descriptor: %w", err)
		}
		stream.Raw = raw

		switch stream.CodecType {
		case "video":
			if metadata.Video == nil {
				metadata.Video = &stream
			}
		case "audio":
			if metadata.Audio == nil {
				metadata.Audio = &stream
			}
		}
	}

	if metadata.Video == nil {
		return nil, ErrNoVideoStream
	}

	metadata.CodecName = metadata.Video.CodecName
	metadata.PixelFormat = metadata.Video.PixelFormat
	return metadata, nil
}
