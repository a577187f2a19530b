package video

import (
	"encoding/json"
	"path/filepath"
	"slices"
)

// ProbeStream is a single stream descriptor as reported by ffprobe
type ProbeStream struct {
	Index       int    `json:"index"`
	CodecName   string `json:"codec_name"`
	CodecType   string `json:"codec_type"` // video, audio, subtitle, data
	PixelFormat string `json:"pix_fmt,omitempty"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`

	// Raw holds the untouched ffprobe descriptor
	Raw json.RawMessage `json:"-"`
}

// StreamMetadata contains the stream information the router needs for a single file
type StreamMetadata struct {
	CodecName   string
	PixelFormat string
	Video       *ProbeStream
	Audio       *ProbeStream // nil when the file has no audio stream
}

// FileEntry is a regular file discovered by the crawler
type FileEntry struct {
	Path string
	// Rel is Path relative to the source folder. Outputs are placed at the
	// same relative location inside each output folder.
	Rel string
}

// Name returns the base name of the entry
func (e FileEntry) Name() string {
	return filepath.Base(e.Path)
}

// OutputRel returns the path of the entry's output relative to an output
// folder. Entries without a relative path fall back to their base name.
func (e FileEntry) OutputRel() string {
	if e.Rel == "" {
		return e.Name()
	}
	return e.Rel
}

// Outcome is the routing decision taken for a file
type Outcome int

const (
	OutcomeTranscoded Outcome = iota
	OutcomePassthrough
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeTranscoded:
		return "transcoded"
	case OutcomePassthrough:
		return "passthrough"
	case OutcomeFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// RunConfig holds the settings for a single batch run. It is built once at
// startup and never modified afterwards.
type RunConfig struct {
	SourceDir      string
	DestinationDir string
	FailuresDir    string
	OtherCodecsDir string

	Codec   CodecFamily
	Quality int

	// SupportedCodecs lists the input video codecs that get transcoded,
	// as named by ffprobe (h264, hevc)
	SupportedCodecs []string

	// ExcludeDataStreams drops data streams (-map -0:d) from transcoded output
	ExcludeDataStreams bool
}

// DualCodecInputs is the input codec set for the h264/h265 output mode
var DualCodecInputs = []string{"h264", "hevc"}

// SingleCodecInputs is the input codec set for the h264-only mode
var SingleCodecInputs = []string{"h264"}

// IsSupported reports whether files with the given video codec are transcoded
func (c *RunConfig) IsSupported(codecName string) bool {
	return slices.Contains(c.SupportedCodecs, codecName)
}

// RouteResult holds the result of routing one file
type RouteResult struct {
	Source     string
	DestPath   string // where the file ended up, empty if nowhere
	Outcome    Outcome
	Codec      string
	SourceSize int64
	OutputSize int64

	// Err is the cause of a failure outcome
	Err error
	// CopyErr is set when the failure copy itself could not be made
	CopyErr error
}

// Lost reports whether the file could not be placed in any output folder
func (r *RouteResult) Lost() bool {
	return r.CopyErr != nil
}

// RunStats aggregates the results of a crawl
type RunStats struct {
	Transcoded  int
	Passthrough int
	Failed      int
	Lost        int
	DirErrors   int

	TotalSourceSize int64 // transcoded files only
	TotalOutputSize int64

	Results []*RouteResult
}

// Add records a single route result
func (s *RunStats) Add(r *RouteResult) {
	s.Results = append(s.Results, r)
	switch r.Outcome {
	case OutcomeTranscoded:
		s.Transcoded++
		s.TotalSourceSize += r.SourceSize
		s.TotalOutputSize += r.OutputSize
	case OutcomePassthrough:
		s.Passthrough++
	case OutcomeFailure:
		s.Failed++
		if r.Lost() {
			s.Lost++
		}
	}
}

// Total returns the number of files routed
func (s *RunStats) Total() int {
	return len(s.Results)
}

// HasFailures reports whether any file or directory could not be processed
func (s *RunStats) HasFailures() bool {
	return s.Failed > 0 || s.DirErrors > 0
}
