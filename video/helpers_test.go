package video

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fixedTime is the timestamp given to every test source file
var fixedTime = time.Date(2019, 6, 1, 12, 30, 0, 0, time.UTC)

// fakeProber answers from a table keyed by file base name. Unknown files fail
// the way ffprobe does on non-media input.
type fakeProber struct {
	mu      sync.Mutex
	streams map[string]*StreamMetadata
	calls   []string
}

func newFakeProber() *fakeProber {
	return &fakeProber{streams: map[string]*StreamMetadata{}}
}

func (p *fakeProber) add(name, codec, pixFmt string) *fakeProber {
	p.streams[name] = &StreamMetadata{
		CodecName:   codec,
		PixelFormat: pixFmt,
		Video:       &ProbeStream{CodecName: codec, CodecType: "video", PixelFormat: pixFmt},
	}
	return p
}

func (p *fakeProber) Probe(ctx context.Context, path string) (*StreamMetadata, error) {
	p.mu.Lock()
	p.calls = append(p.calls, path)
	p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, &ProbeError{Path: path, Err: err}
	}
	metadata, ok := p.streams[filepath.Base(path)]
	if !ok {
		return nil, &ProbeError{
			Path:   path,
			Stderr: path + ": Invalid data found when processing input",
			Err:    errors.New("exit status 1"),
		}
	}
	return metadata, nil
}

// fakeTranscoder writes a marker file instead of running ffmpeg
type fakeTranscoder struct {
	err      error
	failOn   string // only fail for this source path, all sources when empty
	partial  bool   // leave a half-written output behind when failing
	requests []TranscodeRequest
}

func (f *fakeTranscoder) Transcode(_ context.Context, req TranscodeRequest) error {
	f.requests = append(f.requests, req)
	if f.err != nil && (f.failOn == "" || f.failOn == req.Source) {
		if f.partial {
			_ = os.WriteFile(req.Destination, []byte("partial"), 0644)
		}
		return f.err
	}
	times, err := captureTimes(req.Source)
	if err != nil {
		return err
	}
	if err := os.WriteFile(req.Destination, []byte("transcoded"), 0644); err != nil {
		return err
	}
	return times.apply(req.Destination)
}

// newTestConfig lays out a source folder with the destination nested inside
// it, which is the default layout
func newTestConfig(t *testing.T, codec CodecFamily) *RunConfig {
	t.Helper()
	source := t.TempDir()
	destination := filepath.Join(source, "results")
	return &RunConfig{
		SourceDir:          source,
		DestinationDir:     destination,
		FailuresDir:        filepath.Join(destination, "failures"),
		OtherCodecsDir:     filepath.Join(destination, "other_codecs"),
		Codec:              codec,
		Quality:            codec.DefaultQuality(),
		SupportedCodecs:    DualCodecInputs,
		ExcludeDataStreams: true,
	}
}

// writeSource creates a file below dir with fixed timestamps
func writeSource(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	require.NoError(t, os.Chtimes(path, fixedTime, fixedTime))
	return path
}

// writeScript creates an executable shell script standing in for ffmpeg/ffprobe
func writeScript(t *testing.T, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake binaries need a Unix shell")
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755))
	return path
}

func assertFileContent(t *testing.T, path, want string) {
	t.Helper()
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, want, string(got))
}
