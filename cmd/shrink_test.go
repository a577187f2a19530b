package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/lepinkainen/vidshrink/types"
	"github.com/lepinkainen/vidshrink/video"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tableProber map[string]string

func (p tableProber) Probe(_ context.Context, path string) (*video.StreamMetadata, error) {
	codec, ok := p[filepath.Base(path)]
	if !ok {
		return nil, &video.ProbeError{Path: path, Err: errors.New("exit status 1")}
	}
	return &video.StreamMetadata{
		CodecName:   codec,
		PixelFormat: "yuv420p",
		Video:       &video.ProbeStream{CodecName: codec, CodecType: "video", PixelFormat: "yuv420p"},
	}, nil
}

type copyTranscoder struct{}

func (copyTranscoder) Transcode(_ context.Context, req video.TranscodeRequest) error {
	return os.WriteFile(req.Destination, []byte("small"), 0644)
}

func testAppContext() *types.AppContext {
	return &types.AppContext{
		Version: "test",
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestShrinkCmd_RunConfigDefaults(t *testing.T) {
	source := t.TempDir()

	tests := []struct {
		codec       string
		wantQuality int
	}{
		{codec: "h264", wantQuality: 23},
		{codec: "h265", wantQuality: 28},
	}
	for _, tt := range tests {
		t.Run(tt.codec, func(t *testing.T) {
			cmd := &ShrinkCmd{SourceFolder: source, CodecOutput: tt.codec}
			cfg, err := cmd.RunConfig()
			require.NoError(t, err)

			assert.Equal(t, filepath.Join(source, "results"), cfg.DestinationDir)
			assert.Equal(t, filepath.Join(source, "results", "failures"), cfg.FailuresDir)
			assert.Equal(t, filepath.Join(source, "results", "other_codecs"), cfg.OtherCodecsDir)
			assert.Equal(t, tt.wantQuality, cfg.Quality)
			assert.Equal(t, video.DualCodecInputs, cfg.SupportedCodecs)
			assert.True(t, cfg.ExcludeDataStreams)
		})
	}
}

func TestShrinkCmd_RunConfigExplicitFolders(t *testing.T) {
	cmd := &ShrinkCmd{
		SourceFolder: "/videos",
		CodecOutput:  "h265",
		OutputFlags: OutputFlags{
			DestinationFolder: "/shrunk",
		},
		CRF:             "20",
		KeepDataStreams: true,
	}
	cfg, err := cmd.RunConfig()
	require.NoError(t, err)

	assert.Equal(t, "/shrunk", cfg.DestinationDir)
	assert.Equal(t, filepath.Join("/shrunk", "failures"), cfg.FailuresDir)
	assert.Equal(t, filepath.Join("/shrunk", "other_codecs"), cfg.OtherCodecsDir)
	assert.Equal(t, 20, cfg.Quality)
	assert.False(t, cfg.ExcludeDataStreams)

	cmd.FailuresFolder = "/broken"
	cfg, err = cmd.RunConfig()
	require.NoError(t, err)
	assert.Equal(t, "/broken", cfg.FailuresDir)
	// other_codecs always follows the destination
	assert.Equal(t, filepath.Join("/shrunk", "other_codecs"), cfg.OtherCodecsDir)
}

func TestShrinkCmd_Validate(t *testing.T) {
	assert.NoError(t, (&ShrinkCmd{CodecOutput: "h264", CRF: "51"}).Validate())
	assert.Error(t, (&ShrinkCmd{CodecOutput: "h264", CRF: "52"}).Validate())
	assert.Error(t, (&ShrinkCmd{CodecOutput: "h264", CRF: "good"}).Validate())
	assert.ErrorIs(t, (&ShrinkCmd{CodecOutput: "vp9"}).Validate(), video.ErrUnsupportedOutputCodec)
}

func TestH264Cmd_RunConfig(t *testing.T) {
	cmd := &H264Cmd{SourceFolder: "/videos", CRF: 23}
	cfg, err := cmd.RunConfig()
	require.NoError(t, err)

	assert.Equal(t, video.CodecH264, cfg.Codec)
	assert.Equal(t, 23, cfg.Quality)
	assert.Equal(t, video.SingleCodecInputs, cfg.SupportedCodecs)
	assert.Equal(t, filepath.Join("/videos", "results"), cfg.DestinationDir)

	assert.NoError(t, (&H264Cmd{CRF: 0}).Validate())
	assert.NoError(t, (&H264Cmd{CRF: 50}).Validate())
	assert.Error(t, (&H264Cmd{CRF: 51}).Validate())
	assert.Error(t, (&H264Cmd{CRF: -1}).Validate())
}

func TestShrink_Scenario(t *testing.T) {
	source := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(source, "a.mp4"), []byte("a big h264 video"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(source, "b.mkv"), []byte("vp9"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(source, "c.txt"), []byte("text"), 0644))

	cfg, err := (&ShrinkCmd{SourceFolder: source, CodecOutput: "h264"}).RunConfig()
	require.NoError(t, err)

	var out bytes.Buffer
	prober := tableProber{"a.mp4": "h264", "b.mkv": "vp9"}
	err = shrink(context.Background(), testAppContext(), cfg, prober, copyTranscoder{}, &out)

	// c.txt failed, so the run reports an error
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3 files failed")

	assert.FileExists(t, filepath.Join(cfg.DestinationDir, "a.mp4"))
	assert.FileExists(t, filepath.Join(cfg.OtherCodecsDir, "b.mkv"))
	assert.FileExists(t, filepath.Join(cfg.FailuresDir, "c.txt"))

	output := out.String()
	assert.Contains(t, output, "Transcoded: 1 files")
	assert.Contains(t, output, "Other codecs: 1 files")
	assert.Contains(t, output, "Failures: 1 files")
	assert.Contains(t, output, "saved")
}

func TestShrink_AllSucceeded(t *testing.T) {
	source := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(source, "a.mp4"), []byte("h264 video"), 0644))

	cfg, err := (&ShrinkCmd{SourceFolder: source, CodecOutput: "h265"}).RunConfig()
	require.NoError(t, err)

	var out bytes.Buffer
	err = shrink(context.Background(), testAppContext(), cfg, tableProber{"a.mp4": "h264"}, copyTranscoder{}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Shrinking complete")
}

func TestShrink_MissingSource(t *testing.T) {
	source := filepath.Join(t.TempDir(), "missing")
	cfg := &video.RunConfig{
		SourceDir:      source,
		DestinationDir: filepath.Join(t.TempDir(), "out"),
		Codec:          video.CodecH264,
	}

	err := shrink(context.Background(), testAppContext(), cfg, tableProber{}, copyTranscoder{}, io.Discard)
	assert.Error(t, err)
}
