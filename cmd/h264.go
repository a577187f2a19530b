package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/lepinkainen/vidshrink/types"
	"github.com/lepinkainen/vidshrink/video"
)

// maxSingleCodecQuality is the highest crf accepted by h264-only
const maxSingleCodecQuality = 50

// H264Cmd re-encodes h264 videos to h264; every other codec is copied as-is
type H264Cmd struct {
	SourceFolder string `arg:"" name:"source_folder" help:"Videos source folder" type:"existingdir"`

	OutputFlags `embed:""`

	CRF     int           `name:"crf" help:"Video crf between 0-50" default:"23"`
	Timeout time.Duration `help:"Maximum duration of a single ffprobe/ffmpeg run, 0 for no limit" default:"0s"`
}

func (cmd *H264Cmd) Validate() error {
	if cmd.CRF < video.MinQuality || cmd.CRF > maxSingleCodecQuality {
		return fmt.Errorf("crf %d out of range %d-%d", cmd.CRF, video.MinQuality, maxSingleCodecQuality)
	}
	return nil
}

// RunConfig builds the immutable configuration for a run
func (cmd *H264Cmd) RunConfig() (*video.RunConfig, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	destination, failures, otherCodecs := cmd.resolve(cmd.SourceFolder)
	return &video.RunConfig{
		SourceDir:          cmd.SourceFolder,
		DestinationDir:     destination,
		FailuresDir:        failures,
		OtherCodecsDir:     otherCodecs,
		Codec:              video.CodecH264,
		Quality:            cmd.CRF,
		SupportedCodecs:    video.SingleCodecInputs,
		ExcludeDataStreams: true,
	}, nil
}

func (cmd *H264Cmd) Run(ctx context.Context, appCtx *types.AppContext) error {
	cfg, err := cmd.RunConfig()
	if err != nil {
		return err
	}
	return runBatch(ctx, appCtx, cfg, cmd.Timeout)
}
