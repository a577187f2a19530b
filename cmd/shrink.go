package cmd

import (
	"context"
	"path/filepath"
	"time"

	"github.com/lepinkainen/vidshrink/types"
	"github.com/lepinkainen/vidshrink/video"
)

// OutputFlags are the destination folder flags shared by the shrink commands
type OutputFlags struct {
	DestinationFolder string `name:"destination_folder" help:"Videos destination folder. Default is source_folder/results" type:"path"`
	FailuresFolder    string `name:"failures_folder" help:"Folder for videos that failed. Default is destination_folder/failures" type:"path"`
}

// resolve fills in the derived folder defaults
func (f OutputFlags) resolve(source string) (destination, failures, otherCodecs string) {
	destination = f.DestinationFolder
	if destination == "" {
		destination = filepath.Join(source, "results")
	}
	failures = f.FailuresFolder
	if failures == "" {
		failures = filepath.Join(destination, "failures")
	}
	otherCodecs = filepath.Join(destination, "other_codecs")
	return destination, failures, otherCodecs
}

// ShrinkCmd transcodes h264 and hevc videos to the chosen output codec
type ShrinkCmd struct {
	SourceFolder string `arg:"" name:"source_folder" help:"Videos source folder" type:"existingdir"`
	CodecOutput  string `arg:"" name:"codec_output" help:"Output codec to use (${enum})" enum:"h264,h265"`

	OutputFlags `embed:""`

	CRF             string        `name:"crf" help:"Video crf between 0-51. Default is 23 for h264 and 28 for h265"`
	KeepDataStreams bool          `name:"keep_data_streams" help:"Keep data streams in transcoded files instead of dropping them"`
	Timeout         time.Duration `help:"Maximum duration of a single ffprobe/ffmpeg run, 0 for no limit" default:"0s"`
}

// Validate is called by kong after parsing
func (cmd *ShrinkCmd) Validate() error {
	_, err := cmd.RunConfig()
	return err
}

// RunConfig builds the immutable configuration for a run
func (cmd *ShrinkCmd) RunConfig() (*video.RunConfig, error) {
	codec, err := video.ParseCodecFamily(cmd.CodecOutput)
	if err != nil {
		return nil, err
	}

	quality, err := video.ResolveQuality(cmd.CRF, codec, video.MaxQuality)
	if err != nil {
		return nil, err
	}

	destination, failures, otherCodecs := cmd.resolve(cmd.SourceFolder)
	return &video.RunConfig{
		SourceDir:          cmd.SourceFolder,
		DestinationDir:     destination,
		FailuresDir:        failures,
		OtherCodecsDir:     otherCodecs,
		Codec:              codec,
		Quality:            quality,
		SupportedCodecs:    video.DualCodecInputs,
		ExcludeDataStreams: !cmd.KeepDataStreams,
	}, nil
}

func (cmd *ShrinkCmd) Run(ctx context.Context, appCtx *types.AppContext) error {
	cfg, err := cmd.RunConfig()
	if err != nil {
		return err
	}
	return runBatch(ctx, appCtx, cfg, cmd.Timeout)
}
