package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lepinkainen/vidshrink/types"
	"github.com/lepinkainen/vidshrink/ui"
	"github.com/lepinkainen/vidshrink/utils"
	"github.com/lepinkainen/vidshrink/video"
)

// ProbeCmd shows stream metadata and the routing decision for files without writing anything
type ProbeCmd struct {
	Files       []string      `arg:"" name:"files" help:"Video files to inspect" type:"existingfile"`
	CodecOutput string        `name:"codec_output" help:"Output codec the decision is shown for (${enum})" enum:"h264,h265" default:"h265"`
	H264Only    bool          `name:"h264_only" help:"Show decisions for the h264-only mode"`
	Timeout     time.Duration `help:"Maximum duration of a single ffprobe run, 0 for no limit" default:"0s"`
}

func (cmd *ProbeCmd) Run(ctx context.Context, appCtx *types.AppContext) error {
	tools, err := utils.HostTools()
	if err != nil {
		return err
	}
	return cmd.probe(ctx, appCtx, video.NewFFprobe(tools.FFprobe, cmd.Timeout), os.Stdout)
}

func (cmd *ProbeCmd) probe(ctx context.Context, appCtx *types.AppContext, prober video.Prober, out io.Writer) error {
	codec, err := video.ParseCodecFamily(cmd.CodecOutput)
	if err != nil {
		return err
	}
	cfg := &video.RunConfig{Codec: codec, SupportedCodecs: video.DualCodecInputs}
	if cmd.H264Only {
		cfg = &video.RunConfig{Codec: video.CodecH264, SupportedCodecs: video.SingleCodecInputs}
	}

	fmt.Fprintln(out, ui.Header(appCtx.VersionOrDefault()))
	fmt.Fprintf(out, "%s\n\n", ui.InfoStyle.Render(fmt.Sprintf("Inspecting %d files...", len(cmd.Files))))

	for _, file := range cmd.Files {
		fmt.Fprintf(out, "📹 %s\n", file)

		if fi, err := os.Stat(file); err == nil {
			fmt.Fprintf(out, "   📏 Size: %s\n", humanize.Bytes(uint64(fi.Size())))
		}

		metadata, err := prober.Probe(ctx, file)
		if err != nil {
			fmt.Fprintf(out, "%s\n", ui.ErrorStyle.Render(fmt.Sprintf("   ❌ %v", err)))
			fmt.Fprintf(out, "   ➡️  Would copy to failures\n\n")
			continue
		}

		fmt.Fprintf(out, "   🎥 Codec: %s, pixel format: %s", metadata.CodecName, orNone(metadata.PixelFormat))
		if metadata.Video.Width > 0 {
			fmt.Fprintf(out, ", %dx%d", metadata.Video.Width, metadata.Video.Height)
		}
		fmt.Fprintln(out)
		if metadata.Audio != nil {
			fmt.Fprintf(out, "   🔊 Audio: %s\n", metadata.Audio.CodecName)
		}

		switch {
		case !cfg.IsSupported(metadata.CodecName):
			fmt.Fprintf(out, "   ➡️  Would copy to other_codecs\n\n")
		case metadata.PixelFormat == "":
			fmt.Fprintf(out, "   ➡️  Would copy to failures (%v)\n\n", video.ErrMissingPixelFormat)
		default:
			fmt.Fprintf(out, "   ➡️  Would transcode to %s (default crf %d)\n\n", cfg.Codec, cfg.Codec.DefaultQuality())
		}
	}
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
