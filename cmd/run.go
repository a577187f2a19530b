package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/lepinkainen/vidshrink/logging"
	"github.com/lepinkainen/vidshrink/types"
	"github.com/lepinkainen/vidshrink/ui"
	"github.com/lepinkainen/vidshrink/utils"
	"github.com/lepinkainen/vidshrink/video"
)

// runBatch resolves the external tools for this platform and shrinks cfg.SourceDir.
// Platform and dependency errors abort before any file is touched.
func runBatch(ctx context.Context, appCtx *types.AppContext, cfg *video.RunConfig, timeout time.Duration) error {
	tools, err := utils.HostTools()
	if err != nil {
		return err
	}
	tools, err = utils.ValidateFFmpegDependencies(tools)
	if err != nil {
		return err
	}

	prober := video.NewFFprobe(tools.FFprobe, timeout)
	transcoder := video.NewFFmpeg(tools.FFmpeg, timeout)
	return shrink(ctx, appCtx, cfg, prober, transcoder, os.Stdout)
}

// shrink crawls the source folder and reports the outcome. It returns an
// error when any file could not be transcoded or passed through.
func shrink(ctx context.Context, appCtx *types.AppContext, cfg *video.RunConfig,
	prober video.Prober, transcoder video.Transcoder, out io.Writer) error {
	logger := appCtx.LoggerOrDefault()

	fmt.Fprintln(out, ui.Header(appCtx.VersionOrDefault()))
	fmt.Fprintln(out, ui.ProcessingStyle.Render(fmt.Sprintf("🎬 Shrinking %s to %s", cfg.SourceDir, cfg.Codec)))
	fmt.Fprintf(out, "⚙️  Settings: CRF=%d, Preset=%s, Destination=%s\n\n", cfg.Quality, video.DefaultPreset, cfg.DestinationDir)

	if err := os.MkdirAll(cfg.DestinationDir, 0755); err != nil {
		return fmt.Errorf("failed to create destination folder: %w", err)
	}

	logger.Info("starting run",
		"source", cfg.SourceDir,
		"destination", cfg.DestinationDir,
		"codec", string(cfg.Codec),
		"crf", cfg.Quality)

	router := video.NewRouter(cfg, prober, transcoder, logging.WithComponent(logger, "router"), out)
	crawler := video.NewCrawler(cfg, router, logging.WithComponent(logger, "crawler"))

	stats, err := crawler.Crawl(ctx, cfg.SourceDir)
	printSummary(out, stats)

	logger.Info("run finished",
		"transcoded", stats.Transcoded,
		"passthrough", stats.Passthrough,
		"failed", stats.Failed,
		"lost", stats.Lost,
		"dir_errors", stats.DirErrors)

	if err != nil {
		return err
	}
	if stats.HasFailures() {
		return fmt.Errorf("%d of %d files failed, %d folders unreadable", stats.Failed, stats.Total(), stats.DirErrors)
	}
	return nil
}
