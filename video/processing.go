package video

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lepinkainen/vidshrink/ui"
)

// Router decides what happens to a single file and carries it out.
// A Router is not safe for concurrent use.
type Router struct {
	cfg        *RunConfig
	prober     Prober
	transcoder Transcoder
	logger     *slog.Logger
	out        io.Writer

	// claimed maps the absolute output paths written in this run to their source
	claimed map[string]string
}

// NewRouter creates a router. Console lines are written to out, diagnostics to logger.
func NewRouter(cfg *RunConfig, prober Prober, transcoder Transcoder, logger *slog.Logger, out io.Writer) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	if out == nil {
		out = os.Stdout
	}
	return &Router{
		cfg:        cfg,
		prober:     prober,
		transcoder: transcoder,
		logger:     logger,
		out:        out,
		claimed:    make(map[string]string),
	}
}

// Route classifies a regular file and transcodes or copies it. It never
// returns an error: any failure is turned into a copy into the failures
// folder and reported on the result.
func (r *Router) Route(ctx context.Context, entry FileEntry) *RouteResult {
	fmt.Fprintf(r.out, "%s\n", ui.ProcessingStyle.Render(fmt.Sprintf("📹 %s", entry.Path)))

	result := &RouteResult{Source: entry.Path}
	if err := r.route(ctx, entry, result); err != nil {
		r.fail(ctx, entry, result, err)
	}
	return result
}

func (r *Router) route(ctx context.Context, entry FileEntry, result *RouteResult) error {
	metadata, err := r.prober.Probe(ctx, entry.Path)
	if err != nil {
		return err
	}
	result.Codec = metadata.CodecName

	if r.cfg.IsSupported(metadata.CodecName) {
		fmt.Fprintf(r.out, "   🎥 Video format detected: %s\n", metadata.CodecName)
		return r.transcode(ctx, entry, metadata, result)
	}

	fmt.Fprintf(r.out, "%s\n", ui.WarningStyle.Render(
		fmt.Sprintf("   ⏭️  Non supported video format detected: %s", metadata.CodecName)))

	dst := r.outputPath(r.cfg.OtherCodecsDir, entry)
	if err := r.claim(dst, entry); err != nil {
		return err
	}
	if err := copyTo(entry.Path, dst); err != nil {
		return err
	}
	result.Outcome = OutcomePassthrough
	result.DestPath = dst
	fmt.Fprintf(r.out, "   📁 Copied to %s\n", dst)
	return nil
}

func (r *Router) transcode(ctx context.Context, entry FileEntry, metadata *StreamMetadata, result *RouteResult) error {
	if metadata.PixelFormat == "" {
		return ErrMissingPixelFormat
	}

	fi, err := os.Stat(entry.Path)
	if err != nil {
		return fmt.Errorf("failed to stat source: %w", err)
	}
	result.SourceSize = fi.Size()

	dst := r.outputPath(r.cfg.DestinationDir, entry)
	if err := r.claim(dst, entry); err != nil {
		return err
	}
	if err := mkdirFor(dst); err != nil {
		return err
	}
	if di, err := os.Stat(dst); err == nil && os.SameFile(fi, di) {
		return fmt.Errorf("output %s would overwrite its source", dst)
	}

	req := TranscodeRequest{
		Source:             entry.Path,
		Destination:        dst,
		Codec:              r.cfg.Codec,
		Quality:            r.cfg.Quality,
		PixelFormat:        metadata.PixelFormat,
		ExcludeDataStreams: r.cfg.ExcludeDataStreams,
	}
	if err := r.transcoder.Transcode(ctx, req); err != nil {
		// dst belongs to this source only. Leftovers from this or a previous run
		// must not stay next to the failure copy.
		_ = os.Remove(dst)
		return err
	}

	out, err := os.Stat(dst)
	if err != nil {
		return fmt.Errorf("transcoded output missing: %w", err)
	}

	result.Outcome = OutcomeTranscoded
	result.DestPath = dst
	result.OutputSize = out.Size()
	fmt.Fprintf(r.out, "%s\n", ui.SuccessStyle.Render(
		fmt.Sprintf("   ✅ %s → %s (crf %d)", metadata.CodecName, r.cfg.Codec, r.cfg.Quality)))
	return nil
}

// fail copies the source into the failures folder. When the run was
// cancelled the copy is skipped.
func (r *Router) fail(ctx context.Context, entry FileEntry, result *RouteResult, err error) {
	result.Outcome = OutcomeFailure
	result.Err = err
	result.DestPath = ""

	logger := r.logger.With(slog.String("path", entry.Path))
	if result.Codec != "" {
		logger = logger.With(slog.String("codec", result.Codec))
	}
	if stderr := stderrOf(err); stderr != "" {
		logger = logger.With(slog.String("stderr", tail(stderr, 20)))
	}

	if ctx.Err() != nil {
		logger.Warn("processing interrupted", slog.Any("error", err))
		fmt.Fprintf(r.out, "%s\n", ui.ErrorStyle.Render(fmt.Sprintf("   ❌ Interrupted: %v", err)))
		return
	}

	logger.Error("processing failed", slog.Any("error", err))
	fmt.Fprintf(r.out, "%s\n", ui.ErrorStyle.Render(fmt.Sprintf("   ❌ Error: %v", err)))

	dst := r.outputPath(r.cfg.FailuresDir, entry)
	copyErr := r.claim(dst, entry)
	if copyErr == nil {
		copyErr = copyTo(entry.Path, dst)
	}
	if copyErr != nil {
		result.CopyErr = fmt.Errorf("%w: %w", ErrFailureCopy, copyErr)
		logger.Error("file could not be placed in any output folder", slog.Any("error", result.CopyErr))
		fmt.Fprintf(r.out, "%s\n", ui.ErrorStyle.Render(fmt.Sprintf("   ❌ %v", result.CopyErr)))
		return
	}
	result.DestPath = dst
	fmt.Fprintf(r.out, "   📁 Copied to %s\n", dst)
}

// outputPath returns where entry goes inside an output folder. The source
// layout is mirrored, so same-named files from different folders never meet.
func (r *Router) outputPath(dir string, entry FileEntry) string {
	return filepath.Join(dir, entry.OutputRel())
}

// claim reserves dst for entry. Outputs of earlier runs are overwritten, but
// an output written for another file in this run is never touched.
func (r *Router) claim(dst string, entry FileEntry) error {
	key := absPath(dst)
	if owner, ok := r.claimed[key]; ok && owner != entry.Path {
		return fmt.Errorf("%w: %s is the output of %s", ErrOutputCollision, dst, owner)
	}
	r.claimed[key] = entry.Path
	return nil
}
