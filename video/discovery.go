package video

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Crawler walks a source tree and routes every regular file it finds
type Crawler struct {
	cfg    *RunConfig
	router *Router
	logger *slog.Logger

	// skip holds the cleaned absolute paths of the output folders
	skip map[string]bool
}

// NewCrawler creates a crawler that never descends into the destination,
// failures or other-codecs folders of cfg
func NewCrawler(cfg *RunConfig, router *Router, logger *slog.Logger) *Crawler {
	if logger == nil {
		logger = slog.Default()
	}
	skip := make(map[string]bool)
	for _, dir := range []string{cfg.DestinationDir, cfg.FailuresDir, cfg.OtherCodecsDir} {
		if dir != "" {
			skip[absPath(dir)] = true
		}
	}
	return &Crawler{cfg: cfg, router: router, logger: logger, skip: skip}
}

// Crawl routes every regular file below dir. Per-file failures are recorded in
// the returned stats; an error is only returned when dir itself cannot be read
// or ctx is cancelled.
func (c *Crawler) Crawl(ctx context.Context, dir string) (*RunStats, error) {
	stats := &RunStats{}
	if _, err := os.ReadDir(dir); err != nil {
		return stats, fmt.Errorf("failed to read source folder: %w", err)
	}
	err := c.crawl(ctx, dir, "", stats)
	return stats, err
}

// crawl visits dir, whose path relative to the crawl root is rel
func (c *Crawler) crawl(ctx context.Context, dir, rel string, stats *RunStats) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		c.logger.Error("failed to read folder", slog.String("path", dir), slog.Any("error", err))
		stats.DirErrors++
		return nil
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("crawl interrupted: %w", err)
		}

		path := filepath.Join(dir, entry.Name())
		file := FileEntry{Path: path, Rel: filepath.Join(rel, entry.Name())}
		mode, err := entryMode(path, entry)
		if err != nil {
			c.logger.Warn("failed to stat entry", slog.String("path", path), slog.Any("error", err))
			// Broken symlinks and vanished files still get a failure copy attempt
			stats.Add(c.router.Route(ctx, file))
			continue
		}

		switch {
		case mode.IsRegular():
			stats.Add(c.router.Route(ctx, file))
		case mode.IsDir():
			if entry.Type()&fs.ModeSymlink != 0 {
				// Linked folders can form cycles
				c.logger.Debug("skipping linked folder", slog.String("path", path))
				continue
			}
			if c.skip[absPath(path)] {
				c.logger.Debug("skipping output folder", slog.String("path", path))
				continue
			}
			if err := c.crawl(ctx, path, file.Rel, stats); err != nil {
				return err
			}
		default:
			c.logger.Debug("skipping non-regular file", slog.String("path", path), slog.String("mode", mode.String()))
		}
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("crawl interrupted: %w", err)
	}
	return nil
}

// entryMode resolves symlinks so linked files and folders are treated like their targets
func entryMode(path string, entry fs.DirEntry) (fs.FileMode, error) {
	if entry.Type()&fs.ModeSymlink == 0 {
		return entry.Type(), nil
	}
	fi, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return fi.Mode(), nil
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}
