package cmd

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/lepinkainen/vidshrink/ui"
	"github.com/lepinkainen/vidshrink/video"
)

// printSummary displays final statistics
func printSummary(out io.Writer, stats *video.RunStats) {
	fmt.Fprintf(out, "\n%s\n", ui.HeaderStyle.Render("📊 Summary"))
	fmt.Fprintf(out, "   Transcoded: %d files\n", stats.Transcoded)
	fmt.Fprintf(out, "   Other codecs: %d files\n", stats.Passthrough)
	fmt.Fprintf(out, "   Failures: %d files\n", stats.Failed)

	if stats.Transcoded > 0 && stats.TotalSourceSize > 0 {
		saved := stats.TotalSourceSize - stats.TotalOutputSize
		percent := float64(saved) / float64(stats.TotalSourceSize) * 100
		fmt.Fprintf(out, "   Size: %s → %s (%.1f%% saved)\n",
			humanize.Bytes(uint64(stats.TotalSourceSize)),
			humanize.Bytes(uint64(stats.TotalOutputSize)),
			percent)
	}

	if stats.DirErrors > 0 {
		fmt.Fprintf(out, "%s\n", ui.ErrorStyle.Render(fmt.Sprintf("   ❌ %d folders could not be read", stats.DirErrors)))
	}

	if stats.Lost > 0 {
		fmt.Fprintf(out, "%s\n", ui.ErrorStyle.Render(fmt.Sprintf("   ❌ %d files could not be copied anywhere:", stats.Lost)))
		for _, r := range stats.Results {
			if r.Lost() {
				fmt.Fprintf(out, "      %s\n", r.Source)
			}
		}
	}

	if stats.HasFailures() {
		fmt.Fprintf(out, "\n%s\n", ui.ErrorStyle.Render("⚠️  Completed with failures"))
		return
	}
	fmt.Fprintf(out, "\n%s\n", ui.SuccessStyle.Render("🎉 Shrinking complete!"))
}
