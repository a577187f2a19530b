package cmd

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/lepinkainen/vidshrink/ui"
	"github.com/lepinkainen/vidshrink/utils"
)

// CheckCmd verifies that this host can run a shrink
type CheckCmd struct{}

func (cmd *CheckCmd) Run() error {
	return cmd.check(os.Stdout, runtime.GOOS)
}

func (cmd *CheckCmd) check(out io.Writer, goos string) error {
	tools, err := utils.ToolsFor(goos)
	if err != nil {
		fmt.Fprintf(out, "%s\n", ui.ErrorStyle.Render(fmt.Sprintf("❌ %v", err)))
		return err
	}
	fmt.Fprintf(out, "%s\n", ui.SuccessStyle.Render(fmt.Sprintf("✅ Platform %s supported", goos)))

	resolved, err := utils.ValidateFFmpegDependencies(tools)
	if err != nil {
		fmt.Fprintf(out, "%s\n", ui.ErrorStyle.Render(fmt.Sprintf("❌ %v", err)))
		return err
	}

	fmt.Fprintf(out, "%s\n", ui.SuccessStyle.Render(fmt.Sprintf("✅ %s: %s", tools.FFprobe, resolved.FFprobe)))
	fmt.Fprintf(out, "%s\n", ui.SuccessStyle.Render(fmt.Sprintf("✅ %s: %s", tools.FFmpeg, resolved.FFmpeg)))
	return nil
}
