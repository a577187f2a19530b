package utils

import (
	"fmt"
	"os/exec"
	"runtime"
)

// PlatformError is returned when the host operating system is not supported
type PlatformError struct {
	GOOS string
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("OS not allowed: %s (supported: linux, windows)", e.GOOS)
}

// Tools holds the names or paths of the external binaries
type Tools struct {
	FFmpeg  string
	FFprobe string
}

// ToolsFor returns the ffmpeg and ffprobe binary names for goos
func ToolsFor(goos string) (Tools, error) {
	switch goos {
	case "linux":
		return Tools{FFmpeg: "ffmpeg", FFprobe: "ffprobe"}, nil
	case "windows":
		return Tools{FFmpeg: "ffmpeg.exe", FFprobe: "ffprobe.exe"}, nil
	default:
		return Tools{}, &PlatformError{GOOS: goos}
	}
}

// HostTools returns the binaries for the running platform
func HostTools() (Tools, error) {
	return ToolsFor(runtime.GOOS)
}

// ValidateFFmpegDependencies checks if ffmpeg and ffprobe are available in PATH
// and returns their resolved paths
func ValidateFFmpegDependencies(tools Tools) (Tools, error) {
	// Check for ffprobe
	ffprobe, err := exec.LookPath(tools.FFprobe)
	if err != nil {
		return Tools{}, fmt.Errorf("%s not found in PATH: %w. %s", tools.FFprobe, err, getInstallationInstructions(runtime.GOOS))
	}

	// Check for ffmpeg
	ffmpeg, err := exec.LookPath(tools.FFmpeg)
	if err != nil {
		return Tools{}, fmt.Errorf("%s not found in PATH: %w. %s", tools.FFmpeg, err, getInstallationInstructions(runtime.GOOS))
	}

	return Tools{FFmpeg: ffmpeg, FFprobe: ffprobe}, nil
}

// getInstallationInstructions returns platform-specific installation instructions
func getInstallationInstructions(goos string) string {
	switch goos {
	case "linux":
		return "Install with: apt-get install ffmpeg (Ubuntu/Debian) or dnf install ffmpeg (Fedora)"
	case "windows":
		return "Download from https://ffmpeg.org/download.html and add to PATH"
	default:
		return "Download from https://ffmpeg.org/download.html"
	}
}
