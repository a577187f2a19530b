package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	"github.com/lepinkainen/vidshrink/cmd"
	"github.com/lepinkainen/vidshrink/config"
	"github.com/lepinkainen/vidshrink/logging"
	"github.com/lepinkainen/vidshrink/types"
)

var Version = "dev"

type CLI struct {
	Shrink   cmd.ShrinkCmd `cmd:"" default:"withargs" help:"Shrink videos by transcoding h264/hevc files to h264 or h265"`
	H264Only cmd.H264Cmd   `cmd:"" name:"h264-only" help:"Shrink only h264 videos, keeping the h264 codec"`
	Probe    cmd.ProbeCmd  `cmd:"" help:"Show stream metadata and what shrink would do with each file"`
	Check    cmd.CheckCmd  `cmd:"" help:"Check platform support and ffmpeg/ffprobe availability"`

	Config    kong.ConfigFlag  `help:"Load flag defaults from a YAML file"`
	LogLevel  string           `name:"log_level" help:"Diagnostic log level (${enum})" enum:"debug,info,warn,error" default:"info"`
	LogFormat string           `name:"log_format" help:"Diagnostic log format (${enum})" enum:"text,json" default:"text"`
	Version   kong.VersionFlag `help:"Print version and exit"`
}

func newParser(ctx context.Context, cli *CLI, extra ...kong.Option) (*kong.Kong, error) {
	options := []kong.Option{
		kong.Name("vidshrink"),
		kong.Description("Compress video files size while keeping file dates"),
		kong.UsageOnError(),
		kong.Vars{"version": Version},
		kong.Configuration(config.YAML, config.DefaultPaths...),
		kong.BindTo(ctx, (*context.Context)(nil)),
	}
	return kong.New(cli, append(options, extra...)...)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cli CLI
	parser, err := newParser(ctx, &cli)
	if err != nil {
		panic(err)
	}
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	runID := uuid.NewString()
	logger := logging.NewLogger(logging.Config{Level: cli.LogLevel, Format: cli.LogFormat}, os.Stderr)
	logger = logging.WithRunID(logger, runID)
	slog.SetDefault(logger)

	err = kctx.Run(&types.AppContext{Version: Version, RunID: runID, Logger: logger})
	kctx.FatalIfErrorf(err)
}
