package types

import "log/slog"

// DefaultVersion is the fallback version when AppContext is nil
const DefaultVersion = "dev"

// AppContext holds application-wide context information passed to commands
type AppContext struct {
	Version string
	RunID   string
	Logger  *slog.Logger
}

// VersionOrDefault returns the version of ctx, tolerating a nil context
func (ctx *AppContext) VersionOrDefault() string {
	if ctx == nil || ctx.Version == "" {
		return DefaultVersion
	}
	return ctx.Version
}

// LoggerOrDefault returns the run logger, or the slog default
func (ctx *AppContext) LoggerOrDefault() *slog.Logger {
	if ctx == nil || ctx.Logger == nil {
		return slog.Default()
	}
	return ctx.Logger
}
