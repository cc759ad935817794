package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/thoreinstein/tracelog/internal/paths"
	"github.com/thoreinstein/tracelog/pkg/tracelog"
)

// Format specifies the output format for log messages.
type Format string

const (
	// FormatText produces "tracelog [LEVEL] cli: message key=value" lines.
	FormatText Format = "text"
	// FormatJSON produces machine-readable JSON output.
	FormatJSON Format = "json"
)

// Module is the module name diagnostics are tagged with in text output.
const Module = "cli"

// LevelTrace is the slog level below Debug used for -vvv output.
var LevelTrace = tracelog.LevelTrace.Slog()

// Config holds the configuration for creating a new logger.
type Config struct {
	// Level sets the minimum log level. Messages below this level are discarded.
	Level slog.Level
	// Format specifies the output format (text or JSON).
	Format Format
	// Output is where log messages are written. Defaults to os.Stderr if nil.
	Output io.Writer
}

// New creates a logger with the given configuration.
// If cfg.Output is nil, it defaults to os.Stderr.
// If cfg.Format is not recognized, it defaults to FormatText.
func New(cfg Config) *slog.Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	var handler slog.Handler
	switch cfg.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(output, &slog.HandlerOptions{Level: cfg.Level})
	default:
		// Diagnostics share one sink regardless of level.
		d := tracelog.NewDefaults(tracelog.WithOutput(output, output))
		d.Set(paths.AppName, tracelog.LevelTrace.String())
		l := tracelog.New(Module,
			tracelog.WithDefaults(d),
			tracelog.WithMinLevel(tracelog.LevelFromSlog(cfg.Level)))
		handler = tracelog.NewHandler(l)
	}

	return slog.New(handler)
}

// NewDiscard returns a logger that drops everything, for commands running
// in quiet mode.
func NewDiscard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// LevelFromVerbosity maps a count of -v flags to a slog level:
// 0 is Warn, 1 Info, 2 Debug and 3 or more LevelTrace.
func LevelFromVerbosity(v int) slog.Level {
	return tracelog.LevelFromVerbosity(v).Slog()
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying logger.
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the logger stored by NewContext, or slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
			return logger
		}
	}
	return slog.Default()
}
