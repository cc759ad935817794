// Package logging builds the slog loggers the tracelog CLI uses for its own
// diagnostics.
//
// Text output goes through [tracelog.NewHandler], so diagnostics look like
// the lines the CLI emits on behalf of users:
//
//	tracelog [WARN] cli: config file ignored path=/tmp/x.yaml
//
// JSON output uses [slog.NewJSONHandler].
//
// # Basic Usage
//
//	logger := logging.New(logging.Config{
//		Level:  logging.LevelFromVerbosity(verbosity),
//		Format: logging.FormatText,
//		Output: os.Stderr,
//	})
//	ctx = logging.NewContext(ctx, logger)
//
// # Quiet Mode
//
// doctor --quiet swaps in [NewDiscard] so that only the exit code remains.
package logging
