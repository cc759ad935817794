// Package commands implements the CLI commands for tracelog.
package commands

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/thoreinstein/tracelog/cmd"
	"github.com/thoreinstein/tracelog/internal/config"
	"github.com/thoreinstein/tracelog/internal/errors"
	"github.com/thoreinstein/tracelog/internal/logging"
	"github.com/thoreinstein/tracelog/pkg/tracelog"
)

// skipConfigCheck marks commands that must run even when the config file is
// invalid, so the user can inspect or repair it.
const skipConfigCheck = "skip-config-check"

var (
	// configFile holds the value of the --config flag.
	configFile string

	// verbosity holds the count of -v flags.
	verbosity int

	// jsonOutput holds the value of the --json flag.
	jsonOutput bool

	// logFormat holds the value of the --log-format flag.
	logFormat string
)

// loadedConfig is the effective configuration of the current invocation.
var loadedConfig *config.Config

// configLoadErr holds any error that occurred during config loading.
var configLoadErr error

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file (default: ./tracelog.yaml or $XDG_CONFIG_HOME/tracelog/config.yaml)")
	pf.String(config.KeyLibrary, "", "library name printed on every line")
	pf.String(config.KeyLevel, "", "global level: FATAL, ERROR, WARN, INFO, DEBUG, TRACE")
	pf.BoolVar(&jsonOutput, "json", false, "emit JSON lines instead of text")
	pf.String(config.KeyColor, "", "colour text output: auto, always, never")
	pf.CountVarP(&verbosity, "verbose", "v",
		"raise the global level when --level is not set (e.g., -v, -vv, -vvv)")
	pf.StringVar(&logFormat, "log-format", "text", "format of tracelog's own diagnostics: text, json")

	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("tracelog version {{.Version}}\n")

	// Silence errors and usage so we can control error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

var rootCmd = &cobra.Command{
	Use:   "tracelog",
	Short: "Leveled, module-tagged log lines from the command line",
	Long: `tracelog writes leveled log lines tagged with a library and module name.

Levels run from FATAL (most severe) to TRACE. A line is written when its
level is at or above the configured minimum; FATAL and ERROR go to stderr,
everything else to stdout. Lines are text or, with --json, one JSON object
per line.

Settings come from flags, TRACELOG_* environment variables, a config file
and built-in defaults, in that order.`,
	Example: `  # Write one line
  tracelog emit INFO server "listening on %s" :8080

  # Tag lines from another program
  make 2>&1 | tracelog pipe build --at DEBUG --level DEBUG

  # Show the level table
  tracelog levels

  See Also: tracelog config, tracelog levels`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// Initialize logging first
		setupLogging(cmd)
		return initConfig(cmd)
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// setupLogging configures the CLI's own diagnostics logger from -v and
// --log-format and stores it in the command context.
func setupLogging(cmd *cobra.Command) {
	logger := logging.New(logging.Config{
		Level:  logging.LevelFromVerbosity(verbosity),
		Format: logging.Format(logFormat),
		Output: cmd.ErrOrStderr(),
	})
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))
}

// initConfig loads configuration, lets flags override it and applies the
// result to the global tracelog defaults.
func initConfig(cmd *cobra.Command) error {
	logger := logging.FromContext(cmd.Context())

	config.Init()
	pf := cmd.Root().PersistentFlags()
	for _, key := range []string{config.KeyLibrary, config.KeyLevel, config.KeyColor} {
		if err := viper.BindPFlag(key, pf.Lookup(key)); err != nil {
			return errors.Wrapf(err, "binding --%s", key)
		}
	}
	if jsonOutput {
		viper.Set(config.KeyFormat, string(tracelog.FormatJSON))
	}
	if verbosity > 0 && !pf.Changed(config.KeyLevel) {
		viper.Set(config.KeyLevel, tracelog.LevelFromVerbosity(verbosity).String())
	}

	loadedConfig, configLoadErr = config.Load(configFile)
	if configLoadErr != nil {
		if !skipsConfigCheck(cmd) {
			return errors.NewConfigError(configLoadErr)
		}
		logger.Warn("ignoring invalid configuration", "error", configLoadErr)
		loadedConfig = config.Default()
	}
	if f := config.FileUsed(); f != "" {
		logger.Debug("loaded config", "path", f)
	}

	config.Apply(loadedConfig, tracelog.Global(),
		tracelog.WithOutput(cmd.OutOrStdout(), cmd.ErrOrStderr()))
	logger.Debug("global defaults set",
		"library", loadedConfig.Library,
		"level", loadedConfig.Level,
		"format", loadedConfig.Format)

	return nil
}

// skipsConfigCheck reports whether cmd runs with defaults when the
// configuration is invalid.
func skipsConfigCheck(cmd *cobra.Command) bool {
	if cmd.Name() == "help" || cmd.Name() == "version" {
		return true
	}
	return cmd.Annotations[skipConfigCheck] != ""
}

// Execute runs the root command.
func Execute() error {
	return errors.Wrap(rootCmd.Execute(), "executing root command")
}
