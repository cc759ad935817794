package commands

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/tracelog/internal/config"
	"github.com/thoreinstein/tracelog/internal/editor"
	"github.com/thoreinstein/tracelog/internal/errors"
	"github.com/thoreinstein/tracelog/internal/logging"
	"github.com/thoreinstein/tracelog/internal/paths"
	"github.com/thoreinstein/tracelog/pkg/fileutil"
	"github.com/thoreinstein/tracelog/pkg/tracelog"
)

var (
	// initInteractive holds the --interactive flag value.
	initInteractive bool

	// initForce holds the --force flag value.
	initForce bool
)

func init() {
	configInitCmd.Flags().BoolVarP(&initInteractive, "interactive", "i", false, "pick the level with a fuzzy finder")
	configInitCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage tracelog configuration",
	Long: `Manage tracelog configuration.

Configuration is read from --config, ./tracelog.{yaml,yml,toml,json} or
$XDG_CONFIG_HOME/tracelog/config.*, overridden by TRACELOG_* environment
variables and flags. Without a subcommand, shows the effective configuration.`,
	Example: `  # Show effective configuration
  tracelog config

  # Get a single value
  tracelog config get level

  # Write a config file
  tracelog config init --level DEBUG

See Also: tracelog levels`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long:  `Show the effective configuration as YAML, after files, environment and flags are merged.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a single effective configuration value.

Keys: ` + strings.Join(config.Keys, ", "),
	Example: `  tracelog config get level
  TRACELOG_LEVEL=TRACE tracelog config get level`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a configuration file",
	Long: `Write the effective configuration to a file.

The file defaults to $XDG_CONFIG_HOME/tracelog/config.yaml. Its extension
selects the encoding: .yaml, .yml, .toml or .json. Use flags to choose the
values, or --interactive to pick the level from a list.`,
	Example: `  # Default location, DEBUG level
  tracelog config init --level DEBUG

  # TOML file in the current directory
  tracelog config init ./tracelog.toml --library myapp

  # Pick the level interactively
  tracelog config init --interactive`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{skipConfigCheck: "true"},
	RunE:        runConfigInit,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open configuration in $EDITOR",
	Long: `Open the configuration file in your default editor.

Uses $EDITOR, then $VISUAL, then nano or vi. Edits the file that was loaded,
or the default location when none was.`,
	Example: `  # Open config in default editor
  tracelog config edit

  # Open with specific editor
  EDITOR=nano tracelog config edit

See Also: tracelog config init`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipConfigCheck: "true"},
	RunE:        runConfigEdit,
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	if f := config.FileUsed(); f != "" {
		fmt.Fprintf(w, "# file: %s\n", f)
	}

	data, err := yaml.Marshal(loadedConfig)
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}

	fmt.Fprint(w, string(data))
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	if !slices.Contains(config.Keys, key) {
		err := errors.Wrapf(errors.ErrInvalidArgument, "unknown key %q", key)
		return errors.NewUserError(err, "Valid keys: "+strings.Join(config.Keys, ", "))
	}

	fmt.Fprintln(cmd.OutOrStdout(), viper.GetString(key))
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()

	path := paths.DefaultConfigFile()
	if len(args) == 1 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil && !initForce {
		err := errors.Newf("config file already exists at %s", path)
		return errors.NewUserError(err, "Use --force to overwrite")
	}

	cfg := *loadedConfig
	if initInteractive {
		level, err := pickLevel()
		if err != nil {
			if errors.Is(err, fuzzyfinder.ErrAbort) {
				fmt.Fprintln(w, "Aborted.")
				return nil
			}
			return errors.Wrap(err, "selecting level")
		}
		cfg.Level = level.String()
	}

	if err := config.Save(path, &cfg); err != nil {
		if errors.Is(err, fileutil.ErrUnsupportedFormat) {
			return errors.NewUserError(err, "Use a .yaml, .yml, .toml or .json file")
		}
		return errors.NewSystemError(err, "")
	}

	logging.FromContext(cmd.Context()).Debug("wrote config", "path", path)
	fmt.Fprintf(w, "Wrote %s\n", path)
	return nil
}

// pickLevel asks the user for a level with a fuzzy finder.
func pickLevel() (tracelog.Level, error) {
	rows := levelTable()
	idx, err := fuzzyfinder.Find(
		rows,
		func(i int) string {
			return rows[i].Name
		},
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return ""
			}
			r := rows[i]
			return fmt.Sprintf("Level: %s\nOrdinal: %d\nSink: %s\n\nLines at %s and more severe levels are written.",
				r.Name, r.Ordinal, r.Sink, r.Name)
		}),
	)
	if err != nil {
		return tracelog.LevelInfo, err
	}
	return tracelog.Level(rows[idx].Ordinal), nil
}

func runConfigEdit(cmd *cobra.Command, _ []string) error {
	path := config.FileUsed()
	if path == "" {
		path = paths.DefaultConfigFile()
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		err := errors.Wrapf(errors.ErrNotFound, "config file %s", path)
		return errors.NewUserError(err, "Run: tracelog config init")
	}

	return editor.Open(cmd.OutOrStdout(), path)
}
