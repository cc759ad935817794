package commands

import (
	"bytes"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/tracelog/internal/errors"
	"github.com/thoreinstein/tracelog/internal/logging"
	"github.com/thoreinstein/tracelog/pkg/tracelog"
)

var (
	// emitSubs holds the --sub flag values, outermost first.
	emitSubs []string

	// emitModuleLevel holds the --module-level flag value.
	emitModuleLevel string
)

func init() {
	emitCmd.Flags().StringSliceVar(&emitSubs, "sub", nil, "derive a sub-module logger (repeatable)")
	emitCmd.Flags().StringVar(&emitModuleLevel, "module-level", "", "pin the logger's own level instead of following the global one")
	rootCmd.AddCommand(emitCmd)
}

var emitCmd = &cobra.Command{
	Use:   "emit <LEVEL> <module> <template> [args...]",
	Short: "Write one log line",
	Long: `Write one log line at LEVEL for the given module.

The template accepts %s (string), %j (JSON) and the usual numeric verbs.
Each argument is decoded as JSON when it parses, so '{"code":401}' is an
object and 42 is a number; anything else is passed as a string.

A line below the effective level is dropped silently.`,
	Example: `  # Text line on stdout
  tracelog emit INFO server "listening on %s" :8080

  # Object argument rendered as JSON on stderr
  tracelog emit ERROR client "request failed: %j" '{"status":502}'

  # Sub-module with its own level
  tracelog emit DEBUG db "slow query %dms" 812 --sub pool --module-level TRACE

  See Also: tracelog pipe, tracelog levels`,
	Args: cobra.MinimumNArgs(3),
	RunE: runEmit,
}

func runEmit(cmd *cobra.Command, args []string) error {
	level, err := parseLevelArg(args[0])
	if err != nil {
		return err
	}

	logger, err := moduleLogger(args[1], emitModuleLevel, emitSubs)
	if err != nil {
		return err
	}

	values := make([]any, 0, len(args)-3)
	for _, a := range args[3:] {
		values = append(values, decodeArg(a))
	}

	logging.FromContext(cmd.Context()).Debug("emitting",
		"module", logger.Module(), "level", level.String(), "args", len(values))

	logger.Log(level, args[2], values...)
	return nil
}

// parseLevelArg parses a level name given on the command line.
func parseLevelArg(name string) (tracelog.Level, error) {
	level, err := tracelog.ParseLevel(name)
	if err != nil {
		return level, errors.NewUserError(errors.Wrap(err, "invalid level"), "Run: tracelog levels")
	}
	return level, nil
}

// moduleLogger builds the logger for module, pinning localLevel when set and
// descending through subs.
func moduleLogger(module, localLevel string, subs []string) (*tracelog.Logger, error) {
	var opts []tracelog.Option
	if localLevel != "" {
		level, err := parseLevelArg(localLevel)
		if err != nil {
			return nil, err
		}
		opts = append(opts, tracelog.WithMinLevel(level))
	}

	logger := tracelog.New(module, opts...)
	for _, sub := range subs {
		logger = logger.SubModule(sub)
	}
	return logger, nil
}

// decodeArg decodes a JSON argument, keeping numbers exact. Text that is not
// a single JSON value is returned unchanged.
func decodeArg(s string) any {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil || dec.More() {
		return s
	}
	return v
}
