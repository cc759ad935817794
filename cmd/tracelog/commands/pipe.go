package commands

import (
	"bufio"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/tracelog/internal/errors"
	"github.com/thoreinstein/tracelog/internal/logging"
)

// maxPipeLine bounds a single input line.
const maxPipeLine = 1 << 20

var (
	// pipeAt holds the --at flag value.
	pipeAt string

	// pipeSubs holds the --sub flag values.
	pipeSubs []string

	// pipeModuleLevel holds the --module-level flag value.
	pipeModuleLevel string
)

func init() {
	pipeCmd.Flags().StringVar(&pipeAt, "at", "INFO", "level of every piped line")
	pipeCmd.Flags().StringSliceVar(&pipeSubs, "sub", nil, "derive a sub-module logger (repeatable)")
	pipeCmd.Flags().StringVar(&pipeModuleLevel, "module-level", "", "pin the logger's own level instead of following the global one")
	rootCmd.AddCommand(pipeCmd)
}

var pipeCmd = &cobra.Command{
	Use:   "pipe <module>",
	Short: "Write each line of stdin as a log line",
	Long: `Read stdin line by line and write each line as a log message for the
given module at the --at level. Lines are passed as arguments, so '%'
characters in the input are printed as-is.`,
	Example: `  # Tag build output
  make 2>&1 | tracelog pipe build

  # Piped lines as JSON objects on stderr
  ./job | tracelog pipe job --at ERROR --json

  See Also: tracelog emit`,
	Args: cobra.ExactArgs(1),
	RunE: runPipe,
}

func runPipe(cmd *cobra.Command, args []string) error {
	level, err := parseLevelArg(pipeAt)
	if err != nil {
		return err
	}

	logger, err := moduleLogger(args[0], pipeModuleLevel, pipeSubs)
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), maxPipeLine)

	lines := 0
	for scanner.Scan() {
		logger.Log(level, "%s", scanner.Text())
		lines++
	}
	if err := scanner.Err(); err != nil {
		return errors.NewSystemError(errors.Wrap(err, "reading stdin"), "")
	}

	logging.FromContext(cmd.Context()).Debug("pipe finished", "module", logger.Module(), "lines", lines)
	return nil
}
