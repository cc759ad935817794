package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/tracelog/internal/config"
	"github.com/thoreinstein/tracelog/internal/doctor"
	"github.com/thoreinstein/tracelog/internal/errors"
	"github.com/thoreinstein/tracelog/internal/logging"
	"github.com/thoreinstein/tracelog/internal/paths"
)

var (
	doctorQuiet bool
	doctorAll   bool
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorQuiet, "quiet", false,
		"suppress output, exit code only")
	doctorCmd.Flags().BoolVar(&doctorAll, "all", false,
		"show every check, including passed ones")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose configuration issues",
	Long: `Run diagnostic checks on the tracelog configuration and environment.

Checks the config file (syntax, keys, values, permissions), the config
directory, TRACELOG_* environment overrides and whether stdout and stderr
are colour-capable terminals.

Output modes (mutually exclusive):
  (default)   Show errors and warnings
  --all       Show all checks including passed ones
  --quiet     No output, exit code only
  --json      Machine-readable JSON output

Exit codes:
  0 - No errors or warnings
  1 - Warnings present, no errors
  2 - Errors present`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipConfigCheck: "true"},
	PreRunE:     validateDoctorFlags,
	RunE:        runDoctor,
}

// validateDoctorFlags ensures output flags are mutually exclusive.
func validateDoctorFlags(_ *cobra.Command, _ []string) error {
	count := 0
	for _, set := range []bool{jsonOutput, doctorQuiet, doctorAll} {
		if set {
			count++
		}
	}

	if count > 1 {
		return errors.NewUserError(
			errors.New("flags --json, --quiet, and --all are mutually exclusive"), "")
	}

	return nil
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	file := configFile
	if file == "" {
		file = config.FindFile()
	}

	runner := doctor.NewRunner()
	runner.AddCheck(doctor.NewConfigFileCheck(file))
	runner.AddCheck(doctor.NewConfigDirCheck(paths.ConfigDir()))
	runner.AddCheck(doctor.NewEnvCheck())
	runner.AddCheck(doctor.NewTerminalCheck("stdout", os.Stdout))
	runner.AddCheck(doctor.NewTerminalCheck("stderr", os.Stderr))

	report := runner.Run()

	// --quiet promises an exit code and nothing else, diagnostics included.
	logger := logging.FromContext(cmd.Context())
	if doctorQuiet {
		logger = logging.NewDiscard()
	}
	for _, result := range report.Results {
		logger.Debug("check finished", "name", result.Name, "status", result.Status)
	}

	if err := outputDoctorReport(cmd.OutOrStdout(), report); err != nil {
		return err
	}

	if report.HasErrors() {
		return errors.NewExitError(errDoctorErrors, errors.ExitSystem)
	}
	if report.HasWarnings() {
		return errors.NewExitError(errDoctorWarnings, errors.ExitUser)
	}
	return nil
}

func outputDoctorReport(w io.Writer, report *doctor.DoctorReport) error {
	if doctorQuiet {
		return nil
	}

	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return errors.Wrap(err, "encoding JSON")
		}
		return nil
	}

	outputDoctorText(w, report)
	return nil
}

func outputDoctorText(w io.Writer, report *doctor.DoctorReport) {
	hasOutput := false
	for _, result := range report.Results {
		problem := result.Status == doctor.SeverityError || result.Status == doctor.SeverityWarning
		if !doctorAll && !problem {
			continue
		}

		hasOutput = true
		fmt.Fprintf(w, "%s [%s] %s: %s\n", statusIcon(result.Status), result.Category, result.Name, result.Message)

		if result.FixHint != "" && problem {
			fmt.Fprintf(w, "  hint: %s\n", result.FixHint)
		}
	}

	if hasOutput {
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)
}

func statusIcon(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return "✓"
	case doctor.SeverityInfo:
		return "ℹ"
	case doctor.SeverityWarning:
		return "⚠"
	case doctor.SeverityError:
		return "✗"
	default:
		return "?"
	}
}

// errDoctorWarnings reports that checks raised warnings.
var errDoctorWarnings = errors.New("doctor found warnings")

// errDoctorErrors reports that checks raised errors.
var errDoctorErrors = errors.New("doctor found errors")
