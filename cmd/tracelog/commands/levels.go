package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/tracelog/internal/errors"
	"github.com/thoreinstein/tracelog/pkg/tracelog"
)

func init() {
	rootCmd.AddCommand(levelsCmd)
}

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "List log levels",
	Long: `List the log levels from most to least severe, with their ordinal and
the stream their lines are written to. With --json the table is printed as
a JSON array.`,
	Example: `  tracelog levels
  tracelog levels --json

  See Also: tracelog emit`,
	Args: cobra.NoArgs,
	RunE: runLevels,
}

// levelInfo is one row of the level table.
type levelInfo struct {
	Name    string `json:"name"`
	Ordinal int    `json:"ordinal"`
	Sink    string `json:"sink"`
}

func levelTable() []levelInfo {
	levels := tracelog.Levels()
	rows := make([]levelInfo, 0, len(levels))
	for _, l := range levels {
		sink := "stdout"
		if l <= tracelog.LevelError {
			sink = "stderr"
		}
		rows = append(rows, levelInfo{Name: l.String(), Ordinal: int(l), Sink: sink})
	}
	return rows
}

func runLevels(cmd *cobra.Command, _ []string) error {
	rows := levelTable()
	if jsonOutput {
		return writeLevelsJSON(cmd.OutOrStdout(), rows)
	}

	w := cmd.OutOrStdout()
	current := tracelog.Global().Level()
	fmt.Fprintf(w, "%-7s %-7s %s\n", "LEVEL", "ORDINAL", "SINK")
	for _, r := range rows {
		marker := ""
		if r.Ordinal == int(current) {
			marker = "  (current)"
		}
		fmt.Fprintf(w, "%-7s %-7d %s%s\n", r.Name, r.Ordinal, r.Sink, marker)
	}
	return nil
}

func writeLevelsJSON(w io.Writer, rows []levelInfo) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return errors.Wrap(err, "encoding levels")
	}
	return nil
}
