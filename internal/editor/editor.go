// Package editor launches the user's preferred text editor on a config file.
package editor

import (
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/cockroachdb/errors"
)

// Open launches the user's preferred editor for the given path and reports
// the location on w.
// Uses $EDITOR environment variable, falling back to $VISUAL, then nano, then vi.
func Open(w io.Writer, path string) error {
	editorCmd := detectEditor()

	fmt.Fprintf(w, "Location: %s\n", path)

	cmd := exec.Command(editorCmd, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "running editor %s", editorCmd)
	}

	return nil
}

// detectEditor returns the editor command to use based on environment variables
// and available binaries. Fallback chain: $EDITOR, $VISUAL, nano, vi.
func detectEditor() string {
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}

	if visual := os.Getenv("VISUAL"); visual != "" {
		return visual
	}

	if _, err := exec.LookPath("nano"); err == nil {
		return "nano"
	}

	return "vi"
}
