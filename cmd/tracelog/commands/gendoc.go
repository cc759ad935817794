package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/thoreinstein/tracelog/cmd"
	"github.com/thoreinstein/tracelog/internal/errors"
	"github.com/thoreinstein/tracelog/internal/paths"
)

var (
	genDocDir    string
	genDocFormat string
)

func init() {
	genDocCmd.Flags().StringVarP(&genDocDir, "dir", "d", "", "output directory for documentation")
	genDocCmd.Flags().StringVar(&genDocFormat, "format", "markdown", "documentation format: markdown, man")
	rootCmd.AddCommand(genDocCmd)
}

var genDocCmd = &cobra.Command{
	Use:         "gen-doc",
	Short:       "Generate reference documentation for the CLI",
	Hidden:      true,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipConfigCheck: "true"},
	RunE: func(c *cobra.Command, _ []string) error {
		if genDocDir == "" {
			return errors.NewUserError(errors.New("output directory is required"), "Pass --dir")
		}

		if genDocFormat != "markdown" && genDocFormat != "man" {
			err := errors.Wrapf(errors.ErrInvalidArgument, "unknown format %q", genDocFormat)
			return errors.NewUserError(err, "Use --format markdown or --format man")
		}

		if err := paths.EnsureDir(genDocDir, 0o755); err != nil {
			return errors.Wrap(err, "creating output directory")
		}

		switch genDocFormat {
		case "markdown":
			if err := doc.GenMarkdownTreeCustom(rootCmd, genDocDir, filePrepender, linkHandler); err != nil {
				return errors.Wrap(err, "generating markdown")
			}
		case "man":
			header := &doc.GenManHeader{
				Title:   "TRACELOG",
				Section: "1",
				Source:  "tracelog " + cmd.Version,
			}
			if err := doc.GenManTree(rootCmd, header, genDocDir); err != nil {
				return errors.Wrap(err, "generating man pages")
			}
		}

		fmt.Fprintf(c.OutOrStdout(), "Documentation generated in %s\n", genDocDir)
		return nil
	},
}

func filePrepender(filename string) string {
	name := filepath.Base(filename)
	base := strings.TrimSuffix(name, filepath.Ext(name))
	// tracelog_config_init.md -> tracelog config init
	title := strings.ReplaceAll(base, "_", " ")

	return fmt.Sprintf(`---
title: "%s"
description: "Reference for %s command"
draft: false
toc: true
---
`, title, title)
}

func linkHandler(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return "/docs/reference/" + strings.ToLower(base) + "/"
}
