// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citation-engine/internal/bibtex"
)

var importCmd = &cobra.Command{
	Use:   "import-bibtex <file.bib>",
	Short: "Convert a BibTeX file into a library snapshot",
	Long: `Import-bibtex parses every entry of a BibTeX file into a citation with a
fresh id and writes a new snapshot file that the other commands can read.
An existing output file is not overwritten unless --force is set.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringP("out", "o", "", "snapshot file to write (required)")
	importCmd.Flags().Bool("force", false, "overwrite an existing output file")
	_ = importCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")
	force, _ := cmd.Flags().GetBool("force")

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	citations, err := bibtex.Parse(string(data))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}

	if !force {
		if _, err := os.Stat(out); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", out)
		}
	}

	snap := bibtex.Snapshot(citations, time.Now().UTC())
	encoded, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}
	if err := os.WriteFile(out, append(encoded, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	fmt.Fprintf(os.Stdout, "Imported %d citation(s) into %s\n", len(citations), out)
	return nil
}
