// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citation-engine/internal/lookup"
	"github.com/pdiddy/citation-engine/internal/render"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <identifier>",
	Short: "Fetch citation metadata for a DOI, arXiv ID or URL",
	Long: `Lookup resolves a DOI through CrossRef, an arXiv ID through the arXiv API,
or a web page through its readable content, and prints the resulting
citation. The library is not modified.

Set a contact address in .secrets/crossref-email or lookup.email to use the
CrossRef polite pool.`,
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

func init() {
	lookupCmd.Flags().String("format", "bibtex", "output: bibtex, ieee, apa or json")

	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	resolver := lookup.NewResolver(loadConfig().Lookup, os.Stderr)
	c, err := resolver.Resolve(context.Background(), args[0])
	if err != nil {
		return err
	}

	if format == "json" {
		return writeJSON(os.Stdout, render.ToCanonical(c))
	}
	style, err := render.ParseStyle(format)
	if err != nil {
		return err
	}
	fmt.Println(render.Format(style, c))
	return nil
}
