// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/citation-engine/internal/library"
	"github.com/pdiddy/citation-engine/internal/render"
	"github.com/pdiddy/citation-engine/internal/ui"
	"github.com/pdiddy/citation-engine/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [terms...]",
	Short: "Search citations by text, domain, type, year range and tags",
	Long: `Search matches every whitespace-separated term case-insensitively against
title, authors, abstract, notes, tags and DOI. Filters combine: a citation
must satisfy all of them. With no terms and no filters every citation is listed.`,
	RunE: runSearch,
}

func init() {
	addFilterFlags(searchCmd)
	searchCmd.Flags().Int("limit", 0, "maximum results (default: search.max_results, 0 for all)")
	searchCmd.Flags().Bool("json", false, "print results as JSON")
	searchCmd.Flags().String("format", "", "print formatted citations instead of a table (ieee, apa, bibtex)")

	rootCmd.AddCommand(searchCmd)
}

// addFilterFlags registers the search filters shared by search and export.
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("query", "", "search text (joined with positional terms)")
	cmd.Flags().String("domain", "", "domain id or name")
	cmd.Flags().String("type", "", "citation type (Article, Book, InProceedings, ...)")
	cmd.Flags().Int("from", 0, "earliest publication year")
	cmd.Flags().Int("to", 0, "latest publication year")
	cmd.Flags().StringSlice("tag", nil, "required tag (repeatable)")
}

// searchOptsFromFlags builds search options from the filter flags and
// positional terms.
func searchOptsFromFlags(cmd *cobra.Command, args []string) (library.SearchOptions, error) {
	query, _ := cmd.Flags().GetString("query")
	domain, _ := cmd.Flags().GetString("domain")
	typeName, _ := cmd.Flags().GetString("type")
	tags, _ := cmd.Flags().GetStringSlice("tag")

	opts := library.SearchOptions{
		Query:  strings.TrimSpace(strings.Join(append([]string{query}, args...), " ")),
		Domain: domain,
		Tags:   tags,
	}
	if typeName != "" {
		t, ok := types.ParseCitationType(typeName)
		if !ok {
			return opts, fmt.Errorf("unknown citation type %q", typeName)
		}
		opts.Type = &t
	}
	if cmd.Flags().Changed("from") {
		from, _ := cmd.Flags().GetInt("from")
		opts.YearFrom = &from
	}
	if cmd.Flags().Changed("to") {
		to, _ := cmd.Flags().GetInt("to")
		opts.YearTo = &to
	}
	return opts, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	opts, err := searchOptsFromFlags(cmd, args)
	if err != nil {
		return err
	}
	opts.Limit = viper.GetInt("search.max_results")
	if cmd.Flags().Changed("limit") {
		opts.Limit, _ = cmd.Flags().GetInt("limit")
	}

	lib, err := openLibrary()
	if err != nil {
		return err
	}
	results := lib.Search(opts)

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		return writeJSON(os.Stdout, results)
	}

	if name, _ := cmd.Flags().GetString("format"); name != "" {
		style, err := render.ParseStyle(name)
		if err != nil {
			return err
		}
		return writeFormatted(os.Stdout, style, results)
	}

	if len(results) == 0 {
		fmt.Println("No citations found.")
		return nil
	}
	if err := printCitationTable(results, lib); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "\n%d citation(s)\n", len(results))
	return nil
}

// printCitationTable writes the citation table to stdout, styled on a terminal.
func printCitationTable(cs []types.Citation, lib *library.Library) error {
	return ui.WriteTable(os.Stdout, ui.CitationHeaders, ui.CitationRows(cs, lib.DomainName), ui.IsTerminal(os.Stdout))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// writeFormatted prints one formatted citation per paragraph.
func writeFormatted(w io.Writer, style render.Style, cs []types.Citation) error {
	for i, c := range cs {
		sep := "\n"
		if i == len(cs)-1 {
			sep = ""
		}
		if _, err := fmt.Fprintf(w, "%s\n%s", render.Format(style, c), sep); err != nil {
			return err
		}
	}
	return nil
}
