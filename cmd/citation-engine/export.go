// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/citation-engine/internal/library"
	"github.com/pdiddy/citation-engine/internal/tabular"
	"github.com/pdiddy/citation-engine/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export [terms...]",
	Short: "Export citations as BibTeX, JSON, YAML, CSL, CSV or SQLite",
	Long: `Export writes the citations matching the filter flags (all citations when
no filter is given). Text formats go to stdout unless --out is set; sqlite
requires --out and a binary built with cgo.`,
	RunE: runExport,
}

func init() {
	addFilterFlags(exportCmd)
	exportCmd.Flags().String("format", "bibtex", "output format: bibtex, json, yaml, csl, csv or sqlite")
	exportCmd.Flags().StringP("out", "o", "", "output file (default: stdout)")
	exportCmd.Flags().Int("indent", 0, "JSON indentation width, negative for compact (default: export.indent)")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	format = strings.ToLower(format)
	out, _ := cmd.Flags().GetString("out")

	opts, err := searchOptsFromFlags(cmd, args)
	if err != nil {
		return err
	}
	lib, err := openLibrary()
	if err != nil {
		return err
	}
	cs, err := selectForExport(lib, opts)
	if err != nil {
		return err
	}

	if format == "sqlite" {
		if out == "" {
			return fmt.Errorf("sqlite export requires --out")
		}
		res, err := tabular.WriteSQLite(context.Background(), out, lib.Rows(cs))
		if errors.Is(err, tabular.ErrCapabilityUnavailable) {
			return fmt.Errorf("%w: rebuild with CGO_ENABLED=1", err)
		}
		if err != nil {
			return err
		}
		fts := "without"
		if res.FTS {
			fts = "with"
		}
		fmt.Fprintf(os.Stderr, "Wrote %d citation(s) to %s (%s full-text index)\n", res.Rows, out, fts)
		return nil
	}

	var buf bytes.Buffer
	switch format {
	case "bibtex", "bib":
		buf.WriteString(lib.ExportBibTeX(cs))
		buf.WriteString("\n")
	case "json":
		indent := viper.GetInt("export.indent")
		if cmd.Flags().Changed("indent") {
			indent, _ = cmd.Flags().GetInt("indent")
		}
		data, err := lib.ExportJSON(cs, indent)
		if err != nil {
			return err
		}
		buf.Write(data)
		buf.WriteString("\n")
	case "yaml", "yml":
		data, err := lib.ExportYAML(cs)
		if err != nil {
			return err
		}
		buf.Write(data)
	case "csl":
		if err := lib.ExportCSL(&buf, cs); err != nil {
			return err
		}
	case "csv":
		if err := tabular.WriteCSV(&buf, lib.Rows(cs)); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown export format %q (want bibtex, json, yaml, csl, csv or sqlite)", format)
	}

	if out == "" {
		_, err := os.Stdout.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %d citation(s) to %s\n", len(cs), out)
	return nil
}

// selectForExport runs the filters. Exporters treat an empty selection as
// the whole library, so a filtered search that matches nothing is an error.
func selectForExport(lib *library.Library, opts library.SearchOptions) ([]types.Citation, error) {
	cs := lib.Search(opts)
	if len(cs) == 0 && !opts.IsEmpty() {
		return nil, fmt.Errorf("no citations match the given filters")
	}
	return cs, nil
}
