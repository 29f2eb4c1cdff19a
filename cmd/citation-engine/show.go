// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citation-engine/internal/dedup"
	"github.com/pdiddy/citation-engine/internal/render"
	"github.com/pdiddy/citation-engine/internal/ui"
	"github.com/pdiddy/citation-engine/pkg/types"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one citation with every field and its formatted forms",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var formatCmd = &cobra.Command{
	Use:   "format <id>",
	Short: "Format one citation in IEEE, APA or BibTeX style",
	Args:  cobra.ExactArgs(1),
	RunE:  runFormat,
}

func init() {
	showCmd.Flags().Bool("json", false, "print the citation as JSON")
	formatCmd.Flags().String("style", "ieee", "citation style (ieee, apa, bibtex)")

	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(formatCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	lib, err := openLibrary()
	if err != nil {
		return err
	}
	c, ok := lib.Citation(args[0])
	if !ok {
		return fmt.Errorf("citation %s not found", args[0])
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSON(os.Stdout, render.ToCanonical(c))
	}

	styled := ui.IsTerminal(os.Stdout)
	var year string
	if c.Year != nil && *c.Year != 0 {
		year = strconv.Itoa(*c.Year)
	}
	domain, _ := lib.DomainName(c)

	fmt.Fprint(os.Stdout, ui.KeyValues([][2]string{
		{"ID", c.ID},
		{"Title", c.Title},
		{"Authors", c.AuthorsDisplay()},
		{"Type", c.Type.DisplayName()},
		{"Venue", types.Value(c.JournalOrConference)},
		{"Volume", types.Value(c.Volume)},
		{"Issue", types.Value(c.Issue)},
		{"Pages", types.Value(c.Pages)},
		{"Year", strings.TrimSpace(types.Value(c.Month) + " " + year)},
		{"Publisher", types.Value(c.Publisher)},
		{"DOI", types.Value(c.DOI)},
		{"URL", types.Value(c.URL)},
		{"ISBN", types.Value(c.ISBN)},
		{"Domain", domain},
		{"Tags", strings.Join(c.Tags, ", ")},
	}, styled))

	if abstract := types.Value(c.Abstract); abstract != "" {
		fmt.Fprintf(os.Stdout, "\nAbstract:\n%s\n", abstract)
	}
	if notes := types.Value(c.Notes); notes != "" {
		fmt.Fprintf(os.Stdout, "\nNotes:\n%s\n", notes)
	}

	fmt.Fprintf(os.Stdout, "\nIEEE:\n%s\n\nAPA:\n%s\n\nBibTeX:\n%s\n", render.IEEE(c), render.APA(c), render.BibTeX(c))

	if matches := dedup.Find(c, lib.Citations(), c.ID); len(matches) > 0 {
		fmt.Fprintln(os.Stdout, "\nPossible duplicates:")
		for _, m := range matches {
			fmt.Fprintf(os.Stdout, "  %s  %s (%s, %.2f)\n", m.Citation.ID, m.Citation.Title, m.Reason, m.Confidence)
		}
	}
	return nil
}

func runFormat(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("style")
	style, err := render.ParseStyle(name)
	if err != nil {
		return err
	}

	lib, err := openLibrary()
	if err != nil {
		return err
	}
	c, ok := lib.Citation(args[0])
	if !ok {
		return fmt.Errorf("citation %s not found", args[0])
	}
	fmt.Println(render.Format(style, c))
	return nil
}
