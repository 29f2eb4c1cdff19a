// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/pdiddy/citation-engine/internal/ui"
)

var browseCmd = &cobra.Command{
	Use:   "browse [terms...]",
	Short: "Browse citations interactively",
	Long: `Browse opens a full-screen list of the matching citations with a detail
pane. Tab cycles the detail pane between IEEE, APA and BibTeX; / filters the
list. With --filter a form collects the search filters first.`,
	RunE: runBrowse,
}

func init() {
	addFilterFlags(browseCmd)
	browseCmd.Flags().Bool("filter", false, "collect filters with an interactive form first")

	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	if !ui.IsTerminal(os.Stdin) || !ui.IsTerminal(os.Stdout) {
		return fmt.Errorf("browse needs an interactive terminal")
	}

	lib, err := openLibrary()
	if err != nil {
		return err
	}

	opts, err := searchOptsFromFlags(cmd, args)
	if err != nil {
		return err
	}
	if useForm, _ := cmd.Flags().GetBool("filter"); useForm {
		values := ui.FilterValues{Query: opts.Query, Domain: opts.Domain}
		if err := ui.FilterForm(&values, lib.Domains()).Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("running filter form: %w", err)
		}
		if opts, err = values.Options(); err != nil {
			return err
		}
	}

	results := lib.Search(opts)
	title := fmt.Sprintf("Citations (%d)", len(results))
	return ui.Browse(title, results, lib.DomainName)
}
