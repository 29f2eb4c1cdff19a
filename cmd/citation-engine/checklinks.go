// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citation-engine/internal/linkcheck"
	"github.com/pdiddy/citation-engine/internal/ui"
)

var checkLinksCmd = &cobra.Command{
	Use:   "check-links [terms...]",
	Short: "Check the health of citation URLs",
	Long: `Check-links sends a HEAD request (GET when HEAD is not allowed) to the URL
of every matching citation and reports the status. URLs are checked in small
concurrent batches. The command fails when any URL is unhealthy.`,
	RunE: runCheckLinks,
}

func init() {
	addFilterFlags(checkLinksCmd)
	checkLinksCmd.Flags().Bool("json", false, "print results as JSON")
	checkLinksCmd.Flags().Bool("all", false, "list healthy URLs too")

	rootCmd.AddCommand(checkLinksCmd)
}

func runCheckLinks(cmd *cobra.Command, args []string) error {
	opts, err := searchOptsFromFlags(cmd, args)
	if err != nil {
		return err
	}
	lib, err := openLibrary()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	checker := linkcheck.NewChecker(loadConfig().LinkCheck)
	results, err := checker.CheckAll(ctx, lib.Search(opts), os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stopped early: %v\n", err)
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		if err := writeJSON(os.Stdout, results); err != nil {
			return err
		}
	} else {
		all, _ := cmd.Flags().GetBool("all")
		var rows [][]string
		for _, r := range results {
			if r.Healthy && !all {
				continue
			}
			code := ""
			if r.StatusCode != 0 {
				code = strconv.Itoa(r.StatusCode)
			}
			rows = append(rows, []string{r.CitationID, r.Level.String(), code, ui.Truncate(r.URL, 60), r.Error})
		}
		if len(rows) > 0 {
			if err := ui.WriteTable(os.Stdout, []string{"ID", "STATUS", "CODE", "URL", "ERROR"}, rows, ui.IsTerminal(os.Stdout)); err != nil {
				return err
			}
			fmt.Println()
		}
		summary := linkcheck.Summarize(results)
		fmt.Fprintf(os.Stdout, "%d checked: %d healthy, %d redirect, %d not found, %d server error, %d error\n",
			len(results), summary[linkcheck.Healthy], summary[linkcheck.Redirect], summary[linkcheck.NotFound],
			summary[linkcheck.ServerError], summary[linkcheck.Error])
	}

	if err != nil {
		return err
	}
	unhealthy := 0
	for _, r := range results {
		if !r.Healthy {
			unhealthy++
		}
	}
	if unhealthy > 0 {
		return fmt.Errorf("%d URL(s) unhealthy", unhealthy)
	}
	return nil
}
