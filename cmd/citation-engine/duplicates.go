// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citation-engine/internal/dedup"
)

var duplicatesCmd = &cobra.Command{
	Use:   "duplicates",
	Short: "Report likely duplicate citations",
	Long: `Duplicates compares every pair of citations by DOI, normalized title and
author/year/title similarity, and prints each pair with its confidence.
Use --groups to print clusters instead of pairs.`,
	RunE: runDuplicates,
}

func init() {
	duplicatesCmd.Flags().Bool("groups", false, "print clusters of duplicates instead of pairs")
	duplicatesCmd.Flags().Bool("json", false, "print pairs as JSON")

	rootCmd.AddCommand(duplicatesCmd)
}

type duplicatePair struct {
	A          string  `json:"a"`
	B          string  `json:"b"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}

func runDuplicates(cmd *cobra.Command, args []string) error {
	lib, err := openLibrary()
	if err != nil {
		return err
	}
	cs := lib.Citations()

	if groups, _ := cmd.Flags().GetBool("groups"); groups {
		gs := dedup.Groups(cs)
		if len(gs) == 0 {
			fmt.Println("No duplicates found.")
			return nil
		}
		for i, g := range gs {
			fmt.Fprintf(os.Stdout, "Group %d:\n", i+1)
			for _, c := range g {
				fmt.Fprintf(os.Stdout, "  %s  %s\n", c.ID, c.Title)
			}
		}
		return nil
	}

	pairs := dedup.Pairs(cs)
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		out := make([]duplicatePair, len(pairs))
		for i, p := range pairs {
			out[i] = duplicatePair{A: p.A.ID, B: p.B.ID, Reason: p.Reason.String(), Confidence: p.Confidence}
		}
		return writeJSON(os.Stdout, out)
	}
	if len(pairs) == 0 {
		fmt.Println("No duplicates found.")
		return nil
	}
	for _, p := range pairs {
		fmt.Fprintf(os.Stdout, "%.2f  %-18s  %s  %s\n", p.Confidence, p.Reason, p.A.ID, p.A.Title)
		fmt.Fprintf(os.Stdout, "      %-18s  %s  %s\n", "", p.B.ID, p.B.Title)
	}
	fmt.Fprintf(os.Stdout, "\n%d pair(s)\n", len(pairs))
	return nil
}
