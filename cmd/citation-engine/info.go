// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citation-engine/internal/ui"
	"github.com/pdiddy/citation-engine/pkg/types"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the library: totals, year range, counts by type and domain",
	RunE:  runStats,
}

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List every tag used in the library",
	RunE:  runTags,
}

var domainsCmd = &cobra.Command{
	Use:   "domains",
	Short: "List domains with their citation counts",
	RunE:  runDomains,
}

func init() {
	statsCmd.Flags().Bool("json", false, "print statistics as JSON")
	domainsCmd.Flags().Bool("json", false, "print domains as JSON")

	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(domainsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	lib, err := openLibrary()
	if err != nil {
		return err
	}
	st := lib.Statistics()

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSON(os.Stdout, st)
	}

	yearRange := "-"
	if st.YearRange.Min != nil {
		yearRange = fmt.Sprintf("%d-%d", *st.YearRange.Min, *st.YearRange.Max)
	}
	styled := ui.IsTerminal(os.Stdout)
	fmt.Fprint(os.Stdout, ui.KeyValues([][2]string{
		{"Citations", strconv.Itoa(st.TotalCitations)},
		{"Domains", strconv.Itoa(st.TotalDomains)},
		{"Tags", strconv.Itoa(st.TotalTags)},
		{"Years", yearRange},
	}, styled))

	for _, section := range []struct {
		title  string
		counts map[string]int
	}{
		{"TYPE", st.ByType},
		{"DOMAIN", st.ByDomain},
	} {
		if len(section.counts) == 0 {
			continue
		}
		fmt.Fprintln(os.Stdout)
		if err := ui.WriteTable(os.Stdout, []string{section.title, "COUNT"}, countRows(section.counts), styled); err != nil {
			return err
		}
	}
	return nil
}

// countRows sorts counts descending, then by key.
func countRows(counts map[string]int) [][]string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	rows := make([][]string, len(keys))
	for i, k := range keys {
		rows[i] = []string{k, strconv.Itoa(counts[k])}
	}
	return rows
}

func runTags(cmd *cobra.Command, args []string) error {
	lib, err := openLibrary()
	if err != nil {
		return err
	}
	for _, t := range lib.Tags() {
		fmt.Println(t)
	}
	return nil
}

func runDomains(cmd *cobra.Command, args []string) error {
	lib, err := openLibrary()
	if err != nil {
		return err
	}
	domains := lib.Domains()

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSON(os.Stdout, domains)
	}
	if len(domains) == 0 {
		fmt.Println("No domains.")
		return nil
	}

	rows := make([][]string, len(domains))
	for i, d := range domains {
		rows[i] = []string{d.ID, d.Name, strconv.Itoa(len(lib.ByDomain(d.ID))), types.Value(d.Description)}
	}
	return ui.WriteTable(os.Stdout, []string{"ID", "NAME", "CITATIONS", "DESCRIPTION"}, rows, ui.IsTerminal(os.Stdout))
}
