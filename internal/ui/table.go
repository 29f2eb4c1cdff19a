// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ui renders citations for people: aligned tables for terminal
// output, an interactive browser and a filter form.
package ui

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/pdiddy/citation-engine/pkg/types"
)

// Palette.
var (
	ColorAccent = lipgloss.Color("#83a598")
	ColorHeader = lipgloss.Color("#fe8019")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
)

var (
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
	StyleAccent = lipgloss.NewStyle().Foreground(ColorAccent)
)

const colGap = 2

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// WriteTable writes an aligned table to w. When styled is false the output
// is plain text with a dashed separator, suitable for pipes and files.
func WriteTable(w io.Writer, headers []string, rows [][]string, styled bool) error {
	var out string
	if styled {
		out = RenderTable(headers, rows)
	} else {
		out = PlainTable(headers, rows)
	}
	_, err := io.WriteString(w, out)
	return err
}

// RenderTable renders a table with a styled header and separator. Columns
// are padded to the widest visible cell.
func RenderTable(headers []string, rows [][]string) string {
	header := func(s string) string { return StyleHeader.Render(s) }
	dim := func(s string) string { return StyleDim.Render(s) }
	return renderTable(headers, rows, header, dim, "─")
}

// PlainTable renders the same layout without escape sequences.
func PlainTable(headers []string, rows [][]string) string {
	identity := func(s string) string { return s }
	return renderTable(headers, rows, identity, identity, "-")
}

func renderTable(headers []string, rows [][]string, header, dim func(string) string, rule string) string {
	if len(headers) == 0 {
		return ""
	}
	cols := len(headers)

	widths := make([]int, cols)
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < cols && i < len(row); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	var b strings.Builder
	writeRow := func(cells []string, style func(string) string) {
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			b.WriteString(style(cell))
			if i < cols-1 {
				b.WriteString(strings.Repeat(" ", max(widths[i]-lipgloss.Width(cell), 0)+colGap))
			}
		}
		b.WriteString("\n")
	}

	writeRow(headers, header)
	for i, w := range widths {
		b.WriteString(dim(strings.Repeat(rule, w)))
		if i < cols-1 {
			b.WriteString(strings.Repeat(" ", colGap))
		}
	}
	b.WriteString("\n")
	for _, row := range rows {
		writeRow(row, func(s string) string { return s })
	}
	return b.String()
}

// DomainNamer resolves the display name of a citation's domain.
type DomainNamer func(types.Citation) (string, bool)

// CitationHeaders are the columns of CitationRows.
var CitationHeaders = []string{"ID", "YEAR", "TYPE", "TITLE", "AUTHORS", "DOMAIN"}

// CitationRows flattens citations into table cells, truncating long text.
func CitationRows(cs []types.Citation, domainName DomainNamer) [][]string {
	rows := make([][]string, len(cs))
	for i, c := range cs {
		year := ""
		if c.Year != nil && *c.Year != 0 {
			year = strconv.Itoa(*c.Year)
		}
		domain := ""
		if domainName != nil {
			domain, _ = domainName(c)
		}
		rows[i] = []string{
			c.ID,
			year,
			c.Type.String(),
			Truncate(c.Title, 60),
			Truncate(c.AuthorsDisplay(), 32),
			domain,
		}
	}
	return rows
}

// Truncate shortens s to n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

// KeyValues renders "key: value" lines with aligned values, skipping empty values.
func KeyValues(pairs [][2]string, styled bool) string {
	width := 0
	for _, p := range pairs {
		if p[1] != "" {
			width = max(width, len(p[0]))
		}
	}
	var b strings.Builder
	for _, p := range pairs {
		if p[1] == "" {
			continue
		}
		key := fmt.Sprintf("%-*s", width+1, p[0]+":")
		if styled {
			key = StyleBold.Render(key)
		}
		fmt.Fprintf(&b, "%s %s\n", key, p[1])
	}
	return b.String()
}
