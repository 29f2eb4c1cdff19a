// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render turns citations into bibliography text: IEEE, APA, BibTeX,
// the canonical JSON map and CSL-YAML. All functions are pure; missing
// optional fields drop their segment and never cause an error.
package render

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/citation-engine/pkg/types"
)

// Style selects a text citation style.
type Style string

const (
	StyleIEEE   Style = "ieee"
	StyleAPA    Style = "apa"
	StyleBibTeX Style = "bibtex"
)

// Styles lists the supported styles in display order.
var Styles = []Style{StyleIEEE, StyleAPA, StyleBibTeX}

// ParseStyle resolves a style name case-insensitively.
func ParseStyle(name string) (Style, error) {
	s := Style(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Styles {
		if s == known {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown citation style %q (want ieee, apa or bibtex)", name)
}

// Format renders c in the given style. Unknown styles fall back to IEEE.
func Format(style Style, c types.Citation) string {
	switch style {
	case StyleAPA:
		return APA(c)
	case StyleBibTeX:
		return BibTeX(c)
	default:
		return IEEE(c)
	}
}

// hasYear treats a zero year the same as an absent one.
func hasYear(c types.Citation) bool {
	return c.Year != nil && *c.Year != 0
}

// IEEE renders c as a comma-joined IEEE reference ending with a period.
func IEEE(c types.Citation) string {
	var parts []string

	if len(c.Authors) > 0 {
		if len(c.Authors) > 3 {
			parts = append(parts, c.Authors[0]+" et al.")
		} else {
			parts = append(parts, strings.Join(c.Authors, ", "))
		}
	}
	if c.Title != "" {
		parts = append(parts, `"`+c.Title+`"`)
	}
	if types.Present(c.JournalOrConference) {
		prefix := ""
		if c.Type == types.InProceedings {
			prefix = "in "
		}
		parts = append(parts, prefix+*c.JournalOrConference)
	}
	if types.Present(c.Volume) {
		if types.Present(c.Issue) {
			parts = append(parts, fmt.Sprintf("vol. %s, no. %s", *c.Volume, *c.Issue))
		} else {
			parts = append(parts, "vol. "+*c.Volume)
		}
	}
	if types.Present(c.Pages) {
		parts = append(parts, "pp. "+*c.Pages)
	}
	if hasYear(c) {
		year := strconv.Itoa(*c.Year)
		if types.Present(c.Month) {
			year = *c.Month + " " + year
		}
		parts = append(parts, year)
	}
	if types.Present(c.DOI) {
		parts = append(parts, "doi: "+*c.DOI)
	}

	return strings.Join(parts, ", ") + "."
}

// APA renders c as a period-joined APA reference. Venue and volume are
// wrapped in asterisks for italics.
func APA(c types.Citation) string {
	var parts []string

	if len(c.Authors) > 0 {
		names := make([]string, len(c.Authors))
		for i, a := range c.Authors {
			names[i] = apaAuthor(a)
		}
		parts = append(parts, strings.Join(names, ", "))
	}
	if hasYear(c) {
		parts = append(parts, "("+strconv.Itoa(*c.Year)+")")
	}
	if c.Title != "" {
		parts = append(parts, c.Title)
	}
	if types.Present(c.JournalOrConference) {
		parts = append(parts, "*"+*c.JournalOrConference+"*")
	}
	if types.Present(c.Volume) {
		if types.Present(c.Issue) {
			parts = append(parts, "*"+*c.Volume+"*("+*c.Issue+")")
		} else {
			parts = append(parts, "*"+*c.Volume+"*")
		}
	}
	if types.Present(c.Pages) {
		parts = append(parts, *c.Pages)
	}
	if types.Present(c.DOI) {
		parts = append(parts, "https://doi.org/"+*c.DOI)
	}

	// Drop empty segments, e.g. a lone empty author name.
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ". ")
}

// apaAuthor turns "Alice B Smith" into "Smith, A. B.". Single-token names
// are returned unchanged.
func apaAuthor(name string) string {
	tokens := strings.Fields(name)
	if len(tokens) < 2 {
		return name
	}
	initials := make([]string, len(tokens)-1)
	for i, t := range tokens[:len(tokens)-1] {
		r, _ := utf8.DecodeRuneInString(t)
		initials[i] = string(r) + "."
	}
	return tokens[len(tokens)-1] + ", " + strings.Join(initials, " ")
}
