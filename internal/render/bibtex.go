// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"strconv"
	"strings"

	"github.com/pdiddy/citation-engine/pkg/types"
)

// bibtexEntryTypes maps citation types to BibTeX entry types. Types not
// listed here are written as misc.
var bibtexEntryTypes = map[types.CitationType]string{
	types.Article:       "article",
	types.InProceedings: "inproceedings",
	types.Book:          "book",
	types.InBook:        "inbook",
	types.TechReport:    "techreport",
	types.Thesis:        "phdthesis",
	types.Manual:        "manual",
}

// BibTeXEntryType returns the entry type used for t.
func BibTeXEntryType(t types.CitationType) string {
	if et, ok := bibtexEntryTypes[t]; ok {
		return et
	}
	return "misc"
}

// BibTeXKey builds the cite key: surname of the first author, year and
// first title word, e.g. "smith2021deep".
func BibTeXKey(c types.Citation) string {
	author := "unknown"
	if len(c.Authors) > 0 {
		if tokens := strings.Fields(c.Authors[0]); len(tokens) > 0 {
			author = strings.ToLower(tokens[len(tokens)-1])
		}
	}
	year := "0000"
	if hasYear(c) {
		year = strconv.Itoa(*c.Year)
	}
	title := "untitled"
	if tokens := strings.Fields(c.Title); len(tokens) > 0 {
		title = strings.ToLower(tokens[0])
	}
	return author + year + title
}

// BibTeX renders c as a single BibTeX entry. The title field is always
// written; other fields are omitted when empty.
func BibTeX(c types.Citation) string {
	fields := []string{field("title", c.Title)}

	if len(c.Authors) > 0 {
		fields = append(fields, field("author", strings.Join(c.Authors, " and ")))
	}
	if hasYear(c) {
		fields = append(fields, field("year", strconv.Itoa(*c.Year)))
	}
	if types.Present(c.JournalOrConference) {
		name := "journal"
		if c.Type == types.InProceedings {
			name = "booktitle"
		}
		fields = append(fields, field(name, *c.JournalOrConference))
	}
	optional := []struct {
		name  string
		value *string
	}{
		{"volume", c.Volume},
		{"number", c.Issue},
		{"pages", c.Pages},
		{"publisher", c.Publisher},
		{"doi", c.DOI},
		{"url", c.URL},
		{"isbn", c.ISBN},
	}
	for _, o := range optional {
		if types.Present(o.value) {
			fields = append(fields, field(o.name, *o.value))
		}
	}

	var b strings.Builder
	b.WriteString("@" + BibTeXEntryType(c.Type) + "{" + BibTeXKey(c) + ",\n")
	b.WriteString(strings.Join(fields, ",\n"))
	b.WriteString("\n}")
	return b.String()
}

func field(name, value string) string {
	return "  " + name + " = {" + value + "}"
}
