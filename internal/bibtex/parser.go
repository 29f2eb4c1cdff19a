// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bibtex parses .bib text into citations. It understands the
// common entry types and fields, braced, quoted and bare-number values,
// a handful of LaTeX accent macros, and "Last, First" author names.
package bibtex

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/citation-engine/pkg/types"
)

var (
	// ErrEmpty reports blank input.
	ErrEmpty = errors.New("bibtex content is empty")

	// ErrNoEntries reports input without any @type{key, ...} entry.
	ErrNoEntries = errors.New("no valid bibtex entries found")
)

var (
	entryPattern = regexp.MustCompile(`(?s)@(\w+)\s*\{\s*([^,]*),\s*((?:[^{}]|\{[^{}]*\})*)\}`)
	fieldPattern = regexp.MustCompile(`(?s)(\w+)\s*=\s*(?:\{([^{}]*(?:\{[^{}]*\}[^{}]*)*)\}|"([^"]*)"|(\d+))`)
	spacePattern = regexp.MustCompile(`\s+`)
	yearPattern  = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	authorSplit  = regexp.MustCompile(` (?:and|AND) `)
)

var latexReplacer = strings.NewReplacer(
	`\'e`, "é",
	`\'a`, "á",
	`\'i`, "í",
	`\'o`, "ó",
	`\'u`, "ú",
	`\"a`, "ä",
	`\"o`, "ö",
	`\"u`, "ü",
	`\~n`, "ñ",
	`\c{c}`, "ç",
	"--", "–",
	"``", "“",
	"''", "”",
	`\&`, "&",
	`\%`, "%",
)

var entryTypes = map[string]types.CitationType{
	"article":       types.Article,
	"inproceedings": types.InProceedings,
	"conference":    types.InProceedings,
	"book":          types.Book,
	"inbook":        types.InBook,
	"incollection":  types.InBook,
	"techreport":    types.TechReport,
	"report":        types.TechReport,
	"phdthesis":     types.Thesis,
	"mastersthesis": types.Thesis,
	"thesis":        types.Thesis,
	"manual":        types.Manual,
	"misc":          types.Website,
	"online":        types.Website,
	"electronic":    types.Website,
	"standard":      types.Standard,
}

var months = map[string]string{
	"jan": "Jan", "january": "Jan", "1": "Jan",
	"feb": "Feb", "february": "Feb", "2": "Feb",
	"mar": "Mar", "march": "Mar", "3": "Mar",
	"apr": "Apr", "april": "Apr", "4": "Apr",
	"may": "May", "5": "May",
	"jun": "Jun", "june": "Jun", "6": "Jun",
	"jul": "Jul", "july": "Jul", "7": "Jul",
	"aug": "Aug", "august": "Aug", "8": "Aug",
	"sep": "Sep", "september": "Sep", "9": "Sep",
	"oct": "Oct", "october": "Oct", "10": "Oct",
	"nov": "Nov", "november": "Nov", "11": "Nov",
	"dec": "Dec", "december": "Dec", "12": "Dec",
}

var doiPrefixes = []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "http://dx.doi.org/"}

// Parser converts BibTeX text to citations. The zero value uses random
// UUIDs and the current time.
type Parser struct {
	// NewID returns a fresh citation id.
	NewID func() string

	// Now stamps DateAdded and DateModified.
	Now func() time.Time
}

// Parse parses text with a default Parser.
func Parse(text string) ([]types.Citation, error) {
	var p Parser
	return p.Parse(text)
}

// Parse returns one citation per entry in document order.
func (p *Parser) Parse(text string) ([]types.Citation, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmpty
	}

	matches := entryPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil, ErrNoEntries
	}

	now := time.Now().UTC()
	if p.Now != nil {
		now = p.Now()
	}

	citations := make([]types.Citation, 0, len(matches))
	for _, m := range matches {
		c := parseEntry(strings.ToLower(m[1]), strings.TrimSpace(m[2]), m[3])
		c.ID = p.newID()
		added := now
		c.DateAdded = &added
		modified := now
		c.DateModified = &modified
		citations = append(citations, c)
	}
	return citations, nil
}

func (p *Parser) newID() string {
	if p.NewID != nil {
		return p.NewID()
	}
	return uuid.New().String()
}

// Snapshot wraps citations in an export envelope dated now.
func Snapshot(citations []types.Citation, now time.Time) types.Snapshot {
	return types.Snapshot{
		Version:    types.SnapshotVersion,
		ExportDate: &now,
		Citations:  citations,
		Domains:    []types.Domain{},
	}
}

func parseEntry(entryType, key, body string) types.Citation {
	fields := parseFields(body)

	title, ok := fields["title"]
	if !ok {
		title = "Untitled (" + key + ")"
	}

	c := types.Citation{
		Title:     title,
		Authors:   parseAuthors(fields["author"]),
		Type:      mapEntryType(entryType),
		Year:      parseYear(fields["year"]),
		Month:     normalizeMonth(fields["month"]),
		Volume:    opt(fields, "volume"),
		Issue:     opt(fields, "number"),
		Pages:     opt(fields, "pages"),
		Publisher: opt(fields, "publisher"),
		DOI:       cleanDOI(fields["doi"]),
		URL:       first(fields, "url", "howpublished"),
		ISBN:      opt(fields, "isbn"),
		Abstract:  opt(fields, "abstract"),
		Notes:     opt(fields, "note"),
		Tags:      []string{},
	}
	c.JournalOrConference = first(fields, "journal", "booktitle", "publisher")

	if kw := fields["keywords"]; kw != "" {
		for _, k := range strings.FieldsFunc(kw, func(r rune) bool { return r == ',' || r == ';' }) {
			if k = strings.TrimSpace(k); k != "" {
				c.Tags = append(c.Tags, k)
			}
		}
	}
	return c
}

// parseFields returns the non-empty cleaned fields keyed by lower-case name.
func parseFields(body string) map[string]string {
	fields := make(map[string]string)
	for _, idx := range fieldPattern.FindAllStringSubmatchIndex(body, -1) {
		name := strings.ToLower(body[idx[2]:idx[3]])
		var value string
		switch {
		case idx[4] >= 0:
			value = body[idx[4]:idx[5]]
		case idx[6] >= 0:
			value = body[idx[6]:idx[7]]
		case idx[8] >= 0:
			value = body[idx[8]:idx[9]]
		}
		if value = cleanValue(value); value != "" {
			fields[name] = value
		}
	}
	return fields
}

func cleanValue(v string) string {
	if v == "" {
		return v
	}
	// Accent macros like \c{c} must be replaced before braces are dropped.
	v = strings.ReplaceAll(v, `\c{c}`, "ç")
	v = strings.NewReplacer("{", "", "}", "").Replace(v)
	v = strings.TrimSpace(spacePattern.ReplaceAllString(v, " "))
	return latexReplacer.Replace(v)
}

func parseAuthors(field string) []string {
	authors := []string{}
	if strings.TrimSpace(field) == "" {
		return authors
	}
	for _, a := range authorSplit.Split(field, -1) {
		if a = normalizeAuthor(strings.TrimSpace(a)); a != "" {
			authors = append(authors, a)
		}
	}
	return authors
}

// normalizeAuthor turns "Last, First" into "First Last".
func normalizeAuthor(a string) string {
	last, given, ok := strings.Cut(a, ",")
	if !ok {
		return a
	}
	return strings.TrimSpace(strings.TrimSpace(given) + " " + strings.TrimSpace(last))
}

func parseYear(field string) *int {
	m := yearPattern.FindString(field)
	if m == "" {
		return nil
	}
	y, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return &y
}

func normalizeMonth(field string) *string {
	if m, ok := months[strings.ToLower(strings.TrimSpace(field))]; ok {
		return &m
	}
	return nil
}

func cleanDOI(doi string) *string {
	if strings.TrimSpace(doi) == "" {
		return nil
	}
	for _, p := range doiPrefixes {
		doi = strings.ReplaceAll(doi, p, "")
	}
	doi = strings.TrimSpace(doi)
	return &doi
}

func mapEntryType(t string) types.CitationType {
	if ct, ok := entryTypes[t]; ok {
		return ct
	}
	return types.Misc
}

func opt(fields map[string]string, name string) *string {
	if v, ok := fields[name]; ok {
		return &v
	}
	return nil
}

func first(fields map[string]string, names ...string) *string {
	for _, n := range names {
		if v := opt(fields, n); v != nil {
			return v
		}
	}
	return nil
}
