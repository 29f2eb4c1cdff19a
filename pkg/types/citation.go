// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the record model shared by the citation-engine packages:
// citations, domains, citation types and the snapshot that groups them.
package types

import "time"

// CitationType classifies a bibliographic record. The zero value is Article.
type CitationType int

const (
	Article CitationType = iota
	InProceedings
	Book
	InBook
	TechReport
	Website
	Standard
	Patent
	Thesis
	Manual
	Misc
)

// citationTypeTokens holds the wire token of each variant, indexed by value.
var citationTypeTokens = [...]string{
	Article:       "Article",
	InProceedings: "InProceedings",
	Book:          "Book",
	InBook:        "InBook",
	TechReport:    "TechReport",
	Website:       "Website",
	Standard:      "Standard",
	Patent:        "Patent",
	Thesis:        "Thesis",
	Manual:        "Manual",
	Misc:          "Misc",
}

// citationTypeDisplay maps variants to human-readable names. Variants
// missing here fall back to their wire token.
var citationTypeDisplay = map[CitationType]string{
	Article:       "Journal Article",
	InProceedings: "Conference Paper",
	Book:          "Book",
	InBook:        "Book Chapter",
	TechReport:    "Technical Report",
	Website:       "Website",
	Standard:      "Standard",
	Patent:        "Patent",
	Thesis:        "Thesis",
	Manual:        "Manual",
	Misc:          "Miscellaneous",
}

// AllCitationTypes returns every variant in declaration order.
func AllCitationTypes() []CitationType {
	all := make([]CitationType, len(citationTypeTokens))
	for i := range citationTypeTokens {
		all[i] = CitationType(i)
	}
	return all
}

// String returns the wire token, e.g. "InProceedings".
func (t CitationType) String() string {
	if t < 0 || int(t) >= len(citationTypeTokens) {
		return citationTypeTokens[Misc]
	}
	return citationTypeTokens[t]
}

// DisplayName returns the human-readable name, e.g. "Conference Paper".
func (t CitationType) DisplayName() string {
	if name, ok := citationTypeDisplay[t]; ok {
		return name
	}
	return t.String()
}

// ParseCitationType resolves an exact wire token. The second return value
// is false when the token names no variant.
func ParseCitationType(token string) (CitationType, bool) {
	for i, tok := range citationTypeTokens {
		if tok == token {
			return CitationType(i), true
		}
	}
	return Misc, false
}

// MarshalText encodes the type as its wire token.
func (t CitationType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a wire token. Unknown tokens decode to Misc.
func (t *CitationType) UnmarshalText(text []byte) error {
	*t, _ = ParseCitationType(string(text))
	return nil
}

// DefaultDomainColor is the neutral gray assigned to domains without a color.
const DefaultDomainColor = "#6c757d"

// Domain is a named category grouping citations.
type Domain struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Description *string    `json:"description" yaml:"description,omitempty"`
	Color       string     `json:"color" yaml:"color"`
	DateCreated *time.Time `json:"dateCreated" yaml:"date_created,omitempty"`
}

// Citation is one bibliographic record. Optional fields are nil when absent
// from the source document; Authors and Tags are empty, never nil, once loaded.
//
// DomainID is a weak reference: it is resolved against the library's domains
// at read time and may point at no domain at all.
type Citation struct {
	ID                  string       `json:"id"`
	Title               string       `json:"title"`
	Authors             []string     `json:"authors"`
	Type                CitationType `json:"type"`
	JournalOrConference *string      `json:"journalOrConference"`
	Volume              *string      `json:"volume"`
	Issue               *string      `json:"issue"`
	Pages               *string      `json:"pages"`
	Year                *int         `json:"year"`
	Month               *string      `json:"month"`
	Publisher           *string      `json:"publisher"`
	DOI                 *string      `json:"doi"`
	URL                 *string      `json:"url"`
	ISBN                *string      `json:"isbn"`
	Abstract            *string      `json:"abstract"`
	Notes               *string      `json:"notes"`
	Tags                []string     `json:"tags"`
	DomainID            *string      `json:"domainId"`
	DateAdded           *time.Time   `json:"dateAdded"`
	DateModified        *time.Time   `json:"dateModified"`
}

// Clone returns a copy whose slices and pointers share nothing with c.
func (c Citation) Clone() Citation {
	out := c
	out.Authors = append([]string{}, c.Authors...)
	out.Tags = append([]string{}, c.Tags...)
	out.JournalOrConference = cloneString(c.JournalOrConference)
	out.Volume = cloneString(c.Volume)
	out.Issue = cloneString(c.Issue)
	out.Pages = cloneString(c.Pages)
	out.Month = cloneString(c.Month)
	out.Publisher = cloneString(c.Publisher)
	out.DOI = cloneString(c.DOI)
	out.URL = cloneString(c.URL)
	out.ISBN = cloneString(c.ISBN)
	out.Abstract = cloneString(c.Abstract)
	out.Notes = cloneString(c.Notes)
	out.DomainID = cloneString(c.DomainID)
	if c.Year != nil {
		y := *c.Year
		out.Year = &y
	}
	out.DateAdded = cloneTime(c.DateAdded)
	out.DateModified = cloneTime(c.DateModified)
	return out
}

// AuthorsDisplay joins the authors with ", " or returns "Unknown Author".
func (c Citation) AuthorsDisplay() string {
	if len(c.Authors) == 0 {
		return "Unknown Author"
	}
	out := c.Authors[0]
	for _, a := range c.Authors[1:] {
		out += ", " + a
	}
	return out
}

// Snapshot is the in-memory form of a library export document.
type Snapshot struct {
	// Version and ExportDate form the optional envelope written by exporters.
	Version    string     `json:"version,omitempty"`
	ExportDate *time.Time `json:"exportDate,omitempty"`

	Citations []Citation `json:"citations"`
	Domains   []Domain   `json:"domains"`
}

// SnapshotVersion is the envelope version written by this tool.
const SnapshotVersion = "1.0"

// String returns a pointer to s. It is shorthand for building optional fields.
func String(s string) *string { return &s }

// Int returns a pointer to n.
func Int(n int) *int { return &n }

// Value dereferences an optional string, returning "" when absent.
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Present reports whether an optional string holds a non-empty value.
func Present(s *string) bool {
	return s != nil && *s != ""
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
