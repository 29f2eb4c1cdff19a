// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"time"

	"github.com/pdiddy/citation-engine/internal/loader"
	"github.com/pdiddy/citation-engine/pkg/types"
)

// CanonicalCitation is the JSON export form of a citation. Every key is
// always written; absent values are null.
type CanonicalCitation struct {
	ID                  string   `json:"id" yaml:"id"`
	Title               string   `json:"title" yaml:"title"`
	Authors             []string `json:"authors" yaml:"authors"`
	Type                string   `json:"type" yaml:"type"`
	JournalOrConference *string  `json:"journalOrConference" yaml:"journalOrConference"`
	Volume              *string  `json:"volume" yaml:"volume"`
	Issue               *string  `json:"issue" yaml:"issue"`
	Pages               *string  `json:"pages" yaml:"pages"`
	Year                *int     `json:"year" yaml:"year"`
	Month               *string  `json:"month" yaml:"month"`
	Publisher           *string  `json:"publisher" yaml:"publisher"`
	DOI                 *string  `json:"doi" yaml:"doi"`
	URL                 *string  `json:"url" yaml:"url"`
	ISBN                *string  `json:"isbn" yaml:"isbn"`
	Abstract            *string  `json:"abstract" yaml:"abstract"`
	Notes               *string  `json:"notes" yaml:"notes"`
	Tags                []string `json:"tags" yaml:"tags"`
	DomainID            *string  `json:"domainId" yaml:"domainId"`
	DateAdded           *string  `json:"dateAdded" yaml:"dateAdded"`
	DateModified        *string  `json:"dateModified" yaml:"dateModified"`
}

// ToCanonical converts c into its export struct.
func ToCanonical(c types.Citation) CanonicalCitation {
	c = c.Clone()
	return CanonicalCitation{
		ID:                  c.ID,
		Title:               c.Title,
		Authors:             nonNil(c.Authors),
		Type:                c.Type.String(),
		JournalOrConference: c.JournalOrConference,
		Volume:              c.Volume,
		Issue:               c.Issue,
		Pages:               c.Pages,
		Year:                c.Year,
		Month:               c.Month,
		Publisher:           c.Publisher,
		DOI:                 c.DOI,
		URL:                 c.URL,
		ISBN:                c.ISBN,
		Abstract:            c.Abstract,
		Notes:               c.Notes,
		Tags:                nonNil(c.Tags),
		DomainID:            c.DomainID,
		DateAdded:           timestamp(c.DateAdded),
		DateModified:        timestamp(c.DateModified),
	}
}

// Canonical returns the flat camelCase map of c. All twenty keys are present.
func Canonical(c types.Citation) map[string]any {
	cc := ToCanonical(c)
	return map[string]any{
		"id":                  cc.ID,
		"title":               cc.Title,
		"authors":             cc.Authors,
		"type":                cc.Type,
		"journalOrConference": optional(cc.JournalOrConference),
		"volume":              optional(cc.Volume),
		"issue":               optional(cc.Issue),
		"pages":               optional(cc.Pages),
		"year":                optionalInt(cc.Year),
		"month":               optional(cc.Month),
		"publisher":           optional(cc.Publisher),
		"doi":                 optional(cc.DOI),
		"url":                 optional(cc.URL),
		"isbn":                optional(cc.ISBN),
		"abstract":            optional(cc.Abstract),
		"notes":               optional(cc.Notes),
		"tags":                cc.Tags,
		"domainId":            optional(cc.DomainID),
		"dateAdded":           optional(cc.DateAdded),
		"dateModified":        optional(cc.DateModified),
	}
}

// FromCanonical rebuilds a citation from a canonical map using the same
// defaults as the snapshot loader.
func FromCanonical(m map[string]any) types.Citation {
	return loader.CitationFromMap(m)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func timestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339Nano)
	return &s
}

// optional unwraps pointers so the map holds plain values or an untyped nil.
func optional(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func optionalInt(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}
