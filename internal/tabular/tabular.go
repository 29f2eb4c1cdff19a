// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tabular flattens citations into rows for spreadsheets and SQL.
// It only copies already-resolved fields; domain names come from a
// DomainResolver supplied by the caller.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/citation-engine/pkg/types"
)

// DomainResolver resolves a citation's domain reference to a display name.
type DomainResolver interface {
	DomainName(c types.Citation) (string, bool)
}

// Row is one flattened citation.
type Row struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Authors        string     `json:"authors"`
	AuthorCount    int        `json:"author_count"`
	Type           string     `json:"type"`
	TypeDisplay    string     `json:"type_display"`
	Year           *int       `json:"year"`
	Venue          *string    `json:"journal_or_conference"`
	Volume         *string    `json:"volume"`
	Issue          *string    `json:"issue"`
	Pages          *string    `json:"pages"`
	DOI            *string    `json:"doi"`
	URL            *string    `json:"url"`
	DomainID       *string    `json:"domain_id"`
	DomainName     *string    `json:"domain_name"`
	Tags           string     `json:"tags"`
	TagCount       int        `json:"tag_count"`
	HasAbstract    bool       `json:"has_abstract"`
	AbstractLength int        `json:"abstract_length"`
	DateAdded      *time.Time `json:"date_added"`
}

// columns lists the column names in row order.
var columns = []string{
	"id", "title", "authors", "author_count", "type", "type_display", "year",
	"journal_or_conference", "volume", "issue", "pages", "doi", "url",
	"domain_id", "domain_name", "tags", "tag_count", "has_abstract",
	"abstract_length", "date_added",
}

// Columns returns the column names in row order.
func Columns() []string {
	return append([]string{}, columns...)
}

// Build flattens cs. A nil resolver leaves every DomainName empty.
func Build(cs []types.Citation, resolver DomainResolver) []Row {
	rows := make([]Row, len(cs))
	for i, c := range cs {
		c = c.Clone()
		row := Row{
			ID:          c.ID,
			Title:       c.Title,
			Authors:     strings.Join(c.Authors, "; "),
			AuthorCount: len(c.Authors),
			Type:        c.Type.String(),
			TypeDisplay: c.Type.DisplayName(),
			Year:        c.Year,
			Venue:       c.JournalOrConference,
			Volume:      c.Volume,
			Issue:       c.Issue,
			Pages:       c.Pages,
			DOI:         c.DOI,
			URL:         c.URL,
			DomainID:    c.DomainID,
			Tags:        strings.Join(c.Tags, "; "),
			TagCount:    len(c.Tags),
			HasAbstract: types.Present(c.Abstract),
			DateAdded:   c.DateAdded,
		}
		if c.Abstract != nil {
			row.AbstractLength = len([]rune(*c.Abstract))
		}
		if resolver != nil {
			if name, ok := resolver.DomainName(c); ok {
				row.DomainName = &name
			}
		}
		rows[i] = row
	}
	return rows
}

// Values returns the row as strings in column order. Absent values are empty.
func (r Row) Values() []string {
	year := ""
	if r.Year != nil {
		year = strconv.Itoa(*r.Year)
	}
	added := ""
	if r.DateAdded != nil {
		added = r.DateAdded.Format(time.RFC3339)
	}
	return []string{
		r.ID, r.Title, r.Authors, strconv.Itoa(r.AuthorCount), r.Type, r.TypeDisplay, year,
		types.Value(r.Venue), types.Value(r.Volume), types.Value(r.Issue), types.Value(r.Pages),
		types.Value(r.DOI), types.Value(r.URL), types.Value(r.DomainID), types.Value(r.DomainName),
		r.Tags, strconv.Itoa(r.TagCount), strconv.FormatBool(r.HasAbstract),
		strconv.Itoa(r.AbstractLength), added,
	}
}

// WriteCSV writes a header line followed by one record per row.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(r.Values()); err != nil {
			return fmt.Errorf("writing CSV row %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
