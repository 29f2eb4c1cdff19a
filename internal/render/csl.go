package render

import (
	"io"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citation-engine/pkg/types"
)

// CSLItem represents a bibliographic entry in CSL (Citation Style Language)
// format. The field names and structure follow the CSL-JSON/CSL-YAML schema
// so that output is consumable by Pandoc and reference managers.
type CSLItem struct {
	ID             string    `yaml:"id" json:"id"`
	Type           string    `yaml:"type" json:"type"`
	Title          string    `yaml:"title" json:"title"`
	Author         []CSLName `yaml:"author,omitempty" json:"author,omitempty"`
	Issued         *CSLDate  `yaml:"issued,omitempty" json:"issued,omitempty"`
	ContainerTitle string    `yaml:"container-title,omitempty" json:"container-title,omitempty"`
	Volume         string    `yaml:"volume,omitempty" json:"volume,omitempty"`
	Issue          string    `yaml:"issue,omitempty" json:"issue,omitempty"`
	Page           string    `yaml:"page,omitempty" json:"page,omitempty"`
	Publisher      string    `yaml:"publisher,omitempty" json:"publisher,omitempty"`
	DOI            string    `yaml:"DOI,omitempty" json:"DOI,omitempty"`
	URL            string    `yaml:"URL,omitempty" json:"URL,omitempty"`
	ISBN           string    `yaml:"ISBN,omitempty" json:"ISBN,omitempty"`
	Abstract       string    `yaml:"abstract,omitempty" json:"abstract,omitempty"`
	Note           string    `yaml:"note,omitempty" json:"note,omitempty"`
	Keyword        string    `yaml:"keyword,omitempty" json:"keyword,omitempty"`
}

// CSLName represents a person's name in CSL format.
type CSLName struct {
	Family  string `yaml:"family,omitempty" json:"family,omitempty"`
	Given   string `yaml:"given,omitempty" json:"given,omitempty"`
	Literal string `yaml:"literal,omitempty" json:"literal,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts" json:"date-parts"`
}

var cslTypes = map[types.CitationType]string{
	types.Article:       "article-journal",
	types.InProceedings: "paper-conference",
	types.Book:          "book",
	types.InBook:        "chapter",
	types.TechReport:    "report",
	types.Website:       "webpage",
	types.Standard:      "standard",
	types.Patent:        "patent",
	types.Thesis:        "thesis",
}

// WriteCSL writes citations as a CSL-YAML list to w.
func WriteCSL(w io.Writer, citations []types.Citation) error {
	items := make([]CSLItem, len(citations))
	for i, c := range citations {
		items[i] = CSL(c)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

// CSL converts a citation to a CSLItem keyed by its BibTeX key.
func CSL(c types.Citation) CSLItem {
	typ, ok := cslTypes[c.Type]
	if !ok {
		typ = "document"
	}
	item := CSLItem{
		ID:             BibTeXKey(c),
		Type:           typ,
		Title:          c.Title,
		ContainerTitle: types.Value(c.JournalOrConference),
		Volume:         types.Value(c.Volume),
		Issue:          types.Value(c.Issue),
		Page:           types.Value(c.Pages),
		Publisher:      types.Value(c.Publisher),
		DOI:            types.Value(c.DOI),
		URL:            types.Value(c.URL),
		ISBN:           types.Value(c.ISBN),
		Abstract:       types.Value(c.Abstract),
		Note:           types.Value(c.Notes),
		Keyword:        strings.Join(c.Tags, ", "),
	}

	for _, a := range c.Authors {
		if name := parseAuthorName(a); name != (CSLName{}) {
			item.Author = append(item.Author, name)
		}
	}

	if hasYear(c) {
		parts := []int{*c.Year}
		if m := MonthNumber(types.Value(c.Month)); m > 0 {
			parts = append(parts, m)
		}
		item.Issued = &CSLDate{DateParts: [][]int{parts}}
	}

	return item
}

// parseAuthorName splits a full name string into CSL family/given parts.
// It splits on the last space: everything before is given, the last token
// is family. Single-token names use the literal field.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{
		Given:  strings.TrimSpace(name[:idx]),
		Family: name[idx+1:],
	}
}

var monthNames = []string{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"}

// MonthNumber returns 1-12 for a month name, abbreviation or number, or 0.
func MonthNumber(month string) int {
	m := strings.ToLower(strings.TrimSpace(month))
	if n, err := strconv.Atoi(m); err == nil {
		if n >= 1 && n <= 12 {
			return n
		}
		return 0
	}
	if len(m) < 3 {
		return 0
	}
	for i, name := range monthNames {
		if strings.HasPrefix(m, name) {
			return i + 1
		}
	}
	return 0
}
