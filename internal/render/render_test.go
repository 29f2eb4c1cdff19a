// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/citation-engine/pkg/types"
)

func fullCitation() types.Citation {
	added := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	modified := time.Date(2024, 2, 3, 4, 5, 6, 789000000, time.UTC)
	return types.Citation{
		ID:                  "c1",
		Title:               "Deep Learning for Vision",
		Authors:             []string{"Alice Smith", "Bob Jones"},
		Type:                types.Article,
		JournalOrConference: types.String("Nature"),
		Volume:              types.String("521"),
		Issue:               types.String("7553"),
		Pages:               types.String("436-444"),
		Year:                types.Int(2021),
		Month:               types.String("May"),
		Publisher:           types.String("Springer"),
		DOI:                 types.String("10.1038/nature14539"),
		URL:                 types.String("https://example.org/dl"),
		ISBN:                types.String("978-0"),
		Abstract:            types.String("An overview."),
		Notes:               types.String("classic"),
		Tags:                []string{"ml", "vision"},
		DomainID:            types.String("d1"),
		DateAdded:           &added,
		DateModified:        &modified,
	}
}

func TestIEEE(t *testing.T) {
	tests := []struct {
		name string
		c    types.Citation
		want string
	}{
		{
			name: "full article",
			c:    fullCitation(),
			want: `Alice Smith, Bob Jones, "Deep Learning for Vision", Nature, vol. 521, no. 7553, pp. 436-444, May 2021, doi: 10.1038/nature14539.`,
		},
		{
			name: "proceedings gets in prefix",
			c: types.Citation{
				Title:               "Paper",
				Authors:             []string{"A B"},
				Type:                types.InProceedings,
				JournalOrConference: types.String("ICML"),
				Year:                types.Int(2020),
			},
			want: `A B, "Paper", in ICML, 2020.`,
		},
		{
			name: "more than three authors",
			c: types.Citation{
				Title:   "T",
				Authors: []string{"A One", "B Two", "C Three", "D Four"},
			},
			want: `A One et al., "T".`,
		},
		{
			name: "volume without issue",
			c:    types.Citation{Title: "T", Volume: types.String("3")},
			want: `"T", vol. 3.`,
		},
		{
			name: "issue without volume is skipped",
			c:    types.Citation{Title: "T", Issue: types.String("4")},
			want: `"T".`,
		},
		{
			name: "empty citation",
			c:    types.Citation{},
			want: ".",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IEEE(tt.c); got != tt.want {
				t.Errorf("IEEE() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAPA(t *testing.T) {
	tests := []struct {
		name string
		c    types.Citation
		want string
	}{
		{
			name: "full article",
			c:    fullCitation(),
			want: "Smith, A., Jones, B.. (2021). Deep Learning for Vision. *Nature*. *521*(7553). 436-444. https://doi.org/10.1038/nature14539",
		},
		{
			name: "middle names become initials",
			c:    types.Citation{Authors: []string{"Alice B Smith", "Plato"}, Title: "T"},
			want: "Smith, A. B., Plato. T",
		},
		{
			name: "volume without issue",
			c:    types.Citation{Title: "T", Volume: types.String("9")},
			want: "T. *9*",
		},
		{
			name: "empty citation",
			c:    types.Citation{},
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := APA(tt.c); got != tt.want {
				t.Errorf("APA() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderersToleratePartialRecords(t *testing.T) {
	partials := []types.Citation{
		{},
		{Authors: []string{""}},
		{Authors: []string{"  "}, Title: " "},
		{Year: types.Int(0), Month: types.String("Jan")},
		{JournalOrConference: types.String(""), Volume: types.String(""), Issue: types.String("")},
		{Type: types.CitationType(99)},
	}
	for i, c := range partials {
		_ = IEEE(c)
		_ = APA(c)
		_ = CSL(c)
		if got := BibTeX(c); !strings.HasSuffix(got, "\n}") {
			t.Errorf("case %d: BibTeX() = %q, want closing brace line", i, got)
		}
	}
}

func TestBibTeXKey(t *testing.T) {
	tests := []struct {
		name string
		c    types.Citation
		want string
	}{
		{"author year title", types.Citation{Authors: []string{"Alice Smith"}, Year: types.Int(2021), Title: "Deep Learning"}, "smith2021deep"},
		{"no authors", types.Citation{Year: types.Int(1999), Title: "Hello"}, "unknown1999hello"},
		{"no year", types.Citation{Authors: []string{"Bob"}, Title: "X"}, "bob0000x"},
		{"no title", types.Citation{Authors: []string{"Bob"}, Year: types.Int(2000)}, "bob2000untitled"},
		{"blank author", types.Citation{Authors: []string{" "}}, "unknown0000untitled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BibTeXKey(tt.c); got != tt.want {
				t.Errorf("BibTeXKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBibTeX(t *testing.T) {
	got := BibTeX(fullCitation())
	want := `@article{smith2021deep,
  title = {Deep Learning for Vision},
  author = {Alice Smith and Bob Jones},
  year = {2021},
  journal = {Nature},
  volume = {521},
  number = {7553},
  pages = {436-444},
  publisher = {Springer},
  doi = {10.1038/nature14539},
  url = {https://example.org/dl},
  isbn = {978-0}
}`
	if got != want {
		t.Errorf("BibTeX() =\n%s\nwant\n%s", got, want)
	}
}

func TestBibTeXMinimal(t *testing.T) {
	got := BibTeX(types.Citation{Type: types.Website})
	want := "@misc{unknown0000untitled,\n  title = {}\n}"
	if got != want {
		t.Errorf("BibTeX() = %q, want %q", got, want)
	}

	got = BibTeX(types.Citation{Type: types.InProceedings, Title: "T", JournalOrConference: types.String("ICML")})
	if !strings.Contains(got, "  booktitle = {ICML}") {
		t.Errorf("proceedings venue should be booktitle, got %q", got)
	}
}

func TestBibTeXEntryType(t *testing.T) {
	want := map[types.CitationType]string{
		types.Article:       "article",
		types.InProceedings: "inproceedings",
		types.Book:          "book",
		types.InBook:        "inbook",
		types.TechReport:    "techreport",
		types.Website:       "misc",
		types.Standard:      "misc",
		types.Patent:        "misc",
		types.Thesis:        "phdthesis",
		types.Manual:        "manual",
		types.Misc:          "misc",
	}
	for typ, et := range want {
		if got := BibTeXEntryType(typ); got != et {
			t.Errorf("BibTeXEntryType(%s) = %q, want %q", typ, got, et)
		}
	}
}

func TestCanonicalKeys(t *testing.T) {
	m := Canonical(types.Citation{ID: "x"})
	keys := []string{
		"id", "title", "authors", "type", "journalOrConference", "volume", "issue", "pages",
		"year", "month", "publisher", "doi", "url", "isbn", "abstract", "notes", "tags",
		"domainId", "dateAdded", "dateModified",
	}
	if len(m) != len(keys) {
		t.Errorf("len(Canonical) = %d, want %d", len(m), len(keys))
	}
	for _, k := range keys {
		if _, ok := m[k]; !ok {
			t.Errorf("Canonical missing key %q", k)
		}
	}
	if m["doi"] != nil {
		t.Errorf("absent doi = %v, want nil", m["doi"])
	}
	if m["type"] != "Article" {
		t.Errorf("type = %v, want Article", m["type"])
	}
}

func TestCanonicalRoundTrip(t *testing.T) {
	cases := []types.Citation{
		fullCitation(),
		{ID: "bare", Authors: []string{}, Tags: []string{}, Type: types.Misc},
	}
	for _, c := range cases {
		t.Run(c.ID, func(t *testing.T) {
			got := FromCanonical(Canonical(c))
			assertSameCitation(t, c, got)

			// The JSON form must round-trip too.
			data, err := json.Marshal(ToCanonical(c))
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var m map[string]any
			if err := json.Unmarshal(data, &m); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			assertSameCitation(t, c, FromCanonical(m))
		})
	}
}

func assertSameCitation(t *testing.T, want, got types.Citation) {
	t.Helper()
	if !timesEqual(want.DateAdded, got.DateAdded) || !timesEqual(want.DateModified, got.DateModified) {
		t.Errorf("dates differ: got %v/%v want %v/%v", got.DateAdded, got.DateModified, want.DateAdded, want.DateModified)
	}
	want.DateAdded, want.DateModified = nil, nil
	got.DateAdded, got.DateModified = nil, nil
	if !reflect.DeepEqual(want, got) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, want)
	}
}

func timesEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func TestCSL(t *testing.T) {
	item := CSL(fullCitation())
	if item.ID != "smith2021deep" {
		t.Errorf("ID = %q, want smith2021deep", item.ID)
	}
	if item.Type != "article-journal" {
		t.Errorf("Type = %q, want article-journal", item.Type)
	}
	if len(item.Author) != 2 || item.Author[0].Family != "Smith" || item.Author[0].Given != "Alice" {
		t.Errorf("Author = %+v", item.Author)
	}
	if item.Issued == nil || !reflect.DeepEqual(item.Issued.DateParts, [][]int{{2021, 5}}) {
		t.Errorf("Issued = %+v, want [[2021 5]]", item.Issued)
	}
	if item.Keyword != "ml, vision" {
		t.Errorf("Keyword = %q", item.Keyword)
	}

	misc := CSL(types.Citation{Type: types.Misc, Authors: []string{"Plato"}})
	if misc.Type != "document" {
		t.Errorf("Misc type = %q, want document", misc.Type)
	}
	if misc.Author[0].Literal != "Plato" {
		t.Errorf("single-token author should be literal, got %+v", misc.Author[0])
	}
	if misc.Issued != nil {
		t.Errorf("Issued should be nil without a year")
	}
}

func TestWriteCSL(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSL(&buf, []types.Citation{fullCitation()}); err != nil {
		t.Fatalf("WriteCSL: %v", err)
	}
	s := buf.String()
	for _, want := range []string{"id: smith2021deep", "type: article-journal", "container-title: Nature", "DOI: 10.1038/nature14539", "date-parts:"} {
		if !strings.Contains(s, want) {
			t.Errorf("CSL output missing %q:\n%s", want, s)
		}
	}
}

func TestMonthNumber(t *testing.T) {
	tests := map[string]int{"Jan": 1, "december": 12, "Sept": 9, "7": 7, "13": 0, "": 0, "Ma": 0, "foo": 0}
	for in, want := range tests {
		if got := MonthNumber(in); got != want {
			t.Errorf("MonthNumber(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestParseStyleAndFormat(t *testing.T) {
	s, err := ParseStyle(" APA ")
	if err != nil || s != StyleAPA {
		t.Fatalf("ParseStyle(APA) = %q, %v", s, err)
	}
	if _, err := ParseStyle("chicago"); err == nil {
		t.Error("expected error for unknown style")
	}
	c := fullCitation()
	if Format(StyleBibTeX, c) != BibTeX(c) {
		t.Error("Format(bibtex) should equal BibTeX")
	}
	if Format(Style("other"), c) != IEEE(c) {
		t.Error("unknown style should fall back to IEEE")
	}
}
