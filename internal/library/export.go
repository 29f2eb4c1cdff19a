// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citation-engine/internal/render"
	"github.com/pdiddy/citation-engine/internal/tabular"
	"github.com/pdiddy/citation-engine/pkg/types"
)

// orAll substitutes the whole library for an empty selection.
func (l *Library) orAll(cs []types.Citation) []types.Citation {
	if len(cs) == 0 {
		return l.citations
	}
	return cs
}

// ExportBibTeX renders cs as BibTeX entries separated by a blank line.
// An empty cs exports every citation.
func (l *Library) ExportBibTeX(cs []types.Citation) string {
	cs = l.orAll(cs)
	entries := make([]string, len(cs))
	for i, c := range cs {
		entries[i] = render.BibTeX(c)
	}
	return strings.Join(entries, "\n\n")
}

// ExportJSON serializes cs as an array of canonical citations indented by
// indent spaces. A negative indent produces compact output. An empty cs
// exports every citation.
func (l *Library) ExportJSON(cs []types.Citation, indent int) ([]byte, error) {
	items := canonicalAll(l.orAll(cs))
	var (
		data []byte
		err  error
	)
	if indent < 0 {
		data, err = json.Marshal(items)
	} else {
		data, err = json.MarshalIndent(items, "", strings.Repeat(" ", indent))
	}
	if err != nil {
		return nil, fmt.Errorf("marshaling JSON: %w", err)
	}
	return data, nil
}

// ExportYAML serializes cs as a YAML list of canonical citations.
func (l *Library) ExportYAML(cs []types.Citation) ([]byte, error) {
	data, err := yaml.Marshal(canonicalAll(l.orAll(cs)))
	if err != nil {
		return nil, fmt.Errorf("marshaling YAML: %w", err)
	}
	return data, nil
}

// ExportCSL writes cs to w as CSL-YAML.
func (l *Library) ExportCSL(w io.Writer, cs []types.Citation) error {
	if err := render.WriteCSL(w, l.orAll(cs)); err != nil {
		return fmt.Errorf("writing CSL: %w", err)
	}
	return nil
}

// Rows flattens cs into tabular rows with resolved domain names.
func (l *Library) Rows(cs []types.Citation) []tabular.Row {
	return tabular.Build(l.orAll(cs), l)
}

func canonicalAll(cs []types.Citation) []render.CanonicalCitation {
	items := make([]render.CanonicalCitation, len(cs))
	for i, c := range cs {
		items[i] = render.ToCanonical(c)
	}
	return items
}
