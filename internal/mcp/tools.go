// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mcp

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/citation-engine/internal/library"
	"github.com/pdiddy/citation-engine/internal/render"
	"github.com/pdiddy/citation-engine/pkg/types"
)

// Default result limits for the listing tools.
const (
	DefaultSearchLimit = 50
	DefaultListLimit   = 100
)

func schema(props map[string]any, required ...string) map[string]any {
	s := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func prop(typ, desc string) map[string]any {
	return map[string]any{"type": typ, "description": desc}
}

// Tools lists the tools the server offers.
func Tools() []Tool {
	return []Tool{
		{
			Name:        "search_citations",
			Description: "Search citations by query, domain, type, year range, or tags. Returns matching citations with full details.",
			InputSchema: schema(map[string]any{
				"query":     prop("string", "Search text to match against title, authors, abstract, notes, tags, and DOI"),
				"domain_id": prop("string", "Filter by domain ID or domain name"),
				"type":      prop("string", "Filter by citation type (Article, Book, InProceedings, etc.)"),
				"year_from": prop("integer", "Minimum publication year"),
				"year_to":   prop("integer", "Maximum publication year"),
				"tags": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Filter by tags (all must match)",
				},
				"limit": prop("integer", fmt.Sprintf("Maximum results to return (default: %d)", DefaultSearchLimit)),
			}),
		},
		{
			Name:        "get_citation",
			Description: "Get a single citation by its ID with full details including formatted citations in multiple styles.",
			InputSchema: schema(map[string]any{"id": prop("string", "The citation ID")}, "id"),
		},
		{
			Name:        "list_citations",
			Description: "List all citations. Returns a summary of each citation.",
			InputSchema: schema(map[string]any{
				"limit": prop("integer", fmt.Sprintf("Maximum results to return (default: %d)", DefaultListLimit)),
			}),
		},
		{
			Name:        "list_domains",
			Description: "List all available domains/categories for citations.",
			InputSchema: schema(map[string]any{}),
		},
		{
			Name:        "get_citations_by_domain",
			Description: "Get all citations in a specific domain.",
			InputSchema: schema(map[string]any{"domain": prop("string", "Domain ID or name")}, "domain"),
		},
		{
			Name:        "format_citation",
			Description: "Format a citation in a specific style (IEEE, APA, BibTeX).",
			InputSchema: schema(map[string]any{
				"id": prop("string", "The citation ID"),
				"style": map[string]any{
					"type":        "string",
					"description": "Citation style: ieee, apa, or bibtex",
					"enum":        []string{"ieee", "apa", "bibtex"},
				},
			}, "id", "style"),
		},
		{
			Name:        "get_statistics",
			Description: "Get statistics about the citation database.",
			InputSchema: schema(map[string]any{}),
		},
		{
			Name:        "list_tags",
			Description: "List all unique tags used across citations.",
			InputSchema: schema(map[string]any{}),
		},
	}
}

// args holds decoded tool arguments. Accessors ignore values of the wrong type.
type args map[string]any

func (a args) str(name string) string {
	s, _ := a[name].(string)
	return strings.TrimSpace(s)
}

func (a args) integer(name string) (int, bool) {
	f, ok := a[name].(float64)
	if !ok {
		return 0, false
	}
	return int(f), true
}

func (a args) list(name string) []string {
	list, _ := a[name].([]any)
	var out []string
	for _, v := range list {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func (s *Server) callTool(raw json.RawMessage) (any, *rpcError) {
	var p struct {
		Name      string `json:"name"`
		Arguments args   `json:"arguments"`
	}
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	if p.Name == "" {
		return nil, invalidParams("Missing tool name")
	}
	if p.Arguments == nil {
		p.Arguments = args{}
	}

	s.log.Info("tool call", "tool", p.Name)
	a := p.Arguments
	switch p.Name {
	case "search_citations":
		return s.searchCitations(a), nil
	case "get_citation":
		return s.getCitation(a), nil
	case "list_citations":
		return s.listCitations(a), nil
	case "list_domains":
		return s.listDomains(), nil
	case "get_citations_by_domain":
		return s.citationsByDomain(a), nil
	case "format_citation":
		return s.formatCitation(a), nil
	case "get_statistics":
		return s.statistics(), nil
	case "list_tags":
		return s.listTags(), nil
	default:
		return toolError("Unknown tool: " + p.Name), nil
	}
}

// parseType resolves a citation type token case-insensitively.
func parseType(name string) (types.CitationType, bool) {
	for _, t := range types.AllCitationTypes() {
		if strings.EqualFold(t.String(), name) {
			return t, true
		}
	}
	return types.Misc, false
}

func (s *Server) searchCitations(a args) toolResult {
	opts := library.SearchOptions{
		Query:  a.str("query"),
		Domain: a.str("domain_id"),
		Tags:   a.list("tags"),
		Limit:  DefaultSearchLimit,
	}
	if name := a.str("type"); name != "" {
		t, ok := parseType(name)
		if !ok {
			return toolError("Unknown citation type: " + name)
		}
		opts.Type = &t
	}
	if y, ok := a.integer("year_from"); ok {
		opts.YearFrom = &y
	}
	if y, ok := a.integer("year_to"); ok {
		opts.YearTo = &y
	}
	if n, ok := a.integer("limit"); ok && n > 0 {
		opts.Limit = n
	}

	results := s.lib.Search(opts)
	return textResult(fmt.Sprintf("Found %d citations:\n\n%s", len(results), s.summaries(results)))
}

func (s *Server) getCitation(a args) toolResult {
	id := a.str("id")
	if id == "" {
		return toolError("Missing required parameter: id")
	}
	c, ok := s.lib.Citation(id)
	if !ok {
		return toolError("Citation not found: " + id)
	}

	lines := []string{"# " + c.Title, "", "**Authors:** " + c.AuthorsDisplay(), "**Type:** " + c.Type.DisplayName()}
	if c.Year != nil && *c.Year != 0 {
		lines = append(lines, fmt.Sprintf("**Year:** %d", *c.Year))
	}
	if name, ok := s.lib.DomainName(c); ok {
		lines = append(lines, "**Domain:** "+name)
	}
	if types.Present(c.JournalOrConference) {
		lines = append(lines, "**Venue:** "+*c.JournalOrConference)
	}
	if types.Present(c.DOI) {
		lines = append(lines, "**DOI:** "+*c.DOI)
	}
	if types.Present(c.URL) {
		lines = append(lines, "**URL:** "+*c.URL)
	}
	if len(c.Tags) > 0 {
		lines = append(lines, "**Tags:** "+strings.Join(c.Tags, ", "))
	}
	lines = append(lines, "")
	if types.Present(c.Abstract) {
		lines = append(lines, "**Abstract:**\n"+*c.Abstract)
	}
	if types.Present(c.Notes) {
		lines = append(lines, "\n**Notes:**\n"+*c.Notes)
	}
	lines = append(lines,
		"",
		"## Formatted Citations",
		"**IEEE:** "+render.IEEE(c),
		"**APA:** "+render.APA(c),
		"",
		"**BibTeX:**\n```bibtex\n"+render.BibTeX(c)+"\n```",
	)
	return textResult(strings.Join(lines, "\n"))
}

func (s *Server) listCitations(a args) toolResult {
	limit := DefaultListLimit
	if n, ok := a.integer("limit"); ok && n > 0 {
		limit = n
	}
	all := s.lib.Citations()
	shown := all[:min(limit, len(all))]
	return textResult(fmt.Sprintf("Total citations: %d\n\n%s", len(all), s.summaries(shown)))
}

func (s *Server) listDomains() toolResult {
	domains := s.lib.Domains()
	entries := make([]string, len(domains))
	for i, d := range domains {
		desc := "No description"
		if types.Present(d.Description) {
			desc = *d.Description
		}
		count := len(s.lib.ByDomain(d.ID))
		entries[i] = fmt.Sprintf("- **%s** (%d citations)\n  ID: %s\n  %s", d.Name, count, d.ID, desc)
	}
	return textResult(fmt.Sprintf("Available domains (%d):\n\n%s", len(domains), strings.Join(entries, "\n\n")))
}

func (s *Server) citationsByDomain(a args) toolResult {
	domain := a.str("domain")
	if domain == "" {
		return toolError("Missing required parameter: domain")
	}
	cs := s.lib.ByDomain(domain)
	if len(cs) == 0 {
		return textResult("No citations found for domain: " + domain)
	}
	return textResult(fmt.Sprintf("Found %d citations in domain '%s':\n\n%s", len(cs), domain, s.summaries(cs)))
}

func (s *Server) formatCitation(a args) toolResult {
	id := a.str("id")
	if id == "" {
		return toolError("Missing required parameter: id")
	}
	c, ok := s.lib.Citation(id)
	if !ok {
		return toolError("Citation not found: " + id)
	}
	style, err := render.ParseStyle(a.str("style"))
	if err != nil {
		style = render.StyleIEEE
	}
	return textResult(fmt.Sprintf("**%s Format:**\n\n%s", strings.ToUpper(string(style)), render.Format(style, c)))
}

func (s *Server) statistics() toolResult {
	st := s.lib.Statistics()
	lines := []string{
		fmt.Sprintf("- **total citations:** %d", st.TotalCitations),
		fmt.Sprintf("- **total domains:** %d", st.TotalDomains),
		fmt.Sprintf("- **total tags:** %d", st.TotalTags),
	}
	if st.YearRange.Min != nil {
		lines = append(lines, fmt.Sprintf("- **year range:** %d-%d", *st.YearRange.Min, *st.YearRange.Max))
	}
	if len(st.ByType) > 0 {
		lines = append(lines, "- **by type:** "+countList(st.ByType))
	}
	if len(st.ByDomain) > 0 {
		lines = append(lines, "- **by domain:** "+countList(st.ByDomain))
	}
	return textResult("Citation Database Statistics:\n\n" + strings.Join(lines, "\n"))
}

func (s *Server) listTags() toolResult {
	tags := s.lib.Tags()
	return textResult(fmt.Sprintf("Available tags (%d):\n\n%s", len(tags), strings.Join(tags, ", ")))
}

// summaries renders a short block per citation separated by blank lines.
func (s *Server) summaries(cs []types.Citation) string {
	blocks := make([]string, len(cs))
	for i, c := range cs {
		blocks[i] = s.summary(c)
	}
	return strings.Join(blocks, "\n\n")
}

func (s *Server) summary(c types.Citation) string {
	var year, domain string
	if c.Year != nil && *c.Year != 0 {
		year = fmt.Sprintf(" (%d)", *c.Year)
	}
	if name, ok := s.lib.DomainName(c); ok {
		domain = " [" + name + "]"
	}
	return fmt.Sprintf("**%s**%s%s\n  Authors: %s\n  Type: %s\n  ID: %s",
		c.Title, year, domain, c.AuthorsDisplay(), c.Type.DisplayName(), c.ID)
}

// countList renders "k: n" pairs sorted by key.
func countList(m map[string]int) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %d", k, m[k])
	}
	return strings.Join(parts, ", ")
}
