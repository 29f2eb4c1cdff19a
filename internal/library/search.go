// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"sort"
	"strings"

	"github.com/pdiddy/citation-engine/pkg/types"
)

// SearchOptions holds the search filters. Every filter is optional and all
// given filters must match.
type SearchOptions struct {
	// Query is split on whitespace; every term must be a case-insensitive
	// substring of the title, an author, the abstract, the notes, a tag or the DOI.
	Query string

	// Domain is a domain id or name. An unknown domain matches nothing.
	Domain string

	// Type restricts results to one citation type.
	Type *types.CitationType

	// YearFrom and YearTo are inclusive bounds. Citations without a year
	// never match when either bound is set.
	YearFrom *int
	YearTo   *int

	// Tags must all be present on a citation (case-insensitive equality).
	Tags []string

	// Limit truncates the result. Zero or less means unlimited.
	Limit int
}

// IsEmpty reports whether the options carry no filters.
func (o SearchOptions) IsEmpty() bool {
	return strings.TrimSpace(o.Query) == "" && o.Domain == "" && o.Type == nil &&
		o.YearFrom == nil && o.YearTo == nil && len(o.Tags) == 0
}

// Search returns the citations matching opts in load order. Results are
// never ranked.
func (l *Library) Search(opts SearchOptions) []types.Citation {
	terms := strings.Fields(strings.ToLower(opts.Query))

	var domainID string
	if opts.Domain != "" {
		d, ok := l.ResolveDomain(opts.Domain)
		if !ok {
			return []types.Citation{}
		}
		domainID = d.ID
	}

	wantTags := make([]string, len(opts.Tags))
	for i, t := range opts.Tags {
		wantTags[i] = strings.ToLower(t)
	}

	results := []types.Citation{}
	for _, c := range l.citations {
		if !matchesAllTerms(c, terms) {
			continue
		}
		if opts.Domain != "" && (c.DomainID == nil || *c.DomainID != domainID) {
			continue
		}
		if opts.Type != nil && c.Type != *opts.Type {
			continue
		}
		if !inYearRange(c, opts.YearFrom, opts.YearTo) {
			continue
		}
		if !hasAllTags(c, wantTags) {
			continue
		}
		results = append(results, c.Clone())
		if opts.Limit > 0 && len(results) == opts.Limit {
			break
		}
	}
	return results
}

// ByDomain returns the citations in the domain with the given id or name.
func (l *Library) ByDomain(domain string) []types.Citation {
	return l.Search(SearchOptions{Domain: domain})
}

// ByType returns the citations of type t.
func (l *Library) ByType(t types.CitationType) []types.Citation {
	return l.Search(SearchOptions{Type: &t})
}

// ByYear returns the citations published in year.
func (l *Library) ByYear(year int) []types.Citation {
	return l.Search(SearchOptions{YearFrom: &year, YearTo: &year})
}

// Tags returns every distinct stored tag, sorted ascending. Tags that
// differ only by case are kept separately.
func (l *Library) Tags() []string {
	seen := make(map[string]bool)
	tags := []string{}
	for _, c := range l.citations {
		for _, t := range c.Tags {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	sort.Strings(tags)
	return tags
}

func matchesAllTerms(c types.Citation, terms []string) bool {
	for _, term := range terms {
		if !matchesTerm(c, term) {
			return false
		}
	}
	return true
}

// matchesTerm expects term to be lower-cased already.
func matchesTerm(c types.Citation, term string) bool {
	if strings.Contains(strings.ToLower(c.Title), term) {
		return true
	}
	for _, a := range c.Authors {
		if strings.Contains(strings.ToLower(a), term) {
			return true
		}
	}
	if c.Abstract != nil && strings.Contains(strings.ToLower(*c.Abstract), term) {
		return true
	}
	if c.Notes != nil && strings.Contains(strings.ToLower(*c.Notes), term) {
		return true
	}
	for _, t := range c.Tags {
		if strings.Contains(strings.ToLower(t), term) {
			return true
		}
	}
	return c.DOI != nil && strings.Contains(strings.ToLower(*c.DOI), term)
}

func inYearRange(c types.Citation, from, to *int) bool {
	if from == nil && to == nil {
		return true
	}
	if c.Year == nil || *c.Year == 0 {
		return false
	}
	if from != nil && *c.Year < *from {
		return false
	}
	return to == nil || *c.Year <= *to
}

// hasAllTags expects want to be lower-cased already.
func hasAllTags(c types.Citation, want []string) bool {
	for _, w := range want {
		found := false
		for _, t := range c.Tags {
			if strings.ToLower(t) == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
