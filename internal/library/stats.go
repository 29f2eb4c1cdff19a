// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

// YearRange holds the smallest and largest publication year. Both are nil
// when no citation has a year.
type YearRange struct {
	Min *int `json:"min" yaml:"min"`
	Max *int `json:"max" yaml:"max"`
}

// Stats summarizes a library.
type Stats struct {
	TotalCitations int       `json:"total_citations" yaml:"total_citations"`
	TotalDomains   int       `json:"total_domains" yaml:"total_domains"`
	TotalTags      int       `json:"total_tags" yaml:"total_tags"`
	YearRange      YearRange `json:"year_range" yaml:"year_range"`

	// ByType is keyed by the type's wire token.
	ByType map[string]int `json:"by_type" yaml:"by_type"`

	// ByDomain is keyed by domain name, or by the raw domain id when the
	// reference does not resolve. Citations without a domain are not counted.
	ByDomain map[string]int `json:"by_domain" yaml:"by_domain"`
}

// Statistics computes counts over the whole library.
func (l *Library) Statistics() Stats {
	s := Stats{
		TotalCitations: len(l.citations),
		TotalDomains:   len(l.domains),
		TotalTags:      len(l.Tags()),
		ByType:         make(map[string]int),
		ByDomain:       make(map[string]int),
	}

	for _, c := range l.citations {
		s.ByType[c.Type.String()]++

		if c.Year != nil && *c.Year != 0 {
			lo, hi := *c.Year, *c.Year
			if s.YearRange.Min == nil || lo < *s.YearRange.Min {
				s.YearRange.Min = &lo
			}
			if s.YearRange.Max == nil || hi > *s.YearRange.Max {
				s.YearRange.Max = &hi
			}
		}

		if c.DomainID != nil && *c.DomainID != "" {
			key := *c.DomainID
			if name, ok := l.DomainName(c); ok {
				key = name
			}
			s.ByDomain[key]++
		}
	}
	return s
}
