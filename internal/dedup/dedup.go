// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dedup finds probable duplicate citations by DOI, title and
// author/year heuristics.
package dedup

import (
	"sort"
	"strings"
	"unicode"

	"github.com/pdiddy/citation-engine/pkg/types"
)

const (
	// titleThreshold is the minimum similarity for a title-only match.
	titleThreshold = 0.85

	// contextThreshold applies when the authors and year also agree.
	contextThreshold = 0.70
)

// Reason says why two citations were matched, strongest first.
type Reason int

const (
	ExactDOI Reason = iota
	ExactTitle
	SameAuthorYearTitle
	SimilarTitle
)

var reasonNames = [...]string{
	ExactDOI:            "exact_doi",
	ExactTitle:          "exact_title",
	SameAuthorYearTitle: "same_author_year_title",
	SimilarTitle:        "similar_title",
}

func (r Reason) String() string {
	if r < 0 || int(r) >= len(reasonNames) {
		return "unknown"
	}
	return reasonNames[r]
}

// MarshalText encodes the reason name.
func (r Reason) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// Match is a candidate judged to duplicate the target.
type Match struct {
	Citation   types.Citation `json:"citation"`
	Confidence float64        `json:"confidence"`
	Reason     Reason         `json:"reason"`
}

// Find compares target against every candidate except the one with id
// excludeID. Matches are sorted by confidence, highest first, then by reason.
func Find(target types.Citation, candidates []types.Citation, excludeID string) []Match {
	var matches []Match
	for _, c := range candidates {
		if excludeID != "" && c.ID == excludeID {
			continue
		}
		if m, ok := Compare(target, c); ok {
			matches = append(matches, m)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Confidence != matches[j].Confidence {
			return matches[i].Confidence > matches[j].Confidence
		}
		return matches[i].Reason < matches[j].Reason
	})
	return matches
}

// Compare reports whether existing duplicates c, checking the strongest
// signal first.
func Compare(c, existing types.Citation) (Match, bool) {
	if types.Present(c.DOI) && types.Present(existing.DOI) &&
		NormalizeDOI(*c.DOI) == NormalizeDOI(*existing.DOI) {
		return Match{Citation: existing, Confidence: 1.0, Reason: ExactDOI}, true
	}

	title, existingTitle := NormalizeTitle(c.Title), NormalizeTitle(existing.Title)
	if title != "" && title == existingTitle {
		return Match{Citation: existing, Confidence: 0.98, Reason: ExactTitle}, true
	}

	if authorOverlap(c.Authors, existing.Authors) &&
		c.Year != nil && existing.Year != nil && *c.Year == *existing.Year {
		if sim := TitleSimilarity(c.Title, existing.Title); sim >= contextThreshold {
			return Match{Citation: existing, Confidence: 0.7 + sim*0.25, Reason: SameAuthorYearTitle}, true
		}
	}

	if title != "" && existingTitle != "" {
		if sim := TitleSimilarity(c.Title, existing.Title); sim >= titleThreshold {
			return Match{Citation: existing, Confidence: sim, Reason: SimilarTitle}, true
		}
	}
	return Match{}, false
}

// Pair is a duplicate relation between two citations of one collection.
type Pair struct {
	A, B types.Citation
	Match
}

// Pairs compares every pair in cs once. Pairs keep collection order.
func Pairs(cs []types.Citation) []Pair {
	var pairs []Pair
	for i := range cs {
		for j := i + 1; j < len(cs); j++ {
			if m, ok := Compare(cs[i], cs[j]); ok {
				pairs = append(pairs, Pair{A: cs[i], B: cs[j], Match: m})
			}
		}
	}
	return pairs
}

// Groups clusters cs so that citations linked by any duplicate pair share
// a group. Singletons are omitted; groups keep collection order.
func Groups(cs []types.Citation) [][]types.Citation {
	parent := make([]int, len(cs))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}

	linked := false
	for i := range cs {
		for j := i + 1; j < len(cs); j++ {
			if _, ok := Compare(cs[i], cs[j]); ok {
				ri, rj := find(i), find(j)
				if ri != rj {
					parent[rj] = ri
				}
				linked = true
			}
		}
	}
	if !linked {
		return nil
	}

	byRoot := make(map[int][]types.Citation)
	var order []int
	for i, c := range cs {
		r := find(i)
		if _, ok := byRoot[r]; !ok {
			order = append(order, r)
		}
		byRoot[r] = append(byRoot[r], c)
	}
	var groups [][]types.Citation
	for _, r := range order {
		if len(byRoot[r]) > 1 {
			groups = append(groups, byRoot[r])
		}
	}
	return groups
}

// TitleSimilarity returns a 0..1 Levenshtein similarity of the normalized titles.
func TitleSimilarity(a, b string) float64 {
	na, nb := NormalizeTitle(a), NormalizeTitle(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}
	ra, rb := []rune(na), []rune(nb)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	return 1 - float64(levenshtein(ra, rb))/float64(longest)
}

// NormalizeTitle lowercases title, drops punctuation and collapses whitespace.
func NormalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

var doiPrefixes = []string{"https://doi.org/", "http://doi.org/", "doi:", "doi.org/"}

// NormalizeDOI lowercases doi and strips one resolver prefix.
func NormalizeDOI(doi string) string {
	d := strings.ToLower(strings.TrimSpace(doi))
	for _, p := range doiPrefixes {
		if strings.HasPrefix(d, p) {
			return d[len(p):]
		}
	}
	return d
}

func authorOverlap(a, b []string) bool {
	surnames := make(map[string]bool)
	for _, name := range a {
		if s := surname(name); s != "" {
			surnames[s] = true
		}
	}
	for _, name := range b {
		if s := surname(name); s != "" && surnames[s] {
			return true
		}
	}
	return false
}

func surname(name string) string {
	f := strings.Fields(name)
	if len(f) == 0 {
		return ""
	}
	return strings.ToLower(f[len(f)-1])
}

// levenshtein computes edit distance with two rolling rows.
func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(cur[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
