// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"math"
	"testing"

	"github.com/pdiddy/citation-engine/pkg/types"
)

func TestCompare(t *testing.T) {
	base := types.Citation{
		ID:      "a",
		Title:   "Attention Is All You Need",
		Authors: []string{"Ashish Vaswani", "Noam Shazeer"},
		Year:    types.Int(2017),
		DOI:     types.String("10.5555/3295222"),
	}

	tests := []struct {
		name       string
		other      types.Citation
		wantOK     bool
		wantReason Reason
		wantConf   float64
	}{
		{
			name:       "doi with resolver prefix and case",
			other:      types.Citation{ID: "b", Title: "Different", DOI: types.String("https://doi.org/10.5555/3295222")},
			wantOK:     true,
			wantReason: ExactDOI,
			wantConf:   1.0,
		},
		{
			name:       "title differs only by punctuation and case",
			other:      types.Citation{ID: "b", Title: "attention is all you need!"},
			wantOK:     true,
			wantReason: ExactTitle,
			wantConf:   0.98,
		},
		{
			name: "same author and year with similar title",
			other: types.Citation{
				ID:      "b",
				Title:   "Attention Is What You Need",
				Authors: []string{"A. Vaswani"},
				Year:    types.Int(2017),
			},
			wantOK:     true,
			wantReason: SameAuthorYearTitle,
		},
		{
			name:       "very similar title alone",
			other:      types.Citation{ID: "b", Title: "Attention Is All You Needed"},
			wantOK:     true,
			wantReason: SimilarTitle,
		},
		{
			name:   "unrelated",
			other:  types.Citation{ID: "b", Title: "Query Optimization in Databases", Year: types.Int(2017)},
			wantOK: false,
		},
		{
			name:   "empty titles never match",
			other:  types.Citation{ID: "b"},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := Compare(base, tt.other)
			if ok != tt.wantOK {
				t.Fatalf("Compare ok = %v, want %v (match %+v)", ok, tt.wantOK, m)
			}
			if !ok {
				return
			}
			if m.Reason != tt.wantReason {
				t.Errorf("Reason = %v, want %v", m.Reason, tt.wantReason)
			}
			if tt.wantConf != 0 && m.Confidence != tt.wantConf {
				t.Errorf("Confidence = %v, want %v", m.Confidence, tt.wantConf)
			}
			if m.Citation.ID != "b" {
				t.Errorf("matched citation = %q, want b", m.Citation.ID)
			}
		})
	}
}

func TestContextConfidence(t *testing.T) {
	a := types.Citation{Title: "abcdefghij", Authors: []string{"X Smith"}, Year: types.Int(2000)}
	b := types.Citation{Title: "abcdefghxy", Authors: []string{"Y Smith"}, Year: types.Int(2000)}
	m, ok := Compare(a, b)
	if !ok {
		t.Fatal("expected a match")
	}
	// Similarity 0.8 gives confidence 0.7 + 0.8*0.25.
	if m.Reason != SameAuthorYearTitle || math.Abs(m.Confidence-0.9) > 1e-9 {
		t.Errorf("match = %v %v, want same_author_year_title 0.9", m.Reason, m.Confidence)
	}
}

func TestFindSortsAndExcludes(t *testing.T) {
	target := types.Citation{ID: "t", Title: "Graph Neural Networks", DOI: types.String("10.1/gnn")}
	candidates := []types.Citation{
		{ID: "t", Title: "Graph Neural Networks", DOI: types.String("10.1/gnn")},
		{ID: "similar", Title: "Graph Neural Network"},
		{ID: "title", Title: "graph neural networks"},
		{ID: "doi", Title: "Other", DOI: types.String("DOI:10.1/GNN")},
		{ID: "none", Title: "Something else"},
	}

	got := Find(target, candidates, "t")
	wantIDs := []string{"doi", "title", "similar"}
	if len(got) != len(wantIDs) {
		t.Fatalf("len = %d, want %d: %+v", len(got), len(wantIDs), got)
	}
	for i, id := range wantIDs {
		if got[i].Citation.ID != id {
			t.Errorf("got[%d] = %q, want %q", i, got[i].Citation.ID, id)
		}
	}
}

func TestGroupsAndPairs(t *testing.T) {
	cs := []types.Citation{
		{ID: "1", Title: "Deep Learning"},
		{ID: "2", Title: "Databases"},
		{ID: "3", Title: "deep learning."},
		{ID: "4", Title: "Other", DOI: types.String("10.1/x")},
		{ID: "5", Title: "Unrelated", DOI: types.String("10.1/X")},
	}

	pairs := Pairs(cs)
	if len(pairs) != 2 {
		t.Fatalf("len(pairs) = %d, want 2", len(pairs))
	}
	if pairs[0].A.ID != "1" || pairs[0].B.ID != "3" || pairs[0].Reason != ExactTitle {
		t.Errorf("pairs[0] = %s/%s %v", pairs[0].A.ID, pairs[0].B.ID, pairs[0].Reason)
	}

	groups := Groups(cs)
	if len(groups) != 2 {
		t.Fatalf("len(groups) = %d, want 2", len(groups))
	}
	if groups[0][0].ID != "1" || groups[0][1].ID != "3" {
		t.Errorf("groups[0] = %v", groups[0])
	}
	if groups[1][0].ID != "4" || groups[1][1].ID != "5" {
		t.Errorf("groups[1] = %v", groups[1])
	}

	if Groups(cs[:2]) != nil {
		t.Error("no duplicates should yield nil")
	}
}

func TestTitleSimilarity(t *testing.T) {
	if got := TitleSimilarity("Hello", "hello!"); got != 1 {
		t.Errorf("identical after normalization = %v, want 1", got)
	}
	if got := TitleSimilarity("", "x"); got != 0 {
		t.Errorf("empty = %v, want 0", got)
	}
	if got := TitleSimilarity("kitten", "sitting"); math.Abs(got-(1-3.0/7)) > 1e-9 {
		t.Errorf("kitten/sitting = %v", got)
	}
}

func TestNormalizeDOI(t *testing.T) {
	tests := map[string]string{
		" https://doi.org/10.1/ABC ": "10.1/abc",
		"doi:10.1/x":                 "10.1/x",
		"doi.org/10.1/x":             "10.1/x",
		"10.1/x":                     "10.1/x",
	}
	for in, want := range tests {
		if got := NormalizeDOI(in); got != want {
			t.Errorf("NormalizeDOI(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestReasonString(t *testing.T) {
	if ExactDOI.String() != "exact_doi" || SimilarTitle.String() != "similar_title" {
		t.Error("unexpected reason names")
	}
	if Reason(42).String() != "unknown" {
		t.Error("out-of-range reason should be unknown")
	}
}
