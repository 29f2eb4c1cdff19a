// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/pdiddy/citation-engine/internal/library"
	"github.com/pdiddy/citation-engine/pkg/types"
)

// FilterValues holds the raw text collected by FilterForm.
type FilterValues struct {
	Query    string
	Domain   string
	Type     string
	YearFrom string
	YearTo   string
	Tags     string
}

// Options converts the form values into search options. Blank fields set
// no filter; tags are split on commas.
func (v FilterValues) Options() (library.SearchOptions, error) {
	opts := library.SearchOptions{
		Query:  strings.TrimSpace(v.Query),
		Domain: strings.TrimSpace(v.Domain),
	}
	if v.Type != "" {
		t, ok := types.ParseCitationType(v.Type)
		if !ok {
			return opts, fmt.Errorf("unknown citation type %q", v.Type)
		}
		opts.Type = &t
	}
	var err error
	if opts.YearFrom, err = optionalYear(v.YearFrom); err != nil {
		return opts, err
	}
	if opts.YearTo, err = optionalYear(v.YearTo); err != nil {
		return opts, err
	}
	for _, t := range strings.Split(v.Tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			opts.Tags = append(opts.Tags, t)
		}
	}
	return opts, nil
}

func optionalYear(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	y, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("year must be a whole number, got %q", s)
	}
	return &y, nil
}

func validateOptionalYear(s string) error {
	_, err := optionalYear(s)
	return err
}

// FilterForm builds a form that fills v. Domain choices come from domains;
// both selects offer an "Any" entry.
func FilterForm(v *FilterValues, domains []types.Domain) *huh.Form {
	domainOpts := []huh.Option[string]{huh.NewOption("Any", "")}
	for _, d := range domains {
		domainOpts = append(domainOpts, huh.NewOption(d.Name, d.ID))
	}
	typeOpts := []huh.Option[string]{huh.NewOption("Any", "")}
	for _, t := range types.AllCitationTypes() {
		typeOpts = append(typeOpts, huh.NewOption(t.DisplayName(), t.String()))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Search text").
				Placeholder("words matched against title, authors, abstract, notes, tags, DOI").
				Value(&v.Query),
			huh.NewSelect[string]().
				Title("Domain").
				Options(domainOpts...).
				Value(&v.Domain),
			huh.NewSelect[string]().
				Title("Type").
				Options(typeOpts...).
				Value(&v.Type),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("From year").
				Placeholder("blank for none").
				Value(&v.YearFrom).
				Validate(validateOptionalYear),
			huh.NewInput().
				Title("To year").
				Placeholder("blank for none").
				Value(&v.YearTo).
				Validate(validateOptionalYear),
			huh.NewInput().
				Title("Tags").
				Placeholder("comma separated, all must match").
				Value(&v.Tags),
		),
	).WithShowHelp(false)
}
