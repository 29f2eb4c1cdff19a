// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package lookup resolves a DOI, arXiv ID or web URL to a standalone
// citation using public metadata services.
package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/pdiddy/citation-engine/internal/httputil"
	"github.com/pdiddy/citation-engine/pkg/types"
)

var (
	// ErrInvalidIdentifier reports input that is neither a DOI, an arXiv ID nor an http(s) URL.
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrNotFound reports an identifier the remote service does not know.
	ErrNotFound = errors.New("identifier not found")

	// ErrRateLimited reports HTTP 429 after retries were exhausted.
	ErrRateLimited = errors.New("rate limited")
)

// Kind classifies an identifier.
type Kind int

const (
	KindUnknown Kind = iota
	KindArxiv
	KindDOI
	KindURL
)

func (k Kind) String() string {
	switch k {
	case KindArxiv:
		return "arxiv"
	case KindDOI:
		return "doi"
	case KindURL:
		return "url"
	default:
		return "unknown"
	}
}

// Base URLs for the metadata services. Declared as vars so tests can
// substitute httptest servers.
var (
	crossrefAPIBase = "https://api.crossref.org/works/"
	arxivAPIBase    = "https://export.arxiv.org/api/query"
	arxivAbsBase    = "https://arxiv.org/abs/"
	doiBase         = "https://doi.org/"
)

// maxPageSize bounds how much HTML is read for a URL lookup.
const maxPageSize = 10 << 20

// abstractRunes bounds the page text kept as the abstract of a web page.
const abstractRunes = 500

var (
	// arxivPattern matches "2301.07041", "arXiv:2301.07041" and "2301.07041v2".
	arxivPattern = regexp.MustCompile(`^(?i:arxiv:)?(\d{4}\.\d{4,5}(?:v\d+)?)$`)

	// arxivURLPattern matches abstract and PDF links on arxiv.org.
	arxivURLPattern = regexp.MustCompile(`^https?://(?:www\.)?arxiv\.org/(?:abs|pdf)/(\d{4}\.\d{4,5}(?:v\d+)?)(?:\.pdf)?/?$`)

	doiPattern = regexp.MustCompile(`^10\.\d{4,9}/\S+$`)

	tagPattern = regexp.MustCompile(`<[^>]+>`)
)

var doiPrefixes = []string{
	"https://doi.org/",
	"http://doi.org/",
	"https://dx.doi.org/",
	"http://dx.doi.org/",
	"doi.org/",
	"doi:",
	"doi ",
}

// Classify determines the identifier kind and returns its normalized form.
// DOI resolver prefixes and the "arXiv:" prefix are stripped.
func Classify(identifier string) (Kind, string) {
	id := strings.TrimSpace(identifier)
	if id == "" {
		return KindUnknown, id
	}

	if m := arxivPattern.FindStringSubmatch(id); m != nil {
		return KindArxiv, m[1]
	}
	if m := arxivURLPattern.FindStringSubmatch(id); m != nil {
		return KindArxiv, m[1]
	}

	if doi := stripDOIPrefix(id); doiPattern.MatchString(doi) {
		return KindDOI, doi
	}

	if u, err := url.Parse(id); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return KindURL, id
	}
	return KindUnknown, id
}

func stripDOIPrefix(id string) string {
	lower := strings.ToLower(id)
	for _, p := range doiPrefixes {
		if strings.HasPrefix(lower, p) {
			return strings.TrimSpace(id[len(p):])
		}
	}
	return id
}

// Resolver fetches metadata over HTTP. The zero value is usable.
type Resolver struct {
	Client *http.Client

	// UserAgent overrides httputil.DefaultUserAgent.
	UserAgent string

	// Email is sent to CrossRef as mailto for polite pool access.
	Email string

	// MaxRetries bounds retries on HTTP 429.
	MaxRetries int

	// Log receives retry notices. Nil discards.
	Log io.Writer
}

// NewResolver builds a Resolver from config.
func NewResolver(cfg types.LookupConfig, log io.Writer) *Resolver {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Resolver{
		Client:     &http.Client{Timeout: timeout},
		UserAgent:  cfg.UserAgent,
		Email:      cfg.Email,
		MaxRetries: cfg.MaxRetries,
		Log:        log,
	}
}

// Resolve classifies identifier and fetches its metadata. The returned
// citation has no ID and no domain; Authors and Tags are never nil.
func (r *Resolver) Resolve(ctx context.Context, identifier string) (types.Citation, error) {
	kind, norm := Classify(identifier)
	switch kind {
	case KindDOI:
		return r.resolveDOI(ctx, norm)
	case KindArxiv:
		return r.resolveArxiv(ctx, norm)
	case KindURL:
		return r.resolveURL(ctx, norm)
	default:
		return types.Citation{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, identifier)
	}
}

func (r *Resolver) client() *http.Client {
	if r.Client != nil {
		return r.Client
	}
	return http.DefaultClient
}

func (r *Resolver) get(ctx context.Context, service, rawURL, accept string) (*http.Response, error) {
	resp, err := httputil.Get(ctx, r.client(), rawURL, httputil.Options{
		UserAgent:  r.UserAgent,
		Accept:     accept,
		MaxRetries: r.MaxRetries,
		Log:        r.Log,
	})
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", service, err)
	}
	switch {
	case resp.StatusCode == http.StatusOK:
		return resp, nil
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		resp.Body.Close()
		return nil, fmt.Errorf("%s: %w", service, ErrRateLimited)
	default:
		resp.Body.Close()
		return nil, fmt.Errorf("%s returned HTTP %d", service, resp.StatusCode)
	}
}

// CrossRef API JSON structures.
type crossrefResponse struct {
	Message *crossrefWork `json:"message"`
}

type crossrefWork struct {
	Title           []string         `json:"title"`
	Author          []crossrefAuthor `json:"author"`
	Type            string           `json:"type"`
	ContainerTitle  []string         `json:"container-title"`
	Volume          string           `json:"volume"`
	Issue           string           `json:"issue"`
	Page            string           `json:"page"`
	Publisher       string           `json:"publisher"`
	URL             string           `json:"URL"`
	Abstract        string           `json:"abstract"`
	ISBN            []string         `json:"ISBN"`
	Subject         []string         `json:"subject"`
	PublishedPrint  crossrefDate     `json:"published-print"`
	PublishedOnline crossrefDate     `json:"published-online"`
	Published       crossrefDate     `json:"published"`
	Created         crossrefDate     `json:"created"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
	Name   string `json:"name"`
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}

var crossrefTypes = map[string]types.CitationType{
	"journal-article":     types.Article,
	"proceedings-article": types.InProceedings,
	"conference-paper":    types.InProceedings,
	"book":                types.Book,
	"monograph":           types.Book,
	"edited-book":         types.Book,
	"book-chapter":        types.InBook,
	"report":              types.TechReport,
	"report-component":    types.TechReport,
	"dissertation":        types.Thesis,
	"standard":            types.Standard,
	"posted-content":      types.Article,
	"preprint":            types.Article,
}

func (r *Resolver) resolveDOI(ctx context.Context, doi string) (types.Citation, error) {
	apiURL := crossrefAPIBase + url.PathEscape(doi)
	if r.Email != "" {
		apiURL += "?mailto=" + url.QueryEscape(r.Email)
	}

	resp, err := r.get(ctx, "CrossRef API", apiURL, "application/json")
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return types.Citation{}, fmt.Errorf("%w: DOI %s", ErrNotFound, doi)
		}
		return types.Citation{}, err
	}
	defer resp.Body.Close()

	var cr crossrefResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return types.Citation{}, fmt.Errorf("parsing CrossRef response: %w", err)
	}
	if cr.Message == nil {
		return types.Citation{}, fmt.Errorf("parsing CrossRef response: no message")
	}
	return crossrefCitation(*cr.Message, doi), nil
}

func crossrefCitation(w crossrefWork, doi string) types.Citation {
	c := types.Citation{
		Authors:             []string{},
		Tags:                []string{},
		Type:                types.Misc,
		DOI:                 types.String(doi),
		JournalOrConference: firstOf(w.ContainerTitle),
		Volume:              nonEmpty(w.Volume),
		Issue:               nonEmpty(w.Issue),
		Pages:               nonEmpty(w.Page),
		Publisher:           nonEmpty(w.Publisher),
		ISBN:                firstOf(w.ISBN),
		URL:                 types.String(doiBase + doi),
	}
	if len(w.Title) > 0 {
		c.Title = strings.TrimSpace(w.Title[0])
	}
	if t, ok := crossrefTypes[strings.ToLower(w.Type)]; ok {
		c.Type = t
	}
	for _, a := range w.Author {
		switch {
		case a.Family != "":
			c.Authors = append(c.Authors, strings.TrimSpace(a.Given+" "+a.Family))
		case a.Name != "":
			c.Authors = append(c.Authors, strings.TrimSpace(a.Name))
		}
	}
	if w.URL != "" {
		c.URL = types.String(w.URL)
	}
	if abs := strings.TrimSpace(tagPattern.ReplaceAllString(w.Abstract, "")); abs != "" {
		c.Abstract = types.String(collapse(abs))
	}
	c.Year, c.Month = crossrefYearMonth(w)
	for _, s := range w.Subject {
		if s = strings.TrimSpace(s); s != "" {
			c.Tags = append(c.Tags, s)
		}
	}
	return c
}

// crossrefYearMonth takes the first date in print, online, published,
// created order that carries a year.
func crossrefYearMonth(w crossrefWork) (*int, *string) {
	for _, d := range []crossrefDate{w.PublishedPrint, w.PublishedOnline, w.Published, w.Created} {
		if len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 || d.DateParts[0][0] == 0 {
			continue
		}
		parts := d.DateParts[0]
		year := types.Int(parts[0])
		if len(parts) > 1 && parts[1] >= 1 && parts[1] <= 12 {
			return year, types.String(time.Month(parts[1]).String()[:3])
		}
		return year, nil
	}
	return nil, nil
}

// arXiv Atom feed structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID         string        `xml:"id"`
	Title      string        `xml:"title"`
	Summary    string        `xml:"summary"`
	Published  string        `xml:"published"`
	Authors    []arxivAuthor `xml:"author"`
	DOI        string        `xml:"http://arxiv.org/schemas/atom doi"`
	JournalRef string        `xml:"http://arxiv.org/schemas/atom journal_ref"`
	Categories []arxivTerm   `xml:"category"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivTerm struct {
	Term string `xml:"term,attr"`
}

func (r *Resolver) resolveArxiv(ctx context.Context, id string) (types.Citation, error) {
	apiURL := arxivAPIBase + "?id_list=" + url.QueryEscape(id)

	resp, err := r.get(ctx, "arXiv API", apiURL, "application/atom+xml")
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return types.Citation{}, fmt.Errorf("%w: arXiv %s", ErrNotFound, id)
		}
		return types.Citation{}, err
	}
	defer resp.Body.Close()

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return types.Citation{}, fmt.Errorf("parsing arXiv response: %w", err)
	}
	// Unknown IDs come back as an empty feed or a single "Error" entry.
	if len(feed.Entries) == 0 || strings.TrimSpace(feed.Entries[0].Title) == "Error" {
		return types.Citation{}, fmt.Errorf("%w: arXiv %s", ErrNotFound, id)
	}
	return arxivCitation(feed.Entries[0], id), nil
}

func arxivCitation(e arxivEntry, id string) types.Citation {
	c := types.Citation{
		Title:               collapse(e.Title),
		Authors:             []string{},
		Tags:                []string{},
		Type:                types.Article,
		JournalOrConference: types.String("arXiv"),
		URL:                 types.String(arxivAbsBase + id),
		Notes:               types.String("arXiv:" + id),
		DOI:                 nonEmpty(strings.TrimSpace(e.DOI)),
	}
	if s := collapse(e.Summary); s != "" {
		c.Abstract = types.String(s)
	}
	for _, a := range e.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			c.Authors = append(c.Authors, name)
		}
	}
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(e.Published)); err == nil {
		c.Year = types.Int(t.Year())
		c.Month = types.String(t.Month().String()[:3])
	}
	if ref := strings.TrimSpace(e.JournalRef); ref != "" {
		c.Notes = types.String("arXiv:" + id + "; " + collapse(ref))
	}
	for _, cat := range e.Categories {
		if cat.Term != "" {
			c.Tags = append(c.Tags, cat.Term)
		}
	}
	return c
}

func (r *Resolver) resolveURL(ctx context.Context, rawURL string) (types.Citation, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return types.Citation{}, fmt.Errorf("%w: %v", ErrInvalidIdentifier, err)
	}

	resp, err := r.get(ctx, pageURL.Host, rawURL, "text/html")
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return types.Citation{}, fmt.Errorf("%w: %s", ErrNotFound, rawURL)
		}
		return types.Citation{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return types.Citation{}, fmt.Errorf("reading %s: %w", rawURL, err)
	}

	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return types.Citation{}, fmt.Errorf("extracting article from %s: %w", rawURL, err)
	}

	c := types.Citation{
		Title:               collapse(article.Title),
		Authors:             []string{},
		Tags:                []string{},
		Type:                types.Website,
		URL:                 types.String(rawURL),
		JournalOrConference: nonEmpty(collapse(article.SiteName)),
	}
	if c.Title == "" {
		c.Title = pageURL.Host
	}
	if by := collapse(article.Byline); by != "" {
		c.Authors = append(c.Authors, by)
	}
	if text := collapse(article.TextContent); text != "" {
		c.Abstract = types.String(truncate(text, abstractRunes))
	}
	now := time.Now().UTC()
	c.Year = types.Int(now.Year())
	c.Month = types.String(now.Month().String()[:3])
	return c, nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}

func nonEmpty(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}

func firstOf(list []string) *string {
	for _, s := range list {
		if v := nonEmpty(s); v != nil {
			return v
		}
	}
	return nil
}
