// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package linkcheck reports the HTTP health of citation URLs.
package linkcheck

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pdiddy/citation-engine/internal/httputil"
	"github.com/pdiddy/citation-engine/pkg/types"
)

// Level summarizes a check outcome.
type Level int

const (
	Unknown Level = iota
	Healthy
	Redirect
	NotFound
	ServerError
	Error
)

var levelNames = [...]string{
	Unknown:     "Unknown",
	Healthy:     "Healthy",
	Redirect:    "Redirect",
	NotFound:    "NotFound",
	ServerError: "ServerError",
	Error:       "Error",
}

func (l Level) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return levelNames[Unknown]
	}
	return levelNames[l]
}

// MarshalText encodes the level name.
func (l Level) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// LevelFor classifies a status code. A zero code with an error message is
// Error; a zero code without one is Unknown.
func LevelFor(code int, errMsg string) Level {
	switch {
	case code >= 200 && code < 300:
		return Healthy
	case code >= 300 && code < 400:
		return Redirect
	case code >= 400 && code < 500:
		return NotFound
	case code >= 500:
		return ServerError
	case code == 0 && errMsg != "":
		return Error
	default:
		return Unknown
	}
}

// Status is the outcome of checking one URL.
type Status struct {
	URL        string    `json:"url"`
	StatusCode int       `json:"status_code"`
	Level      Level     `json:"level"`
	Healthy    bool      `json:"healthy"`
	Error      string    `json:"error,omitempty"`
	FinalURL   string    `json:"final_url,omitempty"`
	CheckedAt  time.Time `json:"checked_at"`
}

// Result ties a status to the citation whose URL was checked.
type Result struct {
	CitationID string `json:"citation_id"`
	Title      string `json:"title"`
	Status
}

const (
	defaultBatchSize  = 5
	defaultBatchDelay = 100 * time.Millisecond
	defaultTimeout    = 10 * time.Second
)

// Checker issues health checks. The zero value is usable.
type Checker struct {
	Client     *http.Client
	UserAgent  string
	MaxRetries int

	// BatchSize is the number of URLs checked concurrently by CheckAll.
	BatchSize int

	// BatchDelay is the pause between batches.
	BatchDelay time.Duration

	// Now stamps CheckedAt. Nil uses the UTC clock.
	Now func() time.Time
}

// NewChecker builds a Checker from config, filling defaults.
func NewChecker(cfg types.LinkCheckConfig) *Checker {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Checker{
		Client:     &http.Client{Timeout: timeout},
		UserAgent:  cfg.UserAgent,
		MaxRetries: cfg.MaxRetries,
		BatchSize:  cfg.BatchSize,
		BatchDelay: cfg.BatchDelay,
	}
}

// Check sends HEAD to rawURL, falling back to GET when the server answers
// 405. Redirects are followed; FinalURL records where they ended.
func (c *Checker) Check(ctx context.Context, rawURL string) Status {
	st := Status{URL: rawURL, CheckedAt: c.now()}

	if strings.TrimSpace(rawURL) == "" {
		return st.failed("URL is empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return st.failed("invalid URL format")
	}

	resp, err := c.send(ctx, http.MethodHead, rawURL)
	if err == nil && resp.StatusCode == http.StatusMethodNotAllowed {
		resp.Body.Close()
		resp, err = c.send(ctx, http.MethodGet, rawURL)
	}
	if err != nil {
		return st.failed(describe(err))
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()

	st.StatusCode = resp.StatusCode
	st.Level = LevelFor(resp.StatusCode, "")
	st.Healthy = st.Level == Healthy
	if !st.Healthy {
		st.Error = http.StatusText(resp.StatusCode)
	}
	if final := resp.Request.URL.String(); final != rawURL {
		st.FinalURL = final
	}
	return st
}

func (st Status) failed(msg string) Status {
	st.Error = msg
	st.Level = LevelFor(0, msg)
	return st
}

func (c *Checker) send(ctx context.Context, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return httputil.Do(ctx, client, req, httputil.Options{UserAgent: c.UserAgent, MaxRetries: c.MaxRetries})
}

// describe turns a transport error into a short message.
func describe(err error) string {
	var dnsErr *net.DNSError
	var certErr *tls.CertificateVerificationError
	var unknownAuth x509.UnknownAuthorityError
	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled):
		return "check cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	case errors.As(err, &dnsErr):
		return "domain not found"
	case errors.As(err, &certErr), errors.As(err, &unknownAuth):
		return "TLS certificate error"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "request timed out"
	default:
		return fmt.Sprintf("connection failed: %v", err)
	}
}

// CheckAll checks every citation that has a URL, BatchSize at a time with
// BatchDelay between batches. Results keep citation order. Progress lines go
// to w. On cancellation the results gathered so far are returned with ctx.Err().
func (c *Checker) CheckAll(ctx context.Context, citations []types.Citation, w io.Writer) ([]Result, error) {
	var todo []types.Citation
	for _, cit := range citations {
		if types.Present(cit.URL) {
			todo = append(todo, cit)
		}
	}

	size := c.BatchSize
	if size <= 0 {
		size = defaultBatchSize
	}
	delay := c.BatchDelay
	if delay <= 0 {
		delay = defaultBatchDelay
	}

	results := make([]Result, 0, len(todo))
	for start := 0; start < len(todo); start += size {
		if start > 0 {
			select {
			case <-ctx.Done():
				return results, ctx.Err()
			case <-time.After(delay):
			}
		}

		batch := todo[start:min(start+size, len(todo))]
		statuses := make([]Status, len(batch))
		var wg sync.WaitGroup
		for i, cit := range batch {
			wg.Add(1)
			go func(i int, rawURL string) {
				defer wg.Done()
				statuses[i] = c.Check(ctx, rawURL)
			}(i, *cit.URL)
		}
		wg.Wait()

		for i, cit := range batch {
			results = append(results, Result{CitationID: cit.ID, Title: cit.Title, Status: statuses[i]})
		}
		fmt.Fprintf(w, "checked %d/%d URLs\n", len(results), len(todo))

		if err := ctx.Err(); err != nil {
			return results, err
		}
	}
	return results, nil
}

// Summarize counts results per level.
func Summarize(results []Result) map[Level]int {
	counts := make(map[Level]int)
	for _, r := range results {
		counts[r.Level]++
	}
	return counts
}

func (c *Checker) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now().UTC()
}
