// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the HTTP plumbing shared by metadata lookup and
// link checking: a User-Agent default and retry on HTTP 429.
package httputil

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"
)

// DefaultUserAgent identifies the tool to remote services.
const DefaultUserAgent = "citation-engine/0.1 (+https://github.com/pdiddy/citation-engine)"

// RetryBaseDelay controls the base duration for exponential backoff on
// HTTP 429 responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

// MaxRetryAfter caps how long a server-supplied Retry-After may delay us.
var MaxRetryAfter = 60 * time.Second

const defaultMaxRetries = 3

// Options tunes a request.
type Options struct {
	// UserAgent overrides DefaultUserAgent.
	UserAgent string

	// Accept sets the Accept header when non-empty.
	Accept string

	// MaxRetries bounds retries on 429. Zero uses the default (3).
	MaxRetries int

	// Log receives one line per backoff. Nil discards.
	Log io.Writer
}

// Do sends req and retries on HTTP 429 (Too Many Requests). A Retry-After
// header in seconds is honored up to MaxRetryAfter; otherwise the delay
// starts at RetryBaseDelay and doubles each attempt.
//
// Each 429 body is drained and closed before sleeping. If ctx is cancelled
// during a backoff wait Do returns ctx.Err(). After exhausting retries the
// last 429 response is returned so the caller can inspect it.
func Do(ctx context.Context, client *http.Client, req *http.Request, opts Options) (*http.Response, error) {
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	log := opts.Log
	if log == nil {
		log = io.Discard
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	if opts.Accept != "" {
		req.Header.Set("Accept", opts.Accept)
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusTooManyRequests || attempt >= maxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := retryAfter(resp.Header.Get("Retry-After"))
		if backoff <= 0 {
			backoff = time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		}
		fmt.Fprintf(log, "rate limited by %s, retrying in %v (attempt %d/%d)\n", req.URL.Host, backoff, attempt+1, maxRetries)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// Get issues a GET for url through Do.
func Get(ctx context.Context, client *http.Client, url string, opts Options) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	return Do(ctx, client, req, opts)
}

// retryAfter parses a delta-seconds Retry-After value. HTTP-date values and
// garbage yield zero.
func retryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	d := time.Duration(secs) * time.Second
	if d > MaxRetryAfter {
		d = MaxRetryAfter
	}
	return d
}
