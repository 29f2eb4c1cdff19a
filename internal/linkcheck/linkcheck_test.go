// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package linkcheck

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citation-engine/pkg/types"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/head-not-allowed", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Write([]byte("hello"))
	})
	mux.HandleFunc("/moved", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ok", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/not-modified", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotModified)
	})
	mux.HandleFunc("/boom", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	return httptest.NewServer(mux)
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		code int
		msg  string
		want Level
	}{
		{200, "", Healthy},
		{204, "", Healthy},
		{301, "", Redirect},
		{404, "", NotFound},
		{403, "", NotFound},
		{503, "", ServerError},
		{0, "connection failed", Error},
		{0, "", Unknown},
		{150, "", Unknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelFor(tt.code, tt.msg), "LevelFor(%d, %q)", tt.code, tt.msg)
	}
}

func TestCheck(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	c := &Checker{Client: ts.Client()}
	tests := []struct {
		path      string
		wantCode  int
		wantLevel Level
	}{
		{"/ok", 200, Healthy},
		{"/head-not-allowed", 200, Healthy},
		{"/moved", 200, Healthy},
		{"/not-modified", 304, Redirect},
		{"/missing", 404, NotFound},
		{"/boom", 500, ServerError},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			st := c.Check(context.Background(), ts.URL+tt.path)
			assert.Equal(t, tt.wantCode, st.StatusCode)
			assert.Equal(t, tt.wantLevel, st.Level)
			assert.Equal(t, tt.wantLevel == Healthy, st.Healthy)
			if !st.Healthy {
				assert.NotEmpty(t, st.Error)
			}
		})
	}

	st := c.Check(context.Background(), ts.URL+"/moved")
	assert.Equal(t, ts.URL+"/ok", st.FinalURL)
}

func TestCheckFailures(t *testing.T) {
	closed := httptest.NewServer(http.NotFoundHandler())
	deadURL := closed.URL + "/x"
	closed.Close()

	c := &Checker{}
	for _, raw := range []string{"", "ftp://example.org/file", "not a url", deadURL} {
		st := c.Check(context.Background(), raw)
		assert.Equal(t, Error, st.Level, "url %q", raw)
		assert.Zero(t, st.StatusCode)
		assert.NotEmpty(t, st.Error)
		assert.False(t, st.Healthy)
	}
}

func TestCheckAll(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	citations := []types.Citation{
		{ID: "a", Title: "A", URL: types.String(ts.URL + "/ok")},
		{ID: "b", Title: "B"},
		{ID: "c", Title: "C", URL: types.String(ts.URL + "/missing")},
		{ID: "d", Title: "D", URL: types.String("")},
		{ID: "e", Title: "E", URL: types.String(ts.URL + "/boom")},
	}

	c := &Checker{Client: ts.Client(), BatchSize: 2, BatchDelay: time.Millisecond}
	var buf bytes.Buffer
	results, err := c.CheckAll(context.Background(), citations, &buf)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "a", results[0].CitationID)
	assert.Equal(t, Healthy, results[0].Level)
	assert.Equal(t, "c", results[1].CitationID)
	assert.Equal(t, NotFound, results[1].Level)
	assert.Equal(t, "e", results[2].CitationID)
	assert.Equal(t, ServerError, results[2].Level)

	assert.Equal(t, 2, strings.Count(buf.String(), "checked "))
	assert.Contains(t, buf.String(), "checked 3/3 URLs")

	counts := Summarize(results)
	assert.Equal(t, map[Level]int{Healthy: 1, NotFound: 1, ServerError: 1}, counts)
}

func TestCheckAllCancelled(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	citations := []types.Citation{
		{ID: "a", URL: types.String(ts.URL + "/ok")},
		{ID: "b", URL: types.String(ts.URL + "/ok")},
	}
	c := &Checker{Client: ts.Client(), BatchSize: 1, BatchDelay: time.Millisecond}
	results, err := c.CheckAll(ctx, citations, &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, results, 1)
	assert.Equal(t, Error, results[0].Level)
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "ServerError", ServerError.String())
	assert.Equal(t, "Unknown", Level(99).String())
	text, err := NotFound.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "NotFound", string(text))
}
