// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `{
  "version": "1.0",
  "citations": [
    {
      "id": "c1",
      "title": "Deep Learning for Vision",
      "authors": ["Alice Smith", "Bob Jones"],
      "type": "Article",
      "journalOrConference": "Nature",
      "year": 2021,
      "doi": "10.1000/dl",
      "tags": ["ml", "vision"],
      "domainId": "d1",
      "abstract": "Convolutional networks"
    },
    {
      "id": "c2",
      "title": "Query Optimization",
      "authors": ["Carol White"],
      "type": "InProceedings",
      "year": 2019,
      "tags": ["db"],
      "domainId": "d2"
    }
  ],
  "domains": [
    {"id": "d1", "name": "Machine Learning", "description": "Models", "color": "#ff0000"},
    {"id": "d2", "name": "Databases", "color": "#00ff00"}
  ]
}`

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "citations.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

type rpcReply struct {
	ID     json.RawMessage `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// call sends one request through HandleLine and decodes the reply.
func call(t *testing.T, s *Server, line string) rpcReply {
	t.Helper()
	resp, ok := s.HandleLine([]byte(line))
	require.True(t, ok, "expected a response to %s", line)
	data, err := json.Marshal(resp)
	require.NoError(t, err)
	var r rpcReply
	require.NoError(t, json.Unmarshal(data, &r))
	return r
}

func toolText(t *testing.T, r rpcReply) (string, bool) {
	t.Helper()
	require.Nil(t, r.Error)
	var res toolResult
	require.NoError(t, json.Unmarshal(r.Result, &res))
	require.Len(t, res.Content, 1)
	return res.Content[0].Text, res.IsError
}

func TestServeOverPipes(t *testing.T) {
	s := NewServer(writeFixture(t, fixture), "test", nil)

	in := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`{"jsonrpc":"2.0","id":"two","method":"ping"}`,
		`not json`,
		`{"jsonrpc":"2.0","id":3,"method":"bogus"}`,
	}, "\n")

	var out bytes.Buffer
	require.NoError(t, s.Serve(context.Background(), strings.NewReader(in), &out))

	var replies []rpcReply
	sc := bufio.NewScanner(&out)
	for sc.Scan() {
		var r rpcReply
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r))
		replies = append(replies, r)
	}
	require.Len(t, replies, 4)

	var init initializeResult
	require.NoError(t, json.Unmarshal(replies[0].Result, &init))
	assert.Equal(t, "1", string(replies[0].ID))
	assert.Equal(t, ProtocolVersion, init.ProtocolVersion)
	assert.Equal(t, ServerName, init.ServerInfo.Name)
	assert.Equal(t, "test", init.ServerInfo.Version)

	assert.Equal(t, `"two"`, string(replies[1].ID))
	assert.JSONEq(t, `{}`, string(replies[1].Result))

	require.NotNil(t, replies[2].Error)
	assert.Equal(t, CodeParseError, replies[2].Error.Code)
	assert.Equal(t, "null", string(replies[2].ID))

	require.NotNil(t, replies[3].Error)
	assert.Equal(t, CodeMethodNotFound, replies[3].Error.Code)
}

func TestServeStopsOnCancel(t *testing.T) {
	s := NewServer("", "test", nil)
	r, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, r, &bytes.Buffer{}) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestListings(t *testing.T) {
	s := NewServer(writeFixture(t, fixture), "test", nil)

	var tools toolsListResult
	require.NoError(t, json.Unmarshal(call(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`).Result, &tools))
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{
		"search_citations", "get_citation", "list_citations", "list_domains",
		"get_citations_by_domain", "format_citation", "get_statistics", "list_tags",
	}, names)

	var resources resourcesListResult
	require.NoError(t, json.Unmarshal(call(t, s, `{"jsonrpc":"2.0","id":2,"method":"resources/list"}`).Result, &resources))
	assert.Len(t, resources.Resources, 3)

	var prompts promptsListResult
	require.NoError(t, json.Unmarshal(call(t, s, `{"jsonrpc":"2.0","id":3,"method":"prompts/list"}`).Result, &prompts))
	assert.Len(t, prompts.Prompts, 3)
}

func TestToolCalls(t *testing.T) {
	s := NewServer(writeFixture(t, fixture), "test", nil)

	tests := []struct {
		name      string
		params    string
		wantError bool
		contains  []string
		excludes  []string
	}{
		{
			name:     "search by query",
			params:   `{"name":"search_citations","arguments":{"query":"vision"}}`,
			contains: []string{"Found 1 citations", "**Deep Learning for Vision** (2021) [Machine Learning]", "ID: c1"},
		},
		{
			name:     "search by type case-insensitively",
			params:   `{"name":"search_citations","arguments":{"type":"inproceedings"}}`,
			contains: []string{"Found 1 citations", "Query Optimization"},
		},
		{
			name:     "search by year range and tags",
			params:   `{"name":"search_citations","arguments":{"year_from":2020,"tags":["ML"]}}`,
			contains: []string{"Found 1 citations", "ID: c1"},
		},
		{
			name:     "search unknown domain fails closed",
			params:   `{"name":"search_citations","arguments":{"domain_id":"nope"}}`,
			contains: []string{"Found 0 citations"},
		},
		{
			name:      "search unknown type",
			params:    `{"name":"search_citations","arguments":{"type":"Poem"}}`,
			wantError: true,
			contains:  []string{"Unknown citation type"},
		},
		{
			name:     "get citation",
			params:   `{"name":"get_citation","arguments":{"id":"c1"}}`,
			contains: []string{"# Deep Learning for Vision", "**Domain:** Machine Learning", "**Venue:** Nature", "**IEEE:**", "```bibtex\n@article{smith2021deep,"},
		},
		{
			name:      "get citation missing",
			params:    `{"name":"get_citation","arguments":{"id":"zzz"}}`,
			wantError: true,
			contains:  []string{"Error: Citation not found: zzz"},
		},
		{
			name:      "get citation without id",
			params:    `{"name":"get_citation"}`,
			wantError: true,
			contains:  []string{"Missing required parameter: id"},
		},
		{
			name:     "list citations with limit",
			params:   `{"name":"list_citations","arguments":{"limit":1}}`,
			contains: []string{"Total citations: 2", "ID: c1"},
			excludes: []string{"ID: c2"},
		},
		{
			name:     "list domains",
			params:   `{"name":"list_domains"}`,
			contains: []string{"Available domains (2)", "**Machine Learning** (1 citations)", "No description"},
		},
		{
			name:     "citations by domain name",
			params:   `{"name":"get_citations_by_domain","arguments":{"domain":"databases"}}`,
			contains: []string{"Found 1 citations in domain 'databases'", "ID: c2"},
		},
		{
			name:     "citations by unknown domain",
			params:   `{"name":"get_citations_by_domain","arguments":{"domain":"nope"}}`,
			contains: []string{"No citations found for domain: nope"},
		},
		{
			name:     "format apa",
			params:   `{"name":"format_citation","arguments":{"id":"c1","style":"APA"}}`,
			contains: []string{"**APA Format:**", "Smith, A., Jones, B."},
		},
		{
			name:     "format unknown style falls back to ieee",
			params:   `{"name":"format_citation","arguments":{"id":"c1","style":"mla"}}`,
			contains: []string{"**IEEE Format:**"},
		},
		{
			name:     "statistics",
			params:   `{"name":"get_statistics"}`,
			contains: []string{"total citations:** 2", "year range:** 2019-2021", "Article: 1"},
		},
		{
			name:     "tags",
			params:   `{"name":"list_tags"}`,
			contains: []string{"Available tags (3)", "db, ml, vision"},
		},
		{
			name:      "unknown tool",
			params:    `{"name":"delete_everything"}`,
			wantError: true,
			contains:  []string{"Unknown tool: delete_everything"},
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := `{"jsonrpc":"2.0","id":` + strconv.Itoa(i+1) + `,"method":"tools/call","params":` + tt.params + `}`
			text, isErr := toolText(t, call(t, s, line))
			assert.Equal(t, tt.wantError, isErr)
			for _, want := range tt.contains {
				assert.Contains(t, text, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, text, unwanted)
			}
		})
	}
}

func TestToolCallBadParams(t *testing.T) {
	s := NewServer(writeFixture(t, fixture), "test", nil)
	for _, line := range []string{
		`{"jsonrpc":"2.0","id":1,"method":"tools/call"}`,
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"arguments":{}}}`,
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":[1,2]}`,
		`{"jsonrpc":"2.0","id":1,"method":"resources/read","params":{"uri":"citations://nope"}}`,
		`{"jsonrpc":"2.0","id":1,"method":"prompts/get","params":{"name":"nope"}}`,
		`{"jsonrpc":"2.0","id":1,"method":"prompts/get","params":{"name":"find_relevant_citations"}}`,
	} {
		r := call(t, s, line)
		require.NotNil(t, r.Error, line)
		assert.Equal(t, CodeInvalidParams, r.Error.Code, line)
	}
}

func TestResources(t *testing.T) {
	s := NewServer(writeFixture(t, fixture), "test", nil)

	read := func(uri string) string {
		var res resourceReadResult
		r := call(t, s, `{"jsonrpc":"2.0","id":1,"method":"resources/read","params":{"uri":"`+uri+`"}}`)
		require.Nil(t, r.Error)
		require.NoError(t, json.Unmarshal(r.Result, &res))
		require.Len(t, res.Contents, 1)
		assert.Equal(t, uri, res.Contents[0].URI)
		assert.Equal(t, "application/json", res.Contents[0].MimeType)
		return res.Contents[0].Text
	}

	var all []map[string]any
	require.NoError(t, json.Unmarshal([]byte(read(ResourceAll)), &all))
	require.Len(t, all, 2)
	assert.Equal(t, "c1", all[0]["id"])
	assert.Equal(t, "Article", all[0]["type"])
	assert.Nil(t, all[1]["journalOrConference"])

	var domains []map[string]any
	require.NoError(t, json.Unmarshal([]byte(read(ResourceDomains)), &domains))
	require.Len(t, domains, 2)
	assert.Equal(t, "Machine Learning", domains[0]["name"])

	var stats map[string]any
	require.NoError(t, json.Unmarshal([]byte(read(ResourceStatistics)), &stats))
	assert.Equal(t, float64(2), stats["total_citations"])
}

func TestPrompts(t *testing.T) {
	s := NewServer(writeFixture(t, fixture), "test", nil)

	get := func(params string) string {
		var res promptResult
		r := call(t, s, `{"jsonrpc":"2.0","id":1,"method":"prompts/get","params":`+params+`}`)
		require.Nil(t, r.Error)
		require.NoError(t, json.Unmarshal(r.Result, &res))
		require.Len(t, res.Messages, 1)
		assert.Equal(t, "user", res.Messages[0].Role)
		return res.Messages[0].Content.Text
	}

	text := get(`{"name":"find_relevant_citations","arguments":{"topic":"deep"}}`)
	assert.Contains(t, text, "I'm researching: deep")
	assert.Contains(t, text, "Deep Learning for Vision")

	text = get(`{"name":"summarize_domain","arguments":{"domain":"Databases"}}`)
	assert.Contains(t, text, "these 1 citations in the 'Databases' domain")

	text = get(`{"name":"create_bibliography","arguments":{"query":"","style":"bibtex"}}`)
	assert.Contains(t, text, "bibliography of 2 citations in BIBTEX format")
	assert.Contains(t, text, "@inproceedings{white2019query,")
}

func TestReloadOnModification(t *testing.T) {
	path := writeFixture(t, fixture)
	s := NewServer(path, "test", nil)
	require.Equal(t, 2, s.Library().Len())

	updated := `{"citations":[{"id":"x","title":"Only One"}],"domains":[]}`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))

	text, _ := toolText(t, call(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"list_citations"}}`))
	assert.Contains(t, text, "Total citations: 1")
	assert.Contains(t, text, "Only One")

	// A broken rewrite keeps the previous state.
	require.NoError(t, os.WriteFile(path, []byte(`{"citations": [`), 0o644))
	evenLater := later.Add(time.Hour)
	require.NoError(t, os.Chtimes(path, evenLater, evenLater))

	text, _ = toolText(t, call(t, s, `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"list_citations"}}`))
	assert.Contains(t, text, "Only One")
}

func TestMissingFileServesEmptyLibrary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "later.json")
	s := NewServer(path, "test", nil)
	assert.Equal(t, 0, s.Library().Len())

	text, _ := toolText(t, call(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"list_citations"}}`))
	assert.Contains(t, text, "Total citations: 0")

	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o644))
	text, _ = toolText(t, call(t, s, `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"list_citations"}}`))
	assert.Contains(t, text, "Total citations: 2")
}
