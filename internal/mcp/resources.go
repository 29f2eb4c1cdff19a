// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mcp

import (
	"encoding/json"
	"fmt"
)

// Resource URIs.
const (
	ResourceAll        = "citations://all"
	ResourceDomains    = "citations://domains"
	ResourceStatistics = "citations://statistics"
)

// Resources lists the documents the server exposes.
func Resources() []Resource {
	return []Resource{
		{URI: ResourceAll, Name: "All Citations", Description: "Complete list of all citations in JSON format", MimeType: "application/json"},
		{URI: ResourceDomains, Name: "All Domains", Description: "List of all domains/categories", MimeType: "application/json"},
		{URI: ResourceStatistics, Name: "Statistics", Description: "Database statistics", MimeType: "application/json"},
	}
}

func (s *Server) readResource(raw json.RawMessage) (any, *rpcError) {
	var p struct {
		URI string `json:"uri"`
	}
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}

	var (
		data []byte
		err  error
	)
	switch p.URI {
	case ResourceAll:
		data, err = s.lib.ExportJSON(nil, -1)
	case ResourceDomains:
		data, err = json.Marshal(s.lib.Domains())
	case ResourceStatistics:
		data, err = json.Marshal(s.lib.Statistics())
	default:
		return nil, invalidParams("Unknown resource: " + p.URI)
	}
	if err != nil {
		s.log.Error("reading resource", "uri", p.URI, "error", err)
		return nil, &rpcError{Code: CodeInvalidParams, Message: fmt.Sprintf("reading %s: %v", p.URI, err)}
	}
	return resourceReadResult{Contents: []resourceContent{{URI: p.URI, MimeType: "application/json", Text: string(data)}}}, nil
}
