// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mcp serves the citation library to language-model clients over
// the Model Context Protocol: newline-delimited JSON-RPC 2.0 on a pair of
// streams, usually stdin and stdout.
//
// All requests are handled on the goroutine that called Serve, so the
// snapshot reload that precedes each request never overlaps a read.
package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/pdiddy/citation-engine/internal/library"
	"github.com/pdiddy/citation-engine/pkg/types"
)

// maxLineSize bounds one JSON-RPC message.
const maxLineSize = 8 << 20

// Server answers MCP requests against a library snapshot file.
type Server struct {
	path    string
	version string
	log     *slog.Logger

	lib     *library.Library
	modTime time.Time
	missing bool

	// stat is os.Stat; tests replace it.
	stat func(string) (fs.FileInfo, error)
}

// NewServer returns a server for the snapshot at path and loads it. A
// missing or unreadable file is logged and served as an empty library
// until a later request finds it readable. A nil logger discards.
func NewServer(path, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{
		path:    path,
		version: version,
		log:     logger,
		lib:     library.New(types.Snapshot{}),
		stat:    os.Stat,
	}
	s.refresh()
	return s
}

// Library returns the currently loaded library.
func (s *Server) Library() *library.Library { return s.lib }

// refresh reloads the snapshot when its modification time changed. A failed
// reload keeps the previous state and is not retried until the file changes again.
func (s *Server) refresh() {
	if s.path == "" {
		return
	}
	info, err := s.stat(s.path)
	if err != nil {
		if !s.missing {
			s.log.Warn("data file not available", "path", s.path, "error", err)
			s.missing = true
		}
		return
	}
	if !s.modTime.IsZero() && info.ModTime().Equal(s.modTime) {
		return
	}
	s.missing = false
	s.modTime = info.ModTime()

	if s.lib.Path() == "" {
		lib, err := library.Open(s.path)
		if err != nil {
			s.log.Warn("loading data file", "path", s.path, "error", err)
			return
		}
		s.lib = lib
	} else if err := s.lib.Reload(); err != nil {
		s.log.Warn("reloading data file, keeping previous state", "path", s.path, "error", err)
		return
	}
	s.log.Info("loaded library", "path", s.path, "citations", s.lib.Len(), "domains", len(s.lib.Domains()))
}

// Serve reads requests from r and writes responses to w until r reaches
// EOF or ctx is cancelled. Notifications get no response.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	s.log.Info("server starting", "name", ServerName, "version", s.version)
	defer s.log.Info("server shutting down")

	lines := make(chan []byte)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 64<<10), maxLineSize)
		for sc.Scan() {
			line := append([]byte(nil), sc.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("reading requests: %w", err)
					}
				default:
				}
				return nil
			}
			resp, reply := s.HandleLine(line)
			if !reply {
				continue
			}
			if err := enc.Encode(resp); err != nil {
				return fmt.Errorf("writing response: %w", err)
			}
		}
	}
}

// HandleLine processes one raw message. The second result is false when no
// response should be written.
func (s *Server) HandleLine(line []byte) (any, bool) {
	if len(bytes.TrimSpace(line)) == 0 {
		return nil, false
	}

	var req request
	if err := json.Unmarshal(line, &req); err != nil {
		s.log.Warn("parse error", "error", err)
		return response{
			JSONRPC: "2.0",
			ID:      json.RawMessage("null"),
			Error:   &rpcError{Code: CodeParseError, Message: "Parse error", Data: err.Error()},
		}, true
	}

	s.log.Debug("request", "method", req.Method)
	s.refresh()

	result, rerr := s.dispatch(req)
	if req.isNotification() {
		return nil, false
	}
	resp := response{JSONRPC: "2.0", ID: req.ID}
	if rerr != nil {
		resp.Error = rerr
	} else {
		resp.Result = result
	}
	return resp, true
}

func (s *Server) dispatch(req request) (any, *rpcError) {
	switch req.Method {
	case "":
		return nil, &rpcError{Code: CodeInvalidRequest, Message: "Invalid request: missing method"}
	case "initialize":
		return initializeResult{
			ProtocolVersion: ProtocolVersion,
			ServerInfo:      serverInfo{Name: ServerName, Version: s.version},
			Capabilities:    capabilities{},
		}, nil
	case "initialized", "notifications/initialized", "notifications/cancelled", "ping":
		return struct{}{}, nil
	case "tools/list":
		return toolsListResult{Tools: Tools()}, nil
	case "tools/call":
		return s.callTool(req.Params)
	case "resources/list":
		return resourcesListResult{Resources: Resources()}, nil
	case "resources/read":
		return s.readResource(req.Params)
	case "prompts/list":
		return promptsListResult{Prompts: Prompts()}, nil
	case "prompts/get":
		return s.getPrompt(req.Params)
	default:
		s.log.Warn("unknown method", "method", req.Method)
		return nil, &rpcError{Code: CodeMethodNotFound, Message: "Method not found: " + req.Method}
	}
}

// decodeParams unmarshals a params object. Absent params are an error.
func decodeParams(raw json.RawMessage, v any) *rpcError {
	if len(raw) == 0 || string(raw) == "null" {
		return invalidParams("Missing params")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return invalidParams("Invalid params: " + err.Error())
	}
	return nil
}
