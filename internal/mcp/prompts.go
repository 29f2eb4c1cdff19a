// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mcp

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/citation-engine/internal/library"
	"github.com/pdiddy/citation-engine/internal/render"
)

const (
	relevantLimit     = 20
	bibliographyLimit = 50
)

// Prompts lists the prompt templates the server offers.
func Prompts() []Prompt {
	return []Prompt{
		{
			Name:        "find_relevant_citations",
			Description: "Find citations relevant to a research topic or question",
			Arguments:   []PromptArgument{{Name: "topic", Description: "The research topic or question", Required: true}},
		},
		{
			Name:        "summarize_domain",
			Description: "Summarize all citations in a specific domain",
			Arguments:   []PromptArgument{{Name: "domain", Description: "The domain name", Required: true}},
		},
		{
			Name:        "create_bibliography",
			Description: "Create a formatted bibliography for selected citations",
			Arguments: []PromptArgument{
				{Name: "query", Description: "Search query to select citations", Required: true},
				{Name: "style", Description: "Citation style (ieee, apa, bibtex)"},
			},
		},
	}
}

func (s *Server) getPrompt(raw json.RawMessage) (any, *rpcError) {
	var p struct {
		Name      string            `json:"name"`
		Arguments map[string]string `json:"arguments"`
	}
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	arg := func(name string) string { return strings.TrimSpace(p.Arguments[name]) }

	var text string
	switch p.Name {
	case "find_relevant_citations":
		topic := arg("topic")
		if topic == "" {
			return nil, invalidParams("Missing required argument: topic")
		}
		cs := s.lib.Search(library.SearchOptions{Query: topic, Limit: relevantLimit})
		text = fmt.Sprintf("I'm researching: %s\n\nHere are potentially relevant citations from my library:\n\n%s\n\n"+
			"Please analyze these citations and recommend the most relevant ones for my research, explaining why each is useful.",
			topic, s.summaries(cs))

	case "summarize_domain":
		domain := arg("domain")
		if domain == "" {
			return nil, invalidParams("Missing required argument: domain")
		}
		cs := s.lib.ByDomain(domain)
		text = fmt.Sprintf("Please summarize the research landscape represented by these %d citations in the '%s' domain:\n\n%s\n\n"+
			"Provide an overview of key themes, seminal works, and trends visible in this collection.",
			len(cs), domain, s.summaries(cs))

	case "create_bibliography":
		style, err := render.ParseStyle(arg("style"))
		if err != nil {
			style = render.StyleIEEE
		}
		cs := s.lib.Search(library.SearchOptions{Query: arg("query"), Limit: bibliographyLimit})
		entries := make([]string, len(cs))
		for i, c := range cs {
			entries[i] = render.Format(style, c)
		}
		text = fmt.Sprintf("Here is a bibliography of %d citations in %s format:\n\n%s\n\n"+
			"Please review this bibliography and suggest any improvements or note any formatting issues.",
			len(cs), strings.ToUpper(string(style)), strings.Join(entries, "\n\n"))

	default:
		return nil, invalidParams("Unknown prompt: " + p.Name)
	}

	return promptResult{
		Description: "Prompt: " + p.Name,
		Messages:    []promptMessage{{Role: "user", Content: content{Type: "text", Text: text}}},
	}, nil
}
