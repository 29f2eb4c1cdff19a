// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package loader reads library snapshot documents. Each record field is
// parsed on its own so a malformed value degrades to its default instead of
// failing the whole load.
package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/citation-engine/pkg/types"
)

// ErrMalformed reports a document that is not a JSON object.
var ErrMalformed = errors.New("malformed snapshot document")

// LoadFile reads and parses the snapshot at path. The returned error wraps
// the os error unchanged, so callers can test it with errors.Is(err, fs.ErrNotExist).
func LoadFile(path string) (types.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Snapshot{}, fmt.Errorf("reading snapshot %s: %w", path, err)
	}
	snap, err := Parse(data)
	if err != nil {
		return types.Snapshot{}, fmt.Errorf("parsing snapshot %s: %w", path, err)
	}
	return snap, nil
}

// Parse decodes a snapshot document with "citations" and "domains" arrays.
// Missing arrays load as empty; entries that are not objects are skipped.
func Parse(data []byte) (types.Snapshot, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return types.Snapshot{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if doc == nil {
		return types.Snapshot{}, fmt.Errorf("%w: top level is null", ErrMalformed)
	}

	snap := types.Snapshot{
		Version:    types.Value(optString(doc["version"])),
		ExportDate: optTime(doc["exportDate"]),
		Citations:  []types.Citation{},
		Domains:    []types.Domain{},
	}

	for _, rec := range records(doc["citations"]) {
		snap.Citations = append(snap.Citations, citationFromRecord(rec))
	}
	for _, rec := range records(doc["domains"]) {
		snap.Domains = append(snap.Domains, domainFromRecord(rec))
	}
	return snap, nil
}

// CitationFromMap builds a Citation from a decoded canonical map, applying
// the same defaults as the file loader.
func CitationFromMap(m map[string]any) types.Citation {
	data, err := json.Marshal(m)
	if err != nil {
		return citationFromRecord(nil)
	}
	var rec map[string]json.RawMessage
	if err := json.Unmarshal(data, &rec); err != nil {
		return citationFromRecord(nil)
	}
	return citationFromRecord(rec)
}

func records(raw json.RawMessage) []map[string]json.RawMessage {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]map[string]json.RawMessage, 0, len(items))
	for _, item := range items {
		var rec map[string]json.RawMessage
		if err := json.Unmarshal(item, &rec); err != nil || rec == nil {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func citationFromRecord(rec map[string]json.RawMessage) types.Citation {
	return types.Citation{
		ID:                  types.Value(optString(rec["id"])),
		Title:               types.Value(optString(rec["title"])),
		Authors:             stringList(rec["authors"]),
		Type:                citationType(rec["type"]),
		JournalOrConference: optString(rec["journalOrConference"]),
		Volume:              optString(rec["volume"]),
		Issue:               optString(rec["issue"]),
		Pages:               optString(rec["pages"]),
		Year:                optInt(rec["year"]),
		Month:               optString(rec["month"]),
		Publisher:           optString(rec["publisher"]),
		DOI:                 optString(rec["doi"]),
		URL:                 optString(rec["url"]),
		ISBN:                optString(rec["isbn"]),
		Abstract:            optString(rec["abstract"]),
		Notes:               optString(rec["notes"]),
		Tags:                stringList(rec["tags"]),
		DomainID:            optString(rec["domainId"]),
		DateAdded:           optTime(rec["dateAdded"]),
		DateModified:        optTime(rec["dateModified"]),
	}
}

func domainFromRecord(rec map[string]json.RawMessage) types.Domain {
	color := types.DefaultDomainColor
	if c := optString(rec["color"]); c != nil {
		color = *c
	}
	return types.Domain{
		ID:          types.Value(optString(rec["id"])),
		Name:        types.Value(optString(rec["name"])),
		Description: optString(rec["description"]),
		Color:       color,
		DateCreated: optTime(rec["dateCreated"]),
	}
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// optString returns nil for absent, null or non-string values.
func optString(raw json.RawMessage) *string {
	if isNull(raw) {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}

// optInt accepts JSON integers, integral floats and numeric strings.
func optInt(raw json.RawMessage) *int {
	if isNull(raw) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		if f != math.Trunc(f) || math.IsInf(f, 0) {
			return nil
		}
		n := int(f)
		return &n
	}
	if s := optString(raw); s != nil {
		if n, err := strconv.Atoi(strings.TrimSpace(*s)); err == nil {
			return &n
		}
	}
	return nil
}

// stringList returns the string entries of a JSON array, never nil.
func stringList(raw json.RawMessage) []string {
	out := []string{}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return out
	}
	for _, item := range items {
		if s := optString(item); s != nil {
			out = append(out, *s)
		}
	}
	return out
}

// citationType defaults to Article when absent and to Misc when unrecognized.
func citationType(raw json.RawMessage) types.CitationType {
	s := optString(raw)
	if s == nil {
		if isNull(raw) {
			return types.Article
		}
		return types.Misc
	}
	t, _ := types.ParseCitationType(*s)
	return t
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// optTime parses ISO-8601 timestamps. A trailing "Z" is read as UTC;
// values without an offset are taken as UTC. Unparseable values yield nil.
func optTime(raw json.RawMessage) *time.Time {
	s := optString(raw)
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return ParseTimestamp(*s)
}

// ParseTimestamp parses a single ISO-8601 timestamp or returns nil.
func ParseTimestamp(value string) *time.Time {
	value = strings.TrimSpace(value)
	if strings.HasSuffix(value, "Z") {
		value = strings.TrimSuffix(value, "Z") + "+00:00"
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}
