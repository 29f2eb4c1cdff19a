// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package library holds a loaded citation snapshot in memory and answers
// lookups, searches and statistics over it. A Library is read-only once
// loaded; Reload replaces its state wholesale and must not run while other
// goroutines are reading.
package library

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/pdiddy/citation-engine/internal/loader"
	"github.com/pdiddy/citation-engine/pkg/types"
)

// ErrNotFound reports that the snapshot file does not exist.
var ErrNotFound = errors.New("data file not found")

// Library is an in-memory citation collection. Citations and domains keep
// their load order.
type Library struct {
	path      string
	citations []types.Citation
	domains   []types.Domain
}

// Open loads the snapshot at path.
func Open(path string) (*Library, error) {
	l := &Library{path: path}
	if err := l.Reload(); err != nil {
		return nil, err
	}
	return l, nil
}

// New builds a library from an in-memory snapshot. The library has no
// source path, so Reload fails on it.
func New(snap types.Snapshot) *Library {
	l := &Library{}
	l.set(snap)
	return l
}

// Reload re-reads the source file and replaces the in-memory state. When
// loading fails the previous state is kept.
func (l *Library) Reload() error {
	if l.path == "" {
		return errors.New("reloading library: no source path")
	}
	snap, err := loader.LoadFile(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, l.path)
		}
		return err
	}
	l.set(snap)
	return nil
}

func (l *Library) set(snap types.Snapshot) {
	citations := make([]types.Citation, len(snap.Citations))
	for i, c := range snap.Citations {
		citations[i] = c.Clone()
	}
	domains := make([]types.Domain, len(snap.Domains))
	copy(domains, snap.Domains)
	l.citations, l.domains = citations, domains
}

// Path returns the snapshot file the library was opened from.
func (l *Library) Path() string { return l.path }

// Len returns the number of citations.
func (l *Library) Len() int { return len(l.citations) }

// Citations returns a copy of every citation in load order.
func (l *Library) Citations() []types.Citation {
	return cloneAll(l.citations)
}

// Domains returns a copy of every domain in load order.
func (l *Library) Domains() []types.Domain {
	out := make([]types.Domain, len(l.domains))
	copy(out, l.domains)
	return out
}

// Snapshot returns the current state as a snapshot document.
func (l *Library) Snapshot() types.Snapshot {
	return types.Snapshot{
		Version:   types.SnapshotVersion,
		Citations: l.Citations(),
		Domains:   l.Domains(),
	}
}

// Citation returns the first citation whose id equals id.
func (l *Library) Citation(id string) (types.Citation, bool) {
	for _, c := range l.citations {
		if c.ID == id {
			return c.Clone(), true
		}
	}
	return types.Citation{}, false
}

// Domain returns the first domain whose id equals id.
func (l *Library) Domain(id string) (types.Domain, bool) {
	for _, d := range l.domains {
		if d.ID == id {
			return d, true
		}
	}
	return types.Domain{}, false
}

// DomainByName returns the first domain whose name matches case-insensitively.
func (l *Library) DomainByName(name string) (types.Domain, bool) {
	for _, d := range l.domains {
		if strings.EqualFold(d.Name, name) {
			return d, true
		}
	}
	return types.Domain{}, false
}

// ResolveDomain looks up a domain by id, then by name.
func (l *Library) ResolveDomain(idOrName string) (types.Domain, bool) {
	if d, ok := l.Domain(idOrName); ok {
		return d, true
	}
	return l.DomainByName(idOrName)
}

// DomainName returns the name of the domain c refers to. It reports false
// when c has no domain or the reference is dangling.
func (l *Library) DomainName(c types.Citation) (string, bool) {
	if c.DomainID == nil {
		return "", false
	}
	d, ok := l.Domain(*c.DomainID)
	if !ok {
		return "", false
	}
	return d.Name, true
}

func cloneAll(cs []types.Citation) []types.Citation {
	out := make([]types.Citation, len(cs))
	for i, c := range cs {
		out[i] = c.Clone()
	}
	return out
}
