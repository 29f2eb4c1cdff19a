// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tabular

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrCapabilityUnavailable reports that the SQLite engine cannot be used,
// typically because the binary was built without cgo.
var ErrCapabilityUnavailable = errors.New("sqlite capability unavailable")

// SQLiteResult describes a materialized database.
type SQLiteResult struct {
	Rows int
	// FTS reports whether the citations_fts full-text index was built. It is
	// false when the driver was compiled without the sqlite_fts5 tag.
	FTS bool
}

// WriteSQLite materializes rows into a fresh SQLite database at path. An
// existing file at path is replaced.
func WriteSQLite(ctx context.Context, path string, rows []Row) (SQLiteResult, error) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return SQLiteResult{}, fmt.Errorf("removing %s: %w", path, err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return SQLiteResult{}, classifyOpenError(err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return SQLiteResult{}, classifyOpenError(err)
	}

	if _, err := db.ExecContext(ctx, `CREATE TABLE citations (
		rowid INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		title TEXT,
		authors TEXT,
		author_count INTEGER,
		type TEXT,
		type_display TEXT,
		year INTEGER,
		journal_or_conference TEXT,
		volume TEXT,
		issue TEXT,
		pages TEXT,
		doi TEXT,
		url TEXT,
		domain_id TEXT,
		domain_name TEXT,
		tags TEXT,
		tag_count INTEGER,
		has_abstract INTEGER,
		abstract_length INTEGER,
		date_added TEXT
	)`); err != nil {
		return SQLiteResult{}, fmt.Errorf("creating citations table: %w", err)
	}
	for _, stmt := range []string{
		`CREATE INDEX idx_citations_year ON citations(year)`,
		`CREATE INDEX idx_citations_type ON citations(type)`,
		`CREATE INDEX idx_citations_domain ON citations(domain_id)`,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return SQLiteResult{}, fmt.Errorf("executing schema statement: %w", err)
		}
	}

	result := SQLiteResult{FTS: true}
	if _, err := db.ExecContext(ctx,
		`CREATE VIRTUAL TABLE citations_fts USING fts5(title, authors, tags, content=citations, content_rowid=rowid)`,
	); err != nil {
		if !strings.Contains(err.Error(), "no such module") {
			return SQLiteResult{}, fmt.Errorf("creating FTS table: %w", err)
		}
		result.FTS = false
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return SQLiteResult{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO citations (
		id, title, authors, author_count, type, type_display, year,
		journal_or_conference, volume, issue, pages, doi, url,
		domain_id, domain_name, tags, tag_count, has_abstract,
		abstract_length, date_added
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return SQLiteResult{}, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		var added any
		if r.DateAdded != nil {
			added = r.DateAdded.UTC().Format(time.RFC3339Nano)
		}
		if _, err := stmt.ExecContext(ctx,
			r.ID, r.Title, r.Authors, r.AuthorCount, r.Type, r.TypeDisplay, nullInt(r.Year),
			nullString(r.Venue), nullString(r.Volume), nullString(r.Issue), nullString(r.Pages),
			nullString(r.DOI), nullString(r.URL), nullString(r.DomainID), nullString(r.DomainName),
			r.Tags, r.TagCount, r.HasAbstract, r.AbstractLength, added,
		); err != nil {
			return SQLiteResult{}, fmt.Errorf("inserting citation %s: %w", r.ID, err)
		}
		result.Rows++
	}

	if result.FTS {
		if _, err := tx.ExecContext(ctx, `INSERT INTO citations_fts(citations_fts) VALUES('rebuild')`); err != nil {
			return SQLiteResult{}, fmt.Errorf("building FTS index: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return SQLiteResult{}, fmt.Errorf("committing: %w", err)
	}
	return result, nil
}

// classifyOpenError maps the driver's cgo stub error to ErrCapabilityUnavailable.
func classifyOpenError(err error) error {
	if strings.Contains(err.Error(), "CGO_ENABLED=0") || strings.Contains(err.Error(), "requires cgo") {
		return fmt.Errorf("%w: %v", ErrCapabilityUnavailable, err)
	}
	return fmt.Errorf("opening database: %w", err)
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}
