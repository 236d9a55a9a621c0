package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/speedse/speed/internal/article"
	"github.com/speedse/speed/internal/author"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// selectArticleFields contains the standard field list for SELECT queries.
const selectArticleFields = `id, title, authors, journal, year,
	volume, number, pages, doi, url, abstract,
	status, source_kind, source_filename, bibtex_source, submitted_by,
	moderation_notes, moderated_by, moderated_at,
	created_at, updated_at`

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS articles (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			authors TEXT NOT NULL,
			journal TEXT NOT NULL,
			year INTEGER NOT NULL,
			volume TEXT,
			number TEXT,
			pages TEXT,
			doi TEXT,
			url TEXT,
			abstract TEXT,
			status TEXT NOT NULL,
			source_kind TEXT NOT NULL,
			source_filename TEXT,
			bibtex_source TEXT,
			submitted_by TEXT NOT NULL,
			moderation_notes TEXT,
			moderated_by TEXT,
			moderated_at INTEGER,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_articles_status ON articles(status);
		CREATE INDEX IF NOT EXISTS idx_articles_doi ON articles(doi) WHERE doi IS NOT NULL AND doi != '';

		-- Full-text search virtual table (standalone, not external content)
		CREATE VIRTUAL TABLE IF NOT EXISTS articles_fts USING fts5(
			id,
			title,
			authors,
			journal
		);
	`

	_, err := db.Exec(schema)
	return err
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

// RebuildFromJSONL clears the database and rebuilds it from a JSONL file.
func (d *DB) RebuildFromJSONL(jsonlPath string) (int, error) {
	articles, err := ReadAll(jsonlPath)
	if err != nil {
		return 0, fmt.Errorf("reading JSONL: %w", err)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning rebuild: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM articles"); err != nil {
		return 0, fmt.Errorf("clearing articles table: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM articles_fts"); err != nil {
		return 0, fmt.Errorf("clearing articles_fts table: %w", err)
	}

	for _, a := range articles {
		if err := upsert(tx, a); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rebuild: %w", err)
	}
	return len(articles), nil
}

// Upsert inserts or replaces a single article.
func (d *DB) Upsert(a article.Article) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning upsert: %w", err)
	}
	defer tx.Rollback()

	if err := upsert(tx, a); err != nil {
		return err
	}
	return tx.Commit()
}

func upsert(e execer, a article.Article) error {
	var moderatedAt sql.NullInt64
	if a.ModeratedAt != nil {
		moderatedAt = sql.NullInt64{Int64: toUnixNano(*a.ModeratedAt), Valid: true}
	}

	_, err := e.Exec(`
		INSERT OR REPLACE INTO articles (`+selectArticleFields+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Title, a.Authors, a.Journal, a.Year,
		nullableStringValue(a.Volume), nullableStringValue(a.Number), nullableStringValue(a.Pages),
		nullableStringValue(a.DOI), nullableStringValue(a.URL), nullableStringValue(a.Abstract),
		string(a.Status), string(a.Source.Kind), nullableStringValue(a.Source.Filename),
		nullableStringValue(a.BibTeXSource), a.SubmittedBy,
		nullableStringValue(a.ModerationNotes), nullableStringValue(a.ModeratedBy), moderatedAt,
		toUnixNano(a.CreatedAt), toUnixNano(a.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting article %s: %w", a.ID, err)
	}

	if _, err := e.Exec("DELETE FROM articles_fts WHERE id = ?", a.ID); err != nil {
		return fmt.Errorf("clearing fts for %s: %w", a.ID, err)
	}
	if _, err := e.Exec(`INSERT INTO articles_fts (id, title, authors, journal) VALUES (?, ?, ?, ?)`,
		a.ID, a.Title, a.Authors, a.Journal); err != nil {
		return fmt.Errorf("inserting fts for %s: %w", a.ID, err)
	}
	return nil
}

// GetByID retrieves an article by its ID. Returns nil if not found.
func (d *DB) GetByID(id string) (*article.Article, error) {
	row := d.db.QueryRow(`SELECT `+selectArticleFields+` FROM articles WHERE id = ?`, id)
	return scanArticle(row)
}

// ListFilter narrows List results.
type ListFilter struct {
	Status  article.Status // Empty matches every status
	Authors []string       // Each filter must match some author ("Yu", "Timothy Yu", "Yu, T")
	Limit   int            // 0 = no limit
}

// List returns articles, newest first.
func (d *DB) List(filter ListFilter) ([]article.Article, error) {
	query := `SELECT ` + selectArticleFields + ` FROM articles WHERE 1=1`
	var args []interface{}

	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, string(filter.Status))
	}

	query += " ORDER BY created_at DESC, id"

	// Author matching happens in Go, so the limit applies after it.
	queries := author.ParseQueries(filter.Authors)
	if filter.Limit > 0 && len(queries) == 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}
	defer rows.Close()

	articles, err := scanArticles(rows)
	if err != nil || len(queries) == 0 {
		return articles, err
	}

	var matched []article.Article
	for _, a := range articles {
		if !author.AllMatch(queries, a.Authors) {
			continue
		}
		matched = append(matched, a)
		if filter.Limit > 0 && len(matched) == filter.Limit {
			break
		}
	}
	return matched, nil
}

// Search performs a full-text search over title, authors and journal.
func (d *DB) Search(query string, limit int) ([]article.Article, error) {
	ftsQuery := prepareFTSQuery(query)
	if ftsQuery == "" {
		return nil, nil
	}

	rows, err := d.db.Query(`
		SELECT `+selectArticleFields+`
		FROM articles
		WHERE id IN (SELECT id FROM articles_fts WHERE articles_fts MATCH ?)
		ORDER BY created_at DESC
		LIMIT ?`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	return scanArticles(rows)
}

// Count returns the total number of articles.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM articles").Scan(&count)
	return count, err
}

// CountByStatus returns the number of articles in each status.
func (d *DB) CountByStatus() (map[article.Status]int, error) {
	rows, err := d.db.Query("SELECT status, COUNT(*) FROM articles GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("counting by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[article.Status]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[article.Status(status)] = n
	}
	return counts, rows.Err()
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanArticle(s scanner) (*article.Article, error) {
	var a article.Article
	var status, sourceKind string
	var volume, number, pages, doi, url, abstract sql.NullString
	var sourceFilename, bibtexSource, notes, moderatedBy sql.NullString
	var moderatedAt sql.NullInt64
	var createdAt, updatedAt int64

	err := s.Scan(
		&a.ID, &a.Title, &a.Authors, &a.Journal, &a.Year,
		&volume, &number, &pages, &doi, &url, &abstract,
		&status, &sourceKind, &sourceFilename, &bibtexSource, &a.SubmittedBy,
		&notes, &moderatedBy, &moderatedAt,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	// Handle nullable fields
	a.Volume = volume.String
	a.Number = number.String
	a.Pages = pages.String
	a.DOI = doi.String
	a.URL = url.String
	a.Abstract = abstract.String
	a.Status = article.Status(status)
	a.Source = article.Provenance{Kind: article.SourceKind(sourceKind), Filename: sourceFilename.String}
	a.BibTeXSource = bibtexSource.String
	a.ModerationNotes = notes.String
	a.ModeratedBy = moderatedBy.String

	if moderatedAt.Valid {
		t := fromUnixNano(moderatedAt.Int64)
		a.ModeratedAt = &t
	}
	a.CreatedAt = fromUnixNano(createdAt)
	a.UpdatedAt = fromUnixNano(updatedAt)

	return &a, nil
}

func scanArticles(rows *sql.Rows) ([]article.Article, error) {
	var articles []article.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		if a != nil {
			articles = append(articles, *a)
		}
	}
	return articles, rows.Err()
}

// toUnixNano stores the zero time as 0 so it survives a round trip.
func toUnixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// prepareFTSQuery escapes special characters for FTS5 queries.
func prepareFTSQuery(query string) string {
	// FTS5 uses double quotes for phrase matching
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	// If query contains special chars, quote it
	if strings.ContainsAny(query, "\"*+-:(){}[]^~.,") {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}
