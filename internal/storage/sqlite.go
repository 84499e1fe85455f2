package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/matsen/paperref/internal/reference"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection holding the library index.
type DB struct {
	db *sql.DB
}

const selectPaperFields = `id, doi, title, s2_id`

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

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			doi TEXT NOT NULL,
			doi_lower TEXT NOT NULL,
			title TEXT NOT NULL,
			s2_id TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_papers_doi ON papers(doi_lower);
		CREATE INDEX IF NOT EXISTS idx_papers_s2 ON papers(s2_id) WHERE s2_id IS NOT NULL;
	`

	_, err := db.Exec(schema)
	return err
}

// RebuildFromJSONL clears the index and rebuilds it from a JSONL file.
func (d *DB) RebuildFromJSONL(jsonlPath string) (int, error) {
	papers, err := ReadAll(jsonlPath)
	if err != nil {
		return 0, fmt.Errorf("reading JSONL: %w", err)
	}
	if err := d.Replace(papers); err != nil {
		return 0, err
	}
	return len(papers), nil
}

// Replace swaps the index contents for papers in one transaction.
func (d *DB) Replace(papers []reference.Paper) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM papers"); err != nil {
		return fmt.Errorf("clearing papers table: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO papers (id, doi, doi_lower, title, s2_id) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range papers {
		if _, err := stmt.Exec(p.ID, p.DOI, strings.ToLower(p.DOI), p.Title, nullableStringValue(p.S2ID)); err != nil {
			return fmt.Errorf("inserting paper %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing index: %w", err)
	}
	return nil
}

// GetByID retrieves a paper by its library ID. It returns nil if absent.
func (d *DB) GetByID(id string) (*reference.Paper, error) {
	row := d.db.QueryRow(`SELECT `+selectPaperFields+` FROM papers WHERE id = ?`, id)
	return scanPaper(row)
}

// FindByDOI retrieves a paper by DOI, ignoring case. It returns nil if absent.
func (d *DB) FindByDOI(doi string) (*reference.Paper, error) {
	row := d.db.QueryRow(`SELECT `+selectPaperFields+` FROM papers WHERE doi_lower = ?`, strings.ToLower(strings.TrimSpace(doi)))
	return scanPaper(row)
}

// Search returns papers whose title or DOI contains query, ignoring case.
func (d *DB) Search(query string, limit int) ([]reference.Paper, error) {
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(query))) + "%"

	q := `SELECT ` + selectPaperFields + ` FROM papers
		WHERE lower(title) LIKE ? ESCAPE '\' OR doi_lower LIKE ? ESCAPE '\'
		ORDER BY title`
	args := []any{pattern, pattern}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	return scanPapers(rows)
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanPaper(s scanner) (*reference.Paper, error) {
	var p reference.Paper
	var s2id sql.NullString

	if err := s.Scan(&p.ID, &p.DOI, &p.Title, &s2id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	p.S2ID = s2id.String
	return &p, nil
}

func scanPapers(rows *sql.Rows) ([]reference.Paper, error) {
	var papers []reference.Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		papers = append(papers, *p)
	}
	return papers, rows.Err()
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
