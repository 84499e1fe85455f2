// Package library manages the user's local paper library.
//
// The JSONL file is the source of truth. A SQLite index under the cache
// directory is rebuilt after every change and serves search and lookups.
package library

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/matsen/paperref/internal/config"
	"github.com/matsen/paperref/internal/reference"
	"github.com/matsen/paperref/internal/s2"
	"github.com/matsen/paperref/internal/storage"
)

var (
	// ErrNotFound is returned when a library entry does not exist.
	ErrNotFound = errors.New("paper not in library")

	// ErrMissingDOI is returned when an entry has no DOI.
	ErrMissingDOI = errors.New("paper DOI is required")
)

// Store is a library rooted at a paperref repository. It is safe for
// concurrent use within one process.
type Store struct {
	root   string
	logger *slog.Logger
	mu     sync.Mutex
}

// SaveResult reports how a replace-all save changed the library.
type SaveResult struct {
	Added   []string `json:"added"`
	Updated []string `json:"updated"`
	Removed []string `json:"removed"`
	Total   int      `json:"total"`
}

// Open returns the library of the repository at root. A nil logger discards output.
func Open(root string, logger *slog.Logger) (*Store, error) {
	if !config.IsRepository(root) {
		return nil, config.ErrNotRepository
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{root: root, logger: logger}, nil
}

// Root returns the repository root.
func (s *Store) Root() string {
	return s.root
}

// Load returns every library entry in file order.
func (s *Store) Load() ([]reference.Paper, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return storage.ReadAll(config.LibraryPath(s.root))
}

// Save replaces the library with papers. Entries absent from papers are
// removed; the rest are inserted or updated. Entries are keyed by the ID
// derived from their DOI, so a later duplicate in papers wins. A known S2 ID
// is kept when the incoming entry has none.
func (s *Store) Save(papers []reference.Paper) (SaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := storage.ReadAll(config.LibraryPath(s.root))
	if err != nil {
		return SaveResult{}, err
	}
	old := make(map[string]reference.Paper, len(existing))
	for _, p := range existing {
		old[p.ID] = p
	}

	var next []reference.Paper
	index := make(map[string]int)
	for _, p := range papers {
		p, err := normalize(p)
		if err != nil {
			return SaveResult{}, err
		}
		if i, ok := index[p.ID]; ok {
			next[i] = p
			continue
		}
		index[p.ID] = len(next)
		next = append(next, p)
	}

	var result SaveResult
	for i, p := range next {
		prev, ok := old[p.ID]
		if ok && p.S2ID == "" {
			p.S2ID = prev.S2ID
			next[i] = p
		}
		switch {
		case !ok:
			result.Added = append(result.Added, p.ID)
		case prev != p:
			result.Updated = append(result.Updated, p.ID)
		}
	}
	for _, p := range existing {
		if _, ok := index[p.ID]; !ok {
			result.Removed = append(result.Removed, p.ID)
		}
	}
	result.Total = len(next)

	if err := s.write(next); err != nil {
		return SaveResult{}, err
	}
	s.logger.Info("library saved",
		"added", len(result.Added), "updated", len(result.Updated), "removed", len(result.Removed), "total", result.Total)
	return result, nil
}

// Add inserts a paper, or updates the entry with the same DOI.
// It reports whether the paper was new.
func (s *Store) Add(p reference.Paper) (bool, error) {
	p, err := normalize(p)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	papers, err := storage.ReadAll(config.LibraryPath(s.root))
	if err != nil {
		return false, err
	}

	if i, ok := storage.FindByID(papers, p.ID); ok {
		if p.S2ID == "" {
			p.S2ID = papers[i].S2ID
		}
		papers[i] = p
		return false, s.write(papers)
	}

	if err := storage.Append(config.LibraryPath(s.root), p); err != nil {
		return false, err
	}
	return true, s.rebuildIndex()
}

// Remove deletes the entry with the given library ID or DOI.
func (s *Store) Remove(idOrDOI string) (reference.Paper, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	papers, err := storage.ReadAll(config.LibraryPath(s.root))
	if err != nil {
		return reference.Paper{}, err
	}

	i, ok := find(papers, idOrDOI)
	if !ok {
		return reference.Paper{}, fmt.Errorf("%w: %s", ErrNotFound, idOrDOI)
	}
	removed := papers[i]
	papers = append(papers[:i], papers[i+1:]...)
	return removed, s.write(papers)
}

// Get returns the entry with the given library ID or DOI.
func (s *Store) Get(idOrDOI string) (reference.Paper, error) {
	idOrDOI = strings.TrimSpace(idOrDOI)

	var found *reference.Paper
	err := s.withIndex(func(db *storage.DB) error {
		p, err := db.GetByID(idOrDOI)
		if err != nil || p != nil {
			found = p
			return err
		}
		found, err = db.FindByDOI(s2.NormalizeDOI(idOrDOI))
		return err
	})
	if err != nil {
		return reference.Paper{}, err
	}
	if found == nil {
		return reference.Paper{}, fmt.Errorf("%w: %s", ErrNotFound, idOrDOI)
	}
	return *found, nil
}

// Search returns entries whose title or DOI contains query.
func (s *Store) Search(query string, limit int) ([]reference.Paper, error) {
	var papers []reference.Paper
	err := s.withIndex(func(db *storage.DB) error {
		var err error
		papers, err = db.Search(query, limit)
		return err
	})
	return papers, err
}

// withIndex runs fn against the SQLite index, building it first if missing.
func (s *Store) withIndex(fn func(*storage.DB) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(config.DBPath(s.root)); os.IsNotExist(err) {
		if err := s.rebuildIndex(); err != nil {
			return err
		}
	}

	db, err := storage.OpenDB(config.DBPath(s.root))
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(db)
}

// Rebuild recreates the search index from the JSONL file.
func (s *Store) Rebuild() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := storage.OpenDB(config.DBPath(s.root))
	if err != nil {
		return 0, err
	}
	defer db.Close()

	return db.RebuildFromJSONL(config.LibraryPath(s.root))
}

// Resolver returns an identifier resolver over the current library.
func (s *Store) Resolver() (*s2.LocalResolver, error) {
	papers, err := s.Load()
	if err != nil {
		return nil, err
	}
	return s2.NewLocalResolverFromPapers(papers), nil
}

// write replaces the JSONL file and refreshes the index. Callers hold s.mu.
func (s *Store) write(papers []reference.Paper) error {
	if err := storage.WriteAll(config.LibraryPath(s.root), papers); err != nil {
		return err
	}
	return s.rebuildIndex()
}

// rebuildIndex refreshes the SQLite index. Callers hold s.mu.
func (s *Store) rebuildIndex() error {
	if err := os.MkdirAll(config.CachePath(s.root), 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	db, err := storage.OpenDB(config.DBPath(s.root))
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := db.RebuildFromJSONL(config.LibraryPath(s.root))
	if err != nil {
		return fmt.Errorf("rebuilding index: %w", err)
	}
	s.logger.Debug("library index rebuilt", "papers", n)
	return nil
}

// normalize canonicalizes the DOI, trims fields and derives the ID from the DOI.
func normalize(p reference.Paper) (reference.Paper, error) {
	doi := s2.NormalizeDOI(p.DOI)
	if doi == "" {
		return reference.Paper{}, ErrMissingDOI
	}
	out := reference.NewPaper(doi, p.Title)
	out.S2ID = strings.TrimSpace(p.S2ID)
	return out, nil
}

// find locates an entry by library ID, then by DOI.
func find(papers []reference.Paper, idOrDOI string) (int, bool) {
	idOrDOI = strings.TrimSpace(idOrDOI)
	if i, ok := storage.FindByID(papers, idOrDOI); ok {
		return i, true
	}
	return storage.FindByDOI(papers, s2.NormalizeDOI(idOrDOI))
}
