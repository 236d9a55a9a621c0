package storage

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/speedse/speed/internal/article"
)

var (
	// ErrNotFound is returned when no article has the requested ID.
	ErrNotFound = errors.New("article not found")
	// ErrNotPending is returned when asked to create an article that has
	// already been moderated.
	ErrNotPending = errors.New("new articles must be pending")
)

// Store persists articles to JSONL and mirrors them into the SQLite cache.
// It is safe for concurrent use.
type Store struct {
	mu        sync.Mutex
	jsonlPath string
	db        *DB
	now       func() time.Time
	newID     func() string
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreClock sets the clock used for timestamps.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// WithIDGenerator sets the function that assigns article IDs.
func WithIDGenerator(newID func() string) StoreOption {
	return func(s *Store) {
		s.newID = newID
	}
}

// NewStore creates a Store over an articles JSONL file and an open DB.
// The caller keeps ownership of db.
func NewStore(jsonlPath string, db *DB, opts ...StoreOption) *Store {
	s := &Store{
		jsonlPath: jsonlPath,
		db:        db,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create assigns an ID and timestamps to a and persists it.
func (s *Store) Create(a article.Article) (article.Article, error) {
	if a.Status == "" {
		a.Status = article.StatusPending
	}
	if a.Status != article.StatusPending {
		return article.Article{}, fmt.Errorf("%w (got %s)", ErrNotPending, a.Status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	a.ID = s.newID()
	a.CreatedAt = now
	a.UpdatedAt = now

	if err := Append(s.jsonlPath, a); err != nil {
		return article.Article{}, err
	}
	if err := s.db.Upsert(a); err != nil {
		return article.Article{}, fmt.Errorf("indexing article %s: %w", a.ID, err)
	}
	return a, nil
}

// Moderate applies a moderation decision to the article with the given ID.
func (s *Store) Moderate(id string, d article.Decision) (article.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	articles, err := ReadAll(s.jsonlPath)
	if err != nil {
		return article.Article{}, err
	}

	idx, found := FindByID(articles, id)
	if !found {
		return article.Article{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if err := article.Moderate(&articles[idx], d, s.now()); err != nil {
		return article.Article{}, err
	}

	if err := WriteAll(s.jsonlPath, articles); err != nil {
		return article.Article{}, err
	}
	if err := s.db.Upsert(articles[idx]); err != nil {
		return article.Article{}, fmt.Errorf("indexing article %s: %w", id, err)
	}
	return articles[idx], nil
}

// Get returns the article with the given ID.
func (s *Store) Get(id string) (article.Article, error) {
	a, err := s.db.GetByID(id)
	if err != nil {
		return article.Article{}, fmt.Errorf("getting article: %w", err)
	}
	if a == nil {
		return article.Article{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return *a, nil
}

// List returns articles matching filter, newest first.
func (s *Store) List(filter ListFilter) ([]article.Article, error) {
	return s.db.List(filter)
}

// Search runs a full-text search.
func (s *Store) Search(query string, limit int) ([]article.Article, error) {
	return s.db.Search(query, limit)
}

// Rebuild reloads the SQLite cache from the JSONL file.
func (s *Store) Rebuild() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.RebuildFromJSONL(s.jsonlPath)
}
