package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/speedse/speed/internal/article"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()

	tmpDir := t.TempDir()
	jsonlPath := filepath.Join(tmpDir, "articles.jsonl")

	db, err := OpenDB(filepath.Join(tmpDir, "cache.db"))
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	var mu sync.Mutex
	n := 0
	store := NewStore(jsonlPath, db,
		WithStoreClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string {
			mu.Lock()
			defer mu.Unlock()
			n++
			return fmt.Sprintf("id-%d", n)
		}),
	)
	return store, jsonlPath
}

func TestStore_Create(t *testing.T) {
	store, jsonlPath := newTestStore(t)

	created, err := store.Create(article.Article{
		Title:       "T",
		Authors:     "A",
		Journal:     "J",
		Year:        2024,
		Source:      article.Provenance{Kind: article.SourceManual},
		SubmittedBy: "anonymous",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if created.ID != "id-1" {
		t.Errorf("ID = %q, want id-1", created.ID)
	}
	if created.Status != article.StatusPending {
		t.Errorf("Status = %q, want pending", created.Status)
	}
	if !created.CreatedAt.Equal(fixedNow) || !created.UpdatedAt.Equal(fixedNow) {
		t.Errorf("timestamps = %v / %v, want %v", created.CreatedAt, created.UpdatedAt, fixedNow)
	}

	onDisk, err := ReadAll(jsonlPath)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(onDisk) != 1 || onDisk[0].ID != "id-1" {
		t.Errorf("JSONL = %+v, want one article id-1", onDisk)
	}

	got, err := store.Get("id-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Title != "T" {
		t.Errorf("Get().Title = %q, want T", got.Title)
	}
}

func TestStore_CreateRejectsModerated(t *testing.T) {
	store, jsonlPath := newTestStore(t)

	_, err := store.Create(article.Article{Title: "T", Status: article.StatusApproved})
	if !errors.Is(err, ErrNotPending) {
		t.Fatalf("Create(approved) error = %v, want ErrNotPending", err)
	}

	onDisk, _ := ReadAll(jsonlPath)
	if len(onDisk) != 0 {
		t.Errorf("JSONL has %d articles, want 0", len(onDisk))
	}
}

func TestStore_GetNotFound(t *testing.T) {
	store, _ := newTestStore(t)

	if _, err := store.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestStore_Moderate(t *testing.T) {
	store, jsonlPath := newTestStore(t)

	created, err := store.Create(article.Article{Title: "T", Authors: "A", Journal: "J", Year: 2024})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	moderated, err := store.Moderate(created.ID, article.Decision{
		Status:      article.StatusApproved,
		ModeratorID: "mod-1",
		Notes:       "  looks good ",
	})
	if err != nil {
		t.Fatalf("Moderate() error = %v", err)
	}
	if moderated.Status != article.StatusApproved {
		t.Errorf("Status = %q, want approved", moderated.Status)
	}
	if moderated.ModeratedBy != "mod-1" || moderated.ModerationNotes != "looks good" {
		t.Errorf("moderation = %q / %q", moderated.ModeratedBy, moderated.ModerationNotes)
	}
	if moderated.ModeratedAt == nil || !moderated.ModeratedAt.Equal(fixedNow) {
		t.Errorf("ModeratedAt = %v, want %v", moderated.ModeratedAt, fixedNow)
	}

	// Both the JSONL file and the cache reflect the decision
	onDisk, _ := ReadAll(jsonlPath)
	if len(onDisk) != 1 || onDisk[0].Status != article.StatusApproved {
		t.Errorf("JSONL = %+v, want one approved article", onDisk)
	}
	approved, err := store.List(ListFilter{Status: article.StatusApproved})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(approved) != 1 {
		t.Errorf("List(approved) = %d articles, want 1", len(approved))
	}

	// Terminal states cannot be moderated again
	_, err = store.Moderate(created.ID, article.Decision{Status: article.StatusRejected, ModeratorID: "mod-2"})
	if !errors.Is(err, article.ErrInvalidTransition) {
		t.Errorf("second Moderate() error = %v, want ErrInvalidTransition", err)
	}
}

func TestStore_ModerateErrors(t *testing.T) {
	store, _ := newTestStore(t)

	if _, err := store.Moderate("missing", article.Decision{Status: article.StatusApproved, ModeratorID: "m"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Moderate(missing) error = %v, want ErrNotFound", err)
	}

	created, _ := store.Create(article.Article{Title: "T"})
	_, err := store.Moderate(created.ID, article.Decision{Status: article.StatusApproved})
	if !article.IsValidationError(err) {
		t.Errorf("Moderate() without moderator error = %v, want validation error", err)
	}
}

func TestStore_Rebuild(t *testing.T) {
	store, jsonlPath := newTestStore(t)

	if err := Append(jsonlPath, article.Article{ID: "external", Title: "Added by hand", Status: article.StatusPending}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	n, err := store.Rebuild()
	if err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Rebuild() = %d, want 1", n)
	}
	if _, err := store.Get("external"); err != nil {
		t.Errorf("Get(external) error = %v", err)
	}
}

func TestStore_ConcurrentCreate(t *testing.T) {
	store, jsonlPath := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := store.Create(article.Article{Title: fmt.Sprintf("T%d", i)}); err != nil {
				t.Errorf("Create() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	onDisk, err := ReadAll(jsonlPath)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(onDisk) != 10 {
		t.Errorf("JSONL has %d articles, want 10", len(onDisk))
	}
}
