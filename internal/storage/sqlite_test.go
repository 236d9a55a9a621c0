package storage

import (
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/speedse/speed/internal/article"
)

// setupTestDB creates a test database and JSONL file with test data
func setupTestDB(t *testing.T) (*DB, string) {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	jsonlPath := filepath.Join(tmpDir, "articles.jsonl")

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	articles := []article.Article{
		{
			ID:          "a1",
			Title:       "Test-Driven Development in Practice",
			Authors:     "Smith, J., Doe, A.",
			Journal:     "Empirical Software Engineering",
			Year:        2020,
			DOI:         "10.1007/s10664-020-09812-3",
			Status:      article.StatusPending,
			Source:      article.Provenance{Kind: article.SourceBibTeX, Filename: "smith.bib"},
			SubmittedBy: "anonymous",
			CreatedAt:   base,
			UpdatedAt:   base,
		},
		{
			ID:          "a2",
			Title:       "Pair Programming Revisited",
			Authors:     "Brown, A.",
			Journal:     "Proc. ICSE",
			Year:        2019,
			Status:      article.StatusApproved,
			Source:      article.Provenance{Kind: article.SourceManual},
			SubmittedBy: "alice",
			CreatedAt:   base.Add(time.Hour),
			UpdatedAt:   base.Add(2 * time.Hour),
		},
		{
			ID:          "a3",
			Title:       "Code Review Effectiveness",
			Authors:     "Lee, K.",
			Journal:     "IEEE Software",
			Year:        2018,
			Status:      article.StatusPending,
			Source:      article.Provenance{Kind: article.SourceManual},
			SubmittedBy: "bob",
			CreatedAt:   base.Add(2 * time.Hour),
			UpdatedAt:   base.Add(2 * time.Hour),
		},
	}

	if err := WriteAll(jsonlPath, articles); err != nil {
		t.Fatalf("Failed to write test JSONL: %v", err)
	}

	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("Failed to open test DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.RebuildFromJSONL(jsonlPath); err != nil {
		t.Fatalf("Failed to rebuild DB: %v", err)
	}

	return db, jsonlPath
}

func TestDB_RebuildFromJSONL(t *testing.T) {
	db, jsonlPath := setupTestDB(t)

	count, err := db.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 3 {
		t.Errorf("Count() = %d, want 3", count)
	}

	// Rebuilding again must not duplicate rows
	n, err := db.RebuildFromJSONL(jsonlPath)
	if err != nil {
		t.Fatalf("RebuildFromJSONL() error = %v", err)
	}
	if n != 3 {
		t.Errorf("RebuildFromJSONL() = %d, want 3", n)
	}
	if count, _ := db.Count(); count != 3 {
		t.Errorf("Count() after second rebuild = %d, want 3", count)
	}
}

func TestDB_GetByID(t *testing.T) {
	db, _ := setupTestDB(t)

	got, err := db.GetByID("a1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got == nil {
		t.Fatal("GetByID() = nil, want article")
	}
	if got.Title != "Test-Driven Development in Practice" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.Source.Kind != article.SourceBibTeX || got.Source.Filename != "smith.bib" {
		t.Errorf("Source = %+v, want bibtex smith.bib", got.Source)
	}
	if !got.CreatedAt.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("CreatedAt = %v", got.CreatedAt)
	}
	if got.ModeratedAt != nil {
		t.Errorf("ModeratedAt = %v, want nil", got.ModeratedAt)
	}

	missing, err := db.GetByID("nope")
	if err != nil {
		t.Fatalf("GetByID(nope) error = %v", err)
	}
	if missing != nil {
		t.Errorf("GetByID(nope) = %+v, want nil", missing)
	}
}

func TestDB_List(t *testing.T) {
	db, _ := setupTestDB(t)

	all, err := db.List(ListFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 || all[0].ID != "a3" || all[2].ID != "a1" {
		t.Errorf("List() order = %v, want newest first", ids(all))
	}

	pending, err := db.List(ListFilter{Status: article.StatusPending})
	if err != nil {
		t.Fatalf("List(pending) error = %v", err)
	}
	if len(pending) != 2 {
		t.Errorf("List(pending) = %v, want 2 articles", ids(pending))
	}

	limited, err := db.List(ListFilter{Limit: 1})
	if err != nil {
		t.Fatalf("List(limit 1) error = %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("List(limit 1) returned %d", len(limited))
	}
}

func TestDB_ListByAuthor(t *testing.T) {
	db, _ := setupTestDB(t)

	tests := []struct {
		name   string
		filter ListFilter
		want   []string
	}{
		{"last name", ListFilter{Authors: []string{"Smith"}}, []string{"a1"}},
		{"last, first", ListFilter{Authors: []string{"Brown, A"}}, []string{"a2"}},
		{"with status", ListFilter{Status: article.StatusApproved, Authors: []string{"Lee"}}, []string{}},
		{"limit after match", ListFilter{Authors: []string{"Lee"}, Limit: 1}, []string{"a3"}},
		{"no match", ListFilter{Authors: []string{"Nobody"}}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.List(tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if !reflect.DeepEqual(ids(got), tt.want) {
				t.Errorf("List(%+v) = %v, want %v", tt.filter, ids(got), tt.want)
			}
		})
	}
}

func TestDB_Search(t *testing.T) {
	db, _ := setupTestDB(t)

	tests := []struct {
		query string
		want  int
	}{
		{"programming", 1},
		{"Smith", 1},
		{"ICSE", 1},
		{"Proc. ICSE", 1},
		{"nonexistent", 0},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := db.Search(tt.query, 10)
			if err != nil {
				t.Fatalf("Search(%q) error = %v", tt.query, err)
			}
			if len(got) != tt.want {
				t.Errorf("Search(%q) = %v, want %d results", tt.query, ids(got), tt.want)
			}
		})
	}
}

func TestDB_CountByStatus(t *testing.T) {
	db, _ := setupTestDB(t)

	counts, err := db.CountByStatus()
	if err != nil {
		t.Fatalf("CountByStatus() error = %v", err)
	}
	if counts[article.StatusPending] != 2 || counts[article.StatusApproved] != 1 || counts[article.StatusRejected] != 0 {
		t.Errorf("CountByStatus() = %v", counts)
	}
}

func TestDB_UpsertReplaces(t *testing.T) {
	db, _ := setupTestDB(t)

	a, _ := db.GetByID("a3")
	a.Title = "Renamed Review Study"
	if err := db.Upsert(*a); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if count, _ := db.Count(); count != 3 {
		t.Errorf("Count() = %d, want 3", count)
	}
	if got, _ := db.Search("Renamed", 10); len(got) != 1 {
		t.Errorf("Search(Renamed) = %v, want 1", ids(got))
	}
	if got, _ := db.Search("Effectiveness", 10); len(got) != 0 {
		t.Errorf("Search(Effectiveness) = %v, want stale FTS row removed", ids(got))
	}
}

func TestPrepareFTSQuery(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"simple", "simple"},
		{"  padded  ", "padded"},
		{"", ""},
		{"Proc. ICSE", `"Proc. ICSE"`},
		{`say "hi"`, `"say ""hi"""`},
	}

	for _, tt := range tests {
		if got := prepareFTSQuery(tt.input); got != tt.want {
			t.Errorf("prepareFTSQuery(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func ids(articles []article.Article) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.ID
	}
	return out
}
