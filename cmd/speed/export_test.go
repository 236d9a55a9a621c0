package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/speedse/speed/internal/article"
	"github.com/speedse/speed/internal/bibtex"
)

func TestSelectNewEntries(t *testing.T) {
	idx := bibtex.NewIndex()
	idx.Add("Smith2020-abcd", "10.1000/existing")

	articles := []article.Article{
		{ID: "1111-aaaa", Title: "Already by DOI", Authors: "Jones, B.", Year: 2021, DOI: "https://doi.org/10.1000/EXISTING"},
		{ID: "abcd-0000", Title: "Already by key", Authors: "Smith, J.", Year: 2020},
		{ID: "2222-bbbb", Title: "New", Authors: "Lee, K.", Year: 2019, DOI: "10.1000/new"},
		{ID: "3333-cccc", Title: "New duplicate in batch", Authors: "Park, S.", Year: 2018, DOI: "10.1000/new"},
	}

	got := selectNewEntries(idx, articles)
	if len(got) != 1 || got[0].ID != "2222-bbbb" {
		t.Errorf("selectNewEntries() = %v, want only 2222-bbbb", got)
	}
}

func TestAppendBibTeX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refs.bib")
	articles := []article.Article{
		{ID: "1111-aaaa", Title: "First", Authors: "Smith, J.", Journal: "TSE", Year: 2020, DOI: "10.1000/one"},
		{ID: "2222-bbbb", Title: "Second", Authors: "Lee, K.", Journal: "ICSE", Year: 2019},
	}

	result, err := appendBibTeX(path, articles)
	if err != nil {
		t.Fatalf("appendBibTeX() error = %v", err)
	}
	if result.Exported != 2 || result.Skipped != 0 {
		t.Errorf("first append = %+v, want 2 exported", result)
	}

	// Second run finds everything already present
	result, err = appendBibTeX(path, articles)
	if err != nil {
		t.Fatalf("appendBibTeX() error = %v", err)
	}
	if result.Exported != 0 || result.Skipped != 2 {
		t.Errorf("second append = %+v, want 2 skipped", result)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "@"); n != 2 {
		t.Errorf("file has %d entries, want 2:\n%s", n, data)
	}
}
